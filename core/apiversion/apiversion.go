// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package apiversion models compute API microversions and the policy
// deciding which command options they unlock.
package apiversion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// latestMinor marks a version whose minor component is the "latest"
// sentinel. It compares greater than any numeric minor of the same major.
const latestMinor = 1<<31 - 1

// Number is a compute API microversion, e.g. 2.10. Unlike semantic
// versions, microversion minors are ordinal: 2.10 > 2.2.
type Number struct {
	Major int
	Minor int
}

// Latest reports whether the minor component is the "latest" sentinel.
func (n Number) Latest() bool {
	return n.Minor == latestMinor
}

// String returns the canonical form, e.g. "2.10" or "2.latest".
func (n Number) String() string {
	if n.Latest() {
		return fmt.Sprintf("%d.latest", n.Major)
	}
	return fmt.Sprintf("%d.%d", n.Major, n.Minor)
}

// Compare returns -1, 0 or 1 depending on whether n is less than,
// equal to or greater than other.
func (n Number) Compare(other Number) int {
	if n.Major != other.Major {
		if n.Major < other.Major {
			return -1
		}
		return 1
	}
	if n.Minor != other.Minor {
		if n.Minor < other.Minor {
			return -1
		}
		return 1
	}
	return 0
}

// Parse parses a microversion of the form "major.minor", where minor
// may be the literal "latest".
func Parse(s string) (Number, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return Number{}, errors.NotValidf("API version %q", s)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return Number{}, errors.NotValidf("API version %q", s)
	}
	if parts[1] == "latest" {
		return Number{Major: major, Minor: latestMinor}, nil
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil || minor < 0 {
		return Number{}, errors.NotValidf("API version %q", s)
	}
	return Number{Major: major, Minor: minor}, nil
}

// MustParse parses a microversion and panics on failure.
func MustParse(s string) Number {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}
