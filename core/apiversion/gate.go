// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package apiversion

import (
	"fmt"

	"github.com/juju/errors"
)

// featureMinima maps each gated command option to the minimum negotiated
// compute API version that supports it. All commands consult this one
// table rather than carrying their own version checks.
var featureMinima = map[string]Number{
	"--type":    {Major: 2, Minor: 2},
	"--user":    {Major: 2, Minor: 10},
	"--project": {Major: 2, Minor: 10},
}

// NotSupportedError reports that an option needs a newer negotiated API
// version than the current connection provides.
type NotSupportedError struct {
	Feature string
	Minimum Number
}

// Error implements error.
func (e *NotSupportedError) Error() string {
	return fmt.Sprintf(
		"--os-compute-api-version %s or greater is required to support the %s option",
		e.Minimum, e.Feature,
	)
}

// IsNotSupported reports whether err is a *NotSupportedError.
func IsNotSupported(err error) bool {
	_, ok := errors.Cause(err).(*NotSupportedError)
	return ok
}

// Check returns an error unless current satisfies minimum. It must be
// called before the gated option's value is attached to any request.
func Check(current, minimum Number, feature string) error {
	if current.Compare(minimum) >= 0 {
		return nil
	}
	return &NotSupportedError{Feature: feature, Minimum: minimum}
}

// CheckFeature gates feature against the declarative minima table.
func CheckFeature(current Number, feature string) error {
	minimum, ok := featureMinima[feature]
	if !ok {
		return errors.Errorf("no version requirement registered for %s", feature)
	}
	return Check(current, minimum, feature)
}
