// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package keypair

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/juju/errors"

	"github.com/juju/osctl/api/compute"
)

// keypairRow is one line of list-keypairs output. Type is only set when
// the negotiated API version reports keypair types.
type keypairRow struct {
	Name        string `json:"name" yaml:"name"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
}

// keypairFields flattens a keypair into a display record, dropping the
// named fields. Key material is excluded by the callers so it never
// ends up in structured output.
func keypairFields(kp *compute.Keypair, exclude ...string) map[string]string {
	fields := map[string]string{
		"name":        kp.Name,
		"fingerprint": kp.Fingerprint,
	}
	if kp.PublicKey != "" {
		fields["public_key"] = kp.PublicKey
	}
	if kp.PrivateKey != "" {
		fields["private_key"] = kp.PrivateKey
	}
	if kp.Type != "" {
		fields["type"] = kp.Type
	}
	if kp.UserID != "" {
		fields["user_id"] = kp.UserID
	}
	for _, name := range exclude {
		delete(fields, name)
	}
	return fields
}

// formatPairs renders a field/value record sorted by field name.
func formatPairs(writer io.Writer, value interface{}) error {
	fields, ok := value.(map[string]string)
	if !ok {
		return errors.Errorf("expected value of type %T, got %T", fields, value)
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(writer, 0, 1, 1, ' ', 0)
	fmt.Fprintln(tw, "Field\tValue")
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%s\n", name, fields[name])
	}
	return tw.Flush()
}
