// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"
	"os"

	"github.com/juju/cmd/v3"

	"github.com/juju/osctl/cmd/osctl/keypair"
)

var mainDoc = `
osctl manages SSH and X.509 keypairs held by an OpenStack compute
service. Connection parameters are read from the standard OS_*
environment variables; the compute API microversion is taken from
OS_COMPUTE_API_VERSION (default 2.1).
`

// Main runs the osctl supercommand and returns its exit code.
func Main(args []string) int {
	ctx, err := cmd.DefaultContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get command context: %v\n", err)
		return 2
	}
	osctl := cmd.NewSuperCommand(cmd.SuperCommandParams{
		Name:    "osctl",
		Doc:     mainDoc,
		Purpose: "Manage OpenStack keypairs.",
		Log:     &cmd.Log{},
	})
	osctl.Register(keypair.NewCreateCommand())
	osctl.Register(keypair.NewDeleteCommand())
	osctl.Register(keypair.NewListCommand())
	osctl.Register(keypair.NewShowCommand())
	return cmd.Main(osctl, ctx, args[1:])
}

func main() {
	os.Exit(Main(os.Args))
}
