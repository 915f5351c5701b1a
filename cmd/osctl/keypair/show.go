// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package keypair

import (
	"io"

	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
)

var showDoc = `
Display the details of a keypair. With --public-key, only the bare
public key text is printed, in the same form the private key is printed
by create-keypair.

The --user option requires --os-compute-api-version 2.10 or greater.
`

const showExamples = `
    osctl show-keypair mykey
    osctl show-keypair --public-key mykey
    osctl show-keypair mykey --user alice
`

type showCommand struct {
	keypairCommandBase
	out cmd.Output

	name       string
	publicKey  bool
	user       string
	userDomain string
}

// NewShowCommand returns a command that displays a keypair.
func NewShowCommand() cmd.Command {
	return &showCommand{
		keypairCommandBase: newKeypairCommandBase(),
	}
}

// Info implements cmd.Command.
func (c *showCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:     "show-keypair",
		Args:     "<name>",
		Purpose:  "Display key details.",
		Doc:      showDoc,
		Examples: showExamples,
		SeeAlso:  []string{"create-keypair", "delete-keypair", "list-keypairs"},
	}
}

// SetFlags implements cmd.Command.
func (c *showCommand) SetFlags(f *gnuflag.FlagSet) {
	c.keypairCommandBase.SetFlags(f)
	f.BoolVar(&c.publicKey, "public-key", false, "Show only the bare public key paired with the generated key")
	addUserFlags(f, &c.user, &c.userDomain)
	c.out.AddFlags(f, "tabular", map[string]cmd.Formatter{
		"tabular": formatPairs,
		"yaml":    cmd.FormatYaml,
		"json":    cmd.FormatJson,
	})
}

// Init implements cmd.Command.
func (c *showCommand) Init(args []string) error {
	if len(args) == 0 {
		return errors.New("no keypair name specified")
	}
	c.name, args = args[0], args[1:]
	return cmd.CheckEmpty(args)
}

// Run implements cmd.Command.
func (c *showCommand) Run(ctx *cmd.Context) error {
	api, err := c.newComputeAPI()
	if err != nil {
		return errors.Trace(err)
	}
	userID, err := c.ownerID(api.APIVersion(), c.user, c.userDomain)
	if err != nil {
		return errors.Trace(err)
	}

	keypair, err := api.GetKeypair(c.name, userID)
	if err != nil {
		return errors.Trace(err)
	}
	if c.publicKey {
		_, err = io.WriteString(ctx.Stdout, keypair.PublicKey)
		return err
	}
	return c.out.Write(ctx, keypairFields(keypair, "public_key"))
}
