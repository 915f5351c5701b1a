// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package keypair

import (
	"io"
	"os"

	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/utils/v4"

	"github.com/juju/osctl/api/compute"
	"github.com/juju/osctl/core/apiversion"
)

var createDoc = `
Create a new keypair for server SSH access. When --public-key is given,
the key at that path is imported. Otherwise the compute service
generates a pair and the private key is printed to stdout, or saved to
the file named by --private-key. The private key is returned exactly
once and cannot be retrieved again afterwards.

The --type option requires --os-compute-api-version 2.2 or greater; the
--user option requires 2.10 or greater.
`

const createExamples = `
    osctl create-keypair mykey
    osctl create-keypair --public-key ~/.ssh/id_ed25519.pub mykey
    osctl create-keypair --type x509 --user alice mykey
`

type createCommand struct {
	keypairCommandBase
	out cmd.Output

	name           string
	publicKeyFile  string
	privateKeyFile string
	keyType        string
	user           string
	userDomain     string
}

// NewCreateCommand returns a command that creates a keypair.
func NewCreateCommand() cmd.Command {
	return &createCommand{
		keypairCommandBase: newKeypairCommandBase(),
	}
}

// Info implements cmd.Command.
func (c *createCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:     "create-keypair",
		Args:     "<name>",
		Purpose:  "Create a new public or private key for server SSH access.",
		Doc:      createDoc,
		Examples: createExamples,
		SeeAlso:  []string{"delete-keypair", "list-keypairs", "show-keypair"},
	}
}

// SetFlags implements cmd.Command.
func (c *createCommand) SetFlags(f *gnuflag.FlagSet) {
	c.keypairCommandBase.SetFlags(f)
	f.StringVar(&c.publicKeyFile, "public-key", "", "Path of an existing public key to import; without it a new pair is generated")
	f.StringVar(&c.privateKeyFile, "private-key", "", "Path to save the generated private key to, instead of printing it")
	f.StringVar(&c.keyType, "type", "", "Keypair type, ssh or x509; requires --os-compute-api-version 2.2 or greater")
	addUserFlags(f, &c.user, &c.userDomain)
	c.out.AddFlags(f, "tabular", map[string]cmd.Formatter{
		"tabular": formatPairs,
		"yaml":    cmd.FormatYaml,
		"json":    cmd.FormatJson,
	})
}

// Init implements cmd.Command.
func (c *createCommand) Init(args []string) error {
	if len(args) == 0 {
		return errors.New("no keypair name specified")
	}
	c.name, args = args[0], args[1:]
	if c.publicKeyFile != "" && c.privateKeyFile != "" {
		return errors.New("--public-key and --private-key cannot be used together")
	}
	switch c.keyType {
	case "", "ssh", "x509":
	default:
		return errors.NotValidf("keypair type %q", c.keyType)
	}
	return cmd.CheckEmpty(args)
}

// Run implements cmd.Command.
func (c *createCommand) Run(ctx *cmd.Context) error {
	api, err := c.newComputeAPI()
	if err != nil {
		return errors.Trace(err)
	}

	args := compute.CreateArgs{Name: c.name}
	if c.publicKeyFile != "" {
		path, err := utils.NormalizePath(c.publicKeyFile)
		if err != nil {
			return errors.Trace(err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Annotatef(err, "reading public key file %q", c.publicKeyFile)
		}
		args.PublicKey = string(data)
	}
	if c.keyType != "" {
		if err := apiversion.CheckFeature(api.APIVersion(), "--type"); err != nil {
			return errors.Trace(err)
		}
		args.Type = c.keyType
	}
	args.UserID, err = c.ownerID(api.APIVersion(), c.user, c.userDomain)
	if err != nil {
		return errors.Trace(err)
	}

	keypair, err := api.CreateKeypair(args)
	if err != nil {
		return errors.Trace(err)
	}

	if c.privateKeyFile != "" {
		path, err := utils.NormalizePath(c.privateKeyFile)
		if err != nil {
			return errors.Trace(err)
		}
		// The keypair already exists remotely at this point; a write
		// failure loses the only copy of the private key material.
		if err := os.WriteFile(path, []byte(keypair.PrivateKey), 0600); err != nil {
			return errors.Annotatef(err, "saving private key to %q", c.privateKeyFile)
		}
	}

	if args.PublicKey != "" || c.privateKeyFile != "" {
		return c.out.Write(ctx, keypairFields(keypair, "public_key", "private_key"))
	}
	_, err = io.WriteString(ctx.Stdout, keypair.PrivateKey)
	return err
}
