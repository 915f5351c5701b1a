// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package keypair

import (
	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
)

var deleteDoc = `
Delete one or more keypairs by name. Names are processed in order; a
failure to look up or delete one name is logged and does not stop the
remaining names from being processed. The command fails if any name
could not be deleted.

The --user option requires --os-compute-api-version 2.10 or greater.
`

const deleteExamples = `
    osctl delete-keypair mykey
    osctl delete-keypair mykey otherkey --user alice
`

type deleteCommand struct {
	keypairCommandBase

	names      []string
	user       string
	userDomain string
}

// NewDeleteCommand returns a command that deletes keypairs.
func NewDeleteCommand() cmd.Command {
	return &deleteCommand{
		keypairCommandBase: newKeypairCommandBase(),
	}
}

// Info implements cmd.Command.
func (c *deleteCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:     "delete-keypair",
		Args:     "<name> ...",
		Purpose:  "Delete public or private key(s).",
		Doc:      deleteDoc,
		Examples: deleteExamples,
		SeeAlso:  []string{"create-keypair", "list-keypairs", "show-keypair"},
	}
}

// SetFlags implements cmd.Command.
func (c *deleteCommand) SetFlags(f *gnuflag.FlagSet) {
	c.keypairCommandBase.SetFlags(f)
	addUserFlags(f, &c.user, &c.userDomain)
}

// Init implements cmd.Command.
func (c *deleteCommand) Init(args []string) error {
	if len(args) == 0 {
		return errors.New("no keypair name specified")
	}
	c.names = args
	return nil
}

// Run implements cmd.Command.
func (c *deleteCommand) Run(ctx *cmd.Context) error {
	api, err := c.newComputeAPI()
	if err != nil {
		return errors.Trace(err)
	}
	userID, err := c.ownerID(api.APIVersion(), c.user, c.userDomain)
	if err != nil {
		return errors.Trace(err)
	}

	succeeded, failures := deleteKeypairs(api, c.names, userID)
	for _, failure := range failures {
		logger.Errorf("failed to delete key with name %q: %v", failure.name, failure.err)
	}
	logger.Debugf("deleted %d of %d keypairs", succeeded, len(c.names))
	if len(failures) > 0 {
		return errors.Errorf("%d of %d keys failed to delete.", len(failures), len(c.names))
	}
	return nil
}

type nameError struct {
	name string
	err  error
}

// deleteKeypairs deletes the named keypairs in input order, one by-name
// lookup and delete per name, continuing past failures. It returns the
// success count and the per-name failures.
func deleteKeypairs(api ComputeAPI, names []string, userID string) (int, []nameError) {
	var failures []nameError
	for _, name := range names {
		keypair, err := api.GetKeypair(name, userID)
		if err == nil {
			err = api.DeleteKeypair(keypair.Name, userID)
		}
		if err != nil {
			failures = append(failures, nameError{name: name, err: err})
		}
	}
	return len(names) - len(failures), failures
}
