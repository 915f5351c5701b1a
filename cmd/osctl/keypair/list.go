// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package keypair

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/juju/cmd/v3"
	"github.com/juju/collections/transform"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/juju/osctl/api/compute"
	"github.com/juju/osctl/core/apiversion"
)

// keypairTypeVersion is the API version from which keypair records carry
// a type, and from which the Type column is shown.
var keypairTypeVersion = apiversion.MustParse("2.2")

var listDoc = `
List keypair names and fingerprints. By default only the caller's own
keypairs are listed.

With --user, the keypairs of that user are listed instead; with
--project, the keypairs of every user associated with the project are
listed, grouped per user in the order the identity service returns the
users. Both filters are admin only and require
--os-compute-api-version 2.10 or greater, and cannot be combined.
`

const listExamples = `
    osctl list-keypairs
    osctl list-keypairs --user alice
    osctl list-keypairs --project dev --project-domain Default
`

type listCommand struct {
	keypairCommandBase
	out cmd.Output

	user          string
	userDomain    string
	project       string
	projectDomain string

	showType bool
}

// NewListCommand returns a command that lists keypairs.
func NewListCommand() cmd.Command {
	return &listCommand{
		keypairCommandBase: newKeypairCommandBase(),
	}
}

// Info implements cmd.Command.
func (c *listCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:     "list-keypairs",
		Purpose:  "List key fingerprints.",
		Doc:      listDoc,
		Examples: listExamples,
		Aliases:  []string{"keypairs"},
		SeeAlso:  []string{"create-keypair", "delete-keypair", "show-keypair"},
	}
}

// SetFlags implements cmd.Command.
func (c *listCommand) SetFlags(f *gnuflag.FlagSet) {
	c.keypairCommandBase.SetFlags(f)
	addUserFlags(f, &c.user, &c.userDomain)
	f.StringVar(&c.project, "project", "", "List keypairs of all users of this project (admin only) (name or ID); requires --os-compute-api-version 2.10 or greater")
	f.StringVar(&c.projectDomain, "project-domain", "", "Domain the project belongs to (name or ID)")
	c.out.AddFlags(f, "tabular", map[string]cmd.Formatter{
		"tabular": c.formatTabular,
		"yaml":    cmd.FormatYaml,
		"json":    cmd.FormatJson,
	})
}

// Init implements cmd.Command.
func (c *listCommand) Init(args []string) error {
	if c.user != "" && c.project != "" {
		return errors.New("--user and --project cannot be used together")
	}
	return cmd.CheckEmpty(args)
}

// Run implements cmd.Command.
func (c *listCommand) Run(ctx *cmd.Context) error {
	api, err := c.newComputeAPI()
	if err != nil {
		return errors.Trace(err)
	}

	var keypairs []compute.Keypair
	switch {
	case c.project != "":
		if err := apiversion.CheckFeature(api.APIVersion(), "--project"); err != nil {
			return errors.Trace(err)
		}
		idAPI, err := c.newIdentityAPI()
		if err != nil {
			return errors.Trace(err)
		}
		projectID, err := idAPI.ResolveProject(c.project, c.projectDomain)
		if err != nil {
			return errors.Trace(err)
		}
		users, err := idAPI.ListProjectUsers(projectID)
		if err != nil {
			return errors.Trace(err)
		}
		// Nova cannot filter keypairs by project server-side; fan out
		// per member user and keep the membership order.
		for _, user := range users {
			page, err := api.ListKeypairs(user.ID)
			if err != nil {
				return errors.Trace(err)
			}
			keypairs = append(keypairs, page...)
		}
	case c.user != "":
		userID, err := c.ownerID(api.APIVersion(), c.user, c.userDomain)
		if err != nil {
			return errors.Trace(err)
		}
		keypairs, err = api.ListKeypairs(userID)
		if err != nil {
			return errors.Trace(err)
		}
	default:
		keypairs, err = api.ListKeypairs("")
		if err != nil {
			return errors.Trace(err)
		}
	}

	c.showType = api.APIVersion().Compare(keypairTypeVersion) >= 0
	rows := transform.Slice(keypairs, func(kp compute.Keypair) keypairRow {
		row := keypairRow{Name: kp.Name, Fingerprint: kp.Fingerprint}
		if c.showType {
			row.Type = kp.Type
		}
		return row
	})
	return c.out.Write(ctx, rows)
}

// formatTabular renders the keypair rows, appending the Type column
// when the negotiated version reports keypair types.
func (c *listCommand) formatTabular(writer io.Writer, value interface{}) error {
	rows, ok := value.([]keypairRow)
	if !ok {
		return errors.Errorf("expected value of type %T, got %T", rows, value)
	}
	tw := tabwriter.NewWriter(writer, 0, 1, 1, ' ', 0)
	if c.showType {
		fmt.Fprintln(tw, "Name\tFingerprint\tType")
	} else {
		fmt.Fprintln(tw, "Name\tFingerprint")
	}
	for _, row := range rows {
		if c.showType {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Name, row.Fingerprint, row.Type)
		} else {
			fmt.Fprintf(tw, "%s\t%s\n", row.Name, row.Fingerprint)
		}
	}
	return tw.Flush()
}
