// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package keypair implements the keypair management commands.
package keypair

import (
	"github.com/gophercloud/gophercloud"
	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo"

	"github.com/juju/osctl/api/compute"
	"github.com/juju/osctl/api/identity"
	"github.com/juju/osctl/core/apiversion"
	"github.com/juju/osctl/internal/osenv"
)

var logger = loggo.GetLogger("osctl.cmd.keypair")

// ComputeAPI is the subset of the compute service used by the keypair
// commands.
type ComputeAPI interface {
	APIVersion() apiversion.Number
	CreateKeypair(args compute.CreateArgs) (*compute.Keypair, error)
	GetKeypair(name, userID string) (*compute.Keypair, error)
	ListKeypairs(userID string) ([]compute.Keypair, error)
	DeleteKeypair(name, userID string) error
}

// IdentityAPI is the subset of the identity service used by the keypair
// commands.
type IdentityAPI interface {
	ResolveUser(nameOrID, domainHint string) (string, error)
	ResolveProject(nameOrID, domainHint string) (string, error)
	ListProjectUsers(projectID string) ([]identity.User, error)
}

// keypairCommandBase supplies the service clients to the commands. The
// factories are fields so tests can substitute fakes.
type keypairCommandBase struct {
	cmd.CommandBase
	newComputeAPI  func() (ComputeAPI, error)
	newIdentityAPI func() (IdentityAPI, error)
}

func newKeypairCommandBase() keypairCommandBase {
	s := &session{}
	return keypairCommandBase{
		newComputeAPI:  s.computeAPI,
		newIdentityAPI: s.identityAPI,
	}
}

// ownerID gates the --user option against the negotiated API version
// and resolves it to a canonical user ID. An empty user resolves to no
// scoping at all.
func (c *keypairCommandBase) ownerID(current apiversion.Number, user, domainHint string) (string, error) {
	if user == "" {
		return "", nil
	}
	if err := apiversion.CheckFeature(current, "--user"); err != nil {
		return "", errors.Trace(err)
	}
	api, err := c.newIdentityAPI()
	if err != nil {
		return "", errors.Trace(err)
	}
	id, err := api.ResolveUser(user, domainHint)
	if err != nil {
		return "", errors.Trace(err)
	}
	return id, nil
}

func addUserFlags(f *gnuflag.FlagSet, user, userDomain *string) {
	f.StringVar(user, "user", "", "Keypair owner (admin only) (name or ID); requires --os-compute-api-version 2.10 or greater")
	f.StringVar(userDomain, "user-domain", "", "Domain the keypair owner belongs to (name or ID)")
}

// session lazily authenticates once per command invocation, however
// many service clients the command ends up needing.
type session struct {
	cfg      *osenv.Config
	provider *gophercloud.ProviderClient
}

func (s *session) connect() error {
	if s.provider != nil {
		return nil
	}
	cfg, err := osenv.Read()
	if err != nil {
		return errors.Trace(err)
	}
	provider, err := osenv.Connect(cfg)
	if err != nil {
		return errors.Trace(err)
	}
	s.cfg = cfg
	s.provider = provider
	return nil
}

func (s *session) computeAPI() (ComputeAPI, error) {
	if err := s.connect(); err != nil {
		return nil, errors.Trace(err)
	}
	return compute.NewClient(s.provider, s.cfg.RegionName, s.cfg.APIVersion())
}

func (s *session) identityAPI() (IdentityAPI, error) {
	if err := s.connect(); err != nil {
		return nil, errors.Trace(err)
	}
	return identity.NewClient(s.provider, s.cfg.RegionName)
}
