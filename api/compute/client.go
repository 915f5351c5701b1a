// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package compute is a thin adapter over the Nova keypair API. It owns
// the negotiated microversion for the connection; callers are expected
// to gate version-dependent request fields before attaching them.
package compute

import (
	"github.com/gophercloud/gophercloud"
	"github.com/gophercloud/gophercloud/openstack"
	"github.com/gophercloud/gophercloud/openstack/compute/v2/extensions/keypairs"
	"github.com/juju/errors"

	"github.com/juju/osctl/core/apiversion"
)

// Keypair is an SSH or X.509 credential record held by the compute
// service. PrivateKey is only ever populated on the create response.
type Keypair struct {
	Name        string
	Fingerprint string
	PublicKey   string
	PrivateKey  string
	Type        string
	UserID      string
}

// CreateArgs holds the fields of a keypair create request. Type requires
// API version 2.2 and UserID 2.10; zero values are omitted from the
// request body.
type CreateArgs struct {
	Name      string
	PublicKey string
	Type      string
	UserID    string
}

// Client talks to a single Nova endpoint at a fixed microversion.
type Client struct {
	nova    *gophercloud.ServiceClient
	version apiversion.Number
}

// NewClient locates the compute endpoint for region and pins the
// connection to the given microversion.
func NewClient(provider *gophercloud.ProviderClient, region string, version apiversion.Number) (*Client, error) {
	nova, err := openstack.NewComputeV2(provider, gophercloud.EndpointOpts{
		Region: region,
	})
	if err != nil {
		return nil, errors.Annotate(err, "locating compute endpoint")
	}
	if version.Latest() {
		nova.Microversion = "latest"
	} else {
		nova.Microversion = version.String()
	}
	return &Client{nova: nova, version: version}, nil
}

// APIVersion returns the microversion negotiated for this connection.
func (c *Client) APIVersion() apiversion.Number {
	return c.version
}

// CreateKeypair creates a keypair. When args.PublicKey is empty the
// server generates the pair and returns the private key, exactly once.
func (c *Client) CreateKeypair(args CreateArgs) (*Keypair, error) {
	opts := keypairs.CreateOpts{
		Name:      args.Name,
		PublicKey: args.PublicKey,
		Type:      args.Type,
		UserID:    args.UserID,
	}
	kp, err := keypairs.Create(c.nova, opts).Extract()
	if err != nil {
		return nil, errors.Annotatef(err, "creating keypair %q", args.Name)
	}
	return convert(kp), nil
}

// GetKeypair fetches a keypair by name, scoped to userID when non-empty.
func (c *Client) GetKeypair(name, userID string) (*Keypair, error) {
	kp, err := keypairs.Get(c.nova, name, keypairs.GetOpts{UserID: userID}).Extract()
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFoundf("keypair %q", name)
		}
		return nil, errors.Annotatef(err, "fetching keypair %q", name)
	}
	return convert(kp), nil
}

// ListKeypairs lists keypairs, scoped to userID when non-empty. Order is
// whatever the service returns.
func (c *Client) ListKeypairs(userID string) ([]Keypair, error) {
	pages, err := keypairs.List(c.nova, keypairs.ListOpts{UserID: userID}).AllPages()
	if err != nil {
		return nil, errors.Annotate(err, "listing keypairs")
	}
	extracted, err := keypairs.ExtractKeyPairs(pages)
	if err != nil {
		return nil, errors.Trace(err)
	}
	result := make([]Keypair, len(extracted))
	for i := range extracted {
		result[i] = *convert(&extracted[i])
	}
	return result, nil
}

// DeleteKeypair removes a keypair by name, scoped to userID when
// non-empty.
func (c *Client) DeleteKeypair(name, userID string) error {
	err := keypairs.Delete(c.nova, name, keypairs.DeleteOpts{UserID: userID}).ExtractErr()
	if err != nil {
		if isNotFound(err) {
			return errors.NotFoundf("keypair %q", name)
		}
		return errors.Annotatef(err, "deleting keypair %q", name)
	}
	return nil
}

func convert(kp *keypairs.KeyPair) *Keypair {
	return &Keypair{
		Name:        kp.Name,
		Fingerprint: kp.Fingerprint,
		PublicKey:   kp.PublicKey,
		PrivateKey:  kp.PrivateKey,
		Type:        kp.Type,
		UserID:      kp.UserID,
	}
}

func isNotFound(err error) bool {
	_, ok := err.(gophercloud.ErrDefault404)
	return ok
}
