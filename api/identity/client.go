// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package identity resolves human-supplied user, project and domain
// references to the canonical IDs assigned by Keystone.
package identity

import (
	"github.com/gophercloud/gophercloud"
	"github.com/gophercloud/gophercloud/openstack"
	"github.com/gophercloud/gophercloud/openstack/identity/v3/domains"
	"github.com/gophercloud/gophercloud/openstack/identity/v3/projects"
	"github.com/gophercloud/gophercloud/openstack/identity/v3/roles"
	"github.com/gophercloud/gophercloud/openstack/identity/v3/users"
	"github.com/juju/collections/set"
	"github.com/juju/errors"
)

// User is a Keystone user reference.
type User struct {
	ID   string
	Name string
}

// Client talks to a single Keystone v3 endpoint.
type Client struct {
	keystone *gophercloud.ServiceClient
}

// NewClient locates the identity endpoint for region.
func NewClient(provider *gophercloud.ProviderClient, region string) (*Client, error) {
	keystone, err := openstack.NewIdentityV3(provider, gophercloud.EndpointOpts{
		Region: region,
	})
	if err != nil {
		return nil, errors.Annotate(err, "locating identity endpoint")
	}
	return &Client{keystone: keystone}, nil
}

// ResolveUser resolves a user name or ID to the canonical user ID,
// optionally scoped by a domain name or ID hint. ID lookup is attempted
// first; a name matching more than one user is an error.
func (c *Client) ResolveUser(nameOrID, domainHint string) (string, error) {
	user, err := users.Get(c.keystone, nameOrID).Extract()
	if err == nil {
		return user.ID, nil
	}
	if !isNotFound(err) {
		return "", errors.Annotatef(err, "looking up user %q", nameOrID)
	}

	domainID, err := c.resolveDomain(domainHint)
	if err != nil {
		return "", errors.Trace(err)
	}
	pages, err := users.List(c.keystone, users.ListOpts{
		Name:     nameOrID,
		DomainID: domainID,
	}).AllPages()
	if err != nil {
		return "", errors.Annotatef(err, "looking up user %q", nameOrID)
	}
	matches, err := users.ExtractUsers(pages)
	if err != nil {
		return "", errors.Trace(err)
	}
	switch len(matches) {
	case 0:
		return "", errors.NotFoundf("user %q", nameOrID)
	case 1:
		return matches[0].ID, nil
	default:
		return "", errors.Errorf("user %q matches more than one user", nameOrID)
	}
}

// ResolveProject resolves a project name or ID to the canonical project
// ID, optionally scoped by a domain name or ID hint.
func (c *Client) ResolveProject(nameOrID, domainHint string) (string, error) {
	project, err := projects.Get(c.keystone, nameOrID).Extract()
	if err == nil {
		return project.ID, nil
	}
	if !isNotFound(err) {
		return "", errors.Annotatef(err, "looking up project %q", nameOrID)
	}

	domainID, err := c.resolveDomain(domainHint)
	if err != nil {
		return "", errors.Trace(err)
	}
	pages, err := projects.List(c.keystone, projects.ListOpts{
		Name:     nameOrID,
		DomainID: domainID,
	}).AllPages()
	if err != nil {
		return "", errors.Annotatef(err, "looking up project %q", nameOrID)
	}
	matches, err := projects.ExtractProjects(pages)
	if err != nil {
		return "", errors.Trace(err)
	}
	switch len(matches) {
	case 0:
		return "", errors.NotFoundf("project %q", nameOrID)
	case 1:
		return matches[0].ID, nil
	default:
		return "", errors.Errorf("project %q matches more than one project", nameOrID)
	}
}

// ListProjectUsers enumerates the users holding a role assignment on the
// project, in the order Keystone returns them. A user assigned several
// roles appears once, at its first position.
func (c *Client) ListProjectUsers(projectID string) ([]User, error) {
	pages, err := roles.ListAssignments(c.keystone, roles.ListAssignmentsOpts{
		ScopeProjectID: projectID,
	}).AllPages()
	if err != nil {
		return nil, errors.Annotatef(err, "listing users of project %q", projectID)
	}
	assignments, err := roles.ExtractRoleAssignments(pages)
	if err != nil {
		return nil, errors.Trace(err)
	}
	seen := set.NewStrings()
	var result []User
	for _, assignment := range assignments {
		id := assignment.User.ID
		if id == "" || seen.Contains(id) {
			continue
		}
		seen.Add(id)
		result = append(result, User{ID: id})
	}
	return result, nil
}

// resolveDomain resolves an optional domain name or ID hint; an empty
// hint resolves to no scoping at all.
func (c *Client) resolveDomain(nameOrID string) (string, error) {
	if nameOrID == "" {
		return "", nil
	}
	domain, err := domains.Get(c.keystone, nameOrID).Extract()
	if err == nil {
		return domain.ID, nil
	}
	if !isNotFound(err) {
		return "", errors.Annotatef(err, "looking up domain %q", nameOrID)
	}
	pages, err := domains.List(c.keystone, domains.ListOpts{Name: nameOrID}).AllPages()
	if err != nil {
		return "", errors.Annotatef(err, "looking up domain %q", nameOrID)
	}
	matches, err := domains.ExtractDomains(pages)
	if err != nil {
		return "", errors.Trace(err)
	}
	switch len(matches) {
	case 0:
		return "", errors.NotFoundf("domain %q", nameOrID)
	case 1:
		return matches[0].ID, nil
	default:
		return "", errors.Errorf("domain %q matches more than one domain", nameOrID)
	}
}

func isNotFound(err error) bool {
	_, ok := err.(gophercloud.ErrDefault404)
	return ok
}
