// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package osenv reads the standard OS_* environment and bootstraps an
// authenticated OpenStack provider connection from it.
package osenv

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/gophercloud/gophercloud"
	"github.com/gophercloud/gophercloud/openstack"
	"github.com/juju/errors"

	"github.com/juju/osctl/core/apiversion"
)

// Config holds the connection parameters read from the environment.
type Config struct {
	AuthURL           string `env:"OS_AUTH_URL"`
	Username          string `env:"OS_USERNAME"`
	Password          string `env:"OS_PASSWORD"`
	ProjectName       string `env:"OS_PROJECT_NAME"`
	UserDomainName    string `env:"OS_USER_DOMAIN_NAME" envDefault:"Default"`
	ProjectDomainName string `env:"OS_PROJECT_DOMAIN_NAME" envDefault:"Default"`
	RegionName        string `env:"OS_REGION_NAME"`
	ComputeAPIVersion string `env:"OS_COMPUTE_API_VERSION" envDefault:"2.1"`
	CACertFile        string `env:"OS_CACERT"`
	Insecure          bool   `env:"OS_INSECURE"`
}

// Read parses the OS_* environment into a Config and validates it.
func Read() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Trace(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &cfg, nil
}

// Validate checks that the config can plausibly authenticate.
func (c *Config) Validate() error {
	if c.AuthURL == "" {
		return errors.NotValidf("empty OS_AUTH_URL")
	}
	if c.Username == "" {
		return errors.NotValidf("empty OS_USERNAME")
	}
	if _, err := apiversion.Parse(c.ComputeAPIVersion); err != nil {
		return errors.Annotate(err, "OS_COMPUTE_API_VERSION")
	}
	return nil
}

// APIVersion returns the requested compute API microversion.
func (c *Config) APIVersion() apiversion.Number {
	return apiversion.MustParse(c.ComputeAPIVersion)
}

// AuthOptions maps the config onto gophercloud authentication options.
func (c *Config) AuthOptions() gophercloud.AuthOptions {
	return gophercloud.AuthOptions{
		IdentityEndpoint: c.AuthURL,
		Username:         c.Username,
		Password:         c.Password,
		TenantName:       c.ProjectName,
		DomainName:       c.UserDomainName,
	}
}

// Connect authenticates against the configured cloud and returns the
// provider handle shared by the service clients.
func Connect(cfg *Config) (*gophercloud.ProviderClient, error) {
	provider, err := openstack.NewClient(cfg.AuthURL)
	if err != nil {
		return nil, errors.Annotate(err, "connecting to cloud")
	}
	httpClient, err := newHTTPClient(cfg.CACertFile, cfg.Insecure)
	if err != nil {
		return nil, errors.Trace(err)
	}
	provider.HTTPClient = *httpClient
	if err := openstack.Authenticate(provider, cfg.AuthOptions()); err != nil {
		return nil, errors.Annotate(err, "authenticating")
	}
	return provider, nil
}

// newHTTPClient builds the transport used for all API traffic, trusting
// an extra CA when one is configured.
func newHTTPClient(cacert string, insecure bool) (*http.Client, error) {
	if cacert == "" && !insecure {
		return &http.Client{}, nil
	}
	tlsConfig := &tls.Config{InsecureSkipVerify: insecure}
	if cacert != "" {
		pem, err := os.ReadFile(cacert)
		if err != nil {
			return nil, errors.Annotatef(err, "reading CA certificate %q", cacert)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.Errorf("no certificates found in %q", cacert)
		}
		tlsConfig.RootCAs = pool
	}
	return &http.Client{
		Transport: &http.Transport{TLSClientConfig: tlsConfig},
	}, nil
}
