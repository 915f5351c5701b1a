// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package compute

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gophercloud/gophercloud"
	"github.com/juju/errors"
	jujutesting "github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/osctl/core/apiversion"
)

type clientSuite struct {
	jujutesting.IsolationSuite

	mux    *http.ServeMux
	server *httptest.Server
	client *Client
}

var _ = gc.Suite(&clientSuite{})

func (s *clientSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.mux = http.NewServeMux()
	s.server = httptest.NewServer(s.mux)
	s.client = &Client{
		nova: &gophercloud.ServiceClient{
			ProviderClient: &gophercloud.ProviderClient{TokenID: "token"},
			Endpoint:       s.server.URL + "/",
			Type:           "compute",
			Microversion:   "2.10",
		},
		version: apiversion.MustParse("2.10"),
	}
}

func (s *clientSuite) TearDownTest(c *gc.C) {
	s.server.Close()
	s.IsolationSuite.TearDownTest(c)
}

func (s *clientSuite) TestAPIVersion(c *gc.C) {
	c.Check(s.client.APIVersion(), gc.Equals, apiversion.MustParse("2.10"))
}

func (s *clientSuite) TestCreateKeypair(c *gc.C) {
	var gotBody map[string]map[string]interface{}
	var gotVersionHeader string
	s.mux.HandleFunc("/os-keypairs", func(w http.ResponseWriter, r *http.Request) {
		c.Check(r.Method, gc.Equals, "POST")
		gotVersionHeader = r.Header.Get("X-OpenStack-Nova-API-Version")
		err := json.NewDecoder(r.Body).Decode(&gotBody)
		c.Assert(err, jc.ErrorIsNil)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"keypair": {
			"name": "mykey",
			"fingerprint": "aa:bb",
			"public_key": "ssh-rsa AAAA",
			"private_key": "-----BEGIN",
			"type": "ssh",
			"user_id": "u1"
		}}`)
	})

	kp, err := s.client.CreateKeypair(CreateArgs{
		Name:      "mykey",
		PublicKey: "ssh-rsa AAAA",
		Type:      "ssh",
		UserID:    "u1",
	})
	c.Assert(err, jc.ErrorIsNil)

	c.Check(gotVersionHeader, gc.Equals, "2.10")
	c.Check(gotBody["keypair"], jc.DeepEquals, map[string]interface{}{
		"name":       "mykey",
		"public_key": "ssh-rsa AAAA",
		"type":       "ssh",
		"user_id":    "u1",
	})
	c.Check(kp, jc.DeepEquals, &Keypair{
		Name:        "mykey",
		Fingerprint: "aa:bb",
		PublicKey:   "ssh-rsa AAAA",
		PrivateKey:  "-----BEGIN",
		Type:        "ssh",
		UserID:      "u1",
	})
}

func (s *clientSuite) TestCreateKeypairOmitsEmptyFields(c *gc.C) {
	var gotBody map[string]map[string]interface{}
	s.mux.HandleFunc("/os-keypairs", func(w http.ResponseWriter, r *http.Request) {
		err := json.NewDecoder(r.Body).Decode(&gotBody)
		c.Assert(err, jc.ErrorIsNil)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"keypair": {"name": "mykey", "fingerprint": "aa:bb", "private_key": "-----BEGIN"}}`)
	})

	_, err := s.client.CreateKeypair(CreateArgs{Name: "mykey"})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(gotBody["keypair"], jc.DeepEquals, map[string]interface{}{"name": "mykey"})
}

func (s *clientSuite) TestGetKeypair(c *gc.C) {
	s.mux.HandleFunc("/os-keypairs/mykey", func(w http.ResponseWriter, r *http.Request) {
		c.Check(r.Method, gc.Equals, "GET")
		c.Check(r.URL.Query().Get("user_id"), gc.Equals, "u1")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"keypair": {"name": "mykey", "fingerprint": "aa:bb", "public_key": "ssh-rsa AAAA"}}`)
	})

	kp, err := s.client.GetKeypair("mykey", "u1")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(kp.Name, gc.Equals, "mykey")
	c.Check(kp.Fingerprint, gc.Equals, "aa:bb")
}

func (s *clientSuite) TestGetKeypairNotFound(c *gc.C) {
	s.mux.HandleFunc("/os-keypairs/nosuch", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := s.client.GetKeypair("nosuch", "")
	c.Check(err, jc.ErrorIs, errors.NotFound)
	c.Check(err, gc.ErrorMatches, `keypair "nosuch" not found`)
}

func (s *clientSuite) TestListKeypairs(c *gc.C) {
	s.mux.HandleFunc("/os-keypairs", func(w http.ResponseWriter, r *http.Request) {
		c.Check(r.Method, gc.Equals, "GET")
		c.Check(r.URL.Query().Get("user_id"), gc.Equals, "u1")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"keypairs": [
			{"keypair": {"name": "mykey", "fingerprint": "aa:bb", "type": "ssh"}},
			{"keypair": {"name": "other", "fingerprint": "cc:dd", "type": "x509"}}
		]}`)
	})

	kps, err := s.client.ListKeypairs("u1")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(kps, jc.DeepEquals, []Keypair{
		{Name: "mykey", Fingerprint: "aa:bb", Type: "ssh"},
		{Name: "other", Fingerprint: "cc:dd", Type: "x509"},
	})
}

func (s *clientSuite) TestDeleteKeypair(c *gc.C) {
	var called bool
	s.mux.HandleFunc("/os-keypairs/mykey", func(w http.ResponseWriter, r *http.Request) {
		called = true
		c.Check(r.Method, gc.Equals, "DELETE")
		c.Check(r.URL.Query().Get("user_id"), gc.Equals, "u1")
		w.WriteHeader(http.StatusAccepted)
	})

	err := s.client.DeleteKeypair("mykey", "u1")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(called, jc.IsTrue)
}

func (s *clientSuite) TestDeleteKeypairNotFound(c *gc.C) {
	s.mux.HandleFunc("/os-keypairs/nosuch", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	err := s.client.DeleteKeypair("nosuch", "")
	c.Check(err, jc.ErrorIs, errors.NotFound)
}
