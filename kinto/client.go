/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/. */

// Package kinto is a read-only client for the subset of the Kinto
// REST API that this tool consumes, which is retrieving every record
// of a single collection.
//
// For information on the API that this client targets,
// please see the Kinto 1.x API documentation:
//
// https://docs.kinto-storage.org/en/stable/api/
package kinto

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Client is a thread safe client for the Kinto REST API.
type Client struct {
	host          string
	base          string
	scheme        string
	tool          string
	backoff       time.Duration
	authenticator Authenticator
	inner         *http.Client
	lock          sync.Mutex
}

// NewClient constructs a client from the scheme (E.G. "https"),
// the host (E.G. "firefox.settings.services.mozilla.com"), and the
// API base (E.G. "/v1").
func NewClient(scheme, host, base string) *Client {
	return &Client{
		host:          host,
		base:          base,
		scheme:        scheme,
		inner:         new(http.Client),
		authenticator: new(Unauthenticated),
		tool:          "https://github.com/mozilla/cert-storage-audit",
	}
}

// NewClientFromStr constructs a client from a single URL string,
// E.G. "https://firefox.settings.services.mozilla.com/v1".
func NewClientFromStr(u string) (*Client, error) {
	parsed, err := url.Parse(u)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("'%s' is not a full base URL for a Kinto instance", u)
	}
	return NewClient(parsed.Scheme, parsed.Host, parsed.Path), nil
}

// WithAuthenticator sets the authentication backend for future
// requests. Auditing public collections needs no credentials, so the
// default is Unauthenticated.
func (c *Client) WithAuthenticator(authenticator Authenticator) *Client {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.authenticator = authenticator
	return c
}

// Alive returns back whether any error occurred while doing a GET on /
func (c *Client) Alive() bool {
	req, err := c.newRequest("/")
	if err != nil {
		return false
	}
	return c.do(req, nil) == nil
}

// TryAuth does a GET on the Kinto root resource and checks for the
// presence of user metadata in order to determine whether the
// configured authenticator successfully authenticates.
//
// See https://docs.kinto-storage.org/en/stable/api/1.x/authentication.html#try-authentication for details.
func (c *Client) TryAuth() (bool, error) {
	req, err := c.newRequest("/")
	if err != nil {
		return false, err
	}
	ret := make(map[string]interface{})
	if err := c.do(req, &ret); err != nil {
		return false, err
	}
	_, authenticated := ret["user"]
	return authenticated, nil
}

// AllRecords retrieves every record of the given collection and
// unmarshals the response into it.
//
// For details, please see:
// https://docs.kinto-storage.org/en/stable/api/1.x/records.html#retrieving-stored-records
func (c *Client) AllRecords(collection *OneCRL) error {
	endpoint := fmt.Sprintf("/buckets/%s/collections/%s/records", collection.Bucket, collection.Collection)
	req, err := c.newRequest(endpoint)
	if err != nil {
		return err
	}
	return c.do(req, collection)
}

func (c *Client) newRequest(endpoint string) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s://%s%s%s", c.scheme, c.host, c.base, endpoint), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-AUTOMATED-TOOL", c.tool)
	return req, nil
}

func (c *Client) do(r *http.Request, target interface{}) error {
	backoff := c.getBackoff()
	c.authenticate(r)
	if backoff > 0 {
		// Kinto kindly asks us that we backoff when necessary
		// See https://docs.kinto-storage.org/en/stable/api/1.x/backoff.html
		log.WithField("backoff", backoff).Info("Kinto has asked us to backoff")
		time.Sleep(backoff)
	}
	resp, err := c.inner.Do(r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	receivedBackoff := resp.Header.Get("Backoff")
	if receivedBackoff != "" {
		b, err := strconv.Atoi(receivedBackoff)
		if err != nil {
			return fmt.Errorf(
				"Kinto gave us a Backoff header, but "+
					"it did not parse to an integer. Got '%s'",
				receivedBackoff)
		}
		c.setBackoff(time.Second * time.Duration(b))
	} else {
		c.setBackoff(time.Duration(0))
	}
	if resp.StatusCode != http.StatusOK {
		b, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("expected status code 200, got %d", resp.StatusCode)
		}
		return fmt.Errorf("expected status code 200, got %d. Message %s", resp.StatusCode, string(b))
	}
	if target != nil {
		return json.NewDecoder(resp.Body).Decode(target)
	}
	return nil
}

func (c *Client) authenticate(r *http.Request) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.authenticator.Authenticate(r)
}

func (c *Client) getBackoff() time.Duration {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.backoff
}

func (c *Client) setBackoff(backoff time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.backoff = backoff
}
