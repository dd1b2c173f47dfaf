/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/. */

package kinto

const (
	// DefaultBase is Remote Settings production.
	DefaultBase       = "https://firefox.settings.services.mozilla.com/v1"
	defaultBucket     = "security-state"
	defaultCollection = "onecrl"
)

// OneCRL addresses the OneCRL collection and receives its records.
type OneCRL struct {
	Bucket     string    `json:"-"`
	Collection string    `json:"-"`
	Data       []*Record `json:"data"`
}

func NewOneCRL() *OneCRL {
	return &OneCRL{
		Bucket:     defaultBucket,
		Collection: defaultCollection,
		Data:       []*Record{},
	}
}

// Record is a single OneCRL entry. Most entries identify a revoked
// certificate by issuerName/serialNumber; a few use the alternative
// subject/pubKeyHash form instead, which this tool does not reconcile.
type Record struct {
	Id           string  `json:"id,omitempty"`
	Schema       int     `json:"schema,omitempty"`
	Details      Details `json:"details"`
	Enabled      bool    `json:"enabled"`
	IssuerName   string  `json:"issuerName,omitempty"`
	SerialNumber string  `json:"serialNumber,omitempty"`
	Subject      string  `json:"subject,omitempty"`
	PubKeyHash   string  `json:"pubKeyHash,omitempty"`
}

type Details struct {
	Bug     string `json:"bug"`
	Who     string `json:"who"`
	Why     string `json:"why"`
	Name    string `json:"name"`
	Created string `json:"created"`
}
