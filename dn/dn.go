/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/. */

// Package dn extracts the attributes this tool cares about from
// DER encoded X.501 distinguished names.
package dn

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"

	"github.com/mozilla/cert-storage-audit/utils"
	"github.com/pkg/errors"
)

var (
	oidCommonName   = asn1.ObjectIdentifier{2, 5, 4, 3}
	oidOrganization = asn1.ObjectIdentifier{2, 5, 4, 10}
)

// Issuer is the human readable projection of an issuer name.
// An attribute that is absent from the name is the empty string.
type Issuer struct {
	CommonName   string `json:"common_name"`
	Organization string `json:"organization"`
}

// ParseIssuer decodes a single base64 DER distinguished name and
// pulls out its Common Name and Organization attributes.
func ParseIssuer(name string) (Issuer, error) {
	raw, err := utils.B64Decode(name)
	if err != nil {
		return Issuer{}, errors.Wrap(err, "issuer name b64 decode error")
	}
	rdns := &pkix.RDNSequence{}
	rest, err := asn1.Unmarshal(raw, rdns)
	if err != nil {
		return Issuer{}, errors.Wrap(err, fmt.Sprintf("issuer name asn1 decode error for '%s'", name))
	}
	if len(rest) != 0 {
		return Issuer{}, fmt.Errorf("issuer name '%s' carries %d bytes of trailing data", name, len(rest))
	}
	issuer := Issuer{}
	for _, rdn := range *rdns {
		for _, atv := range rdn {
			value, ok := atv.Value.(string)
			if !ok {
				continue
			}
			switch {
			case atv.Type.Equal(oidCommonName):
				issuer.CommonName = value
			case atv.Type.Equal(oidOrganization):
				issuer.Organization = value
			}
		}
	}
	return issuer, nil
}

// ParseIssuers decodes a batch of base64 DER distinguished names.
//
// The output is positionally aligned with the input: result index i
// is the parse of names[i], always, so callers holding a serial in a
// parallel container can re-attach it by index. The first name that
// fails to parse aborts the whole batch and the error says which
// index was at fault.
func ParseIssuers(names []string) ([]Issuer, error) {
	issuers := make([]Issuer, len(names))
	for i, name := range names {
		issuer, err := ParseIssuer(name)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to parse issuer at index %d", i))
		}
		issuers[i] = issuer
	}
	return issuers, nil
}
