/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/. */

// Package audit reduces every revocation data source to one
// canonical record shape and reports the differences between them.
package audit

import (
	"fmt"

	"github.com/mozilla/cert-storage-audit/ccadb"
	"github.com/mozilla/cert-storage-audit/certstorage"
	"github.com/mozilla/cert-storage-audit/dn"
	"github.com/mozilla/cert-storage-audit/kinto"
	"github.com/mozilla/cert-storage-audit/revocations"
	"github.com/mozilla/cert-storage-audit/utils"
	"github.com/pkg/errors"
)

// Intermediary is the canonical unit of comparison across sources.
// The serial is base64 regardless of how the source encoded it.
// Equality is over all three fields.
type Intermediary struct {
	CommonName   string `json:"common_name"`
	Organization string `json:"organization"`
	Serial       string `json:"serial"`
}

// Set is a set of Intermediaries. Inserting the same
// common_name/organization/serial triple twice collapses it, which
// deduplicates sources that carry distinct internal IDs on otherwise
// identical rows (Kinto is known to).
type Set map[Intermediary]bool

func (s Set) Add(i Intermediary) {
	s[i] = true
}

// Difference returns every member of s that is not in other. The
// returned slice is unordered.
func (s Set) Difference(other Set) []Intermediary {
	difference := make([]Intermediary, 0)
	for i := range s {
		if !other[i] {
			difference = append(difference, i)
		}
	}
	return difference
}

// FromCertStorage canonicalizes the set loaded out of cert_storage.
// Issuer names there are the base64 of the raw DER name found in the
// store key, which is exactly what the name parser takes.
func FromCertStorage(storage *certstorage.CertStorage) (Set, error) {
	set := make(Set, len(storage.Data))
	for pair := range storage.Data {
		issuer, err := dn.ParseIssuer(pair.IssuerName)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("bad issuer name in cert_storage: '%s'", pair.IssuerName))
		}
		set.Add(Intermediary{
			CommonName:   issuer.CommonName,
			Organization: issuer.Organization,
			Serial:       pair.Serial,
		})
	}
	return set, nil
}

// FromKinto canonicalizes the OneCRL collection. Records in the
// subject/pubKeyHash form carry no issuer/serial pair and are
// skipped.
func FromKinto(onecrl *kinto.OneCRL) (Set, error) {
	set := make(Set, len(onecrl.Data))
	for _, record := range onecrl.Data {
		if record.IssuerName == "" || record.SerialNumber == "" {
			continue
		}
		issuer, err := dn.ParseIssuer(record.IssuerName)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("bad issuer name in OneCRL record '%s'", record.Id))
		}
		set.Add(Intermediary{
			CommonName:   issuer.CommonName,
			Organization: issuer.Organization,
			Serial:       record.SerialNumber,
		})
	}
	return set, nil
}

// FromRevocations canonicalizes revocations.txt. Each issuer fans
// out to one record per serial listed under it.
func FromRevocations(revs *revocations.Revocations) (Set, error) {
	set := make(Set)
	for _, byIssuer := range revs.Data {
		issuer, err := dn.ParseIssuer(byIssuer.IssuerName)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("bad issuer name in revocations.txt: '%s'", byIssuer.IssuerName))
		}
		for _, serial := range byIssuer.Serials {
			set.Add(Intermediary{
				CommonName:   issuer.CommonName,
				Organization: issuer.Organization,
				Serial:       serial,
			})
		}
	}
	return set, nil
}

// FromCCADB canonicalizes the CCADB report. The report already has
// plain text names, but its serials are hexadecimal and have to be
// re-encoded to base64 to match every other source.
func FromCCADB(report ccadb.Report) (Set, error) {
	set := make(Set, len(report))
	for _, record := range report {
		serial, err := utils.HexToB64(record.CertificateSerialNumber)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf(
				"bad serial number in the CCADB row for '%s'", record.CertificateIssuerCommonName))
		}
		set.Add(Intermediary{
			CommonName:   record.CertificateIssuerCommonName,
			Organization: record.CertificateIssuerOrganization,
			Serial:       serial,
		})
	}
	return set, nil
}
