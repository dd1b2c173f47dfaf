/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/. */

package audit

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"testing"

	"github.com/mozilla/cert-storage-audit/ccadb"
	"github.com/mozilla/cert-storage-audit/certstorage"
	"github.com/mozilla/cert-storage-audit/kinto"
	"github.com/mozilla/cert-storage-audit/revocations"
	"github.com/mozilla/cert-storage-audit/utils"
)

func encodeName(t *testing.T, commonName, organization string) string {
	t.Helper()
	name := pkix.Name{CommonName: commonName}
	if organization != "" {
		name.Organization = []string{organization}
	}
	raw, err := asn1.Marshal(name.ToRDNSequence())
	if err != nil {
		t.Fatal(err)
	}
	return utils.B64Encode(raw)
}

func TestFromCertStorage(t *testing.T) {
	storage := &certstorage.CertStorage{Data: map[certstorage.IssuerSerial]bool{
		{IssuerName: encodeName(t, "Example Root CA", "Example Org"), Serial: "AQID"}: true,
		{IssuerName: encodeName(t, "Other Root CA", ""), Serial: "BAUG"}:              true,
	}}
	set, err := FromCertStorage(storage)
	if err != nil {
		t.Fatal(err)
	}
	if len(set) != 2 {
		t.Fatalf("expected 2 records, got %d", len(set))
	}
	if !set[Intermediary{CommonName: "Example Root CA", Organization: "Example Org", Serial: "AQID"}] {
		t.Fatal("missing the first record")
	}
	if !set[Intermediary{CommonName: "Other Root CA", Organization: "", Serial: "BAUG"}] {
		t.Fatal("missing the record with no organization")
	}
}

func TestFromCertStorageBadIssuerFailsTheBatch(t *testing.T) {
	storage := &certstorage.CertStorage{Data: map[certstorage.IssuerSerial]bool{
		{IssuerName: utils.B64Encode([]byte{0xFF, 0xFF}), Serial: "AQID"}: true,
	}}
	if _, err := FromCertStorage(storage); err == nil {
		t.Fatal("expected the conversion to fail")
	}
}

func TestFromKinto(t *testing.T) {
	onecrl := &kinto.OneCRL{Data: []*kinto.Record{
		{Id: "a", IssuerName: encodeName(t, "Example Root CA", "Example Org"), SerialNumber: "AQID"},
		// Same issuer/serial under a different Kinto ID collapses.
		{Id: "b", IssuerName: encodeName(t, "Example Root CA", "Example Org"), SerialNumber: "AQID"},
		// The subject/pubKeyHash form carries no issuer/serial and is skipped.
		{Id: "c", Subject: "MAA=", PubKeyHash: "VCIlmPM9Nkg="},
	}}
	set, err := FromKinto(onecrl)
	if err != nil {
		t.Fatal(err)
	}
	if len(set) != 1 {
		t.Fatalf("expected 1 record, got %d", len(set))
	}
	if !set[Intermediary{CommonName: "Example Root CA", Organization: "Example Org", Serial: "AQID"}] {
		t.Fatal("missing the deduplicated record")
	}
}

func TestFromRevocationsFansOut(t *testing.T) {
	revs := &revocations.Revocations{Data: []*revocations.ByIssuer{
		{IssuerName: encodeName(t, "Example Root CA", "Example Org"), Serials: []string{"AQID", "BAUG", "Bwg="}},
	}}
	set, err := FromRevocations(revs)
	if err != nil {
		t.Fatal(err)
	}
	if len(set) != 3 {
		t.Fatalf("expected one record per serial, got %d", len(set))
	}
	for _, serial := range []string{"AQID", "BAUG", "Bwg="} {
		if !set[Intermediary{CommonName: "Example Root CA", Organization: "Example Org", Serial: serial}] {
			t.Fatalf("missing the record for serial %s", serial)
		}
	}
}

func TestFromCCADBReencodesSerial(t *testing.T) {
	report := ccadb.Report{
		{
			CertificateIssuerCommonName:   "Example Root CA",
			CertificateIssuerOrganization: "Example Org",
			CertificateSerialNumber:       "0A1B",
		},
	}
	set, err := FromCCADB(report)
	if err != nil {
		t.Fatal(err)
	}
	want := Intermediary{
		CommonName:   "Example Root CA",
		Organization: "Example Org",
		Serial:       utils.B64Encode([]byte{0x0A, 0x1B}),
	}
	if !set[want] {
		t.Fatalf("missing %+v from %v", want, set)
	}
}

func TestFromCCADBBadSerial(t *testing.T) {
	report := ccadb.Report{
		{CertificateIssuerCommonName: "Example Root CA", CertificateSerialNumber: "not hex"},
	}
	if _, err := FromCCADB(report); err == nil {
		t.Fatal("expected the conversion to fail")
	}
}

func TestDuplicateRowsCollapse(t *testing.T) {
	set := make(Set)
	set.Add(Intermediary{CommonName: "a", Organization: "b", Serial: "c"})
	set.Add(Intermediary{CommonName: "a", Organization: "b", Serial: "c"})
	if len(set) != 1 {
		t.Fatalf("expected identical records to collapse, got %d members", len(set))
	}
}
