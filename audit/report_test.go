/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/. */

package audit

import (
	"testing"
)

func record(serial string) Intermediary {
	return Intermediary{CommonName: "Example Root CA", Organization: "Example Org", Serial: serial}
}

func setOf(serials ...string) Set {
	s := make(Set)
	for _, serial := range serials {
		s.Add(record(serial))
	}
	return s
}

func members(list []Intermediary) Set {
	s := make(Set)
	for _, i := range list {
		s.Add(i)
	}
	return s
}

func TestDifference(t *testing.T) {
	a := setOf("1", "2", "3")
	b := setOf("2", "3", "4")
	diff := members(a.Difference(b))
	if len(diff) != 1 || !diff[record("1")] {
		t.Fatalf("unexpected difference %v", diff)
	}
}

func TestDifferencePartition(t *testing.T) {
	// (A\B) ∪ (A∩B) ∪ (B\A) must equal A ∪ B, and the two
	// directional differences must be disjoint.
	a := setOf("1", "2", "3", "5")
	b := setOf("2", "3", "4")
	aNotB := members(a.Difference(b))
	bNotA := members(b.Difference(a))
	for i := range aNotB {
		if bNotA[i] {
			t.Fatalf("%+v is in both directional differences", i)
		}
	}
	union := make(Set)
	for i := range a {
		union.Add(i)
	}
	for i := range b {
		union.Add(i)
	}
	rebuilt := make(Set)
	for i := range aNotB {
		rebuilt.Add(i)
	}
	for i := range bNotA {
		rebuilt.Add(i)
	}
	for i := range a {
		if b[i] {
			rebuilt.Add(i)
		}
	}
	if len(rebuilt) != len(union) {
		t.Fatalf("partition does not rebuild the union: %d != %d", len(rebuilt), len(union))
	}
	for i := range union {
		if !rebuilt[i] {
			t.Fatalf("%+v lost by the partition", i)
		}
	}
}

func TestEqualSetsYieldEmptyReports(t *testing.T) {
	a := setOf("1", "2")
	b := setOf("1", "2")
	c := setOf("1", "2")
	report := NewThreeWayReport(a, b, c)
	for name, list := range map[string][]Intermediary{
		"in_kinto_not_in_cert_storage":       report.InKintoNotInCertStorage,
		"in_cert_storage_not_in_kinto":       report.InCertStorageNotInKinto,
		"in_cert_storage_not_in_revocations": report.InCertStorageNotInRevocations,
		"in_revocations_not_in_cert_storage": report.InRevocationsNotInCertStorage,
		"in_revocations_not_in_kinto":        report.InRevocationsNotInKinto,
		"in_kinto_not_in_revocations":        report.InKintoNotInRevocations,
	} {
		if len(list) != 0 {
			t.Fatalf("%s should be empty, got %v", name, list)
		}
	}
}

func TestThreeWayReport(t *testing.T) {
	certStorage := setOf("1", "2")
	onecrl := setOf("2", "3")
	revocations := setOf("1", "3")
	report := NewThreeWayReport(certStorage, onecrl, revocations)
	if diff := members(report.InKintoNotInCertStorage); len(diff) != 1 || !diff[record("3")] {
		t.Fatalf("in_kinto_not_in_cert_storage: %v", diff)
	}
	if diff := members(report.InCertStorageNotInKinto); len(diff) != 1 || !diff[record("1")] {
		t.Fatalf("in_cert_storage_not_in_kinto: %v", diff)
	}
	if diff := members(report.InCertStorageNotInRevocations); len(diff) != 1 || !diff[record("2")] {
		t.Fatalf("in_cert_storage_not_in_revocations: %v", diff)
	}
	if diff := members(report.InRevocationsNotInCertStorage); len(diff) != 1 || !diff[record("3")] {
		t.Fatalf("in_revocations_not_in_cert_storage: %v", diff)
	}
	if diff := members(report.InRevocationsNotInKinto); len(diff) != 1 || !diff[record("1")] {
		t.Fatalf("in_revocations_not_in_kinto: %v", diff)
	}
	if diff := members(report.InKintoNotInRevocations); len(diff) != 1 || !diff[record("2")] {
		t.Fatalf("in_kinto_not_in_revocations: %v", diff)
	}
}

func TestStorageKintoReport(t *testing.T) {
	report := NewStorageKintoReport(setOf("1", "2"), setOf("2", "3"))
	if diff := members(report.InKintoNotInCertStorage); len(diff) != 1 || !diff[record("3")] {
		t.Fatalf("in_kinto_not_in_cert_storage: %v", diff)
	}
	if diff := members(report.InCertStorageNotInKinto); len(diff) != 1 || !diff[record("1")] {
		t.Fatalf("in_cert_storage_not_in_kinto: %v", diff)
	}
}

func TestStorageCCADBReport(t *testing.T) {
	report := NewStorageCCADBReport(setOf("1"), setOf("2"))
	if diff := members(report.InCCADBNotInCertStorage); len(diff) != 1 || !diff[record("2")] {
		t.Fatalf("in_ccadb_not_in_cert_storage: %v", diff)
	}
	if diff := members(report.InCertStorageNotInCCADB); len(diff) != 1 || !diff[record("1")] {
		t.Fatalf("in_cert_storage_not_in_ccadb: %v", diff)
	}
}
