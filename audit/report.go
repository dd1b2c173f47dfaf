/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/. */

package audit

// Each comparison mode has its own report type so that a two-way run
// cannot carry three-way fields. Every report field is a directional
// set difference; "in_kinto_not_in_cert_storage" is kinto minus
// cert_storage, and so on. Lists are unordered.

// ThreeWayReport compares cert_storage, OneCRL and revocations.txt
// pairwise in both directions.
type ThreeWayReport struct {
	InKintoNotInCertStorage       []Intermediary `json:"in_kinto_not_in_cert_storage"`
	InCertStorageNotInKinto       []Intermediary `json:"in_cert_storage_not_in_kinto"`
	InCertStorageNotInRevocations []Intermediary `json:"in_cert_storage_not_in_revocations"`
	InRevocationsNotInCertStorage []Intermediary `json:"in_revocations_not_in_cert_storage"`
	InRevocationsNotInKinto       []Intermediary `json:"in_revocations_not_in_kinto"`
	InKintoNotInRevocations       []Intermediary `json:"in_kinto_not_in_revocations"`
}

func NewThreeWayReport(certStorage, onecrl, revocations Set) *ThreeWayReport {
	return &ThreeWayReport{
		InKintoNotInCertStorage:       onecrl.Difference(certStorage),
		InCertStorageNotInKinto:       certStorage.Difference(onecrl),
		InCertStorageNotInRevocations: certStorage.Difference(revocations),
		InRevocationsNotInCertStorage: revocations.Difference(certStorage),
		InRevocationsNotInKinto:       revocations.Difference(onecrl),
		InKintoNotInRevocations:       onecrl.Difference(revocations),
	}
}

// StorageKintoReport compares cert_storage against OneCRL only.
type StorageKintoReport struct {
	InKintoNotInCertStorage []Intermediary `json:"in_kinto_not_in_cert_storage"`
	InCertStorageNotInKinto []Intermediary `json:"in_cert_storage_not_in_kinto"`
}

func NewStorageKintoReport(certStorage, onecrl Set) *StorageKintoReport {
	return &StorageKintoReport{
		InKintoNotInCertStorage: onecrl.Difference(certStorage),
		InCertStorageNotInKinto: certStorage.Difference(onecrl),
	}
}

// StorageCCADBReport compares cert_storage against the CCADB report.
type StorageCCADBReport struct {
	InCCADBNotInCertStorage []Intermediary `json:"in_ccadb_not_in_cert_storage"`
	InCertStorageNotInCCADB []Intermediary `json:"in_cert_storage_not_in_ccadb"`
}

func NewStorageCCADBReport(certStorage, ccadbSet Set) *StorageCCADBReport {
	return &StorageCCADBReport{
		InCCADBNotInCertStorage: ccadbSet.Difference(certStorage),
		InCertStorageNotInCCADB: certStorage.Difference(ccadbSet),
	}
}
