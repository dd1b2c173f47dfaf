/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/. */

// Package certstorage decodes the revocation entries that Firefox
// keeps in its security_state ("cert_storage") database.
//
// Keys in the store are a short ASCII prefix ("is" for issuer/serial
// pairs, "spk" for subject/key-hash pairs) followed by two
// concatenated DER encodings. Values are a small integer revocation
// state in which 1, and only 1, means revoked.
package certstorage

import (
	"encoding/base64"

	"github.com/pkg/errors"
)

const (
	issuerSerialPrefix   = "is"
	subjectKeyHashPrefix = "spk"
)

// IssuerSerial is one revoked issuer/serial pair. Both fields are the
// base64 encoding of the raw DER bytes found in the key.
type IssuerSerial struct {
	IssuerName string `json:"issuerName"`
	Serial     string `json:"serial"`
}

// SubjectKeyHash is one revoked subject/public-key-hash pair. These
// are decoded for completeness but take no part in reconciliation.
type SubjectKeyHash struct {
	Subject string `json:"subject"`
	KeyHash string `json:"keyHash"`
}

// Entry is the decoded form of a single store pair. Exactly one of
// the two members is non-nil.
type Entry struct {
	IssuerSerial   *IssuerSerial
	SubjectKeyHash *SubjectKeyHash
}

// Decode turns one (key, value) pair from the store into an Entry.
//
// A nil Entry and a nil error means the pair is to be skipped: the
// value does not say "revoked" (only the integer 1 does), or the key
// carries a prefix this tool does not track. A malformed key under a
// recognized prefix is an error.
func Decode(key []byte, value *int64) (*Entry, error) {
	if value == nil || *value != 1 {
		return nil, nil
	}
	switch {
	case hasPrefix(key, issuerSerialPrefix):
		name, serial, err := SplitDERKey(key[len(issuerSerialPrefix):])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to split issuer/serial key %X", key)
		}
		return &Entry{IssuerSerial: &IssuerSerial{
			IssuerName: base64.StdEncoding.EncodeToString(name),
			Serial:     base64.StdEncoding.EncodeToString(serial),
		}}, nil
	case hasPrefix(key, subjectKeyHashPrefix):
		subject, hash, err := SplitDERKey(key[len(subjectKeyHashPrefix):])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to split subject/key-hash key %X", key)
		}
		return &Entry{SubjectKeyHash: &SubjectKeyHash{
			Subject: base64.StdEncoding.EncodeToString(subject),
			KeyHash: base64.StdEncoding.EncodeToString(hash),
		}}, nil
	default:
		return nil, nil
	}
}

func hasPrefix(key []byte, prefix string) bool {
	return len(key) >= len(prefix) && string(key[:len(prefix)]) == prefix
}

// Iter is the read boundary onto the underlying key-value store.
// Implementations yield pairs in ascending key order, although the
// loader does not depend on that order. A nil value pointer means the
// store holds no value for the key.
type Iter interface {
	Next() bool
	Pair() (key []byte, value *int64)
	Err() error
}

// CertStorage is the set of revoked issuer/serial pairs found in one
// pass over the store.
type CertStorage struct {
	Data map[IssuerSerial]bool
}

// Load drains the iterator and decodes every pair.
//
// The result is all-or-nothing. A single malformed key is taken as a
// signal that the whole snapshot is untrustworthy, so the first decode
// or iteration error aborts the load with no partial set.
func Load(it Iter) (*CertStorage, error) {
	storage := &CertStorage{Data: map[IssuerSerial]bool{}}
	for it.Next() {
		key, value := it.Pair()
		entry, err := Decode(key, value)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build set from cert_storage")
		}
		if entry == nil || entry.IssuerSerial == nil {
			continue
		}
		storage.Data[*entry.IssuerSerial] = true
	}
	if err := it.Err(); err != nil {
		return nil, errors.Wrap(err, "cert_storage iteration failed")
	}
	return storage, nil
}
