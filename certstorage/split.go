/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/. */

package certstorage

import (
	"github.com/pkg/errors"
)

var (
	// ErrKeyTooShort is returned when a key is truncated relative to
	// its declared DER length.
	ErrKeyTooShort = errors.New("key too short to be DER")
	// ErrIndefiniteLength is returned for the BER indefinite length
	// form (0x80), which DER forbids.
	ErrIndefiniteLength = errors.New("unsupported indefinite length")
	// ErrBadDERLength is returned for a long form length that should
	// have used a shorter encoding. DER requires the minimal form.
	ErrBadDERLength = errors.New("non-canonical DER length")
	// ErrKeyTooLong is returned for a length-of-length of three or
	// more bytes. No key in cert_storage is anywhere near 64KiB.
	ErrKeyTooLong = errors.New("key too long")
)

// SplitDERKey splits a cert_storage key into its first complete
// tag-length-value element and everything that follows it.
//
// Keys in the security_state store are the concatenation of two DER
// encodings, e.g. an RDNSequence followed by the serial's INTEGER.
// Only the first element's length header is inspected; the remainder
// is returned as-is and is assumed to be the second field.
func SplitDERKey(key []byte) ([]byte, []byte, error) {
	if len(key) < 2 {
		return nil, nil, ErrKeyTooShort
	}
	firstLenByte := int(key[1])
	if firstLenByte < 0x80 {
		at := firstLenByte + 2
		if len(key) < at {
			return nil, nil, ErrKeyTooShort
		}
		return key[:at], key[at:], nil
	}
	if firstLenByte == 0x80 {
		return nil, nil, ErrIndefiniteLength
	}
	if firstLenByte == 0x81 {
		if len(key) < 3 {
			return nil, nil, ErrKeyTooShort
		}
		length := int(key[2])
		if length < 0x80 {
			// Should have been the short form.
			return nil, nil, ErrBadDERLength
		}
		at := length + 3
		if len(key) < at {
			return nil, nil, ErrKeyTooShort
		}
		return key[:at], key[at:], nil
	}
	if firstLenByte == 0x82 {
		if len(key) < 4 {
			return nil, nil, ErrKeyTooShort
		}
		length := int(key[2])<<8 | int(key[3])
		if length < 256 {
			// Should have been the one byte long form.
			return nil, nil, ErrBadDERLength
		}
		at := length + 4
		if len(key) < at {
			return nil, nil, ErrKeyTooShort
		}
		return key[:at], key[at:], nil
	}
	return nil, nil, ErrKeyTooLong
}
