/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/. */

// Package revocations parses the revocations.txt format that Firefox
// ships as a fallback revocation list.
//
// The format groups serial numbers under their issuer:
//
//	# comment
//	<base64 issuer DN>
//	 <base64 serial>
//	 <base64 serial>
//
// A line with no indentation starts a new issuer, a line indented
// with a single space is a serial belonging to the most recent
// issuer, and a line indented with a tab is the subject/pubKeyHash
// form, which this tool does not support.
package revocations

import (
	"bufio"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

type Revocations struct {
	Data []*ByIssuer
}

// ByIssuer is one issuer and every serial revoked under it.
type ByIssuer struct {
	IssuerName string
	Serials    []string
}

// FromURL fetches and parses a revocations.txt document.
func FromURL(url string) (*Revocations, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to retrieve revocations.txt from %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("failed to retrieve revocations.txt from %s, got status %d", url, resp.StatusCode)
	}
	return FromReader(resp.Body)
}

// FromReader parses a revocations.txt document.
func FromReader(reader io.Reader) (*Revocations, error) {
	revocations := &Revocations{Data: []*ByIssuer{}}
	var current *ByIssuer
	scanner := bufio.NewScanner(reader)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		switch {
		case text == "" || strings.HasPrefix(text, "#"):
			continue
		case strings.HasPrefix(text, "\t"):
			return nil, errors.Errorf(
				"revocations.txt line %d is a subject/pubKeyHash pair, which is not supported", line)
		case strings.HasPrefix(text, " "):
			if current == nil {
				return nil, errors.Errorf(
					"revocations.txt line %d is a serial number with no preceding issuer", line)
			}
			current.Serials = append(current.Serials, strings.Trim(text, " "))
		default:
			current = &ByIssuer{IssuerName: text}
			revocations.Data = append(revocations.Data, current)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read revocations.txt")
	}
	return revocations, nil
}
