// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package oprf implements the Elliptic Curve Oblivious Pseudorandom Function (EC-OPRF) from RFC 9497, in base mode.
package oprf

import (
	"crypto"
	"errors"

	group "github.com/bytemare/crypto"
	"github.com/bytemare/hash"

	"github.com/bytemare/opaque-engine/internal/encoding"
	"github.com/bytemare/opaque-engine/internal/tag"
)

// mode distinguishes between the OPRF base mode and the Verifiable mode.
type mode byte

// base identifies the OPRF non-verifiable, base mode.
const base mode = iota

// Identifier of the OPRF compatible cipher suite to be used.
type Identifier string

const (
	// Ristretto255Sha512 is the OPRF cipher suite of the Ristretto255 group and SHA-512.
	Ristretto255Sha512 Identifier = "ristretto255-SHA512"

	// P256Sha256 is the OPRF cipher suite of the NIST P-256 group and SHA-256.
	P256Sha256 Identifier = "P256-SHA256"

	// P384Sha384 is the OPRF cipher suite of the NIST P-384 group and SHA-384.
	P384Sha384 Identifier = "P384-SHA384"

	// P521Sha512 is the OPRF cipher suite of the NIST P-512 group and SHA-512.
	P521Sha512 Identifier = "P521-SHA512"

	maxDeriveKeyPairTries = 255
)

var (
	// ErrDeriveKeyPair indicates the key derivation loop did not produce a non-zero scalar.
	ErrDeriveKeyPair = errors.New("DeriveKeyPair failed to produce a valid key")

	// ErrInputIdentity indicates the input to blind maps to the identity element.
	ErrInputIdentity = errors.New("input maps to the identity element")
)

type suite struct {
	group group.Group
	hash  crypto.Hash
}

var suites = map[Identifier]suite{
	Ristretto255Sha512: {group.Ristretto255Sha512, crypto.SHA512},
	P256Sha256:         {group.P256Sha256, crypto.SHA256},
	P384Sha384:         {group.P384Sha384, crypto.SHA384},
	P521Sha512:         {group.P521Sha512, crypto.SHA512},
}

// IDFromGroup returns the OPRF identifier corresponding to the input group, or the empty identifier.
func IDFromGroup(g group.Group) Identifier {
	for id, s := range suites {
		if s.group == g {
			return id
		}
	}

	return ""
}

// Available returns whether the Identifier has been registered of not.
func (i Identifier) Available() bool {
	_, ok := suites[i]
	return ok
}

// Group returns the Group identifier for the cipher suite.
func (i Identifier) Group() group.Group {
	return suites[i].group
}

// contextString is "OPRFV1-" || I2OSP(mode, 1) || "-" || identifier.
func (i Identifier) contextString() []byte {
	return encoding.Concatenate(
		[]byte(tag.OPRFVersionPrefix),
		encoding.I2OSP(int(base), 1),
		[]byte("-"),
		[]byte(i),
	)
}

func (i Identifier) dst(prefix string) []byte {
	return encoding.Concat([]byte(prefix), i.contextString())
}

func (i Identifier) hash(input ...[]byte) []byte {
	h := hash.FromCrypto(suites[i].hash).GetHashFunction()

	for _, in := range input {
		_, _ = h.Write(in)
	}

	return h.Sum(nil)
}

// DeriveKey returns the private key derived from the seed and info, following RFC 9497 DeriveKeyPair.
func (i Identifier) DeriveKey(seed, info []byte) (*group.Scalar, error) {
	g := i.Group()
	dst := i.dst(tag.DeriveKeyPairInternal)
	deriveInput := encoding.Concat(seed, encoding.EncodeVector(info))

	for counter := 0; counter <= maxDeriveKeyPairTries; counter++ {
		s := g.HashToScalar(encoding.Concat(deriveInput, encoding.I2OSP(counter, 1)), dst)
		if !s.IsZero() {
			return s, nil
		}
	}

	return nil, ErrDeriveKeyPair
}

// DeriveKeyPair returns the key pair derived from the seed and info.
func (i Identifier) DeriveKeyPair(seed, info []byte) (*group.Scalar, *group.Element, error) {
	sk, err := i.DeriveKey(seed, info)
	if err != nil {
		return nil, nil, err
	}

	return sk, i.Group().Base().Multiply(sk), nil
}

// Client returns an OPRF client.
func (i Identifier) Client() *Client {
	return &Client{Identifier: i}
}

// Evaluate evaluates the blinded input with the given key. The blinded element is not modified.
func (i Identifier) Evaluate(privateKey *group.Scalar, blindedElement *group.Element) *group.Element {
	return blindedElement.Copy().Multiply(privateKey)
}
