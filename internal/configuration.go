// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package internal provides structures and functions to operate OPAQUE that are not part of the public API.
package internal

import (
	cryptorand "crypto/rand"
	"errors"
	"fmt"
	"math"

	group "github.com/bytemare/crypto"

	"github.com/bytemare/opaque-engine/internal/encoding"
	"github.com/bytemare/opaque-engine/internal/ksf"
	"github.com/bytemare/opaque-engine/internal/oprf"
	"github.com/bytemare/opaque-engine/internal/tag"
)

const (
	// NonceLength is the default length used for nonces.
	NonceLength = 32

	// SeedLength is the default length used for seeds.
	SeedLength = 32

	// MaxVectorLength is the longest input that fits a two-byte length prefix, which bounds identities and
	// contexts.
	MaxVectorLength = math.MaxUint16
)

var errXorLength = errors.New("xor input of unequal length")

// Configuration is the internal representation of the instance runtime parameters.
type Configuration struct {
	KSF          *ksf.KSF
	KDF          *KDF
	MAC          *Mac
	Hash         *Hash
	OPRF         oprf.Identifier
	Group        group.Group
	NonceLen     int
	EnvelopeSize int
}

// OPRFPointLength returns the encoding length of OPRF group elements.
func (c *Configuration) OPRFPointLength() int {
	return c.OPRF.Group().ElementLength()
}

// AkePointLength returns the encoding length of AKE group elements.
func (c *Configuration) AkePointLength() int {
	return c.Group.ElementLength()
}

// XorResponse is used to encrypt and decrypt the response in KE2.
func (c *Configuration) XorResponse(key, nonce, in []byte) []byte {
	pad := c.KDF.Expand(
		key,
		encoding.SuffixString(nonce, tag.CredentialResponsePad),
		c.AkePointLength()+c.EnvelopeSize,
	)
	defer ClearSlice(&pad)

	return Xor(pad, in)
}

// RandomBytes returns random bytes of length len (wrapper for crypto/rand).
func RandomBytes(length int) []byte {
	r := make([]byte, length)
	if _, err := cryptorand.Read(r); err != nil {
		// We can as well not panic and try again in a loop
		panic(fmt.Errorf("unexpected error in generating random bytes : %w", err))
	}

	return r
}

// Xor returns a new byte slice containing the byte-by-byte xor-ing of the input slices, which must be of the same length.
func Xor(a, b []byte) []byte {
	if len(a) != len(b) {
		panic(errXorLength)
	}

	dst := make([]byte, len(a))

	// if the size is fixed, we could unroll the loop
	for i, r := range a {
		dst[i] = r ^ b[i]
	}

	return dst
}

// ClearSlice attempts to zero out the slice and sets it to nil.
func ClearSlice(b *[]byte) {
	if b == nil || *b == nil {
		return
	}

	clear(*b)
	*b = nil
}

// ClearScalar attempts to zero out the scalar and sets it to nil.
func ClearScalar(s **group.Scalar) {
	if s == nil || *s == nil {
		return
	}

	(*s).Zero()
	*s = nil
}

// DecodeElement decodes an element of g, and rejects the identity element.
func DecodeElement(g group.Group, input []byte) (*group.Element, error) {
	if len(input) != g.ElementLength() {
		return nil, ErrInvalidEncodingLength
	}

	e := g.NewElement()
	if err := e.Decode(input); err != nil {
		return nil, errors.Join(ErrInvalidElement, err)
	}

	if e.IsIdentity() {
		return nil, ErrElementIsIdentity
	}

	return e, nil
}

// DecodeScalar decodes a scalar of g, and rejects zero.
func DecodeScalar(g group.Group, input []byte) (*group.Scalar, error) {
	if len(input) != g.ScalarLength() {
		return nil, ErrInvalidEncodingLength
	}

	s := g.NewScalar()
	if err := s.Decode(input); err != nil {
		return nil, errors.Join(ErrInvalidScalar, err)
	}

	if s.IsZero() {
		return nil, ErrScalarIsZero
	}

	return s, nil
}
