// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package internal

import (
	"crypto"
	"crypto/hmac"

	"github.com/bytemare/hash"
)

// IsHashFunctionValid returns whether the hash function is implemented.
func IsHashFunctionValid(id crypto.Hash) bool {
	switch id {
	case crypto.SHA256, crypto.SHA384, crypto.SHA512, crypto.SHA3_256, crypto.SHA3_512:
		return id.Available()
	default:
		return false
	}
}

// NewKDF returns a newly instantiated KDF.
func NewKDF(id crypto.Hash) *KDF {
	return &KDF{id: hash.FromCrypto(id)}
}

// KDF wraps a hash function and exposes KDF methods. Every call uses a fresh hash state, so a KDF can be shared.
type KDF struct {
	id hash.Hash
}

// Extract exposes an Extract only KDF method.
func (k *KDF) Extract(salt, ikm []byte) []byte {
	return k.id.GetHashFunction().HKDFExtract(ikm, salt)
}

// Expand exposes an Expand only KDF method.
func (k *KDF) Expand(key, info []byte, length int) []byte {
	return k.id.GetHashFunction().HKDFExpand(key, info, length)
}

// Size returns the output size of the Extract method.
func (k *KDF) Size() int {
	return k.id.Size()
}

// NewMac returns a newly instantiated Mac.
func NewMac(id crypto.Hash) *Mac {
	return &Mac{id: hash.FromCrypto(id)}
}

// Mac wraps a hash function and exposes Message Authentication Code methods.
type Mac struct {
	id hash.Hash
}

// Equal returns a constant-time comparison of the input.
func (m *Mac) Equal(a, b []byte) bool {
	return hmac.Equal(a, b)
}

// MAC computes a MAC over the message using key.
func (m *Mac) MAC(key, message []byte) []byte {
	return m.id.GetHashFunction().Hmac(message, key)
}

// Size returns the MAC's output length.
func (m *Mac) Size() int {
	return m.id.Size()
}

// NewHash returns a newly instantiated Hash.
func NewHash(id crypto.Hash) *Hash {
	return &Hash{id: hash.FromCrypto(id)}
}

// Hash wraps a hash function and exposes only necessary hashing methods.
type Hash struct {
	id hash.Hash
}

// Size returns the output size of the hashing function.
func (h *Hash) Size() int {
	return h.id.Size()
}

// Transcript returns a new running hash state.
func (h *Hash) Transcript() *Transcript {
	return &Transcript{h: h.id.GetHashFunction()}
}

// Transcript is a running hash, owned by a single protocol run.
type Transcript struct {
	h *hash.Fixed
}

// Write adds input to the running state.
func (t *Transcript) Write(p ...[]byte) {
	for _, in := range p {
		_, _ = t.h.Write(in)
	}
}

// Sum returns the current hash of the running state, without modifying it.
func (t *Transcript) Sum() []byte {
	return t.h.Sum(nil)
}
