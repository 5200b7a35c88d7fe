// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package opaque

import (
	"crypto"
	"fmt"

	group "github.com/bytemare/crypto"
	"github.com/bytemare/ksf"

	"github.com/bytemare/opaque-engine/internal"
	"github.com/bytemare/opaque-engine/internal/ake"
	internalKSF "github.com/bytemare/opaque-engine/internal/ksf"
	"github.com/bytemare/opaque-engine/internal/oprf"
)

// Group identifies the prime-order group with hash-to-curve capability to use in OPRF and AKE.
type Group byte

const (
	// RistrettoSha512 identifies the Ristretto255 group and SHA-512.
	RistrettoSha512 = Group(group.Ristretto255Sha512)

	// P256Sha256 identifies the NIST P-256 group and SHA-256.
	P256Sha256 = Group(group.P256Sha256)

	// P384Sha512 identifies the NIST P-384 group and SHA-384.
	P384Sha512 = Group(group.P384Sha384)

	// P521Sha512 identifies the NIST P-512 group and SHA-512.
	P521Sha512 = Group(group.P521Sha512)
)

// Available returns whether the Group byte is recognized in this implementation. This allows to fail early when
// working with multiple versions not using the same configuration and Group.
func (g Group) Available() bool {
	return g == RistrettoSha512 ||
		g == P256Sha256 ||
		g == P384Sha512 ||
		g == P521Sha512
}

// OPRF returns the OPRF Identifier used in the Ciphersuite.
func (g Group) OPRF() oprf.Identifier {
	return oprf.IDFromGroup(g.Group())
}

// Group returns the Group used in the Ciphersuite.
func (g Group) Group() group.Group {
	return group.Group(g)
}

// String returns the name of the group.
func (g Group) String() string {
	if !g.Available() {
		return fmt.Sprintf("unknown group %d", byte(g))
	}

	return string(g.OPRF())
}

const confLength = 6

// Configuration represents an OPAQUE configuration. Note that OprfGroup and AKEGroup are recommended to be the same,
// as well as KDF, MAC, Hash should be the same.
type Configuration struct {
	// OPRF identifies the ciphersuite to use for the OPRF.
	OPRF Group `json:"oprf"`

	// KDF identifies the hash function to be used for key derivation (e.g. HKDF).
	KDF crypto.Hash `json:"kdf"`

	// MAC identifies the hash function to be used for message authentication (e.g. HMAC).
	MAC crypto.Hash `json:"mac"`

	// Hash identifies the hash function to be used for hashing, as defined in github.com/bytemare/hash.
	Hash crypto.Hash `json:"hash"`

	// KSF identifies the key stretching function for expensive password hashing (e.g. argon2id). The zero value
	// disables stretching, which is only meant for testing.
	KSF ksf.Identifier `json:"ksf"`

	// AKE identifies the group to use for the AKE.
	AKE Group `json:"group"`
}

// DefaultConfiguration returns a default configuration with strong parameters.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		OPRF: RistrettoSha512,
		KDF:  crypto.SHA512,
		MAC:  crypto.SHA512,
		Hash: crypto.SHA512,
		KSF:  ksf.Argon2id,
		AKE:  RistrettoSha512,
	}
}

// Client returns a newly instantiated Client from the Configuration.
func (c *Configuration) Client() (*Client, error) {
	return NewClient(c)
}

// Server returns a newly instantiated Server from the Configuration.
func (c *Configuration) Server() (*Server, error) {
	return NewServer(c)
}

// Deserializer returns a pointer to a Deserializer structure allowing deserialization of messages in the given
// configuration.
func (c *Configuration) Deserializer() (*Deserializer, error) {
	conf, err := c.toInternal()
	if err != nil {
		return nil, err
	}

	return &Deserializer{conf: conf}, nil
}

// KeyGen returns a key pair in the AKE group.
func (c *Configuration) KeyGen() (secretKey, publicKey []byte) {
	sk, pk, err := ake.KeyGen(c.AKE.Group())
	if err != nil {
		// A random seed practically never maps to zero 256 times in a row.
		panic(err)
	}

	return sk.Encode(), pk.Encode()
}

// GenerateOPRFSeed returns a OPRF seed valid in the given configuration.
func (c *Configuration) GenerateOPRFSeed() []byte {
	return internal.RandomBytes(c.Hash.Size())
}

func (c *Configuration) verify() error {
	if !c.OPRF.Available() {
		return internal.ErrInvalidOPRFid
	}

	if !c.AKE.Available() {
		return internal.ErrInvalidAKEid
	}

	if !internal.IsHashFunctionValid(c.KDF) {
		return internal.ErrInvalidKDFid
	}

	if !internal.IsHashFunctionValid(c.MAC) {
		return internal.ErrInvalidMACid
	}

	if !internal.IsHashFunctionValid(c.Hash) {
		return internal.ErrInvalidHASHid
	}

	if !internalKSF.IsValid(c.KSF) {
		return internal.ErrInvalidKSFid
	}

	return nil
}

// toInternal builds the internal representation of the configuration parameters.
func (c *Configuration) toInternal() (*internal.Configuration, error) {
	if c == nil {
		c = DefaultConfiguration()
	}

	if err := c.verify(); err != nil {
		return nil, ErrConfiguration.Join(err)
	}

	mac := internal.NewMac(c.MAC)

	return &internal.Configuration{
		OPRF:         c.OPRF.OPRF(),
		Group:        c.AKE.Group(),
		KSF:          internalKSF.NewKSF(c.KSF),
		KDF:          internal.NewKDF(c.KDF),
		MAC:          mac,
		Hash:         internal.NewHash(c.Hash),
		NonceLen:     internal.NonceLength,
		EnvelopeSize: internal.NonceLength + mac.Size(),
	}, nil
}

// Serialize returns the byte encoding of the Configuration structure.
func (c *Configuration) Serialize() []byte {
	return []byte{
		byte(c.KSF),
		byte(c.KDF),
		byte(c.MAC),
		byte(c.Hash),
		byte(c.OPRF),
		byte(c.AKE),
	}
}

// DeserializeConfiguration decodes the input and returns a Parameter structure.
func DeserializeConfiguration(encoded []byte) (*Configuration, error) {
	if len(encoded) != confLength {
		return nil, ErrConfiguration.Join(internal.ErrConfigurationInvalidLength)
	}

	c := &Configuration{
		OPRF: Group(encoded[4]),
		KDF:  crypto.Hash(encoded[1]),
		MAC:  crypto.Hash(encoded[2]),
		Hash: crypto.Hash(encoded[3]),
		KSF:  ksf.Identifier(encoded[0]),
		AKE:  Group(encoded[5]),
	}

	if err := c.verify(); err != nil {
		return nil, ErrConfiguration.Join(err)
	}

	return c, nil
}
