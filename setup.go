// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package opaque

import (
	"encoding/hex"
	"errors"
	"slices"

	group "github.com/bytemare/crypto"

	"github.com/bytemare/opaque-engine/internal"
	"github.com/bytemare/opaque-engine/internal/ake"
	"github.com/bytemare/opaque-engine/message"
)

// ServerSetup holds the server's long-term key material, shared by all registration and login sessions of a
// deployment. It must not be modified once in use, and can then be shared across goroutines.
type ServerSetup struct {
	// The server's long-term secret key.
	PrivateKey *group.Scalar

	// The server's public key in bytes.
	PublicKeyBytes []byte

	// The seed to derive the clients' OPRF keys with.
	OPRFSeed []byte

	// The server's identity. If empty, servername arguments take precedence, and the public key is used otherwise.
	Identity []byte

	// FakeClientPublicKey is the public key given to unregistered clients, so that their responses cost the same as
	// genuine ones.
	FakeClientPublicKey []byte

	fakeClientPublicKey *group.Element
	group               group.Group
}

// NewServerSetup returns a ServerSetup for the configuration. If privateKey is empty, a new key pair is generated.
// Otherwise, privateKey must be the canonical encoding of a non-zero scalar of the AKE group. A fresh OPRF seed is
// always generated, as is the public key given to unregistered clients.
func NewServerSetup(c *Configuration, privateKey []byte) (*ServerSetup, error) {
	if c == nil {
		c = DefaultConfiguration()
	}

	conf, err := c.toInternal()
	if err != nil {
		return nil, err
	}

	var (
		sk *group.Scalar
		pk *group.Element
	)

	if len(privateKey) == 0 {
		sk, pk, err = ake.KeyGen(conf.Group)
		if err != nil {
			return nil, ErrServerSetup.Join(err)
		}
	} else {
		sk, err = internal.DecodeScalar(conf.Group, privateKey)
		if err != nil {
			return nil, ErrServerSetup.Join(internal.ErrInvalidPrivateKey, err)
		}

		pk = conf.Group.Base().Multiply(sk)
		if slices.Equal(pk.Encode(), conf.Group.Base().Encode()) {
			return nil, ErrServerSetup.Join(internal.ErrInvalidPrivateKey, internal.ErrElementIsBase)
		}
	}

	_, fake, err := ake.KeyGen(conf.Group)
	if err != nil {
		return nil, ErrServerSetup.Join(err)
	}

	return &ServerSetup{
		PrivateKey:          sk,
		PublicKeyBytes:      pk.Encode(),
		OPRFSeed:            c.GenerateOPRFSeed(),
		FakeClientPublicKey: fake.Encode(),
		fakeClientPublicKey: fake,
		group:               conf.Group,
	}, nil
}

// Flush does a best-effort attempt to clear the server setup from memory. It is not guaranteed that the contents
// are correctly wiped from memory.
func (s *ServerSetup) Flush() {
	internal.ClearScalar(&s.PrivateKey)
	internal.ClearSlice(&s.PublicKeyBytes)
	internal.ClearSlice(&s.OPRFSeed)
	internal.ClearSlice(&s.Identity)
	internal.ClearSlice(&s.FakeClientPublicKey)
	s.fakeClientPublicKey = nil
}

// Serialize returns the versioned byte encoding of the server setup. It fails if the setup is incomplete, or if the
// identity is longer than 65535 bytes.
func (s *ServerSetup) Serialize() ([]byte, error) {
	if s == nil || s.PrivateKey == nil {
		return nil, ErrServerSetup.Join(internal.ErrNilSetup)
	}

	if len(s.Identity) > internal.MaxVectorLength {
		return nil, ErrServerSetup.Join(internal.ErrIdentityTooLong)
	}

	b := newBuilder(kindServerSetup, s.group)
	addVector(b, s.PrivateKey.Encode())
	addVector(b, s.PublicKeyBytes)
	addVector(b, s.OPRFSeed)
	addVector(b, s.Identity)
	addVector(b, s.FakeClientPublicKey)

	return b.Bytes()
}

// Hex encodes the server setup into a hex string.
func (s *ServerSetup) Hex() (string, error) {
	encoded, err := s.Serialize()
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(encoded), nil
}

// fakeCredentialFile returns a credential file for a username that is not registered. Only the masking key is
// drawn per call, so no group operation runs that a registered client's login wouldn't.
func (s *ServerSetup) fakeCredentialFile(conf *internal.Configuration) *CredentialFile {
	return newCredentialFile(conf, &message.RegistrationRecord{
		PublicKey:  s.fakeClientPublicKey,
		MaskingKey: internal.RandomBytes(conf.Hash.Size()),
		Envelope:   make([]byte, conf.EnvelopeSize),
	})
}

// check verifies that the setup is usable with conf.
func (s *ServerSetup) check(conf *internal.Configuration) error {
	if s == nil || s.PrivateKey == nil {
		return internal.ErrNilSetup
	}

	if s.group != conf.Group {
		return internal.ErrWrongGroup
	}

	if len(s.OPRFSeed) != conf.Hash.Size() {
		return internal.ErrInvalidOPRFSeedLength
	}

	if len(s.Identity) > internal.MaxVectorLength {
		return internal.ErrIdentityTooLong
	}

	if s.fakeClientPublicKey == nil {
		return internal.ErrInvalidFakePublicKey
	}

	return nil
}

// ServerSetup decodes a serialized server setup, and verifies that the public key matches the private key.
func (d *Deserializer) ServerSetup(input []byte) (*ServerSetup, error) {
	s, err := readHeader(input, kindServerSetup, d.conf.Group)
	if err != nil {
		return nil, ErrServerSetup.Join(err)
	}

	var skBytes, pkBytes, seed, id, fakeBytes []byte
	if err = readVectors(s, &skBytes, &pkBytes, &seed, &id, &fakeBytes); err != nil {
		return nil, ErrServerSetup.Join(err)
	}

	defer internal.ClearSlice(&skBytes)

	sk, err := internal.DecodeScalar(d.conf.Group, skBytes)
	if err != nil {
		return nil, ErrServerSetup.Join(internal.ErrInvalidPrivateKey, err)
	}

	if _, err = d.decodeServerPublicKey(pkBytes); err != nil {
		return nil, ErrServerSetup.Join(err)
	}

	if !slices.Equal(pkBytes, d.conf.Group.Base().Multiply(sk).Encode()) {
		return nil, ErrServerSetup.Join(internal.ErrInvalidServerPublicKey)
	}

	if len(seed) != d.conf.Hash.Size() {
		return nil, ErrServerSetup.Join(internal.ErrInvalidOPRFSeedLength)
	}

	fake, err := internal.DecodeElement(d.conf.Group, fakeBytes)
	if err != nil {
		return nil, ErrServerSetup.Join(internal.ErrInvalidFakePublicKey, err)
	}

	if len(id) == 0 {
		id = nil
	}

	return &ServerSetup{
		PrivateKey:          sk,
		PublicKeyBytes:      pkBytes,
		OPRFSeed:            seed,
		Identity:            id,
		FakeClientPublicKey: fakeBytes,
		fakeClientPublicKey: fake,
		group:               d.conf.Group,
	}, nil
}

// ServerSetupHex decodes the server setup from a hex string.
func (d *Deserializer) ServerSetupHex(input string) (*ServerSetup, error) {
	if input == "" {
		return nil, ErrServerSetup.Join(internal.ErrDecodingEmptyHex)
	}

	decoded, err := hex.DecodeString(input)
	if err != nil {
		return nil, ErrServerSetup.Join(errors.Join(internal.ErrInvalidEncodingLength, err))
	}

	return d.ServerSetup(decoded)
}
