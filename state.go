// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package opaque

import (
	"slices"

	group "github.com/bytemare/crypto"
	"golang.org/x/crypto/cryptobyte"

	"github.com/bytemare/opaque-engine/internal"
)

// encodingVersion is the format version prepended to every encoded state, setup, and credential file.
const encodingVersion byte = 1

// kind tags the structure carried by an encoding, so that one cannot be taken for another.
type kind byte

const (
	kindClientRegistrationState kind = iota + 1
	kindClientLoginState
	kindServerLoginState
	kindServerSetup
	kindCredentialFile
)

func newBuilder(k kind, g group.Group) *cryptobyte.Builder {
	b := cryptobyte.NewBuilder(nil)
	b.AddUint8(encodingVersion)
	b.AddUint8(byte(k))
	b.AddUint8(byte(g))

	return b
}

func addVector(b *cryptobyte.Builder, v []byte) {
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(v)
	})
}

func build(b *cryptobyte.Builder) []byte {
	// Vectors are bounded by the configuration, so this never fails.
	return b.BytesOrPanic()
}

// readHeader checks the version, kind, and group of an encoding, and returns the remaining body.
func readHeader(input []byte, k kind, g group.Group) (cryptobyte.String, error) {
	s := cryptobyte.String(input)

	var version, encodedKind, encodedGroup uint8
	if !s.ReadUint8(&version) || !s.ReadUint8(&encodedKind) || !s.ReadUint8(&encodedGroup) {
		return nil, internal.ErrInvalidEncodingLength
	}

	if version != encodingVersion {
		return nil, internal.ErrInvalidVersion
	}

	if kind(encodedKind) != k {
		return nil, internal.ErrInvalidKind
	}

	if group.Group(encodedGroup) != g {
		return nil, internal.ErrWrongGroup
	}

	return s, nil
}

// readVectors reads exactly len(out) length-prefixed vectors and expects nothing to remain.
func readVectors(s cryptobyte.String, out ...*[]byte) error {
	for _, o := range out {
		var v cryptobyte.String
		if !s.ReadUint16LengthPrefixed(&v) {
			return internal.ErrInvalidEncodingLength
		}

		*o = slices.Clone(v)
	}

	if !s.Empty() {
		return internal.ErrInvalidEncodingLength
	}

	return nil
}

// ClientRegistrationState holds the client's secret between RegistrationStart and RegistrationFinish.
type ClientRegistrationState struct {
	blind     *group.Scalar
	oprfGroup group.Group
}

// Serialize returns the versioned byte encoding of the state.
func (s *ClientRegistrationState) Serialize() []byte {
	b := newBuilder(kindClientRegistrationState, s.oprfGroup)
	addVector(b, s.blind.Encode())

	return build(b)
}

// Flush attempts to zero out the state's secrets. The state can't be used afterwards.
func (s *ClientRegistrationState) Flush() {
	internal.ClearScalar(&s.blind)
}

// ClientLoginState holds the client's secrets between LoginStart and LoginFinish.
type ClientLoginState struct {
	blind     *group.Scalar
	esk       *group.Scalar
	ke1       []byte
	oprfGroup group.Group
	akeGroup  group.Group
}

// Serialize returns the versioned byte encoding of the state. The header carries the AKE group, followed by the
// OPRF group.
func (s *ClientLoginState) Serialize() []byte {
	b := newBuilder(kindClientLoginState, s.akeGroup)
	b.AddUint8(byte(s.oprfGroup))
	addVector(b, s.blind.Encode())
	addVector(b, s.esk.Encode())
	addVector(b, s.ke1)

	return build(b)
}

// Flush attempts to zero out the state's secrets. The state can't be used afterwards.
func (s *ClientLoginState) Flush() {
	internal.ClearScalar(&s.blind)
	internal.ClearScalar(&s.esk)
	internal.ClearSlice(&s.ke1)
}

// ServerLoginState holds the server's secrets between LoginStart and LoginFinish.
type ServerLoginState struct {
	expectedClientMac []byte
	sessionKey        []byte
	akeGroup          group.Group
}

// Serialize returns the versioned byte encoding of the state.
func (s *ServerLoginState) Serialize() []byte {
	b := newBuilder(kindServerLoginState, s.akeGroup)
	addVector(b, s.expectedClientMac)
	addVector(b, s.sessionKey)

	return build(b)
}

// Flush attempts to zero out the state's secrets. The state can't be used afterwards.
func (s *ServerLoginState) Flush() {
	internal.ClearSlice(&s.expectedClientMac)
	internal.ClearSlice(&s.sessionKey)
}

// ClientRegistrationState decodes a serialized client registration state.
func (d *Deserializer) ClientRegistrationState(input []byte) (*ClientRegistrationState, error) {
	s, err := readHeader(input, kindClientRegistrationState, d.conf.OPRF.Group())
	if err != nil {
		return nil, ErrState.Join(err)
	}

	var blind []byte
	if err = readVectors(s, &blind); err != nil {
		return nil, ErrState.Join(err)
	}

	defer internal.ClearSlice(&blind)

	b, err := internal.DecodeScalar(d.conf.OPRF.Group(), blind)
	if err != nil {
		return nil, ErrState.Join(internal.ErrInvalidBlind, err)
	}

	return &ClientRegistrationState{blind: b, oprfGroup: d.conf.OPRF.Group()}, nil
}

// ClientLoginState decodes a serialized client login state.
func (d *Deserializer) ClientLoginState(input []byte) (*ClientLoginState, error) {
	s, err := readHeader(input, kindClientLoginState, d.conf.Group)
	if err != nil {
		return nil, ErrState.Join(err)
	}

	var oprfGroup uint8
	if !s.ReadUint8(&oprfGroup) {
		return nil, ErrState.Join(internal.ErrInvalidEncodingLength)
	}

	if group.Group(oprfGroup) != d.conf.OPRF.Group() {
		return nil, ErrState.Join(internal.ErrWrongGroup)
	}

	var blind, esk, ke1 []byte
	if err = readVectors(s, &blind, &esk, &ke1); err != nil {
		return nil, ErrState.Join(err)
	}

	defer internal.ClearSlice(&blind)
	defer internal.ClearSlice(&esk)

	b, err := internal.DecodeScalar(d.conf.OPRF.Group(), blind)
	if err != nil {
		return nil, ErrState.Join(internal.ErrInvalidBlind, err)
	}

	e, err := internal.DecodeScalar(d.conf.Group, esk)
	if err != nil {
		return nil, ErrState.Join(internal.ErrInvalidPrivateKey, err)
	}

	if _, err = d.KE1(ke1); err != nil {
		return nil, ErrState.Join(err)
	}

	return &ClientLoginState{
		blind:     b,
		esk:       e,
		ke1:       ke1,
		oprfGroup: d.conf.OPRF.Group(),
		akeGroup:  d.conf.Group,
	}, nil
}

// ServerLoginState decodes a serialized server login state.
func (d *Deserializer) ServerLoginState(input []byte) (*ServerLoginState, error) {
	s, err := readHeader(input, kindServerLoginState, d.conf.Group)
	if err != nil {
		return nil, ErrState.Join(err)
	}

	var mac, sessionKey []byte
	if err = readVectors(s, &mac, &sessionKey); err != nil {
		return nil, ErrState.Join(err)
	}

	if len(mac) != d.conf.MAC.Size() || len(sessionKey) != d.conf.KDF.Size() {
		return nil, ErrState.Join(internal.ErrInvalidEncodingLength)
	}

	return &ServerLoginState{expectedClientMac: mac, sessionKey: sessionKey, akeGroup: d.conf.Group}, nil
}
