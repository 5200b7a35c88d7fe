// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package opaque

import (
	"errors"
	"slices"

	group "github.com/bytemare/crypto"
	"golang.org/x/crypto/cryptobyte"

	"github.com/bytemare/opaque-engine/internal"
	"github.com/bytemare/opaque-engine/internal/keyrecovery"
	"github.com/bytemare/opaque-engine/message"
)

// Deserializer exposes the message deserialization functions. Every length is checked against the configuration,
// and every group element is checked to be a valid non-identity element of its group.
type Deserializer struct {
	conf *internal.Configuration
}

// reader consumes a message of known length field by field. The first failure sticks, and later reads return nil.
type reader struct {
	err error
	s   cryptobyte.String
}

func newReader(input []byte, length int) (*reader, error) {
	if len(input) != length {
		return nil, internal.ErrInvalidEncodingLength
	}

	return &reader{s: cryptobyte.String(input)}, nil
}

func (r *reader) bytes(n int) []byte {
	var out []byte
	if r.err == nil && !r.s.ReadBytes(&out, n) {
		r.err = internal.ErrInvalidEncodingLength
	}

	return slices.Clone(out)
}

// element decodes the next element of g, tagging a decoding failure with cause.
func (r *reader) element(g group.Group, cause error) *group.Element {
	encoded := r.bytes(g.ElementLength())
	if r.err != nil {
		return nil
	}

	e, err := internal.DecodeElement(g, encoded)
	if err != nil {
		r.err = errors.Join(cause, err)
	}

	return e
}

func (d *Deserializer) oprfGroup() group.Group {
	return d.conf.OPRF.Group()
}

func (d *Deserializer) registrationResponseLength() int {
	return d.conf.OPRFPointLength() + d.conf.AkePointLength()
}

func (d *Deserializer) recordLength() int {
	return d.conf.AkePointLength() + d.conf.Hash.Size() + d.conf.EnvelopeSize
}

func (d *Deserializer) ke1Length() int {
	return d.conf.OPRFPointLength() + d.conf.NonceLen + d.conf.AkePointLength()
}

func (d *Deserializer) maskedResponseLength() int {
	return d.conf.AkePointLength() + d.conf.EnvelopeSize
}

func (d *Deserializer) ke2Length() int {
	credentialResponse := d.conf.OPRFPointLength() + d.conf.NonceLen + d.maskedResponseLength()
	return credentialResponse + d.conf.NonceLen + d.conf.AkePointLength() + d.conf.MAC.Size()
}

// RegistrationRequest takes a serialized RegistrationRequest message and returns a deserialized
// RegistrationRequest structure.
func (d *Deserializer) RegistrationRequest(registrationRequest []byte) (*message.RegistrationRequest, error) {
	r, err := newReader(registrationRequest, d.conf.OPRFPointLength())
	if err != nil {
		return nil, ErrRegistrationRequest.Join(err)
	}

	m := &message.RegistrationRequest{BlindedMessage: r.element(d.oprfGroup(), internal.ErrInvalidBlindedData)}
	if r.err != nil {
		return nil, ErrRegistrationRequest.Join(r.err)
	}

	return m, nil
}

// RegistrationResponse takes a serialized RegistrationResponse message and returns a deserialized
// RegistrationResponse structure.
func (d *Deserializer) RegistrationResponse(registrationResponse []byte) (*message.RegistrationResponse, error) {
	r, err := newReader(registrationResponse, d.registrationResponseLength())
	if err != nil {
		return nil, ErrRegistrationResponse.Join(err)
	}

	evaluated := r.element(d.oprfGroup(), internal.ErrInvalidEvaluatedData)
	pksBytes := r.bytes(d.conf.AkePointLength())

	if r.err != nil {
		return nil, ErrRegistrationResponse.Join(r.err)
	}

	pks, err := d.decodeServerPublicKey(pksBytes)
	if err != nil {
		return nil, ErrRegistrationResponse.Join(err)
	}

	return &message.RegistrationResponse{EvaluatedMessage: evaluated, Pks: pks}, nil
}

// RegistrationRecord takes a serialized RegistrationRecord message and returns a deserialized
// RegistrationRecord structure.
func (d *Deserializer) RegistrationRecord(record []byte) (*message.RegistrationRecord, error) {
	r, err := newReader(record, d.recordLength())
	if err != nil {
		return nil, ErrRegistrationRecord.Join(err)
	}

	m := &message.RegistrationRecord{
		PublicKey:  r.element(d.conf.Group, internal.ErrInvalidClientPublicKey),
		MaskingKey: r.bytes(d.conf.Hash.Size()),
		Envelope:   r.bytes(d.conf.EnvelopeSize),
	}

	if r.err != nil {
		return nil, ErrRegistrationRecord.Join(r.err)
	}

	return m, nil
}

// KE1 takes a serialized KE1 message and returns a deserialized KE1 structure.
func (d *Deserializer) KE1(ke1 []byte) (*message.KE1, error) {
	r, err := newReader(ke1, d.ke1Length())
	if err != nil {
		return nil, ErrKE1.Join(err)
	}

	m := &message.KE1{
		CredentialRequest: &message.CredentialRequest{
			BlindedMessage: r.element(d.oprfGroup(), internal.ErrInvalidBlindedData),
		},
		ClientNonce:          r.bytes(d.conf.NonceLen),
		ClientPublicKeyshare: r.element(d.conf.Group, internal.ErrInvalidClientEPK),
	}

	if r.err != nil {
		return nil, ErrKE1.Join(r.err)
	}

	return m, nil
}

// KE2 takes a serialized KE2 message and returns a deserialized KE2 structure.
func (d *Deserializer) KE2(ke2 []byte) (*message.KE2, error) {
	r, err := newReader(ke2, d.ke2Length())
	if err != nil {
		return nil, ErrKE2.Join(err)
	}

	m := &message.KE2{
		CredentialResponse: &message.CredentialResponse{
			EvaluatedMessage: r.element(d.oprfGroup(), internal.ErrInvalidEvaluatedData),
			MaskingNonce:     r.bytes(d.conf.NonceLen),
			MaskedResponse:   r.bytes(d.maskedResponseLength()),
		},
		ServerNonce:          r.bytes(d.conf.NonceLen),
		ServerPublicKeyshare: r.element(d.conf.Group, internal.ErrInvalidServerEPK),
		ServerMac:            r.bytes(d.conf.MAC.Size()),
	}

	if r.err != nil {
		return nil, ErrKE2.Join(r.err)
	}

	return m, nil
}

// KE3 takes a serialized KE3 message and returns a deserialized KE3 structure.
func (d *Deserializer) KE3(ke3 []byte) (*message.KE3, error) {
	if len(ke3) != d.conf.MAC.Size() {
		return nil, ErrKE3.Join(internal.ErrInvalidEncodingLength)
	}

	return &message.KE3{ClientMac: slices.Clone(ke3)}, nil
}

// decodeServerPublicKey decodes a server public key, which can be neither the identity nor the group generator.
func (d *Deserializer) decodeServerPublicKey(encoded []byte) (*group.Element, error) {
	pks, err := internal.DecodeElement(d.conf.Group, encoded)
	if err != nil {
		return nil, errors.Join(internal.ErrInvalidServerPublicKey, err)
	}

	if slices.Equal(encoded, d.conf.Group.Base().Encode()) {
		return nil, errors.Join(internal.ErrInvalidServerPublicKey, internal.ErrElementIsBase)
	}

	return pks, nil
}

// DecodeAkePrivateKey takes a serialized private key (a scalar) and attempts to return it's decoded form.
func (d *Deserializer) DecodeAkePrivateKey(encoded []byte) (*group.Scalar, error) {
	sk, err := internal.DecodeScalar(d.conf.Group, encoded)
	if err != nil {
		return nil, errors.Join(internal.ErrInvalidPrivateKey, err)
	}

	return sk, nil
}

// DecodeAkePublicKey takes a serialized public key (a point) and attempts to return it's decoded form.
func (d *Deserializer) DecodeAkePublicKey(encoded []byte) (*group.Element, error) {
	return internal.DecodeElement(d.conf.Group, encoded)
}

// envelope parses the envelope of a registration record.
func (d *Deserializer) envelope(record *message.RegistrationRecord) (*keyrecovery.Envelope, error) {
	return keyrecovery.Parse(d.conf, record.Envelope)
}
