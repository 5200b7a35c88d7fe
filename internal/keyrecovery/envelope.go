// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package keyrecovery provides utility functions and structures allowing credential management.
package keyrecovery

import (
	"slices"

	group "github.com/bytemare/crypto"

	"github.com/bytemare/opaque-engine/internal"
	"github.com/bytemare/opaque-engine/internal/encoding"
	"github.com/bytemare/opaque-engine/internal/oprf"
	"github.com/bytemare/opaque-engine/internal/tag"
)

// Envelope represents the OPAQUE envelope.
type Envelope struct {
	Nonce   []byte
	AuthTag []byte
}

// Serialize returns the byte serialization of the envelope.
func (e *Envelope) Serialize() []byte {
	return encoding.Concat(e.Nonce, e.AuthTag)
}

// Size returns the length of a serialized envelope under conf.
func Size(conf *internal.Configuration) int {
	return conf.NonceLen + conf.MAC.Size()
}

// Parse splits a serialized envelope, which must be exactly Size(conf) bytes long.
func Parse(conf *internal.Configuration, input []byte) (*Envelope, error) {
	if len(input) != Size(conf) {
		return nil, internal.ErrInvalidEncodingLength
	}

	return &Envelope{
		Nonce:   slices.Clone(input[:conf.NonceLen]),
		AuthTag: slices.Clone(input[conf.NonceLen:]),
	}, nil
}

// MaskingKey derives the key used to mask the credential response.
func MaskingKey(conf *internal.Configuration, randomizedPassword []byte) []byte {
	return conf.KDF.Expand(randomizedPassword, []byte(tag.MaskingKey), conf.Hash.Size())
}

func exportKey(conf *internal.Configuration, randomizedPassword, nonce []byte) []byte {
	return conf.KDF.Expand(randomizedPassword, encoding.SuffixString(nonce, tag.ExportKey), conf.KDF.Size())
}

func authTag(conf *internal.Configuration, randomizedPassword, nonce, ctc []byte) []byte {
	authKey := conf.KDF.Expand(randomizedPassword, encoding.SuffixString(nonce, tag.AuthKey), conf.KDF.Size())
	defer internal.ClearSlice(&authKey)

	return conf.MAC.MAC(authKey, encoding.Concat(nonce, ctc))
}

// cleartextCredentials assumes that clientPublicKey, serverPublicKey are non-nil valid group elements.
// A nil identity defaults to the corresponding public key.
func cleartextCredentials(clientPublicKey, serverPublicKey, clientIdentity, serverIdentity []byte) []byte {
	if clientIdentity == nil {
		clientIdentity = clientPublicKey
	}

	if serverIdentity == nil {
		serverIdentity = serverPublicKey
	}

	return encoding.Concat3(
		serverPublicKey,
		encoding.EncodeVector(serverIdentity),
		encoding.EncodeVector(clientIdentity),
	)
}

func deriveDiffieHellmanKeyPair(
	conf *internal.Configuration,
	randomizedPassword, nonce []byte,
) (*group.Scalar, *group.Element, error) {
	seed := conf.KDF.Expand(randomizedPassword, encoding.SuffixString(nonce, tag.ExpandPrivateKey), internal.SeedLength)
	defer internal.ClearSlice(&seed)

	return oprf.IDFromGroup(conf.Group).DeriveKeyPair(seed, []byte(tag.DeriveDiffieHellmanKeyPair))
}

// Store returns the client's Envelope, its public key, and the additional export key.
func Store(
	conf *internal.Configuration,
	randomizedPassword, serverPublicKey,
	clientIdentity, serverIdentity,
	nonce []byte,
) (env *Envelope, pku *group.Element, export []byte, err error) {
	sku, pku, err := deriveDiffieHellmanKeyPair(conf, randomizedPassword, nonce)
	if err != nil {
		return nil, nil, nil, err
	}

	internal.ClearScalar(&sku)

	ctc := cleartextCredentials(
		pku.Encode(),
		serverPublicKey,
		clientIdentity,
		serverIdentity,
	)
	auth := authTag(conf, randomizedPassword, nonce, ctc)
	export = exportKey(conf, randomizedPassword, nonce)

	env = &Envelope{
		Nonce:   slices.Clone(nonce),
		AuthTag: auth,
	}

	return env, pku, export, nil
}

// Recover returns the client's private and public key, as well as the secret export key.
// The error is always internal.ErrEnvelopeInvalidMac when the envelope does not authenticate.
func Recover(
	conf *internal.Configuration,
	randomizedPassword, serverPublicKey, clientIdentity, serverIdentity []byte,
	envelope *Envelope,
) (clientSecretKey *group.Scalar, clientPublicKey *group.Element, export []byte, err error) {
	clientSecretKey, clientPublicKey, err = deriveDiffieHellmanKeyPair(conf, randomizedPassword, envelope.Nonce)
	if err != nil {
		return nil, nil, nil, internal.ErrEnvelopeInvalidMac
	}

	ctc := cleartextCredentials(
		clientPublicKey.Encode(),
		serverPublicKey,
		clientIdentity,
		serverIdentity,
	)

	expectedTag := authTag(conf, randomizedPassword, envelope.Nonce, ctc)
	if !conf.MAC.Equal(expectedTag, envelope.AuthTag) {
		internal.ClearScalar(&clientSecretKey)
		return nil, nil, nil, internal.ErrEnvelopeInvalidMac
	}

	export = exportKey(conf, randomizedPassword, envelope.Nonce)

	return clientSecretKey, clientPublicKey, export, nil
}
