// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package ake provides high-level functions for the 3DH AKE.
package ake

import (
	"slices"

	group "github.com/bytemare/crypto"

	"github.com/bytemare/opaque-engine/internal"
	"github.com/bytemare/opaque-engine/internal/encoding"
	"github.com/bytemare/opaque-engine/internal/oprf"
	"github.com/bytemare/opaque-engine/internal/tag"
	"github.com/bytemare/opaque-engine/message"
)

// KeyGen returns private and public keys in the group. Without a seed, a random one is used.
func KeyGen(g group.Group, seed ...[]byte) (*group.Scalar, *group.Element, error) {
	var s []byte
	if len(seed) != 0 && len(seed[0]) > 0 {
		s = seed[0]
	} else {
		s = internal.RandomBytes(internal.SeedLength)
		defer internal.ClearSlice(&s)
	}

	return oprf.IDFromGroup(g).DeriveKeyPair(s, []byte(tag.DeriveDiffieHellmanKeyPair))
}

func diffieHellman(s *group.Scalar, e *group.Element) []byte {
	return e.Copy().Multiply(s).Encode()
}

// Identities holds the client and server identities.
type Identities struct {
	ClientIdentity []byte
	ServerIdentity []byte
}

// SetIdentities sets the client and server identities to their respective public key if not set.
func (id *Identities) SetIdentities(clientPublicKey, serverPublicKey []byte) *Identities {
	if id.ClientIdentity == nil {
		id.ClientIdentity = clientPublicKey
	}

	if id.ServerIdentity == nil {
		id.ServerIdentity = serverPublicKey
	}

	return id
}

// Options enable setting optional ephemeral values, which default to secure random values if not set.
type Options struct {
	EphemeralSecretKeyShare *group.Scalar
	Nonce                   []byte
}

// ephemeralKeyShare returns the ephemeral secret key share and its public key share, and the nonce.
func (o Options) ephemeralKeyShare(conf *internal.Configuration) (*group.Scalar, *group.Element, []byte, error) {
	nonce := slices.Clone(o.Nonce)
	if len(nonce) == 0 {
		nonce = internal.RandomBytes(conf.NonceLen)
	}

	if o.EphemeralSecretKeyShare != nil {
		esk := o.EphemeralSecretKeyShare.Copy()
		return esk, conf.Group.Base().Multiply(esk), nonce, nil
	}

	esk, epk, err := KeyGen(conf.Group)
	if err != nil {
		return nil, nil, nil, err
	}

	return esk, epk, nonce, nil
}

func k3dh(
	p1 *group.Element,
	s1 *group.Scalar,
	p2 *group.Element,
	s2 *group.Scalar,
	p3 *group.Element,
	s3 *group.Scalar,
) []byte {
	return encoding.Concat3(diffieHellman(s1, p1), diffieHellman(s2, p2), diffieHellman(s3, p3))
}

// core3DH runs the key schedule on the shared secret ikm and the transcript of the exchange.
func core3DH(
	conf *internal.Configuration, identities *Identities, context, ikm, ke1 []byte, ke2 *message.KE2,
) (sessionSecret, macS, macC []byte) {
	transcript := conf.Hash.Transcript()
	initTranscript(transcript, identities, context, ke1, ke2)

	serverMacKey, clientMacKey, sessionSecret := deriveKeys(conf.KDF, ikm, transcript.Sum()) // preamble
	defer internal.ClearSlice(&serverMacKey)
	defer internal.ClearSlice(&clientMacKey)

	serverMac := conf.MAC.MAC(serverMacKey, transcript.Sum())
	transcript.Write(serverMac)
	clientMac := conf.MAC.MAC(clientMacKey, transcript.Sum())

	return sessionSecret, serverMac, clientMac
}

func buildLabel(length int, label, context []byte) []byte {
	return encoding.Concat3(
		encoding.I2OSP(length, 2),
		encoding.EncodeVectorLen(encoding.Concat([]byte(tag.LabelPrefix), label), 1),
		encoding.EncodeVectorLen(context, 1))
}

func expandLabel(h *internal.KDF, secret, label, context []byte) []byte {
	hkdfLabel := buildLabel(h.Size(), label, context)
	return h.Expand(secret, hkdfLabel, h.Size())
}

func deriveSecret(h *internal.KDF, secret, label, context []byte) []byte {
	return expandLabel(h, secret, label, context)
}

func initTranscript(
	transcript *internal.Transcript,
	identities *Identities,
	context, ke1 []byte,
	ke2 *message.KE2,
) {
	transcript.Write([]byte(tag.VersionTag),
		encoding.EncodeVector(context),
		encoding.EncodeVector(identities.ClientIdentity),
		ke1,
		encoding.EncodeVector(identities.ServerIdentity),
		ke2.CredentialResponse.Serialize(),
		ke2.ServerNonce,
		ke2.ServerPublicKeyshare.Encode(),
	)
}

func deriveKeys(h *internal.KDF, ikm, context []byte) (serverMacKey, clientMacKey, sessionSecret []byte) {
	prk := h.Extract(nil, ikm)
	defer internal.ClearSlice(&prk)

	handshakeSecret := deriveSecret(h, prk, []byte(tag.Handshake), context)
	defer internal.ClearSlice(&handshakeSecret)

	sessionSecret = deriveSecret(h, prk, []byte(tag.SessionKey), context)
	serverMacKey = expandLabel(h, handshakeSecret, []byte(tag.MacServer), nil)
	clientMacKey = expandLabel(h, handshakeSecret, []byte(tag.MacClient), nil)

	return serverMacKey, clientMacKey, sessionSecret
}
