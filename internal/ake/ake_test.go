// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package ake

import (
	"bytes"
	"crypto"
	"errors"
	"testing"

	group "github.com/bytemare/crypto"

	"github.com/bytemare/opaque-engine/internal"
	"github.com/bytemare/opaque-engine/internal/ksf"
	"github.com/bytemare/opaque-engine/internal/oprf"
	"github.com/bytemare/opaque-engine/message"
)

func testConfiguration() *internal.Configuration {
	return &internal.Configuration{
		KSF:          ksf.NewKSF(0),
		KDF:          internal.NewKDF(crypto.SHA512),
		MAC:          internal.NewMac(crypto.SHA512),
		Hash:         internal.NewHash(crypto.SHA512),
		OPRF:         oprf.Ristretto255Sha512,
		Group:        group.Ristretto255Sha512,
		NonceLen:     internal.NonceLength,
		EnvelopeSize: internal.NonceLength + 64,
	}
}

type exchange struct {
	conf       *internal.Configuration
	skc, sks   *group.Scalar
	pkc, pks   *group.Element
	identities *Identities
}

func newExchange(t *testing.T) *exchange {
	conf := testConfiguration()

	skc, pkc, err := KeyGen(conf.Group)
	if err != nil {
		t.Fatal(err)
	}

	sks, pks, err := KeyGen(conf.Group)
	if err != nil {
		t.Fatal(err)
	}

	return &exchange{
		conf:       conf,
		skc:        skc,
		pkc:        pkc,
		sks:        sks,
		pks:        pks,
		identities: &Identities{ClientIdentity: []byte("pippo"), ServerIdentity: []byte("servername")},
	}
}

func (e *exchange) run(t *testing.T, clientContext, serverContext []byte) (*message.KE3, []byte, []byte, []byte, error) {
	g := e.conf.Group
	ke1 := &message.KE1{
		CredentialRequest: &message.CredentialRequest{BlindedMessage: g.Base().Multiply(g.NewScalar().Random())},
	}

	esk, err := Start(e.conf, Options{}, ke1)
	if err != nil {
		t.Fatal(err)
	}

	response := &message.CredentialResponse{
		EvaluatedMessage: g.Base().Multiply(g.NewScalar().Random()),
		MaskingNonce:     internal.RandomBytes(e.conf.NonceLen),
		MaskedResponse:   internal.RandomBytes(g.ElementLength() + e.conf.EnvelopeSize),
	}

	ke2, serverSession, expectedMac, err := Response(
		e.conf, e.identities, serverContext, e.sks, e.pkc, ke1, response, Options{},
	)
	if err != nil {
		t.Fatal(err)
	}

	ke3, clientSession, err := Finalize(e.conf, e.identities, clientContext, e.skc, esk, e.pks, ke1.Serialize(), ke2)

	return ke3, clientSession, serverSession, expectedMac, err
}

func TestThreeDH(t *testing.T) {
	e := newExchange(t)

	ke3, clientSession, serverSession, expectedMac, err := e.run(t, []byte("context"), []byte("context"))
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(clientSession, serverSession) {
		t.Fatal("session keys differ")
	}

	if len(clientSession) != e.conf.KDF.Size() {
		t.Fatalf("unexpected session key length %d", len(clientSession))
	}

	if err = Verify(e.conf, expectedMac, ke3); err != nil {
		t.Fatal(err)
	}

	if err = Verify(e.conf, expectedMac, &message.KE3{ClientMac: make([]byte, len(expectedMac))}); !errors.Is(
		err,
		internal.ErrInvalidClientMac,
	) {
		t.Fatalf("expected %v, got %v", internal.ErrInvalidClientMac, err)
	}
}

func TestThreeDHContextBinding(t *testing.T) {
	e := newExchange(t)

	if _, _, _, _, err := e.run(t, []byte("context"), []byte("other")); !errors.Is(err, internal.ErrInvalidServerMac) {
		t.Fatalf("expected %v, got %v", internal.ErrInvalidServerMac, err)
	}
}

func TestKeyGenSeed(t *testing.T) {
	g := group.Ristretto255Sha512
	seed := []byte("0123456789abcdef0123456789abcdef")

	sk1, pk1, err := KeyGen(g, seed)
	if err != nil {
		t.Fatal(err)
	}

	sk2, pk2, err := KeyGen(g, seed)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(sk1.Encode(), sk2.Encode()) || !bytes.Equal(pk1.Encode(), pk2.Encode()) {
		t.Fatal("seeded key generation is not deterministic")
	}
}

func TestSetIdentities(t *testing.T) {
	id := (&Identities{}).SetIdentities([]byte("client"), []byte("server"))
	if string(id.ClientIdentity) != "client" || string(id.ServerIdentity) != "server" {
		t.Fatal("identities not defaulted to public keys")
	}

	id = (&Identities{ClientIdentity: []byte("pippo")}).SetIdentities([]byte("client"), []byte("server"))
	if string(id.ClientIdentity) != "pippo" {
		t.Fatal("explicit identity overwritten")
	}
}
