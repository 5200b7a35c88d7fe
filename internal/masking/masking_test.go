// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package masking

import (
	"bytes"
	"crypto"
	"testing"

	group "github.com/bytemare/crypto"

	"github.com/bytemare/opaque-engine/internal"
	"github.com/bytemare/opaque-engine/internal/keyrecovery"
	"github.com/bytemare/opaque-engine/internal/ksf"
	"github.com/bytemare/opaque-engine/internal/oprf"
)

func TestMasking(t *testing.T) {
	conf := &internal.Configuration{
		KSF:          ksf.NewKSF(0),
		KDF:          internal.NewKDF(crypto.SHA512),
		MAC:          internal.NewMac(crypto.SHA512),
		Hash:         internal.NewHash(crypto.SHA512),
		OPRF:         oprf.Ristretto255Sha512,
		Group:        group.Ristretto255Sha512,
		NonceLen:     internal.NonceLength,
		EnvelopeSize: internal.NonceLength + 64,
	}

	rpw := internal.RandomBytes(conf.KDF.Size())
	nonce := internal.RandomBytes(conf.NonceLen)
	pks := conf.Group.Base().Multiply(conf.Group.NewScalar().Random()).Encode()
	env := internal.RandomBytes(keyrecovery.Size(conf))

	masked := Mask(conf, nonce, keyrecovery.MaskingKey(conf, rpw), pks, env)
	if len(masked) != conf.AkePointLength()+conf.EnvelopeSize {
		t.Fatalf("unexpected masked response length %d", len(masked))
	}

	_, pksBytes, envelope, err := Unmask(conf, rpw, nonce, masked)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(pks, pksBytes) || !bytes.Equal(env, envelope.Serialize()) {
		t.Fatal("unmasked response differs from the original")
	}

	// Another nonce yields another pad.
	if bytes.Equal(masked, Mask(conf, internal.RandomBytes(conf.NonceLen), keyrecovery.MaskingKey(conf, rpw), pks, env)) {
		t.Fatal("masking does not depend on the nonce")
	}
}
