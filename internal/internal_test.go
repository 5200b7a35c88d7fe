// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package internal

import (
	"bytes"
	"crypto"
	"errors"
	"testing"

	group "github.com/bytemare/crypto"
)

var groups = []group.Group{group.Ristretto255Sha512, group.P256Sha256, group.P384Sha384, group.P521Sha512}

func TestClearScalar(t *testing.T) {
	for _, g := range groups {
		s := g.NewScalar().Random()
		ClearScalar(&s)

		if s != nil {
			t.Fatalf("%v: expected scalar pointer to be nil after ClearScalar", g)
		}
	}

	var s *group.Scalar
	ClearScalar(&s)
	ClearScalar(nil)
}

func TestClearSlice(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	alias := b

	ClearSlice(&b)

	if b != nil {
		t.Fatal("expected slice to be nil after ClearSlice")
	}

	if !bytes.Equal(alias, make([]byte, 4)) {
		t.Fatal("expected the backing array to be zeroed")
	}

	ClearSlice(&b)
	ClearSlice(nil)
}

func TestXor(t *testing.T) {
	a := []byte{0x0f, 0xf0, 0xaa}
	b := []byte{0xff, 0xff, 0xaa}

	if out := Xor(a, b); !bytes.Equal(out, []byte{0xf0, 0x0f, 0x00}) {
		t.Fatalf("unexpected xor output %v", out)
	}
}

func TestXorPanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected a panic on unequal lengths")
		}
	}()

	Xor([]byte{1}, []byte{1, 2})
}

func TestDecodeElement(t *testing.T) {
	for _, g := range groups {
		base := g.Base().Encode()

		if _, err := DecodeElement(g, base); err != nil {
			t.Fatalf("%v: unexpected error %v", g, err)
		}

		if _, err := DecodeElement(g, base[1:]); !errors.Is(err, ErrInvalidEncodingLength) {
			t.Fatalf("%v: expected %q, got %v", g, ErrInvalidEncodingLength, err)
		}

		bad := make([]byte, len(base))
		bad[0] = 0xff

		if _, err := DecodeElement(g, bad); !errors.Is(err, ErrInvalidElement) {
			t.Fatalf("%v: expected %q, got %v", g, ErrInvalidElement, err)
		}
	}

	// The identity of Ristretto255 encodes to all zeros.
	identity := make([]byte, group.Ristretto255Sha512.ElementLength())
	if _, err := DecodeElement(group.Ristretto255Sha512, identity); err == nil {
		t.Fatal("expected the identity to be rejected")
	}
}

func TestDecodeScalar(t *testing.T) {
	for _, g := range groups {
		s := g.NewScalar().Random()

		decoded, err := DecodeScalar(g, s.Encode())
		if err != nil {
			t.Fatalf("%v: unexpected error %v", g, err)
		}

		if !bytes.Equal(decoded.Encode(), s.Encode()) {
			t.Fatalf("%v: scalar does not round trip", g)
		}

		if _, err = DecodeScalar(g, s.Encode()[1:]); !errors.Is(err, ErrInvalidEncodingLength) {
			t.Fatalf("%v: expected %q, got %v", g, ErrInvalidEncodingLength, err)
		}

		if _, err = DecodeScalar(g, make([]byte, g.ScalarLength())); !errors.Is(err, ErrScalarIsZero) {
			t.Fatalf("%v: expected %q, got %v", g, ErrScalarIsZero, err)
		}
	}
}

func TestHashFunctionValidity(t *testing.T) {
	for _, h := range []crypto.Hash{crypto.SHA256, crypto.SHA384, crypto.SHA512, crypto.SHA3_256, crypto.SHA3_512} {
		if !IsHashFunctionValid(h) {
			t.Fatalf("expected %s to be valid", h)
		}
	}

	for _, h := range []crypto.Hash{0, crypto.MD5, crypto.SHA1, crypto.Hash(200)} {
		if IsHashFunctionValid(h) {
			t.Fatalf("expected %d to be invalid", h)
		}
	}
}

func TestMacEqual(t *testing.T) {
	m := NewMac(crypto.SHA256)
	tag := m.MAC([]byte("key"), []byte("message"))

	if len(tag) != m.Size() {
		t.Fatalf("expected a %d byte tag, got %d", m.Size(), len(tag))
	}

	if !m.Equal(tag, m.MAC([]byte("key"), []byte("message"))) {
		t.Fatal("expected equal tags")
	}

	if m.Equal(tag, m.MAC([]byte("other"), []byte("message"))) {
		t.Fatal("expected different tags")
	}
}

func TestRandomBytes(t *testing.T) {
	a, b := RandomBytes(32), RandomBytes(32)

	if len(a) != 32 || bytes.Equal(a, b) {
		t.Fatal("expected distinct random outputs of the requested length")
	}
}
