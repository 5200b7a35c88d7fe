// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package opaque_test

import (
	"crypto"
	"crypto/elliptic"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	group "github.com/bytemare/crypto"
	"github.com/bytemare/ksf"

	opaque "github.com/bytemare/opaque-engine"
	"github.com/bytemare/opaque-engine/internal"
	"github.com/bytemare/opaque-engine/message"
)

const dbgErr = "%v"

type configuration struct {
	curve elliptic.Curve
	conf  *opaque.Configuration
	name  string
}

var configurationTable = []*configuration{
	{
		name:  "Ristretto255",
		conf:  opaque.DefaultConfiguration(),
		curve: nil,
	},
	{
		name: "P256Sha256",
		conf: &opaque.Configuration{
			OPRF: opaque.P256Sha256,
			KDF:  crypto.SHA256,
			MAC:  crypto.SHA256,
			Hash: crypto.SHA256,
			KSF:  ksf.Argon2id,
			AKE:  opaque.P256Sha256,
		},
		curve: elliptic.P256(),
	},
	{
		name: "P384Sha512",
		conf: &opaque.Configuration{
			OPRF: opaque.P384Sha512,
			KDF:  crypto.SHA512,
			MAC:  crypto.SHA512,
			Hash: crypto.SHA512,
			KSF:  ksf.Argon2id,
			AKE:  opaque.P384Sha512,
		},
		curve: elliptic.P384(),
	},
	{
		name: "P521Sha512",
		conf: &opaque.Configuration{
			OPRF: opaque.P521Sha512,
			KDF:  crypto.SHA512,
			MAC:  crypto.SHA512,
			Hash: crypto.SHA512,
			KSF:  ksf.Argon2id,
			AKE:  opaque.P521Sha512,
		},
		curve: elliptic.P521(),
	},
}

func testAll(t *testing.T, f func(*testing.T, *configuration)) {
	for _, test := range configurationTable {
		t.Run(test.name, func(t *testing.T) {
			f(t, test)
		})
	}
}

func getBadRistrettoScalar() []byte {
	a := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	decoded, _ := hex.DecodeString(a)

	return decoded
}

func getBadRistrettoElement() []byte {
	a := "2a292df7e32cababbd9de088d1d1abec9fc0440f637ed2fba145094dc14bea08"
	decoded, _ := hex.DecodeString(a)

	return decoded
}

func badScalar(t *testing.T, g group.Group, curve elliptic.Curve) []byte {
	t.Helper()
	order := curve.Params().P
	exceeded := new(big.Int).Add(order, big.NewInt(2)).Bytes()

	if err := g.NewScalar().Decode(exceeded); err == nil {
		t.Errorf("Exceeding order did not yield an error for group %s", g)
	}

	return exceeded
}

func getBadNistElement(t *testing.T, id group.Group) []byte {
	t.Helper()
	element := internal.RandomBytes(id.ElementLength())
	// detag compression
	element[0] = 4

	if err := id.NewElement().Decode(element); err == nil {
		t.Errorf("detagged compressed point did not yield an error for group %s", id)
	}

	return element
}

func getBadElement(t *testing.T, c *configuration) []byte {
	t.Helper()

	if c.conf.AKE == opaque.RistrettoSha512 {
		return getBadRistrettoElement()
	}

	return getBadNistElement(t, c.conf.AKE.Group())
}

func getBadScalar(t *testing.T, c *configuration) []byte {
	t.Helper()

	if c.conf.AKE == opaque.RistrettoSha512 {
		return getBadRistrettoScalar()
	}

	return badScalar(t, c.conf.AKE.Group(), c.curve)
}

func expectErrors(t *testing.T, err error, expected ...error) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected an error")
	}

	for _, e := range expected {
		if !errors.Is(err, e) {
			t.Fatalf("expected %q in the error chain, got %+v", e, err)
		}
	}
}

// testParams holds the inputs of a protocol run.
type testParams struct {
	conf                 *opaque.Configuration
	setup                *opaque.ServerSetup
	username, servername []byte
	password, context    []byte
}

func newTestParams(t *testing.T, conf *opaque.Configuration) *testParams {
	t.Helper()

	setup, err := opaque.NewServerSetup(conf, nil)
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	return &testParams{
		conf:       conf,
		setup:      setup,
		username:   []byte("client"),
		servername: []byte("server"),
		password:   []byte("password"),
		context:    []byte("OPAQUETest"),
	}
}

func clientServer(t *testing.T, conf *opaque.Configuration) (*opaque.Client, *opaque.Server) {
	t.Helper()

	client, err := conf.Client()
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	server, err := conf.Server()
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	return client, server
}

// register runs the four registration steps and returns the credential file and the client's export key.
func register(t *testing.T, p *testParams) (*opaque.CredentialFile, []byte) {
	t.Helper()
	client, server := clientServer(t, p.conf)

	request, state, err := client.RegistrationStart(p.password)
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	response, err := server.RegistrationStart(p.username, request, p.setup)
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	record, exportKey, err := client.RegistrationFinish(p.password, response, state, p.username, p.servername)
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	file, err := server.RegistrationFinish(record)
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	return file, exportKey
}

type loginResult struct {
	ke2                  *message.KE2
	clientErr, serverErr error
	clientKey, serverKey []byte
	exportKey            []byte
}

// login runs the four login steps with the client's own view of the password and identities, against the server's
// view in p.
func login(t *testing.T, p *testParams, file *opaque.CredentialFile, password, servername, context []byte) *loginResult {
	t.Helper()
	client, server := clientServer(t, p.conf)

	ke1, clientState, err := client.LoginStart(password)
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	ke2, serverState, err := server.LoginStart(p.username, file, ke1, p.setup, p.servername, p.context)
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	res := &loginResult{ke2: ke2}

	ke3, clientKey, exportKey, err := client.LoginFinish(password, ke2, clientState, p.username, servername, context)
	if err != nil {
		res.clientErr = err
		return res
	}

	res.clientKey = clientKey
	res.exportKey = exportKey
	res.serverKey, res.serverErr = server.LoginFinish(ke3, serverState)

	return res
}
