// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package opaque_test

import (
	"testing"

	opaque "github.com/bytemare/opaque-engine"
)

func benchParams(b *testing.B, conf *opaque.Configuration) *testParams {
	b.Helper()

	setup, err := opaque.NewServerSetup(conf, nil)
	if err != nil {
		b.Fatal(err)
	}

	return &testParams{
		conf:       conf,
		setup:      setup,
		username:   []byte("client"),
		servername: []byte("server"),
		password:   []byte("password"),
		context:    []byte("bench"),
	}
}

// BenchmarkServerLogin measures the server's side of a login, which runs on the fast path.
func BenchmarkServerLogin(b *testing.B) {
	for _, conf := range configurationTable {
		b.Run(conf.name, func(b *testing.B) {
			p := benchParams(b, conf.conf)

			client, err := p.conf.Client()
			if err != nil {
				b.Fatal(err)
			}

			server, err := p.conf.Server()
			if err != nil {
				b.Fatal(err)
			}

			ke1, _, err := client.LoginStart(p.password)
			if err != nil {
				b.Fatal(err)
			}

			b.ReportAllocs()
			b.ResetTimer()

			for range b.N {
				if _, _, err = server.LoginStart(p.username, nil, ke1, p.setup, p.servername, p.context); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkRegistration measures a whole registration, dominated by the key stretching function.
func BenchmarkRegistration(b *testing.B) {
	p := benchParams(b, configurationTable[0].conf)

	client, err := p.conf.Client()
	if err != nil {
		b.Fatal(err)
	}

	server, err := p.conf.Server()
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		request, state, err := client.RegistrationStart(p.password)
		if err != nil {
			b.Fatal(err)
		}

		response, err := server.RegistrationStart(p.username, request, p.setup)
		if err != nil {
			b.Fatal(err)
		}

		if _, _, err = client.RegistrationFinish(p.password, response, state, p.username, p.servername); err != nil {
			b.Fatal(err)
		}
	}
}
