// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package opaque

import (
	"log/slog"

	"github.com/bytemare/opaque-engine/internal"
)

// Output bundles a protocol message to send to the peer and the state to keep until the next step. Both slices are
// owned by the caller, and the engine keeps no reference to them.
type Output struct {
	// Message is the serialized message for the peer.
	Message []byte

	// State is the serialized state to give to the next step of the same party.
	State []byte
}

// Finalization is the client's result of a successful login.
type Finalization struct {
	// Message is the serialized KE3 message for the server.
	Message []byte

	// SessionKey is the key shared with the server.
	SessionKey []byte

	// ExportKey is the client-only application key.
	ExportKey []byte
}

// Boundary runs the eight protocol steps over byte slices, so that messages and states can cross any transport or
// storage. Every input is fully deserialized and validated before use.
type Boundary struct {
	client *Client
	server *Server
	conf   *Configuration
}

// NewBoundary returns a Boundary for the configuration. A nil configuration selects the default one.
func NewBoundary(c *Configuration) (*Boundary, error) {
	if c == nil {
		c = DefaultConfiguration()
	}

	client, err := NewClient(c)
	if err != nil {
		return nil, err
	}

	server, err := NewServer(c)
	if err != nil {
		return nil, err
	}

	return &Boundary{client: client, server: server, conf: c}, nil
}

// WithLogger returns a copy of the boundary whose client and server log to logger.
func (b *Boundary) WithLogger(logger *slog.Logger) *Boundary {
	return &Boundary{
		client: b.client.WithLogger(logger),
		server: b.server.WithLogger(logger),
		conf:   b.conf,
	}
}

func (b *Boundary) deserializer() *Deserializer {
	return b.client.Deserialize
}

// ClientRegistrationStart returns the serialized RegistrationRequest and ClientRegistrationState.
func (b *Boundary) ClientRegistrationStart(password []byte, options ...*ClientOptions) (*Output, error) {
	request, state, err := b.client.RegistrationStart(password, options...)
	if err != nil {
		return nil, err
	}
	defer state.Flush()

	return &Output{Message: request.Serialize(), State: state.Serialize()}, nil
}

// ServerRegistrationStart returns the serialized RegistrationResponse, and the serialized ServerSetup it was produced
// with as State. If setup is not empty, it is the serialized ServerSetup to use. Otherwise, a new ServerSetup is
// provisioned from privateKey, which, if also empty, is generated. Giving both a setup and a private key is an error.
func (b *Boundary) ServerRegistrationStart(username, request, setup, privateKey []byte) (*Output, error) {
	s, err := b.serverSetup(setup, privateKey)
	if err != nil {
		return nil, err
	}
	defer s.Flush()

	req, err := b.deserializer().RegistrationRequest(request)
	if err != nil {
		return nil, err
	}

	response, err := b.server.RegistrationStart(username, req, s)
	if err != nil {
		return nil, err
	}

	encodedSetup, err := s.Serialize()
	if err != nil {
		return nil, err
	}

	return &Output{Message: response.Serialize(), State: encodedSetup}, nil
}

func (b *Boundary) serverSetup(setup, privateKey []byte) (*ServerSetup, error) {
	if len(setup) != 0 {
		if len(privateKey) != 0 {
			return nil, ErrServerSetup.Join(internal.ErrSetupAndPrivateKey)
		}

		return b.deserializer().ServerSetup(setup)
	}

	return NewServerSetup(b.conf, privateKey)
}

// ClientRegistrationFinish returns the serialized RegistrationRecord and the export key.
func (b *Boundary) ClientRegistrationFinish(
	password, response, state, username, servername []byte,
	options ...*ClientOptions,
) (record, exportKey []byte, err error) {
	resp, err := b.deserializer().RegistrationResponse(response)
	if err != nil {
		return nil, nil, err
	}

	s, err := b.deserializer().ClientRegistrationState(state)
	if err != nil {
		return nil, nil, err
	}

	r, exportKey, err := b.client.RegistrationFinish(password, resp, s, username, servername, options...)
	if err != nil {
		return nil, nil, err
	}

	return r.Serialize(), exportKey, nil
}

// ServerRegistrationFinish returns the serialized CredentialFile to store under the client's username.
func (b *Boundary) ServerRegistrationFinish(record []byte) ([]byte, error) {
	r, err := b.deserializer().RegistrationRecord(record)
	if err != nil {
		return nil, err
	}

	file, err := b.server.RegistrationFinish(r)
	if err != nil {
		return nil, err
	}

	return file.Serialize(), nil
}

// ClientLoginStart returns the serialized KE1 and ClientLoginState.
func (b *Boundary) ClientLoginStart(password []byte, options ...*ClientOptions) (*Output, error) {
	ke1, state, err := b.client.LoginStart(password, options...)
	if err != nil {
		return nil, err
	}
	defer state.Flush()

	return &Output{Message: ke1.Serialize(), State: state.Serialize()}, nil
}

// ServerLoginStart returns the serialized KE2 and ServerLoginState. An empty file means that username is not
// registered, which yields a response of the same shape.
func (b *Boundary) ServerLoginStart(
	username, file, ke1, setup, servername, context []byte,
	options ...*ServerOptions,
) (*Output, error) {
	s, err := b.deserializer().ServerSetup(setup)
	if err != nil {
		return nil, err
	}
	defer s.Flush()

	// An unregistered username gets the setup's fake file, decoded the same way as a stored one.
	if len(file) == 0 {
		file = s.fakeCredentialFile(b.deserializer().conf).Serialize()
	}

	f, err := b.deserializer().CredentialFile(file)
	if err != nil {
		return nil, err
	}

	k1, err := b.deserializer().KE1(ke1)
	if err != nil {
		return nil, err
	}

	ke2, state, err := b.server.LoginStart(username, f, k1, s, servername, context, options...)
	if err != nil {
		return nil, err
	}
	defer state.Flush()

	return &Output{Message: ke2.Serialize(), State: state.Serialize()}, nil
}

// ClientLoginFinish returns the serialized KE3 and the client's keys, or ErrAuthentication.
func (b *Boundary) ClientLoginFinish(
	password, ke2, state, username, servername, context []byte,
	options ...*ClientOptions,
) (*Finalization, error) {
	k2, err := b.deserializer().KE2(ke2)
	if err != nil {
		return nil, err
	}

	s, err := b.deserializer().ClientLoginState(state)
	if err != nil {
		return nil, err
	}

	ke3, sessionKey, exportKey, err := b.client.LoginFinish(password, k2, s, username, servername, context, options...)
	if err != nil {
		return nil, err
	}

	return &Finalization{Message: ke3.Serialize(), SessionKey: sessionKey, ExportKey: exportKey}, nil
}

// ServerLoginFinish returns the session key if the client authenticated, or ErrAuthentication.
func (b *Boundary) ServerLoginFinish(ke3, state []byte) ([]byte, error) {
	k3, err := b.deserializer().KE3(ke3)
	if err != nil {
		return nil, err
	}

	s, err := b.deserializer().ServerLoginState(state)
	if err != nil {
		return nil, err
	}

	return b.server.LoginFinish(k3, s)
}
