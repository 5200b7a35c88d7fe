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
	"slices"

	group "github.com/bytemare/crypto"

	"github.com/bytemare/opaque-engine/internal"
	"github.com/bytemare/opaque-engine/internal/ake"
	"github.com/bytemare/opaque-engine/internal/encoding"
	"github.com/bytemare/opaque-engine/internal/masking"
	"github.com/bytemare/opaque-engine/internal/tag"
	"github.com/bytemare/opaque-engine/message"
)

// Server represents an OPAQUE Server, exposing its functions. Its long-term keys are given as a ServerSetup to each
// call, and session state is returned to the caller, so a Server can be shared across goroutines.
type Server struct {
	Deserialize *Deserializer
	conf        *internal.Configuration
	logger      *slog.Logger
}

// NewServer returns a Server instantiation given the application Configuration.
func NewServer(c *Configuration) (*Server, error) {
	conf, err := c.toInternal()
	if err != nil {
		return nil, err
	}

	return &Server{
		Deserialize: &Deserializer{conf: conf},
		conf:        conf,
		logger:      discardLogger(),
	}, nil
}

// WithLogger returns a copy of the server logging to logger. Only protocol steps are logged, never secrets.
func (s *Server) WithLogger(logger *slog.Logger) *Server {
	ss := *s
	ss.logger = orDiscard(logger)

	return &ss
}

// oprfKey derives the OPRF key of the client identified by username.
func (s *Server) oprfKey(seed, username []byte) (*group.Scalar, error) {
	keySeed := s.conf.KDF.Expand(seed, encoding.SuffixString(username, tag.ExpandOPRF), internal.SeedLength)
	defer internal.ClearSlice(&keySeed)

	return s.conf.OPRF.DeriveKey(keySeed, []byte(tag.DeriveKeyPair))
}

func (s *Server) oprfResponse(setup *ServerSetup, username []byte, blinded *group.Element) (*group.Element, error) {
	ku, err := s.oprfKey(setup.OPRFSeed, username)
	if err != nil {
		return nil, err
	}
	defer internal.ClearScalar(&ku)

	return s.conf.OPRF.Evaluate(ku, blinded), nil
}

func (s *Server) checkSetup(setup *ServerSetup) error {
	if err := setup.check(s.conf); err != nil {
		return ErrServerSetup.Join(err)
	}

	return nil
}

// RegistrationStart evaluates the client's RegistrationRequest under the OPRF key of username, and returns the
// RegistrationResponse to send back. The same username and setup always give the same evaluation.
func (s *Server) RegistrationStart(
	username []byte,
	req *message.RegistrationRequest,
	setup *ServerSetup,
) (*message.RegistrationResponse, error) {
	if len(username) == 0 {
		return nil, ErrCredentialIdentifier.Join(internal.ErrEmptyUsername)
	}

	if err := checkInputLengths(username, nil, nil); err != nil {
		return nil, err
	}

	if req == nil || req.BlindedMessage == nil {
		return nil, ErrRegistrationRequest.Join(internal.ErrNilMessage)
	}

	if err := s.checkSetup(setup); err != nil {
		return nil, err
	}

	pks, err := s.Deserialize.decodeServerPublicKey(setup.PublicKeyBytes)
	if err != nil {
		return nil, ErrServerSetup.Join(err)
	}

	z, err := s.oprfResponse(setup, username, req.BlindedMessage)
	if err != nil {
		return nil, ErrRegistration.Join(err)
	}

	s.logger.Debug("registration response")

	return &message.RegistrationResponse{
		EvaluatedMessage: z,
		Pks:              pks,
	}, nil
}

// RegistrationFinish validates the client's RegistrationRecord and returns the CredentialFile to store under the
// client's username.
func (s *Server) RegistrationFinish(record *message.RegistrationRecord) (*CredentialFile, error) {
	if record == nil || record.PublicKey == nil {
		return nil, ErrRegistrationRecord.Join(internal.ErrNilMessage)
	}

	if len(record.MaskingKey) != s.conf.Hash.Size() {
		return nil, ErrRegistrationRecord.Join(internal.ErrInvalidMaskingKey)
	}

	if _, err := s.Deserialize.envelope(record); err != nil {
		return nil, ErrRegistrationRecord.Join(err)
	}

	s.logger.Debug("registration record accepted")

	return newCredentialFile(s.conf, record), nil
}

// serverIdentity returns the server identity to use: servername if set, the setup's identity otherwise, and nil when
// both are empty so that the public key is used.
func serverIdentity(servername []byte, setup *ServerSetup) []byte {
	if len(servername) != 0 {
		return servername
	}

	if len(setup.Identity) != 0 {
		return setup.Identity
	}

	return nil
}

// LoginStart responds to the client's KE1 message with a KE2 message, and returns the state to give to LoginFinish.
// If file is nil, the client is considered unregistered, and a response indistinguishable from a genuine one is
// returned, against which the client will fail to authenticate. The servername and context must be the same as the
// client's.
func (s *Server) LoginStart(
	username []byte,
	file *CredentialFile,
	ke1 *message.KE1,
	setup *ServerSetup,
	servername, context []byte,
	options ...*ServerOptions,
) (*message.KE2, *ServerLoginState, error) {
	if len(username) == 0 {
		return nil, nil, ErrCredentialIdentifier.Join(internal.ErrEmptyUsername)
	}

	if err := checkInputLengths(username, servername, context); err != nil {
		return nil, nil, err
	}

	if ke1 == nil || ke1.CredentialRequest == nil || ke1.BlindedMessage == nil || ke1.ClientPublicKeyshare == nil {
		return nil, nil, ErrKE1.Join(internal.ErrNilMessage)
	}

	if len(ke1.ClientNonce) != s.conf.NonceLen {
		return nil, nil, ErrKE1.Join(internal.ErrInvalidNonceLength)
	}

	if err := s.checkSetup(setup); err != nil {
		return nil, nil, err
	}

	o, err := s.parseOptions(options)
	if err != nil {
		return nil, nil, err
	}

	if file == nil {
		s.logger.Debug("login for unregistered client")

		file = setup.fakeCredentialFile(s.conf)
	}

	if file.RegistrationRecord == nil || file.PublicKey == nil ||
		len(file.MaskingKey) != s.conf.Hash.Size() || len(file.Envelope) != s.conf.EnvelopeSize {
		return nil, nil, ErrCredentialFile.Join(internal.ErrInvalidEncodingLength)
	}

	z, err := s.oprfResponse(setup, username, ke1.BlindedMessage)
	if err != nil {
		return nil, nil, ErrAuthentication.Join(err)
	}

	response := &message.CredentialResponse{
		EvaluatedMessage: z,
		MaskingNonce:     o.maskingNonce,
		MaskedResponse: masking.Mask(
			s.conf,
			o.maskingNonce,
			file.MaskingKey,
			setup.PublicKeyBytes,
			file.Envelope,
		),
	}

	ids := &ake.Identities{
		ClientIdentity: username,
		ServerIdentity: serverIdentity(servername, setup),
	}
	ids.SetIdentities(file.PublicKey.Encode(), setup.PublicKeyBytes)

	ke2, sessionKey, expectedClientMac, err := ake.Response(
		s.conf,
		ids,
		context,
		setup.PrivateKey,
		file.PublicKey,
		ke1,
		response,
		o.ake,
	)
	if err != nil {
		return nil, nil, ErrServerOptions.Join(err)
	}

	s.logger.Debug("login response")

	return ke2, &ServerLoginState{
		expectedClientMac: expectedClientMac,
		sessionKey:        sessionKey,
		akeGroup:          s.conf.Group,
	}, nil
}

// LoginFinish verifies the client's KE3 message and returns the session key on success. Any mismatch returns
// ErrAuthentication, without further detail. The state is flushed on return, so it can't be used twice.
func (s *Server) LoginFinish(ke3 *message.KE3, state *ServerLoginState) ([]byte, error) {
	if state == nil || len(state.expectedClientMac) == 0 {
		return nil, ErrState.Join(internal.ErrNilState)
	}
	defer state.Flush()

	if ke3 == nil {
		return nil, ErrKE3.Join(internal.ErrNilMessage)
	}

	if err := ake.Verify(s.conf, state.expectedClientMac, ke3); err != nil {
		s.logger.Debug("login failed", "step", "client mac")
		return nil, ErrAuthentication
	}

	sessionKey := slices.Clone(state.sessionKey)

	s.logger.Debug("login finished")

	return sessionKey, nil
}
