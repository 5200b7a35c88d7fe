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
	"log/slog"

	group "github.com/bytemare/crypto"

	"github.com/bytemare/opaque-engine/internal"
	"github.com/bytemare/opaque-engine/internal/ake"
	"github.com/bytemare/opaque-engine/internal/encoding"
	"github.com/bytemare/opaque-engine/internal/keyrecovery"
	"github.com/bytemare/opaque-engine/internal/ksf"
	"github.com/bytemare/opaque-engine/internal/masking"
	"github.com/bytemare/opaque-engine/internal/oprf"
	"github.com/bytemare/opaque-engine/message"
)

// Client represents an OPAQUE Client, exposing its functions. It holds no session state: every flow returns a state
// to be given back to the corresponding Finish function, so a Client can be shared across goroutines.
type Client struct {
	Deserialize *Deserializer
	conf        *internal.Configuration
	logger      *slog.Logger
}

// NewClient returns a new Client instantiation given the application Configuration.
func NewClient(c *Configuration) (*Client, error) {
	conf, err := c.toInternal()
	if err != nil {
		return nil, err
	}

	return &Client{
		Deserialize: &Deserializer{conf: conf},
		conf:        conf,
		logger:      discardLogger(),
	}, nil
}

// WithLogger returns a copy of the client logging to logger. Only protocol steps are logged, never secrets.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	cc := *c
	cc.logger = orDiscard(logger)

	return &cc
}

// blind runs the OPRF blinding of password, with the given blind if non-nil.
func (c *Client) blind(password []byte, blind *group.Scalar) (*oprf.Client, *group.Element, error) {
	o := c.conf.OPRF.Client()

	blinded, err := o.Blind(password, blind)
	if err != nil {
		return nil, nil, errors.Join(internal.ErrHashToGroupIdentity, err)
	}

	return o, blinded, nil
}

// randomizedPassword finalizes the OPRF and stretches its output into the randomized password.
func (c *Client) randomizedPassword(
	password []byte,
	blind *group.Scalar,
	evaluation *group.Element,
	stretch *ksf.KSF,
) ([]byte, error) {
	o, _, err := c.blind(password, blind)
	if err != nil {
		return nil, err
	}
	defer o.Flush()

	output := o.Finalize(evaluation)
	defer internal.ClearSlice(&output)

	// The identity KSF returns output itself, which is cleared by the deferred call above.
	hardened := stretch.Harden(output, nil, c.conf.OPRFPointLength())
	ikm := encoding.Concat(output, hardened)

	internal.ClearSlice(&hardened)
	defer internal.ClearSlice(&ikm)

	return c.conf.KDF.Extract(nil, ikm), nil
}

// RegistrationStart blinds the password and returns the RegistrationRequest to send to the server, and the state to
// give to RegistrationFinish.
func (c *Client) RegistrationStart(
	password []byte,
	options ...*ClientOptions,
) (*message.RegistrationRequest, *ClientRegistrationState, error) {
	o, err := c.parseOptions(options)
	if err != nil {
		return nil, nil, err
	}

	oc, blinded, err := c.blind(password, o.oprfBlind)
	if err != nil {
		return nil, nil, ErrRegistration.Join(err)
	}
	defer oc.Flush()

	c.logger.Debug("registration started")

	return &message.RegistrationRequest{BlindedMessage: blinded}, &ClientRegistrationState{
		blind:     oc.Blinding(),
		oprfGroup: c.conf.OPRF.Group(),
	}, nil
}

// identities returns the client and server identities, where empty values are replaced by nil.
func identities(username, servername []byte) *ake.Identities {
	ids := &ake.Identities{}

	if len(username) != 0 {
		ids.ClientIdentity = username
	}

	if len(servername) != 0 {
		ids.ServerIdentity = servername
	}

	return ids
}

// checkInputLengths rejects identities and contexts too long to be length-prefixed in the envelope and transcript.
func checkInputLengths(username, servername, context []byte) error {
	if len(username) > internal.MaxVectorLength || len(servername) > internal.MaxVectorLength {
		return ErrCredentialIdentifier.Join(internal.ErrIdentityTooLong)
	}

	if len(context) > internal.MaxVectorLength {
		return ErrContext.Join(internal.ErrContextTooLong)
	}

	return nil
}

// RegistrationFinish completes the registration given the server's RegistrationResponse, and returns the
// RegistrationRecord to send to the server and the export key. The username and servername are the identities bound
// into the envelope: when nil, the client's and server's public keys are used instead, and the same values must be
// given at login. The state is flushed on return.
func (c *Client) RegistrationFinish(
	password []byte,
	resp *message.RegistrationResponse,
	state *ClientRegistrationState,
	username, servername []byte,
	options ...*ClientOptions,
) (record *message.RegistrationRecord, exportKey []byte, err error) {
	if state == nil || state.blind == nil {
		return nil, nil, ErrState.Join(internal.ErrNilState)
	}
	defer state.Flush()

	if resp == nil || resp.EvaluatedMessage == nil || resp.Pks == nil {
		return nil, nil, ErrRegistrationResponse.Join(internal.ErrNilMessage)
	}

	if err = checkInputLengths(username, servername, nil); err != nil {
		return nil, nil, err
	}

	o, err := c.parseOptions(options)
	if err != nil {
		return nil, nil, err
	}

	randomizedPassword, err := c.randomizedPassword(password, state.blind, resp.EvaluatedMessage, o.ksf)
	if err != nil {
		return nil, nil, ErrRegistration.Join(err)
	}
	defer internal.ClearSlice(&randomizedPassword)

	ids := identities(username, servername)

	envelope, clientPublicKey, exportKey, err := keyrecovery.Store(
		c.conf,
		randomizedPassword,
		resp.Pks.Encode(),
		ids.ClientIdentity,
		ids.ServerIdentity,
		o.envelopeNonce,
	)
	if err != nil {
		return nil, nil, ErrRegistration.Join(err)
	}

	c.logger.Debug("registration finished")

	return &message.RegistrationRecord{
		PublicKey:  clientPublicKey,
		MaskingKey: keyrecovery.MaskingKey(c.conf, randomizedPassword),
		Envelope:   envelope.Serialize(),
	}, exportKey, nil
}

// LoginStart blinds the password and initiates the AKE, returning the KE1 message to send to the server, and the
// state to give to LoginFinish.
func (c *Client) LoginStart(password []byte, options ...*ClientOptions) (*message.KE1, *ClientLoginState, error) {
	o, err := c.parseOptions(options)
	if err != nil {
		return nil, nil, err
	}

	oc, blinded, err := c.blind(password, o.oprfBlind)
	if err != nil {
		return nil, nil, ErrAuthentication.Join(err)
	}
	defer oc.Flush()

	ke1 := &message.KE1{CredentialRequest: &message.CredentialRequest{BlindedMessage: blinded}}

	esk, err := ake.Start(c.conf, o.ake, ke1)
	if err != nil {
		return nil, nil, ErrClientOptions.Join(err)
	}

	c.logger.Debug("login started")

	return ke1, &ClientLoginState{
		blind:     oc.Blinding(),
		esk:       esk,
		ke1:       ke1.Serialize(),
		oprfGroup: c.conf.OPRF.Group(),
		akeGroup:  c.conf.Group,
	}, nil
}

// LoginFinish completes the login given the server's KE2 message, and returns the KE3 message to send to the server,
// the session key, and the export key. The username, servername, and context must be the same as used by the server.
// Any failure to authenticate the server returns ErrAuthentication, without further detail. The state is flushed on
// return.
func (c *Client) LoginFinish(
	password []byte,
	ke2 *message.KE2,
	state *ClientLoginState,
	username, servername, context []byte,
	options ...*ClientOptions,
) (ke3 *message.KE3, sessionKey, exportKey []byte, err error) {
	if state == nil || state.blind == nil || state.esk == nil {
		return nil, nil, nil, ErrState.Join(internal.ErrNilState)
	}
	defer state.Flush()

	if ke2 == nil || ke2.CredentialResponse == nil || ke2.EvaluatedMessage == nil || ke2.ServerPublicKeyshare == nil {
		return nil, nil, nil, ErrKE2.Join(internal.ErrNilMessage)
	}

	if len(ke2.MaskingNonce) != c.conf.NonceLen ||
		len(ke2.MaskedResponse) != c.conf.AkePointLength()+c.conf.EnvelopeSize ||
		len(ke2.ServerNonce) != c.conf.NonceLen ||
		len(ke2.ServerMac) != c.conf.MAC.Size() {
		return nil, nil, nil, ErrKE2.Join(internal.ErrInvalidEncodingLength)
	}

	if err = checkInputLengths(username, servername, context); err != nil {
		return nil, nil, nil, err
	}

	o, err := c.parseOptions(options)
	if err != nil {
		return nil, nil, nil, err
	}

	randomizedPassword, err := c.randomizedPassword(password, state.blind, ke2.EvaluatedMessage, o.ksf)
	if err != nil {
		return nil, nil, nil, ErrAuthentication
	}
	defer internal.ClearSlice(&randomizedPassword)

	serverPublicKey, serverPublicKeyBytes, envelope, err := masking.Unmask(
		c.conf,
		randomizedPassword,
		ke2.MaskingNonce,
		ke2.MaskedResponse,
	)
	if err != nil {
		c.logger.Debug("login failed", "step", "unmask")
		return nil, nil, nil, ErrAuthentication
	}

	ids := identities(username, servername)

	clientSecretKey, clientPublicKey, exportKey, err := keyrecovery.Recover(
		c.conf,
		randomizedPassword,
		serverPublicKeyBytes,
		ids.ClientIdentity,
		ids.ServerIdentity,
		envelope,
	)
	if err != nil {
		c.logger.Debug("login failed", "step", "envelope")
		return nil, nil, nil, ErrAuthentication
	}
	defer internal.ClearScalar(&clientSecretKey)

	ids.SetIdentities(clientPublicKey.Encode(), serverPublicKeyBytes)

	ke3, sessionKey, err = ake.Finalize(
		c.conf,
		ids,
		context,
		clientSecretKey,
		state.esk,
		serverPublicKey,
		state.ke1,
		ke2,
	)
	if err != nil {
		internal.ClearSlice(&exportKey)
		c.logger.Debug("login failed", "step", "server mac")

		return nil, nil, nil, ErrAuthentication
	}

	c.logger.Debug("login finished")

	return ke3, sessionKey, exportKey, nil
}
