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
	"slices"

	group "github.com/bytemare/crypto"

	"github.com/bytemare/opaque-engine/internal"
	"github.com/bytemare/opaque-engine/internal/ake"
	"github.com/bytemare/opaque-engine/internal/ksf"
)

var (
	errOptionsNonceLength  = errors.New("invalid nonce length")
	errOptionsZeroScalar   = errors.New("scalar is zero")
	errOptionsKSFParameter = errors.New("invalid KSF parameters")
)

// AKEOptions override the ephemeral values of the AKE.
type AKEOptions struct {
	// SecretKeyShare is the ephemeral secret key share.
	SecretKeyShare *group.Scalar

	// Nonce is the AKE nonce, of internal.NonceLength bytes.
	Nonce []byte
}

func (o *AKEOptions) get(nonceLength int) (ake.Options, error) {
	if o == nil {
		return ake.Options{}, nil
	}

	if len(o.Nonce) != 0 && len(o.Nonce) != nonceLength {
		return ake.Options{}, errOptionsNonceLength
	}

	if o.SecretKeyShare != nil && o.SecretKeyShare.IsZero() {
		return ake.Options{}, errOptionsZeroScalar
	}

	return ake.Options{
		EphemeralSecretKeyShare: o.SecretKeyShare,
		Nonce:                   slices.Clone(o.Nonce),
	}, nil
}

// ClientOptions override the secure default values or internally generated values.
// Only use this if you know what you're doing. Reusing blinds and nonces across sessions is a security risk,
// and breaks forward secrecy.
type ClientOptions struct {
	// OPRFBlind is the blinding scalar used in RegistrationStart and LoginStart.
	OPRFBlind *group.Scalar

	// AKE overrides the ephemeral AKE values in LoginStart.
	AKE *AKEOptions

	// EnvelopeNonce is the envelope nonce used in RegistrationFinish.
	EnvelopeNonce []byte

	// KSFParameters replace the KSF's recommended parameters in RegistrationFinish and LoginFinish.
	KSFParameters []int
}

type clientOptions struct {
	oprfBlind     *group.Scalar
	ksf           *ksf.KSF
	envelopeNonce []byte
	ake           ake.Options
}

func (c *Client) parseOptions(options []*ClientOptions) (*clientOptions, error) {
	o := &clientOptions{ksf: c.conf.KSF}

	if len(options) == 0 || options[0] == nil {
		o.envelopeNonce = internal.RandomBytes(c.conf.NonceLen)
		return o, nil
	}

	in := options[0]

	if in.OPRFBlind != nil {
		if in.OPRFBlind.IsZero() {
			return nil, ErrClientOptions.Join(internal.ErrInvalidBlind, errOptionsZeroScalar)
		}

		o.oprfBlind = in.OPRFBlind
	}

	var err error

	o.ake, err = in.AKE.get(c.conf.NonceLen)
	if err != nil {
		return nil, ErrClientOptions.Join(err)
	}

	switch len(in.EnvelopeNonce) {
	case 0:
		o.envelopeNonce = internal.RandomBytes(c.conf.NonceLen)
	case c.conf.NonceLen:
		o.envelopeNonce = slices.Clone(in.EnvelopeNonce)
	default:
		return nil, ErrClientOptions.Join(internal.ErrInvalidNonceLength)
	}

	o.ksf, err = c.conf.KSF.WithParameters(in.KSFParameters...)
	if err != nil {
		return nil, ErrClientOptions.Join(errOptionsKSFParameter, err)
	}

	return o, nil
}

// ServerOptions override the secure default values or internally generated values.
// Only use this if you know what you're doing. Reusing nonces across sessions is a security risk,
// and breaks forward secrecy.
type ServerOptions struct {
	// AKE overrides the ephemeral AKE values in LoginStart.
	AKE *AKEOptions

	// MaskingNonce is the nonce used to mask the credential response in LoginStart.
	MaskingNonce []byte
}

type serverOptions struct {
	maskingNonce []byte
	ake          ake.Options
}

func (s *Server) parseOptions(options []*ServerOptions) (*serverOptions, error) {
	o := &serverOptions{}

	if len(options) == 0 || options[0] == nil {
		o.maskingNonce = internal.RandomBytes(s.conf.NonceLen)
		return o, nil
	}

	switch len(options[0].MaskingNonce) {
	case 0:
		o.maskingNonce = internal.RandomBytes(s.conf.NonceLen)
	case s.conf.NonceLen:
		o.maskingNonce = slices.Clone(options[0].MaskingNonce)
	default:
		return nil, ErrServerOptions.Join(internal.ErrInvalidNonceLength)
	}

	var err error

	o.ake, err = options[0].AKE.get(s.conf.NonceLen)
	if err != nil {
		return nil, ErrServerOptions.Join(err)
	}

	return o, nil
}
