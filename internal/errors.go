// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package internal

import "errors"

var (
	// ErrConfigurationInvalidLength happens when deserializing a configuration of invalid length.
	ErrConfigurationInvalidLength = errors.New("invalid encoded configuration length")

	// ErrInvalidOPRFid indicates an unsupported OPRF group identifier.
	ErrInvalidOPRFid = errors.New("invalid OPRF group id")

	// ErrInvalidAKEid indicates an unsupported AKE group identifier.
	ErrInvalidAKEid = errors.New("invalid AKE group id")

	// ErrInvalidKDFid indicates an unsupported KDF hash identifier.
	ErrInvalidKDFid = errors.New("invalid KDF id")

	// ErrInvalidMACid indicates an unsupported MAC hash identifier.
	ErrInvalidMACid = errors.New("invalid MAC id")

	// ErrInvalidHASHid indicates an unsupported hash identifier.
	ErrInvalidHASHid = errors.New("invalid Hash id")

	// ErrInvalidKSFid indicates an unsupported key stretching function identifier.
	ErrInvalidKSFid = errors.New("invalid KSF id")

	// ErrInvalidEncodingLength indicates an input of unexpected length.
	ErrInvalidEncodingLength = errors.New("invalid encoding length")

	// ErrInvalidVersion indicates an encoded structure carries an unknown format version.
	ErrInvalidVersion = errors.New("unsupported encoding version")

	// ErrInvalidKind indicates an encoded structure is not of the expected kind.
	ErrInvalidKind = errors.New("unexpected encoded structure kind")

	// ErrWrongGroup indicates an encoded structure was produced for another group.
	ErrWrongGroup = errors.New("group does not match the configuration")

	// ErrInvalidElement indicates a group element could not be decoded.
	ErrInvalidElement = errors.New("invalid group element")

	// ErrElementIsIdentity indicates a group element is the identity element.
	ErrElementIsIdentity = errors.New("element is the identity element")

	// ErrElementIsBase indicates a public key is the group generator.
	ErrElementIsBase = errors.New("element is the group base element")

	// ErrInvalidScalar indicates a scalar could not be decoded.
	ErrInvalidScalar = errors.New("invalid scalar")

	// ErrScalarIsZero indicates a scalar is zero.
	ErrScalarIsZero = errors.New("scalar is zero")

	// ErrInvalidPrivateKey indicates an invalid private key.
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrInvalidServerPublicKey indicates the server public key is invalid or does not match the private key.
	ErrInvalidServerPublicKey = errors.New("invalid server public key")

	// ErrInvalidClientPublicKey indicates an invalid client public key.
	ErrInvalidClientPublicKey = errors.New("invalid client public key")

	// ErrInvalidOPRFSeedLength indicates an OPRF seed of unexpected length.
	ErrInvalidOPRFSeedLength = errors.New("invalid OPRF seed length")

	// ErrInvalidBlindedData indicates the blinded element is invalid.
	ErrInvalidBlindedData = errors.New("blinded data is an invalid point")

	// ErrInvalidEvaluatedData indicates the evaluated element is invalid.
	ErrInvalidEvaluatedData = errors.New("invalid OPRF evaluation")

	// ErrInvalidClientEPK indicates the client's ephemeral public key share is invalid.
	ErrInvalidClientEPK = errors.New("invalid ephemeral client public key")

	// ErrInvalidServerEPK indicates the server's ephemeral public key share is invalid.
	ErrInvalidServerEPK = errors.New("invalid ephemeral server public key")

	// ErrInvalidBlind indicates an invalid OPRF blind.
	ErrInvalidBlind = errors.New("invalid OPRF blind")

	// ErrInvalidMaskingKey indicates a masking key of invalid length.
	ErrInvalidMaskingKey = errors.New("invalid masking key")

	// ErrInvalidNonceLength indicates a nonce of unexpected length.
	ErrInvalidNonceLength = errors.New("invalid nonce length")

	// ErrEnvelopeInvalidMac indicates the envelope could not be authenticated.
	ErrEnvelopeInvalidMac = errors.New("invalid envelope authentication tag")

	// ErrInvalidServerMac indicates the server's MAC in KE2 does not verify.
	ErrInvalidServerMac = errors.New("invalid server mac")

	// ErrInvalidClientMac indicates the client's MAC in KE3 does not verify.
	ErrInvalidClientMac = errors.New("invalid client mac")

	// ErrHashToGroupIdentity indicates the input mapped to the identity element.
	ErrHashToGroupIdentity = errors.New("hashed input maps to the identity element")

	// ErrEmptyUsername indicates an empty credential identifier.
	ErrEmptyUsername = errors.New("empty username")

	// ErrNilState indicates a nil state was given.
	ErrNilState = errors.New("nil state")

	// ErrNilSetup indicates a nil server setup was given.
	ErrNilSetup = errors.New("nil server setup")

	// ErrNilMessage indicates a nil message was given.
	ErrNilMessage = errors.New("nil message")

	// ErrDecodingEmptyHex indicates an empty hex string was given.
	ErrDecodingEmptyHex = errors.New("empty hex string")

	// ErrIdentityTooLong indicates a username, servername, or server identity exceeds MaxVectorLength.
	ErrIdentityTooLong = errors.New("identity is too long")

	// ErrContextTooLong indicates a context exceeds MaxVectorLength.
	ErrContextTooLong = errors.New("context is too long")

	// ErrSetupAndPrivateKey indicates both a server setup and a private key were given, where only one is used.
	ErrSetupAndPrivateKey = errors.New("a server setup and a private key are mutually exclusive")

	// ErrInvalidFakePublicKey indicates the setup's public key for unregistered clients is missing or invalid.
	ErrInvalidFakePublicKey = errors.New("invalid fake client public key")
)
