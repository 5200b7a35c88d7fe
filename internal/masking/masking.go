// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package masking provides the credential masking mechanism.
package masking

import (
	group "github.com/bytemare/crypto"

	"github.com/bytemare/opaque-engine/internal"
	"github.com/bytemare/opaque-engine/internal/encoding"
	"github.com/bytemare/opaque-engine/internal/keyrecovery"
)

// Mask encrypts the serverPublicKey and the envelope under nonce and the maskingKey.
func Mask(conf *internal.Configuration, nonce, maskingKey, serverPublicKey, envelope []byte) []byte {
	clear := encoding.Concat(serverPublicKey, envelope)
	return conf.XorResponse(maskingKey, nonce, clear)
}

// Unmask decrypts the maskedResponse and returns the server's public key and the envelope on success.
// maskedResponse must have been checked to be of length pointLength + envelope size.
func Unmask(
	conf *internal.Configuration,
	randomizedPwd, nonce, maskedResponse []byte,
) (serverPublicKey *group.Element, serverPublicKeyBytes []byte, envelope *keyrecovery.Envelope, err error) {
	maskingKey := keyrecovery.MaskingKey(conf, randomizedPwd)
	defer internal.ClearSlice(&maskingKey)

	clear := conf.XorResponse(maskingKey, nonce, maskedResponse)
	serverPublicKeyBytes = clear[:conf.AkePointLength()]

	envelope, err = keyrecovery.Parse(conf, clear[conf.AkePointLength():])
	if err != nil {
		return nil, nil, nil, err
	}

	serverPublicKey, err = internal.DecodeElement(conf.Group, serverPublicKeyBytes)
	if err != nil {
		return nil, nil, nil, internal.ErrInvalidServerPublicKey
	}

	return serverPublicKey, serverPublicKeyBytes, envelope, nil
}
