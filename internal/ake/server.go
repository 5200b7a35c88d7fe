// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package ake

import (
	group "github.com/bytemare/crypto"

	"github.com/bytemare/opaque-engine/internal"
	"github.com/bytemare/opaque-engine/message"
)

// Response produces a 3DH server response message, along with the session secret and the client MAC the server
// expects in KE3.
func Response(
	conf *internal.Configuration,
	identities *Identities,
	context []byte,
	serverSecretKey *group.Scalar,
	clientPublicKey *group.Element,
	ke1 *message.KE1,
	response *message.CredentialResponse,
	options Options,
) (ke2 *message.KE2, sessionSecret, expectedClientMac []byte, err error) {
	esk, epk, nonce, err := options.ephemeralKeyShare(conf)
	if err != nil {
		return nil, nil, nil, err
	}
	defer internal.ClearScalar(&esk)

	ke2 = &message.KE2{
		CredentialResponse:   response,
		ServerNonce:          nonce,
		ServerPublicKeyshare: epk,
	}

	ikm := k3dh(
		ke1.ClientPublicKeyshare, esk,
		ke1.ClientPublicKeyshare, serverSecretKey,
		clientPublicKey, esk,
	)
	defer internal.ClearSlice(&ikm)

	sessionSecret, ke2.ServerMac, expectedClientMac = core3DH(conf, identities, context, ikm, ke1.Serialize(), ke2)

	return ke2, sessionSecret, expectedClientMac, nil
}

// Verify checks the authentication tag contained in ke3 against the expected one, in constant time.
func Verify(conf *internal.Configuration, expectedClientMac []byte, ke3 *message.KE3) error {
	if !conf.MAC.Equal(expectedClientMac, ke3.ClientMac) {
		return internal.ErrInvalidClientMac
	}

	return nil
}
