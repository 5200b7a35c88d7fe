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

// Start returns the client's ephemeral secret key share, and fills in the AKE part of ke1.
func Start(conf *internal.Configuration, options Options, ke1 *message.KE1) (*group.Scalar, error) {
	esk, epk, nonce, err := options.ephemeralKeyShare(conf)
	if err != nil {
		return nil, err
	}

	ke1.ClientNonce = nonce
	ke1.ClientPublicKeyshare = epk

	return esk, nil
}

// Finalize verifies the server's MAC in ke2. On success, it returns the KE3 message and the session secret.
// The client's identity, if nil, must already be set to its public key by the caller.
func Finalize(
	conf *internal.Configuration,
	identities *Identities,
	context []byte,
	clientSecretKey, esk *group.Scalar,
	serverPublicKey *group.Element,
	ke1 []byte,
	ke2 *message.KE2,
) (*message.KE3, []byte, error) {
	ikm := k3dh(
		ke2.ServerPublicKeyshare, esk,
		serverPublicKey, esk,
		ke2.ServerPublicKeyshare, clientSecretKey,
	)
	defer internal.ClearSlice(&ikm)

	sessionSecret, serverMac, clientMac := core3DH(conf, identities, context, ikm, ke1, ke2)

	if !conf.MAC.Equal(serverMac, ke2.ServerMac) {
		internal.ClearSlice(&sessionSecret)
		return nil, nil, internal.ErrInvalidServerMac
	}

	return &message.KE3{ClientMac: clientMac}, sessionSecret, nil
}
