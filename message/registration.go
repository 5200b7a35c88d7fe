// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package message provides message structures for the OPAQUE protocol.
package message

import (
	group "github.com/bytemare/crypto"

	"github.com/bytemare/opaque-engine/internal/encoding"
)

// RegistrationRequest represents the RegistrationRequest message.
type RegistrationRequest struct {
	BlindedMessage *group.Element `json:"blindedMessage"`
}

// Serialize returns the byte encoding of RegistrationRequest.
func (r *RegistrationRequest) Serialize() []byte {
	return r.BlindedMessage.Encode()
}

// RegistrationResponse represents the RegistrationResponse message.
type RegistrationResponse struct {
	EvaluatedMessage *group.Element `json:"evaluatedMessage"`
	Pks              *group.Element `json:"serverPublicKey"`
}

// Serialize returns the byte encoding of RegistrationResponse.
func (r *RegistrationResponse) Serialize() []byte {
	return encoding.Concat(r.EvaluatedMessage.Encode(), r.Pks.Encode())
}

// RegistrationRecord represents the RegistrationRecord message, the client's final registration upload.
type RegistrationRecord struct {
	PublicKey  *group.Element `json:"clientPublicKey"`
	MaskingKey []byte         `json:"maskingKey"`
	Envelope   []byte         `json:"envelope"`
}

// Serialize returns the byte encoding of RegistrationRecord.
func (r *RegistrationRecord) Serialize() []byte {
	return encoding.Concat3(r.PublicKey.Encode(), r.MaskingKey, r.Envelope)
}
