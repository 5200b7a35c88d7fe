// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package opaque

import (
	group "github.com/bytemare/crypto"

	"github.com/bytemare/opaque-engine/internal"
	"github.com/bytemare/opaque-engine/message"
)

// CredentialFile is the server-side record of a client's registration, to be stored by the caller under the
// client's username. Its encoding carries a format version and the groups it was created for, so that a file
// from an incompatible configuration is rejected instead of misread.
type CredentialFile struct {
	*message.RegistrationRecord
	oprfGroup group.Group
	akeGroup  group.Group
}

// Serialize returns the versioned byte encoding of the credential file:
// version || kind || AKE group || OPRF group || length-prefixed registration record.
func (f *CredentialFile) Serialize() []byte {
	b := newBuilder(kindCredentialFile, f.akeGroup)
	b.AddUint8(byte(f.oprfGroup))
	addVector(b, f.RegistrationRecord.Serialize())

	return build(b)
}

// Flush attempts to zero out the record's masking key and envelope.
func (f *CredentialFile) Flush() {
	internal.ClearSlice(&f.MaskingKey)
	internal.ClearSlice(&f.Envelope)
}

func newCredentialFile(conf *internal.Configuration, record *message.RegistrationRecord) *CredentialFile {
	return &CredentialFile{
		RegistrationRecord: record,
		oprfGroup:          conf.OPRF.Group(),
		akeGroup:           conf.Group,
	}
}

// CredentialFile decodes a serialized credential file, and validates the record it contains.
func (d *Deserializer) CredentialFile(input []byte) (*CredentialFile, error) {
	s, err := readHeader(input, kindCredentialFile, d.conf.Group)
	if err != nil {
		return nil, ErrCredentialFile.Join(err)
	}

	var oprfGroup uint8
	if !s.ReadUint8(&oprfGroup) {
		return nil, ErrCredentialFile.Join(internal.ErrInvalidEncodingLength)
	}

	if group.Group(oprfGroup) != d.conf.OPRF.Group() {
		return nil, ErrCredentialFile.Join(internal.ErrWrongGroup)
	}

	var encodedRecord []byte
	if err = readVectors(s, &encodedRecord); err != nil {
		return nil, ErrCredentialFile.Join(err)
	}

	record, err := d.RegistrationRecord(encodedRecord)
	if err != nil {
		return nil, ErrCredentialFile.Join(err)
	}

	return newCredentialFile(d.conf, record), nil
}
