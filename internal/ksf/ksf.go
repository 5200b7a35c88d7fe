// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package ksf provides the Key Stretching Functions.
package ksf

import (
	"errors"
	"fmt"

	"github.com/bytemare/ksf"
)

// ErrParameters indicates an invalid amount of KSF parameters.
var ErrParameters = errors.New("invalid number of KSF parameters")

// IsValid returns whether the identifier designates a usable KSF. The zero value is the identity KSF.
func IsValid(id ksf.Identifier) bool {
	return id == 0 || id.Available()
}

// KSF wraps a key stretching function and exposes its functions.
type KSF struct {
	ksfInterface
	parameters []int
	id         ksf.Identifier
}

// NewKSF returns a newly instantiated KSF.
func NewKSF(id ksf.Identifier) *KSF {
	if id == 0 {
		return &KSF{ksfInterface: &IdentityKSF{}}
	}

	return &KSF{ksfInterface: id.Get(), id: id}
}

// WithParameters returns a copy of the KSF using the given parameters instead of the recommended defaults.
// The number of parameters must match what the underlying function expects.
func (k *KSF) WithParameters(parameters ...int) (*KSF, error) {
	if len(parameters) == 0 {
		return k, nil
	}

	if expected := len(k.Parameters()); len(parameters) != expected {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrParameters, expected, len(parameters))
	}

	return &KSF{ksfInterface: k.ksfInterface, parameters: parameters, id: k.id}, nil
}

// Harden stretches the password into an output of the given length. The KSF instance is not modified, so it can
// safely be shared across goroutines.
func (k *KSF) Harden(password, salt []byte, length int) []byte {
	if len(k.parameters) == 0 {
		return k.ksfInterface.Harden(password, salt, length)
	}

	// A fresh instance keeps the shared one on its default parameters.
	f := k.id.Get()
	f.Parameterize(k.parameters...)

	return f.Harden(password, salt, length)
}

type ksfInterface interface {
	// Harden uses default parameters for the key derivation function over the input password and salt.
	Harden(password, salt []byte, length int) []byte

	// Parameterize replaces the functions parameters with the new ones.
	// Must match the amount of parameters for the KSF.
	Parameterize(parameters ...int)

	// Parameters returns the list of internal parameters. If none were provided or modified,
	// the recommended defaults values are used.
	Parameters() []int
}

// IdentityKSF represents a KSF with no operations.
type IdentityKSF struct{}

// Harden returns the password as is.
func (i IdentityKSF) Harden(password, _ []byte, _ int) []byte {
	return password
}

// Parameterize applies KSF parameters if defined.
func (i IdentityKSF) Parameterize(_ ...int) {
	// no-op
}

// Parameters returns the list of internal parameters.
func (i IdentityKSF) Parameters() []int {
	return nil
}
