// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package oprf

import (
	group "github.com/bytemare/crypto"

	"github.com/bytemare/opaque-engine/internal/encoding"
	"github.com/bytemare/opaque-engine/internal/tag"
)

// Client implements the OPRF client and holds its state.
type Client struct {
	blind *group.Scalar
	Identifier
	input []byte
}

// Blind masks the input. If blind is nil, a fresh random non-zero scalar is used.
func (c *Client) Blind(input []byte, blind *group.Scalar) (*group.Element, error) {
	g := c.Group()

	p := g.HashToGroup(input, c.dst(tag.OPRFPointPrefix))
	if p.IsIdentity() {
		return nil, ErrInputIdentity
	}

	if blind == nil {
		blind = g.NewScalar().Random()
	} else {
		blind = blind.Copy()
	}

	c.blind = blind
	c.input = input

	return p.Multiply(c.blind), nil
}

// Blinding returns a copy of the blinding scalar of the last Blind call, or nil.
func (c *Client) Blinding() *group.Scalar {
	if c.blind == nil {
		return nil
	}

	return c.blind.Copy()
}

// Finalize terminates the OPRF by unblinding the evaluation and hashing the transcript.
func (c *Client) Finalize(evaluation *group.Element) []byte {
	invert := c.blind.Copy().Invert()
	u := evaluation.Copy().Multiply(invert).Encode()

	return c.hash(
		encoding.EncodeVector(c.input),
		encoding.EncodeVector(u),
		[]byte(tag.OPRFFinalize),
	)
}

// Flush zeroes the blind and drops the reference to the input.
func (c *Client) Flush() {
	if c.blind != nil {
		c.blind.Zero()
		c.blind = nil
	}

	c.input = nil
}
