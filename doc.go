// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package opaque implements the OPAQUE asymmetric password-authenticated key exchange protocol.
//
// OPAQUE is an asymmetric Password Authenticated Key Exchange (PAKE). A client and a server establish a shared
// session key from a password, and the server never learns nor stores the password in a recoverable form.
//
// The engine exposes the eight protocol steps, four for registration and four for login. Client, Server and
// ServerSetup are immutable once built and can be shared across goroutines. Every intermediate state between two
// steps is returned to the caller as a value with a versioned binary encoding, so it can cross any boundary between
// the start and finish of a step pair. The byte level entry points in boundary.go wrap the steps for callers that
// only handle byte slices.
//
// For protocol details, please refer to RFC 9807 (https://datatracker.ietf.org/doc/rfc9807).
package opaque
