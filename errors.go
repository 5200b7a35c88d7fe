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
	"fmt"
	"io"
	"log/slog"
	"strings"
)

var (
	// ErrConfiguration indicates that the configuration is invalid.
	ErrConfiguration = ErrCodeConfiguration.New("")

	// ErrRegistration indicates that the registration process failed.
	ErrRegistration = ErrCodeRegistration.New("")

	// ErrAuthentication indicates that the authentication process failed. A failed verification never carries a cause.
	ErrAuthentication = ErrCodeAuthentication.New("")

	// ErrRegistrationRequest indicates an error with a registration request.
	ErrRegistrationRequest = ErrCodeMessage.New("invalid registration request")

	// ErrRegistrationResponse indicates an error with a registration response.
	ErrRegistrationResponse = ErrCodeMessage.New("invalid registration response")

	// ErrRegistrationRecord indicates an error with a registration record.
	ErrRegistrationRecord = ErrCodeMessage.New("invalid registration record")

	// ErrKE1 indicates an error with a KE1 message.
	ErrKE1 = ErrCodeMessage.New("invalid KE1 message")

	// ErrKE2 indicates an error with a KE2 message.
	ErrKE2 = ErrCodeMessage.New("invalid KE2 message")

	// ErrKE3 indicates an error with a KE3 message.
	ErrKE3 = ErrCodeMessage.New("invalid KE3 message")

	// ErrCredentialIdentifier indicates an empty or otherwise unusable username.
	ErrCredentialIdentifier = ErrCodeMessage.New("invalid credential identifier")

	// ErrContext indicates an unusable protocol context.
	ErrContext = ErrCodeMessage.New("invalid context")

	// ErrServerSetup indicates that the server's setup material is invalid.
	ErrServerSetup = ErrCodeServerSetup.New("")

	// ErrServerOptions indicates that the provided server options are invalid.
	ErrServerOptions = ErrCodeServerOptions.New("")

	// ErrCredentialFile indicates that the stored credential file is invalid.
	ErrCredentialFile = ErrCodeCredentialFile.New("")

	// ErrState indicates that a serialized protocol state is invalid.
	ErrState = ErrCodeState.New("")

	// ErrClientOptions indicates that the client options are invalid.
	ErrClientOptions = ErrCodeClientOptions.New("")
)

// ErrorCode represents the type of error in the OPAQUE protocol. It is used to categorize errors and provide
// a consistent way to handle error conditions.
type ErrorCode byte //nolint:errname // This is an error code, not an error type.

const (
	// ErrCodeUnknown represents an unknown error.
	ErrCodeUnknown ErrorCode = iota

	// ErrCodeConfiguration represents an error related to the configuration.
	ErrCodeConfiguration

	// ErrCodeRegistration represents an error related to the registration phase.
	ErrCodeRegistration

	// ErrCodeAuthentication represents an error related to the authentication phase.
	ErrCodeAuthentication

	// ErrCodeMessage represents an error related to message processing.
	ErrCodeMessage

	// ErrCodeServerSetup represents an error related to the server's setup material.
	ErrCodeServerSetup

	// ErrCodeServerOptions represents an error related to the server's optional arguments.
	ErrCodeServerOptions

	// ErrCodeCredentialFile represents an error related to a stored credential file.
	ErrCodeCredentialFile

	// ErrCodeState represents an error related to a serialized client or server state.
	ErrCodeState

	// ErrCodeClientOptions represents an error related to the client's optional arguments.
	ErrCodeClientOptions
)

var codeNames = [...]string{
	ErrCodeUnknown:        "unknown_error",
	ErrCodeConfiguration:  "configuration_error",
	ErrCodeRegistration:   "registration_error",
	ErrCodeAuthentication: "authentication_error",
	ErrCodeMessage:        "message_error",
	ErrCodeServerSetup:    "server_setup_error",
	ErrCodeServerOptions:  "server_options_error",
	ErrCodeCredentialFile: "credential_file_error",
	ErrCodeState:          "state_error",
	ErrCodeClientOptions:  "client_options_error",
}

// New returns an Error of this code with message, wrapping errs. An empty message defaults to the code's name
// with spaces, e.g. "state error".
func (c ErrorCode) New(message string, errs ...error) *Error {
	if message == "" {
		message = strings.ReplaceAll(c.String(), "_", " ")
	}

	return &Error{Code: c, Message: message, Err: errors.Join(errs...)}
}

// String returns the snake case name of the code, or "unknown_error" for unknown codes.
func (c ErrorCode) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}

	return codeNames[ErrCodeUnknown]
}

// Error returns the name of the code, so that an ErrorCode can be used as an error.
func (c ErrorCode) Error() string {
	return c.String()
}

// codeOf returns the code carried by err, if err is an ErrorCode or an *Error.
func codeOf(err error) (ErrorCode, bool) {
	var code ErrorCode
	if errors.As(err, &code) {
		return code, true
	}

	return 0, false
}

// Is reports whether target carries the same code.
func (c ErrorCode) Is(target error) bool {
	code, ok := codeOf(target)
	return ok && code == c
}

// As sets an *ErrorCode target to c.
func (c ErrorCode) As(target any) bool {
	t, ok := target.(*ErrorCode)
	if ok {
		*t = c
	}

	return ok
}

// Error is a categorized protocol error. Its message is the concise form, and the cause is available through
// Unwrap or the %+v verb.
type Error struct {
	Err     error
	Message string
	Code    ErrorCode
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Join returns an error chaining e with the errs, so that errors.Is matches e and each of errs.
func (e *Error) Join(errs ...error) error {
	return errors.Join(e, errors.Join(errs...))
}

// Is reports whether target has the same code and, ignoring case, the same message.
func (e *Error) Is(target error) bool {
	return e.Code.Is(target) && strings.EqualFold(e.Message, target.Error())
}

// As sets *ErrorCode and **Error targets.
func (e *Error) As(target any) bool {
	switch t := target.(type) {
	case *ErrorCode:
		*t = e.Code
	case **Error:
		*t = e
	default:
		return false
	}

	return true
}

// LogValue groups the code, its name, the message and the cause, for structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 4)
	attrs = append(attrs,
		slog.Int("code", int(e.Code)),
		slog.String("code_name", e.Code.String()),
		slog.String("message", e.Message),
	)

	if e.Err != nil {
		attrs = append(attrs, slog.Any("error", e.Err))
	}

	return slog.GroupValue(attrs...)
}

// Format prints the message for %s and %v, the quoted message for %q, and the code followed by the indented tree
// of causes for %+v.
func (e *Error) Format(f fmt.State, verb rune) {
	switch {
	case verb == 'v' && f.Flag('+'):
		_, _ = io.WriteString(f, e.tree())
	case verb == 'q':
		_, _ = fmt.Fprintf(f, "%q", e.Message)
	default:
		_, _ = io.WriteString(f, e.Message)
	}
}

func (e *Error) tree() string {
	var b strings.Builder

	fmt.Fprintf(&b, "code=%d(%s)", e.Code, e.Code)

	if e.Message != "" {
		fmt.Fprintf(&b, " message=%q", e.Message)
	}

	writeCauses(&b, e.Err, 0)

	return b.String()
}

func writeCauses(b *strings.Builder, err error, depth int) {
	if err == nil {
		return
	}

	fmt.Fprintf(b, "\n%s↳ %v", strings.Repeat("  ", depth), err)

	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, child := range u.Unwrap() {
			writeCauses(b, child, depth+1)
		}
	case interface{ Unwrap() error }:
		writeCauses(b, u.Unwrap(), depth+1)
	}
}
