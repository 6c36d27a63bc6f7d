// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Request errors produced by this package before a service is called.
var (
	// ErrEmptyAuthorizationHeader is returned by the auth middleware when the
	// request has no "Authorization" header.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInvalidAuthorizationHeader is returned when the header is not of the
	// form "Bearer <token>".
	ErrInvalidAuthorizationHeader = errors.New("invalid `Authorization` header")

	// ErrNoAccountID is returned when an authorized route runs without an
	// account in its context.
	ErrNoAccountID = errors.New("no account id in request context")

	ErrInvalidJSON    = errors.New("invalid JSON was passed")
	ErrInvalidGroupID = errors.New("invalid group id")
	ErrInvalidLimit   = errors.New("invalid history limit")
)
