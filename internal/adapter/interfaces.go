// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the List Source Adapter: the only component that
// talks to the external list service.
//
// The primary abstraction is [ListSource], which decouples the sync engine
// from the underlying transport. The package ships an HTTP/REST
// implementation ([NewHTTPListSource]).
//
// Every error returned by an implementation wraps [ErrAdapter] and exactly one
// kind ([ErrAuthExpired], [ErrRateLimited], [ErrNotFound], [ErrTransient]) so
// that callers can use [errors.Is] or [Kind] for transport-agnostic handling.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-list-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/list_source_mock.go -package=mock

// ListSource reads and modifies external lists on behalf of an account.
// Implementations must be safe for concurrent use.
type ListSource interface {
	// FetchList returns the item identifiers currently on list. The order of
	// the result carries no meaning.
	FetchList(ctx context.Context, account models.Account, list models.ListRef) ([]string, error)

	// ApplyOperations adds and removes items on list. Partial application is
	// reported as [ErrTransient]; the caller retries on its next cycle.
	ApplyOperations(ctx context.Context, account models.Account, list models.ListRef, add, remove []string) error
}
