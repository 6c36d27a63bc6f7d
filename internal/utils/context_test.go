// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextKeyString(t *testing.T) {
	assert.Equal(t, "testKey", contextKey("testKey").String())
	assert.Equal(t, "accountID", AccountIDCtxKey.String())
	assert.Equal(t, "traceID", TraceIDCtxKey.String())
}

func TestGetAccountIDFromContext(t *testing.T) {
	tests := []struct {
		name   string
		ctx    context.Context
		want   string
		wantOK bool
	}{
		{"set", WithAccountID(context.Background(), "acc-1"), "acc-1", true},
		{"missing", context.Background(), "", false},
		{"empty", WithAccountID(context.Background(), ""), "", false},
		{"wrong type", context.WithValue(context.Background(), AccountIDCtxKey, int64(42)), "", false},
		{"different key", context.WithValue(context.Background(), contextKey("other"), "acc-1"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GetAccountIDFromContext(tt.ctx)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetTraceIDFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDCtxKey, "trace-1")
	assert.Equal(t, "trace-1", GetTraceIDFromContext(ctx))
	assert.Empty(t, GetTraceIDFromContext(context.Background()))
}
