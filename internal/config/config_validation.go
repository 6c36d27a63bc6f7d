// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "fmt"

// validate checks that the final merged [StructuredConfig] can start the
// daemon. Every returned error wraps [ErrConfig].
func (cfg *StructuredConfig) validate() error {
	if cfg.Vault.KeyFile == "" {
		return fmt.Errorf("%w: key file path is empty", ErrInvalidVaultConfigs)
	}

	if cfg.Adapter.BaseURL == "" {
		return fmt.Errorf("%w: base url is empty", ErrInvalidAdapterConfigs)
	}
	if cfg.Adapter.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidAdapterConfigs)
	}
	if cfg.Adapter.RateLimit < 0 {
		return fmt.Errorf("%w: rate limit must not be negative", ErrInvalidAdapterConfigs)
	}
	if cfg.Adapter.RateLimit > 0 && cfg.Redis.Address == "" {
		return fmt.Errorf("%w: rate limit requires redis", ErrInvalidAdapterConfigs)
	}

	if cfg.Sync.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidSyncConfigs)
	}
	if cfg.Sync.MaxHistory < 1 {
		return fmt.Errorf("%w: max history must be at least 1", ErrInvalidSyncConfigs)
	}
	if cfg.Sync.FetchConcurrency < 1 {
		return fmt.Errorf("%w: fetch concurrency must be at least 1", ErrInvalidSyncConfigs)
	}

	if cfg.Server.HTTPAddress == "" && cfg.Server.GRPCAddress == "" {
		return fmt.Errorf("%w: no listen address", ErrInvalidServerConfigs)
	}

	return nil
}
