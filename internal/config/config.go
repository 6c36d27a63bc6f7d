// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"time"
)

// StructuredConfig is the top-level configuration of the sync daemon. It is
// populated by merging environment variables, command-line flags, an optional
// JSON file and finally the defaults.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: environment variable name of a scalar field.
type StructuredConfig struct {
	// App holds API token settings and the application version.
	App App `envPrefix:"APP_"`

	// Storage holds the relational database settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds listener addresses and timeouts of the HTTP and gRPC servers.
	Server Server `envPrefix:"SERVER_"`

	// Adapter configures the list source client.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Sync configures the scheduler and the reconciliation cycle.
	Sync Sync `envPrefix:"SYNC_"`

	// Vault configures the credential vault.
	Vault Vault `envPrefix:"VAULT_"`

	// Redis configures optional cross-instance coordination. Empty address
	// disables it.
	Redis Redis `envPrefix:"REDIS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// TokenSignKey is the HMAC secret used to sign and verify API tokens.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in every issued token.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration specifies how long an issued token stays valid.
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// Version is exposed via the /api/version/ endpoint.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage groups the configuration for storage backends.
type Storage struct {
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the relational database backend.
type DB struct {
	// DSN selects the backend: a postgres:// or postgresql:// URL opens
	// PostgreSQL, any other non-empty value is a SQLite file path, and an
	// empty value keeps everything in memory.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Server holds network and timeout settings for the inbound transport layer.
type Server struct {
	// HTTPAddress is the listen address of the REST API ("host:port").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// GRPCAddress is the listen address of the gRPC health service. Empty
	// disables the gRPC server.
	// Env: SERVER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS"`

	// RequestTimeout bounds reading and writing a single HTTP request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Adapter configures the list source client.
type Adapter struct {
	// BaseURL is the root URL of the list source API.
	// Env: ADAPTER_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// Timeout bounds every single fetch or apply call.
	// Env: ADAPTER_TIMEOUT
	Timeout time.Duration `env:"TIMEOUT"`

	// RateLimit is the number of calls allowed per account within RateWindow.
	// Zero disables rate limiting. Requires Redis.
	// Env: ADAPTER_RATE_LIMIT
	RateLimit int `env:"RATE_LIMIT"`

	// RateWindow is the fixed window used by RateLimit.
	// Env: ADAPTER_RATE_WINDOW
	RateWindow time.Duration `env:"RATE_WINDOW"`
}

// Sync configures the scheduler and the reconciliation cycle.
type Sync struct {
	// PollInterval is the scheduler tick.
	// Env: SYNC_POLL_INTERVAL
	PollInterval time.Duration `env:"POLL_INTERVAL"`

	// MaxHistory is the number of results retained per group.
	// Env: SYNC_MAX_HISTORY
	MaxHistory int `env:"MAX_HISTORY"`

	// FetchConcurrency bounds parallel adapter calls inside one cycle.
	// Env: SYNC_FETCH_CONCURRENCY
	FetchConcurrency int `env:"FETCH_CONCURRENCY"`
}

// Vault configures the credential vault.
type Vault struct {
	// KeyFile is the path of the secret key file, read once at startup.
	// Env: VAULT_KEY_FILE
	KeyFile string `env:"KEY_FILE"`
}

// Redis holds connection settings for optional coordination.
type Redis struct {
	// Env: REDIS_ADDRESS
	Address string `env:"ADDRESS"`
	// Env: REDIS_PASSWORD
	Password string `env:"PASSWORD"`
	// Env: REDIS_DB
	DB int `env:"DB"`
	// LockTTL bounds how long a group lock survives a crashed holder.
	// Env: REDIS_LOCK_TTL
	LockTTL time.Duration `env:"LOCK_TTL"`
}

// Defaults returns the values used for every field left empty by the other
// sources.
func Defaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenIssuer:   "list-sync",
			TokenDuration: 24 * time.Hour,
		},
		Server: Server{
			HTTPAddress:    ":8080",
			RequestTimeout: 30 * time.Second,
		},
		Adapter: Adapter{
			Timeout:    30 * time.Second,
			RateWindow: time.Minute,
		},
		Sync: Sync{
			PollInterval:     5 * time.Minute,
			MaxHistory:       50,
			FetchConcurrency: 4,
		},
		Redis: Redis{
			LockTTL: 10 * time.Minute,
		},
	}
}

// GetStructuredConfig loads, merges, and validates the application
// configuration. For every field the first non-zero value wins, in order:
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Defaults
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(os.Args[1:]).
		withJSON().
		withDefaults().
		build()
}
