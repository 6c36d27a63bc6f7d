package config

import (
	"errors"
	"fmt"
)

// ErrConfig is the root of every configuration error. Configuration errors
// are fatal and only happen at startup.
var ErrConfig = errors.New("config error")

// Validation errors returned by [StructuredConfig.validate].
var (
	// ErrInvalidAdapterConfigs indicates invalid list source settings
	// (for example, missing base URL or non-positive timeout).
	ErrInvalidAdapterConfigs = fmt.Errorf("%w: invalid adapter configuration", ErrConfig)
	// ErrInvalidSyncConfigs indicates invalid scheduler or cycle settings.
	ErrInvalidSyncConfigs = fmt.Errorf("%w: invalid sync configuration", ErrConfig)
	// ErrInvalidVaultConfigs indicates a missing key file location.
	ErrInvalidVaultConfigs = fmt.Errorf("%w: invalid vault configuration", ErrConfig)
	// ErrInvalidServerConfigs indicates that no server can be started.
	ErrInvalidServerConfigs = fmt.Errorf("%w: invalid server configuration", ErrConfig)
)
