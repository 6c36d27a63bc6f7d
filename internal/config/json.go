package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk shape of the JSON config file.
type StructuredJSONConfig struct {
	App struct {
		TokenSignKey  string   `json:"token_sign_key"`
		TokenIssuer   string   `json:"token_issuer"`
		TokenDuration Duration `json:"token_duration"`
		Version       string   `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		GRPCAddress    string   `json:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Adapter struct {
		BaseURL    string   `json:"base_url"`
		Timeout    Duration `json:"timeout"`
		RateLimit  int      `json:"rate_limit"`
		RateWindow Duration `json:"rate_window"`
	} `json:"adapter,omitempty"`

	Sync struct {
		PollInterval     Duration `json:"poll_interval"`
		MaxHistory       int      `json:"max_history"`
		FetchConcurrency int      `json:"fetch_concurrency"`
	} `json:"sync,omitempty"`

	Vault struct {
		KeyFile string `json:"key_file"`
	} `json:"vault,omitempty"`

	Redis struct {
		Address  string   `json:"address"`
		Password string   `json:"password"`
		DB       int      `json:"db"`
		LockTTL  Duration `json:"lock_ttl"`
	} `json:"redis,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			TokenSignKey:  jsonCfg.App.TokenSignKey,
			TokenIssuer:   jsonCfg.App.TokenIssuer,
			TokenDuration: time.Duration(jsonCfg.App.TokenDuration),
			Version:       jsonCfg.App.Version,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			GRPCAddress:    jsonCfg.Server.GRPCAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Adapter: Adapter{
			BaseURL:    jsonCfg.Adapter.BaseURL,
			Timeout:    time.Duration(jsonCfg.Adapter.Timeout),
			RateLimit:  jsonCfg.Adapter.RateLimit,
			RateWindow: time.Duration(jsonCfg.Adapter.RateWindow),
		},
		Sync: Sync{
			PollInterval:     time.Duration(jsonCfg.Sync.PollInterval),
			MaxHistory:       jsonCfg.Sync.MaxHistory,
			FetchConcurrency: jsonCfg.Sync.FetchConcurrency,
		},
		Vault: Vault{
			KeyFile: jsonCfg.Vault.KeyFile,
		},
		Redis: Redis{
			Address:  jsonCfg.Redis.Address,
			Password: jsonCfg.Redis.Password,
			DB:       jsonCfg.Redis.DB,
			LockTTL:  time.Duration(jsonCfg.Redis.LockTTL),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration: %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
