package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/MKhiriev/go-list-sync/internal/adapter"
	"github.com/MKhiriev/go-list-sync/internal/config"
	"github.com/MKhiriev/go-list-sync/internal/crypto"
	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/internal/service"
	"github.com/MKhiriev/go-list-sync/internal/store"
	"github.com/MKhiriev/go-list-sync/internal/utils"
	"github.com/MKhiriev/go-list-sync/models"
)

const (
	defaultTokenTTL       = 24 * time.Hour
	defaultAdapterTimeout = 30 * time.Second
)

func newLogger(c *cli.Context) *logger.Logger {
	return logger.NewConsoleLogger("syncctl", c.App.ErrWriter)
}

func keygen(c *cli.Context) error {
	version, err := crypto.AddKeyVersion(c.String("key-file"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "added key version %d\n", version)
	return nil
}

func migrate(c *cli.Context) error {
	storages, err := openStorages(c)
	if err != nil {
		return err
	}
	defer storages.Close()

	fmt.Fprintf(c.App.Writer, "%s database is up to date\n", storages.Backend)
	return nil
}

func token(c *cli.Context) error {
	t, err := utils.GenerateJWTToken(c.String("issuer"), c.String("account"), c.Duration("ttl"), c.String("sign-key"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, t.SignedString)
	return nil
}

func credential(c *cli.Context) error {
	vault, err := crypto.NewVault(c.String("key-file"))
	if err != nil {
		return err
	}
	storages, err := openStorages(c)
	if err != nil {
		return err
	}
	defer storages.Close()

	credentials := service.NewCredentialService(vault, storages.Credentials, storages.Groups, newLogger(c))
	if err := credentials.StoreCredential(c.Context, c.String("account"), c.String("secret")); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "credential stored for %s (key version %d)\n", c.String("account"), vault.CurrentVersion())
	return nil
}

// syncOnce runs SyncAll against the database and prints each result as one
// JSON line. Member failures do not fail the command; storage errors do.
func syncOnce(c *cli.Context) error {
	log := newLogger(c)

	vault, err := crypto.NewVault(c.String("key-file"))
	if err != nil {
		return err
	}
	storages, err := openStorages(c)
	if err != nil {
		return err
	}
	defer storages.Close()

	cfg := config.Defaults()
	cfg.App.Version = "syncctl"
	cfg.Adapter.BaseURL = c.String("base-url")
	cfg.Adapter.Timeout = c.Duration("timeout")

	source, err := adapter.NewHTTPListSource(cfg.Adapter, log)
	if err != nil {
		return err
	}
	services, err := service.NewServices(storages, vault, source, *cfg, log, models.AppBuildInfo{})
	if err != nil {
		return err
	}
	defer services.SyncManager.Shutdown(c.Context)

	results, err := services.SyncManager.SyncAll(c.Context)
	enc := json.NewEncoder(c.App.Writer)
	for _, r := range results {
		if encErr := enc.Encode(r); encErr != nil {
			return encErr
		}
	}
	return err
}

func openStorages(c *cli.Context) (*store.Storages, error) {
	dsn := c.String("dsn")
	if dsn == "" {
		return nil, fmt.Errorf("%w: dsn is empty", config.ErrConfig)
	}
	return store.NewStorages(c.Context, config.Storage{DB: config.DB{DSN: dsn}}, newLogger(c))
}
