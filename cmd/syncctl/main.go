// Command syncctl administers a list sync deployment: vault keys, database
// migrations, API tokens, stored credentials and one-off sync runs.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/MKhiriev/go-list-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	app := newApp(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit))
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "syncctl:", err)
		os.Exit(1)
	}
}

func newApp(build models.AppBuildInfo) *cli.App {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "print the version",
	}

	dsnFlag := &cli.StringFlag{
		Name:     "dsn",
		Usage:    "database DSN: postgres:// URL or SQLite file path",
		EnvVars:  []string{"STORAGE_DB_DATABASE_URI"},
		Required: true,
	}
	keyFileFlag := &cli.StringFlag{
		Name:     "key-file",
		Usage:    "vault key file",
		EnvVars:  []string{"VAULT_KEY_FILE"},
		Required: true,
	}

	return &cli.App{
		Name:    "syncctl",
		Usage:   "administer the list sync service",
		Version: build.Version,
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "Print detailed version information",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, build.String())
					return nil
				},
			},
			{
				Name:   "keygen",
				Usage:  "Append a new key version to the vault key file",
				Flags:  []cli.Flag{keyFileFlag},
				Action: keygen,
			},
			{
				Name:   "migrate",
				Usage:  "Apply database migrations",
				Flags:  []cli.Flag{dsnFlag},
				Action: migrate,
			},
			{
				Name:  "token",
				Usage: "Issue an API bearer token for an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "account", Usage: "account id the token acts as", Required: true},
					&cli.StringFlag{Name: "sign-key", Usage: "token signing key", EnvVars: []string{"APP_TOKEN_SIGN_KEY"}, Required: true},
					&cli.StringFlag{Name: "issuer", Usage: "token issuer", EnvVars: []string{"APP_TOKEN_ISSUER"}, Value: "list-sync"},
					&cli.DurationFlag{Name: "ttl", Usage: "token lifetime", Value: defaultTokenTTL},
				},
				Action: token,
			},
			{
				Name:  "credential",
				Usage: "Seal and store the list service secret of an account",
				Flags: []cli.Flag{
					dsnFlag,
					keyFileFlag,
					&cli.StringFlag{Name: "account", Usage: "account id", Required: true},
					&cli.StringFlag{Name: "secret", Usage: "list service secret", EnvVars: []string{"SYNCCTL_SECRET"}, Required: true},
				},
				Action: credential,
			},
			{
				Name:  "sync",
				Usage: "Run one cycle for every group that can sync and print the results",
				Flags: []cli.Flag{
					dsnFlag,
					keyFileFlag,
					&cli.StringFlag{Name: "base-url", Usage: "list service base URL", EnvVars: []string{"ADAPTER_BASE_URL"}, Required: true},
					&cli.DurationFlag{Name: "timeout", Usage: "list service call timeout", Value: defaultAdapterTimeout},
				},
				Action: syncOnce,
			},
		},
	}
}
