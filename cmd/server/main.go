package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-list-sync/internal/app"
	"github.com/MKhiriev/go-list-sync/internal/config"
	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	build := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	fmt.Println(build)

	log := logger.NewLogger("list-sync-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().
		Str("http_address", cfg.Server.HTTPAddress).
		Str("grpc_address", cfg.Server.GRPCAddress).
		Str("adapter_url", cfg.Adapter.BaseURL).
		Dur("poll_interval", cfg.Sync.PollInterval).
		Bool("redis", cfg.Redis.Address != "").
		Msg("received configs")

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	daemon, err := app.New(ctx, cfg, build, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating sync daemon")
	}

	if err := daemon.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("sync daemon stopped with error")
	}
}

