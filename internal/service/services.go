package service

import (
	"fmt"

	"github.com/MKhiriev/go-list-sync/internal/adapter"
	"github.com/MKhiriev/go-list-sync/internal/config"
	"github.com/MKhiriev/go-list-sync/internal/crypto"
	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/internal/store"
	"github.com/MKhiriev/go-list-sync/models"
)

type Services struct {
	AuthService       AuthService
	CredentialService CredentialService
	AppInfoService    AppInfoService
	SyncManager       SyncManager
	Scheduler         *Scheduler
}

func NewServices(
	storages *store.Storages,
	vault crypto.Vault,
	source adapter.ListSource,
	cfg config.StructuredConfig,
	logger *logger.Logger,
	build models.AppBuildInfo,
	opts ...ManagerOption,
) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.App, build, storages.Backend, logger)
	if err != nil {
		return nil, fmt.Errorf("app info service: %w", err)
	}

	credentials := NewCredentialService(vault, storages.Credentials, storages.Groups, logger)
	manager := NewSyncManager(storages, source, credentials, NewReconciler(), cfg, logger, opts...)

	return &Services{
		AuthService:       NewAuthService(cfg.App, logger),
		CredentialService: credentials,
		AppInfoService:    appInfo,
		SyncManager:       manager,
		Scheduler:         NewScheduler(manager, logger),
	}, nil
}
