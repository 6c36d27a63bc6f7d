package service

import (
	"context"

	"github.com/MKhiriev/go-list-sync/internal/config"
	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/models"
)

type appInfoService struct {
	info models.AppInfo

	logger *logger.Logger
}

// NewAppInfoService reports cfg.Version together with the build metadata and
// the storage backend the process runs on. An empty version is rejected.
func NewAppInfoService(cfg config.App, build models.AppBuildInfo, storageBackend string, logger *logger.Logger) (AppInfoService, error) {
	if cfg.Version == "" {
		return nil, ErrVersionIsNotSpecified
	}

	return &appInfoService{
		info: models.AppInfo{
			Version:   cfg.Version,
			BuildDate: build.Date,
			Commit:    build.Commit,
			Storage:   storageBackend,
		},
		logger: logger,
	}, nil
}

func (s *appInfoService) GetAppVersion(ctx context.Context) string {
	return s.info.Version
}

func (s *appInfoService) GetAppInfo(ctx context.Context) models.AppInfo {
	return s.info
}
