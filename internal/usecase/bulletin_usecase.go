package usecase

import (
	"context"
	"errors"

	"github.com/praio-service/internal/domain/repository"
	"github.com/praio-service/internal/infrastructure/bulletin"
	"go.uber.org/zap"
)

// BulletinUseCase refreshes the water-quality bulletin once per cycle.
type BulletinUseCase struct {
	source repository.BulletinRepository
	path   string
	logger *zap.Logger
}

func NewBulletinUseCase(source repository.BulletinRepository, path string, logger *zap.Logger) *BulletinUseCase {
	return &BulletinUseCase{
		source: source,
		path:   path,
		logger: logger,
	}
}

// Refresh discovers, downloads and extracts the latest bulletin. Any failure
// yields an empty mapping so compliance is omitted for the cycle.
func (uc *BulletinUseCase) Refresh(ctx context.Context) map[string]bool {
	documentURL, err := uc.source.LatestURL(ctx)
	if err != nil {
		if errors.Is(err, bulletin.ErrLinkNotFound) {
			uc.logger.Warn("Bulletin link not found, compliance omitted this cycle")
		} else {
			uc.logger.Warn("Bulletin discovery failed, compliance omitted this cycle", zap.Error(err))
		}
		return map[string]bool{}
	}

	if err := uc.source.Download(ctx, documentURL, uc.path); err != nil {
		uc.logger.Warn("Bulletin download failed, compliance omitted this cycle",
			zap.String("url", documentURL),
			zap.Error(err))
		return map[string]bool{}
	}

	compliance, err := uc.source.Extract(uc.path)
	if err != nil {
		uc.logger.Warn("Bulletin extraction failed, compliance omitted this cycle",
			zap.String("path", uc.path),
			zap.Error(err))
		return map[string]bool{}
	}

	uc.logger.Info("Bulletin extracted", zap.Int("stations", len(compliance)))
	return compliance
}
