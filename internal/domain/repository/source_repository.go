package repository

import (
	"context"
	"time"

	"github.com/praio-service/internal/domain"
)

// ForecastRepository - hourly meteorological and marine series provider
type ForecastRepository interface {
	// Forecast returns the meteorological series covering day and the day after.
	Forecast(ctx context.Context, lat, lon float64, day time.Time) (domain.HourlySeries, error)

	// Marine returns the marine series covering day and the day after.
	Marine(ctx context.Context, lat, lon float64, day time.Time) (domain.HourlySeries, error)
}

// BulletinRepository - water-quality bulletin publisher
type BulletinRepository interface {
	// LatestURL discovers the newest bulletin document link on the index page.
	LatestURL(ctx context.Context) (string, error)

	// Download stores the document at path.
	Download(ctx context.Context, documentURL, path string) error

	// Extract reads the station code -> compliance mapping from a stored document.
	// A missing document yields an empty mapping.
	Extract(path string) (map[string]bool, error)
}
