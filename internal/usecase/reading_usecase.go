package usecase

import (
	"context"
	"time"

	"github.com/praio-service/internal/domain"
	"github.com/praio-service/internal/domain/repository"
	"go.uber.org/zap"
)

const precipitationField = "precipitation"

// ReadingUseCase builds the current reading of a point from its hourly series.
type ReadingUseCase struct {
	forecast repository.ForecastRepository
	logger   *zap.Logger
}

func NewReadingUseCase(forecast repository.ForecastRepository, logger *zap.Logger) *ReadingUseCase {
	return &ReadingUseCase{
		forecast: forecast,
		logger:   logger,
	}
}

// Fetch never fails: a failed upstream call leaves an empty series and the
// matching fields absent.
func (uc *ReadingUseCase) Fetch(ctx context.Context, point domain.MonitoringPoint, hour time.Time) domain.CurrentReading {
	lat, lon, ok := point.LatLon()
	if !ok {
		uc.logger.Warn("Point has no coordinates", zap.String("code", point.Code))
		return domain.NewEmptyReading(hour)
	}

	meteo, err := uc.forecast.Forecast(ctx, lat, lon, hour)
	if err != nil {
		uc.logger.Warn("Forecast fetch failed",
			zap.String("code", point.Code),
			zap.Error(err))
		meteo = domain.HourlySeries{}
	}

	marine, err := uc.forecast.Marine(ctx, lat, lon, hour)
	if err != nil {
		uc.logger.Warn("Marine fetch failed",
			zap.String("code", point.Code),
			zap.Error(err))
		marine = domain.HourlySeries{}
	}

	reading := BuildReading(meteo, marine, hour)
	if reading.Failed() {
		uc.logger.Warn("No reading for reference hour",
			zap.String("code", point.Code),
			zap.String("hour", reading.Timestamp))
	}
	return reading
}

// BuildReading picks the values at the reference hour from both series.
// Marine values are read at the meteorological index.
func BuildReading(meteo, marine domain.HourlySeries, hour time.Time) domain.CurrentReading {
	key := hour.Format(domain.TimestampLayout)
	idx := meteo.Index(key)
	if idx < 0 {
		return domain.NewEmptyReading(hour)
	}

	rained := rainedBefore(meteo.Field(precipitationField), idx)

	return domain.CurrentReading{
		Timestamp:                key,
		Temperature:              meteo.At("temperature_2m", idx),
		Precipitation:            meteo.At(precipitationField, idx),
		PrecipitationProbability: meteo.At("precipitation_probability", idx),
		Rain:                     meteo.At("rain", idx),
		RelativeHumidity:         meteo.At("relative_humidity_2m", idx),
		ApparentTemperature:      meteo.At("apparent_temperature", idx),
		WindSpeed:                meteo.At("wind_speed_10m", idx),
		WindDirection:            meteo.At("wind_direction_10m", idx),
		UVIndex:                  meteo.At("uv_index", idx),
		WeatherCode:              meteo.At("weather_code", idx),
		WaveHeight:               marine.At("wave_height", idx),
		WavePeriod:               marine.At("wave_period", idx),
		RainedLast8h:             &rained,
		Forecast24h:              buildForecast(meteo, idx),
	}
}

// rainedBefore reports rain in any of the RainLookbackHours samples before idx.
func rainedBefore(precipitation []*float64, idx int) bool {
	if idx < domain.RainLookbackHours {
		return false
	}
	for i := idx - domain.RainLookbackHours; i < idx && i < len(precipitation); i++ {
		if p := precipitation[i]; p != nil && *p > 0 {
			return true
		}
	}
	return false
}

func buildForecast(meteo domain.HourlySeries, idx int) []domain.ForecastEntry {
	forecast := make([]domain.ForecastEntry, 0, domain.ForecastHours)
	for i := 0; i < domain.ForecastHours; i++ {
		h := idx + i
		if h >= len(meteo.Time) {
			break
		}
		forecast = append(forecast, domain.ForecastEntry{
			Hour:                     meteo.Time[h],
			Temperature:              meteo.At("temperature_2m", h),
			PrecipitationProbability: meteo.At("precipitation_probability", h),
			WeatherCode:              meteo.At("weather_code", h),
		})
	}
	return forecast
}
