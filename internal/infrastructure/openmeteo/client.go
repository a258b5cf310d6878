package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/praio-service/internal/domain"
	"github.com/praio-service/internal/domain/repository"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// MeteoFields - hourly variables requested from the forecast endpoint
var MeteoFields = []string{
	"temperature_2m",
	"precipitation",
	"precipitation_probability",
	"rain",
	"relative_humidity_2m",
	"apparent_temperature",
	"wind_speed_10m",
	"wind_direction_10m",
	"uv_index",
	"weather_code",
}

// MarineFields - hourly variables requested from the marine endpoint
var MarineFields = []string{
	"wave_height",
	"wave_period",
}

// JSONFetcher - resilient GET returning decoded JSON
type JSONFetcher interface {
	GetJSON(ctx context.Context, rawURL string, params url.Values, v interface{}) error
}

type client struct {
	fetcher     JSONFetcher
	forecastURL string
	marineURL   string
	logger      *zap.Logger
}

// NewClient creates the forecast/marine series client.
func NewClient(fetcher JSONFetcher, forecastURL, marineURL string, logger *zap.Logger) repository.ForecastRepository {
	return &client{
		fetcher:     fetcher,
		forecastURL: forecastURL,
		marineURL:   marineURL,
		logger:      logger,
	}
}

func (c *client) Forecast(ctx context.Context, lat, lon float64, day time.Time) (domain.HourlySeries, error) {
	return c.series(ctx, c.forecastURL, MeteoFields, lat, lon, day)
}

func (c *client) Marine(ctx context.Context, lat, lon float64, day time.Time) (domain.HourlySeries, error) {
	return c.series(ctx, c.marineURL, MarineFields, lat, lon, day)
}

func (c *client) series(ctx context.Context, endpoint string, fields []string, lat, lon float64, day time.Time) (domain.HourlySeries, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("hourly", strings.Join(fields, ","))
	params.Set("timezone", "auto")
	params.Set("start_date", day.Format(dateLayout))
	params.Set("end_date", day.AddDate(0, 0, 1).Format(dateLayout))

	c.logger.Debug("Requesting hourly series",
		zap.String("url", endpoint),
		zap.Float64("lat", lat),
		zap.Float64("lon", lon))

	var resp struct {
		Hourly map[string]json.RawMessage `json:"hourly"`
	}
	if err := c.fetcher.GetJSON(ctx, endpoint, params, &resp); err != nil {
		return domain.HourlySeries{}, err
	}

	return decodeHourly(resp.Hourly, c.logger)
}

// decodeHourly splits the "hourly" object into its time axis and numeric series.
// A field that fails to decode is dropped, the rest of the series survives.
func decodeHourly(hourly map[string]json.RawMessage, logger *zap.Logger) (domain.HourlySeries, error) {
	series := domain.HourlySeries{Values: make(map[string][]*float64, len(hourly))}

	for name, raw := range hourly {
		if name == "time" {
			if err := json.Unmarshal(raw, &series.Time); err != nil {
				return domain.HourlySeries{}, fmt.Errorf("decode time axis: %w", err)
			}
			continue
		}

		var values []*float64
		if err := json.Unmarshal(raw, &values); err != nil {
			logger.Warn("Skipping undecodable hourly field",
				zap.String("field", name),
				zap.Error(err))
			continue
		}
		series.Values[name] = values
	}

	return series, nil
}
