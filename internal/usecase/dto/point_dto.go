package dto

import "github.com/praio-service/internal/domain"

// Data categories accepted by the point data view
const (
	CategoryMeteo  = "meteo"
	CategoryMarine = "marine"
	CategoryBoth   = "both"
)

// PointDataRequest - query of GET /points/:code/data
type PointDataRequest struct {
	Type string `query:"type" validate:"omitempty,oneof=meteo marine both"`
}

// PointSummary - list projection of a point
type PointSummary struct {
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	Coordinates      []float64 `json:"coordinates"`
	LandCoordinates  []float64 `json:"land_coordinates,omitempty"`
	SpecificLocation string    `json:"specific_location,omitempty"`
	LastReading      *string   `json:"last_reading,omitempty"`
	Compliance       *bool     `json:"compliance,omitempty"`
	UVIndex          *float64  `json:"uv_index,omitempty"`
	WaveHeight       *float64  `json:"wave_height,omitempty"`
}

// PointListResponse - GET /points
type PointListResponse struct {
	Points   []PointSummary `json:"points"`
	Hash     string         `json:"-"`
	LoadedAt string         `json:"-"`
}

// PointDataResponse - one category of the latest reading
type PointDataResponse struct {
	Code      string                 `json:"code"`
	Timestamp string                 `json:"timestamp,omitempty"`
	Data      map[string]interface{} `json:"data"`
}

// ForecastResponse - 24h forecast of a point
type ForecastResponse struct {
	Code     string                 `json:"code"`
	Forecast []domain.ForecastEntry `json:"forecast"`
}

// RatingResponse - per-criterion average stars of a point
type RatingResponse struct {
	Code   string               `json:"code"`
	Rating domain.RatingSummary `json:"rating"`
}

// RefreshResponse - outcome of a snapshot invalidation
type RefreshResponse struct {
	Status   string `json:"status"`
	Attempts int    `json:"attempts,omitempty"`
	Hash     string `json:"hash,omitempty"`
}

const (
	RefreshUpdated   = "updated"
	RefreshUnchanged = "unchanged"
)
