package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/praio-service/internal/domain"
	"github.com/praio-service/internal/pkg/errors"
	"github.com/praio-service/internal/usecase/dto"
	"go.uber.org/zap"
)

// PointUseCase serves the read views of the cached snapshot.
type PointUseCase struct {
	cache  *SnapshotCache
	logger *zap.Logger
}

func NewPointUseCase(cache *SnapshotCache, logger *zap.Logger) *PointUseCase {
	return &PointUseCase{
		cache:  cache,
		logger: logger,
	}
}

func (uc *PointUseCase) List(ctx context.Context) (*dto.PointListResponse, error) {
	state := uc.cache.current()
	if state == nil || len(state.codes) == 0 {
		return nil, errors.ErrCacheUnavailable
	}

	points := make([]dto.PointSummary, 0, len(state.codes))
	for _, code := range state.codes {
		points = append(points, summarize(state.records[code]))
	}

	return &dto.PointListResponse{
		Points:   points,
		Hash:     formatHash(state.hash),
		LoadedAt: state.loadedAt.UTC().Format(time.RFC3339),
	}, nil
}

// Get returns the full snapshot record as stored.
func (uc *PointUseCase) Get(ctx context.Context, code string) (json.RawMessage, error) {
	record, err := uc.find(code)
	if err != nil {
		return nil, err
	}
	return record.Raw, nil
}

// Data returns one category of the latest reading. An empty category is ErrNoData.
func (uc *PointUseCase) Data(ctx context.Context, code string, req dto.PointDataRequest) (*dto.PointDataResponse, error) {
	category := req.Type
	if category == "" {
		category = dto.CategoryBoth
	}

	record, err := uc.find(code)
	if err != nil {
		return nil, err
	}

	reading := record.Reading
	if reading == nil {
		reading = &domain.CurrentReading{}
	}

	var data map[string]interface{}
	switch category {
	case dto.CategoryMeteo:
		data = reading.MeteoFields()
	case dto.CategoryMarine:
		data = reading.MarineFields()
	case dto.CategoryBoth:
		data = reading.MeteoFields()
		for k, v := range reading.MarineFields() {
			data[k] = v
		}
	default:
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"type": category})
	}

	if len(data) == 0 {
		return nil, errors.ErrNoData
	}

	return &dto.PointDataResponse{
		Code:      code,
		Timestamp: reading.Timestamp,
		Data:      data,
	}, nil
}

// Forecast returns the 24h forecast, possibly empty.
func (uc *PointUseCase) Forecast(ctx context.Context, code string) (*dto.ForecastResponse, error) {
	record, err := uc.find(code)
	if err != nil {
		return nil, err
	}

	forecast := []domain.ForecastEntry{}
	if record.Reading != nil && record.Reading.Forecast24h != nil {
		forecast = record.Reading.Forecast24h
	}

	return &dto.ForecastResponse{Code: code, Forecast: forecast}, nil
}

// Rating returns the rating summary. A point nobody rated is ErrNoData.
func (uc *PointUseCase) Rating(ctx context.Context, code string) (*dto.RatingResponse, error) {
	record, err := uc.find(code)
	if err != nil {
		return nil, err
	}
	if len(record.Rating) == 0 {
		return nil, errors.ErrNoData
	}
	return &dto.RatingResponse{Code: code, Rating: record.Rating}, nil
}

func (uc *PointUseCase) find(code string) (*domain.PointRecord, error) {
	state := uc.cache.current()
	if state == nil {
		return nil, errors.ErrPointNotFound
	}
	record, ok := state.records[code]
	if !ok {
		return nil, errors.ErrPointNotFound
	}
	return record, nil
}

func summarize(record *domain.PointRecord) dto.PointSummary {
	summary := dto.PointSummary{
		Code:             record.Code,
		Name:             record.Point.Name,
		Coordinates:      record.Point.Coordinates,
		LandCoordinates:  record.Point.LandCoordinates,
		SpecificLocation: record.Point.SpecificLocation,
	}
	if r := record.Reading; r != nil {
		if r.Timestamp != "" {
			ts := r.Timestamp
			summary.LastReading = &ts
		}
		summary.Compliance = r.Compliance
		summary.UVIndex = r.UVIndex
		summary.WaveHeight = r.WaveHeight
	}
	return summary
}
