package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/praio-service/internal/pkg/errors"
	"github.com/praio-service/internal/pkg/utils"
	"github.com/praio-service/internal/pkg/validator"
	"github.com/praio-service/internal/usecase"
	"github.com/praio-service/internal/usecase/dto"
	"go.uber.org/zap"
)

// PointHandler - read views over the cached snapshot
type PointHandler struct {
	pointUC *usecase.PointUseCase
	cache   *usecase.SnapshotCache
	logger  *zap.Logger
}

func NewPointHandler(pointUC *usecase.PointUseCase, cache *usecase.SnapshotCache, logger *zap.Logger) *PointHandler {
	return &PointHandler{
		pointUC: pointUC,
		cache:   cache,
		logger:  logger,
	}
}

// List godoc
// @Summary List monitoring points
// @Description Summary of every point: name, coordinates, last reading time, compliance, UV index, wave height
// @Tags Points
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.PointListResponse}
// @Failure 503 {object} utils.ErrorResponse
// @Router /points [get]
func (h *PointHandler) List(c *fiber.Ctx) error {
	result, err := h.pointUC.List(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:       len(result.Points),
		SnapshotSum: result.Hash,
		LoadedAt:    result.LoadedAt,
	})
}

// Get godoc
// @Summary Get a point
// @Description Full snapshot record of a point as stored
// @Tags Points
// @Produce json
// @Param code path string true "Station code"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /points/{code} [get]
func (h *PointHandler) Get(c *fiber.Ctx) error {
	raw, err := h.pointUC.Get(c.Context(), c.Params("code"))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, json.RawMessage(raw), nil)
}

// Data godoc
// @Summary Latest reading of a point
// @Description Meteorological and/or marine fields of the latest reading. 204 when the category is empty.
// @Tags Points
// @Produce json
// @Param code path string true "Station code"
// @Param type query string false "meteo, marine or both" Enums(meteo, marine, both) default(both)
// @Success 200 {object} utils.SuccessResponse{data=dto.PointDataResponse}
// @Success 204 "No data for the requested category"
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /points/{code}/data [get]
func (h *PointHandler) Data(c *fiber.Ctx) error {
	var req dto.PointDataRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(validator.FieldErrors(err)))
	}

	result, err := h.pointUC.Data(c.Context(), c.Params("code"), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}

// Forecast godoc
// @Summary 24h forecast of a point
// @Tags Points
// @Produce json
// @Param code path string true "Station code"
// @Success 200 {object} utils.SuccessResponse{data=dto.ForecastResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /points/{code}/forecast [get]
func (h *PointHandler) Forecast(c *fiber.Ctx) error {
	result, err := h.pointUC.Forecast(c.Context(), c.Params("code"))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total: len(result.Forecast),
	})
}

// Rating godoc
// @Summary Average rating of a point
// @Description Rounded average stars per criterion. 204 when nobody rated the point.
// @Tags Points
// @Produce json
// @Param code path string true "Station code"
// @Success 200 {object} utils.SuccessResponse{data=dto.RatingResponse}
// @Success 204 "No rating yet"
// @Failure 404 {object} utils.ErrorResponse
// @Router /points/{code}/rating [get]
func (h *PointHandler) Rating(c *fiber.Ctx) error {
	result, err := h.pointUC.Rating(c.Context(), c.Params("code"))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}

// NotifyRefresh godoc
// @Summary Snapshot refresh notification
// @Description Rechecks the snapshot file hash until it changes, then reloads the cache
// @Tags Cache
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.RefreshResponse}
// @Router /notify-refresh [post]
func (h *PointHandler) NotifyRefresh(c *fiber.Ctx) error {
	result, err := h.cache.Invalidate(c.Context())
	if err != nil {
		h.logger.Warn("Snapshot invalidation interrupted", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}
