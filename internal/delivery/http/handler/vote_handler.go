package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/praio-service/internal/pkg/errors"
	"github.com/praio-service/internal/pkg/utils"
	"github.com/praio-service/internal/pkg/validator"
	"github.com/praio-service/internal/usecase"
	"github.com/praio-service/internal/usecase/dto"
	"go.uber.org/zap"
)

// VoteHandler - rating vote intake
type VoteHandler struct {
	voteUC *usecase.VoteUseCase
	logger *zap.Logger
}

func NewVoteHandler(voteUC *usecase.VoteUseCase, logger *zap.Logger) *VoteHandler {
	return &VoteHandler{
		voteUC: voteUC,
		logger: logger,
	}
}

// Submit godoc
// @Summary Rate a beach
// @Description One vote per user and point every 30 days. The body holds the five criteria as integers from 1 to 5.
// @Tags Votes
// @Accept json
// @Produce json
// @Param token query string true "Google ID token"
// @Param point_id query string true "Station code"
// @Param scores body domain.Scores true "Scores per criterion"
// @Success 200 {object} utils.SuccessResponse{data=dto.VoteResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /vote [post]
func (h *VoteHandler) Submit(c *fiber.Ctx) error {
	var req dto.VoteRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(validator.FieldErrors(err)))
	}

	result, err := h.voteUC.Submit(c.Context(), req, c.Body())
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}
