package utils

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/praio-service/internal/pkg/errors"
)

type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Error *errors.AppError `json:"error"`
}

type Meta struct {
	Total       int    `json:"total,omitempty"`
	SnapshotSum string `json:"snapshot_hash,omitempty"`
	LoadedAt    string `json:"loaded_at,omitempty"`
}

func SendSuccess(c *fiber.Ctx, data interface{}, meta *Meta) error {
	return c.JSON(SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func SendError(c *fiber.Ctx, err error) error {
	if appErr, ok := errors.As(err); ok {
		// 204 must not carry a body
		if appErr.StatusCode == http.StatusNoContent {
			return c.SendStatus(http.StatusNoContent)
		}
		return c.Status(appErr.StatusCode).JSON(ErrorResponse{
			Error: appErr,
		})
	}

	// Unknown error - return 500
	return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
		Error: errors.ErrInternalServer,
	})
}
