package errors

import "net/http"

var (
	ErrPointNotFound = New(
		"POINT_NOT_FOUND",
		"Point not found",
		http.StatusNotFound,
	)

	ErrNoData = New(
		"NO_DATA",
		"No data available for the requested filter",
		http.StatusNoContent,
	)

	ErrValidation = New(
		"VALIDATION_ERROR",
		"Invalid vote payload",
		http.StatusBadRequest,
	)

	ErrUnauthorized = New(
		"UNAUTHORIZED",
		"Invalid identity token",
		http.StatusUnauthorized,
	)

	ErrCacheUnavailable = New(
		"CACHE_UNAVAILABLE",
		"Snapshot cache is not available",
		http.StatusServiceUnavailable,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
