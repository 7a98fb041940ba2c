package routes

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	appservices "github.com/fr0stylo/lacquer/internal/app/services"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func captureErrorStatus(kind appservices.CaptureErrorKind) int {
	switch kind {
	case appservices.CaptureErrorInvalidInput, appservices.CaptureErrorQuestionMismatch:
		return http.StatusBadRequest
	case appservices.CaptureErrorNotFound:
		return http.StatusNotFound
	case appservices.CaptureErrorConflict:
		return http.StatusConflict
	case appservices.CaptureErrorNotActionable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func jobErrorStatus(kind appservices.JobErrorKind) int {
	switch kind {
	case appservices.JobErrorUnknownSource, appservices.JobErrorInvalidInput:
		return http.StatusBadRequest
	case appservices.JobErrorNotFound:
		return http.StatusNotFound
	case appservices.JobErrorTerminal:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeCaptureError answers with the status for err's kind. Unclassified
// errors are handed back to echo so they are logged as 500s.
func writeCaptureError(c echo.Context, err error) error {
	kind := appservices.ClassifyCaptureError(err)
	status := captureErrorStatus(kind)
	if status == http.StatusInternalServerError {
		return err
	}
	return c.JSON(status, errorResponse{Error: err.Error(), Kind: string(kind)})
}

func writeJobError(c echo.Context, err error) error {
	kind := appservices.ClassifyJobError(err)
	status := jobErrorStatus(kind)
	if status == http.StatusInternalServerError {
		return err
	}
	return c.JSON(status, errorResponse{Error: err.Error(), Kind: string(kind)})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Kind: "invalid_input"})
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
