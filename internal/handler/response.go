package handler

import (
	"errors"
	"fmt"
	"net/http"

	"storefront-service/internal/apperr"
	"storefront-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Outcome tags carried in every response body
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusError   = "error"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

var statusByCode = map[string]int{
	apperr.EInvalid:      http.StatusBadRequest,
	apperr.EUnauthorized: http.StatusUnauthorized,
	apperr.EForbidden:    http.StatusForbidden,
	apperr.ENotFound:     http.StatusNotFound,
	apperr.EConflict:     http.StatusConflict,
	apperr.EInternal:     http.StatusInternalServerError,
}

// success writes a success envelope with the given payload fields
func success(c echo.Context, status int, payload echo.Map) error {
	body := echo.Map{"status": StatusSuccess}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(status, body)
}

func badRequest(op, msg string) error {
	return apperr.New(apperr.EInvalid, op, apperr.ErrInvalidInput, msg)
}

// HTTPErrorHandler renders every error returned by handlers and middleware.
// Client-correctable failures are tagged "failure", everything else "error".
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := render(err)
	log := logger.FromContext(c)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.Error(err))
	} else {
		log.Debug("Request rejected", zap.Error(err), zap.Int("status", status))
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}
	if writeErr != nil {
		log.Error("Failed to write error response", zap.Error(writeErr))
	}
}

func render(err error) (int, ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			return he.Code, ErrorResponse{Status: StatusError, Message: http.StatusText(he.Code)}
		}
		return he.Code, ErrorResponse{Status: StatusFailure, Message: fmt.Sprint(he.Message)}
	}

	code := apperr.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	tag := StatusFailure
	if status >= http.StatusInternalServerError {
		tag = StatusError
	}
	return status, ErrorResponse{Status: tag, Message: apperr.Message(err)}
}

var (
	errNoStore = errors.New("route is missing store resolution")
	errNoUser  = errors.New("route is missing rank check")
)
