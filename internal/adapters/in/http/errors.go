package http

import (
	"errors"
	"log/slog"
	"net/http"

	"marketdelivery/internal/pkg/errs"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    int       `json:"code"`
	Kind    errs.Kind `json:"kind"`
	Message string    `json:"message"`
}

var statusByKind = map[errs.Kind]int{
	errs.KindValidation:           http.StatusBadRequest,
	errs.KindNotFound:             http.StatusNotFound,
	errs.KindAuthorization:        http.StatusForbidden,
	errs.KindStockConflict:        http.StatusConflict,
	errs.KindNoValidatorAvailable: http.StatusConflict,
	errs.KindNoDriverAvailable:    http.StatusConflict,
	errs.KindStateConflict:        http.StatusConflict,
	errs.KindExternalService:      http.StatusBadGateway,
	errs.KindInternal:             http.StatusInternalServerError,
}

// StatusOf returns the HTTP status for an error kind.
func StatusOf(kind errs.Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorHandler renders domain errors, request validation failures and echo errors as
// ErrorResponse. Internal errors are logged and never echoed back.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	logger = logger.With("component", "HTTPErrorHandler")

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		response := toErrorResponse(err)
		if response.Kind == errs.KindInternal {
			logger.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method, "path", c.Path(), "error", err)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(response.Code)
		} else {
			writeErr = c.JSON(response.Code, response)
		}
		if writeErr != nil {
			logger.ErrorContext(c.Request().Context(), "failed to write error response", "error", writeErr)
		}
	}
}

func toErrorResponse(err error) ErrorResponse {
	var bindErr *echo.BindingError
	if errors.As(err, &bindErr) {
		return ErrorResponse{Code: http.StatusBadRequest, Kind: errs.KindValidation, Message: bindErr.Error()}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if text, ok := httpErr.Message.(string); ok {
			message = text
		}
		return ErrorResponse{Code: httpErr.Code, Kind: kindOfStatus(httpErr.Code), Message: message}
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return ErrorResponse{Code: http.StatusBadRequest, Kind: errs.KindValidation, Message: describeValidation(validationErrs)}
	}

	kind := errs.KindOf(err)
	response := ErrorResponse{Code: StatusOf(kind), Kind: kind, Message: err.Error()}
	if kind == errs.KindInternal {
		response.Message = "internal error"
	}
	return response
}

func kindOfStatus(status int) errs.Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		return errs.KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return errs.KindAuthorization
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return errs.KindNotFound
	default:
		return errs.KindInternal
	}
}
