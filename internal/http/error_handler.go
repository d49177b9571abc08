package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"project-service/internal/http/middleware"
	apperrors "project-service/pkg/errors"
	"project-service/pkg/logger"
)

const (
	codePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	codeRateLimited     = "RATE_LIMITED"

	msgInternalServerError = "Internal server error"
	unknownRequestID       = "unknown"
)

type errorMapping struct {
	sentinel error
	status   int
	code     string
	message  string
}

// Order matters: the first matching sentinel wins.
var errorMappings = []errorMapping{
	{apperrors.ErrValidation, http.StatusBadRequest, apperrors.CodeValidationFailed, "Validation failed"},
	{apperrors.ErrPathTraversal, http.StatusBadRequest, apperrors.CodeBadRequest, "Invalid path"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, apperrors.CodeBadRequest, "Bad request"},
	{apperrors.ErrNotFound, http.StatusNotFound, apperrors.CodeNotFound, "Resource not found"},
	{apperrors.ErrSlugConflict, http.StatusConflict, apperrors.CodeSlugConflict, "Slug already in use"},
	{apperrors.ErrConflict, http.StatusConflict, apperrors.CodeConflict, "Resource already exists"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, apperrors.CodeUnauthorized, "Unauthorized"},
	{apperrors.ErrForbidden, http.StatusForbidden, apperrors.CodeForbidden, "Forbidden"},
	{apperrors.ErrInsufficientPerms, http.StatusForbidden, apperrors.CodeForbidden, "Insufficient permissions"},
	{apperrors.ErrFileWrite, http.StatusInternalServerError, apperrors.CodeFileWriteFailed, "Failed to store uploaded files"},
	{apperrors.ErrPersistence, http.StatusInternalServerError, apperrors.CodePersistenceFailed, "Failed to save project"},
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error     string                 `json:"error"`
	Message   string                 `json:"message"`
	Errors    []apperrors.FieldError `json:"errors,omitempty"`
	RequestID string                 `json:"request_id"`
}

// CustomHTTPErrorHandler maps sentinel errors to status codes and a
// machine-readable kind. Messages of 5xx responses are never taken from the
// error itself.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	kind := apperrors.CodeInternalServer
	message := msgInternalServerError
	var fields []apperrors.FieldError

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		kind = httpKind(code)
		message = fmt.Sprintf("%v", httpErr.Message)
	} else {
		for _, m := range errorMappings {
			if errors.Is(err, m.sentinel) {
				code, kind, message = m.status, m.code, m.message
				break
			}
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			if code < http.StatusInternalServerError && appErr.Message != "" {
				message = appErr.Message
			}
			fields = appErr.Fields
		}
	}

	requestID := middleware.GetRequestID(c)
	if requestID == "" {
		requestID = c.Response().Header().Get(echo.HeaderXRequestID)
	}
	if requestID == "" {
		requestID = unknownRequestID
	}

	logged := logger.SanitizeLogMessage(fmt.Sprintf("%v", err))
	if code >= http.StatusInternalServerError {
		c.Logger().Errorf("internal_server_error request_id=%s status=%d kind=%s error=%s", requestID, code, kind, logged)
	} else {
		c.Logger().Warnf("client_error request_id=%s status=%d kind=%s error=%s", requestID, code, kind, logged)
	}

	resp := ErrorResponse{
		Error:     kind,
		Message:   message,
		Errors:    fields,
		RequestID: requestID,
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, resp)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func httpKind(status int) string {
	switch status {
	case http.StatusBadRequest:
		return apperrors.CodeBadRequest
	case http.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case http.StatusForbidden:
		return apperrors.CodeForbidden
	case http.StatusNotFound:
		return apperrors.CodeNotFound
	case http.StatusConflict:
		return apperrors.CodeConflict
	case http.StatusRequestEntityTooLarge:
		return codePayloadTooLarge
	case http.StatusTooManyRequests:
		return codeRateLimited
	}
	if status >= http.StatusInternalServerError {
		return apperrors.CodeInternalServer
	}
	return apperrors.CodeBadRequest
}
