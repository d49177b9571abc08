package errors

import (
	"errors"
	"fmt"
)

// Domain errors - Sentinel errors for use with errors.Is()
var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrConflict          = errors.New("resource already exists")
	ErrInternalServer    = errors.New("internal server error")
	ErrValidation        = errors.New("validation error")
	ErrSlugConflict      = errors.New("slug already in use")
	ErrFileWrite         = errors.New("file write failed")
	ErrPersistence       = errors.New("persistence failed")
	ErrInsufficientPerms = errors.New("insufficient permissions")
	ErrPathTraversal     = errors.New("path traversal attempt detected")
)

const (
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeBadRequest        = "BAD_REQUEST"
	CodeConflict          = "CONFLICT"
	CodeInternalServer    = "INTERNAL_SERVER_ERROR"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeSlugConflict      = "SLUG_CONFLICT"
	CodeFileWriteFailed   = "FILE_WRITE_FAILED"
	CodePersistenceFailed = "PERSISTENCE_FAILED"
)

// FieldError names one rejected input and why.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Custom error type with context
type AppError struct {
	Code    string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Constructors
func NotFound(msg string) *AppError {
	return &AppError{Code: CodeNotFound, Message: msg, Err: ErrNotFound}
}

func Unauthorized(msg string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: msg, Err: ErrUnauthorized}
}

func Forbidden(msg string) *AppError {
	return &AppError{Code: CodeForbidden, Message: msg, Err: ErrForbidden}
}

func BadRequest(msg string) *AppError {
	return &AppError{Code: CodeBadRequest, Message: msg, Err: ErrBadRequest}
}

func Conflict(msg string) *AppError {
	return &AppError{Code: CodeConflict, Message: msg, Err: ErrConflict}
}

func InternalServer(msg string, err error) *AppError {
	if err == nil {
		err = ErrInternalServer
	}
	return &AppError{Code: CodeInternalServer, Message: msg, Err: err}
}

func ValidationFailed(fields []FieldError) *AppError {
	return &AppError{
		Code:    CodeValidationFailed,
		Message: "validation failed",
		Fields:  fields,
		Err:     ErrValidation,
	}
}

func SlugConflict(slug string) *AppError {
	return &AppError{
		Code:    CodeSlugConflict,
		Message: fmt.Sprintf("slug %q is already in use", slug),
		Fields:  []FieldError{{Field: "slug", Message: "already in use"}},
		Err:     ErrSlugConflict,
	}
}

// FileWriteFailed keeps both the sentinel and the backend cause reachable
// through errors.Is.
func FileWriteFailed(msg string, err error) *AppError {
	return &AppError{Code: CodeFileWriteFailed, Message: msg, Err: errors.Join(ErrFileWrite, err)}
}

func PersistenceFailed(msg string, err error) *AppError {
	return &AppError{Code: CodePersistenceFailed, Message: msg, Err: errors.Join(ErrPersistence, err)}
}

// CodeOf returns the AppError code carried by err, or CodeInternalServer.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternalServer
}

// FieldsOf returns the field violations carried by err, if any.
func FieldsOf(err error) []FieldError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}
