package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden access")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict") // e.g., username already exists
	ErrInternalServer     = errors.New("internal server error")
	ErrValidation         = errors.New("validation failed")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrLockFailed         = errors.New("failed to acquire application lock")
)

// Code is the machine readable kind of a domain error, returned to clients
// next to the message.
type Code string

const (
	CodeForbidden            Code = "FORBIDDEN"
	CodeNotFound             Code = "NOT_FOUND"
	CodeResultsPublished     Code = "RESULTS_ALREADY_PUBLISHED"
	CodeRegistrationClosed   Code = "REGISTRATION_CLOSED"
	CodePreviouslyRejected   Code = "PREVIOUSLY_REJECTED"
	CodeAlreadyApplied       Code = "ALREADY_APPLIED"
	CodeIndividualNotAllowed Code = "INDIVIDUAL_NOT_ALLOWED"
	CodeTeamSizeInvalid      Code = "TEAM_SIZE_INVALID"
	CodeMissingRequiredField Code = "MISSING_REQUIRED_FIELD"
	CodeApplicationRejected  Code = "APPLICATION_REJECTED"
	CodeDeadlinePassed       Code = "DEADLINE_PASSED"
	CodeMaxReuploadsReached  Code = "MAX_REUPLOADS_REACHED"
	CodeInvalidState         Code = "INVALID_STATE"
	CodeInvalidStatus        Code = "INVALID_STATUS"
	CodeConflict             Code = "CONFLICT"
	CodeLockUnavailable      Code = "LOCK_UNAVAILABLE"
	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeBadRequest           Code = "BAD_REQUEST"
	CodeInternal             Code = "INTERNAL"
)

// DomainError carries a Code and unwraps to one of the sentinel errors above,
// so errors.Is works for both the specific error and its class.
type DomainError struct {
	Code    Code
	Kind    error
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Kind }

func newDomainError(code Code, kind error, msg string) *DomainError {
	return &DomainError{Code: code, Kind: kind, Message: msg}
}

var (
	ErrResultsPublished     = newDomainError(CodeResultsPublished, ErrValidation, "results for this hackathon are already published")
	ErrRegistrationClosed   = newDomainError(CodeRegistrationClosed, ErrValidation, "registration for this hackathon is closed")
	ErrPreviouslyRejected   = newDomainError(CodePreviouslyRejected, ErrForbidden, "a previous application to this hackathon was rejected")
	ErrAlreadyApplied       = newDomainError(CodeAlreadyApplied, ErrConflict, "an active application to this hackathon already exists")
	ErrIndividualNotAllowed = newDomainError(CodeIndividualNotAllowed, ErrValidation, "this hackathon only accepts team applications")
	ErrTeamSizeInvalid      = newDomainError(CodeTeamSizeInvalid, ErrValidation, "team size is outside the allowed bounds")
	ErrMissingRequiredField = newDomainError(CodeMissingRequiredField, ErrValidation, "a required field is missing")
	ErrApplicationRejected  = newDomainError(CodeApplicationRejected, ErrForbidden, "application has been rejected")
	ErrDeadlinePassed       = newDomainError(CodeDeadlinePassed, ErrForbidden, "the phase deadline has passed")
	ErrMaxReuploadsReached  = newDomainError(CodeMaxReuploadsReached, ErrValidation, "maximum number of reupload requests reached")
	ErrInvalidState         = newDomainError(CodeInvalidState, ErrConflict, "operation not allowed in the current state")
	ErrInvalidStatus        = newDomainError(CodeInvalidStatus, ErrValidation, "status is not allowed for this operation")
	ErrStaleWrite           = newDomainError(CodeConflict, ErrConflict, "the resource was modified concurrently, retry the operation")
)

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Wrapf keeps the domain code of err while replacing its message.
func Wrapf(err *DomainError, format string, args ...interface{}) error {
	return &wrapped{DomainError: err, msg: fmt.Sprintf(format, args...)}
}

type wrapped struct {
	*DomainError
	msg string
}

func (w *wrapped) Error() string { return w.msg }

func (w *wrapped) Unwrap() error { return w.DomainError }

// NotFoundf builds a NOT_FOUND error with a specific message.
func NotFoundf(format string, args ...interface{}) error {
	return newDomainError(CodeNotFound, ErrNotFound, fmt.Sprintf(format, args...))
}

// Forbiddenf builds a FORBIDDEN error with a specific message.
func Forbiddenf(format string, args ...interface{}) error {
	return newDomainError(CodeForbidden, ErrForbidden, fmt.Sprintf(format, args...))
}

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrLockFailed) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrServiceUnavailable) {
		return http.StatusServiceUnavailable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // Unique violation
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}

// CodeFromError returns the most specific code known for err.
func CodeFromError(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrValidation):
		return CodeBadRequest
	case errors.Is(err, ErrLockFailed):
		return CodeLockUnavailable
	case errors.Is(err, ErrConflict):
		return CodeConflict
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return CodeConflict
	}
	return CodeInternal
}
