package apierror

import (
	"errors"
	"fmt"
	"formconsult/cmd/internal/utils/validators"
	"github.com/go-playground/validator/v10"
	"net/http"
)

// ErrorResponse is what services hand back to routes; it serializes to the
// JSON error body and carries the HTTP status to answer with.
type ErrorResponse interface {
	error
	Code() int
}

type apiError struct {
	Status  int               `json:"-"`
	Kind    string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *apiError) Error() string { return e.Kind + ": " + e.Message }
func (e *apiError) Code() int     { return e.Status }

const (
	KindUnauthenticated = "unauthenticated"
	KindUnauthorized    = "unauthorized"
	KindNotFound        = "not_found"
	KindValidation      = "validation_failure"
	KindConflict        = "conflict"
	KindServer          = "server_error"
)

var (
	InvalidAuthTokenError  = newError(http.StatusUnauthorized, KindUnauthenticated, "Missing or invalid authentication token")
	UnknownUserError       = newError(http.StatusUnauthorized, KindUnauthenticated, "Authenticated identity is not registered")
	ForbiddenError         = newError(http.StatusForbidden, KindUnauthorized, "You are not allowed to perform this operation")
	NotFoundError          = newError(http.StatusNotFound, KindNotFound, "Resource not found")
	AppointmentNotFound    = newError(http.StatusNotFound, KindNotFound, "Appointment not found")
	ConsultantNotFound     = newError(http.StatusNotFound, KindNotFound, "Consultant not found")
	MalformedBodyError     = newError(http.StatusBadRequest, KindValidation, "Request body is malformed")
	AppointmentInPastError = newError(http.StatusBadRequest, KindValidation, "Appointment must be scheduled in the future")
	NoCompanyError         = newError(http.StatusBadRequest, KindValidation, "Requester does not belong to a company")
	ConcurrentUpdateError  = newError(http.StatusConflict, KindConflict, "Appointment was modified by another request, reload and retry")
	InternalServerError    = newError(http.StatusInternalServerError, KindServer, "Internal server error")
)

func newError(status int, kind, msg string) *apiError {
	return &apiError{Status: status, Kind: kind, Message: msg}
}

func NewSimple(status int, msg string) ErrorResponse {
	kind := KindValidation
	switch {
	case status == http.StatusUnauthorized:
		kind = KindUnauthenticated
	case status == http.StatusForbidden:
		kind = KindUnauthorized
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status == http.StatusConflict:
		kind = KindConflict
	case status >= http.StatusInternalServerError:
		kind = KindServer
	}
	return newError(status, kind, msg)
}

func NewValidationError(field, msg string) ErrorResponse {
	e := newError(http.StatusBadRequest, KindValidation, msg)
	e.Fields = map[string]string{field: msg}
	return e
}

func NewMissingParamError(name string) ErrorResponse {
	return NewValidationError(name, fmt.Sprintf("Missing required parameter '%s'", name))
}

func NewInvalidParamTypeError(name, typ string) ErrorResponse {
	return NewValidationError(name, fmt.Sprintf("Parameter '%s' must be of type %s", name, typ))
}

func NewInvalidTransitionError(from, to string) ErrorResponse {
	return newError(http.StatusConflict, KindConflict, fmt.Sprintf("Cannot move appointment from %s to %s", from, to))
}

// FromValidationError turns validator output into a field -> message map.
// Any other error becomes a generic malformed body error.
func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MalformedBodyError
	}

	e := newError(http.StatusBadRequest, KindValidation, "Request validation failed")
	e.Fields = make(map[string]string, len(verrs))
	for _, fe := range verrs {
		e.Fields[fe.Field()] = fe.Translate(validators.Translator)
	}
	return e
}

// Is reports whether err is an ErrorResponse of the given kind.
func Is(err error, kind string) bool {
	var e *apiError
	return errors.As(err, &e) && e.Kind == kind
}
