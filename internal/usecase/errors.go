package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError is a business rule violation. Status is the HTTP status the
// transport layer answers with.
type DomainError struct {
	Code    string
	Message string
	Status  int
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// TechnicalError wraps an infrastructure fault the caller cannot fix.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error { return e.Err }

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func newDomainError(code, lng string, status int, args ...any) *DomainError {
	return &DomainError{
		Code:    code,
		Message: Message(lng, code, args...),
		Status:  status,
	}
}

func notFound(code, lng string) *DomainError {
	return newDomainError(code, lng, http.StatusNotFound)
}

func forbidden(code, lng string) *DomainError {
	return newDomainError(code, lng, http.StatusForbidden)
}

func badRequest(code, lng string, args ...any) *DomainError {
	return newDomainError(code, lng, http.StatusBadRequest, args...)
}
