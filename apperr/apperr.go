// Package apperr defines the caller-visible error kinds for the scheduler
// core and a single gin helper that maps them to the HTTP status matrix.
package apperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// InputError signals a malformed request: bad body, quality out of range,
// unknown nodeType. Not retryable.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

func Input(msg string) error { return &InputError{Msg: msg} }

// AuthError signals a missing/invalid token or cross-tenant access.
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string { return e.Msg }

func Auth(msg string) error { return &AuthError{Msg: msg} }

// ForbiddenError signals the caller is authenticated but not authorized for
// the domain (not owner, not enrolled).
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string { return e.Msg }

func Forbidden(msg string) error { return &ForbiddenError{Msg: msg} }

// NotFoundError signals a missing node/session/edge.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func NotFound(msg string) error { return &NotFoundError{Msg: msg} }

// ConflictError signals a cycle on edge insert, a duplicate edge, or ending
// an already-closed session.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func Conflict(msg string) error { return &ConflictError{Msg: msg} }

// UnprocessableError signals a status transition that would violate an
// invariant.
type UnprocessableError struct {
	Msg string
}

func (e *UnprocessableError) Error() string { return e.Msg }

func Unprocessable(msg string) error { return &UnprocessableError{Msg: msg} }

// TransientError signals a DB timeout, lock wait, or connection loss.
// Retryable by the caller with backoff; the server never auto-retries
// write transactions.
type TransientError struct {
	Msg string
	Err error
}

func (e *TransientError) Error() string { return e.Msg }
func (e *TransientError) Unwrap() error { return e.Err }

func Transient(msg string, err error) error { return &TransientError{Msg: msg, Err: err} }

// WriteJSON maps err to the §6.5 status-code matrix and writes
// {"error": msg}. Unrecognized errors fall back to 500 Internal.
func WriteJSON(c *gin.Context, err error) {
	status, msg := statusAndMessage(err)
	c.JSON(status, gin.H{"error": msg})
}

func statusAndMessage(err error) (int, string) {
	var input *InputError
	var auth *AuthError
	var forbidden *ForbiddenError
	var notFound *NotFoundError
	var conflict *ConflictError
	var unprocessable *UnprocessableError
	var transient *TransientError

	switch {
	case errors.As(err, &input):
		return http.StatusBadRequest, input.Msg
	case errors.As(err, &auth):
		return http.StatusUnauthorized, auth.Msg
	case errors.As(err, &forbidden):
		return http.StatusForbidden, forbidden.Msg
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Msg
	case errors.As(err, &conflict):
		return http.StatusConflict, conflict.Msg
	case errors.As(err, &unprocessable):
		return http.StatusUnprocessableEntity, unprocessable.Msg
	case errors.As(err, &transient):
		return http.StatusServiceUnavailable, transient.Msg
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
