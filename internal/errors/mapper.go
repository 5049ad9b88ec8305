// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Sentinel errors for the matching subsystem. Services return these (or
// wrap them) so callers can tell outcomes apart without string matching.
var (
	// ErrNotEligible: user already matched or has a pending request.
	ErrNotEligible = errors.New("not eligible")
	// ErrNotFound: no such request/record (also covers accept replays).
	ErrNotFound = errors.New("not found")
	// ErrForbidden: reading a partner diary without an accepted pairing.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict: double-accept race detected under the row locks.
	ErrConflict = errors.New("conflict")
	// ErrRateLimited: match cap inside the trailing window exceeded.
	ErrRateLimited = errors.New("rate limited")
	// ErrNoMatch: no eligible partner exists right now.
	ErrNoMatch = errors.New("no eligible partner")
	// ErrInvalidArgument: bad caller input.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Storage wraps a transient storage failure so callers can retry the whole
// operation.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("storage: %w", err)
}

// Map converts repo/infra errors into domain errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case isDomain(err):
		return err

	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return err

	default:
		return Storage(err)
	}
}

// isDomain reports whether err already carries one of the sentinels above.
func isDomain(err error) bool {
	for _, sentinel := range []error{
		ErrNotEligible, ErrNotFound, ErrForbidden, ErrConflict,
		ErrRateLimited, ErrNoMatch, ErrInvalidArgument,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// InvalidArgument creates an invalid-argument error with detail.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

// HTTPStatus maps a domain error onto an HTTP status code for the
// transport layer.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotEligible), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
