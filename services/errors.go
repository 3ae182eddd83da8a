package services

import (
	"errors"
	"fmt"
	"net/http"
)

// Typed service errors. Handlers translate them to HTTP statuses with
// HTTPStatus; everything outside the closed set maps to 500.

type ErrNotFound struct {
	error
}

func NewErrNotFound(resource, id string) *ErrNotFound {
	return &ErrNotFound{fmt.Errorf("%s %s not found", resource, id)}
}

type ErrForbidden struct {
	error
}

func NewErrForbidden(message string) *ErrForbidden {
	return &ErrForbidden{fmt.Errorf("forbidden: %s", message)}
}

type ErrConflict struct {
	error
}

func NewErrConflict(message string) *ErrConflict {
	return &ErrConflict{fmt.Errorf("conflict: %s", message)}
}

type ErrInvalid struct {
	error
}

func NewErrInvalid(message string) *ErrInvalid {
	return &ErrInvalid{fmt.Errorf("invalid request: %s", message)}
}

type ErrExpired struct {
	error
}

func NewErrExpired(message string) *ErrExpired {
	return &ErrExpired{fmt.Errorf("expired: %s", message)}
}

// ErrDependency marks a store or channel failure during a core operation.
// The operation has been rolled back; callers see a generic failure.
type ErrDependency struct {
	error
}

func NewErrDependency(err error) *ErrDependency {
	return &ErrDependency{fmt.Errorf("dependency failure: %w", err)}
}

// HTTPStatus maps a service error to its response status.
func HTTPStatus(err error) int {
	var (
		notFound  *ErrNotFound
		forbidden *ErrForbidden
		conflict  *ErrConflict
		invalid   *ErrInvalid
		expired   *ErrExpired
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &expired):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
