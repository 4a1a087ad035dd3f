// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"
	"log/slog"
)

// Error classes returned by every service. Handlers map them to HTTP
// status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrStorage      = errors.New("storage failure")
)

// Specific forbidden and not-found causes.
var (
	ErrAdminRequired = fmt.Errorf("%w: admin access required", ErrForbidden)
	ErrNotOwner      = fmt.Errorf("%w: not the owner of this post", ErrForbidden)
	ErrStaleVersion  = fmt.Errorf("%w: item was changed by someone else", ErrConflict)
)

// ValidationError is a user-fixable problem with one input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidation) true for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// storageError logs a persistence failure with context and returns a
// generic error that does not leak driver details to callers.
func storageError(op string, err error, args ...any) error {
	slog.Error("storage failure", append([]any{"op", op, "error", err}, args...)...)
	return fmt.Errorf("%w: %s", ErrStorage, op)
}
