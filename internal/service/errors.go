package service

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthenticated     = errors.New("authentication required")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrUnknownReport       = errors.New("unknown report")
)

// Postgres SQLSTATE codes the services distinguish
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
	pgInvalidText         = "22P02"
	pgNumericOutOfRange   = "22003"
	pgStringTooLong       = "22001"
)

const emailConstraint = "users_email_key"

// mapWriteErr converts storage rejections on insert into domain errors.
// Errors that are not constraint related come back as
// ErrStorageUnavailable.
func mapWriteErr(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	switch pqErr.Code {
	case pgUniqueViolation:
		if pqErr.Constraint == emailConstraint {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("%w: %s", ErrConstraintViolation, pqErr.Constraint)
	case pgForeignKeyViolation, pgCheckViolation, pgNotNullViolation,
		pgInvalidText, pgNumericOutOfRange, pgStringTooLong:
		return fmt.Errorf("%w: %s", ErrConstraintViolation, pqErr.Message)
	default:
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
}

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
