package common

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrEditConflict   = errors.New("edit conflict")
)

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
	pqCheckViolation      = "23514"
)

// ForeignKeyError reports whether err is a foreign key violation on the named constraint.
func ForeignKeyError(err error, name string) bool {
	return isPQError(err, pqForeignKeyViolation, name)
}

// UniqueError reports whether err is a unique violation on the named constraint.
func UniqueError(err error, name string) bool {
	return isPQError(err, pqUniqueViolation, name)
}

// CheckError reports whether err is a check constraint violation on the named constraint.
func CheckError(err error, name string) bool {
	return isPQError(err, pqCheckViolation, name)
}

func isPQError(err error, code pq.ErrorCode, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code && pqErr.Constraint == name
	}

	return false
}

// ErrNotOwner is returned when a user tries to change something they do not own.
var ErrNotOwner = errors.New("you do not have permission to modify this resource")
