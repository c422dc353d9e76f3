package storage

import (
	"context"
	"errors"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var (
	// ErrStorageUnavailable means the store could not be opened or created.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrNotInitialized is returned by every operation invoked before InitSchema.
	ErrNotInitialized = errors.New("storage not initialized")
	ErrClosed         = errors.New("storage closed")
	// ErrQuery wraps statement and constraint failures.
	ErrQuery           = errors.New("query failure")
	ErrAlreadyExists   = errors.New("record already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownTable    = errors.New("unknown table")
)

func shouldLogError(err error) bool {
	return !(err == nil || errors.Is(err, context.Canceled))
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
