package repository

import (
	"database/sql"
	"errors"
	"strings"

	"rowguard/internal/domain"
)

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// mapDBError converts SQLite driver errors to domain errors.
func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Message: "resource not found"}
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return &domain.ConflictError{Message: "resource already exists"}
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return &domain.NotFoundError{Message: "referenced resource not found"}
	}
	return err
}
