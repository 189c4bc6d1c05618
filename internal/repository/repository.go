package repository

import (
	"errors"

	"gorm.io/gorm"

	"realtime-service/internal/database"
)

// ErrDatabaseUnavailable is returned when no database connection exists
// yet. Callers treat it like any other query error; nothing crashes
// while the background retry is still connecting.
var ErrDatabaseUnavailable = errors.New("database unavailable")

// conn resolves the handle for one call. A pinned handle (tests, the
// normal startup path) wins; repositories constructed before the
// initial connect fall through to the process-wide connection, so
// queries start succeeding as soon as the retry loop sets it.
func conn(pinned *gorm.DB) (*gorm.DB, error) {
	if pinned != nil {
		return pinned, nil
	}
	if db := database.GetDB(); db != nil {
		return db, nil
	}
	return nil, ErrDatabaseUnavailable
}
