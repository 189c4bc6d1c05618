package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database with the tables the
// repositories touch. SQLite has no UUID type or gen_random_uuid(), so
// tables are created manually and primary keys are filled by a
// callback.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "failed to connect to test database")

	db.Callback().Create().Before("gorm:create").Register("generate_uuid", func(db *gorm.DB) {
		if db.Statement.Schema != nil {
			for _, field := range db.Statement.Schema.PrimaryFields {
				if field.DataType == "uuid" {
					fieldValue := field.ReflectValueOf(db.Statement.Context, db.Statement.ReflectValue)
					if fieldValue.IsZero() {
						field.Set(db.Statement.Context, db.Statement.ReflectValue, uuid.New())
					}
				}
			}
		}
	})

	for _, ddl := range []string{
		`CREATE TABLE notifications (
			id TEXT PRIMARY KEY,
			tenant_id TEXT,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT,
			payload TEXT,
			read_at DATETIME,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE notification_preferences (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			task_assigned INTEGER NOT NULL DEFAULT 1,
			task_completed INTEGER NOT NULL DEFAULT 1,
			task_status_changed INTEGER NOT NULL DEFAULT 1,
			comment_added INTEGER NOT NULL DEFAULT 1,
			comment_mention INTEGER NOT NULL DEFAULT 1,
			project_update INTEGER NOT NULL DEFAULT 1,
			project_member_added INTEGER NOT NULL DEFAULT 1,
			deadline_approaching INTEGER NOT NULL DEFAULT 1,
			email_enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			email TEXT,
			name TEXT
		)`,
		`CREATE TABLE tasks (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			project_id TEXT NOT NULL,
			title TEXT NOT NULL,
			status TEXT NOT NULL,
			due_date DATETIME
		)`,
		`CREATE TABLE task_assignees (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL,
			user_id TEXT NOT NULL
		)`,
		`CREATE TABLE chat_channels (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			project_id TEXT,
			name TEXT NOT NULL,
			is_private INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE chat_channel_members (
			id TEXT PRIMARY KEY,
			channel_id TEXT NOT NULL,
			user_id TEXT NOT NULL
		)`,
		`CREATE TABLE chat_direct_threads (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL
		)`,
		`CREATE TABLE chat_direct_members (
			id TEXT PRIMARY KEY,
			thread_id TEXT NOT NULL,
			user_id TEXT NOT NULL
		)`,
	} {
		require.NoError(t, db.Exec(ddl).Error, "failed to create test table")
	}

	return db
}
