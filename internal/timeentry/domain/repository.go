package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/statusunknown418/thearq/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Find(ctx context.Context, db *gorm.DB, filter Filter) ([]TimeEntry, error)
	FindPage(ctx context.Context, db *gorm.DB, filter Filter, cursor *pagination.Cursor, limit int) ([]*TimeEntry, error)
	FindByID(ctx context.Context, db *gorm.DB, workspaceID, id snowflake.ID) (*TimeEntry, error)
	FindRunning(ctx context.Context, db *gorm.DB, workspaceID, userID snowflake.ID) (*TimeEntry, error)

	// Insert stores a closed entry.
	Insert(ctx context.Context, db *gorm.DB, e *TimeEntry) error

	// InsertRunning stores a live entry only if no other live entry exists
	// for the same (workspace, user); it reports false when one does. The
	// existence check and the insert are a single statement.
	InsertRunning(ctx context.Context, db *gorm.DB, e *TimeEntry) (bool, error)

	// CloseRunning settles a live entry exactly once; it reports false when
	// the entry was not live anymore.
	CloseRunning(ctx context.Context, db *gorm.DB, id snowflake.ID, endedAt time.Time, seconds int64) (bool, error)

	// Update rewrites mutable fields guarded by the previously observed
	// updated_at; it reports false on a stale token.
	Update(ctx context.Context, db *gorm.DB, e *TimeEntry, seenUpdatedAt time.Time) (bool, error)

	Delete(ctx context.Context, db *gorm.DB, workspaceID, id snowflake.ID) error
}
