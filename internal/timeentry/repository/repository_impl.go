package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	timeentrydomain "github.com/statusunknown418/thearq/internal/timeentry/domain"
	"github.com/statusunknown418/thearq/pkg/dates"
	"github.com/statusunknown418/thearq/pkg/db/pagination"
	"gorm.io/gorm"
)

const entryColumns = `id, workspace_id, user_id, project_id, description, billable,
	started_at, ended_at, duration_seconds, tracked_at, month_date,
	locked, invoice_id, integration_url, integration_provider, created_at, updated_at`

type repo struct{}

func Provide() timeentrydomain.Repository {
	return &repo{}
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, filter timeentrydomain.Filter) ([]timeentrydomain.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE workspace_id = ?`
	args := []any{filter.WorkspaceID}
	query, args = applyFilter(query, args, filter)
	query += " ORDER BY started_at ASC, id ASC"

	var entries []timeentrydomain.TimeEntry
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) FindPage(ctx context.Context, db *gorm.DB, filter timeentrydomain.Filter, cursor *pagination.Cursor, limit int) ([]*timeentrydomain.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE workspace_id = ?`
	args := []any{filter.WorkspaceID}
	query, args = applyFilter(query, args, filter)

	if cursor != nil {
		startedAt, err := time.Parse(time.RFC3339Nano, cursor.StartedAt)
		if err != nil {
			return nil, err
		}
		id, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, err
		}
		query += " AND (started_at < ? OR (started_at = ? AND id < ?))"
		args = append(args, startedAt.UTC(), startedAt.UTC(), id)
	}

	query += " ORDER BY started_at DESC, id DESC LIMIT ?"
	args = append(args, limit+1)

	var entries []*timeentrydomain.TimeEntry
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, workspaceID, id snowflake.ID) (*timeentrydomain.TimeEntry, error) {
	var entry timeentrydomain.TimeEntry
	err := db.WithContext(ctx).Raw(
		`SELECT `+entryColumns+` FROM time_entries WHERE workspace_id = ? AND id = ?`,
		workspaceID,
		id,
	).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}

func (r *repo) FindRunning(ctx context.Context, db *gorm.DB, workspaceID, userID snowflake.ID) (*timeentrydomain.TimeEntry, error) {
	var entry timeentrydomain.TimeEntry
	err := db.WithContext(ctx).Raw(
		`SELECT `+entryColumns+` FROM time_entries
		 WHERE workspace_id = ? AND user_id = ? AND duration_seconds = ?`,
		workspaceID,
		userID,
		dates.DurationRunning,
	).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, e *timeentrydomain.TimeEntry) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO time_entries (`+entryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.WorkspaceID,
		e.UserID,
		optionalID(e.ProjectID),
		e.Description,
		e.Billable,
		e.StartedAt.UTC(),
		optionalTime(e.EndedAt),
		e.DurationSeconds,
		e.TrackedAt.UTC(),
		e.MonthDate,
		e.Locked,
		optionalID(e.InvoiceID),
		e.IntegrationURL,
		e.IntegrationProvider,
		e.CreatedAt.UTC(),
		e.UpdatedAt.UTC(),
	).Error
}

func (r *repo) InsertRunning(ctx context.Context, db *gorm.DB, e *timeentrydomain.TimeEntry) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`INSERT INTO time_entries (`+entryColumns+`)
		 SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		 WHERE NOT EXISTS (
			SELECT 1 FROM time_entries
			WHERE workspace_id = ? AND user_id = ? AND duration_seconds = ?
		 )`,
		e.ID,
		e.WorkspaceID,
		e.UserID,
		optionalID(e.ProjectID),
		e.Description,
		e.Billable,
		e.StartedAt.UTC(),
		optionalTime(e.EndedAt),
		e.DurationSeconds,
		e.TrackedAt.UTC(),
		e.MonthDate,
		e.Locked,
		optionalID(e.InvoiceID),
		e.IntegrationURL,
		e.IntegrationProvider,
		e.CreatedAt.UTC(),
		e.UpdatedAt.UTC(),
		e.WorkspaceID,
		e.UserID,
		dates.DurationRunning,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) CloseRunning(ctx context.Context, db *gorm.DB, id snowflake.ID, endedAt time.Time, seconds int64) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE time_entries
		 SET ended_at = ?, duration_seconds = ?, updated_at = ?
		 WHERE id = ? AND duration_seconds = ?`,
		endedAt.UTC(),
		seconds,
		endedAt.UTC(),
		id,
		dates.DurationRunning,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, e *timeentrydomain.TimeEntry, seenUpdatedAt time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE time_entries
		 SET description = ?, project_id = ?, billable = ?, started_at = ?, ended_at = ?,
		     duration_seconds = ?, tracked_at = ?, month_date = ?, updated_at = ?
		 WHERE workspace_id = ? AND id = ? AND updated_at = ?`,
		e.Description,
		optionalID(e.ProjectID),
		e.Billable,
		e.StartedAt.UTC(),
		optionalTime(e.EndedAt),
		e.DurationSeconds,
		e.TrackedAt.UTC(),
		e.MonthDate,
		e.UpdatedAt.UTC(),
		e.WorkspaceID,
		e.ID,
		seenUpdatedAt.UTC(),
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, workspaceID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM time_entries WHERE workspace_id = ? AND id = ?`,
		workspaceID,
		id,
	).Error
}

func applyFilter(query string, args []any, filter timeentrydomain.Filter) (string, []any) {
	if filter.UserID != nil && *filter.UserID != 0 {
		query += " AND user_id = ?"
		args = append(args, *filter.UserID)
	}
	if filter.ProjectID != nil && *filter.ProjectID != 0 {
		query += " AND project_id = ?"
		args = append(args, *filter.ProjectID)
	}
	if filter.Billable != nil {
		query += " AND billable = ?"
		args = append(args, *filter.Billable)
	}
	if filter.From != nil {
		query += " AND started_at >= ?"
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		query += " AND started_at <= ?"
		args = append(args, filter.To.UTC())
	}
	return query, args
}

// optionalTime binds a nullable timestamp, normalized to UTC. All stored
// timestamps are UTC so range predicates compare uniformly.
func optionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func optionalID(id *snowflake.ID) any {
	if id == nil || *id == 0 {
		return nil
	}
	return *id
}
