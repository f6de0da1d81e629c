// Package domain contains the time entry model and its lifecycle contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/statusunknown418/thearq/pkg/dates"
)

// TimeEntry is one unit of tracked work. While the timer runs EndedAt is
// nil and DurationSeconds holds the dates.DurationRunning sentinel; the
// sentinel exists for the persisted representation only and must be read
// through SettledSeconds, never summed raw.
type TimeEntry struct {
	ID          snowflake.ID  `json:"id" gorm:"primaryKey"`
	WorkspaceID snowflake.ID  `json:"workspace_id" gorm:"not null;index:idx_time_entries_ws_started,priority:1"`
	UserID      snowflake.ID  `json:"user_id" gorm:"not null;index"`
	ProjectID   *snowflake.ID `json:"project_id" gorm:"index"`
	Description string        `json:"description" gorm:"type:text;not null;default:''"`
	Billable    bool          `json:"billable" gorm:"not null;default:true"`

	StartedAt       time.Time  `json:"started_at" gorm:"not null;index:idx_time_entries_ws_started,priority:2"`
	EndedAt         *time.Time `json:"ended_at"`
	DurationSeconds int64      `json:"duration_seconds" gorm:"not null;default:-1"`

	// TrackedAt is the calendar day the entry counts against; MonthDate is
	// the redundant "YYYY/MM" bucket kept for fast monthly lookups.
	TrackedAt time.Time `json:"tracked_at" gorm:"not null;index"`
	MonthDate string    `json:"month_date" gorm:"type:text;not null;index"`

	Locked    bool          `json:"locked" gorm:"not null;default:false"`
	InvoiceID *snowflake.ID `json:"invoice_id" gorm:"index"`

	// Opaque link to an external work item; not interpreted here.
	IntegrationURL      string `json:"integration_url" gorm:"type:text;not null;default:''"`
	IntegrationProvider string `json:"integration_provider" gorm:"type:text;not null;default:''"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (TimeEntry) TableName() string { return "time_entries" }

// IsRunning reports whether the entry is a live timer.
func (e *TimeEntry) IsRunning() bool {
	return e.EndedAt == nil && e.DurationSeconds == dates.DurationRunning
}

// SettledSeconds returns the closed duration and true, or (0, false) for a
// running entry. This is the only sanctioned path from stored duration into
// arithmetic.
func (e *TimeEntry) SettledSeconds() (int64, bool) {
	if e.DurationSeconds == dates.DurationRunning {
		return 0, false
	}
	return e.DurationSeconds, true
}

// Filter narrows entry reads. From/To bound StartedAt with absolute
// instants; callers resolve date-only boundaries through pkg/dates first.
type Filter struct {
	WorkspaceID snowflake.ID
	UserID      *snowflake.ID
	ProjectID   *snowflake.ID
	Billable    *bool
	From        *time.Time
	To          *time.Time
}
