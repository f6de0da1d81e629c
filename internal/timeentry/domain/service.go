package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/statusunknown418/thearq/pkg/db/pagination"
)

type StartTimerRequest struct {
	Description string        `json:"description"`
	ProjectID   *snowflake.ID `json:"project_id"`
	Billable    *bool         `json:"billable"`
}

type CreateManualRequest struct {
	Description         string        `json:"description"`
	ProjectID           *snowflake.ID `json:"project_id"`
	Billable            *bool         `json:"billable"`
	StartedAt           time.Time     `json:"started_at"`
	EndedAt             time.Time     `json:"ended_at"`
	IntegrationURL      string        `json:"integration_url"`
	IntegrationProvider string        `json:"integration_provider"`
}

// UpdateRequest patches an entry. Nil fields are left untouched. SeenUpdatedAt
// carries the caller-observed updated_at for optimistic concurrency; when
// zero the service uses the freshly loaded value.
type UpdateRequest struct {
	Description   *string       `json:"description"`
	ProjectID     *snowflake.ID `json:"project_id"`
	ClearProject  bool          `json:"clear_project"`
	Billable      *bool         `json:"billable"`
	StartedAt     *time.Time    `json:"started_at"`
	EndedAt       *time.Time    `json:"ended_at"`
	SeenUpdatedAt time.Time     `json:"seen_updated_at"`
}

type ListRequest struct {
	pagination.Pagination
	UserID    *snowflake.ID
	ProjectID *snowflake.ID
	Billable  *bool
	From      *time.Time
	To        *time.Time
}

type ListResponse struct {
	pagination.PageInfo
	Entries []*TimeEntry `json:"entries"`
}

// Service governs the entry lifecycle. Workspace and acting user arrive via
// workspacectx; every mutation checks ownership against the acting user.
type Service interface {
	StartTimer(ctx context.Context, req StartTimerRequest) (*TimeEntry, error)
	StopTimer(ctx context.Context, entryID snowflake.ID) (*TimeEntry, error)
	Running(ctx context.Context) (*TimeEntry, error)
	CreateManual(ctx context.Context, req CreateManualRequest) (*TimeEntry, error)
	Update(ctx context.Context, entryID snowflake.ID, req UpdateRequest) (*TimeEntry, error)
	Delete(ctx context.Context, entryID snowflake.ID) error
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidWorkspace    = errors.New("invalid_workspace")
	ErrInvalidUser         = errors.New("invalid_user")
	ErrInvalidProject      = errors.New("invalid_project")
	ErrInvalidTimeRange    = errors.New("invalid_time_range")
	ErrTimerAlreadyRunning = errors.New("timer_already_running")
	ErrRunningNotFound     = errors.New("running_entry_not_found")
	ErrNotFound            = errors.New("entry_not_found")
	ErrLocked              = errors.New("entry_locked")
	ErrForbidden           = errors.New("entry_forbidden")
	ErrUpdateConflict      = errors.New("entry_update_conflict")
	ErrStillRunning        = errors.New("entry_still_running")
)
