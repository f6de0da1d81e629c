package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/statusunknown418/thearq/internal/clock"
	obsmetrics "github.com/statusunknown418/thearq/internal/observability/metrics"
	projectdomain "github.com/statusunknown418/thearq/internal/project/domain"
	timeentrydomain "github.com/statusunknown418/thearq/internal/timeentry/domain"
	"github.com/statusunknown418/thearq/internal/workspacectx"
	"github.com/statusunknown418/thearq/pkg/dates"
	"github.com/statusunknown418/thearq/pkg/db"
	"github.com/statusunknown418/thearq/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        timeentrydomain.Repository
	ProjectRepo projectdomain.Repository
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        timeentrydomain.Repository
	projectrepo projectdomain.Repository
	metrics     *obsmetrics.Metrics
}

func NewService(p ServiceParam) timeentrydomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("timeentry.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		projectrepo: p.ProjectRepo,
		metrics:     p.Metrics,
	}
}

// StartTimer opens a live entry. The conditional insert keeps the
// at-most-one-running-timer invariant under concurrent starts: exactly one
// call wins, the rest get ErrTimerAlreadyRunning.
func (s *Service) StartTimer(ctx context.Context, req timeentrydomain.StartTimerRequest) (*timeentrydomain.TimeEntry, error) {
	workspaceID, userID, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validateProject(ctx, workspaceID, req.ProjectID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	entry := &timeentrydomain.TimeEntry{
		ID:              s.genID.Generate(),
		WorkspaceID:     workspaceID,
		UserID:          userID,
		ProjectID:       normalizeID(req.ProjectID),
		Description:     req.Description,
		Billable:        billableOrDefault(req.Billable),
		StartedAt:       now,
		EndedAt:         nil,
		DurationSeconds: dates.DurationRunning,
		TrackedAt:       dates.StartOfDay(now),
		MonthDate:       dates.MonthBucket(now),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	inserted, err := s.repo.InsertRunning(ctx, s.db, entry)
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			s.countConflict()
			return nil, timeentrydomain.ErrTimerAlreadyRunning
		}
		return nil, err
	}
	if !inserted {
		s.countConflict()
		return nil, timeentrydomain.ErrTimerAlreadyRunning
	}

	if s.metrics != nil {
		s.metrics.TimersStarted.Inc()
		s.metrics.EntriesCreated.Inc()
	}
	s.log.Info("timer started",
		zap.String("entry_id", entry.ID.String()),
		zap.String("workspace_id", workspaceID.String()),
		zap.String("user_id", userID.String()),
	)
	return entry, nil
}

// StopTimer settles a live entry. This is the only legal transition out of
// the running state; the conditional update makes it happen exactly once.
func (s *Service) StopTimer(ctx context.Context, entryID snowflake.ID) (*timeentrydomain.TimeEntry, error) {
	workspaceID, userID, err := identity(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.FindByID(ctx, s.db, workspaceID, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, timeentrydomain.ErrRunningNotFound
	}
	if entry.UserID != userID {
		return nil, timeentrydomain.ErrForbidden
	}
	if !entry.IsRunning() {
		return nil, timeentrydomain.ErrRunningNotFound
	}

	endedAt := s.clock.Now()
	seconds := dates.Duration(entry.StartedAt, &endedAt)

	closed, err := s.repo.CloseRunning(ctx, s.db, entry.ID, endedAt, seconds)
	if err != nil {
		return nil, err
	}
	if !closed {
		return nil, timeentrydomain.ErrRunningNotFound
	}

	entry.EndedAt = &endedAt
	entry.DurationSeconds = seconds
	entry.UpdatedAt = endedAt

	if s.metrics != nil {
		s.metrics.TimersStopped.Inc()
	}
	s.log.Info("timer stopped",
		zap.String("entry_id", entry.ID.String()),
		zap.Int64("duration_seconds", seconds),
	)
	return entry, nil
}

// Running returns the caller's live entry, or nil when idle.
func (s *Service) Running(ctx context.Context) (*timeentrydomain.TimeEntry, error) {
	workspaceID, userID, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindRunning(ctx, s.db, workspaceID, userID)
}

func (s *Service) CreateManual(ctx context.Context, req timeentrydomain.CreateManualRequest) (*timeentrydomain.TimeEntry, error) {
	workspaceID, userID, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	if req.StartedAt.IsZero() || !req.EndedAt.After(req.StartedAt) {
		return nil, timeentrydomain.ErrInvalidTimeRange
	}
	if err := s.validateProject(ctx, workspaceID, req.ProjectID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	endedAt := req.EndedAt
	entry := &timeentrydomain.TimeEntry{
		ID:                  s.genID.Generate(),
		WorkspaceID:         workspaceID,
		UserID:              userID,
		ProjectID:           normalizeID(req.ProjectID),
		Description:         req.Description,
		Billable:            billableOrDefault(req.Billable),
		StartedAt:           req.StartedAt,
		EndedAt:             &endedAt,
		DurationSeconds:     dates.Duration(req.StartedAt, &endedAt),
		TrackedAt:           dates.StartOfDay(req.StartedAt),
		MonthDate:           dates.MonthBucket(req.StartedAt),
		IntegrationURL:      req.IntegrationURL,
		IntegrationProvider: req.IntegrationProvider,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Insert(ctx, s.db, entry); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.EntriesCreated.Inc()
	}
	return entry, nil
}

func (s *Service) Update(ctx context.Context, entryID snowflake.ID, req timeentrydomain.UpdateRequest) (*timeentrydomain.TimeEntry, error) {
	workspaceID, userID, err := identity(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.FindByID(ctx, s.db, workspaceID, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, timeentrydomain.ErrNotFound
	}
	if entry.UserID != userID {
		return nil, timeentrydomain.ErrForbidden
	}
	if entry.Locked {
		return nil, timeentrydomain.ErrLocked
	}
	if req.EndedAt != nil && entry.IsRunning() {
		// Settling a live entry goes through StopTimer, nothing else.
		return nil, timeentrydomain.ErrStillRunning
	}

	if req.Description != nil {
		entry.Description = *req.Description
	}
	if req.Billable != nil {
		entry.Billable = *req.Billable
	}
	switch {
	case req.ClearProject:
		entry.ProjectID = nil
	case req.ProjectID != nil:
		if err := s.validateProject(ctx, workspaceID, req.ProjectID); err != nil {
			return nil, err
		}
		entry.ProjectID = normalizeID(req.ProjectID)
	}

	if req.StartedAt != nil {
		entry.StartedAt = *req.StartedAt
	}
	if req.EndedAt != nil {
		endedAt := *req.EndedAt
		entry.EndedAt = &endedAt
	}
	if entry.EndedAt != nil && !entry.EndedAt.After(entry.StartedAt) {
		return nil, timeentrydomain.ErrInvalidTimeRange
	}

	// Start/end moves re-derive the settled duration and calendar buckets.
	if !entry.IsRunning() {
		entry.DurationSeconds = dates.Duration(entry.StartedAt, entry.EndedAt)
	}
	entry.TrackedAt = dates.StartOfDay(entry.StartedAt)
	entry.MonthDate = dates.MonthBucket(entry.StartedAt)

	seen := req.SeenUpdatedAt
	if seen.IsZero() {
		seen = entry.UpdatedAt
	}
	entry.UpdatedAt = s.clock.Now()

	updated, err := s.repo.Update(ctx, s.db, entry, seen)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, timeentrydomain.ErrUpdateConflict
	}
	return entry, nil
}

func (s *Service) Delete(ctx context.Context, entryID snowflake.ID) error {
	workspaceID, userID, err := identity(ctx)
	if err != nil {
		return err
	}

	entry, err := s.repo.FindByID(ctx, s.db, workspaceID, entryID)
	if err != nil {
		return err
	}
	if entry == nil {
		return timeentrydomain.ErrNotFound
	}
	if entry.UserID != userID {
		return timeentrydomain.ErrForbidden
	}
	if entry.Locked {
		return timeentrydomain.ErrLocked
	}

	if err := s.repo.Delete(ctx, s.db, workspaceID, entryID); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.EntriesDeleted.Inc()
	}
	return nil
}

func (s *Service) List(ctx context.Context, req timeentrydomain.ListRequest) (timeentrydomain.ListResponse, error) {
	workspaceID, ok := workspacectx.WorkspaceIDFromContext(ctx)
	if !ok {
		return timeentrydomain.ListResponse{}, timeentrydomain.ErrInvalidWorkspace
	}

	limit := req.PageSize
	if limit < 1 {
		limit = 50
	}
	if limit > 250 {
		limit = 250
	}

	var cursor *pagination.Cursor
	if req.PageToken != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return timeentrydomain.ListResponse{}, err
		}
		cursor = decoded
	}

	filter := timeentrydomain.Filter{
		WorkspaceID: workspaceID,
		UserID:      req.UserID,
		ProjectID:   req.ProjectID,
		Billable:    req.Billable,
		From:        req.From,
		To:          req.To,
	}

	entries, err := s.repo.FindPage(ctx, s.db, filter, cursor, limit)
	if err != nil {
		return timeentrydomain.ListResponse{}, err
	}

	entries, pageInfo := pagination.BuildCursorPageInfo(entries, limit, func(e *timeentrydomain.TimeEntry) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        e.ID.String(),
			StartedAt: e.StartedAt.Format(time.RFC3339Nano),
		})
		return token
	})

	return timeentrydomain.ListResponse{
		PageInfo: *pageInfo,
		Entries:  entries,
	}, nil
}

func (s *Service) validateProject(ctx context.Context, workspaceID snowflake.ID, projectID *snowflake.ID) error {
	if projectID == nil || *projectID == 0 {
		return nil
	}
	project, err := s.projectrepo.FindByID(ctx, s.db, workspaceID, *projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return timeentrydomain.ErrInvalidProject
	}
	return nil
}

func (s *Service) countConflict() {
	if s.metrics != nil {
		s.metrics.StartConflicts.Inc()
	}
}

func identity(ctx context.Context) (snowflake.ID, snowflake.ID, error) {
	workspaceID, ok := workspacectx.WorkspaceIDFromContext(ctx)
	if !ok {
		return 0, 0, timeentrydomain.ErrInvalidWorkspace
	}
	userID, ok := workspacectx.UserIDFromContext(ctx)
	if !ok {
		return 0, 0, timeentrydomain.ErrInvalidUser
	}
	return workspaceID, userID, nil
}

func billableOrDefault(value *bool) bool {
	if value == nil {
		return true
	}
	return *value
}

func normalizeID(id *snowflake.ID) *snowflake.ID {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}
