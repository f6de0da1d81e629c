package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/statusunknown418/thearq/internal/clock"
	projectdomain "github.com/statusunknown418/thearq/internal/project/domain"
	projectrepository "github.com/statusunknown418/thearq/internal/project/repository"
	timeentrydomain "github.com/statusunknown418/thearq/internal/timeentry/domain"
	"github.com/statusunknown418/thearq/internal/timeentry/repository"
	"github.com/statusunknown418/thearq/internal/workspacectx"
	"github.com/statusunknown418/thearq/pkg/dates"
	"github.com/statusunknown418/thearq/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type entryFixture struct {
	svc   timeentrydomain.Service
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
}

func setupEntryService(t *testing.T) *entryFixture {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("new test db: %v", err)
	}
	if err := dbConn.AutoMigrate(
		&projectdomain.Project{},
		&timeentrydomain.TimeEntry{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new snowflake node: %v", err)
	}

	fake := clock.NewFakeClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := NewService(ServiceParam{
		DB:          dbConn,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fake,
		Repo:        repository.Provide(),
		ProjectRepo: projectrepository.Provide(),
	})

	return &entryFixture{svc: svc, db: dbConn, node: node, clock: fake}
}

func (f *entryFixture) ctx(workspaceID, userID snowflake.ID) context.Context {
	ctx := workspacectx.WithWorkspaceID(context.Background(), workspaceID)
	return workspacectx.WithUserID(ctx, userID)
}

func (f *entryFixture) seedProject(t *testing.T, workspaceID snowflake.ID, projectType string) snowflake.ID {
	t.Helper()
	project := projectdomain.Project{
		ID:          f.node.Generate(),
		WorkspaceID: workspaceID,
		Name:        "Backend rewrite",
		Type:        projectType,
	}
	if err := f.db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return project.ID
}

func TestStartStopLifecycle(t *testing.T) {
	f := setupEntryService(t)
	workspaceID := f.node.Generate()
	userID := f.node.Generate()
	ctx := f.ctx(workspaceID, userID)

	started, err := f.svc.StartTimer(ctx, timeentrydomain.StartTimerRequest{Description: "standup"})
	require.NoError(t, err)
	assert.True(t, started.IsRunning())
	assert.Nil(t, started.EndedAt)
	assert.Equal(t, dates.DurationRunning, started.DurationSeconds)
	assert.Equal(t, "2026/03", started.MonthDate)

	running, err := f.svc.Running(ctx)
	require.NoError(t, err)
	require.NotNil(t, running)
	assert.Equal(t, started.ID, running.ID)

	f.clock.Advance(2 * time.Hour)

	stopped, err := f.svc.StopTimer(ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7200), stopped.DurationSeconds)
	require.NotNil(t, stopped.EndedAt)
	assert.False(t, stopped.IsRunning())

	running, err = f.svc.Running(ctx)
	require.NoError(t, err)
	assert.Nil(t, running)
}

func TestStartTimerRejectsSecondTimer(t *testing.T) {
	f := setupEntryService(t)
	workspaceID := f.node.Generate()
	userID := f.node.Generate()
	ctx := f.ctx(workspaceID, userID)

	_, err := f.svc.StartTimer(ctx, timeentrydomain.StartTimerRequest{})
	require.NoError(t, err)

	_, err = f.svc.StartTimer(ctx, timeentrydomain.StartTimerRequest{})
	assert.ErrorIs(t, err, timeentrydomain.ErrTimerAlreadyRunning)
}

func TestStartTimerConcurrentExactlyOneWins(t *testing.T) {
	f := setupEntryService(t)
	workspaceID := f.node.Generate()
	userID := f.node.Generate()
	ctx := f.ctx(workspaceID, userID)

	const attempts = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	conflicts := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.StartTimer(ctx, timeentrydomain.StartTimerRequest{})
			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				successes++
			case timeentrydomain.ErrTimerAlreadyRunning:
				conflicts++
			default:
				t.Errorf("unexpected start error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}

func TestStartTimerAllowsOnePerUser(t *testing.T) {
	f := setupEntryService(t)
	workspaceID := f.node.Generate()
	alice := f.node.Generate()
	bob := f.node.Generate()

	_, err := f.svc.StartTimer(f.ctx(workspaceID, alice), timeentrydomain.StartTimerRequest{})
	require.NoError(t, err)

	// A different user in the same workspace is unaffected.
	_, err = f.svc.StartTimer(f.ctx(workspaceID, bob), timeentrydomain.StartTimerRequest{})
	require.NoError(t, err)
}

func TestStartTimerUnknownProject(t *testing.T) {
	f := setupEntryService(t)
	workspaceID := f.node.Generate()
	userID := f.node.Generate()
	ghost := f.node.Generate()

	_, err := f.svc.StartTimer(f.ctx(workspaceID, userID), timeentrydomain.StartTimerRequest{ProjectID: &ghost})
	assert.ErrorIs(t, err, timeentrydomain.ErrInvalidProject)
}

func TestStopTimerOwnershipAndState(t *testing.T) {
	f := setupEntryService(t)
	workspaceID := f.node.Generate()
	alice := f.node.Generate()
	bob := f.node.Generate()

	started, err := f.svc.StartTimer(f.ctx(workspaceID, alice), timeentrydomain.StartTimerRequest{})
	require.NoError(t, err)

	_, err = f.svc.StopTimer(f.ctx(workspaceID, bob), started.ID)
	assert.ErrorIs(t, err, timeentrydomain.ErrForbidden)

	f.clock.Advance(time.Minute)
	_, err = f.svc.StopTimer(f.ctx(workspaceID, alice), started.ID)
	require.NoError(t, err)

	// A second stop finds no running entry.
	_, err = f.svc.StopTimer(f.ctx(workspaceID, alice), started.ID)
	assert.ErrorIs(t, err, timeentrydomain.ErrRunningNotFound)
}

func TestCreateManualDerivesDuration(t *testing.T) {
	f := setupEntryService(t)
	workspaceID := f.node.Generate()
	userID := f.node.Generate()
	ctx := f.ctx(workspaceID, userID)

	startedAt := time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC)
	entry, err := f.svc.CreateManual(ctx, timeentrydomain.CreateManualRequest{
		Description: "code review",
		StartedAt:   startedAt,
		EndedAt:     startedAt.Add(90 * time.Minute),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5400), entry.DurationSeconds)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), entry.TrackedAt)
	assert.Equal(t, "2026/03", entry.MonthDate)
	assert.True(t, entry.Billable)
}

func TestCreateManualRejectsEmptyInterval(t *testing.T) {
	f := setupEntryService(t)
	workspaceID := f.node.Generate()
	userID := f.node.Generate()
	ctx := f.ctx(workspaceID, userID)

	at := time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC)

	_, err := f.svc.CreateManual(ctx, timeentrydomain.CreateManualRequest{StartedAt: at, EndedAt: at})
	assert.ErrorIs(t, err, timeentrydomain.ErrInvalidTimeRange)

	_, err = f.svc.CreateManual(ctx, timeentrydomain.CreateManualRequest{StartedAt: at, EndedAt: at.Add(-time.Hour)})
	assert.ErrorIs(t, err, timeentrydomain.ErrInvalidTimeRange)
}

func TestUpdateRederivesDerivedFields(t *testing.T) {
	f := setupEntryService(t)
	workspaceID := f.node.Generate()
	userID := f.node.Generate()
	ctx := f.ctx(workspaceID, userID)

	startedAt := time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC)
	entry, err := f.svc.CreateManual(ctx, timeentrydomain.CreateManualRequest{
		StartedAt: startedAt,
		EndedAt:   startedAt.Add(time.Hour),
	})
	require.NoError(t, err)

	// Moving the start into the previous month re-derives duration and both
	// calendar buckets.
	newStart := time.Date(2026, 2, 27, 22, 0, 0, 0, time.UTC)
	newEnd := newStart.Add(30 * time.Minute)
	updated, err := f.svc.Update(ctx, entry.ID, timeentrydomain.UpdateRequest{
		StartedAt: &newStart,
		EndedAt:   &newEnd,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1800), updated.DurationSeconds)
	assert.Equal(t, time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC), updated.TrackedAt)
	assert.Equal(t, "2026/02", updated.MonthDate)
}

func TestUpdateRunningEntryCannotSetEnd(t *testing.T) {
	f := setupEntryService(t)
	workspaceID := f.node.Generate()
	userID := f.node.Generate()
	ctx := f.ctx(workspaceID, userID)

	started, err := f.svc.StartTimer(ctx, timeentrydomain.StartTimerRequest{})
	require.NoError(t, err)

	end := f.clock.Now().Add(time.Hour)
	_, err = f.svc.Update(ctx, started.ID, timeentrydomain.UpdateRequest{EndedAt: &end})
	assert.ErrorIs(t, err, timeentrydomain.ErrStillRunning)

	// Other fields of a running entry stay editable.
	desc := "pairing session"
	updated, err := f.svc.Update(ctx, started.ID, timeentrydomain.UpdateRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	assert.True(t, updated.IsRunning())
}

func TestUpdateStaleSeenConflicts(t *testing.T) {
	f := setupEntryService(t)
	workspaceID := f.node.Generate()
	userID := f.node.Generate()
	ctx := f.ctx(workspaceID, userID)

	startedAt := time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC)
	entry, err := f.svc.CreateManual(ctx, timeentrydomain.CreateManualRequest{
		StartedAt: startedAt,
		EndedAt:   startedAt.Add(time.Hour),
	})
	require.NoError(t, err)

	desc := "first writer"
	f.clock.Advance(time.Second)
	_, err = f.svc.Update(ctx, entry.ID, timeentrydomain.UpdateRequest{Description: &desc})
	require.NoError(t, err)

	// The second writer still holds the pre-update timestamp.
	stale := "second writer"
	f.clock.Advance(time.Second)
	_, err = f.svc.Update(ctx, entry.ID, timeentrydomain.UpdateRequest{
		Description:   &stale,
		SeenUpdatedAt: entry.UpdatedAt,
	})
	assert.ErrorIs(t, err, timeentrydomain.ErrUpdateConflict)
}

func TestLockedEntryRejectsMutation(t *testing.T) {
	f := setupEntryService(t)
	workspaceID := f.node.Generate()
	userID := f.node.Generate()
	ctx := f.ctx(workspaceID, userID)

	startedAt := time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC)
	entry, err := f.svc.CreateManual(ctx, timeentrydomain.CreateManualRequest{
		StartedAt: startedAt,
		EndedAt:   startedAt.Add(time.Hour),
	})
	require.NoError(t, err)

	if err := f.db.Exec(`UPDATE time_entries SET locked = ? WHERE id = ?`, true, entry.ID).Error; err != nil {
		t.Fatalf("lock entry: %v", err)
	}

	desc := "too late"
	_, err = f.svc.Update(ctx, entry.ID, timeentrydomain.UpdateRequest{Description: &desc})
	assert.ErrorIs(t, err, timeentrydomain.ErrLocked)

	err = f.svc.Delete(ctx, entry.ID)
	assert.ErrorIs(t, err, timeentrydomain.ErrLocked)
}

func TestDeleteChecksOwnership(t *testing.T) {
	f := setupEntryService(t)
	workspaceID := f.node.Generate()
	alice := f.node.Generate()
	bob := f.node.Generate()

	startedAt := time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC)
	entry, err := f.svc.CreateManual(f.ctx(workspaceID, alice), timeentrydomain.CreateManualRequest{
		StartedAt: startedAt,
		EndedAt:   startedAt.Add(time.Hour),
	})
	require.NoError(t, err)

	err = f.svc.Delete(f.ctx(workspaceID, bob), entry.ID)
	assert.ErrorIs(t, err, timeentrydomain.ErrForbidden)

	require.NoError(t, f.svc.Delete(f.ctx(workspaceID, alice), entry.ID))

	err = f.svc.Delete(f.ctx(workspaceID, alice), entry.ID)
	assert.ErrorIs(t, err, timeentrydomain.ErrNotFound)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	f := setupEntryService(t)
	workspaceID := f.node.Generate()
	userID := f.node.Generate()
	ctx := f.ctx(workspaceID, userID)

	base := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		startedAt := base.Add(time.Duration(i) * time.Hour)
		_, err := f.svc.CreateManual(ctx, timeentrydomain.CreateManualRequest{
			StartedAt: startedAt,
			EndedAt:   startedAt.Add(30 * time.Minute),
		})
		require.NoError(t, err)
	}

	var req timeentrydomain.ListRequest
	req.PageSize = 2
	first, err := f.svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, first.Entries, 2)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextPageToken)
	assert.True(t, first.Entries[0].StartedAt.After(first.Entries[1].StartedAt))

	req.PageToken = first.NextPageToken
	second, err := f.svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, second.Entries, 1)
	assert.False(t, second.HasMore)
	assert.NotEqual(t, first.Entries[0].ID, second.Entries[0].ID)
}

func TestListScopedToWorkspace(t *testing.T) {
	f := setupEntryService(t)
	wsA := f.node.Generate()
	wsB := f.node.Generate()
	userID := f.node.Generate()

	startedAt := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	_, err := f.svc.CreateManual(f.ctx(wsA, userID), timeentrydomain.CreateManualRequest{
		StartedAt: startedAt,
		EndedAt:   startedAt.Add(time.Hour),
	})
	require.NoError(t, err)

	resp, err := f.svc.List(f.ctx(wsB, userID), timeentrydomain.ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Entries)
}
