package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/statusunknown418/thearq/internal/clock"
	"github.com/statusunknown418/thearq/internal/config"
	memberdomain "github.com/statusunknown418/thearq/internal/member/domain"
	memberrepository "github.com/statusunknown418/thearq/internal/member/repository"
	memberservice "github.com/statusunknown418/thearq/internal/member/service"
	projectdomain "github.com/statusunknown418/thearq/internal/project/domain"
	projectrepository "github.com/statusunknown418/thearq/internal/project/repository"
	reportdomain "github.com/statusunknown418/thearq/internal/report/domain"
	timeentrydomain "github.com/statusunknown418/thearq/internal/timeentry/domain"
	timeentryrepository "github.com/statusunknown418/thearq/internal/timeentry/repository"
	"github.com/statusunknown418/thearq/internal/workspacectx"
	"github.com/statusunknown418/thearq/pkg/dates"
	"github.com/statusunknown418/thearq/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type reportFixture struct {
	svc         reportdomain.Service
	db          *gorm.DB
	node        *snowflake.Node
	clock       *clock.FakeClock
	workspaceID snowflake.ID
}

func setupReportService(t *testing.T) *reportFixture {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("new test db: %v", err)
	}
	if err := dbConn.AutoMigrate(
		&projectdomain.Project{},
		&projectdomain.Client{},
		&memberdomain.WorkspaceMember{},
		&memberdomain.ProjectMember{},
		&timeentrydomain.TimeEntry{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new snowflake node: %v", err)
	}

	resolver := memberservice.NewService(memberservice.ServiceParam{
		DB:   dbConn,
		Log:  zap.NewNop(),
		Repo: memberrepository.Provide(),
	})

	fake := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	svc := NewService(ServiceParam{
		DB:          dbConn,
		Log:         zap.NewNop(),
		Clock:       fake,
		Cfg:         config.Config{DefaultTimezone: "UTC"},
		EntryRepo:   timeentryrepository.Provide(),
		ProjectRepo: projectrepository.Provide(),
		Resolver:    resolver,
	})

	return &reportFixture{
		svc:         svc,
		db:          dbConn,
		node:        node,
		clock:       fake,
		workspaceID: node.Generate(),
	}
}

func (f *reportFixture) ctx() context.Context {
	return workspacectx.WithWorkspaceID(context.Background(), f.workspaceID)
}

func (f *reportFixture) seedMember(t *testing.T, userID snowflake.ID, rate, cost int64) {
	t.Helper()
	member := memberdomain.WorkspaceMember{
		ID:                       f.node.Generate(),
		WorkspaceID:              f.workspaceID,
		UserID:                   userID,
		DefaultBillableRateCents: rate,
		DefaultInternalCostCents: cost,
	}
	if err := f.db.Create(&member).Error; err != nil {
		t.Fatalf("seed workspace member: %v", err)
	}
}

func (f *reportFixture) seedOverride(t *testing.T, projectID, userID snowflake.ID, rate, cost int64) {
	t.Helper()
	member := memberdomain.ProjectMember{
		ID:                f.node.Generate(),
		ProjectID:         projectID,
		UserID:            userID,
		WorkspaceID:       f.workspaceID,
		BillableRateCents: rate,
		InternalCostCents: cost,
	}
	if err := f.db.Create(&member).Error; err != nil {
		t.Fatalf("seed project member: %v", err)
	}
}

func (f *reportFixture) seedProject(t *testing.T, name, projectType string, clientID *snowflake.ID) *projectdomain.Project {
	t.Helper()
	project := projectdomain.Project{
		ID:          f.node.Generate(),
		WorkspaceID: f.workspaceID,
		ClientID:    clientID,
		Name:        name,
		Type:        projectType,
	}
	if err := f.db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return &project
}

func (f *reportFixture) seedClient(t *testing.T, name string) snowflake.ID {
	t.Helper()
	client := projectdomain.Client{
		ID:          f.node.Generate(),
		WorkspaceID: f.workspaceID,
		Name:        name,
	}
	if err := f.db.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return client.ID
}

func (f *reportFixture) seedEntry(t *testing.T, userID snowflake.ID, projectID *snowflake.ID, startedAt time.Time, duration time.Duration, billable bool) {
	t.Helper()
	endedAt := startedAt.Add(duration)
	entry := timeentrydomain.TimeEntry{
		ID:              f.node.Generate(),
		WorkspaceID:     f.workspaceID,
		UserID:          userID,
		ProjectID:       projectID,
		Billable:        billable,
		StartedAt:       startedAt.UTC(),
		EndedAt:         &endedAt,
		DurationSeconds: int64(duration / time.Second),
		TrackedAt:       dates.StartOfDay(startedAt.UTC()),
		MonthDate:       dates.MonthBucket(startedAt.UTC()),
	}
	if err := f.db.Create(&entry).Error; err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	// GORM skips zero-valued fields that carry a column default on insert, so
	// Billable=false would otherwise be stored as the column's default:true.
	if err := f.db.Exec("UPDATE time_entries SET billable = ? WHERE id = ?", billable, entry.ID).Error; err != nil {
		t.Fatalf("seed entry billable: %v", err)
	}
}

func (f *reportFixture) seedRunningEntry(t *testing.T, userID snowflake.ID, startedAt time.Time) {
	t.Helper()
	entry := timeentrydomain.TimeEntry{
		ID:              f.node.Generate(),
		WorkspaceID:     f.workspaceID,
		UserID:          userID,
		Billable:        true,
		StartedAt:       startedAt.UTC(),
		DurationSeconds: dates.DurationRunning,
		TrackedAt:       dates.StartOfDay(startedAt.UTC()),
		MonthDate:       dates.MonthBucket(startedAt.UTC()),
	}
	if err := f.db.Create(&entry).Error; err != nil {
		t.Fatalf("seed running entry: %v", err)
	}
}

func marchRange() reportdomain.RangeRequest {
	return reportdomain.RangeRequest{StartDate: "2026-03-01", EndDate: "2026-03-31", Timezone: "UTC"}
}

func TestGetTotalsRateCascadeAndSplit(t *testing.T) {
	f := setupReportService(t)
	userID := f.node.Generate()
	f.seedMember(t, userID, 5000, 3000)

	project := f.seedProject(t, "Platform", projectdomain.TypeHourly, nil)
	f.seedOverride(t, project.ID, userID, 8000, 4500)

	day := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	// 2h at the 8000c/h override, 1h billable and 1h non-billable at the
	// 5000c/h default, plus a running timer that must not count anywhere.
	f.seedEntry(t, userID, &project.ID, day, 2*time.Hour, true)
	f.seedEntry(t, userID, nil, day.Add(3*time.Hour), time.Hour, true)
	f.seedEntry(t, userID, nil, day.Add(5*time.Hour), time.Hour, false)
	f.seedRunningEntry(t, userID, day.Add(7*time.Hour))

	totals, err := f.svc.GetTotals(f.ctx(), marchRange(), reportdomain.Filters{})
	require.NoError(t, err)

	assert.Equal(t, int64(14400), totals.TotalSeconds)
	assert.Equal(t, int64(10800), totals.BillableSeconds)
	assert.Equal(t, int64(3600), totals.NonBillableSeconds)
	assert.Equal(t, int64(21000), totals.EarningsCents)
	assert.Equal(t, int64(15000), totals.InternalCostCents)
	assert.Equal(t, int64(6000), totals.ProfitCents)
	assert.InDelta(t, 28.57, totals.ProfitPercent, 0.01)
}

func TestGetTotalsNonBillableProjectEarnsNothing(t *testing.T) {
	f := setupReportService(t)
	userID := f.node.Generate()
	f.seedMember(t, userID, 5000, 3000)

	internal := f.seedProject(t, "Internal tooling", projectdomain.TypeNonBillable, nil)
	day := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	// Billable flag on the entry does not override the project type.
	f.seedEntry(t, userID, &internal.ID, day, 2*time.Hour, true)

	totals, err := f.svc.GetTotals(f.ctx(), marchRange(), reportdomain.Filters{})
	require.NoError(t, err)

	assert.Equal(t, int64(7200), totals.TotalSeconds)
	assert.Equal(t, int64(7200), totals.BillableSeconds)
	assert.Equal(t, int64(0), totals.EarningsCents)
	assert.Equal(t, int64(6000), totals.InternalCostCents)
}

func TestGetTotalsMissingMembershipFailsLoudly(t *testing.T) {
	f := setupReportService(t)
	stranger := f.node.Generate()

	day := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	f.seedEntry(t, stranger, nil, day, time.Hour, true)

	_, err := f.svc.GetTotals(f.ctx(), marchRange(), reportdomain.Filters{})
	assert.ErrorIs(t, err, memberdomain.ErrWorkspaceMemberNotFound)
}

func TestGetTotalsEmptyRange(t *testing.T) {
	f := setupReportService(t)

	totals, err := f.svc.GetTotals(f.ctx(), marchRange(), reportdomain.Filters{})
	require.NoError(t, err)

	assert.Equal(t, int64(0), totals.TotalSeconds)
	assert.Equal(t, int64(0), totals.EarningsCents)
	assert.Equal(t, float64(0), totals.ProfitPercent)
}

func TestGetTotalsRejectsInvalidInput(t *testing.T) {
	f := setupReportService(t)

	_, err := f.svc.GetTotals(f.ctx(), reportdomain.RangeRequest{
		StartDate: "2026-03-31", EndDate: "2026-03-01",
	}, reportdomain.Filters{})
	assert.ErrorIs(t, err, reportdomain.ErrInvalidRange)

	_, err = f.svc.GetTotals(f.ctx(), reportdomain.RangeRequest{
		StartDate: "2026-03-01", EndDate: "2026-03-31", Timezone: "Atlantis/Sunken",
	}, reportdomain.Filters{})
	assert.ErrorIs(t, err, reportdomain.ErrInvalidTimezone)
}

func TestGroupedByProjectOrdersBySeconds(t *testing.T) {
	f := setupReportService(t)
	userID := f.node.Generate()
	f.seedMember(t, userID, 5000, 3000)

	big := f.seedProject(t, "Big", projectdomain.TypeHourly, nil)
	small := f.seedProject(t, "Small", projectdomain.TypeHourly, nil)

	day := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	f.seedEntry(t, userID, &small.ID, day, time.Hour, true)
	f.seedEntry(t, userID, &big.ID, day.Add(2*time.Hour), 3*time.Hour, true)
	f.seedEntry(t, userID, nil, day.Add(6*time.Hour), 30*time.Minute, true)

	grouped, err := f.svc.GetGroupedSummary(f.ctx(), marchRange(), reportdomain.DimensionProject, reportdomain.Filters{}, 0)
	require.NoError(t, err)

	require.Len(t, grouped.Rows, 3)
	assert.Equal(t, "Big", grouped.Rows[0].Label)
	assert.Equal(t, int64(10800), grouped.Rows[0].Seconds)
	assert.Equal(t, "Small", grouped.Rows[1].Label)
	assert.Equal(t, "No project", grouped.Rows[2].Label)

	// topN caps the result after ordering.
	top, err := f.svc.GetGroupedSummary(f.ctx(), marchRange(), reportdomain.DimensionProject, reportdomain.Filters{}, 1)
	require.NoError(t, err)
	require.Len(t, top.Rows, 1)
	assert.Equal(t, "Big", top.Rows[0].Label)
}

func TestGroupedByClient(t *testing.T) {
	f := setupReportService(t)
	userID := f.node.Generate()
	f.seedMember(t, userID, 5000, 3000)

	clientID := f.seedClient(t, "Acme Co")
	billed := f.seedProject(t, "Acme site", projectdomain.TypeHourly, &clientID)
	orphan := f.seedProject(t, "Side quest", projectdomain.TypeHourly, nil)

	day := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	f.seedEntry(t, userID, &billed.ID, day, 2*time.Hour, true)
	f.seedEntry(t, userID, &orphan.ID, day.Add(3*time.Hour), time.Hour, true)

	grouped, err := f.svc.GetGroupedSummary(f.ctx(), marchRange(), reportdomain.DimensionClient, reportdomain.Filters{}, 0)
	require.NoError(t, err)

	require.Len(t, grouped.Rows, 2)
	assert.Equal(t, "Acme Co", grouped.Rows[0].Label)
	assert.Equal(t, int64(7200), grouped.Rows[0].Seconds)
	assert.Equal(t, "No client", grouped.Rows[1].Label)
}

func TestGroupedByDateUsesLocalDays(t *testing.T) {
	f := setupReportService(t)
	userID := f.node.Generate()
	f.seedMember(t, userID, 5000, 3000)

	// 23:30 Lima on the 7th is 04:30 UTC on the 8th.
	lateEvening := time.Date(2026, 3, 8, 4, 30, 0, 0, time.UTC)
	f.seedEntry(t, userID, nil, lateEvening, time.Hour, true)

	grouped, err := f.svc.GetGroupedSummary(f.ctx(), reportdomain.RangeRequest{
		StartDate: "2026-03-07", EndDate: "2026-03-07", Timezone: "America/Lima",
	}, reportdomain.DimensionDate, reportdomain.Filters{}, 0)
	require.NoError(t, err)

	require.Len(t, grouped.Rows, 1)
	assert.Equal(t, "2026-03-07", grouped.Rows[0].Key)
	assert.Equal(t, int64(3600), grouped.Rows[0].Seconds)
}

func TestGroupedRejectsUnknownDimension(t *testing.T) {
	f := setupReportService(t)

	_, err := f.svc.GetGroupedSummary(f.ctx(), marchRange(), reportdomain.Dimension("sprint"), reportdomain.Filters{}, 0)
	assert.ErrorIs(t, err, reportdomain.ErrInvalidDimension)
}

func TestSeriesZeroFillsEveryDay(t *testing.T) {
	f := setupReportService(t)
	userID := f.node.Generate()
	f.seedMember(t, userID, 5000, 3000)

	f.seedEntry(t, userID, nil, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), time.Hour, true)
	f.seedEntry(t, userID, nil, time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC), 2*time.Hour, false)

	series, err := f.svc.GetTimeSeries(f.ctx(), reportdomain.RangeRequest{
		StartDate: "2026-03-01", EndDate: "2026-03-07", Timezone: "UTC",
	}, reportdomain.Filters{})
	require.NoError(t, err)

	require.Len(t, series.Points, 7)
	assert.Equal(t, "2026-03-01", series.Points[0].Date)
	assert.Equal(t, "2026-03-07", series.Points[6].Date)

	assert.Equal(t, int64(0), series.Points[0].TotalSeconds)
	assert.Equal(t, int64(3600), series.Points[1].TotalSeconds)
	assert.Equal(t, int64(3600), series.Points[1].BillableSeconds)
	assert.Equal(t, int64(5000), series.Points[1].EarningsCents)
	assert.Equal(t, int64(7200), series.Points[4].TotalSeconds)
	assert.Equal(t, int64(7200), series.Points[4].NonBillableSeconds)
	assert.Equal(t, int64(0), series.Points[4].EarningsCents)
	assert.Equal(t, int64(0), series.Points[6].TotalSeconds)
}

func TestBudgetRemainingLifetime(t *testing.T) {
	f := setupReportService(t)
	userID := f.node.Generate()
	f.seedMember(t, userID, 5000, 3000)

	budget := int32(100)
	project := projectdomain.Project{
		ID:          f.node.Generate(),
		WorkspaceID: f.workspaceID,
		Name:        "Fixed scope",
		Type:        projectdomain.TypeHourly,
		BudgetHours: &budget,
	}
	require.NoError(t, f.db.Create(&project).Error)

	day := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	f.seedEntry(t, userID, &project.ID, day, 2*time.Hour, true)
	f.seedRunningEntry(t, userID, day.Add(5*time.Hour))

	result, err := f.svc.GetBudgetRemaining(f.ctx(), project.ID, "UTC")
	require.NoError(t, err)

	assert.True(t, result.HasBudget)
	assert.False(t, result.ResetsMonthly)
	assert.Equal(t, float64(100), result.BudgetHours)
	assert.Equal(t, float64(2), result.ConsumedHours)
	assert.Equal(t, float64(98), result.RemainingHours)
	assert.InDelta(t, 2.0, result.UsedPercent, 0.001)
}

func TestBudgetRemainingMonthlyReset(t *testing.T) {
	f := setupReportService(t)
	userID := f.node.Generate()
	f.seedMember(t, userID, 5000, 3000)

	budget := int32(10)
	project := projectdomain.Project{
		ID:                   f.node.Generate(),
		WorkspaceID:          f.workspaceID,
		Name:                 "Retainer",
		Type:                 projectdomain.TypeHourly,
		BudgetHours:          &budget,
		BudgetResetsPerMonth: true,
	}
	require.NoError(t, f.db.Create(&project).Error)

	// Clock sits in March 2026; February consumption must not count.
	f.seedEntry(t, userID, &project.ID, time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC), 8*time.Hour, true)
	f.seedEntry(t, userID, &project.ID, time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC), 3*time.Hour, true)

	result, err := f.svc.GetBudgetRemaining(f.ctx(), project.ID, "UTC")
	require.NoError(t, err)

	assert.Equal(t, float64(3), result.ConsumedHours)
	assert.Equal(t, float64(7), result.RemainingHours)
	assert.InDelta(t, 30.0, result.UsedPercent, 0.001)
}

func TestBudgetRemainingWithoutBudget(t *testing.T) {
	f := setupReportService(t)
	userID := f.node.Generate()
	f.seedMember(t, userID, 5000, 3000)

	project := f.seedProject(t, "Unbudgeted", projectdomain.TypeHourly, nil)
	day := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	f.seedEntry(t, userID, &project.ID, day, 2*time.Hour, true)

	result, err := f.svc.GetBudgetRemaining(f.ctx(), project.ID, "UTC")
	require.NoError(t, err)

	// Zeros mean "no budget", not "fully consumed".
	assert.False(t, result.HasBudget)
	assert.Equal(t, float64(2), result.ConsumedHours)
	assert.Equal(t, float64(0), result.RemainingHours)
	assert.Equal(t, float64(0), result.UsedPercent)
}

func TestBudgetRemainingUnknownProject(t *testing.T) {
	f := setupReportService(t)

	_, err := f.svc.GetBudgetRemaining(f.ctx(), f.node.Generate(), "UTC")
	assert.ErrorIs(t, err, projectdomain.ErrNotFound)
}

func TestFiltersNarrowReports(t *testing.T) {
	f := setupReportService(t)
	alice := f.node.Generate()
	bob := f.node.Generate()
	f.seedMember(t, alice, 5000, 3000)
	f.seedMember(t, bob, 6000, 3500)

	project := f.seedProject(t, "Shared", projectdomain.TypeHourly, nil)
	day := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	f.seedEntry(t, alice, &project.ID, day, 2*time.Hour, true)
	f.seedEntry(t, bob, &project.ID, day.Add(3*time.Hour), time.Hour, true)
	f.seedEntry(t, alice, nil, day.Add(5*time.Hour), time.Hour, true)

	byUser, err := f.svc.GetTotals(f.ctx(), marchRange(), reportdomain.Filters{UserID: &alice})
	require.NoError(t, err)
	assert.Equal(t, int64(10800), byUser.TotalSeconds)

	byProject, err := f.svc.GetTotals(f.ctx(), marchRange(), reportdomain.Filters{ProjectID: &project.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(10800), byProject.TotalSeconds)
	assert.Equal(t, int64(16000), byProject.EarningsCents)
}
