package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/statusunknown418/thearq/internal/clock"
	"github.com/statusunknown418/thearq/internal/config"
	memberdomain "github.com/statusunknown418/thearq/internal/member/domain"
	obsmetrics "github.com/statusunknown418/thearq/internal/observability/metrics"
	projectdomain "github.com/statusunknown418/thearq/internal/project/domain"
	reportdomain "github.com/statusunknown418/thearq/internal/report/domain"
	timeentrydomain "github.com/statusunknown418/thearq/internal/timeentry/domain"
	"github.com/statusunknown418/thearq/internal/workspacectx"
	"github.com/statusunknown418/thearq/pkg/dates"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Cfg         config.Config
	EntryRepo   timeentrydomain.Repository
	ProjectRepo projectdomain.Repository
	Resolver    memberdomain.Resolver
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	cfg         config.Config
	entryrepo   timeentrydomain.Repository
	projectrepo projectdomain.Repository
	resolver    memberdomain.Resolver
	metrics     *obsmetrics.Metrics
}

func NewService(p ServiceParam) reportdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("report.service"),
		clock:       p.Clock,
		cfg:         p.Cfg,
		entryrepo:   p.EntryRepo,
		projectrepo: p.ProjectRepo,
		resolver:    p.Resolver,
		metrics:     p.Metrics,
	}
}

// pricedEntry is one settled entry with its resolved money figures.
// Running entries never become pricedEntries.
type pricedEntry struct {
	entry         timeentrydomain.TimeEntry
	project       *projectdomain.Project
	seconds       int64
	earningsCents int64
	costCents     int64
}

// rateKey memoizes resolver lookups per (user, project) pair within one
// report read.
type rateKey struct {
	userID    snowflake.ID
	projectID snowflake.ID
}

func (s *Service) GetTotals(ctx context.Context, rng reportdomain.RangeRequest, filters reportdomain.Filters) (*reportdomain.TotalsResult, error) {
	s.countQuery("totals")

	priced, _, _, _, err := s.loadPriced(ctx, rng, filters)
	if err != nil {
		return nil, err
	}

	result := &reportdomain.TotalsResult{}
	for _, p := range priced {
		result.TotalSeconds += p.seconds
		if p.entry.Billable {
			result.BillableSeconds += p.seconds
		} else {
			result.NonBillableSeconds += p.seconds
		}
		result.EarningsCents += p.earningsCents
		result.InternalCostCents += p.costCents
	}

	result.ProfitCents = result.EarningsCents - result.InternalCostCents
	if result.EarningsCents != 0 {
		result.ProfitPercent = float64(result.ProfitCents) * 100 / float64(result.EarningsCents)
	}
	return result, nil
}

func (s *Service) GetBudgetRemaining(ctx context.Context, projectID snowflake.ID, timezone string) (*reportdomain.BudgetResult, error) {
	s.countQuery("budget")

	workspaceID, ok := workspacectx.WorkspaceIDFromContext(ctx)
	if !ok {
		return nil, reportdomain.ErrInvalidWorkspace
	}

	project, err := s.projectrepo.FindByID(ctx, s.db, workspaceID, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, projectdomain.ErrNotFound
	}

	loc, err := s.location(timezone)
	if err != nil {
		return nil, err
	}

	filter := timeentrydomain.Filter{
		WorkspaceID: workspaceID,
		ProjectID:   &project.ID,
	}
	if project.BudgetResetsPerMonth {
		from, to := dates.MonthWindow(s.clock.Now(), loc)
		filter.From, filter.To = &from, &to
	} else {
		// Project lifetime; explicit bounds only when the project has them.
		filter.From, filter.To = project.StartsAt, project.EndsAt
	}

	entries, err := s.entryrepo.Find(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	var totalSeconds int64
	for i := range entries {
		if seconds, ok := entries[i].SettledSeconds(); ok {
			totalSeconds += seconds
		}
	}

	result := &reportdomain.BudgetResult{
		ProjectID:     project.ID.String(),
		ResetsMonthly: project.BudgetResetsPerMonth,
		ConsumedHours: float64(totalSeconds) / 3600,
	}
	if project.BudgetHours == nil {
		// No budget set; zeros here mean "nothing to measure against".
		return result, nil
	}

	result.HasBudget = true
	result.BudgetHours = float64(*project.BudgetHours)
	result.RemainingHours = result.BudgetHours - result.ConsumedHours
	if result.BudgetHours != 0 {
		result.UsedPercent = result.ConsumedHours * 100 / result.BudgetHours
	}
	return result, nil
}

// loadPriced resolves the range in the caller's zone, reads the matching
// entries and prices every settled one through the rate cascade. Entries on
// non-billable projects keep their internal cost but earn nothing, as do
// entries flagged non-billable.
func (s *Service) loadPriced(ctx context.Context, rng reportdomain.RangeRequest, filters reportdomain.Filters) ([]pricedEntry, *time.Location, time.Time, time.Time, error) {
	workspaceID, ok := workspacectx.WorkspaceIDFromContext(ctx)
	if !ok {
		return nil, nil, time.Time{}, time.Time{}, reportdomain.ErrInvalidWorkspace
	}

	loc, err := s.location(rng.Timezone)
	if err != nil {
		return nil, nil, time.Time{}, time.Time{}, err
	}
	from, to, err := dates.RangeBounds(rng.StartDate, rng.EndDate, loc)
	if err != nil {
		return nil, nil, time.Time{}, time.Time{}, reportdomain.ErrInvalidRange
	}

	entries, err := s.entryrepo.Find(ctx, s.db, timeentrydomain.Filter{
		WorkspaceID: workspaceID,
		UserID:      filters.UserID,
		ProjectID:   filters.ProjectID,
		From:        &from,
		To:          &to,
	})
	if err != nil {
		return nil, nil, time.Time{}, time.Time{}, err
	}

	projects, err := s.projectIndex(ctx, workspaceID)
	if err != nil {
		return nil, nil, time.Time{}, time.Time{}, err
	}

	rates := make(map[rateKey]memberdomain.RateCard)
	priced := make([]pricedEntry, 0, len(entries))
	for i := range entries {
		entry := entries[i]
		seconds, settled := entry.SettledSeconds()
		if !settled {
			continue
		}

		var project *projectdomain.Project
		if entry.ProjectID != nil {
			project = projects[*entry.ProjectID]
		}

		card, err := s.rateFor(ctx, rates, entry.UserID, workspaceID, entry.ProjectID)
		if err != nil {
			return nil, nil, time.Time{}, time.Time{}, err
		}

		billableRate := card.BillableRateCents
		if project != nil && project.NonBillable() {
			billableRate = 0
		}

		p := pricedEntry{
			entry:     entry,
			project:   project,
			seconds:   seconds,
			costCents: seconds * card.InternalCostCents / 3600,
		}
		if entry.Billable {
			p.earningsCents = seconds * billableRate / 3600
		}
		priced = append(priced, p)
	}

	return priced, loc, from, to, nil
}

func (s *Service) rateFor(ctx context.Context, memo map[rateKey]memberdomain.RateCard, userID, workspaceID snowflake.ID, projectID *snowflake.ID) (memberdomain.RateCard, error) {
	key := rateKey{userID: userID}
	if projectID != nil {
		key.projectID = *projectID
	}
	if card, ok := memo[key]; ok {
		return card, nil
	}

	card, err := s.resolver.Resolve(ctx, userID, workspaceID, projectID)
	if err != nil {
		return memberdomain.RateCard{}, err
	}
	memo[key] = card
	return card, nil
}

func (s *Service) projectIndex(ctx context.Context, workspaceID snowflake.ID) (map[snowflake.ID]*projectdomain.Project, error) {
	projects, err := s.projectrepo.ListByWorkspace(ctx, s.db, workspaceID)
	if err != nil {
		return nil, err
	}
	index := make(map[snowflake.ID]*projectdomain.Project, len(projects))
	for i := range projects {
		index[projects[i].ID] = &projects[i]
	}
	return index, nil
}

func (s *Service) clientIndex(ctx context.Context, workspaceID snowflake.ID) (map[snowflake.ID]*projectdomain.Client, error) {
	clients, err := s.projectrepo.ListClients(ctx, s.db, workspaceID)
	if err != nil {
		return nil, err
	}
	index := make(map[snowflake.ID]*projectdomain.Client, len(clients))
	for i := range clients {
		index[clients[i].ID] = &clients[i]
	}
	return index, nil
}

func (s *Service) location(timezone string) (*time.Location, error) {
	name := timezone
	if name == "" {
		name = s.cfg.DefaultTimezone
	}
	loc, err := dates.Location(name)
	if err != nil {
		return nil, reportdomain.ErrInvalidTimezone
	}
	return loc, nil
}

func (s *Service) countQuery(kind string) {
	if s.metrics != nil {
		s.metrics.ReportQueries.WithLabelValues(kind).Inc()
	}
}
