package service

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	reportdomain "github.com/statusunknown418/thearq/internal/report/domain"
	"github.com/statusunknown418/thearq/internal/workspacectx"
)

const (
	labelNoProject = "No project"
	labelNoClient  = "No client"
)

// accum folds one grouped bucket. Buckets are keyed by typed identifiers
// (snowflake IDs, calendar days), never stringly ids, so numeric/string key
// drift cannot happen.
type accum struct {
	key     string
	label   string
	day     time.Time
	seconds int64
	earns   int64
	costs   int64
}

func (a *accum) merge(p pricedEntry) {
	a.seconds += p.seconds
	a.earns += p.earningsCents
	a.costs += p.costCents
}

// GetGroupedSummary folds the priced range into one bucket per identity of
// the requested dimension, ordered by descending accumulated seconds. A
// positive topN caps the result (top-projects widgets).
func (s *Service) GetGroupedSummary(ctx context.Context, rng reportdomain.RangeRequest, dimension reportdomain.Dimension, filters reportdomain.Filters, topN int) (*reportdomain.GroupedResult, error) {
	s.countQuery("grouped")

	priced, loc, _, _, err := s.loadPriced(ctx, rng, filters)
	if err != nil {
		return nil, err
	}

	var buckets []*accum
	switch dimension {
	case reportdomain.DimensionProject:
		buckets = groupByID(priced, func(p pricedEntry) (snowflake.ID, string) {
			if p.project == nil {
				return 0, labelNoProject
			}
			return p.project.ID, p.project.Name
		})
	case reportdomain.DimensionClient:
		workspaceID, ok := workspacectx.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, reportdomain.ErrInvalidWorkspace
		}
		clients, err := s.clientIndex(ctx, workspaceID)
		if err != nil {
			return nil, err
		}
		buckets = groupByID(priced, func(p pricedEntry) (snowflake.ID, string) {
			if p.project == nil || p.project.ClientID == nil {
				return 0, labelNoClient
			}
			if client := clients[*p.project.ClientID]; client != nil {
				return client.ID, client.Name
			}
			return *p.project.ClientID, p.project.ClientID.String()
		})
	case reportdomain.DimensionPerson:
		// User profiles live outside this core; the id doubles as label.
		buckets = groupByID(priced, func(p pricedEntry) (snowflake.ID, string) {
			return p.entry.UserID, p.entry.UserID.String()
		})
	case reportdomain.DimensionDate:
		buckets = groupByDay(priced, loc)
	default:
		return nil, reportdomain.ErrInvalidDimension
	}

	return &reportdomain.GroupedResult{Dimension: dimension, Rows: sortRows(buckets, topN)}, nil
}

func groupByID(priced []pricedEntry, identify func(pricedEntry) (snowflake.ID, string)) []*accum {
	buckets := make(map[snowflake.ID]*accum)
	for _, p := range priced {
		id, label := identify(p)
		bucket, ok := buckets[id]
		if !ok {
			key := ""
			if id != 0 {
				key = id.String()
			}
			bucket = &accum{key: key, label: label}
			buckets[id] = bucket
		}
		bucket.merge(p)
	}
	return collect(buckets)
}

func groupByDay(priced []pricedEntry, loc *time.Location) []*accum {
	buckets := make(map[time.Time]*accum)
	for _, p := range priced {
		local := p.entry.StartedAt.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		bucket, ok := buckets[day]
		if !ok {
			key := day.Format("2006-01-02")
			bucket = &accum{key: key, label: key, day: day}
			buckets[day] = bucket
		}
		bucket.merge(p)
	}
	return collect(buckets)
}

func collect[K comparable](buckets map[K]*accum) []*accum {
	out := make([]*accum, 0, len(buckets))
	for _, bucket := range buckets {
		out = append(out, bucket)
	}
	return out
}

func sortRows(buckets []*accum, topN int) []reportdomain.GroupedRow {
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].seconds != buckets[j].seconds {
			return buckets[i].seconds > buckets[j].seconds
		}
		// Ties order by the underlying date where present, key otherwise.
		if !buckets[i].day.IsZero() || !buckets[j].day.IsZero() {
			return buckets[i].day.Before(buckets[j].day)
		}
		return buckets[i].key < buckets[j].key
	})

	rows := make([]reportdomain.GroupedRow, 0, len(buckets))
	for _, bucket := range buckets {
		rows = append(rows, reportdomain.GroupedRow{
			Key:               bucket.key,
			Label:             bucket.label,
			Seconds:           bucket.seconds,
			EarningsCents:     bucket.earns,
			InternalCostCents: bucket.costs,
		})
	}
	if topN > 0 && len(rows) > topN {
		rows = rows[:topN]
	}
	return rows
}
