package service

import (
	"context"
	"time"

	reportdomain "github.com/statusunknown418/thearq/internal/report/domain"
)

// GetTimeSeries returns one point per calendar day of the inclusive range,
// chronological, with zero-valued points for days without entries. The same
// series feeds the revenue/cost area chart and the billable split bar chart.
func (s *Service) GetTimeSeries(ctx context.Context, rng reportdomain.RangeRequest, filters reportdomain.Filters) (*reportdomain.SeriesResult, error) {
	s.countQuery("series")

	priced, loc, from, to, err := s.loadPriced(ctx, rng, filters)
	if err != nil {
		return nil, err
	}

	type dayTotals struct {
		total    int64
		billable int64
		nonBill  int64
		earns    int64
		costs    int64
	}

	// Fold keyed by local midnight; the formatted string is display only.
	totals := make(map[time.Time]*dayTotals)
	for _, p := range priced {
		day := localMidnight(p.entry.StartedAt, loc)
		bucket, ok := totals[day]
		if !ok {
			bucket = &dayTotals{}
			totals[day] = bucket
		}
		bucket.total += p.seconds
		if p.entry.Billable {
			bucket.billable += p.seconds
		} else {
			bucket.nonBill += p.seconds
		}
		bucket.earns += p.earningsCents
		bucket.costs += p.costCents
	}

	first := localMidnight(from, loc)
	last := localMidnight(to, loc)

	var points []reportdomain.SeriesPoint
	for cursor := first; !cursor.After(last); cursor = cursor.AddDate(0, 0, 1) {
		point := reportdomain.SeriesPoint{Date: cursor.Format("2006-01-02")}
		if bucket, ok := totals[cursor]; ok {
			point.TotalSeconds = bucket.total
			point.BillableSeconds = bucket.billable
			point.NonBillableSeconds = bucket.nonBill
			point.EarningsCents = bucket.earns
			point.InternalCostCents = bucket.costs
		}
		points = append(points, point)
	}

	return &reportdomain.SeriesResult{Points: points}, nil
}

func localMidnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
