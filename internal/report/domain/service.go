package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Service is the reporting surface. Results are snapshots as of the read;
// computation errors fail the whole request rather than returning partial
// sums.
type Service interface {
	GetTotals(ctx context.Context, rng RangeRequest, filters Filters) (*TotalsResult, error)
	GetGroupedSummary(ctx context.Context, rng RangeRequest, dimension Dimension, filters Filters, topN int) (*GroupedResult, error)
	GetTimeSeries(ctx context.Context, rng RangeRequest, filters Filters) (*SeriesResult, error)
	GetBudgetRemaining(ctx context.Context, projectID snowflake.ID, timezone string) (*BudgetResult, error)
}

var (
	ErrInvalidWorkspace = errors.New("invalid_workspace")
	ErrInvalidRange     = errors.New("invalid_date_range")
	ErrInvalidTimezone  = errors.New("invalid_timezone")
	ErrInvalidDimension = errors.New("invalid_dimension")
)
