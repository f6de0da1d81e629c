// Package domain defines the reporting read models: totals, grouped
// breakdowns, day series and budget consumption.
package domain

import (
	"github.com/bwmarrin/snowflake"
)

// RangeRequest carries date-only boundaries plus the caller's IANA zone.
// Both dates are inclusive; the engine normalizes the end to end-of-day in
// the resolved zone before querying.
type RangeRequest struct {
	StartDate string `form:"start_date" json:"start_date"`
	EndDate   string `form:"end_date" json:"end_date"`
	Timezone  string `form:"timezone" json:"timezone"`
}

// Filters optionally narrow a report to one project and/or one person.
type Filters struct {
	ProjectID *snowflake.ID
	UserID    *snowflake.ID
}

// Dimension selects the grouping identity for summaries.
type Dimension string

const (
	DimensionProject Dimension = "project"
	DimensionClient  Dimension = "client"
	DimensionPerson  Dimension = "person"
	DimensionDate    Dimension = "date"
)

// TotalsResult is the workspace-level financial fold over a range. Running
// entries are excluded from every figure.
type TotalsResult struct {
	TotalSeconds       int64   `json:"total_seconds"`
	BillableSeconds    int64   `json:"billable_seconds"`
	NonBillableSeconds int64   `json:"non_billable_seconds"`
	EarningsCents      int64   `json:"earnings_cents"`
	InternalCostCents  int64   `json:"internal_cost_cents"`
	ProfitCents        int64   `json:"profit_cents"`
	ProfitPercent      float64 `json:"profit_percent"`
}

// GroupedRow is one accumulated bucket of a grouped summary.
type GroupedRow struct {
	Key               string `json:"key"`
	Label             string `json:"label"`
	Seconds           int64  `json:"seconds"`
	EarningsCents     int64  `json:"earnings_cents"`
	InternalCostCents int64  `json:"internal_cost_cents"`
}

// GroupedResult lists buckets ordered by descending accumulated seconds.
type GroupedResult struct {
	Dimension Dimension    `json:"dimension"`
	Rows      []GroupedRow `json:"rows"`
}

// SeriesPoint is one calendar day of the time series. Days without entries
// are present with zero values.
type SeriesPoint struct {
	Date               string `json:"date"`
	TotalSeconds       int64  `json:"total_seconds"`
	BillableSeconds    int64  `json:"billable_seconds"`
	NonBillableSeconds int64  `json:"non_billable_seconds"`
	EarningsCents      int64  `json:"earnings_cents"`
	InternalCostCents  int64  `json:"internal_cost_cents"`
}

// SeriesResult is chronological and gap-free over the requested range.
type SeriesResult struct {
	Points []SeriesPoint `json:"points"`
}

// BudgetResult reports project budget consumption. HasBudget false means no
// budget is set; Remaining/UsedPercent are zero then and must not be read
// as "fully consumed".
type BudgetResult struct {
	ProjectID      string  `json:"project_id"`
	HasBudget      bool    `json:"has_budget"`
	ResetsMonthly  bool    `json:"resets_monthly"`
	BudgetHours    float64 `json:"budget_hours"`
	ConsumedHours  float64 `json:"consumed_hours"`
	RemainingHours float64 `json:"remaining_hours"`
	UsedPercent    float64 `json:"used_percent"`
}
