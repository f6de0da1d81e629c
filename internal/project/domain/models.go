// Package domain contains read models for projects and clients as consumed
// by aggregation. Project CRUD lives outside this core.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Project billing types. Non-billable projects contribute zero revenue
// regardless of per-entry billable flags.
const (
	TypeFixed         = "fixed"
	TypeHourly        = "hourly"
	TypeProjectHourly = "project-hourly"
	TypeNonBillable   = "non-billable"
)

// Project is the budget/type read model for a tracked project.
type Project struct {
	ID                   snowflake.ID  `json:"id" gorm:"primaryKey"`
	WorkspaceID          snowflake.ID  `json:"workspace_id" gorm:"not null;index"`
	ClientID             *snowflake.ID `json:"client_id" gorm:"index"`
	Name                 string        `json:"name" gorm:"type:text;not null"`
	Type                 string        `json:"type" gorm:"type:text;not null;default:hourly"`
	BudgetHours          *int32        `json:"budget_hours"`
	BudgetResetsPerMonth bool          `json:"budget_resets_per_month" gorm:"not null;default:false"`
	StartsAt             *time.Time    `json:"starts_at"`
	EndsAt               *time.Time    `json:"ends_at"`
	CreatedAt            time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt            time.Time     `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Project) TableName() string { return "projects" }

// NonBillable reports whether the project never produces revenue.
func (p Project) NonBillable() bool { return p.Type == TypeNonBillable }

// Client groups projects for reporting.
type Client struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	WorkspaceID snowflake.ID `json:"workspace_id" gorm:"not null;index"`
	Name        string       `json:"name" gorm:"type:text;not null"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Client) TableName() string { return "clients" }
