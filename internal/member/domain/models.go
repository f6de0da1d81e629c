// Package domain contains persistence models for workspace and project
// membership, the two sources feeding rate resolution.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// WorkspaceMember holds a user's default rates inside a workspace.
// Rates are integer cents per hour. A nil week capacity means unlimited;
// zero means no allowed hours.
type WorkspaceMember struct {
	ID                       snowflake.ID `gorm:"primaryKey"`
	WorkspaceID              snowflake.ID `gorm:"not null;uniqueIndex:ux_workspace_members_ws_user,priority:1"`
	UserID                   snowflake.ID `gorm:"not null;uniqueIndex:ux_workspace_members_ws_user,priority:2"`
	DefaultBillableRateCents int64        `gorm:"not null;default:0"`
	DefaultInternalCostCents int64        `gorm:"not null;default:0"`
	DefaultWeekCapacityHours *int32
	CreatedAt                time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt                time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (WorkspaceMember) TableName() string { return "workspace_members" }

// ProjectMember overrides a user's rates for one project. Values are
// point-in-time copies: later workspace default changes never flow back in,
// even when FromDefault is true. The flag records provenance only.
type ProjectMember struct {
	ID                snowflake.ID `gorm:"primaryKey"`
	ProjectID         snowflake.ID `gorm:"not null;uniqueIndex:ux_project_members_project_user,priority:1"`
	UserID            snowflake.ID `gorm:"not null;uniqueIndex:ux_project_members_project_user,priority:2"`
	WorkspaceID       snowflake.ID `gorm:"not null;index"`
	BillableRateCents int64        `gorm:"not null;default:0"`
	InternalCostCents int64        `gorm:"not null;default:0"`
	WeekCapacityHours *int32
	FromDefault       bool      `gorm:"not null;default:false"`
	CreatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ProjectMember) TableName() string { return "project_members" }

// RateCard is the resolved billing profile for a (user, workspace, project)
// triple.
type RateCard struct {
	BillableRateCents int64  `json:"billable_rate_cents"`
	InternalCostCents int64  `json:"internal_cost_cents"`
	WeekCapacityHours *int32 `json:"week_capacity_hours"`
}
