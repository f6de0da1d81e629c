// Package domain holds the workspace tenant model. Workspace management is
// external; this record exists for bootstrap and referential integrity.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Workspace is a tenant boundary grouping users, projects, clients and
// entries.
type Workspace struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Slug      string       `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Workspace) TableName() string { return "workspaces" }
