package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, workspaceID, id snowflake.ID) (*Project, error)
	ListByWorkspace(ctx context.Context, db *gorm.DB, workspaceID snowflake.ID) ([]Project, error)
	FindClient(ctx context.Context, db *gorm.DB, workspaceID, id snowflake.ID) (*Client, error)
	ListClients(ctx context.Context, db *gorm.DB, workspaceID snowflake.ID) ([]Client, error)
}

var ErrNotFound = errors.New("project_not_found")
