package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindWorkspaceMember(ctx context.Context, db *gorm.DB, workspaceID, userID snowflake.ID) (*WorkspaceMember, error)
	FindProjectMember(ctx context.Context, db *gorm.DB, projectID, userID snowflake.ID) (*ProjectMember, error)
	ListProjectMembers(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]ProjectMember, error)
	InsertWorkspaceMember(ctx context.Context, db *gorm.DB, m *WorkspaceMember) error
	InsertProjectMember(ctx context.Context, db *gorm.DB, m *ProjectMember) error
}
