package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	memberdomain "github.com/statusunknown418/thearq/internal/member/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() memberdomain.Repository {
	return &repo{}
}

func (r *repo) FindWorkspaceMember(ctx context.Context, db *gorm.DB, workspaceID, userID snowflake.ID) (*memberdomain.WorkspaceMember, error) {
	var member memberdomain.WorkspaceMember
	err := db.WithContext(ctx).Raw(
		`SELECT id, workspace_id, user_id, default_billable_rate_cents, default_internal_cost_cents,
		        default_week_capacity_hours, created_at, updated_at
		 FROM workspace_members WHERE workspace_id = ? AND user_id = ?`,
		workspaceID,
		userID,
	).Scan(&member).Error
	if err != nil {
		return nil, err
	}
	if member.ID == 0 {
		return nil, nil
	}
	return &member, nil
}

func (r *repo) FindProjectMember(ctx context.Context, db *gorm.DB, projectID, userID snowflake.ID) (*memberdomain.ProjectMember, error) {
	var member memberdomain.ProjectMember
	err := db.WithContext(ctx).Raw(
		`SELECT id, project_id, user_id, workspace_id, billable_rate_cents, internal_cost_cents,
		        week_capacity_hours, from_default, created_at, updated_at
		 FROM project_members WHERE project_id = ? AND user_id = ?`,
		projectID,
		userID,
	).Scan(&member).Error
	if err != nil {
		return nil, err
	}
	if member.ID == 0 {
		return nil, nil
	}
	return &member, nil
}

func (r *repo) ListProjectMembers(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]memberdomain.ProjectMember, error) {
	var members []memberdomain.ProjectMember
	err := db.WithContext(ctx).Raw(
		`SELECT id, project_id, user_id, workspace_id, billable_rate_cents, internal_cost_cents,
		        week_capacity_hours, from_default, created_at, updated_at
		 FROM project_members WHERE project_id = ? ORDER BY created_at ASC`,
		projectID,
	).Scan(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repo) InsertWorkspaceMember(ctx context.Context, db *gorm.DB, m *memberdomain.WorkspaceMember) error {
	return db.WithContext(ctx).Create(m).Error
}

func (r *repo) InsertProjectMember(ctx context.Context, db *gorm.DB, m *memberdomain.ProjectMember) error {
	return db.WithContext(ctx).Create(m).Error
}
