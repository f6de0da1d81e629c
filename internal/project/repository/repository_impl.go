package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	projectdomain "github.com/statusunknown418/thearq/internal/project/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() projectdomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, workspaceID, id snowflake.ID) (*projectdomain.Project, error) {
	var project projectdomain.Project
	err := db.WithContext(ctx).Raw(
		`SELECT id, workspace_id, client_id, name, type, budget_hours, budget_resets_per_month,
		        starts_at, ends_at, created_at, updated_at
		 FROM projects WHERE workspace_id = ? AND id = ?`,
		workspaceID,
		id,
	).Scan(&project).Error
	if err != nil {
		return nil, err
	}
	if project.ID == 0 {
		return nil, nil
	}
	return &project, nil
}

func (r *repo) ListByWorkspace(ctx context.Context, db *gorm.DB, workspaceID snowflake.ID) ([]projectdomain.Project, error) {
	var projects []projectdomain.Project
	err := db.WithContext(ctx).Raw(
		`SELECT id, workspace_id, client_id, name, type, budget_hours, budget_resets_per_month,
		        starts_at, ends_at, created_at, updated_at
		 FROM projects WHERE workspace_id = ? ORDER BY created_at ASC`,
		workspaceID,
	).Scan(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *repo) FindClient(ctx context.Context, db *gorm.DB, workspaceID, id snowflake.ID) (*projectdomain.Client, error) {
	var client projectdomain.Client
	err := db.WithContext(ctx).Raw(
		`SELECT id, workspace_id, name, created_at, updated_at
		 FROM clients WHERE workspace_id = ? AND id = ?`,
		workspaceID,
		id,
	).Scan(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == 0 {
		return nil, nil
	}
	return &client, nil
}

func (r *repo) ListClients(ctx context.Context, db *gorm.DB, workspaceID snowflake.ID) ([]projectdomain.Client, error) {
	var clients []projectdomain.Client
	err := db.WithContext(ctx).Raw(
		`SELECT id, workspace_id, name, created_at, updated_at
		 FROM clients WHERE workspace_id = ? ORDER BY created_at ASC`,
		workspaceID,
	).Scan(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}
