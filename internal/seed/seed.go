// Package seed bootstraps the default workspace for local and self-hosted
// setups.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	workspacedomain "github.com/statusunknown418/thearq/internal/workspace/domain"
	"gorm.io/gorm"
)

const (
	defaultWorkspaceName = "Main"
	defaultWorkspaceSlug = "main"
)

// EnsureWorkspaceWithID creates the bootstrap workspace under a fixed ID
// when it does not exist yet.
func EnsureWorkspaceWithID(db *gorm.DB, id int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if id == 0 {
		return errors.New("seed workspace id is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing workspacedomain.Workspace
		err := tx.WithContext(ctx).Raw(
			`SELECT id, name, slug, created_at, updated_at FROM workspaces WHERE id = ?`,
			snowflake.ID(id),
		).Scan(&existing).Error
		if err != nil {
			return err
		}
		if existing.ID != 0 {
			return nil
		}

		return tx.WithContext(ctx).Create(&workspacedomain.Workspace{
			ID:   snowflake.ID(id),
			Name: defaultWorkspaceName,
			Slug: defaultWorkspaceSlug,
		}).Error
	})
}
