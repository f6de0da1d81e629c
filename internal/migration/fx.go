package migration

import (
	"github.com/statusunknown418/thearq/internal/config"
	memberdomain "github.com/statusunknown418/thearq/internal/member/domain"
	projectdomain "github.com/statusunknown418/thearq/internal/project/domain"
	"github.com/statusunknown418/thearq/internal/seed"
	timeentrydomain "github.com/statusunknown418/thearq/internal/timeentry/domain"
	workspacedomain "github.com/statusunknown418/thearq/internal/workspace/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Non-postgres targets (sqlite dev setups) take the gorm schema.
			if err := conn.AutoMigrate(
				&workspacedomain.Workspace{},
				&projectdomain.Client{},
				&projectdomain.Project{},
				&memberdomain.WorkspaceMember{},
				&memberdomain.ProjectMember{},
				&timeentrydomain.TimeEntry{},
			); err != nil {
				return err
			}
		}

		if cfg.DefaultWorkspaceID != 0 {
			return seed.EnsureWorkspaceWithID(conn, cfg.DefaultWorkspaceID)
		}
		return nil
	}),
)
