package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	memberdomain "github.com/statusunknown418/thearq/internal/member/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo memberdomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo memberdomain.Repository
}

func NewService(p ServiceParam) memberdomain.Resolver {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("member.resolver"),
		repo: p.Repo,
	}
}

// Resolve returns the effective rate card for the triple. Precedence is a
// two-level cascade: project membership when present (its values are
// authoritative even when originally copied from defaults), workspace
// membership otherwise. A missing workspace membership is an error, never a
// zero rate.
func (s *Service) Resolve(ctx context.Context, userID, workspaceID snowflake.ID, projectID *snowflake.ID) (memberdomain.RateCard, error) {
	if userID == 0 {
		return memberdomain.RateCard{}, memberdomain.ErrInvalidUser
	}
	if workspaceID == 0 {
		return memberdomain.RateCard{}, memberdomain.ErrInvalidWorkspace
	}

	if projectID != nil && *projectID != 0 {
		override, err := s.repo.FindProjectMember(ctx, s.db, *projectID, userID)
		if err != nil {
			return memberdomain.RateCard{}, err
		}
		if override != nil {
			return memberdomain.RateCard{
				BillableRateCents: override.BillableRateCents,
				InternalCostCents: override.InternalCostCents,
				WeekCapacityHours: override.WeekCapacityHours,
			}, nil
		}
	}

	member, err := s.repo.FindWorkspaceMember(ctx, s.db, workspaceID, userID)
	if err != nil {
		return memberdomain.RateCard{}, err
	}
	if member == nil {
		s.log.Warn("rate resolution hit a user without workspace membership",
			zap.String("user_id", userID.String()),
			zap.String("workspace_id", workspaceID.String()),
		)
		return memberdomain.RateCard{}, memberdomain.ErrWorkspaceMemberNotFound
	}

	return memberdomain.RateCard{
		BillableRateCents: member.DefaultBillableRateCents,
		InternalCostCents: member.DefaultInternalCostCents,
		WeekCapacityHours: member.DefaultWeekCapacityHours,
	}, nil
}
