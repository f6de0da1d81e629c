package member

import (
	"github.com/statusunknown418/thearq/internal/member/repository"
	"github.com/statusunknown418/thearq/internal/member/service"
	"go.uber.org/fx"
)

var Module = fx.Module("member.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
