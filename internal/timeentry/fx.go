package timeentry

import (
	"github.com/statusunknown418/thearq/internal/timeentry/repository"
	"github.com/statusunknown418/thearq/internal/timeentry/service"
	"go.uber.org/fx"
)

var Module = fx.Module("timeentry.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
