package project

import (
	"github.com/statusunknown418/thearq/internal/project/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("project.store",
	fx.Provide(repository.Provide),
)
