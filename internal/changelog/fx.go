package changelog

import (
	"github.com/kaupunki/parking-permits/internal/changelog/repository"
	"github.com/kaupunki/parking-permits/internal/changelog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("changelog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
