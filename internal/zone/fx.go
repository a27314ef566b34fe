package zone

import (
	"github.com/kaupunki/parking-permits/internal/zone/repository"
	"github.com/kaupunki/parking-permits/internal/zone/service"
	"go.uber.org/fx"
)

var Module = fx.Module("zone.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
