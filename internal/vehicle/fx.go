package vehicle

import (
	"github.com/kaupunki/parking-permits/internal/vehicle/repository"
	"github.com/kaupunki/parking-permits/internal/vehicle/service"
	"go.uber.org/fx"
)

var Module = fx.Module("vehicle.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
