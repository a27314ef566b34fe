package permit

import (
	"github.com/kaupunki/parking-permits/internal/permit/repository"
	"github.com/kaupunki/parking-permits/internal/permit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("permit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
