package emission

import (
	"github.com/kaupunki/parking-permits/internal/emission/repository"
	"github.com/kaupunki/parking-permits/internal/emission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("emission.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
