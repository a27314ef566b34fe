package customer

import (
	"github.com/kaupunki/parking-permits/internal/customer/repository"
	"github.com/kaupunki/parking-permits/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(repository.ProvideAddress),
	fx.Provide(service.NewService),
)
