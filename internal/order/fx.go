package order

import (
	"github.com/kaupunki/parking-permits/internal/order/repository"
	"github.com/kaupunki/parking-permits/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(repository.ProvideRefund),
	fx.Provide(service.NewService),
)
