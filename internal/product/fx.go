package product

import (
	"github.com/kaupunki/parking-permits/internal/product/repository"
	"github.com/kaupunki/parking-permits/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
