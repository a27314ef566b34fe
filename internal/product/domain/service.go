package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kaupunki/parking-permits/pkg/db/pagination"
	"github.com/kaupunki/parking-permits/pkg/db/queryspec"
)

var (
	ErrProductNotFound = errors.New("product_not_found")
)

type CreateProductRequest struct {
	ZoneID              snowflake.ID
	Type                ProductType
	UnitPrice           int64
	Unit                ProductUnit
	VAT                 float64
	LowEmissionDiscount float64
	StartDate           time.Time
	EndDate             time.Time
	CreatedBy           string
}

type UpdateProductRequest struct {
	ID                  snowflake.ID
	ZoneID              snowflake.ID
	Type                ProductType
	UnitPrice           int64
	Unit                ProductUnit
	VAT                 float64
	LowEmissionDiscount float64
	StartDate           time.Time
	EndDate             time.Time
	ModifiedBy          string
}

type ListProductsRequest struct {
	Pagination pagination.Pagination
	Search     []queryspec.SearchItem
	OrderBy    *queryspec.OrderBy
}

// PriceTerms selects products and modifiers for one permit term.
type PriceTerms struct {
	ZoneID       snowflake.ID
	Type         ProductType
	StartDate    time.Time
	MonthCount   int
	LowEmission  bool
	IsSecondary  bool
}

type Service interface {
	Create(ctx context.Context, req CreateProductRequest) (Product, error)
	Update(ctx context.Context, req UpdateProductRequest) (Product, error)
	Delete(ctx context.Context, id snowflake.ID) error
	Get(ctx context.Context, id snowflake.ID) (Product, error)
	List(ctx context.Context, req ListProductsRequest) ([]Product, pagination.PageInfo, error)

	// ProductForDate returns the product covering the date in the zone,
	// or ErrProductNotFound when no product window contains it.
	ProductForDate(ctx context.Context, zoneID snowflake.ID, productType ProductType, date time.Time) (Product, error)

	// PermitPrices resolves the month-by-month price of a permit term and
	// groups consecutive equally-priced months into runs.
	PermitPrices(ctx context.Context, terms PriceTerms) ([]PermitPrice, error)

	// TotalPrice sums the runs returned by PermitPrices.
	TotalPrice(ctx context.Context, terms PriceTerms) (int64, error)
}
