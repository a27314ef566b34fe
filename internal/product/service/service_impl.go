package service

import (
	"context"
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kaupunki/parking-permits/internal/config"
	productdomain "github.com/kaupunki/parking-permits/internal/product/domain"
	"github.com/kaupunki/parking-permits/pkg/dateutil"
	"github.com/kaupunki/parking-permits/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   productdomain.Repository
	genID  *snowflake.Node
	policy *config.PolicyHolder
}

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   productdomain.Repository
	GenID  *snowflake.Node
	Policy *config.PolicyHolder
}

func NewService(p ServiceParam) productdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("product.service"),
		repo:   p.Repo,
		genID:  p.GenID,
		policy: p.Policy,
	}
}

func (s *Service) Create(ctx context.Context, req productdomain.CreateProductRequest) (productdomain.Product, error) {
	product := productdomain.Product{
		ID:                  s.genID.Generate(),
		ZoneID:              req.ZoneID,
		Type:                req.Type,
		UnitPrice:           req.UnitPrice,
		Unit:                req.Unit,
		VAT:                 req.VAT,
		LowEmissionDiscount: req.LowEmissionDiscount,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		CreatedBy:           req.CreatedBy,
		ModifiedBy:          req.CreatedBy,
	}
	if product.Unit == "" {
		product.Unit = productdomain.UnitMonthly
	}
	if err := s.repo.Insert(ctx, s.db, &product); err != nil {
		return productdomain.Product{}, err
	}
	return product, nil
}

func (s *Service) Update(ctx context.Context, req productdomain.UpdateProductRequest) (productdomain.Product, error) {
	product, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return productdomain.Product{}, err
	}
	if product == nil {
		return productdomain.Product{}, productdomain.ErrProductNotFound
	}

	product.ZoneID = req.ZoneID
	product.Type = req.Type
	product.UnitPrice = req.UnitPrice
	if req.Unit != "" {
		product.Unit = req.Unit
	}
	product.VAT = req.VAT
	product.LowEmissionDiscount = req.LowEmissionDiscount
	product.StartDate = req.StartDate
	product.EndDate = req.EndDate
	product.ModifiedBy = req.ModifiedBy

	if err := s.repo.Update(ctx, s.db, product); err != nil {
		return productdomain.Product{}, err
	}
	return *product, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	product, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if product == nil {
		return productdomain.ErrProductNotFound
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (productdomain.Product, error) {
	product, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return productdomain.Product{}, err
	}
	if product == nil {
		return productdomain.Product{}, productdomain.ErrProductNotFound
	}
	return *product, nil
}

func (s *Service) List(ctx context.Context, req productdomain.ListProductsRequest) ([]productdomain.Product, pagination.PageInfo, error) {
	return s.repo.List(ctx, s.db, req.Pagination, req.Search, req.OrderBy)
}

func (s *Service) ProductForDate(ctx context.Context, zoneID snowflake.ID, productType productdomain.ProductType, date time.Time) (productdomain.Product, error) {
	product, err := s.repo.FindForDate(ctx, s.db, zoneID, productType, date)
	if err != nil {
		return productdomain.Product{}, err
	}
	if product == nil {
		return productdomain.Product{}, productdomain.ErrProductNotFound
	}
	return *product, nil
}

func (s *Service) PermitPrices(ctx context.Context, terms productdomain.PriceTerms) ([]productdomain.PermitPrice, error) {
	if terms.MonthCount <= 0 {
		return nil, nil
	}

	policy := s.policy.Get()

	var prices []productdomain.PermitPrice
	for i := 0; i < terms.MonthCount; i++ {
		monthStart := dateutil.AddMonths(terms.StartDate, i)

		product, err := s.repo.FindForDate(ctx, s.db, terms.ZoneID, terms.Type, monthStart)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, productdomain.ErrProductNotFound
		}

		unitPrice := monthlyPrice(*product, terms, policy)

		// Extend the current run when the price line is unchanged,
		// otherwise open a new one.
		if n := len(prices); n > 0 && prices[n-1].ProductID == product.ID && prices[n-1].UnitPrice == unitPrice {
			prices[n-1].Quantity++
			prices[n-1].EndDate = monthEnd(monthStart)
			continue
		}
		prices = append(prices, productdomain.PermitPrice{
			ProductID: product.ID,
			UnitPrice: unitPrice,
			VAT:       product.VAT,
			Quantity:  1,
			StartDate: monthStart,
			EndDate:   monthEnd(monthStart),
		})
	}
	return prices, nil
}

func (s *Service) TotalPrice(ctx context.Context, terms productdomain.PriceTerms) (int64, error) {
	prices, err := s.PermitPrices(ctx, terms)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, price := range prices {
		total += price.Total()
	}
	return total, nil
}

// monthlyPrice applies the low-emission discount first, then the
// secondary-vehicle multiplier, rounding to whole cents at each step.
func monthlyPrice(product productdomain.Product, terms productdomain.PriceTerms, policy config.PermitPolicy) int64 {
	price := product.UnitPrice
	if terms.LowEmission {
		price = int64(math.Round(float64(price) * (1 - product.LowEmissionDiscount)))
	}
	if terms.IsSecondary {
		price = int64(math.Round(float64(price) * policy.SecondaryVehicleMultiplier))
	}
	return price
}

func monthEnd(monthStart time.Time) time.Time {
	return dateutil.EndOfDay(dateutil.AddMonths(monthStart, 1).AddDate(0, 0, -1))
}
