package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/kaupunki/parking-permits/internal/config"
	productdomain "github.com/kaupunki/parking-permits/internal/product/domain"
	"github.com/kaupunki/parking-permits/internal/product/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&productdomain.Product{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:     db,
		Log:    zap.NewNop(),
		Repo:   repository.Provide(),
		GenID:  node,
		Policy: config.NewStaticPolicyHolder(config.DefaultPermitPolicy()),
	})
	return svc.(*Service), db, node
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedProduct(t *testing.T, db *gorm.DB, node *snowflake.Node, zoneID snowflake.ID, unitPrice int64, discount float64, start, end time.Time) productdomain.Product {
	t.Helper()
	product := productdomain.Product{
		ID:                  node.Generate(),
		ZoneID:              zoneID,
		Type:                productdomain.ProductTypeResident,
		UnitPrice:           unitPrice,
		Unit:                productdomain.UnitMonthly,
		VAT:                 0.24,
		LowEmissionDiscount: discount,
		StartDate:           start,
		EndDate:             end,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func TestPermitPrices_SingleProduct(t *testing.T) {
	svc, db, node := newTestService(t)
	zoneID := node.Generate()
	product := seedProduct(t, db, node, zoneID, 3000, 0.5, date(2021, 1, 1), date(2021, 12, 31))

	prices, err := svc.PermitPrices(context.Background(), productdomain.PriceTerms{
		ZoneID:     zoneID,
		Type:       productdomain.ProductTypeResident,
		StartDate:  date(2021, 2, 15),
		MonthCount: 6,
	})
	require.NoError(t, err)
	require.Len(t, prices, 1)

	assert.Equal(t, product.ID, prices[0].ProductID)
	assert.Equal(t, int64(3000), prices[0].UnitPrice)
	assert.Equal(t, 6, prices[0].Quantity)
	assert.Equal(t, int64(18000), prices[0].Total())
	assert.Equal(t, date(2021, 2, 15), prices[0].StartDate)
	assert.Equal(t, time.Date(2021, 8, 14, 23, 59, 0, 0, time.UTC), prices[0].EndDate)
}

func TestPermitPrices_LowEmissionDiscount(t *testing.T) {
	svc, db, node := newTestService(t)
	zoneID := node.Generate()
	seedProduct(t, db, node, zoneID, 3000, 0.5, date(2021, 1, 1), date(2021, 12, 31))

	total, err := svc.TotalPrice(context.Background(), productdomain.PriceTerms{
		ZoneID:      zoneID,
		Type:        productdomain.ProductTypeResident,
		StartDate:   date(2021, 3, 1),
		MonthCount:  4,
		LowEmission: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6000), total)
}

func TestPermitPrices_SecondaryVehicleMultiplier(t *testing.T) {
	svc, db, node := newTestService(t)
	zoneID := node.Generate()
	seedProduct(t, db, node, zoneID, 3000, 0.25, date(2021, 1, 1), date(2021, 12, 31))

	prices, err := svc.PermitPrices(context.Background(), productdomain.PriceTerms{
		ZoneID:      zoneID,
		Type:        productdomain.ProductTypeResident,
		StartDate:   date(2021, 3, 1),
		MonthCount:  2,
		IsSecondary: true,
	})
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, int64(4500), prices[0].UnitPrice)

	// Discount applies before the multiplier: 3000 * 0.75 * 1.5.
	prices, err = svc.PermitPrices(context.Background(), productdomain.PriceTerms{
		ZoneID:      zoneID,
		Type:        productdomain.ProductTypeResident,
		StartDate:   date(2021, 3, 1),
		MonthCount:  2,
		LowEmission: true,
		IsSecondary: true,
	})
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, int64(3375), prices[0].UnitPrice)
}

func TestPermitPrices_PriceChangeSplitsRuns(t *testing.T) {
	svc, db, node := newTestService(t)
	zoneID := node.Generate()
	first := seedProduct(t, db, node, zoneID, 3000, 0, date(2021, 1, 1), date(2021, 6, 30))
	second := seedProduct(t, db, node, zoneID, 4000, 0, date(2021, 7, 1), date(2021, 12, 31))

	prices, err := svc.PermitPrices(context.Background(), productdomain.PriceTerms{
		ZoneID:     zoneID,
		Type:       productdomain.ProductTypeResident,
		StartDate:  date(2021, 5, 1),
		MonthCount: 4,
	})
	require.NoError(t, err)
	require.Len(t, prices, 2)

	assert.Equal(t, first.ID, prices[0].ProductID)
	assert.Equal(t, 2, prices[0].Quantity)
	assert.Equal(t, int64(6000), prices[0].Total())

	assert.Equal(t, second.ID, prices[1].ProductID)
	assert.Equal(t, 2, prices[1].Quantity)
	assert.Equal(t, int64(8000), prices[1].Total())
	assert.Equal(t, date(2021, 7, 1), prices[1].StartDate)
}

func TestPermitPrices_NoProductCoversMonth(t *testing.T) {
	svc, db, node := newTestService(t)
	zoneID := node.Generate()
	seedProduct(t, db, node, zoneID, 3000, 0, date(2021, 1, 1), date(2021, 6, 30))

	_, err := svc.PermitPrices(context.Background(), productdomain.PriceTerms{
		ZoneID:     zoneID,
		Type:       productdomain.ProductTypeResident,
		StartDate:  date(2021, 5, 1),
		MonthCount: 6,
	})
	assert.ErrorIs(t, err, productdomain.ErrProductNotFound)
}

func TestProductForDate(t *testing.T) {
	svc, db, node := newTestService(t)
	zoneID := node.Generate()
	product := seedProduct(t, db, node, zoneID, 3000, 0, date(2021, 1, 1), date(2021, 12, 31))

	found, err := svc.ProductForDate(context.Background(), zoneID, productdomain.ProductTypeResident, date(2021, 6, 15))
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)

	_, err = svc.ProductForDate(context.Background(), zoneID, productdomain.ProductTypeResident, date(2022, 1, 1))
	assert.ErrorIs(t, err, productdomain.ErrProductNotFound)
}
