package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	changelogdomain "github.com/kaupunki/parking-permits/internal/changelog/domain"
	changelogrepo "github.com/kaupunki/parking-permits/internal/changelog/repository"
	changelogservice "github.com/kaupunki/parking-permits/internal/changelog/service"
	"github.com/kaupunki/parking-permits/internal/clock"
	"github.com/kaupunki/parking-permits/internal/config"
	customerdomain "github.com/kaupunki/parking-permits/internal/customer/domain"
	customerrepo "github.com/kaupunki/parking-permits/internal/customer/repository"
	customerservice "github.com/kaupunki/parking-permits/internal/customer/service"
	emissiondomain "github.com/kaupunki/parking-permits/internal/emission/domain"
	emissionrepo "github.com/kaupunki/parking-permits/internal/emission/repository"
	emissionservice "github.com/kaupunki/parking-permits/internal/emission/service"
	orderdomain "github.com/kaupunki/parking-permits/internal/order/domain"
	orderrepo "github.com/kaupunki/parking-permits/internal/order/repository"
	orderservice "github.com/kaupunki/parking-permits/internal/order/service"
	permitdomain "github.com/kaupunki/parking-permits/internal/permit/domain"
	permitrepo "github.com/kaupunki/parking-permits/internal/permit/repository"
	productdomain "github.com/kaupunki/parking-permits/internal/product/domain"
	productrepo "github.com/kaupunki/parking-permits/internal/product/repository"
	productservice "github.com/kaupunki/parking-permits/internal/product/service"
	vehicledomain "github.com/kaupunki/parking-permits/internal/vehicle/domain"
	vehiclerepo "github.com/kaupunki/parking-permits/internal/vehicle/repository"
	vehicleservice "github.com/kaupunki/parking-permits/internal/vehicle/service"
	zonedomain "github.com/kaupunki/parking-permits/internal/zone/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   *Service
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&zonedomain.ParkingZone{},
		&productdomain.Product{},
		&emissiondomain.LowEmissionCriteria{},
		&vehicledomain.Vehicle{},
		&customerdomain.Address{},
		&customerdomain.Customer{},
		&permitdomain.ParkingPermit{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&orderdomain.Refund{},
		&changelogdomain.Changelog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(now)
	log := zap.NewNop()
	policy := config.NewStaticPolicyHolder(config.DefaultPermitPolicy())

	customers := customerservice.NewService(customerservice.ServiceParam{
		DB: db, Log: log, Repo: customerrepo.Provide(), Addresses: customerrepo.ProvideAddress(), GenID: node,
	})
	vehicles := vehicleservice.NewService(vehicleservice.ServiceParam{
		DB: db, Log: log, Repo: vehiclerepo.Provide(), GenID: node,
	})
	emissions := emissionservice.NewService(emissionservice.ServiceParam{
		DB: db, Log: log, Repo: emissionrepo.Provide(), GenID: node,
	})
	products := productservice.NewService(productservice.ServiceParam{
		DB: db, Log: log, Repo: productrepo.Provide(), GenID: node, Policy: policy,
	})
	orders := orderservice.NewService(orderservice.ServiceParam{
		DB: db, Log: log, Repo: orderrepo.Provide(), Refunds: orderrepo.ProvideRefund(), GenID: node,
	})
	changelogs := changelogservice.NewService(changelogservice.ServiceParam{
		DB: db, Log: log, Repo: changelogrepo.Provide(), GenID: node, Clock: fakeClock,
	})

	svc := NewService(ServiceParam{
		DB:        db,
		Log:       log,
		Repo:      permitrepo.Provide(),
		Customers: customers,
		Vehicles:  vehicles,
		Emissions: emissions,
		Products:  products,
		Orders:    orders,
		Changelog: changelogs,
		GenID:     node,
		Clock:     fakeClock,
		Policy:    policy,
	})

	return &fixture{db: db, node: node, clock: fakeClock, svc: svc.(*Service)}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) seedZone(t *testing.T, name string) zonedomain.ParkingZone {
	t.Helper()
	zone := zonedomain.ParkingZone{ID: f.node.Generate(), Name: name}
	require.NoError(t, f.db.Create(&zone).Error)
	return zone
}

func (f *fixture) seedProduct(t *testing.T, zoneID snowflake.ID, unitPrice int64, discount float64, start, end time.Time) productdomain.Product {
	t.Helper()
	product := productdomain.Product{
		ID:                  f.node.Generate(),
		ZoneID:              zoneID,
		Type:                productdomain.ProductTypeResident,
		UnitPrice:           unitPrice,
		Unit:                productdomain.UnitMonthly,
		VAT:                 0.24,
		LowEmissionDiscount: discount,
		StartDate:           start,
		EndDate:             end,
	}
	require.NoError(t, f.db.Create(&product).Error)
	return product
}

func customerReq(nationalID string) customerdomain.UpsertCustomerRequest {
	return customerdomain.UpsertCustomerRequest{
		NationalIDNumber: nationalID,
		FirstName:        "Matti",
		LastName:         "Meikalainen",
		Email:            "matti@example.com",
	}
}

func vehicleReq(registration string) vehicledomain.UpsertVehicleRequest {
	return vehicledomain.UpsertVehicleRequest{
		RegistrationNumber: registration,
		Manufacturer:       "Toyota",
		Model:              "Yaris",
		PowerType:          vehicledomain.PowerTypeBensin,
		EuroClass:          6,
		Emission:           85,
		EmissionType:       vehicledomain.EmissionTypeNEDC,
	}
}

func (f *fixture) createPermit(t *testing.T, zoneID snowflake.ID, nationalID, registration string, contract permitdomain.ContractType, start time.Time, months int) permitdomain.ParkingPermit {
	t.Helper()
	permit, err := f.svc.Create(context.Background(), permitdomain.CreatePermitRequest{
		Customer:     customerReq(nationalID),
		Vehicle:      vehicleReq(registration),
		ZoneID:       zoneID,
		ContractType: contract,
		Status:       permitdomain.StatusValid,
		StartTime:    start,
		MonthCount:   months,
		Actor:        "admin@example.com",
	})
	require.NoError(t, err)
	return permit
}

func TestMonthsUsedAndLeft_FixedPeriod(t *testing.T) {
	permit := permitdomain.ParkingPermit{
		ContractType: permitdomain.ContractFixedPeriod,
		StartTime:    date(2021, 11, 15),
		MonthCount:   6,
	}

	cases := []struct {
		now  time.Time
		used int
		left int
	}{
		{date(2021, 11, 1), 0, 6},
		{date(2021, 11, 15), 1, 5},
		{date(2021, 11, 20), 1, 5},
		{date(2021, 12, 15), 2, 4},
		{date(2022, 2, 14), 3, 3},
		{date(2022, 5, 15), 6, 0},
		{date(2023, 1, 1), 6, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.used, permit.MonthsUsed(tc.now), "months used at %s", tc.now)
		left := permit.MonthsLeft(tc.now)
		require.NotNil(t, left, "months left at %s", tc.now)
		assert.Equal(t, tc.left, *left, "months left at %s", tc.now)
	}
}

func TestMonthsUsed_OpenEndedHasNoClamp(t *testing.T) {
	permit := permitdomain.ParkingPermit{
		ContractType: permitdomain.ContractOpenEnded,
		StartTime:    date(2021, 1, 1),
		MonthCount:   1,
	}

	assert.Equal(t, 25, permit.MonthsUsed(date(2023, 1, 1)))
	assert.Nil(t, permit.MonthsLeft(date(2023, 1, 1)))
}

func TestEndPermit_AfterCurrentPeriod(t *testing.T) {
	f := newFixture(t, date(2021, 11, 20))
	zone := f.seedZone(t, "A")
	f.seedProduct(t, zone.ID, 3000, 0, date(2021, 1, 1), date(2022, 12, 31))

	permit := f.createPermit(t, zone.ID, "290200A905H", "ABC-123", permitdomain.ContractFixedPeriod, date(2021, 11, 15), 6)

	ended, err := f.svc.End(context.Background(), permitdomain.EndPermitRequest{
		PermitID: permit.ID,
		EndType:  permitdomain.EndAfterCurrentPeriod,
		IBAN:     "FI2112345600000785",
		Actor:    "admin@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, ended.EndTime)
	assert.Equal(t, time.Date(2021, 12, 14, 23, 59, 0, 0, time.UTC), ended.EndTime.UTC())
	assert.Equal(t, permitdomain.StatusClosed, ended.Status)
}

func TestEndPermit_Immediately(t *testing.T) {
	now := time.Date(2021, 11, 20, 10, 30, 0, 0, time.UTC)
	f := newFixture(t, now)
	zone := f.seedZone(t, "A")
	f.seedProduct(t, zone.ID, 3000, 0, date(2021, 1, 1), date(2022, 12, 31))

	permit := f.createPermit(t, zone.ID, "290200A905H", "ABC-123", permitdomain.ContractFixedPeriod, date(2021, 11, 15), 6)

	ended, err := f.svc.End(context.Background(), permitdomain.EndPermitRequest{
		PermitID: permit.ID,
		EndType:  permitdomain.EndImmediately,
		IBAN:     "FI2112345600000785",
	})
	require.NoError(t, err)
	require.NotNil(t, ended.EndTime)
	assert.True(t, ended.EndTime.Equal(now))
}

func TestEndPermit_PrimaryBlockedByValidSecondary(t *testing.T) {
	f := newFixture(t, date(2021, 11, 20))
	zone := f.seedZone(t, "A")
	f.seedProduct(t, zone.ID, 3000, 0, date(2021, 1, 1), date(2022, 12, 31))

	primary := f.createPermit(t, zone.ID, "290200A905H", "ABC-123", permitdomain.ContractFixedPeriod, date(2021, 11, 15), 6)
	secondary := f.createPermit(t, zone.ID, "290200A905H", "XYZ-789", permitdomain.ContractFixedPeriod, date(2021, 11, 15), 6)
	assert.True(t, primary.PrimaryVehicle)
	assert.False(t, secondary.PrimaryVehicle)

	_, err := f.svc.End(context.Background(), permitdomain.EndPermitRequest{
		PermitID: primary.ID,
		EndType:  permitdomain.EndImmediately,
		IBAN:     "FI2112345600000785",
	})
	assert.ErrorIs(t, err, permitdomain.ErrPermitCanNotBeEnded)

	_, err = f.svc.End(context.Background(), permitdomain.EndPermitRequest{
		PermitID: secondary.ID,
		EndType:  permitdomain.EndImmediately,
		IBAN:     "FI2112345600000785",
	})
	require.NoError(t, err)

	_, err = f.svc.End(context.Background(), permitdomain.EndPermitRequest{
		PermitID: primary.ID,
		EndType:  permitdomain.EndImmediately,
		IBAN:     "FI2112345600000785",
	})
	require.NoError(t, err)
}

func TestEndPermit_RefundForUnusedMonths(t *testing.T) {
	f := newFixture(t, date(2021, 11, 20))
	zone := f.seedZone(t, "A")
	f.seedProduct(t, zone.ID, 3000, 0, date(2021, 1, 1), date(2022, 12, 31))

	permit := f.createPermit(t, zone.ID, "290200A905H", "ABC-123", permitdomain.ContractFixedPeriod, date(2021, 11, 15), 6)

	ended, err := f.svc.End(context.Background(), permitdomain.EndPermitRequest{
		PermitID: permit.ID,
		EndType:  permitdomain.EndAfterCurrentPeriod,
		IBAN:     "FI2112345600000785",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 12, 14, 23, 59, 0, 0, time.UTC), ended.EndTime.UTC())

	var refund orderdomain.Refund
	require.NoError(t, f.db.First(&refund).Error)
	assert.Equal(t, int64(15000), refund.Amount)
	assert.Equal(t, "FI2112345600000785", refund.IBAN)
	assert.Equal(t, orderdomain.RefundStatusOpen, refund.Status)
}

func TestEndPermit_RefundableRequiresIBAN(t *testing.T) {
	f := newFixture(t, date(2021, 11, 20))
	zone := f.seedZone(t, "A")
	f.seedProduct(t, zone.ID, 3000, 0, date(2021, 1, 1), date(2022, 12, 31))

	permit := f.createPermit(t, zone.ID, "290200A905H", "ABC-123", permitdomain.ContractFixedPeriod, date(2021, 11, 15), 6)

	_, err := f.svc.End(context.Background(), permitdomain.EndPermitRequest{
		PermitID: permit.ID,
		EndType:  permitdomain.EndAfterCurrentPeriod,
	})
	assert.ErrorIs(t, err, permitdomain.ErrRefundError)

	var refunds []orderdomain.Refund
	require.NoError(t, f.db.Find(&refunds).Error)
	assert.Empty(t, refunds)

	unchanged, err := f.svc.Get(context.Background(), permit.ID)
	require.NoError(t, err)
	assert.Equal(t, permitdomain.StatusValid, unchanged.Status)
}

func TestEndPermit_RefundRejectedForOpenEnded(t *testing.T) {
	f := newFixture(t, date(2021, 11, 20))
	zone := f.seedZone(t, "A")
	f.seedProduct(t, zone.ID, 3000, 0, date(2021, 1, 1), date(2022, 12, 31))

	permit := f.createPermit(t, zone.ID, "290200A905H", "ABC-123", permitdomain.ContractOpenEnded, date(2021, 11, 15), 0)

	_, err := f.svc.End(context.Background(), permitdomain.EndPermitRequest{
		PermitID: permit.ID,
		EndType:  permitdomain.EndImmediately,
		IBAN:     "FI2112345600000785",
	})
	assert.ErrorIs(t, err, permitdomain.ErrRefundCanNotBeCreated)
}

func TestCreatePermit_LimitExceeded(t *testing.T) {
	f := newFixture(t, date(2021, 11, 20))
	zone := f.seedZone(t, "A")
	f.seedProduct(t, zone.ID, 3000, 0, date(2021, 1, 1), date(2022, 12, 31))

	f.createPermit(t, zone.ID, "290200A905H", "ABC-123", permitdomain.ContractFixedPeriod, date(2021, 11, 15), 6)
	f.createPermit(t, zone.ID, "290200A905H", "XYZ-789", permitdomain.ContractFixedPeriod, date(2021, 11, 15), 6)

	_, err := f.svc.Create(context.Background(), permitdomain.CreatePermitRequest{
		Customer:     customerReq("290200A905H"),
		Vehicle:      vehicleReq("QQQ-111"),
		ZoneID:       zone.ID,
		ContractType: permitdomain.ContractFixedPeriod,
		Status:       permitdomain.StatusValid,
		StartTime:    date(2021, 11, 15),
		MonthCount:   6,
	})
	assert.ErrorIs(t, err, permitdomain.ErrPermitLimitExceeded)
}

func TestCreatePermit_CreatesConfirmedOrder(t *testing.T) {
	f := newFixture(t, date(2021, 11, 20))
	zone := f.seedZone(t, "A")
	f.seedProduct(t, zone.ID, 3000, 0, date(2021, 1, 1), date(2022, 12, 31))

	permit := f.createPermit(t, zone.ID, "290200A905H", "ABC-123", permitdomain.ContractFixedPeriod, date(2021, 11, 15), 6)

	var order orderdomain.Order
	require.NoError(t, f.db.Preload("Items").First(&order).Error)
	assert.Equal(t, orderdomain.OrderStatusConfirmed, order.Status)
	assert.Equal(t, orderdomain.OrderTypeCreated, order.Type)
	require.Len(t, order.Items, 1)
	assert.Equal(t, permit.ID, order.Items[0].PermitID)
	assert.Equal(t, int64(18000), order.TotalPrice())

	require.NotNil(t, permit.EndTime)
	assert.Equal(t, time.Date(2022, 5, 14, 23, 59, 0, 0, time.UTC), permit.EndTime.UTC())
}
