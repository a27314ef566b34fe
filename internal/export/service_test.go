package export

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/kaupunki/parking-permits/internal/clock"
	customerdomain "github.com/kaupunki/parking-permits/internal/customer/domain"
	orderdomain "github.com/kaupunki/parking-permits/internal/order/domain"
	permitdomain "github.com/kaupunki/parking-permits/internal/permit/domain"
	productdomain "github.com/kaupunki/parking-permits/internal/product/domain"
	vehicledomain "github.com/kaupunki/parking-permits/internal/vehicle/domain"
	zonedomain "github.com/kaupunki/parking-permits/internal/zone/domain"
	"github.com/kaupunki/parking-permits/pkg/db/queryspec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&zonedomain.ParkingZone{},
		&productdomain.Product{},
		&vehicledomain.Vehicle{},
		&customerdomain.Address{},
		&customerdomain.Customer{},
		&permitdomain.ParkingPermit{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&orderdomain.Refund{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2021, 11, 20, 0, 0, 0, 0, time.UTC)),
	})
	return svc, db, node
}

func TestExportPermits(t *testing.T) {
	svc, db, node := newService(t)

	zone := zonedomain.ParkingZone{ID: node.Generate(), Name: "K"}
	require.NoError(t, db.Create(&zone).Error)
	customer := customerdomain.Customer{ID: node.Generate(), NationalIDNumber: "290200A905H", FirstName: "Matti", LastName: "Meikalainen"}
	require.NoError(t, db.Create(&customer).Error)
	vehicle := vehicledomain.Vehicle{ID: node.Generate(), RegistrationNumber: "ABC-123"}
	require.NoError(t, db.Create(&vehicle).Error)

	permit := permitdomain.ParkingPermit{
		ID:           node.Generate(),
		CustomerID:   customer.ID,
		VehicleID:    vehicle.ID,
		ZoneID:       zone.ID,
		ContractType: permitdomain.ContractFixedPeriod,
		Status:       permitdomain.StatusValid,
		StartTime:    time.Date(2021, 11, 15, 0, 0, 0, 0, time.UTC),
		MonthCount:   6,
	}
	require.NoError(t, db.Create(&permit).Error)
	closed := permit
	closed.ID = node.Generate()
	closed.Status = permitdomain.StatusClosed
	require.NoError(t, db.Create(&closed).Error)

	buf, filename, err := svc.Export(context.Background(), Request{
		Entity: EntityPermits,
		Search: []queryspec.SearchItem{{Field: "status", Operator: queryspec.OpEq, Value: "VALID"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "permits_20211120.xlsx", filename)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("permits")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "permit_id", rows[0][0])
	assert.Equal(t, permit.ID.String(), rows[1][0])
	assert.Equal(t, "VALID", rows[1][1])
	assert.Equal(t, "Matti Meikalainen", rows[1][3])
	assert.Equal(t, "ABC-123", rows[1][5])
	assert.Equal(t, "K", rows[1][6])
}

func TestExportRefundsAndUnknownEntity(t *testing.T) {
	svc, db, node := newService(t)

	order := orderdomain.Order{ID: node.Generate(), Type: orderdomain.OrderTypeCreated, Status: orderdomain.OrderStatusConfirmed}
	require.NoError(t, db.Create(&order).Error)
	refund := orderdomain.Refund{
		ID:      node.Generate(),
		OrderID: order.ID,
		Name:    "Matti Meikalainen",
		Amount:  15000,
		IBAN:    "FI2112345600000785",
		Status:  orderdomain.RefundStatusOpen,
	}
	require.NoError(t, db.Create(&refund).Error)

	buf, _, err := svc.Export(context.Background(), Request{Entity: EntityRefunds})
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("refunds")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "150.00", rows[1][4])
	assert.Equal(t, "FI2112345600000785", rows[1][3])

	_, _, err = svc.Export(context.Background(), Request{Entity: "invoices"})
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestExportRejectsUnknownSearchField(t *testing.T) {
	svc, _, _ := newService(t)

	_, _, err := svc.Export(context.Background(), Request{
		Entity: EntityProducts,
		Search: []queryspec.SearchItem{{Field: "nope", Operator: queryspec.OpEq, Value: "x"}},
	})
	assert.ErrorIs(t, err, queryspec.ErrUnknownField)
}
