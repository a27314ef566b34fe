package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	orderdomain "github.com/kaupunki/parking-permits/internal/order/domain"
	"github.com/kaupunki/parking-permits/internal/order/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (orderdomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&orderdomain.Refund{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:      db,
		Log:     zap.NewNop(),
		Repo:    repository.Provide(),
		Refunds: repository.ProvideRefund(),
		GenID:   node,
	})
	return svc, db, node
}

func createOrder(t *testing.T, svc orderdomain.Service, db *gorm.DB, node *snowflake.Node, permitID snowflake.ID) orderdomain.Order {
	t.Helper()
	order, err := svc.CreateTx(context.Background(), db, orderdomain.CreateOrderRequest{
		CustomerID: node.Generate(),
		Type:       orderdomain.OrderTypeCreated,
		Status:     orderdomain.OrderStatusConfirmed,
		Items: []orderdomain.OrderItemInput{
			{
				PermitID:  permitID,
				UnitPrice: 3000,
				VAT:       0.24,
				Quantity:  6,
				StartDate: time.Date(2021, 11, 15, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2022, 5, 14, 0, 0, 0, 0, time.UTC),
			},
		},
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrderSnapshotsItems(t *testing.T) {
	svc, db, node := newService(t)
	permitID := node.Generate()

	order := createOrder(t, svc, db, node, permitID)

	fetched, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Items, 1)
	assert.Equal(t, permitID, fetched.Items[0].PermitID)
	assert.Equal(t, int64(18000), fetched.TotalPrice())
}

func TestLatestForPermit(t *testing.T) {
	svc, db, node := newService(t)
	permitID := node.Generate()

	createOrder(t, svc, db, node, permitID)
	second := createOrder(t, svc, db, node, permitID)

	latest, err := svc.LatestForPermit(context.Background(), permitID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	_, err = svc.LatestForPermit(context.Background(), node.Generate())
	assert.ErrorIs(t, err, orderdomain.ErrOrderNotFound)
}

func TestCreateRefundOncePerOrder(t *testing.T) {
	svc, db, node := newService(t)
	order := createOrder(t, svc, db, node, node.Generate())

	refund, err := svc.CreateRefundTx(context.Background(), db, orderdomain.CreateRefundRequest{
		OrderID:     order.ID,
		Name:        "Matti Meikäläinen",
		Amount:      15000,
		IBAN:        "FI2112345600000785",
		Description: "unused permit months",
	})
	require.NoError(t, err)
	assert.Equal(t, orderdomain.RefundStatusOpen, refund.Status)

	_, err = svc.CreateRefundTx(context.Background(), db, orderdomain.CreateRefundRequest{
		OrderID: order.ID,
		Amount:  15000,
		IBAN:    "FI2112345600000785",
	})
	assert.ErrorIs(t, err, orderdomain.ErrRefundAlreadyExists)
}

func TestUpdateRefundStatus(t *testing.T) {
	svc, db, node := newService(t)
	order := createOrder(t, svc, db, node, node.Generate())

	refund, err := svc.CreateRefundTx(context.Background(), db, orderdomain.CreateRefundRequest{
		OrderID: order.ID,
		Amount:  9000,
		IBAN:    "FI2112345600000785",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateRefundStatus(context.Background(), refund.ID, orderdomain.RefundStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.RefundStatusAccepted, updated.Status)

	_, err = svc.UpdateRefundStatus(context.Background(), node.Generate(), orderdomain.RefundStatusAccepted)
	assert.ErrorIs(t, err, orderdomain.ErrRefundNotFound)
}
