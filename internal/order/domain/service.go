package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kaupunki/parking-permits/pkg/db/pagination"
	"github.com/kaupunki/parking-permits/pkg/db/queryspec"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound       = errors.New("order_not_found")
	ErrRefundNotFound      = errors.New("refund_not_found")
	ErrRefundAlreadyExists = errors.New("refund_already_exists")
)

// OrderItemInput is one permit price line to snapshot onto an order.
type OrderItemInput struct {
	PermitID  snowflake.ID
	ProductID *snowflake.ID
	UnitPrice int64
	VAT       float64
	Quantity  int
	StartDate time.Time
	EndDate   time.Time
}

type CreateOrderRequest struct {
	CustomerID snowflake.ID
	Type       OrderType
	Status     OrderStatus
	Items      []OrderItemInput
}

type CreateRefundRequest struct {
	OrderID     snowflake.ID
	Name        string
	Amount      int64
	IBAN        string
	Description string
}

type ListOrdersRequest struct {
	Pagination pagination.Pagination
	Search     []queryspec.SearchItem
	OrderBy    *queryspec.OrderBy
}

type ListRefundsRequest struct {
	Pagination pagination.Pagination
	Search     []queryspec.SearchItem
	OrderBy    *queryspec.OrderBy
}

type Service interface {
	// CreateTx snapshots the given price lines into a new order inside the
	// caller's transaction.
	CreateTx(ctx context.Context, tx *gorm.DB, req CreateOrderRequest) (Order, error)
	Get(ctx context.Context, id snowflake.ID) (Order, error)
	LatestForPermit(ctx context.Context, permitID snowflake.ID) (Order, error)
	LatestForPermitTx(ctx context.Context, tx *gorm.DB, permitID snowflake.ID) (Order, error)
	List(ctx context.Context, req ListOrdersRequest) ([]Order, pagination.PageInfo, error)
	MarkPaidTx(ctx context.Context, tx *gorm.DB, orderID snowflake.ID, paidTime time.Time) error

	// CreateRefundTx fails with ErrRefundAlreadyExists when the order
	// already has one.
	CreateRefundTx(ctx context.Context, tx *gorm.DB, req CreateRefundRequest) (Refund, error)
	GetRefund(ctx context.Context, id snowflake.ID) (Refund, error)
	UpdateRefundStatus(ctx context.Context, id snowflake.ID, status RefundStatus) (Refund, error)
	ListRefunds(ctx context.Context, req ListRefundsRequest) ([]Refund, pagination.PageInfo, error)
}
