package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/kaupunki/parking-permits/internal/customer/domain"
	orderdomain "github.com/kaupunki/parking-permits/internal/order/domain"
	productdomain "github.com/kaupunki/parking-permits/internal/product/domain"
	vehicledomain "github.com/kaupunki/parking-permits/internal/vehicle/domain"
	"github.com/kaupunki/parking-permits/pkg/db/pagination"
	"github.com/kaupunki/parking-permits/pkg/db/queryspec"
	"gorm.io/gorm"
)

var (
	ErrPermitNotFound        = errors.New("permit_not_found")
	ErrPermitLimitExceeded   = errors.New("permit_limit_exceeded")
	ErrPermitCanNotBeEnded   = errors.New("permit_can_not_be_ended")
	ErrRefundCanNotBeCreated = errors.New("refund_can_not_be_created")
	ErrRefundError           = errors.New("refund_error")
	ErrUpdatePermit          = errors.New("update_permit_error")
)

type CreatePermitRequest struct {
	Customer     customerdomain.UpsertCustomerRequest
	Vehicle      vehicledomain.UpsertVehicleRequest
	ZoneID       snowflake.ID
	AddressID    *snowflake.ID
	ContractType ContractType
	Status       Status
	StartTime    time.Time
	MonthCount   int
	Description  string
	Actor        string
}

type UpdatePermitRequest struct {
	PermitID    snowflake.ID
	Customer    customerdomain.UpsertCustomerRequest
	Vehicle     vehicledomain.UpsertVehicleRequest
	ZoneID      snowflake.ID
	AddressID   *snowflake.ID
	Status      Status
	Description string
	// IBAN is required when the re-priced terms leave the customer overpaid.
	IBAN  string
	Actor string
}

// UpdateResult reports what the update produced besides the permit itself.
type UpdateResult struct {
	Permit           ParkingPermit
	PriceChanges     []PriceChangeItem
	TotalPriceChange int64
	Refund           *orderdomain.Refund
	RenewalOrder     *orderdomain.Order
}

type EndPermitRequest struct {
	PermitID snowflake.ID
	EndType  EndType
	IBAN     string
	Actor    string
}

// ProposedTerms are the commercial terms a price-change diff is computed
// against.
type ProposedTerms struct {
	ZoneID      snowflake.ID
	LowEmission bool
}

type PermitPricesRequest struct {
	ZoneID      snowflake.ID
	StartTime   time.Time
	MonthCount  int
	Vehicle     vehicledomain.UpsertVehicleRequest
	IsSecondary bool
}

type PermitPriceList struct {
	Prices     []productdomain.PermitPrice `json:"prices"`
	TotalPrice int64                       `json:"total_price"`
}

type ListPermitsRequest struct {
	Pagination pagination.Pagination
	Search     []queryspec.SearchItem
	OrderBy    *queryspec.OrderBy
}

// Notifier sends customer-facing notifications after a permit mutation has
// committed. Failures are logged by the caller, never propagated.
type Notifier interface {
	PermitCreated(ctx context.Context, permit ParkingPermit) error
	PermitUpdated(ctx context.Context, permit ParkingPermit) error
	PermitEnded(ctx context.Context, permit ParkingPermit) error
}

type Service interface {
	Create(ctx context.Context, req CreatePermitRequest) (ParkingPermit, error)
	Update(ctx context.Context, req UpdatePermitRequest) (UpdateResult, error)
	End(ctx context.Context, req EndPermitRequest) (ParkingPermit, error)
	Get(ctx context.Context, id snowflake.ID) (ParkingPermit, error)
	List(ctx context.Context, req ListPermitsRequest) ([]ParkingPermit, pagination.PageInfo, error)

	// PriceChangeList prices the remaining term under the proposed terms and
	// diffs it against what the remaining term already cost.
	PriceChangeList(ctx context.Context, permitID snowflake.ID, proposed ProposedTerms) ([]PriceChangeItem, error)

	// PermitPrices prices a prospective permit without persisting anything.
	PermitPrices(ctx context.Context, req PermitPricesRequest) (PermitPriceList, error)

	// SetPaymentStateTx applies a payment-provider event inside the caller's
	// transaction: paid moves the permit to VALID, anything else back to
	// PAYMENT_IN_PROGRESS. The provider references are stored either way.
	SetPaymentStateTx(ctx context.Context, tx *gorm.DB, permitID snowflake.ID, paid bool, talpaOrderID, talpaSubscriptionID string) error
}
