package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/kaupunki/parking-permits/pkg/db/pagination"
	"github.com/kaupunki/parking-permits/pkg/db/queryspec"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrCustomerNotFound = errors.New("customer_not_found")
	ErrAddressNotFound  = errors.New("address_not_found")
)

type AddressInput struct {
	StreetName   string
	StreetNameSv string
	StreetNumber string
	City         string
	CitySv       string
	PostalCode   string
	Location     datatypes.JSON
	ZoneID       *snowflake.ID
}

// UpsertCustomerRequest carries the admin-entered customer details.
// National identity number is the natural key.
type UpsertCustomerRequest struct {
	NationalIDNumber     string
	FirstName            string
	LastName             string
	Email                string
	PhoneNumber          string
	AddressSecurityBan   bool
	DriverLicenseChecked bool
	PrimaryAddress       *AddressInput
	OtherAddress         *AddressInput
}

type ListCustomersRequest struct {
	Pagination pagination.Pagination
	Search     []queryspec.SearchItem
	OrderBy    *queryspec.OrderBy
}

type ListAddressesRequest struct {
	Pagination pagination.Pagination
	Search     []queryspec.SearchItem
	OrderBy    *queryspec.OrderBy
}

type Service interface {
	Get(ctx context.Context, id snowflake.ID) (Customer, error)
	GetByNationalID(ctx context.Context, nationalID string) (Customer, error)
	List(ctx context.Context, req ListCustomersRequest) ([]Customer, pagination.PageInfo, error)
	Upsert(ctx context.Context, req UpsertCustomerRequest) (Customer, error)
	// UpsertTx runs the upsert inside the caller's transaction.
	UpsertTx(ctx context.Context, tx *gorm.DB, req UpsertCustomerRequest) (Customer, error)

	CreateAddress(ctx context.Context, input AddressInput) (Address, error)
	UpdateAddress(ctx context.Context, id snowflake.ID, input AddressInput) (Address, error)
	DeleteAddress(ctx context.Context, id snowflake.ID) error
	GetAddress(ctx context.Context, id snowflake.ID) (Address, error)
	ListAddresses(ctx context.Context, req ListAddressesRequest) ([]Address, pagination.PageInfo, error)
}
