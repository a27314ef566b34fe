package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/kaupunki/parking-permits/pkg/db/pagination"
	"github.com/kaupunki/parking-permits/pkg/db/queryspec"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, permit *ParkingPermit) error
	Update(ctx context.Context, db *gorm.DB, permit *ParkingPermit) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ParkingPermit, error)
	// FindActiveByCustomer returns the customer's VALID and
	// PAYMENT_IN_PROGRESS permits, oldest first.
	FindActiveByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]ParkingPermit, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination, search []queryspec.SearchItem, orderBy *queryspec.OrderBy) ([]ParkingPermit, pagination.PageInfo, error)
}
