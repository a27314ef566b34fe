package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/kaupunki/parking-permits/pkg/db/pagination"
	"github.com/kaupunki/parking-permits/pkg/db/queryspec"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	Update(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	// FindLatestForPermit returns the newest order holding an item for the
	// permit, with items loaded.
	FindLatestForPermit(ctx context.Context, db *gorm.DB, permitID snowflake.ID) (*Order, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination, search []queryspec.SearchItem, orderBy *queryspec.OrderBy) ([]Order, pagination.PageInfo, error)
}

type RefundRepository interface {
	Insert(ctx context.Context, db *gorm.DB, refund *Refund) error
	Update(ctx context.Context, db *gorm.DB, refund *Refund) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Refund, error)
	FindByOrderID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*Refund, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination, search []queryspec.SearchItem, orderBy *queryspec.OrderBy) ([]Refund, pagination.PageInfo, error)
}
