package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/kaupunki/parking-permits/pkg/db/pagination"
	"github.com/kaupunki/parking-permits/pkg/db/queryspec"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	FindByNationalID(ctx context.Context, db *gorm.DB, nationalID string) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination, search []queryspec.SearchItem, orderBy *queryspec.OrderBy) ([]Customer, pagination.PageInfo, error)
}

type AddressRepository interface {
	Insert(ctx context.Context, db *gorm.DB, address *Address) error
	Update(ctx context.Context, db *gorm.DB, address *Address) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Address, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination, search []queryspec.SearchItem, orderBy *queryspec.OrderBy) ([]Address, pagination.PageInfo, error)
}
