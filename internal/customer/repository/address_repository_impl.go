package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/kaupunki/parking-permits/internal/customer/domain"
	"github.com/kaupunki/parking-permits/pkg/db/pagination"
	"github.com/kaupunki/parking-permits/pkg/db/queryspec"
	"gorm.io/gorm"
)

var addressSearchFields = queryspec.FieldSet{
	"street_name":   "street_name",
	"street_number": "street_number",
	"city":          "city",
	"postal_code":   "postal_code",
	"zone_id":       "zone_id",
}

type addressRepo struct{}

func ProvideAddress() customerdomain.AddressRepository {
	return &addressRepo{}
}

func (r *addressRepo) Insert(ctx context.Context, db *gorm.DB, address *customerdomain.Address) error {
	return db.WithContext(ctx).Create(address).Error
}

func (r *addressRepo) Update(ctx context.Context, db *gorm.DB, address *customerdomain.Address) error {
	return db.WithContext(ctx).Save(address).Error
}

func (r *addressRepo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&customerdomain.Address{}, "id = ?", id).Error
}

func (r *addressRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*customerdomain.Address, error) {
	var address customerdomain.Address
	err := db.WithContext(ctx).First(&address, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

func (r *addressRepo) List(ctx context.Context, db *gorm.DB, page pagination.Pagination, search []queryspec.SearchItem, orderBy *queryspec.OrderBy) ([]customerdomain.Address, pagination.PageInfo, error) {
	stmt := db.WithContext(ctx).Model(&customerdomain.Address{})

	stmt, err := queryspec.ApplySearch(stmt, addressSearchFields, search)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	var count int64
	if err := stmt.Count(&count).Error; err != nil {
		return nil, pagination.PageInfo{}, err
	}

	stmt, err = queryspec.ApplyOrder(stmt, addressSearchFields, orderBy)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	if orderBy == nil {
		stmt = stmt.Order("street_name ASC, street_number ASC")
	}

	var addresses []customerdomain.Address
	if err := pagination.Apply(stmt, page).Find(&addresses).Error; err != nil {
		return nil, pagination.PageInfo{}, err
	}

	return addresses, pagination.BuildPageInfo(count, page), nil
}
