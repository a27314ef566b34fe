package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	productdomain "github.com/kaupunki/parking-permits/internal/product/domain"
	"github.com/kaupunki/parking-permits/pkg/db/pagination"
	"github.com/kaupunki/parking-permits/pkg/db/queryspec"
	"gorm.io/gorm"
)

// searchFields maps the external query vocabulary onto product columns.
var searchFields = queryspec.FieldSet{
	"zone_id":    "zone_id",
	"type":       "type",
	"unit_price": "unit_price",
	"start_date": "start_date",
	"end_date":   "end_date",
}

type repo struct{}

func Provide() productdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *productdomain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *productdomain.Product) error {
	return db.WithContext(ctx).Save(product).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&productdomain.Product{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*productdomain.Product, error) {
	var product productdomain.Product
	err := db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repo) FindForDate(ctx context.Context, db *gorm.DB, zoneID snowflake.ID, productType productdomain.ProductType, date time.Time) (*productdomain.Product, error) {
	var product productdomain.Product
	err := db.WithContext(ctx).
		Where("zone_id = ? AND type = ?", zoneID, productType).
		Where("start_date <= ? AND end_date >= ?", date, date).
		Order("start_date DESC").
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, page pagination.Pagination, search []queryspec.SearchItem, orderBy *queryspec.OrderBy) ([]productdomain.Product, pagination.PageInfo, error) {
	stmt := db.WithContext(ctx).Model(&productdomain.Product{})

	stmt, err := queryspec.ApplySearch(stmt, searchFields, search)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	var count int64
	if err := stmt.Count(&count).Error; err != nil {
		return nil, pagination.PageInfo{}, err
	}

	stmt, err = queryspec.ApplyOrder(stmt, searchFields, orderBy)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	if orderBy == nil {
		stmt = stmt.Order("start_date DESC")
	}

	var products []productdomain.Product
	if err := pagination.Apply(stmt, page).Find(&products).Error; err != nil {
		return nil, pagination.PageInfo{}, err
	}

	return products, pagination.BuildPageInfo(count, page), nil
}
