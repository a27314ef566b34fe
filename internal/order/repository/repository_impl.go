package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/kaupunki/parking-permits/internal/order/domain"
	"github.com/kaupunki/parking-permits/pkg/db/pagination"
	"github.com/kaupunki/parking-permits/pkg/db/queryspec"
	"gorm.io/gorm"
)

var orderSearchFields = queryspec.FieldSet{
	"customer_id": "customer_id",
	"type":        "type",
	"status":      "status",
}

type repo struct{}

func Provide() orderdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *orderdomain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, order *orderdomain.Order) error {
	return db.WithContext(ctx).Omit("Items").Save(order).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) FindLatestForPermit(ctx context.Context, db *gorm.DB, permitID snowflake.ID) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := db.WithContext(ctx).
		Preload("Items").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("order_items.permit_id = ?", permitID).
		Order("orders.created_at DESC, orders.id DESC").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, page pagination.Pagination, search []queryspec.SearchItem, orderBy *queryspec.OrderBy) ([]orderdomain.Order, pagination.PageInfo, error) {
	stmt := db.WithContext(ctx).Model(&orderdomain.Order{})

	stmt, err := queryspec.ApplySearch(stmt, orderSearchFields, search)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	var count int64
	if err := stmt.Count(&count).Error; err != nil {
		return nil, pagination.PageInfo{}, err
	}

	stmt, err = queryspec.ApplyOrder(stmt, orderSearchFields, orderBy)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	if orderBy == nil {
		stmt = stmt.Order("created_at DESC")
	}

	var orders []orderdomain.Order
	if err := pagination.Apply(stmt, page).Preload("Items").Find(&orders).Error; err != nil {
		return nil, pagination.PageInfo{}, err
	}

	return orders, pagination.BuildPageInfo(count, page), nil
}
