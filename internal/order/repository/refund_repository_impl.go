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

var refundSearchFields = queryspec.FieldSet{
	"order_id": "order_id",
	"name":     "name",
	"status":   "status",
	"iban":     "iban",
}

type refundRepo struct{}

func ProvideRefund() orderdomain.RefundRepository {
	return &refundRepo{}
}

func (r *refundRepo) Insert(ctx context.Context, db *gorm.DB, refund *orderdomain.Refund) error {
	return db.WithContext(ctx).Create(refund).Error
}

func (r *refundRepo) Update(ctx context.Context, db *gorm.DB, refund *orderdomain.Refund) error {
	return db.WithContext(ctx).Save(refund).Error
}

func (r *refundRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*orderdomain.Refund, error) {
	var refund orderdomain.Refund
	err := db.WithContext(ctx).First(&refund, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &refund, nil
}

func (r *refundRepo) FindByOrderID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*orderdomain.Refund, error) {
	var refund orderdomain.Refund
	err := db.WithContext(ctx).First(&refund, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &refund, nil
}

func (r *refundRepo) List(ctx context.Context, db *gorm.DB, page pagination.Pagination, search []queryspec.SearchItem, orderBy *queryspec.OrderBy) ([]orderdomain.Refund, pagination.PageInfo, error) {
	stmt := db.WithContext(ctx).Model(&orderdomain.Refund{})

	stmt, err := queryspec.ApplySearch(stmt, refundSearchFields, search)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	var count int64
	if err := stmt.Count(&count).Error; err != nil {
		return nil, pagination.PageInfo{}, err
	}

	stmt, err = queryspec.ApplyOrder(stmt, refundSearchFields, orderBy)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	if orderBy == nil {
		stmt = stmt.Order("created_at DESC")
	}

	var refunds []orderdomain.Refund
	if err := pagination.Apply(stmt, page).Find(&refunds).Error; err != nil {
		return nil, pagination.PageInfo{}, err
	}

	return refunds, pagination.BuildPageInfo(count, page), nil
}
