package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	permitdomain "github.com/kaupunki/parking-permits/internal/permit/domain"
	"github.com/kaupunki/parking-permits/pkg/db/pagination"
	"github.com/kaupunki/parking-permits/pkg/db/queryspec"
	"gorm.io/gorm"
)

var searchFields = queryspec.FieldSet{
	"customer_id":   "customer_id",
	"vehicle_id":    "vehicle_id",
	"zone_id":       "zone_id",
	"status":        "status",
	"contract_type": "contract_type",
	"start_time":    "start_time",
	"end_time":      "end_time",
}

type repo struct{}

func Provide() permitdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, permit *permitdomain.ParkingPermit) error {
	return db.WithContext(ctx).Omit("Customer", "Vehicle", "Zone").Create(permit).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, permit *permitdomain.ParkingPermit) error {
	return db.WithContext(ctx).Omit("Customer", "Vehicle", "Zone").Save(permit).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*permitdomain.ParkingPermit, error) {
	var permit permitdomain.ParkingPermit
	err := db.WithContext(ctx).
		Preload("Customer").
		Preload("Customer.PrimaryAddress").
		Preload("Vehicle").
		Preload("Zone").
		First(&permit, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &permit, nil
}

func (r *repo) FindActiveByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]permitdomain.ParkingPermit, error) {
	var permits []permitdomain.ParkingPermit
	err := db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Where("status IN ?", []permitdomain.Status{permitdomain.StatusValid, permitdomain.StatusPaymentInProgress}).
		Order("created_at ASC, id ASC").
		Find(&permits).Error
	return permits, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, page pagination.Pagination, search []queryspec.SearchItem, orderBy *queryspec.OrderBy) ([]permitdomain.ParkingPermit, pagination.PageInfo, error) {
	stmt := db.WithContext(ctx).Model(&permitdomain.ParkingPermit{})

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
		stmt = stmt.Order("created_at DESC")
	}

	var permits []permitdomain.ParkingPermit
	err = pagination.Apply(stmt, page).
		Preload("Customer").
		Preload("Vehicle").
		Preload("Zone").
		Find(&permits).Error
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	return permits, pagination.BuildPageInfo(count, page), nil
}
