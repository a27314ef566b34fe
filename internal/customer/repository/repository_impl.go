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

var customerSearchFields = queryspec.FieldSet{
	"national_id_number": "national_id_number",
	"first_name":         "first_name",
	"last_name":          "last_name",
	"email":              "email",
	"phone_number":       "phone_number",
}

type repo struct{}

func Provide() customerdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *customerdomain.Customer) error {
	return db.WithContext(ctx).Create(customer).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, customer *customerdomain.Customer) error {
	return db.WithContext(ctx).Save(customer).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*customerdomain.Customer, error) {
	var customer customerdomain.Customer
	err := db.WithContext(ctx).
		Preload("PrimaryAddress").
		Preload("OtherAddress").
		First(&customer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *repo) FindByNationalID(ctx context.Context, db *gorm.DB, nationalID string) (*customerdomain.Customer, error) {
	var customer customerdomain.Customer
	err := db.WithContext(ctx).
		Preload("PrimaryAddress").
		Preload("OtherAddress").
		First(&customer, "national_id_number = ?", nationalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, page pagination.Pagination, search []queryspec.SearchItem, orderBy *queryspec.OrderBy) ([]customerdomain.Customer, pagination.PageInfo, error) {
	stmt := db.WithContext(ctx).Model(&customerdomain.Customer{})

	stmt, err := queryspec.ApplySearch(stmt, customerSearchFields, search)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	var count int64
	if err := stmt.Count(&count).Error; err != nil {
		return nil, pagination.PageInfo{}, err
	}

	stmt, err = queryspec.ApplyOrder(stmt, customerSearchFields, orderBy)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	if orderBy == nil {
		stmt = stmt.Order("last_name ASC, first_name ASC")
	}

	var customers []customerdomain.Customer
	if err := pagination.Apply(stmt, page).Find(&customers).Error; err != nil {
		return nil, pagination.PageInfo{}, err
	}

	return customers, pagination.BuildPageInfo(count, page), nil
}
