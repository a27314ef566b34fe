package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	emissiondomain "github.com/kaupunki/parking-permits/internal/emission/domain"
	vehicledomain "github.com/kaupunki/parking-permits/internal/vehicle/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() emissiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, criteria *emissiondomain.LowEmissionCriteria) error {
	return db.WithContext(ctx).Create(criteria).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, criteria *emissiondomain.LowEmissionCriteria) error {
	return db.WithContext(ctx).Save(criteria).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&emissiondomain.LowEmissionCriteria{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*emissiondomain.LowEmissionCriteria, error) {
	var criteria emissiondomain.LowEmissionCriteria
	err := db.WithContext(ctx).First(&criteria, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &criteria, nil
}

func (r *repo) FindForDate(ctx context.Context, db *gorm.DB, powerType vehicledomain.PowerType, date time.Time) (*emissiondomain.LowEmissionCriteria, error) {
	var criteria emissiondomain.LowEmissionCriteria
	err := db.WithContext(ctx).
		Where("power_type = ?", powerType).
		Where("start_date <= ? AND end_date >= ?", date, date).
		Order("start_date DESC").
		First(&criteria).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &criteria, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]emissiondomain.LowEmissionCriteria, error) {
	var rows []emissiondomain.LowEmissionCriteria
	err := db.WithContext(ctx).Order("start_date DESC").Find(&rows).Error
	return rows, err
}
