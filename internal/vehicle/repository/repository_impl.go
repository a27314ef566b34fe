package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	vehicledomain "github.com/kaupunki/parking-permits/internal/vehicle/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() vehicledomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, vehicle *vehicledomain.Vehicle) error {
	return db.WithContext(ctx).Create(vehicle).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, vehicle *vehicledomain.Vehicle) error {
	return db.WithContext(ctx).Save(vehicle).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*vehicledomain.Vehicle, error) {
	var vehicle vehicledomain.Vehicle
	err := db.WithContext(ctx).First(&vehicle, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vehicle, nil
}

func (r *repo) FindByRegistrationNumber(ctx context.Context, db *gorm.DB, registrationNumber string) (*vehicledomain.Vehicle, error) {
	var vehicle vehicledomain.Vehicle
	err := db.WithContext(ctx).First(&vehicle, "registration_number = ?", registrationNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vehicle, nil
}
