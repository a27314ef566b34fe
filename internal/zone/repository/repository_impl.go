package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	zonedomain "github.com/kaupunki/parking-permits/internal/zone/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() zonedomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*zonedomain.ParkingZone, error) {
	var zone zonedomain.ParkingZone
	err := db.WithContext(ctx).First(&zone, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &zone, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*zonedomain.ParkingZone, error) {
	var zone zonedomain.ParkingZone
	err := db.WithContext(ctx).First(&zone, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &zone, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]zonedomain.ParkingZone, error) {
	var zones []zonedomain.ParkingZone
	err := db.WithContext(ctx).Order("name ASC").Find(&zones).Error
	return zones, err
}
