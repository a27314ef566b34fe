package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ParkingZone, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*ParkingZone, error)
	List(ctx context.Context, db *gorm.DB) ([]ParkingZone, error)
}
