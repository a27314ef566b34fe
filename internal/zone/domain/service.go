package domain

import (
	"context"
	"errors"
)

type Service interface {
	List(ctx context.Context) ([]ParkingZone, error)
	GetByName(ctx context.Context, name string) (ParkingZone, error)
	// GetByLocation resolves the single zone whose geometry contains the
	// location. Zero matches and multiple matches are both errors.
	GetByLocation(ctx context.Context, location Location) (ParkingZone, error)
}

var (
	ErrZoneNotFound  = errors.New("parking_zone_not_found")
	ErrMultipleZones = errors.New("multiple_parking_zones")
)
