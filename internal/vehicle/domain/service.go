package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var ErrVehicleNotFound = errors.New("vehicle_not_found")

// UpsertVehicleRequest carries the full registry view of one vehicle.
// Registration number is the natural key; the rest overwrites what is stored.
type UpsertVehicleRequest struct {
	RegistrationNumber string
	Manufacturer       string
	Model              string
	VehicleClass       string
	SerialNumber       string
	PowerType          PowerType
	EuroClass          int
	Emission           int
	EmissionType       EmissionType
	ConsentLowEmission bool
}

type Service interface {
	Get(ctx context.Context, id snowflake.ID) (Vehicle, error)
	GetByRegistrationNumber(ctx context.Context, registrationNumber string) (Vehicle, error)
	Upsert(ctx context.Context, req UpsertVehicleRequest) (Vehicle, error)
	// UpsertTx runs the upsert inside the caller's transaction.
	UpsertTx(ctx context.Context, tx *gorm.DB, req UpsertVehicleRequest) (Vehicle, error)
}
