// Package domain contains vehicle records and their emission attributes.
// The low-emission classification itself lives in the emission package;
// vehicles only carry the inputs.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PowerType is the vehicle drivetrain reported by the vehicle registry.
type PowerType string

const (
	PowerTypeBensin   PowerType = "BENSIN"
	PowerTypeDiesel   PowerType = "DIESEL"
	PowerTypeElectric PowerType = "ELECTRIC"
	PowerTypeHybrid   PowerType = "HYBRID"
)

// EmissionType identifies the measurement standard of the emission value.
type EmissionType string

const (
	EmissionTypeNEDC EmissionType = "NEDC"
	EmissionTypeWLTP EmissionType = "WLTP"
)

type Vehicle struct {
	ID                 snowflake.ID `gorm:"primaryKey" json:"id"`
	RegistrationNumber string       `gorm:"uniqueIndex;not null" json:"registration_number"`
	Manufacturer       string       `gorm:"not null;default:''" json:"manufacturer"`
	Model              string       `gorm:"not null;default:''" json:"model"`
	VehicleClass       string       `gorm:"not null;default:''" json:"vehicle_class"`
	SerialNumber       string       `gorm:"not null;default:''" json:"serial_number"`
	PowerType          PowerType    `gorm:"type:text;not null;default:''" json:"power_type"`
	EuroClass          int          `gorm:"not null;default:0" json:"euro_class"`
	Emission           int          `gorm:"not null;default:0" json:"emission"`
	EmissionType       EmissionType `gorm:"type:text;not null;default:'NEDC'" json:"emission_type"`
	ConsentLowEmission bool         `gorm:"column:consent_low_emission_accepted;not null;default:false" json:"consent_low_emission_accepted"`
	CreatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Vehicle) TableName() string { return "vehicles" }

// Description is the human-readable label used on orders and permits.
func (v Vehicle) Description() string {
	return v.Manufacturer + " " + v.Model + " (" + v.RegistrationNumber + ")"
}
