// Package domain contains persistence models for parking zones.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ParkingZone is a geographic pricing area. Geometry is a GeoJSON polygon
// (exterior ring first) in the configured spatial reference system.
type ParkingZone struct {
	ID          snowflake.ID   `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;uniqueIndex" json:"name"`
	Description string         `gorm:"not null;default:''" json:"description"`
	Geometry    datatypes.JSON `gorm:"type:jsonb" json:"geometry,omitempty"`
	SRID        int            `gorm:"not null;default:3879" json:"srid"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (ParkingZone) TableName() string { return "parking_zones" }

// Location is a coordinate pair in the zone's spatial reference system.
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
