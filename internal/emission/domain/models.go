// Package domain contains the low-emission criteria table. Each row sets the
// emission and euro-class thresholds for one power type over a validity
// window; vehicles are classified against the row covering the relevant date.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	vehicledomain "github.com/kaupunki/parking-permits/internal/vehicle/domain"
)

type LowEmissionCriteria struct {
	ID                   snowflake.ID            `gorm:"primaryKey" json:"id"`
	PowerType            vehicledomain.PowerType `gorm:"type:text;not null" json:"power_type"`
	NEDCMaxEmissionLimit *int                    `gorm:"column:nedc_max_emission_limit" json:"nedc_max_emission_limit"`
	WLTPMaxEmissionLimit *int                    `gorm:"column:wltp_max_emission_limit" json:"wltp_max_emission_limit"`
	EuroMinClassLimit    int                     `gorm:"not null" json:"euro_min_class_limit"`
	StartDate            time.Time               `gorm:"type:date;not null" json:"start_date"`
	EndDate              time.Time               `gorm:"type:date;not null" json:"end_date"`
	CreatedAt            time.Time               `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time               `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (LowEmissionCriteria) TableName() string { return "low_emission_criteria" }

// Covers reports whether the row's validity window contains the date.
func (c LowEmissionCriteria) Covers(date time.Time) bool {
	return !date.Before(c.StartDate) && !date.After(c.EndDate)
}

// EmissionLimit returns the threshold matching the measurement standard,
// or nil when the row sets no limit for it.
func (c LowEmissionCriteria) EmissionLimit(emissionType vehicledomain.EmissionType) *int {
	if emissionType == vehicledomain.EmissionTypeWLTP {
		return c.WLTPMaxEmissionLimit
	}
	return c.NEDCMaxEmissionLimit
}
