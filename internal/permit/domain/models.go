// Package domain contains the parking permit and its lifecycle arithmetic.
// A permit term is billed in whole calendar months anchored at start_time;
// the month in progress always counts as used.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/kaupunki/parking-permits/internal/customer/domain"
	vehicledomain "github.com/kaupunki/parking-permits/internal/vehicle/domain"
	zonedomain "github.com/kaupunki/parking-permits/internal/zone/domain"
	"github.com/kaupunki/parking-permits/pkg/dateutil"
)

type ContractType string

const (
	ContractFixedPeriod ContractType = "FIXED_PERIOD"
	ContractOpenEnded   ContractType = "OPEN_ENDED"
)

type Status string

const (
	StatusPaymentInProgress Status = "PAYMENT_IN_PROGRESS"
	StatusValid             Status = "VALID"
	StatusCancelled         Status = "CANCELLED"
	StatusClosed            Status = "CLOSED"
)

type EndType string

const (
	EndImmediately        EndType = "IMMEDIATELY"
	EndAfterCurrentPeriod EndType = "AFTER_CURRENT_PERIOD"
)

type ParkingPermit struct {
	ID                  snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID          snowflake.ID  `gorm:"not null;index" json:"customer_id"`
	VehicleID           snowflake.ID  `gorm:"not null" json:"vehicle_id"`
	ZoneID              snowflake.ID  `gorm:"not null" json:"zone_id"`
	AddressID           *snowflake.ID `json:"address_id"`
	ContractType        ContractType  `gorm:"type:text;not null" json:"contract_type"`
	Status              Status        `gorm:"type:text;not null;index" json:"status"`
	StartTime           time.Time     `gorm:"not null" json:"start_time"`
	EndTime             *time.Time    `json:"end_time"`
	MonthCount          int           `gorm:"not null;default:0" json:"month_count"`
	Description         string        `gorm:"not null;default:''" json:"description"`
	PrimaryVehicle      bool          `gorm:"not null;default:true" json:"primary_vehicle"`
	VehicleLowEmission  bool          `gorm:"not null;default:false" json:"vehicle_low_emission"`
	TalpaOrderID        *string       `json:"talpa_order_id"`
	TalpaSubscriptionID *string       `json:"talpa_subscription_id"`
	CreatedAt           time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Customer *customerdomain.Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Vehicle  *vehicledomain.Vehicle   `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Zone     *zonedomain.ParkingZone  `gorm:"foreignKey:ZoneID" json:"zone,omitempty"`
}

// TableName sets the database table name.
func (ParkingPermit) TableName() string { return "parking_permits" }

// IsActive reports whether the permit counts against the customer's
// concurrent permit limit.
func (p ParkingPermit) IsActive() bool {
	return p.Status == StatusValid || p.Status == StatusPaymentInProgress
}

// MonthsUsed counts the whole months consumed at the given time, including
// the month currently in progress. A permit that has not started yet has
// used nothing. Fixed-period terms clamp at month_count; open-ended terms
// keep counting.
func (p ParkingPermit) MonthsUsed(now time.Time) int {
	if p.StartTime.After(now) {
		return 0
	}
	used := dateutil.DiffMonths(p.StartTime, now) + 1
	if p.ContractType == ContractFixedPeriod && used > p.MonthCount {
		used = p.MonthCount
	}
	return used
}

// MonthsLeft is the unused remainder of a fixed-period term. Open-ended
// terms have no remainder at all, reported as nil.
func (p ParkingPermit) MonthsLeft(now time.Time) *int {
	if p.ContractType != ContractFixedPeriod {
		return nil
	}
	left := p.MonthCount - p.MonthsUsed(now)
	if left < 0 {
		left = 0
	}
	return &left
}

// CurrentPeriodEndTime is the end of the currently-paid billing period:
// 23:59 on the last day of the months_used'th month from start.
func (p ParkingPermit) CurrentPeriodEndTime(now time.Time) time.Time {
	return dateutil.EndOfDay(dateutil.AddMonths(p.StartTime, p.MonthsUsed(now)).AddDate(0, 0, -1))
}

// FixedEndTime is the contractual end of a fixed-period term: 23:59 on the
// last day of the month_count'th month from start.
func (p ParkingPermit) FixedEndTime() time.Time {
	return dateutil.EndOfDay(dateutil.AddMonths(p.StartTime, p.MonthCount).AddDate(0, 0, -1))
}

// PriceChangeItem is one line of a mid-term re-pricing diff. A negative
// price change means the customer has overpaid under the new terms.
type PriceChangeItem struct {
	Description string    `json:"description"`
	PriceChange int64     `json:"price_change"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	MonthCount  int       `json:"month_count"`
}

// TotalPriceChange sums the line items.
func TotalPriceChange(items []PriceChangeItem) int64 {
	var total int64
	for _, item := range items {
		total += item.PriceChange
	}
	return total
}
