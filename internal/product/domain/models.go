// Package domain contains persistence models for zone products and the
// price lines derived from them. Prices are integer euro cents and include
// VAT; the VAT fraction is stored for reporting only.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type ProductType string

const (
	ProductTypeResident ProductType = "RESIDENT"
	ProductTypeCompany  ProductType = "COMPANY"
)

type ProductUnit string

const (
	UnitMonthly ProductUnit = "MONTHLY"
	UnitPieces  ProductUnit = "PIECES"
)

// Product is a priced, dated commercial offering within one zone.
type Product struct {
	ID                  snowflake.ID `gorm:"primaryKey" json:"id"`
	ZoneID              snowflake.ID `gorm:"not null;index" json:"zone_id"`
	Type                ProductType  `gorm:"type:text;not null" json:"type"`
	UnitPrice           int64        `gorm:"not null" json:"unit_price"`
	Unit                ProductUnit  `gorm:"type:text;not null;default:'MONTHLY'" json:"unit"`
	VAT                 float64      `gorm:"not null" json:"vat"`
	LowEmissionDiscount float64      `gorm:"not null;default:0" json:"low_emission_discount"`
	StartDate           time.Time    `gorm:"type:date;not null" json:"start_date"`
	EndDate             time.Time    `gorm:"type:date;not null" json:"end_date"`
	CreatedBy           string       `gorm:"not null;default:''" json:"created_by"`
	ModifiedBy          string       `gorm:"not null;default:''" json:"modified_by"`
	CreatedAt           time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }

// Covers reports whether the product's validity window contains the date.
func (p Product) Covers(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

// PermitPrice is one contiguous run of equally-priced months of a permit term.
type PermitPrice struct {
	ProductID snowflake.ID `json:"product_id"`
	UnitPrice int64        `json:"unit_price"`
	VAT       float64      `json:"vat"`
	Quantity  int          `json:"quantity"`
	StartDate time.Time    `json:"start_date"`
	EndDate   time.Time    `json:"end_date"`
}

// Total is the price payable for the run.
func (p PermitPrice) Total() int64 {
	return p.UnitPrice * int64(p.Quantity)
}
