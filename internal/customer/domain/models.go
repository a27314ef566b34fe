// Package domain contains customers and their addresses. Customers are keyed
// by national identity number; address data is blanked for customers under an
// address security ban.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Address struct {
	ID           snowflake.ID   `gorm:"primaryKey" json:"id"`
	StreetName   string         `gorm:"not null;default:''" json:"street_name"`
	StreetNameSv string         `gorm:"not null;default:''" json:"street_name_sv"`
	StreetNumber string         `gorm:"not null;default:''" json:"street_number"`
	City         string         `gorm:"not null;default:''" json:"city"`
	CitySv       string         `gorm:"not null;default:''" json:"city_sv"`
	PostalCode   string         `gorm:"not null;default:''" json:"postal_code"`
	Location     datatypes.JSON `gorm:"type:jsonb" json:"location"`
	ZoneID       *snowflake.ID  `gorm:"index" json:"zone_id"`
	CreatedAt    time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Address) TableName() string { return "addresses" }

type Customer struct {
	ID                   snowflake.ID  `gorm:"primaryKey" json:"id"`
	NationalIDNumber     string        `gorm:"uniqueIndex;not null" json:"national_id_number"`
	FirstName            string        `gorm:"not null;default:''" json:"first_name"`
	LastName             string        `gorm:"not null;default:''" json:"last_name"`
	Email                string        `gorm:"not null;default:''" json:"email"`
	PhoneNumber          string        `gorm:"not null;default:''" json:"phone_number"`
	AddressSecurityBan   bool          `gorm:"not null;default:false" json:"address_security_ban"`
	DriverLicenseChecked bool          `gorm:"not null;default:false" json:"driver_license_checked"`
	PrimaryAddressID     *snowflake.ID `json:"primary_address_id"`
	OtherAddressID       *snowflake.ID `json:"other_address_id"`
	CreatedAt            time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	PrimaryAddress *Address `gorm:"foreignKey:PrimaryAddressID" json:"primary_address,omitempty"`
	OtherAddress   *Address `gorm:"foreignKey:OtherAddressID" json:"other_address,omitempty"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }

// FullName is the display name used on orders and refunds.
func (c Customer) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
