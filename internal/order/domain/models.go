// Package domain contains orders, their immutable price-snapshot items and
// refunds. Order items are never recomputed after creation; a re-priced
// permit gets a renewal order instead.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type OrderType string

const (
	OrderTypeCreated OrderType = "CREATED"
	OrderTypeRenewal OrderType = "RENEWAL"
)

type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type RefundStatus string

const (
	RefundStatusOpen     RefundStatus = "OPEN"
	RefundStatusAccepted RefundStatus = "ACCEPTED"
	RefundStatusRejected RefundStatus = "REJECTED"
)

type Order struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`
	Type       OrderType    `gorm:"type:text;not null;default:'CREATED'" json:"type"`
	Status     OrderStatus  `gorm:"type:text;not null;default:'DRAFT'" json:"status"`
	PaidTime   *time.Time   `json:"paid_time"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// TotalPrice sums the item snapshots.
func (o Order) TotalPrice() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Total()
	}
	return total
}

type OrderItem struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrderID   snowflake.ID  `gorm:"not null;index" json:"order_id"`
	PermitID  snowflake.ID  `gorm:"not null;index" json:"permit_id"`
	ProductID *snowflake.ID `json:"product_id"`
	UnitPrice int64         `gorm:"not null" json:"unit_price"`
	VAT       float64       `gorm:"not null" json:"vat"`
	Quantity  int           `gorm:"not null" json:"quantity"`
	StartDate time.Time     `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time     `gorm:"type:date;not null" json:"end_date"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (OrderItem) TableName() string { return "order_items" }

// Total is the VAT-inclusive price of the item line.
func (i OrderItem) Total() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

type Refund struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID     snowflake.ID `gorm:"uniqueIndex;not null" json:"order_id"`
	Name        string       `gorm:"not null;default:''" json:"name"`
	Amount      int64        `gorm:"not null" json:"amount"`
	IBAN        string       `gorm:"column:iban;not null;default:''" json:"iban"`
	Status      RefundStatus `gorm:"type:text;not null;default:'OPEN'" json:"status"`
	Description string       `gorm:"not null;default:''" json:"description"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Refund) TableName() string { return "refunds" }
