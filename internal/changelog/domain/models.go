// Package domain contains the append-only changelog. Every mutation of a
// permit, order or refund writes one row in the same transaction as the
// mutation itself.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type EntityType string

const (
	EntityPermit   EntityType = "PERMIT"
	EntityOrder    EntityType = "ORDER"
	EntityRefund   EntityType = "REFUND"
	EntityCustomer EntityType = "CUSTOMER"
	EntityProduct  EntityType = "PRODUCT"
)

type EventType string

const (
	EventCreated       EventType = "CREATED"
	EventUpdated       EventType = "UPDATED"
	EventEnded         EventType = "ENDED"
	EventStatusChanged EventType = "STATUS_CHANGED"
	EventRefunded      EventType = "REFUNDED"
	EventDeleted       EventType = "DELETED"
)

type Changelog struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	EntityType EntityType   `gorm:"type:text;not null;index:idx_changelogs_entity" json:"entity_type"`
	EntityID   snowflake.ID `gorm:"not null;index:idx_changelogs_entity" json:"entity_id"`
	Actor      string       `gorm:"not null;default:''" json:"actor"`
	EventType  EventType    `gorm:"type:text;not null" json:"event_type"`
	Comment    string       `gorm:"not null;default:''" json:"comment"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Changelog) TableName() string { return "changelogs" }
