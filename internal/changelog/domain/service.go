package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Entry struct {
	EntityType EntityType
	EntityID   snowflake.ID
	Actor      string
	EventType  EventType
	Comment    string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, row *Changelog) error
	ListForEntity(ctx context.Context, db *gorm.DB, entityType EntityType, entityID snowflake.ID) ([]Changelog, error)
}

type Service interface {
	// Record appends an entry using the caller's transaction so the log row
	// commits or rolls back together with the mutation it describes.
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
	ListForEntity(ctx context.Context, entityType EntityType, entityID snowflake.ID) ([]Changelog, error)
}
