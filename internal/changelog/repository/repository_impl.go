package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	changelogdomain "github.com/kaupunki/parking-permits/internal/changelog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() changelogdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, row *changelogdomain.Changelog) error {
	return db.WithContext(ctx).Create(row).Error
}

func (r *repo) ListForEntity(ctx context.Context, db *gorm.DB, entityType changelogdomain.EntityType, entityID snowflake.ID) ([]changelogdomain.Changelog, error) {
	var rows []changelogdomain.Changelog
	err := db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}
