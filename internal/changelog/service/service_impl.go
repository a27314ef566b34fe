package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	changelogdomain "github.com/kaupunki/parking-permits/internal/changelog/domain"
	"github.com/kaupunki/parking-permits/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  changelogdomain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  changelogdomain.Repository
	GenID *snowflake.Node
	Clock clock.Clock
}

func NewService(p ServiceParam) changelogdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("changelog.service"),
		repo:  p.Repo,
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, entry changelogdomain.Entry) error {
	row := changelogdomain.Changelog{
		ID:         s.genID.Generate(),
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Actor:      entry.Actor,
		EventType:  entry.EventType,
		Comment:    entry.Comment,
		CreatedAt:  s.clock.Now(),
	}
	return s.repo.Insert(ctx, tx, &row)
}

func (s *Service) ListForEntity(ctx context.Context, entityType changelogdomain.EntityType, entityID snowflake.ID) ([]changelogdomain.Changelog, error) {
	return s.repo.ListForEntity(ctx, s.db, entityType, entityID)
}
