// Package scheduler runs the periodic maintenance jobs: closing fixed-period
// permits whose paid term has run out.
package scheduler

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	changelogdomain "github.com/kaupunki/parking-permits/internal/changelog/domain"
	"github.com/kaupunki/parking-permits/internal/clock"
	permitdomain "github.com/kaupunki/parking-permits/internal/permit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const expiryActor = "scheduler"

// Config controls scheduler interval and batch size.
type Config struct {
	RunInterval time.Duration
	BatchSize   int
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Minute,
		BatchSize:   100,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	return c
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Changelog changelogdomain.Service
	Clock     clock.Clock
	Config    Config `optional:"true"`
}

type Scheduler struct {
	db        *gorm.DB
	log       *zap.Logger
	cfg       Config
	changelog changelogdomain.Service
	clock     clock.Clock
}

func New(p Params) *Scheduler {
	return &Scheduler{
		db:        p.DB,
		log:       p.Log.Named("scheduler"),
		cfg:       p.Config.withDefaults(),
		changelog: p.Changelog,
		clock:     p.Clock,
	}
}

// RunOnce executes every job a single time. Job failures are logged and do
// not stop the remaining jobs.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	var firstErr error
	if err := s.ExpirePermitsJob(ctx); err != nil {
		s.log.Error("expire permits job failed", zap.Error(err))
		firstErr = err
	}
	return firstErr
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.RunOnce(ctx)
		}
	}
}

// ExpirePermitsJob closes VALID fixed-period permits whose end time has
// passed. Each permit is closed in its own transaction together with its
// changelog entry; a permit claimed by a concurrent run is skipped by the
// re-check inside the transaction.
func (s *Scheduler) ExpirePermitsJob(ctx context.Context) error {
	now := s.clock.Now()

	var candidates []snowflake.ID
	err := s.db.WithContext(ctx).
		Model(&permitdomain.ParkingPermit{}).
		Where("status = ?", permitdomain.StatusValid).
		Where("contract_type = ?", permitdomain.ContractFixedPeriod).
		Where("end_time IS NOT NULL AND end_time <= ?", now).
		Order("end_time ASC").
		Limit(s.cfg.BatchSize).
		Pluck("id", &candidates).Error
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	closed := 0
	for _, id := range candidates {
		if err := s.closePermit(ctx, id, now); err != nil {
			s.log.Warn("failed to close expired permit",
				zap.String("permit_id", id.String()), zap.Error(err))
			continue
		}
		closed++
	}

	s.log.Info("expired permits closed", zap.Int("count", closed))
	return nil
}

func (s *Scheduler) closePermit(ctx context.Context, id snowflake.ID, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&permitdomain.ParkingPermit{}).
			Where("id = ?", id).
			Where("status = ?", permitdomain.StatusValid).
			Where("end_time IS NOT NULL AND end_time <= ?", now).
			Update("status", permitdomain.StatusClosed)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		return s.changelog.Record(ctx, tx, changelogdomain.Entry{
			EntityType: changelogdomain.EntityPermit,
			EntityID:   id,
			EventType:  changelogdomain.EventEnded,
			Actor:      expiryActor,
			Comment:    "fixed-period term elapsed",
		})
	})
}
