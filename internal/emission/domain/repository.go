package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	vehicledomain "github.com/kaupunki/parking-permits/internal/vehicle/domain"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, criteria *LowEmissionCriteria) error
	Update(ctx context.Context, db *gorm.DB, criteria *LowEmissionCriteria) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*LowEmissionCriteria, error)
	FindForDate(ctx context.Context, db *gorm.DB, powerType vehicledomain.PowerType, date time.Time) (*LowEmissionCriteria, error)
	List(ctx context.Context, db *gorm.DB) ([]LowEmissionCriteria, error)
}
