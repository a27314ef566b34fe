package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	vehicledomain "github.com/kaupunki/parking-permits/internal/vehicle/domain"
	"gorm.io/gorm"
)

var ErrCriteriaNotFound = errors.New("low_emission_criteria_not_found")

type CreateCriteriaRequest struct {
	PowerType            vehicledomain.PowerType
	NEDCMaxEmissionLimit *int
	WLTPMaxEmissionLimit *int
	EuroMinClassLimit    int
	StartDate            time.Time
	EndDate              time.Time
}

type UpdateCriteriaRequest struct {
	ID                   snowflake.ID
	PowerType            vehicledomain.PowerType
	NEDCMaxEmissionLimit *int
	WLTPMaxEmissionLimit *int
	EuroMinClassLimit    int
	StartDate            time.Time
	EndDate              time.Time
}

type Service interface {
	Create(ctx context.Context, req CreateCriteriaRequest) (LowEmissionCriteria, error)
	Update(ctx context.Context, req UpdateCriteriaRequest) (LowEmissionCriteria, error)
	Delete(ctx context.Context, id snowflake.ID) error
	Get(ctx context.Context, id snowflake.ID) (LowEmissionCriteria, error)
	List(ctx context.Context) ([]LowEmissionCriteria, error)

	// IsLowEmission classifies the vehicle against the criteria row whose
	// window covers the date. No matching row means not low-emission.
	IsLowEmission(ctx context.Context, vehicle vehicledomain.Vehicle, date time.Time) (bool, error)
	// IsLowEmissionTx classifies inside the caller's transaction.
	IsLowEmissionTx(ctx context.Context, tx *gorm.DB, vehicle vehicledomain.Vehicle, date time.Time) (bool, error)
}
