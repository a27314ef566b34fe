package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	emissiondomain "github.com/kaupunki/parking-permits/internal/emission/domain"
	vehicledomain "github.com/kaupunki/parking-permits/internal/vehicle/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  emissiondomain.Repository
	genID *snowflake.Node
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  emissiondomain.Repository
	GenID *snowflake.Node
}

func NewService(p ServiceParam) emissiondomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("emission.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req emissiondomain.CreateCriteriaRequest) (emissiondomain.LowEmissionCriteria, error) {
	criteria := emissiondomain.LowEmissionCriteria{
		ID:                   s.genID.Generate(),
		PowerType:            req.PowerType,
		NEDCMaxEmissionLimit: req.NEDCMaxEmissionLimit,
		WLTPMaxEmissionLimit: req.WLTPMaxEmissionLimit,
		EuroMinClassLimit:    req.EuroMinClassLimit,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
	}
	if err := s.repo.Insert(ctx, s.db, &criteria); err != nil {
		return emissiondomain.LowEmissionCriteria{}, err
	}
	return criteria, nil
}

func (s *Service) Update(ctx context.Context, req emissiondomain.UpdateCriteriaRequest) (emissiondomain.LowEmissionCriteria, error) {
	criteria, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return emissiondomain.LowEmissionCriteria{}, err
	}
	if criteria == nil {
		return emissiondomain.LowEmissionCriteria{}, emissiondomain.ErrCriteriaNotFound
	}

	criteria.PowerType = req.PowerType
	criteria.NEDCMaxEmissionLimit = req.NEDCMaxEmissionLimit
	criteria.WLTPMaxEmissionLimit = req.WLTPMaxEmissionLimit
	criteria.EuroMinClassLimit = req.EuroMinClassLimit
	criteria.StartDate = req.StartDate
	criteria.EndDate = req.EndDate

	if err := s.repo.Update(ctx, s.db, criteria); err != nil {
		return emissiondomain.LowEmissionCriteria{}, err
	}
	return *criteria, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	criteria, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if criteria == nil {
		return emissiondomain.ErrCriteriaNotFound
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (emissiondomain.LowEmissionCriteria, error) {
	criteria, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return emissiondomain.LowEmissionCriteria{}, err
	}
	if criteria == nil {
		return emissiondomain.LowEmissionCriteria{}, emissiondomain.ErrCriteriaNotFound
	}
	return *criteria, nil
}

func (s *Service) List(ctx context.Context) ([]emissiondomain.LowEmissionCriteria, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) IsLowEmission(ctx context.Context, vehicle vehicledomain.Vehicle, date time.Time) (bool, error) {
	return s.IsLowEmissionTx(ctx, s.db, vehicle, date)
}

func (s *Service) IsLowEmissionTx(ctx context.Context, tx *gorm.DB, vehicle vehicledomain.Vehicle, date time.Time) (bool, error) {
	criteria, err := s.repo.FindForDate(ctx, tx, vehicle.PowerType, date)
	if err != nil {
		return false, err
	}
	if criteria == nil {
		return false, nil
	}

	if vehicle.EuroClass < criteria.EuroMinClassLimit {
		return false, nil
	}

	limit := criteria.EmissionLimit(vehicle.EmissionType)
	if limit == nil {
		return false, nil
	}
	return vehicle.Emission <= *limit, nil
}
