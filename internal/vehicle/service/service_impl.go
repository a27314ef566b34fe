package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	vehicledomain "github.com/kaupunki/parking-permits/internal/vehicle/domain"
	"github.com/kaupunki/parking-permits/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  vehicledomain.Repository
	genID *snowflake.Node
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  vehicledomain.Repository
	GenID *snowflake.Node
}

func NewService(p ServiceParam) vehicledomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("vehicle.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (vehicledomain.Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return vehicledomain.Vehicle{}, err
	}
	if vehicle == nil {
		return vehicledomain.Vehicle{}, vehicledomain.ErrVehicleNotFound
	}
	return *vehicle, nil
}

func (s *Service) GetByRegistrationNumber(ctx context.Context, registrationNumber string) (vehicledomain.Vehicle, error) {
	vehicle, err := s.repo.FindByRegistrationNumber(ctx, s.db, normalizeRegistration(registrationNumber))
	if err != nil {
		return vehicledomain.Vehicle{}, err
	}
	if vehicle == nil {
		return vehicledomain.Vehicle{}, vehicledomain.ErrVehicleNotFound
	}
	return *vehicle, nil
}

func (s *Service) Upsert(ctx context.Context, req vehicledomain.UpsertVehicleRequest) (vehicledomain.Vehicle, error) {
	return s.UpsertTx(ctx, s.db, req)
}

func (s *Service) UpsertTx(ctx context.Context, tx *gorm.DB, req vehicledomain.UpsertVehicleRequest) (vehicledomain.Vehicle, error) {
	registration := normalizeRegistration(req.RegistrationNumber)

	vehicle, err := s.repo.FindByRegistrationNumber(ctx, tx, registration)
	if err != nil {
		return vehicledomain.Vehicle{}, err
	}

	if vehicle == nil {
		vehicle = &vehicledomain.Vehicle{
			ID:                 s.genID.Generate(),
			RegistrationNumber: registration,
		}
		applyUpsert(vehicle, req)
		if err := s.repo.Insert(ctx, tx, vehicle); err != nil {
			if db.IsDuplicateKeyErr(err) {
				// lost the insert race, fall through to update
				existing, ferr := s.repo.FindByRegistrationNumber(ctx, tx, registration)
				if ferr != nil || existing == nil {
					return vehicledomain.Vehicle{}, err
				}
				vehicle = existing
			} else {
				return vehicledomain.Vehicle{}, err
			}
		} else {
			return *vehicle, nil
		}
	}

	applyUpsert(vehicle, req)
	if err := s.repo.Update(ctx, tx, vehicle); err != nil {
		return vehicledomain.Vehicle{}, err
	}
	return *vehicle, nil
}

func applyUpsert(vehicle *vehicledomain.Vehicle, req vehicledomain.UpsertVehicleRequest) {
	vehicle.Manufacturer = req.Manufacturer
	vehicle.Model = req.Model
	vehicle.VehicleClass = req.VehicleClass
	vehicle.SerialNumber = req.SerialNumber
	vehicle.PowerType = req.PowerType
	vehicle.EuroClass = req.EuroClass
	vehicle.Emission = req.Emission
	vehicle.EmissionType = req.EmissionType
	vehicle.ConsentLowEmission = req.ConsentLowEmission
}

func normalizeRegistration(registration string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(registration), " ", ""))
}
