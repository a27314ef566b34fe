package service

import (
	"context"
	"encoding/json"

	zonedomain "github.com/kaupunki/parking-permits/internal/zone/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo zonedomain.Repository
}

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo zonedomain.Repository
}

func NewService(p ServiceParam) zonedomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("zone.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]zonedomain.ParkingZone, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) GetByName(ctx context.Context, name string) (zonedomain.ParkingZone, error) {
	zone, err := s.repo.FindByName(ctx, s.db, name)
	if err != nil {
		return zonedomain.ParkingZone{}, err
	}
	if zone == nil {
		return zonedomain.ParkingZone{}, zonedomain.ErrZoneNotFound
	}
	return *zone, nil
}

func (s *Service) GetByLocation(ctx context.Context, location zonedomain.Location) (zonedomain.ParkingZone, error) {
	zones, err := s.repo.List(ctx, s.db)
	if err != nil {
		return zonedomain.ParkingZone{}, err
	}

	var matches []zonedomain.ParkingZone
	for _, zone := range zones {
		contains, err := geometryContains(zone.Geometry, location)
		if err != nil {
			s.log.Warn("invalid zone geometry", zap.String("zone", zone.Name), zap.Error(err))
			continue
		}
		if contains {
			matches = append(matches, zone)
		}
	}

	switch len(matches) {
	case 0:
		return zonedomain.ParkingZone{}, zonedomain.ErrZoneNotFound
	case 1:
		return matches[0], nil
	default:
		return zonedomain.ParkingZone{}, zonedomain.ErrMultipleZones
	}
}

type polygonGeometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// geometryContains runs a ray cast against the polygon's exterior ring.
// Interior rings (holes) are not used for parking zones.
func geometryContains(raw []byte, location zonedomain.Location) (bool, error) {
	if len(raw) == 0 {
		return false, nil
	}

	var geometry polygonGeometry
	if err := json.Unmarshal(raw, &geometry); err != nil {
		return false, err
	}
	if len(geometry.Coordinates) == 0 {
		return false, nil
	}

	ring := geometry.Coordinates[0]
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > location.Y) != (yj > location.Y) &&
			location.X < (xj-xi)*(location.Y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside, nil
}
