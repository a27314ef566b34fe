package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	zonedomain "github.com/kaupunki/parking-permits/internal/zone/domain"
	"github.com/kaupunki/parking-permits/internal/zone/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newService(t *testing.T) (zonedomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&zonedomain.ParkingZone{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{DB: db, Log: zap.NewNop(), Repo: repository.Provide()})
	return svc, db, node
}

func squarePolygon(minX, minY, maxX, maxY float64) datatypes.JSON {
	geometry := map[string]any{
		"type": "Polygon",
		"coordinates": [][][2]float64{{
			{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
		}},
	}
	raw, err := json.Marshal(geometry)
	if err != nil {
		panic(fmt.Sprintf("marshal polygon: %v", err))
	}
	return raw
}

func seedZone(t *testing.T, db *gorm.DB, node *snowflake.Node, name string, geometry datatypes.JSON) zonedomain.ParkingZone {
	t.Helper()
	zone := zonedomain.ParkingZone{
		ID:       node.Generate(),
		Name:     name,
		Geometry: geometry,
		SRID:     3879,
	}
	require.NoError(t, db.Create(&zone).Error)
	return zone
}

func TestGetByName(t *testing.T) {
	svc, db, node := newService(t)
	seedZone(t, db, node, "K", squarePolygon(0, 0, 10, 10))

	zone, err := svc.GetByName(context.Background(), "K")
	require.NoError(t, err)
	assert.Equal(t, "K", zone.Name)

	_, err = svc.GetByName(context.Background(), "Z")
	assert.ErrorIs(t, err, zonedomain.ErrZoneNotFound)
}

func TestGetByLocation(t *testing.T) {
	svc, db, node := newService(t)
	seedZone(t, db, node, "A", squarePolygon(0, 0, 10, 10))
	seedZone(t, db, node, "B", squarePolygon(20, 0, 30, 10))

	zone, err := svc.GetByLocation(context.Background(), zonedomain.Location{X: 5, Y: 5})
	require.NoError(t, err)
	assert.Equal(t, "A", zone.Name)

	zone, err = svc.GetByLocation(context.Background(), zonedomain.Location{X: 25, Y: 5})
	require.NoError(t, err)
	assert.Equal(t, "B", zone.Name)

	_, err = svc.GetByLocation(context.Background(), zonedomain.Location{X: 15, Y: 5})
	assert.ErrorIs(t, err, zonedomain.ErrZoneNotFound)
}

func TestGetByLocationOverlappingZones(t *testing.T) {
	svc, db, node := newService(t)
	seedZone(t, db, node, "A", squarePolygon(0, 0, 10, 10))
	seedZone(t, db, node, "B", squarePolygon(5, 5, 15, 15))

	_, err := svc.GetByLocation(context.Background(), zonedomain.Location{X: 7, Y: 7})
	assert.ErrorIs(t, err, zonedomain.ErrMultipleZones)
}

func TestGetByLocationSkipsInvalidGeometry(t *testing.T) {
	svc, db, node := newService(t)
	seedZone(t, db, node, "broken", datatypes.JSON(`{"type":`))
	seedZone(t, db, node, "A", squarePolygon(0, 0, 10, 10))

	zone, err := svc.GetByLocation(context.Background(), zonedomain.Location{X: 5, Y: 5})
	require.NoError(t, err)
	assert.Equal(t, "A", zone.Name)
}
