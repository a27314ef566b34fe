package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	changelogdomain "github.com/kaupunki/parking-permits/internal/changelog/domain"
	changelogrepo "github.com/kaupunki/parking-permits/internal/changelog/repository"
	changelogservice "github.com/kaupunki/parking-permits/internal/changelog/service"
	"github.com/kaupunki/parking-permits/internal/clock"
	permitdomain "github.com/kaupunki/parking-permits/internal/permit/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newScheduler(t *testing.T) (*Scheduler, *gorm.DB, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&permitdomain.ParkingPermit{},
		&changelogdomain.Changelog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(time.Date(2022, 5, 15, 12, 0, 0, 0, time.UTC))

	changelogs := changelogservice.NewService(changelogservice.ServiceParam{
		DB: db, Log: zap.NewNop(), Repo: changelogrepo.Provide(), GenID: node, Clock: fakeClock,
	})

	s := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		Changelog: changelogs,
		Clock:     fakeClock,
	})
	return s, db, node, fakeClock
}

func seedPermit(t *testing.T, db *gorm.DB, node *snowflake.Node, status permitdomain.Status, contract permitdomain.ContractType, endTime *time.Time) snowflake.ID {
	t.Helper()
	permit := permitdomain.ParkingPermit{
		ID:           node.Generate(),
		CustomerID:   node.Generate(),
		VehicleID:    node.Generate(),
		ZoneID:       node.Generate(),
		ContractType: contract,
		Status:       status,
		StartTime:    time.Date(2021, 11, 15, 0, 0, 0, 0, time.UTC),
		EndTime:      endTime,
		MonthCount:   6,
	}
	require.NoError(t, db.Create(&permit).Error)
	return permit.ID
}

func TestExpirePermitsJob(t *testing.T) {
	s, db, node, _ := newScheduler(t)

	past := time.Date(2022, 5, 14, 23, 59, 59, 0, time.UTC)
	future := time.Date(2022, 7, 14, 23, 59, 59, 0, time.UTC)

	expired := seedPermit(t, db, node, permitdomain.StatusValid, permitdomain.ContractFixedPeriod, &past)
	running := seedPermit(t, db, node, permitdomain.StatusValid, permitdomain.ContractFixedPeriod, &future)
	openEnded := seedPermit(t, db, node, permitdomain.StatusValid, permitdomain.ContractOpenEnded, nil)
	alreadyClosed := seedPermit(t, db, node, permitdomain.StatusClosed, permitdomain.ContractFixedPeriod, &past)

	require.NoError(t, s.RunOnce(context.Background()))

	statuses := map[snowflake.ID]permitdomain.Status{}
	var permits []permitdomain.ParkingPermit
	require.NoError(t, db.Find(&permits).Error)
	for _, p := range permits {
		statuses[p.ID] = p.Status
	}

	assert.Equal(t, permitdomain.StatusClosed, statuses[expired])
	assert.Equal(t, permitdomain.StatusValid, statuses[running])
	assert.Equal(t, permitdomain.StatusValid, statuses[openEnded])
	assert.Equal(t, permitdomain.StatusClosed, statuses[alreadyClosed])

	var entries []changelogdomain.Changelog
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, expired, entries[0].EntityID)
	assert.Equal(t, changelogdomain.EventEnded, entries[0].EventType)
	assert.Equal(t, expiryActor, entries[0].Actor)
}

func TestExpirePermitsJobIsIdempotent(t *testing.T) {
	s, db, node, _ := newScheduler(t)

	past := time.Date(2022, 5, 14, 23, 59, 59, 0, time.UTC)
	seedPermit(t, db, node, permitdomain.StatusValid, permitdomain.ContractFixedPeriod, &past)

	require.NoError(t, s.RunOnce(context.Background()))
	require.NoError(t, s.RunOnce(context.Background()))

	var entries []changelogdomain.Changelog
	require.NoError(t, db.Find(&entries).Error)
	assert.Len(t, entries, 1)
}
