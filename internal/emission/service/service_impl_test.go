package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	emissiondomain "github.com/kaupunki/parking-permits/internal/emission/domain"
	"github.com/kaupunki/parking-permits/internal/emission/repository"
	vehicledomain "github.com/kaupunki/parking-permits/internal/vehicle/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&emissiondomain.LowEmissionCriteria{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		Repo:  repository.Provide(),
		GenID: node,
	})
	return svc.(*Service), db
}

func intPtr(v int) *int { return &v }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsLowEmission(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, emissiondomain.CreateCriteriaRequest{
		PowerType:            vehicledomain.PowerTypeBensin,
		NEDCMaxEmissionLimit: intPtr(37),
		WLTPMaxEmissionLimit: intPtr(50),
		EuroMinClassLimit:    6,
		StartDate:            date(2021, 1, 1),
		EndDate:              date(2021, 12, 31),
	})
	require.NoError(t, err)

	now := date(2021, 6, 15)

	cases := []struct {
		name    string
		vehicle vehicledomain.Vehicle
		want    bool
	}{
		{
			name: "under NEDC limit",
			vehicle: vehicledomain.Vehicle{
				PowerType:    vehicledomain.PowerTypeBensin,
				EuroClass:    6,
				Emission:     30,
				EmissionType: vehicledomain.EmissionTypeNEDC,
			},
			want: true,
		},
		{
			name: "over NEDC limit",
			vehicle: vehicledomain.Vehicle{
				PowerType:    vehicledomain.PowerTypeBensin,
				EuroClass:    6,
				Emission:     45,
				EmissionType: vehicledomain.EmissionTypeNEDC,
			},
			want: false,
		},
		{
			name: "WLTP reading uses WLTP limit",
			vehicle: vehicledomain.Vehicle{
				PowerType:    vehicledomain.PowerTypeBensin,
				EuroClass:    6,
				Emission:     45,
				EmissionType: vehicledomain.EmissionTypeWLTP,
			},
			want: true,
		},
		{
			name: "euro class below minimum",
			vehicle: vehicledomain.Vehicle{
				PowerType:    vehicledomain.PowerTypeBensin,
				EuroClass:    5,
				Emission:     30,
				EmissionType: vehicledomain.EmissionTypeNEDC,
			},
			want: false,
		},
		{
			name: "no criteria for power type",
			vehicle: vehicledomain.Vehicle{
				PowerType:    vehicledomain.PowerTypeDiesel,
				EuroClass:    6,
				Emission:     10,
				EmissionType: vehicledomain.EmissionTypeNEDC,
			},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.IsLowEmission(ctx, tc.vehicle, now)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIsLowEmission_OutsideCriteriaWindow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, emissiondomain.CreateCriteriaRequest{
		PowerType:            vehicledomain.PowerTypeBensin,
		NEDCMaxEmissionLimit: intPtr(37),
		EuroMinClassLimit:    6,
		StartDate:            date(2021, 1, 1),
		EndDate:              date(2021, 12, 31),
	})
	require.NoError(t, err)

	vehicle := vehicledomain.Vehicle{
		PowerType:    vehicledomain.PowerTypeBensin,
		EuroClass:    6,
		Emission:     30,
		EmissionType: vehicledomain.EmissionTypeNEDC,
	}

	got, err := svc.IsLowEmission(ctx, vehicle, date(2022, 6, 15))
	require.NoError(t, err)
	assert.False(t, got)
}

func TestIsLowEmissionTx_SeesUncommittedCriteria(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	vehicle := vehicledomain.Vehicle{
		PowerType:    vehicledomain.PowerTypeBensin,
		EuroClass:    6,
		Emission:     30,
		EmissionType: vehicledomain.EmissionTypeNEDC,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		criteria := emissiondomain.LowEmissionCriteria{
			ID:                   snowflake.ID(1),
			PowerType:            vehicledomain.PowerTypeBensin,
			NEDCMaxEmissionLimit: intPtr(37),
			EuroMinClassLimit:    6,
			StartDate:            date(2021, 1, 1),
			EndDate:              date(2021, 12, 31),
		}
		if err := tx.Create(&criteria).Error; err != nil {
			return err
		}

		got, err := svc.IsLowEmissionTx(ctx, tx, vehicle, date(2021, 6, 15))
		if err != nil {
			return err
		}
		assert.True(t, got)
		return nil
	})
	require.NoError(t, err)
}

func TestCriteriaCRUD(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, emissiondomain.CreateCriteriaRequest{
		PowerType:         vehicledomain.PowerTypeDiesel,
		EuroMinClassLimit: 6,
		StartDate:         date(2021, 1, 1),
		EndDate:           date(2021, 12, 31),
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, emissiondomain.UpdateCriteriaRequest{
		ID:                created.ID,
		PowerType:         vehicledomain.PowerTypeDiesel,
		EuroMinClassLimit: 5,
		StartDate:         date(2021, 1, 1),
		EndDate:           date(2022, 12, 31),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.EuroMinClassLimit)

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, emissiondomain.ErrCriteriaNotFound)
}
