package service

import (
	"context"
	"testing"

	orderdomain "github.com/kaupunki/parking-permits/internal/order/domain"
	permitdomain "github.com/kaupunki/parking-permits/internal/permit/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdatePermit_ZoneChangeToCheaperRequiresIBAN(t *testing.T) {
	f := newFixture(t, date(2021, 11, 20))
	zoneA := f.seedZone(t, "A")
	zoneB := f.seedZone(t, "B")
	f.seedProduct(t, zoneA.ID, 3000, 0, date(2021, 1, 1), date(2022, 12, 31))
	f.seedProduct(t, zoneB.ID, 2000, 0, date(2021, 1, 1), date(2022, 12, 31))

	permit := f.createPermit(t, zoneA.ID, "290200A905H", "ABC-123", permitdomain.ContractFixedPeriod, date(2021, 11, 15), 6)

	// 5 remaining months move from 30 to 20 a month: -50.00 EUR.
	_, err := f.svc.Update(context.Background(), permitdomain.UpdatePermitRequest{
		PermitID: permit.ID,
		Customer: customerReq("290200A905H"),
		Vehicle:  vehicleReq("ABC-123"),
		ZoneID:   zoneB.ID,
	})
	assert.ErrorIs(t, err, permitdomain.ErrRefundError)

	result, err := f.svc.Update(context.Background(), permitdomain.UpdatePermitRequest{
		PermitID: permit.ID,
		Customer: customerReq("290200A905H"),
		Vehicle:  vehicleReq("ABC-123"),
		ZoneID:   zoneB.ID,
		IBAN:     "FI2112345600000785",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(-5000), result.TotalPriceChange)
	require.NotNil(t, result.Refund)
	assert.Equal(t, int64(5000), result.Refund.Amount)
	require.NotNil(t, result.RenewalOrder)
	assert.Equal(t, orderdomain.OrderTypeRenewal, result.RenewalOrder.Type)
	assert.Equal(t, orderdomain.OrderStatusConfirmed, result.RenewalOrder.Status)
	assert.Equal(t, int64(10000), result.RenewalOrder.TotalPrice())

	var refundCount, orderCount int64
	require.NoError(t, f.db.Model(&orderdomain.Refund{}).Count(&refundCount).Error)
	require.NoError(t, f.db.Model(&orderdomain.Order{}).Where("type = ?", orderdomain.OrderTypeRenewal).Count(&orderCount).Error)
	assert.EqualValues(t, 1, refundCount)
	assert.EqualValues(t, 1, orderCount)
}

func TestUpdatePermit_ZoneChangeToMoreExpensive(t *testing.T) {
	f := newFixture(t, date(2021, 11, 20))
	zoneA := f.seedZone(t, "A")
	zoneB := f.seedZone(t, "B")
	f.seedProduct(t, zoneA.ID, 3000, 0, date(2021, 1, 1), date(2022, 12, 31))
	f.seedProduct(t, zoneB.ID, 4500, 0, date(2021, 1, 1), date(2022, 12, 31))

	permit := f.createPermit(t, zoneA.ID, "290200A905H", "ABC-123", permitdomain.ContractFixedPeriod, date(2021, 11, 15), 6)

	// No IBAN needed when the customer owes more; the renewal order carries
	// the increased charge.
	result, err := f.svc.Update(context.Background(), permitdomain.UpdatePermitRequest{
		PermitID: permit.ID,
		Customer: customerReq("290200A905H"),
		Vehicle:  vehicleReq("ABC-123"),
		ZoneID:   zoneB.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7500), result.TotalPriceChange)
	assert.Nil(t, result.Refund)
	require.NotNil(t, result.RenewalOrder)
	assert.Equal(t, int64(22500), result.RenewalOrder.TotalPrice())
}

func TestUpdatePermit_DescriptionOnlyNeverRebills(t *testing.T) {
	f := newFixture(t, date(2021, 11, 20))
	zone := f.seedZone(t, "A")
	f.seedProduct(t, zone.ID, 3000, 0, date(2021, 1, 1), date(2022, 12, 31))

	permit := f.createPermit(t, zone.ID, "290200A905H", "ABC-123", permitdomain.ContractFixedPeriod, date(2021, 11, 15), 6)

	result, err := f.svc.Update(context.Background(), permitdomain.UpdatePermitRequest{
		PermitID:    permit.ID,
		Customer:    customerReq("290200A905H"),
		Vehicle:     vehicleReq("ABC-123"),
		ZoneID:      zone.ID,
		Description: "moved to garage entrance",
		Status:      permitdomain.StatusValid,
	})
	require.NoError(t, err)

	assert.Empty(t, result.PriceChanges)
	assert.Nil(t, result.Refund)
	assert.Nil(t, result.RenewalOrder)
	assert.Equal(t, "moved to garage entrance", result.Permit.Description)

	var refundCount, orderCount int64
	require.NoError(t, f.db.Model(&orderdomain.Refund{}).Count(&refundCount).Error)
	require.NoError(t, f.db.Model(&orderdomain.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 0, refundCount)
	assert.EqualValues(t, 1, orderCount) // only the create-time order
}

func TestUpdatePermit_CustomerReassignmentForbidden(t *testing.T) {
	f := newFixture(t, date(2021, 11, 20))
	zone := f.seedZone(t, "A")
	f.seedProduct(t, zone.ID, 3000, 0, date(2021, 1, 1), date(2022, 12, 31))

	permit := f.createPermit(t, zone.ID, "290200A905H", "ABC-123", permitdomain.ContractFixedPeriod, date(2021, 11, 15), 6)

	_, err := f.svc.Update(context.Background(), permitdomain.UpdatePermitRequest{
		PermitID: permit.ID,
		Customer: customerReq("010101A123B"),
		Vehicle:  vehicleReq("ABC-123"),
		ZoneID:   zone.ID,
	})
	assert.ErrorIs(t, err, permitdomain.ErrUpdatePermit)
}

func TestPriceChangeList_GroupsEqualMonths(t *testing.T) {
	f := newFixture(t, date(2021, 11, 20))
	zoneA := f.seedZone(t, "A")
	zoneB := f.seedZone(t, "B")
	f.seedProduct(t, zoneA.ID, 3000, 0, date(2021, 1, 1), date(2022, 12, 31))
	f.seedProduct(t, zoneB.ID, 2000, 0, date(2021, 1, 1), date(2022, 12, 31))

	permit := f.createPermit(t, zoneA.ID, "290200A905H", "ABC-123", permitdomain.ContractFixedPeriod, date(2021, 11, 15), 6)

	items, err := f.svc.PriceChangeList(context.Background(), permit.ID, permitdomain.ProposedTerms{
		ZoneID: zoneB.ID,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(-5000), items[0].PriceChange)
	assert.Equal(t, 5, items[0].MonthCount)
	assert.Equal(t, date(2021, 12, 15), items[0].StartDate)
	assert.Equal(t, int64(-5000), permitdomain.TotalPriceChange(items))
}

func TestPriceChangeList_ElapsedTermIsEmpty(t *testing.T) {
	f := newFixture(t, date(2021, 11, 20))
	zoneA := f.seedZone(t, "A")
	zoneB := f.seedZone(t, "B")
	f.seedProduct(t, zoneA.ID, 3000, 0, date(2021, 1, 1), date(2022, 12, 31))
	f.seedProduct(t, zoneB.ID, 2000, 0, date(2021, 1, 1), date(2022, 12, 31))

	permit := f.createPermit(t, zoneA.ID, "290200A905H", "ABC-123", permitdomain.ContractFixedPeriod, date(2021, 11, 15), 6)

	f.clock.Set(date(2022, 6, 1))
	items, err := f.svc.PriceChangeList(context.Background(), permit.ID, permitdomain.ProposedTerms{
		ZoneID: zoneB.ID,
	})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSetPaymentState(t *testing.T) {
	f := newFixture(t, date(2021, 11, 20))
	zone := f.seedZone(t, "A")
	f.seedProduct(t, zone.ID, 3000, 0, date(2021, 1, 1), date(2022, 12, 31))

	permit := f.createPermit(t, zone.ID, "290200A905H", "ABC-123", permitdomain.ContractFixedPeriod, date(2021, 11, 15), 6)

	require.NoError(t, f.svc.SetPaymentStateTx(context.Background(), f.db, permit.ID, true, "talpa-order-1", "sub-1"))

	updated, err := f.svc.Get(context.Background(), permit.ID)
	require.NoError(t, err)
	assert.Equal(t, permitdomain.StatusValid, updated.Status)
	require.NotNil(t, updated.TalpaOrderID)
	assert.Equal(t, "talpa-order-1", *updated.TalpaOrderID)
	require.NotNil(t, updated.TalpaSubscriptionID)
	assert.Equal(t, "sub-1", *updated.TalpaSubscriptionID)

	// an event without a subscription id clears the stale value
	require.NoError(t, f.svc.SetPaymentStateTx(context.Background(), f.db, permit.ID, false, "talpa-order-2", ""))
	updated, err = f.svc.Get(context.Background(), permit.ID)
	require.NoError(t, err)
	assert.Equal(t, permitdomain.StatusPaymentInProgress, updated.Status)
	require.NotNil(t, updated.TalpaOrderID)
	assert.Equal(t, "talpa-order-2", *updated.TalpaOrderID)
	require.NotNil(t, updated.TalpaSubscriptionID)
	assert.Empty(t, *updated.TalpaSubscriptionID)
}
