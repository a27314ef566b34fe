package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	permitdomain "github.com/kaupunki/parking-permits/internal/permit/domain"
	productdomain "github.com/kaupunki/parking-permits/internal/product/domain"
	"github.com/kaupunki/parking-permits/pkg/dateutil"
)

// PriceChangeList diffs the remaining term under the proposed terms against
// what the remaining term already cost under the permit's current terms.
func (s *Service) PriceChangeList(ctx context.Context, permitID snowflake.ID, proposed permitdomain.ProposedTerms) ([]permitdomain.PriceChangeItem, error) {
	permit, err := s.repo.FindByID(ctx, s.db, permitID)
	if err != nil {
		return nil, err
	}
	if permit == nil {
		return nil, permitdomain.ErrPermitNotFound
	}
	return s.resolvePriceChanges(ctx, *permit, proposed, s.clock.Now())
}

func (s *Service) resolvePriceChanges(ctx context.Context, permit permitdomain.ParkingPermit, proposed permitdomain.ProposedTerms, now time.Time) ([]permitdomain.PriceChangeItem, error) {
	remaining := s.remainingMonths(permit, now)
	if remaining <= 0 {
		return nil, nil
	}
	remainingStart := dateutil.AddMonths(permit.StartTime, permit.MonthsUsed(now))

	oldMonthly, err := s.monthlyPrices(ctx, productdomain.PriceTerms{
		ZoneID:      permit.ZoneID,
		Type:        productdomain.ProductTypeResident,
		StartDate:   remainingStart,
		MonthCount:  remaining,
		LowEmission: permit.VehicleLowEmission,
		IsSecondary: !permit.PrimaryVehicle,
	})
	if err != nil {
		return nil, err
	}
	newMonthly, err := s.monthlyPrices(ctx, productdomain.PriceTerms{
		ZoneID:      proposed.ZoneID,
		Type:        productdomain.ProductTypeResident,
		StartDate:   remainingStart,
		MonthCount:  remaining,
		LowEmission: proposed.LowEmission,
		IsSecondary: !permit.PrimaryVehicle,
	})
	if err != nil {
		return nil, err
	}

	// Month-by-month delta, with consecutive equal deltas folded into one
	// line item.
	var items []permitdomain.PriceChangeItem
	for i := 0; i < remaining; i++ {
		delta := newMonthly[i] - oldMonthly[i]
		monthStart := dateutil.AddMonths(remainingStart, i)
		monthEnd := dateutil.EndOfDay(dateutil.AddMonths(monthStart, 1).AddDate(0, 0, -1))

		if n := len(items); n > 0 && items[n-1].PriceChange/int64(items[n-1].MonthCount) == delta {
			items[n-1].PriceChange += delta
			items[n-1].MonthCount++
			items[n-1].EndDate = monthEnd
			items[n-1].Description = changeDescription(items[n-1].StartDate, monthEnd, items[n-1].PriceChange)
			continue
		}
		items = append(items, permitdomain.PriceChangeItem{
			Description: changeDescription(monthStart, monthEnd, delta),
			PriceChange: delta,
			StartDate:   monthStart,
			EndDate:     monthEnd,
			MonthCount:  1,
		})
	}
	return items, nil
}

// remainingMonths is the unused remainder of the term. Open-ended permits
// are re-priced one billing month at a time.
func (s *Service) remainingMonths(permit permitdomain.ParkingPermit, now time.Time) int {
	if left := permit.MonthsLeft(now); left != nil {
		return *left
	}
	return 1
}

// monthlyPrices expands price runs into one price per month.
func (s *Service) monthlyPrices(ctx context.Context, terms productdomain.PriceTerms) ([]int64, error) {
	prices, err := s.products.PermitPrices(ctx, terms)
	if err != nil {
		return nil, err
	}
	monthly := make([]int64, 0, terms.MonthCount)
	for _, price := range prices {
		for i := 0; i < price.Quantity; i++ {
			monthly = append(monthly, price.UnitPrice)
		}
	}
	return monthly, nil
}

func changeDescription(start, end time.Time, change int64) string {
	return fmt.Sprintf("%s - %s: %+.2f EUR", start.Format("2.1.2006"), end.Format("2.1.2006"), float64(change)/100)
}
