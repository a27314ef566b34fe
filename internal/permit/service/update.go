package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	changelogdomain "github.com/kaupunki/parking-permits/internal/changelog/domain"
	orderdomain "github.com/kaupunki/parking-permits/internal/order/domain"
	permitdomain "github.com/kaupunki/parking-permits/internal/permit/domain"
	productdomain "github.com/kaupunki/parking-permits/internal/product/domain"
	"github.com/kaupunki/parking-permits/pkg/dateutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Update applies an admin edit to a permit. A zone or low-emission change
// re-prices the remaining term: the customer gets a refund when overpaid and
// a renewal order in either case. Edits that leave the commercial terms
// unchanged never touch orders.
func (s *Service) Update(ctx context.Context, req permitdomain.UpdatePermitRequest) (permitdomain.UpdateResult, error) {
	now := s.clock.Now()

	var result permitdomain.UpdateResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		permit, err := s.repo.FindByID(ctx, tx, req.PermitID)
		if err != nil {
			return err
		}
		if permit == nil {
			return permitdomain.ErrPermitNotFound
		}

		// A permit never moves between customers.
		if permit.Customer == nil || permit.Customer.NationalIDNumber != req.Customer.NationalIDNumber {
			return permitdomain.ErrUpdatePermit
		}

		if _, err := s.customers.UpsertTx(ctx, tx, req.Customer); err != nil {
			return err
		}
		vehicle, err := s.vehicles.UpsertTx(ctx, tx, req.Vehicle)
		if err != nil {
			return err
		}

		lowEmission, err := s.emissions.IsLowEmissionTx(ctx, tx, vehicle, now)
		if err != nil {
			return err
		}

		zoneChanged := req.ZoneID != permit.ZoneID
		emissionChanged := lowEmission != permit.VehicleLowEmission

		var priceChanges []permitdomain.PriceChangeItem
		if zoneChanged || emissionChanged {
			priceChanges, err = s.resolvePriceChanges(ctx, *permit, permitdomain.ProposedTerms{
				ZoneID:      req.ZoneID,
				LowEmission: lowEmission,
			}, now)
			if err != nil {
				return err
			}
		}
		totalChange := permitdomain.TotalPriceChange(priceChanges)

		permit.VehicleID = vehicle.ID
		permit.ZoneID = req.ZoneID
		permit.AddressID = req.AddressID
		permit.VehicleLowEmission = lowEmission
		permit.Description = req.Description
		if req.Status != "" {
			permit.Status = req.Status
		}

		if err := s.repo.Update(ctx, tx, permit); err != nil {
			return err
		}
		if err := s.changelog.Record(ctx, tx, changelogdomain.Entry{
			EntityType: changelogdomain.EntityPermit,
			EntityID:   permit.ID,
			Actor:      req.Actor,
			EventType:  changelogdomain.EventUpdated,
			Comment:    req.Description,
		}); err != nil {
			return err
		}

		result = permitdomain.UpdateResult{
			Permit:           *permit,
			PriceChanges:     priceChanges,
			TotalPriceChange: totalChange,
		}
		if !zoneChanged && !emissionChanged {
			return nil
		}

		if totalChange < 0 {
			if req.IBAN == "" {
				return permitdomain.ErrRefundError
			}
			latest, err := s.orders.LatestForPermitTx(ctx, tx, permit.ID)
			if err != nil {
				return err
			}
			refund, err := s.orders.CreateRefundTx(ctx, tx, orderdomain.CreateRefundRequest{
				OrderID:     latest.ID,
				Name:        refundName(permit),
				Amount:      -totalChange,
				IBAN:        req.IBAN,
				Description: "refund for updated permit terms",
			})
			if err != nil {
				return err
			}
			if err := s.changelog.Record(ctx, tx, changelogdomain.Entry{
				EntityType: changelogdomain.EntityRefund,
				EntityID:   refund.ID,
				Actor:      req.Actor,
				EventType:  changelogdomain.EventCreated,
				Comment:    fmt.Sprintf("refund of %d cents for permit %s", refund.Amount, permit.ID),
			}); err != nil {
				return err
			}
			result.Refund = &refund
			if s.metrics != nil {
				s.metrics.RecordRefundCreated()
			}
		}

		renewal, err := s.createRenewalOrder(ctx, tx, *permit, now)
		if err != nil {
			return err
		}
		if renewal != nil {
			if err := s.changelog.Record(ctx, tx, changelogdomain.Entry{
				EntityType: changelogdomain.EntityOrder,
				EntityID:   renewal.ID,
				Actor:      req.Actor,
				EventType:  changelogdomain.EventCreated,
				Comment:    "renewal order for permit " + permit.ID.String(),
			}); err != nil {
				return err
			}
		}
		result.RenewalOrder = renewal
		return nil
	})
	s.recordOperation("update", err)
	if err != nil {
		return permitdomain.UpdateResult{}, err
	}

	s.log.Info("permit updated",
		zap.String("permit_id", result.Permit.ID.String()),
		zap.Int64("total_price_change", result.TotalPriceChange),
		zap.Bool("refund_created", result.Refund != nil),
		zap.Bool("renewal_order_created", result.RenewalOrder != nil),
	)
	s.notify(ctx, result.Permit, func(n permitdomain.Notifier, p permitdomain.ParkingPermit) error {
		return n.PermitUpdated(ctx, p)
	})
	return result, nil
}

// End closes the permit. The primary-vehicle permit can not be ended while
// the customer still holds a valid secondary permit.
func (s *Service) End(ctx context.Context, req permitdomain.EndPermitRequest) (permitdomain.ParkingPermit, error) {
	now := s.clock.Now()

	var ended permitdomain.ParkingPermit
	err := s.db.Transaction(func(tx *gorm.DB) error {
		permit, err := s.repo.FindByID(ctx, tx, req.PermitID)
		if err != nil {
			return err
		}
		if permit == nil {
			return permitdomain.ErrPermitNotFound
		}

		if permit.PrimaryVehicle {
			active, err := s.repo.FindActiveByCustomer(ctx, tx, permit.CustomerID)
			if err != nil {
				return err
			}
			for _, other := range active {
				if other.ID != permit.ID && other.Status == permitdomain.StatusValid {
					return permitdomain.ErrPermitCanNotBeEnded
				}
			}
		}

		// A fixed term with unused months must be refunded, so the IBAN
		// is mandatory.
		left := permit.MonthsLeft(now)
		refundable := left != nil && *left > 0
		if refundable && req.IBAN == "" {
			return permitdomain.ErrRefundError
		}

		endTime := now
		if req.EndType == permitdomain.EndAfterCurrentPeriod {
			endTime = permit.CurrentPeriodEndTime(now)
		}
		permit.EndTime = &endTime
		permit.Status = permitdomain.StatusClosed

		if err := s.repo.Update(ctx, tx, permit); err != nil {
			return err
		}
		if err := s.changelog.Record(ctx, tx, changelogdomain.Entry{
			EntityType: changelogdomain.EntityPermit,
			EntityID:   permit.ID,
			Actor:      req.Actor,
			EventType:  changelogdomain.EventEnded,
			Comment:    "ended " + string(req.EndType),
		}); err != nil {
			return err
		}

		if req.IBAN != "" {
			if err := s.createEndRefund(ctx, tx, *permit, req, now); err != nil {
				return err
			}
		}

		ended = *permit
		return nil
	})
	s.recordOperation("end", err)
	if err != nil {
		return permitdomain.ParkingPermit{}, err
	}

	s.log.Info("permit ended",
		zap.String("permit_id", ended.ID.String()),
		zap.String("end_type", string(req.EndType)),
	)
	s.notify(ctx, ended, func(n permitdomain.Notifier, p permitdomain.ParkingPermit) error {
		return n.PermitEnded(ctx, p)
	})
	return ended, nil
}

// createEndRefund refunds the unused whole months of a fixed term at the
// permit's priced rate.
func (s *Service) createEndRefund(ctx context.Context, tx *gorm.DB, permit permitdomain.ParkingPermit, req permitdomain.EndPermitRequest, now time.Time) error {
	if permit.ContractType != permitdomain.ContractFixedPeriod {
		return permitdomain.ErrRefundCanNotBeCreated
	}

	left := permit.MonthsLeft(now)
	if left == nil || *left <= 0 {
		return nil
	}
	monthsLeft := *left

	latest, err := s.orders.LatestForPermitTx(ctx, tx, permit.ID)
	if err != nil {
		return err
	}

	amount, err := s.products.TotalPrice(ctx, productdomain.PriceTerms{
		ZoneID:      permit.ZoneID,
		Type:        productdomain.ProductTypeResident,
		StartDate:   dateutil.AddMonths(permit.StartTime, permit.MonthsUsed(now)),
		MonthCount:  monthsLeft,
		LowEmission: permit.VehicleLowEmission,
		IsSecondary: !permit.PrimaryVehicle,
	})
	if err != nil {
		return err
	}

	refund, err := s.orders.CreateRefundTx(ctx, tx, orderdomain.CreateRefundRequest{
		OrderID:     latest.ID,
		Name:        refundName(&permit),
		Amount:      amount,
		IBAN:        req.IBAN,
		Description: fmt.Sprintf("refund for %d unused months", monthsLeft),
	})
	if err != nil {
		if errors.Is(err, orderdomain.ErrRefundAlreadyExists) {
			return permitdomain.ErrRefundCanNotBeCreated
		}
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordRefundCreated()
	}
	return s.changelog.Record(ctx, tx, changelogdomain.Entry{
		EntityType: changelogdomain.EntityRefund,
		EntityID:   refund.ID,
		Actor:      req.Actor,
		EventType:  changelogdomain.EventCreated,
		Comment:    fmt.Sprintf("refund of %d cents for ended permit %s", amount, permit.ID),
	})
}

// createRenewalOrder snapshots the remaining term under the permit's current
// terms into a confirmed renewal order. A fully elapsed term produces none.
func (s *Service) createRenewalOrder(ctx context.Context, tx *gorm.DB, permit permitdomain.ParkingPermit, now time.Time) (*orderdomain.Order, error) {
	monthsLeft := s.remainingMonths(permit, now)
	if monthsLeft <= 0 {
		return nil, nil
	}

	prices, err := s.products.PermitPrices(ctx, productdomain.PriceTerms{
		ZoneID:      permit.ZoneID,
		Type:        productdomain.ProductTypeResident,
		StartDate:   dateutil.AddMonths(permit.StartTime, permit.MonthsUsed(now)),
		MonthCount:  monthsLeft,
		LowEmission: permit.VehicleLowEmission,
		IsSecondary: !permit.PrimaryVehicle,
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orders.CreateTx(ctx, tx, orderdomain.CreateOrderRequest{
		CustomerID: permit.CustomerID,
		Type:       orderdomain.OrderTypeRenewal,
		Status:     orderdomain.OrderStatusConfirmed,
		Items:      priceItems(permit.ID, prices),
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func refundName(permit *permitdomain.ParkingPermit) string {
	if permit.Customer != nil {
		return permit.Customer.FullName()
	}
	return ""
}
