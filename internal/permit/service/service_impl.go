package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	changelogdomain "github.com/kaupunki/parking-permits/internal/changelog/domain"
	"github.com/kaupunki/parking-permits/internal/clock"
	"github.com/kaupunki/parking-permits/internal/config"
	customerdomain "github.com/kaupunki/parking-permits/internal/customer/domain"
	emissiondomain "github.com/kaupunki/parking-permits/internal/emission/domain"
	"github.com/kaupunki/parking-permits/internal/observability/metrics"
	orderdomain "github.com/kaupunki/parking-permits/internal/order/domain"
	permitdomain "github.com/kaupunki/parking-permits/internal/permit/domain"
	productdomain "github.com/kaupunki/parking-permits/internal/product/domain"
	vehicledomain "github.com/kaupunki/parking-permits/internal/vehicle/domain"
	"github.com/kaupunki/parking-permits/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      permitdomain.Repository
	customers customerdomain.Service
	vehicles  vehicledomain.Service
	emissions emissiondomain.Service
	products  productdomain.Service
	orders    orderdomain.Service
	changelog changelogdomain.Service
	notifier  permitdomain.Notifier
	metrics   *metrics.Metrics
	genID     *snowflake.Node
	clock     clock.Clock
	policy    *config.PolicyHolder
}

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Repo      permitdomain.Repository
	Customers customerdomain.Service
	Vehicles  vehicledomain.Service
	Emissions emissiondomain.Service
	Products  productdomain.Service
	Orders    orderdomain.Service
	Changelog changelogdomain.Service
	Notifier  permitdomain.Notifier `optional:"true"`
	Metrics   *metrics.Metrics      `optional:"true"`
	GenID     *snowflake.Node
	Clock     clock.Clock
	Policy    *config.PolicyHolder
}

func NewService(p ServiceParam) permitdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("permit.service"),
		repo:      p.Repo,
		customers: p.Customers,
		vehicles:  p.Vehicles,
		emissions: p.Emissions,
		products:  p.Products,
		orders:    p.Orders,
		changelog: p.Changelog,
		notifier:  p.Notifier,
		metrics:   p.Metrics,
		genID:     p.GenID,
		clock:     p.Clock,
		policy:    p.Policy,
	}
}

func (s *Service) Create(ctx context.Context, req permitdomain.CreatePermitRequest) (permitdomain.ParkingPermit, error) {
	now := s.clock.Now()

	var permit permitdomain.ParkingPermit
	err := s.db.Transaction(func(tx *gorm.DB) error {
		customer, err := s.customers.UpsertTx(ctx, tx, req.Customer)
		if err != nil {
			return err
		}
		vehicle, err := s.vehicles.UpsertTx(ctx, tx, req.Vehicle)
		if err != nil {
			return err
		}

		active, err := s.repo.FindActiveByCustomer(ctx, tx, customer.ID)
		if err != nil {
			return err
		}
		if len(active) >= s.policy.Get().MaxActivePermits {
			return permitdomain.ErrPermitLimitExceeded
		}

		lowEmission, err := s.emissions.IsLowEmissionTx(ctx, tx, vehicle, now)
		if err != nil {
			return err
		}

		status := req.Status
		if status == "" {
			status = permitdomain.StatusValid
		}

		permit = permitdomain.ParkingPermit{
			ID:                 s.genID.Generate(),
			CustomerID:         customer.ID,
			VehicleID:          vehicle.ID,
			ZoneID:             req.ZoneID,
			AddressID:          req.AddressID,
			ContractType:       req.ContractType,
			Status:             status,
			StartTime:          req.StartTime,
			MonthCount:         req.MonthCount,
			Description:        req.Description,
			PrimaryVehicle:     len(active) == 0,
			VehicleLowEmission: lowEmission,
		}
		if permit.ContractType == permitdomain.ContractFixedPeriod {
			endTime := permit.FixedEndTime()
			permit.EndTime = &endTime
		} else {
			// Open-ended permits bill one month at a time.
			permit.MonthCount = 1
		}

		if err := s.repo.Insert(ctx, tx, &permit); err != nil {
			return err
		}

		prices, err := s.products.PermitPrices(ctx, productdomain.PriceTerms{
			ZoneID:      permit.ZoneID,
			Type:        productdomain.ProductTypeResident,
			StartDate:   permit.StartTime,
			MonthCount:  permit.MonthCount,
			LowEmission: permit.VehicleLowEmission,
			IsSecondary: !permit.PrimaryVehicle,
		})
		if err != nil {
			return err
		}

		// Admin-created permits are presumed already paid, so the order is
		// confirmed straight away.
		order, err := s.orders.CreateTx(ctx, tx, orderdomain.CreateOrderRequest{
			CustomerID: customer.ID,
			Type:       orderdomain.OrderTypeCreated,
			Status:     orderdomain.OrderStatusConfirmed,
			Items:      priceItems(permit.ID, prices),
		})
		if err != nil {
			return err
		}

		if err := s.changelog.Record(ctx, tx, changelogdomain.Entry{
			EntityType: changelogdomain.EntityPermit,
			EntityID:   permit.ID,
			Actor:      req.Actor,
			EventType:  changelogdomain.EventCreated,
			Comment:    "permit created with order " + order.ID.String(),
		}); err != nil {
			return err
		}
		return nil
	})
	s.recordOperation("create", err)
	if err != nil {
		return permitdomain.ParkingPermit{}, err
	}

	s.log.Info("permit created",
		zap.String("permit_id", permit.ID.String()),
		zap.String("status", string(permit.Status)),
		zap.Bool("primary_vehicle", permit.PrimaryVehicle),
	)
	s.notify(ctx, permit, func(n permitdomain.Notifier, p permitdomain.ParkingPermit) error {
		return n.PermitCreated(ctx, p)
	})

	created, err := s.repo.FindByID(ctx, s.db, permit.ID)
	if err != nil || created == nil {
		return permit, nil
	}
	return *created, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (permitdomain.ParkingPermit, error) {
	permit, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return permitdomain.ParkingPermit{}, err
	}
	if permit == nil {
		return permitdomain.ParkingPermit{}, permitdomain.ErrPermitNotFound
	}
	return *permit, nil
}

func (s *Service) List(ctx context.Context, req permitdomain.ListPermitsRequest) ([]permitdomain.ParkingPermit, pagination.PageInfo, error) {
	return s.repo.List(ctx, s.db, req.Pagination, req.Search, req.OrderBy)
}

func (s *Service) PermitPrices(ctx context.Context, req permitdomain.PermitPricesRequest) (permitdomain.PermitPriceList, error) {
	now := s.clock.Now()

	vehicle := vehicledomain.Vehicle{
		RegistrationNumber: req.Vehicle.RegistrationNumber,
		PowerType:          req.Vehicle.PowerType,
		EuroClass:          req.Vehicle.EuroClass,
		Emission:           req.Vehicle.Emission,
		EmissionType:       req.Vehicle.EmissionType,
	}
	lowEmission, err := s.emissions.IsLowEmission(ctx, vehicle, now)
	if err != nil {
		return permitdomain.PermitPriceList{}, err
	}

	monthCount := req.MonthCount
	if monthCount <= 0 {
		monthCount = 1
	}

	prices, err := s.products.PermitPrices(ctx, productdomain.PriceTerms{
		ZoneID:      req.ZoneID,
		Type:        productdomain.ProductTypeResident,
		StartDate:   req.StartTime,
		MonthCount:  monthCount,
		LowEmission: lowEmission,
		IsSecondary: req.IsSecondary,
	})
	if err != nil {
		return permitdomain.PermitPriceList{}, err
	}

	list := permitdomain.PermitPriceList{Prices: prices}
	for _, price := range prices {
		list.TotalPrice += price.Total()
	}
	return list, nil
}

func (s *Service) SetPaymentStateTx(ctx context.Context, tx *gorm.DB, permitID snowflake.ID, paid bool, talpaOrderID, talpaSubscriptionID string) error {
	permit, err := s.repo.FindByID(ctx, tx, permitID)
	if err != nil {
		return err
	}
	if permit == nil {
		return permitdomain.ErrPermitNotFound
	}

	if paid {
		permit.Status = permitdomain.StatusValid
	} else {
		permit.Status = permitdomain.StatusPaymentInProgress
	}
	// Recorded on every event, clearing stale values when the event
	// omits them.
	permit.TalpaOrderID = &talpaOrderID
	permit.TalpaSubscriptionID = &talpaSubscriptionID

	if err := s.repo.Update(ctx, tx, permit); err != nil {
		return err
	}
	return s.changelog.Record(ctx, tx, changelogdomain.Entry{
		EntityType: changelogdomain.EntityPermit,
		EntityID:   permit.ID,
		Actor:      "talpa",
		EventType:  changelogdomain.EventStatusChanged,
		Comment:    "payment event set status " + string(permit.Status),
	})
}

func (s *Service) notify(ctx context.Context, permit permitdomain.ParkingPermit, send func(permitdomain.Notifier, permitdomain.ParkingPermit) error) {
	if s.notifier == nil {
		return
	}
	if err := send(s.notifier, permit); err != nil {
		s.log.Warn("permit notification failed",
			zap.String("permit_id", permit.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) recordOperation(operation string, err error) {
	if s.metrics != nil {
		s.metrics.RecordPermitOperation(operation, err)
	}
}

func priceItems(permitID snowflake.ID, prices []productdomain.PermitPrice) []orderdomain.OrderItemInput {
	items := make([]orderdomain.OrderItemInput, 0, len(prices))
	for _, price := range prices {
		productID := price.ProductID
		items = append(items, orderdomain.OrderItemInput{
			PermitID:  permitID,
			ProductID: &productID,
			UnitPrice: price.UnitPrice,
			VAT:       price.VAT,
			Quantity:  price.Quantity,
			StartDate: price.StartDate,
			EndDate:   price.EndDate,
		})
	}
	return items
}
