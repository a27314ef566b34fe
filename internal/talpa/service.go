package talpa

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/kaupunki/parking-permits/internal/clock"
	"github.com/kaupunki/parking-permits/internal/observability/metrics"
	permitdomain "github.com/kaupunki/parking-permits/internal/permit/domain"
	productdomain "github.com/kaupunki/parking-permits/internal/product/domain"
	"github.com/kaupunki/parking-permits/internal/registry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	client   OrderFetcher
	permits  permitdomain.Service
	products productdomain.Service
	vehicles registry.VehicleRegistry
	metrics  *metrics.Metrics
	clock    clock.Clock
}

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Client   OrderFetcher
	Permits  permitdomain.Service
	Products productdomain.Service
	Vehicles registry.VehicleRegistry
	Metrics  *metrics.Metrics `optional:"true"`
	Clock    clock.Clock
}

func NewService(p ServiceParam) *Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("talpa.service"),
		client:   p.Client,
		permits:  p.Permits,
		products: p.Products,
		vehicles: p.Vehicles,
		metrics:  p.Metrics,
		clock:    p.Clock,
	}
}

// ProcessOrderEvent reconciles an inbound payment event: fetch the full
// order detail, then apply the resulting status to every referenced permit
// in one transaction. Any missing permit reference or upstream failure
// fails the whole request.
func (s *Service) ProcessOrderEvent(ctx context.Context, event OrderEvent) error {
	detail, err := s.client.GetOrder(ctx, event.OrderID)
	if err != nil {
		s.recordEvent(event.EventType, err)
		return err
	}

	paid := event.EventType == EventPaymentPaid

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range detail.Items {
			permitRef, ok := item.PermitID()
			if !ok {
				return fmt.Errorf("%w: order %s", ErrMissingPermitID, event.OrderID)
			}
			permitID, err := snowflake.ParseString(permitRef)
			if err != nil {
				return fmt.Errorf("%w: order %s has malformed permit id %q", ErrMissingPermitID, event.OrderID, permitRef)
			}

			orderID := item.OrderID
			if orderID == "" {
				orderID = detail.OrderID
			}
			if err := s.permits.SetPaymentStateTx(ctx, tx, permitID, paid, orderID, item.SubscriptionID); err != nil {
				return err
			}
		}
		return nil
	})
	s.recordEvent(event.EventType, err)
	if err != nil {
		return err
	}

	s.log.Info("order event reconciled",
		zap.String("order_id", event.OrderID),
		zap.String("event_type", event.EventType),
		zap.Int("items", len(detail.Items)),
	)
	return nil
}

// ResolveAvailability answers Talpa's availability probe. Permit products
// are always available; scarcity is enforced at permit creation.
func (s *Service) ResolveAvailability(ctx context.Context, productID string) AvailabilityResponse {
	return AvailabilityResponse{ProductID: productID, Value: true}
}

// ResolvePrice prices the permit referenced in the checkout meta list.
func (s *Service) ResolvePrice(ctx context.Context, meta []Meta) (PriceResponse, error) {
	permit, err := s.permitFromMeta(ctx, meta)
	if err != nil {
		return PriceResponse{}, err
	}

	prices, err := s.products.PermitPrices(ctx, productdomain.PriceTerms{
		ZoneID:      permit.ZoneID,
		Type:        productdomain.ProductTypeResident,
		StartDate:   s.clock.Now(),
		MonthCount:  1,
		LowEmission: permit.VehicleLowEmission,
		IsSecondary: !permit.PrimaryVehicle,
	})
	if err != nil {
		return PriceResponse{}, err
	}
	monthly := prices[0].UnitPrice

	total := monthly
	if permit.ContractType == permitdomain.ContractFixedPeriod {
		total = monthly * int64(permit.MonthCount)
	}
	return PriceResponse{TotalPrice: total, MonthlyPrice: monthly}, nil
}

// ResolveRightOfPurchase runs the registry checks Talpa requires before
// accepting payment: the customer must own the vehicle, hold a valid
// driving license, and the vehicle's inspection must not be overdue.
func (s *Service) ResolveRightOfPurchase(ctx context.Context, item OrderItem) (RightOfPurchaseResponse, error) {
	permitRef, ok := item.PermitID()
	if !ok {
		return RightOfPurchaseResponse{}, ErrMissingPermitID
	}
	permitID, err := snowflake.ParseString(permitRef)
	if err != nil {
		return RightOfPurchaseResponse{}, ErrMissingPermitID
	}

	permit, err := s.permits.Get(ctx, permitID)
	if err != nil {
		return RightOfPurchaseResponse{}, err
	}
	if permit.Customer == nil || permit.Vehicle == nil {
		return RightOfPurchaseResponse{RightOfPurchase: false, Reason: "permit has no customer or vehicle"}, nil
	}

	owner, err := s.vehicles.IsVehicleOwner(ctx, permit.Customer.NationalIDNumber, permit.Vehicle.RegistrationNumber)
	if err != nil {
		return RightOfPurchaseResponse{}, err
	}
	if !owner {
		return RightOfPurchaseResponse{RightOfPurchase: false, Reason: "customer does not own the vehicle"}, nil
	}

	license, err := s.vehicles.HasValidDrivingLicense(ctx, permit.Customer.NationalIDNumber)
	if err != nil {
		return RightOfPurchaseResponse{}, err
	}
	if !license {
		return RightOfPurchaseResponse{RightOfPurchase: false, Reason: "driving license is not valid"}, nil
	}

	inspection, err := s.vehicles.IsInspectionValid(ctx, permit.Vehicle.RegistrationNumber)
	if err != nil {
		return RightOfPurchaseResponse{}, err
	}
	if !inspection {
		return RightOfPurchaseResponse{RightOfPurchase: false, Reason: "vehicle inspection is overdue"}, nil
	}

	return RightOfPurchaseResponse{RightOfPurchase: true}, nil
}

func (s *Service) permitFromMeta(ctx context.Context, meta []Meta) (permitdomain.ParkingPermit, error) {
	item := OrderItem{Meta: meta}
	permitRef, ok := item.PermitID()
	if !ok {
		return permitdomain.ParkingPermit{}, ErrMissingPermitID
	}
	permitID, err := snowflake.ParseString(permitRef)
	if err != nil {
		return permitdomain.ParkingPermit{}, ErrMissingPermitID
	}
	return s.permits.Get(ctx, permitID)
}

func (s *Service) recordEvent(eventType string, err error) {
	if s.metrics != nil {
		s.metrics.RecordWebhookEvent(eventType, err)
	}
}
