package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/kaupunki/parking-permits/internal/order/domain"
	"github.com/kaupunki/parking-permits/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    orderdomain.Repository
	refunds orderdomain.RefundRepository
	genID   *snowflake.Node
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    orderdomain.Repository
	Refunds orderdomain.RefundRepository
	GenID   *snowflake.Node
}

func NewService(p ServiceParam) orderdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("order.service"),
		repo:    p.Repo,
		refunds: p.Refunds,
		genID:   p.GenID,
	}
}

func (s *Service) CreateTx(ctx context.Context, tx *gorm.DB, req orderdomain.CreateOrderRequest) (orderdomain.Order, error) {
	order := orderdomain.Order{
		ID:         s.genID.Generate(),
		CustomerID: req.CustomerID,
		Type:       req.Type,
		Status:     req.Status,
	}
	for _, input := range req.Items {
		order.Items = append(order.Items, orderdomain.OrderItem{
			ID:        s.genID.Generate(),
			OrderID:   order.ID,
			PermitID:  input.PermitID,
			ProductID: input.ProductID,
			UnitPrice: input.UnitPrice,
			VAT:       input.VAT,
			Quantity:  input.Quantity,
			StartDate: input.StartDate,
			EndDate:   input.EndDate,
		})
	}

	if err := s.repo.Insert(ctx, tx, &order); err != nil {
		return orderdomain.Order{}, err
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("type", string(order.Type)),
		zap.Int64("total_price", order.TotalPrice()),
	)
	return order, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (orderdomain.Order, error) {
	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return orderdomain.Order{}, err
	}
	if order == nil {
		return orderdomain.Order{}, orderdomain.ErrOrderNotFound
	}
	return *order, nil
}

func (s *Service) LatestForPermit(ctx context.Context, permitID snowflake.ID) (orderdomain.Order, error) {
	return s.LatestForPermitTx(ctx, s.db, permitID)
}

func (s *Service) LatestForPermitTx(ctx context.Context, tx *gorm.DB, permitID snowflake.ID) (orderdomain.Order, error) {
	order, err := s.repo.FindLatestForPermit(ctx, tx, permitID)
	if err != nil {
		return orderdomain.Order{}, err
	}
	if order == nil {
		return orderdomain.Order{}, orderdomain.ErrOrderNotFound
	}
	return *order, nil
}

func (s *Service) List(ctx context.Context, req orderdomain.ListOrdersRequest) ([]orderdomain.Order, pagination.PageInfo, error) {
	return s.repo.List(ctx, s.db, req.Pagination, req.Search, req.OrderBy)
}

func (s *Service) MarkPaidTx(ctx context.Context, tx *gorm.DB, orderID snowflake.ID, paidTime time.Time) error {
	order, err := s.repo.FindByID(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return orderdomain.ErrOrderNotFound
	}
	order.PaidTime = &paidTime
	order.Status = orderdomain.OrderStatusConfirmed
	return s.repo.Update(ctx, tx, order)
}

func (s *Service) CreateRefundTx(ctx context.Context, tx *gorm.DB, req orderdomain.CreateRefundRequest) (orderdomain.Refund, error) {
	order, err := s.repo.FindByID(ctx, tx, req.OrderID)
	if err != nil {
		return orderdomain.Refund{}, err
	}
	if order == nil {
		return orderdomain.Refund{}, orderdomain.ErrOrderNotFound
	}

	existing, err := s.refunds.FindByOrderID(ctx, tx, req.OrderID)
	if err != nil {
		return orderdomain.Refund{}, err
	}
	if existing != nil {
		return orderdomain.Refund{}, orderdomain.ErrRefundAlreadyExists
	}

	refund := orderdomain.Refund{
		ID:          s.genID.Generate(),
		OrderID:     req.OrderID,
		Name:        req.Name,
		Amount:      req.Amount,
		IBAN:        req.IBAN,
		Status:      orderdomain.RefundStatusOpen,
		Description: req.Description,
	}
	if err := s.refunds.Insert(ctx, tx, &refund); err != nil {
		return orderdomain.Refund{}, err
	}

	s.log.Info("refund created",
		zap.String("refund_id", refund.ID.String()),
		zap.String("order_id", refund.OrderID.String()),
		zap.Int64("amount", refund.Amount),
	)
	return refund, nil
}

func (s *Service) GetRefund(ctx context.Context, id snowflake.ID) (orderdomain.Refund, error) {
	refund, err := s.refunds.FindByID(ctx, s.db, id)
	if err != nil {
		return orderdomain.Refund{}, err
	}
	if refund == nil {
		return orderdomain.Refund{}, orderdomain.ErrRefundNotFound
	}
	return *refund, nil
}

func (s *Service) UpdateRefundStatus(ctx context.Context, id snowflake.ID, status orderdomain.RefundStatus) (orderdomain.Refund, error) {
	refund, err := s.refunds.FindByID(ctx, s.db, id)
	if err != nil {
		return orderdomain.Refund{}, err
	}
	if refund == nil {
		return orderdomain.Refund{}, orderdomain.ErrRefundNotFound
	}
	refund.Status = status
	if err := s.refunds.Update(ctx, s.db, refund); err != nil {
		return orderdomain.Refund{}, err
	}
	return *refund, nil
}

func (s *Service) ListRefunds(ctx context.Context, req orderdomain.ListRefundsRequest) ([]orderdomain.Refund, pagination.PageInfo, error) {
	return s.refunds.List(ctx, s.db, req.Pagination, req.Search, req.OrderBy)
}
