// Package export produces XLSX extracts of the admin listings for reporting
// and bookkeeping handover.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/kaupunki/parking-permits/internal/clock"
	orderdomain "github.com/kaupunki/parking-permits/internal/order/domain"
	permitdomain "github.com/kaupunki/parking-permits/internal/permit/domain"
	productdomain "github.com/kaupunki/parking-permits/internal/product/domain"
	"github.com/kaupunki/parking-permits/pkg/db/queryspec"
	"github.com/xuri/excelize/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Entity string

const (
	EntityPermits  Entity = "permits"
	EntityOrders   Entity = "orders"
	EntityRefunds  Entity = "refunds"
	EntityProducts Entity = "products"
)

var ErrUnknownEntity = errors.New("unknown_export_entity")

type Request struct {
	Entity  Entity
	Search  []queryspec.SearchItem
	OrderBy *queryspec.OrderBy
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func NewService(p ServiceParam) *Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("export.service"),
		clock: p.Clock,
	}
}

const dateLayout = "2006-01-02"
const timeLayout = "2006-01-02 15:04"

// Export renders the requested listing as an XLSX workbook and returns the
// file content together with a download file name.
func (s *Service) Export(ctx context.Context, req Request) (*bytes.Buffer, string, error) {
	var (
		header []interface{}
		rows   [][]interface{}
		err    error
	)

	switch req.Entity {
	case EntityPermits:
		header, rows, err = s.permitRows(ctx, req)
	case EntityOrders:
		header, rows, err = s.orderRows(ctx, req)
	case EntityRefunds:
		header, rows, err = s.refundRows(ctx, req)
	case EntityProducts:
		header, rows, err = s.productRows(ctx, req)
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownEntity, req.Entity)
	}
	if err != nil {
		return nil, "", err
	}

	buf, err := writeWorkbook(string(req.Entity), header, rows)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("%s_%s.xlsx", req.Entity, s.clock.Now().Format("20060102"))
	s.log.Info("export generated",
		zap.String("entity", string(req.Entity)),
		zap.Int("rows", len(rows)))
	return buf, filename, nil
}

func writeWorkbook(sheetTitle string, header []interface{}, rows [][]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, sheetTitle); err != nil {
		return nil, err
	}
	sheet = sheetTitle

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return nil, err
		}
	}

	return f.WriteToBuffer()
}

var permitExportFields = queryspec.FieldSet{
	"status":        "parking_permits.status",
	"contract_type": "parking_permits.contract_type",
	"zone_id":       "parking_permits.zone_id",
	"customer_id":   "parking_permits.customer_id",
	"start_time":    "parking_permits.start_time",
	"end_time":      "parking_permits.end_time",
}

func (s *Service) permitRows(ctx context.Context, req Request) ([]interface{}, [][]interface{}, error) {
	stmt := s.db.WithContext(ctx).Model(&permitdomain.ParkingPermit{}).
		Preload("Customer").Preload("Vehicle").Preload("Zone")
	stmt, err := applySpec(stmt, permitExportFields, req)
	if err != nil {
		return nil, nil, err
	}

	var permits []permitdomain.ParkingPermit
	if err := stmt.Find(&permits).Error; err != nil {
		return nil, nil, err
	}

	header := []interface{}{
		"permit_id", "status", "contract_type", "customer", "national_id",
		"registration_number", "zone", "start_time", "end_time", "month_count", "low_emission",
	}
	rows := make([][]interface{}, 0, len(permits))
	for _, p := range permits {
		var name, nationalID, registration, zoneName string
		if p.Customer != nil {
			name = p.Customer.FullName()
			nationalID = p.Customer.NationalIDNumber
		}
		if p.Vehicle != nil {
			registration = p.Vehicle.RegistrationNumber
		}
		if p.Zone != nil {
			zoneName = p.Zone.Name
		}
		endTime := ""
		if p.EndTime != nil {
			endTime = p.EndTime.Format(timeLayout)
		}
		rows = append(rows, []interface{}{
			p.ID.String(), string(p.Status), string(p.ContractType), name, nationalID,
			registration, zoneName, p.StartTime.Format(timeLayout), endTime, p.MonthCount, p.VehicleLowEmission,
		})
	}
	return header, rows, nil
}

var orderExportFields = queryspec.FieldSet{
	"type":       "orders.type",
	"status":     "orders.status",
	"created_at": "orders.created_at",
}

func (s *Service) orderRows(ctx context.Context, req Request) ([]interface{}, [][]interface{}, error) {
	stmt := s.db.WithContext(ctx).Model(&orderdomain.Order{}).Preload("Items")
	stmt, err := applySpec(stmt, orderExportFields, req)
	if err != nil {
		return nil, nil, err
	}

	var orders []orderdomain.Order
	if err := stmt.Find(&orders).Error; err != nil {
		return nil, nil, err
	}

	header := []interface{}{
		"order_id", "type", "status", "total_eur", "items", "paid_time", "created_at",
	}
	rows := make([][]interface{}, 0, len(orders))
	for _, o := range orders {
		paidTime := ""
		if o.PaidTime != nil {
			paidTime = o.PaidTime.Format(timeLayout)
		}
		rows = append(rows, []interface{}{
			o.ID.String(), string(o.Type), string(o.Status), euros(o.TotalPrice()),
			len(o.Items), paidTime, o.CreatedAt.Format(timeLayout),
		})
	}
	return header, rows, nil
}

var refundExportFields = queryspec.FieldSet{
	"status":     "refunds.status",
	"order_id":   "refunds.order_id",
	"created_at": "refunds.created_at",
}

func (s *Service) refundRows(ctx context.Context, req Request) ([]interface{}, [][]interface{}, error) {
	stmt := s.db.WithContext(ctx).Model(&orderdomain.Refund{})
	stmt, err := applySpec(stmt, refundExportFields, req)
	if err != nil {
		return nil, nil, err
	}

	var refunds []orderdomain.Refund
	if err := stmt.Find(&refunds).Error; err != nil {
		return nil, nil, err
	}

	header := []interface{}{
		"refund_id", "order_id", "name", "iban", "amount_eur", "status", "created_at",
	}
	rows := make([][]interface{}, 0, len(refunds))
	for _, r := range refunds {
		rows = append(rows, []interface{}{
			r.ID.String(), r.OrderID.String(), r.Name, r.IBAN,
			euros(r.Amount), string(r.Status), r.CreatedAt.Format(timeLayout),
		})
	}
	return header, rows, nil
}

var productExportFields = queryspec.FieldSet{
	"zone_id":    "products.zone_id",
	"type":       "products.type",
	"start_date": "products.start_date",
	"end_date":   "products.end_date",
}

func (s *Service) productRows(ctx context.Context, req Request) ([]interface{}, [][]interface{}, error) {
	stmt := s.db.WithContext(ctx).Model(&productdomain.Product{})
	stmt, err := applySpec(stmt, productExportFields, req)
	if err != nil {
		return nil, nil, err
	}

	var products []productdomain.Product
	if err := stmt.Find(&products).Error; err != nil {
		return nil, nil, err
	}

	header := []interface{}{
		"product_id", "zone_id", "type", "unit_price_eur", "vat",
		"low_emission_discount", "start_date", "end_date",
	}
	rows := make([][]interface{}, 0, len(products))
	for _, p := range products {
		rows = append(rows, []interface{}{
			p.ID.String(), p.ZoneID.String(), string(p.Type), euros(p.UnitPrice),
			p.VAT, p.LowEmissionDiscount, p.StartDate.Format(dateLayout), p.EndDate.Format(dateLayout),
		})
	}
	return header, rows, nil
}

func applySpec(stmt *gorm.DB, fs queryspec.FieldSet, req Request) (*gorm.DB, error) {
	stmt, err := queryspec.ApplySearch(stmt, fs, req.Search)
	if err != nil {
		return nil, err
	}
	return queryspec.ApplyOrder(stmt, fs, req.OrderBy)
}

func euros(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}
