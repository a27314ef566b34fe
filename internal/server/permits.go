package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/kaupunki/parking-permits/internal/customer/domain"
	permitdomain "github.com/kaupunki/parking-permits/internal/permit/domain"
	"github.com/kaupunki/parking-permits/internal/providers/pdf"
	vehicledomain "github.com/kaupunki/parking-permits/internal/vehicle/domain"
	"github.com/kaupunki/parking-permits/pkg/db/pagination"
)

type customerPayload struct {
	NationalIDNumber     string                       `json:"national_id_number"`
	FirstName            string                       `json:"first_name"`
	LastName             string                       `json:"last_name"`
	Email                string                       `json:"email"`
	PhoneNumber          string                       `json:"phone_number"`
	AddressSecurityBan   bool                         `json:"address_security_ban"`
	DriverLicenseChecked bool                         `json:"driver_license_checked"`
	PrimaryAddress       *customerdomain.AddressInput `json:"primary_address"`
	OtherAddress         *customerdomain.AddressInput `json:"other_address"`
}

type vehiclePayload struct {
	RegistrationNumber string `json:"registration_number"`
	Manufacturer       string `json:"manufacturer"`
	Model              string `json:"model"`
	VehicleClass       string `json:"vehicle_class"`
	SerialNumber       string `json:"serial_number"`
	PowerType          string `json:"power_type"`
	EuroClass          int    `json:"euro_class"`
	Emission           int    `json:"emission"`
	EmissionType       string `json:"emission_type"`
	ConsentLowEmission bool   `json:"consent_low_emission_accepted"`
}

func (p customerPayload) toRequest() customerdomain.UpsertCustomerRequest {
	return customerdomain.UpsertCustomerRequest{
		NationalIDNumber:     p.NationalIDNumber,
		FirstName:            p.FirstName,
		LastName:             p.LastName,
		Email:                p.Email,
		PhoneNumber:          p.PhoneNumber,
		AddressSecurityBan:   p.AddressSecurityBan,
		DriverLicenseChecked: p.DriverLicenseChecked,
		PrimaryAddress:       p.PrimaryAddress,
		OtherAddress:         p.OtherAddress,
	}
}

func (p vehiclePayload) toRequest() vehicledomain.UpsertVehicleRequest {
	return vehicledomain.UpsertVehicleRequest{
		RegistrationNumber: p.RegistrationNumber,
		Manufacturer:       p.Manufacturer,
		Model:              p.Model,
		VehicleClass:       p.VehicleClass,
		SerialNumber:       p.SerialNumber,
		PowerType:          vehicledomain.PowerType(p.PowerType),
		EuroClass:          p.EuroClass,
		Emission:           p.Emission,
		EmissionType:       vehicledomain.EmissionType(p.EmissionType),
		ConsentLowEmission: p.ConsentLowEmission,
	}
}

type createPermitRequest struct {
	Customer     customerPayload `json:"customer"`
	Vehicle      vehiclePayload  `json:"vehicle"`
	ZoneID       string          `json:"zone_id"`
	AddressID    string          `json:"address_id"`
	ContractType string          `json:"contract_type"`
	Status       string          `json:"status"`
	StartTime    time.Time       `json:"start_time"`
	MonthCount   int             `json:"month_count"`
	Description  string          `json:"description"`
}

func (s *Server) CreatePermit(c *gin.Context) {
	var req createPermitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	zoneID, err := parseSnowflakeID(req.ZoneID)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	addressID, err := parseOptionalSnowflakeID(req.AddressID)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	permit, err := s.permitSvc.Create(c.Request.Context(), permitdomain.CreatePermitRequest{
		Customer:     req.Customer.toRequest(),
		Vehicle:      req.Vehicle.toRequest(),
		ZoneID:       zoneID,
		AddressID:    addressID,
		ContractType: permitdomain.ContractType(req.ContractType),
		Status:       permitdomain.Status(req.Status),
		StartTime:    req.StartTime,
		MonthCount:   req.MonthCount,
		Description:  req.Description,
		Actor:        actorFrom(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": permit})
}

func (s *Server) GetPermit(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	permit, err := s.permitSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": permit})
}

func (s *Server) ListPermits(c *gin.Context) {
	var query struct {
		pagination.Pagination
		OrderField     string `form:"order_field"`
		OrderDirection string `form:"order_direction"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	search, err := parseSearchItems(
		c.QueryArray("search_field"), c.QueryArray("search_operator"), c.QueryArray("search_value"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	permits, pageInfo, err := s.permitSvc.List(c.Request.Context(), permitdomain.ListPermitsRequest{
		Pagination: query.Pagination,
		Search:     search,
		OrderBy:    parseOrderBy(query.OrderField, query.OrderDirection),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": permits, "page_info": pageInfo})
}

type updatePermitRequest struct {
	Customer    customerPayload `json:"customer"`
	Vehicle     vehiclePayload  `json:"vehicle"`
	ZoneID      string          `json:"zone_id"`
	AddressID   string          `json:"address_id"`
	Status      string          `json:"status"`
	Description string          `json:"description"`
	IBAN        string          `json:"iban"`
}

func (s *Server) UpdatePermit(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req updatePermitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	zoneID, err := parseSnowflakeID(req.ZoneID)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	addressID, err := parseOptionalSnowflakeID(req.AddressID)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.permitSvc.Update(c.Request.Context(), permitdomain.UpdatePermitRequest{
		PermitID:    id,
		Customer:    req.Customer.toRequest(),
		Vehicle:     req.Vehicle.toRequest(),
		ZoneID:      zoneID,
		AddressID:   addressID,
		Status:      permitdomain.Status(req.Status),
		Description: req.Description,
		IBAN:        req.IBAN,
		Actor:       actorFrom(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

type endPermitRequest struct {
	EndType string `json:"end_type"`
	IBAN    string `json:"iban"`
}

func (s *Server) EndPermit(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req endPermitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	permit, err := s.permitSvc.End(c.Request.Context(), permitdomain.EndPermitRequest{
		PermitID: id,
		EndType:  permitdomain.EndType(req.EndType),
		IBAN:     req.IBAN,
		Actor:    actorFrom(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": permit})
}

// PermitPriceChanges previews the month-by-month price difference of moving
// the permit to the proposed zone and emission classification.
func (s *Server) PermitPriceChanges(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	zoneID, err := parseSnowflakeID(c.Query("zone_id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	lowEmission := c.Query("low_emission") == "true"

	items, err := s.permitSvc.PriceChangeList(c.Request.Context(), id, permitdomain.ProposedTerms{
		ZoneID:      zoneID,
		LowEmission: lowEmission,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":               items,
		"total_price_change": permitdomain.TotalPriceChange(items),
	})
}

type permitPricesRequest struct {
	ZoneID      string         `json:"zone_id"`
	StartTime   time.Time      `json:"start_time"`
	MonthCount  int            `json:"month_count"`
	Vehicle     vehiclePayload `json:"vehicle"`
	IsSecondary bool           `json:"is_secondary"`
}

func (s *Server) PermitPrices(c *gin.Context) {
	var req permitPricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	zoneID, err := parseSnowflakeID(req.ZoneID)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	prices, err := s.permitSvc.PermitPrices(c.Request.Context(), permitdomain.PermitPricesRequest{
		ZoneID:      zoneID,
		StartTime:   req.StartTime,
		MonthCount:  req.MonthCount,
		Vehicle:     req.Vehicle.toRequest(),
		IsSecondary: req.IsSecondary,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": prices})
}

func (s *Server) PermitPDF(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	permit, err := s.permitSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data := pdf.PermitData{
		PermitID:     permit.ID.String(),
		Status:       string(permit.Status),
		ContractType: string(permit.ContractType),
		Validity:     permitValidity(permit),
		LowEmission:  permit.VehicleLowEmission,
	}
	if permit.Customer != nil {
		data.HolderName = permit.Customer.FullName()
		if permit.Customer.PrimaryAddress != nil {
			addr := permit.Customer.PrimaryAddress
			data.HolderAddress = fmt.Sprintf("%s %s, %s %s", addr.StreetName, addr.StreetNumber, addr.PostalCode, addr.City)
		}
	}
	if permit.Vehicle != nil {
		data.Vehicle = permit.Vehicle.Description()
		data.Registration = permit.Vehicle.RegistrationNumber
	}
	if permit.Zone != nil {
		data.Zone = permit.Zone.Name
	}

	reader, err := s.pdfProvider.GeneratePermit(c.Request.Context(), data)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	servePDF(c, reader, fmt.Sprintf("permit_%s.pdf", permit.ID))
}

const finnishDateLayout = "2.1.2006"

func permitValidity(permit permitdomain.ParkingPermit) string {
	start := permit.StartTime.Format(finnishDateLayout)
	if permit.EndTime != nil {
		return fmt.Sprintf("%s - %s", start, permit.EndTime.Format(finnishDateLayout))
	}
	return start + " -"
}

func servePDF(c *gin.Context, reader io.Reader, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}
