package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/kaupunki/parking-permits/internal/customer/domain"
	"github.com/kaupunki/parking-permits/pkg/db/pagination"
	"gorm.io/datatypes"
)

func (s *Server) GetCustomer(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customer, err := s.customerSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": customer})
}

func (s *Server) ListCustomers(c *gin.Context) {
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

	customers, pageInfo, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListCustomersRequest{
		Pagination: query.Pagination,
		Search:     search,
		OrderBy:    parseOrderBy(query.OrderField, query.OrderDirection),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": customers, "page_info": pageInfo})
}

type retrieveCustomerRequest struct {
	NationalIDNumber string `json:"national_id_number"`
}

// RetrieveCustomer looks the person up locally first and falls back to the
// population register when the customer is not known yet.
func (s *Server) RetrieveCustomer(c *gin.Context) {
	var req retrieveCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	nationalID := strings.TrimSpace(req.NationalIDNumber)
	if nationalID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	customer, err := s.customerSvc.GetByNationalID(c.Request.Context(), nationalID)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"data": customer})
		return
	}
	if !errors.Is(err, customerdomain.ErrCustomerNotFound) {
		AbortWithError(c, err)
		return
	}

	person, err := s.persons.FetchPerson(c.Request.Context(), nationalID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": person.CustomerRequest()})
}

type addressRequest struct {
	StreetName   string         `json:"street_name"`
	StreetNameSv string         `json:"street_name_sv"`
	StreetNumber string         `json:"street_number"`
	City         string         `json:"city"`
	CitySv       string         `json:"city_sv"`
	PostalCode   string         `json:"postal_code"`
	Location     datatypes.JSON `json:"location"`
	ZoneID       string         `json:"zone_id"`
}

func (r addressRequest) toInput() (customerdomain.AddressInput, error) {
	zoneID, err := parseOptionalSnowflakeID(r.ZoneID)
	if err != nil {
		return customerdomain.AddressInput{}, err
	}
	return customerdomain.AddressInput{
		StreetName:   r.StreetName,
		StreetNameSv: r.StreetNameSv,
		StreetNumber: r.StreetNumber,
		City:         r.City,
		CitySv:       r.CitySv,
		PostalCode:   r.PostalCode,
		Location:     r.Location,
		ZoneID:       zoneID,
	}, nil
}

func (s *Server) CreateAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	input, err := req.toInput()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	address, err := s.customerSvc.CreateAddress(c.Request.Context(), input)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": address})
}

func (s *Server) GetAddress(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	address, err := s.customerSvc.GetAddress(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": address})
}

func (s *Server) UpdateAddress(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	input, err := req.toInput()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	address, err := s.customerSvc.UpdateAddress(c.Request.Context(), id, input)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": address})
}

func (s *Server) DeleteAddress(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.customerSvc.DeleteAddress(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) ListAddresses(c *gin.Context) {
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

	addresses, pageInfo, err := s.customerSvc.ListAddresses(c.Request.Context(), customerdomain.ListAddressesRequest{
		Pagination: query.Pagination,
		Search:     search,
		OrderBy:    parseOrderBy(query.OrderField, query.OrderDirection),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": addresses, "page_info": pageInfo})
}
