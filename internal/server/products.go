package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	productdomain "github.com/kaupunki/parking-permits/internal/product/domain"
	"github.com/kaupunki/parking-permits/pkg/db/pagination"
)

type productRequest struct {
	ZoneID              string  `json:"zone_id"`
	Type                string  `json:"type"`
	UnitPrice           int64   `json:"unit_price"`
	Unit                string  `json:"unit"`
	VAT                 float64 `json:"vat"`
	LowEmissionDiscount float64 `json:"low_emission_discount"`
	StartDate           string  `json:"start_date"`
	EndDate             string  `json:"end_date"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	zoneID, err := parseSnowflakeID(req.ZoneID)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	product, err := s.productSvc.Create(c.Request.Context(), productdomain.CreateProductRequest{
		ZoneID:              zoneID,
		Type:                productdomain.ProductType(req.Type),
		UnitPrice:           req.UnitPrice,
		Unit:                productdomain.ProductUnit(req.Unit),
		VAT:                 req.VAT,
		LowEmissionDiscount: req.LowEmissionDiscount,
		StartDate:           startDate,
		EndDate:             endDate,
		CreatedBy:           actorFrom(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": product})
}

func (s *Server) UpdateProduct(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	zoneID, err := parseSnowflakeID(req.ZoneID)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	product, err := s.productSvc.Update(c.Request.Context(), productdomain.UpdateProductRequest{
		ID:                  id,
		ZoneID:              zoneID,
		Type:                productdomain.ProductType(req.Type),
		UnitPrice:           req.UnitPrice,
		Unit:                productdomain.ProductUnit(req.Unit),
		VAT:                 req.VAT,
		LowEmissionDiscount: req.LowEmissionDiscount,
		StartDate:           startDate,
		EndDate:             endDate,
		ModifiedBy:          actorFrom(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.productSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) GetProduct(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	product, err := s.productSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

func (s *Server) ListProducts(c *gin.Context) {
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

	products, pageInfo, err := s.productSvc.List(c.Request.Context(), productdomain.ListProductsRequest{
		Pagination: query.Pagination,
		Search:     search,
		OrderBy:    parseOrderBy(query.OrderField, query.OrderDirection),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": products, "page_info": pageInfo})
}
