package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/kaupunki/parking-permits/internal/order/domain"
	"github.com/kaupunki/parking-permits/internal/providers/pdf"
	"github.com/kaupunki/parking-permits/pkg/db/pagination"
)

func (s *Server) GetOrder(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	order, err := s.orderSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order, "total_price": order.TotalPrice()})
}

func (s *Server) ListOrders(c *gin.Context) {
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

	orders, pageInfo, err := s.orderSvc.List(c.Request.Context(), orderdomain.ListOrdersRequest{
		Pagination: query.Pagination,
		Search:     search,
		OrderBy:    parseOrderBy(query.OrderField, query.OrderDirection),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orders, "page_info": pageInfo})
}

func (s *Server) GetRefund(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	refund, err := s.orderSvc.GetRefund(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": refund})
}

func (s *Server) ListRefunds(c *gin.Context) {
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

	refunds, pageInfo, err := s.orderSvc.ListRefunds(c.Request.Context(), orderdomain.ListRefundsRequest{
		Pagination: query.Pagination,
		Search:     search,
		OrderBy:    parseOrderBy(query.OrderField, query.OrderDirection),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": refunds, "page_info": pageInfo})
}

type updateRefundStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateRefundStatus(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req updateRefundStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	status := orderdomain.RefundStatus(req.Status)
	switch status {
	case orderdomain.RefundStatusOpen, orderdomain.RefundStatusAccepted, orderdomain.RefundStatusRejected:
	default:
		AbortWithError(c, invalidRequestError())
		return
	}

	refund, err := s.orderSvc.UpdateRefundStatus(c.Request.Context(), id, status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": refund})
}

func (s *Server) RefundPDF(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	refund, err := s.orderSvc.GetRefund(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reader, err := s.pdfProvider.GenerateRefund(c.Request.Context(), pdf.RefundData{
		RefundID:    refund.ID.String(),
		OrderID:     refund.OrderID.String(),
		Status:      string(refund.Status),
		HolderName:  refund.Name,
		IBAN:        refund.IBAN,
		Description: refund.Description,
		Amount:      fmt.Sprintf("%.2f EUR", float64(refund.Amount)/100),
		CreatedAt:   refund.CreatedAt.Format(finnishDateLayout),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	servePDF(c, reader, fmt.Sprintf("refund_%s.pdf", refund.ID))
}
