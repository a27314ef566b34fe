package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kaupunki/parking-permits/internal/talpa"
)

type resolveAvailabilityRequest struct {
	ProductID string `json:"productId"`
}

func (s *Server) TalpaResolveAvailability(c *gin.Context) {
	var req resolveAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	c.JSON(http.StatusOK, s.talpaSvc.ResolveAvailability(c.Request.Context(), req.ProductID))
}

type resolveItemRequest struct {
	OrderItem talpa.OrderItem `json:"orderItem"`
}

func (s *Server) TalpaResolvePrice(c *gin.Context) {
	var req resolveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.talpaSvc.ResolvePrice(c.Request.Context(), req.OrderItem.Meta)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) TalpaResolveRightOfPurchase(c *gin.Context) {
	var req resolveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.talpaSvc.ResolveRightOfPurchase(c.Request.Context(), req.OrderItem)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// TalpaOrderWebhook receives payment notifications. The order detail is
// fetched back from Talpa, so the notification body carries only references.
func (s *Server) TalpaOrderWebhook(c *gin.Context) {
	var event talpa.OrderEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if event.OrderID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.talpaSvc.ProcessOrderEvent(c.Request.Context(), event); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order received"})
}
