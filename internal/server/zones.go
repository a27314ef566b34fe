package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	zonedomain "github.com/kaupunki/parking-permits/internal/zone/domain"
)

func (s *Server) ListZones(c *gin.Context) {
	zones, err := s.zoneSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": zones})
}

func (s *Server) GetZone(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	zone, err := s.zoneSvc.GetByName(c.Request.Context(), name)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": zone})
}

// GetZoneByLocation resolves the zone containing the given coordinate pair,
// expressed in the configured spatial reference system.
func (s *Server) GetZoneByLocation(c *gin.Context) {
	x, errX := strconv.ParseFloat(c.Query("x"), 64)
	y, errY := strconv.ParseFloat(c.Query("y"), 64)
	if errX != nil || errY != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	zone, err := s.zoneSvc.GetByLocation(c.Request.Context(), zonedomain.Location{X: x, Y: y})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": zone})
}
