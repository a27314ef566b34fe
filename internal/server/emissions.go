package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	emissiondomain "github.com/kaupunki/parking-permits/internal/emission/domain"
	vehicledomain "github.com/kaupunki/parking-permits/internal/vehicle/domain"
)

type criteriaRequest struct {
	PowerType            string `json:"power_type"`
	NEDCMaxEmissionLimit *int   `json:"nedc_max_emission_limit"`
	WLTPMaxEmissionLimit *int   `json:"wltp_max_emission_limit"`
	EuroMinClassLimit    int    `json:"euro_min_class_limit"`
	StartDate            string `json:"start_date"`
	EndDate              string `json:"end_date"`
}

func (s *Server) CreateLowEmissionCriteria(c *gin.Context) {
	var req criteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
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

	criteria, err := s.emissionSvc.Create(c.Request.Context(), emissiondomain.CreateCriteriaRequest{
		PowerType:            vehicledomain.PowerType(req.PowerType),
		NEDCMaxEmissionLimit: req.NEDCMaxEmissionLimit,
		WLTPMaxEmissionLimit: req.WLTPMaxEmissionLimit,
		EuroMinClassLimit:    req.EuroMinClassLimit,
		StartDate:            startDate,
		EndDate:              endDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": criteria})
}

func (s *Server) UpdateLowEmissionCriteria(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req criteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
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

	criteria, err := s.emissionSvc.Update(c.Request.Context(), emissiondomain.UpdateCriteriaRequest{
		ID:                   id,
		PowerType:            vehicledomain.PowerType(req.PowerType),
		NEDCMaxEmissionLimit: req.NEDCMaxEmissionLimit,
		WLTPMaxEmissionLimit: req.WLTPMaxEmissionLimit,
		EuroMinClassLimit:    req.EuroMinClassLimit,
		StartDate:            startDate,
		EndDate:              endDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": criteria})
}

func (s *Server) DeleteLowEmissionCriteria(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.emissionSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) GetLowEmissionCriteria(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	criteria, err := s.emissionSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": criteria})
}

func (s *Server) ListLowEmissionCriteria(c *gin.Context) {
	criteria, err := s.emissionSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": criteria})
}
