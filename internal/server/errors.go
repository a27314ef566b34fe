package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/kaupunki/parking-permits/internal/customer/domain"
	emissiondomain "github.com/kaupunki/parking-permits/internal/emission/domain"
	"github.com/kaupunki/parking-permits/internal/export"
	orderdomain "github.com/kaupunki/parking-permits/internal/order/domain"
	permitdomain "github.com/kaupunki/parking-permits/internal/permit/domain"
	productdomain "github.com/kaupunki/parking-permits/internal/product/domain"
	"github.com/kaupunki/parking-permits/internal/talpa"
	vehicledomain "github.com/kaupunki/parking-permits/internal/vehicle/domain"
	zonedomain "github.com/kaupunki/parking-permits/internal/zone/domain"
	"github.com/kaupunki/parking-permits/pkg/db/queryspec"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
)

// ErrorHandlingMiddleware renders the last handler error as the JSON error
// envelope when the handler wrote no response itself.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return ErrInvalidRequest
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}

	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{Type: "unauthorized", Message: "unauthorized"}

	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: err.Error()}

	case isDomainConflictError(err):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}

	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{Type: "validation_error", Message: err.Error()}

	case errors.Is(err, talpa.ErrUpstream):
		return http.StatusBadGateway, errorPayload{Type: "upstream_error", Message: "payment platform unavailable"}

	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, permitdomain.ErrPermitNotFound),
		errors.Is(err, customerdomain.ErrCustomerNotFound),
		errors.Is(err, customerdomain.ErrAddressNotFound),
		errors.Is(err, vehicledomain.ErrVehicleNotFound),
		errors.Is(err, zonedomain.ErrZoneNotFound),
		errors.Is(err, productdomain.ErrProductNotFound),
		errors.Is(err, emissiondomain.ErrCriteriaNotFound),
		errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, orderdomain.ErrRefundNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isDomainConflictError(err error) bool {
	switch {
	case errors.Is(err, permitdomain.ErrPermitLimitExceeded),
		errors.Is(err, permitdomain.ErrPermitCanNotBeEnded),
		errors.Is(err, permitdomain.ErrRefundCanNotBeCreated),
		errors.Is(err, orderdomain.ErrRefundAlreadyExists):
		return true
	default:
		return false
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, permitdomain.ErrRefundError),
		errors.Is(err, permitdomain.ErrUpdatePermit),
		errors.Is(err, zonedomain.ErrMultipleZones),
		errors.Is(err, talpa.ErrMissingPermitID),
		errors.Is(err, export.ErrUnknownEntity),
		errors.Is(err, queryspec.ErrUnknownField),
		errors.Is(err, queryspec.ErrUnknownOperator):
		return true
	default:
		return false
	}
}
