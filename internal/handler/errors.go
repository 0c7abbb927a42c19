package handler

import (
	"errors"
	"net/http"

	"github.com/Svg70/crypto-booking/internal/domain"
	"github.com/Svg70/crypto-booking/pkg/response"
	"github.com/gin-gonic/gin"
)

// handleError converts domain errors to HTTP responses
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrAlreadyInitialized):
		response.Error(c, http.StatusConflict, "ALREADY_INITIALIZED", err.Error(), "")
	case errors.Is(err, domain.ErrNotInitialized):
		response.Error(c, http.StatusConflict, "NOT_INITIALIZED", err.Error(), "")
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrNotEventOwner):
		response.Forbidden(c, err.Error())
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrEventAlreadyExists):
		response.Error(c, http.StatusConflict, "EVENT_ALREADY_EXISTS", err.Error(), "")
	case errors.Is(err, domain.ErrEventDeclined):
		response.Error(c, http.StatusConflict, "EVENT_DECLINED", err.Error(), "")
	case errors.Is(err, domain.ErrEventExpired):
		response.Error(c, http.StatusConflict, "EVENT_EXPIRED", err.Error(), "")
	case errors.Is(err, domain.ErrCapacityExceeded):
		response.Error(c, http.StatusConflict, "CAPACITY_EXCEEDED", err.Error(), "")
	case errors.Is(err, domain.ErrWrongUserAddress):
		response.UnprocessableEntity(c, "WRONG_USER_ADDRESS", err.Error())
	case errors.Is(err, domain.ErrInsufficientBalance):
		response.Error(c, http.StatusPaymentRequired, "INSUFFICIENT_BALANCE", err.Error(), "")
	case errors.Is(err, domain.ErrInsufficientAllowance):
		response.Error(c, http.StatusPaymentRequired, "INSUFFICIENT_ALLOWANCE", err.Error(), "")
	case domain.IsValidationError(err), errors.Is(err, domain.ErrOverflow):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
