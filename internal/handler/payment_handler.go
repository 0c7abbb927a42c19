package handler

import (
	"github.com/Svg70/crypto-booking/internal/domain"
	"github.com/Svg70/crypto-booking/internal/dto"
	"github.com/Svg70/crypto-booking/internal/service"
	"github.com/Svg70/crypto-booking/pkg/middleware"
	"github.com/Svg70/crypto-booking/pkg/response"
	"github.com/Svg70/crypto-booking/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PaymentHandler handles payment settlement HTTP requests
type PaymentHandler struct {
	paymentService service.PaymentService
	bookingService service.BookingService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService service.PaymentService, bookingService service.BookingService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		bookingService: bookingService,
	}
}

// Pay handles POST /payments
func (h *PaymentHandler) Pay(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.payment.pay")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	caller, ok := middleware.GetCallerAddress(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "caller identity is required")
		return
	}

	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("event_id", req.EventID),
		attribute.String("user_id", req.UserID),
		attribute.Int64("ticket_count", int64(req.TicketCount)),
	)

	result, err := h.paymentService.Pay(ctx, domain.Address(caller), &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("settlement_id", result.SettlementID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// GetSettlement handles GET /payments/:id
func (h *PaymentHandler) GetSettlement(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.payment.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	settlementID := c.Param("id")
	span.SetAttributes(attribute.String("settlement_id", settlementID))

	result, err := h.paymentService.GetSettlement(ctx, settlementID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// GetBooking handles GET /bookings/:eventID/:userID
func (h *PaymentHandler) GetBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.payment.booking")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("eventID")
	userID := c.Param("userID")
	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("user_id", userID),
	)

	result, err := h.bookingService.GetBooking(ctx, domain.EventID(eventID), domain.UserID(userID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
