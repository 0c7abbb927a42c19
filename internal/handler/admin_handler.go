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

// AdminHandler handles engine administration HTTP requests
type AdminHandler struct {
	accessService service.AccessService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(accessService service.AccessService) *AdminHandler {
	return &AdminHandler{accessService: accessService}
}

// Initialize handles POST /admin/initialize
func (h *AdminHandler) Initialize(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.initialize")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.InitializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(attribute.String("admin", req.Admin))

	if err := h.accessService.Initialize(ctx, &req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Created(c, gin.H{"admin": req.Admin})
}

// GrantRole handles POST /admin/roles
func (h *AdminHandler) GrantRole(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.grant_role")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	caller, ok := middleware.GetCallerAddress(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "caller identity is required")
		return
	}

	var req dto.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("role", req.Role),
		attribute.String("address", req.Address),
	)

	if err := h.accessService.GrantRole(ctx, domain.Address(caller), &req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, gin.H{"role": req.Role, "address": req.Address})
}

// RevokeRole handles DELETE /admin/roles
func (h *AdminHandler) RevokeRole(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.revoke_role")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	caller, ok := middleware.GetCallerAddress(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "caller identity is required")
		return
	}

	var req dto.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.accessService.RevokeRole(ctx, domain.Address(caller), &req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, gin.H{"role": req.Role, "address": req.Address})
}

// AddCreator handles POST /admin/creators
func (h *AdminHandler) AddCreator(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.add_creator")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	caller, ok := middleware.GetCallerAddress(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "caller identity is required")
		return
	}

	var req dto.AddCreatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(attribute.String("creator_id", req.CreatorID))

	if err := h.accessService.AddCreator(ctx, domain.Address(caller), &req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Created(c, dto.CreatorResponse{CreatorID: req.CreatorID, Address: req.Address})
}

// RemoveCreator handles DELETE /admin/creators/:id
func (h *AdminHandler) RemoveCreator(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.remove_creator")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	caller, ok := middleware.GetCallerAddress(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "caller identity is required")
		return
	}

	creatorID := c.Param("id")
	span.SetAttributes(attribute.String("creator_id", creatorID))

	if err := h.accessService.RemoveCreator(ctx, domain.Address(caller), domain.CreatorID(creatorID)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, gin.H{"creator_id": creatorID})
}

// GetCreator handles GET /admin/creators/:id
func (h *AdminHandler) GetCreator(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.get_creator")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	creatorID := c.Param("id")
	span.SetAttributes(attribute.String("creator_id", creatorID))

	result, err := h.accessService.GetCreator(ctx, domain.CreatorID(creatorID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// CreateUser handles POST /admin/users
func (h *AdminHandler) CreateUser(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.create_user")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	caller, ok := middleware.GetCallerAddress(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "caller identity is required")
		return
	}

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(attribute.String("user_id", req.UserID))

	if err := h.accessService.CreateUser(ctx, domain.Address(caller), &req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Created(c, gin.H{"user_id": req.UserID, "address": req.Address})
}
