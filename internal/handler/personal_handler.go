package handler

import (
	"net/http"

	"backend/internal/currentuser"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/apperror"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// PersonalHandler exposes the signed-in caller's own profile, permissions
// and activity log. Authentication only, no permission gate: everyone may
// see their own data.
type PersonalHandler struct {
	userService  service.UserService
	auditService service.AuditService
	gate         *middleware.Gate
}

func NewPersonalHandler(userService service.UserService, auditService service.AuditService, gate *middleware.Gate) *PersonalHandler {
	return &PersonalHandler{userService: userService, auditService: auditService, gate: gate}
}

func (h *PersonalHandler) RegisterRoutes(router *gin.RouterGroup) {
	personal := router.Group("/api/personal")
	personal.Use(h.gate.Authenticate())
	{
		personal.GET("/profile", h.GetProfile)
		personal.PUT("/profile", h.UpdateProfile)
		personal.GET("/permissions", h.GetPermissions)
		personal.GET("/logs", h.GetLogs)
	}
}

// GetProfile returns the caller's profile
// @Summary      Get own profile
// @Tags         personal
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      401  {object}  response.ErrorResult
// @Router       /api/personal/profile [get]
func (h *PersonalHandler) GetProfile(c *gin.Context) {
	claims, ok := currentuser.FromContext(c.Request.Context())
	if !ok {
		abort(c, apperror.Unauthorized("Authorization is missing."))
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// UpdateProfile updates the caller's own profile fields
// @Summary      Update own profile
// @Tags         personal
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.UpdateUserRequest  true  "Profile fields"
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Failure      401      {object}  response.ErrorResult
// @Router       /api/personal/profile [put]
func (h *PersonalHandler) UpdateProfile(c *gin.Context) {
	claims, ok := currentuser.FromContext(c.Request.Context())
	if !ok {
		abort(c, apperror.Unauthorized("Authorization is missing."))
		return
	}

	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, apperror.Validation("Invalid request payload.", err.Error()))
		return
	}

	user, err := h.userService.Update(c.Request.Context(), claims.UserID, req)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// GetPermissions returns the caller's resolved permission names
// @Summary      Get own permissions
// @Description  Returns the distinct permission names granted through every role the caller holds
// @Tags         personal
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]string}
// @Failure      401  {object}  response.ErrorResult
// @Router       /api/personal/permissions [get]
func (h *PersonalHandler) GetPermissions(c *gin.Context) {
	claims, ok := currentuser.FromContext(c.Request.Context())
	if !ok {
		abort(c, apperror.Unauthorized("Authorization is missing."))
		return
	}

	permissions, err := h.userService.Permissions(c.Request.Context(), claims.UserID)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, permissions))
}

// GetLogs returns the caller's audit trail
// @Summary      Get own activity log
// @Tags         personal
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=pagination.PageResponse[service.TrailResponse]}
// @Failure      401    {object}  response.ErrorResult
// @Router       /api/personal/logs [get]
func (h *PersonalHandler) GetLogs(c *gin.Context) {
	claims, ok := currentuser.FromContext(c.Request.Context())
	if !ok {
		abort(c, apperror.Unauthorized("Authorization is missing."))
		return
	}

	logs, err := h.auditService.UserTrails(c.Request.Context(), claims.UserID, pagination.Parse(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, logs))
}
