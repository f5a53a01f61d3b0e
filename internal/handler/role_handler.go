package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/apperror"
	"backend/pkg/authz"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RoleHandler exposes role and role-permission management.
type RoleHandler struct {
	roleService service.RoleService
	gate        *middleware.Gate
}

func NewRoleHandler(roleService service.RoleService, gate *middleware.Gate) *RoleHandler {
	return &RoleHandler{roleService: roleService, gate: gate}
}

func (h *RoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	roles := router.Group("/api/roles")
	roles.Use(h.gate.Authenticate())
	{
		roles.GET("", h.gate.RequirePermission(authz.FunctionRoles, authz.ActionView), h.ListRoles)
		roles.GET("/:id", h.gate.RequirePermission(authz.FunctionRoles, authz.ActionView), h.GetRole)
		roles.POST("/create/update", h.gate.RequirePermission(authz.FunctionRoles, authz.ActionCreate), h.CreateOrUpdateRole)
		roles.DELETE("/:id", h.gate.RequirePermission(authz.FunctionRoles, authz.ActionDelete), h.DeleteRole)
		roles.GET("/:id/permissions", h.gate.RequirePermission(authz.FunctionRoles, authz.ActionView), h.GetRolePermissions)
		roles.PUT("/:id/permissions", h.gate.RequirePermission(authz.FunctionRoles, authz.ActionUpdate), h.UpdateRolePermissions)
	}
}

// ListRoles returns every role
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.RoleResponse}
// @Failure      403  {object}  response.ErrorResult
// @Router       /api/roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roleService.List(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, roles))
}

// GetRole returns one role
// @Summary      Get a role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role id"
// @Success      200  {object}  response.Response{data=service.RoleResponse}
// @Failure      404  {object}  response.ErrorResult
// @Router       /api/roles/{id} [get]
func (h *RoleHandler) GetRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abort(c, apperror.Validation("Invalid role id."))
		return
	}

	role, err := h.roleService.GetByID(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, role))
}

// CreateOrUpdateRole creates a role, or updates it when an id is supplied
// @Summary      Create or update a role
// @Description  Creates a role when no id is given, otherwise renames/redescribes it. Built-in roles cannot be modified.
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateOrUpdateRoleRequest  true  "Role"
// @Success      200      {object}  response.Response{data=service.RoleResponse}
// @Failure      409      {object}  response.ErrorResult
// @Router       /api/roles/create/update [post]
func (h *RoleHandler) CreateOrUpdateRole(c *gin.Context) {
	var req service.CreateOrUpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, apperror.Validation("Invalid request payload.", err.Error()))
		return
	}

	role, err := h.roleService.CreateOrUpdate(c.Request.Context(), req)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, role))
}

// DeleteRole removes a custom role
// @Summary      Delete a role
// @Description  Removes a role and its grants. Built-in roles and roles still held by users are protected.
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role id"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.ErrorResult
// @Router       /api/roles/{id} [delete]
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abort(c, apperror.Validation("Invalid role id."))
		return
	}

	if err := h.roleService.Delete(c.Request.Context(), id); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Role deleted."}))
}

// GetRolePermissions returns the role's permission matrix
// @Summary      List a role's permissions
// @Description  Returns every function with every valid action, each flagged with whether the role holds the grant
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role id"
// @Success      200  {object}  response.Response{data=[]service.RolePermissionFunction}
// @Failure      404  {object}  response.ErrorResult
// @Router       /api/roles/{id}/permissions [get]
func (h *RoleHandler) GetRolePermissions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abort(c, apperror.Validation("Invalid role id."))
		return
	}

	permissions, err := h.roleService.Permissions(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, permissions))
}

// UpdateRolePermissions replaces a role's grants
// @Summary      Update a role's permissions
// @Description  Replaces the role's grant set. The Admin role's grants are fixed.
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                                true  "Role id"
// @Param        payload  body      service.UpdateRolePermissionsRequest  true  "Permission names"
// @Success      200      {object}  response.Response
// @Failure      409      {object}  response.ErrorResult
// @Router       /api/roles/{id}/permissions [put]
func (h *RoleHandler) UpdateRolePermissions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abort(c, apperror.Validation("Invalid role id."))
		return
	}

	var req service.UpdateRolePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, apperror.Validation("Invalid request payload.", err.Error()))
		return
	}

	if err := h.roleService.UpdatePermissions(c.Request.Context(), id, req); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Permissions updated."}))
}
