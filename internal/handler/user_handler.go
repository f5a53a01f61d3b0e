package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/apperror"
	"backend/pkg/authz"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHandler exposes account management. All routes except self-register
// sit behind the authorization gate with Users function permissions.
type UserHandler struct {
	userService service.UserService
	gate        *middleware.Gate
}

func NewUserHandler(userService service.UserService, gate *middleware.Gate) *UserHandler {
	return &UserHandler{userService: userService, gate: gate}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Open registration: new accounts always start with the Basic role.
	router.POST("/api/users/self-register", h.SelfRegister)

	users := router.Group("/api/users")
	users.Use(h.gate.Authenticate())
	{
		users.GET("/search", h.gate.RequirePermission(authz.FunctionUsers, authz.ActionSearch), h.SearchUsers)
		users.GET("/:id", h.gate.RequirePermission(authz.FunctionUsers, authz.ActionView), h.GetUser)
		users.POST("/create", h.gate.RequirePermission(authz.FunctionUsers, authz.ActionCreate), h.CreateUser)
		users.PUT("/update/:id", h.gate.RequirePermission(authz.FunctionUsers, authz.ActionUpdate), h.UpdateUser)
		users.POST("/toggle-status", h.gate.RequirePermission(authz.FunctionUsers, authz.ActionUpdate), h.ToggleStatus)
		users.PUT("/:id/roles", h.gate.RequirePermission(authz.FunctionUsers, authz.ActionUpdate), h.AssignRoles)
		users.DELETE("/:id", h.gate.RequirePermission(authz.FunctionUsers, authz.ActionDelete), h.DeleteUser)
	}
}

// SearchUsers lists users matching a keyword filter
// @Summary      Search users
// @Description  Returns a page of users matching the keyword and status filters
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        keyword   query     string  false  "Matches name, username and email"
// @Param        isActive  query     bool    false  "Filter on account status"
// @Param        page      query     int     false  "Page number"
// @Param        limit     query     int     false  "Page size"
// @Success      200       {object}  response.Response{data=pagination.PageResponse[service.UserResponse]}
// @Failure      401       {object}  response.ErrorResult
// @Failure      403       {object}  response.ErrorResult
// @Router       /api/users/search [get]
func (h *UserHandler) SearchUsers(c *gin.Context) {
	var req service.SearchUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abort(c, apperror.Validation("Invalid query parameters.", err.Error()))
		return
	}

	page, err := h.userService.Search(c.Request.Context(), req, pagination.Parse(c))
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, page))
}

// GetUser returns one user
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      404  {object}  response.ErrorResult
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abort(c, apperror.Validation("Invalid user id."))
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// CreateUser creates an account with an explicit role set
// @Summary      Create a user
// @Description  Creates an account with the given roles, defaulting to Basic
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateUserRequest  true  "New account"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      409      {object}  response.ErrorResult
// @Router       /api/users/create [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, apperror.Validation("Invalid request payload.", err.Error()))
		return
	}

	user, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// SelfRegister creates an account with the Basic role
// @Summary      Register an account
// @Description  Open registration; the new account always gets the Basic role
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SelfRegisterRequest  true  "New account"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      409      {object}  response.ErrorResult
// @Router       /api/users/self-register [post]
func (h *UserHandler) SelfRegister(c *gin.Context) {
	var req service.SelfRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, apperror.Validation("Invalid request payload.", err.Error()))
		return
	}

	user, err := h.userService.SelfRegister(c.Request.Context(), req)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// UpdateUser updates a user's profile fields
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "User id"
// @Param        payload  body      service.UpdateUserRequest  true  "Profile fields"
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Failure      404      {object}  response.ErrorResult
// @Router       /api/users/update/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abort(c, apperror.Validation("Invalid user id."))
		return
	}

	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, apperror.Validation("Invalid request payload.", err.Error()))
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, req)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// ToggleStatus flips a user between active and inactive
// @Summary      Toggle a user's status
// @Description  Activates or deactivates the account. Administrator accounts cannot be deactivated.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ToggleStatusRequest  true  "Target user"
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Failure      409      {object}  response.ErrorResult
// @Router       /api/users/toggle-status [post]
func (h *UserHandler) ToggleStatus(c *gin.Context) {
	var req service.ToggleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, apperror.Validation("Invalid request payload.", err.Error()))
		return
	}

	user, err := h.userService.ToggleStatus(c.Request.Context(), req.UserID)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// DeleteUser soft-deletes an account
// @Summary      Delete a user
// @Description  Marks the account deleted and deactivates it; the record is kept. Administrator accounts are protected.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.ErrorResult
// @Failure      409  {object}  response.ErrorResult
// @Router       /api/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abort(c, apperror.Validation("Invalid user id."))
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "User deleted."}))
}

// AssignRoles replaces a user's role set
// @Summary      Assign roles to a user
// @Description  Replaces the user's roles. The root admin always keeps the Admin role.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "User id"
// @Param        payload  body      service.AssignRolesRequest  true  "Role names"
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Failure      409      {object}  response.ErrorResult
// @Router       /api/users/{id}/roles [put]
func (h *UserHandler) AssignRoles(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abort(c, apperror.Validation("Invalid user id."))
		return
	}

	var req service.AssignRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, apperror.Validation("Invalid request payload.", err.Error()))
		return
	}

	user, err := h.userService.AssignRoles(c.Request.Context(), id, req)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}
