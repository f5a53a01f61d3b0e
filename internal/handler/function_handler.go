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

// FunctionHandler exposes the function/action catalog the permission matrix
// is built from. Catalog changes require Roles function permissions since
// they reshape what can be granted.
type FunctionHandler struct {
	functionService service.FunctionService
	gate            *middleware.Gate
}

func NewFunctionHandler(functionService service.FunctionService, gate *middleware.Gate) *FunctionHandler {
	return &FunctionHandler{functionService: functionService, gate: gate}
}

func (h *FunctionHandler) RegisterRoutes(router *gin.RouterGroup) {
	// The catalog lives under the roles surface since it defines what a
	// role can be granted.
	roles := router.Group("/api/roles")
	roles.Use(h.gate.Authenticate())
	{
		roles.GET("/functions", h.gate.RequirePermission(authz.FunctionRoles, authz.ActionView), h.ListFunctions)
		roles.GET("/function/:id", h.gate.RequirePermission(authz.FunctionRoles, authz.ActionView), h.GetFunction)
		roles.POST("/function/create/update", h.gate.RequirePermission(authz.FunctionRoles, authz.ActionCreate), h.CreateOrUpdateFunction)
		roles.DELETE("/function/:id", h.gate.RequirePermission(authz.FunctionRoles, authz.ActionDelete), h.DeleteFunction)
		roles.GET("/actions", h.gate.RequirePermission(authz.FunctionRoles, authz.ActionView), h.ListActions)
	}
}

// ListFunctions returns the function catalog
// @Summary      List functions
// @Tags         functions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.FunctionResponse}
// @Failure      403  {object}  response.ErrorResult
// @Router       /api/roles/functions [get]
func (h *FunctionHandler) ListFunctions(c *gin.Context) {
	functions, err := h.functionService.List(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, functions))
}

// GetFunction returns one function with its valid actions
// @Summary      Get a function
// @Tags         functions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Function id"
// @Success      200  {object}  response.Response{data=service.FunctionResponse}
// @Failure      404  {object}  response.ErrorResult
// @Router       /api/roles/function/{id} [get]
func (h *FunctionHandler) GetFunction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abort(c, apperror.Validation("Invalid function id."))
		return
	}

	fn, err := h.functionService.GetByID(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, fn))
}

// CreateOrUpdateFunction creates or updates a catalog entry
// @Summary      Create or update a function
// @Description  Creates a function when no id is given, otherwise updates it, reconciling its valid action set
// @Tags         functions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateOrUpdateFunctionRequest  true  "Function"
// @Success      200      {object}  response.Response{data=service.FunctionResponse}
// @Failure      404      {object}  response.ErrorResult
// @Router       /api/roles/function/create/update [post]
func (h *FunctionHandler) CreateOrUpdateFunction(c *gin.Context) {
	var req service.CreateOrUpdateFunctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, apperror.Validation("Invalid request payload.", err.Error()))
		return
	}

	fn, err := h.functionService.CreateOrUpdate(c.Request.Context(), req)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, fn))
}

// DeleteFunction removes a catalog entry
// @Summary      Delete a function
// @Description  Removes a function and its action links. Functions referenced by any grant are protected.
// @Tags         functions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Function id"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.ErrorResult
// @Router       /api/roles/function/{id} [delete]
func (h *FunctionHandler) DeleteFunction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abort(c, apperror.Validation("Invalid function id."))
		return
	}

	if err := h.functionService.Delete(c.Request.Context(), id); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Function deleted."}))
}

// ListActions returns every known action
// @Summary      List actions
// @Tags         functions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.ActionResponse}
// @Failure      403  {object}  response.ErrorResult
// @Router       /api/roles/actions [get]
func (h *FunctionHandler) ListActions(c *gin.Context) {
	actions, err := h.functionService.ListActions(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, actions))
}
