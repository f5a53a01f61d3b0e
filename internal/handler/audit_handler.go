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
)

// AuditHandler exposes the cross-user audit trail search. Gated on the
// Users function since trails expose what other accounts did.
type AuditHandler struct {
	auditService service.AuditService
	gate         *middleware.Gate
}

func NewAuditHandler(auditService service.AuditService, gate *middleware.Gate) *AuditHandler {
	return &AuditHandler{auditService: auditService, gate: gate}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	trails := router.Group("/api/trails")
	trails.Use(h.gate.Authenticate())
	{
		trails.GET("", h.gate.RequirePermission(authz.FunctionUsers, authz.ActionView), h.SearchTrails)
	}
}

// SearchTrails searches the audit trail
// @Summary      Search audit trails
// @Description  Returns a page of audit records filtered by user, table, type and time range
// @Tags         trails
// @Produce      json
// @Security     BearerAuth
// @Param        userId     query     string  false  "Acting user id"
// @Param        tableName  query     string  false  "Affected table"
// @Param        type       query     string  false  "Create, Update or Delete"
// @Param        from       query     string  false  "RFC3339 lower bound"
// @Param        to         query     string  false  "RFC3339 upper bound"
// @Param        page       query     int     false  "Page number"
// @Param        limit      query     int     false  "Page size"
// @Success      200        {object}  response.Response{data=pagination.PageResponse[service.TrailResponse]}
// @Failure      403        {object}  response.ErrorResult
// @Router       /api/trails [get]
func (h *AuditHandler) SearchTrails(c *gin.Context) {
	var req service.SearchTrailsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abort(c, apperror.Validation("Invalid query parameters.", err.Error()))
		return
	}

	trails, err := h.auditService.Search(c.Request.Context(), req, pagination.Parse(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, trails))
}
