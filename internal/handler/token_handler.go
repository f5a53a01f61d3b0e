package handler

import (
	"net/http"

	"backend/internal/service"
	"backend/pkg/apperror"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// TokenHandler exposes the credential-based token endpoints. Both routes are
// anonymous; they are how a caller obtains credentials in the first place.
type TokenHandler struct {
	tokenService service.TokenService
}

func NewTokenHandler(tokenService service.TokenService) *TokenHandler {
	return &TokenHandler{tokenService: tokenService}
}

func (h *TokenHandler) RegisterRoutes(router *gin.RouterGroup) {
	tokens := router.Group("/api/tokens")
	{
		tokens.POST("/get", h.GetToken)
		tokens.POST("/refresh", h.RefreshToken)
	}
}

// GetToken authenticates by email and password
// @Summary      Request an access token
// @Description  Authenticates a user by email and password, returning an access/refresh token pair
// @Tags         tokens
// @Accept       json
// @Produce      json
// @Param        payload  body      service.TokenRequest  true  "Credentials"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      401      {object}  response.ErrorResult
// @Router       /api/tokens/get [post]
func (h *TokenHandler) GetToken(c *gin.Context) {
	var req service.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, apperror.Validation("Invalid request payload.", err.Error()))
		return
	}

	tokens, err := h.tokenService.GetToken(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokens))
}

// RefreshToken rotates the token pair
// @Summary      Refresh an access token
// @Description  Exchanges an expired access token plus its refresh token for a new pair. Refresh tokens are single use.
// @Tags         tokens
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshTokenRequest  true  "Current token pair"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      401      {object}  response.ErrorResult
// @Router       /api/tokens/refresh [post]
func (h *TokenHandler) RefreshToken(c *gin.Context) {
	var req service.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, apperror.Validation("Invalid request payload.", err.Error()))
		return
	}

	tokens, err := h.tokenService.RefreshToken(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokens))
}

// abort records the error for the error-handling middleware and stops the
// chain.
func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
