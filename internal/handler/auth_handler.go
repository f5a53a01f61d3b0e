package handler

import (
	"net/http"

	"backend/internal/service"
	"backend/pkg/apperror"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler exposes the external-provider sign-in endpoints.
type AuthHandler struct {
	oauthService service.OAuthService
}

func NewAuthHandler(oauthService service.OAuthService) *AuthHandler {
	return &AuthHandler{oauthService: oauthService}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/google", h.GoogleSignIn)
		auth.POST("/facebook", h.FacebookSignIn)
	}
}

// GoogleSignIn signs in with a Google ID token
// @Summary      Sign in with Google
// @Description  Verifies a Google ID token and signs the owner in, provisioning an account on first contact
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.GoogleSignInRequest  true  "Google ID token"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      401      {object}  response.ErrorResult
// @Router       /api/auth/google [post]
func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req service.GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, apperror.Validation("Invalid request payload.", err.Error()))
		return
	}

	tokens, err := h.oauthService.GoogleSignIn(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokens))
}

// FacebookSignIn signs in with a Facebook access token
// @Summary      Sign in with Facebook
// @Description  Verifies a Facebook access token through the Graph API and signs the owner in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.FacebookSignInRequest  true  "Facebook access token"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      401      {object}  response.ErrorResult
// @Router       /api/auth/facebook [post]
func (h *AuthHandler) FacebookSignIn(c *gin.Context) {
	var req service.FacebookSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, apperror.Validation("Invalid request payload.", err.Error()))
		return
	}

	tokens, err := h.oauthService.FacebookSignIn(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokens))
}
