package middleware

import (
	"context"
	"strings"

	"backend/internal/currentuser"
	"backend/pkg/apperror"
	"backend/pkg/authz"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// PermissionChecker resolves whether a user holds a named permission.
// Satisfied by service.UserService.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID uuid.UUID, permission string) (bool, error)
}

// Gate is the authentication and authorization middleware pair. Authenticate
// validates the bearer token and establishes the caller identity;
// RequirePermission checks the Function/Action grant against the database on
// every request so revocations take effect immediately.
type Gate struct {
	secret []byte
	users  PermissionChecker
}

// NewGate returns a Gate validating tokens with the given signing secret.
func NewGate(secret string, users PermissionChecker) *Gate {
	return &Gate{secret: []byte(secret), users: users}
}

// Authenticate validates the Authorization header and puts the caller
// identity on the request context. Missing or invalid credentials abort with
// 401.
func (g *Gate) Authenticate() gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *gin.Context) {
		tokenString, err := extractToken(c)
		if err != nil {
			abortWith(c, err)
			return
		}

		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return g.secret, nil
		})
		if err != nil || !token.Valid {
			abortWith(c, apperror.Unauthorized("Authentication Failed."))
			return
		}

		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			abortWith(c, apperror.Unauthorized("Authentication Failed."))
			return
		}

		email, _ := claims["email"].(string)
		fullName, _ := claims["fullName"].(string)

		ctx := currentuser.With(c.Request.Context(), currentuser.Claims{
			UserID:   userID,
			Email:    email,
			FullName: fullName,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequirePermission gates the route on the "Permissions.{Function}.{Action}"
// grant. An authenticated caller without the grant gets 403.
func (g *Gate) RequirePermission(function, action string) gin.HandlerFunc {
	permission := authz.PermissionName(function, action)

	return func(c *gin.Context) {
		claims, ok := currentuser.FromContext(c.Request.Context())
		if !ok {
			abortWith(c, apperror.Unauthorized("Authorization is missing."))
			return
		}

		allowed, err := g.users.HasPermission(c.Request.Context(), claims.UserID, permission)
		if err != nil {
			abortWith(c, err)
			return
		}
		if !allowed {
			abortWith(c, apperror.Forbidden("You are not authorized to access this resource."))
			return
		}

		c.Next()
	}
}

// extractToken tries the access_token cookie first, then falls back to the
// Authorization header.
func extractToken(c *gin.Context) (string, error) {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token, nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", apperror.Unauthorized("Authorization is missing.")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperror.Unauthorized("Invalid authorization format. Expected 'Bearer <token>'.")
	}
	return parts[1], nil
}

func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
