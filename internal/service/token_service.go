package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/config"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type TokenRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	Token        string `json:"token" binding:"required"`
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type TokenResponse struct {
	Token              string    `json:"token"`
	RefreshToken       string    `json:"refreshToken"`
	RefreshTokenExpiry time.Time `json:"refreshTokenExpiryTime"`
}

// TokenService issues, validates and rotates the access/refresh token pair.
type TokenService interface {
	GetToken(ctx context.Context, req TokenRequest, ipAddress string) (*TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest, ipAddress string) (*TokenResponse, error)
	// TokensForUser mints a fresh pair and persists the rotated refresh
	// token against the user. Also used by the OAuth sign-in flow.
	TokensForUser(ctx context.Context, user *model.User, ipAddress string) (*TokenResponse, error)
}

type tokenService struct {
	users repository.UserRepository
	cfg   *config.Config
}

// NewTokenService returns a new instance of TokenService.
func NewTokenService(users repository.UserRepository, cfg *config.Config) TokenService {
	return &tokenService{users: users, cfg: cfg}
}

func (s *tokenService) GetToken(ctx context.Context, req TokenRequest, ipAddress string) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, apperror.Unauthorized("Authentication Failed.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized("Authentication Failed.")
	}

	if !user.IsActive {
		return nil, apperror.Unauthorized("User Not Active. Please contact the administrator.")
	}

	if s.cfg.RequireConfirmedAccount && !user.EmailConfirmed {
		return nil, apperror.Unauthorized("E-Mail not confirmed.")
	}

	return s.TokensForUser(ctx, user, ipAddress)
}

func (s *tokenService) RefreshToken(ctx context.Context, req RefreshTokenRequest, ipAddress string) (*TokenResponse, error) {
	email, err := s.emailFromExpiredToken(req.Token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Unauthorized("Authentication Failed.")
	}

	// The stored refresh token is the single source of truth: exact match
	// plus unexpired, otherwise reject. Each successful refresh replaces it.
	if user.RefreshToken != req.RefreshToken ||
		user.RefreshTokenExpiry == nil ||
		!user.RefreshTokenExpiry.After(time.Now().UTC()) {
		return nil, apperror.Unauthorized("Invalid Refresh Token.")
	}

	return s.TokensForUser(ctx, user, ipAddress)
}

func (s *tokenService) TokensForUser(ctx context.Context, user *model.User, ipAddress string) (*TokenResponse, error) {
	accessToken, err := s.signAccessToken(user, ipAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	expiry := time.Now().UTC().AddDate(0, 0, s.cfg.RefreshExpirationDays)
	user.RefreshToken = refreshToken
	user.RefreshTokenExpiry = &expiry

	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return &TokenResponse{
		Token:              accessToken,
		RefreshToken:       refreshToken,
		RefreshTokenExpiry: expiry,
	}, nil
}

func (s *tokenService) signAccessToken(user *model.User, ipAddress string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":       user.ID.String(),
		"email":     user.Email,
		"fullName":  user.FullName(),
		"name":      user.FirstName,
		"surname":   user.LastName,
		"ipAddress": ipAddress,
		"imageUrl":  user.ImageURL,
		"phone":     user.PhoneNumber,
		"iat":       now.Unix(),
		"exp":       now.Add(time.Duration(s.cfg.TokenExpirationMinutes) * time.Minute).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// emailFromExpiredToken recovers the claimed identity from an access token
// whose lifetime may have passed. The signature must still verify and the
// header algorithm must be exactly HS256; anything else is rejected.
func (s *tokenService) emailFromExpiredToken(tokenString string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(), // expiry intentionally not checked here
	)

	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", apperror.Unauthorized("Invalid Token.")
	}

	if alg, _ := token.Header["alg"].(string); alg != jwt.SigningMethodHS256.Alg() {
		return "", apperror.Unauthorized("Invalid Token.")
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return "", apperror.Unauthorized("Invalid Token.")
	}
	return email, nil
}

// generateRefreshToken returns a cryptographically secure random 256-bit
// value, base64-encoded.
func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
