package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"backend/internal/audit"
	"backend/internal/config"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"
	"backend/pkg/authz"
)

// --- DTOs ---

type GoogleSignInRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

type FacebookSignInRequest struct {
	AccessToken string `json:"accessToken" binding:"required"`
}

// externalProfile is the provider-neutral identity extracted from a verified
// provider token.
type externalProfile struct {
	Email     string
	FirstName string
	LastName  string
	ImageURL  string
}

// OAuthService verifies external provider tokens and signs the owner in,
// provisioning a local account on first contact.
type OAuthService interface {
	GoogleSignIn(ctx context.Context, req GoogleSignInRequest, ipAddress string) (*TokenResponse, error)
	FacebookSignIn(ctx context.Context, req FacebookSignInRequest, ipAddress string) (*TokenResponse, error)
}

type oauthService struct {
	users    repository.UserRepository
	roles    repository.RoleRepository
	tokens   TokenService
	recorder *audit.Recorder
	cfg      *config.Config
	client   *http.Client
}

// NewOAuthService returns a new instance of OAuthService.
func NewOAuthService(
	users repository.UserRepository,
	roles repository.RoleRepository,
	tokens TokenService,
	recorder *audit.Recorder,
	cfg *config.Config,
) OAuthService {
	return &oauthService{
		users:    users,
		roles:    roles,
		tokens:   tokens,
		recorder: recorder,
		cfg:      cfg,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *oauthService) GoogleSignIn(ctx context.Context, req GoogleSignInRequest, ipAddress string) (*TokenResponse, error) {
	profile, err := s.verifyGoogleToken(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}
	return s.signInExternal(ctx, profile, ipAddress)
}

func (s *oauthService) FacebookSignIn(ctx context.Context, req FacebookSignInRequest, ipAddress string) (*TokenResponse, error) {
	profile, err := s.verifyFacebookToken(ctx, req.AccessToken)
	if err != nil {
		return nil, err
	}
	return s.signInExternal(ctx, profile, ipAddress)
}

// verifyGoogleToken validates the ID token against Google's tokeninfo
// endpoint and checks the audience matches our client id.
func (s *oauthService) verifyGoogleToken(ctx context.Context, idToken string) (*externalProfile, error) {
	endpoint := s.cfg.GoogleTokenInfoURL + "?id_token=" + url.QueryEscape(idToken)

	var payload struct {
		Aud           string `json:"aud"`
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		GivenName     string `json:"given_name"`
		FamilyName    string `json:"family_name"`
		Picture       string `json:"picture"`
	}
	if err := s.fetchJSON(ctx, endpoint, &payload); err != nil {
		return nil, apperror.Unauthorized("Invalid External Token.")
	}

	if payload.Aud != s.cfg.GoogleClientID || payload.Email == "" {
		return nil, apperror.Unauthorized("Invalid External Token.")
	}

	return &externalProfile{
		Email:     payload.Email,
		FirstName: payload.GivenName,
		LastName:  payload.FamilyName,
		ImageURL:  payload.Picture,
	}, nil
}

// verifyFacebookToken resolves the access token owner through the Graph API.
func (s *oauthService) verifyFacebookToken(ctx context.Context, accessToken string) (*externalProfile, error) {
	endpoint := fmt.Sprintf(
		"%s/me?fields=email,first_name,last_name,picture&access_token=%s",
		s.cfg.FacebookGraphURL, url.QueryEscape(accessToken),
	)

	var payload struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Picture   struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := s.fetchJSON(ctx, endpoint, &payload); err != nil {
		return nil, apperror.Unauthorized("Invalid External Token.")
	}

	if payload.Email == "" {
		return nil, apperror.Unauthorized("Invalid External Token.")
	}

	return &externalProfile{
		Email:     payload.Email,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		ImageURL:  payload.Picture.Data.URL,
	}, nil
}

func (s *oauthService) fetchJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// signInExternal signs an already-verified external identity in. Unknown
// emails get a local account with the Basic role; the provider has proved
// mailbox ownership so the account starts confirmed.
func (s *oauthService) signInExternal(ctx context.Context, profile *externalProfile, ipAddress string) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, profile.Email)
	if err != nil {
		user, err = s.provisionExternalUser(ctx, profile)
		if err != nil {
			return nil, err
		}
	}

	if !user.IsActive {
		return nil, apperror.Unauthorized("User Not Active. Please contact the administrator.")
	}

	return s.tokens.TokensForUser(ctx, user, ipAddress)
}

func (s *oauthService) provisionExternalUser(ctx context.Context, profile *externalProfile) (*model.User, error) {
	basicRole, err := s.roles.GetByName(ctx, authz.RoleBasic)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve default role: %w", err)
	}

	user := &model.User{
		FirstName:      profile.FirstName,
		LastName:       profile.LastName,
		Username:       strings.ToLower(profile.Email),
		Email:          strings.ToLower(profile.Email),
		Password:       "", // external accounts carry no local credential
		ImageURL:       profile.ImageURL,
		IsActive:       true,
		EmailConfirmed: true,
		Roles:          []model.Role{*basicRole},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to provision external user: %w", err)
	}

	s.recorder.Record(ctx, audit.Added("users", user))
	return user, nil
}
