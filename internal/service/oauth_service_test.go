package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperror"
	"backend/pkg/authz"
)

func newOAuthFixture(t *testing.T, googleHandler, facebookHandler http.HandlerFunc) (OAuthService, *fakeUserRepo) {
	t.Helper()

	google := httptest.NewServer(googleHandler)
	t.Cleanup(google.Close)
	facebook := httptest.NewServer(facebookHandler)
	t.Cleanup(facebook.Close)

	cfg := testConfig()
	cfg.GoogleClientID = "client-123"
	cfg.GoogleTokenInfoURL = google.URL
	cfg.FacebookGraphURL = facebook.URL

	users := newFakeUserRepo()
	roles := newFakeRoleRepo(
		model.Role{Name: authz.RoleAdmin},
		model.Role{Name: authz.RoleBasic},
	)
	recorder, _ := newTestRecorder()
	tokens := NewTokenService(users, cfg)
	svc := NewOAuthService(users, roles, tokens, recorder, cfg)
	return svc, users
}

func googleOK(aud string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"aud": "%s",
			"email": "jane@example.com",
			"email_verified": "true",
			"given_name": "Jane",
			"family_name": "Doe",
			"picture": "https://example.com/jane.png"
		}`, aud)
	}
}

func facebookOK() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"email": "john@example.com",
			"first_name": "John",
			"last_name": "Smith",
			"picture": {"data": {"url": "https://example.com/john.png"}}
		}`)
	}
}

func rejectAll(w http.ResponseWriter, r *http.Request) {
	http.Error(w, `{"error": "invalid token"}`, http.StatusBadRequest)
}

func TestGoogleSignInProvisionsNewUser(t *testing.T) {
	svc, users := newOAuthFixture(t, googleOK("client-123"), rejectAll)

	resp, err := svc.GoogleSignIn(context.Background(), GoogleSignInRequest{IDToken: "token"}, "10.0.0.1")
	if err != nil {
		t.Fatalf("GoogleSignIn() error = %v", err)
	}
	if resp.Token == "" || resp.RefreshToken == "" {
		t.Error("sign-in returned empty token pair")
	}

	user, err := users.GetByEmail(context.Background(), "jane@example.com")
	if err != nil {
		t.Fatalf("provisioned user not found: %v", err)
	}
	if !user.EmailConfirmed {
		t.Error("external account should start confirmed")
	}
	if !user.HasRole(authz.RoleBasic) {
		t.Errorf("roles = %v, want Basic", user.RoleNames())
	}
	if user.Password != "" {
		t.Error("external account must carry no local credential")
	}
}

func TestGoogleSignInRejectsWrongAudience(t *testing.T) {
	svc, _ := newOAuthFixture(t, googleOK("someone-else"), rejectAll)

	_, err := svc.GoogleSignIn(context.Background(), GoogleSignInRequest{IDToken: "token"}, "10.0.0.1")
	appErr, ok := apperror.As(err)
	if !ok || appErr.StatusCode != 401 {
		t.Fatalf("wrong audience: error = %v, want 401", err)
	}
}

func TestGoogleSignInRejectsProviderError(t *testing.T) {
	svc, _ := newOAuthFixture(t, rejectAll, rejectAll)

	_, err := svc.GoogleSignIn(context.Background(), GoogleSignInRequest{IDToken: "bad"}, "10.0.0.1")
	appErr, ok := apperror.As(err)
	if !ok || appErr.StatusCode != 401 {
		t.Fatalf("provider rejection: error = %v, want 401", err)
	}
}

func TestFacebookSignInProvisionsNewUser(t *testing.T) {
	svc, users := newOAuthFixture(t, rejectAll, facebookOK())

	if _, err := svc.FacebookSignIn(context.Background(), FacebookSignInRequest{AccessToken: "token"}, "10.0.0.1"); err != nil {
		t.Fatalf("FacebookSignIn() error = %v", err)
	}

	user, err := users.GetByEmail(context.Background(), "john@example.com")
	if err != nil {
		t.Fatalf("provisioned user not found: %v", err)
	}
	if user.FirstName != "John" || user.LastName != "Smith" {
		t.Errorf("name = %s %s, want John Smith", user.FirstName, user.LastName)
	}
	if user.ImageURL != "https://example.com/john.png" {
		t.Errorf("imageUrl = %q", user.ImageURL)
	}
}

func TestExternalSignInRejectsInactiveUser(t *testing.T) {
	svc, users := newOAuthFixture(t, googleOK("client-123"), rejectAll)

	existing := model.User{
		Email:    "jane@example.com",
		Username: "jane",
		IsActive: false,
	}
	if err := users.Create(context.Background(), &existing); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	_, err := svc.GoogleSignIn(context.Background(), GoogleSignInRequest{IDToken: "token"}, "10.0.0.1")
	appErr, ok := apperror.As(err)
	if !ok || appErr.StatusCode != 401 {
		t.Fatalf("inactive external sign-in: error = %v, want 401", err)
	}
	if appErr.Message != "User Not Active. Please contact the administrator." {
		t.Errorf("message = %q", appErr.Message)
	}
}

func TestExternalSignInReusesExistingUser(t *testing.T) {
	svc, users := newOAuthFixture(t, googleOK("client-123"), rejectAll)

	existing := model.User{
		Email:    "jane@example.com",
		Username: "jane",
		IsActive: true,
	}
	if err := users.Create(context.Background(), &existing); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	if _, err := svc.GoogleSignIn(context.Background(), GoogleSignInRequest{IDToken: "token"}, "10.0.0.1"); err != nil {
		t.Fatalf("GoogleSignIn() error = %v", err)
	}
	if len(users.users) != 1 {
		t.Errorf("user count = %d, want 1 (no duplicate provisioning)", len(users.users))
	}
}
