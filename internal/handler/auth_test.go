package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joblane/platform/config"
	"github.com/joblane/platform/internal/constants"
	"github.com/joblane/platform/internal/model"
	"github.com/joblane/platform/internal/service"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// singleUserStore backs the handler tests with exactly one account.
type singleUserStore struct {
	user model.User
}

func (s *singleUserStore) GetByID(_ context.Context, id uint) (*model.User, error) {
	if id != s.user.ID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := s.user
	return &copied, nil
}

func (s *singleUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if email != s.user.Email {
		return nil, gorm.ErrRecordNotFound
	}
	copied := s.user
	return &copied, nil
}

func (s *singleUserStore) Create(_ context.Context, _ *model.User) error { return nil }

func (s *singleUserStore) Update(_ context.Context, _ uint, _ *model.User) error { return nil }

func (s *singleUserStore) UpdatePassword(_ context.Context, _ uint, _ string) error { return nil }

func (s *singleUserStore) UpdateRefreshToken(_ context.Context, id uint, token string) error {
	if id != s.user.ID {
		return gorm.ErrRecordNotFound
	}
	s.user.RefreshToken = &token
	return nil
}

func (s *singleUserStore) ClearRefreshToken(_ context.Context, id uint) error {
	if id != s.user.ID {
		return gorm.ErrRecordNotFound
	}
	s.user.RefreshToken = nil
	return nil
}

func (s *singleUserStore) UpdateLastLogin(_ context.Context, _ uint) error { return nil }

func (s *singleUserStore) MarkEmailVerified(_ context.Context, _ uint) error { return nil }

func newLoginEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3r-secret"), 10)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	store := &singleUserStore{user: model.User{
		Model:        gorm.Model{ID: 1},
		Name:         "Dana Reyes",
		Email:        "dana@example.com",
		Role:         "candidate",
		PasswordHash: string(hash),
	}}

	tokens := service.NewTokenService(config.TokenConfig{
		AccessSecret:  "access-secret-for-tests",
		AccessTTL:     15 * time.Minute,
		RefreshSecret: "refresh-secret-for-tests",
		RefreshTTL:    7 * 24 * time.Hour,
	})
	auth := service.NewAuthService(
		store,
		service.NewPasswordHasher(),
		tokens,
		service.NewRefreshTokenStore(store),
		service.NewVerificationService(tokens, nil),
		nil,
	)

	engine := gin.New()
	h := NewAuthHandler(auth, tokens, false)
	engine.POST("/api/v1/auth/login", h.Login)
	return engine
}

func postLogin(engine *gin.Engine, email, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestLogin_SetsSessionCookies(t *testing.T) {
	engine := newLoginEngine(t)

	rec := postLogin(engine, "dana@example.com", "Sup3r-secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	cookies := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}

	access, ok := cookies[constants.CookieAccessToken]
	if !ok || access.Value == "" {
		t.Fatal("access token cookie not set")
	}
	if !access.HttpOnly {
		t.Error("access token cookie must be HttpOnly")
	}

	refresh, ok := cookies[constants.CookieRefreshToken]
	if !ok || refresh.Value == "" {
		t.Fatal("refresh token cookie not set")
	}
	if !refresh.HttpOnly {
		t.Error("refresh token cookie must be HttpOnly")
	}

	session, ok := cookies[constants.CookieSession]
	if !ok || session.Value == "" {
		t.Fatal("session marker cookie not set")
	}
	if session.HttpOnly {
		t.Error("session marker must be readable by the page gate client code")
	}
}

func TestLogin_ResponseBodyCarriesSanitizedUser(t *testing.T) {
	engine := newLoginEngine(t)

	rec := postLogin(engine, "dana@example.com", "Sup3r-secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Token == "" {
		t.Error("response is missing the access token")
	}
	if payload.User.Email != "dana@example.com" {
		t.Errorf("unexpected user email: %q", payload.User.Email)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("password")) {
		t.Error("response body leaks password material")
	}
}

// Unknown account and wrong password must produce identical responses.
func TestLogin_UniformFailureResponses(t *testing.T) {
	engine := newLoginEngine(t)

	unknown := postLogin(engine, "nobody@example.com", "Sup3r-secret")
	wrong := postLogin(engine, "dana@example.com", "bad-passw0rd")

	if unknown.Code != http.StatusUnauthorized || wrong.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", unknown.Code, wrong.Code)
	}
	if unknown.Body.String() != wrong.Body.String() {
		t.Errorf("failure responses differ:\n%s\n%s", unknown.Body.String(), wrong.Body.String())
	}
}
