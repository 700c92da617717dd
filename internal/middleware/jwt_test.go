package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joblane/platform/config"
	"github.com/joblane/platform/internal/constants"
	"github.com/joblane/platform/internal/model"
	"github.com/joblane/platform/internal/service"
	"gorm.io/gorm"
)

func newAuthTestRig(t *testing.T) (*service.TokenService, *gin.Engine, *uint) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := service.NewTokenService(config.TokenConfig{
		AccessSecret:  "access-secret-for-tests",
		AccessTTL:     15 * time.Minute,
		RefreshSecret: "refresh-secret-for-tests",
		RefreshTTL:    7 * 24 * time.Hour,
	})

	var seenUserID uint
	engine := gin.New()
	engine.Use(NewJWTMiddleware(tokens).RequireAuth())
	engine.GET("/protected", func(c *gin.Context) {
		seenUserID = c.GetUint("user_id")
		c.Status(http.StatusOK)
	})

	return tokens, engine, &seenUserID
}

func issueAccess(t *testing.T, tokens *service.TokenService) string {
	t.Helper()
	token, err := tokens.IssueAccessToken(&model.User{
		Model: gorm.Model{ID: 42},
		Email: "dana@example.com",
		Role:  "candidate",
	})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

func TestRequireAuth_BearerHeader(t *testing.T) {
	tokens, engine, seenUserID := newAuthTestRig(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issueAccess(t, tokens))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if *seenUserID != 42 {
		t.Errorf("expected user_id 42 in context, got %d", *seenUserID)
	}
}

func TestRequireAuth_CookieFallback(t *testing.T) {
	tokens, engine, seenUserID := newAuthTestRig(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieAccessToken, Value: issueAccess(t, tokens)})
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if *seenUserID != 42 {
		t.Errorf("expected user_id 42 in context, got %d", *seenUserID)
	}
}

func TestRequireAuth_MissingToken(t *testing.T) {
	_, engine, _ := newAuthTestRig(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	tokens, engine, _ := newAuthTestRig(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", issueAccess(t, tokens)) // no Bearer prefix
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

// A refresh token must never unlock a protected route.
func TestRequireAuth_RejectsRefreshToken(t *testing.T) {
	tokens, engine, _ := newAuthTestRig(t)

	refresh, err := tokens.IssueRefreshToken(&model.User{Model: gorm.Model{ID: 42}})
	if err != nil {
		t.Fatalf("failed to issue refresh token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
