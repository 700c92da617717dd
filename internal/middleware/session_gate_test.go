package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/joblane/platform/internal/constants"
)

func TestDecideGate(t *testing.T) {
	tests := []struct {
		name         string
		hasCookie    bool
		path         string
		wantRedirect bool
		wantLocation string
	}{
		{name: "anonymous on home", hasCookie: false, path: "/", wantRedirect: false},
		{name: "anonymous on login", hasCookie: false, path: "/login", wantRedirect: false},
		{name: "anonymous on register", hasCookie: false, path: "/register", wantRedirect: false},
		{name: "session on home", hasCookie: true, path: "/", wantRedirect: false},
		{name: "session on login", hasCookie: true, path: "/login", wantRedirect: true, wantLocation: "/"},
		{name: "session on register", hasCookie: true, path: "/register", wantRedirect: true, wantLocation: "/"},
		{name: "session on api path", hasCookie: true, path: "/api/v1/auth/login", wantRedirect: false},
		{name: "session on static asset", hasCookie: true, path: "/static/app.js", wantRedirect: false},
		{name: "session on unknown page", hasCookie: true, path: "/jobs", wantRedirect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := DecideGate(tt.hasCookie, tt.path)
			if decision.Redirect != tt.wantRedirect {
				t.Fatalf("DecideGate(%v, %q).Redirect = %v, want %v",
					tt.hasCookie, tt.path, decision.Redirect, tt.wantRedirect)
			}
			if decision.Redirect && decision.Location != tt.wantLocation {
				t.Errorf("redirect location = %q, want %q", decision.Location, tt.wantLocation)
			}
		})
	}
}

func TestSessionGate_RedirectsSignedInVisitor(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(SessionGate())
	engine.GET("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieSession, Value: "1"})
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %q", loc)
	}
}

func TestSessionGate_PassesAnonymousVisitor(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(SessionGate())
	engine.GET("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

// An expired or garbage marker still counts as presence: the gate never
// verifies, it only routes.
func TestSessionGate_DoesNotInspectCookieValue(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(SessionGate())
	engine.GET("/register", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/register", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieSession, Value: "stale-garbage"})
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
}
