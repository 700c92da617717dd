package service

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joblane/platform/config"
	"github.com/joblane/platform/internal/model"
	"gorm.io/gorm"
)

func testTokenConfig() config.TokenConfig {
	return config.TokenConfig{
		AccessSecret:       "access-secret-for-tests",
		AccessTTL:          15 * time.Minute,
		RefreshSecret:      "refresh-secret-for-tests",
		RefreshTTL:         7 * 24 * time.Hour,
		VerificationSecret: "verification-secret-for-tests",
		VerificationTTL:    24 * time.Hour,
	}
}

func testUser() *model.User {
	return &model.User{
		Model: gorm.Model{ID: 42},
		Name:  "Dana Reyes",
		Email: "dana@example.com",
		Role:  "candidate",
	}
}

func TestTokenService_AccessRoundTrip(t *testing.T) {
	svc := NewTokenService(testTokenConfig())
	user := testUser()

	token, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}

	claims, err := svc.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("ParseAccessToken returned error: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Email != "dana@example.com" {
		t.Errorf("unexpected email claim: %q", claims.Email)
	}
	if claims.Role != "candidate" {
		t.Errorf("unexpected role claim: %q", claims.Role)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatal("expected iat and exp to be set")
	}
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != 15*time.Minute {
		t.Errorf("expected 15m lifetime, got %s", ttl)
	}
}

func TestTokenService_SecretsAreDisjoint(t *testing.T) {
	svc := NewTokenService(testTokenConfig())
	user := testUser()

	refreshToken, err := svc.IssueRefreshToken(user)
	if err != nil {
		t.Fatalf("IssueRefreshToken returned error: %v", err)
	}
	accessToken, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}

	if _, err := svc.ParseAccessToken(refreshToken); err == nil {
		t.Error("refresh token verified as an access token")
	}
	if _, err := svc.ParseRefreshToken(accessToken); err == nil {
		t.Error("access token verified as a refresh token")
	}
	if _, err := svc.ParseVerificationToken(accessToken); err == nil {
		t.Error("access token verified as a verification token")
	}
}

// Refresh tokens are long-lived; a leaked one must not disclose anything
// beyond the numeric user id.
func TestTokenService_RefreshClaimMinimality(t *testing.T) {
	svc := NewTokenService(testTokenConfig())

	token, err := svc.IssueRefreshToken(testUser())
	if err != nil {
		t.Fatalf("IssueRefreshToken returned error: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected a three-part JWT, got %d parts", len(parts))
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}

	for _, forbidden := range []string{"email", "name", "role"} {
		if _, ok := body[forbidden]; ok {
			t.Errorf("refresh token payload carries %q", forbidden)
		}
	}
	if _, ok := body["uid"]; !ok {
		t.Error("refresh token payload is missing the user id")
	}
}

func TestTokenService_ExpiredToken(t *testing.T) {
	cfg := testTokenConfig()
	cfg.AccessTTL = -time.Minute
	svc := NewTokenService(cfg)

	token, err := svc.IssueAccessToken(testUser())
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}

	_, err = svc.ParseAccessToken(token)
	if err == nil {
		t.Fatal("expected expired token to fail verification")
	}
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expected jwt.ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_TamperedToken(t *testing.T) {
	svc := NewTokenService(testTokenConfig())

	token, err := svc.IssueAccessToken(testUser())
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := svc.ParseAccessToken(tampered); err == nil {
		t.Error("tampered token verified")
	}
}

func TestTokenService_VerificationTokenHasJTI(t *testing.T) {
	svc := NewTokenService(testTokenConfig())
	user := testUser()

	first, err := svc.IssueVerificationToken(user)
	if err != nil {
		t.Fatalf("IssueVerificationToken returned error: %v", err)
	}
	second, err := svc.IssueVerificationToken(user)
	if err != nil {
		t.Fatalf("IssueVerificationToken returned error: %v", err)
	}

	firstClaims, err := svc.ParseVerificationToken(first)
	if err != nil {
		t.Fatalf("ParseVerificationToken returned error: %v", err)
	}
	secondClaims, err := svc.ParseVerificationToken(second)
	if err != nil {
		t.Fatalf("ParseVerificationToken returned error: %v", err)
	}

	if firstClaims.ID == "" {
		t.Fatal("verification token has no jti")
	}
	if firstClaims.ID == secondClaims.ID {
		t.Error("two verification tokens share a jti")
	}
	if firstClaims.Email != user.Email {
		t.Errorf("unexpected email claim: %q", firstClaims.Email)
	}
}

// iat and exp only carry whole-second precision, so back-to-back issuances
// land on identical timestamps. The jti is what keeps the signed strings
// distinct; rotation relies on it.
func TestTokenService_RefreshTokensDistinctWithinSameSecond(t *testing.T) {
	svc := NewTokenService(testTokenConfig())
	user := testUser()

	first, err := svc.IssueRefreshToken(user)
	if err != nil {
		t.Fatalf("IssueRefreshToken returned error: %v", err)
	}
	second, err := svc.IssueRefreshToken(user)
	if err != nil {
		t.Fatalf("IssueRefreshToken returned error: %v", err)
	}

	if first == second {
		t.Fatal("two refresh tokens issued back to back are byte-identical")
	}

	firstClaims, err := svc.ParseRefreshToken(first)
	if err != nil {
		t.Fatalf("ParseRefreshToken returned error: %v", err)
	}
	secondClaims, err := svc.ParseRefreshToken(second)
	if err != nil {
		t.Fatalf("ParseRefreshToken returned error: %v", err)
	}
	if firstClaims.ID == "" || firstClaims.ID == secondClaims.ID {
		t.Errorf("expected distinct non-empty jtis, got %q and %q", firstClaims.ID, secondClaims.ID)
	}
}

// A validly-signed token with no exp claim must not verify; Consume reads
// ExpiresAt unconditionally when deriving the ledger TTL.
func TestTokenService_RejectsTokenWithoutExpiry(t *testing.T) {
	cfg := testTokenConfig()
	svc := NewTokenService(cfg)

	claims := RefreshClaims{
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       "no-expiry",
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(cfg.RefreshSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := svc.ParseRefreshToken(token); err == nil {
		t.Error("token without exp verified")
	}
}
