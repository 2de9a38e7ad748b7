package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"yamdb-backend/internal/models"

	"github.com/golang-jwt/jwt"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID":    int64(42),
		"username":  "alice",
		"role":      "moderator",
		"superuser": false,
		"exp":       exp.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func claimsEcho(t *testing.T) (http.Handler, *UserClaims) {
	var captured UserClaims
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims := GetUserFromContext(r.Context()); claims != nil {
			captured = *claims
		}
		w.WriteHeader(http.StatusOK)
	})
	return handler, &captured
}

func TestRequireAuth(t *testing.T) {
	m := NewAuthMiddleware(testSecret)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + signToken(t, testSecret, time.Now().Add(time.Hour)), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not a bearer token", "Basic abc123", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"expired token", "Bearer " + signToken(t, testSecret, time.Now().Add(-time.Hour)), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := claimsEcho(t)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			m.RequireAuth(next).ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireAuthClaims(t *testing.T) {
	m := NewAuthMiddleware(testSecret)
	next, captured := claimsEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	m.RequireAuth(next).ServeHTTP(rec, req)

	if captured.UserID != 42 {
		t.Errorf("UserID = %d, want 42", captured.UserID)
	}
	if captured.Username != "alice" {
		t.Errorf("Username = %q, want alice", captured.Username)
	}
	if captured.Role != models.UserRoleModerator {
		t.Errorf("Role = %q, want moderator", captured.Role)
	}
}

func TestOptionalAuth(t *testing.T) {
	m := NewAuthMiddleware(testSecret)

	// Anonymous requests pass through with no claims.
	next, captured := claimsEcho(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	m.OptionalAuth(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous status = %d, want 200", rec.Code)
	}
	if captured.UserID != 0 {
		t.Errorf("anonymous request carried claims: %+v", captured)
	}

	// A valid token attaches claims.
	next, captured = claimsEcho(t)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, time.Now().Add(time.Hour)))
	rec = httptest.NewRecorder()
	m.OptionalAuth(next).ServeHTTP(rec, req)
	if captured.UserID != 42 {
		t.Errorf("UserID = %d, want 42", captured.UserID)
	}
}

func TestRequireAdmin(t *testing.T) {
	m := NewAuthMiddleware(testSecret)

	adminToken := func(role string, superuser bool) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"userID":    int64(1),
			"username":  "u",
			"role":      role,
			"superuser": superuser,
			"exp":       time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}
		return signed
	}

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"admin allowed", adminToken("admin", false), http.StatusOK},
		{"superuser allowed", adminToken("user", true), http.StatusOK},
		{"moderator denied", adminToken("moderator", false), http.StatusForbidden},
		{"user denied", adminToken("user", false), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := claimsEcho(t)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			m.RequireAdmin(next).ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
