package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/studyforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const secret = "test-secret"
	am := NewAuthMiddleware(logger.Nop(), secret)

	good, err := SignToken(secret, 42, time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	expired, _ := SignToken(secret, 42, -time.Minute)
	foreign, _ := SignToken("other-secret", 42, time.Hour)
	badSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "42"}).SignedString([]byte(secret))

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"valid header", "Bearer " + good, "", http.StatusOK},
		{"valid query", "", good, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, "", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, "", http.StatusUnauthorized},
		{"non-numeric subject", "Bearer " + badSubject, "", http.StatusUnauthorized},
		{"no expiry", "Bearer " + noExpiry, "", http.StatusUnauthorized},
		{"basic scheme", "Basic " + good, "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen uint
			r := gin.New()
			r.Use(am.RequireAuth())
			r.GET("/me", func(c *gin.Context) {
				seen = ctxutil.UserID(c.Request.Context())
				c.Status(http.StatusOK)
			})
			target := "/me"
			if tc.query != "" {
				target += "?token=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status %d, want %d (%s)", rec.Code, tc.status, rec.Body.String())
			}
			if tc.status == http.StatusOK && seen != 42 {
				t.Fatalf("user id %d, want 42", seen)
			}
		})
	}
}

func TestRequireAuthWithoutSecret(t *testing.T) {
	am := NewAuthMiddleware(logger.Nop(), "")
	tok, _ := SignToken("", 1, time.Hour)
	if _, err := am.UserIDFromToken(tok); err == nil {
		t.Fatalf("empty secret must reject every token")
	}
}
