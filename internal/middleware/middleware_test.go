package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"hospital-frontdesk-server/internal/config"
	"hospital-frontdesk-server/internal/models"
	"hospital-frontdesk-server/internal/utils"
)

var testConfig = &config.Config{
	JWTSecret:                 "access-secret",
	JWTRefreshSecret:          "refresh-secret",
	JWTExpirationMinutes:      5,
	JWTRefreshExpirationHours: 1,
}

func init() {
	gin.SetMode(gin.TestMode)
}

func accessToken(t *testing.T, role models.Role) string {
	t.Helper()
	u := &models.User{Email: "u@test.local", Role: role}
	u.ID = "3f1c9a52-6a3e-4a53-9a57-0b7a1a2e5c11"
	pair, err := utils.GenerateTokens(u, testConfig)
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}
	return pair.AccessToken
}

func TestAuthMiddleware(t *testing.T) {
	router := gin.New()
	router.GET("/me", AuthMiddleware(testConfig), RoleAuthMiddleware(models.RoleStaff, models.RoleAdmin), func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, string(p.Role))
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + accessToken(t, models.RoleStaff), http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"disallowed role", "Bearer " + accessToken(t, models.RolePatient), http.StatusForbidden},
		{"allowed role", "Bearer " + accessToken(t, models.RoleStaff), http.StatusOK},
		{"case insensitive scheme", "bearer " + accessToken(t, models.RoleAdmin), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
		})
	}
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	u := &models.User{Email: "u@test.local", Role: models.RoleAdmin}
	u.ID = "3f1c9a52-6a3e-4a53-9a57-0b7a1a2e5c11"
	pair, err := utils.GenerateTokens(u, testConfig)
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}

	router := gin.New()
	router.GET("/me", AuthMiddleware(testConfig), func(c *gin.Context) { c.Status(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestGetPrincipalWithoutAuth(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := GetPrincipal(c); ok {
		t.Fatal("expected no principal on an unauthenticated context")
	}
}

func TestRecoveryLogsAndReturns500(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	router := gin.New()
	router.Use(RequestID(), Recovery(logger))
	router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(requestIDHeader, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-42" {
		t.Fatalf("request id not echoed: %q", w.Header().Get(requestIDHeader))
	}
	logged := buf.String()
	if !strings.Contains(logged, "kaboom") || !strings.Contains(logged, "req-42") {
		t.Fatalf("panic not logged with request id: %s", logged)
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	router := gin.New()
	router.Use(RequestID(), Logger(logger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, path := range []string{"/ok", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"level":"info"`) || !strings.Contains(lines[1], `"level":"warn"`) {
		t.Fatalf("unexpected levels: %v", lines)
	}
}
