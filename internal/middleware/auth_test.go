package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/workspace-invites/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *services.JWTService {
	return services.NewJWTService("test-secret-key", 15*time.Minute)
}

func generateTestToken(t *testing.T, jwtSvc *services.JWTService, userID uuid.UUID, email string) string {
	t.Helper()
	tok, err := jwtSvc.GenerateAccessToken(userID, email)
	require.NoError(t, err)
	return tok.Token
}

func protectedApp(mw drift.HandlerFunc) http.Handler {
	app := drift.New()
	app.Use(mw)
	app.Get("/protected", func(c *drift.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return app
}

func TestAuth_Rejections(t *testing.T) {
	jwtSvc := newTestJWTService()
	expired := generateTestToken(t, services.NewJWTService("test-secret-key", -time.Minute), uuid.New(), "a@x.com")
	foreign := generateTestToken(t, services.NewJWTService("other-secret", 15*time.Minute), uuid.New(), "a@x.com")

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"missing header", "", "missing authorization header"},
		{"wrong scheme", "Token some-token", "invalid authorization header format"},
		{"bearer only", "Bearer", "invalid authorization header format"},
		{"bearer blank", "Bearer   ", "invalid authorization header format"},
		{"garbage token", "Bearer invalid-token", "invalid or expired token"},
		{"expired token", "Bearer " + expired, "invalid or expired token"},
		{"wrong secret", "Bearer " + foreign, "invalid or expired token"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := protectedApp(Auth(jwtSvc))

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			app.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.message)
		})
	}
}

func TestAuth_ValidToken(t *testing.T) {
	jwtSvc := newTestJWTService()
	app := drift.New()

	userID := uuid.New()
	email := "test@example.com"
	token := generateTestToken(t, jwtSvc, userID, email)

	var extractedUserID uuid.UUID
	var extractedEmail string

	app.Use(Auth(jwtSvc))
	app.Get("/protected", func(c *drift.Context) {
		extractedUserID = GetUserID(c)
		extractedEmail = GetUserEmail(c)
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, extractedUserID)
	assert.Equal(t, email, extractedEmail)
}

func TestAuth_BearerCaseInsensitive(t *testing.T) {
	jwtSvc := newTestJWTService()
	token := generateTestToken(t, jwtSvc, uuid.New(), "test@example.com")
	app := protectedApp(Auth(jwtSvc))

	for _, bearer := range []string{"bearer", "BEARER", "BeArEr"} {
		t.Run(bearer, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", bearer+" "+token)
			rec := httptest.NewRecorder()

			app.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	jwtSvc := newTestJWTService()
	userID := uuid.New()
	token := generateTestToken(t, jwtSvc, userID, "test@example.com")

	tests := []struct {
		name   string
		header string
		want   *uuid.UUID
	}{
		{"anonymous", "", nil},
		{"invalid token passes anonymously", "Bearer nope", nil},
		{"valid token", "Bearer " + token, &userID},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got *uuid.UUID
			app := drift.New()
			app.Use(OptionalAuth(jwtSvc))
			app.Post("/decline", func(c *drift.Context) {
				got = GetOptionalUserID(c)
				_ = c.JSON(http.StatusOK, nil)
			})

			req := httptest.NewRequest(http.MethodPost, "/decline", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			app.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetters_NotSet(t *testing.T) {
	app := drift.New()

	var extractedUserID uuid.UUID
	var extractedEmail string

	app.Get("/test", func(c *drift.Context) {
		extractedUserID = GetUserID(c)
		extractedEmail = GetUserEmail(c)
		_ = c.JSON(http.StatusOK, nil)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, uuid.Nil, extractedUserID)
	assert.Equal(t, "", extractedEmail)
}
