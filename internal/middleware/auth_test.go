package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspacemanager/internal/auth"
	"workspacemanager/internal/domain/models"
	"workspacemanager/internal/httputil"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, subject string, expires time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return signed
}

func newProtected(t *testing.T) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	verifier := auth.NewStaticVerifier(func(*jwt.Token) (interface{}, error) {
		return testSecret, nil
	}, []string{"HS256"}, logger)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(httputil.GetUserID(r)))
	})
	return AuthMiddleware(verifier, logger, "/health")(next)
}

func TestAuthMiddleware(t *testing.T) {
	handler := newProtected(t)
	valid := signToken(t, "user-1", time.Now().Add(time.Hour))
	expired := signToken(t, "user-1", time.Now().Add(-time.Hour))

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"bearer header", "/api/excludes", "Bearer " + valid, http.StatusOK, "user-1"},
		{"query token", "/api/events?access_token=" + valid, "", http.StatusOK, "user-1"},
		{"missing token", "/api/excludes", "", http.StatusUnauthorized, ""},
		{"expired token", "/api/excludes", "Bearer " + expired, http.StatusUnauthorized, ""},
		{"garbage token", "/api/excludes", "Bearer nope", http.StatusUnauthorized, ""},
		{"public path", "/health", "", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}
