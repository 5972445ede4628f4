package middleware_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maynagashev/gophtodo/internal/middleware"
	"github.com/maynagashev/gophtodo/internal/models"
	"github.com/maynagashev/gophtodo/internal/services"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jwtSecretKey = "test-secret-key"

func newTokens() *services.TokenManager {
	return services.NewTokenManager(services.TokenConfig{Secret: []byte(jwtSecretKey), TTL: time.Hour})
}

func TestGetIdentityFromContext(t *testing.T) {
	alice := models.Identity{Username: "alice", ID: 1, Role: "user"}

	tests := []struct {
		name     string
		ctx      context.Context
		expected models.Identity
		ok       bool
	}{
		{
			name:     "Контекст с пользователем",
			ctx:      middleware.WithIdentity(context.Background(), alice),
			expected: alice,
			ok:       true,
		},
		{
			name: "Пустой контекст",
			ctx:  context.Background(),
		},
		{
			name: "Значение неверного типа",
			ctx:  context.WithValue(context.Background(), middleware.IdentityKey, "alice"),
		},
		{
			name: "Nil контекст",
			ctx:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, ok := middleware.GetIdentityFromContext(tt.ctx)
			assert.Equal(t, tt.expected, identity)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestAuthenticator(t *testing.T) {
	tokens := newTokens()

	// Обработчик, который будет вызван после middleware
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.GetIdentityFromContext(r.Context())
		if !ok {
			_, _ = w.Write([]byte("anonymous"))
			return
		}
		_, _ = w.Write([]byte(fmt.Sprintf("OK for %s/%d", identity.Username, identity.ID)))
	})
	handler := middleware.Authenticator(tokens, zerolog.Nop())(nextHandler)

	valid, err := tokens.Issue("alice", 1, "user", time.Hour)
	require.NoError(t, err)
	expired, err := tokens.Issue("alice", 1, "user", -time.Minute)
	require.NoError(t, err)
	foreign, err := services.NewTokenManager(services.TokenConfig{Secret: []byte("other")}).
		Issue("alice", 1, "user", time.Hour)
	require.NoError(t, err)
	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(jwtSecretKey))
	require.NoError(t, err)

	tests := []struct {
		name           string
		cookie         string
		header         string
		expectedStatus int
		expectedBody   string
		cookieCleared  bool
		location       string
	}{
		{
			name:           "Cookie с валидным токеном",
			cookie:         valid,
			expectedStatus: http.StatusOK,
			expectedBody:   "OK for alice/1",
		},
		{
			name:           "Заголовок Bearer",
			header:         "Bearer " + valid,
			expectedStatus: http.StatusOK,
			expectedBody:   "OK for alice/1",
		},
		{
			name:           "Без токена - анонимно",
			expectedStatus: http.StatusOK,
			expectedBody:   "anonymous",
		},
		{
			name:           "Заголовок без Bearer - анонимно",
			header:         valid,
			expectedStatus: http.StatusOK,
			expectedBody:   "anonymous",
		},
		{
			name:           "Истекший токен",
			cookie:         expired,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Could not validate credentials",
			cookieCleared:  true,
		},
		{
			name:           "Чужой секрет",
			cookie:         foreign,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Could not validate credentials",
			cookieCleared:  true,
		},
		{
			name:           "Мусор в заголовке",
			header:         "Bearer garbage",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Could not validate credentials",
			cookieCleared:  true,
		},
		{
			name:           "Нет id в claims - принудительный выход",
			cookie:         noID,
			expectedStatus: http.StatusFound,
			cookieCleared:  true,
			location:       middleware.LoginPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/todos", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			resp := rr.Result()
			defer resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(body), tt.expectedBody)

			if tt.location != "" {
				assert.Equal(t, tt.location, resp.Header.Get("Location"))
			}

			cleared := false
			for _, c := range resp.Cookies() {
				if c.Name == middleware.SessionCookieName && c.MaxAge < 0 {
					cleared = true
				}
			}
			assert.Equal(t, tt.cookieCleared, cleared)
		})
	}
}

func TestRequireUser(t *testing.T) {
	handler := middleware.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("Анонимный пользователь", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/todos", nil))

		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, middleware.LoginPath, rr.Header().Get("Location"))
	})

	t.Run("Аутентифицированный пользователь", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/todos", nil)
		req = req.WithContext(middleware.WithIdentity(req.Context(), models.Identity{Username: "alice", ID: 1}))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestSessionCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	middleware.SetSessionCookie(rr, "tok")

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, middleware.SessionCookieName, c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Zero(t, c.MaxAge)
	assert.True(t, c.Expires.IsZero())
}
