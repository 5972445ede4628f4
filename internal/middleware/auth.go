package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/maynagashev/gophtodo/internal/models"
	"github.com/maynagashev/gophtodo/internal/services"
	"github.com/rs/zerolog"
)

// Тип для ключа контекста.
type contextKey string

// Ключ для хранения пользователя в контексте.
const IdentityKey contextKey = "identity"

// Имя cookie с токеном сессии.
const SessionCookieName = "access_token"

// Адрес страницы входа, куда отправляются анонимные пользователи.
const LoginPath = "/auth/login"

// Текст ответа на невалидный или истекший токен.
const invalidCredentialsText = "Could not validate credentials"

// TokenVerifier проверяет токен и возвращает пользователя.
type TokenVerifier interface {
	Verify(token string) (*models.Identity, error)
}

// Authenticator определяет текущего пользователя по cookie access_token
// или по заголовку Authorization: Bearer.
// Без токена запрос проходит анонимно.
func Authenticator(tokens TokenVerifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := tokens.Verify(tokenString)
			switch {
			case errors.Is(err, services.ErrIncompleteClaims):
				logger.Warn().Str("path", r.URL.Path).Msg("В токене нет sub или id, принудительный выход")
				ClearSessionCookie(w)
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			case err != nil:
				logger.Info().Err(err).Str("path", r.URL.Path).Msg("Невалидный токен")
				ClearSessionCookie(w)
				http.Error(w, invalidCredentialsText, http.StatusUnauthorized)
				return
			}

			logger.Debug().Str("username", identity.Username).Int64("user_id", identity.ID).
				Msg("Пользователь аутентифицирован")

			ctx := context.WithValue(r.Context(), IdentityKey, *identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser отправляет анонимного пользователя на страницу входа.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetIdentityFromContext(r.Context()); !ok {
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetIdentityFromContext извлекает пользователя из контекста запроса.
// Возвращает пользователя и true, если он найден, иначе пустую структуру и false.
func GetIdentityFromContext(ctx context.Context) (models.Identity, bool) {
	if ctx == nil {
		return models.Identity{}, false
	}
	identity, ok := ctx.Value(IdentityKey).(models.Identity)
	return identity, ok
}

// WithIdentity кладет пользователя в контекст.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// SetSessionCookie сохраняет токен в HTTP-only cookie без срока действия.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie удаляет cookie сессии.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
