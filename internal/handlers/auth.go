package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/maynagashev/gophtodo/internal/middleware"
	"github.com/maynagashev/gophtodo/internal/models"
	"github.com/maynagashev/gophtodo/internal/services"
	"github.com/rs/zerolog"
)

// Сообщения, показываемые на страницах аутентификации.
const (
	MsgIncorrectCredentials = "Incorrect Username or Password"
	MsgLogout               = "Logout Successfully"
	MsgRegistered           = "User Successfully Registered, Please Sign in!"
	MsgEmailTaken           = "Email already registered"
	MsgUsernameTaken        = "Username already registered"
	MsgPasswordMismatch     = "Passwords do not match"
	MsgPasswordTooLong      = "Password must be at most 72 bytes"
)

// AuthService определяет интерфейс для сервиса аутентификации.
// Это позволит нам легко подменять реализацию (например, для тестов).
type AuthService interface {
	Register(ctx context.Context, params services.RegisterParams) error
	Login(ctx context.Context, username, password string) (*models.TokenResponse, error)
}

// AuthHandler обрабатывает HTTP-запросы, связанные с аутентификацией.
type AuthHandler struct {
	service  AuthService
	renderer *Renderer
	logger   zerolog.Logger
}

// NewAuthHandler создает новый экземпляр AuthHandler.
func NewAuthHandler(s AuthService, renderer *Renderer, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{service: s, renderer: renderer, logger: logger}
}

// LoginPage показывает форму входа.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, _ *http.Request) {
	h.renderer.Render(w, http.StatusOK, PageLogin, PageData{})
}

// Login проверяет учетные данные, ставит cookie сессии и отправляет на /todos.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	form, err := parseLoginForm(r)
	if err != nil {
		h.logger.Info().Err(err).Msg("Неполная форма входа")
		h.renderer.Render(w, http.StatusOK, PageLogin, PageData{Msg: MsgIncorrectCredentials})
		return
	}

	resp, err := h.service.Login(r.Context(), form.Username, form.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		h.renderer.Render(w, http.StatusOK, PageLogin, PageData{Msg: MsgIncorrectCredentials})
		return
	case err != nil:
		h.logger.Error().Err(err).Str("username", form.Username).Msg("Ошибка входа")
		internalError(w)
		return
	}

	middleware.SetSessionCookie(w, resp.AccessToken)
	redirect(w, r, "/todos")
}

// Token выдает токен в JSON: {"access_token", "token_type"} или false с кодом 401.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	form, err := parseLoginForm(r)
	if err != nil {
		unprocessable(w)
		return
	}

	resp, err := h.service.Login(r.Context(), form.Username, form.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, false, h.logger)
		return
	case err != nil:
		h.logger.Error().Err(err).Str("username", form.Username).Msg("Ошибка выдачи токена")
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, resp, h.logger)
}

// Logout удаляет cookie сессии. Токен на сервере не отзывается.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	middleware.ClearSessionCookie(w)
	h.renderer.Render(w, http.StatusOK, PageLogin, PageData{Msg: MsgLogout})
}

// RegisterPage показывает форму регистрации.
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, _ *http.Request) {
	h.renderer.Render(w, http.StatusOK, PageRegister, PageData{})
}

// Register обрабатывает запрос на регистрацию нового пользователя.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	form, err := parseRegisterForm(r)
	if err != nil {
		h.logger.Info().Err(err).Msg("Неполная форма регистрации")
		unprocessable(w)
		return
	}

	h.logger.Info().Str("username", form.Username).Msg("Попытка регистрации пользователя")

	err = h.service.Register(r.Context(), services.RegisterParams{
		Email:           form.Email,
		Username:        form.Username,
		FirstName:       form.FirstName,
		LastName:        form.LastName,
		Password:        form.Password,
		PasswordConfirm: form.Password2,
		PhoneNumber:     form.PhoneNumber,
	})

	var msg string
	switch {
	case err == nil:
		h.renderer.Render(w, http.StatusOK, PageLogin, PageData{Msg: MsgRegistered})
		return
	case errors.Is(err, services.ErrEmailTaken):
		msg = MsgEmailTaken
	case errors.Is(err, services.ErrUsernameTaken):
		msg = MsgUsernameTaken
	case errors.Is(err, services.ErrPasswordMismatch):
		msg = MsgPasswordMismatch
	case errors.Is(err, services.ErrPasswordTooLong):
		msg = MsgPasswordTooLong
	default:
		h.logger.Error().Err(err).Str("username", form.Username).Msg("Ошибка регистрации")
		internalError(w)
		return
	}
	h.renderer.Render(w, http.StatusOK, PageRegister, PageData{Msg: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any, logger zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Клиент уже получил статус, сложно что-то изменить
		logger.Error().Err(err).Msg("Ошибка кодирования JSON-ответа")
	}
}
