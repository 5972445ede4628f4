package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/maynagashev/gophtodo/internal/models"
	"github.com/maynagashev/gophtodo/internal/services"
	"github.com/rs/zerolog"
)

// Сообщения страницы смены пароля.
const (
	MsgInvalidPassword = "Invalid username or password"
	MsgPasswordUpdated = "Password updated successfully."
)

// PasswordChanger меняет пароль текущего пользователя.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, identity models.Identity, username, password, newPassword string) error
}

// UserHandler обрабатывает страницы профиля пользователя.
type UserHandler struct {
	service  PasswordChanger
	renderer *Renderer
	logger   zerolog.Logger
}

// NewUserHandler создает новый экземпляр UserHandler.
func NewUserHandler(s PasswordChanger, renderer *Renderer, logger zerolog.Logger) *UserHandler {
	return &UserHandler{service: s, renderer: renderer, logger: logger}
}

// EditPasswordPage показывает форму смены пароля.
func (h *UserHandler) EditPasswordPage(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	h.renderer.Render(w, http.StatusOK, PageEditPassword, PageData{User: &identity})
}

// EditPassword проверяет текущий пароль и сохраняет новый.
func (h *UserHandler) EditPassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	form, err := parsePasswordForm(r)
	if err != nil {
		unprocessable(w)
		return
	}

	msg := MsgPasswordUpdated
	err = h.service.ChangePassword(r.Context(), identity, form.Username, form.Password, form.NewPassword)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		msg = MsgInvalidPassword
	case errors.Is(err, services.ErrPasswordTooLong):
		msg = MsgPasswordTooLong
	case err != nil:
		h.logger.Error().Err(err).Int64("user_id", identity.ID).Msg("Ошибка смены пароля")
		internalError(w)
		return
	}
	h.renderer.Render(w, http.StatusOK, PageEditPassword, PageData{User: &identity, Msg: msg})
}
