package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Единый валидатор форм, кеширует разобранные теги структур.
var validate = validator.New(validator.WithRequiredStructEnabled())

type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type registerForm struct {
	Email       string `validate:"required"`
	Username    string `validate:"required"`
	FirstName   string `validate:"required"`
	LastName    string `validate:"required"`
	Password    string `validate:"required"`
	Password2   string `validate:"required"`
	PhoneNumber *string
}

type todoForm struct {
	Title       string `validate:"required"`
	Description string
	Priority    int `validate:"min=1,max=5"`
}

type passwordForm struct {
	Username    string `validate:"required"`
	Password    string `validate:"required"`
	NewPassword string `validate:"required"`
}

func parseLoginForm(r *http.Request) (loginForm, error) {
	if err := r.ParseForm(); err != nil {
		return loginForm{}, err
	}
	form := loginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	return form, validate.Struct(form)
}

func parseRegisterForm(r *http.Request) (registerForm, error) {
	if err := r.ParseForm(); err != nil {
		return registerForm{}, err
	}
	form := registerForm{
		Email:     strings.TrimSpace(r.PostFormValue("email")),
		Username:  strings.TrimSpace(r.PostFormValue("username")),
		FirstName: r.PostFormValue("firstname"),
		LastName:  r.PostFormValue("lastname"),
		Password:  r.PostFormValue("password"),
		Password2: r.PostFormValue("password2"),
	}
	if phone := strings.TrimSpace(r.PostFormValue("phone_number")); phone != "" {
		form.PhoneNumber = &phone
	}
	return form, validate.Struct(form)
}

// parseTodoForm разбирает форму задачи. priority обязан быть целым числом от 1 до 5.
func parseTodoForm(r *http.Request) (todoForm, error) {
	if err := r.ParseForm(); err != nil {
		return todoForm{}, err
	}
	priority, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("priority")))
	if err != nil {
		return todoForm{}, errInvalidPriority
	}
	form := todoForm{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Priority:    priority,
	}
	return form, validate.Struct(form)
}

func parsePasswordForm(r *http.Request) (passwordForm, error) {
	if err := r.ParseForm(); err != nil {
		return passwordForm{}, err
	}
	form := passwordForm{
		Username:    strings.TrimSpace(r.PostFormValue("username")),
		Password:    r.PostFormValue("password"),
		NewPassword: r.PostFormValue("new_password"),
	}
	return form, validate.Struct(form)
}

// unprocessable отвечает 422 на форму, не прошедшую типизацию.
func unprocessable(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
}

// Ошибки разбора форм.
var (
	errInvalidPriority = errors.New("priority должен быть целым числом")
)
