package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/maynagashev/gophtodo/internal/models"
	"github.com/rs/zerolog"
)

// Имена страниц, доступных для рендеринга.
const (
	PageLogin        = "login.html"
	PageRegister     = "register.html"
	PageHome         = "home.html"
	PageAddTodo      = "add_todo.html"
	PageEditTodo     = "edit_todo.html"
	PageEditPassword = "edit_user_password.html"

	layoutFile = "layout.html"
)

// Значения приоритета, предлагаемые в формах задач.
var priorityOptions = []int{1, 2, 3, 4, 5}

// PageData - данные, передаваемые в шаблон страницы.
type PageData struct {
	User  *models.Identity
	Msg   string
	Todos []models.Todo
	Todo  *models.Todo
}

// Renderer рендерит HTML-страницы из набора шаблонов.
// Каждая страница компилируется вместе с общим layout.
type Renderer struct {
	pages  map[string]*template.Template
	logger zerolog.Logger
}

// NewRenderer разбирает все страницы из fsys. Ошибка в любом шаблоне прерывает запуск.
func NewRenderer(fsys fs.FS, logger zerolog.Logger) (*Renderer, error) {
	funcs := template.FuncMap{
		"inc":        func(i int) int { return i + 1 },
		"priorities": func() []int { return priorityOptions },
	}

	pages := make(map[string]*template.Template)
	for _, page := range []string{PageLogin, PageRegister, PageHome, PageAddTodo, PageEditTodo, PageEditPassword} {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(fsys, layoutFile, page)
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора шаблона %s: %w", page, err)
		}
		pages[page] = tmpl
	}
	return &Renderer{pages: pages, logger: logger}, nil
}

// Render выполняет шаблон в буфер и только при успехе пишет ответ.
func (rn *Renderer) Render(w http.ResponseWriter, status int, page string, data PageData) {
	tmpl, ok := rn.pages[page]
	if !ok {
		rn.logger.Error().Str("page", page).Msg("Шаблон не найден")
		internalError(w)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		rn.logger.Error().Err(err).Str("page", page).Msg("Ошибка выполнения шаблона")
		internalError(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func internalError(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusFound)
}
