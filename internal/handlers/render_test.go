package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/maynagashev/gophtodo/internal/handlers"
	"github.com/maynagashev/gophtodo/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_EscapesData(t *testing.T) {
	r := newRenderer(t)
	user := alice

	rr := httptest.NewRecorder()
	r.Render(rr, http.StatusOK, handlers.PageHome, handlers.PageData{
		User:  &user,
		Todos: []models.Todo{{ID: 1, Title: "<script>alert(1)</script>", Priority: 1}},
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "<script>alert(1)</script>")
	assert.Contains(t, rr.Body.String(), "&lt;script&gt;")
}

func TestRenderer_UnknownPage(t *testing.T) {
	r := newRenderer(t)

	rr := httptest.NewRecorder()
	r.Render(rr, http.StatusOK, "missing.html", handlers.PageData{})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRenderer_ExecutionErrorWritesNothing(t *testing.T) {
	r := newRenderer(t)

	// Домашняя страница без пользователя падает на .User.Username
	rr := httptest.NewRecorder()
	r.Render(rr, http.StatusOK, handlers.PageHome, handlers.PageData{})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "<html")
}

func TestNewRenderer_MissingTemplate(t *testing.T) {
	_, err := handlers.NewRenderer(fstest.MapFS{
		"layout.html": {Data: []byte(`{{define "layout"}}{{template "content" .}}{{end}}`)},
	}, zerolog.Nop())
	require.Error(t, err)
}

func TestRenderer_PriorityOptions(t *testing.T) {
	r := newRenderer(t)
	user := alice

	for _, page := range []string{handlers.PageAddTodo, handlers.PageEditTodo} {
		rr := httptest.NewRecorder()
		r.Render(rr, http.StatusOK, page, handlers.PageData{
			User: &user,
			Todo: &models.Todo{ID: 1, Title: "x", Priority: 2},
		})

		require.Equal(t, http.StatusOK, rr.Code, page)
		body := rr.Body.String()
		for _, p := range []string{"1", "2", "3", "4", "5"} {
			assert.Contains(t, body, `<option value="`+p+`"`, page)
		}
		assert.NotContains(t, body, `<option value="0"`, page)
		assert.NotContains(t, body, `<option value="6"`, page)
	}
}
