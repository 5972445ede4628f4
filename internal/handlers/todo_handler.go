package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/maynagashev/gophtodo/internal/middleware"
	"github.com/maynagashev/gophtodo/internal/models"
	"github.com/maynagashev/gophtodo/internal/services"
	"github.com/rs/zerolog"
)

// Адрес списка задач, куда возвращаются все формы.
const todosPath = "/todos"

// TodoService - операции над задачами текущего пользователя.
type TodoService interface {
	List(ctx context.Context, ownerID int64) ([]models.Todo, error)
	Create(ctx context.Context, ownerID int64, params services.TodoParams) (*models.Todo, error)
	GetForEdit(ctx context.Context, ownerID, todoID int64) (*models.Todo, error)
	Update(ctx context.Context, ownerID, todoID int64, params services.TodoParams) error
	Delete(ctx context.Context, ownerID, todoID int64) error
	ToggleComplete(ctx context.Context, ownerID, todoID int64) error
}

// TodoHandler обрабатывает страницы задач.
type TodoHandler struct {
	service  TodoService
	renderer *Renderer
	logger   zerolog.Logger
}

// NewTodoHandler создает новый экземпляр TodoHandler.
func NewTodoHandler(s TodoService, renderer *Renderer, logger zerolog.Logger) *TodoHandler {
	return &TodoHandler{service: s, renderer: renderer, logger: logger}
}

// List показывает домашнюю страницу со списком задач пользователя.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	todos, err := h.service.List(r.Context(), identity.ID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", identity.ID).Msg("Ошибка получения списка задач")
		internalError(w)
		return
	}
	h.renderer.Render(w, http.StatusOK, PageHome, PageData{User: &identity, Todos: todos})
}

// AddPage показывает форму новой задачи.
func (h *TodoHandler) AddPage(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	h.renderer.Render(w, http.StatusOK, PageAddTodo, PageData{User: &identity})
}

// Add создает задачу и возвращает на список.
func (h *TodoHandler) Add(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	form, err := parseTodoForm(r)
	if err != nil {
		h.logger.Info().Err(err).Msg("Невалидная форма задачи")
		unprocessable(w)
		return
	}

	todo, err := h.service.Create(r.Context(), identity.ID, services.TodoParams{
		Title:       form.Title,
		Description: form.Description,
		Priority:    form.Priority,
	})
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", identity.ID).Msg("Ошибка создания задачи")
		internalError(w)
		return
	}

	h.logger.Info().Int64("user_id", identity.ID).Int64("todo_id", todo.ID).Msg("Задача создана")
	redirect(w, r, todosPath)
}

// EditPage показывает форму редактирования. Отсутствующая или чужая задача ведет на список.
func (h *TodoHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	todoID, ok := todoIDParam(w, r)
	if !ok {
		return
	}

	todo, err := h.service.GetForEdit(r.Context(), identity.ID, todoID)
	switch {
	case errors.Is(err, services.ErrTodoNotFound):
		redirect(w, r, todosPath)
		return
	case err != nil:
		h.logger.Error().Err(err).Int64("todo_id", todoID).Msg("Ошибка получения задачи")
		internalError(w)
		return
	}
	h.renderer.Render(w, http.StatusOK, PageEditTodo, PageData{User: &identity, Todo: todo})
}

// Edit перезаписывает поля задачи.
func (h *TodoHandler) Edit(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	todoID, ok := todoIDParam(w, r)
	if !ok {
		return
	}

	form, err := parseTodoForm(r)
	if err != nil {
		h.logger.Info().Err(err).Msg("Невалидная форма задачи")
		unprocessable(w)
		return
	}

	err = h.service.Update(r.Context(), identity.ID, todoID, services.TodoParams{
		Title:       form.Title,
		Description: form.Description,
		Priority:    form.Priority,
	})
	h.finish(w, r, err, todoID)
}

// Delete удаляет задачу.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	todoID, ok := todoIDParam(w, r)
	if !ok {
		return
	}
	h.finish(w, r, h.service.Delete(r.Context(), identity.ID, todoID), todoID)
}

// Complete переключает флаг выполнения задачи.
func (h *TodoHandler) Complete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	todoID, ok := todoIDParam(w, r)
	if !ok {
		return
	}
	h.finish(w, r, h.service.ToggleComplete(r.Context(), identity.ID, todoID), todoID)
}

func (h *TodoHandler) finish(w http.ResponseWriter, r *http.Request, err error, todoID int64) {
	if err != nil {
		h.logger.Error().Err(err).Int64("todo_id", todoID).Str("path", r.URL.Path).Msg("Ошибка изменения задачи")
		internalError(w)
		return
	}
	redirect(w, r, todosPath)
}

// todoIDParam читает {id} из пути. Не целое значение дает 404.
func todoIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	todoID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return todoID, true
}

// requireIdentity достает пользователя из контекста, анонимного отправляет на вход.
func requireIdentity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		redirect(w, r, middleware.LoginPath)
	}
	return identity, ok
}
