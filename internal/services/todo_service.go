package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/maynagashev/gophtodo/internal/models"
	"github.com/maynagashev/gophtodo/internal/repository"
	"github.com/rs/zerolog"
)

// TodoParams - изменяемые поля задачи.
type TodoParams struct {
	Title       string
	Description string
	Priority    int
}

// TodoService определяет операции над задачами, ограниченные владельцем.
type TodoService interface {
	List(ctx context.Context, ownerID int64) ([]models.Todo, error)
	Create(ctx context.Context, ownerID int64, params TodoParams) (*models.Todo, error)
	GetForEdit(ctx context.Context, ownerID, todoID int64) (*models.Todo, error)
	Update(ctx context.Context, ownerID, todoID int64, params TodoParams) error
	Delete(ctx context.Context, ownerID, todoID int64) error
	ToggleComplete(ctx context.Context, ownerID, todoID int64) error
}

var _ TodoService = (*todoService)(nil)

type todoService struct {
	todoRepo repository.TodoRepository
	logger   zerolog.Logger
}

// NewTodoService создает новый экземпляр сервиса задач.
func NewTodoService(todoRepo repository.TodoRepository, logger zerolog.Logger) TodoService {
	return &todoService{todoRepo: todoRepo, logger: logger}
}

// List возвращает все задачи владельца.
func (s *todoService) List(ctx context.Context, ownerID int64) ([]models.Todo, error) {
	todos, err := s.todoRepo.ListTodosByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("внутренняя ошибка сервера при получении задач: %w", err)
	}
	return todos, nil
}

// Create создает незавершенную задачу владельца.
func (s *todoService) Create(ctx context.Context, ownerID int64, params TodoParams) (*models.Todo, error) {
	todo := &models.Todo{
		Title:       params.Title,
		Description: params.Description,
		Priority:    params.Priority,
		Complete:    false,
		OwnerID:     ownerID,
	}

	id, err := s.todoRepo.CreateTodo(ctx, todo)
	if err != nil {
		return nil, fmt.Errorf("внутренняя ошибка сервера при создании задачи: %w", err)
	}
	todo.ID = id
	return todo, nil
}

// GetForEdit возвращает задачу, только если она принадлежит ownerID.
func (s *todoService) GetForEdit(ctx context.Context, ownerID, todoID int64) (*models.Todo, error) {
	todo, err := s.todoRepo.GetTodo(ctx, todoID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("внутренняя ошибка сервера при получении задачи: %w", err)
	}
	return todo, nil
}

// Update перезаписывает поля задачи. Отсутствующая или чужая задача - no-op.
func (s *todoService) Update(ctx context.Context, ownerID, todoID int64, params TodoParams) error {
	err := s.todoRepo.UpdateTodo(ctx, &models.Todo{
		ID:          todoID,
		OwnerID:     ownerID,
		Title:       params.Title,
		Description: params.Description,
		Priority:    params.Priority,
	})
	return s.ignoreNotFound(err, "обновлении", ownerID, todoID)
}

// Delete удаляет задачу. Отсутствующая или чужая задача - no-op.
func (s *todoService) Delete(ctx context.Context, ownerID, todoID int64) error {
	return s.ignoreNotFound(s.todoRepo.DeleteTodo(ctx, todoID, ownerID), "удалении", ownerID, todoID)
}

// ToggleComplete переключает флаг выполнения. Отсутствующая или чужая задача - no-op.
func (s *todoService) ToggleComplete(ctx context.Context, ownerID, todoID int64) error {
	return s.ignoreNotFound(s.todoRepo.ToggleTodoComplete(ctx, todoID, ownerID), "переключении статуса", ownerID, todoID)
}

func (s *todoService) ignoreNotFound(err error, action string, ownerID, todoID int64) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrTodoNotFound) {
		s.logger.Info().
			Int64("owner_id", ownerID).
			Int64("todo_id", todoID).
			Msgf("Задача не найдена при %s, пропускаем", action)
		return nil
	}
	return fmt.Errorf("внутренняя ошибка сервера при %s задачи: %w", action, err)
}

// Кастомные ошибки сервиса задач.
var (
	ErrTodoNotFound = errors.New("задача не найдена")
)
