package mocks

import (
	"context"

	"github.com/maynagashev/gophtodo/internal/models"
	"github.com/maynagashev/gophtodo/internal/repository"
	"github.com/stretchr/testify/mock"
)

var _ repository.TodoRepository = (*TodoRepository)(nil)

// TodoRepository - мок repository.TodoRepository.
type TodoRepository struct {
	mock.Mock
}

func (m *TodoRepository) CreateTodo(ctx context.Context, todo *models.Todo) (int64, error) {
	args := m.Called(ctx, todo)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TodoRepository) ListTodosByOwner(ctx context.Context, ownerID int64) ([]models.Todo, error) {
	args := m.Called(ctx, ownerID)
	todos, _ := args.Get(0).([]models.Todo)
	return todos, args.Error(1)
}

func (m *TodoRepository) GetTodo(ctx context.Context, todoID, ownerID int64) (*models.Todo, error) {
	args := m.Called(ctx, todoID, ownerID)
	todo, _ := args.Get(0).(*models.Todo)
	return todo, args.Error(1)
}

func (m *TodoRepository) UpdateTodo(ctx context.Context, todo *models.Todo) error {
	return m.Called(ctx, todo).Error(0)
}

func (m *TodoRepository) DeleteTodo(ctx context.Context, todoID, ownerID int64) error {
	return m.Called(ctx, todoID, ownerID).Error(0)
}

func (m *TodoRepository) ToggleTodoComplete(ctx context.Context, todoID, ownerID int64) error {
	return m.Called(ctx, todoID, ownerID).Error(0)
}
