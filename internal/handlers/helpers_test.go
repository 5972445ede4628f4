package handlers_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/maynagashev/gophtodo/internal/handlers"
	"github.com/maynagashev/gophtodo/internal/middleware"
	"github.com/maynagashev/gophtodo/internal/models"
	"github.com/maynagashev/gophtodo/internal/services"
	"github.com/maynagashev/gophtodo/internal/web"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var alice = models.Identity{Username: "alice", ID: 1, Role: "user"}

func newRenderer(t *testing.T) *handlers.Renderer {
	t.Helper()
	r, err := handlers.NewRenderer(web.Templates(), zerolog.Nop())
	require.NoError(t, err)
	return r
}

// formRequest создает POST-запрос с телом application/x-www-form-urlencoded.
func formRequest(t *testing.T, target string, values url.Values) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func withIdentity(req *http.Request, identity models.Identity) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), identity))
}

// --- Mock AuthService --- //

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, params services.RegisterParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	args := m.Called(ctx, username, password)
	resp, _ := args.Get(0).(*models.TokenResponse)
	return resp, args.Error(1)
}

func (m *MockAuthService) ChangePassword(
	ctx context.Context,
	identity models.Identity,
	username, password, newPassword string,
) error {
	return m.Called(ctx, identity, username, password, newPassword).Error(0)
}

// --- Mock TodoService --- //

type MockTodoService struct {
	mock.Mock
}

func (m *MockTodoService) List(ctx context.Context, ownerID int64) ([]models.Todo, error) {
	args := m.Called(ctx, ownerID)
	todos, _ := args.Get(0).([]models.Todo)
	return todos, args.Error(1)
}

func (m *MockTodoService) Create(ctx context.Context, ownerID int64, params services.TodoParams) (*models.Todo, error) {
	args := m.Called(ctx, ownerID, params)
	todo, _ := args.Get(0).(*models.Todo)
	return todo, args.Error(1)
}

func (m *MockTodoService) GetForEdit(ctx context.Context, ownerID, todoID int64) (*models.Todo, error) {
	args := m.Called(ctx, ownerID, todoID)
	todo, _ := args.Get(0).(*models.Todo)
	return todo, args.Error(1)
}

func (m *MockTodoService) Update(ctx context.Context, ownerID, todoID int64, params services.TodoParams) error {
	return m.Called(ctx, ownerID, todoID, params).Error(0)
}

func (m *MockTodoService) Delete(ctx context.Context, ownerID, todoID int64) error {
	return m.Called(ctx, ownerID, todoID).Error(0)
}

func (m *MockTodoService) ToggleComplete(ctx context.Context, ownerID, todoID int64) error {
	return m.Called(ctx, ownerID, todoID).Error(0)
}
