package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/maynagashev/gophtodo/internal/models"
	"github.com/rs/zerolog"
)

// TodoRepository определяет методы для работы с задачами.
// Все методы, кроме создания, принимают ownerID и видят только задачи этого владельца.
type TodoRepository interface {
	CreateTodo(ctx context.Context, todo *models.Todo) (int64, error)
	ListTodosByOwner(ctx context.Context, ownerID int64) ([]models.Todo, error)
	GetTodo(ctx context.Context, todoID, ownerID int64) (*models.Todo, error)
	UpdateTodo(ctx context.Context, todo *models.Todo) error
	DeleteTodo(ctx context.Context, todoID, ownerID int64) error
	ToggleTodoComplete(ctx context.Context, todoID, ownerID int64) error
}

// postgresTodoRepository реализует TodoRepository для PostgreSQL.
type postgresTodoRepository struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

// NewPostgresTodoRepository создает новый экземпляр репозитория задач.
func NewPostgresTodoRepository(db *sqlx.DB, logger zerolog.Logger) TodoRepository {
	return &postgresTodoRepository{db: db, logger: logger}
}

// CreateTodo создает новую задачу и возвращает ее ID.
func (r *postgresTodoRepository) CreateTodo(ctx context.Context, todo *models.Todo) (int64, error) {
	query := `INSERT INTO todos (title, description, priority, complete, owner_id)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var todoID int64

	err := r.db.QueryRowxContext(ctx, query,
		todo.Title, todo.Description, todo.Priority, todo.Complete, todo.OwnerID,
	).Scan(&todoID)
	if err != nil {
		r.logger.Error().Err(err).Int64("owner_id", todo.OwnerID).Msg("Ошибка при создании задачи")
		return 0, fmt.Errorf("ошибка выполнения запроса на создание задачи: %w", err)
	}

	r.logger.Info().Int64("todo_id", todoID).Int64("owner_id", todo.OwnerID).Msg("Задача создана")
	return todoID, nil
}

// ListTodosByOwner возвращает задачи владельца в порядке создания.
func (r *postgresTodoRepository) ListTodosByOwner(ctx context.Context, ownerID int64) ([]models.Todo, error) {
	query := `SELECT id, title, description, priority, complete, owner_id
	          FROM todos
	          WHERE owner_id=$1
	          ORDER BY id`

	todos := make([]models.Todo, 0)
	err := r.db.SelectContext(ctx, &todos, query, ownerID)
	if err != nil {
		r.logger.Error().Err(err).Int64("owner_id", ownerID).Msg("Ошибка при получении списка задач")
		return nil, fmt.Errorf("ошибка выполнения запроса на получение списка задач: %w", err)
	}

	r.logger.Debug().Int("count", len(todos)).Int64("owner_id", ownerID).Msg("Получен список задач")
	return todos, nil
}

// GetTodo находит задачу по ID среди задач владельца.
func (r *postgresTodoRepository) GetTodo(ctx context.Context, todoID, ownerID int64) (*models.Todo, error) {
	query := `SELECT id, title, description, priority, complete, owner_id` +
		` FROM todos WHERE id=$1 AND owner_id=$2`
	var todo models.Todo

	err := r.db.GetContext(ctx, &todo, query, todoID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug().Int64("todo_id", todoID).Int64("owner_id", ownerID).Msg("Задача не найдена")
			return nil, ErrTodoNotFound
		}
		r.logger.Error().Err(err).Int64("todo_id", todoID).Msg("Ошибка при поиске задачи")
		return nil, fmt.Errorf("ошибка выполнения запроса на получение задачи: %w", err)
	}

	return &todo, nil
}

// UpdateTodo перезаписывает изменяемые поля задачи (title, description, priority).
func (r *postgresTodoRepository) UpdateTodo(ctx context.Context, todo *models.Todo) error {
	query := `UPDATE todos SET title=$1, description=$2, priority=$3 WHERE id=$4 AND owner_id=$5`

	res, err := r.db.ExecContext(ctx, query, todo.Title, todo.Description, todo.Priority, todo.ID, todo.OwnerID)
	if err != nil {
		r.logger.Error().Err(err).Int64("todo_id", todo.ID).Msg("Ошибка при обновлении задачи")
		return fmt.Errorf("ошибка выполнения запроса на обновление задачи: %w", err)
	}
	return r.checkAffected(res, todo.ID, todo.OwnerID, "Задача обновлена")
}

// DeleteTodo удаляет задачу владельца.
func (r *postgresTodoRepository) DeleteTodo(ctx context.Context, todoID, ownerID int64) error {
	query := `DELETE FROM todos WHERE id=$1 AND owner_id=$2`

	res, err := r.db.ExecContext(ctx, query, todoID, ownerID)
	if err != nil {
		r.logger.Error().Err(err).Int64("todo_id", todoID).Msg("Ошибка при удалении задачи")
		return fmt.Errorf("ошибка выполнения запроса на удаление задачи: %w", err)
	}
	return r.checkAffected(res, todoID, ownerID, "Задача удалена")
}

// ToggleTodoComplete инвертирует флаг complete одним запросом.
func (r *postgresTodoRepository) ToggleTodoComplete(ctx context.Context, todoID, ownerID int64) error {
	query := `UPDATE todos SET complete = NOT complete WHERE id=$1 AND owner_id=$2`

	res, err := r.db.ExecContext(ctx, query, todoID, ownerID)
	if err != nil {
		r.logger.Error().Err(err).Int64("todo_id", todoID).Msg("Ошибка при переключении статуса задачи")
		return fmt.Errorf("ошибка выполнения запроса на переключение статуса задачи: %w", err)
	}
	return r.checkAffected(res, todoID, ownerID, "Статус задачи переключен")
}

func (r *postgresTodoRepository) checkAffected(res sql.Result, todoID, ownerID int64, msg string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения числа измененных строк: %w", err)
	}
	if affected == 0 {
		r.logger.Debug().Int64("todo_id", todoID).Int64("owner_id", ownerID).Msg("Задача не найдена")
		return ErrTodoNotFound
	}
	r.logger.Info().Int64("todo_id", todoID).Int64("owner_id", ownerID).Msg(msg)
	return nil
}

// Кастомная ошибка репозитория задач.
var (
	ErrTodoNotFound = errors.New("задача не найдена")
)
