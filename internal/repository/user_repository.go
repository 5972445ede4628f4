package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/maynagashev/gophtodo/internal/models"
	"github.com/rs/zerolog"
)

// Коды ошибок и имена ограничений PostgreSQL.
const (
	pgUniqueViolationCode   = "23505"
	usersEmailConstraint    = "users_email_key"
	usersUsernameConstraint = "users_username_key"
)

const userColumns = `id, email, username, first_name, last_name, hashed_password, is_active, role, phone_number`

// UserRepository определяет методы для работы с данными пользователей в хранилище.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, userID int64, hashedPassword string) error
}

// postgresUserRepository реализует UserRepository для PostgreSQL.
type postgresUserRepository struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

// NewPostgresUserRepository создает новый экземпляр репозитория пользователей для PostgreSQL.
func NewPostgresUserRepository(db *sqlx.DB, logger zerolog.Logger) UserRepository {
	return &postgresUserRepository{db: db, logger: logger}
}

// CreateUser создает нового пользователя в базе данных.
// Возвращает ID созданного пользователя или ошибку.
func (r *postgresUserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	query := `INSERT INTO users (email, username, first_name, last_name, hashed_password, is_active, role, phone_number)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	var userID int64

	err := r.db.QueryRowxContext(ctx, query,
		user.Email, user.Username, user.FirstName, user.LastName,
		user.HashedPassword, user.IsActive, user.Role, user.PhoneNumber,
	).Scan(&userID)
	if err != nil {
		// Нарушение уникальности: по имени ограничения понимаем, какое поле занято
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			switch pgErr.Constraint {
			case usersEmailConstraint:
				r.logger.Warn().Str("email", user.Email).Msg("Email уже зарегистрирован")
				return 0, ErrEmailTaken
			case usersUsernameConstraint:
				r.logger.Warn().Str("username", user.Username).Msg("Имя пользователя уже занято")
				return 0, ErrUsernameTaken
			}
		}
		r.logger.Error().Err(err).Str("username", user.Username).Msg("Непредвиденная ошибка при создании пользователя")
		return 0, fmt.Errorf("ошибка выполнения запроса на создание пользователя: %w", err)
	}

	r.logger.Info().Str("username", user.Username).Int64("user_id", userID).Msg("Пользователь успешно создан")
	return userID, nil
}

// GetUserByUsername находит пользователя по его имени.
func (r *postgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getUser(ctx, "username", username)
}

// GetUserByEmail находит пользователя по email.
func (r *postgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, "email", email)
}

// getUser ищет одного пользователя по значению уникальной колонки.
// column подставляется только из констант выше, не из пользовательского ввода.
func (r *postgresUserRepository) getUser(ctx context.Context, column, value string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + `=$1`
	var user models.User

	err := r.db.GetContext(ctx, &user, query, value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug().Str(column, value).Msg("Пользователь не найден")
			return nil, ErrUserNotFound
		}
		r.logger.Error().Err(err).Str(column, value).Msg("Ошибка при поиске пользователя")
		return nil, fmt.Errorf("ошибка выполнения запроса на получение пользователя: %w", err)
	}

	r.logger.Debug().Str(column, value).Int64("user_id", user.ID).Msg("Найден пользователь")
	return &user, nil
}

// UpdatePasswordHash заменяет хеш пароля пользователя.
func (r *postgresUserRepository) UpdatePasswordHash(ctx context.Context, userID int64, hashedPassword string) error {
	query := `UPDATE users SET hashed_password=$1 WHERE id=$2`

	res, err := r.db.ExecContext(ctx, query, hashedPassword, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("Ошибка обновления пароля")
		return fmt.Errorf("ошибка выполнения запроса на обновление пароля: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения числа измененных строк: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	r.logger.Info().Int64("user_id", userID).Msg("Пароль пользователя обновлен")
	return nil
}

// Кастомные ошибки репозитория.
var (
	ErrUserNotFound  = errors.New("пользователь не найден")
	ErrUsernameTaken = errors.New("имя пользователя уже занято")
	ErrEmailTaken    = errors.New("email уже зарегистрирован")
)
