package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/maynagashev/gophtodo/internal/models"
	"github.com/maynagashev/gophtodo/internal/repository"
	"github.com/rs/zerolog"
)

// Тип токена в ответе /auth/token.
const TokenTypeBearer = "bearer"

// RegisterParams - данные формы регистрации.
type RegisterParams struct {
	Email           string
	Username        string
	FirstName       string
	LastName        string
	Password        string
	PasswordConfirm string
	PhoneNumber     *string
}

// AuthService определяет интерфейс для сервиса аутентификации.
type AuthService interface {
	Register(ctx context.Context, params RegisterParams) error
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.TokenResponse, error)
	ChangePassword(ctx context.Context, identity models.Identity, username, password, newPassword string) error
}

// Убедимся, что authService удовлетворяет интерфейсу AuthService.
var _ AuthService = (*authService)(nil)

type authService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   *TokenManager
	logger   zerolog.Logger
}

// NewAuthService создает новый экземпляр сервиса аутентификации.
func NewAuthService(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	tokens *TokenManager,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register регистрирует нового пользователя с ролью user.
// Проверки идут в порядке: email, имя пользователя, совпадение паролей.
func (s *authService) Register(ctx context.Context, params RegisterParams) error {
	if err := s.ensureUnused(ctx, params.Email, params.Username); err != nil {
		return err
	}
	if params.Password != params.PasswordConfirm {
		s.logger.Info().Str("username", params.Username).Msg("Пароли не совпадают")
		return ErrPasswordMismatch
	}

	hashed, err := s.hasher.Hash(params.Password)
	if errors.Is(err, ErrPasswordTooLong) {
		s.logger.Info().Str("username", params.Username).Msg("Слишком длинный пароль при регистрации")
		return ErrPasswordTooLong
	}
	if err != nil {
		s.logger.Error().Err(err).Str("username", params.Username).Msg("Ошибка хеширования пароля")
		return fmt.Errorf("внутренняя ошибка сервера при хешировании пароля: %w", err)
	}

	user := &models.User{
		Email:          params.Email,
		Username:       params.Username,
		FirstName:      params.FirstName,
		LastName:       params.LastName,
		HashedPassword: hashed,
		IsActive:       true,
		Role:           models.DefaultRole,
		PhoneNumber:    params.PhoneNumber,
	}

	_, err = s.userRepo.CreateUser(ctx, user)
	switch {
	case errors.Is(err, repository.ErrEmailTaken):
		return ErrEmailTaken
	case errors.Is(err, repository.ErrUsernameTaken):
		return ErrUsernameTaken
	case err != nil:
		s.logger.Error().Err(err).Str("username", params.Username).Msg("Ошибка репозитория при регистрации")
		return fmt.Errorf("внутренняя ошибка сервера при создании пользователя: %w", err)
	}

	s.logger.Info().Str("username", params.Username).Msg("Пользователь успешно зарегистрирован")
	return nil
}

func (s *authService) ensureUnused(ctx context.Context, email, username string) error {
	_, err := s.userRepo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		s.logger.Info().Str("email", email).Msg("Попытка регистрации с занятым email")
		return ErrEmailTaken
	case !errors.Is(err, repository.ErrUserNotFound):
		return fmt.Errorf("внутренняя ошибка сервера при поиске пользователя: %w", err)
	}

	_, err = s.userRepo.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		s.logger.Info().Str("username", username).Msg("Попытка регистрации с занятым именем")
		return ErrUsernameTaken
	case !errors.Is(err, repository.ErrUserNotFound):
		return fmt.Errorf("внутренняя ошибка сервера при поиске пользователя: %w", err)
	}
	return nil
}

// Authenticate проверяет имя пользователя и пароль.
// Несуществующий пользователь и неверный пароль дают одну и ту же ошибку.
func (s *authService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Info().Str("username", username).Msg("Попытка входа несуществующего пользователя")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("username", username).Msg("Ошибка репозитория при поиске пользователя")
		return nil, fmt.Errorf("внутренняя ошибка сервера при поиске пользователя: %w", err)
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		s.logger.Info().Str("username", username).Msg("Неверный пароль")
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login аутентифицирует пользователя и выпускает токен сессии.
func (s *authService) Login(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.Username, user.ID, user.Role, s.tokens.TTL())
	if err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("Ошибка генерации JWT")
		return nil, fmt.Errorf("внутренняя ошибка сервера при генерации токена: %w", err)
	}

	s.logger.Info().Str("username", username).Int64("user_id", user.ID).Msg("Пользователь успешно аутентифицирован")
	return &models.TokenResponse{AccessToken: token, TokenType: TokenTypeBearer}, nil
}

// ChangePassword меняет пароль текущего пользователя после повторной проверки учетных данных.
// Введенное имя должно совпадать с именем из сессии.
func (s *authService) ChangePassword(
	ctx context.Context,
	identity models.Identity,
	username, password, newPassword string,
) error {
	if username != identity.Username {
		s.logger.Warn().
			Str("session_user", identity.Username).
			Str("form_user", username).
			Msg("Попытка сменить пароль другого пользователя")
		return ErrInvalidCredentials
	}

	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(newPassword)
	if errors.Is(err, ErrPasswordTooLong) {
		return ErrPasswordTooLong
	}
	if err != nil {
		return fmt.Errorf("внутренняя ошибка сервера при хешировании пароля: %w", err)
	}
	if err = s.userRepo.UpdatePasswordHash(ctx, user.ID, hashed); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("Ошибка обновления пароля")
		return fmt.Errorf("внутренняя ошибка сервера при обновлении пароля: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("Пароль изменен")
	return nil
}

// Кастомные ошибки сервиса.
var (
	ErrInvalidCredentials = errors.New("неверное имя пользователя или пароль")
	ErrUsernameTaken      = errors.New("имя пользователя уже занято")
	ErrEmailTaken         = errors.New("email уже зарегистрирован")
	ErrPasswordMismatch   = errors.New("пароли не совпадают")
)
