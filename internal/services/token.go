package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maynagashev/gophtodo/internal/models"
)

// Время жизни токена по умолчанию.
const DefaultTokenTTL = 60 * time.Minute

// TokenConfig содержит секрет и параметры подписи токенов.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

// Структура для пользовательских данных в JWT (claims).
// id - указатель, чтобы отличать отсутствующий claim от нулевого.
type tokenClaims struct {
	UserID *int64 `json:"id,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет подписанные токены сессии.
// Не хранит состояния, безопасен для конкурентного использования.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager создает TokenManager из конфигурации.
func NewTokenManager(cfg TokenConfig) *TokenManager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: cfg.Secret, ttl: ttl, now: time.Now}
}

// TTL возвращает время жизни выпускаемых токенов.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue подписывает токен с claims {sub, id, role, exp}.
func (m *TokenManager) Issue(username string, userID int64, role string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := tokenClaims{
		UserID: &userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи JWT: %w", err)
	}
	return signed, nil
}

// Verify проверяет подпись, алгоритм и срок действия токена.
// Возвращает ErrInvalidToken для подделанного, битого или истекшего токена
// и ErrIncompleteClaims, если в claims нет sub или id.
func (m *TokenManager) Verify(tokenString string) (*models.Identity, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(_ *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Subject == "" || claims.UserID == nil {
		return nil, ErrIncompleteClaims
	}

	return &models.Identity{
		Username: claims.Subject,
		ID:       *claims.UserID,
		Role:     claims.Role,
	}, nil
}

// Ошибки проверки токена.
var (
	ErrInvalidToken     = errors.New("невалидный токен")
	ErrIncompleteClaims = errors.New("в токене нет обязательных claims")
)
