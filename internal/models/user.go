package models

// User представляет пользователя системы.
// Тэги `db` используются для маппинга с полями БД с помощью sqlx.
type User struct {
	ID             int64   `db:"id" json:"id"`
	Email          string  `db:"email" json:"email"`
	Username       string  `db:"username" json:"username"`
	FirstName      string  `db:"first_name" json:"first_name"`
	LastName       string  `db:"last_name" json:"last_name"`
	HashedPassword string  `db:"hashed_password" json:"-"` // Хеш пароля наружу не отдаем
	IsActive       bool    `db:"is_active" json:"is_active"`
	Role           string  `db:"role" json:"role"`
	PhoneNumber    *string `db:"phone_number" json:"phone_number,omitempty"` // может быть NULL
}

// Роль, которую получает каждый новый пользователь.
const DefaultRole = "user"

// Identity - данные пользователя, извлеченные из проверенного токена.
// Кладется в контекст запроса и используется всеми защищенными маршрутами.
type Identity struct {
	Username string `json:"username"`
	ID       int64  `json:"id"`
	Role     string `json:"role"`
}

// TokenResponse представляет тело ответа /auth/token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
