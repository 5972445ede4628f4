package models

// Todo представляет задачу пользователя.
type Todo struct {
	ID          int64  `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
	Priority    int    `db:"priority" json:"priority"`
	Complete    bool   `db:"complete" json:"complete"`
	OwnerID     int64  `db:"owner_id" json:"owner_id"`
}
