package employee

import "time"

type Status int

const (
	StatusDisabled Status = 0
	StatusEnabled  Status = 1
)

type Employee struct {
	ID        int64     `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Name      string    `json:"name" db:"name"`
	Password  string    `json:"-" db:"password"` // bcrypt hash, never serialized
	Phone     string    `json:"phone" db:"phone"`
	Status    Status    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
