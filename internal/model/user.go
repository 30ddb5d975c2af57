package model

import "time"

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // viewer / foreman / admin
	CreatedAt    time.Time `json:"created_at"`
}
