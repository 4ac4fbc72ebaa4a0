package users

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("user not found")
	ErrConflict           = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string

	FirstName string
	LastName  string

	IsStaff bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
