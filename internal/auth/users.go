package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/2beens/liftlog/internal/workout"
)

var (
	ErrUserExists    = errors.New("user already exists")
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
)

const minUsernameLen = 3

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Normalize trims the fields and lower-cases the email.
func (r *SignupRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)
}

func (r SignupRequest) Validate() error {
	switch {
	case r.Email == "" || r.Username == "" || r.Password == "":
		return &workout.ValidationError{Field: "signup", Message: "email, username and password are required"}
	case !strings.Contains(r.Email, "@"):
		return &workout.ValidationError{Field: "email", Message: "must be an email address"}
	case len([]rune(r.Username)) < minUsernameLen:
		return &workout.ValidationError{Field: "username", Message: "must be at least 3 characters long"}
	}
	return nil
}
