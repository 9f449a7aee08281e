package litxplore

import (
	"context"
	"time"
)

// User is created lazily from the subject claim of a verified token.
type User struct {
	ID        int       `json:"id"`
	Subject   string    `json:"-"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type UserStore interface {
	// GetOrCreate returns the user for subject, creating the row on first
	// sight of the token.
	GetOrCreate(ctx context.Context, subject, email, firstName, lastName string) (*User, error)
	Get(ctx context.Context, id int) (*User, error)
}
