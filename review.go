package litxplore

import (
	"context"
	"time"
)

// Review is a saved literature review, owned by the user who saved it.
type Review struct {
	ID        int       `json:"id"`
	UserID    int       `json:"-"`
	Title     string    `json:"title"`
	Topic     string    `json:"topic"`
	Content   string    `json:"content"`
	Citations []Paper   `json:"citations,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReviewStore interface {
	Save(ctx context.Context, review *Review) error
	// Get returns the review only if it belongs to userID.
	Get(ctx context.Context, id int, userID int) (*Review, error)
	History(ctx context.Context, userID int) ([]*Review, error)
	Delete(ctx context.Context, id int, userID int) error
	// Clear removes every review of userID, returning the deleted ids.
	Clear(ctx context.Context, userID int) ([]int, error)
}

// ReviewIndex is a full-text index over saved reviews, scoped per owner.
type ReviewIndex interface {
	Index(review *Review) error
	Search(userID int, q string) ([]int, error)
	Delete(id int) error
}
