package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/errors"
)

type userRow struct {
	ID        int    `gorm:"primaryKey"`
	Subject   string `gorm:"uniqueIndex;size:255"`
	Email     string `gorm:"size:255"`
	FirstName string `gorm:"size:255"`
	LastName  string `gorm:"size:255"`
	CreatedAt time.Time
}

func (userRow) TableName() string { return "users" }

func (r *userRow) toUser() *litxplore.User {
	return &litxplore.User{
		ID:        r.ID,
		Subject:   r.Subject,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		CreatedAt: r.CreatedAt,
	}
}

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetOrCreate(ctx context.Context, subject, email, firstName, lastName string) (*litxplore.User, error) {
	row := userRow{
		Subject:   subject,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subject"}},
			DoNothing: true,
		}).
		Create(&row).Error
	if err != nil {
		return nil, errors.New("could not create user", errors.WithCause(err))
	}

	// The insert is skipped when the subject already exists, so read back
	// the canonical row either way.
	var saved userRow
	err = s.db.WithContext(ctx).Where("subject = ?", subject).First(&saved).Error
	if err != nil {
		return nil, errors.New("could not retrieve user", errors.WithCause(err))
	}

	return saved.toUser(), nil
}

func (s *UserStore) Get(ctx context.Context, id int) (*litxplore.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).First(&row, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.New("user not found", errors.NotFound())
	} else if err != nil {
		return nil, errors.New("could not retrieve user", errors.WithCause(err))
	}

	return row.toUser(), nil
}
