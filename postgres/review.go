package postgres

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/errors"
)

type reviewRow struct {
	ID        int    `gorm:"primaryKey"`
	UserID    int    `gorm:"index"`
	Title     string `gorm:"size:512"`
	Topic     string `gorm:"size:512"`
	Content   string
	Citations []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (reviewRow) TableName() string { return "reviews" }

func (r *reviewRow) toReview() (*litxplore.Review, error) {
	review := litxplore.Review{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Topic:     r.Topic,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}

	if len(r.Citations) > 0 {
		if err := json.Unmarshal(r.Citations, &review.Citations); err != nil {
			return nil, errors.New("could not decode citations", errors.WithCause(err))
		}
	}
	return &review, nil
}

type ReviewStore struct {
	db *gorm.DB
}

func NewReviewStore(db *gorm.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

func (s *ReviewStore) Save(ctx context.Context, review *litxplore.Review) error {
	var citations []byte
	if len(review.Citations) > 0 {
		data, err := json.Marshal(review.Citations)
		if err != nil {
			return errors.New("could not encode citations", errors.WithCause(err))
		}
		citations = data
	}

	row := reviewRow{
		ID:        review.ID,
		UserID:    review.UserID,
		Title:     review.Title,
		Topic:     review.Topic,
		Content:   review.Content,
		Citations: citations,
		CreatedAt: review.CreatedAt,
	}

	// Updates keep the original creation date.
	if row.ID != 0 && row.CreatedAt.IsZero() {
		var existing reviewRow
		err := s.db.WithContext(ctx).Select("created_at").First(&existing, row.ID).Error
		if err == gorm.ErrRecordNotFound {
			return errors.New("review not found", errors.NotFound())
		} else if err != nil {
			return errors.New("could not retrieve review", errors.WithCause(err))
		}
		row.CreatedAt = existing.CreatedAt
	}

	err := s.db.WithContext(ctx).Save(&row).Error
	if err != nil {
		return errors.New("could not save review", errors.WithCause(err))
	}

	review.ID = row.ID
	review.CreatedAt = row.CreatedAt
	review.UpdatedAt = row.UpdatedAt
	return nil
}

func (s *ReviewStore) Get(ctx context.Context, id int, userID int) (*litxplore.Review, error) {
	var row reviewRow
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.New("review not found", errors.NotFound())
	} else if err != nil {
		return nil, errors.New("could not retrieve review", errors.WithCause(err))
	}

	return row.toReview()
}

func (s *ReviewStore) History(ctx context.Context, userID int) ([]*litxplore.Review, error) {
	var rows []reviewRow
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.New("could not list reviews", errors.WithCause(err))
	}

	reviews := make([]*litxplore.Review, len(rows))
	for i := range rows {
		review, err := rows[i].toReview()
		if err != nil {
			return nil, err
		}
		reviews[i] = review
	}
	return reviews, nil
}

func (s *ReviewStore) Delete(ctx context.Context, id int, userID int) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&reviewRow{})
	if res.Error != nil {
		return errors.New("could not delete review", errors.WithCause(res.Error))
	}
	if res.RowsAffected == 0 {
		return errors.New("review not found", errors.NotFound())
	}
	return nil
}

func (s *ReviewStore) Clear(ctx context.Context, userID int) ([]int, error) {
	var ids []int
	err := s.db.WithContext(ctx).
		Model(&reviewRow{}).
		Where("user_id = ?", userID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, errors.New("could not list reviews", errors.WithCause(err))
	}
	if len(ids) == 0 {
		return nil, nil
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&reviewRow{})
	if res.Error != nil {
		return nil, errors.New("could not clear reviews", errors.WithCause(res.Error))
	}
	return ids, nil
}
