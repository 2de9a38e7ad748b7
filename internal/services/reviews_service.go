package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"yamdb-backend/internal/config"
	"yamdb-backend/internal/database"
	"yamdb-backend/internal/dto"
	"yamdb-backend/internal/models"

	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

type ReviewsService struct {
	db     *database.DB
	limits config.Limits
}

func NewReviewsService(db *database.DB, limits config.Limits) *ReviewsService {
	return &ReviewsService{db: db, limits: limits}
}

const reviewSelect = `
	select r.id, r.title_id, r.author_id, u.username as author,
	       r.text, r.score, r.pub_date
	from reviews r
	join users u on u.id = r.author_id
`

func (s *ReviewsService) ListByTitle(titleID int64, page Page) ([]models.Review, int, error) {
	if err := s.requireTitle(titleID); err != nil {
		return nil, 0, err
	}

	var count int
	if err := s.db.Get(&count, "select count(*) from reviews where title_id = $1", titleID); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query := reviewSelect + " where r.title_id = $1 order by r.id, r.pub_date limit $2 offset $3"
	reviews := []models.Review{}
	if err := s.db.Select(&reviews, query, titleID, page.limit(), page.offset()); err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, count, nil
}

// Get returns the review only if it belongs to the given title; a review
// reached through the wrong title's path does not exist in that context.
func (s *ReviewsService) Get(titleID, reviewID int64) (*models.Review, error) {
	var review models.Review
	query := reviewSelect + " where r.id = $1"
	if err := s.db.Get(&review, query, reviewID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	if review.TitleID != titleID {
		return nil, ErrReviewNotFound
	}
	return &review, nil
}

// Create adds a review, enforcing one review per (title, author). The
// database constraint backs the pre-check, so a concurrent duplicate
// surfaces as the same conflict error.
func (s *ReviewsService) Create(titleID, authorID int64, req *dto.ReviewRequest) (*models.Review, error) {
	if err := s.requireTitle(titleID); err != nil {
		return nil, err
	}
	if err := s.validateReview(req.Text, req.Score); err != nil {
		return nil, err
	}

	var exists bool
	check := "select exists(select 1 from reviews where title_id = $1 and author_id = $2)"
	if err := s.db.Get(&exists, check, titleID, authorID); err != nil {
		return nil, fmt.Errorf("failed to check for existing review: %w", err)
	}
	if exists {
		return nil, ErrReviewExists
	}

	var reviewID int64
	insert := `
		insert into reviews (title_id, author_id, text, score)
		values ($1, $2, $3, $4)
		returning id
	`
	if err := s.db.Get(&reviewID, insert, titleID, authorID, req.Text, req.Score); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, ErrReviewExists
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return s.Get(titleID, reviewID)
}

func (s *ReviewsService) Update(titleID, reviewID int64, req *dto.ReviewUpdateRequest) (*models.Review, error) {
	review, err := s.Get(titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		review.Score = *req.Score
	}
	if err := s.validateReview(review.Text, review.Score); err != nil {
		return nil, err
	}

	query := "update reviews set text = $1, score = $2 where id = $3"
	if _, err := s.db.Exec(query, review.Text, review.Score, reviewID); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	return review, nil
}

// Delete removes a review and, by cascade, its comments.
func (s *ReviewsService) Delete(titleID, reviewID int64) error {
	if _, err := s.Get(titleID, reviewID); err != nil {
		return err
	}
	if _, err := s.db.Exec("delete from reviews where id = $1", reviewID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

func (s *ReviewsService) requireTitle(titleID int64) error {
	var exists bool
	if err := s.db.Get(&exists, "select exists(select 1 from titles where id = $1)", titleID); err != nil {
		return fmt.Errorf("failed to check title: %w", err)
	}
	if !exists {
		return ErrTitleNotFound
	}
	return nil
}

func (s *ReviewsService) validateReview(text string, score int) error {
	if strings.TrimSpace(text) == "" {
		return validationf("text is required")
	}
	if utf8.RuneCountInString(text) > s.limits.TextMaxLen {
		return validationf("text must be at most %d characters", s.limits.TextMaxLen)
	}
	if score < s.limits.MinScore || score > s.limits.MaxScore {
		return validationf("score must be between %d and %d", s.limits.MinScore, s.limits.MaxScore)
	}
	return nil
}
