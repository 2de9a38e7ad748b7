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
)

type CommentsService struct {
	db      *database.DB
	reviews *ReviewsService
	limits  config.Limits
}

func NewCommentsService(db *database.DB, reviews *ReviewsService, limits config.Limits) *CommentsService {
	return &CommentsService{db: db, reviews: reviews, limits: limits}
}

const commentSelect = `
	select c.id, c.review_id, c.author_id, u.username as author,
	       c.text, c.pub_date
	from comments c
	join users u on u.id = c.author_id
`

func (s *CommentsService) ListByReview(titleID, reviewID int64, page Page) ([]models.Comment, int, error) {
	if _, err := s.reviews.Get(titleID, reviewID); err != nil {
		return nil, 0, err
	}

	var count int
	if err := s.db.Get(&count, "select count(*) from comments where review_id = $1", reviewID); err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	query := commentSelect + " where c.review_id = $1 order by c.id, c.pub_date limit $2 offset $3"
	comments := []models.Comment{}
	if err := s.db.Select(&comments, query, reviewID, page.limit(), page.offset()); err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, count, nil
}

func (s *CommentsService) Get(titleID, reviewID, commentID int64) (*models.Comment, error) {
	if _, err := s.reviews.Get(titleID, reviewID); err != nil {
		return nil, err
	}

	var comment models.Comment
	query := commentSelect + " where c.id = $1"
	if err := s.db.Get(&comment, query, commentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	if comment.ReviewID != reviewID {
		return nil, ErrCommentNotFound
	}
	return &comment, nil
}

// Create attaches a comment to the review resolved through both path
// identifiers; a review that exists under a different title is treated
// as missing.
func (s *CommentsService) Create(titleID, reviewID, authorID int64, req *dto.CommentRequest) (*models.Comment, error) {
	if _, err := s.reviews.Get(titleID, reviewID); err != nil {
		return nil, err
	}
	if err := s.validateText(req.Text); err != nil {
		return nil, err
	}

	var commentID int64
	insert := "insert into comments (review_id, author_id, text) values ($1, $2, $3) returning id"
	if err := s.db.Get(&commentID, insert, reviewID, authorID, req.Text); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return s.Get(titleID, reviewID, commentID)
}

func (s *CommentsService) Update(titleID, reviewID, commentID int64, req *dto.CommentUpdateRequest) (*models.Comment, error) {
	comment, err := s.Get(titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	if req.Text != nil {
		if err := s.validateText(*req.Text); err != nil {
			return nil, err
		}
		comment.Text = *req.Text
	}

	if _, err := s.db.Exec("update comments set text = $1 where id = $2", comment.Text, commentID); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return comment, nil
}

func (s *CommentsService) Delete(titleID, reviewID, commentID int64) error {
	if _, err := s.Get(titleID, reviewID, commentID); err != nil {
		return err
	}
	if _, err := s.db.Exec("delete from comments where id = $1", commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

func (s *CommentsService) validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return validationf("text is required")
	}
	if utf8.RuneCountInString(text) > s.limits.TextMaxLen {
		return validationf("text must be at most %d characters", s.limits.TextMaxLen)
	}
	return nil
}
