package services

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrGenreNotFound    = errors.New("genre not found")
	ErrTitleNotFound    = errors.New("title not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrCommentNotFound  = errors.New("comment not found")

	// ErrReviewExists covers both the pre-check and the losing side of a
	// concurrent duplicate-review race.
	ErrReviewExists = errors.New("review for this title by this author already exists")

	ErrInvalidCode = errors.New("invalid confirmation code")
)

// ValidationError reports malformed or out-of-range input with a
// client-facing message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Page is a 1-based page request with a fixed size.
type Page struct {
	Number int
	Size   int
}

func (p Page) limit() int {
	return p.Size
}

func (p Page) offset() int {
	n := p.Number
	if n < 1 {
		n = 1
	}
	return (n - 1) * p.Size
}
