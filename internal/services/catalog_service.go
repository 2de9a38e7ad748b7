package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"yamdb-backend/internal/config"
	"yamdb-backend/internal/database"
	"yamdb-backend/internal/dto"
	"yamdb-backend/internal/models"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// CatalogService manages the shared reference data: categories and
// genres. Both are slug-addressed, list/create/delete only.
type CatalogService struct {
	db     *database.DB
	limits config.Limits
}

func NewCatalogService(db *database.DB, limits config.Limits) *CatalogService {
	return &CatalogService{db: db, limits: limits}
}

func (s *CatalogService) ListCategories(search string, page Page) ([]models.Category, int, error) {
	var categories []models.Category
	count, err := s.listRef("categories", search, page, &categories)
	if err != nil {
		return nil, 0, err
	}
	return categories, count, nil
}

func (s *CatalogService) ListGenres(search string, page Page) ([]models.Genre, int, error) {
	var genres []models.Genre
	count, err := s.listRef("genres", search, page, &genres)
	if err != nil {
		return nil, 0, err
	}
	return genres, count, nil
}

func (s *CatalogService) CreateCategory(req *dto.CategoryRequest) (*models.Category, error) {
	if err := s.validateRef(req.Name, req.Slug); err != nil {
		return nil, err
	}
	if err := s.checkSlugFree("categories", req.Slug); err != nil {
		return nil, err
	}

	var category models.Category
	query := "insert into categories (name, slug) values ($1, $2) returning id, name, slug"
	if err := s.db.Get(&category, query, req.Name, req.Slug); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &category, nil
}

func (s *CatalogService) CreateGenre(req *dto.GenreRequest) (*models.Genre, error) {
	if err := s.validateRef(req.Name, req.Slug); err != nil {
		return nil, err
	}
	if err := s.checkSlugFree("genres", req.Slug); err != nil {
		return nil, err
	}

	var genre models.Genre
	query := "insert into genres (name, slug) values ($1, $2) returning id, name, slug"
	if err := s.db.Get(&genre, query, req.Name, req.Slug); err != nil {
		return nil, fmt.Errorf("failed to create genre: %w", err)
	}
	return &genre, nil
}

// DeleteCategory removes a category; titles referencing it keep existing
// with an absent category (ON DELETE SET NULL).
func (s *CatalogService) DeleteCategory(slug string) error {
	return s.deleteRef("categories", slug, ErrCategoryNotFound)
}

func (s *CatalogService) DeleteGenre(slug string) error {
	return s.deleteRef("genres", slug, ErrGenreNotFound)
}

func (s *CatalogService) listRef(table, search string, page Page, dest interface{}) (int, error) {
	where := ""
	args := []interface{}{}
	if search != "" {
		where = "where name ilike $1"
		args = append(args, "%"+search+"%")
	}

	var count int
	if err := s.db.Get(&count, fmt.Sprintf("select count(*) from %s %s", table, where), args...); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	query := fmt.Sprintf(
		"select id, name, slug from %s %s order by name, id limit $%d offset $%d",
		table, where, len(args)+1, len(args)+2,
	)
	args = append(args, page.limit(), page.offset())
	if err := s.db.Select(dest, query, args...); err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", table, err)
	}
	return count, nil
}

func (s *CatalogService) deleteRef(table, slug string, notFound error) error {
	result, err := s.db.Exec(fmt.Sprintf("delete from %s where slug = $1", table), slug)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

func (s *CatalogService) checkSlugFree(table, slug string) error {
	var taken bool
	query := fmt.Sprintf("select exists(select 1 from %s where slug = $1)", table)
	if err := s.db.Get(&taken, query, slug); err != nil {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	if taken {
		return validationf("slug %q is already in use", slug)
	}
	return nil
}

func (s *CatalogService) validateRef(name, slug string) error {
	if strings.TrimSpace(name) == "" {
		return validationf("name is required")
	}
	if utf8.RuneCountInString(name) > s.limits.NameMaxLen {
		return validationf("name must be at most %d characters", s.limits.NameMaxLen)
	}
	if slug == "" {
		return validationf("slug is required")
	}
	if len(slug) > s.limits.SlugMaxLen {
		return validationf("slug must be at most %d characters", s.limits.SlugMaxLen)
	}
	if !slugPattern.MatchString(slug) {
		return validationf("slug may contain only letters, digits, hyphens and underscores")
	}
	return nil
}
