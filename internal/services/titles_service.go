package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"yamdb-backend/internal/config"
	"yamdb-backend/internal/database"
	"yamdb-backend/internal/dto"
	"yamdb-backend/internal/models"
)

type TitlesService struct {
	db     *database.DB
	limits config.Limits
}

func NewTitlesService(db *database.DB, limits config.Limits) *TitlesService {
	return &TitlesService{db: db, limits: limits}
}

// titleSelect computes the rating inline as the floating-point mean of
// the title's review scores; AVG over zero rows yields NULL.
const titleSelect = `
	select t.id, t.name, t.year, t.description, t.category_id,
	       avg(r.score)::float8 as rating
	from titles t
	left join reviews r on r.title_id = t.id
`

// List returns one page of titles with computed ratings, filtered by
// category slug, genre slug, exact name and year.
func (s *TitlesService) List(filter dto.TitleFilter, page Page) ([]models.Title, int, error) {
	conditions := []string{}
	args := []interface{}{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CategorySlug != "" {
		conditions = append(conditions,
			"t.category_id = (select id from categories where slug = "+arg(filter.CategorySlug)+")")
	}
	if filter.GenreSlug != "" {
		conditions = append(conditions,
			`exists(
				select 1 from title_genres tg
				join genres g on g.id = tg.genre_id
				where tg.title_id = t.id and g.slug = `+arg(filter.GenreSlug)+")")
	}
	if filter.Name != "" {
		conditions = append(conditions, "t.name = "+arg(filter.Name))
	}
	if filter.Year != 0 {
		conditions = append(conditions, "t.year = "+arg(filter.Year))
	}

	where := ""
	if len(conditions) > 0 {
		where = "where " + strings.Join(conditions, " and ")
	}

	var count int
	if err := s.db.Get(&count, "select count(*) from titles t "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count titles: %w", err)
	}

	query := fmt.Sprintf(
		"%s %s group by t.id order by t.id, t.name limit %s offset %s",
		titleSelect, where, arg(page.limit()), arg(page.offset()),
	)

	titles := []models.Title{}
	if err := s.db.Select(&titles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list titles: %w", err)
	}

	for i := range titles {
		if err := s.loadRelations(&titles[i]); err != nil {
			return nil, 0, err
		}
	}
	return titles, count, nil
}

func (s *TitlesService) Get(id int64) (*models.Title, error) {
	var title models.Title
	query := titleSelect + " where t.id = $1 group by t.id"
	if err := s.db.Get(&title, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTitleNotFound
		}
		return nil, fmt.Errorf("failed to get title: %w", err)
	}
	if err := s.loadRelations(&title); err != nil {
		return nil, err
	}
	return &title, nil
}

func (s *TitlesService) Create(req *dto.TitleRequest) (*models.Title, error) {
	if err := s.validateName(req.Name); err != nil {
		return nil, err
	}
	if err := s.validateYear(req.Year); err != nil {
		return nil, err
	}
	if len(req.Genre) == 0 {
		return nil, validationf("at least one genre is required")
	}

	genreIDs, err := s.resolveGenres(req.Genre)
	if err != nil {
		return nil, err
	}

	var categoryID *int64
	if req.Category != "" {
		id, err := s.resolveCategory(req.Category)
		if err != nil {
			return nil, err
		}
		categoryID = &id
	}

	var titleID int64
	insert := `
		insert into titles (name, year, description, category_id)
		values ($1, $2, $3, $4)
		returning id
	`
	if err := s.db.Get(&titleID, insert, req.Name, req.Year, req.Description, categoryID); err != nil {
		return nil, fmt.Errorf("failed to create title: %w", err)
	}

	if err := s.setGenres(titleID, genreIDs); err != nil {
		return nil, err
	}
	return s.Get(titleID)
}

func (s *TitlesService) Update(id int64, req *dto.TitleUpdateRequest) (*models.Title, error) {
	title, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := s.validateName(*req.Name); err != nil {
			return nil, err
		}
		title.Name = *req.Name
	}
	if req.Year != nil {
		if err := s.validateYear(*req.Year); err != nil {
			return nil, err
		}
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = *req.Description
	}

	categoryID := title.CategoryID
	if req.Category != nil {
		if *req.Category == "" {
			categoryID = nil
		} else {
			cid, err := s.resolveCategory(*req.Category)
			if err != nil {
				return nil, err
			}
			categoryID = &cid
		}
	}

	update := `
		update titles set name = $1, year = $2, description = $3, category_id = $4
		where id = $5
	`
	if _, err := s.db.Exec(update, title.Name, title.Year, title.Description, categoryID, id); err != nil {
		return nil, fmt.Errorf("failed to update title: %w", err)
	}

	if req.Genre != nil {
		if len(*req.Genre) == 0 {
			return nil, validationf("at least one genre is required")
		}
		genreIDs, err := s.resolveGenres(*req.Genre)
		if err != nil {
			return nil, err
		}
		if _, err := s.db.Exec("delete from title_genres where title_id = $1", id); err != nil {
			return nil, fmt.Errorf("failed to clear title genres: %w", err)
		}
		if err := s.setGenres(id, genreIDs); err != nil {
			return nil, err
		}
	}

	return s.Get(id)
}

// Delete removes a title together with its reviews and their comments.
func (s *TitlesService) Delete(id int64) error {
	result, err := s.db.Exec("delete from titles where id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete title: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete title: %w", err)
	}
	if affected == 0 {
		return ErrTitleNotFound
	}
	return nil
}

func (s *TitlesService) Exists(id int64) (bool, error) {
	var exists bool
	if err := s.db.Get(&exists, "select exists(select 1 from titles where id = $1)", id); err != nil {
		return false, fmt.Errorf("failed to check title: %w", err)
	}
	return exists, nil
}

func (s *TitlesService) loadRelations(title *models.Title) error {
	if title.CategoryID != nil {
		var category models.Category
		query := "select id, name, slug from categories where id = $1"
		if err := s.db.Get(&category, query, *title.CategoryID); err != nil {
			return fmt.Errorf("failed to load category: %w", err)
		}
		title.Category = &category
	}

	genres := []models.Genre{}
	query := `
		select g.id, g.name, g.slug
		from genres g
		join title_genres tg on tg.genre_id = g.id
		where tg.title_id = $1
		order by g.name, g.id
	`
	if err := s.db.Select(&genres, query, title.ID); err != nil {
		return fmt.Errorf("failed to load genres: %w", err)
	}
	title.Genres = genres
	return nil
}

func (s *TitlesService) resolveCategory(slug string) (int64, error) {
	var id int64
	err := s.db.Get(&id, "select id from categories where slug = $1", slug)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, validationf("unknown category %q", slug)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve category: %w", err)
	}
	return id, nil
}

func (s *TitlesService) resolveGenres(slugs []string) ([]int64, error) {
	ids := make([]int64, 0, len(slugs))
	for _, slug := range slugs {
		var id int64
		err := s.db.Get(&id, "select id from genres where slug = $1", slug)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, validationf("unknown genre %q", slug)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve genre: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *TitlesService) setGenres(titleID int64, genreIDs []int64) error {
	for _, genreID := range genreIDs {
		query := `
			insert into title_genres (title_id, genre_id)
			values ($1, $2)
			on conflict (title_id, genre_id) do nothing
		`
		if _, err := s.db.Exec(query, titleID, genreID); err != nil {
			return fmt.Errorf("failed to attach genre: %w", err)
		}
	}
	return nil
}

func (s *TitlesService) validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return validationf("name is required")
	}
	if utf8.RuneCountInString(name) > s.limits.NameMaxLen {
		return validationf("name must be at most %d characters", s.limits.NameMaxLen)
	}
	return nil
}

func (s *TitlesService) validateYear(year int) error {
	if year > time.Now().Year() {
		return validationf("cannot add a title from a future year: %d", year)
	}
	return nil
}
