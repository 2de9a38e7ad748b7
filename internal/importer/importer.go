// Package importer bulk-loads the fixed-schema CSV fixtures into the
// database. Rows are inserted with their original primary keys and
// conflicting keys are skipped, so re-running an import is a no-op for
// rows that already exist.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"yamdb-backend/internal/database"

	"github.com/hashicorp/go-multierror"
)

type Importer struct {
	db *database.DB
}

func New(db *database.DB) *Importer {
	return &Importer{db: db}
}

type fileSpec struct {
	name   string
	insert string
	fields []string
}

// Load order respects foreign keys: reference data and users first,
// then titles, then the join table and the review tree.
var files = []fileSpec{
	{
		name:   "users.csv",
		insert: "insert into users (id, username, email, role) values ($1, $2, $3, $4) on conflict (id) do nothing",
		fields: []string{"id", "username", "email", "role"},
	},
	{
		name:   "category.csv",
		insert: "insert into categories (id, name, slug) values ($1, $2, $3) on conflict (id) do nothing",
		fields: []string{"id", "name", "slug"},
	},
	{
		name:   "genre.csv",
		insert: "insert into genres (id, name, slug) values ($1, $2, $3) on conflict (id) do nothing",
		fields: []string{"id", "name", "slug"},
	},
	{
		name:   "titles.csv",
		insert: "insert into titles (id, name, year, category_id) values ($1, $2, $3, $4) on conflict (id) do nothing",
		fields: []string{"id", "name", "year", "category_id"},
	},
	{
		name:   "genre_title.csv",
		insert: "insert into title_genres (id, title_id, genre_id) values ($1, $2, $3) on conflict (id) do nothing",
		fields: []string{"id", "title_id", "genre_id"},
	},
	{
		name:   "review.csv",
		insert: "insert into reviews (id, title_id, author_id, text, score, pub_date) values ($1, $2, $3, $4, $5, $6) on conflict (id) do nothing",
		fields: []string{"id", "title_id", "author_id", "text", "score", "pub_date"},
	},
	{
		name:   "comments.csv",
		insert: "insert into comments (id, review_id, author_id, text, pub_date) values ($1, $2, $3, $4, $5) on conflict (id) do nothing",
		fields: []string{"id", "review_id", "author_id", "text", "pub_date"},
	},
}

// Sequences must be advanced past the imported keys or the next insert
// through the API would collide with an imported row.
var sequenceFixes = []string{
	"select setval('users_id_seq', (select coalesce(max(id), 1) from users))",
	"select setval('categories_id_seq', (select coalesce(max(id), 1) from categories))",
	"select setval('genres_id_seq', (select coalesce(max(id), 1) from genres))",
	"select setval('titles_id_seq', (select coalesce(max(id), 1) from titles))",
	"select setval('title_genres_id_seq', (select coalesce(max(id), 1) from title_genres))",
	"select setval('reviews_id_seq', (select coalesce(max(id), 1) from reviews))",
	"select setval('comments_id_seq', (select coalesce(max(id), 1) from comments))",
}

// ImportDir loads every known CSV file found under dir. A bad row is
// recorded and skipped; only the aggregate of all failures is returned.
func (im *Importer) ImportDir(dir string) error {
	var result *multierror.Error

	for _, spec := range files {
		path := filepath.Join(dir, spec.name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := im.importFile(path, spec); err != nil {
			result = multierror.Append(result, err)
		}
	}

	for _, fix := range sequenceFixes {
		if _, err := im.db.Exec(fix); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to advance sequence: %w", err))
		}
	}

	return result.ErrorOrNil()
}

func (im *Importer) importFile(path string, spec fileSpec) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	columns := map[string]int{}
	for i, name := range header {
		columns[name] = i
	}
	for _, field := range spec.fields {
		if _, ok := columns[field]; !ok {
			return fmt.Errorf("%s is missing column %q", path, field)
		}
	}

	var result *multierror.Error
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s line %d: %w", path, line, err))
			continue
		}

		args := make([]interface{}, len(spec.fields))
		for i, field := range spec.fields {
			// Empty cells become NULL so optional references import
			// cleanly.
			if value := record[columns[field]]; value != "" {
				args[i] = value
			}
		}
		if _, err := im.db.Exec(spec.insert, args...); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s line %d: %w", path, line, err))
		}
	}

	return result.ErrorOrNil()
}
