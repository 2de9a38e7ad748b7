package models

// Category and Genre are admin-managed reference data, addressed by slug.
type Category struct {
	ID   int64  `db:"id" json:"-"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
}

type Genre struct {
	ID   int64  `db:"id" json:"-"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
}

type Title struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Year        int    `db:"year" json:"year"`
	Description string `db:"description" json:"description"`

	// Rating is never stored; it is the mean of the title's review scores
	// computed at read time, null when the title has no reviews.
	Rating *float64 `db:"rating" json:"rating"`

	CategoryID *int64    `db:"category_id" json:"-"`
	Category   *Category `db:"-" json:"category"`
	Genres     []Genre   `db:"-" json:"genre"`
}
