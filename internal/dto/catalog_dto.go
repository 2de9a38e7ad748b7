package dto

type CategoryRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type GenreRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type TitleRequest struct {
	Name        string   `json:"name"`
	Year        int      `json:"year"`
	Description string   `json:"description"`
	Genre       []string `json:"genre"`
	Category    string   `json:"category"`
}

// TitleUpdateRequest carries partial updates; nil fields are untouched.
type TitleUpdateRequest struct {
	Name        *string   `json:"name"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Genre       *[]string `json:"genre"`
	Category    *string   `json:"category"`
}

// TitleFilter narrows title listings; zero values mean no filtering.
type TitleFilter struct {
	CategorySlug string
	GenreSlug    string
	Name         string
	Year         int
}
