package books

type FilterBooksQuery struct {
	Title  string   `query:"title" json:"title,omitempty" validate:"omitempty,max=300"`
	Year   *int     `query:"year" json:"year,omitempty"`
	Author string   `query:"author" json:"author,omitempty" validate:"omitempty,max=200"`
	Rating *float64 `query:"rating" json:"rating,omitempty"`
}

type CreateBookPayload struct {
	Title     string  `json:"title" mod:"trim" validate:"required,max=300"`
	Year      int     `json:"year" validate:"required"`
	AvgRating float64 `json:"avg_rating"`
	AuthorIDs []int   `json:"author_ids" validate:"omitempty,dive,min=1"`
}

type UpdateBookPayload struct {
	Title string `json:"title" mod:"trim" validate:"required,max=300"`
	Year  int    `json:"year" validate:"required"`
	// AvgRating is overwritten as given: a manual override that lasts until
	// the next rating submission recomputes the stored average.
	AvgRating float64 `json:"avg_rating"`
}

type RateBookPayload struct {
	ClientID int `json:"client_id" validate:"required"`
	// Score bounds (1-5) are enforced by the book_ratings CHECK constraint,
	// not here.
	Rating int `json:"rating" validate:"required"`
}
