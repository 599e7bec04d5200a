package books

import (
	"time"

	"github.com/shelfrate/shelfrate/pkg/authors"
	"github.com/shelfrate/shelfrate/pkg/clients"
	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID        int               `bun:",pk,autoincrement" json:"id"`
	Title     string            `bun:",nullzero" json:"title"`
	Year      int               `json:"year"`
	AvgRating float64           `json:"avg_rating"`
	Authors   []*authors.Author `bun:"m2m:book_authors,join:Book=Author" json:"authors"`
	Ratings   []*Rating         `bun:"rel:has-many,join:id=book_id" json:"ratings"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// MeanRating returns the arithmetic mean of the book's loaded rating scores,
// or 0 when it has none. This is the derived value; AvgRating is the stored
// copy maintained by RateBook.
func (b *Book) MeanRating() float64 {
	if len(b.Ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range b.Ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(b.Ratings))
}

// BookAuthor is the join model for the many-to-many association between books
// and authors. It has to be registered with bun before any m2m relation query
// runs (see database.RegisterModels).
type BookAuthor struct {
	bun.BaseModel `bun:"table:book_authors,alias:ba"`

	BookID   int             `bun:",pk"`
	Book     *Book           `bun:"rel:belongs-to,join:book_id=id"`
	AuthorID int             `bun:",pk"`
	Author   *authors.Author `bun:"rel:belongs-to,join:author_id=id"`
}

// Rating is a client's 1-5 score for a book, unique per (book, client). The
// book back-reference is suppressed from JSON so a serialized Book carries its
// ratings without cycles.
type Rating struct {
	bun.BaseModel `bun:"table:book_ratings,alias:r"`

	BookID    int             `bun:",pk" json:"-"`
	ClientID  int             `bun:",pk" json:"client_id"`
	Client    *clients.Client `bun:"rel:belongs-to,join:client_id=id" json:"-"`
	Rating    int             `json:"rating"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}
