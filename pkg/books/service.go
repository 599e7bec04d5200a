package books

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shelfrate/shelfrate/pkg/clients"
	"github.com/shelfrate/shelfrate/pkg/errcodes"
	"github.com/uptrace/bun"
)

type RetrieveBookOptions struct {
	ID *int
}

// ListBooksOptions are the filter predicates applied by ListBooks. Nil (or
// empty-string) fields skip their pass.
type ListBooksOptions struct {
	Title     *string
	Year      *int
	Author    *string
	MinRating *float64
}

type UpdateBookOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateBook inserts the book and its author associations in one transaction.
// Unknown author ids fail the whole transaction via the foreign key.
func (svc *Service) CreateBook(ctx context.Context, book *Book, authorIDs []int) error {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(book).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		if len(authorIDs) == 0 {
			return nil
		}

		joins := make([]*BookAuthor, 0, len(authorIDs))
		for _, authorID := range authorIDs {
			joins = append(joins, &BookAuthor{BookID: book.ID, AuthorID: authorID})
		}
		_, err = tx.
			NewInsert().
			Model(&joins).
			Exec(ctx)
		return errors.WithStack(err)
	})
	return errors.WithStack(err)
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*Book, error) {
	book := &Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		Relation("Authors", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("a.id ASC")
		}).
		Relation("Ratings", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("r.client_id ASC")
		})

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

// ListBooks loads the full collection and narrows it in memory, applying each
// supplied predicate in a fixed order: title, year, author, min rating. The
// collection order (ascending id) survives every pass. Nothing is pushed down
// to SQL; fine at this catalog's scale.
func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*Book, error) {
	books := []*Book{}

	err := svc.db.
		NewSelect().
		Model(&books).
		Relation("Authors", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("a.id ASC")
		}).
		Relation("Ratings", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("r.client_id ASC")
		}).
		Order("b.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if opts.Title != nil && *opts.Title != "" {
		title := strings.ToLower(*opts.Title)
		books = keepBooks(books, func(b *Book) bool {
			return strings.Contains(strings.ToLower(b.Title), title)
		})
	}
	if opts.Year != nil {
		books = keepBooks(books, func(b *Book) bool {
			return b.Year == *opts.Year
		})
	}
	if opts.Author != nil && *opts.Author != "" {
		author := strings.ToLower(*opts.Author)
		books = keepBooks(books, func(b *Book) bool {
			for _, a := range b.Authors {
				if strings.Contains(strings.ToLower(a.Name), author) {
					return true
				}
			}
			return false
		})
	}
	if opts.MinRating != nil {
		// The threshold compares against the current mean of loaded scores,
		// not the stored avg_rating, which update can override manually.
		books = keepBooks(books, func(b *Book) bool {
			return b.MeanRating() >= *opts.MinRating
		})
	}

	return books, nil
}

func keepBooks(books []*Book, keep func(*Book) bool) []*Book {
	filtered := []*Book{}
	for _, b := range books {
		if keep(b) {
			filtered = append(filtered, b)
		}
	}
	return filtered
}

func (svc *Service) UpdateBook(ctx context.Context, book *Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	book.UpdatedAt = time.Now()
	opts.Columns = append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(book).
		Column(opts.Columns...).
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// DeleteBook removes the book together with its ratings and author links in
// one transaction. The book owns its ratings, so they go with it; the schema
// cascade is only a backstop. Deleting an absent id is a no-op.
func (svc *Service) DeleteBook(ctx context.Context, id int) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewDelete().
			Model((*Rating)(nil)).
			Where("book_id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.
			NewDelete().
			Model((*BookAuthor)(nil)).
			Where("book_id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.
			NewDelete().
			Model((*Book)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return errors.WithStack(err)
	})
	return errors.WithStack(err)
}

// RateBook upserts the (book, client) rating and recomputes the book's stored
// average from all current scores. Lookups fail fast: the client is never
// checked when the book is missing, and nothing is written on a failed lookup.
func (svc *Service) RateBook(ctx context.Context, bookID, clientID, score int) (*Book, error) {
	book, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &bookID})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	client := &clients.Client{}
	err = svc.db.
		NewSelect().
		Model(client).
		Where("c.id = ?", clientID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Client")
		}
		return nil, errors.WithStack(err)
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now()
		rating := &Rating{
			BookID:    book.ID,
			ClientID:  client.ID,
			Rating:    score,
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, err := tx.
			NewInsert().
			Model(rating).
			On("CONFLICT (book_id, client_id) DO UPDATE").
			Set("rating = EXCLUDED.rating").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		ratings := []*Rating{}
		err = tx.
			NewSelect().
			Model(&ratings).
			Where("r.book_id = ?", book.ID).
			Scan(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		avg := 0.0
		if len(ratings) > 0 {
			sum := 0
			for _, r := range ratings {
				sum += r.Rating
			}
			avg = float64(sum) / float64(len(ratings))
		}

		book.AvgRating = avg
		book.UpdatedAt = now
		_, err = tx.
			NewUpdate().
			Model(book).
			Column("avg_rating", "updated_at").
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
}
