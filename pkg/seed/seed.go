package seed

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shelfrate/shelfrate/pkg/authors"
	"github.com/shelfrate/shelfrate/pkg/books"
	"github.com/shelfrate/shelfrate/pkg/clients"
	"github.com/uptrace/bun"
)

// Run populates an empty database with a small starter catalog. It's a no-op
// when any books already exist, so restarts don't duplicate rows. The returned
// bool reports whether anything was inserted.
func Run(ctx context.Context, db *bun.DB) (bool, error) {
	count, err := db.NewSelect().Model((*books.Book)(nil)).Count(ctx)
	if err != nil {
		return false, errors.WithStack(err)
	}
	if count > 0 {
		return false, nil
	}

	now := time.Now()

	err = db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		seedAuthors := []*authors.Author{
			{Name: "J.K. Rowling"},
			{Name: "George R.R. Martin"},
			{Name: "J.R.R. Tolkien"},
			{Name: "Christopher Nolan"},
			{Name: "George Orwell"},
			{Name: "Agatha Christie"},
		}
		for _, a := range seedAuthors {
			a.CreatedAt = now
			a.UpdatedAt = now
		}
		_, err := tx.NewInsert().Model(&seedAuthors).Returning("*").Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		seedBooks := []*books.Book{
			{Title: "Harry Potter and the Sorcerer's Stone", Year: 1997, AvgRating: 4.5},
			{Title: "A Song of Ice and Fire", Year: 1996, AvgRating: 4.0},
			{Title: "The Lord of the Rings", Year: 1954, AvgRating: 3.0},
			{Title: "Inception", Year: 2010, AvgRating: 2.0},
			{Title: "Harry Potter and the Chamber of Secrets", Year: 1998},
			{Title: "1984", Year: 1949, AvgRating: 5.0},
			{Title: "Murder on the Orient Express", Year: 1949},
			{Title: "The Hobbit", Year: 1937, AvgRating: 4.0},
		}
		for _, b := range seedBooks {
			b.CreatedAt = now
			b.UpdatedAt = now
		}
		_, err = tx.NewInsert().Model(&seedBooks).Returning("*").Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		links := []*books.BookAuthor{
			{BookID: seedBooks[0].ID, AuthorID: seedAuthors[0].ID},
			{BookID: seedBooks[1].ID, AuthorID: seedAuthors[1].ID},
			{BookID: seedBooks[2].ID, AuthorID: seedAuthors[2].ID},
			{BookID: seedBooks[3].ID, AuthorID: seedAuthors[3].ID},
			{BookID: seedBooks[4].ID, AuthorID: seedAuthors[0].ID},
			{BookID: seedBooks[5].ID, AuthorID: seedAuthors[4].ID},
			{BookID: seedBooks[6].ID, AuthorID: seedAuthors[5].ID},
			{BookID: seedBooks[7].ID, AuthorID: seedAuthors[2].ID},
		}
		_, err = tx.NewInsert().Model(&links).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		seedClients := []*clients.Client{
			{Name: "John Doe"},
			{Name: "Jane Smith"},
			{Name: "Alice Johnson"},
		}
		for _, c := range seedClients {
			c.CreatedAt = now
			c.UpdatedAt = now
		}
		_, err = tx.NewInsert().Model(&seedClients).Returning("*").Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		ratings := []*books.Rating{
			{BookID: seedBooks[0].ID, ClientID: seedClients[0].ID, Rating: 5},
			{BookID: seedBooks[0].ID, ClientID: seedClients[1].ID, Rating: 4},
			{BookID: seedBooks[1].ID, ClientID: seedClients[1].ID, Rating: 4},
			{BookID: seedBooks[2].ID, ClientID: seedClients[0].ID, Rating: 3},
			{BookID: seedBooks[3].ID, ClientID: seedClients[2].ID, Rating: 2},
			{BookID: seedBooks[5].ID, ClientID: seedClients[0].ID, Rating: 5},
			{BookID: seedBooks[7].ID, ClientID: seedClients[2].ID, Rating: 4},
		}
		for _, r := range ratings {
			r.CreatedAt = now
			r.UpdatedAt = now
		}
		_, err = tx.NewInsert().Model(&ratings).Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return false, errors.WithStack(err)
	}

	return true, nil
}
