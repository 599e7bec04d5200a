package clients

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shelfrate/shelfrate/pkg/errcodes"
	"github.com/uptrace/bun"
)

type RetrieveClientOptions struct {
	ID *int
}

type ListClientsOptions struct {
	Limit  *int
	Offset *int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateClient(ctx context.Context, client *Client) error {
	now := time.Now()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	client.UpdatedAt = client.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(client).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveClient(ctx context.Context, opts RetrieveClientOptions) (*Client, error) {
	client := &Client{}

	q := svc.db.
		NewSelect().
		Model(client)

	if opts.ID != nil {
		q = q.Where("c.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Client")
		}
		return nil, errors.WithStack(err)
	}

	return client, nil
}

func (svc *Service) ListClients(ctx context.Context, opts ListClientsOptions) ([]*Client, error) {
	clients := []*Client{}

	q := svc.db.
		NewSelect().
		Model(&clients).
		Order("c.id ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return clients, nil
}
