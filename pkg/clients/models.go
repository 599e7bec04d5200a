package clients

import (
	"time"

	"github.com/uptrace/bun"
)

// Client is a reader who can rate books. Ratings reference clients by id; the
// back-reference from client to ratings is never modeled to keep serialization
// acyclic.
type Client struct {
	bun.BaseModel `bun:"table:clients,alias:c"`

	ID        int       `bun:",pk,autoincrement" json:"id"`
	Name      string    `bun:",nullzero" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
