package clients

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shelfrate/shelfrate/pkg/errcodes"
	"github.com/shelfrate/shelfrate/pkg/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestCreateClient_AssignsID(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	svc := NewService(db)
	client := &Client{Name: "John Doe"}
	require.NoError(t, svc.CreateClient(ctx, client))

	assert.NotZero(t, client.ID)
	assert.False(t, client.CreatedAt.IsZero())
}

func TestRetrieveClient_NotFound(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	svc := NewService(db)
	id := 999
	_, err := svc.RetrieveClient(ctx, RetrieveClientOptions{ID: &id})
	require.Error(t, err)

	cerr := &errcodes.Error{}
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "Client not found.", cerr.Message)
}

func TestListClients_OrderedByID(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	svc := NewService(db)
	for _, name := range []string{"John Doe", "Jane Smith", "Alice Johnson"} {
		require.NoError(t, svc.CreateClient(ctx, &Client{Name: name}))
	}

	all, err := svc.ListClients(ctx, ListClientsOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "John Doe", all[0].Name)
	assert.Equal(t, "Alice Johnson", all[2].Name)
}
