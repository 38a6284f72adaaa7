package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/Freeeeeet/slot_swap_bot/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxOptionsSerializable(t *testing.T) {
	assert.Equal(t, pgx.Serializable, txOptions.IsoLevel)
}

func TestWithinTxIsolationLevel(t *testing.T) {
	dsn := os.Getenv("SWAPBOT_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("SWAPBOT_TEST_PG_DSN is not set")
	}

	ctx := context.Background()
	pool, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	var level string
	err = NewStore(pool).WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		return tx.(*txStore).slots.q.QueryRow(ctx, `SHOW transaction_isolation`).Scan(&level)
	})
	require.NoError(t, err)
	assert.Equal(t, "serializable", level)
}
