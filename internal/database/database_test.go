package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	q := "UPDATE mood_logs SET mood_level = ?, notes = ? WHERE id = ? AND user_id = ?"
	assert.Equal(t, "UPDATE mood_logs SET mood_level = $1, notes = $2 WHERE id = $3 AND user_id = $4", Rebind(DriverPostgres, q))
	assert.Equal(t, q, Rebind(DriverSQLite, q))
}

func TestMongoDatabaseName(t *testing.T) {
	assert.Equal(t, "wellness", mongoDatabaseName("mongodb+srv://u:p@cluster0.example.net/wellness?retryWrites=true"))
	assert.Equal(t, "mindmate", mongoDatabaseName("mongodb://localhost:27017"))
	assert.Equal(t, "mindmate", mongoDatabaseName("mongodb://localhost:27017/"))
}

func TestInitTablesIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQL(ctx, DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, InitTables(ctx, db, DriverSQLite))
	require.NoError(t, InitTables(ctx, db, DriverSQLite))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'journal_entries', 'mood_logs')`).Scan(&n))
	assert.Equal(t, 3, n)
}
