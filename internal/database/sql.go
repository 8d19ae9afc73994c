package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// OpenSQL opens and pings the relational store. SQLite is limited to a
// single connection so that in-memory databases are shared and writes are
// serialized.
func OpenSQL(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// InitTables creates all tables and indexes if they don't exist.
func InitTables(ctx context.Context, db *sql.DB, driver string) error {
	for _, query := range schema(driver) {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func schema(driver string) []string {
	pk, ts := "BIGSERIAL PRIMARY KEY", "TIMESTAMPTZ"
	if driver == DriverSQLite {
		pk, ts = "INTEGER PRIMARY KEY AUTOINCREMENT", "DATETIME"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id ` + pk + `,
			full_name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			created_at ` + ts + ` NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS journal_entries (
			id ` + pk + `,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			client_id VARCHAR(255),
			title VARCHAR(255) NOT NULL,
			content TEXT NOT NULL,
			mood VARCHAR(50) NOT NULL,
			created_at ` + ts + ` NOT NULL,
			updated_at ` + ts + ` NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS mood_logs (
			id ` + pk + `,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			mood_level INTEGER NOT NULL,
			notes TEXT NOT NULL,
			logged_at ` + ts + ` NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_journal_entries_user_created ON journal_entries(user_id, created_at)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_journal_entries_client_id ON journal_entries(user_id, client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_mood_logs_user_logged ON mood_logs(user_id, logged_at)`,
	}
}

// Rebind rewrites '?' placeholders into the driver's bind syntax.
func Rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
