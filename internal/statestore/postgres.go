package statestore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"rentacar-escrow-backend/internal/logger"
)

// PostgresBackend persists the key space in a single escrow_state table.
// Apply runs the whole batch in one transaction, which is what makes an
// engine operation all-or-nothing against a real database.
type PostgresBackend struct {
	db *sql.DB
}

func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// EnsureSchema creates the state table if it does not exist.
func (p *PostgresBackend) EnsureSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS escrow_state (key TEXT PRIMARY KEY, value JSONB NOT NULL)`
	logger.DatabaseCall("EnsureSchema", query)
	_, err := p.db.ExecContext(ctx, query)
	return err
}

func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var raw []byte
	query := `SELECT value FROM escrow_state WHERE key = $1`
	err := p.db.QueryRowContext(ctx, query, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (p *PostgresBackend) List(ctx context.Context, prefix string) (map[string][]byte, error) {
	query := `SELECT key, value FROM escrow_state WHERE key LIKE $1`
	rows, err := p.db.QueryContext(ctx, query, prefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		out[key] = raw
	}
	return out, rows.Err()
}

func (p *PostgresBackend) Apply(ctx context.Context, batch *Batch) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin state commit: %w", err)
	}

	for _, mut := range batch.mutations {
		if mut.value == nil {
			_, err = tx.ExecContext(ctx, `DELETE FROM escrow_state WHERE key = $1`, mut.key)
		} else {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO escrow_state (key, value) VALUES ($1, $2)
				 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
				mut.key, mut.value)
		}
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("apply %s: %w", mut.key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state batch: %w", err)
	}
	return nil
}
