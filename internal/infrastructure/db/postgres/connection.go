package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Stephen-Muteti/writing-backend/internal/config"
	"github.com/Stephen-Muteti/writing-backend/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	sqldblogger "github.com/simukti/sqldb-logger"
)

func Connect(cfg *config.Config, logger logger.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open the database: %w", err)
	}

	// Log every query to the database.
	db = sqldblogger.OpenDriver(cfg.DSN, db.Driver(), logger)

	return db, nil
}

// Bootstrap creates the tables and indexes this service owns. The
// partial unique indexes are the storage-level backstop for the
// one-open-bid-per-writer and one-accepted-bid-per-order rules.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS users (
			id varchar(50) PRIMARY KEY,
			email text NOT NULL UNIQUE,
			full_name text NOT NULL DEFAULT '',
			role varchar(16) NOT NULL DEFAULT 'writer',
			created_at timestamptz NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS orders (
			id varchar(50) PRIMARY KEY,
			title text NOT NULL,
			subject text NOT NULL DEFAULT '',
			type text NOT NULL DEFAULT '',
			pages integer NOT NULL DEFAULT 1,
			deadline timestamptz NOT NULL,
			budget numeric(12,2) NOT NULL DEFAULT 0,
			minimum_budget numeric(12,2) NOT NULL DEFAULT 0,
			status varchar(32) NOT NULL DEFAULT 'pending',
			client_id varchar(50) NOT NULL REFERENCES users(id),
			writer_id varchar(50) REFERENCES users(id),
			description text NOT NULL DEFAULT '',
			requirements text NOT NULL DEFAULT '',
			additional_notes text NOT NULL DEFAULT '',
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz
		);

		CREATE TABLE IF NOT EXISTS bids (
			id varchar(50) PRIMARY KEY,
			order_id varchar(50) NOT NULL REFERENCES orders(id),
			user_id varchar(50) NOT NULL REFERENCES users(id),
			amount numeric(12,2) NOT NULL,
			original_budget numeric(12,2) NOT NULL DEFAULT 0,
			message text NOT NULL DEFAULT '',
			status varchar(16) NOT NULL DEFAULT 'open',
			submitted_at timestamptz NOT NULL DEFAULT now(),
			response_deadline timestamptz NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS bids_one_open_per_writer
			ON bids (order_id, user_id) WHERE status = 'open';
		CREATE UNIQUE INDEX IF NOT EXISTS bids_one_accepted_per_order
			ON bids (order_id) WHERE status = 'accepted';
		CREATE INDEX IF NOT EXISTS bids_order_idx ON bids (order_id);
		CREATE INDEX IF NOT EXISTS bids_user_idx ON bids (user_id);

		CREATE TABLE IF NOT EXISTS payment_methods (
			id varchar(50) PRIMARY KEY,
			user_id varchar(50) NOT NULL REFERENCES users(id),
			method varchar(50) NOT NULL,
			details varchar(255) NOT NULL,
			is_default boolean NOT NULL DEFAULT false,
			created_at timestamptz NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS transactions (
			id varchar(50) PRIMARY KEY,
			user_id varchar(50) NOT NULL REFERENCES users(id),
			type varchar(16) NOT NULL,
			amount numeric(12,2) NOT NULL,
			description text NOT NULL DEFAULT '',
			status varchar(16) NOT NULL DEFAULT 'pending',
			order_id varchar(50),
			payment_method_id varchar(50) REFERENCES payment_methods(id),
			created_at timestamptz NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS transactions_user_idx ON transactions (user_id);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}

	return nil
}
