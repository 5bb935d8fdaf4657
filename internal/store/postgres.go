package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pi-senac-4/studybuddy-web/internal/models"
)

// PostgresRecorder appends submission attempts to PostgreSQL.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

func NewPostgresRecorder(pool *pgxpool.Pool) *PostgresRecorder {
	return &PostgresRecorder{pool: pool}
}

// Migrate creates the submission_attempts table if it doesn't exist.
func (s *PostgresRecorder) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS submission_attempts (
			id          BIGSERIAL PRIMARY KEY,
			mode        VARCHAR(16)  NOT NULL,
			email       VARCHAR(255) NOT NULL,
			outcome     VARCHAR(16)  NOT NULL,
			status_code INTEGER      NOT NULL DEFAULT 0,
			detail      TEXT         NOT NULL DEFAULT '',
			at          TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (s *PostgresRecorder) Record(ctx context.Context, a models.Attempt) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO submission_attempts (mode, email, outcome, status_code, detail, at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		string(a.Mode), a.Email, string(a.Outcome), a.StatusCode, a.Detail, a.At,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}
