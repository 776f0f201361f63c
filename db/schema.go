package db

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates the tournament tables if they do not exist. It runs
// once at service startup, before any handler is wired.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tournaments (
			id text PRIMARY KEY,
			access_code text NOT NULL,
			date text NOT NULL,
			current_round int NOT NULL DEFAULT 1,
			is_finalized boolean NOT NULL DEFAULT false,
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS players (
			tournament_id text NOT NULL,
			id int NOT NULL,
			name text NOT NULL,
			total_score int NOT NULL DEFAULT 0,
			PRIMARY KEY (tournament_id, id),
			FOREIGN KEY (tournament_id) REFERENCES tournaments(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS matches (
			tournament_id text NOT NULL,
			id int NOT NULL,
			round int NOT NULL,
			team_a_p1 int NOT NULL,
			team_a_p2 int NOT NULL,
			team_b_p1 int NOT NULL,
			team_b_p2 int NOT NULL,
			score_a int,
			score_b int,
			completed boolean NOT NULL DEFAULT false,
			PRIMARY KEY (tournament_id, id),
			FOREIGN KEY (tournament_id) REFERENCES tournaments(id) ON DELETE CASCADE
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
