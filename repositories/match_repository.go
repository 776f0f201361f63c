package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shuttleclub/doubles-server/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	Insert(ctx context.Context, exec SQLExecutor, tournamentID string, m *models.Match) error
	ListByTournament(ctx context.Context, tournamentID string) ([]models.Match, error)
	UpdateScore(ctx context.Context, exec SQLExecutor, tournamentID string, matchID, scoreA, scoreB int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Insert(ctx context.Context, exec SQLExecutor, tournamentID string, m *models.Match) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `
		INSERT INTO matches (
			tournament_id, id, round, team_a_p1, team_a_p2, team_b_p1, team_b_p2,
			score_a, score_b, completed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		tournamentID, m.ID, m.Round,
		m.TeamA.Player1, m.TeamA.Player2, m.TeamB.Player1, m.TeamB.Player2,
		m.ScoreA, m.ScoreB, m.Completed)
	return err
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID string) ([]models.Match, error) {
	query := `
		SELECT id, round, team_a_p1, team_a_p2, team_b_p1, team_b_p2, score_a, score_b, completed
		FROM matches
		WHERE tournament_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := []models.Match{}
	for rows.Next() {
		var m models.Match
		var scoreA, scoreB sql.NullInt64
		err := rows.Scan(&m.ID, &m.Round,
			&m.TeamA.Player1, &m.TeamA.Player2, &m.TeamB.Player1, &m.TeamB.Player2,
			&scoreA, &scoreB, &m.Completed)
		if err != nil {
			return nil, err
		}
		if scoreA.Valid {
			v := int(scoreA.Int64)
			m.ScoreA = &v
		}
		if scoreB.Valid {
			v := int(scoreB.Int64)
			m.ScoreB = &v
		}
		if m.Completed && m.ScoreA != nil && m.ScoreB != nil {
			winner := models.WinnerTeamB
			if *m.ScoreA > *m.ScoreB {
				winner = models.WinnerTeamA
			}
			m.WinnerTeam = &winner
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, exec SQLExecutor, tournamentID string, matchID, scoreA, scoreB int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `
		UPDATE matches
		SET score_a = $1, score_b = $2, completed = true
		WHERE tournament_id = $3 AND id = $4`,
		scoreA, scoreB, tournamentID, matchID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
