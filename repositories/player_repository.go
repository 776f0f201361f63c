package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shuttleclub/doubles-server/models"
)

var ErrPlayerNotFound = errors.New("player not found")

// PlayerRepository persists player rows. The store keeps only the name and
// the total score; per-round slots are reconstructed from the match rows
// when a snapshot is assembled.
type PlayerRepository interface {
	Insert(ctx context.Context, exec SQLExecutor, tournamentID string, p *models.Player) error
	ListByTournament(ctx context.Context, tournamentID string) ([]models.Player, error)
	// ListByTotalDesc orders players by stored total for history display.
	ListByTotalDesc(ctx context.Context, tournamentID string) ([]models.Player, error)
	UpdateName(ctx context.Context, exec SQLExecutor, tournamentID string, playerID int, name string) error
	UpdateTotalScore(ctx context.Context, exec SQLExecutor, tournamentID string, playerID int, total int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) Insert(ctx context.Context, exec SQLExecutor, tournamentID string, p *models.Player) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`INSERT INTO players (tournament_id, id, name, total_score) VALUES ($1, $2, $3, $4)`,
		tournamentID, p.ID, p.Name, p.TotalScore)
	return err
}

func (r *postgresPlayerRepository) list(ctx context.Context, tournamentID, orderBy string) ([]models.Player, error) {
	query := `
		SELECT id, name, total_score
		FROM players
		WHERE tournament_id = $1
		ORDER BY ` + orderBy

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []models.Player{}
	for rows.Next() {
		p := models.Player{Scores: make([]int, models.RoundCount)}
		if err := rows.Scan(&p.ID, &p.Name, &p.TotalScore); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) ListByTournament(ctx context.Context, tournamentID string) ([]models.Player, error) {
	return r.list(ctx, tournamentID, "id ASC")
}

func (r *postgresPlayerRepository) ListByTotalDesc(ctx context.Context, tournamentID string) ([]models.Player, error) {
	return r.list(ctx, tournamentID, "total_score DESC, id ASC")
}

func (r *postgresPlayerRepository) UpdateName(ctx context.Context, exec SQLExecutor, tournamentID string, playerID int, name string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE players SET name = $1 WHERE tournament_id = $2 AND id = $3`,
		name, tournamentID, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdateTotalScore(ctx context.Context, exec SQLExecutor, tournamentID string, playerID int, total int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE players SET total_score = $1 WHERE tournament_id = $2 AND id = $3`,
		total, tournamentID, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
