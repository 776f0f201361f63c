package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shuttleclub/doubles-server/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

// TournamentRepository persists the tournaments table rows. Players and
// matches live in their own repositories; snapshot assembly is a service
// concern.
type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	// GetActiveByAccessCode returns the newest non-finalized tournament
	// registered under the code.
	GetActiveByAccessCode(ctx context.Context, accessCode string) (*models.Tournament, error)
	// GetNewestActive returns the newest non-finalized tournament, or
	// ErrTournamentNotFound when none is active.
	GetNewestActive(ctx context.Context) (*models.Tournament, error)
	CountActive(ctx context.Context) (int, error)
	ListFinalized(ctx context.Context) ([]models.Tournament, error)
	// ListStaleActiveIDs returns ids of non-finalized tournaments created
	// before the cutoff.
	ListStaleActiveIDs(ctx context.Context, cutoff time.Time) ([]string, error)
	UpdateCurrentRound(ctx context.Context, exec SQLExecutor, id string, round int) error
	SetFinalized(ctx context.Context, exec SQLExecutor, id string) error
	Delete(ctx context.Context, id string) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `id, access_code, date, current_round, is_finalized, created_at`

func scanTournament(row interface{ Scan(dest ...interface{}) error }) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(&t.ID, &t.AccessCode, &t.Date, &t.CurrentRound, &t.IsFinalized, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (id, access_code, date, current_round, is_finalized)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	return executor.QueryRowContext(ctx, query,
		t.ID, t.AccessCode, t.Date, t.CurrentRound, t.IsFinalized,
	).Scan(&t.CreatedAt)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return scanTournament(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) GetActiveByAccessCode(ctx context.Context, accessCode string) (*models.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE access_code = $1 AND is_finalized = false
		ORDER BY created_at DESC
		LIMIT 1`
	return scanTournament(r.db.QueryRowContext(ctx, query, accessCode))
}

func (r *postgresTournamentRepository) GetNewestActive(ctx context.Context) (*models.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE is_finalized = false
		ORDER BY created_at DESC
		LIMIT 1`
	return scanTournament(r.db.QueryRowContext(ctx, query))
}

func (r *postgresTournamentRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	query := `SELECT count(*) FROM tournaments WHERE is_finalized = false`
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresTournamentRepository) ListFinalized(ctx context.Context) ([]models.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE is_finalized = true
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := []models.Tournament{}
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, *t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) ListStaleActiveIDs(ctx context.Context, cutoff time.Time) ([]string, error) {
	query := `SELECT id FROM tournaments WHERE is_finalized = false AND created_at < $1`

	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresTournamentRepository) UpdateCurrentRound(ctx context.Context, exec SQLExecutor, id string, round int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE tournaments SET current_round = $1 WHERE id = $2`, round, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetFinalized(ctx context.Context, exec SQLExecutor, id string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE tournaments SET is_finalized = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id string) error {
	// Players and matches cascade via their foreign keys.
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
