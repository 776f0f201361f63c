package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shuttleclub/doubles-server/game"
	"github.com/shuttleclub/doubles-server/models"
	"github.com/shuttleclub/doubles-server/repositories"
)

// CreateTournamentInput carries the only data a tournament needs at birth:
// the room secret and the 8 player names. Date is optional (defaults to
// today).
type CreateTournamentInput struct {
	AccessCode  string   `json:"accessCode"`
	PlayerNames []string `json:"playerNames"`
	Date        string   `json:"date,omitempty"`
}

// SubmitScoreResult is returned from SubmitScore: the fresh snapshot plus
// the incremental descriptor clients forward to the relay for toasts.
type SubmitScoreResult struct {
	Tournament *models.Tournament `json:"tournament"`
	Update     *game.ScoreUpdate  `json:"update"`
}

// TournamentService owns the tournament lifecycle: creation under the
// single-active invariant, score submission, finalization (with total
// reconciliation from match history) and deletion.
type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	GetActiveByAccessCode(ctx context.Context, accessCode string) (*models.Tournament, error)
	// GetActive auto-finalizes stale tournaments, then returns the newest
	// active one, or ErrTournamentNotFound when none is open.
	GetActive(ctx context.Context) (*models.Tournament, error)
	SubmitScore(ctx context.Context, id string, matchID, scoreA, scoreB int, isEdit bool) (*SubmitScoreResult, error)
	RenamePlayers(ctx context.Context, id string, names []string) (*models.Tournament, error)
	Finalize(ctx context.Context, id string) (*models.Tournament, error)
	Delete(ctx context.Context, id string) error
	History(ctx context.Context) ([]models.Tournament, error)
	AutoFinalizeStale(ctx context.Context) error
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	matchRepo      repositories.MatchRepository
	staleAfter     time.Duration
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	staleAfter time.Duration,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		matchRepo:      matchRepo,
		staleAfter:     staleAfter,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	t, err := game.NewTournament(input.AccessCode, input.PlayerNames, input.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	active, err := s.tournamentRepo.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for active tournaments: %w", err)
	}
	if active > 0 {
		return nil, ErrActiveTournamentConflict
	}

	err = s.withTx(ctx, func(tx repositories.SQLExecutor) error {
		if err := s.tournamentRepo.Create(ctx, tx, t); err != nil {
			return fmt.Errorf("failed to insert tournament: %w", err)
		}
		for i := range t.Players {
			if err := s.playerRepo.Insert(ctx, tx, t.ID, &t.Players[i]); err != nil {
				return fmt.Errorf("failed to insert player %d: %w", t.Players[i].ID, err)
			}
		}
		for i := range t.Matches {
			if err := s.matchRepo.Insert(ctx, tx, t.ID, &t.Matches[i]); err != nil {
				return fmt.Errorf("failed to insert match %d: %w", t.Matches[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tournament created",
		slog.String("id", t.ID), slog.String("date", t.Date))
	return t, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	return s.assemble(ctx, id)
}

func (s *tournamentService) GetActiveByAccessCode(ctx context.Context, accessCode string) (*models.Tournament, error) {
	row, err := s.tournamentRepo.GetActiveByAccessCode(ctx, accessCode)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return s.assemble(ctx, row.ID)
}

func (s *tournamentService) GetActive(ctx context.Context) (*models.Tournament, error) {
	// An abandoned session must not hold the single-active slot forever.
	if err := s.AutoFinalizeStale(ctx); err != nil {
		s.logger.Error("auto-finalize sweep failed", slog.Any("error", err))
	}
	row, err := s.tournamentRepo.GetNewestActive(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return row, nil
}

func (s *tournamentService) SubmitScore(ctx context.Context, id string, matchID, scoreA, scoreB int, isEdit bool) (*SubmitScoreResult, error) {
	t, err := s.assemble(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.IsFinalized {
		return nil, ErrTournamentFinalized
	}

	previousRound := t.CurrentRound
	update, err := game.ApplyScore(t, matchID, scoreA, scoreB, isEdit)
	if err != nil {
		switch {
		case errors.Is(err, game.ErrMatchNotFound):
			return nil, ErrMatchNotFound
		case errors.Is(err, game.ErrInvalidScore):
			return nil, ErrInvalidScore
		default:
			return nil, err
		}
	}

	err = s.withTx(ctx, func(tx repositories.SQLExecutor) error {
		if err := s.matchRepo.UpdateScore(ctx, tx, id, matchID, scoreA, scoreB); err != nil {
			return fmt.Errorf("failed to persist match score: %w", err)
		}
		for i := range t.Players {
			p := &t.Players[i]
			if err := s.playerRepo.UpdateTotalScore(ctx, tx, id, p.ID, p.TotalScore); err != nil {
				return fmt.Errorf("failed to persist total for player %d: %w", p.ID, err)
			}
		}
		if t.CurrentRound != previousRound {
			if err := s.tournamentRepo.UpdateCurrentRound(ctx, tx, id, t.CurrentRound); err != nil {
				return fmt.Errorf("failed to persist current round: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("score recorded",
		slog.String("tournament", id),
		slog.Int("match", matchID),
		slog.Int("scoreA", scoreA),
		slog.Int("scoreB", scoreB),
		slog.Bool("edit", isEdit))
	return &SubmitScoreResult{Tournament: t, Update: update}, nil
}

func (s *tournamentService) RenamePlayers(ctx context.Context, id string, names []string) (*models.Tournament, error) {
	if err := game.ValidatePlayerNames(names); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	t, err := s.assemble(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.IsFinalized {
		return nil, ErrTournamentFinalized
	}

	err = s.withTx(ctx, func(tx repositories.SQLExecutor) error {
		for i, name := range names {
			if err := s.playerRepo.UpdateName(ctx, tx, id, i+1, name); err != nil {
				return fmt.Errorf("failed to rename player %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range t.Players {
		t.Players[i].Name = names[i]
	}
	return t, nil
}

// Finalize reconciles every player's total from the completed match history
// and then flips the one-way finalized flag. The reconciled totals are what
// history queries display later, so they must match the matches table even
// if incremental maintenance ever drifted.
func (s *tournamentService) Finalize(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.assemble(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.IsFinalized {
		return t, nil
	}

	game.ReconcileFromMatches(t)

	err = s.withTx(ctx, func(tx repositories.SQLExecutor) error {
		for i := range t.Players {
			p := &t.Players[i]
			if err := s.playerRepo.UpdateTotalScore(ctx, tx, id, p.ID, p.TotalScore); err != nil {
				return fmt.Errorf("failed to persist reconciled total for player %d: %w", p.ID, err)
			}
		}
		if err := s.tournamentRepo.SetFinalized(ctx, tx, id); err != nil {
			return fmt.Errorf("failed to finalize tournament: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.IsFinalized = true
	s.logger.Info("tournament finalized", slog.String("id", id))
	return t, nil
}

func (s *tournamentService) Delete(ctx context.Context, id string) error {
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return mapRepoError(err)
	}
	s.logger.Info("tournament deleted", slog.String("id", id))
	return nil
}

func (s *tournamentService) History(ctx context.Context) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.ListFinalized(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list finalized tournaments: %w", err)
	}
	for i := range tournaments {
		players, err := s.playerRepo.ListByTotalDesc(ctx, tournaments[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load players for tournament %s: %w", tournaments[i].ID, err)
		}
		tournaments[i].Players = players
	}
	return tournaments, nil
}

// AutoFinalizeStale closes every active tournament older than the
// configured threshold, running the same reconciling finalize as the
// explicit endpoint.
func (s *tournamentService) AutoFinalizeStale(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.staleAfter)
	ids, err := s.tournamentRepo.ListStaleActiveIDs(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list stale tournaments: %w", err)
	}
	for _, id := range ids {
		if _, err := s.Finalize(ctx, id); err != nil {
			return fmt.Errorf("failed to auto-finalize tournament %s: %w", id, err)
		}
		s.logger.Info("tournament auto-finalized", slog.String("id", id))
	}
	return nil
}

// assemble loads the full snapshot: the tournament row plus its players and
// matches (fetched concurrently), with player round slots rebuilt from the
// authoritative match list rather than trusted from stored aggregates.
func (s *tournamentService) assemble(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		players, err := s.playerRepo.ListByTournament(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to load players: %w", err)
		}
		t.Players = players
		return nil
	})
	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to load matches: %w", err)
		}
		t.Matches = matches
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	game.ReconcileFromMatches(t)
	return t, nil
}

// withTx runs fn inside a transaction when a database handle is present;
// without one (unit tests with fake repositories) fn runs against the
// repositories' own executors.
func (s *tournamentService) withTx(ctx context.Context, fn func(tx repositories.SQLExecutor) error) error {
	if s.db == nil {
		return fn(nil)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func mapRepoError(err error) error {
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return ErrTournamentNotFound
	}
	return err
}
