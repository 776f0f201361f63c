package services

import "errors"

// Errors shared across services and the HTTP mapping layer.
var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")

	// ErrInvalidScore rejects a result that breaks the game-to-21 rule.
	ErrInvalidScore = errors.New("invalid score")

	// ErrActiveTournamentConflict guards the single-active-tournament
	// invariant: creation is rejected while any tournament is still open.
	ErrActiveTournamentConflict = errors.New("an active tournament already exists")

	// ErrTournamentFinalized rejects mutations after the one-way finalize
	// transition.
	ErrTournamentFinalized = errors.New("tournament is finalized")

	ErrValidationFailed = errors.New("validation failed")
)
