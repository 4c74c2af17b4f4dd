package services

import (
	"errors"
	"fmt"
)

// Error kinds returned to the HTTP boundary. Compare with errors.Is.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// Match lifecycle
	ErrMatchNotFound             = errors.New("match not found")
	ErrMatchAlreadyStarted       = errors.New("match already started")
	ErrMatchAlreadyCompleted     = errors.New("match already completed")
	ErrMatchNotStarted           = errors.New("match has not started")
	ErrPlayerMissing             = errors.New("both players must be registered before the match can start")
	ErrPlayerNotFound            = errors.New("player not found")
	ErrInvalidPlayerRegistration = errors.New("invalid player registration")
	ErrPlayerAlreadyRegistered   = errors.New("player already registered to match")
	ErrInvalidWinner             = errors.New("winner must be one of the match players")
	ErrInvalidResult             = errors.New("invalid match result")
	ErrInvalidRoster             = errors.New("invalid roster, two different players are needed")
	ErrInvalidStartTime          = errors.New("invalid start time")

	// Tournaments, courts, players
	ErrInvalidDate            = errors.New("invalid start or end date")
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrCourtNameRequired      = errors.New("court name is required")
	ErrCourtNameConflict      = errors.New("court name already exists for this tournament")
	ErrPlayerConflict         = errors.New("player id already exists")

	// Authentication
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrPasswordTooShort       = errors.New("password is too short")

	ErrExportUnavailable = errors.New("results export is not configured")

	// ErrStore wraps any persistence failure, including a rolled back transaction.
	ErrStore = errors.New("internal database error")
)

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
