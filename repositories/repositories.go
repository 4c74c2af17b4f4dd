package repositories

import (
	"database/sql"
	"log/slog"
)

// Repositories bundles one adapter per aggregate sharing a single store.
type Repositories struct {
	Tournaments   TournamentRepository
	Players       PlayerRepository
	Matches       MatchRepository
	Registrations RegistrationRepository
	Courts        CourtRepository
	Users         UserRepository
	Transactor    Transactor
}

func NewPostgresRepositories(db *sql.DB, logger *slog.Logger) *Repositories {
	return &Repositories{
		Tournaments:   NewPostgresTournamentRepository(db),
		Players:       NewPostgresPlayerRepository(db),
		Matches:       NewPostgresMatchRepository(db),
		Registrations: NewPostgresRegistrationRepository(db),
		Courts:        NewPostgresCourtRepository(db),
		Users:         NewPostgresUserRepository(db),
		Transactor:    NewPostgresTransactor(db, logger),
	}
}
