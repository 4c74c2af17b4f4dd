// Package memory is an in-process implementation of the repositories persistence port.
//
// All repositories returned by a Store share one mutex. A transaction holds that mutex for its
// whole duration and restores a snapshot of the state when the transaction function fails,
// which gives the same commit-or-rollback-all behaviour as the postgres adapter.
// Inside WithinTransaction every call must receive the exec handed to the TxFunc.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"

	"github.com/Dosada05/tournament-tracker/models"
	"github.com/Dosada05/tournament-tracker/repositories"
	"github.com/google/uuid"
)

var errNoSQL = errors.New("memory store does not execute SQL")

type state struct {
	tournaments      map[int]models.Tournament
	nextTournamentID int

	players map[int64]models.Player

	matches     map[int64]models.Match
	nextMatchID int64
	results     map[int64]models.MatchResult

	registrations []models.PlayerRegistration

	courts      []models.Court
	nextCourtID int64

	queue       []models.CourtQueueEntry
	nextQueueID int64

	users map[uuid.UUID]models.User
}

func newState() state {
	return state{
		tournaments: make(map[int]models.Tournament),
		players:     make(map[int64]models.Player),
		matches:     make(map[int64]models.Match),
		results:     make(map[int64]models.MatchResult),
		users:       make(map[uuid.UUID]models.User),
	}
}

func (s state) clone() state {
	c := s
	c.tournaments = make(map[int]models.Tournament, len(s.tournaments))
	for k, v := range s.tournaments {
		c.tournaments[k] = v
	}
	c.players = make(map[int64]models.Player, len(s.players))
	for k, v := range s.players {
		c.players[k] = v
	}
	c.matches = make(map[int64]models.Match, len(s.matches))
	for k, v := range s.matches {
		c.matches[k] = v
	}
	c.results = make(map[int64]models.MatchResult, len(s.results))
	for k, v := range s.results {
		c.results[k] = v
	}
	c.users = make(map[uuid.UUID]models.User, len(s.users))
	for k, v := range s.users {
		c.users[k] = v
	}
	c.registrations = append([]models.PlayerRegistration(nil), s.registrations...)
	c.queue = append([]models.CourtQueueEntry(nil), s.queue...)
	c.courts = make([]models.Court, len(s.courts))
	for i, court := range s.courts {
		c.courts[i] = copyCourt(court)
	}
	return c
}

func copyCourt(court models.Court) models.Court {
	if court.MatchID != nil {
		id := *court.MatchID
		court.MatchID = &id
	}
	return court
}

// Store holds the whole dataset in memory.
type Store struct {
	mu    sync.Mutex
	state state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

func (s *Store) Tournaments() repositories.TournamentRepository { return tournamentRepo{s} }

func (s *Store) Players() repositories.PlayerRepository { return playerRepo{s} }

func (s *Store) Matches() repositories.MatchRepository { return matchRepo{s} }

func (s *Store) Registrations() repositories.RegistrationRepository { return registrationRepo{s} }

func (s *Store) Courts() repositories.CourtRepository { return courtRepo{s} }

func (s *Store) Users() repositories.UserRepository { return userRepo{s} }

func (s *Store) Transactor() repositories.Transactor { return s }

func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		Tournaments:   s.Tournaments(),
		Players:       s.Players(),
		Matches:       s.Matches(),
		Registrations: s.Registrations(),
		Courts:        s.Courts(),
		Users:         s.Users(),
		Transactor:    s.Transactor(),
	}
}

// txExecutor marks calls made from inside WithinTransaction; the store mutex is already held.
type txExecutor struct {
	store *Store
}

func (t *txExecutor) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errNoSQL
}

func (t *txExecutor) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errNoSQL
}

func (t *txExecutor) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (s *Store) lock(exec repositories.SQLExecutor) func() {
	if tx, ok := exec.(*txExecutor); ok && tx.store == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) WithinTransaction(ctx context.Context, fn repositories.TxFunc) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	defer func() {
		if p := recover(); p != nil {
			s.state = snapshot
			panic(p)
		}
		if err != nil {
			s.state = snapshot
		}
	}()

	if err = ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, &txExecutor{store: s})
}

func (st *state) sortQueue() {
	sort.SliceStable(st.queue, func(i, j int) bool {
		a, b := st.queue[i], st.queue[j]
		if !a.EnqueuedAt.Equal(b.EnqueuedAt) {
			return a.EnqueuedAt.Before(b.EnqueuedAt)
		}
		return a.ID < b.ID
	})
}
