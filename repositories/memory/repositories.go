package memory

import (
	"context"
	"strings"
	"time"

	"github.com/Dosada05/tournament-tracker/models"
	"github.com/Dosada05/tournament-tracker/repositories"
	"github.com/google/uuid"
)

type tournamentRepo struct{ s *Store }

func (r tournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	defer r.s.lock(nil)()
	r.s.state.nextTournamentID++
	t.ID = r.s.state.nextTournamentID
	r.s.state.tournaments[t.ID] = *t
	return nil
}

func (r tournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	defer r.s.lock(nil)()
	t, ok := r.s.state.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r tournamentRepo) ListActive(_ context.Context, day time.Time) ([]models.Tournament, error) {
	defer r.s.lock(nil)()
	tournaments := make([]models.Tournament, 0)
	for id := 1; id <= r.s.state.nextTournamentID; id++ {
		t, ok := r.s.state.tournaments[id]
		if ok && !t.EndDate.Before(day) {
			tournaments = append(tournaments, t)
		}
	}
	return tournaments, nil
}

type playerRepo struct{ s *Store }

func (r playerRepo) Create(_ context.Context, player *models.Player) error {
	defer r.s.lock(nil)()
	if _, exists := r.s.state.players[player.ID]; exists {
		return repositories.ErrPlayerConflict
	}
	r.s.state.players[player.ID] = *player
	return nil
}

func (r playerRepo) GetByID(_ context.Context, id int64) (*models.Player, error) {
	defer r.s.lock(nil)()
	player, ok := r.s.state.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return &player, nil
}

type matchRepo struct{ s *Store }

func (r matchRepo) Create(_ context.Context, match *models.Match) error {
	defer r.s.lock(nil)()
	st := &r.s.state
	if match.PlayerOne == match.PlayerTwo {
		return repositories.ErrMatchRosterInvalid
	}
	if _, ok := st.tournaments[match.TournamentID]; !ok {
		return repositories.ErrMatchTournamentInvalid
	}
	_, okOne := st.players[match.PlayerOne]
	_, okTwo := st.players[match.PlayerTwo]
	if !okOne || !okTwo {
		return repositories.ErrMatchPlayerInvalid
	}
	st.nextMatchID++
	match.ID = st.nextMatchID
	st.matches[match.ID] = *match
	return nil
}

func (r matchRepo) GetByID(_ context.Context, id int64) (*models.Match, error) {
	defer r.s.lock(nil)()
	match, ok := r.s.state.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return &match, nil
}

func (r matchRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Match, error) {
	defer r.s.lock(nil)()
	matches := make([]*models.Match, 0)
	for id := int64(1); id <= r.s.state.nextMatchID; id++ {
		match, ok := r.s.state.matches[id]
		if ok && match.TournamentID == tournamentID {
			matches = append(matches, &match)
		}
	}
	return matches, nil
}

// LockForUpdate only checks existence: inside a transaction the store mutex is already held.
func (r matchRepo) LockForUpdate(_ context.Context, exec repositories.SQLExecutor, id int64) error {
	defer r.s.lock(exec)()
	if _, ok := r.s.state.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	return nil
}

func (r matchRepo) GetResult(_ context.Context, exec repositories.SQLExecutor, matchID int64) (*models.MatchResult, error) {
	defer r.s.lock(exec)()
	result, ok := r.s.state.results[matchID]
	if !ok {
		return nil, repositories.ErrMatchResultNotFound
	}
	return &result, nil
}

func (r matchRepo) InsertResult(_ context.Context, exec repositories.SQLExecutor, result *models.MatchResult) error {
	defer r.s.lock(exec)()
	if _, exists := r.s.state.results[result.MatchID]; exists {
		return repositories.ErrMatchResultConflict
	}
	r.s.state.results[result.MatchID] = *result
	return nil
}

type registrationRepo struct{ s *Store }

func (r registrationRepo) Create(_ context.Context, exec repositories.SQLExecutor, registration *models.PlayerRegistration) error {
	defer r.s.lock(exec)()
	for _, existing := range r.s.state.registrations {
		if existing.MatchID == registration.MatchID && existing.PlayerID == registration.PlayerID {
			return repositories.ErrRegistrationConflict
		}
	}
	r.s.state.registrations = append(r.s.state.registrations, *registration)
	return nil
}

func (r registrationRepo) ListByMatch(_ context.Context, matchID int64) ([]*models.PlayerRegistration, error) {
	defer r.s.lock(nil)()
	registrations := make([]*models.PlayerRegistration, 0, 2)
	for _, reg := range r.s.state.registrations {
		if reg.MatchID == matchID {
			reg := reg
			registrations = append(registrations, &reg)
		}
	}
	return registrations, nil
}

type courtRepo struct{ s *Store }

func (r courtRepo) Create(_ context.Context, court *models.Court) error {
	defer r.s.lock(nil)()
	st := &r.s.state
	if _, ok := st.tournaments[court.TournamentID]; !ok {
		return repositories.ErrCourtTournamentInvalid
	}
	for _, existing := range st.courts {
		if existing.TournamentID == court.TournamentID && existing.Name == court.Name {
			return repositories.ErrCourtConflict
		}
	}
	st.nextCourtID++
	court.ID = st.nextCourtID
	st.courts = append(st.courts, copyCourt(*court))
	return nil
}

func (r courtRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Court, error) {
	defer r.s.lock(nil)()
	courts := make([]*models.Court, 0)
	for _, court := range r.s.state.courts {
		if court.TournamentID == tournamentID {
			c := copyCourt(court)
			courts = append(courts, &c)
		}
	}
	return courts, nil
}

func (r courtRepo) GetMatchCourt(_ context.Context, exec repositories.SQLExecutor, tournamentID int, matchID int64) (string, error) {
	defer r.s.lock(exec)()
	if i := r.s.state.courtOf(tournamentID, matchID); i >= 0 {
		return r.s.state.courts[i].Name, nil
	}
	return "", repositories.ErrCourtNotFound
}

func (r courtRepo) TryAssignFreeCourt(_ context.Context, exec repositories.SQLExecutor, tournamentID int, matchID int64) (string, bool, error) {
	defer r.s.lock(exec)()
	st := &r.s.state
	if st.courtOf(tournamentID, matchID) >= 0 {
		return "", false, repositories.ErrCourtMatchConflict
	}
	for i := range st.courts {
		court := &st.courts[i]
		if court.TournamentID == tournamentID && court.MatchID == nil {
			id := matchID
			court.MatchID = &id
			return court.Name, true, nil
		}
	}
	return "", false, nil
}

func (r courtRepo) AssignCourt(_ context.Context, exec repositories.SQLExecutor, tournamentID int, courtName string, matchID int64) error {
	defer r.s.lock(exec)()
	st := &r.s.state
	if st.courtOf(tournamentID, matchID) >= 0 {
		return repositories.ErrCourtMatchConflict
	}
	for i := range st.courts {
		court := &st.courts[i]
		if court.TournamentID == tournamentID && court.Name == courtName && court.MatchID == nil {
			id := matchID
			court.MatchID = &id
			return nil
		}
	}
	return repositories.ErrCourtUnavailable
}

func (r courtRepo) ReleaseCourt(_ context.Context, exec repositories.SQLExecutor, tournamentID int, matchID int64) (string, error) {
	defer r.s.lock(exec)()
	st := &r.s.state
	i := st.courtOf(tournamentID, matchID)
	if i < 0 {
		return "", repositories.ErrCourtNotFound
	}
	st.courts[i].MatchID = nil
	return st.courts[i].Name, nil
}

func (r courtRepo) AppendQueue(_ context.Context, exec repositories.SQLExecutor, tournamentID int, matchID int64, enqueuedAt time.Time) error {
	defer r.s.lock(exec)()
	st := &r.s.state
	if _, ok := st.tournaments[tournamentID]; !ok {
		return repositories.ErrCourtTournamentInvalid
	}
	for _, entry := range st.queue {
		if entry.MatchID == matchID {
			return repositories.ErrQueueConflict
		}
	}
	if st.courtOf(tournamentID, matchID) >= 0 {
		return repositories.ErrCourtMatchConflict
	}
	st.nextQueueID++
	st.queue = append(st.queue, models.CourtQueueEntry{
		ID:           st.nextQueueID,
		TournamentID: tournamentID,
		MatchID:      matchID,
		EnqueuedAt:   enqueuedAt,
	})
	st.sortQueue()
	return nil
}

func (r courtRepo) GetQueuePlacement(_ context.Context, exec repositories.SQLExecutor, tournamentID int, matchID int64) (int, error) {
	defer r.s.lock(exec)()
	position := 0
	for _, entry := range r.s.state.queue {
		if entry.TournamentID != tournamentID {
			continue
		}
		position++
		if entry.MatchID == matchID {
			return position, nil
		}
	}
	return 0, repositories.ErrQueueEntryNotFound
}

func (r courtRepo) PopQueue(_ context.Context, exec repositories.SQLExecutor, tournamentID int) (int64, bool, error) {
	defer r.s.lock(exec)()
	st := &r.s.state
	for i, entry := range st.queue {
		if entry.TournamentID == tournamentID {
			st.queue = append(st.queue[:i:i], st.queue[i+1:]...)
			return entry.MatchID, true, nil
		}
	}
	return 0, false, nil
}

func (r courtRepo) ListQueue(_ context.Context, tournamentID int) ([]*models.CourtQueueEntry, error) {
	defer r.s.lock(nil)()
	entries := make([]*models.CourtQueueEntry, 0)
	for _, entry := range r.s.state.queue {
		if entry.TournamentID == tournamentID {
			entry := entry
			entry.Position = len(entries) + 1
			entries = append(entries, &entry)
		}
	}
	return entries, nil
}

func (st *state) courtOf(tournamentID int, matchID int64) int {
	for i, court := range st.courts {
		if court.TournamentID == tournamentID && court.MatchID != nil && *court.MatchID == matchID {
			return i
		}
	}
	return -1
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *models.User) error {
	defer r.s.lock(nil)()
	for _, existing := range r.s.state.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repositories.ErrUserEmailConflict
		}
	}
	r.s.state.users[user.ID] = *user
	return nil
}

func (r userRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	defer r.s.lock(nil)()
	user, ok := r.s.state.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &user, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	defer r.s.lock(nil)()
	for _, user := range r.s.state.users {
		if strings.EqualFold(user.Email, email) {
			user := user
			return &user, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}
