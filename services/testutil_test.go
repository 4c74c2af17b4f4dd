package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/tournament-tracker/models"
	"github.com/Dosada05/tournament-tracker/repositories"
	"github.com/Dosada05/tournament-tracker/repositories/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stepClock returns a strictly increasing time on every call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []models.CourtBoardEvent
}

func (b *recordingBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ev, ok := message.(models.CourtBoardEvent); ok && ev.RoomID == roomID {
		b.events = append(b.events, ev)
	}
}

func (b *recordingBroadcaster) types() []models.CourtBoardEventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.CourtBoardEventType, 0, len(b.events))
	for _, ev := range b.events {
		out = append(out, ev.Type)
	}
	return out
}

type testEnv struct {
	store      *memory.Store
	repos      *repositories.Repositories
	clock      *stepClock
	events     *recordingBroadcaster
	allocator  *CourtAllocator
	matches    MatchService
	tournament int
}

// newTestEnv builds a coordinator over a fresh memory store with one tournament,
// players 1 to 6 and the named courts.
func newTestEnv(t *testing.T, courts ...string) *testEnv {
	t.Helper()
	return newTestEnvWithCourts(t, nil, courts...)
}

func newTestEnvWithCourts(t *testing.T, wrap func(repositories.CourtRepository) repositories.CourtRepository, courts ...string) *testEnv {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	repos := store.Repositories()
	clock := newStepClock()
	events := &recordingBroadcaster{}

	tournament := &models.Tournament{
		Name:      "Spring Open",
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC),
	}
	if err := repos.Tournaments.Create(ctx, tournament); err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	for id := int64(1); id <= 6; id++ {
		if err := repos.Players.Create(ctx, &models.Player{ID: id, Name: "player"}); err != nil {
			t.Fatalf("create player %d: %v", id, err)
		}
	}
	for _, name := range courts {
		if err := repos.Courts.Create(ctx, &models.Court{TournamentID: tournament.ID, Name: name}); err != nil {
			t.Fatalf("create court %q: %v", name, err)
		}
	}

	courtRepo := repos.Courts
	if wrap != nil {
		courtRepo = wrap(courtRepo)
	}
	allocator := NewCourtAllocator(courtRepo, clock.Now, discardLogger())
	svc := NewMatchService(MatchServiceDeps{
		Matches:       repos.Matches,
		Registrations: repos.Registrations,
		Players:       repos.Players,
		Transactor:    repos.Transactor,
		Allocator:     allocator,
		Validator:     NewResultValidator(),
		Broadcaster:   events,
		Logger:        discardLogger(),
		Now:           clock.Now,
	})

	return &testEnv{
		store:      store,
		repos:      repos,
		clock:      clock,
		events:     events,
		allocator:  allocator,
		matches:    svc,
		tournament: tournament.ID,
	}
}

func (e *testEnv) createMatch(t *testing.T, one, two int64) *models.Match {
	t.Helper()
	match, err := e.matches.CreateMatch(context.Background(), CreateMatchInput{
		TournamentID: e.tournament,
		PlayerOne:    one,
		PlayerTwo:    two,
		Class:        "open",
		StartTime:    e.clock.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create match %d vs %d: %v", one, two, err)
	}
	return match
}

func (e *testEnv) register(t *testing.T, matchID, playerID int64) *RegistrationResult {
	t.Helper()
	result, err := e.matches.RegisterPlayer(context.Background(), matchID, RegisterPlayerInput{
		PlayerID:     playerID,
		RegisteredBy: "desk@example.com",
	})
	if err != nil {
		t.Fatalf("register player %d for match %d: %v", playerID, matchID, err)
	}
	return result
}

// checkIn registers both players and returns the start view from the second check-in.
func (e *testEnv) checkIn(t *testing.T, match *models.Match) *models.MatchView {
	t.Helper()
	if first := e.register(t, match.ID, match.PlayerOne); first.Match != nil {
		t.Fatalf("first check-in started match %d", match.ID)
	}
	second := e.register(t, match.ID, match.PlayerTwo)
	if second.Match == nil {
		t.Fatalf("second check-in did not start match %d", match.ID)
	}
	return second.Match
}

func courtOf(view *models.MatchView) string {
	if view == nil || view.Court == nil {
		return ""
	}
	return *view.Court
}
