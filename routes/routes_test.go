package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tournament-tracker/courtboard"
	"github.com/Dosada05/tournament-tracker/handlers"
	"github.com/Dosada05/tournament-tracker/repositories/memory"
	"github.com/Dosada05/tournament-tracker/services"
)

const testSecret = "routes-test-secret"

type apiClient struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repos := memory.NewStore().Repositories()
	hub := courtboard.NewHub()

	allocator := services.NewCourtAllocator(repos.Courts, time.Now, logger)
	matchService := services.NewMatchService(services.MatchServiceDeps{
		Matches:       repos.Matches,
		Registrations: repos.Registrations,
		Players:       repos.Players,
		Transactor:    repos.Transactor,
		Allocator:     allocator,
		Validator:     services.NewResultValidator(),
		Logger:        logger,
	})
	tournamentService := services.NewTournamentService(repos.Tournaments, repos.Courts, logger, time.Now)
	exportService := services.NewExportService(matchService, nil, logger)

	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Health:     handlers.NewHealthHandler(nil, logger),
		Auth:       handlers.NewAuthHandler(services.NewAuthService(repos.Users), testSecret, logger),
		Tournament: handlers.NewTournamentHandler(tournamentService, matchService, exportService, logger),
		Player:     handlers.NewPlayerHandler(services.NewPlayerService(repos.Players), logger),
		Match:      handlers.NewMatchHandler(matchService, logger),
		WebSocket:  handlers.NewWebSocketHandler(hub, []string{"*"}),
	}, Options{
		JWTSecret:      []byte(testSecret),
		AllowedOrigins: []string{"*"},
		Logger:         logger,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &apiClient{t: t, server: server}
}

// do sends body as JSON and decodes the response into out when out is non-nil.
func (c *apiClient) do(method, path string, body interface{}, out interface{}) int {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.server.Client().Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (c *apiClient) expect(method, path string, body interface{}, want int, out interface{}) {
	c.t.Helper()
	if got := c.do(method, path, body, out); got != want {
		c.t.Fatalf("%s %s status = %d, want %d", method, path, got, want)
	}
}

func (c *apiClient) login() {
	c.t.Helper()
	creds := map[string]string{"email": "Desk@Example.com", "password": "correct-horse"}
	c.expect(http.MethodPost, "/users/signup", creds, http.StatusCreated, nil)

	var session struct {
		Token string `json:"token"`
	}
	c.expect(http.MethodPost, "/users/login", creds, http.StatusOK, &session)
	if session.Token == "" {
		c.t.Fatal("login returned an empty token")
	}
	c.token = session.Token
}

type matchEnvelope struct {
	Match struct {
		ID     int64   `json:"id"`
		Court  *string `json:"court"`
		Winner *int64  `json:"winner"`
	} `json:"match"`
}

func (c *apiClient) setupTournament() {
	c.t.Helper()
	today := time.Now().UTC()
	c.expect(http.MethodPost, "/tournaments/", map[string]string{
		"name":       "Summer Open",
		"start_date": today.Format("2006-01-02"),
		"end_date":   today.AddDate(0, 0, 3).Format("2006-01-02"),
	}, http.StatusCreated, nil)
	c.expect(http.MethodPost, "/tournaments/1/courts", map[string]string{"name": "Court-1"}, http.StatusCreated, nil)
	for id := int64(1); id <= 4; id++ {
		c.expect(http.MethodPost, "/players/", map[string]interface{}{"id": id, "name": fmt.Sprintf("Player %d", id)}, http.StatusCreated, nil)
	}
}

func (c *apiClient) createMatch(one, two int64) int64 {
	c.t.Helper()
	var created matchEnvelope
	c.expect(http.MethodPost, "/matches/", map[string]interface{}{
		"tournament_id": 1,
		"player_one":    one,
		"player_two":    two,
		"class":         "open",
		"start_time":    time.Now().Add(time.Hour).UTC(),
	}, http.StatusCreated, &created)
	return created.Match.ID
}

func (c *apiClient) checkIn(matchID, playerID int64, out interface{}) {
	c.t.Helper()
	path := fmt.Sprintf("/matches/%d/registrations", matchID)
	c.expect(http.MethodPost, path, map[string]int64{"player_id": playerID}, http.StatusCreated, out)
}

func TestCourtFlowOverHTTP(t *testing.T) {
	c := newAPI(t)
	c.login()
	c.setupTournament()

	first := c.createMatch(1, 2)
	second := c.createMatch(3, 4)

	c.checkIn(first, 1, nil)
	var started matchEnvelope
	c.checkIn(first, 2, &started)
	if started.Match.Court == nil || *started.Match.Court != "Court-1" {
		t.Fatalf("first match court = %v, want Court-1", started.Match.Court)
	}

	c.checkIn(second, 3, nil)
	var queued matchEnvelope
	c.checkIn(second, 4, &queued)
	if queued.Match.Court == nil || *queued.Match.Court != "first in queue" {
		t.Fatalf("second match court = %v, want first in queue", queued.Match.Court)
	}

	var queue struct {
		Queue []struct {
			MatchID  int64 `json:"match_id"`
			Position int   `json:"position"`
		} `json:"queue"`
	}
	c.expect(http.MethodGet, "/tournaments/1/queue", nil, http.StatusOK, &queue)
	if len(queue.Queue) != 1 || queue.Queue[0].MatchID != second {
		t.Fatalf("queue = %+v, want only match %d", queue.Queue, second)
	}

	c.expect(http.MethodPost, fmt.Sprintf("/matches/%d/start", first), nil, http.StatusConflict, nil)

	resultPath := fmt.Sprintf("/matches/%d/result", first)
	c.expect(http.MethodPost, resultPath, map[string]interface{}{"winner": 9, "result": "6-1 6-2"}, http.StatusBadRequest, nil)
	c.expect(http.MethodPost, resultPath, map[string]interface{}{"winner": 3, "result": "6-1 6-2"}, http.StatusBadRequest, nil)
	c.expect(http.MethodPost, resultPath, map[string]interface{}{"winner": 1, "result": "six-one"}, http.StatusBadRequest, nil)

	var finished matchEnvelope
	c.expect(http.MethodPost, resultPath, map[string]interface{}{"winner": 1, "result": "6-1 6-2"}, http.StatusOK, &finished)
	if finished.Match.Winner == nil || *finished.Match.Winner != 1 {
		t.Fatalf("finished winner = %v, want 1", finished.Match.Winner)
	}
	c.expect(http.MethodPost, resultPath, map[string]interface{}{"winner": 1, "result": "6-1 6-2"}, http.StatusConflict, nil)

	var promoted matchEnvelope
	c.expect(http.MethodGet, fmt.Sprintf("/matches/%d/", second), nil, http.StatusOK, &promoted)
	if promoted.Match.Court == nil || *promoted.Match.Court != "Court-1" {
		t.Fatalf("promoted match court = %v, want Court-1", promoted.Match.Court)
	}

	var list struct {
		Scheduled []json.RawMessage `json:"scheduled"`
		Playing   []json.RawMessage `json:"playing"`
		Finished  []json.RawMessage `json:"finished"`
	}
	c.expect(http.MethodGet, "/tournaments/1/matches", nil, http.StatusOK, &list)
	if len(list.Scheduled) != 0 || len(list.Playing) != 1 || len(list.Finished) != 1 {
		t.Fatalf("match list sizes = %d/%d/%d, want 0/1/1", len(list.Scheduled), len(list.Playing), len(list.Finished))
	}
}

func TestMutationsRequireToken(t *testing.T) {
	c := newAPI(t)

	tests := []struct {
		name string
		path string
	}{
		{"create tournament", "/tournaments/"},
		{"add court", "/tournaments/1/courts"},
		{"create player", "/players/"},
		{"create match", "/matches/"},
		{"register", "/matches/1/registrations"},
		{"start", "/matches/1/start"},
		{"result", "/matches/1/result"},
		{"export", "/tournaments/1/export"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.expect(http.MethodPost, tt.path, map[string]string{}, http.StatusUnauthorized, nil)
		})
	}

	c.token = "not-a-jwt"
	c.expect(http.MethodPost, "/players/", map[string]interface{}{"id": 1, "name": "Ann"}, http.StatusUnauthorized, nil)
}

func TestErrorStatuses(t *testing.T) {
	c := newAPI(t)
	c.login()
	c.setupTournament()

	c.expect(http.MethodGet, "/matches/42/", nil, http.StatusNotFound, nil)
	c.expect(http.MethodGet, "/matches/abc/", nil, http.StatusBadRequest, nil)
	c.expect(http.MethodGet, "/players/99", nil, http.StatusNotFound, nil)
	c.expect(http.MethodGet, "/tournaments/7/courts", nil, http.StatusNotFound, nil)
	c.expect(http.MethodPost, "/tournaments/1/courts", map[string]string{"name": "Court-1"}, http.StatusConflict, nil)
	c.expect(http.MethodPost, "/players/", map[string]interface{}{"id": 1, "name": "Again"}, http.StatusConflict, nil)
	var again struct {
		Player struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"player"`
	}
	c.expect(http.MethodPost, "/players/", map[string]interface{}{"id": 1, "name": "Player 1"}, http.StatusOK, &again)
	if again.Player.ID != 1 || again.Player.Name != "Player 1" {
		t.Fatalf("re-registered player = %+v", again.Player)
	}
	c.expect(http.MethodPost, "/players/", map[string]interface{}{"id": 5, "name": "X", "rank": 3}, http.StatusBadRequest, nil)
	c.expect(http.MethodPost, "/users/login", map[string]string{"email": "desk@example.com", "password": "wrong-pass"}, http.StatusUnauthorized, nil)
	c.expect(http.MethodPost, "/users/signup", map[string]string{"email": "desk@example.com", "password": "another-pass"}, http.StatusConflict, nil)

	match := c.createMatch(1, 2)
	c.expect(http.MethodPost, fmt.Sprintf("/matches/%d/start", match), nil, http.StatusConflict, nil)
	c.expect(http.MethodPost, fmt.Sprintf("/matches/%d/result", match), map[string]interface{}{"winner": 1, "result": "6-0"}, http.StatusConflict, nil)
	c.expect(http.MethodPost, fmt.Sprintf("/matches/%d/registrations", match), map[string]int64{"player_id": 3}, http.StatusBadRequest, nil)
	c.checkIn(match, 1, nil)
	c.expect(http.MethodPost, fmt.Sprintf("/matches/%d/registrations", match), map[string]int64{"player_id": 1}, http.StatusConflict, nil)

	c.expect(http.MethodPost, "/tournaments/1/export", nil, http.StatusServiceUnavailable, nil)
	c.expect(http.MethodGet, "/no/such/route", nil, http.StatusNotFound, nil)
}

func TestHealthCheckWithoutDatabase(t *testing.T) {
	c := newAPI(t)
	var body map[string]string
	c.expect(http.MethodGet, "/health_check", nil, http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Fatalf("health body = %v", body)
	}
}
