package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/tournament-tracker/models"
	"github.com/Dosada05/tournament-tracker/repositories"
)

// CourtBoardBroadcaster pushes court board events to the subscribers of a room.
type CourtBoardBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type MatchService interface {
	CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	GetMatch(ctx context.Context, matchID int64) (*models.MatchView, error)
	RegisterPlayer(ctx context.Context, matchID int64, input RegisterPlayerInput) (*RegistrationResult, error)
	StartMatch(ctx context.Context, matchID int64) (*models.MatchView, error)
	FinishMatch(ctx context.Context, matchID int64, input FinishMatchInput) (*models.MatchView, error)
	ClassifyTournament(ctx context.Context, tournamentID int) (*models.TournamentMatchList, error)
}

type CreateMatchInput struct {
	TournamentID int       `json:"tournament_id"`
	PlayerOne    int64     `json:"player_one"`
	PlayerTwo    int64     `json:"player_two"`
	Class        string    `json:"class"`
	StartTime    time.Time `json:"start_time"`
}

type RegisterPlayerInput struct {
	PlayerID     int64  `json:"player_id"`
	RegisteredBy string `json:"registered_by"`
}

type FinishMatchInput struct {
	Winner int64  `json:"winner"`
	Result string `json:"result"`
}

// RegistrationResult is the check-in plus, when it was the second one, the started match.
type RegistrationResult struct {
	Registration *models.PlayerRegistration `json:"registration"`
	Match        *models.MatchView          `json:"match,omitempty"`
}

type MatchServiceDeps struct {
	Matches       repositories.MatchRepository
	Registrations repositories.RegistrationRepository
	Players       repositories.PlayerRepository
	Transactor    repositories.Transactor
	Allocator     *CourtAllocator
	Validator     *ResultValidator
	Broadcaster   CourtBoardBroadcaster
	Logger        *slog.Logger
	Now           func() time.Time
}

type matchService struct {
	matches       repositories.MatchRepository
	registrations repositories.RegistrationRepository
	players       repositories.PlayerRepository
	tx            repositories.Transactor
	allocator     *CourtAllocator
	validator     *ResultValidator
	broadcaster   CourtBoardBroadcaster
	logger        *slog.Logger
	now           func() time.Time
}

func NewMatchService(deps MatchServiceDeps) MatchService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &matchService{
		matches:       deps.Matches,
		registrations: deps.Registrations,
		players:       deps.Players,
		tx:            deps.Transactor,
		allocator:     deps.Allocator,
		validator:     deps.Validator,
		broadcaster:   deps.Broadcaster,
		logger:        deps.Logger,
		now:           now,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	if input.PlayerOne == input.PlayerTwo {
		return nil, ErrInvalidRoster
	}
	if input.StartTime.IsZero() || input.StartTime.Before(s.now()) {
		return nil, ErrInvalidStartTime
	}

	match := &models.Match{
		TournamentID: input.TournamentID,
		PlayerOne:    input.PlayerOne,
		PlayerTwo:    input.PlayerTwo,
		Class:        strings.TrimSpace(input.Class),
		StartTime:    input.StartTime,
	}
	if err := s.matches.Create(ctx, match); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchRosterInvalid):
			return nil, ErrInvalidRoster
		case errors.Is(err, repositories.ErrMatchTournamentInvalid):
			return nil, ErrTournamentNotFound
		case errors.Is(err, repositories.ErrMatchPlayerInvalid):
			return nil, ErrPlayerNotFound
		}
		return nil, storeError("insert match", err)
	}
	return match, nil
}

func (s *matchService) GetMatch(ctx context.Context, matchID int64) (*models.MatchView, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	_, view, err := s.deriveState(ctx, match)
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *matchService) RegisterPlayer(ctx context.Context, matchID int64, input RegisterPlayerInput) (*RegistrationResult, error) {
	registeredBy := strings.TrimSpace(input.RegisteredBy)
	if registeredBy == "" {
		return nil, fmt.Errorf("%w: registered_by is required", ErrValidationFailed)
	}

	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasPlayer(input.PlayerID) {
		return nil, ErrInvalidPlayerRegistration
	}

	previous, err := s.registrations.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, storeError("list registrations", err)
	}
	for _, reg := range previous {
		if reg.PlayerID == input.PlayerID {
			return nil, ErrPlayerAlreadyRegistered
		}
	}

	registration := &models.PlayerRegistration{
		PlayerID:       input.PlayerID,
		MatchID:        matchID,
		TimeRegistered: s.now(),
		RegisteredBy:   registeredBy,
	}
	if err := s.registrations.Create(ctx, nil, registration); err != nil {
		if errors.Is(err, repositories.ErrRegistrationConflict) {
			return nil, ErrPlayerAlreadyRegistered
		}
		return nil, storeError("insert registration", err)
	}

	result := &RegistrationResult{Registration: registration}

	// Re-read after the insert so two players checking in at the same moment cannot both
	// miss each other; if both see two check-ins, the loser gets ErrMatchAlreadyStarted.
	current, err := s.registrations.ListByMatch(ctx, matchID)
	if err != nil {
		s.logger.Error("registration stored but check-ins could not be re-read",
			slog.Int64("match_id", matchID), slog.Any("error", err))
		return result, nil
	}
	if countRostered(match, current) < 2 {
		return result, nil
	}

	view, err := s.StartMatch(ctx, matchID)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, ErrMatchAlreadyStarted) {
			level = slog.LevelInfo
		}
		s.logger.Log(ctx, level, "second check-in did not start match",
			slog.Int64("match_id", matchID), slog.Any("error", err))
		return result, nil
	}
	result.Match = view
	return result, nil
}

func (s *matchService) StartMatch(ctx context.Context, matchID int64) (*models.MatchView, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	info, err := s.playerInfo(ctx, match)
	if err != nil {
		return nil, err
	}

	var (
		court   string
		claimed bool
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		// Concurrent starts of one match wait on its row lock, so the checks below see
		// whatever an earlier start committed.
		if err := s.lockMatch(ctx, exec, matchID); err != nil {
			return err
		}
		if err := s.ensureNoResult(ctx, exec, matchID); err != nil {
			return err
		}
		started, err := s.isStarted(ctx, exec, match)
		if err != nil {
			return err
		}
		if started {
			return ErrMatchAlreadyStarted
		}
		if info.checkIns() != 2 {
			return ErrPlayerMissing
		}

		court, claimed, err = s.allocator.TryAssignFreeCourt(ctx, exec, match.TournamentID, match.ID)
		if err != nil || claimed {
			return err
		}
		return s.allocator.Enqueue(ctx, exec, match.TournamentID, match.ID)
	})
	if err != nil {
		return nil, s.transactionError("start match transaction", err)
	}

	view := newMatchView(match, info)
	if claimed {
		view.Court = &court
		view.StartTime = s.now()
		s.logger.Info("assigned court to match",
			slog.Int("tournament_id", match.TournamentID),
			slog.Int64("match_id", match.ID),
			slog.String("court", court))
		s.publish(match.TournamentID, models.EventMatchStarted, view)
		return &view, nil
	}

	position, err := s.allocator.QueuePlacement(ctx, nil, match.TournamentID, match.ID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		// A finish promoted the match between the commit and this read.
		promoted, courtErr := s.allocator.MatchCourt(ctx, nil, match.TournamentID, match.ID)
		if courtErr != nil {
			return nil, storeError("queue placement after enqueue", err)
		}
		view.Court = &promoted
		return &view, nil
	}
	placement := PlacementString(position)
	view.Court = &placement
	s.logger.Info("no free court, match queued",
		slog.Int("tournament_id", match.TournamentID),
		slog.Int64("match_id", match.ID),
		slog.Int("position", position))
	s.publish(match.TournamentID, models.EventMatchQueued, view)
	return &view, nil
}

func (s *matchService) FinishMatch(ctx context.Context, matchID int64, input FinishMatchInput) (*models.MatchView, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	record := &models.MatchResult{
		MatchID: matchID,
		Winner:  input.Winner,
		Result:  strings.TrimSpace(input.Result),
	}
	if err := s.validator.Validate(record, match); err != nil {
		return nil, err
	}

	if err := s.ensureNoResult(ctx, nil, matchID); err != nil {
		return nil, err
	}

	if _, err := s.allocator.MatchCourt(ctx, nil, match.TournamentID, matchID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrMatchNotStarted
		}
		return nil, err
	}

	info, err := s.playerInfo(ctx, match)
	if err != nil {
		return nil, err
	}

	var promotion *Promotion
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		if err := s.lockMatch(ctx, exec, matchID); err != nil {
			return err
		}
		if err := s.matches.InsertResult(ctx, exec, record); err != nil {
			if errors.Is(err, repositories.ErrMatchResultConflict) {
				return ErrMatchAlreadyCompleted
			}
			return storeError("insert match result", err)
		}
		p, err := s.allocator.ReleaseAndPromote(ctx, exec, match.TournamentID, matchID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrMatchNotStarted
			}
			return err
		}
		promotion = p
		return nil
	})
	if err != nil {
		return nil, s.transactionError("finish match transaction", err)
	}

	view := newMatchView(match, info)
	view.Winner = &record.Winner
	view.Result = &record.Result

	s.publish(match.TournamentID, models.EventMatchFinished, view)
	if promotion != nil {
		s.publish(match.TournamentID, models.EventMatchPromoted, models.CourtPromotion{
			MatchID: promotion.MatchID,
			Court:   promotion.Court,
		})
	}
	return &view, nil
}

func (s *matchService) loadMatch(ctx context.Context, matchID int64) (*models.Match, error) {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, storeError("get match", err)
	}
	return match, nil
}

func (s *matchService) lockMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int64) error {
	if err := s.matches.LockForUpdate(ctx, exec, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return storeError("lock match", err)
	}
	return nil
}

func (s *matchService) ensureNoResult(ctx context.Context, exec repositories.SQLExecutor, matchID int64) error {
	if _, err := s.matches.GetResult(ctx, exec, matchID); err == nil {
		return ErrMatchAlreadyCompleted
	} else if !errors.Is(err, repositories.ErrMatchResultNotFound) {
		return storeError("get match result", err)
	}
	return nil
}

// transactionError passes domain errors and store failures through and wraps anything else,
// such as a failed commit, as a store failure.
func (s *matchService) transactionError(op string, err error) error {
	for _, kind := range []error{
		ErrMatchNotFound, ErrMatchAlreadyStarted, ErrMatchAlreadyCompleted,
		ErrMatchNotStarted, ErrPlayerMissing, ErrStore,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return storeError(op, err)
}

// isStarted reports whether the match holds a court or waits in the queue.
func (s *matchService) isStarted(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) (bool, error) {
	if _, err := s.allocator.MatchCourt(ctx, exec, match.TournamentID, match.ID); err == nil {
		return true, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if _, err := s.allocator.QueuePlacement(ctx, exec, match.TournamentID, match.ID); err == nil {
		return true, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	return false, nil
}

func (s *matchService) publish(tournamentID int, eventType models.CourtBoardEventType, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	roomID := models.TournamentRoomID(tournamentID)
	s.broadcaster.BroadcastToRoom(roomID, models.CourtBoardEvent{
		Type:    eventType,
		Payload: payload,
		RoomID:  roomID,
	})
}

type playerMatchInfo struct {
	first         models.Player
	firstArrived  bool
	second        models.Player
	secondArrived bool
}

func (i *playerMatchInfo) checkIns() int {
	n := 0
	if i.firstArrived {
		n++
	}
	if i.secondArrived {
		n++
	}
	return n
}

func (s *matchService) playerInfo(ctx context.Context, match *models.Match) (*playerMatchInfo, error) {
	first, err := s.loadPlayer(ctx, match.PlayerOne)
	if err != nil {
		return nil, err
	}
	second, err := s.loadPlayer(ctx, match.PlayerTwo)
	if err != nil {
		return nil, err
	}

	registrations, err := s.registrations.ListByMatch(ctx, match.ID)
	if err != nil {
		return nil, storeError("list registrations", err)
	}

	info := &playerMatchInfo{first: *first, second: *second}
	for _, reg := range registrations {
		switch reg.PlayerID {
		case first.ID:
			info.firstArrived = true
		case second.ID:
			info.secondArrived = true
		}
	}
	return info, nil
}

func (s *matchService) loadPlayer(ctx context.Context, playerID int64) (*models.Player, error) {
	player, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrPlayerNotFound, playerID)
		}
		return nil, storeError("get player", err)
	}
	return player, nil
}

func countRostered(match *models.Match, registrations []*models.PlayerRegistration) int {
	seen := make(map[int64]struct{}, 2)
	for _, reg := range registrations {
		if match.HasPlayer(reg.PlayerID) {
			seen[reg.PlayerID] = struct{}{}
		}
	}
	return len(seen)
}

func newMatchView(match *models.Match, info *playerMatchInfo) models.MatchView {
	return models.MatchView{
		ID:               match.ID,
		TournamentID:     match.TournamentID,
		Class:            match.Class,
		PlayerOne:        info.first,
		PlayerTwo:        info.second,
		PlayerOneArrived: info.firstArrived,
		PlayerTwoArrived: info.secondArrived,
		StartTime:        match.StartTime,
	}
}
