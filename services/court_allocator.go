package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-tracker/repositories"
)

// CourtAllocator owns exclusive court occupancy and the FIFO court queue of each tournament.
// Calls that accept exec take part in the caller's transaction when exec is non-nil.
type CourtAllocator struct {
	courts repositories.CourtRepository
	now    func() time.Time
	logger *slog.Logger
}

func NewCourtAllocator(courts repositories.CourtRepository, now func() time.Time, logger *slog.Logger) *CourtAllocator {
	if now == nil {
		now = time.Now
	}
	return &CourtAllocator{courts: courts, now: now, logger: logger}
}

// Promotion describes a queued match moved onto a released court.
type Promotion struct {
	MatchID int64
	Court   string
}

// TryAssignFreeCourt claims a free court for the match. ok is false when every court is busy.
func (a *CourtAllocator) TryAssignFreeCourt(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, matchID int64) (string, bool, error) {
	court, ok, err := a.courts.TryAssignFreeCourt(ctx, exec, tournamentID, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourtMatchConflict) {
			return "", false, ErrMatchAlreadyStarted
		}
		return "", false, storeError("assign free court", err)
	}
	return court, ok, nil
}

// MatchCourt returns the name of the court the match occupies.
func (a *CourtAllocator) MatchCourt(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, matchID int64) (string, error) {
	court, err := a.courts.GetMatchCourt(ctx, exec, tournamentID, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourtNotFound) {
			return "", fmt.Errorf("%w: match %d holds no court", ErrNotFound, matchID)
		}
		return "", storeError("get match court", err)
	}
	return court, nil
}

// ReleaseCourt frees the court held by the match and returns its name.
func (a *CourtAllocator) ReleaseCourt(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, matchID int64) (string, error) {
	court, err := a.courts.ReleaseCourt(ctx, exec, tournamentID, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourtNotFound) {
			return "", fmt.Errorf("%w: match %d holds no court", ErrNotFound, matchID)
		}
		return "", storeError("release court", err)
	}
	return court, nil
}

// Enqueue appends the match to the tournament queue, stamped with the current time.
// A match that is already queued or holds a court is rejected with ErrMatchAlreadyStarted.
func (a *CourtAllocator) Enqueue(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, matchID int64) error {
	if err := a.courts.AppendQueue(ctx, exec, tournamentID, matchID, a.now()); err != nil {
		if errors.Is(err, repositories.ErrQueueConflict) || errors.Is(err, repositories.ErrCourtMatchConflict) {
			return ErrMatchAlreadyStarted
		}
		return storeError("append court queue", err)
	}
	return nil
}

// QueuePlacement returns the 1-based position of the match in the tournament queue.
func (a *CourtAllocator) QueuePlacement(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, matchID int64) (int, error) {
	position, err := a.courts.GetQueuePlacement(ctx, exec, tournamentID, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrQueueEntryNotFound) {
			return 0, fmt.Errorf("%w: match %d is not queued", ErrNotFound, matchID)
		}
		return 0, storeError("queue placement", err)
	}
	return position, nil
}

// PopQueue removes and returns the earliest queued match of the tournament.
func (a *CourtAllocator) PopQueue(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int64, bool, error) {
	matchID, ok, err := a.courts.PopQueue(ctx, exec, tournamentID)
	if err != nil {
		return 0, false, storeError("pop court queue", err)
	}
	return matchID, ok, nil
}

// ReleaseAndPromote frees the court of a finished match and moves the queue head onto it.
// It must run inside a transaction: a popped match that cannot take the freed court fails the
// whole unit instead of being dropped.
func (a *CourtAllocator) ReleaseAndPromote(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, matchID int64) (*Promotion, error) {
	court, err := a.ReleaseCourt(ctx, exec, tournamentID, matchID)
	if err != nil {
		return nil, err
	}

	next, ok, err := a.PopQueue(ctx, exec, tournamentID)
	if err != nil || !ok {
		return nil, err
	}
	if next == matchID {
		// A finished match must never take its own court back.
		a.logger.Error("finished match was also queued, dropping its queue entry",
			slog.Int("tournament_id", tournamentID),
			slog.Int64("match_id", matchID))
		next, ok, err = a.PopQueue(ctx, exec, tournamentID)
		if err != nil || !ok {
			return nil, err
		}
	}

	if err := a.courts.AssignCourt(ctx, exec, tournamentID, court, next); err != nil {
		return nil, storeError(fmt.Sprintf("assign court %q to queued match %d", court, next), err)
	}
	a.logger.Info("promoted queued match",
		slog.Int("tournament_id", tournamentID),
		slog.Int64("match_id", next),
		slog.String("court", court))
	return &Promotion{MatchID: next, Court: court}, nil
}

// PlacementString renders a queue position for display.
func PlacementString(position int) string {
	switch position {
	case 1:
		return "first in queue"
	case 2:
		return "second in queue"
	default:
		return fmt.Sprintf("queue position: %d", position)
	}
}
