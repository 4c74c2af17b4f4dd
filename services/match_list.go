package services

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/tournament-tracker/models"
	"github.com/Dosada05/tournament-tracker/repositories"
)

const classifyConcurrency = 8

type matchState int

const (
	stateUnstarted matchState = iota
	stateAnomalous
	stateScheduled
	statePlaying
	stateFinished
)

// ClassifyTournament splits the matches of a tournament into scheduled, playing and finished.
// Matches that have not started are left out; so are started matches found neither on a
// court nor in the queue, and matches whose players are gone. The latter two are logged.
func (s *matchService) ClassifyTournament(ctx context.Context, tournamentID int) (*models.TournamentMatchList, error) {
	matches, err := s.matches.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, storeError("list tournament matches", err)
	}

	states := make([]matchState, len(matches))
	views := make([]*models.MatchView, len(matches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(classifyConcurrency)
	for i, match := range matches {
		g.Go(func() error {
			state, view, err := s.deriveState(gctx, match)
			if err != nil {
				if errors.Is(err, ErrPlayerNotFound) {
					s.logger.Error("match references a missing player, omitting from listing",
						slog.Int("tournament_id", tournamentID),
						slog.Int64("match_id", match.ID),
						slog.Any("error", err))
					states[i] = stateAnomalous
					return nil
				}
				return err
			}
			states[i] = state
			views[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	list := &models.TournamentMatchList{
		Scheduled: []models.MatchView{},
		Playing:   []models.MatchView{},
		Finished:  []models.MatchView{},
	}
	for i, state := range states {
		switch state {
		case stateScheduled:
			list.Scheduled = append(list.Scheduled, *views[i])
		case statePlaying:
			list.Playing = append(list.Playing, *views[i])
		case stateFinished:
			list.Finished = append(list.Finished, *views[i])
		case stateAnomalous:
			if views[i] != nil {
				s.logger.Error("started match holds no court and is not queued, omitting from listing",
					slog.Int("tournament_id", tournamentID),
					slog.Int64("match_id", matches[i].ID))
			}
		}
	}
	return list, nil
}

// deriveState infers the allocation state of a match from its result, court and queue rows.
func (s *matchService) deriveState(ctx context.Context, match *models.Match) (matchState, *models.MatchView, error) {
	info, err := s.playerInfo(ctx, match)
	if err != nil {
		return stateUnstarted, nil, err
	}
	view := newMatchView(match, info)

	result, err := s.matches.GetResult(ctx, nil, match.ID)
	switch {
	case err == nil:
		view.Winner = &result.Winner
		view.Result = &result.Result
		return stateFinished, &view, nil
	case !errors.Is(err, repositories.ErrMatchResultNotFound):
		return stateUnstarted, nil, storeError("get match result", err)
	}

	court, err := s.allocator.MatchCourt(ctx, nil, match.TournamentID, match.ID)
	switch {
	case err == nil:
		view.Court = &court
		return statePlaying, &view, nil
	case !errors.Is(err, ErrNotFound):
		return stateUnstarted, nil, err
	}

	position, err := s.allocator.QueuePlacement(ctx, nil, match.TournamentID, match.ID)
	switch {
	case err == nil:
		placement := PlacementString(position)
		view.Court = &placement
		return stateScheduled, &view, nil
	case !errors.Is(err, ErrNotFound):
		return stateUnstarted, nil, err
	}

	if info.checkIns() < 2 {
		return stateUnstarted, &view, nil
	}
	return stateAnomalous, &view, nil
}
