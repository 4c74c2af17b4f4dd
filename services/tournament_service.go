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

const dateLayout = "2006-01-02"

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]models.Tournament, error)
	AddCourt(ctx context.Context, tournamentID int, input AddCourtInput) (*models.Court, error)
	ListCourts(ctx context.Context, tournamentID int) ([]*models.Court, error)
	ListQueue(ctx context.Context, tournamentID int) ([]*models.CourtQueueEntry, error)
}

type CreateTournamentInput struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type AddCourtInput struct {
	Name string `json:"name"`
}

type tournamentService struct {
	tournaments repositories.TournamentRepository
	courts      repositories.CourtRepository
	logger      *slog.Logger
	now         func() time.Time
}

func NewTournamentService(tournaments repositories.TournamentRepository, courts repositories.CourtRepository, logger *slog.Logger, now func() time.Time) TournamentService {
	if now == nil {
		now = time.Now
	}
	return &tournamentService{
		tournaments: tournaments,
		courts:      courts,
		logger:      logger,
		now:         now,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}

	start, err := time.Parse(dateLayout, strings.TrimSpace(input.StartDate))
	if err != nil {
		return nil, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrInvalidDate)
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(input.EndDate))
	if err != nil {
		return nil, fmt.Errorf("%w: end_date must be YYYY-MM-DD", ErrInvalidDate)
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w: start_date is after end_date", ErrInvalidDate)
	}
	if start.Before(s.today()) {
		return nil, fmt.Errorf("%w: start_date is in the past", ErrInvalidDate)
	}

	tournament := &models.Tournament{Name: name, StartDate: start, EndDate: end}
	if err := s.tournaments.Create(ctx, tournament); err != nil {
		return nil, storeError("insert tournament", err)
	}
	s.logger.Info("tournament created", slog.Int("tournament_id", tournament.ID), slog.String("name", name))
	return tournament, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, storeError("get tournament", err)
	}
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	tournaments, err := s.tournaments.ListActive(ctx, s.today())
	if err != nil {
		return nil, storeError("list tournaments", err)
	}
	return tournaments, nil
}

func (s *tournamentService) AddCourt(ctx context.Context, tournamentID int, input AddCourtInput) (*models.Court, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCourtNameRequired
	}
	if _, err := s.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}

	court := &models.Court{TournamentID: tournamentID, Name: name}
	if err := s.courts.Create(ctx, court); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCourtConflict):
			return nil, ErrCourtNameConflict
		case errors.Is(err, repositories.ErrCourtTournamentInvalid):
			return nil, ErrTournamentNotFound
		}
		return nil, storeError("insert court", err)
	}
	return court, nil
}

func (s *tournamentService) ListCourts(ctx context.Context, tournamentID int) ([]*models.Court, error) {
	if _, err := s.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	courts, err := s.courts.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, storeError("list courts", err)
	}
	return courts, nil
}

func (s *tournamentService) ListQueue(ctx context.Context, tournamentID int) ([]*models.CourtQueueEntry, error) {
	if _, err := s.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	queue, err := s.courts.ListQueue(ctx, tournamentID)
	if err != nil {
		return nil, storeError("list court queue", err)
	}
	return queue, nil
}

// today is the current calendar day at UTC midnight, comparable with parsed dates.
func (s *tournamentService) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
