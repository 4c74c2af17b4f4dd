package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-tracker/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchPlayerInvalid     = errors.New("match player conflict or invalid")
	ErrMatchRosterInvalid     = errors.New("match roster must contain two different players")
	ErrMatchResultNotFound    = errors.New("match result not found")
	ErrMatchResultConflict    = errors.New("match result already recorded")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int64) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	// LockForUpdate row-locks the match until exec's transaction ends.
	LockForUpdate(ctx context.Context, exec SQLExecutor, id int64) error
	GetResult(ctx context.Context, exec SQLExecutor, matchID int64) (*models.MatchResult, error)
	InsertResult(ctx context.Context, exec SQLExecutor, result *models.MatchResult) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (tournament_id, player_one, player_two, class, start_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		match.TournamentID,
		match.PlayerOne,
		match.PlayerTwo,
		match.Class,
		match.StartTime,
	).Scan(&match.ID)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int64) (*models.Match, error) {
	query := `
		SELECT id, tournament_id, player_one, player_two, class, start_time
		FROM matches
		WHERE id = $1`

	match := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&match.ID,
		&match.TournamentID,
		&match.PlayerOne,
		&match.PlayerTwo,
		&match.Class,
		&match.StartTime,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `
		SELECT id, tournament_id, player_one, player_two, class, start_time
		FROM matches
		WHERE tournament_id = $1
		ORDER BY start_time ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var match models.Match
		if scanErr := rows.Scan(
			&match.ID,
			&match.TournamentID,
			&match.PlayerOne,
			&match.PlayerTwo,
			&match.Class,
			&match.StartTime,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, &match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) LockForUpdate(ctx context.Context, exec SQLExecutor, id int64) error {
	query := `SELECT id FROM matches WHERE id = $1 FOR UPDATE`

	var locked int64
	err := executorOr(exec, r.db).QueryRowContext(ctx, query, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to lock match %d: %w", id, err)
	}
	return nil
}

func (r *postgresMatchRepository) GetResult(ctx context.Context, exec SQLExecutor, matchID int64) (*models.MatchResult, error) {
	query := `SELECT match_id, winner, result FROM match_results WHERE match_id = $1`

	result := &models.MatchResult{}
	err := executorOr(exec, r.db).QueryRowContext(ctx, query, matchID).Scan(&result.MatchID, &result.Winner, &result.Result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchResultNotFound
		}
		return nil, fmt.Errorf("failed to scan result of match %d: %w", matchID, err)
	}
	return result, nil
}

func (r *postgresMatchRepository) InsertResult(ctx context.Context, exec SQLExecutor, result *models.MatchResult) error {
	query := `INSERT INTO match_results (match_id, winner, result) VALUES ($1, $2, $3)`

	_, err := executorOr(exec, r.db).ExecContext(ctx, query, result.MatchID, result.Winner, result.Result)
	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint, ok := pqConstraint(err); ok {
		switch {
		case code == pqUniqueViolation && constraint == "match_results_pkey":
			return ErrMatchResultConflict
		case code == pqCheckViolation && constraint == "matches_distinct_players":
			return ErrMatchRosterInvalid
		case constraint == "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case constraint == "matches_player_one_fkey", constraint == "matches_player_two_fkey":
			return ErrMatchPlayerInvalid
		}
	}
	return err
}
