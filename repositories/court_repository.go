package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-tracker/models"
)

var (
	ErrCourtNotFound          = errors.New("court not found")
	ErrCourtConflict          = errors.New("court name already exists for this tournament")
	ErrCourtTournamentInvalid = errors.New("court tournament conflict or invalid")
	ErrCourtUnavailable       = errors.New("court is not free")
	ErrCourtMatchConflict     = errors.New("match already holds a court")
	ErrQueueEntryNotFound     = errors.New("match not found in court queue")
	ErrQueueConflict          = errors.New("match already in court queue")
)

// CourtRepository owns court occupancy and the per-tournament court queue.
type CourtRepository interface {
	Create(ctx context.Context, court *models.Court) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Court, error)
	GetMatchCourt(ctx context.Context, exec SQLExecutor, tournamentID int, matchID int64) (string, error)

	// TryAssignFreeCourt claims any free court for matchID with a single conditional update.
	// ok is false when every court is occupied.
	TryAssignFreeCourt(ctx context.Context, exec SQLExecutor, tournamentID int, matchID int64) (courtName string, ok bool, err error)
	// AssignCourt claims the named court, failing with ErrCourtUnavailable if it is occupied.
	AssignCourt(ctx context.Context, exec SQLExecutor, tournamentID int, courtName string, matchID int64) error
	ReleaseCourt(ctx context.Context, exec SQLExecutor, tournamentID int, matchID int64) (string, error)

	// AppendQueue fails with ErrQueueConflict for a queued match and ErrCourtMatchConflict
	// for a match that holds a court.
	AppendQueue(ctx context.Context, exec SQLExecutor, tournamentID int, matchID int64, enqueuedAt time.Time) error
	GetQueuePlacement(ctx context.Context, exec SQLExecutor, tournamentID int, matchID int64) (int, error)
	PopQueue(ctx context.Context, exec SQLExecutor, tournamentID int) (matchID int64, ok bool, err error)
	ListQueue(ctx context.Context, tournamentID int) ([]*models.CourtQueueEntry, error)
}

type postgresCourtRepository struct {
	db *sql.DB
}

func NewPostgresCourtRepository(db *sql.DB) CourtRepository {
	return &postgresCourtRepository{db: db}
}

func (r *postgresCourtRepository) Create(ctx context.Context, court *models.Court) error {
	query := `
		INSERT INTO courts (tournament_id, name, match_id)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, court.TournamentID, court.Name, court.MatchID).Scan(&court.ID)
	return r.handleCourtError(err)
}

func (r *postgresCourtRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Court, error) {
	query := `
		SELECT id, tournament_id, name, match_id
		FROM courts
		WHERE tournament_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query courts for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	courts := make([]*models.Court, 0)
	for rows.Next() {
		var court models.Court
		var matchID sql.NullInt64
		if scanErr := rows.Scan(&court.ID, &court.TournamentID, &court.Name, &matchID); scanErr != nil {
			return nil, fmt.Errorf("failed to scan court row: %w", scanErr)
		}
		if matchID.Valid {
			court.MatchID = &matchID.Int64
		}
		courts = append(courts, &court)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during court rows iteration: %w", err)
	}
	return courts, nil
}

func (r *postgresCourtRepository) GetMatchCourt(ctx context.Context, exec SQLExecutor, tournamentID int, matchID int64) (string, error) {
	query := `SELECT name FROM courts WHERE tournament_id = $1 AND match_id = $2`

	var name string
	err := executorOr(exec, r.db).QueryRowContext(ctx, query, tournamentID, matchID).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrCourtNotFound
		}
		return "", fmt.Errorf("failed to fetch court of match %d: %w", matchID, err)
	}
	return name, nil
}

func (r *postgresCourtRepository) TryAssignFreeCourt(ctx context.Context, exec SQLExecutor, tournamentID int, matchID int64) (string, bool, error) {
	// SKIP LOCKED lets concurrent claimers pick different free rows instead of queueing on one;
	// the outer match_id IS NULL keeps the update conditional on the row still being free.
	query := `
		UPDATE courts SET match_id = $1
		WHERE id = (
			SELECT id FROM courts
			WHERE tournament_id = $2 AND match_id IS NULL
			ORDER BY id ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		) AND match_id IS NULL
		RETURNING name`

	var name string
	err := executorOr(exec, r.db).QueryRowContext(ctx, query, matchID, tournamentID).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, r.handleCourtError(err)
	}
	return name, true, nil
}

func (r *postgresCourtRepository) AssignCourt(ctx context.Context, exec SQLExecutor, tournamentID int, courtName string, matchID int64) error {
	query := `
		UPDATE courts SET match_id = $1
		WHERE tournament_id = $2 AND name = $3 AND match_id IS NULL`

	result, err := executorOr(exec, r.db).ExecContext(ctx, query, matchID, tournamentID, courtName)
	if err != nil {
		return r.handleCourtError(err)
	}
	return checkAffectedRows(result, ErrCourtUnavailable)
}

func (r *postgresCourtRepository) ReleaseCourt(ctx context.Context, exec SQLExecutor, tournamentID int, matchID int64) (string, error) {
	query := `
		UPDATE courts SET match_id = NULL
		WHERE tournament_id = $1 AND match_id = $2
		RETURNING name`

	var name string
	err := executorOr(exec, r.db).QueryRowContext(ctx, query, tournamentID, matchID).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrCourtNotFound
		}
		return "", fmt.Errorf("failed to release court of match %d: %w", matchID, err)
	}
	return name, nil
}

func (r *postgresCourtRepository) AppendQueue(ctx context.Context, exec SQLExecutor, tournamentID int, matchID int64, enqueuedAt time.Time) error {
	query := `
		INSERT INTO court_queue (tournament_id, match_id, enqueued_at)
		SELECT $1::integer, $2::bigint, $3::timestamptz
		WHERE NOT EXISTS (SELECT 1 FROM courts WHERE match_id = $2::bigint)`

	result, err := executorOr(exec, r.db).ExecContext(ctx, query, tournamentID, matchID, enqueuedAt)
	if err != nil {
		return r.handleCourtError(err)
	}
	return checkAffectedRows(result, ErrCourtMatchConflict)
}

func (r *postgresCourtRepository) GetQueuePlacement(ctx context.Context, exec SQLExecutor, tournamentID int, matchID int64) (int, error) {
	query := `
		SELECT position FROM (
			SELECT match_id, ROW_NUMBER() OVER (ORDER BY enqueued_at ASC, id ASC) AS position
			FROM court_queue
			WHERE tournament_id = $1
		) AS queue
		WHERE match_id = $2`

	var position int
	err := executorOr(exec, r.db).QueryRowContext(ctx, query, tournamentID, matchID).Scan(&position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrQueueEntryNotFound
		}
		return 0, fmt.Errorf("failed to fetch queue placement of match %d: %w", matchID, err)
	}
	return position, nil
}

func (r *postgresCourtRepository) PopQueue(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, bool, error) {
	// No SKIP LOCKED here: a concurrent popper must wait for the head rather than take the next entry.
	query := `
		DELETE FROM court_queue
		WHERE id = (
			SELECT id FROM court_queue
			WHERE tournament_id = $1
			ORDER BY enqueued_at ASC, id ASC
			LIMIT 1
			FOR UPDATE
		)
		RETURNING match_id`

	var matchID int64
	err := executorOr(exec, r.db).QueryRowContext(ctx, query, tournamentID).Scan(&matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to pop court queue of tournament %d: %w", tournamentID, err)
	}
	return matchID, true, nil
}

func (r *postgresCourtRepository) ListQueue(ctx context.Context, tournamentID int) ([]*models.CourtQueueEntry, error) {
	query := `
		SELECT id, tournament_id, match_id, enqueued_at
		FROM court_queue
		WHERE tournament_id = $1
		ORDER BY enqueued_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query court queue of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	entries := make([]*models.CourtQueueEntry, 0)
	for rows.Next() {
		var entry models.CourtQueueEntry
		if scanErr := rows.Scan(&entry.ID, &entry.TournamentID, &entry.MatchID, &entry.EnqueuedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan court queue row: %w", scanErr)
		}
		entry.Position = len(entries) + 1
		entries = append(entries, &entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during court queue rows iteration: %w", err)
	}
	return entries, nil
}

func (r *postgresCourtRepository) handleCourtError(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint, ok := pqConstraint(err); ok {
		switch {
		case code == pqUniqueViolation && constraint == "courts_tournament_id_name_key":
			return ErrCourtConflict
		case code == pqUniqueViolation && constraint == "courts_match_id_key":
			return ErrCourtMatchConflict
		case code == pqUniqueViolation && constraint == "court_queue_match_id_key":
			return ErrQueueConflict
		case code == pqForeignKeyViolation && constraint == "courts_tournament_id_fkey":
			return ErrCourtTournamentInvalid
		}
	}
	return err
}
