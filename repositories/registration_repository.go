package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-tracker/models"
)

var ErrRegistrationConflict = errors.New("player already registered to match")

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, registration *models.PlayerRegistration) error
	ListByMatch(ctx context.Context, matchID int64) ([]*models.PlayerRegistration, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, registration *models.PlayerRegistration) error {
	query := `
		INSERT INTO player_registrations (player_id, match_id, time_registered, registered_by)
		VALUES ($1, $2, $3, $4)`

	_, err := executorOr(exec, r.db).ExecContext(ctx, query,
		registration.PlayerID,
		registration.MatchID,
		registration.TimeRegistered,
		registration.RegisteredBy,
	)
	if err != nil {
		if code, constraint, ok := pqConstraint(err); ok && code == pqUniqueViolation && constraint == "player_registrations_pkey" {
			return ErrRegistrationConflict
		}
		return fmt.Errorf("failed to register player %d to match %d: %w", registration.PlayerID, registration.MatchID, err)
	}
	return nil
}

func (r *postgresRegistrationRepository) ListByMatch(ctx context.Context, matchID int64) ([]*models.PlayerRegistration, error) {
	query := `
		SELECT player_id, match_id, time_registered, registered_by
		FROM player_registrations
		WHERE match_id = $1
		ORDER BY time_registered ASC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations of match %d: %w", matchID, err)
	}
	defer rows.Close()

	registrations := make([]*models.PlayerRegistration, 0, 2)
	for rows.Next() {
		var reg models.PlayerRegistration
		if scanErr := rows.Scan(&reg.PlayerID, &reg.MatchID, &reg.TimeRegistered, &reg.RegisteredBy); scanErr != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", scanErr)
		}
		registrations = append(registrations, &reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during registration rows iteration: %w", err)
	}
	return registrations, nil
}
