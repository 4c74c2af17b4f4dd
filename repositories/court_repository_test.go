package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/Dosada05/tournament-tracker/models"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sql expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

func TestTryAssignFreeCourt(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresCourtRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`UPDATE courts SET match_id = \$1\s+WHERE id = \(`).
		WithArgs(int64(11), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Court-1"))
	name, ok, err := repo.TryAssignFreeCourt(ctx, nil, 3, 11)
	if err != nil || !ok || name != "Court-1" {
		t.Fatalf("TryAssignFreeCourt = %q, %v, %v", name, ok, err)
	}

	mock.ExpectQuery(`UPDATE courts SET match_id = \$1\s+WHERE id = \(`).
		WithArgs(int64(12), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))
	if _, ok, err := repo.TryAssignFreeCourt(ctx, nil, 3, 12); err != nil || ok {
		t.Fatalf("TryAssignFreeCourt with no free court: ok=%v err=%v", ok, err)
	}

	mock.ExpectQuery(`UPDATE courts SET match_id = \$1\s+WHERE id = \(`).
		WithArgs(int64(11), int64(3)).
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "courts_match_id_key"})
	if _, _, err := repo.TryAssignFreeCourt(ctx, nil, 3, 11); !errors.Is(err, ErrCourtMatchConflict) {
		t.Fatalf("TryAssignFreeCourt for a playing match = %v, want ErrCourtMatchConflict", err)
	}
}

func TestReleaseCourt(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresCourtRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`UPDATE courts SET match_id = NULL`).
		WithArgs(int64(3), int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Court-2"))
	if name, err := repo.ReleaseCourt(ctx, nil, 3, 11); err != nil || name != "Court-2" {
		t.Fatalf("ReleaseCourt = %q, %v", name, err)
	}

	mock.ExpectQuery(`UPDATE courts SET match_id = NULL`).
		WithArgs(int64(3), int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))
	if _, err := repo.ReleaseCourt(ctx, nil, 3, 12); !errors.Is(err, ErrCourtNotFound) {
		t.Fatalf("ReleaseCourt without court = %v, want ErrCourtNotFound", err)
	}
}

func TestAssignCourtRequiresFreeCourt(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresCourtRepository(db)

	mock.ExpectExec(`UPDATE courts SET match_id = \$1\s+WHERE tournament_id = \$2 AND name = \$3 AND match_id IS NULL`).
		WithArgs(int64(11), int64(3), "Court-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.AssignCourt(context.Background(), nil, 3, "Court-1", 11); !errors.Is(err, ErrCourtUnavailable) {
		t.Fatalf("AssignCourt on busy court = %v, want ErrCourtUnavailable", err)
	}
}

func TestQueueOperations(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresCourtRepository(db)
	ctx := context.Background()
	at := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO court_queue`).
		WithArgs(int64(3), int64(11), at).
		WillReturnResult(sqlmock.NewResult(1, 1))
	if err := repo.AppendQueue(ctx, nil, 3, 11, at); err != nil {
		t.Fatalf("AppendQueue: %v", err)
	}

	mock.ExpectExec(`INSERT INTO court_queue`).
		WithArgs(int64(3), int64(11), at).
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "court_queue_match_id_key"})
	if err := repo.AppendQueue(ctx, nil, 3, 11, at); !errors.Is(err, ErrQueueConflict) {
		t.Fatalf("AppendQueue twice = %v, want ErrQueueConflict", err)
	}

	mock.ExpectExec(`WHERE NOT EXISTS \(SELECT 1 FROM courts WHERE match_id = \$2::bigint\)`).
		WithArgs(int64(3), int64(12), at).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.AppendQueue(ctx, nil, 3, 12, at); !errors.Is(err, ErrCourtMatchConflict) {
		t.Fatalf("AppendQueue of match on a court = %v, want ErrCourtMatchConflict", err)
	}

	mock.ExpectQuery(`ROW_NUMBER\(\) OVER \(ORDER BY enqueued_at ASC, id ASC\)`).
		WithArgs(int64(3), int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"position"}).AddRow(2))
	if pos, err := repo.GetQueuePlacement(ctx, nil, 3, 11); err != nil || pos != 2 {
		t.Fatalf("GetQueuePlacement = %d, %v", pos, err)
	}

	mock.ExpectQuery(`ROW_NUMBER\(\)`).
		WithArgs(int64(3), int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"position"}))
	if _, err := repo.GetQueuePlacement(ctx, nil, 3, 99); !errors.Is(err, ErrQueueEntryNotFound) {
		t.Fatalf("GetQueuePlacement(unqueued) = %v, want ErrQueueEntryNotFound", err)
	}

	mock.ExpectQuery(`DELETE FROM court_queue`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"match_id"}).AddRow(int64(11)))
	if id, ok, err := repo.PopQueue(ctx, nil, 3); err != nil || !ok || id != 11 {
		t.Fatalf("PopQueue = %d, %v, %v", id, ok, err)
	}

	mock.ExpectQuery(`DELETE FROM court_queue`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"match_id"}))
	if _, ok, err := repo.PopQueue(ctx, nil, 3); err != nil || ok {
		t.Fatalf("PopQueue on empty queue: ok=%v err=%v", ok, err)
	}

	mock.ExpectQuery(`SELECT id, tournament_id, match_id, enqueued_at`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tournament_id", "match_id", "enqueued_at"}).
			AddRow(int64(5), 3, int64(20), at).
			AddRow(int64(6), 3, int64(21), at.Add(time.Minute)))
	entries, err := repo.ListQueue(ctx, 3)
	if err != nil {
		t.Fatalf("ListQueue: %v", err)
	}
	if len(entries) != 2 || entries[0].Position != 1 || entries[1].Position != 2 || entries[1].MatchID != 21 {
		t.Fatalf("ListQueue entries = %+v", entries)
	}
}

func TestCreateCourtConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresCourtRepository(db)

	mock.ExpectQuery(`INSERT INTO courts`).
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "courts_tournament_id_name_key"})
	err := repo.Create(context.Background(), &models.Court{TournamentID: 3, Name: "Court-1"})
	if !errors.Is(err, ErrCourtConflict) {
		t.Fatalf("Create duplicate court = %v, want ErrCourtConflict", err)
	}
}
