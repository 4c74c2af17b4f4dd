package db

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPoolConfigDefaults(t *testing.T) {
	got := PoolConfig{MaxConns: 4}.withDefaults()
	if got.MaxConns != 4 || got.ConnMaxLifetime != defaultConnMaxLifetime || got.PingTimeout != defaultPingTimeout {
		t.Fatalf("withDefaults = %+v", got)
	}
}

func TestSetupPingsDatabase(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer conn.Close()

	mock.ExpectPing()
	got, err := setup(conn, PoolConfig{MaxConns: 3}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if got != conn {
		t.Fatal("setup returned a different handle")
	}
	if stats := conn.Stats(); stats.MaxOpenConnections != 3 {
		t.Fatalf("MaxOpenConnections = %d, want 3", stats.MaxOpenConnections)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}

func TestSetupLogsCloseFailure(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	pingErr := errors.New("connection refused")
	mock.ExpectPing().WillReturnError(pingErr)
	mock.ExpectClose().WillReturnError(errors.New("socket gone"))

	var logs strings.Builder
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	if _, err := setup(conn, PoolConfig{PingTimeout: time.Second}, logger); !errors.Is(err, pingErr) {
		t.Fatalf("setup = %v, want the ping error", err)
	}
	if !strings.Contains(logs.String(), "failed to close database handle") || !strings.Contains(logs.String(), "socket gone") {
		t.Fatalf("close failure not logged: %q", logs.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}
