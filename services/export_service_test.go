package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/tournament-tracker/storage"
)

type fakeStore struct {
	put storage.Object
	err error
}

func (f *fakeStore) Put(_ context.Context, obj storage.Object) (*storage.StoredObject, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.put = obj
	return &storage.StoredObject{Key: obj.Key, URL: f.PublicURL(obj.Key), Size: len(obj.Body)}, nil
}

func (f *fakeStore) PublicURL(key string) string {
	return "https://files.example.com/" + key
}

func TestExportUnavailableWithoutStore(t *testing.T) {
	env := newTestEnv(t)
	svc := NewExportService(env.matches, nil, discardLogger())
	if _, err := svc.ExportTournamentResults(context.Background(), env.tournament); !errors.Is(err, ErrExportUnavailable) {
		t.Fatalf("export without storage = %v, want ErrExportUnavailable", err)
	}
}

func TestExportTournamentResults(t *testing.T) {
	env := newTestEnv(t, "Court-1")
	env.checkIn(t, env.createMatch(t, 1, 2))

	store := &fakeStore{}
	svc := NewExportService(env.matches, store, discardLogger())
	svc.now = func() time.Time { return time.Unix(1780000000, 0) }

	res, err := svc.ExportTournamentResults(context.Background(), env.tournament)
	if err != nil {
		t.Fatalf("ExportTournamentResults: %v", err)
	}

	wantKey := "tournaments/1/matches-20260528T202640Z.json"
	if res.Key != wantKey || store.put.Key != wantKey {
		t.Fatalf("key = %q (stored %q), want %q", res.Key, store.put.Key, wantKey)
	}
	if !strings.HasSuffix(res.URL, wantKey) {
		t.Fatalf("url = %q", res.URL)
	}
	if store.put.ContentType != "application/json" || store.put.CacheControl == "" {
		t.Fatalf("object headers = %q/%q", store.put.ContentType, store.put.CacheControl)
	}

	var doc struct {
		TournamentID int               `json:"tournament_id"`
		Playing      []json.RawMessage `json:"playing"`
	}
	if err := json.Unmarshal(store.put.Body, &doc); err != nil {
		t.Fatalf("stored body is not JSON: %v", err)
	}
	if doc.TournamentID != env.tournament || len(doc.Playing) != 1 {
		t.Fatalf("stored document = %s", store.put.Body)
	}
}

func TestExportReportsStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	boom := errors.New("bucket unreachable")
	svc := NewExportService(env.matches, &fakeStore{err: boom}, discardLogger())
	if _, err := svc.ExportTournamentResults(context.Background(), env.tournament); !errors.Is(err, boom) {
		t.Fatalf("export with failing store = %v, want %v", err, boom)
	}
}
