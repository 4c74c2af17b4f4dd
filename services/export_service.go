package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-tracker/models"
	"github.com/Dosada05/tournament-tracker/storage"
)

// ExportResult locates an uploaded tournament snapshot.
type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type exportDocument struct {
	TournamentID int       `json:"tournament_id"`
	ExportedAt   time.Time `json:"exported_at"`
	*models.TournamentMatchList
}

type ExportService struct {
	matches  MatchService
	store    storage.ObjectStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewExportService returns a service that writes classified match lists to store.
// A nil store leaves export disabled.
func NewExportService(matches MatchService, store storage.ObjectStore, logger *slog.Logger) *ExportService {
	return &ExportService{
		matches:  matches,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ExportService) ExportTournamentResults(ctx context.Context, tournamentID int) (*ExportResult, error) {
	if s.store == nil {
		return nil, ErrExportUnavailable
	}

	list, err := s.matches.ClassifyTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	exportedAt := s.now().UTC()
	body, err := json.Marshal(exportDocument{
		TournamentID:        tournamentID,
		ExportedAt:          exportedAt,
		TournamentMatchList: list,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode tournament %d export: %w", tournamentID, err)
	}

	// Every snapshot gets its own key, so caches may keep it forever.
	stored, err := s.store.Put(ctx, storage.Object{
		Key:          storage.ExportKey(tournamentID, exportedAt),
		ContentType:  "application/json",
		CacheControl: "public, max-age=31536000, immutable",
		Body:         body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store tournament export: %w", err)
	}

	s.logger.Info("tournament results exported",
		slog.Int("tournament_id", tournamentID),
		slog.String("key", stored.Key),
		slog.String("etag", stored.ETag),
		slog.Int("bytes", stored.Size))
	return &ExportResult{Key: stored.Key, URL: stored.URL, CreatedAt: exportedAt}, nil
}
