package models

import "time"

// Court is a named physical court of a tournament. MatchID is set while a match occupies it.
type Court struct {
	ID           int64  `json:"-"`
	TournamentID int    `json:"tournament_id"`
	Name         string `json:"name"`
	MatchID      *int64 `json:"match_id,omitempty"`
}

// CourtQueueEntry is a match waiting for a free court.
type CourtQueueEntry struct {
	ID           int64     `json:"-"`
	TournamentID int       `json:"tournament_id"`
	MatchID      int64     `json:"match_id"`
	EnqueuedAt   time.Time `json:"enqueued_at"`
	Position     int       `json:"position"`
}
