package models

import "time"

type Player struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PlayerRegistration is a player's check-in for a match.
type PlayerRegistration struct {
	PlayerID       int64     `json:"player_id"`
	MatchID        int64     `json:"match_id"`
	TimeRegistered time.Time `json:"time_registered"`
	RegisteredBy   string    `json:"registered_by"`
}
