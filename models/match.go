package models

import "time"

// Match is a scheduled game between two rostered players of a tournament.
type Match struct {
	ID           int64     `json:"id"`
	TournamentID int       `json:"tournament_id"`
	PlayerOne    int64     `json:"player_one"`
	PlayerTwo    int64     `json:"player_two"`
	Class        string    `json:"class"`
	StartTime    time.Time `json:"start_time"`
}

// HasPlayer reports whether playerID is one of the two rostered players.
func (m *Match) HasPlayer(playerID int64) bool {
	return m.PlayerOne == playerID || m.PlayerTwo == playerID
}

type MatchResult struct {
	MatchID int64  `json:"match_id"`
	Winner  int64  `json:"winner"`
	Result  string `json:"result"`
}

// MatchView is the read-facing aggregate of a match and its derived allocation state.
// Court carries the court name while playing and the queue placement text while waiting.
type MatchView struct {
	ID               int64     `json:"id"`
	TournamentID     int       `json:"tournament_id"`
	Class            string    `json:"class"`
	PlayerOne        Player    `json:"player_one"`
	PlayerTwo        Player    `json:"player_two"`
	PlayerOneArrived bool      `json:"player_one_arrived"`
	PlayerTwoArrived bool      `json:"player_two_arrived"`
	Court            *string   `json:"court,omitempty"`
	Winner           *int64    `json:"winner,omitempty"`
	Result           *string   `json:"result,omitempty"`
	StartTime        time.Time `json:"start_time"`
}

// TournamentMatchList groups the matches of a tournament by allocation state.
type TournamentMatchList struct {
	Scheduled []MatchView `json:"scheduled"`
	Playing   []MatchView `json:"playing"`
	Finished  []MatchView `json:"finished"`
}
