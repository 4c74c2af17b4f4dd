package models

import "strconv"

// CourtBoardEventType names a change pushed to live court board subscribers.
type CourtBoardEventType string

const (
	EventMatchStarted  CourtBoardEventType = "MATCH_STARTED"
	EventMatchQueued   CourtBoardEventType = "MATCH_QUEUED"
	EventMatchFinished CourtBoardEventType = "MATCH_FINISHED"
	EventMatchPromoted CourtBoardEventType = "MATCH_PROMOTED"
)

type CourtBoardEvent struct {
	Type    CourtBoardEventType `json:"type"`
	Payload interface{}         `json:"payload"`
	RoomID  string              `json:"room_id,omitempty"`
}

// CourtPromotion is the payload of EventMatchPromoted.
type CourtPromotion struct {
	MatchID int64  `json:"match_id"`
	Court   string `json:"court"`
}

// TournamentRoomID is the court board room of a tournament.
func TournamentRoomID(tournamentID int) string {
	return "tournament_" + strconv.Itoa(tournamentID)
}
