package services

import (
	"errors"
	"testing"

	"github.com/Dosada05/tournament-tracker/models"
)

func TestResultValidator(t *testing.T) {
	match := &models.Match{ID: 1, PlayerOne: 10, PlayerTwo: 20}
	v := NewResultValidator()

	tests := []struct {
		name   string
		winner int64
		result string
		want   error
	}{
		{"two sets", 10, "6-3 6-4", nil},
		{"tie-breaks", 20, "2-3(2) 4-4 3-3(2)", nil},
		{"single set", 10, "7-6(5)", nil},
		{"surrounding whitespace", 10, "  6-0 6-0 ", nil},
		{"too many dashes", 10, "2-3-4-5 6-2(2)", ErrInvalidResult},
		{"double space", 10, "6-3  6-4", ErrInvalidResult},
		{"empty", 10, "", ErrInvalidResult},
		{"letters", 10, "six-three", ErrInvalidResult},
		{"unclosed tie-break", 10, "6-3(", ErrInvalidResult},
		{"negative score", 10, "-6-3", ErrInvalidResult},
		{"winner not rostered", 30, "6-3 6-4", ErrInvalidWinner},
		{"winner checked before grammar", 30, "bad", ErrInvalidWinner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&models.MatchResult{MatchID: 1, Winner: tt.winner, Result: tt.result}, match)
			if !errors.Is(err, tt.want) || (tt.want == nil && err != nil) {
				t.Fatalf("Validate(%d, %q) = %v, want %v", tt.winner, tt.result, err, tt.want)
			}
		})
	}
}
