package services

import (
	"regexp"
	"strings"

	"github.com/Dosada05/tournament-tracker/models"
)

// ResultPattern is the score grammar: one or more "<int>-<int>[(<int>)]" sets separated by single spaces.
const ResultPattern = `^[0-9]+-[0-9]+(\([0-9]+\))?( [0-9]+-[0-9]+(\([0-9]+\))?)*$`

// ResultValidator checks a proposed outcome against the match roster and the score grammar.
// It is built once at start-up and shared; it holds no mutable state.
type ResultValidator struct {
	pattern *regexp.Regexp
}

func NewResultValidator() *ResultValidator {
	return &ResultValidator{pattern: regexp.MustCompile(ResultPattern)}
}

// Validate is purely syntactic: it does not check that the winner actually won the sets.
func (v *ResultValidator) Validate(result *models.MatchResult, match *models.Match) error {
	if !match.HasPlayer(result.Winner) {
		return ErrInvalidWinner
	}
	if !v.pattern.MatchString(strings.TrimSpace(result.Result)) {
		return ErrInvalidResult
	}
	return nil
}
