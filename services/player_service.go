package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/tournament-tracker/models"
	"github.com/Dosada05/tournament-tracker/repositories"
)

type PlayerService struct {
	repo repositories.PlayerRepository
}

func NewPlayerService(repo repositories.PlayerRepository) *PlayerService {
	return &PlayerService{repo: repo}
}

// CreatePlayer inserts the player, or returns the stored one when the same id is registered
// again under the same name. created reports whether a row was inserted. A known id with a
// different name is ErrPlayerConflict.
func (s *PlayerService) CreatePlayer(ctx context.Context, player *models.Player) (stored *models.Player, created bool, err error) {
	player.Name = strings.TrimSpace(player.Name)
	if player.ID <= 0 || player.Name == "" {
		return nil, false, fmt.Errorf("%w: player needs a positive id and a name", ErrValidationFailed)
	}

	err = s.repo.Create(ctx, player)
	if err == nil {
		return player, true, nil
	}
	if !errors.Is(err, repositories.ErrPlayerConflict) {
		return nil, false, storeError("insert player", err)
	}

	existing, err := s.repo.GetByID(ctx, player.ID)
	if err != nil {
		return nil, false, storeError("get existing player", err)
	}
	if existing.Name != player.Name {
		return nil, false, ErrPlayerConflict
	}
	return existing, false, nil
}

func (s *PlayerService) GetPlayer(ctx context.Context, id int64) (*models.Player, error) {
	player, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, storeError("get player", err)
	}
	return player, nil
}
