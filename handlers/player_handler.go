package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/tournament-tracker/models"
	"github.com/Dosada05/tournament-tracker/services"
)

type PlayerHandler struct {
	baseHandler
	playerService *services.PlayerService
}

func NewPlayerHandler(playerService *services.PlayerService, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{
		baseHandler:   baseHandler{logger: logger},
		playerService: playerService,
	}
}

func (h *PlayerHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var player models.Player
	if err := readJSON(w, r, &player); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	stored, created, err := h.playerService.CreatePlayer(r.Context(), &player)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.writeOrFail(w, r, status, jsonResponse{"player": stored})
}

func (h *PlayerHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.GetPlayer(r.Context(), playerID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOrFail(w, r, http.StatusOK, jsonResponse{"player": player})
}
