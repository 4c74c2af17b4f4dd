package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/tournament-tracker/middleware"
	"github.com/Dosada05/tournament-tracker/services"
)

type MatchHandler struct {
	baseHandler
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{
		baseHandler:  baseHandler{logger: logger},
		matchService: matchService,
	}
}

func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.CreateMatch(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOrFail(w, r, http.StatusCreated, jsonResponse{"match": match})
}

func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	view, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOrFail(w, r, http.StatusOK, jsonResponse{"match": view})
}

// RegisterPlayer godoc
// @Summary Check a rostered player in for a match
// @Description The second check-in starts the match on a free court or queues it.
// @Tags matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param matchID path int true "Match ID"
// @Param input body services.RegisterPlayerInput true "Player; registered_by defaults to the caller's email"
// @Success 201 {object} services.RegistrationResult
// @Failure 400,404,409 {object} map[string]string
// @Router /matches/{matchID}/registrations [post]
func (h *MatchHandler) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input services.RegisterPlayerInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	if strings.TrimSpace(input.RegisteredBy) == "" {
		if claims, ok := middleware.UserFromContext(r.Context()); ok {
			input.RegisteredBy = claims.Email
		}
	}

	result, err := h.matchService.RegisterPlayer(r.Context(), matchID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOrFail(w, r, http.StatusCreated, result)
}

// StartMatch godoc
// @Summary Assign a free court to a match or queue it
// @Tags matches
// @Produce json
// @Security BearerAuth
// @Param matchID path int true "Match ID"
// @Success 200 {object} models.MatchView
// @Failure 404,409 {object} map[string]string
// @Router /matches/{matchID}/start [post]
func (h *MatchHandler) StartMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	view, err := h.matchService.StartMatch(r.Context(), matchID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOrFail(w, r, http.StatusOK, jsonResponse{"match": view})
}

// FinishMatch godoc
// @Summary Record the result of a playing match
// @Description Releases its court and promotes the head of the queue in one transaction.
// @Tags matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param matchID path int true "Match ID"
// @Param input body services.FinishMatchInput true "Winner and score, e.g. 6-3 6-4"
// @Success 200 {object} models.MatchView
// @Failure 400,404,409 {object} map[string]string
// @Router /matches/{matchID}/result [post]
func (h *MatchHandler) FinishMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input services.FinishMatchInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	view, err := h.matchService.FinishMatch(r.Context(), matchID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOrFail(w, r, http.StatusOK, jsonResponse{"match": view})
}
