package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/tournament-tracker/services"
)

type TournamentHandler struct {
	baseHandler
	tournamentService services.TournamentService
	matchService      services.MatchService
	exportService     *services.ExportService
}

func NewTournamentHandler(
	tournamentService services.TournamentService,
	matchService services.MatchService,
	exportService *services.ExportService,
	logger *slog.Logger,
) *TournamentHandler {
	return &TournamentHandler{
		baseHandler:       baseHandler{logger: logger},
		tournamentService: tournamentService,
		matchService:      matchService,
		exportService:     exportService,
	}
}

// CreateTournament godoc
// @Summary Create a tournament
// @Tags tournaments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body services.CreateTournamentInput true "Name and dates (YYYY-MM-DD)"
// @Success 201 {object} models.Tournament
// @Failure 400 {object} map[string]string
// @Router /tournaments [post]
func (h *TournamentHandler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOrFail(w, r, http.StatusCreated, jsonResponse{"tournament": tournament})
}

// ListTournaments godoc
// @Summary Tournaments ending today or later
// @Tags tournaments
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /tournaments [get]
func (h *TournamentHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.ListTournaments(r.Context())
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOrFail(w, r, http.StatusOK, jsonResponse{"tournaments": tournaments})
}

func (h *TournamentHandler) AddCourt(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getTournamentIDFromURL(r)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input services.AddCourtInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	court, err := h.tournamentService.AddCourt(r.Context(), tournamentID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOrFail(w, r, http.StatusCreated, jsonResponse{"court": court})
}

func (h *TournamentHandler) ListCourts(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getTournamentIDFromURL(r)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	courts, err := h.tournamentService.ListCourts(r.Context(), tournamentID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOrFail(w, r, http.StatusOK, jsonResponse{"courts": courts})
}

func (h *TournamentHandler) ListQueue(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getTournamentIDFromURL(r)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	queue, err := h.tournamentService.ListQueue(r.Context(), tournamentID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOrFail(w, r, http.StatusOK, jsonResponse{"queue": queue})
}

// ListMatches godoc
// @Summary Matches of a tournament grouped into scheduled, playing and finished
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} models.TournamentMatchList
// @Failure 400,404 {object} map[string]string
// @Router /tournaments/{tournamentID}/matches [get]
func (h *TournamentHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getTournamentIDFromURL(r)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if _, err := h.tournamentService.GetTournament(r.Context(), tournamentID); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	list, err := h.matchService.ClassifyTournament(r.Context(), tournamentID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOrFail(w, r, http.StatusOK, list)
}

func (h *TournamentHandler) ExportResults(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getTournamentIDFromURL(r)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if _, err := h.tournamentService.GetTournament(r.Context(), tournamentID); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	export, err := h.exportService.ExportTournamentResults(r.Context(), tournamentID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOrFail(w, r, http.StatusCreated, jsonResponse{"export": export})
}
