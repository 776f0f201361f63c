package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shuttleclub/doubles-server/game"
	"github.com/shuttleclub/doubles-server/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

// CreateHandler handles POST /tournaments
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetActiveHandler handles GET /tournaments/active. It never errors on an
// empty system; absence is part of the normal response shape.
func (h *TournamentHandler) GetActiveHandler(w http.ResponseWriter, r *http.Request) {
	tournament, err := h.tournamentService.GetActive(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrTournamentNotFound) {
			_ = writeJSON(w, http.StatusOK, jsonResponse{"active": false, "tournament": nil}, nil)
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"active": true,
		"tournament": jsonResponse{
			"id":         tournament.ID,
			"accessCode": tournament.AccessCode,
		},
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// HistoryHandler handles GET /tournaments/history
func (h *TournamentHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.History(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, tournaments, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByCodeHandler handles GET /tournaments/by-code/{accessCode}
func (h *TournamentHandler) GetByCodeHandler(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "accessCode")
	if code == "" {
		badRequestResponse(w, r, errors.New("missing access code"))
		return
	}

	tournament, err := h.tournamentService.GetActiveByAccessCode(r.Context(), code)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	tournament, err := h.tournamentService.GetByID(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RankingsHandler handles GET /tournaments/{tournamentID}/rankings
func (h *TournamentHandler) RankingsHandler(w http.ResponseWriter, r *http.Request) {
	tournament, err := h.tournamentService.GetByID(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, game.RankPlayers(tournament), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type submitScoreInput struct {
	MatchID int  `json:"matchId"`
	ScoreA  int  `json:"scoreA"`
	ScoreB  int  `json:"scoreB"`
	IsEdit  bool `json:"isEdit,omitempty"`
}

// SubmitScoreHandler handles POST /tournaments/{tournamentID}/score
func (h *TournamentHandler) SubmitScoreHandler(w http.ResponseWriter, r *http.Request) {
	var input submitScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.tournamentService.SubmitScore(r.Context(),
		chi.URLParam(r, "tournamentID"), input.MatchID, input.ScoreA, input.ScoreB, input.IsEdit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type renamePlayersInput struct {
	PlayerNames []string `json:"playerNames"`
}

// RenamePlayersHandler handles POST /tournaments/{tournamentID}/players
func (h *TournamentHandler) RenamePlayersHandler(w http.ResponseWriter, r *http.Request) {
	var input renamePlayersInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.RenamePlayers(r.Context(),
		chi.URLParam(r, "tournamentID"), input.PlayerNames)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FinalizeHandler handles POST /tournaments/{tournamentID}/finalize
func (h *TournamentHandler) FinalizeHandler(w http.ResponseWriter, r *http.Request) {
	tournament, err := h.tournamentService.Finalize(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /tournaments/{tournamentID}
func (h *TournamentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.tournamentService.Delete(r.Context(), chi.URLParam(r, "tournamentID")); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
