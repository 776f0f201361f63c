package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuttleclub/doubles-server/game"
	"github.com/shuttleclub/doubles-server/models"
	"github.com/shuttleclub/doubles-server/services"
)

// stubTournamentService returns canned values per method; tests set only
// what they need.
type stubTournamentService struct {
	tournament *models.Tournament
	scoreRes   *services.SubmitScoreResult
	err        error
}

func (s *stubTournamentService) Create(context.Context, services.CreateTournamentInput) (*models.Tournament, error) {
	return s.tournament, s.err
}
func (s *stubTournamentService) GetByID(context.Context, string) (*models.Tournament, error) {
	return s.tournament, s.err
}
func (s *stubTournamentService) GetActiveByAccessCode(context.Context, string) (*models.Tournament, error) {
	return s.tournament, s.err
}
func (s *stubTournamentService) GetActive(context.Context) (*models.Tournament, error) {
	return s.tournament, s.err
}
func (s *stubTournamentService) SubmitScore(context.Context, string, int, int, int, bool) (*services.SubmitScoreResult, error) {
	return s.scoreRes, s.err
}
func (s *stubTournamentService) RenamePlayers(context.Context, string, []string) (*models.Tournament, error) {
	return s.tournament, s.err
}
func (s *stubTournamentService) Finalize(context.Context, string) (*models.Tournament, error) {
	return s.tournament, s.err
}
func (s *stubTournamentService) Delete(context.Context, string) error { return s.err }
func (s *stubTournamentService) History(context.Context) ([]models.Tournament, error) {
	if s.tournament == nil {
		return nil, s.err
	}
	return []models.Tournament{*s.tournament}, s.err
}
func (s *stubTournamentService) AutoFinalizeStale(context.Context) error { return s.err }

func newTestRouter(svc services.TournamentService) *chi.Mux {
	router := chi.NewRouter()
	handler := NewTournamentHandler(svc)
	router.Route("/tournaments", func(r chi.Router) {
		r.Post("/", handler.CreateHandler)
		r.Get("/active", handler.GetActiveHandler)
		r.Get("/by-code/{accessCode}", handler.GetByCodeHandler)
		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", handler.GetByIDHandler)
			r.Get("/rankings", handler.RankingsHandler)
			r.Post("/score", handler.SubmitScoreHandler)
			r.Delete("/", handler.DeleteHandler)
		})
	})
	return router
}

func sampleTournament(t *testing.T) *models.Tournament {
	t.Helper()
	names := []string{"Jason", "Mike", "Kim", "Alex", "Ray", "Steven", "Josh", "Justin"}
	tournament, err := game.NewTournament("club42", names, "2026-08-31")
	require.NoError(t, err)
	return tournament
}

func doRequest(router *chi.Mux, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateHandlerStatusCodes(t *testing.T) {
	tournament := sampleTournament(t)

	rec := doRequest(newTestRouter(&stubTournamentService{tournament: tournament}),
		http.MethodPost, "/tournaments",
		map[string]interface{}{"accessCode": "club42", "playerNames": []string{"a", "b", "c", "d", "e", "f", "g", "h"}})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(newTestRouter(&stubTournamentService{err: services.ErrActiveTournamentConflict}),
		http.MethodPost, "/tournaments",
		map[string]interface{}{"accessCode": "club42", "playerNames": []string{"a"}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(newTestRouter(&stubTournamentService{err: services.ErrValidationFailed}),
		http.MethodPost, "/tournaments",
		map[string]interface{}{"accessCode": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetActiveHandlerAbsenceIsNotAnError(t *testing.T) {
	rec := doRequest(newTestRouter(&stubTournamentService{err: services.ErrTournamentNotFound}),
		http.MethodGet, "/tournaments/active", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Active bool `json:"active"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Active)
}

func TestGetByCodeHandlerNotFound(t *testing.T) {
	rec := doRequest(newTestRouter(&stubTournamentService{err: services.ErrTournamentNotFound}),
		http.MethodGet, "/tournaments/by-code/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitScoreHandlerStatusCodes(t *testing.T) {
	tournament := sampleTournament(t)
	ok := &stubTournamentService{scoreRes: &services.SubmitScoreResult{
		Tournament: tournament,
		Update:     &game.ScoreUpdate{MatchID: 1, Round: 1, ScoreA: 21, ScoreB: 15},
	}}

	body := map[string]interface{}{"matchId": 1, "scoreA": 21, "scoreB": 15}
	rec := doRequest(newTestRouter(ok), http.MethodPost, "/tournaments/"+tournament.ID+"/score", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var result services.SubmitScoreResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Update.MatchID)

	rec = doRequest(newTestRouter(&stubTournamentService{err: services.ErrInvalidScore}),
		http.MethodPost, "/tournaments/x/score", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(newTestRouter(&stubTournamentService{err: services.ErrTournamentFinalized}),
		http.MethodPost, "/tournaments/x/score", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(newTestRouter(&stubTournamentService{err: services.ErrMatchNotFound}),
		http.MethodPost, "/tournaments/x/score", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRankingsHandler(t *testing.T) {
	tournament := sampleTournament(t)
	tournament.Players[0].TotalScore = 42

	rec := doRequest(newTestRouter(&stubTournamentService{tournament: tournament}),
		http.MethodGet, "/tournaments/"+tournament.ID+"/rankings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ranked []models.Player
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranked))
	require.Len(t, ranked, 8)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 42, ranked[0].TotalScore)
}

func TestDeleteHandler(t *testing.T) {
	rec := doRequest(newTestRouter(&stubTournamentService{}), http.MethodDelete, "/tournaments/x", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(newTestRouter(&stubTournamentService{err: services.ErrTournamentNotFound}),
		http.MethodDelete, "/tournaments/x", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
