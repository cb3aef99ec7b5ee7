package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/rocketscienceinc/moviechain-backend/internal/apperror"
	"github.com/rocketscienceinc/moviechain-backend/internal/entity"
	"github.com/rocketscienceinc/moviechain-backend/transport/view"
)

const maxBodyBytes = 4 << 10

type gameUseCase interface {
	CreateGame(ctx context.Context) (entity.GameState, error)
	GetGame(ctx context.Context, id string) (entity.GameState, error)
	DeleteGame(ctx context.Context, id string) error

	Submit(ctx context.Context, id, text string) (entity.GameState, error)
	Input(id, text string) error
	Suggestions(id string) ([]entity.Suggestion, error)
	Reset(ctx context.Context, id string) (entity.GameState, error)

	PopularMovies(ctx context.Context, page int) ([]entity.Suggestion, error)
}

type textRequest struct {
	Text string `json:"text"`
}

type submissionResponse struct {
	Game   view.Game `json:"game"`
	Result string    `json:"result"`
}

type suggestionsResponse struct {
	Suggestions []entity.Suggestion `json:"suggestions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type gameHandler struct {
	logger       *slog.Logger
	gameUseCase  gameUseCase
	imageBaseURL string
}

func newGameHandler(logger *slog.Logger, gameUseCase gameUseCase, imageBaseURL string) *gameHandler {
	return &gameHandler{
		logger:       logger,
		gameUseCase:  gameUseCase,
		imageBaseURL: imageBaseURL,
	}
}

func (that *gameHandler) CreateGame(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	log := that.logger.With("method", "CreateGame")

	state, err := that.gameUseCase.CreateGame(r.Context())
	if err != nil {
		log.Error("failed to create game", "error", err)
		writeError(log, w, http.StatusInternalServerError, "failed to create game")
		return
	}

	writeJSON(that.logger, w, http.StatusCreated, view.NewGame(state, that.imageBaseURL))
}

func (that *gameHandler) GetGame(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	state, err := that.gameUseCase.GetGame(r.Context(), ps.ByName("id"))
	if err != nil {
		that.writeUseCaseError(w, "GetGame", err)
		return
	}

	writeJSON(that.logger, w, http.StatusOK, view.NewGame(state, that.imageBaseURL))
}

func (that *gameHandler) DeleteGame(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := that.gameUseCase.DeleteGame(r.Context(), ps.ByName("id")); err != nil {
		that.writeUseCaseError(w, "DeleteGame", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Submit waits for the lookup pipeline. Game outcomes such as a wrong answer
// are part of a successful response; only refused submissions are errors.
func (that *gameHandler) Submit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req textRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(that.logger, w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := that.gameUseCase.Submit(r.Context(), ps.ByName("id"), req.Text)

	result, ok := view.SubmissionResult(err)
	if !ok {
		that.writeUseCaseError(w, "Submit", err)
		return
	}

	writeJSON(that.logger, w, http.StatusOK, submissionResponse{
		Game:   view.NewGame(state, that.imageBaseURL),
		Result: result,
	})
}

func (that *gameHandler) Input(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req textRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(that.logger, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := that.gameUseCase.Input(ps.ByName("id"), req.Text); err != nil {
		that.writeUseCaseError(w, "Input", err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (that *gameHandler) Suggestions(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	suggestions, err := that.gameUseCase.Suggestions(ps.ByName("id"))
	if err != nil {
		that.writeUseCaseError(w, "Suggestions", err)
		return
	}

	writeJSON(that.logger, w, http.StatusOK, suggestionsResponse{Suggestions: suggestions})
}

func (that *gameHandler) Reset(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	state, err := that.gameUseCase.Reset(r.Context(), ps.ByName("id"))
	if err != nil {
		that.writeUseCaseError(w, "Reset", err)
		return
	}

	writeJSON(that.logger, w, http.StatusOK, view.NewGame(state, that.imageBaseURL))
}

func (that *gameHandler) PopularMovies(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(that.logger, w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = parsed
	}

	suggestions, err := that.gameUseCase.PopularMovies(r.Context(), page)
	if err != nil {
		that.writeUseCaseError(w, "PopularMovies", err)
		return
	}

	writeJSON(that.logger, w, http.StatusOK, suggestionsResponse{Suggestions: suggestions})
}

func (that *gameHandler) writeUseCaseError(w http.ResponseWriter, method string, err error) {
	log := that.logger.With("method", method)

	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		writeError(log, w, http.StatusNotFound, "game not found")
	case errors.Is(err, apperror.ErrEmptySubmission):
		writeError(log, w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperror.ErrRoundOver),
		errors.Is(err, apperror.ErrLookupInFlight),
		errors.Is(err, apperror.ErrSubmissionDiscarded):
		writeError(log, w, http.StatusConflict, err.Error())
	case errors.Is(err, apperror.ErrTransport):
		log.Error("movie database unavailable", "error", err)
		writeError(log, w, http.StatusBadGateway, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(log, w, http.StatusServiceUnavailable, "request cancelled")
	default:
		log.Error("request failed", "error", err)
		writeError(log, w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(out)
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to write response", "status", status, "error", err)
	}
}

func writeError(logger *slog.Logger, w http.ResponseWriter, status int, message string) {
	writeJSON(logger, w, status, errorResponse{Error: message})
}
