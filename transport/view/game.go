// Package view shapes game state for clients of the REST and WebSocket
// transports.
package view

import (
	"strings"

	"github.com/rocketscienceinc/moviechain-backend/internal/entity"
)

type Entity struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	ImagePath *string `json:"image_path"`
	ImageURL  *string `json:"image_url"`
}

type Game struct {
	ID             string       `json:"id"`
	Phase          entity.Phase `json:"phase"`
	Turn           entity.Role  `json:"turn"`
	Score          int          `json:"score"`
	Terminal       bool         `json:"terminal"`
	FailureReason  string       `json:"failure_reason"`
	Message        string       `json:"message"`
	TimeRemaining  int          `json:"time_remaining"`
	Pending        bool         `json:"pending"`
	MovieCreditIDs []int        `json:"movie_credit_ids"`
	ActorCreditIDs []int        `json:"actor_credit_ids"`
	CurrentMovie   *Entity      `json:"current_movie"`
	CurrentActor   *Entity      `json:"current_actor"`
}

func NewGame(state entity.GameState, imageBaseURL string) Game {
	return Game{
		ID:             state.ID,
		Phase:          state.Phase(),
		Turn:           state.Turn,
		Score:          state.Score,
		Terminal:       state.Terminal,
		FailureReason:  string(state.FailureReason),
		Message:        state.Message,
		TimeRemaining:  state.TimeRemaining,
		Pending:        state.Pending,
		MovieCreditIDs: state.MovieCredits.IDs(),
		ActorCreditIDs: state.ActorCredits.IDs(),
		CurrentMovie:   newEntity(state.CurrentMovie, imageBaseURL),
		CurrentActor:   newEntity(state.CurrentActor, imageBaseURL),
	}
}

func newEntity(resolved *entity.Entity, imageBaseURL string) *Entity {
	if resolved == nil {
		return nil
	}

	out := &Entity{
		ID:   resolved.ID,
		Name: resolved.DisplayName,
	}

	if resolved.ImagePath != "" {
		path := resolved.ImagePath
		url := strings.TrimRight(imageBaseURL, "/") + "/" + strings.TrimLeft(path, "/")
		out.ImagePath = &path
		out.ImageURL = &url
	}

	return out
}
