package entity

import (
	"fmt"

	"github.com/rocketscienceinc/moviechain-backend/internal/apperror"
)

const (
	PhaseAwaitingMovieInput Phase = "awaiting_movie_input"
	PhaseAwaitingActorInput Phase = "awaiting_actor_input"
	PhaseRoundOver          Phase = "round_over"
)

const (
	FailureNone        FailureReason = "none"
	FailureTimeout     FailureReason = "timeout"
	FailureWrongAnswer FailureReason = "wrong_answer"
	FailureAPIError    FailureReason = "api_error"
)

const DefaultRoundSeconds = 20

type (
	Phase         string
	FailureReason string
)

// GameState is one immutable snapshot of a round. Every transition returns a
// new value and leaves the receiver untouched.
type GameState struct {
	ID            string        `json:"id"`
	Turn          Role          `json:"turn"`
	Score         int           `json:"score"`
	CurrentMovie  *Entity       `json:"current_movie,omitempty"`
	CurrentActor  *Entity       `json:"current_actor,omitempty"`
	MovieCredits  CreditSet     `json:"movie_credits"`
	ActorCredits  CreditSet     `json:"actor_credits"`
	TimeRemaining int           `json:"time_remaining"`
	Terminal      bool          `json:"terminal"`
	FailureReason FailureReason `json:"failure_reason"`
	Message       string        `json:"message,omitempty"`
	Pending       bool          `json:"pending"`
	Generation    uint64        `json:"generation"`
}

func NewGameState(id string, roundSeconds int) GameState {
	return GameState{
		ID:            id,
		Turn:          RoleMovie,
		MovieCredits:  CreditSet{},
		ActorCredits:  CreditSet{},
		TimeRemaining: roundSeconds,
		FailureReason: FailureNone,
	}
}

func (that GameState) Phase() Phase {
	switch {
	case that.Terminal:
		return PhaseRoundOver
	case that.Turn == RoleActor:
		return PhaseAwaitingActorInput
	default:
		return PhaseAwaitingMovieInput
	}
}

// ConfirmAcceptingInput reports whether a new submission may start.
func (that GameState) ConfirmAcceptingInput() error {
	switch {
	case that.Terminal:
		return apperror.ErrRoundOver
	case that.Pending:
		return apperror.ErrLookupInFlight
	default:
		return nil
	}
}

// BeginLookup marks a resolution as in flight.
func (that GameState) BeginLookup() GameState {
	that.Pending = true
	return that
}

// Unresolved ends a lookup that matched nothing. The phase does not change.
func (that GameState) Unresolved() GameState {
	that.Pending = false
	return that
}

// Accepts applies the membership rule: the very first movie always counts,
// afterwards the resolved id must be in the opposing role's latest credits.
func (that GameState) Accepts(resolved Entity) bool {
	switch that.Turn {
	case RoleMovie:
		return that.Score == 0 || that.ActorCredits.Contains(resolved.ID)
	case RoleActor:
		return that.MovieCredits.Contains(resolved.ID)
	default:
		return false
	}
}

// Evaluate checks a resolved entity against the current turn. A rejected
// entity ends the round; an accepted one leaves the state as is until Commit.
func (that GameState) Evaluate(resolved Entity) (GameState, error) {
	if that.Terminal {
		return that, apperror.ErrRoundOver
	}

	if resolved.Role != that.Turn {
		return that, fmt.Errorf("%w: expected %s, got %s", ErrRoleMismatch, that.Turn, resolved.Role)
	}

	if that.Accepts(resolved) {
		return that, nil
	}

	that.Pending = false
	that.Terminal = true
	that.FailureReason = FailureWrongAnswer
	that.Message = "Sorry, that's not correct."

	return that, apperror.ErrWrongAnswer
}

// Commit records an accepted entity with its freshly fetched credits, bumps
// the score, hands the turn to the other role and restarts the clock.
func (that GameState) Commit(accepted Entity, credits CreditSet, roundSeconds int) GameState {
	if that.Terminal {
		return that
	}

	switch that.Turn {
	case RoleMovie:
		that.CurrentMovie = &accepted
		that.MovieCredits = credits
		that.Message = fmt.Sprintf("Name an actor in %s.", accepted.DisplayName)
	case RoleActor:
		that.CurrentActor = &accepted
		that.ActorCredits = credits
		that.Message = fmt.Sprintf("Yes, %s was in %s. Name another movie with %s.",
			accepted.DisplayName, that.currentMovieName(), accepted.DisplayName)
	}

	that.Score++

	that.Turn = that.Turn.Opposite()
	that.TimeRemaining = roundSeconds
	that.Pending = false

	return that
}

// Tick stores the timer value. Reaching zero ends the round once; a finished
// round keeps its frozen clock.
func (that GameState) Tick(remaining int) GameState {
	if that.Terminal {
		return that
	}

	that.TimeRemaining = max(remaining, 0)

	if that.TimeRemaining == 0 {
		that.Pending = false
		that.Terminal = true
		that.FailureReason = FailureTimeout
		that.Message = "Sorry, time is up!"
	}

	return that
}

// Fail ends the round after a movie database failure. The score is zeroed and
// the clock forced to its floor so the round reads as dead.
func (that GameState) Fail(cause error) GameState {
	if that.Terminal {
		return that
	}

	that.Pending = false
	that.Terminal = true
	that.FailureReason = FailureAPIError
	that.Score = 0
	that.TimeRemaining = 0
	that.Message = "Error connecting to the movie database: " + cause.Error()

	return that
}

// Reset starts a new round under the next generation.
func (that GameState) Reset(roundSeconds int) GameState {
	next := NewGameState(that.ID, roundSeconds)
	next.Generation = that.Generation + 1
	return next
}

func (that GameState) currentMovieName() string {
	if that.CurrentMovie == nil {
		return "that movie"
	}
	return that.CurrentMovie.DisplayName
}
