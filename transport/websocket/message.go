package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/moviechain-backend/internal/entity"
	"github.com/rocketscienceinc/moviechain-backend/transport/view"
)

const (
	actionGameNew    = "game:new"
	actionGameJoin   = "game:join"
	actionGameSubmit = "game:submit"
	actionGameInput  = "game:input"
	actionGameReset  = "game:reset"

	actionGameUpdate      = "game:update"
	actionGameSuggestions = "game:suggestions"
	actionError           = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	GameID string `json:"game_id,omitempty"`
	Text   string `json:"text,omitempty"`
}

type ResponsePayload struct {
	Game        *view.Game          `json:"game,omitempty"`
	Result      string              `json:"result,omitempty"`
	Suggestions []entity.Suggestion `json:"suggestions,omitempty"`
	Action      string              `json:"action,omitempty"`
	Error       string              `json:"error,omitempty"`
}

func newMessage(action string, payload ResponsePayload) Message {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte(`{}`)
	}

	return Message{Action: action, Payload: raw}
}
