package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/rocketscienceinc/moviechain-backend/internal/apperror"
	"github.com/rocketscienceinc/moviechain-backend/internal/entity"
	"github.com/rocketscienceinc/moviechain-backend/internal/usecase"
	"github.com/rocketscienceinc/moviechain-backend/transport/view"
)

var errNoGame = errors.New("no game joined")

func (that *Server) handleNewGame(ctx context.Context, client *client, msg *Message) error {
	log := that.logger.With("method", "handleNewGame")

	state, err := that.gameUseCase.CreateGame(ctx)
	if err != nil {
		log.Error("failed to create game", "error", err)
		client.sendError(msg.Action, "failed to create game")
		return nil
	}

	that.reply(client, msg.Action, ResponsePayload{Game: that.gameView(state)})

	if err = that.watch(client, state.ID); err != nil {
		return fmt.Errorf("failed to watch new game: %w", err)
	}

	log.Info("successfully created game", "gameID", state.ID)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, client *client, msg *Message) error {
	req, err := decodePayload(msg)
	if err != nil {
		client.sendError(msg.Action, "invalid payload")
		return nil
	}

	if req.GameID == "" {
		client.sendError(msg.Action, "game_id is required")
		return nil
	}

	state, err := that.gameUseCase.GetGame(ctx, req.GameID)
	if err != nil {
		client.sendError(msg.Action, errorText(err))
		return nil
	}

	that.reply(client, msg.Action, ResponsePayload{Game: that.gameView(state)})

	if err = that.watch(client, req.GameID); err != nil {
		// A stored game whose session was reaped can be read but not played.
		client.sendError(msg.Action, errorText(err))
	}

	return nil
}

// handleSubmit answers asynchronously so the client can keep typing while the
// lookup runs.
func (that *Server) handleSubmit(ctx context.Context, client *client, msg *Message) error {
	req, gameID, ok := that.targetGame(client, msg)
	if !ok {
		return nil
	}

	go func() {
		state, err := that.gameUseCase.Submit(ctx, gameID, req.Text)

		result, played := view.SubmissionResult(err)
		if !played {
			client.sendError(msg.Action, errorText(err))
			return
		}

		that.reply(client, msg.Action, ResponsePayload{Game: that.gameView(state), Result: result})
	}()

	return nil
}

func (that *Server) handleInput(_ context.Context, client *client, msg *Message) error {
	req, gameID, ok := that.targetGame(client, msg)
	if !ok {
		return nil
	}

	if err := that.gameUseCase.Input(gameID, req.Text); err != nil {
		client.sendError(msg.Action, errorText(err))
	}

	return nil
}

func (that *Server) handleReset(ctx context.Context, client *client, msg *Message) error {
	_, gameID, ok := that.targetGame(client, msg)
	if !ok {
		return nil
	}

	state, err := that.gameUseCase.Reset(ctx, gameID)
	if err != nil {
		client.sendError(msg.Action, errorText(err))
		return nil
	}

	that.reply(client, msg.Action, ResponsePayload{Game: that.gameView(state)})

	return nil
}

// targetGame reads the payload and picks its game_id, falling back to the
// game the client joined last.
func (that *Server) targetGame(client *client, msg *Message) (RequestPayload, string, bool) {
	req, err := decodePayload(msg)
	if err != nil {
		client.sendError(msg.Action, "invalid payload")
		return req, "", false
	}

	gameID := req.GameID
	if gameID == "" {
		gameID = client.game()
	}

	if gameID == "" {
		client.sendError(msg.Action, errNoGame.Error())
		return req, "", false
	}

	return req, gameID, true
}

// watch subscribes the client to gameID and forwards every snapshot as a
// game:update, plus a game:suggestions whenever the suggestion list changes.
func (that *Server) watch(client *client, gameID string) error {
	updates, unsubscribe, err := that.gameUseCase.Subscribe(gameID)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	client.follow(gameID, unsubscribe)

	go that.forward(client, updates)

	return nil
}

func (that *Server) forward(client *client, updates <-chan usecase.Snapshot) {
	var last []entity.Suggestion
	first := true

	for snap := range updates {
		if !client.enqueue(newMessage(actionGameUpdate, ResponsePayload{Game: that.gameView(snap.State)})) {
			return
		}

		if first || !slices.Equal(last, snap.Suggestions) {
			first = false
			last = snap.Suggestions

			payload := ResponsePayload{Suggestions: snap.Suggestions}
			if !client.enqueue(newMessage(actionGameSuggestions, payload)) {
				return
			}
		}
	}
}

func (that *Server) reply(client *client, action string, payload ResponsePayload) {
	client.enqueue(newMessage(action, payload))
}

func (that *Server) gameView(state entity.GameState) *view.Game {
	game := view.NewGame(state, that.imageBaseURL)
	return &game
}

func decodePayload(msg *Message) (RequestPayload, error) {
	var req RequestPayload
	if len(msg.Payload) == 0 {
		return req, nil
	}

	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return req, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return req, nil
}

func errorText(err error) string {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		return apperror.ErrGameNotFound.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "request cancelled"
	default:
		return err.Error()
	}
}
