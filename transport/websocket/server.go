package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/moviechain-backend/internal/entity"
	"github.com/rocketscienceinc/moviechain-backend/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

type gameUseCase interface {
	CreateGame(ctx context.Context) (entity.GameState, error)
	GetGame(ctx context.Context, id string) (entity.GameState, error)

	Submit(ctx context.Context, id, text string) (entity.GameState, error)
	Input(id, text string) error
	Reset(ctx context.Context, id string) (entity.GameState, error)

	Subscribe(id string) (<-chan usecase.Snapshot, func(), error)
}

type handlerFunc func(ctx context.Context, client *client, msg *Message) error

type Server struct {
	logger       *slog.Logger
	gameUseCase  gameUseCase
	imageBaseURL string
	upgrader     websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, gameUseCase gameUseCase, imageBaseURL string) *Server {
	server := &Server{
		logger:       logger.With("component", "websocket"),
		gameUseCase:  gameUseCase,
		imageBaseURL: imageBaseURL,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionGameNew] = server.handleNewGame
	server.handlers[actionGameJoin] = server.handleJoinGame
	server.handlers[actionGameSubmit] = server.handleSubmit
	server.handlers[actionGameInput] = server.handleInput
	server.handlers[actionGameReset] = server.handleReset

	return server
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	return mux
}

// Start serves until ctx is done. Open connections are closed with it.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}

func (that *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	client := newClient(conn)
	stop := context.AfterFunc(r.Context(), client.close)
	defer stop()

	log.Debug("connection established", "remote", r.RemoteAddr)

	go client.writePump()
	that.readPump(r.Context(), client)
}

func (that *Server) readPump(ctx context.Context, client *client) {
	log := that.logger.With("method", "readPump")

	defer client.close()

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("connection closed unexpectedly", "error", err)
			}
			return
		}

		var msg Message
		if err = json.Unmarshal(raw, &msg); err != nil {
			log.Debug("failed to unmarshal message", "error", err)
			client.sendError("", "malformed message")
			continue
		}

		handler, ok := that.handlers[msg.Action]
		if !ok {
			client.sendError(msg.Action, "unknown action")
			continue
		}

		if err = handler(ctx, client, &msg); err != nil {
			log.Error("failed to process message", "action", msg.Action, "error", err)
		}
	}
}
