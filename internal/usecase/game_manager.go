package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/rocketscienceinc/moviechain-backend/internal/apperror"
	"github.com/rocketscienceinc/moviechain-backend/internal/entity"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.GameState) error
	GetByID(ctx context.Context, id string) (*entity.GameState, error)
	DeleteByID(ctx context.Context, id string) error
}

type popularLister interface {
	Popular(ctx context.Context, page int) ([]entity.Suggestion, error)
}

type ManagerConfig struct {
	Session        SessionConfig
	SessionTimeout time.Duration
	ReapInterval   time.Duration
}

// GameManager keeps the live sessions, mirrors their snapshots into the game
// repository and drops sessions nobody has touched for a while.
type GameManager struct {
	logger *slog.Logger
	conf   ManagerConfig
	clock  clockwork.Clock

	resolver  resolver
	credits   creditFetcher
	suggester suggester
	popular   popularLister
	gameRepo  gameRepo

	mu    sync.RWMutex
	games map[string]*liveGame
}

type liveGame struct {
	session *Session
	// closed once the last snapshot of the session has been stored
	persisted chan struct{}
}

func NewGameManager(logger *slog.Logger, conf ManagerConfig, clk clockwork.Clock,
	resolver resolver, credits creditFetcher, suggester suggester, popular popularLister, gameRepo gameRepo,
) *GameManager {
	return &GameManager{
		logger:    logger.With("component", "game_manager"),
		conf:      conf,
		clock:     clk,
		resolver:  resolver,
		credits:   credits,
		suggester: suggester,
		popular:   popular,
		gameRepo:  gameRepo,
		games:     make(map[string]*liveGame),
	}
}

// CreateGame starts a new round with a fresh id. The round clock starts now.
func (that *GameManager) CreateGame(ctx context.Context) (entity.GameState, error) {
	log := that.logger.With("method", "CreateGame")

	gameID := uuid.NewString()
	session := NewSession(that.logger, gameID, that.conf.Session, that.clock, that.resolver, that.credits, that.suggester)

	state := session.State()
	if err := that.updateGame(ctx, &state); err != nil {
		session.Close()
		return entity.GameState{}, fmt.Errorf("failed to create game: %w", err)
	}

	game := &liveGame{session: session, persisted: that.persist(session)}

	that.mu.Lock()
	that.games[gameID] = game
	that.mu.Unlock()

	log.Info("game created", "game_id", gameID)

	return state, nil
}

func (that *GameManager) GetSession(id string) (*Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	game, ok := that.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	return game.session, nil
}

// GetGame returns the live state of a game, or its last stored snapshot once
// the session is gone.
func (that *GameManager) GetGame(ctx context.Context, id string) (entity.GameState, error) {
	if session, err := that.GetSession(id); err == nil {
		return session.State(), nil
	}

	stored, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return entity.GameState{}, fmt.Errorf("failed to get game: %w", err)
	}

	return *stored, nil
}

func (that *GameManager) Submit(ctx context.Context, id, text string) (entity.GameState, error) {
	session, err := that.GetSession(id)
	if err != nil {
		return entity.GameState{}, err
	}

	return session.Submit(ctx, text)
}

func (that *GameManager) Input(id, text string) error {
	session, err := that.GetSession(id)
	if err != nil {
		return err
	}

	return session.Input(text)
}

func (that *GameManager) Suggestions(id string) ([]entity.Suggestion, error) {
	session, err := that.GetSession(id)
	if err != nil {
		return nil, err
	}

	return session.Snapshot().Suggestions, nil
}

func (that *GameManager) Reset(ctx context.Context, id string) (entity.GameState, error) {
	session, err := that.GetSession(id)
	if err != nil {
		return entity.GameState{}, err
	}

	state, err := session.Reset(ctx)
	if err != nil {
		return entity.GameState{}, fmt.Errorf("failed to reset game: %w", err)
	}

	return state, nil
}

func (that *GameManager) Subscribe(id string) (<-chan Snapshot, func(), error) {
	session, err := that.GetSession(id)
	if err != nil {
		return nil, nil, err
	}

	updates, unsubscribe := session.Subscribe()

	return updates, unsubscribe, nil
}

func (that *GameManager) PopularMovies(ctx context.Context, page int) ([]entity.Suggestion, error) {
	suggestions, err := that.popular.Popular(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list popular movies: %w", err)
	}

	return suggestions, nil
}

// DeleteGame stops the session and removes its stored snapshot.
func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	that.mu.Lock()
	game, ok := that.games[id]
	delete(that.games, id)
	that.mu.Unlock()

	if ok {
		game.close()
	}

	err := that.gameRepo.DeleteByID(ctx, id)
	switch {
	case errors.Is(err, apperror.ErrGameNotFound) && ok:
		// the session was live but never stored
	case err != nil:
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game deleted", "game_id", id)

	return nil
}

// RunReaper closes idle sessions until ctx is done. A non-positive reap
// interval disables reaping.
func (that *GameManager) RunReaper(ctx context.Context) {
	if that.conf.ReapInterval <= 0 {
		return
	}

	ticker := that.clock.NewTicker(that.conf.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			that.ReapIdle()
		}
	}
}

// ReapIdle closes every session idle for longer than the session timeout and
// returns how many were closed. Their snapshots stay in the repository.
func (that *GameManager) ReapIdle() int {
	log := that.logger.With("method", "ReapIdle")
	now := that.clock.Now()

	var idle []*liveGame

	that.mu.Lock()
	for id, game := range that.games {
		if now.Sub(game.session.LastActive()) > that.conf.SessionTimeout {
			idle = append(idle, game)
			delete(that.games, id)
		}
	}
	that.mu.Unlock()

	for _, game := range idle {
		game.close()
		log.Info("closed idle game", "game_id", game.session.ID())
	}

	return len(idle)
}

// Close stops every session and waits for the last snapshots to be stored.
func (that *GameManager) Close() {
	that.mu.Lock()
	games := that.games
	that.games = make(map[string]*liveGame)
	that.mu.Unlock()

	for _, game := range games {
		game.close()
	}
}

// persist writes every snapshot of a session to the repository until the
// session closes.
func (that *GameManager) persist(session *Session) chan struct{} {
	updates, _ := session.Subscribe()
	persisted := make(chan struct{})

	go func() {
		defer close(persisted)

		log := that.logger.With("method", "persist", "game_id", session.ID())

		for snap := range updates {
			state := snap.State
			if err := that.updateGame(context.Background(), &state); err != nil {
				log.Error("failed to store snapshot", "error", err)
			}
		}
	}()

	return persisted
}

func (that *liveGame) close() {
	that.session.Close()
	<-that.persisted
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.GameState) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}
