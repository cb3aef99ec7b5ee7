package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/rocketscienceinc/moviechain-backend/internal/config"
	"github.com/rocketscienceinc/moviechain-backend/internal/repository"
	"github.com/rocketscienceinc/moviechain-backend/internal/repository/storage"
	"github.com/rocketscienceinc/moviechain-backend/internal/service"
	"github.com/rocketscienceinc/moviechain-backend/internal/tmdb"
	"github.com/rocketscienceinc/moviechain-backend/internal/usecase"
	"github.com/rocketscienceinc/moviechain-backend/transport/rest"
	"github.com/rocketscienceinc/moviechain-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisClient, err := storage.NewRedisClient(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisClient.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	if conf.TMDB.ReadAccessToken == "" {
		log.Warn("TMDB read access token is not set, every lookup will end the round with an API error")
	}

	tmdbClient := tmdb.New(logger, conf.TMDB.BaseURL, conf.TMDB.ReadAccessToken, conf.TMDB.Timeout)

	resolverService := service.NewResolverService(logger, tmdbClient, conf.TMDB.RankByPopularity)
	creditService := service.NewCreditService(tmdbClient)
	suggestService := service.NewSuggestService(tmdbClient, conf.Game.SuggestionLimit)

	gameRepo := repository.NewGameRepository(redisClient, conf.Redis.SnapshotTTL)

	managerConf := usecase.ManagerConfig{
		Session: usecase.SessionConfig{
			RoundSeconds:  conf.Game.RoundSeconds,
			TickInterval:  conf.Game.TickInterval,
			DebounceQuiet: conf.Game.DebounceQuiet,
		},
		SessionTimeout: conf.Game.SessionTimeout,
		ReapInterval:   conf.Game.ReapInterval,
	}

	gameUseCase := usecase.NewGameManager(logger, managerConf, clockwork.NewRealClock(),
		resolverService, creditService, suggestService, suggestService, gameRepo)
	defer gameUseCase.Close()

	go gameUseCase.RunReaper(ctx)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, gameUseCase, conf.TMDB.ImageBaseURL)
		if httpErr := restServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameUseCase, conf.TMDB.ImageBaseURL)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
