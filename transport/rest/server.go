package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	logger *slog.Logger
	router *httprouter.Router
}

func New(logger *slog.Logger, gameUseCase gameUseCase, imageBaseURL string) *Server {
	log := logger.With("component", "rest")

	router := httprouter.New()
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, recovered any) {
		log.Error("handler panicked", "path", r.URL.Path, "panic", recovered)
		writeError(log, w, http.StatusInternalServerError, "internal server error")
	}

	handlers := newGameHandler(log, gameUseCase, imageBaseURL)

	router.GET("/ping", pingHandler)

	router.POST("/games", handlers.CreateGame)
	router.GET("/games/:id", handlers.GetGame)
	router.DELETE("/games/:id", handlers.DeleteGame)
	router.POST("/games/:id/submissions", handlers.Submit)
	router.POST("/games/:id/input", handlers.Input)
	router.GET("/games/:id/suggestions", handlers.Suggestions)
	router.POST("/games/:id/reset", handlers.Reset)
	router.GET("/movies/popular", handlers.PopularMovies)

	return &Server{
		logger: log,
		router: router,
	}
}

func (that *Server) Handler() http.Handler {
	return withRequestLog(that.logger, that.router)
}

// Start serves until ctx is done, then shuts down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
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
