package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/moviechain-backend/internal/tmdb"
)

type mockTMDB struct {
	mock.Mock
}

func (that *mockTMDB) SearchMovie(ctx context.Context, query string) (*tmdb.MovieSearch, error) {
	args := that.Called(ctx, query)
	result, _ := args.Get(0).(*tmdb.MovieSearch)
	return result, args.Error(1)
}

func (that *mockTMDB) SearchPerson(ctx context.Context, query string) (*tmdb.PersonSearch, error) {
	args := that.Called(ctx, query)
	result, _ := args.Get(0).(*tmdb.PersonSearch)
	return result, args.Error(1)
}

func (that *mockTMDB) GetMovieCredits(ctx context.Context, movieID int) (*tmdb.MovieCredits, error) {
	args := that.Called(ctx, movieID)
	result, _ := args.Get(0).(*tmdb.MovieCredits)
	return result, args.Error(1)
}

func (that *mockTMDB) GetPersonMovieCredits(ctx context.Context, personID int) (*tmdb.PersonMovieCredits, error) {
	args := that.Called(ctx, personID)
	result, _ := args.Get(0).(*tmdb.PersonMovieCredits)
	return result, args.Error(1)
}

func (that *mockTMDB) PopularMovies(ctx context.Context, page int) (*tmdb.MovieSearch, error) {
	args := that.Called(ctx, page)
	result, _ := args.Get(0).(*tmdb.MovieSearch)
	return result, args.Error(1)
}

func newMockTMDB() *mockTMDB {
	return &mockTMDB{}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
