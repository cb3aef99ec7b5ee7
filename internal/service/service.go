package service

import (
	"context"
	"sort"

	"github.com/rocketscienceinc/moviechain-backend/internal/tmdb"
)

type tmdbClient interface {
	SearchMovie(ctx context.Context, query string) (*tmdb.MovieSearch, error)
	SearchPerson(ctx context.Context, query string) (*tmdb.PersonSearch, error)

	GetMovieCredits(ctx context.Context, movieID int) (*tmdb.MovieCredits, error)
	GetPersonMovieCredits(ctx context.Context, personID int) (*tmdb.PersonMovieCredits, error)

	PopularMovies(ctx context.Context, page int) (*tmdb.MovieSearch, error)
}

// rankMovies orders movies by vote count, most voted first. Ties keep the
// order the movie database returned.
func rankMovies(results []tmdb.MovieResult) []tmdb.MovieResult {
	ranked := append([]tmdb.MovieResult(nil), results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].VoteCount > ranked[j].VoteCount
	})
	return ranked
}

func rankPeople(results []tmdb.PersonResult) []tmdb.PersonResult {
	ranked := append([]tmdb.PersonResult(nil), results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Popularity > ranked[j].Popularity
	})
	return ranked
}
