package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/moviechain-backend/internal/entity"
	"github.com/rocketscienceinc/moviechain-backend/internal/tmdb"
)

const missingYear = "N/A"

type SuggestService interface {
	Suggest(ctx context.Context, role entity.Role, query string) ([]entity.Suggestion, error)
	Popular(ctx context.Context, page int) ([]entity.Suggestion, error)
}

type suggestService struct {
	client tmdbClient
	limit  int
}

func NewSuggestService(client tmdbClient, limit int) SuggestService {
	return &suggestService{
		client: client,
		limit:  limit,
	}
}

// Suggest returns the best matches for an autocomplete query, labelled with
// the release year for movies and the department for people.
func (that *suggestService) Suggest(ctx context.Context, role entity.Role, query string) ([]entity.Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entity.Suggestion{}, nil
	}

	switch role {
	case entity.RoleMovie:
		found, err := that.client.SearchMovie(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest movies: %w", err)
		}

		return that.movieSuggestions(rankMovies(found.Results)), nil
	case entity.RoleActor:
		found, err := that.client.SearchPerson(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest actors: %w", err)
		}

		people := rankPeople(found.Results)
		suggestions := make([]entity.Suggestion, 0, min(len(people), that.limit))
		for _, person := range people[:min(len(people), that.limit)] {
			suggestions = append(suggestions, entity.Suggestion{
				Label: person.Name + " (" + person.KnownForDepartment + ")",
				Value: person.Name,
			})
		}

		return suggestions, nil
	default:
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownRole, role)
	}
}

// Popular lists currently popular movies as starting points for a new chain.
func (that *suggestService) Popular(ctx context.Context, page int) ([]entity.Suggestion, error) {
	found, err := that.client.PopularMovies(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list popular movies: %w", err)
	}

	return that.movieSuggestions(found.Results), nil
}

func (that *suggestService) movieSuggestions(movies []tmdb.MovieResult) []entity.Suggestion {
	movies = movies[:min(len(movies), that.limit)]

	suggestions := make([]entity.Suggestion, 0, len(movies))
	for _, movie := range movies {
		suggestions = append(suggestions, entity.Suggestion{
			Label: movie.Title + " (" + releaseYear(movie.ReleaseDate) + ")",
			Value: movie.Title,
		})
	}

	return suggestions
}

func releaseYear(date string) string {
	if len(date) < 4 {
		return missingYear
	}
	return date[:4]
}
