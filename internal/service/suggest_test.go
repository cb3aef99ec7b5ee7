package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/moviechain-backend/internal/entity"
	"github.com/rocketscienceinc/moviechain-backend/internal/tmdb"
)

func TestSuggestService_Suggest(t *testing.T) {
	ctx := context.Background()

	t.Run("Movies ranked by votes, labelled with the year, capped at the limit", func(t *testing.T) {
		// Given: three hits, one without a release date
		client := newMockTMDB()
		client.On("SearchMovie", mock.Anything, "heat").Return(&tmdb.MovieSearch{Results: []tmdb.MovieResult{
			{ID: 1, Title: "Heat Wave", VoteCount: 3},
			{ID: 2, Title: "Heat", ReleaseDate: "1995-12-15", VoteCount: 7000},
			{ID: 3, Title: "Heatwave", ReleaseDate: "2022-01-01", VoteCount: 50},
		}}, nil).Once()
		suggester := NewSuggestService(client, 2)

		// When: suggestions are requested
		suggestions, err := suggester.Suggest(ctx, entity.RoleMovie, " heat ")

		// Then: the two most voted movies come back
		require.NoError(t, err)
		assert.Equal(t, []entity.Suggestion{
			{Label: "Heat (1995)", Value: "Heat"},
			{Label: "Heatwave (2022)", Value: "Heatwave"},
		}, suggestions)
	})

	t.Run("Missing release date reads N/A", func(t *testing.T) {
		client := newMockTMDB()
		client.On("SearchMovie", mock.Anything, "wave").Return(&tmdb.MovieSearch{Results: []tmdb.MovieResult{
			{ID: 1, Title: "Heat Wave"},
		}}, nil).Once()

		suggestions, err := NewSuggestService(client, 5).Suggest(ctx, entity.RoleMovie, "wave")

		require.NoError(t, err)
		assert.Equal(t, []entity.Suggestion{{Label: "Heat Wave (N/A)", Value: "Heat Wave"}}, suggestions)
	})

	t.Run("People ranked by popularity, labelled with the department", func(t *testing.T) {
		client := newMockTMDB()
		client.On("SearchPerson", mock.Anything, "al").Return(&tmdb.PersonSearch{Results: []tmdb.PersonResult{
			{ID: 1, Name: "Al Lewis", KnownForDepartment: "Acting", Popularity: 2},
			{ID: 2, Name: "Al Pacino", KnownForDepartment: "Acting", Popularity: 40},
			{ID: 3, Name: "Alan Smithee", KnownForDepartment: "Directing", Popularity: 5},
		}}, nil).Once()

		suggestions, err := NewSuggestService(client, 5).Suggest(ctx, entity.RoleActor, "al")

		require.NoError(t, err)
		assert.Equal(t, []entity.Suggestion{
			{Label: "Al Pacino (Acting)", Value: "Al Pacino"},
			{Label: "Alan Smithee (Directing)", Value: "Alan Smithee"},
			{Label: "Al Lewis (Acting)", Value: "Al Lewis"},
		}, suggestions)
	})

	t.Run("Empty query makes no request", func(t *testing.T) {
		client := newMockTMDB()

		suggestions, err := NewSuggestService(client, 5).Suggest(ctx, entity.RoleMovie, "   ")

		require.NoError(t, err)
		assert.Empty(t, suggestions)
		client.AssertNotCalled(t, "SearchMovie", mock.Anything, mock.Anything)
	})

	t.Run("Failures are returned", func(t *testing.T) {
		client := newMockTMDB()
		client.On("SearchPerson", mock.Anything, "al").Return(nil, errors.New("boom")).Once()

		_, err := NewSuggestService(client, 5).Suggest(ctx, entity.RoleActor, "al")

		assert.Error(t, err)
	})
}

func TestSuggestService_Popular(t *testing.T) {
	client := newMockTMDB()
	client.On("PopularMovies", mock.Anything, 1).Return(&tmdb.MovieSearch{Results: []tmdb.MovieResult{
		{ID: 1, Title: "Low Votes", ReleaseDate: "2024-05-01", VoteCount: 1},
		{ID: 2, Title: "High Votes", ReleaseDate: "2023-05-01", VoteCount: 100},
	}}, nil).Once()

	suggestions, err := NewSuggestService(client, 5).Popular(context.Background(), 1)

	// popular keeps the order the movie database chose
	require.NoError(t, err)
	assert.Equal(t, "Low Votes (2024)", suggestions[0].Label)
	assert.Len(t, suggestions, 2)
}
