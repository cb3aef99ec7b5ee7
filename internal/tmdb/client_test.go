package tmdb

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rocketscienceinc/moviechain-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	return New(logger, server.URL+"/", token, 5*time.Second)
}

func TestClient_SearchMovie(t *testing.T) {
	t.Run("Sends bearer credential and query", func(t *testing.T) {
		// Given: a server expecting the token
		var gotAuth, gotPath, gotQuery string
		client := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			gotQuery = r.URL.Query().Get("query")
			_, _ = w.Write([]byte(`{"page":1,"results":[{"id":949,"title":"Heat","release_date":"1995-12-15","poster_path":"/heat.jpg","vote_count":7000}]}`))
		})

		// When: a movie is searched
		result, err := client.SearchMovie(context.Background(), "Heat & Dust")

		// Then: the request is authenticated and decoded
		require.NoError(t, err)
		assert.Equal(t, "Bearer secret", gotAuth)
		assert.Equal(t, "/search/movie", gotPath)
		assert.Equal(t, "Heat & Dust", gotQuery)
		require.Len(t, result.Results, 1)
		assert.Equal(t, MovieResult{ID: 949, Title: "Heat", ReleaseDate: "1995-12-15", PosterPath: "/heat.jpg", VoteCount: 7000}, result.Results[0])
	})

	t.Run("Non-2xx embeds status code and text", func(t *testing.T) {
		client := newTestClient(t, "secret", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status_message":"Invalid API key"}`))
		})

		_, err := client.SearchMovie(context.Background(), "Heat")

		require.ErrorIs(t, err, apperror.ErrTransport)
		var transportErr *TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.Equal(t, http.StatusUnauthorized, transportErr.StatusCode)
		assert.Contains(t, err.Error(), "TMDB API Error: 401 Unauthorized")
	})

	t.Run("Missing credential fails without a request", func(t *testing.T) {
		called := false
		client := newTestClient(t, "", func(http.ResponseWriter, *http.Request) {
			called = true
		})

		_, err := client.SearchMovie(context.Background(), "Heat")

		require.ErrorIs(t, err, apperror.ErrMissingCredential)
		require.ErrorIs(t, err, apperror.ErrTransport)
		assert.False(t, called)
	})

	t.Run("Cancelled context is a transport failure", func(t *testing.T) {
		client := newTestClient(t, "secret", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"results":[]}`))
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.SearchMovie(ctx, "Heat")

		require.ErrorIs(t, err, apperror.ErrTransport)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClient_SearchPerson(t *testing.T) {
	client := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/person", r.URL.Path)
		_, _ = w.Write([]byte(`{"results":[{"id":1158,"name":"Al Pacino","known_for_department":"Acting","profile_path":"/al.jpg","popularity":42.5}]}`))
	})

	result, err := client.SearchPerson(context.Background(), "Al Pacino")

	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "Acting", result.Results[0].KnownForDepartment)
	assert.InDelta(t, 42.5, result.Results[0].Popularity, 0.001)
}

func TestClient_Credits(t *testing.T) {
	client := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/949/credits":
			_, _ = w.Write([]byte(`{"id":949,"cast":[{"id":1158,"name":"Al Pacino"},{"id":380,"name":"Robert De Niro"}]}`))
		case "/person/1158/movie_credits":
			_, _ = w.Write([]byte(`{"id":1158,"cast":[{"id":949,"title":"Heat"},{"id":111,"title":"Scarface"}]}`))
		default:
			http.NotFound(w, r)
		}
	})

	t.Run("Movie cast", func(t *testing.T) {
		credits, err := client.GetMovieCredits(context.Background(), 949)

		require.NoError(t, err)
		require.Len(t, credits.Cast, 2)
		assert.Equal(t, "Robert De Niro", credits.Cast[1].Name)
	})

	t.Run("Person filmography", func(t *testing.T) {
		credits, err := client.GetPersonMovieCredits(context.Background(), 1158)

		require.NoError(t, err)
		require.Len(t, credits.Cast, 2)
		assert.Equal(t, "Scarface", credits.Cast[1].Title)
	})

	t.Run("Unknown id", func(t *testing.T) {
		_, err := client.GetMovieCredits(context.Background(), 1)

		assert.ErrorIs(t, err, apperror.ErrTransport)
	})
}

func TestClient_PopularMovies(t *testing.T) {
	client := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/popular", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"page":2,"results":[{"id":1,"title":"One"}]}`))
	})

	result, err := client.PopularMovies(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Page)
	assert.Len(t, result.Results, 1)
}
