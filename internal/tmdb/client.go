package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/rocketscienceinc/moviechain-backend/internal/apperror"
)

// TransportError is a non-2xx answer from the movie database.
type TransportError struct {
	StatusCode int
	Status     string
}

func (that *TransportError) Error() string {
	return fmt.Sprintf("TMDB API Error: %d %s", that.StatusCode, that.Status)
}

func (that *TransportError) Unwrap() error {
	return apperror.ErrTransport
}

type Client struct {
	logger  *slog.Logger
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client that signs every request with the read access token as
// a bearer credential. An empty token is accepted; every call then fails with
// apperror.ErrMissingCredential wrapped in apperror.ErrTransport.
func New(logger *slog.Logger, baseURL, token string, timeout time.Duration) *Client {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})

	return &Client{
		logger:  logger.With("component", "tmdb"),
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout: timeout,
			Transport: &oauth2.Transport{
				Source: source,
				Base:   http.DefaultTransport,
			},
		},
	}
}

func (that *Client) SearchMovie(ctx context.Context, query string) (*MovieSearch, error) {
	var result MovieSearch
	if err := that.get(ctx, "/search/movie", url.Values{"query": {query}}, &result); err != nil {
		return nil, fmt.Errorf("failed to search movie: %w", err)
	}

	return &result, nil
}

func (that *Client) SearchPerson(ctx context.Context, query string) (*PersonSearch, error) {
	var result PersonSearch
	if err := that.get(ctx, "/search/person", url.Values{"query": {query}}, &result); err != nil {
		return nil, fmt.Errorf("failed to search person: %w", err)
	}

	return &result, nil
}

func (that *Client) GetMovieCredits(ctx context.Context, movieID int) (*MovieCredits, error) {
	var result MovieCredits
	if err := that.get(ctx, "/movie/"+strconv.Itoa(movieID)+"/credits", nil, &result); err != nil {
		return nil, fmt.Errorf("failed to get movie credits: %w", err)
	}

	return &result, nil
}

func (that *Client) GetPersonMovieCredits(ctx context.Context, personID int) (*PersonMovieCredits, error) {
	var result PersonMovieCredits
	if err := that.get(ctx, "/person/"+strconv.Itoa(personID)+"/movie_credits", nil, &result); err != nil {
		return nil, fmt.Errorf("failed to get person movie credits: %w", err)
	}

	return &result, nil
}

func (that *Client) PopularMovies(ctx context.Context, page int) (*MovieSearch, error) {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	var result MovieSearch
	if err := that.get(ctx, "/movie/popular", params, &result); err != nil {
		return nil, fmt.Errorf("failed to get popular movies: %w", err)
	}

	return &result, nil
}

func (that *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	log := that.logger.With("method", "get", "endpoint", endpoint)

	if that.token == "" {
		return fmt.Errorf("%w: %w", apperror.ErrTransport, apperror.ErrMissingCredential)
	}

	target := that.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := that.http.Do(req)
	if err != nil {
		log.Error("request failed", "error", err)
		return fmt.Errorf("%w: %w", apperror.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Warn("unexpected status", "status", resp.StatusCode)
		return &TransportError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", apperror.ErrTransport, err)
	}

	log.Debug("request succeeded")

	return nil
}
