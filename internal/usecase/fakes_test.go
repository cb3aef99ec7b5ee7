package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/moviechain-backend/internal/apperror"
	"github.com/rocketscienceinc/moviechain-backend/internal/entity"
)

// fakeLookup stands in for the movie database. Queries listed in gates block
// until the gate is closed, regardless of cancellation.
type fakeLookup struct {
	mu sync.Mutex

	entities    map[string]entity.Entity
	credits     map[int]entity.CreditSet
	suggestions map[string][]entity.Suggestion
	gates       map[string]chan struct{}

	resolveErr error
	fetchErr   error
	suggestErr error

	queries      []string
	fetchCalls   int
	suggestCalls []string
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{
		entities: map[string]entity.Entity{
			"Heat":           {ID: 949, DisplayName: "Heat", ImagePath: "/heat.jpg", Role: entity.RoleMovie},
			"Alien":          {ID: 348, DisplayName: "Alien", Role: entity.RoleMovie},
			"Scarface":       {ID: 111, DisplayName: "Scarface", Role: entity.RoleMovie},
			"Al Pacino":      {ID: 1158, DisplayName: "Al Pacino", Role: entity.RoleActor},
			"Sigourney":      {ID: 10205, DisplayName: "Sigourney Weaver", Role: entity.RoleActor},
			"Robert De Niro": {ID: 380, DisplayName: "Robert De Niro", Role: entity.RoleActor},
		},
		credits: map[int]entity.CreditSet{
			949:  {{ID: 1158, Role: entity.RoleActor}, {ID: 380, Role: entity.RoleActor}},
			348:  {{ID: 10205, Role: entity.RoleActor}},
			111:  {{ID: 1158, Role: entity.RoleActor}},
			1158: {{ID: 949, Role: entity.RoleMovie}, {ID: 111, Role: entity.RoleMovie}},
			380:  {{ID: 949, Role: entity.RoleMovie}},
		},
		suggestions: map[string][]entity.Suggestion{},
		gates:       map[string]chan struct{}{},
	}
}

func (that *fakeLookup) Resolve(_ context.Context, role entity.Role, query string) (entity.Entity, error) {
	that.mu.Lock()
	that.queries = append(that.queries, query)
	gate := that.gates[query]
	that.mu.Unlock()

	if gate != nil {
		<-gate
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.resolveErr != nil {
		return entity.Entity{}, that.resolveErr
	}

	resolved, ok := that.entities[query]
	if !ok || resolved.Role != role {
		return entity.Entity{}, apperror.ErrNotFound
	}

	return resolved, nil
}

func (that *fakeLookup) FetchCredits(_ context.Context, _ entity.Role, id int) (entity.CreditSet, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.fetchCalls++
	if that.fetchErr != nil {
		return nil, that.fetchErr
	}

	return that.credits[id], nil
}

func (that *fakeLookup) Suggest(_ context.Context, role entity.Role, query string) ([]entity.Suggestion, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.suggestCalls = append(that.suggestCalls, string(role)+":"+query)

	if that.suggestErr != nil {
		return nil, that.suggestErr
	}

	return that.suggestions[query], nil
}

func (that *fakeLookup) Popular(_ context.Context, _ int) ([]entity.Suggestion, error) {
	return []entity.Suggestion{{Label: "Heat (1995)", Value: "Heat"}}, nil
}

func (that *fakeLookup) gate(query string) chan struct{} {
	that.mu.Lock()
	defer that.mu.Unlock()

	gate := make(chan struct{})
	that.gates[query] = gate
	return gate
}

func (that *fakeLookup) set(apply func(*fakeLookup)) {
	that.mu.Lock()
	defer that.mu.Unlock()
	apply(that)
}

func (that *fakeLookup) lastQuery() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	if len(that.queries) == 0 {
		return ""
	}
	return that.queries[len(that.queries)-1]
}

func (that *fakeLookup) fetches() int {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.fetchCalls
}

func (that *fakeLookup) suggested() []string {
	that.mu.Lock()
	defer that.mu.Unlock()
	return append([]string(nil), that.suggestCalls...)
}

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.GameState) error {
	return that.Called(ctx, game).Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.GameState, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.GameState)
	return game, args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	return that.Called(ctx, id).Error(0)
}

// acceptUpdates lets every CreateOrUpdate succeed and keeps the latest
// snapshot per game.
func (that *mockGameRepo) acceptUpdates() *storedGames {
	stored := &storedGames{games: make(map[string]entity.GameState)}
	that.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.GameState")).
		Run(stored.record).
		Return(nil).
		Maybe()

	return stored
}

type storedGames struct {
	mu     sync.Mutex
	games  map[string]entity.GameState
	writes int
}

func (that *storedGames) record(args mock.Arguments) {
	game := args.Get(1).(*entity.GameState)

	that.mu.Lock()
	defer that.mu.Unlock()

	that.games[game.ID] = *game
	that.writes++
}

func (that *storedGames) get(id string) (entity.GameState, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.games[id]
	return game, ok
}

func (that *storedGames) count() int {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.writes
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
