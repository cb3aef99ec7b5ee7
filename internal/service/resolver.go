package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/moviechain-backend/internal/apperror"
	"github.com/rocketscienceinc/moviechain-backend/internal/entity"
)

type ResolverService interface {
	Resolve(ctx context.Context, role entity.Role, query string) (entity.Entity, error)
}

type resolverService struct {
	logger *slog.Logger
	client tmdbClient

	rankByPopularity bool
}

// NewResolverService returns a resolver that picks the first search result.
// With rankByPopularity the results are ordered like the suggestions first.
func NewResolverService(logger *slog.Logger, client tmdbClient, rankByPopularity bool) ResolverService {
	return &resolverService{
		logger:           logger.With("component", "resolver"),
		client:           client,
		rankByPopularity: rankByPopularity,
	}
}

func (that *resolverService) Resolve(ctx context.Context, role entity.Role, query string) (entity.Entity, error) {
	log := that.logger.With("method", "Resolve", "role", role, "query", query)

	var (
		resolved entity.Entity
		err      error
	)

	switch role {
	case entity.RoleMovie:
		resolved, err = that.resolveMovie(ctx, query)
	case entity.RoleActor:
		resolved, err = that.resolveActor(ctx, query)
	default:
		return entity.Entity{}, fmt.Errorf("%w: %q", entity.ErrUnknownRole, role)
	}

	if err != nil {
		return entity.Entity{}, err
	}

	log.Debug("resolved", "id", resolved.ID, "name", resolved.DisplayName)

	return resolved, nil
}

func (that *resolverService) resolveMovie(ctx context.Context, query string) (entity.Entity, error) {
	found, err := that.client.SearchMovie(ctx, query)
	if err != nil {
		return entity.Entity{}, fmt.Errorf("failed to resolve movie: %w", err)
	}

	results := found.Results
	if that.rankByPopularity {
		results = rankMovies(results)
	}

	if len(results) == 0 {
		return entity.Entity{}, apperror.ErrNotFound
	}

	best := results[0]

	return entity.Entity{
		ID:          best.ID,
		DisplayName: best.Title,
		ImagePath:   best.PosterPath,
		Role:        entity.RoleMovie,
	}, nil
}

func (that *resolverService) resolveActor(ctx context.Context, query string) (entity.Entity, error) {
	found, err := that.client.SearchPerson(ctx, query)
	if err != nil {
		return entity.Entity{}, fmt.Errorf("failed to resolve actor: %w", err)
	}

	results := found.Results
	if that.rankByPopularity {
		results = rankPeople(results)
	}

	if len(results) == 0 {
		return entity.Entity{}, apperror.ErrNotFound
	}

	best := results[0]

	return entity.Entity{
		ID:          best.ID,
		DisplayName: best.Name,
		ImagePath:   best.ProfilePath,
		Role:        entity.RoleActor,
	}, nil
}
