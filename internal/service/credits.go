package service

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/moviechain-backend/internal/entity"
)

type CreditService interface {
	FetchCredits(ctx context.Context, role entity.Role, id int) (entity.CreditSet, error)
}

type creditService struct {
	client tmdbClient
}

func NewCreditService(client tmdbClient) CreditService {
	return &creditService{
		client: client,
	}
}

// FetchCredits returns the cast of a movie or the filmography of an actor.
// The entities in the set carry the opposite role of the one asked for.
func (that *creditService) FetchCredits(ctx context.Context, role entity.Role, id int) (entity.CreditSet, error) {
	switch role {
	case entity.RoleMovie:
		credits, err := that.client.GetMovieCredits(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch cast of movie %d: %w", id, err)
		}

		cast := make(entity.CreditSet, 0, len(credits.Cast))
		for _, member := range credits.Cast {
			cast = append(cast, entity.Entity{
				ID:          member.ID,
				DisplayName: member.Name,
				ImagePath:   member.ProfilePath,
				Role:        entity.RoleActor,
			})
		}

		return cast, nil
	case entity.RoleActor:
		credits, err := that.client.GetPersonMovieCredits(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch filmography of actor %d: %w", id, err)
		}

		filmography := make(entity.CreditSet, 0, len(credits.Cast))
		for _, movie := range credits.Cast {
			filmography = append(filmography, entity.Entity{
				ID:          movie.ID,
				DisplayName: movie.Title,
				ImagePath:   movie.PosterPath,
				Role:        entity.RoleMovie,
			})
		}

		return filmography, nil
	default:
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownRole, role)
	}
}
