package entity

import (
	"errors"
	"fmt"
)

const (
	RoleMovie Role = "movie"
	RoleActor Role = "actor"
)

var (
	ErrUnknownRole  = errors.New("unknown role")
	ErrRoleMismatch = errors.New("entity role does not match the turn")
)

// Role tells whether a turn expects a movie title or an actor name.
type Role string

func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleMovie, RoleActor:
		return Role(value), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, value)
	}
}

// Opposite returns the counterpart role.
func (that Role) Opposite() Role {
	if that == RoleMovie {
		return RoleActor
	}
	return RoleMovie
}

// Entity is a resolved movie or actor. ImagePath is empty when the movie
// database has no poster or profile picture.
type Entity struct {
	ID          int    `json:"id"`
	DisplayName string `json:"display_name"`
	ImagePath   string `json:"image_path,omitempty"`
	Role        Role   `json:"role"`
}

// CreditSet is the cast of a movie or the filmography of an actor, in the
// order the movie database returned it.
type CreditSet []Entity

func (that CreditSet) Contains(id int) bool {
	for _, credit := range that {
		if credit.ID == id {
			return true
		}
	}
	return false
}

func (that CreditSet) IDs() []int {
	ids := make([]int, 0, len(that))
	for _, credit := range that {
		ids = append(ids, credit.ID)
	}
	return ids
}

// Suggestion is one autocomplete option. Label carries the disambiguating
// annotation, Value is what gets submitted.
type Suggestion struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
