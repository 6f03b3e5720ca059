package kernel

import (
	"errors"
	"fmt"

	"waterline/internal/pkg/errs"
	"waterline/internal/pkg/guard"
)

// Role is the marketplace side an actor plays.
type Role int

const (
	UnknownRole Role = iota
	// Requester placed the order and receives the delivery.
	Requester
	// Fulfiller accepts and delivers the order.
	Fulfiller
)

var ErrActorIsNotConstructed = errors.New("Actor must be created via NewActor constructor")

var roleNames = map[Role]string{
	Requester: "requester",
	Fulfiller: "fulfiller",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

func (r Role) Validate() error {
	if _, ok := roleNames[r]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%d is not a valid role", r))
	}
	return nil
}

// ParseRole accepts the names produced by Role.String.
func ParseRole(s string) (Role, error) {
	for role, name := range roleNames {
		if name == s {
			return role, nil
		}
	}
	return UnknownRole, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a valid role", s))
}

// Actor is the authenticated identity on whose behalf a command runs.
type Actor struct {
	id    UUID
	role  Role
	guard guard.ConstructorGuard
}

func NewActor(id UUID, role Role) (Actor, error) {
	if err := errors.Join(id.Validate(), role.Validate()); err != nil {
		return Actor{}, err
	}
	return Actor{id: id, role: role, guard: guard.NewConstructorGuard()}, nil
}

func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

func (a Actor) ID() UUID {
	return a.id
}

func (a Actor) Role() Role {
	return a.role
}

func (a Actor) String() string {
	return fmt.Sprintf("%s %s", a.role, a.id)
}
