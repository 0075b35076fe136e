// Package access decides whether an actor may perform an action under one of
// the service's route policies.
package access

import (
	"context"

	pkgerrors "github.com/honeynil/PetAdoptService/pkg/errors"
)

// Actor is the caller of a request. The zero value is an anonymous caller.
type Actor struct {
	UserID  int64
	IsStaff bool
}

func (a Actor) Authenticated() bool {
	return a.UserID != 0
}

type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

type Policy int

const (
	// StaffOrReadOrAuthenticatedCreate: staff do anything, everyone reads,
	// authenticated users may create. Pets and images.
	StaffOrReadOrAuthenticatedCreate Policy = iota
	// StaffOnly: categories and admin operations.
	StaffOnly
	// Owner: authenticated callers acting on their own resource. Staff may read others'.
	Owner
	// AuthorOrReadOnly: everyone reads, authenticated users create, only the author writes.
	AuthorOrReadOnly
)

// Authorize returns nil when actor may perform action. ownerID is the user owning
// the target object, or 0 for collection-level checks.
func Authorize(p Policy, actor Actor, action Action, ownerID int64) error {
	switch p {
	case StaffOrReadOrAuthenticatedCreate:
		if actor.IsStaff || action == ActionRead {
			return nil
		}
		if !actor.Authenticated() {
			return pkgerrors.ErrNotAuthenticated
		}
		if action == ActionCreate {
			return nil
		}
		return pkgerrors.ErrForbidden

	case StaffOnly:
		if !actor.Authenticated() {
			return pkgerrors.ErrNotAuthenticated
		}
		if !actor.IsStaff {
			return pkgerrors.ErrForbidden
		}
		return nil

	case Owner:
		if !actor.Authenticated() {
			return pkgerrors.ErrNotAuthenticated
		}
		if ownerID == 0 || ownerID == actor.UserID {
			return nil
		}
		if actor.IsStaff && action == ActionRead {
			return nil
		}
		return pkgerrors.ErrForbidden

	case AuthorOrReadOnly:
		if action == ActionRead {
			return nil
		}
		if !actor.Authenticated() {
			return pkgerrors.ErrNotAuthenticated
		}
		if action == ActionCreate || ownerID == actor.UserID {
			return nil
		}
		return pkgerrors.ErrForbidden
	}
	return pkgerrors.ErrForbidden
}

type ctxKey struct{}

// WithActor attaches actor to ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

// ActorFrom returns the actor stored in ctx, anonymous if none.
func ActorFrom(ctx context.Context) Actor {
	actor, _ := ctx.Value(ctxKey{}).(Actor)
	return actor
}
