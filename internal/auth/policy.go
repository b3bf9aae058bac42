package auth

import (
	"github.com/isdelr/cabinet-be/internal/apperr"
)

// ResourceKind identifies the kind of catalogue entry an action targets.
type ResourceKind string

const (
	KindRecipe ResourceKind = "recipe"
	KindBook   ResourceKind = "book"
	KindAuthor ResourceKind = "author"
)

// Action is an operation on a resource.
type Action string

const (
	ActionRead     Action = "read"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionFavorite Action = "favorite"
)

// Authorize decides whether identity may perform action on a resource of
// kind owned by owner. An empty identity is an anonymous request. A nil
// return means the action is allowed; otherwise the error wraps
// apperr.ErrUnauthenticated or apperr.ErrForbidden.
//
// Recipes can be created by guests while books and authors need a login.
// A resource with no owner can never be updated or deleted.
func Authorize(identity string, owner *string, kind ResourceKind, action Action) error {
	switch action {
	case ActionRead:
		return nil
	case ActionCreate:
		if kind == KindRecipe || identity != "" {
			return nil
		}
		return apperr.ErrUnauthenticated
	case ActionFavorite:
		if identity == "" {
			return apperr.ErrUnauthenticated
		}
		return nil
	case ActionUpdate, ActionDelete:
		if identity == "" {
			return apperr.ErrUnauthenticated
		}
		if owner == nil || *owner != identity {
			return apperr.ErrForbidden
		}
		return nil
	default:
		return apperr.ErrForbidden
	}
}
