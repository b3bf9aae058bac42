package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/isdelr/cabinet-be/internal/apperr"
	"github.com/isdelr/cabinet-be/internal/auth"
)

func TestAuthorize(t *testing.T) {
	alice := "alice"

	tests := []struct {
		name     string
		identity string
		owner    *string
		kind     auth.ResourceKind
		action   auth.Action
		want     error
	}{
		{"anonymous read", "", &alice, auth.KindRecipe, auth.ActionRead, nil},
		{"guest recipe create", "", nil, auth.KindRecipe, auth.ActionCreate, nil},
		{"guest book create", "", nil, auth.KindBook, auth.ActionCreate, apperr.ErrUnauthenticated},
		{"guest author create", "", nil, auth.KindAuthor, auth.ActionCreate, apperr.ErrUnauthenticated},
		{"user book create", "bob", nil, auth.KindBook, auth.ActionCreate, nil},
		{"owner delete", "alice", &alice, auth.KindRecipe, auth.ActionDelete, nil},
		{"owner update", "alice", &alice, auth.KindBook, auth.ActionUpdate, nil},
		{"other user delete", "bob", &alice, auth.KindRecipe, auth.ActionDelete, apperr.ErrForbidden},
		{"other user update", "bob", &alice, auth.KindBook, auth.ActionUpdate, apperr.ErrForbidden},
		{"anonymous delete", "", &alice, auth.KindRecipe, auth.ActionDelete, apperr.ErrUnauthenticated},
		{"ownerless delete", "alice", nil, auth.KindRecipe, auth.ActionDelete, apperr.ErrForbidden},
		{"favorite needs identity", "", nil, auth.KindRecipe, auth.ActionFavorite, apperr.ErrUnauthenticated},
		{"favorite ignores owner", "bob", &alice, auth.KindRecipe, auth.ActionFavorite, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.Authorize(tt.identity, tt.owner, tt.kind, tt.action)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
