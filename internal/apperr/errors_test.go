package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
)

func TestValidationErrorMatchesKind(t *testing.T) {
	err := fmt.Errorf("decode: %w", NewValidationError(`"title": is required`))

	assert.True(t, errors.Is(err, ErrValidation))

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{`"title": is required`}, ve.Errors)
}

func TestMessageThroughOops(t *testing.T) {
	err := oops.Code("USER_TAKEN").Public("Username already taken.").With("username", "alice").Wrap(ErrConflict)

	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "Username already taken.", Message(err, "fallback"))
	assert.Equal(t, "fallback", Message(errors.New("boom"), "fallback"))
	assert.Equal(t, "fallback", Message(oops.Wrap(ErrNotFound), "fallback"))
}
