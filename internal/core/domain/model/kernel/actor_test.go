package kernel_test

import (
	"testing"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := kernel.ParseRole("requester")
	require.NoError(t, err)
	assert.Equal(t, kernel.Requester, role)

	role, err = kernel.ParseRole("fulfiller")
	require.NoError(t, err)
	assert.Equal(t, kernel.Fulfiller, role)

	_, err = kernel.ParseRole("admin")
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestNewActor(t *testing.T) {
	id := kernel.NewUUID()

	t.Run("should keep id and role", func(t *testing.T) {
		actor, err := kernel.NewActor(id, kernel.Fulfiller)

		require.NoError(t, err)
		assert.NoError(t, actor.Validate())
		assert.True(t, actor.ID().IsEqual(id))
		assert.Equal(t, kernel.Fulfiller, actor.Role())
		assert.Equal(t, "fulfiller "+id.String(), actor.String())
	})

	t.Run("should reject unknown role", func(t *testing.T) {
		_, err := kernel.NewActor(id, kernel.UnknownRole)

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject nil id", func(t *testing.T) {
		_, err := kernel.NewActor(kernel.UUID{}, kernel.Requester)

		assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})

	t.Run("zero value should fail validation", func(t *testing.T) {
		var actor kernel.Actor

		assert.ErrorIs(t, actor.Validate(), kernel.ErrActorIsNotConstructed)
	})
}
