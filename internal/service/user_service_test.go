package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndIdentify(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()

		_, err := f.users.Identify(ctx, 555)
		assert.ErrorIs(t, err, ErrUnauthorized)

		user, err := f.users.RegisterUser(ctx, 555, "alice", "Alice", "", "ru")
		require.NoError(t, err)
		assert.Positive(t, user.ID)

		id, err := f.users.Identify(ctx, 555)
		require.NoError(t, err)
		assert.Equal(t, user.ID, id)

		again, err := f.users.RegisterUser(ctx, 555, "alice_new", "Alice", "Smith", "en")
		require.NoError(t, err)
		assert.Equal(t, user.ID, again.ID)

		stored, err := f.users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "alice_new", stored.Username)
		assert.Equal(t, "Smith", stored.LastName)

		_, err = f.users.RegisterUser(ctx, 0, "ghost", "", "", "")
		assert.ErrorIs(t, err, ErrValidation)
	})
}
