package socketio_utils

import (
	"context"
	"testing"
	"time"

	"Courtside/middleware"
	models "Courtside/models/postgres"
	"Courtside/services/errs"
	"Courtside/services/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("socket-secret")

func TestPlayerFromAuth(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	linked := models.User{Email: "ana@example.com", PasswordHash: "x"}
	require.NoError(t, st.CreateUser(ctx, &linked))
	player := models.Player{UserID: &linked.ID, FullName: "Ana"}
	require.NoError(t, st.CreatePlayer(ctx, &player))

	bare := models.User{Email: "bob@example.com", PasswordHash: "x"}
	require.NoError(t, st.CreateUser(ctx, &bare))

	token := func(email string) string {
		tok, err := middleware.IssueToken(secret, email, time.Hour, time.Now())
		require.NoError(t, err)
		return tok
	}

	t.Run("bearer token", func(t *testing.T) {
		id, err := PlayerFromAuth(ctx, st, secret, map[string]interface{}{"authorization": "Bearer " + token("ana@example.com")})
		require.NoError(t, err)
		assert.Equal(t, player.ID, id)
	})

	t.Run("raw token", func(t *testing.T) {
		id, err := PlayerFromAuth(ctx, st, secret, map[string]interface{}{"authorization": token("ana@example.com")})
		require.NoError(t, err)
		assert.Equal(t, player.ID, id)
	})

	t.Run("no auth", func(t *testing.T) {
		_, err := PlayerFromAuth(ctx, st, secret, nil)
		assert.ErrorIs(t, err, ErrMissingAuth)

		_, err = PlayerFromAuth(ctx, st, secret, map[string]interface{}{})
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("invalid token", func(t *testing.T) {
		_, err := PlayerFromAuth(ctx, st, secret, map[string]interface{}{"authorization": "Bearer nope"})
		assert.ErrorIs(t, err, middleware.ErrInvalidToken)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := PlayerFromAuth(ctx, st, secret, map[string]interface{}{"authorization": "Bearer " + token("zoe@example.com")})
		assert.ErrorIs(t, err, ErrUnknownUser)
	})

	t.Run("no player profile", func(t *testing.T) {
		_, err := PlayerFromAuth(ctx, st, secret, map[string]interface{}{"authorization": "Bearer " + token("bob@example.com")})
		assert.True(t, errs.Is(err, errs.NoLinkedProfile))
	})
}
