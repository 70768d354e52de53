package socketio_utils

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"Courtside/middleware"
	"Courtside/services/errs"
	"Courtside/services/store"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

var (
	ErrMissingAuth  = errors.New("missing auth data")
	ErrMissingToken = errors.New("missing authorization token")
	ErrUnknownUser  = errors.New("could not find user")
)

// PlayerFromAuth resolves the handshake auth payload
// {"authorization": "Bearer <jwt>"} to the caller's player id.
func PlayerFromAuth(ctx context.Context, st store.Store, secret []byte, auth interface{}) (uint, error) {
	authData, ok := auth.(map[string]interface{})
	if !ok {
		return 0, ErrMissingAuth
	}
	header, ok := authData["authorization"].(string)
	if !ok || header == "" {
		return 0, ErrMissingToken
	}
	token, ok := middleware.BearerToken(header)
	if !ok {
		token = header
	}

	email, err := middleware.ParseToken(secret, token)
	if err != nil {
		return 0, err
	}
	user, err := st.UserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrUnknownUser
	}
	if err != nil {
		return 0, fmt.Errorf("load user: %w", err)
	}
	if user.Player == nil {
		return 0, errs.New(errs.NoLinkedProfile, "user has no linked player profile")
	}
	return user.Player.ID, nil
}

// Function that verifies a socket.io client connection using JWT authentication.
// Rejected clients get an "error" event and are disconnected.
func VerifyUserConnection(client *socket.Socket, st store.Store, secret []byte) (playerID uint, success bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	playerID, err := PlayerFromAuth(ctx, st, secret, client.Handshake().Auth)
	if err != nil {
		log.Printf("[SOCKET-AUTH] rejected connection %s: %v", client.Id(), err)
		client.Emit("error", gin.H{
			"error": "Authentication failed: " + err.Error() + ". Remember to set it on the 'authorization' field and with the 'Bearer ' prefix.",
		})
		client.Disconnect(true)
		return 0, false
	}
	return playerID, true
}
