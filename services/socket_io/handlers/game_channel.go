package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	redis_models "Courtside/models/redis"
	"Courtside/services/errs"
	"Courtside/services/notify"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

const requestTimeout = 5 * time.Second

// Authorizer decides whether a player may receive a game's events.
type Authorizer interface {
	CanSubscribe(ctx context.Context, playerID, gameID uint) (bool, error)
}

// ParseGameID reads the game id sent as first event argument. Clients may
// send it as a number or as a numeric string.
func ParseGameID(args []interface{}) (uint, error) {
	if len(args) < 1 {
		return 0, errs.New(errs.Validation, "missing game id")
	}
	invalid := errs.New(errs.Validation, "game id must be a positive integer")
	switch v := args[0].(type) {
	case float64:
		if v < 1 || v != float64(uint(v)) {
			return 0, invalid
		}
		return uint(v), nil
	case int:
		if v < 1 {
			return 0, invalid
		}
		return uint(v), nil
	case json.Number:
		id, err := strconv.ParseUint(v.String(), 10, 64)
		if err != nil || id == 0 {
			return 0, invalid
		}
		return uint(id), nil
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			return 0, invalid
		}
		return uint(id), nil
	case map[string]interface{}:
		if nested, ok := v["game_id"]; ok {
			return ParseGameID([]interface{}{nested})
		}
	}
	return 0, invalid
}

// Authorize returns the game's room when the player may subscribe to it.
func Authorize(ctx context.Context, auth Authorizer, playerID, gameID uint) (string, error) {
	allowed, err := auth.CanSubscribe(ctx, playerID, gameID)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", errs.New(errs.AccessDenied, "you cannot subscribe to this game")
	}
	return redis_models.GameChannel(gameID), nil
}

func emitError(client *socket.Socket, err error) {
	var e *errs.Error
	if errors.As(err, &e) {
		client.Emit("error", gin.H{"error": e.Message, "kind": e.Kind})
		return
	}
	log.Printf("[SOCKET-ERROR] %v", err)
	client.Emit("error", gin.H{"error": "internal server error"})
}

// HandleSubscribeGame puts the client in the game's room if it is the
// owner or a member.
func HandleSubscribeGame(auth Authorizer, client *socket.Socket, playerID uint) func(args ...interface{}) {
	return func(args ...interface{}) {
		gameID, err := ParseGameID(args)
		if err != nil {
			emitError(client, err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		room, err := Authorize(ctx, auth, playerID, gameID)
		if err != nil {
			log.Printf("[SUBSCRIBE-ERROR] player %d, game %d: %v", playerID, gameID, err)
			emitError(client, err)
			return
		}
		client.Join(socket.Room(room))
		log.Printf("[SUBSCRIBE] player %d subscribed to %s", playerID, room)
		client.Emit("game_subscribed", gin.H{"game_id": gameID, "channel": room})
	}
}

func HandleUnsubscribeGame(client *socket.Socket, playerID uint) func(args ...interface{}) {
	return func(args ...interface{}) {
		gameID, err := ParseGameID(args)
		if err != nil {
			emitError(client, err)
			return
		}
		room := redis_models.GameChannel(gameID)
		client.Leave(socket.Room(room))
		log.Printf("[SUBSCRIBE] player %d unsubscribed from %s", playerID, room)
		client.Emit("game_unsubscribed", gin.H{"game_id": gameID, "channel": room})
	}
}

// HandleGameHistory sends the latest events of a game to an authorized
// subscriber, newest first.
func HandleGameHistory(auth Authorizer, history notify.History, client *socket.Socket, playerID uint) func(args ...interface{}) {
	return func(args ...interface{}) {
		gameID, err := ParseGameID(args)
		if err != nil {
			emitError(client, err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if _, err := Authorize(ctx, auth, playerID, gameID); err != nil {
			emitError(client, err)
			return
		}
		events, err := history.Recent(ctx, gameID, notify.RecentLimit)
		if err != nil {
			emitError(client, err)
			return
		}
		client.Emit("game_history", gin.H{"game_id": gameID, "events": events})
	}
}
