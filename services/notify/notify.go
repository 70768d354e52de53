// Package notify carries game membership events from the services that
// decide them to the realtime layer that delivers them.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	models "Courtside/models/postgres"
	redis_models "Courtside/models/redis"

	"github.com/google/uuid"
)

// RecentLimit is how many events per game are kept for history replay.
const RecentLimit = 50

type Publisher interface {
	Publish(ctx context.Context, event redis_models.GameEvent) error
}

type Subscriber interface {
	// Subscribe delivers every published event until ctx is done, then
	// closes the channel.
	Subscribe(ctx context.Context) (<-chan redis_models.GameEvent, error)
}

type History interface {
	// Recent returns up to limit events of a game, newest first.
	Recent(ctx context.Context, gameID uint, limit int) ([]redis_models.GameEvent, error)
}

type Bus interface {
	Publisher
	Subscriber
	History
}

func newEvent(name string, gameID, playerID uint, payload interface{}, now time.Time) (redis_models.GameEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return redis_models.GameEvent{}, fmt.Errorf("error marshaling %s payload: %w", name, err)
	}
	return redis_models.GameEvent{
		ID:         uuid.NewString(),
		Name:       name,
		GameID:     gameID,
		PlayerID:   playerID,
		Channel:    redis_models.GameChannel(gameID),
		Payload:    data,
		OccurredAt: now.UTC(),
	}, nil
}

// NewPlayerJoined builds the event sent to the channel once player is in
// the roster. count is the roster size after the join.
func NewPlayerJoined(game models.Game, player models.Player, count int, now time.Time) (redis_models.GameEvent, error) {
	return newEvent(redis_models.EventPlayerJoined, game.ID, player.ID, redis_models.PlayerJoined{
		GameID: game.ID,
		Player: redis_models.JoinedPlayer{
			ID:       player.ID,
			FullName: player.FullName,
			Level:    player.Level,
			Side:     string(player.Side),
		},
		CurrentPlayersCount: count,
		MaxPlayers:          game.MaxPlayers,
	}, now)
}

// NewPlayerLeft builds the event sent to the remaining subscribers.
func NewPlayerLeft(game models.Game, player models.Player, count int, now time.Time) (redis_models.GameEvent, error) {
	return newEvent(redis_models.EventPlayerLeft, game.ID, player.ID, redis_models.PlayerLeft{
		GameID: game.ID,
		Player: redis_models.LeftPlayer{
			ID:       player.ID,
			FullName: player.FullName,
		},
		CurrentPlayersCount: count,
	}, now)
}

// Outbox collects the events of one operation. Events are only handed to
// the publisher once the operation's transaction has committed.
type Outbox struct {
	events []redis_models.GameEvent
}

func (o *Outbox) Add(event redis_models.GameEvent) {
	o.events = append(o.events, event)
}

func (o *Outbox) Events() []redis_models.GameEvent {
	return o.events
}

// Flush publishes the collected events and empties the outbox. Delivery is
// best effort: failures are logged and never returned.
func (o *Outbox) Flush(ctx context.Context, publisher Publisher) {
	events := o.events
	o.events = nil
	if publisher == nil {
		return
	}
	for _, event := range events {
		if err := publisher.Publish(ctx, event); err != nil {
			log.Printf("[NOTIFY-ERROR] Error publishing %s for game %d: %v", event.Name, event.GameID, err)
		}
	}
}
