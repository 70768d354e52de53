package socket_io

import (
	"context"
	"log"

	redis_models "Courtside/models/redis"
	"Courtside/services/notify"
)

// Rooms is the part of the socket server the dispatcher drives.
type Rooms interface {
	JoinRoom(playerID uint, room string) bool
	LeaveRoom(playerID uint, room string) bool
	EmitToRoom(room, event string, payload interface{}) error
}

// Dispatcher forwards bus events to the game rooms. The joining player is
// added to the room before the event is emitted, so it receives its own
// join; the leaving player is removed first.
type Dispatcher struct {
	rooms Rooms
}

func NewDispatcher(rooms Rooms) *Dispatcher {
	return &Dispatcher{rooms: rooms}
}

func (d *Dispatcher) Dispatch(event redis_models.GameEvent) {
	switch event.Name {
	case redis_models.EventPlayerJoined:
		d.rooms.JoinRoom(event.PlayerID, event.Channel)
	case redis_models.EventPlayerLeft:
		d.rooms.LeaveRoom(event.PlayerID, event.Channel)
	}
	if err := d.rooms.EmitToRoom(event.Channel, event.Name, event.Payload); err != nil {
		log.Printf("[DISPATCH-ERROR] %s on %s: %v", event.Name, event.Channel, err)
	}
}

// Run dispatches events from sub until ctx is done.
func (d *Dispatcher) Run(ctx context.Context, sub notify.Subscriber) error {
	events, err := sub.Subscribe(ctx)
	if err != nil {
		return err
	}
	go func() {
		for event := range events {
			d.Dispatch(event)
		}
		log.Println("[DISPATCH] event stream closed")
	}()
	return nil
}
