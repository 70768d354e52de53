package socket_io

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	models "Courtside/models/postgres"
	redis_models "Courtside/models/redis"
	"Courtside/services/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRooms struct {
	mu      sync.Mutex
	members map[string]map[uint]bool
	calls   []string
	emitted []redis_models.GameEvent
	err     error
}

func newFakeRooms() *fakeRooms {
	return &fakeRooms{members: map[string]map[uint]bool{}}
}

func (f *fakeRooms) JoinRoom(playerID uint, room string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members[room] == nil {
		f.members[room] = map[uint]bool{}
	}
	f.members[room][playerID] = true
	f.calls = append(f.calls, "join")
	return true
}

func (f *fakeRooms) LeaveRoom(playerID uint, room string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.members[room], playerID)
	f.calls = append(f.calls, "leave")
	return true
}

func (f *fakeRooms) EmitToRoom(room, event string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, _ := payload.(json.RawMessage)
	f.emitted = append(f.emitted, redis_models.GameEvent{Name: event, Channel: room, Payload: raw})
	f.calls = append(f.calls, "emit")
	return f.err
}

func (f *fakeRooms) snapshot() ([]string, []redis_models.GameEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...), append([]redis_models.GameEvent(nil), f.emitted...)
}

func sampleEvents(t *testing.T) (redis_models.GameEvent, redis_models.GameEvent) {
	game := models.Game{ID: 3, MaxPlayers: 4}
	player := models.Player{ID: 8, FullName: "Bob", Level: 4, Side: models.SideLeft}
	joined, err := notify.NewPlayerJoined(game, player, 2, time.Now())
	require.NoError(t, err)
	left, err := notify.NewPlayerLeft(game, player, 1, time.Now())
	require.NoError(t, err)
	return joined, left
}

func TestDispatchOrdersRoomChanges(t *testing.T) {
	rooms := newFakeRooms()
	d := NewDispatcher(rooms)
	joined, left := sampleEvents(t)

	d.Dispatch(joined)
	assert.True(t, rooms.members["game.3"][8], "joining player must be in the room")
	d.Dispatch(left)
	assert.False(t, rooms.members["game.3"][8])

	calls, emitted := rooms.snapshot()
	assert.Equal(t, []string{"join", "emit", "leave", "emit"}, calls)
	require.Len(t, emitted, 2)
	assert.Equal(t, redis_models.EventPlayerJoined, emitted[0].Name)
	assert.Equal(t, "game.3", emitted[0].Channel)
	assert.JSONEq(t, string(joined.Payload), string(emitted[0].Payload))
}

func TestDispatchIgnoresEmitErrors(t *testing.T) {
	rooms := newFakeRooms()
	rooms.err = errors.New("closed")
	joined, _ := sampleEvents(t)
	NewDispatcher(rooms).Dispatch(joined)

	calls, _ := rooms.snapshot()
	assert.Equal(t, []string{"join", "emit"}, calls)
}

func TestRunConsumesBus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := notify.NewLocalBus()
	rooms := newFakeRooms()
	require.NoError(t, NewDispatcher(rooms).Run(ctx, bus))

	joined, left := sampleEvents(t)
	require.NoError(t, bus.Publish(ctx, joined))
	require.NoError(t, bus.Publish(ctx, left))

	assert.Eventually(t, func() bool {
		_, emitted := rooms.snapshot()
		return len(emitted) == 2
	}, time.Second, 10*time.Millisecond)
}
