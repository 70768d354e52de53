package games

import (
	"context"
	"errors"
	"sync"
	"testing"

	models "Courtside/models/postgres"
	redis_models "Courtside/models/redis"
	"Courtside/services/errs"
	"Courtside/services/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []redis_models.GameEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event redis_models.GameEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.Name)
	}
	return names
}

type fixture struct {
	t         *testing.T
	ctx       context.Context
	store     *store.MemoryStore
	publisher *recordingPublisher
	svc       *Service
	club      models.Club
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewMemoryStore()
	publisher := &recordingPublisher{}
	f := &fixture{
		t:         t,
		ctx:       context.Background(),
		store:     s,
		publisher: publisher,
		svc:       NewService(s, publisher),
		club: models.Club{
			Name:   "Club Norte",
			Courts: []models.Court{{Name: "Pista 1"}, {Name: "Pista 2"}},
		},
	}
	require.NoError(t, s.CreateClub(f.ctx, &f.club))
	return f
}

func (f *fixture) player(name string) models.Player {
	f.t.Helper()
	p := models.Player{FullName: name, Level: 3, Side: models.SideRight}
	require.NoError(f.t, f.store.CreatePlayer(f.ctx, &p))
	return p
}

func (f *fixture) input(visibility models.GameVisibility, maxPlayers int) GameInput {
	return GameInput{
		Title:      "Sunday padel",
		Type:       visibility,
		GameType:   models.KindCasual,
		ClubID:     f.club.ID,
		CourtID:    f.club.Courts[0].ID,
		MaxPlayers: &maxPlayers,
	}
}

func (f *fixture) game(owner models.Player, visibility models.GameVisibility, maxPlayers int) models.Game {
	f.t.Helper()
	view, err := f.svc.Create(f.ctx, owner.ID, f.input(visibility, maxPlayers))
	require.NoError(f.t, err)
	return view.Game
}

func (f *fixture) status(gameID uint) models.GameStatus {
	f.t.Helper()
	g, err := f.store.GameByID(f.ctx, gameID)
	require.NoError(f.t, err)
	return g.Status
}

func (f *fixture) count(gameID uint) int {
	f.t.Helper()
	n, err := f.store.CountMembers(f.ctx, gameID)
	require.NoError(f.t, err)
	return n
}

// assertKind checks err is a business error of the given kind.
func assertKind(t *testing.T, err error, kind errs.Kind) {
	t.Helper()
	require.Error(t, err)
	var e *errs.Error
	require.True(t, errors.As(err, &e), "expected a business error, got %v", err)
	assert.Equal(t, kind, e.Kind)
}
