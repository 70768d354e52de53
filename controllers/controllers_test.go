package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"Courtside/middleware"
	models "Courtside/models/postgres"
	redis_models "Courtside/models/redis"
	"Courtside/routes"
	"Courtside/services/clubs"
	"Courtside/services/friends"
	"Courtside/services/games"
	"Courtside/services/notify"
	"Courtside/services/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("controllers-test-secret")

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *store.MemoryStore
	bus    *notify.LocalBus
	club   models.Club
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	bus := notify.NewLocalBus()
	seeded := clubs.Defaults()
	require.NoError(t, clubs.Seed(context.Background(), st, seeded))
	club := seeded[0]

	r := gin.New()
	middleware.SetUpMiddleware(r, testSecret, false)
	routes.SetupRoutes(r, routes.Deps{
		Store:    st,
		Games:    games.NewService(st, bus),
		Friends:  friends.NewService(st),
		Secret:   testSecret,
		TokenTTL: time.Hour,
	})
	return &testServer{t: t, router: r, store: st, bus: bus, club: club}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) form(path string, values url.Values) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// account signs up and logs in without creating a player profile.
func (s *testServer) account(email string) string {
	s.t.Helper()
	creds := url.Values{"email": {email}, "password": {"secret-password"}}
	w := s.form("/signup", creds)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	w = s.form("/login", creds)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	decode(s.t, w, &body)
	require.NotEmpty(s.t, body.Token)
	return body.Token
}

// register creates an account with a linked player profile.
func (s *testServer) register(name string) (string, uint) {
	s.t.Helper()
	token := s.account(strings.ToLower(name) + "@example.com")
	w := s.do(http.MethodPost, "/auth/player", token, gin.H{"full_name": name, "level": 4, "side": "left"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var player models.Player
	decode(s.t, w, &player)
	return token, player.ID
}

func (s *testServer) createGame(token, visibility string, maxPlayers int) games.GameView {
	s.t.Helper()
	w := s.do(http.MethodPost, "/auth/games", token, gin.H{
		"title":       "Sunday padel",
		"type":        visibility,
		"club_id":     s.club.ID,
		"court_id":    s.club.Courts[0].ID,
		"max_players": maxPlayers,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var view games.GameView
	decode(s.t, w, &view)
	return view
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func assertKind(t *testing.T, w *httptest.ResponseRecorder, status int, kind string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	var body struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	decode(t, w, &body)
	assert.Equal(t, kind, body.Kind)
	assert.NotEmpty(t, body.Error)
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestAccounts(t *testing.T) {
	s := newTestServer(t)
	token := s.account("ana@example.com")

	t.Run("duplicate email", func(t *testing.T) {
		w := s.form("/signup", url.Values{"email": {"ana@example.com"}, "password": {"another-password"}})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("short password", func(t *testing.T) {
		w := s.form("/signup", url.Values{"email": {"bea@example.com"}, "password": {"short"}})
		assertKind(t, w, http.StatusUnprocessableEntity, "validation_error")
	})

	t.Run("wrong password", func(t *testing.T) {
		w := s.form("/login", url.Values{"email": {"ana@example.com"}, "password": {"nope-nope-nope"}})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		w := s.form("/login", url.Values{"email": {"zoe@example.com"}, "password": {"secret-password"}})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("me without credentials", func(t *testing.T) {
		w := s.do(http.MethodGet, "/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("no linked profile", func(t *testing.T) {
		w := s.do(http.MethodGet, "/auth/games", token, nil)
		assertKind(t, w, http.StatusBadRequest, "no_linked_profile")

		w = s.do(http.MethodPost, "/auth/games/1/join", token, nil)
		assertKind(t, w, http.StatusBadRequest, "no_linked_profile")
	})

	t.Run("create profile once", func(t *testing.T) {
		w := s.do(http.MethodPost, "/auth/player", token, gin.H{"full_name": "Ana", "side": "right"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = s.do(http.MethodPost, "/auth/player", token, gin.H{"full_name": "Ana"})
		assert.Equal(t, http.StatusConflict, w.Code)

		w = s.do(http.MethodGet, "/auth/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var user models.User
		decode(t, w, &user)
		assert.Equal(t, "ana@example.com", user.Email)
		require.NotNil(t, user.Player)
		assert.Equal(t, "Ana", user.Player.FullName)
		assert.Equal(t, 3, user.Player.Level)
	})

	t.Run("bad side", func(t *testing.T) {
		other := s.account("carla@example.com")
		w := s.do(http.MethodPost, "/auth/player", other, gin.H{"full_name": "Carla", "side": "middle"})
		assertKind(t, w, http.StatusUnprocessableEntity, "validation_error")
	})
}

func TestPublicGameJoinAndLeave(t *testing.T) {
	s := newTestServer(t)
	ownerToken, ownerID := s.register("Owner")
	bobToken, bobID := s.register("Bob")
	carlaToken, _ := s.register("Carla")

	game := s.createGame(ownerToken, "public", 2)
	assert.Equal(t, models.StatusOpen, game.Status)
	assert.Equal(t, 1, game.PlayersCount)
	assert.Equal(t, ownerID, game.OwnerPlayerID)
	path := fmt.Sprintf("/auth/games/%d", game.ID)

	w := s.do(http.MethodGet, "/auth/open-games", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var open []games.GameView
	decode(t, w, &open)
	require.Len(t, open, 1)
	assert.Equal(t, game.ID, open[0].ID)

	var joined games.MembershipResult
	w = s.do(http.MethodPost, path+"/join", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &joined)
	assert.True(t, joined.Joined)
	assert.Equal(t, 2, joined.PlayersCount)
	assert.Equal(t, models.StatusFull, joined.Game.Status)

	w = s.do(http.MethodPost, path+"/join", carlaToken, nil)
	assertKind(t, w, http.StatusConflict, "full")

	w = s.do(http.MethodPost, path+"/leave", ownerToken, nil)
	assertKind(t, w, http.StatusConflict, "owner_cannot_leave")

	w = s.do(http.MethodPost, path+"/leave", carlaToken, nil)
	assertKind(t, w, http.StatusNotFound, "not_found")

	var left games.MembershipResult
	w = s.do(http.MethodPost, path+"/leave", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &left)
	assert.Equal(t, 1, left.PlayersCount)
	assert.Equal(t, models.StatusOpen, left.Game.Status)

	w = s.do(http.MethodGet, path, carlaToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view games.GameView
	decode(t, w, &view)
	assert.Equal(t, 1, view.PlayersCount)

	events, err := s.bus.Recent(context.Background(), game.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, redis_models.EventPlayerLeft, events[0].Name)
	assert.Equal(t, redis_models.EventPlayerJoined, events[1].Name)
	assert.Equal(t, bobID, events[1].PlayerID)

	var payload redis_models.PlayerJoined
	require.NoError(t, json.Unmarshal(events[1].Payload, &payload))
	assert.Equal(t, 2, payload.CurrentPlayersCount)
	assert.Equal(t, 2, payload.MaxPlayers)
	assert.Equal(t, "Bob", payload.Player.FullName)
	assert.Equal(t, "left", payload.Player.Side)
}

func TestGameChannel(t *testing.T) {
	s := newTestServer(t)
	ownerToken, _ := s.register("Owner")
	bobToken, _ := s.register("Bob")
	game := s.createGame(ownerToken, "public", 4)
	path := fmt.Sprintf("/auth/games/%d/channel", game.ID)

	w := s.do(http.MethodGet, path, ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"channel":"game.%d","authorized":true}`, game.ID), w.Body.String())

	w = s.do(http.MethodGet, path, bobToken, nil)
	assertKind(t, w, http.StatusForbidden, "access_denied")

	w = s.do(http.MethodPost, fmt.Sprintf("/auth/games/%d/join", game.ID), bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, path, bobToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/auth/games/999/channel", bobToken, nil)
	assertKind(t, w, http.StatusForbidden, "access_denied")
}

func TestUpdateGame(t *testing.T) {
	s := newTestServer(t)
	ownerToken, _ := s.register("Owner")
	bobToken, _ := s.register("Bob")
	game := s.createGame(ownerToken, "public", 4)
	path := fmt.Sprintf("/auth/games/%d", game.ID)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, path+"/join", bobToken, nil).Code)

	body := gin.H{
		"title":       "Moved",
		"club_id":     s.club.ID,
		"court_id":    s.club.Courts[0].ID,
		"max_players": 2,
		"status":      "open",
	}

	w := s.do(http.MethodPut, path, bobToken, body)
	assertKind(t, w, http.StatusForbidden, "access_denied")

	w = s.do(http.MethodPut, path, ownerToken, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var view games.GameView
	decode(t, w, &view)
	assert.Equal(t, "Moved", view.Title)
	assert.Equal(t, models.StatusFull, view.Status)

	body["max_players"] = 1
	w = s.do(http.MethodPut, path, ownerToken, body)
	assertKind(t, w, http.StatusUnprocessableEntity, "validation_error")

	w = s.do(http.MethodPut, path, ownerToken, gin.H{"title": "no club"})
	assertKind(t, w, http.StatusUnprocessableEntity, "validation_error")
}

func TestPrivateGameInvitations(t *testing.T) {
	s := newTestServer(t)
	ownerToken, ownerID := s.register("Owner")
	carlaToken, carlaID := s.register("Carla")
	danToken, _ := s.register("Dan")

	game := s.createGame(ownerToken, "private", 4)
	gamePath := fmt.Sprintf("/auth/games/%d", game.ID)

	w := s.do(http.MethodGet, gamePath, carlaToken, nil)
	assertKind(t, w, http.StatusForbidden, "access_denied")

	w = s.do(http.MethodPost, gamePath+"/join", carlaToken, nil)
	assertKind(t, w, http.StatusForbidden, "access_denied")

	w = s.do(http.MethodPost, fmt.Sprintf("%s/invitations/%d", gamePath, ownerID), ownerToken, nil)
	assertKind(t, w, http.StatusBadRequest, "self_invite")

	w = s.do(http.MethodPost, fmt.Sprintf("%s/invitations/%d", gamePath, carlaID), danToken, nil)
	assertKind(t, w, http.StatusForbidden, "access_denied")

	w = s.do(http.MethodPost, fmt.Sprintf("%s/invitations/%d", gamePath, carlaID), ownerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var invited games.InviteResult
	decode(t, w, &invited)
	assert.False(t, invited.Resent)
	assert.Equal(t, models.InvitationPending, invited.Invitation.Status)

	w = s.do(http.MethodPost, fmt.Sprintf("%s/invitations/%d", gamePath, carlaID), ownerToken, nil)
	assertKind(t, w, http.StatusConflict, "duplicate_invitation")

	// Invited players can see the game before answering.
	w = s.do(http.MethodGet, gamePath, carlaToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/auth/invitations", carlaToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []models.GameInvitation
	decode(t, w, &pending)
	require.Len(t, pending, 1)
	require.NotNil(t, pending[0].Game)
	assert.Equal(t, game.ID, pending[0].Game.ID)

	respond := fmt.Sprintf("/auth/invitations/%d", invited.Invitation.ID)
	w = s.do(http.MethodPost, respond+"/accept", danToken, nil)
	assertKind(t, w, http.StatusForbidden, "forbidden")

	w = s.do(http.MethodPost, respond+"/accept", carlaToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, respond+"/reject", carlaToken, nil)
	assertKind(t, w, http.StatusNotFound, "not_found")

	w = s.do(http.MethodPost, gamePath+"/join", carlaToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, fmt.Sprintf("%s/invitations/%d", gamePath, carlaID), ownerToken, nil)
	assertKind(t, w, http.StatusConflict, "already_member")
}

func TestMalformedIDs(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("Ana")

	for _, path := range []string{
		"/auth/games/abc",
		"/auth/games/0",
		"/auth/games/-1/join",
		"/auth/invitations/x/accept",
		"/auth/friend-requests/1.5/accept",
		"/auth/players/abc/block",
	} {
		method := http.MethodPost
		if path == "/auth/games/abc" || path == "/auth/games/0" {
			method = http.MethodGet
		}
		w := s.do(method, path, token, nil)
		assertKind(t, w, http.StatusUnprocessableEntity, "validation_error")
	}

	w := s.do(http.MethodGet, "/auth/friend-requests?box=archived", token, nil)
	assertKind(t, w, http.StatusUnprocessableEntity, "validation_error")
}

func TestFriendsFlow(t *testing.T) {
	s := newTestServer(t)
	anaToken, anaID := s.register("Ana")
	bobToken, bobID := s.register("Bob")

	w := s.do(http.MethodPost, fmt.Sprintf("/auth/players/%d/friend-request", anaID), anaToken, nil)
	assertKind(t, w, http.StatusBadRequest, "self_request")

	w = s.do(http.MethodPost, "/auth/players/999/friend-request", anaToken, nil)
	assertKind(t, w, http.StatusNotFound, "not_found")

	w = s.do(http.MethodPost, fmt.Sprintf("/auth/players/%d/friend-request", bobID), anaToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var request models.Friendship
	decode(t, w, &request)
	assert.Equal(t, models.FriendshipPending, request.Status)

	w = s.do(http.MethodPost, fmt.Sprintf("/auth/players/%d/friend-request", anaID), bobToken, nil)
	assertKind(t, w, http.StatusConflict, "duplicate_pending")

	w = s.do(http.MethodGet, "/auth/friend-requests?box=sent", anaToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sent []models.Friendship
	decode(t, w, &sent)
	assert.Len(t, sent, 1)

	w = s.do(http.MethodGet, "/auth/friend-requests", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var received []models.Friendship
	decode(t, w, &received)
	require.Len(t, received, 1)
	assert.Equal(t, request.ID, received[0].ID)

	w = s.do(http.MethodPost, fmt.Sprintf("/auth/players/%d/favorite", bobID), anaToken, nil)
	assertKind(t, w, http.StatusBadRequest, "not_friends")

	accept := fmt.Sprintf("/auth/friend-requests/%d/accept", request.ID)
	w = s.do(http.MethodPost, accept, anaToken, nil)
	assertKind(t, w, http.StatusForbidden, "forbidden")
	w = s.do(http.MethodPost, accept, bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, fmt.Sprintf("/auth/players/%d/favorite", bobID), anaToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"is_favorite":true}`, w.Body.String())

	w = s.do(http.MethodGet, "/auth/friends", anaToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []friends.Friend
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, bobID, list[0].ID)
	assert.True(t, list[0].IsFavorite)

	w = s.do(http.MethodPost, fmt.Sprintf("/auth/players/%d/block", anaID), bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var blocked models.Friendship
	decode(t, w, &blocked)
	assert.Equal(t, models.FriendshipBlocked, blocked.Status)
	assert.Equal(t, bobID, blocked.PlayerID)

	w = s.do(http.MethodGet, "/auth/favorites", anaToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(http.MethodDelete, fmt.Sprintf("/auth/players/%d/favorite", bobID), anaToken, nil)
	assertKind(t, w, http.StatusNotFound, "not_found")

	w = s.do(http.MethodPost, fmt.Sprintf("/auth/players/%d/friend-request", bobID), anaToken, nil)
	assertKind(t, w, http.StatusBadRequest, "blocked")

	w = s.do(http.MethodDelete, fmt.Sprintf("/auth/players/%d/friendship", bobID), anaToken, nil)
	assertKind(t, w, http.StatusNotFound, "not_found")
}

func TestRemoveFriend(t *testing.T) {
	s := newTestServer(t)
	anaToken, _ := s.register("Ana")
	bobToken, bobID := s.register("Bob")

	w := s.do(http.MethodPost, fmt.Sprintf("/auth/players/%d/friend-request", bobID), anaToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var request models.Friendship
	decode(t, w, &request)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, fmt.Sprintf("/auth/friend-requests/%d/accept", request.ID), bobToken, nil).Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/auth/players/%d/friendship", bobID), anaToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/auth/friends", anaToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
