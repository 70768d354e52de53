package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	models "Courtside/models/postgres"
)

// memoryData holds one copy of every table. Rows are stored without their
// association pointers; reads attach fresh copies the way gorm's Preload does.
type memoryData struct {
	seq         map[string]uint
	users       map[uint]models.User
	players     map[uint]models.Player
	clubs       map[uint]models.Club
	courts      map[uint]models.Court
	games       map[uint]models.Game
	members     map[uint]models.GamePlayer
	invitations map[uint]models.GameInvitation
	friendships map[uint]models.Friendship
	favorites   map[uint]models.PlayerFavorite
}

func newMemoryData() *memoryData {
	return &memoryData{
		seq:         map[string]uint{},
		users:       map[uint]models.User{},
		players:     map[uint]models.Player{},
		clubs:       map[uint]models.Club{},
		courts:      map[uint]models.Court{},
		games:       map[uint]models.Game{},
		members:     map[uint]models.GamePlayer{},
		invitations: map[uint]models.GameInvitation{},
		friendships: map[uint]models.Friendship{},
		favorites:   map[uint]models.PlayerFavorite{},
	}
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (d *memoryData) clone() *memoryData {
	return &memoryData{
		seq:         cloneMap(d.seq),
		users:       cloneMap(d.users),
		players:     cloneMap(d.players),
		clubs:       cloneMap(d.clubs),
		courts:      cloneMap(d.courts),
		games:       cloneMap(d.games),
		members:     cloneMap(d.members),
		invitations: cloneMap(d.invitations),
		friendships: cloneMap(d.friendships),
		favorites:   cloneMap(d.favorites),
	}
}

func (d *memoryData) nextID(table string) uint {
	d.seq[table]++
	return d.seq[table]
}

// MemoryStore keeps every table in process memory. A transaction holds the
// store mutex for its whole duration and restores a snapshot when it fails,
// so transactions are fully serialized.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memoryData
	inTx bool
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mu: &sync.Mutex{}, data: newMemoryData(), now: time.Now}
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	unlock := s.lock()
	defer unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := s.data.clone()
	tx := &MemoryStore{mu: s.mu, data: s.data, inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

func duplicate(constraint string) error {
	return fmt.Errorf("%w: %s", ErrDuplicate, constraint)
}

// ---- Accounts ----

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	defer s.lock()()
	for _, u := range s.data.users {
		if u.Email == user.Email {
			return duplicate("idx_users_email")
		}
	}
	user.ID = s.data.nextID("users")
	if user.MemberSince.IsZero() {
		user.MemberSince = s.now()
	}
	row := *user
	row.Player = nil
	s.data.users[row.ID] = row
	return nil
}

func (s *MemoryStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	defer s.lock()()
	for _, u := range s.data.users {
		if u.Email != email {
			continue
		}
		user := u
		for _, p := range s.data.players {
			if p.UserID != nil && *p.UserID == user.ID {
				player := p
				user.Player = &player
			}
		}
		return &user, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreatePlayer(ctx context.Context, player *models.Player) error {
	defer s.lock()()
	if player.UserID != nil {
		for _, p := range s.data.players {
			if p.UserID != nil && *p.UserID == *player.UserID {
				return duplicate("idx_players_user_id")
			}
		}
	}
	if player.Level == 0 {
		player.Level = 3
	}
	player.ID = s.data.nextID("players")
	player.CreatedAt = s.now()
	player.UpdatedAt = player.CreatedAt
	s.data.players[player.ID] = *player
	return nil
}

func (s *MemoryStore) PlayerByID(ctx context.Context, id uint) (*models.Player, error) {
	defer s.lock()()
	p, ok := s.data.players[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) PlayerByUserID(ctx context.Context, userID uint) (*models.Player, error) {
	defer s.lock()()
	for _, p := range s.data.players {
		if p.UserID != nil && *p.UserID == userID {
			player := p
			return &player, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) SavePlayer(ctx context.Context, player *models.Player) error {
	defer s.lock()()
	if _, ok := s.data.players[player.ID]; !ok {
		return ErrNotFound
	}
	player.UpdatedAt = s.now()
	s.data.players[player.ID] = *player
	return nil
}

func (s *MemoryStore) Players(ctx context.Context, filter PlayerFilter) ([]models.Player, error) {
	defer s.lock()()
	name := strings.ToLower(strings.TrimSpace(filter.FullName))
	var players []models.Player
	for _, p := range s.data.players {
		if name != "" && !strings.Contains(strings.ToLower(p.FullName), name) {
			continue
		}
		if filter.Level != 0 && p.Level != filter.Level {
			continue
		}
		if filter.Side != "" && p.Side != filter.Side {
			continue
		}
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].FullName != players[j].FullName {
			return players[i].FullName < players[j].FullName
		}
		return players[i].ID < players[j].ID
	})
	return players, nil
}

func (s *MemoryStore) LockPlayers(ctx context.Context, ids ...uint) error {
	defer s.lock()()
	for _, id := range sortedUnique(ids) {
		if _, ok := s.data.players[id]; !ok {
			return ErrNotFound
		}
	}
	return nil
}

// ---- Clubs ----

func (s *MemoryStore) CreateClub(ctx context.Context, club *models.Club) error {
	defer s.lock()()
	club.ID = s.data.nextID("clubs")
	for i := range club.Courts {
		club.Courts[i].ID = s.data.nextID("courts")
		club.Courts[i].ClubID = club.ID
		s.data.courts[club.Courts[i].ID] = club.Courts[i]
	}
	row := *club
	row.Courts = nil
	s.data.clubs[row.ID] = row
	return nil
}

func (s *MemoryStore) Clubs(ctx context.Context) ([]models.Club, error) {
	defer s.lock()()
	clubs := make([]models.Club, 0, len(s.data.clubs))
	for _, c := range s.data.clubs {
		clubs = append(clubs, c)
	}
	sort.Slice(clubs, func(i, j int) bool {
		if clubs[i].Name != clubs[j].Name {
			return clubs[i].Name < clubs[j].Name
		}
		return clubs[i].ID < clubs[j].ID
	})
	return clubs, nil
}

func (s *MemoryStore) ClubByID(ctx context.Context, id uint) (*models.Club, error) {
	defer s.lock()()
	c, ok := s.data.clubs[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.Courts = s.courtsOf(id)
	return &c, nil
}

func (s *MemoryStore) courtsOf(clubID uint) []models.Court {
	var courts []models.Court
	for _, c := range s.data.courts {
		if c.ClubID == clubID {
			courts = append(courts, c)
		}
	}
	sort.Slice(courts, func(i, j int) bool { return courts[i].ID < courts[j].ID })
	return courts
}

func (s *MemoryStore) CourtsByClub(ctx context.Context, clubID uint) ([]models.Court, error) {
	defer s.lock()()
	return s.courtsOf(clubID), nil
}

func (s *MemoryStore) CourtByID(ctx context.Context, id uint) (*models.Court, error) {
	defer s.lock()()
	c, ok := s.data.courts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// ---- Games ----

func stripGame(g models.Game) models.Game {
	g.Owner, g.Club, g.Court = nil, nil, nil
	return g
}

func (s *MemoryStore) withGameRefs(g models.Game, owner bool) models.Game {
	if owner {
		if p, ok := s.data.players[g.OwnerPlayerID]; ok {
			g.Owner = &p
		}
	}
	if c, ok := s.data.clubs[g.ClubID]; ok {
		g.Club = &c
	}
	if c, ok := s.data.courts[g.CourtID]; ok {
		g.Court = &c
	}
	return g
}

func (s *MemoryStore) CreateGame(ctx context.Context, game *models.Game) error {
	defer s.lock()()
	game.ID = s.data.nextID("games")
	game.CreatedAt = s.now()
	game.UpdatedAt = game.CreatedAt
	s.data.games[game.ID] = stripGame(*game)
	return nil
}

func (s *MemoryStore) GameByID(ctx context.Context, id uint) (*models.Game, error) {
	defer s.lock()()
	g, ok := s.data.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	g = s.withGameRefs(g, true)
	return &g, nil
}

func (s *MemoryStore) LockGame(ctx context.Context, id uint) (*models.Game, error) {
	defer s.lock()()
	g, ok := s.data.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

func (s *MemoryStore) SaveGame(ctx context.Context, game *models.Game) error {
	defer s.lock()()
	if _, ok := s.data.games[game.ID]; !ok {
		return ErrNotFound
	}
	game.UpdatedAt = s.now()
	s.data.games[game.ID] = stripGame(*game)
	return nil
}

func sortGames(games []models.Game) {
	sort.Slice(games, func(i, j int) bool {
		a, b := games[i].DataTime, games[j].DataTime
		if a != nil && b != nil && !a.Equal(*b) {
			return a.Before(*b)
		}
		if (a == nil) != (b == nil) {
			return a != nil
		}
		return games[i].ID < games[j].ID
	})
}

func (s *MemoryStore) GamesByMember(ctx context.Context, playerID uint, status models.GameStatus) ([]models.Game, error) {
	defer s.lock()()
	var games []models.Game
	for _, m := range s.data.members {
		if m.PlayerID != playerID {
			continue
		}
		if g, ok := s.data.games[m.GameID]; ok && g.Status == status {
			games = append(games, s.withGameRefs(g, false))
		}
	}
	sortGames(games)
	return games, nil
}

func (s *MemoryStore) PublicGames(ctx context.Context, excludeOwnerID uint, status models.GameStatus) ([]models.Game, error) {
	defer s.lock()()
	var games []models.Game
	for _, g := range s.data.games {
		if g.Type == models.VisibilityPublic && g.Status == status && g.OwnerPlayerID != excludeOwnerID {
			games = append(games, s.withGameRefs(g, true))
		}
	}
	sortGames(games)
	return games, nil
}

// ---- Roster ----

func (s *MemoryStore) findMember(gameID, playerID uint) (uint, bool) {
	for id, m := range s.data.members {
		if m.GameID == gameID && m.PlayerID == playerID {
			return id, true
		}
	}
	return 0, false
}

func (s *MemoryStore) AddMember(ctx context.Context, gameID, playerID uint, joinedAt time.Time) (bool, error) {
	defer s.lock()()
	if _, ok := s.findMember(gameID, playerID); ok {
		return false, nil
	}
	now := s.now()
	id := s.data.nextID("game_players")
	s.data.members[id] = models.GamePlayer{
		ID:        id,
		GameID:    gameID,
		PlayerID:  playerID,
		JoinedAt:  joinedAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return true, nil
}

func (s *MemoryStore) RemoveMember(ctx context.Context, gameID, playerID uint) (bool, error) {
	defer s.lock()()
	id, ok := s.findMember(gameID, playerID)
	if ok {
		delete(s.data.members, id)
	}
	return ok, nil
}

func (s *MemoryStore) IsMember(ctx context.Context, gameID, playerID uint) (bool, error) {
	defer s.lock()()
	_, ok := s.findMember(gameID, playerID)
	return ok, nil
}

func (s *MemoryStore) CountMembers(ctx context.Context, gameID uint) (int, error) {
	defer s.lock()()
	count := 0
	for _, m := range s.data.members {
		if m.GameID == gameID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) Members(ctx context.Context, gameID uint) ([]models.Player, error) {
	defer s.lock()()
	var rows []models.GamePlayer
	for _, m := range s.data.members {
		if m.GameID == gameID {
			rows = append(rows, m)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].JoinedAt.Equal(rows[j].JoinedAt) {
			return rows[i].JoinedAt.Before(rows[j].JoinedAt)
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
	players := make([]models.Player, 0, len(rows))
	for _, m := range rows {
		if p, ok := s.data.players[m.PlayerID]; ok {
			players = append(players, p)
		}
	}
	return players, nil
}

// ---- Invitations ----

func stripInvitation(i models.GameInvitation) models.GameInvitation {
	i.Game, i.Player, i.Inviter = nil, nil, nil
	return i
}

func (s *MemoryStore) InvitationByID(ctx context.Context, id uint) (*models.GameInvitation, error) {
	defer s.lock()()
	i, ok := s.data.invitations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &i, nil
}

func (s *MemoryStore) InvitationFor(ctx context.Context, gameID, playerID uint) (*models.GameInvitation, error) {
	defer s.lock()()
	for _, i := range s.data.invitations {
		if i.GameID == gameID && i.PlayerID == playerID {
			invitation := i
			return &invitation, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateInvitation(ctx context.Context, invitation *models.GameInvitation) error {
	defer s.lock()()
	for _, i := range s.data.invitations {
		if i.GameID == invitation.GameID && i.PlayerID == invitation.PlayerID {
			return duplicate("idx_game_invitations_game_player")
		}
	}
	if invitation.Status == "" {
		invitation.Status = models.InvitationPending
	}
	invitation.ID = s.data.nextID("game_invitations")
	invitation.CreatedAt = s.now()
	invitation.UpdatedAt = invitation.CreatedAt
	s.data.invitations[invitation.ID] = stripInvitation(*invitation)
	return nil
}

func (s *MemoryStore) SaveInvitation(ctx context.Context, invitation *models.GameInvitation) error {
	defer s.lock()()
	if _, ok := s.data.invitations[invitation.ID]; !ok {
		return ErrNotFound
	}
	invitation.UpdatedAt = s.now()
	s.data.invitations[invitation.ID] = stripInvitation(*invitation)
	return nil
}

func (s *MemoryStore) DeleteInvitation(ctx context.Context, id uint) error {
	defer s.lock()()
	delete(s.data.invitations, id)
	return nil
}

func (s *MemoryStore) PendingInvitations(ctx context.Context, playerID uint) ([]models.GameInvitation, error) {
	defer s.lock()()
	var invitations []models.GameInvitation
	for _, i := range s.data.invitations {
		if i.PlayerID != playerID || i.Status != models.InvitationPending {
			continue
		}
		if g, ok := s.data.games[i.GameID]; ok {
			g = s.withGameRefs(g, true)
			i.Game = &g
		}
		if p, ok := s.data.players[i.InvitedBy]; ok {
			i.Inviter = &p
		}
		invitations = append(invitations, i)
	}
	sort.Slice(invitations, func(a, b int) bool {
		if !invitations[a].CreatedAt.Equal(invitations[b].CreatedAt) {
			return invitations[a].CreatedAt.After(invitations[b].CreatedAt)
		}
		return invitations[a].ID > invitations[b].ID
	})
	return invitations, nil
}

// ---- Friendships ----

func stripFriendship(f models.Friendship) models.Friendship {
	f.Player, f.Friend = nil, nil
	return f
}

func (s *MemoryStore) withFriendshipRefs(f models.Friendship) models.Friendship {
	if p, ok := s.data.players[f.PlayerID]; ok {
		f.Player = &p
	}
	if p, ok := s.data.players[f.FriendID]; ok {
		f.Friend = &p
	}
	return f
}

func samePair(f models.Friendship, a, b uint) bool {
	return (f.PlayerID == a && f.FriendID == b) || (f.PlayerID == b && f.FriendID == a)
}

func (s *MemoryStore) FriendshipByID(ctx context.Context, id uint) (*models.Friendship, error) {
	defer s.lock()()
	f, ok := s.data.friendships[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (s *MemoryStore) FriendshipBetween(ctx context.Context, a, b uint) (*models.Friendship, error) {
	defer s.lock()()
	for _, f := range s.data.friendships {
		if samePair(f, a, b) {
			friendship := f
			return &friendship, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateFriendship(ctx context.Context, friendship *models.Friendship) error {
	defer s.lock()()
	if err := friendship.BeforeSave(nil); err != nil {
		return err
	}
	for _, f := range s.data.friendships {
		if samePair(f, friendship.PlayerID, friendship.FriendID) {
			return duplicate("idx_friends_pair")
		}
	}
	if friendship.Status == "" {
		friendship.Status = models.FriendshipPending
	}
	friendship.ID = s.data.nextID("friends")
	friendship.CreatedAt = s.now()
	friendship.UpdatedAt = friendship.CreatedAt
	s.data.friendships[friendship.ID] = stripFriendship(*friendship)
	return nil
}

func (s *MemoryStore) SaveFriendship(ctx context.Context, friendship *models.Friendship) error {
	defer s.lock()()
	if err := friendship.BeforeSave(nil); err != nil {
		return err
	}
	if _, ok := s.data.friendships[friendship.ID]; !ok {
		return ErrNotFound
	}
	for id, f := range s.data.friendships {
		if id != friendship.ID && samePair(f, friendship.PlayerID, friendship.FriendID) {
			return duplicate("idx_friends_pair")
		}
	}
	friendship.UpdatedAt = s.now()
	s.data.friendships[friendship.ID] = stripFriendship(*friendship)
	return nil
}

func (s *MemoryStore) DeleteFriendship(ctx context.Context, id uint) error {
	defer s.lock()()
	delete(s.data.friendships, id)
	return nil
}

func (s *MemoryStore) AcceptedFriendships(ctx context.Context, playerID uint) ([]models.Friendship, error) {
	defer s.lock()()
	var friendships []models.Friendship
	for _, f := range s.data.friendships {
		if (f.PlayerID == playerID || f.FriendID == playerID) && f.Status == models.FriendshipAccepted {
			friendships = append(friendships, s.withFriendshipRefs(f))
		}
	}
	sort.Slice(friendships, func(i, j int) bool { return friendships[i].ID < friendships[j].ID })
	return friendships, nil
}

func (s *MemoryStore) PendingRequests(ctx context.Context, playerID uint, box RequestBox) ([]models.Friendship, error) {
	defer s.lock()()
	var friendships []models.Friendship
	for _, f := range s.data.friendships {
		if f.Status != models.FriendshipPending {
			continue
		}
		side := f.FriendID
		if box == BoxSent {
			side = f.PlayerID
		}
		if side == playerID {
			friendships = append(friendships, s.withFriendshipRefs(f))
		}
	}
	sort.Slice(friendships, func(i, j int) bool { return friendships[i].ID > friendships[j].ID })
	return friendships, nil
}

// ---- Favorites ----

func (s *MemoryStore) findFavorite(playerID, favoriteID uint) (uint, bool) {
	for id, f := range s.data.favorites {
		if f.PlayerID == playerID && f.FavoritePlayerID == favoriteID {
			return id, true
		}
	}
	return 0, false
}

func (s *MemoryStore) IsFavorite(ctx context.Context, playerID, favoriteID uint) (bool, error) {
	defer s.lock()()
	_, ok := s.findFavorite(playerID, favoriteID)
	return ok, nil
}

func (s *MemoryStore) AddFavorite(ctx context.Context, playerID, favoriteID uint) error {
	defer s.lock()()
	if _, ok := s.findFavorite(playerID, favoriteID); ok {
		return duplicate("idx_player_favorites_pair")
	}
	now := s.now()
	id := s.data.nextID("player_favorites")
	s.data.favorites[id] = models.PlayerFavorite{
		ID:               id,
		PlayerID:         playerID,
		FavoritePlayerID: favoriteID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return nil
}

func (s *MemoryStore) DeleteFavorite(ctx context.Context, playerID, favoriteID uint) (bool, error) {
	defer s.lock()()
	id, ok := s.findFavorite(playerID, favoriteID)
	if ok {
		delete(s.data.favorites, id)
	}
	return ok, nil
}

func (s *MemoryStore) FavoriteIDs(ctx context.Context, playerID uint) ([]uint, error) {
	defer s.lock()()
	var ids []uint
	for _, f := range s.data.favorites {
		if f.PlayerID == playerID {
			ids = append(ids, f.FavoritePlayerID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
