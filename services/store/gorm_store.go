package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	models "Courtside/models/postgres"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// GormStore is the PostgreSQL implementation of Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// translateError maps driver errors to the store sentinels.
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	}
	return err
}

func (s *GormStore) first(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return s.db.WithContext(ctx).Where(query, args...).First(dest).Error
}

// ---- Accounts ----

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return translateError(s.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error)
}

func (s *GormStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Player").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) CreatePlayer(ctx context.Context, player *models.Player) error {
	return translateError(s.db.WithContext(ctx).Create(player).Error)
}

func (s *GormStore) PlayerByID(ctx context.Context, id uint) (*models.Player, error) {
	var player models.Player
	if err := s.first(ctx, &player, "id = ?", id); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *GormStore) PlayerByUserID(ctx context.Context, userID uint) (*models.Player, error) {
	var player models.Player
	if err := s.first(ctx, &player, "user_id = ?", userID); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *GormStore) SavePlayer(ctx context.Context, player *models.Player) error {
	return translateError(s.db.WithContext(ctx).Omit(clause.Associations).Save(player).Error)
}

func (s *GormStore) Players(ctx context.Context, filter PlayerFilter) ([]models.Player, error) {
	query := s.db.WithContext(ctx).Model(&models.Player{})
	if name := strings.TrimSpace(filter.FullName); name != "" {
		query = query.Where("full_name ILIKE ?", "%"+likeEscaper.Replace(name)+"%")
	}
	if filter.Level != 0 {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.Side != "" {
		query = query.Where("side = ?", filter.Side)
	}
	var players []models.Player
	err := query.Order("full_name ASC, id ASC").Find(&players).Error
	return players, err
}

// likeEscaper keeps user input from acting as LIKE wildcards.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (s *GormStore) LockPlayers(ctx context.Context, ids ...uint) error {
	for _, id := range sortedUnique(ids) {
		var locked models.Player
		err := s.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", id).
			First(&locked).Error
		if errors.Is(err, ErrNotFound) {
			return err
		}
		if err != nil {
			return fmt.Errorf("lock player %d: %w", id, err)
		}
	}
	return nil
}

// sortedUnique orders lock targets so concurrent transactions never wait on
// each other in opposite orders.
func sortedUnique(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ---- Clubs ----

func (s *GormStore) CreateClub(ctx context.Context, club *models.Club) error {
	return translateError(s.db.WithContext(ctx).Create(club).Error)
}

func (s *GormStore) Clubs(ctx context.Context) ([]models.Club, error) {
	var clubs []models.Club
	err := s.db.WithContext(ctx).Order("name ASC, id ASC").Find(&clubs).Error
	return clubs, err
}

func (s *GormStore) ClubByID(ctx context.Context, id uint) (*models.Club, error) {
	var club models.Club
	err := s.db.WithContext(ctx).
		Preload("Courts", func(db *gorm.DB) *gorm.DB { return db.Order("courts.id ASC") }).
		Where("id = ?", id).
		First(&club).Error
	if err != nil {
		return nil, err
	}
	return &club, nil
}

func (s *GormStore) CourtsByClub(ctx context.Context, clubID uint) ([]models.Court, error) {
	var courts []models.Court
	err := s.db.WithContext(ctx).Where("club_id = ?", clubID).Order("id ASC").Find(&courts).Error
	return courts, err
}

func (s *GormStore) CourtByID(ctx context.Context, id uint) (*models.Court, error) {
	var court models.Court
	if err := s.first(ctx, &court, "id = ?", id); err != nil {
		return nil, err
	}
	return &court, nil
}

// ---- Games ----

func (s *GormStore) CreateGame(ctx context.Context, game *models.Game) error {
	return translateError(s.db.WithContext(ctx).Omit(clause.Associations).Create(game).Error)
}

func (s *GormStore) GameByID(ctx context.Context, id uint) (*models.Game, error) {
	var game models.Game
	err := s.db.WithContext(ctx).
		Preload("Owner").
		Preload("Club").
		Preload("Court").
		Where("id = ?", id).
		First(&game).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *GormStore) LockGame(ctx context.Context, id uint) (*models.Game, error) {
	var game models.Game
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&game).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *GormStore) SaveGame(ctx context.Context, game *models.Game) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(game).Error
}

func (s *GormStore) GamesByMember(ctx context.Context, playerID uint, status models.GameStatus) ([]models.Game, error) {
	var games []models.Game
	err := s.db.WithContext(ctx).
		Joins("JOIN game_players ON game_players.game_id = games.id").
		Where("game_players.player_id = ? AND games.status = ?", playerID, status).
		Preload("Club").
		Preload("Court").
		Order("games.data_time ASC, games.id ASC").
		Find(&games).Error
	return games, err
}

func (s *GormStore) PublicGames(ctx context.Context, excludeOwnerID uint, status models.GameStatus) ([]models.Game, error) {
	var games []models.Game
	err := s.db.WithContext(ctx).
		Where("type = ? AND status = ? AND owner_player_id <> ?", models.VisibilityPublic, status, excludeOwnerID).
		Preload("Owner").
		Preload("Club").
		Preload("Court").
		Order("data_time ASC, id ASC").
		Find(&games).Error
	return games, err
}

// ---- Roster ----

func (s *GormStore) AddMember(ctx context.Context, gameID, playerID uint, joinedAt time.Time) (bool, error) {
	row := models.GamePlayer{GameID: gameID, PlayerID: playerID, JoinedAt: joinedAt}
	res := s.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "game_id"}, {Name: "player_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) RemoveMember(ctx context.Context, gameID, playerID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("game_id = ? AND player_id = ?", gameID, playerID).
		Delete(&models.GamePlayer{})
	return res.RowsAffected > 0, res.Error
}

func (s *GormStore) IsMember(ctx context.Context, gameID, playerID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.GamePlayer{}).
		Where("game_id = ? AND player_id = ?", gameID, playerID).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) CountMembers(ctx context.Context, gameID uint) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.GamePlayer{}).
		Where("game_id = ?", gameID).
		Count(&count).Error
	return int(count), err
}

func (s *GormStore) Members(ctx context.Context, gameID uint) ([]models.Player, error) {
	var players []models.Player
	err := s.db.WithContext(ctx).
		Joins("JOIN game_players ON game_players.player_id = players.id").
		Where("game_players.game_id = ?", gameID).
		Order("game_players.joined_at ASC, players.id ASC").
		Find(&players).Error
	return players, err
}

// ---- Invitations ----

func (s *GormStore) InvitationByID(ctx context.Context, id uint) (*models.GameInvitation, error) {
	var invitation models.GameInvitation
	if err := s.first(ctx, &invitation, "id = ?", id); err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (s *GormStore) InvitationFor(ctx context.Context, gameID, playerID uint) (*models.GameInvitation, error) {
	var invitation models.GameInvitation
	if err := s.first(ctx, &invitation, "game_id = ? AND player_id = ?", gameID, playerID); err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (s *GormStore) CreateInvitation(ctx context.Context, invitation *models.GameInvitation) error {
	return translateError(s.db.WithContext(ctx).Omit(clause.Associations).Create(invitation).Error)
}

func (s *GormStore) SaveInvitation(ctx context.Context, invitation *models.GameInvitation) error {
	return translateError(s.db.WithContext(ctx).Omit(clause.Associations).Save(invitation).Error)
}

func (s *GormStore) DeleteInvitation(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.GameInvitation{}, id).Error
}

func (s *GormStore) PendingInvitations(ctx context.Context, playerID uint) ([]models.GameInvitation, error) {
	var invitations []models.GameInvitation
	err := s.db.WithContext(ctx).
		Preload("Game").
		Preload("Game.Owner").
		Preload("Inviter").
		Where("player_id = ? AND status = ?", playerID, models.InvitationPending).
		Order("created_at DESC").
		Find(&invitations).Error
	return invitations, err
}

// ---- Friendships ----

func (s *GormStore) FriendshipByID(ctx context.Context, id uint) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := s.first(ctx, &friendship, "id = ?", id); err != nil {
		return nil, err
	}
	return &friendship, nil
}

func (s *GormStore) FriendshipBetween(ctx context.Context, a, b uint) (*models.Friendship, error) {
	var friendship models.Friendship
	err := s.first(ctx, &friendship,
		"(player_id = ? AND friend_id = ?) OR (player_id = ? AND friend_id = ?)", a, b, b, a)
	if err != nil {
		return nil, err
	}
	return &friendship, nil
}

func (s *GormStore) CreateFriendship(ctx context.Context, friendship *models.Friendship) error {
	return translateError(s.db.WithContext(ctx).Omit(clause.Associations).Create(friendship).Error)
}

func (s *GormStore) SaveFriendship(ctx context.Context, friendship *models.Friendship) error {
	return translateError(s.db.WithContext(ctx).Omit(clause.Associations).Save(friendship).Error)
}

func (s *GormStore) DeleteFriendship(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Friendship{}, id).Error
}

func (s *GormStore) AcceptedFriendships(ctx context.Context, playerID uint) ([]models.Friendship, error) {
	var friendships []models.Friendship
	err := s.db.WithContext(ctx).
		Preload("Player").
		Preload("Friend").
		Where("(player_id = ? OR friend_id = ?) AND status = ?", playerID, playerID, models.FriendshipAccepted).
		Order("id ASC").
		Find(&friendships).Error
	return friendships, err
}

func (s *GormStore) PendingRequests(ctx context.Context, playerID uint, box RequestBox) ([]models.Friendship, error) {
	column := "friend_id"
	if box == BoxSent {
		column = "player_id"
	}
	var friendships []models.Friendship
	err := s.db.WithContext(ctx).
		Preload("Player").
		Preload("Friend").
		Where(column+" = ? AND status = ?", playerID, models.FriendshipPending).
		Order("created_at DESC").
		Find(&friendships).Error
	return friendships, err
}

// ---- Favorites ----

func (s *GormStore) IsFavorite(ctx context.Context, playerID, favoriteID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.PlayerFavorite{}).
		Where("player_id = ? AND favorite_player_id = ?", playerID, favoriteID).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) AddFavorite(ctx context.Context, playerID, favoriteID uint) error {
	favorite := models.PlayerFavorite{PlayerID: playerID, FavoritePlayerID: favoriteID}
	return translateError(s.db.WithContext(ctx).Omit(clause.Associations).Create(&favorite).Error)
}

func (s *GormStore) DeleteFavorite(ctx context.Context, playerID, favoriteID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("player_id = ? AND favorite_player_id = ?", playerID, favoriteID).
		Delete(&models.PlayerFavorite{})
	return res.RowsAffected > 0, res.Error
}

func (s *GormStore) FavoriteIDs(ctx context.Context, playerID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).
		Model(&models.PlayerFavorite{}).
		Where("player_id = ?", playerID).
		Order("favorite_player_id ASC").
		Pluck("favorite_player_id", &ids).Error
	return ids, err
}
