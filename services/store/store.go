// Package store persists players, games, rosters, invitations, friendships
// and favorites. Services talk to the Store interface so the same workflow
// runs against PostgreSQL (GormStore) and the in-memory MemoryStore.
package store

import (
	"context"
	"errors"
	"time"

	models "Courtside/models/postgres"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = gorm.ErrRecordNotFound
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("store: duplicate row")
)

// RequestBox selects the side of pending friend requests to list.
type RequestBox string

const (
	BoxReceived RequestBox = "received"
	BoxSent     RequestBox = "sent"
)

// PlayerFilter narrows a player search. Zero fields match everything and
// FullName matches any part of the name, ignoring case.
type PlayerFilter struct {
	FullName string
	Level    int
	Side     models.PlayerSide
}

type Store interface {
	// Transaction runs fn against a transactional view of the store. Any
	// error returned by fn rolls every write back.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	// Accounts
	CreateUser(ctx context.Context, user *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	CreatePlayer(ctx context.Context, player *models.Player) error
	PlayerByID(ctx context.Context, id uint) (*models.Player, error)
	PlayerByUserID(ctx context.Context, userID uint) (*models.Player, error)
	SavePlayer(ctx context.Context, player *models.Player) error
	// Players lists the profiles matching filter ordered by name.
	Players(ctx context.Context, filter PlayerFilter) ([]models.Player, error)
	// LockPlayers locks the given player rows until the transaction ends,
	// always in ascending id order.
	LockPlayers(ctx context.Context, ids ...uint) error

	// Clubs
	CreateClub(ctx context.Context, club *models.Club) error
	Clubs(ctx context.Context) ([]models.Club, error)
	// ClubByID loads a club with its courts.
	ClubByID(ctx context.Context, id uint) (*models.Club, error)
	CourtByID(ctx context.Context, id uint) (*models.Court, error)
	// CourtsByClub lists the courts of a club. An unknown club has none.
	CourtsByClub(ctx context.Context, clubID uint) ([]models.Court, error)

	// Games
	CreateGame(ctx context.Context, game *models.Game) error
	GameByID(ctx context.Context, id uint) (*models.Game, error)
	// LockGame loads a game and locks its row until the transaction ends.
	LockGame(ctx context.Context, id uint) (*models.Game, error)
	SaveGame(ctx context.Context, game *models.Game) error
	GamesByMember(ctx context.Context, playerID uint, status models.GameStatus) ([]models.Game, error)
	PublicGames(ctx context.Context, excludeOwnerID uint, status models.GameStatus) ([]models.Game, error)

	// Roster
	// AddMember inserts a roster row unless it already exists and reports
	// whether a row was inserted.
	AddMember(ctx context.Context, gameID, playerID uint, joinedAt time.Time) (bool, error)
	RemoveMember(ctx context.Context, gameID, playerID uint) (bool, error)
	IsMember(ctx context.Context, gameID, playerID uint) (bool, error)
	CountMembers(ctx context.Context, gameID uint) (int, error)
	Members(ctx context.Context, gameID uint) ([]models.Player, error)

	// Invitations
	InvitationByID(ctx context.Context, id uint) (*models.GameInvitation, error)
	InvitationFor(ctx context.Context, gameID, playerID uint) (*models.GameInvitation, error)
	CreateInvitation(ctx context.Context, invitation *models.GameInvitation) error
	SaveInvitation(ctx context.Context, invitation *models.GameInvitation) error
	DeleteInvitation(ctx context.Context, id uint) error
	// PendingInvitations lists the pending invitations addressed to a
	// player with the game, its owner and the inviter loaded.
	PendingInvitations(ctx context.Context, playerID uint) ([]models.GameInvitation, error)

	// Friendships
	FriendshipByID(ctx context.Context, id uint) (*models.Friendship, error)
	// FriendshipBetween finds the relation of a pair in either direction.
	FriendshipBetween(ctx context.Context, a, b uint) (*models.Friendship, error)
	CreateFriendship(ctx context.Context, friendship *models.Friendship) error
	SaveFriendship(ctx context.Context, friendship *models.Friendship) error
	DeleteFriendship(ctx context.Context, id uint) error
	// AcceptedFriendships lists accepted relations involving the player
	// with both sides loaded.
	AcceptedFriendships(ctx context.Context, playerID uint) ([]models.Friendship, error)
	PendingRequests(ctx context.Context, playerID uint, box RequestBox) ([]models.Friendship, error)

	// Favorites
	IsFavorite(ctx context.Context, playerID, favoriteID uint) (bool, error)
	AddFavorite(ctx context.Context, playerID, favoriteID uint) error
	DeleteFavorite(ctx context.Context, playerID, favoriteID uint) (bool, error)
	FavoriteIDs(ctx context.Context, playerID uint) ([]uint, error)
}
