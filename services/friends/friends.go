// Package friends manages the social graph between players: friend
// requests, blocks and favorites.
//
// A relation is one row per unordered pair, stored in the direction of the
// last player that requested or blocked. Every mutation locks both player
// rows (lowest id first) before reading the pair.
package friends

import (
	"context"
	"errors"
	"fmt"
	"log"

	models "Courtside/models/postgres"
	"Courtside/services/errs"
	"Courtside/services/store"
)

type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Friend is an accepted friend as seen by one player.
type Friend struct {
	models.PlayerSummary
	IsFavorite bool `json:"is_favorite"`
}

func loadActor(ctx context.Context, tx store.Store, playerID uint) error {
	_, err := tx.PlayerByID(ctx, playerID)
	if errors.Is(err, store.ErrNotFound) {
		return errs.New(errs.NoLinkedProfile, "user has no linked player profile")
	}
	if err != nil {
		return fmt.Errorf("load player %d: %w", playerID, err)
	}
	return nil
}

func requireOther(ctx context.Context, tx store.Store, playerID uint) error {
	_, err := tx.PlayerByID(ctx, playerID)
	if errors.Is(err, store.ErrNotFound) {
		return errs.New(errs.NotFound, "player not found")
	}
	if err != nil {
		return fmt.Errorf("load player %d: %w", playerID, err)
	}
	return nil
}

// between returns the relation of a pair, nil when there is none.
func between(ctx context.Context, tx store.Store, a, b uint) (*models.Friendship, error) {
	f, err := tx.FriendshipBetween(ctx, a, b)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load friendship %d-%d: %w", a, b, err)
	}
	return f, nil
}

func dropFavorites(ctx context.Context, tx store.Store, a, b uint) error {
	if _, err := tx.DeleteFavorite(ctx, a, b); err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if _, err := tx.DeleteFavorite(ctx, b, a); err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

// SendRequest asks toID to become a friend of fromID. A previously rejected
// relation, in either direction, is turned into a fresh request from fromID.
func (s *Service) SendRequest(ctx context.Context, fromID, toID uint) (*models.Friendship, error) {
	var result *models.Friendship
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if err := loadActor(ctx, tx, fromID); err != nil {
			return err
		}
		if fromID == toID {
			return errs.New(errs.SelfRequest, "you cannot send a friend request to yourself")
		}
		if err := requireOther(ctx, tx, toID); err != nil {
			return err
		}
		if err := tx.LockPlayers(ctx, fromID, toID); err != nil {
			return fmt.Errorf("lock players: %w", err)
		}

		existing, err := between(ctx, tx, fromID, toID)
		if err != nil {
			return err
		}
		if existing != nil {
			switch existing.Status {
			case models.FriendshipBlocked:
				return errs.New(errs.Blocked, "friend requests between these players are blocked")
			case models.FriendshipAccepted:
				return errs.New(errs.AlreadyFriends, "you are already friends")
			case models.FriendshipPending:
				return errs.New(errs.DuplicatePending, "there is already a pending request between you")
			}
			existing.PlayerID = fromID
			existing.FriendID = toID
			existing.Status = models.FriendshipPending
			if err := tx.SaveFriendship(ctx, existing); err != nil {
				return fmt.Errorf("resend friend request %d: %w", existing.ID, err)
			}
			result = existing
			return nil
		}

		request := models.Friendship{PlayerID: fromID, FriendID: toID, Status: models.FriendshipPending}
		err = tx.CreateFriendship(ctx, &request)
		if errors.Is(err, store.ErrDuplicate) {
			return errs.New(errs.DuplicatePending, "there is already a pending request between you")
		}
		if err != nil {
			return fmt.Errorf("create friend request: %w", err)
		}
		result = &request
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[FRIENDS] Player %d sent a friend request to player %d", fromID, toID)
	return result, nil
}

func (s *Service) answer(ctx context.Context, requestID, actorID uint, status models.FriendshipStatus) (*models.Friendship, error) {
	var result *models.Friendship
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if err := loadActor(ctx, tx, actorID); err != nil {
			return err
		}
		request, err := tx.FriendshipByID(ctx, requestID)
		if errors.Is(err, store.ErrNotFound) {
			return errs.New(errs.NotFound, "friend request not found")
		}
		if err != nil {
			return fmt.Errorf("load friend request %d: %w", requestID, err)
		}
		if err := tx.LockPlayers(ctx, request.PlayerID, request.FriendID); err != nil {
			return fmt.Errorf("lock players: %w", err)
		}
		// Re-read under the locks
		request, err = tx.FriendshipByID(ctx, requestID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && request.Status != models.FriendshipPending) {
			return errs.New(errs.NotFound, "friend request not found")
		}
		if err != nil {
			return fmt.Errorf("load friend request %d: %w", requestID, err)
		}
		if request.FriendID != actorID {
			return errs.New(errs.Forbidden, "only the recipient can answer this friend request")
		}

		request.Status = status
		if err := tx.SaveFriendship(ctx, request); err != nil {
			return fmt.Errorf("save friend request %d: %w", request.ID, err)
		}
		result = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Accept makes the pending request requestID an accepted friendship. Only
// the recipient may accept.
func (s *Service) Accept(ctx context.Context, requestID, actorID uint) (*models.Friendship, error) {
	return s.answer(ctx, requestID, actorID, models.FriendshipAccepted)
}

func (s *Service) Reject(ctx context.Context, requestID, actorID uint) (*models.Friendship, error) {
	return s.answer(ctx, requestID, actorID, models.FriendshipRejected)
}

// Remove ends an accepted friendship together with the favorites on both
// sides.
func (s *Service) Remove(ctx context.Context, actorID, otherID uint) error {
	return s.store.Transaction(ctx, func(tx store.Store) error {
		if err := loadActor(ctx, tx, actorID); err != nil {
			return err
		}
		err := tx.LockPlayers(ctx, actorID, otherID)
		if errors.Is(err, store.ErrNotFound) {
			return errs.New(errs.NotFound, "friendship not found")
		}
		if err != nil {
			return fmt.Errorf("lock players: %w", err)
		}

		friendship, err := between(ctx, tx, actorID, otherID)
		if err != nil {
			return err
		}
		if friendship == nil || friendship.Status != models.FriendshipAccepted {
			return errs.New(errs.NotFound, "friendship not found")
		}
		if err := dropFavorites(ctx, tx, actorID, otherID); err != nil {
			return err
		}
		if err := tx.DeleteFriendship(ctx, friendship.ID); err != nil {
			return fmt.Errorf("delete friendship %d: %w", friendship.ID, err)
		}
		return nil
	})
}

// Block leaves a single blocked relation stored from actorID to otherID,
// whatever the pair had before, and drops favorites on both sides.
// Invitations between the two are left untouched.
func (s *Service) Block(ctx context.Context, actorID, otherID uint) (*models.Friendship, error) {
	var result *models.Friendship
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if err := loadActor(ctx, tx, actorID); err != nil {
			return err
		}
		if actorID == otherID {
			return errs.New(errs.SelfBlock, "you cannot block yourself")
		}
		if err := requireOther(ctx, tx, otherID); err != nil {
			return err
		}
		if err := tx.LockPlayers(ctx, actorID, otherID); err != nil {
			return fmt.Errorf("lock players: %w", err)
		}
		if err := dropFavorites(ctx, tx, actorID, otherID); err != nil {
			return err
		}

		existing, err := between(ctx, tx, actorID, otherID)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.PlayerID = actorID
			existing.FriendID = otherID
			existing.Status = models.FriendshipBlocked
			if err := tx.SaveFriendship(ctx, existing); err != nil {
				return fmt.Errorf("block friendship %d: %w", existing.ID, err)
			}
			result = existing
			return nil
		}

		block := models.Friendship{PlayerID: actorID, FriendID: otherID, Status: models.FriendshipBlocked}
		if err := tx.CreateFriendship(ctx, &block); err != nil {
			return fmt.Errorf("create block: %w", err)
		}
		result = &block
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[FRIENDS] Player %d blocked player %d", actorID, otherID)
	return result, nil
}

// ToggleFavorite flips the favorite marker actorID keeps on otherID and
// returns the new state. The two must be friends.
func (s *Service) ToggleFavorite(ctx context.Context, actorID, otherID uint) (bool, error) {
	var isFavorite bool
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if err := loadActor(ctx, tx, actorID); err != nil {
			return err
		}
		notFriends := errs.New(errs.NotFriends, "you can only favorite your friends")
		err := tx.LockPlayers(ctx, actorID, otherID)
		if errors.Is(err, store.ErrNotFound) {
			return notFriends
		}
		if err != nil {
			return fmt.Errorf("lock players: %w", err)
		}

		friendship, err := between(ctx, tx, actorID, otherID)
		if err != nil {
			return err
		}
		if friendship == nil || friendship.Status != models.FriendshipAccepted {
			return notFriends
		}

		favorite, err := tx.IsFavorite(ctx, actorID, otherID)
		if err != nil {
			return fmt.Errorf("load favorite: %w", err)
		}
		if favorite {
			if _, err := tx.DeleteFavorite(ctx, actorID, otherID); err != nil {
				return fmt.Errorf("delete favorite: %w", err)
			}
		} else if err := tx.AddFavorite(ctx, actorID, otherID); err != nil {
			return fmt.Errorf("add favorite: %w", err)
		}
		isFavorite = !favorite
		return nil
	})
	return isFavorite, err
}

// RemoveFavorite deletes the favorite marker actorID keeps on otherID.
func (s *Service) RemoveFavorite(ctx context.Context, actorID, otherID uint) error {
	if err := loadActor(ctx, s.store, actorID); err != nil {
		return err
	}
	removed, err := s.store.DeleteFavorite(ctx, actorID, otherID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if !removed {
		return errs.New(errs.NotFound, "favorite not found")
	}
	return nil
}

// Friends lists the accepted friends of a player, flagging favorites.
func (s *Service) Friends(ctx context.Context, playerID uint) ([]Friend, error) {
	if err := loadActor(ctx, s.store, playerID); err != nil {
		return nil, err
	}
	friendships, err := s.store.AcceptedFriendships(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("list friends of player %d: %w", playerID, err)
	}
	favoriteIDs, err := s.store.FavoriteIDs(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("list favorites of player %d: %w", playerID, err)
	}
	favorites := make(map[uint]bool, len(favoriteIDs))
	for _, id := range favoriteIDs {
		favorites[id] = true
	}

	friends := make([]Friend, 0, len(friendships))
	for _, f := range friendships {
		other := f.Friend
		if f.Other(playerID) == f.PlayerID {
			other = f.Player
		}
		if other == nil {
			continue
		}
		friends = append(friends, Friend{PlayerSummary: other.Summary(), IsFavorite: favorites[other.ID]})
	}
	return friends, nil
}

// Requests lists the pending requests a player received or sent.
func (s *Service) Requests(ctx context.Context, playerID uint, box store.RequestBox) ([]models.Friendship, error) {
	if err := loadActor(ctx, s.store, playerID); err != nil {
		return nil, err
	}
	if box != store.BoxReceived && box != store.BoxSent {
		return nil, errs.New(errs.Validation, "box must be received or sent")
	}
	requests, err := s.store.PendingRequests(ctx, playerID, box)
	if err != nil {
		return nil, fmt.Errorf("list %s requests of player %d: %w", box, playerID, err)
	}
	return requests, nil
}

// Favorites lists the players marked as favorite by playerID.
func (s *Service) Favorites(ctx context.Context, playerID uint) ([]models.PlayerSummary, error) {
	if err := loadActor(ctx, s.store, playerID); err != nil {
		return nil, err
	}
	ids, err := s.store.FavoriteIDs(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("list favorites of player %d: %w", playerID, err)
	}
	favorites := make([]models.PlayerSummary, 0, len(ids))
	for _, id := range ids {
		p, err := s.store.PlayerByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load player %d: %w", id, err)
		}
		favorites = append(favorites, p.Summary())
	}
	return favorites, nil
}
