package games

import (
	"context"
	"errors"
	"fmt"
	"log"

	models "Courtside/models/postgres"
	"Courtside/services/errs"
	"Courtside/services/notify"
	"Courtside/services/store"
)

// MembershipResult is the state of a game right after a join or leave.
type MembershipResult struct {
	Game         models.Game `json:"game"`
	PlayersCount int         `json:"players_count"`
	// Joined is false when a join found the player already in the roster.
	Joined bool `json:"joined"`
}

// Join adds the player to the game's roster. The game row stays locked from
// the access checks to the status update, so two joins can never both take
// the last slot.
func (s *Service) Join(ctx context.Context, gameID, playerID uint) (*MembershipResult, error) {
	var outbox notify.Outbox
	var result MembershipResult

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		player, err := loadActor(ctx, tx, playerID)
		if err != nil {
			return err
		}
		game, err := loadGame(ctx, tx, gameID, true)
		if err != nil {
			return err
		}
		subject, err := loadSubject(ctx, tx, *game, playerID)
		if err != nil {
			return err
		}

		if !hasJoinAccess(subject) {
			return errs.New(errs.AccessDenied, "this game is private and you have no accepted invitation")
		}
		if game.Status == models.StatusFull {
			return errs.New(errs.Full, "this game has reached its maximum number of players")
		}
		if game.Status != models.StatusOpen {
			return errs.New(errs.NotOpen, "this game is not open for new players")
		}
		count, err := tx.CountMembers(ctx, game.ID)
		if err != nil {
			return fmt.Errorf("count members: %w", err)
		}
		if game.HasCapacity() && count >= game.MaxPlayers {
			return errs.New(errs.Full, "this game has reached its maximum number of players")
		}

		inserted, err := tx.AddMember(ctx, game.ID, player.ID, s.now())
		if errors.Is(err, store.ErrDuplicate) {
			return errs.New(errs.Full, "this game has reached its maximum number of players")
		}
		if err != nil {
			return fmt.Errorf("add member: %w", err)
		}
		if inserted {
			count++
		}

		if game.Status == models.StatusOpen && rosterStatus(*game, count) == models.StatusFull {
			game.Status = models.StatusFull
			if err := tx.SaveGame(ctx, game); err != nil {
				return fmt.Errorf("mark game %d full: %w", game.ID, err)
			}
		}

		if inserted {
			event, err := notify.NewPlayerJoined(*game, *player, count, s.now())
			if err != nil {
				return err
			}
			outbox.Add(event)
		}

		result = MembershipResult{Game: *game, PlayersCount: count, Joined: inserted}
		return nil
	})
	if err != nil {
		return nil, err
	}

	outbox.Flush(ctx, s.publisher)
	if result.Joined {
		log.Printf("[JOIN] Player %d joined game %d (%d/%d, %s)",
			playerID, gameID, result.PlayersCount, result.Game.MaxPlayers, result.Game.Status)
	}
	return &result, nil
}

// Leave removes the player from the game's roster. A full game reopens.
func (s *Service) Leave(ctx context.Context, gameID, playerID uint) (*MembershipResult, error) {
	var outbox notify.Outbox
	var result MembershipResult

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		player, err := loadActor(ctx, tx, playerID)
		if err != nil {
			return err
		}
		game, err := loadGame(ctx, tx, gameID, true)
		if err != nil {
			return err
		}
		if game.IsOwner(playerID) {
			return errs.New(errs.OwnerCannotLeave, "the owner cannot leave the game, cancel it instead")
		}

		removed, err := tx.RemoveMember(ctx, game.ID, player.ID)
		if err != nil {
			return fmt.Errorf("remove member: %w", err)
		}
		if !removed {
			return errs.New(errs.NotFound, "you are not a member of this game")
		}
		count, err := tx.CountMembers(ctx, game.ID)
		if err != nil {
			return fmt.Errorf("count members: %w", err)
		}

		if game.Status == models.StatusFull {
			game.Status = models.StatusOpen
			if err := tx.SaveGame(ctx, game); err != nil {
				return fmt.Errorf("reopen game %d: %w", game.ID, err)
			}
		}

		event, err := notify.NewPlayerLeft(*game, *player, count, s.now())
		if err != nil {
			return err
		}
		outbox.Add(event)

		result = MembershipResult{Game: *game, PlayersCount: count}
		return nil
	})
	if err != nil {
		return nil, err
	}

	outbox.Flush(ctx, s.publisher)
	log.Printf("[LEAVE] Player %d left game %d (%d/%d, %s)",
		playerID, gameID, result.PlayersCount, result.Game.MaxPlayers, result.Game.Status)
	return &result, nil
}
