package games

import (
	"context"
	"errors"
	"fmt"
	"log"

	models "Courtside/models/postgres"
	"Courtside/services/errs"
	"Courtside/services/store"
)

type Decision string

const (
	Accept Decision = "accept"
	Reject Decision = "reject"
)

type InviteResult struct {
	Invitation models.GameInvitation `json:"invitation"`
	// Resent is true when a rejected invitation was turned back to pending.
	Resent bool `json:"resent"`
}

// Invite offers targetID a place in a private game owned by inviterID.
// There is at most one invitation per game and player: a rejected one is
// reset to pending, a pending or accepted one is a duplicate.
func (s *Service) Invite(ctx context.Context, gameID, inviterID, targetID uint) (*InviteResult, error) {
	var result InviteResult

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := loadActor(ctx, tx, inviterID); err != nil {
			return err
		}
		game, err := loadGame(ctx, tx, gameID, true)
		if err != nil {
			return err
		}
		if !CanInvite(Subject{Game: *game, PlayerID: inviterID}) {
			return errs.New(errs.AccessDenied, "only the owner of a private game can invite players")
		}
		if targetID == inviterID {
			return errs.New(errs.SelfInvite, "you cannot invite yourself")
		}
		if _, err := tx.PlayerByID(ctx, targetID); errors.Is(err, store.ErrNotFound) {
			return notFound("player")
		} else if err != nil {
			return fmt.Errorf("load player %d: %w", targetID, err)
		}

		member, err := tx.IsMember(ctx, game.ID, targetID)
		if err != nil {
			return fmt.Errorf("check membership: %w", err)
		}
		if member {
			return errs.New(errs.AlreadyMember, "the player is already in this game")
		}
		count, err := tx.CountMembers(ctx, game.ID)
		if err != nil {
			return fmt.Errorf("count members: %w", err)
		}
		if game.HasCapacity() && count >= game.MaxPlayers {
			return errs.New(errs.Full, "this game has reached its maximum number of players")
		}

		existing, err := tx.InvitationFor(ctx, game.ID, targetID)
		switch {
		case err == nil:
			if existing.Status != models.InvitationRejected {
				return errs.New(errs.DuplicateInvitation, "the player has already been invited to this game")
			}
			existing.Status = models.InvitationPending
			existing.InvitedBy = inviterID
			if err := tx.SaveInvitation(ctx, existing); err != nil {
				return fmt.Errorf("resend invitation %d: %w", existing.ID, err)
			}
			result = InviteResult{Invitation: *existing, Resent: true}
			return nil
		case !errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("load invitation: %w", err)
		}

		invitation := models.GameInvitation{
			GameID:    game.ID,
			PlayerID:  targetID,
			InvitedBy: inviterID,
			Status:    models.InvitationPending,
		}
		err = tx.CreateInvitation(ctx, &invitation)
		if errors.Is(err, store.ErrDuplicate) {
			return errs.New(errs.DuplicateInvitation, "the player has already been invited to this game")
		}
		if err != nil {
			return fmt.Errorf("create invitation: %w", err)
		}
		result = InviteResult{Invitation: invitation}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[INVITE] Player %d invited player %d to game %d (resent: %t)", inviterID, targetID, gameID, result.Resent)
	return &result, nil
}

// CancelInvite deletes the invitation of targetID to a private game.
func (s *Service) CancelInvite(ctx context.Context, gameID, inviterID, targetID uint) error {
	return s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := loadActor(ctx, tx, inviterID); err != nil {
			return err
		}
		game, err := loadGame(ctx, tx, gameID, true)
		if err != nil {
			return err
		}
		if !CanInvite(Subject{Game: *game, PlayerID: inviterID}) {
			return errs.New(errs.AccessDenied, "only the owner of a private game can cancel invitations")
		}

		invitation, err := tx.InvitationFor(ctx, game.ID, targetID)
		if errors.Is(err, store.ErrNotFound) {
			return notFound("invitation")
		}
		if err != nil {
			return fmt.Errorf("load invitation: %w", err)
		}
		if err := tx.DeleteInvitation(ctx, invitation.ID); err != nil {
			return fmt.Errorf("delete invitation %d: %w", invitation.ID, err)
		}
		return nil
	})
}

// Respond accepts or rejects a pending invitation addressed to actorID.
// Accepting does not join the game.
func (s *Service) Respond(ctx context.Context, invitationID, actorID uint, decision Decision) (*models.GameInvitation, error) {
	var status models.InvitationStatus
	switch decision {
	case Accept:
		status = models.InvitationAccepted
	case Reject:
		status = models.InvitationRejected
	default:
		return nil, errs.New(errs.Validation, "decision must be accept or reject")
	}

	var invitation *models.GameInvitation
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := loadActor(ctx, tx, actorID); err != nil {
			return err
		}
		var err error
		invitation, err = tx.InvitationByID(ctx, invitationID)
		if errors.Is(err, store.ErrNotFound) {
			return notFound("invitation")
		}
		if err != nil {
			return fmt.Errorf("load invitation %d: %w", invitationID, err)
		}
		if invitation.Status != models.InvitationPending {
			return notFound("pending invitation")
		}
		if invitation.PlayerID != actorID {
			return errs.New(errs.Forbidden, "this invitation is not addressed to you")
		}

		invitation.Status = status
		if err := tx.SaveInvitation(ctx, invitation); err != nil {
			return fmt.Errorf("save invitation %d: %w", invitation.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invitation, nil
}

// Received lists the pending invitations addressed to the player.
func (s *Service) Received(ctx context.Context, playerID uint) ([]models.GameInvitation, error) {
	if _, err := loadActor(ctx, s.store, playerID); err != nil {
		return nil, err
	}
	invitations, err := s.store.PendingInvitations(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("list invitations of player %d: %w", playerID, err)
	}
	return invitations, nil
}
