package games

import (
	models "Courtside/models/postgres"
)

// Subject is everything the access rules need to know about one player and
// one game, read once per operation.
type Subject struct {
	Game     models.Game
	PlayerID uint
	IsMember bool
	// Invitation is the status of the player's invitation to the game,
	// empty when there is none.
	Invitation models.InvitationStatus
}

func (s Subject) IsOwner() bool {
	return s.Game.IsOwner(s.PlayerID)
}

func (s Subject) isPrivate() bool {
	return s.Game.Type == models.VisibilityPrivate
}

// CanView: public games are visible to everyone. Private games only to the
// owner, members and players holding a pending or accepted invitation.
func CanView(s Subject) bool {
	if !s.isPrivate() {
		return true
	}
	return s.IsOwner() || s.IsMember ||
		s.Invitation == models.InvitationPending ||
		s.Invitation == models.InvitationAccepted
}

// hasJoinAccess is the visibility half of CanJoin.
func hasJoinAccess(s Subject) bool {
	if !s.isPrivate() {
		return true
	}
	return s.IsOwner() || s.Invitation == models.InvitationAccepted
}

func CanJoin(s Subject) bool {
	return s.Game.Status == models.StatusOpen && hasJoinAccess(s)
}

func CanInvite(s Subject) bool {
	return s.isPrivate() && s.IsOwner()
}

func CanUpdate(s Subject) bool {
	return s.IsOwner()
}

// CanSubscribe gates the game's event channel to the owner and members.
func CanSubscribe(s Subject) bool {
	return s.IsOwner() || s.IsMember
}
