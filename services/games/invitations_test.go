package games

import (
	"testing"

	models "Courtside/models/postgres"
	"Courtside/services/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteAcceptThenJoin(t *testing.T) {
	f := newFixture(t)
	owner := f.player("Ana")
	p := f.player("Bruno")
	game := f.game(owner, models.VisibilityPrivate, 4)

	res, err := f.svc.Invite(f.ctx, game.ID, owner.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, res.Resent)
	assert.Equal(t, models.InvitationPending, res.Invitation.Status)

	_, err = f.svc.Join(f.ctx, game.ID, p.ID)
	assertKind(t, err, errs.AccessDenied)

	accepted, err := f.svc.Respond(f.ctx, res.Invitation.ID, p.ID, Accept)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationAccepted, accepted.Status)

	// Accepting alone does not join
	assert.Equal(t, 1, f.count(game.ID))

	joined, err := f.svc.Join(f.ctx, game.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, joined.PlayersCount)
}

func TestReinviteAfterRejectionReusesRow(t *testing.T) {
	f := newFixture(t)
	owner := f.player("Ana")
	p := f.player("Bruno")
	game := f.game(owner, models.VisibilityPrivate, 4)

	first, err := f.svc.Invite(f.ctx, game.ID, owner.ID, p.ID)
	require.NoError(t, err)
	_, err = f.svc.Respond(f.ctx, first.Invitation.ID, p.ID, Reject)
	require.NoError(t, err)

	again, err := f.svc.Invite(f.ctx, game.ID, owner.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, again.Resent)
	assert.Equal(t, first.Invitation.ID, again.Invitation.ID)
	assert.Equal(t, models.InvitationPending, again.Invitation.Status)

	received, err := f.svc.Received(f.ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, first.Invitation.ID, received[0].ID)
}

func TestInviteDuplicates(t *testing.T) {
	f := newFixture(t)
	owner := f.player("Ana")
	p := f.player("Bruno")
	game := f.game(owner, models.VisibilityPrivate, 4)

	first, err := f.svc.Invite(f.ctx, game.ID, owner.ID, p.ID)
	require.NoError(t, err)

	_, err = f.svc.Invite(f.ctx, game.ID, owner.ID, p.ID)
	assertKind(t, err, errs.DuplicateInvitation)

	_, err = f.svc.Respond(f.ctx, first.Invitation.ID, p.ID, Accept)
	require.NoError(t, err)
	_, err = f.svc.Invite(f.ctx, game.ID, owner.ID, p.ID)
	assertKind(t, err, errs.DuplicateInvitation)
}

func TestInvitePreconditions(t *testing.T) {
	f := newFixture(t)
	owner := f.player("Ana")
	member := f.player("Bruno")
	outsider := f.player("Carla")
	private := f.game(owner, models.VisibilityPrivate, 2)
	public := f.game(owner, models.VisibilityPublic, 4)

	_, err := f.svc.Invite(f.ctx, public.ID, owner.ID, outsider.ID)
	assertKind(t, err, errs.AccessDenied)

	_, err = f.svc.Invite(f.ctx, private.ID, member.ID, outsider.ID)
	assertKind(t, err, errs.AccessDenied)

	_, err = f.svc.Invite(f.ctx, private.ID, owner.ID, owner.ID)
	assertKind(t, err, errs.SelfInvite)

	_, err = f.svc.Invite(f.ctx, private.ID, owner.ID, 999)
	assertKind(t, err, errs.NotFound)

	_, err = f.svc.Invite(f.ctx, 999, owner.ID, outsider.ID)
	assertKind(t, err, errs.NotFound)

	// member joins through an accepted invitation and fills the game
	inv, err := f.svc.Invite(f.ctx, private.ID, owner.ID, member.ID)
	require.NoError(t, err)
	_, err = f.svc.Respond(f.ctx, inv.Invitation.ID, member.ID, Accept)
	require.NoError(t, err)
	_, err = f.svc.Join(f.ctx, private.ID, member.ID)
	require.NoError(t, err)

	_, err = f.svc.Invite(f.ctx, private.ID, owner.ID, member.ID)
	assertKind(t, err, errs.AlreadyMember)

	_, err = f.svc.Invite(f.ctx, private.ID, owner.ID, outsider.ID)
	assertKind(t, err, errs.Full)
}

func TestCancelInvite(t *testing.T) {
	f := newFixture(t)
	owner := f.player("Ana")
	p := f.player("Bruno")
	game := f.game(owner, models.VisibilityPrivate, 4)

	err := f.svc.CancelInvite(f.ctx, game.ID, owner.ID, p.ID)
	assertKind(t, err, errs.NotFound)

	_, err = f.svc.Invite(f.ctx, game.ID, owner.ID, p.ID)
	require.NoError(t, err)

	err = f.svc.CancelInvite(f.ctx, game.ID, p.ID, p.ID)
	assertKind(t, err, errs.AccessDenied)

	require.NoError(t, f.svc.CancelInvite(f.ctx, game.ID, owner.ID, p.ID))
	_, err = f.store.InvitationFor(f.ctx, game.ID, p.ID)
	assert.Error(t, err)

	// After cancelling, a fresh invite creates a new row
	res, err := f.svc.Invite(f.ctx, game.ID, owner.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, res.Resent)
}

func TestRespond(t *testing.T) {
	f := newFixture(t)
	owner := f.player("Ana")
	p := f.player("Bruno")
	other := f.player("Carla")
	game := f.game(owner, models.VisibilityPrivate, 4)

	res, err := f.svc.Invite(f.ctx, game.ID, owner.ID, p.ID)
	require.NoError(t, err)
	id := res.Invitation.ID

	_, err = f.svc.Respond(f.ctx, id, other.ID, Accept)
	assertKind(t, err, errs.Forbidden)

	_, err = f.svc.Respond(f.ctx, id, owner.ID, Accept)
	assertKind(t, err, errs.Forbidden)

	_, err = f.svc.Respond(f.ctx, id, p.ID, Decision("maybe"))
	assertKind(t, err, errs.Validation)

	_, err = f.svc.Respond(f.ctx, 999, p.ID, Accept)
	assertKind(t, err, errs.NotFound)

	rejected, err := f.svc.Respond(f.ctx, id, p.ID, Reject)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationRejected, rejected.Status)

	_, err = f.svc.Respond(f.ctx, id, p.ID, Accept)
	assertKind(t, err, errs.NotFound)
}

func TestReceivedListsPendingWithGame(t *testing.T) {
	f := newFixture(t)
	owner := f.player("Ana")
	p := f.player("Bruno")
	g1 := f.game(owner, models.VisibilityPrivate, 4)
	g2 := f.game(owner, models.VisibilityPrivate, 4)

	_, err := f.svc.Invite(f.ctx, g1.ID, owner.ID, p.ID)
	require.NoError(t, err)
	second, err := f.svc.Invite(f.ctx, g2.ID, owner.ID, p.ID)
	require.NoError(t, err)
	_, err = f.svc.Respond(f.ctx, second.Invitation.ID, p.ID, Accept)
	require.NoError(t, err)

	received, err := f.svc.Received(f.ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, g1.ID, received[0].GameID)
	require.NotNil(t, received[0].Game)
	require.NotNil(t, received[0].Inviter)
	assert.Equal(t, owner.ID, received[0].Inviter.ID)
}
