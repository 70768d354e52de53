package controllers

import (
	"net/http"

	"Courtside/services/games"
	"Courtside/services/store"

	"github.com/gin-gonic/gin"
)

// @Summary Invite a player
// @Description Invites a player to a private game. Owner only. A rejected invitation is sent again.
// @Tags invitations
// @Produce json
// @Param game_id path int true "Game ID"
// @Param player_id path int true "Invited player ID"
// @Success 201 {object} games.InviteResult
// @Failure 400 {object} object{error=string,kind=string}
// @Failure 403 {object} object{error=string,kind=string}
// @Failure 404 {object} object{error=string,kind=string}
// @Failure 409 {object} object{error=string,kind=string}
// @Router /auth/games/{game_id}/invitations/{player_id} [post]
// @Security ApiKeyAuth
func InvitePlayer(st store.Store, svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		gameID, ok := parseID(c, "game_id")
		if !ok {
			return
		}
		targetID, ok := parseID(c, "player_id")
		if !ok {
			return
		}
		result, err := svc.Invite(c.Request.Context(), gameID, playerID, targetID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

// @Summary Cancel an invitation
// @Description Deletes a pending invitation
// @Tags invitations
// @Produce json
// @Param game_id path int true "Game ID"
// @Param player_id path int true "Invited player ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string,kind=string}
// @Failure 404 {object} object{error=string,kind=string}
// @Router /auth/games/{game_id}/invitations/{player_id} [delete]
// @Security ApiKeyAuth
func CancelInvitation(st store.Store, svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		gameID, ok := parseID(c, "game_id")
		if !ok {
			return
		}
		targetID, ok := parseID(c, "player_id")
		if !ok {
			return
		}
		if err := svc.CancelInvite(c.Request.Context(), gameID, playerID, targetID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Invitation canceled"})
	}
}

// @Summary List my invitations
// @Description Pending invitations addressed to the caller
// @Tags invitations
// @Produce json
// @Success 200 {array} models.GameInvitation
// @Router /auth/invitations [get]
// @Security ApiKeyAuth
func ListInvitations(st store.Store, svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		invitations, err := svc.Received(c.Request.Context(), playerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, invitations)
	}
}

// RespondInvitation answers an invitation with the given decision.
//
// @Summary Accept or reject an invitation
// @Tags invitations
// @Produce json
// @Param invitation_id path int true "Invitation ID"
// @Success 200 {object} models.GameInvitation
// @Failure 403 {object} object{error=string,kind=string}
// @Failure 404 {object} object{error=string,kind=string}
// @Router /auth/invitations/{invitation_id}/accept [post]
// @Router /auth/invitations/{invitation_id}/reject [post]
// @Security ApiKeyAuth
func RespondInvitation(st store.Store, svc *games.Service, decision games.Decision) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		invitationID, ok := parseID(c, "invitation_id")
		if !ok {
			return
		}
		invitation, err := svc.Respond(c.Request.Context(), invitationID, playerID, decision)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, invitation)
	}
}
