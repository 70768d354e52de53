package controllers

import (
	"net/http"

	"Courtside/services/friends"
	"Courtside/services/store"

	"github.com/gin-gonic/gin"
)

// @Summary Get a list of the player's friends
// @Description Accepted friendships, each flagged when it is a favorite
// @Tags friends
// @Produce json
// @Success 200 {array} friends.Friend
// @Failure 400 {object} object{error=string,kind=string}
// @Router /auth/friends [get]
// @Security ApiKeyAuth
func ListFriends(st store.Store, svc *friends.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		list, err := svc.Friends(c.Request.Context(), playerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary Get a list of the player's favorites
// @Tags friends
// @Produce json
// @Success 200 {array} models.PlayerSummary
// @Router /auth/favorites [get]
// @Security ApiKeyAuth
func ListFavorites(st store.Store, svc *friends.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		list, err := svc.Favorites(c.Request.Context(), playerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary Get pending friendship requests
// @Description Requests received by the caller, or sent with box=sent
// @Tags friends
// @Produce json
// @Param box query string false "received (default) or sent"
// @Success 200 {array} models.Friendship
// @Failure 422 {object} object{error=string,kind=string}
// @Router /auth/friend-requests [get]
// @Security ApiKeyAuth
func ListFriendRequests(st store.Store, svc *friends.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		box := store.RequestBox(c.DefaultQuery("box", string(store.BoxReceived)))
		if box != store.BoxReceived && box != store.BoxSent {
			validationError(c, "box must be received or sent")
			return
		}
		list, err := svc.Requests(c.Request.Context(), playerID, box)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary Send a friendship request
// @Tags friends
// @Produce json
// @Param player_id path int true "Player ID"
// @Success 201 {object} models.Friendship
// @Failure 400 {object} object{error=string,kind=string}
// @Failure 404 {object} object{error=string,kind=string}
// @Failure 409 {object} object{error=string,kind=string}
// @Router /auth/players/{player_id}/friend-request [post]
// @Security ApiKeyAuth
func SendFriendRequest(st store.Store, svc *friends.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		otherID, ok := parseID(c, "player_id")
		if !ok {
			return
		}
		request, err := svc.SendRequest(c.Request.Context(), playerID, otherID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, request)
	}
}

// @Summary Accept a friendship request
// @Tags friends
// @Produce json
// @Param request_id path int true "Request ID"
// @Success 200 {object} models.Friendship
// @Failure 403 {object} object{error=string,kind=string}
// @Failure 404 {object} object{error=string,kind=string}
// @Router /auth/friend-requests/{request_id}/accept [post]
// @Security ApiKeyAuth
func AcceptFriendRequest(st store.Store, svc *friends.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		requestID, ok := parseID(c, "request_id")
		if !ok {
			return
		}
		friendship, err := svc.Accept(c.Request.Context(), requestID, playerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, friendship)
	}
}

// @Summary Reject a friendship request
// @Tags friends
// @Produce json
// @Param request_id path int true "Request ID"
// @Success 200 {object} models.Friendship
// @Failure 403 {object} object{error=string,kind=string}
// @Failure 404 {object} object{error=string,kind=string}
// @Router /auth/friend-requests/{request_id}/reject [post]
// @Security ApiKeyAuth
func RejectFriendRequest(st store.Store, svc *friends.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		requestID, ok := parseID(c, "request_id")
		if !ok {
			return
		}
		friendship, err := svc.Reject(c.Request.Context(), requestID, playerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, friendship)
	}
}

// @Summary Remove a friend
// @Description Deletes an accepted friendship and the favorites between both players
// @Tags friends
// @Produce json
// @Param player_id path int true "Player ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string,kind=string}
// @Router /auth/players/{player_id}/friendship [delete]
// @Security ApiKeyAuth
func RemoveFriend(st store.Store, svc *friends.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		otherID, ok := parseID(c, "player_id")
		if !ok {
			return
		}
		if err := svc.Remove(c.Request.Context(), playerID, otherID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Friend removed"})
	}
}

// @Summary Block a player
// @Tags friends
// @Produce json
// @Param player_id path int true "Player ID"
// @Success 200 {object} models.Friendship
// @Failure 400 {object} object{error=string,kind=string}
// @Failure 404 {object} object{error=string,kind=string}
// @Router /auth/players/{player_id}/block [post]
// @Security ApiKeyAuth
func BlockPlayer(st store.Store, svc *friends.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		otherID, ok := parseID(c, "player_id")
		if !ok {
			return
		}
		friendship, err := svc.Block(c.Request.Context(), playerID, otherID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, friendship)
	}
}

// @Summary Toggle a favorite
// @Description Marks a friend as favorite, or unmarks it
// @Tags friends
// @Produce json
// @Param player_id path int true "Player ID"
// @Success 200 {object} object{is_favorite=bool}
// @Failure 400 {object} object{error=string,kind=string}
// @Router /auth/players/{player_id}/favorite [post]
// @Security ApiKeyAuth
func ToggleFavorite(st store.Store, svc *friends.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		otherID, ok := parseID(c, "player_id")
		if !ok {
			return
		}
		favorite, err := svc.ToggleFavorite(c.Request.Context(), playerID, otherID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"is_favorite": favorite})
	}
}

// @Summary Remove a favorite
// @Tags friends
// @Produce json
// @Param player_id path int true "Player ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string,kind=string}
// @Router /auth/players/{player_id}/favorite [delete]
// @Security ApiKeyAuth
func RemoveFavorite(st store.Store, svc *friends.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		otherID, ok := parseID(c, "player_id")
		if !ok {
			return
		}
		if err := svc.RemoveFavorite(c.Request.Context(), playerID, otherID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Favorite removed"})
	}
}
