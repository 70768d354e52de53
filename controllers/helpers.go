package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"Courtside/middleware"
	models "Courtside/models/postgres"
	"Courtside/services/errs"
	"Courtside/services/store"

	"github.com/gin-gonic/gin"
)

// currentUser loads the account behind the authenticated request.
func currentUser(c *gin.Context, st store.Store) (*models.User, bool) {
	email, ok := middleware.CurrentEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	user, err := st.UserByEmail(c.Request.Context(), email)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found: invalid email"})
		return nil, false
	}
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return user, true
}

// actingPlayer resolves the player profile linked to the caller.
func actingPlayer(c *gin.Context, st store.Store) (uint, bool) {
	user, ok := currentUser(c, st)
	if !ok {
		return 0, false
	}
	if user.Player == nil {
		respondError(c, errs.New(errs.NoLinkedProfile, "user has no linked player profile"))
		return 0, false
	}
	return user.Player.ID, true
}

// respondError writes a business error with its status. Anything else is
// answered with 500 and attached to the context for utils.ErrorHandler to log.
func respondError(c *gin.Context, err error) {
	var e *errs.Error
	if errors.As(err, &e) {
		c.JSON(errs.HTTPStatus(e.Kind), gin.H{"error": e.Message, "kind": e.Kind})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func validationError(c *gin.Context, message string) {
	respondError(c, errs.New(errs.Validation, message))
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		validationError(c, name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}
