package controllers

import (
	"errors"
	"net/http"

	models "Courtside/models/postgres"
	"Courtside/services/errs"
	"Courtside/services/store"

	"github.com/gin-gonic/gin"
)

// @Summary List clubs
// @Description Clubs where games can be created
// @Tags clubs
// @Produce json
// @Success 200 {array} models.Club
// @Router /auth/clubs [get]
// @Security ApiKeyAuth
func ListClubs(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		clubs, err := st.Clubs(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, clubs)
	}
}

// @Summary Get a club
// @Description Returns a club with its courts
// @Tags clubs
// @Produce json
// @Param club_id path int true "Club ID"
// @Success 200 {object} models.Club
// @Failure 404 {object} object{error=string,kind=string}
// @Router /auth/clubs/{club_id} [get]
// @Security ApiKeyAuth
func GetClub(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "club_id")
		if !ok {
			return
		}
		club, err := st.ClubByID(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, errs.New(errs.NotFound, "club not found"))
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, club)
	}
}

// @Summary List the courts of a club
// @Tags clubs
// @Produce json
// @Param club_id path int true "Club ID"
// @Success 200 {array} models.Court
// @Failure 404 {object} object{error=string,kind=string}
// @Router /auth/clubs/{club_id}/courts [get]
// @Security ApiKeyAuth
func ListClubCourts(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "club_id")
		if !ok {
			return
		}
		courts, err := st.CourtsByClub(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if len(courts) == 0 {
			// Tell an unknown club apart from one without courts.
			_, err := st.ClubByID(c.Request.Context(), id)
			if errors.Is(err, store.ErrNotFound) {
				respondError(c, errs.New(errs.NotFound, "club not found"))
				return
			}
			if err != nil {
				respondError(c, err)
				return
			}
			courts = []models.Court{}
		}
		c.JSON(http.StatusOK, courts)
	}
}

// @Summary Get a court
// @Tags clubs
// @Produce json
// @Param court_id path int true "Court ID"
// @Success 200 {object} models.Court
// @Failure 404 {object} object{error=string,kind=string}
// @Router /auth/courts/{court_id} [get]
// @Security ApiKeyAuth
func GetCourt(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "court_id")
		if !ok {
			return
		}
		court, err := st.CourtByID(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, errs.New(errs.NotFound, "court not found"))
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, court)
	}
}
