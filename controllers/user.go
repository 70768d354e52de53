package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"Courtside/middleware"
	models "Courtside/models/postgres"
	"Courtside/services/errs"
	"Courtside/services/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

type credentials struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
}

type signUpRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email,max=100"`
	Password string `form:"password" json:"password" binding:"required,min=8,max=72"`
	FullName string `form:"full_name" json:"full_name" binding:"max=100"`
}

type playerRequest struct {
	FullName           string            `json:"full_name" binding:"required,max=100"`
	Phone              string            `json:"phone" binding:"max=20"`
	Level              int               `json:"level" binding:"omitempty,min=1,max=7"`
	Side               models.PlayerSide `json:"side" binding:"omitempty,oneof=left right"`
	Bio                string            `json:"bio" binding:"max=2500"`
	ProfileImageURL    string            `json:"profile_image_url" binding:"omitempty,url"`
	PreferredLocations []string          `json:"preferred_locations" binding:"max=20,dive,required,max=100"`
	PreferredTimes     []string          `json:"preferred_times" binding:"max=20,dive,required,max=50"`
}

// apply copies the request onto a profile. A zero level keeps the current one.
func (r playerRequest) apply(player *models.Player) error {
	locations, err := encodeList(r.PreferredLocations)
	if err != nil {
		return err
	}
	times, err := encodeList(r.PreferredTimes)
	if err != nil {
		return err
	}
	player.FullName = strings.TrimSpace(r.FullName)
	player.Phone = r.Phone
	if r.Level != 0 {
		player.Level = r.Level
	}
	player.Side = r.Side
	player.Bio = r.Bio
	player.ProfileImageURL = r.ProfileImageURL
	player.PreferredLocations = locations
	player.PreferredTimes = times
	return nil
}

// encodeList stores a string list as a JSON array, or NULL when empty.
func encodeList(values []string) (datatypes.JSON, error) {
	if len(values) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

type playerQuery struct {
	FullName string            `form:"full_name" binding:"max=100"`
	Level    int               `form:"level" binding:"omitempty,min=1,max=7"`
	Side     models.PlayerSide `form:"side" binding:"omitempty,oneof=left right"`
}

// @Summary Log in
// @Description Checks the credentials, opens a session and returns a bearer token
// @Tags users
// @Accept x-www-form-urlencoded
// @Produce json
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Success 200 {object} object{token=string}
// @Failure 401 {object} object{error=string}
// @Failure 422 {object} object{error=string,kind=string}
// @Router /login [post]
func Login(st store.Store, secret []byte, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentials
		if err := c.ShouldBind(&req); err != nil {
			validationError(c, "email and password are required")
			return
		}
		email := strings.TrimSpace(req.Email)

		user, err := st.UserByEmail(c.Request.Context(), email)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password!"})
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password!"})
			return
		}

		token, err := middleware.IssueToken(secret, user.Email, ttl, time.Now())
		if err != nil {
			respondError(c, err)
			return
		}

		session := sessions.Default(c)
		session.Set(middleware.SessionKey, user.Email)
		if err := session.Save(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
			return
		}
		log.Printf("[AUTH] user %d logged in", user.ID)
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

// @Summary Log out
// @Description Deletes the session cookie. Bearer tokens are stateless and stay valid until they expire.
// @Tags users
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /auth/logout [delete]
// @Security ApiKeyAuth
func Logout(c *gin.Context) {
	session := sessions.Default(c)
	// Token-only clients have no session to delete
	if session.Get(middleware.SessionKey) == nil {
		c.JSON(http.StatusOK, gin.H{"message": "No session to close, discard the token"})
		return
	}

	session.Delete(middleware.SessionKey)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// @Summary Sign up
// @Description Creates an account. The player profile is created separately.
// @Tags users
// @Accept x-www-form-urlencoded
// @Produce json
// @Param email formData string true "Email"
// @Param password formData string true "Password, at least 8 characters"
// @Param full_name formData string false "Full name"
// @Success 201 {object} models.User
// @Failure 409 {object} object{error=string}
// @Failure 422 {object} object{error=string,kind=string}
// @Router /signup [post]
func SignUp(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signUpRequest
		if err := c.ShouldBind(&req); err != nil {
			validationError(c, "a valid email and a password of at least 8 characters are required")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, err)
			return
		}
		user := models.User{
			Email:        strings.TrimSpace(req.Email),
			PasswordHash: string(hash),
			FullName:     strings.TrimSpace(req.FullName),
		}
		err = st.CreateUser(c.Request.Context(), &user)
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		log.Printf("[AUTH] user %d signed up", user.ID)
		c.JSON(http.StatusCreated, user)
	}
}

// @Summary Get the logged user
// @Description Returns the account and its player profile, if any
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} object{error=string}
// @Router /auth/me [get]
// @Security ApiKeyAuth
func Me(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, st)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// @Summary Create the player profile
// @Description Links a new player profile to the logged user
// @Tags users
// @Accept json
// @Produce json
// @Param profile body playerRequest true "Player profile"
// @Success 201 {object} models.Player
// @Failure 409 {object} object{error=string}
// @Failure 422 {object} object{error=string,kind=string}
// @Router /auth/player [post]
// @Security ApiKeyAuth
func CreatePlayerProfile(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, st)
		if !ok {
			return
		}
		if user.Player != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Player profile already exists"})
			return
		}

		var req playerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			validationError(c, err.Error())
			return
		}

		player := models.Player{UserID: &user.ID}
		if err := req.apply(&player); err != nil {
			respondError(c, err)
			return
		}
		err := st.CreatePlayer(c.Request.Context(), &player)
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Player profile already exists"})
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, player)
	}
}

// @Summary Get my player profile
// @Description Returns the full player profile linked to the logged user
// @Tags players
// @Produce json
// @Success 200 {object} models.Player
// @Failure 404 {object} object{error=string,kind=string}
// @Router /auth/me/player [get]
// @Security ApiKeyAuth
func MyPlayer(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, st)
		if !ok {
			return
		}
		if user.Player == nil {
			respondError(c, errs.New(errs.NotFound, "user has no linked player profile"))
			return
		}
		c.JSON(http.StatusOK, user.Player)
	}
}

// @Summary Update my player profile
// @Description Replaces the profile linked to the logged user. Omitting level keeps the current one.
// @Tags players
// @Accept json
// @Produce json
// @Param profile body playerRequest true "Player profile"
// @Success 200 {object} models.Player
// @Failure 404 {object} object{error=string,kind=string}
// @Failure 422 {object} object{error=string,kind=string}
// @Router /auth/player [put]
// @Security ApiKeyAuth
func UpdatePlayerProfile(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, st)
		if !ok {
			return
		}
		if user.Player == nil {
			respondError(c, errs.New(errs.NotFound, "user has no linked player profile"))
			return
		}

		var req playerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			validationError(c, err.Error())
			return
		}

		player := *user.Player
		if err := req.apply(&player); err != nil {
			respondError(c, err)
			return
		}
		if err := st.SavePlayer(c.Request.Context(), &player); err != nil {
			respondError(c, err)
			return
		}
		log.Printf("[PLAYER] player %d updated its profile", player.ID)
		c.JSON(http.StatusOK, player)
	}
}

// @Summary Search players
// @Description Lists the public profiles of players, optionally filtered
// @Tags players
// @Produce json
// @Param full_name query string false "Part of the name"
// @Param level query int false "Level, 1 to 7"
// @Param side query string false "left or right"
// @Success 200 {array} models.PlayerSummary
// @Failure 422 {object} object{error=string,kind=string}
// @Router /auth/players [get]
// @Security ApiKeyAuth
func ListPlayers(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query playerQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			validationError(c, "level must be 1 to 7 and side left or right")
			return
		}
		players, err := st.Players(c.Request.Context(), store.PlayerFilter{
			FullName: query.FullName,
			Level:    query.Level,
			Side:     query.Side,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		summaries := make([]models.PlayerSummary, 0, len(players))
		for _, p := range players {
			summaries = append(summaries, p.Summary())
		}
		c.JSON(http.StatusOK, summaries)
	}
}

// @Summary Get a player
// @Description Returns the public profile of a player
// @Tags players
// @Produce json
// @Param player_id path int true "Player ID"
// @Success 200 {object} models.PlayerSummary
// @Failure 404 {object} object{error=string,kind=string}
// @Router /auth/players/{player_id} [get]
// @Security ApiKeyAuth
func GetPlayer(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "player_id")
		if !ok {
			return
		}
		player, err := st.PlayerByID(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, errs.New(errs.NotFound, "player not found"))
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, player.Summary())
	}
}
