package controllers

import (
	"log"
	"net/http"
	"time"

	models "Courtside/models/postgres"
	redis_models "Courtside/models/redis"
	"Courtside/services/errs"
	"Courtside/services/games"
	"Courtside/services/store"

	"github.com/gin-gonic/gin"
)

type gameRequest struct {
	Title           string                `json:"title" binding:"max=255"`
	Description     string                `json:"description" binding:"max=500"`
	Type            models.GameVisibility `json:"type" binding:"omitempty,oneof=public private"`
	GameType        models.GameKind       `json:"game_type" binding:"omitempty,oneof=casual competitive training"`
	Status          models.GameStatus     `json:"status"`
	DataTime        *time.Time            `json:"data_time"`
	ClubID          uint                  `json:"club_id" binding:"required"`
	CourtID         uint                  `json:"court_id" binding:"required"`
	CustomLocation  string                `json:"custom_location" binding:"max=500"`
	DurationMinutes *int                  `json:"duration_minutes"`
	MinLevel        *int                  `json:"min_level" binding:"omitempty,min=1,max=7"`
	MaxLevel        *int                  `json:"max_level" binding:"omitempty,min=1,max=7"`
	MaxPlayers      *int                  `json:"max_players"`
	Price           *float64              `json:"price" binding:"omitempty,min=0"`
	CostPerPlayer   *float64              `json:"cost_per_player" binding:"omitempty,min=0"`
}

func (r gameRequest) input() games.GameInput {
	return games.GameInput{
		Title:           r.Title,
		Description:     r.Description,
		Type:            r.Type,
		GameType:        r.GameType,
		Status:          r.Status,
		DataTime:        r.DataTime,
		ClubID:          r.ClubID,
		CourtID:         r.CourtID,
		CustomLocation:  r.CustomLocation,
		DurationMinutes: r.DurationMinutes,
		MinLevel:        r.MinLevel,
		MaxLevel:        r.MaxLevel,
		MaxPlayers:      r.MaxPlayers,
		Price:           r.Price,
		CostPerPlayer:   r.CostPerPlayer,
	}
}

// @Summary List my games
// @Description Open games the caller is playing in
// @Tags games
// @Produce json
// @Success 200 {array} games.GameView
// @Failure 400 {object} object{error=string,kind=string}
// @Router /auth/games [get]
// @Security ApiKeyAuth
func ListMyGames(st store.Store, svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		views, err := svc.ListMine(c.Request.Context(), playerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, views)
	}
}

// @Summary List open games
// @Description Public open games created by other players
// @Tags games
// @Produce json
// @Success 200 {array} games.GameView
// @Failure 400 {object} object{error=string,kind=string}
// @Router /auth/open-games [get]
// @Security ApiKeyAuth
func ListOpenGames(st store.Store, svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		views, err := svc.ListAvailable(c.Request.Context(), playerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, views)
	}
}

// @Summary Create a game
// @Description Creates an open game; the caller becomes its owner and first player
// @Tags games
// @Accept json
// @Produce json
// @Param game body gameRequest true "Game"
// @Success 201 {object} games.GameView
// @Failure 400 {object} object{error=string,kind=string}
// @Failure 422 {object} object{error=string,kind=string}
// @Router /auth/games [post]
// @Security ApiKeyAuth
func CreateGame(st store.Store, svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		var req gameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			validationError(c, err.Error())
			return
		}
		view, err := svc.Create(c.Request.Context(), playerID, req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		log.Printf("[GAMES] player %d created game %d", playerID, view.ID)
		c.JSON(http.StatusCreated, view)
	}
}

// @Summary Get a game
// @Description Game details and roster. Private games are visible to the owner, members and invited players.
// @Tags games
// @Produce json
// @Param game_id path int true "Game ID"
// @Success 200 {object} games.GameView
// @Failure 403 {object} object{error=string,kind=string}
// @Failure 404 {object} object{error=string,kind=string}
// @Router /auth/games/{game_id} [get]
// @Security ApiKeyAuth
func GetGame(st store.Store, svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		gameID, ok := parseID(c, "game_id")
		if !ok {
			return
		}
		view, err := svc.Show(c.Request.Context(), playerID, gameID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// @Summary Update a game
// @Description Owner only. Status is required; open and full follow the roster size.
// @Tags games
// @Accept json
// @Produce json
// @Param game_id path int true "Game ID"
// @Param game body gameRequest true "Game"
// @Success 200 {object} games.GameView
// @Failure 403 {object} object{error=string,kind=string}
// @Failure 404 {object} object{error=string,kind=string}
// @Failure 422 {object} object{error=string,kind=string}
// @Router /auth/games/{game_id} [put]
// @Security ApiKeyAuth
func UpdateGame(st store.Store, svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		gameID, ok := parseID(c, "game_id")
		if !ok {
			return
		}
		var req gameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			validationError(c, err.Error())
			return
		}
		view, err := svc.Update(c.Request.Context(), playerID, gameID, req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// @Summary Join a game
// @Description Adds the caller to the roster. Joining twice is a no-op.
// @Tags games
// @Produce json
// @Param game_id path int true "Game ID"
// @Success 200 {object} games.MembershipResult
// @Failure 403 {object} object{error=string,kind=string}
// @Failure 404 {object} object{error=string,kind=string}
// @Failure 409 {object} object{error=string,kind=string}
// @Router /auth/games/{game_id}/join [post]
// @Security ApiKeyAuth
func JoinGame(st store.Store, svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		gameID, ok := parseID(c, "game_id")
		if !ok {
			return
		}
		result, err := svc.Join(c.Request.Context(), gameID, playerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// @Summary Leave a game
// @Description Removes the caller from the roster. The owner cannot leave.
// @Tags games
// @Produce json
// @Param game_id path int true "Game ID"
// @Success 200 {object} games.MembershipResult
// @Failure 404 {object} object{error=string,kind=string}
// @Failure 409 {object} object{error=string,kind=string}
// @Router /auth/games/{game_id}/leave [post]
// @Security ApiKeyAuth
func LeaveGame(st store.Store, svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		gameID, ok := parseID(c, "game_id")
		if !ok {
			return
		}
		result, err := svc.Leave(c.Request.Context(), gameID, playerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// @Summary Authorize the game channel
// @Description Tells whether the caller may subscribe to the game's event channel
// @Tags games
// @Produce json
// @Param game_id path int true "Game ID"
// @Success 200 {object} object{channel=string,authorized=bool}
// @Failure 403 {object} object{error=string,kind=string}
// @Router /auth/games/{game_id}/channel [get]
// @Security ApiKeyAuth
func GameChannel(st store.Store, svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := actingPlayer(c, st)
		if !ok {
			return
		}
		gameID, ok := parseID(c, "game_id")
		if !ok {
			return
		}
		allowed, err := svc.CanSubscribe(c.Request.Context(), playerID, gameID)
		if err != nil {
			respondError(c, err)
			return
		}
		if !allowed {
			respondError(c, errs.New(errs.AccessDenied, "you cannot subscribe to this game"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"channel": redis_models.GameChannel(gameID), "authorized": true})
	}
}
