package routes

import (
	"time"

	"Courtside/controllers"
	"Courtside/middleware"
	"Courtside/services/friends"
	"Courtside/services/games"
	"Courtside/services/store"
	utils "Courtside/utils"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps are the collaborators shared by every handler.
type Deps struct {
	Store    store.Store
	Games    *games.Service
	Friends  *friends.Service
	Secret   []byte
	TokenTTL time.Duration
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, deps Deps) {
	st := deps.Store

	// utils global
	router.Use(utils.ErrorHandler())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes group
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.POST("/login", controllers.Login(st, deps.Secret, deps.TokenTTL))

	api.POST("/signup", controllers.SignUp(st))

	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired(deps.Secret))
	{
		authentication.DELETE("/logout", controllers.Logout)

		authentication.GET("/me", controllers.Me(st))

		// Players
		authentication.GET("/me/player", controllers.MyPlayer(st))
		authentication.POST("/player", controllers.CreatePlayerProfile(st))
		authentication.PUT("/player", controllers.UpdatePlayerProfile(st))
		authentication.GET("/players", controllers.ListPlayers(st))
		authentication.GET("/players/:player_id", controllers.GetPlayer(st))

		// Clubs
		authentication.GET("/clubs", controllers.ListClubs(st))
		authentication.GET("/clubs/:club_id", controllers.GetClub(st))
		authentication.GET("/clubs/:club_id/courts", controllers.ListClubCourts(st))
		authentication.GET("/courts/:court_id", controllers.GetCourt(st))

		// Games
		authentication.GET("/games", controllers.ListMyGames(st, deps.Games))
		authentication.POST("/games", controllers.CreateGame(st, deps.Games))
		authentication.GET("/open-games", controllers.ListOpenGames(st, deps.Games))
		authentication.GET("/games/:game_id", controllers.GetGame(st, deps.Games))
		authentication.PUT("/games/:game_id", controllers.UpdateGame(st, deps.Games))
		authentication.POST("/games/:game_id/join", controllers.JoinGame(st, deps.Games))
		authentication.POST("/games/:game_id/leave", controllers.LeaveGame(st, deps.Games))
		authentication.GET("/games/:game_id/channel", controllers.GameChannel(st, deps.Games))

		// Invitations
		authentication.POST("/games/:game_id/invitations/:player_id", controllers.InvitePlayer(st, deps.Games))
		authentication.DELETE("/games/:game_id/invitations/:player_id", controllers.CancelInvitation(st, deps.Games))
		authentication.GET("/invitations", controllers.ListInvitations(st, deps.Games))
		authentication.POST("/invitations/:invitation_id/accept", controllers.RespondInvitation(st, deps.Games, games.Accept))
		authentication.POST("/invitations/:invitation_id/reject", controllers.RespondInvitation(st, deps.Games, games.Reject))

		// Friends
		authentication.GET("/friends", controllers.ListFriends(st, deps.Friends))
		authentication.GET("/favorites", controllers.ListFavorites(st, deps.Friends))
		authentication.GET("/friend-requests", controllers.ListFriendRequests(st, deps.Friends))
		authentication.POST("/friend-requests/:request_id/accept", controllers.AcceptFriendRequest(st, deps.Friends))
		authentication.POST("/friend-requests/:request_id/reject", controllers.RejectFriendRequest(st, deps.Friends))
		authentication.POST("/players/:player_id/friend-request", controllers.SendFriendRequest(st, deps.Friends))
		authentication.DELETE("/players/:player_id/friendship", controllers.RemoveFriend(st, deps.Friends))
		authentication.POST("/players/:player_id/block", controllers.BlockPlayer(st, deps.Friends))
		authentication.POST("/players/:player_id/favorite", controllers.ToggleFavorite(st, deps.Friends))
		authentication.DELETE("/players/:player_id/favorite", controllers.RemoveFavorite(st, deps.Friends))
	}
}
