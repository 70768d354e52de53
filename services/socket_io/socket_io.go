package socket_io

import (
	"context"
	"fmt"
	"time"

	"Courtside/services/notify"
	"Courtside/services/socket_io/handlers"
	socketio_types "Courtside/services/socket_io/types"
	socketio_utils "Courtside/services/socket_io/utils"
	"Courtside/services/store"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/log"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type MySocketServer struct {
	*socketio_types.SocketServer
}

// Deps are the collaborators of the realtime server.
type Deps struct {
	Store  store.Store
	Games  handlers.Authorizer
	Bus    notify.Bus
	Secret []byte
	Debug  bool
}

// Start mounts the socket.io endpoint on router and starts forwarding bus
// events to the game rooms until ctx is done.
func (sio *MySocketServer) Start(ctx context.Context, router *gin.Engine, deps Deps) error {
	log.DEBUG = deps.Debug
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load and 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	// KEY: the registry map has to exist before the first connection
	sio.SocketServer = socketio_types.NewSocketServer(socket.NewServer(nil, nil))
	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		// Check if the client is authenticated
		playerID, success := socketio_utils.VerifyUserConnection(client, deps.Store, deps.Secret)
		if !success {
			return
		}

		// Add connection to map
		sio.SocketServer.AddConnection(playerID, client)
		fmt.Printf("[CONNECT] player %d connected with socket %s\n", playerID, client.Id())

		// Subscribe to a game's private channel (owner and members only)
		client.On("subscribe_game", handlers.HandleSubscribeGame(deps.Games, client, playerID))

		client.On("unsubscribe_game", handlers.HandleUnsubscribeGame(client, playerID))

		// Latest join/leave events of a game
		client.On("game_history", handlers.HandleGameHistory(deps.Games, deps.Bus, client, playerID))

		// NOTE: will remove sio connection from map
		client.On("disconnecting", handlers.HandleDisconnecting(playerID, client, sio.SocketServer))
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	if err := NewDispatcher(sio.SocketServer).Run(ctx, deps.Bus); err != nil {
		return fmt.Errorf("subscribe to game events: %w", err)
	}

	fmt.Println("Socket server started")
	return nil
}

// Close shuts the socket.io server down.
func (sio *MySocketServer) Close() {
	if sio.SocketServer != nil && sio.Sio_server != nil {
		sio.Sio_server.Close(nil)
	}
}
