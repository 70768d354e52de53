package handlers

import (
	"log"

	socketio_types "Courtside/services/socket_io/types"

	"github.com/zishang520/socket.io/v2/socket"
)

// Function to handle socket.io client disconnections.
// Rooms are left by socket.io itself; only the registry entry is dropped.
func HandleDisconnecting(playerID uint, client *socket.Socket, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		if sio.RemoveConnection(playerID, client) {
			log.Printf("[DISCONNECT] player %d disconnected", playerID)
		}
	}
}
