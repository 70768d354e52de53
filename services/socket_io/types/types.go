package socketio_types

import (
	"sync"

	"github.com/zishang520/socket.io/v2/socket"
)

// Conn is the part of a socket the registry drives. *socket.Socket
// implements it.
type Conn interface {
	Join(rooms ...socket.Room)
	Leave(room socket.Room)
}

// SocketServer is a struct that contains the socket.io server and the open
// connections of every player. A player may hold several sockets at once
// (tabs, devices, a reconnect racing the old socket's disconnect).
type SocketServer struct {
	Sio_server *socket.Server
	// Map to track player id -> open socket connections
	PlayerConnections map[uint]map[Conn]struct{}
	mutex             sync.RWMutex
}

func NewSocketServer(server *socket.Server) *SocketServer {
	return &SocketServer{
		Sio_server:        server,
		PlayerConnections: make(map[uint]map[Conn]struct{}),
	}
}

// Add methods to manage connections
func (s *SocketServer) AddConnection(playerID uint, conn Conn) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	conns, ok := s.PlayerConnections[playerID]
	if !ok {
		conns = make(map[Conn]struct{})
		s.PlayerConnections[playerID] = conns
	}
	conns[conn] = struct{}{}
}

// RemoveConnection forgets one socket of the player and reports whether it
// was registered.
func (s *SocketServer) RemoveConnection(playerID uint, conn Conn) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	conns, ok := s.PlayerConnections[playerID]
	if !ok {
		return false
	}
	if _, ok := conns[conn]; !ok {
		return false
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(s.PlayerConnections, playerID)
	}
	return true
}

// Connections returns a snapshot of the player's open sockets.
func (s *SocketServer) Connections(playerID uint) []Conn {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	conns := make([]Conn, 0, len(s.PlayerConnections[playerID]))
	for conn := range s.PlayerConnections[playerID] {
		conns = append(conns, conn)
	}
	return conns
}

// JoinRoom adds every open socket of the player to room.
func (s *SocketServer) JoinRoom(playerID uint, room string) bool {
	conns := s.Connections(playerID)
	for _, conn := range conns {
		conn.Join(socket.Room(room))
	}
	return len(conns) > 0
}

// LeaveRoom removes every open socket of the player from room, including
// sockets that subscribed on their own.
func (s *SocketServer) LeaveRoom(playerID uint, room string) bool {
	conns := s.Connections(playerID)
	for _, conn := range conns {
		conn.Leave(socket.Room(room))
	}
	return len(conns) > 0
}

func (s *SocketServer) EmitToRoom(room, event string, payload interface{}) error {
	return s.Sio_server.To(socket.Room(room)).Emit(event, payload)
}
