package game

import (
	"github.com/google/uuid"
	"lukechampine.com/frand"
)

const (
	roomCodeLen     = 6
	roomCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewRoomCode returns a random 6-character upper-case alphanumeric code.
// Uniqueness is up to whoever keeps the directory of rooms.
func NewRoomCode() string {
	b := make([]byte, roomCodeLen)
	for i := range b {
		b[i] = roomCodeCharset[frand.Intn(len(roomCodeCharset))]
	}
	return string(b)
}

// NewPlayerID creates a player identity that does not depend on any
// connection.
func NewPlayerID() string {
	return uuid.NewString()
}
