package database

import "errors"

// ErrNotFound is returned when a room snapshot or subtitle does not
// exist in the store.
var ErrNotFound = errors.New("not found")

// RoomStore persists serialized room snapshots and uploaded subtitle
// payloads. Implementations must be safe for concurrent use.
type RoomStore interface {
	Ping() error
	SaveRoom(name string, data []byte) error
	LoadRoom(name string) ([]byte, error)
	DeleteRoom(name string) error
	SaveSubtitle(hash string, data []byte) error
	GetSubtitle(hash string) ([]byte, error)
	Close() error
}
