package database

import "sync"

// MemoryRoomStore is the store used when no database is configured.
// Rooms survive idle unloads within a single process but not restarts.
type MemoryRoomStore struct {
	mu        sync.RWMutex
	rooms     map[string][]byte
	subtitles map[string][]byte
}

func NewMemoryRoomStore() *MemoryRoomStore {
	return &MemoryRoomStore{
		rooms:     make(map[string][]byte),
		subtitles: make(map[string][]byte),
	}
}

func (m *MemoryRoomStore) Ping() error {
	return nil
}

func (m *MemoryRoomStore) SaveRoom(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[name] = data
	return nil
}

func (m *MemoryRoomStore) LoadRoom(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.rooms[name]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (m *MemoryRoomStore) DeleteRoom(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, name)
	return nil
}

func (m *MemoryRoomStore) SaveSubtitle(hash string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subtitles[hash] = data
	return nil
}

func (m *MemoryRoomStore) GetSubtitle(hash string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.subtitles[hash]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (m *MemoryRoomStore) Close() error {
	return nil
}
