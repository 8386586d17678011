package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/couchcast/couchcast/internal/database"
	"github.com/couchcast/couchcast/internal/media"
	"github.com/couchcast/couchcast/internal/stats"
)

const (
	// DefaultRoomName is the process-wide room that always exists.
	DefaultRoomName = "default"

	metricConnections  = "ActiveConnections"
	metricRooms        = "ActiveRooms"
	metricChatMessages = "ChatMessages"

	nameAttempts = 100
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrNotRoomCreator = errors.New("not the room creator")
)

// TokenVerifier is the identity oracle: it reports whether a durable
// identity claim and its proof token match.
type TokenVerifier interface {
	VerifyIdentity(uid, token string) bool
}

type Options struct {
	RoomCapacity int
	IdleGrace    time.Duration
	SaveInterval time.Duration
}

// WatchServer is the room registry: it creates and looks up rooms,
// unloads idle ones, and periodically persists active rooms.
type WatchServer struct {
	log      *log.Logger
	store    database.RoomStore
	stats    stats.StatsProvider
	media    media.Resolver
	verifier TokenVerifier

	capacity     int
	idleGrace    time.Duration
	saveInterval time.Duration

	mu    sync.RWMutex
	rooms map[string]*Room
	rng   *rand.Rand

	unloadRoomChan chan string
	stop           chan struct{}
	stopOnce       sync.Once
	done           chan struct{}
}

func NewWatchServer(logger *log.Logger, store database.RoomStore, sp stats.StatsProvider,
	resolver media.Resolver, verifier TokenVerifier, opts Options) (*WatchServer, error) {
	if opts.IdleGrace <= 0 {
		opts.IdleGrace = 5 * time.Minute
	}
	if opts.SaveInterval <= 0 {
		opts.SaveInterval = 10 * time.Second
	}

	ws := &WatchServer{
		log:            logger,
		store:          store,
		stats:          sp,
		media:          resolver,
		verifier:       verifier,
		capacity:       opts.RoomCapacity,
		idleGrace:      opts.IdleGrace,
		saveInterval:   opts.SaveInterval,
		rooms:          make(map[string]*Room),
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		unloadRoomChan: make(chan string, 64),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}

	sp.RegisterMetric(metricConnections)
	sp.RegisterMetric(metricRooms)
	sp.RegisterMetric(metricChatMessages)

	if err := ws.ensureDefaultRoom(); err != nil {
		return nil, err
	}
	return ws, nil
}

// ensureDefaultRoom pre-creates the well-known default room, restoring
// its last persisted state if the store has one.
func (ws *WatchServer) ensureDefaultRoom() error {
	room := newRoom(ws, DefaultRoomName)
	room.isDefault = true

	data, err := ws.store.LoadRoom(DefaultRoomName)
	switch {
	case err == nil:
		if err := room.state.RestoreJSON(data); err != nil {
			ws.log.Printf("restore default room: %v", err)
		}
	case errors.Is(err, database.ErrNotFound):
	default:
		return fmt.Errorf("load default room: %w", err)
	}

	ws.mu.Lock()
	ws.rooms[DefaultRoomName] = room
	ws.mu.Unlock()
	ws.stats.Incr(metricRooms)

	go room.start()
	return nil
}

// CreateRoom registers a new room under a collision-free random name and
// returns the name. The starting video, password, and creator identity
// are all optional.
func (ws *WatchServer) CreateRoom(video, password, creator string) (string, error) {
	var passwordHash []byte
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return "", fmt.Errorf("hash room password: %w", err)
		}
		passwordHash = hash
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	var name string
	for i := 0; ; i++ {
		name = randomRoomName(ws.rng)
		if _, exists := ws.rooms[name]; !exists {
			break
		}
		if i >= nameAttempts {
			return "", errors.New("unable to generate unique room name")
		}
	}

	room := newRoom(ws, name)
	room.state.Video = ParseVideoSource(video)
	room.state.Creator = creator
	room.passwordHash = passwordHash
	ws.rooms[name] = room
	ws.stats.Incr(metricRooms)

	ws.log.Printf("created room %q", name)
	go room.start()
	return name, nil
}

func (ws *WatchServer) GetRoom(name string) (*Room, error) {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	room, ok := ws.rooms[name]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// RoomInfos collects a consistent view of every active room.
func (ws *WatchServer) RoomInfos() []RoomInfo {
	ws.mu.RLock()
	rooms := make([]*Room, 0, len(ws.rooms))
	for _, r := range ws.rooms {
		rooms = append(rooms, r)
	}
	ws.mu.RUnlock()

	infos := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		if info, ok := r.Info(); ok {
			infos = append(infos, info)
		}
	}
	return infos
}

// DeleteRoom stops a room and removes its persisted state. Only the
// recorded creator may delete a room; creatorless rooms just idle out,
// and the default room is never deleted.
func (ws *WatchServer) DeleteRoom(name, uid string) error {
	if name == DefaultRoomName {
		return ErrNotRoomCreator
	}
	room, err := ws.GetRoom(name)
	if err != nil {
		return err
	}
	info, ok := room.Info()
	if !ok {
		return ErrRoomNotFound
	}
	if info.Snapshot.Creator == "" || info.Snapshot.Creator != uid {
		return ErrNotRoomCreator
	}

	ws.mu.Lock()
	delete(ws.rooms, name)
	ws.mu.Unlock()

	ws.log.Printf("deleting room %q", name)
	ws.stopRoom(room, false)
	ws.stats.Decr(metricRooms)
	if err := ws.store.DeleteRoom(name); err != nil {
		return fmt.Errorf("delete room %q: %w", name, err)
	}
	return nil
}

// Join hands a connected client to its room's command loop.
func (ws *WatchServer) Join(room *Room, c *Client) {
	select {
	case room.joinChan <- c:
	case <-room.done:
		c.close()
	}
}

func (ws *WatchServer) Run() {
	saveTicker := time.NewTicker(ws.saveInterval)
	defer saveTicker.Stop()

	for {
		select {
		case name := <-ws.unloadRoomChan:
			ws.unloadRoom(name)
		case <-saveTicker.C:
			ws.saveRooms()
		case <-ws.stop:
			ws.log.Println("shutting down rooms")
			ws.mu.Lock()
			for _, r := range ws.rooms {
				ws.stopRoom(r, true)
			}
			ws.rooms = make(map[string]*Room)
			ws.mu.Unlock()
			close(ws.done)
			return
		}
	}
}

func (ws *WatchServer) unloadRoom(name string) {
	ws.mu.Lock()
	room, ok := ws.rooms[name]
	if ok {
		delete(ws.rooms, name)
	}
	ws.mu.Unlock()
	if !ok {
		return
	}

	ws.log.Printf("unloading idle room %q", name)
	ws.stopRoom(room, true)
	ws.stats.Decr(metricRooms)
}

func (ws *WatchServer) stopRoom(room *Room, persist bool) {
	done := make(chan struct{}, 1)
	select {
	case room.exit <- exitReq{persist: persist, done: done}:
		<-done
	case <-room.done:
	}
}

// saveRooms persists every room that currently has participants, the
// same cadence the position ticker runs on but across rooms.
func (ws *WatchServer) saveRooms() {
	for _, info := range ws.RoomInfos() {
		if info.RosterSize == 0 {
			continue
		}
		data, err := serializeSnapshot(info.Snapshot)
		if err != nil {
			ws.log.Printf("serialize room %q: %v", info.Name, err)
			continue
		}
		if err := ws.store.SaveRoom(info.Name, data); err != nil {
			ws.log.Printf("save room %q: %v", info.Name, err)
		}
	}
}

func (ws *WatchServer) Shutdown(ctx context.Context) error {
	ws.stopOnce.Do(func() { close(ws.stop) })
	select {
	case <-ws.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("watch server shutdown: %w", ctx.Err())
	}
}

// VerifyRoomPassword checks a join attempt's password for a room.
func (ws *WatchServer) VerifyRoomPassword(room *Room, password string) bool {
	return room.CheckPassword(func(hash []byte, pw string) bool {
		return bcrypt.CompareHashAndPassword(hash, []byte(pw)) == nil
	}, password)
}
