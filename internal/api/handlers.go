package api

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teris-io/shortid"

	"github.com/couchcast/couchcast/internal/database"
	"github.com/couchcast/couchcast/internal/server"
)

const maxSubtitleUpload = 1 << 20

var launchTime = time.Now()

type CreateRoomRequest struct {
	Video    string `json:"video,omitempty"`
	Password string `json:"password,omitempty"`
	Uid      string `json:"uid,omitempty"`
	Token    string `json:"token,omitempty"`
}

type CreateRoomResponse struct {
	Name string `json:"name"`
}

type DeleteRoomRequest struct {
	Name  string `json:"name"`
	Uid   string `json:"uid"`
	Token string `json:"token"`
}

type IdentityResponse struct {
	Uid   string `json:"uid"`
	Token string `json:"token"`
}

type RoomMetadata struct {
	Name       string `json:"name"`
	Video      string `json:"video"`
	RosterSize int    `json:"rosterSize"`
}

type StatsResponse struct {
	UptimeMs             int64                `json:"uptimeMs"`
	CurrentRoomCount     int                  `json:"currentRoomCount"`
	CurrentUsers         int                  `json:"currentUsers"`
	CurrentVideoChat     int                  `json:"currentVideoChat"`
	CurrentHttp          int                  `json:"currentHttp"`
	CurrentScreenShare   int                  `json:"currentScreenShare"`
	CurrentFileShare     int                  `json:"currentFileShare"`
	CurrentRoomSizeCount map[int]int          `json:"currentRoomSizeCounts"`
	Rooms                []RoomStatsDetail    `json:"rooms"`
}

type RoomStatsDetail struct {
	Name   string                `json:"name"`
	Video  string                `json:"video"`
	Roster []server.RosterDetail `json:"roster"`
}

func (s *CouchCastApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

// ping doubles as the health check: it reports failure when the backing
// store is unreachable.
func (s *CouchCastApp) ping(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	s.writeJson(w, http.StatusOK, "pong")
}

func (s *CouchCastApp) createIdentity(w http.ResponseWriter, r *http.Request) {
	uid, token, err := s.tokens.MintIdentity()
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, IdentityResponse{Uid: uid, Token: token})
}

func (s *CouchCastApp) createRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if r.Body != nil {
		// An empty body creates a plain room.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	}

	var creator string
	if req.Uid != "" && s.tokens.VerifyIdentity(req.Uid, req.Token) {
		creator = req.Uid
	}

	name, err := s.ws.CreateRoom(req.Video, req.Password, creator)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, CreateRoomResponse{Name: name})
}

func (s *CouchCastApp) deleteRoom(w http.ResponseWriter, r *http.Request) {
	var req DeleteRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !s.tokens.VerifyIdentity(req.Uid, req.Token) {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.ws.DeleteRoom(req.Name, req.Uid); err != nil {
		var errResp *ApiError
		switch {
		case errors.Is(err, server.ErrRoomNotFound):
			errResp = NewNotFoundError()
		case errors.Is(err, server.ErrNotRoomCreator):
			errResp = NewForbiddenError()
		default:
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, nil)
}

func (s *CouchCastApp) getRoom(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	room, err := s.ws.GetRoom(name)
	if err != nil {
		errResp := NewNotFoundError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	info, ok := room.Info()
	if !ok {
		errResp := NewNotFoundError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, RoomMetadata{
		Name:       info.Name,
		Video:      info.Video,
		RosterSize: info.RosterSize,
	})
}

func (s *CouchCastApp) getStats(w http.ResponseWriter, r *http.Request) {
	if s.statsKey == "" || r.URL.Query().Get("key") != s.statsKey {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	infos := s.ws.RoomInfos()
	resp := StatsResponse{
		UptimeMs:             time.Since(launchTime).Milliseconds(),
		CurrentRoomCount:     len(infos),
		CurrentRoomSizeCount: make(map[int]int),
	}
	for _, info := range infos {
		resp.CurrentUsers += info.RosterSize
		resp.CurrentVideoChat += info.VideoChats
		if info.RosterSize > 0 {
			resp.CurrentRoomSizeCount[info.RosterSize]++
			switch {
			case strings.HasPrefix(info.Video, "http"):
				resp.CurrentHttp++
			case strings.HasPrefix(info.Video, "screenshare://"):
				resp.CurrentScreenShare++
			case strings.HasPrefix(info.Video, "fileshare://"):
				resp.CurrentFileShare++
			}
		}
		resp.Rooms = append(resp.Rooms, RoomStatsDetail{
			Name:   info.Name,
			Video:  info.Video,
			Roster: info.Roster,
		})
	}

	s.writeJson(w, http.StatusOK, resp)
}

func (s *CouchCastApp) searchYoutube(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	results, err := s.media.Search(r.Context(), query)
	if err != nil {
		s.log.Printf("youtube search: %v", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, results)
}

// uploadSubtitle stores a gzipped subtitle payload keyed by its content
// hash, so identical uploads dedupe.
func (s *CouchCastApp) uploadSubtitle(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxSubtitleUpload))
	if err != nil || len(data) == 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	if err := gz.Close(); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.store.SaveSubtitle(hash, buf.Bytes()); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]string{"hash": hash})
}

func (s *CouchCastApp) getSubtitle(w http.ResponseWriter, r *http.Request) {
	hash := r.PathValue("hash")
	data, err := s.store.GetSubtitle(hash)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// Payloads are stored gzipped; send them as-is.
	w.Header().Set("Content-Encoding", "gzip")
	w.Header().Set("Content-Type", "text/plain")
	w.Write(data)
}

func (s *CouchCastApp) serveWs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	roomName := query.Get("room")
	if roomName == "" {
		roomName = server.DefaultRoomName
	}

	room, err := s.ws.GetRoom(roomName)
	if err != nil {
		errResp := NewNotFoundError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !s.ws.VerifyRoomPassword(room, query.Get("password")) {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	clientId := query.Get("clientId")
	if clientId == "" {
		clientId = shortid.MustGenerate()
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(
		shortid.MustGenerate(),
		clientId,
		query.Get("isSub") == "true",
		conn,
		room,
		s.log,
	)

	s.ws.Join(room, client)
	go client.Write()
	go client.Read()
}
