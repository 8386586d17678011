package server

import (
	"encoding/json"
	"slices"

	"github.com/couchcast/couchcast/internal/types"
)

const maxChatLength = 100

// SessionState is the serializable subset of a room's state. It is owned
// exclusively by the room's command loop and never mutated elsewhere.
type SessionState struct {
	Video        VideoSource
	VideoTS      float64
	Subtitle     string
	Paused       bool
	Chat         []types.ChatMessage
	NameMap      map[string]string
	PictureMap   map[string]string
	Lock         string
	Creator      string
	Playlist     []types.PlaylistVideo
	ChatDisabled bool
}

func NewSessionState() *SessionState {
	return &SessionState{
		NameMap:    make(map[string]string),
		PictureMap: make(map[string]string),
		Chat:       []types.ChatMessage{},
		Playlist:   []types.PlaylistVideo{},
	}
}

// RoomSnapshot is the persisted form of SessionState. Every field is
// optional on load; absent fields keep the freshly constructed defaults.
type RoomSnapshot struct {
	Video      string                `json:"video"`
	VideoTS    float64               `json:"videoTS"`
	Subtitle   string                `json:"subtitle,omitempty"`
	Paused     bool                  `json:"paused,omitempty"`
	Chat       []types.ChatMessage   `json:"chat,omitempty"`
	NameMap    map[string]string     `json:"nameMap,omitempty"`
	PictureMap map[string]string     `json:"pictureMap,omitempty"`
	Lock       string                `json:"lock,omitempty"`
	Creator    string                `json:"creator,omitempty"`
	Playlist   []types.PlaylistVideo `json:"playlist,omitempty"`
}

// Snapshot captures the persistable state. The name and picture maps are
// abbreviated to connection ids that appear in the chat log, which keeps
// snapshots bounded by the chat window rather than total joins.
//
// The chat and playlist slices are cloned: snapshots escape the command
// loop through Info() and get serialized concurrently, so they must not
// share backing arrays with live state. Reaction maps are copy-on-write,
// so element copies are enough.
func (s *SessionState) Snapshot() RoomSnapshot {
	chatIds := make(map[string]struct{}, len(s.Chat))
	for _, msg := range s.Chat {
		chatIds[msg.Id] = struct{}{}
	}

	abbrNames := make(map[string]string)
	for id, name := range s.NameMap {
		if _, ok := chatIds[id]; ok {
			abbrNames[id] = name
		}
	}
	abbrPictures := make(map[string]string)
	for id, pic := range s.PictureMap {
		if _, ok := chatIds[id]; ok {
			abbrPictures[id] = pic
		}
	}

	return RoomSnapshot{
		Video:      s.Video.String(),
		VideoTS:    s.VideoTS,
		Subtitle:   s.Subtitle,
		Paused:     s.Paused,
		Chat:       slices.Clone(s.Chat),
		NameMap:    abbrNames,
		PictureMap: abbrPictures,
		Lock:       s.Lock,
		Creator:    s.Creator,
		Playlist:   slices.Clone(s.Playlist),
	}
}

// Restore applies a snapshot over a freshly constructed state.
func (s *SessionState) Restore(snap RoomSnapshot) {
	s.Video = ParseVideoSource(snap.Video)
	s.VideoTS = snap.VideoTS
	if snap.Subtitle != "" {
		s.Subtitle = snap.Subtitle
	}
	if snap.Paused {
		s.Paused = snap.Paused
	}
	if snap.Chat != nil {
		s.Chat = snap.Chat
	}
	if snap.NameMap != nil {
		s.NameMap = snap.NameMap
	}
	if snap.PictureMap != nil {
		s.PictureMap = snap.PictureMap
	}
	if snap.Lock != "" {
		s.Lock = snap.Lock
	}
	if snap.Creator != "" {
		s.Creator = snap.Creator
	}
	if snap.Playlist != nil {
		s.Playlist = snap.Playlist
	}
}

func (s *SessionState) Serialize() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

func serializeSnapshot(snap RoomSnapshot) ([]byte, error) {
	return json.Marshal(snap)
}

func (s *SessionState) RestoreJSON(data []byte) error {
	var snap RoomSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	s.Restore(snap)
	return nil
}

func (s *SessionState) hostState() types.HostState {
	return types.HostState{
		Video:    s.Video.String(),
		VideoTS:  s.VideoTS,
		Subtitle: s.Subtitle,
		Paused:   s.Paused,
	}
}
