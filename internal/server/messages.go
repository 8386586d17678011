package server

import (
	"time"

	"github.com/couchcast/couchcast/internal/types"
)

// ClientCommand is the closed set of commands a participant may issue.
// Exactly one payload field is expected to be non-nil; the room loop
// dispatches on the first match and ignores empty envelopes.
type ClientCommand struct {
	SetName        *string          `json:"setName,omitempty"`
	SetPicture     *string          `json:"setPicture,omitempty"`
	SetIdentity    *IdentityClaim   `json:"setIdentity,omitempty"`
	Host           *string          `json:"host,omitempty"`
	Play           *PlayPause       `json:"play,omitempty"`
	Pause          *PlayPause       `json:"pause,omitempty"`
	Seek           *float64         `json:"seek,omitempty"`
	ReportPosition *float64         `json:"reportPosition,omitempty"`
	Chat           *string          `json:"chat,omitempty"`
	AddReaction    *ReactionChange  `json:"addReaction,omitempty"`
	RemoveReaction *ReactionChange  `json:"removeReaction,omitempty"`
	JoinVideoChat  *Empty           `json:"joinVideoChat,omitempty"`
	LeaveVideoChat *Empty           `json:"leaveVideoChat,omitempty"`
	StartShare     *StartShare      `json:"startShare,omitempty"`
	StopShare      *Empty           `json:"stopShare,omitempty"`
	ChangeControl  *string          `json:"changeController,omitempty"`
	Subtitle       *string          `json:"subtitle,omitempty"`
	Lock           *LockChange      `json:"lock,omitempty"`
	SetRoomOwner   *RoomOwnerChange `json:"setRoomOwner,omitempty"`
	AskHost        *Empty           `json:"askHost,omitempty"`
	QueueAdd       *string          `json:"queueAdd,omitempty"`
	QueueNext      *QueueNext       `json:"queueNext,omitempty"`
	QueueDelete    *int             `json:"queueDelete,omitempty"`
	QueueMove      *QueueMove       `json:"queueMove,omitempty"`
	Signal         *SignalRequest   `json:"signal,omitempty"`
	SignalShare    *SignalRequest   `json:"signalShare,omitempty"`
	Kick           *KickRequest     `json:"kick,omitempty"`
	DeleteChat     *DeleteChat      `json:"deleteChatMessages,omitempty"`

	client *Client
}

type Empty struct{}

type PlayPause struct{}

// IdentityClaim binds a durable identity to the sending connection after
// the claim's token verifies.
type IdentityClaim struct {
	Uid   string `json:"uid"`
	Token string `json:"token"`
}

type ReactionChange struct {
	Value        string `json:"value"`
	MsgId        string `json:"msgId"`
	MsgTimestamp string `json:"msgTimestamp"`
}

type StartShare struct {
	File bool `json:"file"`
}

type LockChange struct {
	Uid    string `json:"uid"`
	Token  string `json:"token"`
	Locked bool   `json:"locked"`
}

type RoomOwnerChange struct {
	Uid   string `json:"uid"`
	Token string `json:"token"`
	Undo  bool   `json:"undo"`
}

type QueueNext struct {
	Url string `json:"url"`
}

type QueueMove struct {
	Index   int `json:"index"`
	ToIndex int `json:"toIndex"`
}

type SignalRequest struct {
	To     string `json:"to"`
	Sharer bool   `json:"sharer,omitempty"`
	Msg    string `json:"msg"`
}

type KickRequest struct {
	Uid    string `json:"uid"`
	Token  string `json:"token"`
	Target string `json:"target"`
}

type DeleteChat struct {
	Uid       string `json:"uid"`
	Token     string `json:"token"`
	Author    string `json:"author,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ServerEvent is one outbound broadcast or unicast message. Exactly one
// field is non-nil per event.
type ServerEvent struct {
	Host           *types.HostState      `json:"host,omitempty"`
	NameMap        *MapEvent             `json:"nameMap,omitempty"`
	PictureMap     *MapEvent             `json:"pictureMap,omitempty"`
	PositionMap    *PositionMapEvent     `json:"tsMap,omitempty"`
	Lock           *LockEvent            `json:"lock,omitempty"`
	Chat           *types.ChatMessage    `json:"chat,omitempty"`
	ChatLog        *ChatLogEvent         `json:"chatLog,omitempty"`
	Playlist       *PlaylistEvent        `json:"playlist,omitempty"`
	Roster         *RosterEvent          `json:"roster,omitempty"`
	Play           *PlayEvent            `json:"play,omitempty"`
	Pause          *Empty                `json:"pause,omitempty"`
	Seek           *float64              `json:"seek,omitempty"`
	Subtitle       *string               `json:"subtitle,omitempty"`
	AddReaction    *types.Reaction       `json:"addReaction,omitempty"`
	RemoveReaction *types.Reaction       `json:"removeReaction,omitempty"`
	Signal         *SignalPayload        `json:"signal,omitempty"`
	SignalShare    *SignalSharePayload   `json:"signalShare,omitempty"`
	Kicked         *Empty                `json:"kicked,omitempty"`
	RoomState      *RoomSnapshot         `json:"roomState,omitempty"`
	Error          *ErrorEvent           `json:"error,omitempty"`

	// skipClient excludes the issuing connection from a broadcast.
	skipClient *Client
}

type MapEvent struct {
	Entries map[string]string `json:"entries"`
}

type PositionMapEvent struct {
	Positions map[string]float64 `json:"positions"`
}

type LockEvent struct {
	Uid string `json:"uid"`
}

type ChatLogEvent struct {
	Messages []types.ChatMessage `json:"messages"`
}

type PlaylistEvent struct {
	Items []types.PlaylistVideo `json:"items"`
}

type RosterEvent struct {
	Users []types.RosterUser `json:"users"`
}

type PlayEvent struct {
	Video string `json:"video"`
}

type SignalPayload struct {
	From string `json:"from"`
	Msg  string `json:"msg"`
}

type SignalSharePayload struct {
	From   string `json:"from"`
	Sharer bool   `json:"sharer"`
	Msg    string `json:"msg"`
}

type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Now returns the timestamp format used in chat entries, matching the
// ISO-8601 strings clients sort on.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
