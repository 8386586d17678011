package types

// RosterUser is a currently connected participant as presented to clients.
// IsScreenShare is derived from the room's active video source when the
// roster is broadcast; it is never stored.
type RosterUser struct {
	Id            string `json:"id"`
	ClientId      string `json:"clientId"`
	IsVideoChat   bool   `json:"isVideoChat,omitempty"`
	IsScreenShare bool   `json:"isScreenShare,omitempty"`
	IsSub         bool   `json:"isSub,omitempty"`
}

// ChatMessage is one entry in a room's chat log. Id is the sender's
// connection id. Cmd tags control entries ("host", "play", "seek", ...).
type ChatMessage struct {
	Id        string              `json:"id"`
	Cmd       string              `json:"cmd,omitempty"`
	Msg       string              `json:"msg"`
	Timestamp string              `json:"timestamp"`
	VideoTS   *float64            `json:"videoTS,omitempty"`
	IsSub     bool                `json:"isSub,omitempty"`
	Reactions map[string][]string `json:"reactions,omitempty"`
}

type PlaylistVideo struct {
	Name     string  `json:"name"`
	Channel  string  `json:"channel"`
	Duration float64 `json:"duration"`
	Url      string  `json:"url"`
}

// HostState is the minimal broadcastable snapshot of current playback.
type HostState struct {
	Video    string  `json:"video"`
	VideoTS  float64 `json:"videoTS"`
	Subtitle string  `json:"subtitle"`
	Paused   bool    `json:"paused"`
}

// Reaction is a single add or remove reaction event on a chat message.
type Reaction struct {
	User         string `json:"user"`
	Value        string `json:"value"`
	MsgId        string `json:"msgId"`
	MsgTimestamp string `json:"msgTimestamp"`
}
