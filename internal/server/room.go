package server

import (
	"log"
	"slices"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/couchcast/couchcast/internal/types"
)

const (
	maxNameLength     = 50
	maxPictureLength  = 10000
	maxChatMsgLength  = 10000
	maxSubtitleLength = 10000
	maxHostLength     = 20000
	maxReactionRunes  = 2
	maxNumberLength   = 100

	positionInterval = time.Second
)

type rosterEntry struct {
	id          string
	clientId    string
	isVideoChat bool
	isSub       bool
}

type exitReq struct {
	persist bool
	done    chan struct{}
}

type playlistResolution struct {
	senderId string
	text     string
	video    types.PlaylistVideo
}

type infoRequest struct {
	reply chan RoomInfo
}

// RoomInfo is a point-in-time view of a room taken inside its command
// loop, used by the registry's save loop and the stats endpoint.
type RoomInfo struct {
	Name       string
	Video      string
	RosterSize int
	VideoChats int
	Snapshot   RoomSnapshot
	Roster     []RosterDetail
}

// RosterDetail is the per-participant stats view.
type RosterDetail struct {
	Name     string  `json:"name"`
	Uid      string  `json:"uid,omitempty"`
	Position float64 `json:"position"`
	ClientId string  `json:"clientId"`
}

// Room owns one watch session. All state is mutated only inside start's
// select loop; commands for the same room never interleave.
type Room struct {
	name string
	cs   *WatchServer
	log  *log.Logger

	state     *SessionState
	roster    []*rosterEntry
	clients   map[string]*Client
	positions map[string]float64
	nextVotes map[string]string
	uidMap    map[string]string

	passwordHash []byte
	isDefault    bool

	joinChan    chan *Client
	leaveChan   chan *Client
	cmdChan     chan *ClientCommand
	resolveChan chan playlistResolution
	infoChan    chan infoRequest
	exit        chan exitReq
	done        chan struct{}

	ticker *time.Ticker
	// killTimer unloads the room after its roster stays empty for the
	// configured grace period. The default room is never unloaded.
	killTimer *time.Timer
}

func newRoom(cs *WatchServer, name string) *Room {
	return &Room{
		name:        name,
		cs:          cs,
		log:         cs.log,
		state:       NewSessionState(),
		clients:     make(map[string]*Client),
		positions:   make(map[string]float64),
		nextVotes:   make(map[string]string),
		uidMap:      make(map[string]string),
		joinChan:    make(chan *Client, 64),
		leaveChan:   make(chan *Client, 64),
		cmdChan:     make(chan *ClientCommand, 256),
		resolveChan: make(chan playlistResolution, 16),
		infoChan:    make(chan infoRequest),
		exit:        make(chan exitReq),
		done:        make(chan struct{}),
	}
}

func (r *Room) start() {
	r.log.Printf("starting room %q", r.name)
	r.ticker = time.NewTicker(positionInterval)
	r.killTimer = time.NewTimer(r.cs.idleGrace)
	if r.isDefault {
		r.killTimer.Stop()
	}

	for {
		select {
		case c := <-r.joinChan:
			r.handleJoin(c)
		case c := <-r.leaveChan:
			r.handleLeave(c)
		case cmd := <-r.cmdChan:
			r.dispatch(cmd)
		case res := <-r.resolveChan:
			r.finishQueueAdd(res)
		case <-r.ticker.C:
			if r.state.Video.Active() {
				r.broadcast(&ServerEvent{PositionMap: r.positionMapEvent()})
			}
		case req := <-r.infoChan:
			req.reply <- r.buildInfo()
		case <-r.killTimer.C:
			r.handleIdleTimeout()
		case e := <-r.exit:
			r.handleRoomExit(e)
			return
		}
	}
}

func (r *Room) dispatch(cmd *ClientCommand) {
	c := cmd.client
	switch {
	case cmd.SetName != nil:
		r.handleSetName(c, *cmd.SetName)
	case cmd.SetPicture != nil:
		r.handleSetPicture(c, *cmd.SetPicture)
	case cmd.SetIdentity != nil:
		r.handleSetIdentity(c, cmd.SetIdentity)
	case cmd.Host != nil:
		r.handleHost(c, *cmd.Host)
	case cmd.Play != nil:
		r.handlePlay(c)
	case cmd.Pause != nil:
		r.handlePause(c)
	case cmd.Seek != nil:
		r.handleSeek(c, *cmd.Seek)
	case cmd.ReportPosition != nil:
		r.handleReportPosition(c, *cmd.ReportPosition)
	case cmd.Chat != nil:
		r.handleChat(c, *cmd.Chat)
	case cmd.AddReaction != nil:
		r.handleAddReaction(c, cmd.AddReaction)
	case cmd.RemoveReaction != nil:
		r.handleRemoveReaction(c, cmd.RemoveReaction)
	case cmd.JoinVideoChat != nil:
		r.handleVideoChat(c, true)
	case cmd.LeaveVideoChat != nil:
		r.handleVideoChat(c, false)
	case cmd.StartShare != nil:
		r.handleStartShare(c, cmd.StartShare.File)
	case cmd.StopShare != nil:
		r.handleStopShare(c)
	case cmd.ChangeControl != nil:
		r.handleChangeController(c, *cmd.ChangeControl)
	case cmd.Subtitle != nil:
		r.handleSubtitle(c, *cmd.Subtitle)
	case cmd.Lock != nil:
		r.handleLock(c, cmd.Lock)
	case cmd.SetRoomOwner != nil:
		r.handleSetRoomOwner(c, cmd.SetRoomOwner)
	case cmd.AskHost != nil:
		r.unicast(c, &ServerEvent{Host: r.hostStateEvent()})
	case cmd.QueueAdd != nil:
		r.handleQueueAdd(c, *cmd.QueueAdd)
	case cmd.QueueNext != nil:
		r.handleQueueNext(c, cmd.QueueNext)
	case cmd.QueueDelete != nil:
		r.handleQueueDelete(c, *cmd.QueueDelete)
	case cmd.QueueMove != nil:
		r.handleQueueMove(c, cmd.QueueMove)
	case cmd.Signal != nil:
		r.handleSignal(c, cmd.Signal, false)
	case cmd.SignalShare != nil:
		r.handleSignal(c, cmd.SignalShare, true)
	case cmd.Kick != nil:
		r.handleKick(c, cmd.Kick)
	case cmd.DeleteChat != nil:
		r.handleDeleteChat(c, cmd.DeleteChat)
	}
}

func (r *Room) handleJoin(c *Client) {
	if r.cs.capacity > 0 && len(r.roster) >= r.cs.capacity {
		r.log.Printf("room %q at capacity, refusing %q", r.name, c.id)
		c.queueEvent(&ServerEvent{Error: &ErrorEvent{
			Code:    "room_full",
			Message: "room is at capacity",
		}})
		c.close()
		return
	}

	r.killTimer.Stop()
	r.clients[c.id] = c

	// The join sequence is ordered: the client must have the full host
	// state and history before it appears on the roster.
	c.queueEvent(&ServerEvent{Host: r.hostStateEvent()})
	c.queueEvent(&ServerEvent{NameMap: &MapEvent{Entries: copyStringMap(r.state.NameMap)}})
	c.queueEvent(&ServerEvent{PictureMap: &MapEvent{Entries: copyStringMap(r.state.PictureMap)}})
	c.queueEvent(&ServerEvent{PositionMap: r.positionMapEvent()})
	c.queueEvent(&ServerEvent{Lock: &LockEvent{Uid: r.state.Lock}})
	c.queueEvent(&ServerEvent{ChatLog: &ChatLogEvent{Messages: slices.Clone(r.state.Chat)}})
	c.queueEvent(&ServerEvent{Playlist: r.playlistEvent()})

	r.roster = append(r.roster, &rosterEntry{id: c.id, clientId: c.clientId, isSub: c.isSub})
	r.broadcast(&ServerEvent{Roster: r.rosterEvent()})
	r.cs.stats.Incr(metricConnections)
}

func (r *Room) handleLeave(c *Client) {
	if _, ok := r.clients[c.id]; !ok {
		return
	}
	delete(r.clients, c.id)

	var removed *rosterEntry
	for i, entry := range r.roster {
		if entry.id == c.id {
			removed = entry
			r.roster = slices.Delete(r.roster, i, i+1)
			break
		}
	}
	r.broadcast(&ServerEvent{Roster: r.rosterEvent()})

	if removed != nil && r.state.Video.IsShare() && removed.clientId == r.state.Video.SharerId() {
		// The sharer is gone, reset the room's video source.
		r.cmdHost(c.id, NoVideo())
	}

	delete(r.positions, c.id)
	delete(r.nextVotes, c.id)
	delete(r.uidMap, c.id)
	r.cs.stats.Decr(metricConnections)

	if len(r.roster) == 0 && !r.isDefault {
		r.log.Printf("room %q is empty, starting idle timer", r.name)
		r.killTimer.Reset(r.cs.idleGrace)
	}
}

func (r *Room) handleIdleTimeout() {
	r.log.Printf("room %q idle timeout", r.name)
	select {
	case r.cs.unloadRoomChan <- r.name:
	default:
		r.killTimer.Reset(r.cs.idleGrace)
	}
}

func (r *Room) handleRoomExit(e exitReq) {
	r.log.Printf("room %q is exiting", r.name)
	r.ticker.Stop()
	r.killTimer.Stop()

	if e.persist {
		if data, err := r.state.Serialize(); err == nil {
			if err := r.cs.store.SaveRoom(r.name, data); err != nil {
				r.log.Printf("save room %q: %v", r.name, err)
			}
		}
	}

	close(r.done)
	if e.done != nil {
		e.done <- struct{}{}
	}
}

// validateLock passes when no lock is set, or when the connection's
// verified identity matches the lock owner.
func (r *Room) validateLock(connId string) bool {
	if r.state.Lock == "" {
		return true
	}
	if r.uidMap[connId] == r.state.Lock {
		return true
	}
	r.log.Printf("room %q: lock check failed for %q", r.name, connId)
	return false
}

// cmdHost switches the room to a new video source and resets all
// per-video state. An empty source immediately advances the playlist.
func (r *Room) cmdHost(issuerId string, src VideoSource) {
	r.state.Video = src
	r.state.VideoTS = 0
	r.state.Paused = false
	r.state.Subtitle = ""
	r.positions = make(map[string]float64)
	r.nextVotes = make(map[string]string)

	r.broadcast(&ServerEvent{PositionMap: r.positionMapEvent()})
	r.broadcast(&ServerEvent{Host: r.hostStateEvent()})

	if issuerId != "" && src.Active() {
		r.addChatMessage(issuerId, "host", src.String())
	}
	if !src.Active() {
		r.advancePlaylist("", "")
	}
}

func (r *Room) addChatMessage(senderId, cmd, msg string) {
	if r.state.ChatDisabled && cmd == "" {
		return
	}

	m := types.ChatMessage{
		Id:        senderId,
		Cmd:       cmd,
		Msg:       msg,
		Timestamp: Now(),
	}
	if senderId != "" {
		if entry := r.rosterFind(senderId); entry != nil {
			m.IsSub = entry.isSub
		}
		if ts, ok := r.positions[senderId]; ok {
			v := ts
			m.VideoTS = &v
		}
	}

	r.state.Chat = append(r.state.Chat, m)
	if excess := len(r.state.Chat) - maxChatLength; excess > 0 {
		r.state.Chat = slices.Delete(r.state.Chat, 0, excess)
	}
	r.broadcast(&ServerEvent{Chat: &m})
	r.cs.stats.Incr(metricChatMessages)
}

func (r *Room) handleSetName(c *Client, name string) {
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return
	}
	r.state.NameMap[c.id] = name
	r.broadcast(&ServerEvent{NameMap: &MapEvent{Entries: copyStringMap(r.state.NameMap)}})
}

func (r *Room) handleSetPicture(c *Client, picture string) {
	if len(picture) > maxPictureLength {
		return
	}
	r.state.PictureMap[c.id] = picture
	r.broadcast(&ServerEvent{PictureMap: &MapEvent{Entries: copyStringMap(r.state.PictureMap)}})
}

func (r *Room) handleSetIdentity(c *Client, claim *IdentityClaim) {
	if claim.Uid == "" || claim.Token == "" {
		return
	}
	if !r.cs.verifier.VerifyIdentity(claim.Uid, claim.Token) {
		r.log.Printf("room %q: identity verification failed for %q", r.name, c.id)
		return
	}
	r.uidMap[c.id] = claim.Uid
}

func (r *Room) handleHost(c *Client, url string) {
	if len(url) > maxHostLength {
		return
	}
	if !r.validateLock(c.id) {
		return
	}
	if r.hasActiveSharer() {
		// The video can't change while someone is sharing.
		return
	}
	r.cmdHost(c.id, ParseVideoSource(url))
}

func (r *Room) handlePlay(c *Client) {
	if !r.validateLock(c.id) {
		return
	}
	r.state.Paused = false
	r.broadcast(&ServerEvent{
		Play:       &PlayEvent{Video: r.state.Video.String()},
		skipClient: c,
	})
	r.addChatMessage(c.id, "play", r.positionString(c.id))
}

func (r *Room) handlePause(c *Client) {
	if !r.validateLock(c.id) {
		return
	}
	r.state.Paused = true
	r.broadcast(&ServerEvent{Pause: &Empty{}, skipClient: c})
	r.addChatMessage(c.id, "pause", r.positionString(c.id))
}

func (r *Room) handleSeek(c *Client, pos float64) {
	if !validNumber(pos) {
		return
	}
	if !r.validateLock(c.id) {
		return
	}
	r.state.VideoTS = pos
	v := pos
	r.broadcast(&ServerEvent{Seek: &v, skipClient: c})
	r.addChatMessage(c.id, "seek", formatPosition(pos))
}

func (r *Room) handleReportPosition(c *Client, pos float64) {
	if !validNumber(pos) {
		return
	}
	if pos > r.state.VideoTS {
		r.state.VideoTS = pos
	}
	r.positions[c.id] = pos
}

func (r *Room) handleChat(c *Client, text string) {
	if len(text) > maxChatMsgLength {
		return
	}
	r.addChatMessage(c.id, "", text)
}

func (r *Room) handleAddReaction(c *Client, rc *ReactionChange) {
	if utf8.RuneCountInString(rc.Value) > maxReactionRunes {
		return
	}
	msg := r.findChatMessage(rc.MsgId, rc.MsgTimestamp)
	if msg == nil {
		return
	}
	if slices.Contains(msg.Reactions[rc.Value], c.id) {
		return
	}
	// Copy-on-write: earlier broadcasts may still be serializing the
	// old map on client write pumps.
	reactions := copyReactions(msg.Reactions)
	reactions[rc.Value] = append(slices.Clone(reactions[rc.Value]), c.id)
	msg.Reactions = reactions
	r.broadcast(&ServerEvent{AddReaction: &types.Reaction{
		User:         c.id,
		Value:        rc.Value,
		MsgId:        rc.MsgId,
		MsgTimestamp: rc.MsgTimestamp,
	}})
}

func (r *Room) handleRemoveReaction(c *Client, rc *ReactionChange) {
	if utf8.RuneCountInString(rc.Value) > maxReactionRunes {
		return
	}
	msg := r.findChatMessage(rc.MsgId, rc.MsgTimestamp)
	if msg == nil || msg.Reactions[rc.Value] == nil {
		return
	}
	reactions := copyReactions(msg.Reactions)
	reactions[rc.Value] = slices.DeleteFunc(slices.Clone(reactions[rc.Value]), func(id string) bool {
		return id == c.id
	})
	msg.Reactions = reactions
	r.broadcast(&ServerEvent{RemoveReaction: &types.Reaction{
		User:         c.id,
		Value:        rc.Value,
		MsgId:        rc.MsgId,
		MsgTimestamp: rc.MsgTimestamp,
	}})
}

func (r *Room) handleVideoChat(c *Client, joined bool) {
	entry := r.rosterFind(c.id)
	if entry == nil {
		return
	}
	entry.isVideoChat = joined
	r.broadcast(&ServerEvent{Roster: r.rosterEvent()})
}

func (r *Room) handleStartShare(c *Client, file bool) {
	if !r.validateLock(c.id) {
		return
	}
	if r.hasActiveSharer() {
		// Someone's already sharing.
		return
	}
	if file {
		r.cmdHost(c.id, FileShareSource(c.clientId))
	} else {
		r.cmdHost(c.id, ScreenShareSource(c.clientId))
	}
	r.broadcast(&ServerEvent{Roster: r.rosterEvent()})
}

func (r *Room) handleStopShare(c *Client) {
	if !r.hasActiveSharer() || r.state.Video.SharerId() != c.clientId {
		return
	}
	r.cmdHost(c.id, NoVideo())
	r.broadcast(&ServerEvent{Roster: r.rosterEvent()})
}

// handleChangeController validates a controller hand-off request. The
// hand-off itself is not implemented.
func (r *Room) handleChangeController(c *Client, target string) {
	if len(target) > maxNumberLength {
		return
	}
	if !r.validateLock(c.id) {
		return
	}
}

func (r *Room) handleSubtitle(c *Client, text string) {
	if len(text) > maxSubtitleLength {
		return
	}
	if !r.validateLock(c.id) {
		return
	}
	r.state.Subtitle = text
	v := text
	r.broadcast(&ServerEvent{Subtitle: &v})
}

func (r *Room) handleLock(c *Client, lc *LockChange) {
	if lc.Uid == "" || lc.Token == "" {
		return
	}
	if !r.cs.verifier.VerifyIdentity(lc.Uid, lc.Token) {
		r.log.Printf("room %q: lock change identity check failed for %q", r.name, c.id)
		return
	}
	r.uidMap[c.id] = lc.Uid
	if !r.validateLock(c.id) {
		return
	}

	if lc.Locked {
		r.state.Lock = lc.Uid
	} else {
		r.state.Lock = ""
	}
	r.broadcast(&ServerEvent{Lock: &LockEvent{Uid: r.state.Lock}})
	cmd := "lock"
	if !lc.Locked {
		cmd = "unlock"
	}
	r.addChatMessage(c.id, cmd, "")
}

func (r *Room) handleSetRoomOwner(c *Client, rc *RoomOwnerChange) {
	if rc.Uid == "" || rc.Token == "" {
		return
	}
	if !r.cs.verifier.VerifyIdentity(rc.Uid, rc.Token) {
		return
	}
	if rc.Undo {
		snap := r.state.Snapshot()
		r.unicast(c, &ServerEvent{RoomState: &snap})
	}
	// Ownership transfer is acknowledged but not performed.
}

func (r *Room) handleQueueAdd(c *Client, text string) {
	if text == "" || len(text) > maxHostLength {
		return
	}

	// Metadata lookup happens off the command loop; the playlist append
	// is finalized when the result re-enters through resolveChan.
	senderId := c.id
	go func() {
		video := r.cs.media.Resolve(text)
		select {
		case r.resolveChan <- playlistResolution{senderId: senderId, text: text, video: video}:
		case <-r.done:
		}
	}()
}

func (r *Room) finishQueueAdd(res playlistResolution) {
	r.state.Playlist = append(r.state.Playlist, res.video)
	r.broadcast(&ServerEvent{Playlist: r.playlistEvent()})
	r.addChatMessage(res.senderId, "playlistAdd", res.text)
	if !r.state.Video.Active() {
		r.advancePlaylist("", "")
	}
}

func (r *Room) handleQueueNext(c *Client, qn *QueueNext) {
	if len(qn.Url) > maxHostLength {
		return
	}
	r.advancePlaylist(c.id, qn.Url)
}

// advancePlaylist records a skip vote and pops the playlist head once the
// vote threshold is met. A system-initiated call (empty voterId) always
// advances.
func (r *Room) advancePlaylist(voterId, voteUrl string) {
	if voterId != "" && voteUrl != "" && voteUrl == r.state.Video.String() {
		r.nextVotes[voterId] = voteUrl
	}

	votes := 0
	for _, entry := range r.roster {
		if r.nextVotes[entry.id] != "" {
			votes++
		}
	}
	if voterId != "" && votes < len(r.roster)/2 {
		return
	}

	var next *types.PlaylistVideo
	if len(r.state.Playlist) > 0 {
		v := r.state.Playlist[0]
		next = &v
		r.state.Playlist = slices.Delete(r.state.Playlist, 0, 1)
	}
	r.broadcast(&ServerEvent{Playlist: r.playlistEvent()})
	if next != nil {
		r.cmdHost("", VideoFromURL(next.Url))
	}
}

func (r *Room) handleQueueDelete(c *Client, index int) {
	if index < 0 || index >= len(r.state.Playlist) {
		return
	}
	r.state.Playlist = slices.Delete(r.state.Playlist, index, index+1)
	r.broadcast(&ServerEvent{Playlist: r.playlistEvent()})
}

func (r *Room) handleQueueMove(c *Client, qm *QueueMove) {
	if qm.Index < 0 || qm.Index >= len(r.state.Playlist) {
		return
	}
	if qm.ToIndex < 0 || qm.ToIndex >= len(r.state.Playlist) {
		return
	}
	item := r.state.Playlist[qm.Index]
	r.state.Playlist = slices.Delete(r.state.Playlist, qm.Index, qm.Index+1)
	r.state.Playlist = slices.Insert(r.state.Playlist, qm.ToIndex, item)
	r.broadcast(&ServerEvent{Playlist: r.playlistEvent()})
}

// handleSignal relays an opaque signaling payload to the roster entry
// matching the target clientId. Unknown targets are dropped.
func (r *Room) handleSignal(c *Client, req *SignalRequest, share bool) {
	var target *Client
	for _, entry := range r.roster {
		if entry.clientId == req.To {
			target = r.clients[entry.id]
			break
		}
	}
	if target == nil {
		return
	}

	if share {
		r.unicast(target, &ServerEvent{SignalShare: &SignalSharePayload{
			From:   c.clientId,
			Sharer: req.Sharer,
			Msg:    req.Msg,
		}})
	} else {
		r.unicast(target, &ServerEvent{Signal: &SignalPayload{
			From: c.clientId,
			Msg:  req.Msg,
		}})
	}
}

func (r *Room) handleKick(c *Client, k *KickRequest) {
	if !r.authorizeModeration(k.Uid, k.Token) {
		return
	}
	target, ok := r.clients[k.Target]
	if !ok {
		return
	}
	r.unicast(target, &ServerEvent{Kicked: &Empty{}})
	target.close()
}

func (r *Room) handleDeleteChat(c *Client, dc *DeleteChat) {
	if !r.authorizeModeration(dc.Uid, dc.Token) {
		return
	}

	if dc.Author == "" && dc.Timestamp == "" {
		r.state.Chat = r.state.Chat[:0]
	} else {
		r.state.Chat = slices.DeleteFunc(r.state.Chat, func(m types.ChatMessage) bool {
			if dc.Timestamp != "" {
				return m.Id == dc.Author && m.Timestamp == dc.Timestamp
			}
			return m.Id == dc.Author
		})
	}
	r.broadcast(&ServerEvent{ChatLog: &ChatLogEvent{Messages: slices.Clone(r.state.Chat)}})
}

// authorizeModeration gates kick and chat deletion: the claim must
// verify, and when the room records a creator, the claim must be theirs.
func (r *Room) authorizeModeration(uid, token string) bool {
	if uid == "" || token == "" {
		return false
	}
	if !r.cs.verifier.VerifyIdentity(uid, token) {
		return false
	}
	return r.state.Creator == "" || r.state.Creator == uid
}

func (r *Room) hasActiveSharer() bool {
	if !r.state.Video.IsShare() {
		return false
	}
	sharerId := r.state.Video.SharerId()
	for _, entry := range r.roster {
		if entry.clientId == sharerId {
			return true
		}
	}
	return false
}

func (r *Room) rosterFind(connId string) *rosterEntry {
	for _, entry := range r.roster {
		if entry.id == connId {
			return entry
		}
	}
	return nil
}

func (r *Room) findChatMessage(id, timestamp string) *types.ChatMessage {
	for i := range r.state.Chat {
		if r.state.Chat[i].Id == id && r.state.Chat[i].Timestamp == timestamp {
			return &r.state.Chat[i]
		}
	}
	return nil
}

func (r *Room) positionString(connId string) string {
	if ts, ok := r.positions[connId]; ok {
		return formatPosition(ts)
	}
	return ""
}

func (r *Room) hostStateEvent() *types.HostState {
	hs := r.state.hostState()
	return &hs
}

func (r *Room) positionMapEvent() *PositionMapEvent {
	positions := make(map[string]float64, len(r.positions))
	for id, ts := range r.positions {
		positions[id] = ts
	}
	return &PositionMapEvent{Positions: positions}
}

func (r *Room) playlistEvent() *PlaylistEvent {
	return &PlaylistEvent{Items: slices.Clone(r.state.Playlist)}
}

// rosterEvent derives each entry's share flag from the current video
// source; the flag is never stored on the roster itself.
func (r *Room) rosterEvent() *RosterEvent {
	sharerId := r.state.Video.SharerId()
	users := make([]types.RosterUser, len(r.roster))
	for i, entry := range r.roster {
		users[i] = types.RosterUser{
			Id:            entry.id,
			ClientId:      entry.clientId,
			IsVideoChat:   entry.isVideoChat,
			IsScreenShare: sharerId != "" && entry.clientId == sharerId,
			IsSub:         entry.isSub,
		}
	}
	return &RosterEvent{Users: users}
}

func (r *Room) buildInfo() RoomInfo {
	info := RoomInfo{
		Name:       r.name,
		Video:      r.state.Video.String(),
		RosterSize: len(r.roster),
		Snapshot:   r.state.Snapshot(),
	}
	for _, entry := range r.roster {
		if entry.isVideoChat {
			info.VideoChats++
		}
		info.Roster = append(info.Roster, RosterDetail{
			Name:     r.state.NameMap[entry.id],
			Uid:      r.uidMap[entry.id],
			Position: r.positions[entry.id],
			ClientId: entry.clientId,
		})
	}
	return info
}

// Info requests a consistent view from inside the room loop. The second
// return is false if the room has already exited.
func (r *Room) Info() (RoomInfo, bool) {
	req := infoRequest{reply: make(chan RoomInfo, 1)}
	select {
	case r.infoChan <- req:
		return <-req.reply, true
	case <-r.done:
		return RoomInfo{}, false
	}
}

// CheckPassword verifies a join attempt against the room's password
// hash. The hash is set once at creation and never mutated, so it is
// safe to read outside the command loop.
func (r *Room) CheckPassword(check func(hash []byte, password string) bool, password string) bool {
	if len(r.passwordHash) == 0 {
		return true
	}
	return check(r.passwordHash, password)
}

func (r *Room) Name() string {
	return r.name
}

func (r *Room) broadcast(ev *ServerEvent) {
	for _, c := range r.clients {
		if c == ev.skipClient {
			continue
		}
		c.queueEvent(ev)
	}
}

func (r *Room) unicast(c *Client, ev *ServerEvent) {
	c.queueEvent(ev)
}

func copyReactions(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// validNumber mirrors the wire guard on reported positions: the decimal
// form must stay within the size bound.
func validNumber(pos float64) bool {
	return len(formatPosition(pos)) <= maxNumberLength
}

func formatPosition(pos float64) string {
	return strconv.FormatFloat(pos, 'f', -1, 64)
}
