package server

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcast/couchcast/internal/types"
)

func Test_Snapshot_abbreviatesMaps(t *testing.T) {
	s := NewSessionState()
	s.Chat = []types.ChatMessage{
		{Id: "conn1", Msg: "hi", Timestamp: Now()},
	}
	s.NameMap = map[string]string{
		"conn1": "alice",
		"conn2": "lurker",
	}
	s.PictureMap = map[string]string{
		"conn2": "data:image/png;base64,AAAA",
	}

	snap := s.Snapshot()

	assert.Equal(t, map[string]string{"conn1": "alice"}, snap.NameMap,
		"expected only chat participants in the persisted name map")
	assert.Empty(t, snap.PictureMap,
		"expected non-participant pictures dropped")
}

func Test_Serialize_roundTrip(t *testing.T) {
	s := NewSessionState()
	s.Video = VideoFromURL("https://example.com/v.mp4")
	s.VideoTS = 123.5
	s.Subtitle = "WEBVTT"
	s.Paused = true
	s.Lock = "owner-uid"
	s.Creator = "creator-uid"
	s.Chat = []types.ChatMessage{
		{Id: "conn1", Msg: "hi", Timestamp: Now()},
	}
	s.NameMap = map[string]string{"conn1": "alice"}
	s.Playlist = []types.PlaylistVideo{
		{Name: "next", Channel: "chan", Duration: 60, Url: "https://example.com/next.mp4"},
	}

	data, err := s.Serialize()
	require.NoError(t, err)

	restored := NewSessionState()
	require.NoError(t, restored.RestoreJSON(data))

	assert.Equal(t, s.Video, restored.Video)
	assert.Equal(t, s.VideoTS, restored.VideoTS)
	assert.Equal(t, s.Subtitle, restored.Subtitle)
	assert.Equal(t, s.Paused, restored.Paused)
	assert.Equal(t, s.Lock, restored.Lock)
	assert.Equal(t, s.Creator, restored.Creator)
	assert.Equal(t, s.Chat, restored.Chat)
	assert.Equal(t, s.NameMap, restored.NameMap)
	assert.Equal(t, s.Playlist, restored.Playlist)

	data2, err := restored.Serialize()
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(data2),
		"expected a restored state to serialize identically")
}

func Test_Snapshot_independentOfLiveState(t *testing.T) {
	s := NewSessionState()
	s.Chat = []types.ChatMessage{
		{Id: "conn1", Msg: "first", Timestamp: Now()},
		{Id: "conn1", Msg: "second", Timestamp: Now()},
		{Id: "conn2", Msg: "third", Timestamp: Now()},
	}
	s.Playlist = []types.PlaylistVideo{
		{Name: "a", Url: "a"},
		{Name: "b", Url: "b"},
	}

	snap := s.Snapshot()

	// In-place edits to live state must not show through the snapshot.
	s.Chat = slices.Delete(s.Chat, 0, 1)
	s.Chat[0].Msg = "overwritten"
	s.Playlist = slices.Delete(s.Playlist, 0, 1)

	require.Len(t, snap.Chat, 3)
	assert.Equal(t, "first", snap.Chat[0].Msg)
	assert.Equal(t, "second", snap.Chat[1].Msg)
	require.Len(t, snap.Playlist, 2)
	assert.Equal(t, "a", snap.Playlist[0].Name)
}

func Test_Restore_keepsDefaultsForAbsentFields(t *testing.T) {
	s := NewSessionState()
	require.NoError(t, s.RestoreJSON([]byte(`{"video":"","videoTS":0}`)))

	assert.False(t, s.Video.Active())
	assert.NotNil(t, s.Chat, "expected the chat log to stay initialized")
	assert.NotNil(t, s.NameMap)
	assert.NotNil(t, s.PictureMap)
	assert.NotNil(t, s.Playlist)
	assert.Empty(t, s.Lock)
}

func Test_Restore_shareVideoSource(t *testing.T) {
	s := NewSessionState()
	require.NoError(t, s.RestoreJSON([]byte(`{"video":"screenshare://client1","videoTS":10}`)))

	assert.Equal(t, VideoScreenShare, s.Video.Kind())
	assert.Equal(t, "client1", s.Video.SharerId())
	assert.Equal(t, float64(10), s.VideoTS)
}

func Test_RestoreJSON_invalid(t *testing.T) {
	s := NewSessionState()
	assert.Error(t, s.RestoreJSON([]byte("not json")))
}
