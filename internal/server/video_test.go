package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ParseVideoSource(t *testing.T) {
	tt := []struct {
		name     string
		input    string
		kind     VideoKind
		sharerId string
	}{
		{name: "empty", input: "", kind: VideoNone},
		{name: "url", input: "https://example.com/v.mp4", kind: VideoURL},
		{name: "screen share", input: "screenshare://client1", kind: VideoScreenShare, sharerId: "client1"},
		{name: "file share", input: "fileshare://client2", kind: VideoFileShare, sharerId: "client2"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			v := ParseVideoSource(tc.input)
			assert.Equal(t, tc.kind, v.Kind())
			assert.Equal(t, tc.sharerId, v.SharerId())
			assert.Equal(t, tc.input, v.String(), "expected the string form to round trip")
		})
	}
}

func Test_VideoSource_Active(t *testing.T) {
	assert.False(t, NoVideo().Active())
	assert.False(t, VideoFromURL("").Active())
	assert.True(t, VideoFromURL("https://example.com/v.mp4").Active())
	assert.True(t, ScreenShareSource("client1").Active())
}

func Test_VideoSource_IsShare(t *testing.T) {
	assert.False(t, NoVideo().IsShare())
	assert.False(t, VideoFromURL("https://example.com/v.mp4").IsShare())
	assert.True(t, ScreenShareSource("client1").IsShare())
	assert.True(t, FileShareSource("client1").IsShare())
}
