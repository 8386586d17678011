package server

import "strings"

const (
	screenSharePrefix = "screenshare://"
	fileSharePrefix   = "fileshare://"
)

type VideoKind int

const (
	VideoNone VideoKind = iota
	VideoURL
	VideoScreenShare
	VideoFileShare
)

// VideoSource is the room's current video as a tagged variant. The string
// forms "screenshare://<clientId>" and "fileshare://<clientId>" only exist
// at the wire and persistence boundaries.
type VideoSource struct {
	kind  VideoKind
	value string // URL, or the sharer's clientId for share variants
}

func NoVideo() VideoSource {
	return VideoSource{}
}

func VideoFromURL(url string) VideoSource {
	if url == "" {
		return VideoSource{}
	}
	return VideoSource{kind: VideoURL, value: url}
}

func ScreenShareSource(clientId string) VideoSource {
	return VideoSource{kind: VideoScreenShare, value: clientId}
}

func FileShareSource(clientId string) VideoSource {
	return VideoSource{kind: VideoFileShare, value: clientId}
}

// ParseVideoSource decodes the serialized string form of a video source.
func ParseVideoSource(s string) VideoSource {
	switch {
	case s == "":
		return VideoSource{}
	case strings.HasPrefix(s, screenSharePrefix):
		return ScreenShareSource(strings.TrimPrefix(s, screenSharePrefix))
	case strings.HasPrefix(s, fileSharePrefix):
		return FileShareSource(strings.TrimPrefix(s, fileSharePrefix))
	default:
		return VideoSource{kind: VideoURL, value: s}
	}
}

// String returns the serialized form sent to clients and the store.
func (v VideoSource) String() string {
	switch v.kind {
	case VideoURL:
		return v.value
	case VideoScreenShare:
		return screenSharePrefix + v.value
	case VideoFileShare:
		return fileSharePrefix + v.value
	default:
		return ""
	}
}

func (v VideoSource) Kind() VideoKind {
	return v.kind
}

// Active reports whether any video source is set.
func (v VideoSource) Active() bool {
	return v.kind != VideoNone
}

// SharerId returns the sharing participant's clientId, or "" when the
// source is not a screen or file share.
func (v VideoSource) SharerId() string {
	if v.kind == VideoScreenShare || v.kind == VideoFileShare {
		return v.value
	}
	return ""
}

func (v VideoSource) IsShare() bool {
	return v.kind == VideoScreenShare || v.kind == VideoFileShare
}
