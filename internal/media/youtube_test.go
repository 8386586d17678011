package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcast/couchcast/internal/testutil"
)

func Test_ExtractVideoId(t *testing.T) {
	tt := []struct {
		name  string
		input string
		want  string
	}{
		{name: "watch url", input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "watch url with extra params", input: "https://www.youtube.com/watch?list=PL1&v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "short url", input: "https://youtu.be/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "embed url", input: "https://www.youtube.com/embed/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "shorts url", input: "https://www.youtube.com/shorts/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "plain url", input: "https://example.com/v.mp4", want: ""},
		{name: "free text", input: "funny cat video", want: ""},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractVideoId(tc.input))
		})
	}
}

func Test_parseISODuration(t *testing.T) {
	tt := []struct {
		input string
		want  float64
	}{
		{input: "PT3M20S", want: 200},
		{input: "PT1H2M3S", want: 3723},
		{input: "PT45S", want: 45},
		{input: "PT2H", want: 7200},
		{input: "garbage", want: 0},
		{input: "", want: 0},
	}

	for _, tc := range tt {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, parseISODuration(tc.input))
		})
	}
}

func Test_Resolve_fetchesMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos", r.URL.Path)
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("id"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Write([]byte(`{"items":[{"id":"dQw4w9WgXcQ",
			"snippet":{"title":"Some Song","channelTitle":"Some Channel"},
			"contentDetails":{"duration":"PT3M33S"}}]}`))
	}))
	defer srv.Close()

	yt := NewYouTubeClient("test-key", testutil.TestLogger(t))
	yt.baseURL = srv.URL

	video := yt.Resolve("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	assert.Equal(t, "Some Song", video.Name)
	assert.Equal(t, "Some Channel", video.Channel)
	assert.Equal(t, float64(213), video.Duration)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", video.Url)
}

func Test_Resolve_fallsBackToRawEntry(t *testing.T) {
	t.Run("no video id", func(t *testing.T) {
		yt := NewYouTubeClient("test-key", testutil.TestLogger(t))
		video := yt.Resolve("https://example.com/v.mp4")
		assert.Equal(t, "https://example.com/v.mp4", video.Url)
		assert.Equal(t, "Video URL", video.Channel)
	})

	t.Run("no api key", func(t *testing.T) {
		yt := NewYouTubeClient("", testutil.TestLogger(t))
		video := yt.Resolve("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		assert.Equal(t, "Video URL", video.Channel)
	})

	t.Run("lookup failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		yt := NewYouTubeClient("test-key", testutil.TestLogger(t))
		yt.baseURL = srv.URL
		video := yt.Resolve("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		assert.Equal(t, "Video URL", video.Channel)
		assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", video.Url)
	})

	t.Run("video not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items":[]}`))
		}))
		defer srv.Close()

		yt := NewYouTubeClient("test-key", testutil.TestLogger(t))
		yt.baseURL = srv.URL
		video := yt.Resolve("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		assert.Equal(t, "Video URL", video.Channel)
	})
}

func Test_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "cats", r.URL.Query().Get("q"))
		w.Write([]byte(`{"items":[
			{"id":{"videoId":"aaaaaaaaaaa"},"snippet":{"title":"Cat One","channelTitle":"Cats"}},
			{"id":{"videoId":"bbbbbbbbbbb"},"snippet":{"title":"Cat Two","channelTitle":"Cats"}}]}`))
	}))
	defer srv.Close()

	yt := NewYouTubeClient("test-key", testutil.TestLogger(t))
	yt.baseURL = srv.URL

	results, err := yt.Search(context.Background(), "cats")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Cat One", results[0].Name)
	assert.Equal(t, "https://www.youtube.com/watch?v=aaaaaaaaaaa", results[0].Url)
}

func Test_Search_requiresKey(t *testing.T) {
	yt := NewYouTubeClient("", testutil.TestLogger(t))
	_, err := yt.Search(context.Background(), "cats")
	assert.Error(t, err)
}
