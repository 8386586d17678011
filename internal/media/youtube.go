package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/couchcast/couchcast/internal/types"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Resolver turns free text into playable playlist entries and serves
// video search. Lookup failures degrade to raw-URL entries; they never
// fail the calling operation.
type Resolver interface {
	Resolve(text string) types.PlaylistVideo
	Search(ctx context.Context, query string) ([]types.PlaylistVideo, error)
}

var videoIdRe = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|embed/|shorts/)|youtu\.be/)([\w-]{11})`)

// ExtractVideoId returns the platform video id embedded in text, or ""
// when the text doesn't reference a known watch URL.
func ExtractVideoId(text string) string {
	m := videoIdRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

type YouTubeClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     *log.Logger
}

func NewYouTubeClient(apiKey string, logger *log.Logger) *YouTubeClient {
	return &YouTubeClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     logger,
	}
}

// rawEntry is the fallback playlist entry for text that isn't a known
// platform video, or when the lookup fails.
func rawEntry(text string) types.PlaylistVideo {
	return types.PlaylistVideo{
		Name:     text,
		Channel:  "Video URL",
		Duration: 0,
		Url:      text,
	}
}

func (yt *YouTubeClient) Resolve(text string) types.PlaylistVideo {
	videoId := ExtractVideoId(text)
	if videoId == "" || yt.apiKey == "" {
		return rawEntry(text)
	}

	video, err := yt.fetchVideo(videoId)
	if err != nil {
		yt.log.Printf("video lookup for %q: %v", videoId, err)
		return rawEntry(text)
	}
	return video
}

type videoListResponse struct {
	Items []struct {
		Id      string `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

func (yt *YouTubeClient) fetchVideo(videoId string) (types.PlaylistVideo, error) {
	q := url.Values{}
	q.Set("part", "snippet,contentDetails")
	q.Set("id", videoId)
	q.Set("key", yt.apiKey)

	var resp videoListResponse
	if err := yt.getJSON(context.Background(), "/videos", q, &resp); err != nil {
		return types.PlaylistVideo{}, err
	}
	if len(resp.Items) == 0 {
		return types.PlaylistVideo{}, fmt.Errorf("video %q not found", videoId)
	}

	item := resp.Items[0]
	return types.PlaylistVideo{
		Name:     item.Snippet.Title,
		Channel:  item.Snippet.ChannelTitle,
		Duration: parseISODuration(item.ContentDetails.Duration),
		Url:      "https://www.youtube.com/watch?v=" + videoId,
	}, nil
}

type searchResponse struct {
	Items []struct {
		Id struct {
			VideoId string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

func (yt *YouTubeClient) Search(ctx context.Context, query string) ([]types.PlaylistVideo, error) {
	if yt.apiKey == "" {
		return nil, fmt.Errorf("no API key configured")
	}

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("type", "video")
	q.Set("maxResults", "25")
	q.Set("q", query)
	q.Set("key", yt.apiKey)

	var resp searchResponse
	if err := yt.getJSON(ctx, "/search", q, &resp); err != nil {
		return nil, err
	}

	results := make([]types.PlaylistVideo, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, types.PlaylistVideo{
			Name:    item.Snippet.Title,
			Channel: item.Snippet.ChannelTitle,
			Url:     "https://www.youtube.com/watch?v=" + item.Id.VideoId,
		})
	}
	return results, nil
}

func (yt *YouTubeClient) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, yt.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := yt.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var durationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts the API's ISO-8601 durations (PT1H2M3S) to
// seconds. Malformed input parses as 0.
func parseISODuration(s string) float64 {
	m := durationRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(zeroIfEmpty(m[1]))
	minutes, _ := strconv.Atoi(zeroIfEmpty(m[2]))
	seconds, _ := strconv.Atoi(zeroIfEmpty(m[3]))
	return float64(hours*3600 + minutes*60 + seconds)
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
