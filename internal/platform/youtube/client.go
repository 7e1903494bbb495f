package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/veristudy/veristudy-backend/internal/platform/logger"
)

// Client wraps the YouTube Data API calls the lecture resolver needs:
// playlist title, playlist items, and video durations.
type Client interface {
	PlaylistTitle(ctx context.Context, playlistID string) (string, error)
	PlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItem, error)
	VideoDurations(ctx context.Context, videoIDs []string) (map[string]int, error)
}

type PlaylistItem struct {
	VideoID string
	Title   string
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := os.Getenv("YOUTUBE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing YOUTUBE_API_KEY")
	}
	baseURL := os.Getenv("YOUTUBE_BASE_URL")
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/youtube/v3"
	}
	return &client{
		log:        log.With("service", "YouTubeClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

var videoIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{10,}$`)

// ExtractPlaylistID pulls a playlist id from a URL or accepts a bare id.
func ExtractPlaylistID(input string) string {
	if u, err := url.Parse(strings.TrimSpace(input)); err == nil {
		if list := u.Query().Get("list"); list != "" {
			return list
		}
	}
	in := strings.TrimSpace(input)
	if strings.HasPrefix(in, "PL") || strings.HasPrefix(in, "UU") || strings.HasPrefix(in, "OL") {
		return in
	}
	return ""
}

// ExtractVideoID pulls a video id from watch/short URLs or accepts a bare id.
func ExtractVideoID(input string) string {
	in := strings.TrimSpace(input)
	if u, err := url.Parse(in); err == nil && u.Host != "" {
		if u.Host == "youtu.be" {
			return strings.TrimPrefix(u.Path, "/")
		}
		if v := u.Query().Get("v"); v != "" {
			return v
		}
		return ""
	}
	if videoIDPattern.MatchString(in) {
		return in
	}
	return ""
}

var isoDurationPattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ParseISODuration converts an ISO-8601 duration like PT1H2M3S to seconds.
func ParseISODuration(duration string) int {
	m := isoDurationPattern.FindStringSubmatch(duration)
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	return h*3600 + min*60 + s
}

func (c *client) fetchJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("youtube api error %d: %s", resp.StatusCode, string(raw))
	}
	return json.Unmarshal(raw, out)
}

func (c *client) PlaylistTitle(ctx context.Context, playlistID string) (string, error) {
	u := fmt.Sprintf("%s/playlists?part=snippet&id=%s&key=%s", c.baseURL, url.QueryEscape(playlistID), c.apiKey)
	var data struct {
		Items []struct {
			Snippet struct {
				Title string `json:"title"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := c.fetchJSON(ctx, u, &data); err != nil {
		return "", err
	}
	if len(data.Items) == 0 || data.Items[0].Snippet.Title == "" {
		return "YouTube Playlist", nil
	}
	return data.Items[0].Snippet.Title, nil
}

func (c *client) PlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItem, error) {
	var items []PlaylistItem
	pageToken := ""
	for {
		u := fmt.Sprintf("%s/playlistItems?part=snippet,contentDetails&playlistId=%s&maxResults=50&key=%s",
			c.baseURL, url.QueryEscape(playlistID), c.apiKey)
		if pageToken != "" {
			u += "&pageToken=" + url.QueryEscape(pageToken)
		}
		var data struct {
			NextPageToken string `json:"nextPageToken"`
			Items         []struct {
				Snippet struct {
					Title string `json:"title"`
				} `json:"snippet"`
				ContentDetails struct {
					VideoID string `json:"videoId"`
				} `json:"contentDetails"`
			} `json:"items"`
		}
		if err := c.fetchJSON(ctx, u, &data); err != nil {
			return nil, err
		}
		for _, item := range data.Items {
			title := item.Snippet.Title
			if item.ContentDetails.VideoID == "" || title == "" || title == "Private video" || title == "Deleted video" {
				continue
			}
			items = append(items, PlaylistItem{VideoID: item.ContentDetails.VideoID, Title: title})
		}
		if data.NextPageToken == "" {
			return items, nil
		}
		pageToken = data.NextPageToken
	}
}

func (c *client) VideoDurations(ctx context.Context, videoIDs []string) (map[string]int, error) {
	durations := make(map[string]int, len(videoIDs))
	// videos endpoint caps at 50 ids per call
	for i := 0; i < len(videoIDs); i += 50 {
		end := i + 50
		if end > len(videoIDs) {
			end = len(videoIDs)
		}
		u := fmt.Sprintf("%s/videos?part=contentDetails&id=%s&key=%s",
			c.baseURL, url.QueryEscape(strings.Join(videoIDs[i:end], ",")), c.apiKey)
		var data struct {
			Items []struct {
				ID             string `json:"id"`
				ContentDetails struct {
					Duration string `json:"duration"`
				} `json:"contentDetails"`
			} `json:"items"`
		}
		if err := c.fetchJSON(ctx, u, &data); err != nil {
			return nil, err
		}
		for _, item := range data.Items {
			durations[item.ID] = ParseISODuration(item.ContentDetails.Duration)
		}
	}
	return durations, nil
}
