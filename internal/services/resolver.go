package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/veristudy/veristudy-backend/internal/domain"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
	"github.com/veristudy/veristudy-backend/internal/platform/youtube"
	"github.com/veristudy/veristudy-backend/internal/utils"
)

// LectureResolver turns the caller's raw input (a playlist URL, a multi-line
// "Title | url" list, or a single video URL) into the ordered lecture list.
// Resolution failure is fatal to the run.
type LectureResolver interface {
	Resolve(ctx context.Context, input string) (string, []domain.Lecture, error)
}

type lectureResolver struct {
	log *logger.Logger
	yt  youtube.Client
}

func NewLectureResolver(baseLog *logger.Logger, yt youtube.Client) LectureResolver {
	return &lectureResolver{
		log: baseLog.With("service", "LectureResolver"),
		yt:  yt,
	}
}

func (s *lectureResolver) Resolve(ctx context.Context, input string) (string, []domain.Lecture, error) {
	lines := splitLines(input)

	if playlistID := youtube.ExtractPlaylistID(input); playlistID != "" {
		return s.resolvePlaylist(ctx, playlistID)
	}

	if len(lines) > 1 {
		lectures := lecturesFromLines(lines)
		hydrated, err := s.hydrateDurations(ctx, lectures)
		if err != nil {
			return "", nil, err
		}
		return "Custom Playlist", hydrated, nil
	}

	first := ""
	if len(lines) == 1 {
		first = lines[0]
	}
	if videoID := youtube.ExtractVideoID(first); videoID != "" {
		lectures := lecturesFromLines([]string{first})
		hydrated, err := s.hydrateDurations(ctx, lectures)
		if err != nil {
			return "", nil, err
		}
		return "Custom Playlist", hydrated, nil
	}

	return "", nil, fmt.Errorf("could not parse playlist or video input")
}

func splitLines(input string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (s *lectureResolver) resolvePlaylist(ctx context.Context, playlistID string) (string, []domain.Lecture, error) {
	title, err := s.yt.PlaylistTitle(ctx, playlistID)
	if err != nil {
		return "", nil, fmt.Errorf("resolve playlist title: %w", err)
	}
	items, err := s.yt.PlaylistItems(ctx, playlistID)
	if err != nil {
		return "", nil, fmt.Errorf("resolve playlist items: %w", err)
	}
	videoIDs := make([]string, len(items))
	for i, item := range items {
		videoIDs[i] = item.VideoID
	}
	durations, err := s.yt.VideoDurations(ctx, videoIDs)
	if err != nil {
		return "", nil, fmt.Errorf("resolve video durations: %w", err)
	}

	lectures := make([]domain.Lecture, len(items))
	for i, item := range items {
		lectures[i] = domain.Lecture{
			ID:              fmt.Sprintf("lec_%s_%d", utils.Slugify(item.Title), i+1),
			Title:           item.Title,
			URL:             fmt.Sprintf("https://www.youtube.com/watch?v=%s&list=%s", item.VideoID, playlistID),
			VideoID:         item.VideoID,
			DurationSeconds: durations[item.VideoID],
			Order:           i + 1,
		}
	}
	return title, lectures, nil
}

// lecturesFromLines parses "Title | url" lines; a bare URL or id gets a
// positional title.
func lecturesFromLines(lines []string) []domain.Lecture {
	lectures := make([]domain.Lecture, len(lines))
	for i, line := range lines {
		rawTitle, rawURL := line, line
		if strings.Contains(line, "|") {
			parts := strings.SplitN(line, "|", 2)
			rawTitle = strings.TrimSpace(parts[0])
			rawURL = strings.TrimSpace(parts[1])
		}
		u := rawURL
		if !strings.HasPrefix(u, "http") {
			u = "https://www.youtube.com/watch?v=" + rawURL
		}
		videoID := youtube.ExtractVideoID(u)
		if videoID == "" {
			videoID = fmt.Sprintf("custom_%d", i+1)
		}
		title := rawTitle
		if strings.HasPrefix(title, "http") {
			title = fmt.Sprintf("Lecture %d", i+1)
		}
		lectures[i] = domain.Lecture{
			ID:      fmt.Sprintf("lec_%s_%d", utils.Slugify(title), i+1),
			Title:   title,
			URL:     u,
			VideoID: videoID,
			Order:   i + 1,
		}
	}
	return lectures
}

func (s *lectureResolver) hydrateDurations(ctx context.Context, lectures []domain.Lecture) ([]domain.Lecture, error) {
	videoIDs := make([]string, len(lectures))
	for i, lecture := range lectures {
		videoIDs[i] = lecture.VideoID
	}
	durations, err := s.yt.VideoDurations(ctx, videoIDs)
	if err != nil {
		return nil, fmt.Errorf("hydrate lecture durations: %w", err)
	}
	out := make([]domain.Lecture, len(lectures))
	for i, lecture := range lectures {
		if d, ok := durations[lecture.VideoID]; ok {
			lecture.DurationSeconds = d
		}
		out[i] = lecture
	}
	return out, nil
}
