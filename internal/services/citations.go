package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/veristudy/veristudy-backend/internal/domain"
)

// rawCitation is the shape the generation schemas produce before the lecture
// context is attached.
type rawCitation struct {
	Label     string `json:"label"`
	Timestamp string `json:"timestamp"`
	Snippet   string `json:"snippet"`
}

func timestampToSeconds(timestamp string) int {
	parts := strings.SplitN(timestamp, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	min, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	sec, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0
	}
	return min*60 + sec
}

// attachLecture resolves a model-produced citation against its source
// lecture, deep-linking the URL at the cited timestamp.
func attachLecture(lectureTitle, lectureURL string, raw rawCitation) domain.Citation {
	seconds := timestampToSeconds(raw.Timestamp)
	return domain.Citation{
		Label:     raw.Label,
		Timestamp: raw.Timestamp,
		Source:    lectureTitle,
		URL:       fmt.Sprintf("%s&t=%ds", lectureURL, seconds),
		Snippet:   raw.Snippet,
	}
}

func attachLectureAll(lectureTitle, lectureURL string, raws []rawCitation) []domain.Citation {
	out := make([]domain.Citation, len(raws))
	for i, raw := range raws {
		out[i] = attachLecture(lectureTitle, lectureURL, raw)
	}
	return out
}
