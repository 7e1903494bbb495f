package domain

// Lecture is one unit of source content, immutable once resolved.
type Lecture struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	URL             string `json:"url"`
	VideoID         string `json:"video_id"`
	DurationSeconds int    `json:"duration_seconds"`
	Order           int    `json:"order"`
}

// TranscriptSegment is a timed caption line, ordered by start offset.
type TranscriptSegment struct {
	Start     float64 `json:"start"`
	Duration  float64 `json:"duration"`
	End       float64 `json:"end"`
	Text      string  `json:"text"`
	Timestamp string  `json:"timestamp"`
}
