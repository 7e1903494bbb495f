package domain

// Citation anchors generated content back to a transcript timestamp.
type Citation struct {
	Label     string `json:"label"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
	URL       string `json:"url"`
	Snippet   string `json:"snippet,omitempty"`
}

type NoteSection struct {
	Heading string   `json:"heading"`
	Bullets []string `json:"bullets"`
}

// NoteDocument is the per-lecture study note. Exactly one exists per lecture
// in a finished pack; a lecture whose generation failed gets a placeholder
// with Verified=false and the failure reason in VerificationNotes.
type NoteDocument struct {
	LectureID         string        `json:"lecture_id"`
	LectureTitle      string        `json:"lecture_title"`
	LectureURL        string        `json:"lecture_url"`
	VideoID           string        `json:"video_id"`
	Summary           string        `json:"summary"`
	Sections          []NoteSection `json:"sections"`
	KeyTakeaways      []string      `json:"key_takeaways"`
	Citations         []Citation    `json:"citations"`
	Verified          bool          `json:"verified"`
	VerificationNotes []string      `json:"verification_notes"`
}
