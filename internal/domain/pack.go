package domain

import "time"

// PackOptions are the caller-supplied knobs for one generation run.
type PackOptions struct {
	ExamSize            int      `json:"exam_size"`
	Language            string   `json:"language"`
	IncludeResearch     bool     `json:"include_research"`
	QuestionsPerLecture int      `json:"questions_per_lecture"`
	InterLectureDelayMs int      `json:"inter_lecture_delay_ms"`
	ResearchSources     []string `json:"research_sources,omitempty"`
	VaultNotes          string   `json:"vault_notes,omitempty"`
	ExamDate            string   `json:"exam_date,omitempty"`
}

// NormalizePackOptions fills unset fields with defaults.
func NormalizePackOptions(o PackOptions) PackOptions {
	if o.ExamSize <= 0 {
		o.ExamSize = 12
	}
	if o.Language == "" {
		o.Language = "en"
	}
	if o.QuestionsPerLecture <= 0 {
		o.QuestionsPerLecture = 4
	}
	if o.InterLectureDelayMs <= 0 {
		o.InterLectureDelayMs = 150
	}
	return o
}

// Pack is the terminal aggregate of one successful run. Written once; only
// the exports and mastery maps are touched by later flows.
type Pack struct {
	ID        string                   `json:"id"`
	Title     string                   `json:"title"`
	Input     string                   `json:"input"`
	CreatedAt time.Time                `json:"created_at"`
	Blueprint Blueprint                `json:"blueprint"`
	Notes     []NoteDocument           `json:"notes"`
	Questions []Question               `json:"questions"`
	Exam      Exam                     `json:"exam"`
	Mastery   map[string]MasteryRecord `json:"mastery"`
	Research  *ResearchReport          `json:"research,omitempty"`
	Exports   map[string]string        `json:"exports"`
}
