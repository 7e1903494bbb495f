package domain

type QuestionType string

const (
	QuestionMCQ         QuestionType = "mcq"
	QuestionTrueFalse   QuestionType = "true_false"
	QuestionShortAnswer QuestionType = "short_answer"
)

type QuestionOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is one exam-bank item. Options is populated only for the mcq
// variant; the other variants carry just the canonical Answer.
type Question struct {
	ID                string           `json:"id"`
	Type              QuestionType     `json:"type"`
	Difficulty        string           `json:"difficulty"`
	Bloom             string           `json:"bloom"`
	TimeSeconds       int              `json:"time_seconds"`
	Tags              []string         `json:"tags"`
	Stem              string           `json:"stem"`
	Options           []QuestionOption `json:"options,omitempty"`
	Answer            string           `json:"answer"`
	Rationale         string           `json:"rationale"`
	Citations         []Citation       `json:"citations"`
	Verified          bool             `json:"verified"`
	VerificationNotes []string         `json:"verification_notes,omitempty"`
}
