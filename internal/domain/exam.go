package domain

type ExamSection struct {
	Title       string   `json:"title"`
	QuestionIDs []string `json:"question_ids"`
	TimeMinutes int      `json:"time_minutes"`
}

// Exam is the timed mock exam. TotalTimeMinutes equals the sum of section
// times; section question ids reference only questions present in the pack.
type Exam struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	TotalTimeMinutes int           `json:"total_time_minutes"`
	Sections         []ExamSection `json:"sections"`
}

// GradeResult is returned when a learner submits an answer for one question.
type GradeResult struct {
	QuestionID    string        `json:"question_id"`
	Correct       bool          `json:"correct"`
	CorrectAnswer string        `json:"correct_answer"`
	Explanation   string        `json:"explanation"`
	Citations     []Citation    `json:"citations"`
	Mastery       MasteryRecord `json:"mastery"`
}
