package services

import (
	"math"
	"strings"

	"github.com/veristudy/veristudy-backend/internal/domain"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
	"github.com/veristudy/veristudy-backend/internal/utils"
)

// ExamService assembles the timed mock exam and grades submitted answers.
type ExamService interface {
	Assemble(questions []domain.Question, requestedSize int, title string) domain.Exam
	Grade(question domain.Question, answer string, record domain.MasteryRecord) domain.GradeResult
}

type examService struct {
	log     *logger.Logger
	mastery MasteryService
}

func NewExamService(baseLog *logger.Logger, mastery MasteryService) ExamService {
	return &examService{
		log:     baseLog.With("service", "ExamService"),
		mastery: mastery,
	}
}

// Assemble takes the first clamp(requestedSize, 3, len(questions)) questions
// in their given order; no re-ranking by difficulty or verification status.
// With fewer than 3 questions available it selects all of them; the lower
// bound only raises small requests, it never fabricates padding. Total time
// is the selected time budget rounded up to whole minutes, packaged as one
// section whose budget equals the exam total.
func (s *examService) Assemble(questions []domain.Question, requestedSize int, title string) domain.Exam {
	size := requestedSize
	if size < 3 {
		size = 3
	}
	if size > len(questions) {
		size = len(questions)
	}
	selected := questions[:size]

	totalSeconds := 0
	ids := make([]string, len(selected))
	for i, q := range selected {
		totalSeconds += q.TimeSeconds
		ids[i] = q.ID
	}
	totalMinutes := int(math.Ceil(float64(totalSeconds) / 60))

	return domain.Exam{
		ID:               utils.MakeID("exam"),
		Title:            title,
		TotalTimeMinutes: totalMinutes,
		Sections: []domain.ExamSection{
			{
				Title:       "Mixed Practice",
				QuestionIDs: ids,
				TimeMinutes: totalMinutes,
			},
		},
	}
}

// Grade checks one submitted answer against the question's canonical answer,
// applies the mastery transition, and packages the learner-facing result.
func (s *examService) Grade(question domain.Question, answer string, record domain.MasteryRecord) domain.GradeResult {
	normalized := utils.NormalizeAnswer(answer)
	correct := false

	switch question.Type {
	case domain.QuestionMCQ:
		for _, option := range question.Options {
			if utils.NormalizeAnswer(option.Text) == normalized || strings.EqualFold(option.ID, normalized) {
				correct = option.Text == question.Answer
				break
			}
		}
	case domain.QuestionTrueFalse:
		correct = normalized == utils.NormalizeAnswer(question.Answer)
	default:
		expected := utils.NormalizeAnswer(question.Answer)
		correct = normalized != "" &&
			(strings.Contains(expected, normalized) || strings.Contains(normalized, expected))
	}

	updated := s.mastery.Update(record, correct)
	return domain.GradeResult{
		QuestionID:    question.ID,
		Correct:       correct,
		CorrectAnswer: question.Answer,
		Explanation:   question.Rationale,
		Citations:     question.Citations,
		Mastery:       updated,
	}
}
