package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/veristudy/veristudy-backend/internal/domain"
	"github.com/veristudy/veristudy-backend/internal/platform/gemini"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
)

// QuestionBankService generates a fixed-size batch of candidate exam
// questions from one note document. Questions come back unverified; the
// verification stage flags them individually.
type QuestionBankService interface {
	GenerateForNote(ctx context.Context, note domain.NoteDocument, perLecture int, model string, extraContext string) ([]domain.Question, error)
	RegenerateQuestion(ctx context.Context, note domain.NoteDocument, original domain.Question, model string) (domain.Question, error)
}

type questionBankService struct {
	log *logger.Logger
	ai  gemini.Client
}

func NewQuestionBankService(baseLog *logger.Logger, ai gemini.Client) QuestionBankService {
	return &questionBankService{
		log: baseLog.With("service", "QuestionBankService"),
		ai:  ai,
	}
}

type questionPayload struct {
	Questions []struct {
		Type        string   `json:"type"`
		Difficulty  string   `json:"difficulty"`
		Bloom       string   `json:"bloom"`
		TimeSeconds int      `json:"time_seconds"`
		Tags        []string `json:"tags"`
		Stem        string   `json:"stem"`
		Options     []struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"options"`
		Answer    string        `json:"answer"`
		Rationale string        `json:"rationale"`
		Citations []rawCitation `json:"citations"`
	} `json:"questions"`
}

func (s *questionBankService) GenerateForNote(ctx context.Context, note domain.NoteDocument, perLecture int, model string, extraContext string) ([]domain.Question, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d exam questions based strictly on the lecture notes.\n", perLecture)
	fmt.Fprintf(&b, "Lecture: %s\n", note.LectureTitle)
	fmt.Fprintf(&b, "Notes summary: %s\n", note.Summary)
	fmt.Fprintf(&b, "Key takeaways: %s\n", strings.Join(note.KeyTakeaways, " | "))
	b.WriteString("Use the timestamps in citations. Include options only for mcq questions.\n")
	if extraContext != "" {
		fmt.Fprintf(&b, "Additional context:\n%s\n", extraContext)
	}
	b.WriteString("Return JSON matching the schema.")

	var payload questionPayload
	err := s.ai.GenerateJSON(ctx, b.String(), questionBankSchema(), gemini.Options{
		Model:           model,
		Temperature:     0.45,
		MaxOutputTokens: 1800,
	}, &payload)
	if err != nil {
		return nil, fmt.Errorf("generate questions for %s: %w", note.LectureTitle, err)
	}

	questions := make([]domain.Question, 0, len(payload.Questions))
	for i, item := range payload.Questions {
		tags := item.Tags
		if !containsString(tags, note.LectureTitle) {
			tags = append(tags, note.LectureTitle)
		}
		options := make([]domain.QuestionOption, 0, len(item.Options))
		if domain.QuestionType(item.Type) == domain.QuestionMCQ {
			for _, opt := range item.Options {
				options = append(options, domain.QuestionOption{ID: opt.ID, Text: opt.Text})
			}
		}
		questions = append(questions, domain.Question{
			ID:          fmt.Sprintf("q_%s_%d", note.LectureID, i+1),
			Type:        domain.QuestionType(item.Type),
			Difficulty:  item.Difficulty,
			Bloom:       item.Bloom,
			TimeSeconds: item.TimeSeconds,
			Tags:        tags,
			Stem:        item.Stem,
			Options:     options,
			Answer:      item.Answer,
			Rationale:   item.Rationale,
			Citations:   attachLectureAll(note.LectureTitle, note.LectureURL, item.Citations),
			Verified:    false,
		})
	}
	return questions, nil
}

// RegenerateQuestion rewrites one question that failed verification, keeping
// its id, type, and topic but regrounding stem, answer, and rationale in the
// note. Used by the verification retry stage with an escalated model tier.
func (s *questionBankService) RegenerateQuestion(ctx context.Context, note domain.NoteDocument, original domain.Question, model string) (domain.Question, error) {
	var b strings.Builder
	b.WriteString("Rewrite the following exam question so every part of it is strictly supported by the lecture notes.\n")
	fmt.Fprintf(&b, "Keep the question type (%s) and topic. Fix or replace unsupported claims.\n", original.Type)
	fmt.Fprintf(&b, "Lecture: %s\n", note.LectureTitle)
	fmt.Fprintf(&b, "Notes summary: %s\n", note.Summary)
	fmt.Fprintf(&b, "Key takeaways: %s\n", strings.Join(note.KeyTakeaways, " | "))
	fmt.Fprintf(&b, "Original question: %s\nOriginal answer: %s\n", original.Stem, original.Answer)
	b.WriteString("Return JSON matching the schema with exactly one question.")

	var payload questionPayload
	err := s.ai.GenerateJSON(ctx, b.String(), questionBankSchema(), gemini.Options{
		Model:           model,
		Temperature:     0.3,
		MaxOutputTokens: 900,
	}, &payload)
	if err != nil {
		return domain.Question{}, fmt.Errorf("regenerate question %s: %w", original.ID, err)
	}
	if len(payload.Questions) == 0 {
		return domain.Question{}, fmt.Errorf("regenerate question %s: empty batch", original.ID)
	}

	item := payload.Questions[0]
	options := make([]domain.QuestionOption, 0, len(item.Options))
	if domain.QuestionType(item.Type) == domain.QuestionMCQ {
		for _, opt := range item.Options {
			options = append(options, domain.QuestionOption{ID: opt.ID, Text: opt.Text})
		}
	}
	out := original
	out.Type = domain.QuestionType(item.Type)
	out.Difficulty = item.Difficulty
	out.Bloom = item.Bloom
	out.TimeSeconds = item.TimeSeconds
	out.Stem = item.Stem
	out.Options = options
	out.Answer = item.Answer
	out.Rationale = item.Rationale
	out.Citations = attachLectureAll(note.LectureTitle, note.LectureURL, item.Citations)
	out.Verified = false
	return out, nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
