package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/veristudy/veristudy-backend/internal/domain"
	"github.com/veristudy/veristudy-backend/internal/platform/gemini"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
)

// Verdict is the outcome of one verification call.
type Verdict struct {
	Supported bool
	Issues    []string
}

// EscalateFunc maps a model tier to the stronger tier used for the single
// regeneration attempt. Injected so the retry stage stays tier-agnostic.
type EscalateFunc func(tier string) string

// VerifyWithRetry runs the verification stage shared by notes and questions:
// verify, regenerate at most once, verify again. The candidate has already been
// generated with baseTier. If the first verdict is unsupported, the content
// is regenerated exactly once with escalate(baseTier) and the second verdict
// is final whatever it says; content is never dropped here. A hard error
// from either collaborator call propagates to the caller.
func VerifyWithRetry[T any](
	ctx context.Context,
	candidate T,
	baseTier string,
	escalate EscalateFunc,
	verify func(ctx context.Context, candidate T) (Verdict, error),
	regenerate func(ctx context.Context, tier string) (T, error),
) (T, Verdict, error) {
	verdict, err := verify(ctx, candidate)
	if err != nil {
		return candidate, Verdict{}, err
	}
	if verdict.Supported {
		return candidate, verdict, nil
	}

	retried, err := regenerate(ctx, escalate(baseTier))
	if err != nil {
		return candidate, Verdict{}, err
	}
	verdict, err = verify(ctx, retried)
	if err != nil {
		return retried, Verdict{}, err
	}
	return retried, verdict, nil
}

// VerifyService checks generated content against its source transcript.
type VerifyService interface {
	VerifyNote(ctx context.Context, note domain.NoteDocument, segments []domain.TranscriptSegment, model string) (Verdict, error)
	VerifyQuestion(ctx context.Context, question domain.Question, contextText string, model string) (Verdict, error)
}

type verifyService struct {
	log *logger.Logger
	ai  gemini.Client
}

func NewVerifyService(baseLog *logger.Logger, ai gemini.Client) VerifyService {
	return &verifyService{
		log: baseLog.With("service", "VerifyService"),
		ai:  ai,
	}
}

type verifyPayload struct {
	Supported bool     `json:"supported"`
	Issues    []string `json:"issues"`
}

func (s *verifyService) VerifyNote(ctx context.Context, note domain.NoteDocument, segments []domain.TranscriptSegment, model string) (Verdict, error) {
	var b strings.Builder
	b.WriteString("Check whether the following study notes are supported by the transcript.\n")
	b.WriteString("If unsupported claims exist, list them briefly in issues.\n")
	b.WriteString("Transcript:\n")
	b.WriteString(promptTranscript(segments))
	b.WriteString("\nNotes:\n")
	fmt.Fprintf(&b, "Summary: %s\nSections:\n", note.Summary)
	for _, section := range note.Sections {
		fmt.Fprintf(&b, "- %s: %s\n", section.Heading, strings.Join(section.Bullets, " | "))
	}
	fmt.Fprintf(&b, "Key takeaways: %s\n", strings.Join(note.KeyTakeaways, " | "))
	b.WriteString("Return JSON matching the schema.")

	var payload verifyPayload
	err := s.ai.GenerateJSON(ctx, b.String(), verifySchema(), gemini.Options{
		Model:           model,
		Temperature:     0.2,
		MaxOutputTokens: 600,
	}, &payload)
	if err != nil {
		return Verdict{}, fmt.Errorf("verify notes for %s: %w", note.LectureTitle, err)
	}
	return Verdict{Supported: payload.Supported, Issues: payload.Issues}, nil
}

func (s *verifyService) VerifyQuestion(ctx context.Context, question domain.Question, contextText string, model string) (Verdict, error) {
	var b strings.Builder
	b.WriteString("Check whether the answer and rationale are supported by the context.\n")
	b.WriteString("Context:\n")
	b.WriteString(contextText)
	fmt.Fprintf(&b, "\nQuestion: %s\nAnswer: %s\nRationale: %s\n", question.Stem, question.Answer, question.Rationale)
	b.WriteString("Return JSON matching the schema.")

	var payload verifyPayload
	err := s.ai.GenerateJSON(ctx, b.String(), verifySchema(), gemini.Options{
		Model:           model,
		Temperature:     0.2,
		MaxOutputTokens: 400,
	}, &payload)
	if err != nil {
		return Verdict{}, fmt.Errorf("verify question %s: %w", question.ID, err)
	}
	return Verdict{Supported: payload.Supported, Issues: payload.Issues}, nil
}
