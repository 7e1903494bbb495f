package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/veristudy/veristudy-backend/internal/domain"
	"github.com/veristudy/veristudy-backend/internal/platform/gemini"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
	"github.com/veristudy/veristudy-backend/internal/platform/transcript"
)

// NotesService generates an evidence-backed note document for one lecture
// from its transcript. The model tier is chosen by the caller so the
// verification stage can regenerate with a stronger tier.
type NotesService interface {
	Generate(ctx context.Context, lecture domain.Lecture, segments []domain.TranscriptSegment, model string, extraContext string) (domain.NoteDocument, error)
}

type notesService struct {
	log *logger.Logger
	ai  gemini.Client
}

func NewNotesService(baseLog *logger.Logger, ai gemini.Client) NotesService {
	return &notesService{
		log: baseLog.With("service", "NotesService"),
		ai:  ai,
	}
}

// Prompt budget for transcript text. Long lectures are chunked and capped at
// the leading chunks; notes for a 3h recording still fit the context window.
const (
	transcriptChunkChars = 12000
	transcriptMaxChunks  = 3
)

func promptTranscript(segments []domain.TranscriptSegment) string {
	chunks := transcript.Chunk(segments, transcriptChunkChars)
	if len(chunks) > transcriptMaxChunks {
		chunks = chunks[:transcriptMaxChunks]
	}
	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		parts[i] = transcript.BuildText(chunk)
	}
	return strings.Join(parts, "\n")
}

type notePayload struct {
	Summary  string `json:"summary"`
	Sections []struct {
		Heading string   `json:"heading"`
		Bullets []string `json:"bullets"`
	} `json:"sections"`
	KeyTakeaways []string      `json:"key_takeaways"`
	Citations    []rawCitation `json:"citations"`
}

func (s *notesService) Generate(ctx context.Context, lecture domain.Lecture, segments []domain.TranscriptSegment, model string, extraContext string) (domain.NoteDocument, error) {
	var b strings.Builder
	b.WriteString("Produce structured study notes strictly supported by the lecture transcript.\n")
	b.WriteString("Every claim must be traceable to a transcript timestamp; cite the timestamps you used.\n")
	fmt.Fprintf(&b, "Lecture: %s\n", lecture.Title)
	if extraContext != "" {
		fmt.Fprintf(&b, "Additional context:\n%s\n", extraContext)
	}
	b.WriteString("Transcript:\n")
	b.WriteString(promptTranscript(segments))
	b.WriteString("\nReturn JSON matching the schema.")

	var payload notePayload
	err := s.ai.GenerateJSON(ctx, b.String(), noteSchema(), gemini.Options{
		Model:           model,
		Temperature:     0.35,
		MaxOutputTokens: 2048,
	}, &payload)
	if err != nil {
		return domain.NoteDocument{}, fmt.Errorf("generate notes for %s: %w", lecture.Title, err)
	}

	sections := make([]domain.NoteSection, len(payload.Sections))
	for i, sec := range payload.Sections {
		sections[i] = domain.NoteSection{Heading: sec.Heading, Bullets: sec.Bullets}
	}

	return domain.NoteDocument{
		LectureID:    lecture.ID,
		LectureTitle: lecture.Title,
		LectureURL:   lecture.URL,
		VideoID:      lecture.VideoID,
		Summary:      payload.Summary,
		Sections:     sections,
		KeyTakeaways: payload.KeyTakeaways,
		Citations:    attachLectureAll(lecture.Title, lecture.URL, payload.Citations),
	}, nil
}
