package services

import (
	"strings"
	"testing"

	"github.com/veristudy/veristudy-backend/internal/domain"
)

func TestPromptTranscriptCapsLongTranscripts(t *testing.T) {
	long := strings.Repeat("x", 1000)
	var segments []domain.TranscriptSegment
	for i := 0; i < 100; i++ {
		segments = append(segments, domain.TranscriptSegment{Timestamp: "00:00", Text: long})
	}

	text := promptTranscript(segments)
	if len(text) > (transcriptMaxChunks+1)*transcriptChunkChars {
		t.Fatalf("prompt transcript is %d chars, cap not applied", len(text))
	}
	if !strings.Contains(text, long) {
		t.Fatalf("prompt transcript lost segment text")
	}
}

func TestPromptTranscriptKeepsShortTranscriptsWhole(t *testing.T) {
	segments := []domain.TranscriptSegment{
		{Timestamp: "00:00", Text: "hello"},
		{Timestamp: "00:05", Text: "world"},
	}
	want := "[00:00] hello\n[00:05] world"
	if got := promptTranscript(segments); got != want {
		t.Fatalf("promptTranscript = %q, want %q", got, want)
	}
}
