package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	slugDrop   = regexp.MustCompile(`[^a-z0-9]+`)
	answerKeep = regexp.MustCompile(`[^a-z0-9\s]`)
)

// MakeID builds a prefixed identifier like "job_2f1c...".
func MakeID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// Slugify lowercases a title into a stable id fragment, capped at 48 chars.
func Slugify(value string) string {
	s := slugDrop.ReplaceAllString(strings.ToLower(value), "-")
	s = strings.Trim(s, "-")
	if len(s) > 48 {
		s = s[:48]
	}
	return s
}

// NormalizeAnswer strips punctuation and case for lenient answer comparison.
func NormalizeAnswer(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	return answerKeep.ReplaceAllString(s, "")
}
