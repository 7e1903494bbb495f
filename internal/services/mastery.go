package services

import (
	"math"
	"time"

	"github.com/veristudy/veristudy-backend/internal/domain"
)

// MasteryService owns the pure spaced-repetition transitions for per-topic
// mastery records. Records are created once per blueprint topic at pack
// finalization and mutated by the grading flow afterwards.
type MasteryService interface {
	CreateRecord(topicID string) domain.MasteryRecord
	Update(record domain.MasteryRecord, correct bool) domain.MasteryRecord
}

type masteryService struct {
	now func() time.Time
}

func NewMasteryService() MasteryService {
	return &masteryService{now: time.Now}
}

// NewMasteryServiceAt injects the clock, for deterministic scheduling tests.
func NewMasteryServiceAt(now func() time.Time) MasteryService {
	return &masteryService{now: now}
}

func (s *masteryService) CreateRecord(topicID string) domain.MasteryRecord {
	now := s.now().UTC()
	return domain.MasteryRecord{
		TopicID:      topicID,
		Score:        0.3,
		Streak:       0,
		LastSeen:     now,
		NextReviewAt: now.Add(24 * time.Hour),
	}
}

// Update applies one graded answer: +0.15 on correct, -0.20 on incorrect,
// clamped to [0,1]. Streak grows on correct and resets on incorrect. The next
// review lands max(1, round(1 + 4*score + streak)) days out.
func (s *masteryService) Update(record domain.MasteryRecord, correct bool) domain.MasteryRecord {
	delta := -0.20
	if correct {
		delta = 0.15
	}
	score := math.Min(1, math.Max(0, record.Score+delta))

	streak := 0
	if correct {
		streak = record.Streak + 1
	}

	intervalDays := int(math.Round(1 + score*4 + float64(streak)))
	if intervalDays < 1 {
		intervalDays = 1
	}

	now := s.now().UTC()
	record.Score = score
	record.Streak = streak
	record.LastSeen = now
	record.NextReviewAt = now.Add(time.Duration(intervalDays) * 24 * time.Hour)
	return record
}
