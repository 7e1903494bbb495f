package domain

import "time"

// MasteryRecord is per-topic spaced-repetition state. One record is created
// per blueprint topic at pack finalization and mutated by grading afterwards.
type MasteryRecord struct {
	TopicID      string    `json:"topic_id"`
	Score        float64   `json:"score"`
	Streak       int       `json:"streak"`
	LastSeen     time.Time `json:"last_seen"`
	NextReviewAt time.Time `json:"next_review_at"`
}
