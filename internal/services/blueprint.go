package services

import (
	"fmt"
	"math"

	"github.com/veristudy/veristudy-backend/internal/domain"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
	"github.com/veristudy/veristudy-backend/internal/utils"
)

// BlueprintService derives the weighted topic outline from lecture durations.
type BlueprintService interface {
	Build(courseTitle string, lectures []domain.Lecture) domain.Blueprint
}

type blueprintService struct {
	log *logger.Logger
}

func NewBlueprintService(baseLog *logger.Logger) BlueprintService {
	return &blueprintService{log: baseLog.With("service", "BlueprintService")}
}

// Build weights each lecture by its share of total duration. Durations floor
// at 1s so zero-length entries cannot zero the denominator. Independent
// rounding can leave the weights summing to 99 or 101, so the signed residual
// is added to the topic with the largest raw weight, keeping the sum at
// exactly 100 for any non-empty list.
func (s *blueprintService) Build(courseTitle string, lectures []domain.Lecture) domain.Blueprint {
	totalSeconds := 0
	for _, lecture := range lectures {
		totalSeconds += max(1, lecture.DurationSeconds)
	}

	raw := make([]float64, len(lectures))
	rounded := make([]int, len(lectures))
	sum := 0
	for i, lecture := range lectures {
		raw[i] = float64(max(1, lecture.DurationSeconds)) / float64(totalSeconds) * 100
		rounded[i] = int(math.Round(raw[i]))
		sum += rounded[i]
	}

	if diff := 100 - sum; diff != 0 && len(lectures) > 0 {
		maxIdx := 0
		for i := 1; i < len(raw); i++ {
			if raw[i] > raw[maxIdx] {
				maxIdx = i
			}
		}
		rounded[maxIdx] += diff
	}

	topics := make([]domain.BlueprintTopic, len(lectures))
	revisionOrder := make([]string, len(lectures))
	for i, lecture := range lectures {
		prereqs := []string{}
		if i > 0 {
			prereqs = []string{lectures[i-1].Title}
		}
		topics[i] = domain.BlueprintTopic{
			ID:            fmt.Sprintf("topic_%s_%d", utils.Slugify(lecture.Title), i+1),
			Title:         lecture.Title,
			Weight:        rounded[i],
			Prerequisites: prereqs,
			RevisionOrder: i + 1,
		}
		revisionOrder[i] = topics[i].ID
	}

	return domain.Blueprint{
		Title:         courseTitle + " Blueprint",
		Topics:        topics,
		RevisionOrder: revisionOrder,
	}
}
