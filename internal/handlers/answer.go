package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/veristudy/veristudy-backend/internal/data/store"
	"github.com/veristudy/veristudy-backend/internal/domain"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
	"github.com/veristudy/veristudy-backend/internal/services"
)

type AnswerHandler struct {
	log     *logger.Logger
	packs   store.PackStore
	exam    services.ExamService
	mastery services.MasteryService
}

func NewAnswerHandler(baseLog *logger.Logger, packs store.PackStore, exam services.ExamService, mastery services.MasteryService) *AnswerHandler {
	return &AnswerHandler{
		log:     baseLog.With("handler", "answer"),
		packs:   packs,
		exam:    exam,
		mastery: mastery,
	}
}

// SubmitAnswer grades one answer against its question and advances the
// mastery record of the question's topic. The updated record is persisted
// back onto the pack so spaced review survives restarts.
func (h *AnswerHandler) SubmitAnswer(c *gin.Context) {
	var req struct {
		PackID     string `json:"pack_id"`
		QuestionID string `json:"question_id"`
		Answer     string `json:"answer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pack, err := h.packs.Get(c.Request.Context(), req.PackID)
	if err != nil {
		h.log.Error("Pack lookup failed", "pack_id", req.PackID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load pack"})
		return
	}
	if pack == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pack not found"})
		return
	}

	var question *domain.Question
	for i := range pack.Questions {
		if pack.Questions[i].ID == req.QuestionID {
			question = &pack.Questions[i]
			break
		}
	}
	if question == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
		return
	}

	topicID := topicForQuestion(pack.Blueprint, *question)
	record, ok := pack.Mastery[topicID]
	if !ok {
		record = h.mastery.CreateRecord(topicID)
	}

	result := h.exam.Grade(*question, req.Answer, record)

	if pack.Mastery == nil {
		pack.Mastery = map[string]domain.MasteryRecord{}
	}
	pack.Mastery[topicID] = result.Mastery
	if err := h.packs.Set(c.Request.Context(), pack); err != nil {
		h.log.Warn("Mastery persist failed", "pack_id", pack.ID, "error", err)
	}

	c.JSON(http.StatusOK, result)
}

// topicForQuestion maps a question to its blueprint topic through the
// question's tags; questions tagged with a lecture title land on that
// lecture's topic. Unmatched questions fall back to the first topic.
func topicForQuestion(blueprint domain.Blueprint, question domain.Question) string {
	for _, topic := range blueprint.Topics {
		for _, tag := range question.Tags {
			if strings.EqualFold(tag, topic.Title) {
				return topic.ID
			}
		}
	}
	if len(blueprint.Topics) > 0 {
		return blueprint.Topics[0].ID
	}
	return "topic_general"
}
