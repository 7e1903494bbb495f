package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/veristudy/veristudy-backend/internal/data/store"
	"github.com/veristudy/veristudy-backend/internal/domain"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
	"github.com/veristudy/veristudy-backend/internal/services"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func seedPack(t *testing.T, packs store.PackStore) *domain.Pack {
	t.Helper()
	pack := &domain.Pack{
		ID:        "pack_test",
		Title:     "Algorithms",
		CreatedAt: time.Now().UTC(),
		Blueprint: domain.Blueprint{
			Topics: []domain.BlueprintTopic{
				{ID: "topic_sorting_1", Title: "Sorting", Weight: 100},
			},
		},
		Notes: []domain.NoteDocument{
			{LectureID: "lec_sorting_1", LectureTitle: "Sorting", Verified: true},
		},
		Questions: []domain.Question{
			{
				ID:     "q_1",
				Type:   domain.QuestionTrueFalse,
				Answer: "true",
				Tags:   []string{"Sorting"},
			},
		},
		Mastery: map[string]domain.MasteryRecord{
			"topic_sorting_1": {TopicID: "topic_sorting_1", Score: 0.3},
		},
	}
	if err := packs.Set(context.Background(), pack); err != nil {
		t.Fatalf("seed pack: %v", err)
	}
	return pack
}

func TestStatusHandler(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	job := &domain.Job{ID: "job_1", Status: domain.JobProcessing, Step: "Generating notes", Progress: 0.4}
	if err := jobs.Set(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	router := testRouter()
	handler := NewStatusHandler(testLogger(t), jobs)
	router.GET("/api/status/:jobId", handler.GetStatus)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status/job_1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got domain.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "job_1" || got.Progress != 0.4 {
		t.Fatalf("got = %+v", got)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing job status = %d", rec.Code)
	}
}

func TestPackHandlerListAndGet(t *testing.T) {
	packs := store.NewMemoryPackStore()
	seedPack(t, packs)

	router := testRouter()
	handler := NewPackHandler(testLogger(t), packs)
	router.GET("/api/packs", handler.ListPacks)
	router.GET("/api/packs/:packId", handler.GetPack)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/packs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listing struct {
		Packs []struct {
			ID            string `json:"id"`
			LectureCount  int    `json:"lecture_count"`
			QuestionCount int    `json:"question_count"`
			VerifiedNotes int    `json:"verified_notes"`
		} `json:"packs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listing.Packs) != 1 {
		t.Fatalf("packs = %d", len(listing.Packs))
	}
	summary := listing.Packs[0]
	if summary.ID != "pack_test" || summary.LectureCount != 1 || summary.VerifiedNotes != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/packs/pack_test", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var pack domain.Pack
	if err := json.Unmarshal(rec.Body.Bytes(), &pack); err != nil {
		t.Fatalf("decode pack: %v", err)
	}
	if pack.Title != "Algorithms" || len(pack.Questions) != 1 {
		t.Fatalf("pack = %+v", pack)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/packs/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing pack status = %d", rec.Code)
	}
}

func TestAnswerHandlerGradesAndPersistsMastery(t *testing.T) {
	packs := store.NewMemoryPackStore()
	seedPack(t, packs)

	log := testLogger(t)
	mastery := services.NewMasteryService()
	exam := services.NewExamService(log, mastery)

	router := testRouter()
	handler := NewAnswerHandler(log, packs, exam, mastery)
	router.POST("/api/submit-answer", handler.SubmitAnswer)

	body := `{"pack_id":"pack_test","question_id":"q_1","answer":"TRUE"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/submit-answer", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var result domain.GradeResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Correct {
		t.Fatalf("correct answer graded wrong: %+v", result)
	}
	if result.Mastery.Streak != 1 {
		t.Fatalf("mastery streak = %d, want 1", result.Mastery.Streak)
	}

	stored, err := packs.Get(context.Background(), "pack_test")
	if err != nil {
		t.Fatalf("get pack: %v", err)
	}
	if got := stored.Mastery["topic_sorting_1"]; got.Streak != 1 {
		t.Fatalf("persisted mastery = %+v", got)
	}
}

func TestAnswerHandlerUnknownQuestion(t *testing.T) {
	packs := store.NewMemoryPackStore()
	seedPack(t, packs)

	log := testLogger(t)
	mastery := services.NewMasteryService()
	router := testRouter()
	handler := NewAnswerHandler(log, packs, services.NewExamService(log, mastery), mastery)
	router.POST("/api/submit-answer", handler.SubmitAnswer)

	body := `{"pack_id":"pack_test","question_id":"q_missing","answer":"true"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/submit-answer", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
