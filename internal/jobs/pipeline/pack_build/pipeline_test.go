package pack_build

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/veristudy/veristudy-backend/internal/data/store"
	"github.com/veristudy/veristudy-backend/internal/domain"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
	"github.com/veristudy/veristudy-backend/internal/services"
)

type fakeResolver struct {
	title    string
	lectures []domain.Lecture
	err      error
}

func (f *fakeResolver) Resolve(ctx context.Context, input string) (string, []domain.Lecture, error) {
	return f.title, f.lectures, f.err
}

type fakeFetcher struct {
	failFor map[string]error
}

func (f *fakeFetcher) Fetch(ctx context.Context, videoID, language string) ([]domain.TranscriptSegment, error) {
	if err, ok := f.failFor[videoID]; ok {
		return nil, err
	}
	return []domain.TranscriptSegment{
		{Start: 0, Duration: 5, End: 5, Text: "content of " + videoID, Timestamp: "00:00"},
	}, nil
}

type fakeNotes struct{}

func (fakeNotes) Generate(ctx context.Context, lecture domain.Lecture, segments []domain.TranscriptSegment, model, extraContext string) (domain.NoteDocument, error) {
	return domain.NoteDocument{
		LectureID:    lecture.ID,
		LectureTitle: lecture.Title,
		LectureURL:   lecture.URL,
		VideoID:      lecture.VideoID,
		Summary:      "Summary of " + lecture.Title,
	}, nil
}

type fakeBank struct {
	perLecture int
}

func (f *fakeBank) GenerateForNote(ctx context.Context, note domain.NoteDocument, perLecture int, model, extraContext string) ([]domain.Question, error) {
	n := f.perLecture
	if n == 0 {
		n = perLecture
	}
	qs := make([]domain.Question, n)
	for i := range qs {
		qs[i] = domain.Question{
			ID:          fmt.Sprintf("q_%s_%d", note.LectureID, i+1),
			Type:        domain.QuestionMCQ,
			TimeSeconds: 60,
			Tags:        []string{note.LectureTitle},
		}
	}
	return qs, nil
}

func (f *fakeBank) RegenerateQuestion(ctx context.Context, note domain.NoteDocument, original domain.Question, model string) (domain.Question, error) {
	original.Stem = "regenerated"
	return original, nil
}

type fakeVerifier struct {
	rejectNotes map[string]bool
}

func (f *fakeVerifier) VerifyNote(ctx context.Context, note domain.NoteDocument, segments []domain.TranscriptSegment, model string) (services.Verdict, error) {
	if f.rejectNotes[note.LectureID] {
		return services.Verdict{Supported: false, Issues: []string{"unsupported claim"}}, nil
	}
	return services.Verdict{Supported: true}, nil
}

func (f *fakeVerifier) VerifyQuestion(ctx context.Context, question domain.Question, contextText, model string) (services.Verdict, error) {
	return services.Verdict{Supported: true}, nil
}

type fakeResearch struct{}

func (fakeResearch) FetchSources(ctx context.Context, urls []string) []domain.ResearchSource {
	return nil
}

func (fakeResearch) BuildReport(ctx context.Context, courseTitle string, sources []domain.ResearchSource, model string) (*domain.ResearchReport, error) {
	return &domain.ResearchReport{Summary: "report"}, nil
}

// recordingNotifier captures the progress values in broadcast order.
type recordingNotifier struct {
	mu       sync.Mutex
	progress []float64
}

func (n *recordingNotifier) JobProgress(job *domain.Job) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.progress = append(n.progress, job.Progress)
}

func (n *recordingNotifier) JobFailed(job *domain.Job) {}
func (n *recordingNotifier) JobDone(job *domain.Job)   {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func lectureFixtures() []domain.Lecture {
	return []domain.Lecture{
		{ID: "lec_sorting_1", Title: "Sorting", VideoID: "vid1", DurationSeconds: 600, Order: 1},
		{ID: "lec_graphs_2", Title: "Graphs", VideoID: "vid2", DurationSeconds: 300, Order: 2},
		{ID: "lec_hashing_3", Title: "Hashing", VideoID: "vid3", DurationSeconds: 300, Order: 3},
	}
}

func newTestPipeline(t *testing.T, jobs store.JobStore, packs store.PackStore, deps Deps) *Pipeline {
	t.Helper()
	log := testLogger(t)
	mastery := services.NewMasteryService()
	if deps.Log == nil {
		deps.Log = log
	}
	deps.Jobs = jobs
	deps.Packs = packs
	if deps.Resolver == nil {
		deps.Resolver = &fakeResolver{title: "Algorithms", lectures: lectureFixtures()}
	}
	if deps.Fetcher == nil {
		deps.Fetcher = &fakeFetcher{}
	}
	if deps.Notes == nil {
		deps.Notes = fakeNotes{}
	}
	if deps.Bank == nil {
		deps.Bank = &fakeBank{}
	}
	if deps.Verifier == nil {
		deps.Verifier = &fakeVerifier{}
	}
	if deps.Blueprint == nil {
		deps.Blueprint = services.NewBlueprintService(log)
	}
	if deps.Exam == nil {
		deps.Exam = services.NewExamService(log, mastery)
	}
	if deps.Mastery == nil {
		deps.Mastery = mastery
	}
	if deps.Research == nil {
		deps.Research = fakeResearch{}
	}
	if deps.Notify == nil {
		deps.Notify = services.NopNotifier{}
	}
	if deps.Models.Pro == "" {
		deps.Models = Models{Pro: "pro-model", Flash: "flash-model"}
	}
	return New(deps)
}

func runPipeline(t *testing.T, p *Pipeline, jobs store.JobStore, inputs Inputs) *domain.Job {
	t.Helper()
	ctx := context.Background()
	job, err := CreateJob(ctx, jobs)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	p.Run(ctx, job.ID, inputs)
	final, err := jobs.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	return final
}

func TestPipelineHappyPath(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	packs := store.NewMemoryPackStore()
	p := newTestPipeline(t, jobs, packs, Deps{})

	job := runPipeline(t, p, jobs, Inputs{Input: "https://www.youtube.com/playlist?list=PLx"})

	if job.Status != domain.JobCompleted {
		t.Fatalf("status = %s, errors = %v", job.Status, job.Errors)
	}
	if job.Progress != 1.0 {
		t.Fatalf("progress = %v, want 1.0", job.Progress)
	}
	if job.Step != "Ready" {
		t.Fatalf("step = %q", job.Step)
	}
	if job.TotalLectures != 3 || job.CompletedLectures != 3 {
		t.Fatalf("lecture counts = %d/%d", job.CompletedLectures, job.TotalLectures)
	}
	if len(job.Errors) != 0 {
		t.Fatalf("errors = %v", job.Errors)
	}
	if job.PackID == "" {
		t.Fatalf("no pack id on completed job")
	}

	pack, err := packs.Get(context.Background(), job.PackID)
	if err != nil || pack == nil {
		t.Fatalf("pack missing: %v", err)
	}
	if pack.Title != "Algorithms" {
		t.Fatalf("pack title = %q", pack.Title)
	}
	if len(pack.Notes) != 3 {
		t.Fatalf("notes = %d, want 3", len(pack.Notes))
	}
	for _, note := range pack.Notes {
		if !note.Verified {
			t.Fatalf("note %s not verified", note.LectureID)
		}
	}
	// 3 lectures * 4 default questions per lecture
	if len(pack.Questions) != 12 {
		t.Fatalf("questions = %d, want 12", len(pack.Questions))
	}
	if len(pack.Blueprint.Topics) != 3 {
		t.Fatalf("blueprint topics = %d", len(pack.Blueprint.Topics))
	}
	if len(pack.Mastery) != 3 {
		t.Fatalf("mastery records = %d", len(pack.Mastery))
	}
	for topicID, rec := range pack.Mastery {
		if rec.TopicID != topicID {
			t.Fatalf("mastery key %q holds record for %q", topicID, rec.TopicID)
		}
	}
	if len(pack.Exam.Sections) != 1 {
		t.Fatalf("exam sections = %d", len(pack.Exam.Sections))
	}
	// default exam size is 12
	if got := len(pack.Exam.Sections[0].QuestionIDs); got != 12 {
		t.Fatalf("exam questions = %d, want 12", got)
	}
}

func TestPipelineRecoversFailedLecture(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	packs := store.NewMemoryPackStore()
	p := newTestPipeline(t, jobs, packs, Deps{
		Fetcher: &fakeFetcher{failFor: map[string]error{
			"vid2": fmt.Errorf("transcript unavailable"),
		}},
	})

	job := runPipeline(t, p, jobs, Inputs{Input: "playlist"})

	if job.Status != domain.JobCompleted {
		t.Fatalf("status = %s, want completed despite lecture failure", job.Status)
	}
	if len(job.Errors) != 1 {
		t.Fatalf("errors = %v, want one entry", job.Errors)
	}
	if !strings.HasPrefix(job.Errors[0], "Lecture Graphs failed:") {
		t.Fatalf("error entry = %q", job.Errors[0])
	}

	pack, _ := packs.Get(context.Background(), job.PackID)
	if len(pack.Notes) != 3 {
		t.Fatalf("notes = %d, placeholder missing", len(pack.Notes))
	}
	placeholder := pack.Notes[1]
	if placeholder.LectureID != "lec_graphs_2" || placeholder.Verified {
		t.Fatalf("placeholder = %+v", placeholder)
	}
	if len(placeholder.VerificationNotes) == 0 {
		t.Fatalf("placeholder carries no failure cause")
	}
	// Only the two healthy lectures contribute questions.
	if len(pack.Questions) != 8 {
		t.Fatalf("questions = %d, want 8", len(pack.Questions))
	}
}

func TestPipelineRetriesUnsupportedNote(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	packs := store.NewMemoryPackStore()
	p := newTestPipeline(t, jobs, packs, Deps{
		Verifier: &fakeVerifier{rejectNotes: map[string]bool{"lec_sorting_1": true}},
	})

	job := runPipeline(t, p, jobs, Inputs{Input: "playlist"})
	if job.Status != domain.JobCompleted {
		t.Fatalf("status = %s", job.Status)
	}

	pack, _ := packs.Get(context.Background(), job.PackID)
	flagged := pack.Notes[0]
	if flagged.Verified {
		t.Fatalf("twice-rejected note marked verified")
	}
	if len(flagged.VerificationNotes) == 0 {
		t.Fatalf("rejected note carries no issues")
	}
	// The note is flagged, never dropped.
	if len(pack.Notes) != 3 {
		t.Fatalf("notes = %d", len(pack.Notes))
	}
	if len(job.Errors) != 0 {
		t.Fatalf("verification rejection is not a job error: %v", job.Errors)
	}
}

func TestPipelineFailsOnResolverError(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	packs := store.NewMemoryPackStore()
	p := newTestPipeline(t, jobs, packs, Deps{
		Resolver: &fakeResolver{err: fmt.Errorf("could not parse playlist or video input")},
	})

	job := runPipeline(t, p, jobs, Inputs{Input: "garbage"})
	if job.Status != domain.JobFailed {
		t.Fatalf("status = %s, want failed", job.Status)
	}
	if job.Step != "Failed" {
		t.Fatalf("step = %q", job.Step)
	}
	if len(job.Errors) != 1 {
		t.Fatalf("errors = %v", job.Errors)
	}
	if job.PackID != "" {
		t.Fatalf("failed job has pack id %q", job.PackID)
	}
}

func TestPipelineFailsOnEmptyLectureList(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	packs := store.NewMemoryPackStore()
	p := newTestPipeline(t, jobs, packs, Deps{
		Resolver: &fakeResolver{title: "Empty", lectures: nil},
	})

	job := runPipeline(t, p, jobs, Inputs{Input: "playlist"})
	if job.Status != domain.JobFailed {
		t.Fatalf("status = %s, want failed", job.Status)
	}
}

func TestPipelineUnknownJobIsNoop(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	packs := store.NewMemoryPackStore()
	p := newTestPipeline(t, jobs, packs, Deps{})

	p.Run(context.Background(), "job_missing", Inputs{Input: "playlist"})

	list, err := packs.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("unknown job produced %d packs", len(list))
	}
}

func TestPipelineProgressIsMonotonic(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	packs := store.NewMemoryPackStore()
	notifier := &recordingNotifier{}
	p := newTestPipeline(t, jobs, packs, Deps{Notify: notifier})

	job := runPipeline(t, p, jobs, Inputs{Input: "playlist"})
	if job.Status != domain.JobCompleted {
		t.Fatalf("status = %s", job.Status)
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.progress) == 0 {
		t.Fatalf("no progress events recorded")
	}
	prev := 0.0
	for i, v := range notifier.progress {
		if v < prev {
			t.Fatalf("progress regressed at event %d: %v -> %v", i, prev, v)
		}
		prev = v
	}
}

// progressSnapshotFetcher records the job's progress at the moment each
// lecture's transcript is fetched.
type progressSnapshotFetcher struct {
	jobs      store.JobStore
	jobID     string
	snapshots []float64
	inner     fakeFetcher
}

func (f *progressSnapshotFetcher) Fetch(ctx context.Context, videoID, language string) ([]domain.TranscriptSegment, error) {
	if job, err := f.jobs.Get(ctx, f.jobID); err == nil && job != nil {
		f.snapshots = append(f.snapshots, job.Progress)
	}
	return f.inner.Fetch(ctx, videoID, language)
}

func TestPipelineAdvancesLectureProgressAfterWork(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	packs := store.NewMemoryPackStore()
	fetcher := &progressSnapshotFetcher{jobs: jobs}
	p := newTestPipeline(t, jobs, packs, Deps{Fetcher: fetcher})

	ctx := context.Background()
	job, err := CreateJob(ctx, jobs)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	fetcher.jobID = job.ID
	p.Run(ctx, job.ID, Inputs{Input: "playlist"})

	if len(fetcher.snapshots) != 3 {
		t.Fatalf("snapshots = %d, want 3", len(fetcher.snapshots))
	}
	// A lecture's share of the notes band is published only once that
	// lecture has finished, so at fetch time the job still carries the
	// previous lecture's value.
	for i, got := range fetcher.snapshots {
		band := 0.2 + (float64(i+1)/3.0)*0.4
		if got >= band {
			t.Fatalf("lecture %d fetched at progress %v, band %v already published", i, got, band)
		}
	}
}

func TestPipelineIncludesResearchWhenRequested(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	packs := store.NewMemoryPackStore()
	p := newTestPipeline(t, jobs, packs, Deps{})

	job := runPipeline(t, p, jobs, Inputs{
		Input:   "playlist",
		Options: domain.PackOptions{IncludeResearch: true},
	})
	if job.Status != domain.JobCompleted {
		t.Fatalf("status = %s", job.Status)
	}

	pack, _ := packs.Get(context.Background(), job.PackID)
	if pack.Research == nil || pack.Research.Summary != "report" {
		t.Fatalf("research report = %+v", pack.Research)
	}

	// Without the flag the report is absent.
	job2 := runPipeline(t, p, jobs, Inputs{Input: "playlist"})
	pack2, _ := packs.Get(context.Background(), job2.PackID)
	if pack2.Research != nil {
		t.Fatalf("unexpected research report: %+v", pack2.Research)
	}
}
