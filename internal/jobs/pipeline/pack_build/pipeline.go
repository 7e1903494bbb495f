package pack_build

import (
	"context"
	"fmt"
	"time"

	"github.com/veristudy/veristudy-backend/internal/data/store"
	"github.com/veristudy/veristudy-backend/internal/domain"
	"github.com/veristudy/veristudy-backend/internal/jobs/runtime"
	"github.com/veristudy/veristudy-backend/internal/platform/transcript"
	"github.com/veristudy/veristudy-backend/internal/services"
	"github.com/veristudy/veristudy-backend/internal/utils"
)

// Progress bands. The early steps get fixed checkpoints; lecture processing
// fills 0.20..0.60 proportionally; the tail steps are fixed again.
const (
	progressResolve   = 0.05
	progressBlueprint = 0.10
	progressResearch  = 0.15
	progressNotes     = 0.20
	progressBank      = 0.65
	progressExam      = 0.78
)

// Run executes a full pack build for an already-created job record. It is a
// silent no-op when the job id is unknown. All per-lecture failures are
// recovered: the run keeps going with a placeholder note and an error entry,
// and only infrastructure failures (resolve, persist) fail the whole job.
func (p *Pipeline) Run(ctx context.Context, jobID string, inputs Inputs) {
	job, err := p.jobs.Get(ctx, jobID)
	if err != nil || job == nil {
		if err != nil {
			p.log.Error("Job lookup failed", "job_id", jobID, "error", err)
		}
		return
	}

	rt := runtime.NewContext(ctx, job, p.jobs, p.notify, p.log)
	defer func() {
		if r := recover(); r != nil {
			rt.Log.Error("Pipeline panicked", "panic", r)
			rt.Fail(fmt.Errorf("internal error: %v", r))
		}
	}()

	opts := domain.NormalizePackOptions(inputs.Options)

	rt.Update(map[string]any{store.FieldStatus: domain.JobProcessing})
	rt.Progress("Resolving lectures", progressResolve)

	courseTitle, lectures, err := p.resolver.Resolve(ctx, inputs.Input)
	if err != nil {
		rt.Fail(err)
		return
	}
	if len(lectures) == 0 {
		rt.Fail(fmt.Errorf("no lectures found in input"))
		return
	}
	rt.Update(map[string]any{store.FieldTotalLectures: len(lectures)})

	rt.Progress("Building blueprint", progressBlueprint)
	blueprint := p.blueprint.Build(courseTitle, lectures)

	var report *domain.ResearchReport
	if opts.IncludeResearch {
		rt.Progress("Researching course context", progressResearch)
		report = p.buildResearch(rt, courseTitle, opts)
	}

	rt.Progress("Generating notes", progressNotes)
	notes, transcripts := p.processLectures(rt, lectures, opts)

	rt.Progress("Generating question bank", progressBank)
	questions := p.buildQuestionBank(rt, notes, transcripts, opts)

	rt.Progress("Assembling exam", progressExam)
	exam := p.exam.Assemble(questions, opts.ExamSize, courseTitle)

	mastery := make(map[string]domain.MasteryRecord, len(blueprint.Topics))
	for _, topic := range blueprint.Topics {
		mastery[topic.ID] = p.mastery.CreateRecord(topic.ID)
	}

	pack := &domain.Pack{
		ID:        utils.MakeID("pack"),
		Title:     courseTitle,
		Input:     inputs.Input,
		CreatedAt: time.Now().UTC(),
		Blueprint: blueprint,
		Notes:     notes,
		Questions: questions,
		Exam:      exam,
		Mastery:   mastery,
		Research:  report,
		Exports:   map[string]string{},
	}
	rt.Step("Saving study pack")
	if err := p.packs.Set(ctx, pack); err != nil {
		rt.Fail(fmt.Errorf("saving pack: %w", err))
		return
	}

	rt.Complete(pack.ID)
	rt.Log.Info("Pack build finished",
		"pack_id", pack.ID,
		"lectures", len(lectures),
		"questions", len(questions),
		"errors", len(rt.Job.Errors))
}

// buildResearch is strictly best-effort. A failed report degrades the pack,
// never the job.
func (p *Pipeline) buildResearch(rt *runtime.Context, courseTitle string, opts domain.PackOptions) *domain.ResearchReport {
	sources := p.research.FetchSources(rt.Ctx, opts.ResearchSources)
	report, err := p.research.BuildReport(rt.Ctx, courseTitle, sources, p.models.Flash)
	if err != nil {
		rt.Log.Warn("Research report failed, continuing without it", "error", err)
		return nil
	}
	return report
}

// processLectures fetches, summarizes and verifies every lecture in order.
// Each lecture yields exactly one note: the verified-or-flagged document on
// success, a placeholder on failure. Transcripts for successful lectures are
// returned keyed by lecture id for downstream question verification.
func (p *Pipeline) processLectures(rt *runtime.Context, lectures []domain.Lecture, opts domain.PackOptions) ([]domain.NoteDocument, map[string][]domain.TranscriptSegment) {
	notes := make([]domain.NoteDocument, 0, len(lectures))
	transcripts := make(map[string][]domain.TranscriptSegment, len(lectures))
	total := len(lectures)

	for i, lecture := range lectures {
		rt.Update(map[string]any{store.FieldCurrentLecture: lecture.Title})
		rt.Step(fmt.Sprintf("Processing %s", lecture.Title))

		note, segments, err := p.processLecture(rt.Ctx, lecture, opts)
		if err != nil {
			rt.Log.Warn("Lecture failed, inserting placeholder", "lecture", lecture.Title, "error", err)
			rt.AppendError(fmt.Sprintf("Lecture %s failed: %v", lecture.Title, err))
			note = placeholderNote(lecture, err)
		} else {
			transcripts[lecture.ID] = segments
		}
		notes = append(notes, note)
		rt.Update(map[string]any{store.FieldCompletedLectures: i + 1})
		rt.Progress(fmt.Sprintf("Processing %s", lecture.Title),
			progressNotes+(float64(i+1)/float64(total))*0.4)

		if i < total-1 && opts.InterLectureDelayMs > 0 {
			select {
			case <-rt.Ctx.Done():
			case <-time.After(time.Duration(opts.InterLectureDelayMs) * time.Millisecond):
			}
		}
	}
	return notes, transcripts
}

func (p *Pipeline) processLecture(ctx context.Context, lecture domain.Lecture, opts domain.PackOptions) (domain.NoteDocument, []domain.TranscriptSegment, error) {
	segments, err := p.fetcher.Fetch(ctx, lecture.VideoID, opts.Language)
	if err != nil {
		return domain.NoteDocument{}, nil, fmt.Errorf("transcript: %w", err)
	}

	note, err := p.notes.Generate(ctx, lecture, segments, p.models.Pro, opts.VaultNotes)
	if err != nil {
		return domain.NoteDocument{}, nil, fmt.Errorf("notes: %w", err)
	}

	verified, verdict, err := services.VerifyWithRetry(ctx, note, p.models.Pro, p.escalate,
		func(ctx context.Context, candidate domain.NoteDocument) (services.Verdict, error) {
			return p.verifier.VerifyNote(ctx, candidate, segments, p.models.Flash)
		},
		func(ctx context.Context, tier string) (domain.NoteDocument, error) {
			return p.notes.Generate(ctx, lecture, segments, tier, opts.VaultNotes)
		})
	if err != nil {
		return domain.NoteDocument{}, nil, fmt.Errorf("verification: %w", err)
	}
	verified.Verified = verdict.Supported
	verified.VerificationNotes = verdict.Issues
	return verified, segments, nil
}

func placeholderNote(lecture domain.Lecture, cause error) domain.NoteDocument {
	return domain.NoteDocument{
		LectureID:         lecture.ID,
		LectureTitle:      lecture.Title,
		LectureURL:        lecture.URL,
		VideoID:           lecture.VideoID,
		Summary:           "Notes could not be generated for this lecture.",
		Verified:          false,
		VerificationNotes: []string{cause.Error()},
	}
}

// buildQuestionBank derives questions from every real note. Placeholder
// notes are skipped since there is no source material to question against.
// Generation failures for one lecture's bank are recovered per-item; a
// question whose verification errs is kept unverified rather than dropped.
func (p *Pipeline) buildQuestionBank(rt *runtime.Context, notes []domain.NoteDocument, transcripts map[string][]domain.TranscriptSegment, opts domain.PackOptions) []domain.Question {
	questions := make([]domain.Question, 0, len(notes)*opts.QuestionsPerLecture)

	for _, note := range notes {
		segments, ok := transcripts[note.LectureID]
		if !ok {
			continue
		}

		generated, err := p.bank.GenerateForNote(rt.Ctx, note, opts.QuestionsPerLecture, p.models.Pro, opts.VaultNotes)
		if err != nil {
			rt.Log.Warn("Question generation failed", "lecture", note.LectureTitle, "error", err)
			rt.AppendError(fmt.Sprintf("Lecture %s failed: question generation: %v", note.LectureTitle, err))
			continue
		}

		contextText := transcript.BuildText(segments)
		for _, q := range generated {
			questions = append(questions, p.verifyQuestion(rt, note, q, contextText))
		}
	}
	return questions
}

func (p *Pipeline) verifyQuestion(rt *runtime.Context, note domain.NoteDocument, question domain.Question, contextText string) domain.Question {
	verified, verdict, err := services.VerifyWithRetry(rt.Ctx, question, p.models.Pro, p.escalate,
		func(ctx context.Context, candidate domain.Question) (services.Verdict, error) {
			return p.verifier.VerifyQuestion(ctx, candidate, contextText, p.models.Flash)
		},
		func(ctx context.Context, tier string) (domain.Question, error) {
			return p.bank.RegenerateQuestion(ctx, note, question, tier)
		})
	if err != nil {
		rt.Log.Warn("Question verification errored, keeping unverified", "question_id", question.ID, "error", err)
		question.Verified = false
		question.VerificationNotes = []string{fmt.Sprintf("verification unavailable: %v", err)}
		return question
	}
	verified.Verified = verdict.Supported
	verified.VerificationNotes = verdict.Issues
	return verified
}
