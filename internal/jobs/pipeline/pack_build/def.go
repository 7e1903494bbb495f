package pack_build

import (
	"context"
	"time"

	"github.com/veristudy/veristudy-backend/internal/data/store"
	"github.com/veristudy/veristudy-backend/internal/domain"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
	"github.com/veristudy/veristudy-backend/internal/platform/transcript"
	"github.com/veristudy/veristudy-backend/internal/services"
	"github.com/veristudy/veristudy-backend/internal/utils"
)

// Models names the two generation tiers the pipeline uses: Pro for content
// generation, Flash for verification passes.
type Models struct {
	Pro   string
	Flash string
}

// DefaultEscalate is the tier-escalation policy: verification retries always
// regenerate with the Pro tier.
func DefaultEscalate(models Models) services.EscalateFunc {
	return func(string) string { return models.Pro }
}

// Inputs is the caller-supplied payload for one pack generation run.
type Inputs struct {
	Input   string             `json:"input"`
	Options domain.PackOptions `json:"options"`
}

type Pipeline struct {
	log       *logger.Logger
	jobs      store.JobStore
	packs     store.PackStore
	resolver  services.LectureResolver
	fetcher   transcript.Fetcher
	notes     services.NotesService
	bank      services.QuestionBankService
	verifier  services.VerifyService
	blueprint services.BlueprintService
	exam      services.ExamService
	mastery   services.MasteryService
	research  services.ResearchService
	notify    services.JobNotifier
	models    Models
	escalate  services.EscalateFunc
}

type Deps struct {
	Log       *logger.Logger
	Jobs      store.JobStore
	Packs     store.PackStore
	Resolver  services.LectureResolver
	Fetcher   transcript.Fetcher
	Notes     services.NotesService
	Bank      services.QuestionBankService
	Verifier  services.VerifyService
	Blueprint services.BlueprintService
	Exam      services.ExamService
	Mastery   services.MasteryService
	Research  services.ResearchService
	Notify    services.JobNotifier
	Models    Models
	Escalate  services.EscalateFunc
}

func New(deps Deps) *Pipeline {
	escalate := deps.Escalate
	if escalate == nil {
		escalate = DefaultEscalate(deps.Models)
	}
	return &Pipeline{
		log:       deps.Log.With("job", "pack_build"),
		jobs:      deps.Jobs,
		packs:     deps.Packs,
		resolver:  deps.Resolver,
		fetcher:   deps.Fetcher,
		notes:     deps.Notes,
		bank:      deps.Bank,
		verifier:  deps.Verifier,
		blueprint: deps.Blueprint,
		exam:      deps.Exam,
		mastery:   deps.Mastery,
		research:  deps.Research,
		notify:    deps.Notify,
		models:    deps.Models,
		escalate:  escalate,
	}
}

func (p *Pipeline) Type() string { return "pack_build" }

// CreateJob writes a fresh queued job record and returns it. Callers invoke
// Run afterwards, usually on its own goroutine.
func CreateJob(ctx context.Context, jobs store.JobStore) (*domain.Job, error) {
	now := time.Now().UTC()
	job := &domain.Job{
		ID:        utils.MakeID("job"),
		Status:    domain.JobQueued,
		Step:      "Queued",
		Errors:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := jobs.Set(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}
