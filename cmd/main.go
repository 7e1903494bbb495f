package main

import (
	"fmt"
	"os"

	"github.com/veristudy/veristudy-backend/internal/app"
	"github.com/veristudy/veristudy-backend/internal/data"
	"github.com/veristudy/veristudy-backend/internal/data/repos"
	"github.com/veristudy/veristudy-backend/internal/data/store"
	"github.com/veristudy/veristudy-backend/internal/handlers"
	"github.com/veristudy/veristudy-backend/internal/jobs/pipeline/pack_build"
	"github.com/veristudy/veristudy-backend/internal/platform/gemini"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
	"github.com/veristudy/veristudy-backend/internal/platform/transcript"
	"github.com/veristudy/veristudy-backend/internal/platform/youtube"
	"github.com/veristudy/veristudy-backend/internal/server"
	"github.com/veristudy/veristudy-backend/internal/services"
	"github.com/veristudy/veristudy-backend/internal/sse"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	log.Info("Loading configuration from main...")
	cfg, err := app.LoadConfig(log)
	if err != nil {
		log.Error("Could not load config", "error", err)
		os.Exit(1)
	}

	// Stores
	log.Info("Setting up stores from main...", "backend", cfg.StoreBackend)
	jobStore, packStore, err := buildStores(cfg, log)
	if err != nil {
		log.Error("Could not init stores", "error", err)
		os.Exit(1)
	}

	// Platform clients
	log.Info("Setting up platform clients from main...")
	aiClient, err := gemini.NewClient(log)
	if err != nil {
		log.Error("Could not init Gemini client", "error", err)
		os.Exit(1)
	}
	ytClient, err := youtube.NewClient(log)
	if err != nil {
		log.Error("Could not init YouTube client", "error", err)
		os.Exit(1)
	}
	fetcher := transcript.NewFetcher(log)

	// SSE
	log.Info("Setting up SSE hub now...")
	hub := sse.NewHub(log)

	// Services
	log.Info("Setting up services from main...")
	resolver := services.NewLectureResolver(log, ytClient)
	notesService := services.NewNotesService(log, aiClient)
	bankService := services.NewQuestionBankService(log, aiClient)
	verifyService := services.NewVerifyService(log, aiClient)
	blueprintService := services.NewBlueprintService(log)
	masteryService := services.NewMasteryService()
	examService := services.NewExamService(log, masteryService)
	researchService := services.NewResearchService(log, aiClient)
	notifier := services.NewJobNotifier(hub)

	// Pipeline
	pipeline := pack_build.New(pack_build.Deps{
		Log:       log,
		Jobs:      jobStore,
		Packs:     packStore,
		Resolver:  resolver,
		Fetcher:   fetcher,
		Notes:     notesService,
		Bank:      bankService,
		Verifier:  verifyService,
		Blueprint: blueprintService,
		Exam:      examService,
		Mastery:   masteryService,
		Research:  researchService,
		Notify:    notifier,
		Models:    pack_build.Models{Pro: cfg.ProModel, Flash: cfg.FlashModel},
	})

	// Handlers
	log.Info("Setting up handlers from main...")
	generateHandler := handlers.NewGenerateHandler(log, pipeline, jobStore)
	statusHandler := handlers.NewStatusHandler(log, jobStore)
	packHandler := handlers.NewPackHandler(log, packStore)
	answerHandler := handlers.NewAnswerHandler(log, packStore, examService, masteryService)
	eventsHandler := handlers.NewEventsHandler(log, hub)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AllowOrigins:    cfg.AllowOrigins,
		GenerateHandler: generateHandler,
		StatusHandler:   statusHandler,
		PackHandler:     packHandler,
		AnswerHandler:   answerHandler,
		EventsHandler:   eventsHandler,
	})

	log.Info("Starting server", "addr", cfg.Addr)
	if err := router.Run(cfg.Addr); err != nil {
		log.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func buildStores(cfg app.Config, log *logger.Logger) (store.JobStore, store.PackStore, error) {
	switch cfg.StoreBackend {
	case app.StoreRedis:
		rdb, err := store.NewRedisClient(log)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedisJobStore(rdb, log), store.NewRedisPackStore(rdb, log), nil
	case app.StorePostgres:
		db, err := data.NewPostgres(log)
		if err != nil {
			return nil, nil, err
		}
		jobRepo := repos.NewJobRecordRepo(db, log)
		packRepo := repos.NewPackRecordRepo(db, log)
		return store.NewGormJobStore(jobRepo, log), store.NewGormPackStore(packRepo, log), nil
	default:
		return store.NewMemoryJobStore(), store.NewMemoryPackStore(), nil
	}
}
