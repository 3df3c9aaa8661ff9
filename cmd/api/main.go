package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"dossier-llm/internal/config"
	apihttp "dossier-llm/internal/http"
	"dossier-llm/internal/kv"
	"dossier-llm/internal/llm"
	"dossier-llm/internal/repository"
	"dossier-llm/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	store, err := kv.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("opening storage failed", zap.Error(err))
	}
	repo := repository.NewKVStoreRepository(store, logger)

	sessionSvc := service.NewSessionService(repo, logger)
	if err := sessionSvc.Init(ctx); err != nil {
		logger.Fatal("loading store failed", zap.Error(err))
	}

	if cfg.LLMAPIKey == "" {
		logger.Warn("llm api key not configured, analysis calls will fail")
	}
	// NewStdLog adapta zap a la interfaz Printf que espera el cliente LLM.
	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, zap.NewStdLog(logger))
	analysisSvc := service.NewAnalysisService(llmClient, logger)

	subjectHandler := apihttp.NewSubjectHandler(logger, sessionSvc, analysisSvc)
	router := apihttp.NewRouter(logger, subjectHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
