package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/Maanisha27/MediTriage/internal/api/handlers"
	"github.com/Maanisha27/MediTriage/internal/cache/redis"
	"github.com/Maanisha27/MediTriage/internal/dataset"
	"github.com/Maanisha27/MediTriage/internal/evaluation"
	"github.com/Maanisha27/MediTriage/internal/ingestion"
	"github.com/Maanisha27/MediTriage/internal/kg/builder"
	"github.com/Maanisha27/MediTriage/internal/kg/neo4j"
	"github.com/Maanisha27/MediTriage/internal/llm"
	"github.com/Maanisha27/MediTriage/internal/mcda"
	"github.com/Maanisha27/MediTriage/internal/metrics"
	"github.com/Maanisha27/MediTriage/internal/middleware/ratelimit"
	"github.com/Maanisha27/MediTriage/internal/middleware/security"
	"github.com/Maanisha27/MediTriage/internal/middleware/validation"
	"github.com/Maanisha27/MediTriage/internal/routing"
	"github.com/Maanisha27/MediTriage/internal/storage/sqlite"
	"github.com/Maanisha27/MediTriage/internal/symptom"
	"github.com/Maanisha27/MediTriage/internal/triage"
	"github.com/Maanisha27/MediTriage/internal/vector/milvus"
	"github.com/Maanisha27/MediTriage/pkg/circuitbreaker"
	"github.com/Maanisha27/MediTriage/pkg/config"
	appLogger "github.com/Maanisha27/MediTriage/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting MediTriage API Server")

	metrics.Init()
	recorder := metrics.Recorder{}
	breakers := circuitbreaker.NewRegistry()

	bundle := dataset.Reference()
	if cfg.Dataset.Path != "" {
		bundle, err = dataset.Load(cfg.Dataset.Path)
		if err != nil {
			appLogger.Fatal("Failed to load dataset", zap.Error(err))
		}
	}

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	health := handlers.NewHealthHandler(breakers)
	health.AddCheck("sqlite", true, func(context.Context) error { return sqliteClient.Ping() })

	routingOpts := routing.Options{
		Lambda: cfg.Routing.Lambda,
		Diffusion: mcda.DiffusionOptions{
			Eta:        cfg.Routing.Eta,
			Iterations: cfg.Routing.Iterations,
		},
		Fusion: mcda.FusionWeights{
			WASPAS:     cfg.Routing.WaspasWeight,
			Diffusion:  cfg.Routing.DiffusionWeight,
			Similarity: cfg.Routing.SimilarityWeight,
		},
		MaxRecommendations: cfg.Routing.MaxRecommendations,
	}
	engineOpts := []routing.EngineOption{
		routing.WithSpecialistStore(sqliteClient),
		routing.WithObserver(recorder),
	}

	var statusStore handlers.StatusStore
	var assignments handlers.AssignmentRecorder
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.StatusTTL)*time.Second,
		)
		if err != nil {
			appLogger.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer redisClient.Close()

		statusStore = redisClient
		assignments = redisClient
		engineOpts = append(engineOpts, routing.WithStatusStore(redisClient))
		health.AddCheck("redis", false, redisClient.Ping)
	}

	var graphStore builder.GraphStore
	if cfg.Neo4j.Enabled {
		neo4jClient, err := neo4j.NewClient(
			cfg.Neo4j.URI,
			cfg.Neo4j.Username,
			cfg.Neo4j.Password,
			cfg.Neo4j.Database,
			neo4j.Options{OnStateChange: recorder.ObserveBreaker, OnRetry: recorder.ObserveRetry},
		)
		if err != nil {
			appLogger.Fatal("Failed to create Neo4j client", zap.Error(err))
		}
		defer neo4jClient.Close(context.Background())

		breakers.Register(neo4jClient.Breaker())
		graphStore = neo4jClient
		engineOpts = append(engineOpts, routing.WithGraphStore(neo4jClient))
		health.AddCheck("neo4j", false, neo4jClient.Ping)
	}

	var profileStore builder.ProfileStore
	var nearest handlers.NearestFinder
	if cfg.Milvus.Enabled {
		milvusClient, err := milvus.NewClient(
			cfg.Milvus.Endpoint,
			cfg.Milvus.APIKey,
			cfg.Milvus.CollectionName,
			symptom.Dimensions,
			milvus.Options{IndexType: cfg.Milvus.IndexType, OnStateChange: recorder.ObserveBreaker, OnRetry: recorder.ObserveRetry},
		)
		if err != nil {
			appLogger.Fatal("Failed to create Milvus client", zap.Error(err))
		}
		defer milvusClient.Close()

		err = milvusClient.CreateCollection(context.Background())
		if err != nil {
			appLogger.Fatal("Failed to create collection", zap.Error(err))
		}

		breakers.Register(milvusClient.Breaker())
		profileStore = milvusClient
		nearest = milvusClient
		engineOpts = append(engineOpts, routing.WithProfileStore(milvusClient))
		health.AddCheck("milvus", false, milvusClient.Ping)
	}

	if cfg.LLM.Enabled() && cfg.Routing.Narrate {
		llmClient := llm.NewClient(llm.Config{
			APIKey:        cfg.LLM.APIKey,
			BaseURL:       cfg.LLM.BaseURL,
			Model:         cfg.LLM.Model,
			Temperature:   cfg.LLM.Temperature,
			MaxTokens:     cfg.LLM.MaxTokens,
			Timeout:       time.Duration(cfg.LLM.TimeoutSec) * time.Second,
			OnStateChange: recorder.ObserveBreaker,
			OnRetry:       recorder.ObserveRetry,
			Tokens:        recorder,
		})
		breakers.Register(llmClient.Breaker())
		engineOpts = append(engineOpts, routing.WithNarrator(llmClient))
	}

	if cfg.Dataset.Seed {
		seedCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		_, err = builder.NewBuilder(sqliteClient, graphStore, profileStore).Seed(seedCtx, bundle, true)
		cancel()
		if err != nil {
			appLogger.Fatal("Failed to seed dataset", zap.Error(err))
		}
	}

	routingEngine := routing.NewEngine(bundle.Routing, routingOpts, engineOpts...)
	evaluator := evaluation.NewEvaluator(evaluation.Recorders(sqliteClient, recorder))
	triageEngine := triage.NewEngine(evaluator, recorder, cfg.Triage.MaxPatients)
	processor := ingestion.NewProcessor(sqliteClient, recorder)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.Server.RateLimit,
		ExemptPaths:          []string{"/api/v1/health", "/api/v1/ready", "/metrics"},
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Client-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		IsDevelopment:   cfg.Server.IsDevelopment(),
		NoStorePrefixes: []string{"/api/v1/patients", "/api/v1/triage", "/api/v1/routing"},
	}))
	app.Use(limiter.Middleware())

	app.Get("/metrics", metrics.MetricsHandler())

	routingHandler := handlers.NewRoutingHandler(routingEngine, sqliteClient, assignments)
	handlers.Handlers{
		Patients:    handlers.NewPatientHandler(sqliteClient, processor),
		Triage:      handlers.NewTriageHandler(triageEngine, sqliteClient),
		Routing:     routingHandler,
		Specialists: handlers.NewSpecialistHandler(routingEngine, statusStore, nearest),
		Health:      health,
		WebSocket:   handlers.NewWebSocketHandler(routingHandler),
	}.Register(app, validation.Middleware(validation.Config{
		MaxBatchSize:     cfg.Triage.MaxPatients,
		VectorDimensions: symptom.Dimensions,
		Logger:           appLogger.GetLogger(),
	}))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
