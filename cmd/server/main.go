package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kharazdev/joke-factory/internal/config"
	"github.com/kharazdev/joke-factory/internal/generation"
	"github.com/kharazdev/joke-factory/internal/handler"
	"github.com/kharazdev/joke-factory/internal/llm"
	"github.com/kharazdev/joke-factory/internal/memory"
	"github.com/kharazdev/joke-factory/internal/middleware"
	"github.com/kharazdev/joke-factory/internal/orchestrator"
	"github.com/kharazdev/joke-factory/internal/ratelimit"
	"github.com/kharazdev/joke-factory/internal/repository"
	"github.com/kharazdev/joke-factory/internal/trend"
	"github.com/kharazdev/joke-factory/pkg/log"
)

func main() {
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()

	ctx := context.Background()

	store, err := repository.NewStore(ctx, cfg.Database.Postgres.DSN)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer store.Close()

	chatClient, err := llm.NewChatClient(cfg.LLM)
	if err != nil {
		log.Fatalf("failed to create chat client: %v", err)
	}
	embedder, err := llm.NewEmbedder(ctx, cfg.Embedding)
	if err != nil {
		log.Fatalf("failed to create embedder: %v", err)
	}

	gate := ratelimit.NewGate(store.RateLimits)
	retriever := memory.NewRetriever(embedder, store.Memories, cfg.Pipeline.MemoryLimit)
	generator := generation.NewGenerator(chatClient, retriever, cfg.Pipeline.MemoryLimit)
	persister := generation.NewPersister(store.Jokes, store.Memories, embedder)
	assigner := generation.NewAssigner(chatClient)
	trendService := trend.NewService(chatClient, store.Trends, store.Characters, gate)
	bus := orchestrator.NewEventBus()
	orch := orchestrator.New(
		store.Characters,
		trendService,
		assigner,
		generator,
		persister,
		gate,
		bus,
		orchestrator.Config{
			TrendIntervalDays: cfg.Pipeline.TrendIntervalDays,
			HighVolumeCount:   cfg.Pipeline.HighVolumeCount,
			TopCharacterLimit: cfg.Pipeline.TopCharacterLimit,
		},
	)

	jobHandler := handler.NewJobHandler(orch)
	jokeHandler := handler.NewJokeHandler(
		store.Characters, store.Jokes, generator, persister, store.Memories, gate,
		cfg.Pipeline.JokeIntervalDays,
	)
	characterHandler := handler.NewCharacterHandler(store.Characters)
	trendHandler := handler.NewTrendHandler(trendService, gate, cfg.Pipeline.TrendIntervalDays)
	memoryHandler := handler.NewMemoryHandler(retriever)
	wsHandler := handler.NewWSHandler(bus)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	apiV1 := r.Group("/api/v1")
	{
		jobs := apiV1.Group("/jobs")
		{
			triggers := jobs.Group("/")
			triggers.Use(middleware.JobAuth(cfg.Auth.JobToken))
			{
				triggers.POST("/daily", jobHandler.TriggerDaily)
				triggers.POST("/categories/:id", jobHandler.TriggerCategory)
				triggers.POST("/top", jobHandler.TriggerTop)
			}
			jobs.GET("/:id", jobHandler.GetStatus)
			jobs.DELETE("/:id", jobHandler.Cancel)
		}

		jokes := apiV1.Group("/jokes")
		{
			jokes.GET("", jokeHandler.List)
			jokes.POST("/generate", jokeHandler.Generate)
			jokes.PATCH("/:id", jokeHandler.Evaluate)
		}

		characters := apiV1.Group("/characters")
		{
			characters.GET("", characterHandler.List)
			characters.POST("", characterHandler.Create)
			characters.GET("/:id", characterHandler.Get)
			characters.PUT("/:id", characterHandler.Update)
		}

		trends := apiV1.Group("/trends")
		{
			trends.GET("/latest", trendHandler.Latest)
			trends.POST("/generate", middleware.JobAuth(cfg.Auth.JobToken), trendHandler.Generate)
		}

		apiV1.GET("/memories/search", memoryHandler.Search)
	}
	r.GET("/ws", wsHandler.Handle)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received, stopping server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}
	log.Info("server stopped")
}
