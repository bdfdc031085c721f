// @title           PaperRAG API
// @version         1.0
// @description     Asynchronous question answering and summarization over scientific articles
// @termsOfService  http://swagger.io/terms/

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/data/redisStore"
	"github.com/akolanti/PaperRAG/internal/data/sqliteStore"
	"github.com/akolanti/PaperRAG/internal/data/store"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/internal/handlers"
	"github.com/akolanti/PaperRAG/internal/job"
	"github.com/akolanti/PaperRAG/internal/mcpServer"
	"github.com/akolanti/PaperRAG/internal/middleware"
	"github.com/akolanti/PaperRAG/internal/rag"
	"github.com/akolanti/PaperRAG/internal/rag/embedding"
	"github.com/akolanti/PaperRAG/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/PaperRAG/internal/rag/embedding/openAIEmbedding"
	"github.com/akolanti/PaperRAG/internal/rag/ingest"
	"github.com/akolanti/PaperRAG/internal/rag/llm"
	"github.com/akolanti/PaperRAG/internal/rag/llm/gemini"
	"github.com/akolanti/PaperRAG/internal/rag/llm/openAI"
	"github.com/akolanti/PaperRAG/internal/rag/rerank"
	"github.com/akolanti/PaperRAG/internal/rag/responseCache"
	"github.com/akolanti/PaperRAG/internal/rag/vectorDB"
	"github.com/akolanti/PaperRAG/internal/rag/vectorDB/memoryIndex"
	"github.com/akolanti/PaperRAG/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/PaperRAG/internal/server"
	"github.com/akolanti/PaperRAG/internal/worker"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	settings, err := config.Load(os.Getenv("PAPERRAG_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger_i.Init(settings.IsProd, settings.LogLevel)
	var logger = logger_i.NewLogger("main")

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//stores
	redisOpts := redisStore.Options{Addr: settings.RedisAddr, Password: settings.RedisPassword}
	redisJobs := store.GetRedisJobStore(serviceContext, redisOpts)
	var jobStore jobModel.JobStore
	var locker ingest.Locker
	var cache responseCache.Cache
	if redisJobs == nil {
		if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
			logger.Error("Redis is offline and fallback is disabled")
			return
		}
		logger.Warn("Redis stores are offline, using in-memory stores")
		jobStore = store.InitInMemoryJobStore()
		locker = ingest.NewKeyedLocker()
		cache = responseCache.NewMemoryCache()
	} else {
		jobStore = redisJobs
		locker = lockerFor(serviceContext, redisOpts)
		cache = cacheFor(serviceContext, redisOpts)
	}

	sqlite, err := sqliteStore.NewStore(settings.SqliteDir)
	if err != nil {
		logger.Error("Could not open sqlite store", "dir", settings.SqliteDir, "error", err)
		return
	}
	defer sqlite.Close()

	index, err := indexFor(serviceContext, settings)
	if err != nil {
		logger.Error("Vector index failed to initialize", "store", settings.VectorStore, "error", err)
		return
	}
	embedder, llmProvider, err := providersFor(serviceContext, settings)
	if err != nil {
		logger.Error("Model provider failed to initialize", "provider", settings.Provider, "error", err)
		return
	}

	ragService := rag.NewService(
		rag.Capabilities{
			Embedder: embedder,
			Reranker: rerank.NewHTTPReranker(settings.RerankerURL, config.RerankTimeout),
			LLM:      llmProvider,
		},
		rag.Stores{
			Index:    index,
			Articles: sqlite,
			Sessions: sqlite,
			Cache:    cache,
			Locker:   locker,
			Fetcher:  ingest.NewHTTPFetcher(ingest.WithTempDir(filepath.Join(os.TempDir(), "paperrag"))),
		},
	)

	//job service and worker pool
	service := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, config.BufferLimit),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          jobStore,
		Sessions:          sqlite,
	})
	pool := worker.NewPool(service, worker.HandlersFor(ragService))
	pool.Start()

	//server handling
	apiServer := server.CreateServer(settings.ListenAddr, server.Routes{
		Handler:    handlers.NewHandler(service, config.UploadDir),
		Middleware: middleware.New(settings),
		MCP:        mcpServer.NewServer(service).Handler(),
	})

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	go apiServer.ShutDownHandler(server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		StopWorkers:      pool.Stop,
		CloseServices:    closeExternalServices,
	})
	go apiServer.ListenAndServe()

	<-stopExecution
	logger.Info("Server stopped")
}

func lockerFor(ctx context.Context, opts redisStore.Options) ingest.Locker {
	if s := redisStore.GetRedisStore(ctx, opts, config.RedisLockStore); s != nil {
		return ingest.NewRedisLocker(s)
	}
	return ingest.NewKeyedLocker()
}

func cacheFor(ctx context.Context, opts redisStore.Options) responseCache.Cache {
	if s := redisStore.GetRedisStore(ctx, opts, config.RedisResponseCache); s != nil {
		return responseCache.NewRedisCache(s)
	}
	return responseCache.NewMemoryCache()
}

func indexFor(ctx context.Context, settings *config.Settings) (vectorDB.DataProcessor, error) {
	if settings.VectorStore == "memory" {
		return memoryIndex.New(), nil
	}
	return qdrantDB.NewClientHolder(ctx, qdrantDB.Options{
		Host:   settings.QdrantHost,
		Port:   settings.QdrantPort,
		APIKey: settings.QdrantKey,
	})
}

func providersFor(ctx context.Context, settings *config.Settings) (embedding.Embedder, llm.Provider, error) {
	if settings.Provider == "openai" {
		return openAIEmbedding.NewOpenAIEmbedder(settings.OpenAIAPIKey, settings.OpenAIBaseURL, settings.OpenAIEmbed),
			openAI.NewOpenAIClient(settings.OpenAIAPIKey, settings.OpenAIBaseURL, settings.OpenAIModel), nil
	}
	embedder, err := googleEmbedding.NewGoogleEmbedder(ctx, settings.EmbeddingModel, settings.GeminiAPIKey)
	if err != nil {
		return nil, nil, err
	}
	provider, err := gemini.NewGeminiClient(ctx, settings.GeminiModel, settings.GeminiAPIKey)
	if err != nil {
		return nil, nil, err
	}
	return embedder, provider, nil
}
