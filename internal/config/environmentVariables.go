package config

import (
	"log/slog"
	"time"
)

const (
	LOG_LEVEL_PROD                  = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, it falls back to an internal in-memory store
	TRACE_ID_KEY                    = "traceId"
	RATE_LIMIT_PER_SECOND           = 2
	BURST_RATE_LIMIT_PER_SECOND     = 5

	EmbeddingOutputDimensionality int32 = 768
	EmbeddingDBName                     = "paper-chunks"
	DocumentIdPayloadKey                = "document_id"

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	JobExecutionTimeout             = 5 * time.Minute

	//serverTimeouts
	ReadTimeout            = 15 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//vectorDB
	QdrantHost     = "localhost"
	QdrantGrpcPort = 6334
	QdrantUseTLS   = false
	QdrantPoolSize = 1 //2-5 is preferred for prod according to documentation

	//chunking
	ChunkSize      = 800
	ChunkOverlap   = 100
	EmbeddingBatch = 100

	//retrieval
	RetrievalTopK = 10
	RerankTopN    = 2
	RerankTimeout = 30 * time.Second

	//llm
	GeminiModelName      = "gemini-2.5-flash-lite"
	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAIModelName      = "gpt-4o-mini"
	OpenAIEmbeddingModel = "text-embedding-3-small"

	ModelTemperature float32 = 0
	MaxOutputTokens  int32   = 512

	//fetching
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second
	FetchTimeout        = 60 * time.Second
	MaxDocumentBytes    = 64 << 20
	PdfPageTimeout      = 10 * time.Second
	ArxivPdfURL         = "https://arxiv.org/pdf/"
	ArxivAPIURL         = "http://export.arxiv.org/api/query"

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore      = 0
	RedisLockStore     = 1
	RedisResponseCache = 2

	//redis timeouts
	RedisJobStoreTTL  = 24 * time.Hour
	ResponseCacheTTL  = 24 * time.Hour
	IngestLockTTL     = 10 * time.Minute
	IngestLockBackoff = 500 * time.Millisecond

	//sqlite
	SqliteDataDir = "data"
	SqliteFile    = "papers.db"

	//uploads
	UploadDir     = "temporary_data"
	MaxUploadSize = 32 << 20 //32mb
)
