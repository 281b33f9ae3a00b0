package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IS_PROD                         = false
	LOG_LEVEL_PROD                  = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, it falls back to an in-memory store
	TRACE_ID_KEY                    = "traceId"
	RATE_LIMIT_PER_SECOND           = 2
	BURST_RATE_LIMIT_PER_SECOND     = 5
	CacheSimilarityCutoff           = 0.97

	//vector index - dimensionality matches text-embedding-3-large
	EmbeddingOutputDimensionality uint64 = 3072
	IndexName                            = "trilogyai-docs"

	//retrieval - MMR pulls FetchK candidates and keeps TopK, lambda weighs relevance over diversity
	SearchTopK      = 3
	SearchFetchK    = 10
	MMRLambda       = 0.7
	MaxPromptImages = 5

	//chunking
	MaxChunkSize    = 2000
	ChunkOverlap    = 100
	IngestBatchSize = 100

	//corpus
	CorpusPath  = "processed_zendesk_docs_v2.json"
	DocsBaseURL = "https://trilogyeffective.zendesk.com/hc/en-us/articles/"

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = ""
	QdrantPort              = 6333 //http
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false //set for https
	QdrantPoolSize          = 1     //2-5 is preferred for prod according to documentation

	//llm - the chat model is a fine tune pinned to this exact id
	OpenAIChatModel = "ft:gpt-4.1-2025-04-14:bridgeiq:trilogyai:BQiiHK25"
	GeminiModelName = "gemini-2.5-flash-lite-preview-09-2025"
	ProviderOpenAI  = "openai"
	ProviderGemini  = "gemini"

	//embeddings
	OpenAIEmbeddingModel = "text-embedding-3-large"

	ModelTemperature float64 = 0.7

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//auth
	NoAuthBypass = true //flip off once a token is provisioned

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisPassword = ""

	//redis has 16 DB we can use
	RedisJobStore     = 0
	RedisMessageStore = 1

	//redis timeouts
	RedisJobStoreTTL     = 24 * time.Hour
	RedisMessageStoreTTL = 24 * time.Hour
)

// env lookups with const fallbacks - credentials only live in the environment

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func AuthToken() string {
	return os.Getenv("AUTH_TOKEN")
}

func LLMProvider() string {
	if p := os.Getenv("LLM_PROVIDER"); p != "" {
		return p
	}
	return ProviderOpenAI
}

func RedisAddress() string {
	if a := os.Getenv("REDIS_ADDR"); a != "" {
		return a
	}
	return RedisAddr
}

func CorpusFilePath() string {
	if p := os.Getenv("CORPUS_PATH"); p != "" {
		return p
	}
	return CorpusPath
}
