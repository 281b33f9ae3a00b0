// @title           Help Center RAG API
// @version         1.0
// @description     This API answers help center questions with retrieval augmented generation
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nkatta/HelpCenterRAG/internal/config"
	"github.com/nkatta/HelpCenterRAG/internal/corpus"
	"github.com/nkatta/HelpCenterRAG/internal/data/store"
	jobmodel "github.com/nkatta/HelpCenterRAG/internal/domain/jobModel"
	"github.com/nkatta/HelpCenterRAG/internal/handlers"
	"github.com/nkatta/HelpCenterRAG/internal/job"
	"github.com/nkatta/HelpCenterRAG/internal/rag"
	"github.com/nkatta/HelpCenterRAG/internal/rag/embedding/openAIEmbedding"
	"github.com/nkatta/HelpCenterRAG/internal/rag/llm"
	"github.com/nkatta/HelpCenterRAG/internal/rag/llm/gemini"
	"github.com/nkatta/HelpCenterRAG/internal/rag/llm/openAIChat"
	"github.com/nkatta/HelpCenterRAG/internal/rag/vectorDB/qdrantDB"
	"github.com/nkatta/HelpCenterRAG/internal/server"
	"github.com/nkatta/HelpCenterRAG/internal/worker"
	"github.com/nkatta/HelpCenterRAG/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	jobStore := store.GetRedisJobStore(serviceContext)
	messageStore := store.GetRedisMessageStore(serviceContext)
	if jobStore == nil || messageStore == nil {
		logger.Error("Redis stores are offline")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.MessageStore = store.InitMessageStore()
	} else {
		serviceConfig.JobStore = jobStore
		serviceConfig.MessageStore = messageStore
	}
	service := job.InitJobService(serviceConfig)

	vectorDB := qdrantDB.GetQdrantClient(serviceContext)
	embeddingService := openAIEmbedding.GetOpenAIEmbeddingClient(config.OpenAIAPIKey())
	llmProvider := selectLLMProvider(serviceContext)

	if vectorDB == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	resolver := corpus.NewResolver(config.CorpusFilePath())
	ragService := rag.NewService(vectorDB, llmProvider, embeddingService, resolver)

	//connect to an existing index or build it from the corpus before traffic lands
	go func() {
		if err := ragService.EnsureReady(serviceContext); err != nil {
			logger.Error("Index is unavailable and could not be built", "error", err)
		}
	}()

	handlers.InitJobHandler(service, resolver)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func selectLLMProvider(ctx context.Context) llm.Provider {
	if config.LLMProvider() == config.ProviderGemini {
		return gemini.GetGeminiClient(ctx, config.GeminiAPIKey(), config.GeminiModelName)
	}
	return openAIChat.GetOpenAIChatClient(config.OpenAIAPIKey(), config.OpenAIChatModel)
}
