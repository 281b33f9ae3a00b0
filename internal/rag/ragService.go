package rag

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nkatta/HelpCenterRAG/internal/adapter/utils"
	"github.com/nkatta/HelpCenterRAG/internal/config"
	"github.com/nkatta/HelpCenterRAG/internal/domain/commonModels"
	"github.com/nkatta/HelpCenterRAG/internal/domain/jobModel"
	"github.com/nkatta/HelpCenterRAG/internal/metrics"
	"github.com/nkatta/HelpCenterRAG/internal/rag/embedding"
	"github.com/nkatta/HelpCenterRAG/internal/rag/ingest"
	"github.com/nkatta/HelpCenterRAG/internal/rag/llm"
	"github.com/nkatta/HelpCenterRAG/internal/rag/vectorDB"
	"github.com/nkatta/HelpCenterRAG/pkg/logger_i"
)

/*
ARCHITECTURE NOTE: OPAQUE INTERFACE PATTERN
---------------------------------------------------------

1. Service (Interface):
  - Real work happens down low bruh
  - This is the PUBLIC contract.
  - It defines the "behavior" (what the worker can do).
  - We expose this to keep the worker decoupled from our specific logic.

2. service (Private Struct):
  - down low stuff
  - This is the PRIVATE implementation.
  - It holds the "state" (database connections and LLM clients).
  - It is lowercase to prevent external packages from accessing our
    internal dependencies (vectorDB, llmProvider) directly.

3. Pointer Receiver (*service):
  - By defining methods on (*service), the struct IMPLICITLY satisfies
    the Service interface.
  - if it quacks like a duck, -it's a duck (Duck Typing)

4. Dependency Injection (NewService):
  - This constructor links the private struct to the public interface.
  - It allows us to swap real DBs for mocks during testing without
    changing the worker's code.
*/

// AttachmentResolver maps source article ids to the image attachment ids
// those articles reference.
type AttachmentResolver interface {
	AttachmentIDsForArticles(articleIDs []string) ([]string, error)
}

// Service is all the worker needs - it doesn't know the llm or the vector db
type Service interface {
	ProcessRequest(ctx context.Context, job jobModel.Job, messageHistory []commonModels.ChatMessage) jobModel.Job
	RebuildCorpus(ctx context.Context, job jobModel.Job) jobModel.Job

	// Answer is the synchronous single-question surface, used by callers
	// that don't go through the job queue.
	Answer(ctx context.Context, question string, history []commonModels.ChatMessage) (commonModels.AnswerResult, error)

	// EnsureReady verifies the index is populated and builds it from the
	// corpus when it isn't. Safe to call on every request.
	EnsureReady(ctx context.Context) error
}

type service struct {
	vectorDB    vectorDB.DataProcessor
	llmProvider llm.Provider
	embedder    embedding.Embedder
	resolver    AttachmentResolver
	logger      *logger_i.Logger
	ready       atomic.Bool
}

// NewService constructor
func NewService(vector vectorDB.DataProcessor, llm llm.Provider, em embedding.Embedder, resolver AttachmentResolver) Service {
	return &service{
		vectorDB:    vector,
		llmProvider: llm,
		embedder:    em,
		resolver:    resolver,
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

func (s *service) EnsureReady(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}

	if err := s.vectorDB.Probe(ctx); err == nil {
		s.logger.Info("Connected to existing index", "index", config.IndexName)
		s.ready.Store(true)
		return nil
	} else {
		s.logger.Warn("Index probe failed, building from corpus", "reason", err)
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("corpus_build", time.Since(start)) }()

	count, err := ingest.BuildFromCorpus(ctx, config.CorpusFilePath(), s.embedder, s.vectorDB)
	if err != nil {
		return fmt.Errorf("building index from corpus: %w", err)
	}
	s.logger.Info("Index built from corpus", "chunks", count)
	s.ready.Store(true)
	return nil
}

func (s *service) ProcessRequest(ctx context.Context, jobt jobModel.Job, messageHistory []commonModels.ChatMessage) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY).(string), "JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	jobt.CurrentStep = jobModel.RAGCall

	if err := s.EnsureReady(processContext); err != nil {
		return s.jobError(jobt, err, "INDEX_UNAVAILABLE", true)
	}

	// Embedding
	embeddingStep, err := s.executeEmbeddingStep(processContext, inMethodLogger, &jobt)
	if err != nil {
		return s.jobError(jobt, err, "EMBEDDING_FAILURE", true)
	}

	// Cache Check
	cachedAnswer, found := s.executeCacheCheckStep(ctx, inMethodLogger, &jobt, embeddingStep)
	if found {
		return returnOutput(jobt, commonModels.AnswerResult{Answer: cachedAnswer})
	}

	// Vector DB Search
	hits, err := s.executeVectorSearchStep(processContext, inMethodLogger, &jobt, embeddingStep)
	if err != nil {
		return s.jobError(jobt, err, "VECTOR_DB_FAILURE", true)
	}

	// Attachment lookup, non-fatal
	_, articleIds := sourcesFromHits(hits)
	attachments := s.executeAttachmentStep(processContext, inMethodLogger, &jobt, articleIds)
	jobt.JobPayload.Attachments = attachments

	// LLM Generation
	answer, err := s.executeLLMStep(processContext, inMethodLogger, &jobt, hits, attachments, messageHistory)
	if err != nil {
		return s.jobError(jobt, err, "LLM_GENERATION_FAILURE", true)
	}

	//Background Cache Save
	go func() {
		err = s.vectorDB.SaveToCache(ctx, utils.GetNewUUID(), embeddingStep, answer)
		if err != nil {
			s.logger.Error("Failed to save to cache")
		}
	}()

	return returnOutput(jobt, commonModels.AnswerResult{
		Answer:      answer,
		Sources:     jobt.JobPayload.Sources,
		Attachments: attachments,
	})
}

// Answer runs the same pipeline without job bookkeeping or the cache.
func (s *service) Answer(ctx context.Context, question string, history []commonModels.ChatMessage) (commonModels.AnswerResult, error) {
	if question == "" {
		return commonModels.AnswerResult{}, errors.New("question is empty")
	}
	if err := s.EnsureReady(ctx); err != nil {
		return commonModels.AnswerResult{}, err
	}

	queryVector, err := s.embedder.GetEmbedding(ctx, question)
	if err != nil {
		return commonModels.AnswerResult{}, fmt.Errorf("embedding question: %w", err)
	}

	hits, err := s.vectorDB.SearchMMR(ctx, queryVector, config.SearchTopK, config.SearchFetchK, config.MMRLambda)
	if err != nil {
		return commonModels.AnswerResult{}, fmt.Errorf("searching index: %w", err)
	}

	sources, articleIds := sourcesFromHits(hits)

	attachments, err := s.resolver.AttachmentIDsForArticles(articleIds)
	if err != nil {
		s.logger.Warn("Attachment resolution failed, answering without images", "error", err)
		attachments = nil
	}

	messages := assembleMessages(question, history, hits, attachments, s.logger)
	answer, err := s.llmProvider.Generate(ctx, messages)
	if err != nil {
		return commonModels.AnswerResult{}, fmt.Errorf("generating answer: %w", err)
	}

	return commonModels.AnswerResult{
		Answer:      answer,
		Sources:     sources,
		Attachments: attachments,
	}, nil
}

func (s *service) RebuildCorpus(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("corpus_rebuild", time.Since(start)) }()

	j := ingest.ProcessCorpusRebuild(ctx, job, s.embedder, s.vectorDB)
	if j.Status != jobModel.JobStatusComplete {
		return s.jobError(j, errors.New("corpus rebuild failed"), "REBUILD_FAILURE", true)
	}
	s.ready.Store(true)
	return j
}
