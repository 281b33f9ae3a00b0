package rag

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/nkatta/HelpCenterRAG/internal/config"
	"github.com/nkatta/HelpCenterRAG/internal/domain/commonModels"
	"github.com/nkatta/HelpCenterRAG/internal/domain/jobModel"
	"github.com/nkatta/HelpCenterRAG/internal/metrics"
	"github.com/nkatta/HelpCenterRAG/pkg/logger_i"
)

func returnOutput(job jobModel.Job, result commonModels.AnswerResult) jobModel.Job {
	job.JobPayload.Answer = result.Answer
	job.JobPayload.Sources = result.Sources
	job.JobPayload.Attachments = result.Attachments
	job.CurrentStep = jobModel.Complete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessRequest", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: "Internal Server Error",
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	return job
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job) ([]float32, error) {
	*job = logOutput(*job, jobModel.EmbeddingAPICall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(ctx, job.JobPayload.Question)
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, emb []float32) (string, bool) {
	*job = logOutput(*job, jobModel.CacheCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	ans, found, _ := s.vectorDB.GetCachedAnswer(ctx, emb)
	metrics.CaptureCacheLookup(found)
	return ans, found
}

func (s *service) executeVectorSearchStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, emb []float32) ([]commonModels.SearchHit, error) {
	*job = logOutput(*job, jobModel.VectorDBCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	hits, err := s.vectorDB.SearchMMR(ctx, emb, config.SearchTopK, config.SearchFetchK, config.MMRLambda)
	if err != nil {
		return nil, err
	}
	sources, _ := sourcesFromHits(hits)
	job.JobPayload.Sources = sources
	return hits, nil
}

// executeAttachmentStep never fails the job. An answer without its screenshots
// is still an answer.
func (s *service) executeAttachmentStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, articleIds []string) []string {
	*job = logOutput(*job, jobModel.AttachmentLookup, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("attachment_lookup", time.Since(start)) }()

	attachments, err := s.resolver.AttachmentIDsForArticles(articleIds)
	if err != nil {
		log.Warn("Attachment resolution failed, answering without images", "error", err)
		return nil
	}
	return attachments
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, hits []commonModels.SearchHit, attachments []string, history []commonModels.ChatMessage) (string, error) {
	*job = logOutput(*job, jobModel.LLMCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	messages := assembleMessages(job.JobPayload.Question, history, hits, attachments, log)
	return s.llmProvider.Generate(ctx, messages)
}

// sourcesFromHits deduplicates hits by article id, first occurrence wins, so
// the MMR ranking order carries through to the Sources section. It also
// returns the distinct article ids for the attachment lookup.
func sourcesFromHits(hits []commonModels.SearchHit) ([]commonModels.Source, []string) {
	seen := make(map[string]bool, len(hits))
	sources := make([]commonModels.Source, 0, len(hits))
	articleIds := make([]string, 0, len(hits))

	for _, hit := range hits {
		id := hit.Metadata.ArticleId
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		sources = append(sources, commonModels.Source{
			Title:     hit.Metadata.Title,
			ArticleId: id,
			URL:       articleURL(hit.Metadata),
		})
		articleIds = append(articleIds, id)
	}
	return sources, articleIds
}

// articleURL trusts the stored url when it looks absolute and otherwise
// falls back to the canonical help-center address for the article.
func articleURL(meta commonModels.DocMetadata) string {
	if meta.URL != "" && strings.HasPrefix(meta.URL, "http") {
		return meta.URL
	}
	return config.DocsBaseURL + meta.ArticleId
}
