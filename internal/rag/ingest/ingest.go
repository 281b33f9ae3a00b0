package ingest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nkatta/HelpCenterRAG/internal/config"
	"github.com/nkatta/HelpCenterRAG/internal/corpus"
	"github.com/nkatta/HelpCenterRAG/internal/domain/commonModels"
	"github.com/nkatta/HelpCenterRAG/internal/domain/jobModel"
	"github.com/nkatta/HelpCenterRAG/internal/metrics"
	"github.com/nkatta/HelpCenterRAG/internal/rag/embedding"
	"github.com/nkatta/HelpCenterRAG/internal/rag/vectorDB"
	"github.com/nkatta/HelpCenterRAG/pkg/logger_i"
)

var logger *logger_i.Logger

// BuildFromCorpus is the full build path: load the corpus, chunk it, make
// sure the collection exists, then embed and upsert everything batchwise.
// Returns the chunk count so callers can log what got indexed.
func BuildFromCorpus(ctx context.Context, corpusPath string, e embedding.Embedder, vectorDatabase vectorDB.DataProcessor) (int, error) {
	logger = logger_i.NewLogger("Corpus Ingestion")

	records, err := corpus.Load(corpusPath)
	if err != nil {
		return 0, err
	}
	docs := corpus.Normalize(records)
	logger.Info("Loaded corpus", "documents", len(docs))

	chunks := PrepareChunks(docs)
	logger.Info("Split corpus", "chunks", len(chunks))

	if err := vectorDatabase.EnsureCollection(ctx, config.IndexName); err != nil {
		return 0, fmt.Errorf("ensuring collection %s: %w", config.IndexName, err)
	}

	if err := BatchIngest(ctx, chunks, vectorDatabase, e); err != nil {
		return 0, err
	}
	metrics.SetIndexedChunks(len(chunks))
	return len(chunks), nil
}

// BatchIngest embeds and upserts chunks in fixed-size batches. Bulk embedding
// the whole corpus in one call trips provider rate limits, so each batch is
// its own bounded call with a progress log. Batches run strictly sequentially;
// a failure mid-batch is fatal and the next build restarts from batch zero.
func BatchIngest(ctx context.Context, chunks []commonModels.DocChunk, vectorDatabase vectorDB.DataProcessor, embedder embedding.Embedder) error {
	if logger == nil {
		logger = logger_i.NewLogger("Corpus Ingestion")
	}

	batchSize := config.IngestBatchSize
	totalBatches := (len(chunks) + batchSize - 1) / batchSize

	for i := 0; i < len(chunks); i += batchSize {
		end := min(i+batchSize, len(chunks))
		currentBatch := chunks[i:end]

		texts := make([]string, 0, len(currentBatch))
		for _, c := range currentBatch {
			texts = append(texts, c.Content)
		}

		logger.Info("Processing batch", "batch", i/batchSize+1, "of", totalBatches, "chunks", len(currentBatch))

		vectors, err := embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch %d failed: %w", i/batchSize+1, err)
		}

		if err := vectorDatabase.UpsertBatch(ctx, config.IndexName, currentBatch, vectors); err != nil {
			return fmt.Errorf("upserting batch %d failed: %w", i/batchSize+1, err)
		}
	}

	return nil
}

// ProcessCorpusRebuild runs the build path for a rebuild job
func ProcessCorpusRebuild(ctx context.Context, job jobModel.Job, e embedding.Embedder, vectorDatabase vectorDB.DataProcessor) jobModel.Job {
	job.CurrentStep = jobModel.RebuildProcessing

	count, err := BuildFromCorpus(ctx, config.CorpusFilePath(), e, vectorDatabase)
	if err != nil {
		logger.Error("Corpus rebuild failed", "error", err)
		job.Status = jobModel.JobStatusError
		job.Error = jobModel.JobError{
			Code:    http.StatusInternalServerError,
			Message: "Corpus rebuild failed",
			Retry:   true,
		}
		return job
	}

	logger.Info("Corpus rebuild complete", "chunks", count)
	job.Status = jobModel.JobStatusComplete
	job.CurrentStep = jobModel.Complete
	return job
}
