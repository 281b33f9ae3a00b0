package vectorDB

import (
	"context"

	"github.com/nkatta/HelpCenterRAG/internal/domain/commonModels"
)

type DataProcessor interface {
	// SearchMMR pulls fetchK candidates and keeps topK of them via
	// maximal marginal relevance. lambda weighs relevance against diversity.
	SearchMMR(ctx context.Context, queryVector []float32, topK int, fetchK int, lambda float32) ([]commonModels.SearchHit, error)

	// Probe checks that the index is reachable AND populated. Returning an
	// error here is the signal to run the full corpus build.
	Probe(ctx context.Context) error

	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error

	// EnsureCollection is the idempotent index provisioning call
	EnsureCollection(ctx context.Context, collectionName string) error
	UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.DocChunk, vectors [][]float32) error
}
