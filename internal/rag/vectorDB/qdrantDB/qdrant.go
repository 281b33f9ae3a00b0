package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/nkatta/HelpCenterRAG/internal/config"
	"github.com/nkatta/HelpCenterRAG/internal/domain/commonModels"
	"github.com/nkatta/HelpCenterRAG/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
)

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once
var dimension = config.EmbeddingOutputDimensionality
var collectionName = config.IndexName

type ClientHolder struct {
	QObj *qdrant.Client
}

func GetQdrantClient(ctx context.Context) *ClientHolder {

	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient()
		if res != nil {
			qdrantInstance = res
			initCacheCollection(ctx, qdrantInstance)
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: qdrantInstance,
	}
}

func newClient() *qdrant.Client {

	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
		GrpcOptions: []grpc.DialOption{
			//batch upserts during a rebuild can sit idle between batches
			grpc.WithKeepaliveParams(keepalive.ClientParameters{
				Time:                config.QdrantConnectionTimeout,
				Timeout:             10 * time.Second,
				PermitWithoutStream: true,
			}),
		},
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
	}

	err = createCollection(context.Background(), client, config.IndexName)
	if err != nil {
		logger.Error("could not create collection: ", "collectionName", config.IndexName, "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

// Probe decides connect-vs-build. The index counts as usable only if it is
// reachable and holds at least one point; anything else sends the caller
// down the full rebuild path.
func (db *ClientHolder) Probe(ctx context.Context) error {
	count, err := db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: collectionName,
	})
	if err != nil {
		return fmt.Errorf("probing %s: %w", collectionName, err)
	}
	if count == 0 {
		return fmt.Errorf("collection %s exists but holds no points", collectionName)
	}

	// trivial k=1 query to confirm search actually works
	_, err = db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(make([]float32, dimension)...),
		Limit:          qdrant.PtrOf(uint64(1)),
	})
	if err != nil {
		return fmt.Errorf("probe query on %s: %w", collectionName, err)
	}
	return nil
}

// SearchMMR fetches fetchK candidates with their stored vectors and runs
// maximal marginal relevance locally - qdrant has no native MMR operator.
func (db *ClientHolder) SearchMMR(ctx context.Context, queryVector []float32, topK int, fetchK int, lambda float32) ([]commonModels.SearchHit, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(fetchK)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	candidates := make([][]float32, len(result))
	for i, hit := range result {
		candidates[i] = hit.GetVectors().GetVector().GetData()
	}

	var hits []commonModels.SearchHit
	for _, idx := range maximalMarginalRelevance(queryVector, candidates, lambda, topK) {
		hit := result[idx]
		hits = append(hits, commonModels.SearchHit{
			Content: hit.Payload["text"].GetStringValue(),
			Score:   hit.Score,
			Metadata: commonModels.DocMetadata{
				Title:       hit.Payload["title"].GetStringValue(),
				ArticleId:   hit.Payload["article_id"].GetStringValue(),
				LastUpdated: hit.Payload["last_updated"].GetStringValue(),
				URL:         hit.Payload["url"].GetStringValue(),
			},
		})
	}

	loggr.Debug("MMR search complete", "candidates", len(result), "kept", len(hits))
	return hits, nil
}

func (db *ClientHolder) EnsureCollection(ctx context.Context, collectionName string) error {
	return createCollection(ctx, db.QObj, collectionName)
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))

	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			// deterministic chunk UUID keeps re-ingestion idempotent
			Id: qdrant.NewID(chunk.ChunkId),

			Vectors: qdrant.NewVectors(vectors[i]...),

			Payload: qdrant.NewValueMap(map[string]any{
				"text":         chunk.Content,
				"title":        chunk.Metadata.Title,
				"article_id":   chunk.Metadata.ArticleId,
				"last_updated": chunk.Metadata.LastUpdated,
				"url":          chunk.Metadata.URL,
				"chunk_order":  chunk.Order,
				"chunk_id":     chunk.ChunkId,
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})

	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}

	return nil

}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {

		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	return err
}
