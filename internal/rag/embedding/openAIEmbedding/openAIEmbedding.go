package openAIEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nkatta/HelpCenterRAG/internal/config"
	"github.com/nkatta/HelpCenterRAG/internal/customHttpClient"
	"github.com/nkatta/HelpCenterRAG/internal/rag/embedding"
	"github.com/nkatta/HelpCenterRAG/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension = int64(config.EmbeddingOutputDimensionality)

type client struct {
	oa    openai.Client
	model string
}

func GetOpenAIEmbeddingClient(apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("openai_embedding")
		if apikey == "" {
			logger.Error("OPENAI_API_KEY is not set")
			return
		}
		embeddingClient = &client{
			oa: openai.NewClient(
				option.WithAPIKey(apikey),
				option.WithHTTPClient(customHttpClient.PooledClient()),
			),
			model: config.OpenAIEmbeddingModel,
		}
		logger.Info("OpenAI embedding client created", "model", config.OpenAIEmbeddingModel)
	})

	//if init failed
	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	res, err := c.oa.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model:      openai.EmbeddingModel(c.model),
		Input:      openai.EmbeddingNewParamsInputUnion{OfString: openai.String(query)},
		Dimensions: openai.Int(dimension),
	})
	if err != nil {
		log.Error("Error getting embedding from OpenAI", "error", err)
		return nil, err
	}
	if len(res.Data) == 0 {
		return nil, errors.New("empty embedding response")
	}
	return toFloat32(res.Data[0].Embedding), nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	res, err := c.doCall(ctx, chunks)
	if err != nil {
		if isRateLimited(err) {
			log.Warn("Rate limit hit, retrying in 5 seconds")
			time.Sleep(5 * time.Second)
			res, err = c.doCall(ctx, chunks)
		}
		if err != nil {
			log.Error("Error getting batch embeddings from OpenAI", "error", err)
			return nil, err
		}
	}

	if len(res.Data) != len(chunks) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(chunks), len(res.Data))
	}

	vectors := make([][]float32, len(chunks))
	for _, d := range res.Data {
		vectors[d.Index] = toFloat32(d.Embedding)
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, chunks []string) (*openai.CreateEmbeddingResponse, error) {
	return c.oa.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model:      openai.EmbeddingModel(c.model),
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: chunks},
		Dimensions: openai.Int(dimension),
	})
}

func isRateLimited(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
