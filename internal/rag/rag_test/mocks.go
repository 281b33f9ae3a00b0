package rag_test

import (
	"context"

	"github.com/nkatta/HelpCenterRAG/internal/domain/commonModels"
)

// MockVectorDB implements vectorDB.DataProcessor
type MockVectorDB struct {
	// Control fields to simulate different behaviors
	OnSearchMMR        func(ctx context.Context, queryVector []float32, topK int, fetchK int, lambda float32) ([]commonModels.SearchHit, error)
	OnProbe            func(ctx context.Context) error
	OnGetCachedAnswer  func(ctx context.Context, queryVector []float32) (string, bool, error)
	OnSaveToCache      func(ctx context.Context, id string, vector []float32, answer string) error
	OnEnsureCollection func(ctx context.Context, name string) error
	OnUpsertBatch      func(ctx context.Context, name string, chunks []commonModels.DocChunk, vectors [][]float32) error
}

func (m *MockVectorDB) SearchMMR(ctx context.Context, v []float32, topK int, fetchK int, lambda float32) ([]commonModels.SearchHit, error) {
	if m.OnSearchMMR != nil {
		return m.OnSearchMMR(ctx, v, topK, fetchK, lambda)
	}
	return []commonModels.SearchHit{
		{Content: "default context", Metadata: commonModels.DocMetadata{Title: "Default Article", ArticleId: "1", URL: "https://docs.example.com/1"}},
	}, nil
}

func (m *MockVectorDB) Probe(ctx context.Context) error {
	if m.OnProbe != nil {
		return m.OnProbe(ctx)
	}
	return nil
}

func (m *MockVectorDB) GetCachedAnswer(ctx context.Context, v []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, v)
	}
	return "", false, nil
}

func (m *MockVectorDB) SaveToCache(ctx context.Context, id string, v []float32, a string) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, v, a)
	}
	return nil
}

func (m *MockVectorDB) EnsureCollection(ctx context.Context, name string) error {
	if m.OnEnsureCollection != nil {
		return m.OnEnsureCollection(ctx, name)
	}
	return nil
}

func (m *MockVectorDB) UpsertBatch(ctx context.Context, name string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, name, chunks, vectors)
	}
	return nil
}

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	// Return dummy vectors matching chunk size
	return make([][]float32, len(chunks)), nil
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

// MockLLM implements llm.Provider and records the messages it was given
type MockLLM struct {
	OnGenerate   func(ctx context.Context, messages []commonModels.ChatMessage) (string, error)
	SentMessages []commonModels.ChatMessage
}

func (m *MockLLM) Generate(ctx context.Context, messages []commonModels.ChatMessage) (string, error) {
	m.SentMessages = messages
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, messages)
	}
	return "mocked llm response", nil
}

// MockResolver implements rag.AttachmentResolver
type MockResolver struct {
	OnResolve func(articleIds []string) ([]string, error)
}

func (m *MockResolver) AttachmentIDsForArticles(articleIds []string) ([]string, error) {
	if m.OnResolve != nil {
		return m.OnResolve(articleIds)
	}
	return nil, nil
}
