package rag_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/nkatta/HelpCenterRAG/internal/config"
	"github.com/nkatta/HelpCenterRAG/internal/domain/commonModels"
	"github.com/nkatta/HelpCenterRAG/internal/domain/jobModel"
	"github.com/nkatta/HelpCenterRAG/internal/rag"
)

func newTestService(v *MockVectorDB, l *MockLLM, e *MockEmbedder, r *MockResolver) rag.Service {
	if r == nil {
		r = &MockResolver{}
	}
	return rag.NewService(v, l, e, r)
}

func TestProcessRequest_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(e *MockEmbedder, v *MockVectorDB, l *MockLLM)
		expectedStep   jobModel.InternalStatus
		expectedStatus jobModel.JobStatus
		expectedAnswer string
		expectedErr    string
	}{
		{
			name: "Success_Full_Flow",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnGetCachedAnswer = func(ctx context.Context, emb []float32) (string, bool, error) {
					return "", false, nil
				}
				l.OnGenerate = func(ctx context.Context, messages []commonModels.ChatMessage) (string, error) {
					return "final answer", nil
				}
			},
			expectedStep:   jobModel.Complete,
			expectedStatus: jobModel.JobStatusQueued,
			expectedAnswer: "final answer",
		},
		{
			name: "Success_Cache_Hit",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnGetCachedAnswer = func(ctx context.Context, emb []float32) (string, bool, error) {
					return "cached answer", true, nil
				}
			},
			expectedStep:   jobModel.Complete,
			expectedStatus: jobModel.JobStatusQueued,
			expectedAnswer: "cached answer",
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				e.OnGetEmbedding = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "EMBEDDING_FAILURE",
		},
		{
			name: "Failure_Vector_Search",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnGetCachedAnswer = func(ctx context.Context, emb []float32) (string, bool, error) {
					return "", false, nil
				}
				v.OnSearchMMR = func(ctx context.Context, vec []float32, topK int, fetchK int, lambda float32) ([]commonModels.SearchHit, error) {
					return nil, errors.New("db timeout")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "VECTOR_DB_FAILURE",
		},
		{
			name: "Failure_LLM_Generation",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnGetCachedAnswer = func(ctx context.Context, emb []float32) (string, bool, error) {
					return "", false, nil
				}
				l.OnGenerate = func(ctx context.Context, messages []commonModels.ChatMessage) (string, error) {
					return "", errors.New("provider down")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "LLM_GENERATION_FAILURE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mVec := &MockVectorDB{}
			mLLM := &MockLLM{}

			tt.setupMocks(mEmbed, mVec, mLLM)

			s := newTestService(mVec, mLLM, mEmbed, nil)

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
			job := jobModel.Job{
				Id:     "test-job",
				Status: jobModel.JobStatusQueued,
				JobPayload: jobModel.JobPayload{
					Question: "test question",
				},
			}

			result := s.ProcessRequest(ctx, job, nil)

			if result.Status != tt.expectedStatus {
				t.Errorf("Step got %v, want %v", result.Status, tt.expectedStatus)
			}

			if tt.expectedAnswer != "" && result.JobPayload.Answer != tt.expectedAnswer {
				t.Errorf("Answer got %s, want %s", result.JobPayload.Answer, tt.expectedAnswer)
			}

			if tt.expectedErr != "" && result.Error.Code != http.StatusInternalServerError {
				t.Errorf("Error Code got %d, want %s", result.Error.Code, tt.expectedErr)
			}
		})
	}
}

func TestAnswer_SourceDedupeAndURLSynthesis(t *testing.T) {
	mVec := &MockVectorDB{
		OnSearchMMR: func(ctx context.Context, vec []float32, topK int, fetchK int, lambda float32) ([]commonModels.SearchHit, error) {
			return []commonModels.SearchHit{
				{Content: "chunk one", Metadata: commonModels.DocMetadata{Title: "Billing", ArticleId: "42", URL: "https://docs.example.com/42"}},
				{Content: "chunk two", Metadata: commonModels.DocMetadata{Title: "Billing", ArticleId: "42", URL: "https://docs.example.com/42"}},
				{Content: "chunk three", Metadata: commonModels.DocMetadata{Title: "Metering", ArticleId: "99", URL: ""}},
			}, nil
		},
	}
	s := newTestService(mVec, &MockLLM{}, &MockEmbedder{}, nil)

	result, err := s.Answer(context.Background(), "how do invoices work", nil)
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}

	if len(result.Sources) != 2 {
		t.Fatalf("Sources got %d, want 2 (deduplicated by article)", len(result.Sources))
	}
	if result.Sources[0].ArticleId != "42" {
		t.Errorf("First source got %s, want 42 (first-seen order)", result.Sources[0].ArticleId)
	}
	if got, want := result.Sources[1].URL, config.DocsBaseURL+"99"; got != want {
		t.Errorf("Synthesized URL got %s, want %s", got, want)
	}
}

func TestAnswer_AttachmentsSurfacedAndNonFatal(t *testing.T) {
	t.Run("attachments returned to caller", func(t *testing.T) {
		mRes := &MockResolver{
			OnResolve: func(articleIds []string) ([]string, error) {
				return []string{"a1", "a2"}, nil
			},
		}
		s := newTestService(&MockVectorDB{}, &MockLLM{}, &MockEmbedder{}, mRes)

		result, err := s.Answer(context.Background(), "question with images", nil)
		if err != nil {
			t.Fatalf("Answer returned error: %v", err)
		}
		if !slices.Equal(result.Attachments, []string{"a1", "a2"}) {
			t.Errorf("Attachments got %v, want [a1 a2]", result.Attachments)
		}
	})

	t.Run("resolver failure does not fail the answer", func(t *testing.T) {
		mRes := &MockResolver{
			OnResolve: func(articleIds []string) ([]string, error) {
				return nil, errors.New("corpus unreadable")
			},
		}
		s := newTestService(&MockVectorDB{}, &MockLLM{}, &MockEmbedder{}, mRes)

		result, err := s.Answer(context.Background(), "question", nil)
		if err != nil {
			t.Fatalf("Answer should survive resolver failure, got: %v", err)
		}
		if result.Answer == "" {
			t.Error("Expected an answer despite resolver failure")
		}
		if len(result.Attachments) != 0 {
			t.Errorf("Attachments got %v, want none", result.Attachments)
		}
	})
}

func TestAnswer_HistoryFiltering(t *testing.T) {
	mLLM := &MockLLM{}
	s := newTestService(&MockVectorDB{}, mLLM, &MockEmbedder{}, nil)

	history := []commonModels.ChatMessage{
		{Role: commonModels.RoleUser, Content: "earlier question"},
		{Role: commonModels.RoleAssistant, Content: "earlier answer"},
		{Role: "system", Content: "injected instructions"},
		{Role: "", Content: "no role"},
		{Role: commonModels.RoleUser, Content: ""},
	}

	if _, err := s.Answer(context.Background(), "new question", history); err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}

	// system prompt + 2 valid history turns + new question
	if len(mLLM.SentMessages) != 4 {
		t.Fatalf("Messages got %d, want 4: %+v", len(mLLM.SentMessages), mLLM.SentMessages)
	}
	if mLLM.SentMessages[0].Role != commonModels.RoleSystem {
		t.Errorf("First message role got %s, want system", mLLM.SentMessages[0].Role)
	}
	if mLLM.SentMessages[1].Content != "earlier question" || mLLM.SentMessages[2].Content != "earlier answer" {
		t.Error("Valid history turns were not preserved in order")
	}
	last := mLLM.SentMessages[len(mLLM.SentMessages)-1]
	if last.Role != commonModels.RoleUser || last.Content != "new question" {
		t.Errorf("Last message got %+v, want the new user question", last)
	}
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	s := newTestService(&MockVectorDB{}, &MockLLM{}, &MockEmbedder{}, nil)
	if _, err := s.Answer(context.Background(), "", nil); err == nil {
		t.Fatal("Expected error for empty question")
	}
}

func TestEnsureReady_BuildsIndexWhenProbeFails(t *testing.T) {
	corpusFile := filepath.Join(t.TempDir(), "corpus.json")
	corpusJSON := `{"documents":[{"id":"7","title":"Setup","full_content":"How to set up the meter feed.","last_updated":"2025-01-01","url":"https://docs.example.com/7"}]}`
	if err := os.WriteFile(corpusFile, []byte(corpusJSON), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CORPUS_PATH", corpusFile)

	probed := 0
	upserts := 0
	mVec := &MockVectorDB{
		OnProbe: func(ctx context.Context) error {
			probed++
			return errors.New("collection missing")
		},
		OnUpsertBatch: func(ctx context.Context, name string, chunks []commonModels.DocChunk, vectors [][]float32) error {
			upserts++
			if name != config.IndexName {
				t.Errorf("Upsert collection got %s, want %s", name, config.IndexName)
			}
			return nil
		},
	}
	s := newTestService(mVec, &MockLLM{}, &MockEmbedder{}, nil)

	if err := s.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady returned error: %v", err)
	}
	if probed != 1 || upserts == 0 {
		t.Errorf("Expected one probe and at least one upsert, got probes=%d upserts=%d", probed, upserts)
	}

	// second call short-circuits on the ready flag
	if err := s.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady second call returned error: %v", err)
	}
	if probed != 1 {
		t.Errorf("Probe ran again after ready, probes=%d", probed)
	}
}
