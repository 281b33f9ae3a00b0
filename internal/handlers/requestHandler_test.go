package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/nkatta/HelpCenterRAG/internal/api"
	"github.com/nkatta/HelpCenterRAG/internal/config"
	"github.com/nkatta/HelpCenterRAG/internal/domain/commonModels"
	"github.com/nkatta/HelpCenterRAG/internal/domain/jobModel"
	"github.com/nkatta/HelpCenterRAG/internal/job"
)

type stubJobStore struct {
	jobs map[string]jobModel.Job
}

func (s *stubJobStore) GetJob(ctx context.Context, id string) (jobModel.Job, bool) {
	j, ok := s.jobs[id]
	return j, ok
}

func (s *stubJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	s.jobs[j.Id] = j
	return nil
}

func (s *stubJobStore) DeleteJob(ctx context.Context, id string) {
	delete(s.jobs, id)
}

type stubMessageStore struct{}

func (s *stubMessageStore) ValidateChatId(ctx context.Context, id string) bool { return true }
func (s *stubMessageStore) InitNewChat(ctx context.Context, id string) error   { return nil }
func (s *stubMessageStore) TrySaveChat(ctx context.Context, id string, p jobModel.JobPayload) error {
	return nil
}
func (s *stubMessageStore) GetMessageHistory(ctx context.Context, id string) (error, []commonModels.ChatMessage) {
	return nil, nil
}

func TestGetStatusHandler(t *testing.T) {
	store := &stubJobStore{jobs: map[string]jobModel.Job{
		"job-1": {Id: "job-1", ChatId: "chat-1", Status: jobModel.JobStatusComplete},
	}}
	svc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 1),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          store,
		MessageStore:      &stubMessageStore{},
	})
	InitJobHandler(svc, nil)

	router := chi.NewRouter()
	router.Get("/status/{id}", GetStatusHandler)

	get := func(t *testing.T, path string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req = req.WithContext(context.WithValue(req.Context(), config.TRACE_ID_KEY, "status-trace"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("Known job returns its envelope", func(t *testing.T) {
		rec := get(t, "/status/job-1")
		if rec.Code != http.StatusOK {
			t.Fatalf("Status got %d, want %d", rec.Code, http.StatusOK)
		}

		var res api.JobResponse
		if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
			t.Fatalf("Decoding response: %v", err)
		}
		if res.Id != "job-1" || res.Result.Status != string(jobModel.JobStatusComplete) {
			t.Errorf("Envelope got %+v, want job-1 COMPLETE", res)
		}
	})

	t.Run("Unknown job returns only the error body", func(t *testing.T) {
		rec := get(t, "/status/ghost-job")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("Status got %d, want %d", rec.Code, http.StatusNotFound)
		}

		dec := json.NewDecoder(rec.Body)
		var res api.JobResponse
		if err := dec.Decode(&res); err != nil {
			t.Fatalf("Decoding response: %v", err)
		}
		if res.Error == nil || res.Error.Message != "Job not found" {
			t.Errorf("Error envelope got %+v, want Job not found", res.Error)
		}
		// the handler must stop after the error write, so nothing may
		// trail the error document in the body
		if dec.More() {
			t.Error("Response body carries a second JSON document after the error")
		}
	})
}
