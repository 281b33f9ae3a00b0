package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nkatta/HelpCenterRAG/internal/config"
	"github.com/nkatta/HelpCenterRAG/internal/domain/commonModels"
	"github.com/nkatta/HelpCenterRAG/internal/domain/jobModel"
	"github.com/nkatta/HelpCenterRAG/internal/job"
	"github.com/nkatta/HelpCenterRAG/pkg/logger_i"
)

// MockRagService to track if jobs are executed
type MockRagService struct {
	ProcessedCount int32
	RebuiltCount   int32
	SeenHistory    []commonModels.ChatMessage
}

func (m *MockRagService) ProcessRequest(ctx context.Context, j jobModel.Job, hist []commonModels.ChatMessage) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	m.SeenHistory = hist
	return j
}

func (m *MockRagService) RebuildCorpus(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.RebuiltCount, 1)
	j.Status = jobModel.JobStatusComplete
	return j
}

func (m *MockRagService) Answer(ctx context.Context, question string, history []commonModels.ChatMessage) (commonModels.AnswerResult, error) {
	return commonModels.AnswerResult{}, nil
}

func (m *MockRagService) EnsureReady(ctx context.Context) error { return nil }

type MockJobStore struct {
	OnSaveJob func(ctx context.Context, job jobModel.Job) error
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	if m.OnSaveJob != nil {
		return m.OnSaveJob(ctx, j)
	}
	return nil
}

// MockMessageStore handles chat history
type MockMessageStore struct {
	OnGetHistory func(ctx context.Context, chatId string) (error, []commonModels.ChatMessage)
	OnSaveChat   func(ctx context.Context, chatId string, payload jobModel.JobPayload) error
}

func (m *MockMessageStore) ValidateChatId(ctx context.Context, id string) bool {
	return true
}

func (m *MockMessageStore) InitNewChat(ctx context.Context, id string) error {
	return nil
}

func (m *MockMessageStore) GetMessageHistory(ctx context.Context, id string) (error, []commonModels.ChatMessage) {
	if m.OnGetHistory != nil {
		return m.OnGetHistory(ctx, id)
	}
	return nil, []commonModels.ChatMessage{}
}
func (m *MockMessageStore) TrySaveChat(ctx context.Context, id string, p jobModel.JobPayload) error {
	if m.OnSaveChat != nil {
		return m.OnSaveChat(ctx, id, p)
	}
	return nil
}

func TestWorkerPool_Flow(t *testing.T) {
	// 1. Setup
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          &MockJobStore{},
		MessageStore:      &MockMessageStore{},
	}
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	// Reset global state for test
	atomic.StoreInt64(&currentWorkerCount, 0)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		// Signal dispatcher to create a worker
		jobSvc.DispatcherChannel <- true

		// Give it a millisecond to spawn
		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker processes a job", func(t *testing.T) {
		testJob := jobModel.Job{Id: "test-1", JobType: jobModel.JobTypeQuery}
		jobSvc.JobChannel <- testJob

		// Wait for worker to pick up and process
		time.Sleep(50 * time.Millisecond)

		processed := atomic.LoadInt32(&mockRag.ProcessedCount)
		if processed != 1 {
			t.Errorf("Expected 1 job processed, got %d", processed)
		}
	})

	t.Run("Worker routes rebuild jobs", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "rebuild-1", JobType: jobModel.JobTypeRebuild}

		time.Sleep(50 * time.Millisecond)

		rebuilt := atomic.LoadInt32(&mockRag.RebuiltCount)
		if rebuilt != 1 {
			t.Errorf("Expected 1 rebuild processed, got %d", rebuilt)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		// Send stop signal
		close(stopChan)

		// Wait for workers to exit
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			// Success
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestResolveHistory_PrefersRequestHistory(t *testing.T) {
	logger = logger_i.NewLogger("TestWorkerPool")
	stored := []commonModels.ChatMessage{{Role: commonModels.RoleUser, Content: "stored turn"}}
	jobSvc := &job.Service{
		MessageStore: &MockMessageStore{
			OnGetHistory: func(ctx context.Context, chatId string) (error, []commonModels.ChatMessage) {
				return nil, stored
			},
		},
	}
	InitServices(jobSvc, &MockRagService{})

	requestHistory := []commonModels.ChatMessage{{Role: commonModels.RoleUser, Content: "inline turn"}}
	j := jobModel.Job{ChatId: "chat-1", JobPayload: jobModel.JobPayload{History: requestHistory}}

	got := resolveHistory(context.Background(), j, logger)
	if len(got) != 1 || got[0].Content != "inline turn" {
		t.Errorf("Expected request history to win, got %+v", got)
	}

	j.JobPayload.History = nil
	got = resolveHistory(context.Background(), j, logger)
	if len(got) != 1 || got[0].Content != "stored turn" {
		t.Errorf("Expected stored history fallback, got %+v", got)
	}
}

func TestWorker_IdleTimeout(t *testing.T) {
	// Temporarily override config/globals for test
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 2) // Must be > 1 based on your logic
	logger = logger_i.NewLogger("TestWorkerPool")
	jobSvc := &job.Service{
		JobChannel: make(chan jobModel.Job),
	}
	InitServices(jobSvc, &MockRagService{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	// Spawn 1 worker manually
	createWorker()
	time.Sleep(config.IdleWorkerTimeout)

	time.Sleep(100 * time.Millisecond)
	count := atomic.LoadInt64(&currentWorkerCount)
	if count != 0 {
		t.Errorf("Assertion Failed: Worker should have timed out and retired, but count is %d", count)
	}
}
