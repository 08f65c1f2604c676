package jobs

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInspector struct {
	queue    *asynq.QueueInfo
	queueErr error
	task     *asynq.TaskInfo
	taskErr  error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return f.queue, f.queueErr }
func (f fakeInspector) GetTaskInfo(string, string) (*asynq.TaskInfo, error) {
	return f.task, f.taskErr
}

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthReportsQueue(t *testing.T) {
	h := NewHandler(fakeInspector{queue: &asynq.QueueInfo{Queue: "default", Pending: 3, Failed: 1}}, nil)
	rec := serve(h, "/jobs/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body queueHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Pending)
	assert.Equal(t, 1, body.Failed)
}

func TestHealthUnavailable(t *testing.T) {
	h := NewHandler(fakeInspector{queueErr: errors.New("dial tcp: refused")}, nil)
	rec := serve(h, "/jobs/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h = NewHandler(fakeInspector{queueErr: asynq.ErrQueueNotFound}, nil)
	rec = serve(h, "/jobs/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTaskStatus(t *testing.T) {
	h := NewHandler(fakeInspector{task: &asynq.TaskInfo{
		ID:     "abc",
		Type:   TaskReportExport,
		State:  asynq.TaskStateCompleted,
		Result: []byte("/tmp/informe_diario-abc.pdf"),
	}}, nil)
	rec := serve(h, "/jobs/abc")
	require.Equal(t, http.StatusOK, rec.Code)

	var body taskStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "completed", body.State)
	assert.Equal(t, "/tmp/informe_diario-abc.pdf", body.Result)

	h = NewHandler(fakeInspector{taskErr: asynq.ErrTaskNotFound}, nil)
	assert.Equal(t, http.StatusNotFound, serve(h, "/jobs/zzz").Code)
}
