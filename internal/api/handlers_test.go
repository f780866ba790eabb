package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/maltedev/fashion-etl/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRunManager struct {
	mock.Mock
}

func (m *MockRunManager) Start() (*jobs.Run, error) {
	args := m.Called()
	run, _ := args.Get(0).(*jobs.Run)
	return run, args.Error(1)
}

func (m *MockRunManager) Get(id string) (*jobs.Run, error) {
	args := m.Called(id)
	run, _ := args.Get(0).(*jobs.Run)
	return run, args.Error(1)
}

func (m *MockRunManager) List() []*jobs.Run {
	return m.Called().Get(0).([]*jobs.Run)
}

func newTestServer(runs RunManager) *httptest.Server {
	return httptest.NewServer(NewHandlers(runs, slog.Default()).Router(5 * time.Second))
}

func TestHealth(t *testing.T) {
	srv := newTestServer(new(MockRunManager))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestStartRun(t *testing.T) {
	runs := new(MockRunManager)
	runs.On("Start").Return(&jobs.Run{ID: "run-1", Status: jobs.StatusPending}, nil).Once()
	runs.On("Start").Return(nil, jobs.ErrRunInProgress).Once()

	srv := newTestServer(runs)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/runs", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "/api/v1/runs/run-1", resp.Header.Get("Location"))
	var run jobs.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	assert.Equal(t, "run-1", run.ID)

	resp2, err := http.Post(srv.URL+"/api/v1/runs", "application/json", nil)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)

	runs.AssertExpectations(t)
}

func TestStartRunInternalError(t *testing.T) {
	runs := new(MockRunManager)
	runs.On("Start").Return(nil, errors.New("boom"))

	srv := newTestServer(runs)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/runs", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestGetRun(t *testing.T) {
	runs := new(MockRunManager)
	runs.On("Get", "run-1").Return(&jobs.Run{ID: "run-1", Status: jobs.StatusCompleted}, nil)
	runs.On("Get", "missing").Return(nil, jobs.ErrRunNotFound)

	srv := newTestServer(runs)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/runs/run-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var run jobs.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	assert.Equal(t, jobs.StatusCompleted, run.Status)

	resp2, err := http.Get(srv.URL + "/api/v1/runs/missing")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestListRuns(t *testing.T) {
	runs := new(MockRunManager)
	runs.On("List").Return([]*jobs.Run{{ID: "b"}, {ID: "a"}})

	srv := newTestServer(runs)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/runs")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Runs []jobs.Run `json:"runs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Runs, 2)
	assert.Equal(t, "b", body.Runs[0].ID)
}
