package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dvrflow/internal/model"
	"dvrflow/internal/service"
	"dvrflow/test/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func submitRequest(t *testing.T, job model.QueueJob) *http.Request {
	t.Helper()
	payload, err := json.Marshal(job)
	require.NoError(t, err)
	req, err := http.NewRequest("POST", "/submit", bytes.NewBuffer(payload))
	require.NoError(t, err)
	return req
}

func TestHandleSubmitJob(t *testing.T) {
	metricsMock := mocks.NewMetricsClient(t)
	queueMock := mocks.NewQueue(t)

	metricsMock.On("IncrementQueuePushCounter", "job_pushed").Return()
	metricsMock.On("IncrementServerRequestCounter", "success").Return()
	queueMock.On("EnqueueJob", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	svc := &service.Services{Metrics: metricsMock, Queue: queueMock}
	server := NewServer(svc)

	rr := httptest.NewRecorder()
	server.handleSubmitJob(rr, submitRequest(t, model.QueueJob{JobID: 42}))

	assert.Equal(t, http.StatusAccepted, rr.Code, "expected HTTP 202 Accepted status")
}

func TestHandleSubmitJobByKey(t *testing.T) {
	metricsMock := mocks.NewMetricsClient(t)
	queueMock := mocks.NewQueue(t)

	metricsMock.On("IncrementQueuePushCounter", "job_pushed").Return()
	metricsMock.On("IncrementServerRequestCounter", "success").Return()
	queueMock.On("EnqueueJob", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	svc := &service.Services{Metrics: metricsMock, Queue: queueMock}
	server := NewServer(svc)

	rr := httptest.NewRecorder()
	server.handleSubmitJob(rr, submitRequest(t, model.QueueJob{
		ChanID:    1234,
		StartTime: "20240131203000",
	}))

	assert.Equal(t, http.StatusAccepted, rr.Code)
}

func TestHandleSubmitJobMethodNotAllowed(t *testing.T) {
	svc := &service.Services{
		Metrics: mocks.NewMetricsClient(t),
		Queue:   mocks.NewQueue(t),
	}
	server := NewServer(svc)

	req, err := http.NewRequest("GET", "/submit", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.handleSubmitJob(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandleSubmitJobConflictingAddressing(t *testing.T) {
	metricsMock := mocks.NewMetricsClient(t)
	metricsMock.On("IncrementServerRequestCounter", "failed").Return()

	svc := &service.Services{Metrics: metricsMock, Queue: mocks.NewQueue(t)}
	server := NewServer(svc)

	rr := httptest.NewRecorder()
	server.handleSubmitJob(rr, submitRequest(t, model.QueueJob{
		JobID:     42,
		ChanID:    1234,
		StartTime: "20240131203000",
	}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleSubmitJobBadStartTime(t *testing.T) {
	metricsMock := mocks.NewMetricsClient(t)
	metricsMock.On("IncrementServerRequestCounter", "failed").Return()

	svc := &service.Services{Metrics: metricsMock, Queue: mocks.NewQueue(t)}
	server := NewServer(svc)

	rr := httptest.NewRecorder()
	server.handleSubmitJob(rr, submitRequest(t, model.QueueJob{
		ChanID:    1234,
		StartTime: "2024-01-31 20:30",
	}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleSubmitJobQueueFailure(t *testing.T) {
	metricsMock := mocks.NewMetricsClient(t)
	queueMock := mocks.NewQueue(t)

	metricsMock.On("IncrementServerRequestCounter", "failed").Return()
	queueMock.On("EnqueueJob", mock.Anything, mock.AnythingOfType("string")).Return(
		errors.New("redis connection error"),
	)

	svc := &service.Services{Metrics: metricsMock, Queue: queueMock}
	server := NewServer(svc)

	rr := httptest.NewRecorder()
	server.handleSubmitJob(rr, submitRequest(t, model.QueueJob{JobID: 42}))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
