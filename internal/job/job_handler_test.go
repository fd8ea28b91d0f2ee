package job

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rohanmehta-dev/finqueue/common"
	"github.com/rohanmehta-dev/finqueue/internal/config"
	"github.com/rohanmehta-dev/finqueue/internal/dto"
	"github.com/rohanmehta-dev/finqueue/internal/mocks"
	"github.com/rohanmehta-dev/finqueue/middleware"
)

func newTestRouter(svc *mocks.JobServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewJobHandler(svc)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.POST("/jobs/create", h.Create)
	r.GET("/jobs/:id", h.Get)
	r.PUT("/jobs/:id/replay", h.Replay)
	return r
}

func TestJobHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*mocks.JobServiceMock)
		expectedStatus int
		checkBody      func(t *testing.T, body map[string]any)
	}{
		{
			name: "successful job creation",
			body: `{"type":"transfer","payload":{"from":"A1001","to":"A1002","amount":100}}`,
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("Enqueue", mock.Anything, mock.Anything, config.ActorAPI).
					Return(&dto.JobSummary{ID: 1, Status: config.StatusQueued, CreatedAt: time.Now().UTC()}, nil)
			},
			expectedStatus: http.StatusCreated,
			checkBody: func(t *testing.T, body map[string]any) {
				assert.Equal(t, float64(1), body["id"])
				assert.Equal(t, config.StatusQueued, body["status"])
				assert.NotContains(t, body, "payload")
			},
		},
		{
			name:           "invalid request body JSON",
			body:           "{invalid json}",
			setupMock:      func(m *mocks.JobServiceMock) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing type fails validation",
			body:           `{"payload":{"from":"A1001"}}`,
			setupMock:      func(m *mocks.JobServiceMock) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid job type",
			body: `{"type":"mine_bitcoin","payload":{}}`,
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("Enqueue", mock.Anything, mock.Anything, config.ActorAPI).
					Return(nil, common.NewAPIError(http.StatusBadRequest, "invalid job type", map[string]any{
						"provided": "mine_bitcoin",
						"allowed":  config.JobTypes,
					}))
			},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "invalid job type", body["error"])
				assert.Contains(t, body, "fields")
			},
		},
		{
			name: "invalid payload",
			body: `{"type":"transfer","payload":{"from":"A1001"}}`,
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("Enqueue", mock.Anything, mock.Anything, config.ActorAPI).
					Return(nil, common.ErrInvalidPayload)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "storage error stays generic",
			body: `{"type":"transfer","payload":{"from":"A1001","to":"A1002","amount":100}}`,
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("Enqueue", mock.Anything, mock.Anything, config.ActorAPI).
					Return(nil, assert.AnError)
			},
			expectedStatus: http.StatusInternalServerError,
			checkBody: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "internal server error", body["error"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.JobServiceMock)
			tt.setupMock(svc)
			r := newTestRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/jobs/create", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.checkBody != nil {
				var body map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				tt.checkBody(t, body)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestJobHandler_Get(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupMock      func(*mocks.JobServiceMock)
		expectedStatus int
	}{
		{
			name: "found",
			path: "/jobs/42",
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("GetJobByID", mock.Anything, uint(42)).
					Return(&dto.JobSummary{ID: 42, Type: config.TypeTransfer, Status: config.StatusCompleted}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found",
			path: "/jobs/404",
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("GetJobByID", mock.Anything, uint(404)).Return(nil, common.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "non-numeric id",
			path:           "/jobs/abc",
			setupMock:      func(m *mocks.JobServiceMock) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "zero id",
			path:           "/jobs/0",
			setupMock:      func(m *mocks.JobServiceMock) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.JobServiceMock)
			tt.setupMock(svc)
			r := newTestRouter(svc)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestJobHandler_Replay(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupMock      func(*mocks.JobServiceMock)
		expectedStatus int
		wantMessage    string
	}{
		{
			name: "replayed",
			path: "/jobs/7/replay",
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("Replay", mock.Anything, uint(7), config.ActorAPI).Return(nil)
			},
			expectedStatus: http.StatusOK,
			wantMessage:    "job replayed",
		},
		{
			name: "not found",
			path: "/jobs/404/replay",
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("Replay", mock.Anything, uint(404), config.ActorAPI).Return(common.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "not in failed state",
			path: "/jobs/8/replay",
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("Replay", mock.Anything, uint(8), config.ActorAPI).Return(common.ErrInvalidState)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.JobServiceMock)
			tt.setupMock(svc)
			r := newTestRouter(svc)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.wantMessage != "" {
				var body map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.wantMessage, body["message"])
			}
			svc.AssertExpectations(t)
		})
	}
}
