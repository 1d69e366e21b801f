package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mzalewski-wsm/studium/internal/database"
)

func TestNewStudiumApp(t *testing.T) {
	mockRepo := &database.MockStudiumRepository{}
	app := newTestApp(t, mockRepo)

	require.NotNil(t, app)
	assert.NotNil(t, app.log)
	assert.Equal(t, mockRepo, app.db)
	assert.NotNil(t, app.mux)
	assert.NotNil(t, app.generateShortId)
}

func Test_healthCheck(t *testing.T) {
	tcases := []struct {
		name         string
		pingErr      error
		expectedCode int
		expectedBody string
	}{
		{
			name:         "healthy",
			expectedCode: http.StatusOK,
			expectedBody: "OK",
		},
		{
			name:         "database unreachable",
			pingErr:      errors.New("connection refused"),
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockStudiumRepository{}
			defer mockRepo.AssertExpectations(t)

			mockRepo.On("Ping", mock.Anything).Return(tc.pingErr).Once()

			app := newTestApp(t, mockRepo)

			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			app.healthCheck(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.Equal(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func Test_writeJson(t *testing.T) {
	app := newTestApp(t, &database.MockStudiumRepository{})

	t.Run("encodes the value", func(t *testing.T) {
		rr := httptest.NewRecorder()
		app.writeJson(rr, http.StatusTeapot, map[string]string{"hello": "world"})

		assert.Equal(t, http.StatusTeapot, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"hello":"world"}`, rr.Body.String())
	})

	t.Run("nil value writes no body", func(t *testing.T) {
		rr := httptest.NewRecorder()
		app.writeJson(rr, http.StatusNoContent, nil)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
	})
}
