package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KNICEX/trade-monitor/internal/entity"
	"github.com/KNICEX/trade-monitor/internal/service/monitor"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixedStats monitor.Stats

func (f fixedStats) Stats() monitor.Stats {
	return monitor.Stats(f)
}

type MockAlertRepo struct {
	mock.Mock
}

func (m *MockAlertRepo) Create(ctx context.Context, alert entity.Alert) (int64, error) {
	args := m.Called(ctx, alert)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAlertRepo) FindRecent(ctx context.Context, limit int) ([]entity.Alert, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]entity.Alert), args.Error(1)
}

func (m *MockAlertRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestStatusServer_Status(t *testing.T) {
	stats := fixedStats{LastSeen: 3, Polls: 10, AlertsSent: 2, LastPollAt: time.Unix(1700000000, 0).UTC()}
	s := NewStatusServer(":0", stats, nil, zerolog.Nop())

	rec := serve(s.Handler(), "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got monitor.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.LastSeen)
	assert.Equal(t, int64(10), got.Polls)
	assert.Equal(t, int64(2), got.AlertsSent)

	rec = serve(s.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatusServer_AlertsWithoutJournal(t *testing.T) {
	s := NewStatusServer(":0", fixedStats{}, nil, zerolog.Nop())
	assert.Equal(t, http.StatusNotFound, serve(s.Handler(), "/alerts").Code)
}

func TestStatusServer_Alerts(t *testing.T) {
	testCases := []struct {
		name      string
		query     string
		mock      func(r *MockAlertRepo)
		wantCode  int
		wantCount int
	}{
		{
			name:  "default limit",
			query: "/alerts",
			mock: func(r *MockAlertRepo) {
				r.On("FindRecent", mock.Anything, defaultAlertLimit).
					Return([]entity.Alert{{Id: 2, CycleId: "b"}, {Id: 1, CycleId: "a"}}, nil)
			},
			wantCode:  http.StatusOK,
			wantCount: 2,
		},
		{
			name:  "limit capped",
			query: "/alerts?limit=5000",
			mock: func(r *MockAlertRepo) {
				r.On("FindRecent", mock.Anything, maxAlertLimit).Return([]entity.Alert(nil), nil)
			},
			wantCode:  http.StatusOK,
			wantCount: 0,
		},
		{
			name:     "bad limit",
			query:    "/alerts?limit=-1",
			mock:     func(r *MockAlertRepo) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name:  "db error",
			query: "/alerts?limit=1",
			mock: func(r *MockAlertRepo) {
				r.On("FindRecent", mock.Anything, 1).Return([]entity.Alert(nil), errors.New("disk I/O error"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			journal := &MockAlertRepo{}
			tc.mock(journal)
			s := NewStatusServer(":0", fixedStats{}, journal, zerolog.Nop())

			rec := serve(s.Handler(), tc.query)
			require.Equal(t, tc.wantCode, rec.Code)
			if tc.wantCode == http.StatusOK {
				var alerts []entity.Alert
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
				assert.Len(t, alerts, tc.wantCount)
			}
			journal.AssertExpectations(t)
		})
	}
}

func TestStatusServer_RunStopsOnCancel(t *testing.T) {
	s := NewStatusServer("127.0.0.1:0", fixedStats{}, nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("status server did not stop")
	}
}
