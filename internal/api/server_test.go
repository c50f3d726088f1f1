package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/appointment_bot/internal/agent"
	"github.com/Freeeeeet/appointment_bot/internal/model"
	"github.com/Freeeeeet/appointment_bot/internal/repository"
	"github.com/Freeeeeet/appointment_bot/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type failingTools struct{ err error }

func (f failingTools) Call(context.Context, string, json.RawMessage) (any, error) {
	return nil, f.err
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	now := time.Date(2026, time.February, 9, 8, 0, 0, 0, time.Local)
	store := repository.NewMemoryAppointmentRepository()
	svc := service.NewBookingService(store, service.BookingConfig{Slots: model.DefaultSlotConfig()}, zap.NewNop()).
		WithClock(func() time.Time { return now })
	tools := agent.NewTools(svc, nil, zap.NewNop())

	srv := httptest.NewServer(NewEcho(NewHandler(tools, store, nil, zap.NewNop())))
	t.Cleanup(srv.Close)
	return srv
}

func postTool(t *testing.T, url, name, body string) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := http.Post(url+"/tools/"+name, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestCallTool_BookThenConflict(t *testing.T) {
	srv := newTestServer(t)
	body := `{"phone_number":"+15551234567","patient_name":"Jane Doe","appointment_date":"2026-02-09","appointment_time":"09:00"}`

	resp, decoded := postTool(t, srv.URL, agent.ToolBookAppointment, body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decoded["success"])
	appointment := decoded["appointment"].(map[string]any)
	assert.Equal(t, "2026-02-09", appointment["appointment_date"])
	assert.Equal(t, "09:00", appointment["appointment_time"])
	assert.Equal(t, "scheduled", appointment["status"])

	resp, decoded = postTool(t, srv.URL, agent.ToolBookAppointment, body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decoded["success"])
	assert.Equal(t, "Slot on 2026-02-09 at 09:00 is already booked. Please choose another time.", decoded["error"])
}

func TestCallTool_FetchSlots(t *testing.T) {
	srv := newTestServer(t)

	resp, decoded := postTool(t, srv.URL, agent.ToolFetchSlots, `{"preferred_date":"2026-02-10"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 16, decoded["total_available"])
	assert.Len(t, decoded["slots"], 10)
}

func TestCallTool_Errors(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := postTool(t, srv.URL, "delete_everything", `{}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = postTool(t, srv.URL, agent.ToolFetchSlots, `{"preferred_date":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCallTool_StoreUnavailable(t *testing.T) {
	h := NewHandler(failingTools{err: fmt.Errorf("fetch_slots: %w", model.ErrStoreTimeout)}, stubPinger{}, nil, zap.NewNop())
	srv := httptest.NewServer(NewEcho(h))
	defer srv.Close()

	resp, _ := postTool(t, srv.URL, agent.ToolFetchSlots, `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	for _, tt := range []struct {
		name string
		err  error
		code int
	}{
		{"ok", nil, http.StatusOK},
		{"store down", errors.New("connection refused"), http.StatusServiceUnavailable},
	} {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(NewEcho(NewHandler(failingTools{}, stubPinger{err: tt.err}, nil, zap.NewNop())))
			defer srv.Close()

			resp, err := http.Get(srv.URL + "/health")
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}
}

func TestListTools(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/tools")
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Equal(t, agent.Names(), decoded["tools"])
}
