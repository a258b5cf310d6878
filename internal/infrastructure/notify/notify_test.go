package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/praio-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testEvent() domain.SnapshotRefreshedEvent {
	return domain.SnapshotRefreshedEvent{
		ID:          uuid.New(),
		Points:      12,
		Fallbacks:   1,
		CompletedAt: time.Date(2025, 1, 15, 10, 0, 5, 0, time.UTC),
	}
}

func TestHTTPNotifier_Notify(t *testing.T) {
	t.Run("posts the event", func(t *testing.T) {
		event := testEvent()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var got domain.SnapshotRefreshedEvent
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Equal(t, event.ID, got.ID)
			assert.Equal(t, 12, got.Points)

			w.Write([]byte(`{"status":"updated","attempts":1}`))
		}))
		defer server.Close()

		n := NewHTTPNotifier(server.URL, time.Second, zap.NewNop())
		assert.NoError(t, n.Notify(context.Background(), event))
	})

	t.Run("error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		n := NewHTTPNotifier(server.URL, time.Second, zap.NewNop())
		assert.Error(t, n.Notify(context.Background(), testEvent()))
	})

	t.Run("unreachable api", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		addr := server.URL
		server.Close()

		n := NewHTTPNotifier(addr, time.Second, zap.NewNop())
		assert.Error(t, n.Notify(context.Background(), testEvent()))
	})
}

type recordingNotifier struct {
	calls int
	err   error
}

func (r *recordingNotifier) Notify(context.Context, domain.SnapshotRefreshedEvent) error {
	r.calls++
	return r.err
}

func TestMulti_Notify(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("down")}
	ok := &recordingNotifier{}

	err := Multi{failing, ok}.Notify(context.Background(), testEvent())

	assert.Error(t, err)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls)
	assert.NoError(t, Multi{ok}.Notify(context.Background(), testEvent()))
}
