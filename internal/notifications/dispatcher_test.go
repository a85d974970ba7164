package notifications

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	portssvc "github.com/democraciv/bank_backend/internal/core/ports/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DeliversQueuedNotification(t *testing.T) {
	received := make(chan dmPayload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var payload dmPayload
		require.NoError(t, json.Unmarshal(body, &payload))
		received <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher(server.URL, "Bank of Democraciv", "", slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Enqueue(portssvc.Notification{
		Targets:     []int64{42},
		Title:       "New Transaction",
		Description: "You have just received a transaction!",
		Fields:      []portssvc.NotificationField{{Name: "Amount", Value: "10.00¥", Inline: true}},
	})

	select {
	case payload := <-received:
		assert.Equal(t, []int64{42}, payload.Targets)
		assert.Equal(t, "New Transaction", payload.Embed.Title)
		require.Len(t, payload.Embed.Fields, 1)
		assert.Equal(t, "Amount", payload.Embed.Fields[0].Name)
	case <-time.After(5 * time.Second):
		t.Fatal("notification was never delivered")
	}

	cancel()
	d.Wait()
}

func TestDispatcher_DropsTargetlessNotifications(t *testing.T) {
	d := NewDispatcher("http://unused.invalid", "Bank", "", slog.Default())

	// Never started; a queued notification would sit in the channel.
	d.Enqueue(portssvc.Notification{Title: "nobody home"})

	assert.Empty(t, d.queue)
}

func TestDispatcher_DrainsQueueOnShutdown(t *testing.T) {
	var hits int
	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 2 {
			close(done)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher(server.URL, "Bank", "", slog.Default())
	d.Enqueue(portssvc.Notification{Targets: []int64{1}, Title: "first"})
	d.Enqueue(portssvc.Notification{Targets: []int64{2}, Title: "second"})

	// Start with an already-cancelled context: the worker must still flush
	// what was queued before returning.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("queued notifications were not drained on shutdown")
	}
}
