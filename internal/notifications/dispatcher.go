package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	portssvc "github.com/democraciv/bank_backend/internal/core/ports/services"
)

const (
	queueSize      = 256
	requestTimeout = 5 * time.Second
	maxRetryTime   = 30 * time.Second
)

// dmPayload is the body posted to the bot's DM endpoint.
type dmPayload struct {
	Targets []int64 `json:"targets"`
	Message string  `json:"message"`
	Embed   Embed   `json:"embed"`
}

// Dispatcher delivers direct messages to the Discord bot endpoint on a
// background worker. A full queue drops the notification rather than block
// the request path.
type Dispatcher struct {
	endpoint string
	bankName string
	iconURL  string
	client   *http.Client
	logger   *slog.Logger
	queue    chan portssvc.Notification
	done     chan struct{}
}

// NewDispatcher creates a dispatcher. When endpoint is empty, notifications
// are logged and discarded, which keeps local setups working without a bot.
func NewDispatcher(endpoint, bankName, iconURL string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		endpoint: endpoint,
		bankName: bankName,
		iconURL:  iconURL,
		client:   &http.Client{Timeout: requestTimeout},
		logger:   logger,
		queue:    make(chan portssvc.Notification, queueSize),
		done:     make(chan struct{}),
	}
}

// Enqueue queues the notification for delivery without blocking.
func (d *Dispatcher) Enqueue(n portssvc.Notification) {
	if len(n.Targets) == 0 {
		return
	}
	select {
	case d.queue <- n:
	default:
		d.logger.Warn("notification queue full, dropping message", slog.String("title", n.Title))
	}
}

// Start runs the delivery worker until ctx is cancelled, then drains what is
// already queued before returning.
func (d *Dispatcher) Start(ctx context.Context) {
	go func() {
		defer close(d.done)
		for {
			select {
			case n := <-d.queue:
				d.deliver(ctx, n)
			case <-ctx.Done():
				for {
					select {
					case n := <-d.queue:
						d.deliver(context.Background(), n)
					default:
						return
					}
				}
			}
		}
	}()
}

// Wait blocks until the worker has stopped.
func (d *Dispatcher) Wait() {
	<-d.done
}

func (d *Dispatcher) deliver(ctx context.Context, n portssvc.Notification) {
	if d.endpoint == "" {
		d.logger.Info("no DM endpoint configured, discarding notification", slog.String("title", n.Title))
		return
	}

	embed := MakeEmbed(n.Title, n.Description, n.URL, d.bankName, d.iconURL)
	for _, f := range n.Fields {
		embed.AddField(f.Name, f.Value, f.Inline)
	}
	body, err := json.Marshal(dmPayload{Targets: n.Targets, Message: "", Embed: embed})
	if err != nil {
		d.logger.Error("failed to marshal notification", slog.String("error", err.Error()))
		return
	}

	policy := backoff.WithContext(newBackoff(), ctx)
	err = backoff.Retry(func() error {
		return d.post(ctx, body)
	}, policy)
	if err != nil {
		d.logger.Error("giving up on notification delivery",
			slog.String("title", n.Title),
			slog.String("error", err.Error()))
	}
}

func (d *Dispatcher) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return backoff.Permanent(fmt.Errorf("bot endpoint rejected notification: %d", resp.StatusCode))
	}
	return fmt.Errorf("bot endpoint returned %d", resp.StatusCode)
}

func newBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxRetryTime
	return b
}
