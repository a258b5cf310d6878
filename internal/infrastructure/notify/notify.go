package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/praio-service/internal/domain"
	"github.com/praio-service/internal/domain/repository"
	"go.uber.org/zap"
)

// Notifier announces a finished ingestion cycle.
type Notifier interface {
	Notify(ctx context.Context, event domain.SnapshotRefreshedEvent) error
}

// HTTPNotifier POSTs the event to the read API's refresh endpoint, once.
type HTTPNotifier struct {
	client *retryablehttp.Client
	url    string
	logger *zap.Logger
}

// NewHTTPNotifier creates an HTTPNotifier.
func NewHTTPNotifier(url string, timeout time.Duration, logger *zap.Logger) *HTTPNotifier {
	client := retryablehttp.NewClient()
	client.HTTPClient = &http.Client{Timeout: timeout}
	client.RetryMax = 0
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = nil

	return &HTTPNotifier{
		client: client,
		url:    url,
		logger: logger,
	}
}

func (n *HTTPNotifier) Notify(ctx context.Context, event domain.SnapshotRefreshedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, n.url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to notify %s: %w", n.url, err)
	}
	defer resp.Body.Close()

	reply, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify %s: status %d", n.url, resp.StatusCode)
	}

	n.logger.Info("Refresh notification delivered",
		zap.String("url", n.url),
		zap.ByteString("reply", reply))
	return nil
}

// StreamNotifier publishes the event on a Redis stream.
type StreamNotifier struct {
	streams repository.StreamRepository
	stream  string
}

// NewStreamNotifier creates a StreamNotifier publishing on stream.
func NewStreamNotifier(streams repository.StreamRepository, stream string) *StreamNotifier {
	return &StreamNotifier{
		streams: streams,
		stream:  stream,
	}
}

func (n *StreamNotifier) Notify(ctx context.Context, event domain.SnapshotRefreshedEvent) error {
	return n.streams.PublishToStream(ctx, n.stream, event)
}

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event domain.SnapshotRefreshedEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
