package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hibiken/asynq"
)

// DeliveryMetrics counts notification delivery failures.
type DeliveryMetrics interface {
	RecordNotificationFailure()
}

// Deliverer posts status-change notifications to the configured webhook.
type Deliverer struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
	metrics  DeliveryMetrics
}

// NewDeliverer constructs a webhook deliverer. metrics may be nil.
func NewDeliverer(endpoint string, client *http.Client, logger *slog.Logger, metrics DeliveryMetrics) *Deliverer {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Deliverer{endpoint: endpoint, client: client, logger: logger, metrics: metrics}
}

// HandleStatusChanged processes TaskStatusChanged tasks. A malformed payload
// is dropped; a delivery failure is returned so Asynq retries it.
func (d *Deliverer) HandleStatusChanged(ctx context.Context, t *asynq.Task) error {
	var payload StatusChangedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		d.logger.Error("malformed notification payload", slog.Any("error", err))
		return asynq.SkipRetry
	}
	if err := d.deliver(ctx, payload); err != nil {
		if d.metrics != nil {
			d.metrics.RecordNotificationFailure()
		}
		d.logger.Warn("notification delivery failed",
			slog.String("delivery_id", payload.DeliveryID),
			slog.Int64("order_id", payload.OrderID),
			slog.Any("error", err))
		return err
	}
	d.logger.Info("notification delivered",
		slog.String("delivery_id", payload.DeliveryID),
		slog.Int64("order_id", payload.OrderID),
		slog.String("to", payload.ToStatus))
	return nil
}

func (d *Deliverer) deliver(ctx context.Context, payload StatusChangedPayload) error {
	if d.endpoint == "" {
		// No sink configured; treat as delivered so queues do not pile up.
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: post webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook returned %d", resp.StatusCode)
	}
	return nil
}

// Worker wraps the Asynq server processing notification jobs.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Logger    *slog.Logger
	Deliverer *Deliverer
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Deliverer == nil {
		return nil, errors.New("notify: deliverer required")
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskStatusChanged, cfg.Deliverer.HandleStatusChanged)
	return &Worker{server: srv, mux: mux, logger: cfg.Logger}, nil
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("notify: worker not configured")
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
