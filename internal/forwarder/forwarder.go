// Package forwarder replicates captured events to the configured downstream
// target, decoupled from the caller's response path. Delivery is best
// effort: one attempt per event, bounded by a timeout, with the outcome
// reported out of band and never to the webhook sender.
package forwarder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hookrelay-systems/hookrelay/internal/logging"
	"github.com/hookrelay-systems/hookrelay/internal/metrics"
	"github.com/hookrelay-systems/hookrelay/internal/models"
)

// Correlation headers added to every forwarded request so the target can
// deduplicate and trace replicas back to the origin tenant.
const (
	HeaderEventID    = "X-Hookrelay-Event-Id"
	HeaderOriginHost = "X-Hookrelay-Origin-Host"
)

// Outcome is the result of one forwarding attempt.
type Outcome struct {
	EventID    string        `json:"event_id"`
	OriginHost string        `json:"origin_host"`
	Target     string        `json:"target"`
	Path       string        `json:"path"`
	Success    bool          `json:"success"`
	StatusCode int           `json:"status_code,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	At         time.Time     `json:"at"`
}

// OutcomePublisher receives forwarding outcomes on an out-of-band channel.
type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, outcome *Outcome)
}

// Config controls the forwarder.
type Config struct {
	// Target is the downstream host every event is replicated to.
	Target string
	// Scheme is "http" or "https" (default https).
	Scheme string
	// Timeout bounds each delivery attempt.
	Timeout time.Duration
	// QueueSize is the dispatch buffer; a full queue drops new jobs.
	QueueSize int
	// Workers is the number of delivery goroutines.
	Workers int
}

// Forwarder delivers captured events to the target from a pool of workers
// fed by a buffered queue. Dispatch never blocks the caller.
type Forwarder struct {
	cfg       Config
	client    *http.Client
	queue     chan *models.WebhookEvent
	publisher OutcomePublisher
	logger    *logging.Logger

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a forwarder and starts its workers. publisher may be nil.
func New(cfg Config, publisher OutcomePublisher, logger *logging.Logger) *Forwarder {
	if cfg.Scheme == "" {
		cfg.Scheme = "https"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if logger == nil {
		logger = logging.Default()
	}

	f := &Forwarder{
		cfg:       cfg,
		client:    &http.Client{Timeout: cfg.Timeout},
		queue:     make(chan *models.WebhookEvent, cfg.QueueSize),
		publisher: publisher,
		logger:    logger,
	}

	metrics.ForwardQueueDepth.Set(0)

	for i := 0; i < cfg.Workers; i++ {
		f.wg.Add(1)
		go f.worker()
	}

	return f
}

// Target returns the configured downstream host.
func (f *Forwarder) Target() string {
	return f.cfg.Target
}

// Dispatch enqueues an event for delivery without blocking. When the queue
// is full the job is dropped and counted; the event itself is already
// durably stored and unaffected.
func (f *Forwarder) Dispatch(event *models.WebhookEvent) {
	select {
	case f.queue <- event:
		metrics.ForwardQueueDepth.Set(float64(len(f.queue)))
	default:
		metrics.ForwardsDropped.Inc()
		f.logger.Warn("forwarding queue full, dropping event",
			logging.EventID(event.ID),
			logging.Target(f.cfg.Target),
		)
	}
}

func (f *Forwarder) worker() {
	defer f.wg.Done()
	for event := range f.queue {
		metrics.ForwardQueueDepth.Set(float64(len(f.queue)))
		f.deliver(event)
	}
}

// deliver performs the single delivery attempt for one event.
func (f *Forwarder) deliver(event *models.WebhookEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), f.cfg.Timeout)
	defer cancel()

	start := time.Now()
	outcome := &Outcome{
		EventID:    event.ID,
		OriginHost: event.Host,
		Target:     f.cfg.Target,
		Path:       event.Path,
		At:         start,
	}

	statusCode, err := f.send(ctx, event)
	outcome.Duration = time.Since(start)
	outcome.StatusCode = statusCode

	metrics.ForwardDuration.Observe(outcome.Duration.Seconds())

	if err != nil {
		outcome.Error = err.Error()
		metrics.ForwardsTotal.WithLabelValues("error").Inc()
		f.logger.Warn("forwarding attempt failed",
			logging.EventID(event.ID),
			logging.Target(f.cfg.Target),
			logging.Error(err),
		)
	} else {
		outcome.Success = true
		metrics.ForwardsTotal.WithLabelValues("success").Inc()
		f.logger.Debug("event forwarded",
			logging.EventID(event.ID),
			logging.Target(f.cfg.Target),
		)
	}

	if f.publisher != nil {
		f.publisher.PublishOutcome(ctx, outcome)
	}
}

func (f *Forwarder) send(ctx context.Context, event *models.WebhookEvent) (int, error) {
	url := fmt.Sprintf("%s://%s%s", f.cfg.Scheme, f.cfg.Target, event.Path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(event.Body))
	if err != nil {
		return 0, fmt.Errorf("build forward request: %w", err)
	}

	// Replay the original headers verbatim, then add correlation headers.
	for name, value := range event.Headers {
		req.Header.Set(name, value)
	}
	req.Header.Set(HeaderEventID, event.ID)
	req.Header.Set(HeaderOriginHost, event.Host)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("reach forward target: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("target rejected event: status %d", resp.StatusCode)
	}

	return resp.StatusCode, nil
}

// Close stops accepting jobs and waits for in-flight deliveries to finish.
func (f *Forwarder) Close() {
	f.stopOnce.Do(func() {
		close(f.queue)
	})
	f.wg.Wait()
}
