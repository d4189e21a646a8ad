package email

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nutricart/nutricart-backend/pkg/config"
	pkgerrors "github.com/nutricart/nutricart-backend/pkg/errors"
	"github.com/nutricart/nutricart-backend/pkg/logger"
	"github.com/nutricart/nutricart-backend/pkg/metrics"
	"github.com/nutricart/nutricart-backend/pkg/sendgrid"
)

const (
	resultSent   = "sent"
	resultFailed = "failed"

	defaultQueueSize   = 100
	defaultWorkers     = 2
	defaultSendTimeout = 10 * time.Second
)

var (
	ErrQueueFull   = errors.New("email queue full")
	ErrQueueClosed = errors.New("email queue closed")
)

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg sendgrid.Message) error
}

// DispatcherParams wires the dispatcher dependencies.
type DispatcherParams struct {
	Mailer  Mailer
	Config  config.MailConfig
	Metrics *metrics.MailMetrics
	Logger  *logger.Logger
}

// Dispatcher queues outbound email and delivers it from a fixed worker pool.
type Dispatcher struct {
	mailer  Mailer
	queue   chan sendgrid.Message
	workers int
	timeout time.Duration
	metrics *metrics.MailMetrics
	logg    *logger.Logger

	mu      sync.RWMutex
	started bool
	closed  bool
	wg      sync.WaitGroup
}

// NewDispatcher validates params and allocates the queue. Workers start on Start.
func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Mailer == nil {
		return nil, errors.New("mailer is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	size := params.Config.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	workers := params.Config.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	timeout := params.Config.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Dispatcher{
		mailer:  params.Mailer,
		queue:   make(chan sendgrid.Message, size),
		workers: workers,
		timeout: timeout,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

// Start launches the worker pool. Calling it more than once is a no-op.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	// queued mail is still delivered after ctx is canceled
	base := context.WithoutCancel(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work(d.logg.WithField(base, "worker", i))
	}
	d.logg.Info(d.logg.WithField(ctx, "workers", d.workers), "email.dispatcher_started")
}

// Enqueue adds msg to the queue without blocking.
func (d *Dispatcher) Enqueue(ctx context.Context, msg sendgrid.Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, ErrQueueClosed, "email delivery unavailable")
	}
	select {
	case d.queue <- msg:
		d.metrics.SetQueueDepth(len(d.queue))
		return nil
	default:
		d.logg.Warn(d.logg.WithField(ctx, "to", msg.To), "email.queue_full")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, ErrQueueFull, "email queue is full")
	}
}

// Shutdown stops accepting mail and waits for queued messages to drain.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work(ctx context.Context) {
	defer d.wg.Done()
	for msg := range d.queue {
		d.metrics.SetQueueDepth(len(d.queue))
		d.deliver(ctx, msg)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg sendgrid.Message) {
	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	logCtx := d.logg.WithFields(ctx, map[string]any{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	if err := d.mailer.Send(sendCtx, msg); err != nil {
		d.metrics.IncResult(resultFailed)
		d.logg.Error(logCtx, "email.send_failed", err)
		return
	}
	d.metrics.IncResult(resultSent)
	d.logg.Info(logCtx, "email.sent")
}
