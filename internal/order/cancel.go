package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CancelState is the state of a single cancellation attempt.
type CancelState int

const (
	StateIdle CancelState = iota
	StateConfirmPending
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s CancelState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfirmPending:
		return "confirm_pending"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrNotCancellable means the guard refused: the order is not pending
	// or the cancellation window has closed.
	ErrNotCancellable = errors.New("order is not cancellable")

	// ErrCancelInFlight means a cancellation for this order is already
	// submitting; the second trigger is ignored.
	ErrCancelInFlight = errors.New("cancellation already in flight")

	// ErrNoConfirmPending means Confirm was called outside ConfirmPending.
	ErrNoConfirmPending = errors.New("no cancellation awaiting confirmation")
)

// StatusUpdater issues the remote status-update call.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, orderID, status string) error
}

// CancelPublisher publishes the OrderCancelled domain event.
type CancelPublisher interface {
	PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error
}

// Workflow drives the cancellation of a single order:
// Idle -> ConfirmPending -> Submitting -> {Succeeded, Failed}.
// A failed attempt leaves the order untouched and the cycle may be
// restarted; there is no automatic retry.
type Workflow struct {
	mu        sync.Mutex
	state     CancelState
	order     *models.Order
	client    StatusUpdater
	publisher CancelPublisher
	observers []func(*models.Order)
	lastErr   error
	now       func() time.Time
	logger    *zap.Logger
}

// NewWorkflow creates a cancellation workflow for one fetched order.
// publisher may be nil when event publishing is disabled.
func NewWorkflow(order *models.Order, client StatusUpdater, publisher CancelPublisher) *Workflow {
	return &Workflow{
		state:     StateIdle,
		order:     order,
		client:    client,
		publisher: publisher,
		now:       time.Now,
		logger:    util.GetLogger(),
	}
}

// Subscribe registers an observer notified after a successful cancellation.
func (w *Workflow) Subscribe(fn func(*models.Order)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.observers = append(w.observers, fn)
}

// State returns the current workflow state.
func (w *Workflow) State() CancelState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Err returns the error of the last failed attempt, if any.
func (w *Workflow) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Order returns the order the workflow operates on.
func (w *Workflow) Order() *models.Order {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.order
}

// RequestCancel moves Idle (or Failed, for a fresh user-initiated retry) to
// ConfirmPending. The guard requires a pending order still inside the
// cancellation window; refusal leaves the state where it was.
func (w *Workflow) RequestCancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateSubmitting:
		return ErrCancelInFlight
	case StateIdle, StateFailed:
	default:
		return fmt.Errorf("cancel request refused in state %s", w.state)
	}

	if err := w.checkGuard(); err != nil {
		return err
	}

	w.state = StateConfirmPending
	return nil
}

// Decline returns from ConfirmPending to Idle with no side effect.
func (w *Workflow) Decline() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateConfirmPending {
		w.state = StateIdle
	}
}

// Confirm submits the remote status update. The guard is re-checked here:
// time may have elapsed between render and click. On success the order is
// optimistically flipped to cancelled and observers are notified; on failure
// the order is left unchanged.
func (w *Workflow) Confirm(ctx context.Context) error {
	w.mu.Lock()
	switch w.state {
	case StateSubmitting:
		w.mu.Unlock()
		return ErrCancelInFlight
	case StateConfirmPending:
	default:
		w.mu.Unlock()
		return ErrNoConfirmPending
	}

	if err := w.checkGuard(); err != nil {
		w.state = StateIdle
		w.mu.Unlock()
		return err
	}

	w.state = StateSubmitting
	orderID := w.order.ID
	w.mu.Unlock()

	start := time.Now()
	err := w.client.UpdateStatus(ctx, orderID, "Cancelled")
	util.CancellationSubmitLatency.Observe(time.Since(start).Seconds())

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.state = StateFailed
		w.lastErr = err
		util.CancellationsFailedTotal.WithLabelValues("remote_error").Inc()
		w.logger.Warn("Order cancellation failed",
			zap.String("order_id", orderID),
			zap.Error(err))
		return fmt.Errorf("cancellation rejected: %w", err)
	}

	w.order.Status = models.StatusCancelled
	w.state = StateSucceeded
	w.lastErr = nil
	util.OrdersCancelledTotal.Inc()
	w.logger.Info("Order cancelled", zap.String("order_id", orderID))

	if w.publisher != nil {
		event := &models.OrderCancelledEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderCancelled,
				Timestamp: time.Now(),
			},
			OrderID: orderID,
			Reason:  "customer_request",
		}
		if err := w.publisher.PublishOrderCancelled(ctx, event); err != nil {
			w.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
		}
	}

	for _, fn := range w.observers {
		fn(w.order)
	}
	return nil
}

// checkGuard enforces the cancellation invariant. Callers hold w.mu.
func (w *Workflow) checkGuard() error {
	if w.order.Status != models.StatusPending {
		util.CancellationsFailedTotal.WithLabelValues("not_pending").Inc()
		return ErrNotCancellable
	}
	if !IsCancellable(w.order.CreatedAt, w.now()) {
		util.CancellationsFailedTotal.WithLabelValues("window_closed").Inc()
		return ErrNotCancellable
	}
	return nil
}

// CancelCoordinator runs cancellation workflows and enforces at most one
// in-flight cancellation per order across concurrent requests.
type CancelCoordinator struct {
	mu        sync.Mutex
	inflight  map[string]*Workflow
	client    StatusUpdater
	publisher CancelPublisher
	logger    *zap.Logger
}

// NewCancelCoordinator creates a new cancellation coordinator
func NewCancelCoordinator(client StatusUpdater, publisher CancelPublisher) *CancelCoordinator {
	return &CancelCoordinator{
		inflight:  make(map[string]*Workflow),
		client:    client,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// Cancel runs a full request-confirm cycle for the given order. The user's
// confirmation dialog happens at the presentation boundary, so by the time
// this is called the intent is confirmed; the workflow still re-checks the
// guard before submitting.
func (c *CancelCoordinator) Cancel(ctx context.Context, o *models.Order) error {
	c.mu.Lock()
	if _, busy := c.inflight[o.ID]; busy {
		c.mu.Unlock()
		return ErrCancelInFlight
	}
	wf := NewWorkflow(o, c.client, c.publisher)
	c.inflight[o.ID] = wf
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inflight, o.ID)
		c.mu.Unlock()
	}()

	if err := wf.RequestCancel(); err != nil {
		return err
	}
	return wf.Confirm(ctx)
}
