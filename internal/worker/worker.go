package worker

import (
	"context"
	"log"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// OrderFetcher re-fetches an order from the backend.
type OrderFetcher interface {
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
}

// ReconcileWorker consumes OrderCancelled events and re-fetches the order
// from the backend. The cancellation workflow flips local state
// optimistically; this worker surfaces the drift when the backend did not
// actually end up cancelled.
type ReconcileWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	orders       OrderFetcher
	logger       *zap.Logger
}

// NewReconcileWorker creates a new reconcile worker
func NewReconcileWorker(consumer *broker.Consumer, orders OrderFetcher) *ReconcileWorker {
	eventHandler := broker.NewEventHandler()

	w := &ReconcileWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		orders:       orders,
		logger:       util.GetLogger(),
	}
	eventHandler.OnOrderCancelled(w.reconcile)
	return w
}

// Start starts the worker
func (w *ReconcileWorker) Start(ctx context.Context) error {
	log.Println("Starting reconcile worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *ReconcileWorker) Stop() error {
	log.Println("Stopping reconcile worker...")
	return w.consumer.Close()
}

func (w *ReconcileWorker) reconcile(ctx context.Context, event *models.OrderCancelledEvent) error {
	o, err := w.orders.GetOrder(ctx, event.OrderID)
	if err != nil {
		w.logger.Error("Failed to re-fetch order for reconciliation",
			zap.String("order_id", event.OrderID),
			zap.Error(err))
		return err
	}

	if o.Status != models.StatusCancelled {
		util.OrderStatusDriftTotal.Inc()
		w.logger.Warn("Order status drift detected after cancellation",
			zap.String("order_id", event.OrderID),
			zap.String("backend_status", string(o.Status)))
		return nil
	}

	w.logger.Info("Cancellation reconciled",
		zap.String("order_id", event.OrderID))
	return nil
}
