package order

import (
	"strings"
	"time"

	"storefront-service/internal/models"
)

// CancellationWindow is how long after creation a pending order may still
// be cancelled by the customer.
const CancellationWindow = 24 * time.Hour

// MapStatus normalizes a backend status string into one of the six
// canonical states. The backend vocabulary is not stable, so synonyms are
// grouped and anything unrecognized falls back to pending rather than
// erroring: an unknown status must still render something reasonable.
func MapStatus(raw string) models.Status {
	switch strings.ToLower(raw) {
	case "pending":
		return models.StatusPending
	case "confirmed", "preparing", "processing":
		return models.StatusProcessing
	case "shipped", "out_for_delivery", "on_the_way":
		return models.StatusOnTheWay
	case "delivered":
		return models.StatusDelivered
	case "cancelled", "cancel":
		return models.StatusCancelled
	case "returned", "return":
		return models.StatusReturned
	default:
		return models.StatusPending
	}
}

// IsCancellable reports whether an order created at createdAt is still
// inside the cancellation window at now. Exactly 24h is not cancellable.
func IsCancellable(createdAt, now time.Time) bool {
	return now.Sub(createdAt) < CancellationWindow
}
