package store

import (
	"context"
	"database/sql"
	"fmt"

	"storefront-service/internal/models"
)

// CreateCheckoutSnapshot persists a checkout snapshot and its lines in one
// transaction. The snapshot is the durable record of what the cart held at
// hand-off time.
func (s *Store) CreateCheckoutSnapshot(ctx context.Context, snap *models.CheckoutSnapshot) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, &snap.CreatedAt, `
		INSERT INTO checkout_snapshots (id, session_id, subtotal)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		snap.ID, snap.SessionID, snap.Subtotal)
	if err != nil {
		return fmt.Errorf("failed to insert checkout snapshot: %w", err)
	}

	for _, line := range snap.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO checkout_snapshot_lines (snapshot_id, product_id, product_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)`,
			snap.ID, line.ProductID, line.ProductName, line.Quantity, line.UnitPrice)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot line: %w", err)
		}
	}

	return tx.Commit()
}

// GetCheckoutSnapshot retrieves a snapshot with its lines.
func (s *Store) GetCheckoutSnapshot(ctx context.Context, id string) (*models.CheckoutSnapshot, error) {
	var snap models.CheckoutSnapshot
	err := s.db.GetContext(ctx, &snap,
		"SELECT id, session_id, subtotal, created_at FROM checkout_snapshots WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("checkout snapshot not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	err = s.db.SelectContext(ctx, &snap.Lines, `
		SELECT snapshot_id, product_id, product_name, quantity, unit_price
		FROM checkout_snapshot_lines WHERE snapshot_id = $1 ORDER BY product_id`, id)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// GetSnapshotsBySessionID retrieves all snapshots for a session, newest first.
func (s *Store) GetSnapshotsBySessionID(ctx context.Context, sessionID string) ([]models.CheckoutSnapshot, error) {
	var snaps []models.CheckoutSnapshot
	err := s.db.SelectContext(ctx, &snaps, `
		SELECT id, session_id, subtotal, created_at
		FROM checkout_snapshots WHERE session_id = $1 ORDER BY created_at DESC`, sessionID)
	return snaps, err
}
