// Package repository persists the append-only waffle ledger.
package repository

import (
	"context"
	"time"

	"github.com/teamwaffle/wafflebot/internal/models"
)

// Ledger is the persistence adapter for point transfers. Rows are appended
// and read back, never updated or deleted.
type Ledger interface {
	// Insert appends one row per transfer. All rows of a gift are written
	// in a single transaction so a gift is never partially persisted.
	Insert(ctx context.Context, transfers []models.PointTransfer) error
	// ListRange returns transfers with date in [from, to).
	ListRange(ctx context.Context, from, to time.Time) ([]models.PointTransfer, error)
	// ListAll returns every transfer ever recorded.
	ListAll(ctx context.Context) ([]models.PointTransfer, error)
}
