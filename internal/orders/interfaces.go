package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bob-sav/gym-meat-sub000/pkg/db/models"
	"github.com/bob-sav/gym-meat-sub000/pkg/pagination"
)

// Repository defines persistence operations for order/line tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderLines(ctx context.Context, lines []models.OrderLine) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderByShortCode(ctx context.Context, shortCode int64) (*models.Order, error)
	FindLine(ctx context.Context, lineID uuid.UUID) (*models.OrderLine, error)
	FindLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error)
	ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error)
	FindPendingOrdersBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
	UpdateLineVersioned(ctx context.Context, lineID uuid.UUID, version int, updates map[string]any) error
	UpdateOrderVersioned(ctx context.Context, orderID uuid.UUID, version int, updates map[string]any) error
}
