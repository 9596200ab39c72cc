package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joyeria/backend/internal/domain/ledger"
	"github.com/joyeria/backend/internal/domain/shared"
	"github.com/joyeria/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements ledger.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID. Returns (nil, nil) when no order exists.
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds an order by its folio number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*ledger.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("order_number = ?", orderNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds orders with filtering
func (r *GormOrderRepository) FindAll(ctx context.Context, filter ledger.OrderFilter) ([]ledger.Order, error) {
	var orderModels []models.OrderModel
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	query = r.applyOrderFilter(query, filter)

	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]ledger.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

// FindByCustomer finds orders for a customer
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter ledger.OrderFilter) ([]ledger.Order, error) {
	var orderModels []models.OrderModel
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("customer_id = ?", customerID)
	query = r.applyOrderFilter(query, filter)

	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]ledger.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

// FindOutstanding finds orders that still carry an open balance
func (r *GormOrderRepository) FindOutstanding(ctx context.Context, filter ledger.OrderFilter) ([]ledger.Order, error) {
	filter.Outstanding = true
	var orderModels []models.OrderModel
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	query = r.applyOrderFilter(query, filter)

	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]ledger.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

// Save creates or updates an order. A folio taken by a concurrent open
// surfaces as a FOLIO_CONFLICT domain error so the caller can
// regenerate and retry.
func (r *GormOrderRepository) Save(ctx context.Context, order *ledger.Order) error {
	model := models.OrderModelFromDomain(order)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if uniqueViolation(err, "idx_order_number") {
			return shared.NewDomainError(ledger.ErrCodeFolioConflict,
				fmt.Sprintf("Order folio %s was taken by a concurrent open", order.OrderNumber))
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking. The order must carry
// exactly one unsaved version increment; the update matches the
// version the order was loaded at.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *ledger.Order) error {
	model := models.OrderModelFromDomain(order)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter ledger.OrderFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	query = r.applyOrderFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateOrderNumber generates the next order folio. The sequence is
// shared across order types so folios stay unique under the single
// NT- prefix.
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context, _ ledger.OrderType) (string, error) {
	// Format: NT-YYYYMMDD-XXXXX
	date := time.Now().Format("20060102")
	prefix := fmt.Sprintf("NT-%s-", date)

	// Find the highest number for today
	var maxNumber string
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("order_number").
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		Limit(1).
		Pluck("order_number", &maxNumber).Error; err != nil {
		return "", err
	}

	var nextNum int
	if maxNumber != "" {
		parts := strings.Split(maxNumber, "-")
		if len(parts) == 3 {
			fmt.Sscanf(parts[2], "%d", &nextNum)
		}
	}
	nextNum++

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

// applyOrderFilter applies filter options to the query
func (r *GormOrderRepository) applyOrderFilter(query *gorm.DB, filter ledger.OrderFilter) *gorm.DB {
	query = r.applyOrderFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyOrderFilterWithoutPagination applies filter options without pagination
func (r *GormOrderRepository) applyOrderFilterWithoutPagination(query *gorm.DB, filter ledger.OrderFilter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR customer_name ILIKE ?",
			searchPattern, searchPattern)
	}

	// Apply specific filters
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Outstanding {
		query = query.Where("status IN ?", []ledger.OrderStatus{ledger.OrderStatusPending, ledger.OrderStatusPartial})
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}

	return query
}
