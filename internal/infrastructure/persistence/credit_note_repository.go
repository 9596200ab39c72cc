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

// GormCreditNoteRepository implements ledger.CreditNoteRepository using GORM
type GormCreditNoteRepository struct {
	db *gorm.DB
}

// NewGormCreditNoteRepository creates a new GormCreditNoteRepository
func NewGormCreditNoteRepository(db *gorm.DB) *GormCreditNoteRepository {
	return &GormCreditNoteRepository{db: db}
}

// FindByID finds a credit note by its ID. Returns (nil, nil) when no note exists.
func (r *GormCreditNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.CreditNote, error) {
	var model models.CreditNoteModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNoteNumber finds a credit note by its folio number
func (r *GormCreditNoteRepository) FindByNoteNumber(ctx context.Context, noteNumber string) (*ledger.CreditNote, error) {
	var model models.CreditNoteModel
	if err := r.db.WithContext(ctx).
		Where("note_number = ?", noteNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrigin finds all notes issued against an origin order, cancelled ones included
func (r *GormCreditNoteRepository) FindByOrigin(ctx context.Context, originID uuid.UUID) ([]ledger.CreditNote, error) {
	var noteModels []models.CreditNoteModel
	if err := r.db.WithContext(ctx).
		Where("origin_order_id = ?", originID).
		Order("created_at ASC").
		Find(&noteModels).Error; err != nil {
		return nil, err
	}
	notes := make([]ledger.CreditNote, len(noteModels))
	for i, model := range noteModels {
		notes[i] = *model.ToDomain()
	}
	return notes, nil
}

// ExistsActiveByOrigin reports whether a non-cancelled note already exists
// for the origin order
func (r *GormCreditNoteRepository) ExistsActiveByOrigin(ctx context.Context, originID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CreditNoteModel{}).
		Where("origin_order_id = ? AND cancelled = false", originID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll finds credit notes with filtering
func (r *GormCreditNoteRepository) FindAll(ctx context.Context, filter ledger.CreditNoteFilter) ([]ledger.CreditNote, error) {
	var noteModels []models.CreditNoteModel
	query := r.db.WithContext(ctx).Model(&models.CreditNoteModel{})
	query = r.applyNoteFilter(query, filter)

	if err := query.Find(&noteModels).Error; err != nil {
		return nil, err
	}
	notes := make([]ledger.CreditNote, len(noteModels))
	for i, model := range noteModels {
		notes[i] = *model.ToDomain()
	}
	return notes, nil
}

// FindByCustomer finds credit notes for a customer
func (r *GormCreditNoteRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter ledger.CreditNoteFilter) ([]ledger.CreditNote, error) {
	var noteModels []models.CreditNoteModel
	query := r.db.WithContext(ctx).Model(&models.CreditNoteModel{}).
		Where("customer_id = ?", customerID)
	query = r.applyNoteFilter(query, filter)

	if err := query.Find(&noteModels).Error; err != nil {
		return nil, err
	}
	notes := make([]ledger.CreditNote, len(noteModels))
	for i, model := range noteModels {
		notes[i] = *model.ToDomain()
	}
	return notes, nil
}

// Save creates or updates a credit note. Unique violations surface as
// domain errors: a taken folio as FOLIO_CONFLICT so the caller can
// regenerate and retry, and a second active note per origin as
// ALREADY_ISSUED.
func (r *GormCreditNoteRepository) Save(ctx context.Context, note *ledger.CreditNote) error {
	model := models.CreditNoteModelFromDomain(note)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if uniqueViolation(err, "idx_credit_note_number") {
			return shared.NewDomainError(ledger.ErrCodeFolioConflict,
				fmt.Sprintf("Credit note folio %s was taken by a concurrent issuance", note.NoteNumber))
		}
		if uniqueViolation(err, "idx_credit_notes_active_origin") {
			return shared.NewDomainError(ledger.ErrCodeAlreadyIssued,
				"An active credit note already exists for this origin order")
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking. The note must carry
// exactly one unsaved version increment; the update matches the
// version the note was loaded at.
func (r *GormCreditNoteRepository) SaveWithLock(ctx context.Context, note *ledger.CreditNote) error {
	model := models.CreditNoteModelFromDomain(note)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", note.ID, note.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// Count counts credit notes matching the filter
func (r *GormCreditNoteRepository) Count(ctx context.Context, filter ledger.CreditNoteFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.CreditNoteModel{})
	query = r.applyNoteFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateNoteNumber generates the next credit note folio
func (r *GormCreditNoteRepository) GenerateNoteNumber(ctx context.Context) (string, error) {
	// Format: NC-YYYYMMDD-XXXXX
	date := time.Now().Format("20060102")
	prefix := fmt.Sprintf("NC-%s-", date)

	// Find the highest number for today
	var maxNumber string
	if err := r.db.WithContext(ctx).
		Model(&models.CreditNoteModel{}).
		Select("note_number").
		Where("note_number LIKE ?", prefix+"%").
		Order("note_number DESC").
		Limit(1).
		Pluck("note_number", &maxNumber).Error; err != nil {
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

// applyNoteFilter applies filter options to the query
func (r *GormCreditNoteRepository) applyNoteFilter(query *gorm.DB, filter ledger.CreditNoteFilter) *gorm.DB {
	query = r.applyNoteFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, CreditNoteSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyNoteFilterWithoutPagination applies filter options without pagination
func (r *GormCreditNoteRepository) applyNoteFilterWithoutPagination(query *gorm.DB, filter ledger.CreditNoteFilter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("note_number ILIKE ? OR customer_name ILIKE ?",
			searchPattern, searchPattern)
	}

	// Apply specific filters
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.OriginOrderID != nil {
		query = query.Where("origin_order_id = ?", *filter.OriginOrderID)
	}
	if filter.Cancelled != nil {
		query = query.Where("cancelled = ?", *filter.Cancelled)
	}
	if filter.OnlyRedeemable {
		query = query.Where("cancelled = false AND total_used < total_original")
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}

	return query
}
