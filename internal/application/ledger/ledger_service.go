package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/joyeria/backend/internal/domain/ledger"
	"github.com/joyeria/backend/internal/domain/shared"
	"github.com/joyeria/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LedgerService provides application-level payment ledger operations:
// opening orders, applying installments, and the credit note lifecycle.
type LedgerService struct {
	orderRepo      ledger.OrderRepository
	noteRepo       ledger.CreditNoteRepository
	eventPublisher shared.EventPublisher
	locks          *entityLocks
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(orderRepo ledger.OrderRepository, noteRepo ledger.CreditNoteRepository) *LedgerService {
	return &LedgerService{
		orderRepo: orderRepo,
		noteRepo:  noteRepo,
		locks:     newEntityLocks(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvents publishes aggregate events after a successful save.
// Publishing is best-effort: handlers are projections, not invariants.
func (s *LedgerService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

// ===================== Requests and responses =====================

// PaymentEntryRequest is one instrument leg of a payment
type PaymentEntryRequest struct {
	Method       string     `json:"method" binding:"required"`
	Amount       string     `json:"amount" binding:"required"`
	CreditNoteID *uuid.UUID `json:"credit_note_id,omitempty"`
}

// OpenOrderRequest carries everything needed to open an order with its
// founding payment
type OpenOrderRequest struct {
	Type           string                `json:"type" binding:"required"`
	RingKind       string                `json:"ring_kind,omitempty"`
	CustomerID     uuid.UUID             `json:"customer_id" binding:"required"`
	CustomerName   string                `json:"customer_name" binding:"required"`
	Total          string                `json:"total" binding:"required"`
	FoundingAmount string                `json:"founding_amount"`
	Founding       []PaymentEntryRequest `json:"founding"`
	Remark         string                `json:"remark,omitempty"`
}

// ApplyInstallmentRequest records one abono against an open order
type ApplyInstallmentRequest struct {
	Amount    string                `json:"amount" binding:"required"`
	Breakdown []PaymentEntryRequest `json:"breakdown" binding:"required"`
}

// IssueCreditNoteRequest issues store credit against an origin order
type IssueCreditNoteRequest struct {
	OriginOrderID uuid.UUID `json:"origin_order_id" binding:"required"`
	Amount        string    `json:"amount" binding:"required"`
	Remark        string    `json:"remark,omitempty"`
}

// RedeemCreditNoteRequest consumes credit against a target order
type RedeemCreditNoteRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
	Amount  string    `json:"amount" binding:"required"`
}

// CancelCreditNoteRequest voids a credit note
type CancelCreditNoteRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// InstallmentResponse represents an installment in API responses
type InstallmentResponse struct {
	ID         uuid.UUID               `json:"id"`
	Amount     decimal.Decimal         `json:"amount"`
	Breakdown  ledger.PaymentBreakdown `json:"breakdown"`
	EmployeeID uuid.UUID               `json:"employee_id"`
	AppliedAt  time.Time               `json:"applied_at"`
	Founding   bool                    `json:"founding,omitempty"`
}

// OrderResponse represents an order ledger entry in API responses
type OrderResponse struct {
	ID            uuid.UUID             `json:"id"`
	OrderNumber   string                `json:"order_number"`
	Type          string                `json:"type"`
	RingKind      string                `json:"ring_kind,omitempty"`
	CustomerID    uuid.UUID             `json:"customer_id"`
	CustomerName  string                `json:"customer_name"`
	Total         decimal.Decimal       `json:"total"`
	Collected     decimal.Decimal       `json:"collected"`
	Remaining     decimal.Decimal       `json:"remaining"`
	Status        string                `json:"status"`
	PaymentMethod string                `json:"payment_method"`
	Installments  []InstallmentResponse `json:"installments"`
	OpenedBy      uuid.UUID             `json:"opened_by"`
	Remark        string                `json:"remark,omitempty"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	Version       int                   `json:"version"`
}

// RedemptionResponse represents a redemption in API responses
type RedemptionResponse struct {
	ID         uuid.UUID       `json:"id"`
	OrderID    uuid.UUID       `json:"order_id"`
	Amount     decimal.Decimal `json:"amount"`
	RedeemedAt time.Time       `json:"redeemed_at"`
}

// CreditNoteResponse represents a credit note in API responses
type CreditNoteResponse struct {
	ID              uuid.UUID            `json:"id"`
	NoteNumber      string               `json:"note_number"`
	OriginOrderType string               `json:"origin_order_type"`
	OriginOrderID   uuid.UUID            `json:"origin_order_id"`
	CustomerID      uuid.UUID            `json:"customer_id"`
	CustomerName    string               `json:"customer_name"`
	TotalOriginal   decimal.Decimal      `json:"total_original"`
	TotalUsed       decimal.Decimal      `json:"total_used"`
	TotalAvailable  decimal.Decimal      `json:"total_available"`
	Cancelled       bool                 `json:"cancelled"`
	Redemptions     []RedemptionResponse `json:"redemptions"`
	IssuedBy        uuid.UUID            `json:"issued_by"`
	Remark          string               `json:"remark,omitempty"`
	CancelledAt     *time.Time           `json:"cancelled_at,omitempty"`
	CancelReason    string               `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	Version         int                  `json:"version"`
}

func toOrderResponse(o *ledger.Order) *OrderResponse {
	installments := make([]InstallmentResponse, len(o.Installments))
	for i, ins := range o.Installments {
		installments[i] = InstallmentResponse{
			ID:         ins.ID,
			Amount:     ins.Amount,
			Breakdown:  ins.Breakdown,
			EmployeeID: ins.EmployeeID,
			AppliedAt:  ins.AppliedAt,
			Founding:   ins.Founding,
		}
	}

	return &OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		Type:          o.Type.String(),
		RingKind:      string(o.RingKind),
		CustomerID:    o.CustomerID,
		CustomerName:  o.CustomerName,
		Total:         o.Total,
		Collected:     o.Collected,
		Remaining:     o.Remaining().Amount(),
		Status:        o.Status.String(),
		PaymentMethod: o.PaymentMethodLabel().String(),
		Installments:  installments,
		OpenedBy:      o.OpenedBy,
		Remark:        o.Remark,
		PaidAt:        o.PaidAt,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Version:       o.Version,
	}
}

func toCreditNoteResponse(cn *ledger.CreditNote) *CreditNoteResponse {
	redemptions := make([]RedemptionResponse, len(cn.Redemptions))
	for i, r := range cn.Redemptions {
		redemptions[i] = RedemptionResponse{
			ID:         r.ID,
			OrderID:    r.OrderID,
			Amount:     r.Amount,
			RedeemedAt: r.RedeemedAt,
		}
	}

	return &CreditNoteResponse{
		ID:              cn.ID,
		NoteNumber:      cn.NoteNumber,
		OriginOrderType: cn.OriginOrderType.String(),
		OriginOrderID:   cn.OriginOrderID,
		CustomerID:      cn.CustomerID,
		CustomerName:    cn.CustomerName,
		TotalOriginal:   cn.TotalOriginal,
		TotalUsed:       cn.TotalUsed,
		TotalAvailable:  cn.TotalAvailable().Amount(),
		Cancelled:       cn.Cancelled,
		Redemptions:     redemptions,
		IssuedBy:        cn.IssuedBy,
		Remark:          cn.Remark,
		CancelledAt:     cn.CancelledAt,
		CancelReason:    cn.CancelReason,
		CreatedAt:       cn.CreatedAt,
		UpdatedAt:       cn.UpdatedAt,
		Version:         cn.Version,
	}
}

func parseMoney(raw string) (valueobject.Money, error) {
	if raw == "" {
		return valueobject.ZeroMXN(), nil
	}
	return valueobject.NewMoneyMXNFromString(raw)
}

func buildBreakdown(entries []PaymentEntryRequest) (ledger.PaymentBreakdown, error) {
	breakdown := make(ledger.PaymentBreakdown, 0, len(entries))
	for _, entry := range entries {
		amount, err := parseMoney(entry.Amount)
		if err != nil {
			return nil, shared.NewDomainError(ledger.ErrCodeInvalidBreakdown, "Invalid entry amount: "+entry.Amount)
		}
		breakdown = append(breakdown, ledger.PaymentEntry{
			Method:       ledger.PaymentMethod(entry.Method),
			Amount:       amount.Amount(),
			CreditNoteID: entry.CreditNoteID,
		})
	}
	return breakdown, nil
}

// ===================== Order operations =====================

// OpenOrder opens a new ledger entry with its founding payment. Credit
// note legs in the founding breakdown are redeemed as part of the same
// operation; if any redemption fails, nothing is committed.
func (s *LedgerService) OpenOrder(ctx context.Context, employeeID uuid.UUID, req OpenOrderRequest) (*OrderResponse, error) {
	total, err := parseMoney(req.Total)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invalid order total: "+req.Total)
	}
	foundingAmount, err := parseMoney(req.FoundingAmount)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invalid founding amount: "+req.FoundingAmount)
	}
	breakdown, err := buildBreakdown(req.Founding)
	if err != nil {
		return nil, err
	}

	held := s.locks.acquireMany(creditNoteLockKeys(breakdown))
	defer s.locks.releaseMany(held)

	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx, ledger.OrderType(req.Type))
	if err != nil {
		return nil, err
	}

	order, err := ledger.OpenOrder(
		ledger.OrderType(req.Type),
		ledger.RingOrderKind(req.RingKind),
		orderNumber,
		req.CustomerID,
		req.CustomerName,
		total,
		foundingAmount,
		breakdown,
		employeeID,
	)
	if err != nil {
		return nil, err
	}
	if req.Remark != "" {
		order.Remark = req.Remark
	}

	notes, err := s.redeemNoteLegs(ctx, breakdown, order.ID)
	if err != nil {
		return nil, err
	}

	if err := s.saveNotes(ctx, notes); err != nil {
		return nil, err
	}
	if err := s.saveNewOrder(ctx, order, ledger.OrderType(req.Type)); err != nil {
		return nil, err
	}

	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	s.publishEvents(ctx, events)

	return toOrderResponse(order), nil
}

// ApplyInstallment applies an abono to an open order. Credit note legs
// are resolved first under their own locks; the whole installment is
// rejected if any leg fails, so cash never commits alongside a failed
// credit leg.
func (s *LedgerService) ApplyInstallment(ctx context.Context, orderID, employeeID uuid.UUID, req ApplyInstallmentRequest) (*OrderResponse, error) {
	amount, err := parseMoney(req.Amount)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invalid installment amount: "+req.Amount)
	}
	breakdown, err := buildBreakdown(req.Breakdown)
	if err != nil {
		return nil, err
	}

	keys := append(creditNoteLockKeys(breakdown), orderLockKey(orderID))
	held := s.locks.acquireMany(keys)
	defer s.locks.releaseMany(held)

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, shared.NewDomainError(ledger.ErrCodeOrderNotFound, "Order not found")
	}

	notes, err := s.redeemNoteLegs(ctx, breakdown, orderID)
	if err != nil {
		return nil, err
	}

	if _, err := order.ApplyInstallment(amount, breakdown, employeeID); err != nil {
		return nil, err
	}

	if err := s.saveNotes(ctx, notes); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	s.publishEvents(ctx, events)

	return toOrderResponse(order), nil
}

// redeemNoteLegs resolves every credit note leg of a breakdown in
// memory. The caller already holds the per-note locks; nothing is
// persisted here, so a later failure discards the redemptions.
//
// Legs naming the same note are summed and redeemed in a single Redeem
// call: SaveWithLock matches on exactly one version increment since
// load, so the note must not be bumped twice. Only notes that were
// actually redeemed are returned; a zero-amount leg just has to name
// an existing note and leaves it untouched.
func (s *LedgerService) redeemNoteLegs(ctx context.Context, breakdown ledger.PaymentBreakdown, orderID uuid.UUID) ([]*ledger.CreditNote, error) {
	legs := breakdown.CreditNoteEntries()
	if len(legs) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(legs))
	totals := make(map[uuid.UUID]decimal.Decimal, len(legs))
	for _, leg := range legs {
		if leg.CreditNoteID == nil {
			return nil, shared.NewDomainError(ledger.ErrCodeInvalidBreakdown, "Credit note leg carries no credit note id")
		}
		id := *leg.CreditNoteID
		if _, ok := totals[id]; !ok {
			ids = append(ids, id)
		}
		totals[id] = totals[id].Add(leg.Amount)
	}

	redeemed := make([]*ledger.CreditNote, 0, len(ids))
	for _, id := range ids {
		note, err := s.noteRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if note == nil {
			return nil, shared.NewDomainError("NOT_FOUND", "Credit note not found")
		}
		if !totals[id].IsPositive() {
			continue
		}
		if err := note.Redeem(valueobject.NewMoneyMXN(totals[id]), orderID); err != nil {
			return nil, err
		}
		redeemed = append(redeemed, note)
	}
	return redeemed, nil
}

// saveNotes persists redeemed notes and publishes their events. Every
// note handed in carries exactly one unsaved version increment, which
// is what SaveWithLock matches on.
func (s *LedgerService) saveNotes(ctx context.Context, notes []*ledger.CreditNote) error {
	for _, note := range notes {
		if err := s.noteRepo.SaveWithLock(ctx, note); err != nil {
			return err
		}
		events := note.GetDomainEvents()
		note.ClearDomainEvents()
		s.publishEvents(ctx, events)
	}
	return nil
}

// folioRetryAttempts bounds how often a save is retried with a fresh
// folio after losing a generation race to a concurrent open or
// issuance.
const folioRetryAttempts = 3

func isFolioConflict(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == ledger.ErrCodeFolioConflict
}

// saveNewOrder persists a freshly opened order, regenerating the folio
// and retrying when a concurrent open took the same number.
func (s *LedgerService) saveNewOrder(ctx context.Context, order *ledger.Order, orderType ledger.OrderType) error {
	err := s.orderRepo.Save(ctx, order)
	for attempt := 1; attempt < folioRetryAttempts && isFolioConflict(err); attempt++ {
		number, genErr := s.orderRepo.GenerateOrderNumber(ctx, orderType)
		if genErr != nil {
			return genErr
		}
		order.Renumber(number)
		err = s.orderRepo.Save(ctx, order)
	}
	return err
}

// saveNewNote persists a freshly issued credit note, regenerating the
// folio and retrying when a concurrent issuance took the same number.
func (s *LedgerService) saveNewNote(ctx context.Context, note *ledger.CreditNote) error {
	err := s.noteRepo.Save(ctx, note)
	for attempt := 1; attempt < folioRetryAttempts && isFolioConflict(err); attempt++ {
		number, genErr := s.noteRepo.GenerateNoteNumber(ctx)
		if genErr != nil {
			return genErr
		}
		note.Renumber(number)
		err = s.noteRepo.Save(ctx, note)
	}
	return err
}

func creditNoteLockKeys(breakdown ledger.PaymentBreakdown) []string {
	var keys []string
	for _, leg := range breakdown.CreditNoteEntries() {
		if leg.CreditNoteID != nil {
			keys = append(keys, noteLockKey(*leg.CreditNoteID))
		}
	}
	return keys
}

// GetOrder gets an order by ID
func (s *LedgerService) GetOrder(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, shared.NewDomainError(ledger.ErrCodeOrderNotFound, "Order not found")
	}
	return toOrderResponse(order), nil
}

// GetOrderByNumber gets an order by its folio number
func (s *LedgerService) GetOrderByNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, shared.NewDomainError(ledger.ErrCodeOrderNotFound, "Order not found")
	}
	return toOrderResponse(order), nil
}

// OrderListFilter defines filtering options for order list queries
type OrderListFilter struct {
	Search      string     `form:"search"`
	CustomerID  *uuid.UUID `form:"customer_id"`
	Type        string     `form:"type"`
	Status      string     `form:"status"`
	Outstanding bool       `form:"outstanding"`
	FromDate    *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate      *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size"`
}

// ListOrders lists orders with filtering
func (s *LedgerService) ListOrders(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	domainFilter := ledger.OrderFilter{
		CustomerID:  filter.CustomerID,
		Outstanding: filter.Outstanding,
		FromDate:    filter.FromDate,
		ToDate:      filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Type != "" {
		orderType := ledger.OrderType(filter.Type)
		domainFilter.Type = &orderType
	}
	if filter.Status != "" {
		status := ledger.OrderStatus(filter.Status)
		domainFilter.Status = &status
	}

	var (
		orders []ledger.Order
		err    error
	)
	if filter.Outstanding {
		orders, err = s.orderRepo.FindOutstanding(ctx, domainFilter)
	} else {
		orders, err = s.orderRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = *toOrderResponse(&orders[i])
	}
	return responses, total, nil
}

// OutstandingSummaryRow aggregates the open balances of one order type
type OutstandingSummaryRow struct {
	Type           string          `json:"type"`
	Orders         int             `json:"orders"`
	TotalRemaining decimal.Decimal `json:"total_remaining"`
}

// OutstandingSummaryResponse is the per-type breakdown of everything the
// store is still owed
type OutstandingSummaryResponse struct {
	Rows           []OutstandingSummaryRow `json:"rows"`
	Orders         int                     `json:"orders"`
	TotalRemaining decimal.Decimal         `json:"total_remaining"`
}

// OutstandingSummary sums the remaining balance of every order that still
// carries one, grouped by order type
func (s *LedgerService) OutstandingSummary(ctx context.Context) (*OutstandingSummaryResponse, error) {
	orders, err := s.orderRepo.FindOutstanding(ctx, ledger.OrderFilter{})
	if err != nil {
		return nil, err
	}

	byType := make(map[ledger.OrderType]*OutstandingSummaryRow)
	summary := &OutstandingSummaryResponse{TotalRemaining: decimal.Zero}
	for i := range orders {
		o := &orders[i]
		remaining := o.Remaining().Amount()

		row, ok := byType[o.Type]
		if !ok {
			row = &OutstandingSummaryRow{Type: o.Type.String(), TotalRemaining: decimal.Zero}
			byType[o.Type] = row
		}
		row.Orders++
		row.TotalRemaining = row.TotalRemaining.Add(remaining)
		summary.Orders++
		summary.TotalRemaining = summary.TotalRemaining.Add(remaining)
	}

	// Fixed row order so the report reads the same every day
	for _, t := range []ledger.OrderType{
		ledger.OrderTypeSale,
		ledger.OrderTypeLayaway,
		ledger.OrderTypeCustomWork,
		ledger.OrderTypeCustomRing,
		ledger.OrderTypeWatchRepair,
	} {
		if row, ok := byType[t]; ok {
			summary.Rows = append(summary.Rows, *row)
		}
	}
	return summary, nil
}

// ===================== Credit note operations =====================

// IssueCreditNote issues store credit against an origin order. At most
// one non-cancelled note may exist per origin, and the amount is capped
// at what the origin order actually collected.
func (s *LedgerService) IssueCreditNote(ctx context.Context, employeeID uuid.UUID, req IssueCreditNoteRequest) (*CreditNoteResponse, error) {
	amount, err := parseMoney(req.Amount)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invalid credit note amount: "+req.Amount)
	}

	lock := s.locks.acquire(orderLockKey(req.OriginOrderID))
	defer s.locks.release(lock)

	origin, err := s.orderRepo.FindByID(ctx, req.OriginOrderID)
	if err != nil {
		return nil, err
	}
	if origin == nil {
		return nil, shared.NewDomainError(ledger.ErrCodeOriginNotFound, "Origin order not found")
	}

	exists, err := s.noteRepo.ExistsActiveByOrigin(ctx, req.OriginOrderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(ledger.ErrCodeAlreadyIssued,
			"A credit note was already issued against order "+origin.OrderNumber)
	}

	// cap at min(collected, total): overpaid orders still only credit
	// up to the order total
	issueCap := origin.GetCollectedMoney()
	if over, _ := issueCap.GreaterThan(origin.GetTotalMoney()); over {
		issueCap = origin.GetTotalMoney()
	}

	noteNumber, err := s.noteRepo.GenerateNoteNumber(ctx)
	if err != nil {
		return nil, err
	}

	note, err := ledger.IssueCreditNote(
		noteNumber,
		origin.Type,
		origin.ID,
		origin.CustomerID,
		origin.CustomerName,
		amount,
		issueCap,
		employeeID,
	)
	if err != nil {
		return nil, err
	}
	if req.Remark != "" {
		note.Remark = req.Remark
	}

	if err := s.saveNewNote(ctx, note); err != nil {
		return nil, err
	}

	events := note.GetDomainEvents()
	note.ClearDomainEvents()
	s.publishEvents(ctx, events)

	return toCreditNoteResponse(note), nil
}

// RedeemCreditNote redeems part of a note's balance against an order
// without recording an installment. The balance check and the increment
// run under the note's lock as one step.
func (s *LedgerService) RedeemCreditNote(ctx context.Context, noteID uuid.UUID, req RedeemCreditNoteRequest) (*CreditNoteResponse, error) {
	amount, err := parseMoney(req.Amount)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invalid redemption amount: "+req.Amount)
	}

	lock := s.locks.acquire(noteLockKey(noteID))
	defer s.locks.release(lock)

	note, err := s.noteRepo.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Credit note not found")
	}

	if err := note.Redeem(amount, req.OrderID); err != nil {
		return nil, err
	}

	if err := s.noteRepo.SaveWithLock(ctx, note); err != nil {
		return nil, err
	}

	events := note.GetDomainEvents()
	note.ClearDomainEvents()
	s.publishEvents(ctx, events)

	return toCreditNoteResponse(note), nil
}

// CancelCreditNote cancels a note, blocking further redemption
func (s *LedgerService) CancelCreditNote(ctx context.Context, noteID uuid.UUID, req CancelCreditNoteRequest) (*CreditNoteResponse, error) {
	lock := s.locks.acquire(noteLockKey(noteID))
	defer s.locks.release(lock)

	note, err := s.noteRepo.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Credit note not found")
	}

	if err := note.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if err := s.noteRepo.SaveWithLock(ctx, note); err != nil {
		return nil, err
	}

	events := note.GetDomainEvents()
	note.ClearDomainEvents()
	s.publishEvents(ctx, events)

	return toCreditNoteResponse(note), nil
}

// GetCreditNote gets a credit note by ID
func (s *LedgerService) GetCreditNote(ctx context.Context, id uuid.UUID) (*CreditNoteResponse, error) {
	note, err := s.noteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Credit note not found")
	}
	return toCreditNoteResponse(note), nil
}

// GetCreditNotesByOrigin lists every note issued against an origin
// order, cancelled ones included
func (s *LedgerService) GetCreditNotesByOrigin(ctx context.Context, originID uuid.UUID) ([]CreditNoteResponse, error) {
	notes, err := s.noteRepo.FindByOrigin(ctx, originID)
	if err != nil {
		return nil, err
	}

	responses := make([]CreditNoteResponse, len(notes))
	for i := range notes {
		responses[i] = *toCreditNoteResponse(&notes[i])
	}
	return responses, nil
}

// CreditNoteListFilter defines filtering options for credit note list queries
type CreditNoteListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Cancelled  *bool      `form:"cancelled"`
	Redeemable bool       `form:"redeemable"`
	FromDate   *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// ListCreditNotes lists credit notes with filtering
func (s *LedgerService) ListCreditNotes(ctx context.Context, filter CreditNoteListFilter) ([]CreditNoteResponse, int64, error) {
	domainFilter := ledger.CreditNoteFilter{
		CustomerID:     filter.CustomerID,
		Cancelled:      filter.Cancelled,
		OnlyRedeemable: filter.Redeemable,
		FromDate:       filter.FromDate,
		ToDate:         filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	notes, err := s.noteRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.noteRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CreditNoteResponse, len(notes))
	for i := range notes {
		responses[i] = *toCreditNoteResponse(&notes[i])
	}
	return responses, total, nil
}
