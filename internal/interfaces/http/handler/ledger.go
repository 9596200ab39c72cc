package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/joyeria/backend/internal/application/ledger"
)

// LedgerHandler handles order ledger and credit note API endpoints
type LedgerHandler struct {
	BaseHandler
	ledgerService *ledgerapp.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *ledgerapp.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

// OpenOrder godoc
// @Summary      Open an order
// @Description  Open a sale, layaway, custom work, custom ring or watch service order with its founding payment
// @Tags         ledger-orders
// @Accept       json
// @Produce      json
// @Param        X-Employee-ID header string true "Acting employee" format(uuid)
// @Param        request body ledgerapp.OpenOrderRequest true "Order to open"
// @Success      201 {object} dto.Response{data=ledgerapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/orders [post]
func (h *LedgerHandler) OpenOrder(c *gin.Context) {
	employeeID, err := getEmployeeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid employee ID")
		return
	}

	var req ledgerapp.OpenOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.ledgerService.OpenOrder(c.Request.Context(), employeeID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, order)
}

// ApplyInstallment godoc
// @Summary      Apply an installment
// @Description  Record an abono against an open order; the breakdown must sum to the amount exactly
// @Tags         ledger-orders
// @Accept       json
// @Produce      json
// @Param        X-Employee-ID header string true "Acting employee" format(uuid)
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body ledgerapp.ApplyInstallmentRequest true "Installment to apply"
// @Success      200 {object} dto.Response{data=ledgerapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/orders/{id}/installments [post]
func (h *LedgerHandler) ApplyInstallment(c *gin.Context) {
	employeeID, err := getEmployeeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid employee ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req ledgerapp.ApplyInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.ledgerService.ApplyInstallment(c.Request.Context(), orderID, employeeID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// GetOrder godoc
// @Summary      Get order by ID
// @Tags         ledger-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/orders/{id} [get]
func (h *LedgerHandler) GetOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.ledgerService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// GetOrderByNumber godoc
// @Summary      Get order by folio number
// @Tags         ledger-orders
// @Produce      json
// @Param        number path string true "Order folio number"
// @Success      200 {object} dto.Response{data=ledgerapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/orders/number/{number} [get]
func (h *LedgerHandler) GetOrderByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Order number is required")
		return
	}

	order, err := h.ledgerService.GetOrderByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// ListOrders godoc
// @Summary      List orders
// @Description  List orders with filtering; outstanding=true narrows to orders with an open balance
// @Tags         ledger-orders
// @Produce      json
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        type query string false "Order type" Enums(SALE, LAYAWAY, CUSTOM_WORK, CUSTOM_RING, WATCH_SERVICE)
// @Param        status query string false "Payment status" Enums(PENDING, PARTIAL, PAID)
// @Param        outstanding query boolean false "Only orders with an open balance"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]ledgerapp.OrderResponse,meta=dto.Meta}
// @Router       /ledger/orders [get]
func (h *LedgerHandler) ListOrders(c *gin.Context) {
	var filter ledgerapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	orders, total, err := h.ledgerService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// OutstandingSummary godoc
// @Summary      Outstanding balance summary
// @Description  Sum of open balances across orders, grouped by order type
// @Tags         ledger-orders
// @Produce      json
// @Success      200 {object} dto.Response{data=ledgerapp.OutstandingSummaryResponse}
// @Router       /ledger/orders/outstanding-summary [get]
func (h *LedgerHandler) OutstandingSummary(c *gin.Context) {
	summary, err := h.ledgerService.OutstandingSummary(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// IssueCreditNote godoc
// @Summary      Issue a credit note
// @Description  Issue store credit against an origin order, capped by what the customer actually paid
// @Tags         ledger-credit-notes
// @Accept       json
// @Produce      json
// @Param        X-Employee-ID header string true "Acting employee" format(uuid)
// @Param        request body ledgerapp.IssueCreditNoteRequest true "Credit note to issue"
// @Success      201 {object} dto.Response{data=ledgerapp.CreditNoteResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/credit-notes [post]
func (h *LedgerHandler) IssueCreditNote(c *gin.Context) {
	employeeID, err := getEmployeeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid employee ID")
		return
	}

	var req ledgerapp.IssueCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	note, err := h.ledgerService.IssueCreditNote(c.Request.Context(), employeeID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, note)
}

// RedeemCreditNote godoc
// @Summary      Redeem a credit note
// @Description  Consume part of a credit note's balance against an order; fails when the balance is insufficient
// @Tags         ledger-credit-notes
// @Accept       json
// @Produce      json
// @Param        id path string true "Credit note ID" format(uuid)
// @Param        request body ledgerapp.RedeemCreditNoteRequest true "Redemption"
// @Success      200 {object} dto.Response{data=ledgerapp.CreditNoteResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/credit-notes/{id}/redeem [post]
func (h *LedgerHandler) RedeemCreditNote(c *gin.Context) {
	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid credit note ID format")
		return
	}

	var req ledgerapp.RedeemCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	note, err := h.ledgerService.RedeemCreditNote(c.Request.Context(), noteID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, note)
}

// CancelCreditNote godoc
// @Summary      Cancel a credit note
// @Description  Void a credit note; cancellation is terminal and does not undo past redemptions
// @Tags         ledger-credit-notes
// @Accept       json
// @Produce      json
// @Param        id path string true "Credit note ID" format(uuid)
// @Param        request body ledgerapp.CancelCreditNoteRequest true "Cancellation reason"
// @Success      200 {object} dto.Response{data=ledgerapp.CreditNoteResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/credit-notes/{id}/cancel [post]
func (h *LedgerHandler) CancelCreditNote(c *gin.Context) {
	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid credit note ID format")
		return
	}

	var req ledgerapp.CancelCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	note, err := h.ledgerService.CancelCreditNote(c.Request.Context(), noteID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, note)
}

// GetCreditNote godoc
// @Summary      Get credit note by ID
// @Tags         ledger-credit-notes
// @Produce      json
// @Param        id path string true "Credit note ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.CreditNoteResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/credit-notes/{id} [get]
func (h *LedgerHandler) GetCreditNote(c *gin.Context) {
	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid credit note ID format")
		return
	}

	note, err := h.ledgerService.GetCreditNote(c.Request.Context(), noteID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, note)
}

// ListCreditNotes godoc
// @Summary      List credit notes
// @Tags         ledger-credit-notes
// @Produce      json
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        cancelled query boolean false "Cancellation state"
// @Param        redeemable query boolean false "Only notes with a positive available balance"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]ledgerapp.CreditNoteResponse,meta=dto.Meta}
// @Router       /ledger/credit-notes [get]
func (h *LedgerHandler) ListCreditNotes(c *gin.Context) {
	var filter ledgerapp.CreditNoteListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	notes, total, err := h.ledgerService.ListCreditNotes(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, notes, total, filter.Page, filter.PageSize)
}

// GetOrderCreditNotes godoc
// @Summary      List credit notes issued against an order
// @Tags         ledger-credit-notes
// @Produce      json
// @Param        id path string true "Origin order ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]ledgerapp.CreditNoteResponse}
// @Router       /ledger/orders/{id}/credit-notes [get]
func (h *LedgerHandler) GetOrderCreditNotes(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	notes, err := h.ledgerService.GetCreditNotesByOrigin(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, notes)
}

// RegisterRoutes registers all ledger routes
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/ledger/orders")
	{
		orders.GET("", h.ListOrders)
		orders.GET("/outstanding-summary", h.OutstandingSummary)
		orders.GET("/:id", h.GetOrder)
		orders.GET("/number/:number", h.GetOrderByNumber)
		orders.GET("/:id/credit-notes", h.GetOrderCreditNotes)
		orders.POST("", h.OpenOrder)
		orders.POST("/:id/installments", h.ApplyInstallment)
	}

	notes := rg.Group("/ledger/credit-notes")
	{
		notes.GET("", h.ListCreditNotes)
		notes.GET("/:id", h.GetCreditNote)
		notes.POST("", h.IssueCreditNote)
		notes.POST("/:id/redeem", h.RedeemCreditNote)
		notes.POST("/:id/cancel", h.CancelCreditNote)
	}
}
