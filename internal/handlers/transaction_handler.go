package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionRequest is the payload for creating or updating a transaction.
// Every field is optional on update; on create amount and description are
// required, type defaults to expense and category to General.
type TransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount" swaggertype:"number" example:"12.5"`
	Description *string          `json:"description" binding:"omitempty,not_blank,max=500"`
	Type        *string          `json:"type" binding:"omitempty,transaction_type" example:"expense"`
	Category    *string          `json:"category" binding:"omitempty,max=100" example:"Food"`
	Date        *string          `json:"date" example:"2024-05-10"`
}

func (r *TransactionRequest) toPatch() (models.TransactionPatch, error) {
	patch := models.TransactionPatch{
		Amount:      r.Amount,
		Description: r.Description,
		Category:    r.Category,
	}
	if r.Type != nil {
		t := models.TransactionType(*r.Type)
		patch.Type = &t
	}
	if r.Date != nil && *r.Date != "" {
		parsed, err := parseFlexibleTime(*r.Date)
		if err != nil {
			return models.TransactionPatch{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		patch.Date = &parsed
	}
	return patch, nil
}

func bindTransactionRequest(c *gin.Context) (models.TransactionPatch, error) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return models.TransactionPatch{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return req.toPatch()
}

// ListTransactions returns every transaction
// @Summary     List transactions
// @Description Get all transactions, newest first
// @Tags        transactions
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {array}  models.Transaction "Transactions"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	transactions, err := h.transactionService.ListTransactions(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record a new income or expense
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body TransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	patch, err := bindTransactionRequest(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), patch)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transaction)
}

// GetTransaction returns a single transaction
// @Summary     Get a transaction
// @Tags        transactions
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id  path     string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// UpdateTransaction changes the supplied fields of a transaction
// @Summary     Update a transaction
// @Description Partially update a transaction; omitted fields keep their values
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id      path string             true "Transaction ID"
// @Param       request body TransactionRequest true "Fields to change"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	patch, err := bindTransactionRequest(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), id, patch)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// DeleteTransaction removes a transaction
// @Summary     Delete a transaction
// @Description Delete a transaction and return the removed record
// @Tags        transactions
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id  path     string true "Transaction ID"
// @Success     200 {object} models.Transaction "Deleted transaction"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.DeleteTransaction(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// GetSummary returns the dashboard aggregates
// @Summary     Dashboard summary
// @Description Totals, balance, category breakdown, recent activity and month-over-month trend
// @Tags        summary
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {object} analytics.Summary "Summary"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /summary [get]
func (h *TransactionHandler) GetSummary(c *gin.Context) {
	summary, err := h.transactionService.GetSummary(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
