package handlers

import (
	"context"
	"io"
	"net/http"

	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	txSvc "github.com/NomadCrew/nomad-split-backend/models/transaction/service"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/gin-gonic/gin"
)

// receiptFormField is the multipart field carrying a receipt upload.
const receiptFormField = "receipt"

// TransactionServiceInterface defines the methods used by TransactionHandler.
type TransactionServiceInterface interface {
	CreateTransaction(ctx context.Context, userID string, req *types.CreateTransactionRequest) (*types.Transaction, error)
	ListTransactions(ctx context.Context, userID string, filter types.TransactionFilter) (*types.TransactionPage, error)
	GetTransaction(ctx context.Context, userID, id string) (*types.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id string, req *types.UpdateTransactionRequest) (*types.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
	MarkParticipantPaid(ctx context.Context, userID, id, targetUserID string, paid bool) (*types.Transaction, error)
	AddApproval(ctx context.Context, userID, id string, approved bool, comment string) (*types.Transaction, error)
	AttachReceipt(ctx context.Context, userID, id string, file io.Reader, fileName string) (*types.Transaction, error)
	GetUserGroupBalance(ctx context.Context, userID, groupID string) (types.GroupBalance, error)
	GetUserBalances(ctx context.Context, userID string) (*types.UserBalances, error)
}

var _ TransactionServiceInterface = (*txSvc.TransactionService)(nil)

type TransactionHandler struct {
	txService TransactionServiceInterface
}

func NewTransactionHandler(txService TransactionServiceInterface) *TransactionHandler {
	return &TransactionHandler{txService: txService}
}

// CreateTransactionHandler godoc
// @Summary Create a transaction
// @Description Records an expense and splits it between the participants.
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body types.CreateTransactionRequest true "Transaction"
// @Success 201 {object} types.Transaction
// @Failure 400 {object} types.ErrorResponse
// @Failure 403 {object} types.ErrorResponse
// @Router /transactions [post]
// @Security BearerAuth
func (h *TransactionHandler) CreateTransactionHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.CreateTransactionRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	tx, err := h.txService.CreateTransaction(c.Request.Context(), userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// ListTransactionsHandler godoc
// @Summary List transactions
// @Tags transactions
// @Produce json
// @Param group query string false "Group ID"
// @Param payer query string false "Payer ID"
// @Param participant query string false "Participant ID"
// @Param status query string false "pending, approved, settled or cancelled"
// @Param category query string false "Category"
// @Param startDate query string false "RFC 3339 or YYYY-MM-DD"
// @Param endDate query string false "RFC 3339 or YYYY-MM-DD"
// @Param page query int false "Page (from 1)"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} types.TransactionPage
// @Router /transactions [get]
// @Security BearerAuth
func (h *TransactionHandler) ListTransactionsHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	filter := types.TransactionFilter{
		GroupID:       c.Query("group"),
		PayerID:       c.Query("payer"),
		ParticipantID: c.Query("participant"),
		Status:        types.TransactionStatus(c.Query("status")),
		Category:      types.TransactionCategory(c.Query("category")),
		Page:          intQuery(c, "page"),
		Limit:         intQuery(c, "limit"),
	}
	var err error
	if filter.StartDate, err = timeQuery(c, "startDate", false); err != nil {
		_ = c.Error(err)
		return
	}
	if filter.EndDate, err = timeQuery(c, "endDate", true); err != nil {
		_ = c.Error(err)
		return
	}

	page, err := h.txService.ListTransactions(c.Request.Context(), userID, filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetTransactionHandler godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} types.Transaction
// @Failure 403 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /transactions/{id} [get]
// @Security BearerAuth
func (h *TransactionHandler) GetTransactionHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	tx, err := h.txService.GetTransaction(c.Request.Context(), userID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// UpdateTransactionHandler godoc
// @Summary Update a transaction
// @Description Partial update. Changing the amount, participants or split method recomputes the split.
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body types.UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} types.Transaction
// @Failure 400 {object} types.ErrorResponse
// @Failure 403 {object} types.ErrorResponse
// @Router /transactions/{id} [patch]
// @Security BearerAuth
func (h *TransactionHandler) UpdateTransactionHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req types.UpdateTransactionRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	tx, err := h.txService.UpdateTransaction(c.Request.Context(), userID, id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// DeleteTransactionHandler godoc
// @Summary Delete a transaction
// @Tags transactions
// @Param id path string true "Transaction ID"
// @Success 204
// @Failure 403 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /transactions/{id} [delete]
// @Security BearerAuth
func (h *TransactionHandler) DeleteTransactionHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.txService.DeleteTransaction(c.Request.Context(), userID, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkPaidHandler godoc
// @Summary Mark a participant's share as paid or unpaid
// @Description userId defaults to the caller and paid defaults to true.
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body types.PaymentRequest false "Payment"
// @Success 200 {object} types.Transaction
// @Failure 400 {object} types.ErrorResponse
// @Failure 403 {object} types.ErrorResponse
// @Router /transactions/{id}/payments [post]
// @Security BearerAuth
func (h *TransactionHandler) MarkPaidHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req types.PaymentRequest
	if c.Request.ContentLength != 0 && !bindJSONOrError(c, &req) {
		return
	}
	target := req.UserID
	if target == "" {
		target = userID
	}
	paid := true
	if req.Paid != nil {
		paid = *req.Paid
	}

	tx, err := h.txService.MarkParticipantPaid(c.Request.Context(), userID, id, target, paid)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// AddApprovalHandler godoc
// @Summary Approve or reject a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body types.ApprovalRequest true "Approval"
// @Success 200 {object} types.Transaction
// @Failure 400 {object} types.ErrorResponse
// @Failure 403 {object} types.ErrorResponse
// @Router /transactions/{id}/approvals [post]
// @Security BearerAuth
func (h *TransactionHandler) AddApprovalHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req types.ApprovalRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	tx, err := h.txService.AddApproval(c.Request.Context(), userID, id, *req.Approved, req.Comment)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// UploadReceiptHandler godoc
// @Summary Attach a receipt image
// @Description Accepts jpeg, png, heic, webp or pdf up to 10MB.
// @Tags transactions
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Transaction ID"
// @Param receipt formData file true "Receipt image"
// @Success 200 {object} types.Transaction
// @Failure 400 {object} types.ErrorResponse
// @Failure 503 {object} types.ErrorResponse
// @Router /transactions/{id}/receipt [post]
// @Security BearerAuth
func (h *TransactionHandler) UploadReceiptHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	// leave headroom for the multipart envelope
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, txSvc.MaxReceiptSize+1<<20)

	header, err := c.FormFile(receiptFormField)
	if err != nil {
		_ = c.Error(apperrors.ValidationFailed("missing_file", "a receipt file is required in the \"receipt\" field"))
		return
	}
	if header.Size > txSvc.MaxReceiptSize {
		_ = c.Error(apperrors.ValidationFailed("file_too_large", "receipt exceeds maximum of 10MB"))
		return
	}
	file, err := header.Open()
	if err != nil {
		_ = c.Error(apperrors.ValidationFailed("unreadable_file", err.Error()))
		return
	}
	defer file.Close()

	tx, err := h.txService.AttachReceipt(c.Request.Context(), userID, id, file, header.Filename)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// GetMyBalancesHandler godoc
// @Summary Get the current user's balances
// @Description Overall summary plus per-group and direct balances.
// @Tags users
// @Produce json
// @Success 200 {object} types.UserBalances
// @Router /users/me/balances [get]
// @Security BearerAuth
func (h *TransactionHandler) GetMyBalancesHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	balances, err := h.txService.GetUserBalances(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, balances)
}

// GetMyGroupBalanceHandler godoc
// @Summary Get the current user's balance in one group
// @Tags users
// @Produce json
// @Param groupId path string true "Group ID"
// @Success 200 {object} types.GroupBalance
// @Failure 403 {object} types.ErrorResponse
// @Router /users/me/balances/{groupId} [get]
// @Security BearerAuth
func (h *TransactionHandler) GetMyGroupBalanceHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "groupId")
	if !ok {
		return
	}

	balance, err := h.txService.GetUserGroupBalance(c.Request.Context(), userID, groupID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, balance)
}
