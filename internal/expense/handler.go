package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aalrashed/divvy/internal/expense/split"
	"github.com/aalrashed/divvy/internal/ledger"
	"github.com/aalrashed/divvy/pkg/middleware"
	"github.com/aalrashed/divvy/pkg/response"
)

// Handler handles HTTP requests for expenses
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Post("/preview", h.Preview)
	r.Get("/{id}", h.GetByID)
	r.Get("/group/{groupId}", h.ListByGroup)
	r.Delete("/{id}", h.Delete)

	return r
}

// Create handles POST /expenses
// @Summary      Create an expense
// @Description  Computes the splits for the chosen method, persists the expense, and applies every non-payer share to the balance ledger
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense details"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	payerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.CreateExpense(r.Context(), payerID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := result.Expense.ToResponse()
	resp.Splits = make([]*SplitResponse, len(result.Splits))
	for i, s := range result.Splits {
		resp.Splits[i] = s.ToResponse(result.Expense)
	}
	response.JSON(w, http.StatusCreated, resp)
}

// Preview handles POST /expenses/preview
// @Summary      Preview a split calculation
// @Description  Runs the split calculation for the chosen method without persisting anything
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body PreviewSplitRequest true "Split inputs"
// @Success      200 {object} response.APIResponse{data=PreviewSplitResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /expenses/preview [post]
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewSplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	shares, err := h.service.PreviewSplits(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, &PreviewSplitResponse{
		Shares: shares,
		Total:  req.Amount,
	})
}

// GetByID handles GET /expenses/{id}
// @Summary      Get an expense
// @Tags         expenses
// @Produce      json
// @Param        id path int true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	result, err := h.service.GetExpense(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := result.Expense.ToResponse()
	resp.Splits = make([]*SplitResponse, len(result.Splits))
	for i, s := range result.Splits {
		resp.Splits[i] = s.ToResponse(result.Expense)
	}
	response.JSON(w, http.StatusOK, resp)
}

// ListByGroup handles GET /expenses/group/{groupId}
// @Summary      List a group's expenses
// @Tags         expenses
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(20)
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Router       /expenses/group/{groupId} [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	expenses, total, err := h.service.ListGroupExpenses(r.Context(), groupID, page, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	responses := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		responses[i] = e.ToResponse()
	}
	response.Paginated(w, http.StatusOK, responses, page, limit, total)
}

// Delete handles DELETE /expenses/{id}
// @Summary      Delete an expense
// @Description  Reverses the expense's applied shares in the balance ledger, then removes it. Only the payer may delete.
// @Tags         expenses
// @Produce      json
// @Param        id path int true "Expense ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	if err := h.service.DeleteExpense(r.Context(), id, userID); err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Expense deleted successfully"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrExpenseNotFound):
		response.NotFound(w, "Expense not found")
	case errors.Is(err, ErrNotPayer):
		response.Forbidden(w, "Only the payer can delete this expense")
	case errors.Is(err, split.ErrValidation):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ledger.ErrConcurrentUpdate):
		response.Conflict(w, "Balance is being updated by another request, retry shortly")
	default:
		response.InternalError(w, "Something went wrong")
	}
}
