package ledger

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aalrashed/divvy/pkg/middleware"
	"github.com/aalrashed/divvy/pkg/response"
)

// Handler handles HTTP requests for balances and payments
type Handler struct {
	service *Service
}

// NewHandler creates a new ledger handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for ledger endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.RecordPayment)
	r.Get("/history/{groupId}", h.History)

	// Balance views
	r.Get("/dashboard", h.Dashboard)
	r.Get("/net/{groupId}", h.NetPosition)
	r.Post("/simplify", h.Simplify)

	return r
}

// RecordPayment handles POST /payments
// @Summary      Record a settlement payment
// @Description  Records an immutable payment event and applies it against the open balance for the pair, if any
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body RecordPaymentRequest true "Payment details"
// @Success      201 {object} response.APIResponse{data=PaymentResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /payments [post]
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	fromUserID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	payment, err := h.service.RecordPayment(r.Context(), fromUserID, req.ToUserID, req.GroupID,
		req.Amount, PaymentMethod(req.Method), req.Description)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, payment.ToResponse())
}

// History handles GET /payments/history/{groupId}
// @Summary      Get a group's payment history
// @Tags         payments
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]PaymentResponse}
// @Router       /payments/history/{groupId} [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	payments, err := h.service.ListPayments(r.Context(), groupID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	responses := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		responses[i] = p.ToResponse()
	}
	response.JSON(w, http.StatusOK, responses)
}

// Dashboard handles GET /payments/dashboard
// @Summary      Get the authenticated user's balance dashboard
// @Description  Open balances partitioned into what you owe and what you are owed, with totals
// @Tags         balances
// @Produce      json
// @Success      200 {object} response.APIResponse{data=DashboardResponse}
// @Router       /payments/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	sheet, err := h.service.OpenBalancesFor(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := &DashboardResponse{
		YouOwe:     make([]*BalanceResponse, len(sheet.YouOwe)),
		YouAreOwed: make([]*BalanceResponse, len(sheet.YouAreOwed)),
		TotalOwed:  sheet.TotalOwed,
		TotalDue:   sheet.TotalDue,
	}
	for i, b := range sheet.YouOwe {
		resp.YouOwe[i] = b.ToResponse()
	}
	for i, b := range sheet.YouAreOwed {
		resp.YouAreOwed[i] = b.ToResponse()
	}
	response.JSON(w, http.StatusOK, resp)
}

// NetPosition handles GET /payments/net/{groupId}
// @Summary      Get the authenticated user's net position in a group
// @Tags         balances
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=NetPositionResponse}
// @Router       /payments/net/{groupId} [get]
func (h *Handler) NetPosition(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	net, err := h.service.NetPosition(r.Context(), userID, groupID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, &NetPositionResponse{
		UserID:  userID,
		GroupID: groupID,
		Amount:  net,
	})
}

// Simplify handles POST /payments/simplify
// @Summary      Compute a group's settling transfers
// @Description  Derived, non-persisted plan merging same-direction debts; recomputed from the current balance snapshot
// @Tags         balances
// @Accept       json
// @Produce      json
// @Param        request body SimplifyRequest true "Group to simplify"
// @Success      200 {object} response.APIResponse{data=SimplifyResponse}
// @Router       /payments/simplify [post]
func (h *Handler) Simplify(w http.ResponseWriter, r *http.Request) {
	var req SimplifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.GroupID == 0 {
		response.BadRequest(w, "group_id is required")
		return
	}

	transfers, err := h.service.Simplify(r.Context(), req.GroupID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, &SimplifyResponse{
		GroupID:   req.GroupID,
		Transfers: transfers,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrConcurrentUpdate):
		response.Conflict(w, "Balance is being updated by another request, retry shortly")
	default:
		response.InternalError(w, "Something went wrong")
	}
}
