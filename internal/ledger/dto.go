package ledger

// RecordPaymentRequest represents the request to record a settlement payment.
// The paying user comes from the request context.
type RecordPaymentRequest struct {
	ToUserID    int64   `json:"to_user_id" validate:"required"`
	GroupID     int64   `json:"group_id" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Method      string  `json:"method,omitempty" validate:"omitempty,oneof=venmo paypal bank card cash manual"`
	Description string  `json:"description,omitempty" validate:"omitempty,max=255"`
}

// SimplifyRequest represents the request to compute a group's settling transfers
type SimplifyRequest struct {
	GroupID int64 `json:"group_id" validate:"required"`
}

// PaymentResponse represents the response for a recorded payment
type PaymentResponse struct {
	ID            int64   `json:"id"`
	FromUserID    int64   `json:"from_user_id"`
	ToUserID      int64   `json:"to_user_id"`
	GroupID       int64   `json:"group_id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Method        string  `json:"method"`
	Status        string  `json:"status"`
	Description   string  `json:"description,omitempty"`
	TransactionID string  `json:"transaction_id"`
	CreatedAt     string  `json:"created_at"`
}

// BalanceResponse represents the response for one open balance
type BalanceResponse struct {
	ID         int64   `json:"id"`
	DebtorID   int64   `json:"debtor_id"`
	CreditorID int64   `json:"creditor_id"`
	GroupID    int64   `json:"group_id"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Status     string  `json:"status"`
	ExpenseIDs []int64 `json:"expense_ids"`
}

// DashboardResponse represents the response for a user's balance dashboard
type DashboardResponse struct {
	YouOwe     []*BalanceResponse `json:"you_owe"`
	YouAreOwed []*BalanceResponse `json:"you_are_owed"`
	TotalOwed  float64            `json:"total_owed"`
	TotalDue   float64            `json:"total_due"`
}

// NetPositionResponse represents a user's aggregate standing in one group
type NetPositionResponse struct {
	UserID  int64   `json:"user_id"`
	GroupID int64   `json:"group_id"`
	Amount  float64 `json:"amount"` // positive: the group owes you; negative: you owe
}

// SimplifyResponse represents the derived settling plan for a group
type SimplifyResponse struct {
	GroupID   int64         `json:"group_id"`
	Transfers []NetTransfer `json:"transfers"`
}

// ToResponse converts a Payment model to a PaymentResponse DTO
func (p *Payment) ToResponse() *PaymentResponse {
	return &PaymentResponse{
		ID:            p.ID,
		FromUserID:    p.FromUserID,
		ToUserID:      p.ToUserID,
		GroupID:       p.GroupID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Method:        string(p.Method),
		Status:        p.Status,
		Description:   p.Description,
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Balance model to a BalanceResponse DTO
func (b *Balance) ToResponse() *BalanceResponse {
	return &BalanceResponse{
		ID:         b.ID,
		DebtorID:   b.DebtorID,
		CreditorID: b.CreditorID,
		GroupID:    b.GroupID,
		Amount:     b.Amount,
		Currency:   b.Currency,
		Status:     string(b.Status),
		ExpenseIDs: b.ExpenseIDs,
	}
}
