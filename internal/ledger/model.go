package ledger

import "time"

// BalanceStatus represents the lifecycle state of a balance record
type BalanceStatus string

const (
	BalanceStatusPending BalanceStatus = "pending"
	BalanceStatusPartial BalanceStatus = "partial"
	BalanceStatusPaid    BalanceStatus = "paid"
)

// Balance is the accumulated directional debt between two users within a
// group. At most one open (pending/partial) balance exists per
// (debtor, creditor, group) triple; new debt between the same pair merges
// into it. A balance is never deleted by payments, only driven to
// status paid with amount 0.
type Balance struct {
	ID         int64         `json:"id"`
	DebtorID   int64         `json:"debtor_id"`
	CreditorID int64         `json:"creditor_id"`
	GroupID    int64         `json:"group_id"`
	Amount     float64       `json:"amount"`
	Currency   string        `json:"currency"`
	Status     BalanceStatus `json:"status"`
	ExpenseIDs []int64       `json:"expense_ids"` // expenses that contributed debt
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// IsOpen reports whether the balance still carries outstanding debt
func (b *Balance) IsOpen() bool {
	return b.Status == BalanceStatusPending || b.Status == BalanceStatusPartial
}

// PaymentMethod tags how a settlement payment was made
type PaymentMethod string

const (
	PaymentMethodVenmo  PaymentMethod = "venmo"
	PaymentMethodPaypal PaymentMethod = "paypal"
	PaymentMethodBank   PaymentMethod = "bank"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodManual PaymentMethod = "manual"
)

// ValidPaymentMethod reports whether the method tag is one we accept
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodVenmo, PaymentMethodPaypal, PaymentMethodBank,
		PaymentMethodCard, PaymentMethodCash, PaymentMethodManual:
		return true
	}
	return false
}

// Payment is an append-only ledger event recording that a transfer
// occurred. It is immutable once created, even when no open balance
// existed for the pair (a gift or out-of-band settlement).
type Payment struct {
	ID            int64         `json:"id"`
	FromUserID    int64         `json:"from_user_id"` // debtor
	ToUserID      int64         `json:"to_user_id"`   // creditor
	GroupID       int64         `json:"group_id"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	Method        PaymentMethod `json:"method"`
	Status        string        `json:"status"`
	Description   string        `json:"description,omitempty"`
	TransactionID string        `json:"transaction_id"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NetTransfer is a derived settling suggestion produced by the debt
// simplifier. Never persisted; recomputed on demand from the current
// balance snapshot.
type NetTransfer struct {
	FromUserID int64   `json:"from_user_id"`
	ToUserID   int64   `json:"to_user_id"`
	Amount     float64 `json:"amount"`
}

// Contribution is one expense's originally-applied share against a
// (debtor, creditor, group) triple, used when an expense is removed and
// its debt must be backed out of the ledger.
type Contribution struct {
	DebtorID   int64
	CreditorID int64
	GroupID    int64
	Amount     float64
}
