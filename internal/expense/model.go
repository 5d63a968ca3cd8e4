package expense

import (
	"time"

	"github.com/aalrashed/divvy/internal/expense/split"
)

// Category buckets an expense for reporting
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryRent          Category = "Rent"
	CategoryTravel        Category = "Travel"
	CategoryEntertainment Category = "Entertainment"
	CategoryUtilities     Category = "Utilities"
	CategoryOther         Category = "Other"
)

// ValidCategory reports whether the category is one we accept
func ValidCategory(c Category) bool {
	switch c {
	case CategoryFood, CategoryRent, CategoryTravel, CategoryEntertainment,
		CategoryUtilities, CategoryOther:
		return true
	}
	return false
}

// Expense represents a logged group expense. Immutable to the ledger:
// an edit regenerates a fresh split set rather than mutating this one.
type Expense struct {
	ID          int64            `json:"id"`
	GroupID     int64            `json:"group_id"`
	PayerID     int64            `json:"payer_id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Amount      float64          `json:"amount"`
	Currency    string           `json:"currency"`
	Category    Category         `json:"category"`
	SplitMethod split.Method     `json:"split_method"`
	Items       []split.LineItem `json:"items,omitempty"` // itemized only
	Tax         *split.Extra     `json:"tax,omitempty"`
	Tip         *split.Extra     `json:"tip,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Split is one participant's persisted share of an expense, computed
// once at creation and never mutated afterward.
type Split struct {
	ID         int64    `json:"id"`
	ExpenseID  int64    `json:"expense_id"`
	UserID     int64    `json:"user_id"`
	Amount     float64  `json:"amount"`
	Percentage *float64 `json:"percentage,omitempty"`
}

// ExpenseWithSplits combines an expense with its computed splits
type ExpenseWithSplits struct {
	Expense *Expense
	Splits  []*Split
}
