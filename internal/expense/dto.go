package expense

import "github.com/aalrashed/divvy/internal/expense/split"

// ParticipantRequest is one group member in a split request
type ParticipantRequest struct {
	UserID     int64    `json:"user_id" validate:"required"`
	Percentage *float64 `json:"percentage,omitempty"` // percentage method
	Amount     *float64 `json:"amount,omitempty"`     // custom method
}

// ItemRequest is one line on an itemized bill
type ItemRequest struct {
	Name       string  `json:"name" validate:"required,min=1,max=255"`
	Price      float64 `json:"price" validate:"required,gte=0"`
	AssignedTo *int64  `json:"assigned_to,omitempty"`
}

// ExtraRequest is a tax or tip charge on an itemized bill
type ExtraRequest struct {
	Amount      float64 `json:"amount" validate:"required,gte=0"`
	SplitMethod string  `json:"split_method" validate:"required,oneof=equal proportional"`
}

// CreateExpenseRequest represents the request to create an expense
type CreateExpenseRequest struct {
	GroupID      int64                 `json:"group_id" validate:"required"`
	Title        string                `json:"title" validate:"required,min=1,max=255"`
	Description  string                `json:"description,omitempty" validate:"omitempty,max=1000"`
	Amount       float64               `json:"amount" validate:"required,gt=0"`
	Currency     string                `json:"currency,omitempty"`
	Category     string                `json:"category,omitempty"`
	SplitMethod  string                `json:"split_method" validate:"required,oneof=equal percentage custom itemized"`
	Participants []*ParticipantRequest `json:"participants,omitempty"`
	Items        []*ItemRequest        `json:"items,omitempty"`
	Tax          *ExtraRequest         `json:"tax,omitempty"`
	Tip          *ExtraRequest         `json:"tip,omitempty"`
}

// PreviewSplitRequest carries the same split inputs as expense creation,
// without the descriptive fields that only matter once persisted
type PreviewSplitRequest struct {
	Amount       float64               `json:"amount" validate:"required,gt=0"`
	SplitMethod  string                `json:"split_method" validate:"required,oneof=equal percentage custom itemized"`
	Participants []*ParticipantRequest `json:"participants,omitempty"`
	Items        []*ItemRequest        `json:"items,omitempty"`
	Tax          *ExtraRequest         `json:"tax,omitempty"`
	Tip          *ExtraRequest         `json:"tip,omitempty"`
}

// splitParams assembles the calculator inputs from request fields
func splitParams(participants []*ParticipantRequest, items []*ItemRequest, tax, tip *ExtraRequest) split.Params {
	params := split.Params{}
	for _, p := range participants {
		params.Participants = append(params.Participants, split.Participant{
			UserID:     p.UserID,
			Percentage: p.Percentage,
			Amount:     p.Amount,
		})
	}
	for _, item := range items {
		params.Items = append(params.Items, split.LineItem{
			Name:       item.Name,
			Price:      item.Price,
			AssignedTo: item.AssignedTo,
		})
	}
	if tax != nil {
		params.Tax = &split.Extra{Amount: tax.Amount, SplitMethod: split.ExtraMethod(tax.SplitMethod)}
	}
	if tip != nil {
		params.Tip = &split.Extra{Amount: tip.Amount, SplitMethod: split.ExtraMethod(tip.SplitMethod)}
	}
	return params
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID          int64            `json:"id"`
	GroupID     int64            `json:"group_id"`
	PayerID     int64            `json:"payer_id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Amount      float64          `json:"amount"`
	Currency    string           `json:"currency"`
	Category    string           `json:"category"`
	SplitMethod string           `json:"split_method"`
	Items       []split.LineItem `json:"items,omitempty"`
	Tax         *split.Extra     `json:"tax,omitempty"`
	Tip         *split.Extra     `json:"tip,omitempty"`
	CreatedAt   string           `json:"created_at"`
	Splits      []*SplitResponse `json:"splits,omitempty"`
}

// SplitResponse represents the response for one computed split
type SplitResponse struct {
	ID         int64            `json:"id"`
	ExpenseID  int64            `json:"expense_id"`
	UserID     int64            `json:"user_id"`
	Amount     float64          `json:"amount"`
	Percentage *float64         `json:"percentage,omitempty"`
	Items      []split.LineItem `json:"items,omitempty"` // itemized: this user's lines
}

// PreviewSplitResponse represents a dry-run split calculation
type PreviewSplitResponse struct {
	Shares []split.Share `json:"shares"`
	Total  float64       `json:"total"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	return &ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Title:       e.Title,
		Description: e.Description,
		Amount:      e.Amount,
		Currency:    e.Currency,
		Category:    string(e.Category),
		SplitMethod: string(e.SplitMethod),
		Items:       e.Items,
		Tax:         e.Tax,
		Tip:         e.Tip,
		CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Split model to a SplitResponse DTO. The
// expense is needed to attach the split owner's itemized lines.
func (s *Split) ToResponse(e *Expense) *SplitResponse {
	resp := &SplitResponse{
		ID:         s.ID,
		ExpenseID:  s.ExpenseID,
		UserID:     s.UserID,
		Amount:     s.Amount,
		Percentage: s.Percentage,
	}
	if e != nil && e.SplitMethod == split.MethodItemized {
		for _, item := range e.Items {
			if item.AssignedTo != nil && *item.AssignedTo == s.UserID {
				resp.Items = append(resp.Items, item)
			}
		}
	}
	return resp
}
