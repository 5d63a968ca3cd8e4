package expense

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/aalrashed/divvy/internal/expense/split"
	"github.com/aalrashed/divvy/internal/ledger"
)

var (
	// ErrExpenseNotFound is returned when an expense doesn't exist
	ErrExpenseNotFound = errors.New("expense not found")
	// ErrNotPayer is returned when someone other than the payer tries to delete an expense
	ErrNotPayer = errors.New("only the payer can delete this expense")

	ErrMissingTitle    = fmt.Errorf("%w: title is required", split.ErrValidation)
	ErrUnknownCategory = fmt.Errorf("%w: unknown expense category", split.ErrValidation)
	ErrSplitMismatch   = fmt.Errorf("%w: computed shares do not reconcile with the expense total", split.ErrValidation)
)

// Storage defines the persistence operations the expense service needs
type Storage interface {
	CreateExpense(ctx context.Context, expense *Expense) (*Expense, error)
	CreateSplit(ctx context.Context, s *Split) (*Split, error)
	GetExpenseByID(ctx context.Context, id int64) (*Expense, error)
	GetSplitsByExpenseID(ctx context.Context, expenseID int64) ([]*Split, error)
	ListExpensesByGroupID(ctx context.Context, groupID int64, limit, offset int) ([]*Expense, int, error)
	DeleteExpense(ctx context.Context, id int64) error
}

// Ledger is the slice of the balance ledger the expense workflow drives
type Ledger interface {
	ApplyShare(ctx context.Context, debtorID, creditorID, groupID int64, amount float64, currency string, expenseID int64) error
	ReverseExpense(ctx context.Context, expenseID int64, contributions []ledger.Contribution) error
}

// Service handles business logic for expenses
type Service struct {
	store   Storage
	ledger  Ledger
	factory *split.Factory
	log     *logrus.Logger
}

// NewService creates a new expense service
func NewService(store Storage, ledger Ledger, factory *split.Factory, log *logrus.Logger) *Service {
	return &Service{store: store, ledger: ledger, factory: factory, log: log}
}

// CreateExpense computes the splits for a new expense, persists the
// expense with its immutable split rows, and applies every non-payer
// share to the balance ledger. Validation failures persist nothing.
func (s *Service) CreateExpense(ctx context.Context, payerID int64, req *CreateExpenseRequest) (*ExpenseWithSplits, error) {
	if req.Title == "" {
		return nil, ErrMissingTitle
	}

	category := Category(req.Category)
	if category == "" {
		category = CategoryOther
	}
	if !ValidCategory(category) {
		return nil, ErrUnknownCategory
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	shares, params, err := s.computeShares(req.SplitMethod, req.Amount,
		req.Participants, req.Items, req.Tax, req.Tip)
	if err != nil {
		return nil, err
	}

	if err := reconcileShares(split.Method(req.SplitMethod), req.Amount, shares); err != nil {
		return nil, err
	}

	expense := &Expense{
		GroupID:     req.GroupID,
		PayerID:     payerID,
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    currency,
		Category:    category,
		SplitMethod: split.Method(req.SplitMethod),
		Items:       params.Items,
		Tax:         params.Tax,
		Tip:         params.Tip,
	}

	expense, err = s.store.CreateExpense(ctx, expense)
	if err != nil {
		return nil, err
	}

	// TODO: wrap split rows and ledger application in the same transaction
	// as the expense insert, so a mid-loop failure can't leave a partial set
	splits := make([]*Split, 0, len(shares))
	for _, share := range shares {
		row := &Split{
			ExpenseID:  expense.ID,
			UserID:     share.UserID,
			Amount:     share.Amount,
			Percentage: share.Percentage,
		}
		if row, err = s.store.CreateSplit(ctx, row); err != nil {
			return nil, err
		}
		splits = append(splits, row)

		if err := s.ledger.ApplyShare(ctx, share.UserID, payerID, expense.GroupID,
			share.Amount, currency, expense.ID); err != nil {
			return nil, err
		}
	}

	s.log.WithFields(logrus.Fields{
		"expense_id":   expense.ID,
		"group_id":     expense.GroupID,
		"payer_id":     payerID,
		"amount":       expense.Amount,
		"split_method": expense.SplitMethod,
		"splits":       len(splits),
	}).Info("expense created")

	return &ExpenseWithSplits{Expense: expense, Splits: splits}, nil
}

// PreviewSplits runs the split calculation without persisting anything
func (s *Service) PreviewSplits(ctx context.Context, req *PreviewSplitRequest) ([]split.Share, error) {
	shares, _, err := s.computeShares(req.SplitMethod, req.Amount,
		req.Participants, req.Items, req.Tax, req.Tip)
	return shares, err
}

// GetExpense retrieves an expense with its computed splits
func (s *Service) GetExpense(ctx context.Context, id int64) (*ExpenseWithSplits, error) {
	expense, err := s.store.GetExpenseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}

	splits, err := s.store.GetSplitsByExpenseID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ExpenseWithSplits{Expense: expense, Splits: splits}, nil
}

// ListGroupExpenses retrieves a page of a group's expenses, newest first
func (s *Service) ListGroupExpenses(ctx context.Context, groupID int64, page, limit int) ([]*Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.store.ListExpensesByGroupID(ctx, groupID, limit, (page-1)*limit)
}

// DeleteExpense removes an expense, reversing every share it applied to
// the ledger first. Only the original payer may delete.
func (s *Service) DeleteExpense(ctx context.Context, id, userID int64) error {
	expense, err := s.store.GetExpenseByID(ctx, id)
	if err != nil {
		return err
	}
	if expense == nil {
		return ErrExpenseNotFound
	}
	if expense.PayerID != userID {
		return ErrNotPayer
	}

	splits, err := s.store.GetSplitsByExpenseID(ctx, id)
	if err != nil {
		return err
	}

	contributions := make([]ledger.Contribution, 0, len(splits))
	for _, row := range splits {
		if row.UserID == expense.PayerID {
			continue
		}
		contributions = append(contributions, ledger.Contribution{
			DebtorID:   row.UserID,
			CreditorID: expense.PayerID,
			GroupID:    expense.GroupID,
			Amount:     row.Amount,
		})
	}

	if err := s.ledger.ReverseExpense(ctx, id, contributions); err != nil {
		return err
	}

	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"expense_id": id,
		"group_id":   expense.GroupID,
		"payer_id":   expense.PayerID,
	}).Info("expense deleted")

	return nil
}

// computeShares resolves the strategy and runs the calculation. For an
// itemized bill with no explicit participant list, the participants are
// derived from the item assignees in first-seen order.
func (s *Service) computeShares(method string, amount float64, participants []*ParticipantRequest,
	items []*ItemRequest, tax, tip *ExtraRequest) ([]split.Share, split.Params, error) {

	strategy, err := s.factory.CreateFromString(method)
	if err != nil {
		return nil, split.Params{}, err
	}

	params := splitParams(participants, items, tax, tip)

	if strategy.Method() == split.MethodItemized && len(params.Participants) == 0 {
		seen := make(map[int64]bool)
		for _, item := range params.Items {
			if item.AssignedTo == nil || seen[*item.AssignedTo] {
				continue
			}
			seen[*item.AssignedTo] = true
			params.Participants = append(params.Participants, split.Participant{UserID: *item.AssignedTo})
		}
	}

	shares, err := strategy.Compute(amount, params)
	if err != nil {
		return nil, split.Params{}, err
	}
	return shares, params, nil
}

// reconcileShares checks the computed shares against the expense total
// before anything is persisted. Per-share rounding can leave up to half
// a cent per participant, so the slack scales with the group size.
// Itemized bills are exempt: unassigned items legitimately leave the
// share total short, and tax/tip can push it past the item total.
func reconcileShares(method split.Method, total float64, shares []split.Share) error {
	if method == split.MethodItemized {
		return nil
	}
	var sum float64
	for _, share := range shares {
		sum += share.Amount
	}
	if math.Abs(sum-total) > split.Tolerance*float64(len(shares)) {
		return ErrSplitMismatch
	}
	return nil
}
