package expense

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/aalrashed/divvy/internal/expense/split"
	"github.com/aalrashed/divvy/internal/ledger"
)

// fakeStore is an in-memory Storage implementation for tests
type fakeStore struct {
	expenses      map[int64]*Expense
	splits        map[int64][]*Split
	nextExpenseID int64
	nextSplitID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		expenses:      make(map[int64]*Expense),
		splits:        make(map[int64][]*Split),
		nextExpenseID: 1,
		nextSplitID:   1,
	}
}

func (f *fakeStore) CreateExpense(ctx context.Context, expense *Expense) (*Expense, error) {
	expense.ID = f.nextExpenseID
	f.nextExpenseID++
	f.expenses[expense.ID] = expense
	return expense, nil
}

func (f *fakeStore) CreateSplit(ctx context.Context, s *Split) (*Split, error) {
	s.ID = f.nextSplitID
	f.nextSplitID++
	f.splits[s.ExpenseID] = append(f.splits[s.ExpenseID], s)
	return s, nil
}

func (f *fakeStore) GetExpenseByID(ctx context.Context, id int64) (*Expense, error) {
	return f.expenses[id], nil
}

func (f *fakeStore) GetSplitsByExpenseID(ctx context.Context, expenseID int64) ([]*Split, error) {
	return f.splits[expenseID], nil
}

func (f *fakeStore) ListExpensesByGroupID(ctx context.Context, groupID int64, limit, offset int) ([]*Expense, int, error) {
	var all []*Expense
	for id := f.nextExpenseID - 1; id >= 1; id-- {
		if e, ok := f.expenses[id]; ok && e.GroupID == groupID {
			all = append(all, e)
		}
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (f *fakeStore) DeleteExpense(ctx context.Context, id int64) error {
	if _, ok := f.expenses[id]; !ok {
		return errors.New("expense not found")
	}
	delete(f.expenses, id)
	delete(f.splits, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *ledger.MemStore) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := newFakeStore()
	ledgerStore := ledger.NewMemStore()
	ledgerSvc := ledger.NewService(ledgerStore, log)
	return NewService(store, ledgerSvc, split.NewFactory(), log), store, ledgerStore
}

func fptr(v float64) *float64 { return &v }
func iptr(v int64) *int64     { return &v }

func equalRequest(groupID int64, amount float64) *CreateExpenseRequest {
	return &CreateExpenseRequest{
		GroupID:     groupID,
		Title:       "Dinner",
		Amount:      amount,
		SplitMethod: "equal",
		Participants: []*ParticipantRequest{
			{UserID: 1},
			{UserID: 2},
		},
	}
}

func openBalances(t *testing.T, store *ledger.MemStore, groupID int64) []*ledger.Balance {
	t.Helper()
	balances, err := store.ListOpenBalancesByGroup(context.Background(), groupID)
	if err != nil {
		t.Fatalf("ListOpenBalancesByGroup() error = %v", err)
	}
	return balances
}

func TestCreateExpenseAppliesShares(t *testing.T) {
	svc, store, ledgerStore := newTestService(t)
	ctx := context.Background()

	result, err := svc.CreateExpense(ctx, 1, equalRequest(10, 45.00))
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	if result.Expense.ID == 0 {
		t.Error("expense was not assigned an ID")
	}
	if result.Expense.Currency != "USD" {
		t.Errorf("Currency = %q, want default USD", result.Expense.Currency)
	}
	if result.Expense.Category != CategoryOther {
		t.Errorf("Category = %q, want default Other", result.Expense.Category)
	}

	if len(result.Splits) != 2 {
		t.Fatalf("got %d splits, want 2", len(result.Splits))
	}
	for _, s := range result.Splits {
		if s.Amount != 22.50 {
			t.Errorf("split for user %d = %v, want 22.50", s.UserID, s.Amount)
		}
	}
	if len(store.splits[result.Expense.ID]) != 2 {
		t.Error("splits were not persisted")
	}

	// The payer's own share never reaches the ledger.
	balances := openBalances(t, ledgerStore, 10)
	if len(balances) != 1 {
		t.Fatalf("got %d open balances, want 1", len(balances))
	}
	b := balances[0]
	if b.DebtorID != 2 || b.CreditorID != 1 || b.Amount != 22.50 {
		t.Errorf("balance = %d->%d %v, want 2->1 22.50", b.DebtorID, b.CreditorID, b.Amount)
	}
	if len(b.ExpenseIDs) != 1 || b.ExpenseIDs[0] != result.Expense.ID {
		t.Errorf("ExpenseIDs = %v, want [%d]", b.ExpenseIDs, result.Expense.ID)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateExpenseRequest)
		wantErr error
	}{
		{
			name:    "missing title",
			mutate:  func(r *CreateExpenseRequest) { r.Title = "" },
			wantErr: ErrMissingTitle,
		},
		{
			name:    "unknown category",
			mutate:  func(r *CreateExpenseRequest) { r.Category = "Gambling" },
			wantErr: ErrUnknownCategory,
		},
		{
			name:    "unknown split method",
			mutate:  func(r *CreateExpenseRequest) { r.SplitMethod = "vibes" },
			wantErr: split.ErrValidation,
		},
		{
			name:    "no participants",
			mutate:  func(r *CreateExpenseRequest) { r.Participants = nil },
			wantErr: split.ErrNoParticipants,
		},
		{
			name: "percentages off",
			mutate: func(r *CreateExpenseRequest) {
				r.SplitMethod = "percentage"
				r.Participants[0].Percentage = fptr(60)
				r.Participants[1].Percentage = fptr(50)
			},
			wantErr: split.ErrPercentageSum,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, ledgerStore := newTestService(t)

			req := equalRequest(10, 45.00)
			tt.mutate(req)

			_, err := svc.CreateExpense(context.Background(), 1, req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateExpense() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, split.ErrValidation) {
				t.Errorf("error %v is not a validation error", err)
			}
			if len(store.expenses) != 0 {
				t.Error("expense was persisted despite validation failure")
			}
			if got := openBalances(t, ledgerStore, 10); len(got) != 0 {
				t.Error("ledger was touched despite validation failure")
			}
		})
	}
}

func TestCreateExpenseItemizedDerivesParticipants(t *testing.T) {
	svc, _, ledgerStore := newTestService(t)
	ctx := context.Background()

	req := &CreateExpenseRequest{
		GroupID:     10,
		Title:       "Lunch",
		Amount:      55.00,
		SplitMethod: "itemized",
		Items: []*ItemRequest{
			{Name: "Steak", Price: 30.00, AssignedTo: iptr(2)},
			{Name: "Pasta", Price: 20.00, AssignedTo: iptr(3)},
		},
		Tax: &ExtraRequest{Amount: 5.00, SplitMethod: "proportional"},
	}

	result, err := svc.CreateExpense(ctx, 1, req)
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	if len(result.Splits) != 2 {
		t.Fatalf("got %d splits, want 2", len(result.Splits))
	}

	want := map[int64]float64{2: 33.00, 3: 22.00}
	balances := openBalances(t, ledgerStore, 10)
	if len(balances) != 2 {
		t.Fatalf("got %d open balances, want 2", len(balances))
	}
	for _, b := range balances {
		if b.CreditorID != 1 {
			t.Errorf("creditor = %d, want payer 1", b.CreditorID)
		}
		if b.Amount != want[b.DebtorID] {
			t.Errorf("balance for debtor %d = %v, want %v", b.DebtorID, b.Amount, want[b.DebtorID])
		}
	}
}

func TestPreviewPersistsNothing(t *testing.T) {
	svc, store, ledgerStore := newTestService(t)

	shares, err := svc.PreviewSplits(context.Background(), &PreviewSplitRequest{
		Amount:      45.00,
		SplitMethod: "equal",
		Participants: []*ParticipantRequest{
			{UserID: 1},
			{UserID: 2},
		},
	})
	if err != nil {
		t.Fatalf("PreviewSplits() error = %v", err)
	}

	if len(shares) != 2 {
		t.Fatalf("got %d shares, want 2", len(shares))
	}
	var sum float64
	for _, share := range shares {
		sum += share.Amount
	}
	if math.Abs(sum-45.00) > split.Tolerance {
		t.Errorf("shares sum to %v, want within tolerance of 45.00", sum)
	}

	if len(store.expenses) != 0 {
		t.Error("preview persisted an expense")
	}
	if got := openBalances(t, ledgerStore, 10); len(got) != 0 {
		t.Error("preview touched the ledger")
	}
}

func TestGetExpense(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.GetExpense(ctx, 99); !errors.Is(err, ErrExpenseNotFound) {
		t.Fatalf("GetExpense(99) error = %v, want ErrExpenseNotFound", err)
	}

	created, err := svc.CreateExpense(ctx, 1, equalRequest(10, 45.00))
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	got, err := svc.GetExpense(ctx, created.Expense.ID)
	if err != nil {
		t.Fatalf("GetExpense() error = %v", err)
	}
	if got.Expense.Title != "Dinner" || len(got.Splits) != 2 {
		t.Errorf("got %q with %d splits, want Dinner with 2", got.Expense.Title, len(got.Splits))
	}
}

func TestDeleteExpenseReversesLedger(t *testing.T) {
	svc, store, ledgerStore := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateExpense(ctx, 1, equalRequest(10, 45.00))
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	if err := svc.DeleteExpense(ctx, created.Expense.ID, 2); !errors.Is(err, ErrNotPayer) {
		t.Fatalf("DeleteExpense() by non-payer error = %v, want ErrNotPayer", err)
	}
	if err := svc.DeleteExpense(ctx, 99, 1); !errors.Is(err, ErrExpenseNotFound) {
		t.Fatalf("DeleteExpense(99) error = %v, want ErrExpenseNotFound", err)
	}

	if err := svc.DeleteExpense(ctx, created.Expense.ID, 1); err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}

	if len(store.expenses) != 0 {
		t.Error("expense survived deletion")
	}
	if got := openBalances(t, ledgerStore, 10); len(got) != 0 {
		t.Errorf("got %d open balances after reversal, want 0", len(got))
	}
}

func TestDeleteExpenseKeepsOtherContributions(t *testing.T) {
	svc, _, ledgerStore := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateExpense(ctx, 1, equalRequest(10, 45.00))
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	if _, err := svc.CreateExpense(ctx, 1, equalRequest(10, 20.00)); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	// 22.50 + 10.00 merged into one open balance; removing the first
	// expense leaves the second's contribution standing.
	if err := svc.DeleteExpense(ctx, first.Expense.ID, 1); err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}

	balances := openBalances(t, ledgerStore, 10)
	if len(balances) != 1 {
		t.Fatalf("got %d open balances, want 1", len(balances))
	}
	if balances[0].Amount != 10.00 {
		t.Errorf("remaining balance = %v, want 10.00", balances[0].Amount)
	}
	if len(balances[0].ExpenseIDs) != 1 {
		t.Errorf("ExpenseIDs = %v, want one remaining contribution", balances[0].ExpenseIDs)
	}
}

func TestListGroupExpenses(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateExpense(ctx, 1, equalRequest(10, 45.00)); err != nil {
			t.Fatalf("CreateExpense() error = %v", err)
		}
	}
	if _, err := svc.CreateExpense(ctx, 1, equalRequest(99, 45.00)); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	expenses, total, err := svc.ListGroupExpenses(ctx, 10, 1, 2)
	if err != nil {
		t.Fatalf("ListGroupExpenses() error = %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(expenses) != 2 {
		t.Errorf("got %d expenses on page 1, want 2", len(expenses))
	}

	expenses, _, err = svc.ListGroupExpenses(ctx, 10, 2, 2)
	if err != nil {
		t.Fatalf("ListGroupExpenses() error = %v", err)
	}
	if len(expenses) != 1 {
		t.Errorf("got %d expenses on page 2, want 1", len(expenses))
	}
}
