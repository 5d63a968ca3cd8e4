package ledger

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func newTestService() (*Service, *MemStore) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	store := NewMemStore()
	return NewService(store, log), store
}

func mustOpenBalance(t *testing.T, store *MemStore, debtorID, creditorID, groupID int64) *Balance {
	t.Helper()
	balance, err := store.FindOpenBalance(context.Background(), debtorID, creditorID, groupID)
	if err != nil {
		t.Fatalf("FindOpenBalance() unexpected error: %v", err)
	}
	if balance == nil {
		t.Fatalf("no open balance for %d->%d in group %d", debtorID, creditorID, groupID)
	}
	return balance
}

func TestApplyShareCreatesPendingBalance(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	// The 45.00 equal split between two people: B owes A 22.50
	if err := svc.ApplyShare(ctx, 2, 1, 10, 22.50, "USD", 100); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}

	balance := mustOpenBalance(t, store, 2, 1, 10)
	if balance.Amount != 22.50 {
		t.Errorf("amount = %v, want 22.50", balance.Amount)
	}
	if balance.Status != BalanceStatusPending {
		t.Errorf("status = %s, want pending", balance.Status)
	}
	if len(balance.ExpenseIDs) != 1 || balance.ExpenseIDs[0] != 100 {
		t.Errorf("contributions = %v, want [100]", balance.ExpenseIDs)
	}
}

func TestApplyShareMergesIntoExistingOpenBalance(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	if err := svc.ApplyShare(ctx, 2, 1, 10, 22.50, "USD", 100); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}
	if err := svc.ApplyShare(ctx, 2, 1, 10, 10.00, "USD", 101); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}

	balances, err := store.ListOpenBalancesByGroup(ctx, 10)
	if err != nil {
		t.Fatalf("ListOpenBalancesByGroup() unexpected error: %v", err)
	}
	if len(balances) != 1 {
		t.Fatalf("open balances = %d, want exactly 1 for the pair", len(balances))
	}
	if balances[0].Amount != 32.50 {
		t.Errorf("amount = %v, want 32.50", balances[0].Amount)
	}
	if len(balances[0].ExpenseIDs) != 2 {
		t.Errorf("contributions = %v, want both expenses", balances[0].ExpenseIDs)
	}
}

func TestApplyShareSkipsSelfAndZeroShares(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	// Payer's own share: debtor == creditor
	if err := svc.ApplyShare(ctx, 1, 1, 10, 22.50, "USD", 100); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}
	// Itemized participant who owes nothing
	if err := svc.ApplyShare(ctx, 3, 1, 10, 0, "USD", 100); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}

	balances, err := store.ListOpenBalancesByGroup(ctx, 10)
	if err != nil {
		t.Fatalf("ListOpenBalancesByGroup() unexpected error: %v", err)
	}
	if len(balances) != 0 {
		t.Errorf("open balances = %d, want none", len(balances))
	}
}

func TestApplyShareKeepsDirectionsSeparate(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	if err := svc.ApplyShare(ctx, 2, 1, 10, 20.00, "USD", 100); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}
	if err := svc.ApplyShare(ctx, 1, 2, 10, 5.00, "USD", 101); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}

	// Opposite directions never net at write time
	if b := mustOpenBalance(t, store, 2, 1, 10); b.Amount != 20.00 {
		t.Errorf("2->1 amount = %v, want 20.00", b.Amount)
	}
	if b := mustOpenBalance(t, store, 1, 2, 10); b.Amount != 5.00 {
		t.Errorf("1->2 amount = %v, want 5.00", b.Amount)
	}
}

func TestRecordPaymentFullSettlement(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	if err := svc.ApplyShare(ctx, 2, 1, 10, 22.50, "USD", 100); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}

	payment, err := svc.RecordPayment(ctx, 2, 1, 10, 22.50, PaymentMethodCash, "")
	if err != nil {
		t.Fatalf("RecordPayment() unexpected error: %v", err)
	}
	if payment.Status != "completed" {
		t.Errorf("payment status = %s, want completed", payment.Status)
	}
	if payment.TransactionID == "" {
		t.Error("payment missing transaction id")
	}

	// Balance is driven to paid with exactly zero, never deleted
	if open, _ := store.FindOpenBalance(ctx, 2, 1, 10); open != nil {
		t.Errorf("balance still open after full settlement: %+v", open)
	}
}

func TestRecordPaymentOverpaymentAbsorbed(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	if err := svc.ApplyShare(ctx, 2, 1, 10, 22.50, "USD", 100); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}
	balanceID := mustOpenBalance(t, store, 2, 1, 10).ID

	if _, err := svc.RecordPayment(ctx, 2, 1, 10, 30.00, PaymentMethodVenmo, ""); err != nil {
		t.Fatalf("RecordPayment() unexpected error: %v", err)
	}

	store.mu.Lock()
	stored := store.balances[balanceID]
	store.mu.Unlock()
	if stored.Status != BalanceStatusPaid {
		t.Errorf("status = %s, want paid", stored.Status)
	}
	if stored.Amount != 0 {
		t.Errorf("amount = %v, want 0 (overpayment absorbed, not negative)", stored.Amount)
	}
}

func TestRecordPaymentPartialSettlement(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	if err := svc.ApplyShare(ctx, 2, 1, 10, 22.50, "USD", 100); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}

	if _, err := svc.RecordPayment(ctx, 2, 1, 10, 10.00, PaymentMethodBank, "first half"); err != nil {
		t.Fatalf("RecordPayment() unexpected error: %v", err)
	}

	balance := mustOpenBalance(t, store, 2, 1, 10)
	if balance.Status != BalanceStatusPartial {
		t.Errorf("status = %s, want partial", balance.Status)
	}
	if balance.Amount != 12.50 {
		t.Errorf("amount = %v, want 12.50", balance.Amount)
	}
}

func TestRecordPaymentWithoutOpenBalance(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// A gift: no debt exists, the payment is still evidence
	payment, err := svc.RecordPayment(ctx, 2, 1, 10, 15.00, PaymentMethodManual, "birthday")
	if err != nil {
		t.Fatalf("RecordPayment() unexpected error: %v", err)
	}
	if payment.ID == 0 {
		t.Error("payment was not persisted")
	}

	history, err := svc.ListPayments(ctx, 10)
	if err != nil {
		t.Fatalf("ListPayments() unexpected error: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("payment history length = %d, want 1", len(history))
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name    string
		debtor  int64
		amount  float64
		method  PaymentMethod
		wantErr error
	}{
		{"zero amount", 2, 0, PaymentMethodCash, ErrNonPositivePayment},
		{"negative amount", 2, -5, PaymentMethodCash, ErrNonPositivePayment},
		{"self payment", 1, 10, PaymentMethodCash, ErrSelfPayment},
		{"unknown method", 2, 10, "iou", ErrUnknownMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordPayment(ctx, tt.debtor, 1, 10, tt.amount, tt.method, "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("RecordPayment() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("error %v should wrap ErrValidation", err)
			}
		})
	}

	// Nothing may be written on validation failure
	if history, _ := svc.ListPayments(ctx, 10); len(history) != 0 {
		t.Errorf("payment history length = %d, want 0 after rejected payments", len(history))
	}
}

func TestReverseExpense(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	if err := svc.ApplyShare(ctx, 2, 1, 10, 22.50, "USD", 100); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}
	if err := svc.ApplyShare(ctx, 2, 1, 10, 10.00, "USD", 101); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}

	// Removing the first expense leaves the second's debt in place
	err := svc.ReverseExpense(ctx, 100, []Contribution{
		{DebtorID: 2, CreditorID: 1, GroupID: 10, Amount: 22.50},
	})
	if err != nil {
		t.Fatalf("ReverseExpense() unexpected error: %v", err)
	}

	balance := mustOpenBalance(t, store, 2, 1, 10)
	if balance.Amount != 10.00 {
		t.Errorf("amount = %v, want 10.00", balance.Amount)
	}
	if len(balance.ExpenseIDs) != 1 || balance.ExpenseIDs[0] != 101 {
		t.Errorf("contributions = %v, want [101]", balance.ExpenseIDs)
	}

	// Removing the last expense deletes the emptied balance
	err = svc.ReverseExpense(ctx, 101, []Contribution{
		{DebtorID: 2, CreditorID: 1, GroupID: 10, Amount: 10.00},
	})
	if err != nil {
		t.Fatalf("ReverseExpense() unexpected error: %v", err)
	}
	if open, _ := store.FindOpenBalance(ctx, 2, 1, 10); open != nil {
		t.Errorf("balance should be deleted, still have %+v", open)
	}
}

func TestNetPosition(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.ApplyShare(ctx, 2, 1, 10, 30.00, "USD", 100); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}
	if err := svc.ApplyShare(ctx, 1, 3, 10, 12.50, "USD", 101); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}

	net, err := svc.NetPosition(ctx, 1, 10)
	if err != nil {
		t.Fatalf("NetPosition() unexpected error: %v", err)
	}
	if net != 17.50 {
		t.Errorf("net position = %v, want 17.50 (owed 30.00, owes 12.50)", net)
	}
}

func TestOpenBalancesForPartitions(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.ApplyShare(ctx, 1, 2, 10, 8.00, "USD", 100); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}
	if err := svc.ApplyShare(ctx, 3, 1, 20, 25.00, "USD", 101); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}
	if err := svc.ApplyShare(ctx, 4, 5, 10, 99.00, "USD", 102); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}

	sheet, err := svc.OpenBalancesFor(ctx, 1)
	if err != nil {
		t.Fatalf("OpenBalancesFor() unexpected error: %v", err)
	}
	if len(sheet.YouOwe) != 1 || sheet.YouOwe[0].CreditorID != 2 {
		t.Errorf("YouOwe = %+v, want the 8.00 debt to user 2", sheet.YouOwe)
	}
	if len(sheet.YouAreOwed) != 1 || sheet.YouAreOwed[0].DebtorID != 3 {
		t.Errorf("YouAreOwed = %+v, want the 25.00 credit from user 3", sheet.YouAreOwed)
	}
	if sheet.TotalOwed != 8.00 || sheet.TotalDue != 25.00 {
		t.Errorf("totals = %v/%v, want 8.00/25.00", sheet.TotalOwed, sheet.TotalDue)
	}
}

func TestSimplifySingleBalance(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.ApplyShare(ctx, 1, 2, 10, 10.00, "USD", 100); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}

	transfers, err := svc.Simplify(ctx, 10)
	if err != nil {
		t.Fatalf("Simplify() unexpected error: %v", err)
	}
	want := []NetTransfer{{FromUserID: 1, ToUserID: 2, Amount: 10.00}}
	if len(transfers) != 1 || transfers[0] != want[0] {
		t.Errorf("Simplify() = %+v, want %+v", transfers, want)
	}

	// Idempotent over an unchanged snapshot
	again, err := svc.Simplify(ctx, 10)
	if err != nil {
		t.Fatalf("Simplify() unexpected error: %v", err)
	}
	if len(again) != 1 || again[0] != want[0] {
		t.Errorf("repeated Simplify() = %+v, want %+v", again, want)
	}
}

func TestSimplifyMergesSameDirectionOnly(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	// Two open balances in the same direction would violate the merge
	// invariant, so build a same-direction duplicate in a second group
	// scenario: one pair with debt in both directions plus a third user.
	if err := svc.ApplyShare(ctx, 1, 2, 10, 10.00, "USD", 100); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}
	if err := svc.ApplyShare(ctx, 2, 1, 10, 4.00, "USD", 101); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}
	if err := svc.ApplyShare(ctx, 1, 2, 10, 2.50, "USD", 102); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}
	if err := svc.ApplyShare(ctx, 3, 2, 10, 7.00, "USD", 103); err != nil {
		t.Fatalf("ApplyShare() unexpected error: %v", err)
	}

	transfers, err := svc.Simplify(ctx, 10)
	if err != nil {
		t.Fatalf("Simplify() unexpected error: %v", err)
	}

	// 1->2 accumulated in the ledger; 2->1 stays its own transfer:
	// opposite directions are not netted against each other.
	want := []NetTransfer{
		{FromUserID: 1, ToUserID: 2, Amount: 12.50},
		{FromUserID: 2, ToUserID: 1, Amount: 4.00},
		{FromUserID: 3, ToUserID: 2, Amount: 7.00},
	}
	if len(transfers) != len(want) {
		t.Fatalf("Simplify() = %+v, want %+v", transfers, want)
	}
	for i := range want {
		if transfers[i] != want[i] {
			t.Errorf("transfer %d = %+v, want %+v", i, transfers[i], want[i])
		}
	}

	// Read-only: the balances themselves are untouched
	if b := mustOpenBalance(t, store, 1, 2, 10); b.Amount != 12.50 {
		t.Errorf("1->2 balance mutated by Simplify: %v", b.Amount)
	}
}

func TestPaymentHistoryNewestFirst(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.RecordPayment(ctx, 2, 1, 10, 5.00, PaymentMethodCash, "first"); err != nil {
		t.Fatalf("RecordPayment() unexpected error: %v", err)
	}
	if _, err := svc.RecordPayment(ctx, 2, 1, 10, 6.00, PaymentMethodCash, "second"); err != nil {
		t.Fatalf("RecordPayment() unexpected error: %v", err)
	}

	history, err := svc.ListPayments(ctx, 10)
	if err != nil {
		t.Fatalf("ListPayments() unexpected error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Description != "second" || history[1].Description != "first" {
		t.Errorf("history order = [%s, %s], want newest first", history[0].Description, history[1].Description)
	}
}
