package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrValidation is the base for every input-validation failure in this
// package. Callers branch with errors.Is; nothing is written before
// validation passes.
var ErrValidation = errors.New("invalid ledger input")

var (
	ErrNonPositivePayment = fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	ErrUnknownMethod      = fmt.Errorf("%w: unknown payment method", ErrValidation)
	ErrSelfPayment        = fmt.Errorf("%w: cannot record a payment to yourself", ErrValidation)
)

// Service owns the mutation path for balance records and implements the
// payment recorder and the debt simplifier on top of the same store.
type Service struct {
	store Store
	log   *logrus.Logger
}

// NewService creates a new ledger service
func NewService(store Store, log *logrus.Logger) *Service {
	return &Service{store: store, log: log}
}

// ApplyShare merges one computed share into the ledger as debt from
// debtor to creditor. The payer's own share is a no-op (no debt to
// self), as are zero shares. New debt between a pair that already has an
// open balance accumulates into it rather than creating a duplicate.
func (s *Service) ApplyShare(ctx context.Context, debtorID, creditorID, groupID int64, amount float64, currency string, expenseID int64) error {
	if debtorID == creditorID {
		return nil
	}
	if amount <= 0 {
		return nil
	}

	err := s.store.Atomically(ctx, func(store Store) error {
		balance, err := store.FindOpenBalance(ctx, debtorID, creditorID, groupID)
		if err != nil {
			return err
		}

		if balance == nil {
			balance, err = store.CreateBalance(ctx, &Balance{
				DebtorID:   debtorID,
				CreditorID: creditorID,
				GroupID:    groupID,
				Amount:     roundToTwoDecimals(amount),
				Currency:   currency,
				Status:     BalanceStatusPending,
			})
			if err != nil {
				return err
			}
		} else {
			balance.Amount = roundToTwoDecimals(balance.Amount + amount)
			if err := store.UpdateBalance(ctx, balance); err != nil {
				return err
			}
		}

		return store.AppendContribution(ctx, balance.ID, expenseID)
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"debtor":   debtorID,
		"creditor": creditorID,
		"group":    groupID,
		"amount":   amount,
		"expense":  expenseID,
	}).Info("Share applied to ledger")
	return nil
}

// ReverseExpense backs a removed expense's debt out of the ledger:
// each originally-applied share is subtracted from its open balance and
// the expense is dropped from the contribution list. A balance left with
// no contributions and no amount is deleted.
func (s *Service) ReverseExpense(ctx context.Context, expenseID int64, contributions []Contribution) error {
	err := s.store.Atomically(ctx, func(store Store) error {
		for _, c := range contributions {
			if c.DebtorID == c.CreditorID || c.Amount <= 0 {
				continue
			}

			balance, err := store.FindOpenBalance(ctx, c.DebtorID, c.CreditorID, c.GroupID)
			if err != nil {
				return err
			}
			if balance == nil {
				// Already settled; the payment path absorbed this debt.
				continue
			}

			balance.Amount = roundToTwoDecimals(balance.Amount - c.Amount)
			if balance.Amount < 0 {
				balance.Amount = 0
			}

			if err := store.RemoveContribution(ctx, balance.ID, expenseID); err != nil {
				return err
			}

			remaining := 0
			for _, id := range balance.ExpenseIDs {
				if id != expenseID {
					remaining++
				}
			}

			if remaining == 0 && balance.Amount == 0 {
				if err := store.DeleteBalance(ctx, balance.ID); err != nil {
					return err
				}
				continue
			}

			if err := store.UpdateBalance(ctx, balance); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithField("expense", expenseID).Info("Expense contributions reversed")
	return nil
}

// RecordPayment records a settlement transfer and applies it against the
// open balance for the pair, if one exists. The payment row is evidence
// that money moved and is written even when there is nothing to settle.
// Overpayment is absorbed: the balance is clamped to zero, never carried
// negative or refunded.
func (s *Service) RecordPayment(ctx context.Context, debtorID, creditorID, groupID int64, amount float64, method PaymentMethod, description string) (*Payment, error) {
	if amount <= 0 {
		return nil, ErrNonPositivePayment
	}
	if debtorID == creditorID {
		return nil, ErrSelfPayment
	}
	if method == "" {
		method = PaymentMethodManual
	}
	if !ValidPaymentMethod(method) {
		return nil, ErrUnknownMethod
	}

	var payment *Payment
	err := s.store.Atomically(ctx, func(store Store) error {
		var err error
		payment, err = store.InsertPayment(ctx, &Payment{
			FromUserID:    debtorID,
			ToUserID:      creditorID,
			GroupID:       groupID,
			Amount:        roundToTwoDecimals(amount),
			Currency:      "USD",
			Method:        method,
			Status:        "completed",
			Description:   description,
			TransactionID: uuid.NewString(),
		})
		if err != nil {
			return err
		}

		balance, err := store.FindOpenBalance(ctx, debtorID, creditorID, groupID)
		if err != nil {
			return err
		}
		if balance == nil {
			// Gift or out-of-band settlement; nothing to reduce.
			return nil
		}

		balance.Amount = roundToTwoDecimals(balance.Amount - amount)
		if balance.Amount <= 0 {
			balance.Amount = 0
			balance.Status = BalanceStatusPaid
		} else {
			balance.Status = BalanceStatusPartial
		}

		return store.UpdateBalance(ctx, balance)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"from":   debtorID,
		"to":     creditorID,
		"group":  groupID,
		"amount": amount,
		"method": method,
	}).Info("Payment recorded")
	return payment, nil
}

// NetPosition is the user's aggregate standing in a group over open
// balances: positive means the group owes them, negative means they owe.
func (s *Service) NetPosition(ctx context.Context, userID, groupID int64) (float64, error) {
	balances, err := s.store.ListOpenBalancesByGroup(ctx, groupID)
	if err != nil {
		return 0, err
	}

	var net float64
	for _, b := range balances {
		if b.CreditorID == userID {
			net += b.Amount
		}
		if b.DebtorID == userID {
			net -= b.Amount
		}
	}
	return roundToTwoDecimals(net), nil
}

// BalanceSheet partitions a user's open balances into debts and credits
type BalanceSheet struct {
	YouOwe     []*Balance `json:"you_owe"`
	YouAreOwed []*Balance `json:"you_are_owed"`
	TotalOwed  float64    `json:"total_owed"` // sum of YouOwe
	TotalDue   float64    `json:"total_due"`  // sum of YouAreOwed
}

// OpenBalancesFor returns the user's open balances across all groups,
// partitioned into what they owe and what they are owed.
func (s *Service) OpenBalancesFor(ctx context.Context, userID int64) (*BalanceSheet, error) {
	balances, err := s.store.ListOpenBalancesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	sheet := &BalanceSheet{
		YouOwe:     []*Balance{},
		YouAreOwed: []*Balance{},
	}
	for _, b := range balances {
		if b.DebtorID == userID {
			sheet.YouOwe = append(sheet.YouOwe, b)
			sheet.TotalOwed += b.Amount
		} else if b.CreditorID == userID {
			sheet.YouAreOwed = append(sheet.YouAreOwed, b)
			sheet.TotalDue += b.Amount
		}
	}
	sheet.TotalOwed = roundToTwoDecimals(sheet.TotalOwed)
	sheet.TotalDue = roundToTwoDecimals(sheet.TotalDue)
	return sheet, nil
}

// Simplify collapses a group's open balances into net transfers by
// merging edges with the same (debtor, creditor) direction. Opposite
// directions between the same pair are deliberately kept apart, and no
// multi-hop cycle cancellation is attempted: the ledger stays an
// accumulate-only log and this derived view merges duplicates only.
// Output order is first occurrence of each direction; recomputing over
// an unchanged snapshot yields identical output.
func (s *Service) Simplify(ctx context.Context, groupID int64) ([]NetTransfer, error) {
	balances, err := s.store.ListOpenBalancesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	type edge struct {
		from, to int64
	}
	var order []edge
	weights := make(map[edge]float64)

	for _, b := range balances {
		e := edge{from: b.DebtorID, to: b.CreditorID}
		if _, seen := weights[e]; !seen {
			order = append(order, e)
		}
		weights[e] += b.Amount
	}

	transfers := make([]NetTransfer, len(order))
	for i, e := range order {
		transfers[i] = NetTransfer{
			FromUserID: e.from,
			ToUserID:   e.to,
			Amount:     roundToTwoDecimals(weights[e]),
		}
	}
	return transfers, nil
}

// ListPayments returns a group's payment history, newest first
func (s *Service) ListPayments(ctx context.Context, groupID int64) ([]*Payment, error) {
	return s.store.ListPaymentsByGroup(ctx, groupID)
}

// roundToTwoDecimals rounds a float to 2 decimal places
func roundToTwoDecimals(value float64) float64 {
	return math.Round(value*100) / 100
}
