package ledger

import (
	"context"
	"errors"
)

// ErrConcurrentUpdate is returned when the row lock for a balance key
// cannot be acquired. The ledger performs no retry; callers retry at
// their discretion.
var ErrConcurrentUpdate = errors.New("balance is locked by a concurrent operation")

// Store is the persistence collaborator for the ledger. Implementations
// must keep balance rows queryable by the (debtor, creditor, group) key
// and guarantee that read-modify-write sequences executed inside
// Atomically are isolated from concurrent writers touching the same key.
type Store interface {
	// Atomically runs fn inside a single transaction boundary. The Store
	// passed to fn routes every operation through that transaction.
	Atomically(ctx context.Context, fn func(Store) error) error

	// FindOpenBalance returns the unique open balance for the triple, or
	// nil when none exists. Inside Atomically the row is locked for the
	// duration of the transaction; an unavailable lock surfaces as
	// ErrConcurrentUpdate.
	FindOpenBalance(ctx context.Context, debtorID, creditorID, groupID int64) (*Balance, error)

	CreateBalance(ctx context.Context, balance *Balance) (*Balance, error)
	UpdateBalance(ctx context.Context, balance *Balance) error
	DeleteBalance(ctx context.Context, balanceID int64) error

	// AppendContribution and RemoveContribution maintain the list of
	// expenses that contributed debt to a balance.
	AppendContribution(ctx context.Context, balanceID, expenseID int64) error
	RemoveContribution(ctx context.Context, balanceID, expenseID int64) error

	// ListOpenBalancesByGroup returns open balances in creation order,
	// which is what gives the simplifier its stable output ordering.
	ListOpenBalancesByGroup(ctx context.Context, groupID int64) ([]*Balance, error)
	ListOpenBalancesByUser(ctx context.Context, userID int64) ([]*Balance, error)

	InsertPayment(ctx context.Context, payment *Payment) (*Payment, error)
	ListPaymentsByGroup(ctx context.Context, groupID int64) ([]*Payment, error)
}
