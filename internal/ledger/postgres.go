package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// pqLockNotAvailable is the Postgres error code raised by FOR UPDATE
// NOWAIT when another transaction holds the row lock.
const pqLockNotAvailable = "55P03"

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// PostgresStore implements Store on top of lib/pq. The one-open-balance
// invariant is enforced twice: row locks taken inside Atomically, and a
// partial unique index on (debtor_id, creditor_id, group_id) as a
// backstop against writers that bypass the lock.
type PostgresStore struct {
	db *sql.DB // nil when this store is bound to a transaction
	q  querier
}

// NewPostgresStore creates a new Postgres-backed ledger store
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, q: db}
}

// Atomically runs fn inside a single transaction. Nested calls reuse the
// surrounding transaction.
func (s *PostgresStore) Atomically(ctx context.Context, fn func(Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&PostgresStore{q: tx}); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// FindOpenBalance retrieves the unique open balance for the triple.
// Inside a transaction the row is locked with NOWAIT so a concurrent
// writer on the same key fails fast instead of queueing.
func (s *PostgresStore) FindOpenBalance(ctx context.Context, debtorID, creditorID, groupID int64) (*Balance, error) {
	query := `
		SELECT id, debtor_id, creditor_id, group_id, amount, currency, status, created_at, updated_at
		FROM balances
		WHERE debtor_id = $1 AND creditor_id = $2 AND group_id = $3
		  AND status IN ('pending', 'partial')
	`
	if s.db == nil {
		query += ` FOR UPDATE NOWAIT`
	}

	balance := &Balance{}
	err := s.q.QueryRowContext(ctx, query, debtorID, creditorID, groupID).Scan(
		&balance.ID,
		&balance.DebtorID,
		&balance.CreditorID,
		&balance.GroupID,
		&balance.Amount,
		&balance.Currency,
		&balance.Status,
		&balance.CreatedAt,
		&balance.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqLockNotAvailable {
			return nil, ErrConcurrentUpdate
		}
		return nil, fmt.Errorf("failed to find open balance: %w", err)
	}

	if balance.ExpenseIDs, err = s.contributions(ctx, balance.ID); err != nil {
		return nil, err
	}
	return balance, nil
}

// CreateBalance inserts a new balance record
func (s *PostgresStore) CreateBalance(ctx context.Context, balance *Balance) (*Balance, error) {
	query := `
		INSERT INTO balances (debtor_id, creditor_id, group_id, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := s.q.QueryRowContext(ctx, query,
		balance.DebtorID,
		balance.CreditorID,
		balance.GroupID,
		balance.Amount,
		balance.Currency,
		balance.Status,
	).Scan(&balance.ID, &balance.CreatedAt, &balance.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create balance: %w", err)
	}

	return balance, nil
}

// UpdateBalance persists a balance's amount and status
func (s *PostgresStore) UpdateBalance(ctx context.Context, balance *Balance) error {
	query := `
		UPDATE balances
		SET amount = $2, status = $3, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := s.q.ExecContext(ctx, query, balance.ID, balance.Amount, balance.Status); err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return nil
}

// DeleteBalance removes a balance and, via cascade, its contribution list
func (s *PostgresStore) DeleteBalance(ctx context.Context, balanceID int64) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM balances WHERE id = $1`, balanceID); err != nil {
		return fmt.Errorf("failed to delete balance: %w", err)
	}
	return nil
}

// AppendContribution records that an expense contributed debt to a balance
func (s *PostgresStore) AppendContribution(ctx context.Context, balanceID, expenseID int64) error {
	query := `
		INSERT INTO balance_expenses (balance_id, expense_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	if _, err := s.q.ExecContext(ctx, query, balanceID, expenseID); err != nil {
		return fmt.Errorf("failed to append contribution: %w", err)
	}
	return nil
}

// RemoveContribution drops an expense from a balance's contribution list
func (s *PostgresStore) RemoveContribution(ctx context.Context, balanceID, expenseID int64) error {
	query := `DELETE FROM balance_expenses WHERE balance_id = $1 AND expense_id = $2`

	if _, err := s.q.ExecContext(ctx, query, balanceID, expenseID); err != nil {
		return fmt.Errorf("failed to remove contribution: %w", err)
	}
	return nil
}

// ListOpenBalancesByGroup retrieves a group's open balances in creation order
func (s *PostgresStore) ListOpenBalancesByGroup(ctx context.Context, groupID int64) ([]*Balance, error) {
	query := `
		SELECT b.id, b.debtor_id, b.creditor_id, b.group_id, b.amount, b.currency, b.status,
		       b.created_at, b.updated_at,
		       COALESCE(ARRAY_AGG(be.expense_id ORDER BY be.expense_id)
		                FILTER (WHERE be.expense_id IS NOT NULL), '{}')
		FROM balances b
		LEFT JOIN balance_expenses be ON be.balance_id = b.id
		WHERE b.group_id = $1 AND b.status IN ('pending', 'partial')
		GROUP BY b.id
		ORDER BY b.id
	`
	return s.listBalances(ctx, query, groupID)
}

// ListOpenBalancesByUser retrieves open balances where the user is
// debtor or creditor, across all groups
func (s *PostgresStore) ListOpenBalancesByUser(ctx context.Context, userID int64) ([]*Balance, error) {
	query := `
		SELECT b.id, b.debtor_id, b.creditor_id, b.group_id, b.amount, b.currency, b.status,
		       b.created_at, b.updated_at,
		       COALESCE(ARRAY_AGG(be.expense_id ORDER BY be.expense_id)
		                FILTER (WHERE be.expense_id IS NOT NULL), '{}')
		FROM balances b
		LEFT JOIN balance_expenses be ON be.balance_id = b.id
		WHERE (b.debtor_id = $1 OR b.creditor_id = $1) AND b.status IN ('pending', 'partial')
		GROUP BY b.id
		ORDER BY b.id
	`
	return s.listBalances(ctx, query, userID)
}

func (s *PostgresStore) listBalances(ctx context.Context, query string, arg int64) ([]*Balance, error) {
	rows, err := s.q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	defer rows.Close()

	var balances []*Balance
	for rows.Next() {
		balance := &Balance{}
		var expenseIDs pq.Int64Array
		if err := rows.Scan(
			&balance.ID,
			&balance.DebtorID,
			&balance.CreditorID,
			&balance.GroupID,
			&balance.Amount,
			&balance.Currency,
			&balance.Status,
			&balance.CreatedAt,
			&balance.UpdatedAt,
			&expenseIDs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balance.ExpenseIDs = expenseIDs
		balances = append(balances, balance)
	}

	return balances, rows.Err()
}

// InsertPayment appends an immutable payment event
func (s *PostgresStore) InsertPayment(ctx context.Context, payment *Payment) (*Payment, error) {
	query := `
		INSERT INTO payments (from_user_id, to_user_id, group_id, amount, currency, method, status, description, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := s.q.QueryRowContext(ctx, query,
		payment.FromUserID,
		payment.ToUserID,
		payment.GroupID,
		payment.Amount,
		payment.Currency,
		payment.Method,
		payment.Status,
		payment.Description,
		payment.TransactionID,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	return payment, nil
}

// ListPaymentsByGroup retrieves a group's payment history, newest first
func (s *PostgresStore) ListPaymentsByGroup(ctx context.Context, groupID int64) ([]*Payment, error) {
	query := `
		SELECT id, from_user_id, to_user_id, group_id, amount, currency, method, status, description, transaction_id, created_at
		FROM payments
		WHERE group_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.q.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		payment := &Payment{}
		if err := rows.Scan(
			&payment.ID,
			&payment.FromUserID,
			&payment.ToUserID,
			&payment.GroupID,
			&payment.Amount,
			&payment.Currency,
			&payment.Method,
			&payment.Status,
			&payment.Description,
			&payment.TransactionID,
			&payment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

func (s *PostgresStore) contributions(ctx context.Context, balanceID int64) ([]int64, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT expense_id FROM balance_expenses WHERE balance_id = $1 ORDER BY expense_id`, balanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contributions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
