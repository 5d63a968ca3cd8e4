package expense

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aalrashed/divvy/internal/expense/split"
)

// Repository handles database operations for expenses and their splits
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateExpense creates a new expense with its itemized lines, if any
func (r *Repository) CreateExpense(ctx context.Context, expense *Expense) (*Expense, error) {
	query := `
		INSERT INTO expenses (group_id, payer_id, title, description, amount, currency,
		                      category, split_method, tax_amount, tax_method, tip_amount, tip_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`

	var taxAmount, tipAmount sql.NullFloat64
	var taxMethod, tipMethod sql.NullString
	if expense.Tax != nil {
		taxAmount = sql.NullFloat64{Float64: expense.Tax.Amount, Valid: true}
		taxMethod = sql.NullString{String: string(expense.Tax.SplitMethod), Valid: true}
	}
	if expense.Tip != nil {
		tipAmount = sql.NullFloat64{Float64: expense.Tip.Amount, Valid: true}
		tipMethod = sql.NullString{String: string(expense.Tip.SplitMethod), Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		expense.GroupID, expense.PayerID, expense.Title, expense.Description,
		expense.Amount, expense.Currency, expense.Category, expense.SplitMethod,
		taxAmount, taxMethod, tipAmount, tipMethod,
	).Scan(&expense.ID, &expense.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	for i := range expense.Items {
		item := &expense.Items[i]
		var assignedTo sql.NullInt64
		if item.AssignedTo != nil {
			assignedTo = sql.NullInt64{Int64: *item.AssignedTo, Valid: true}
		}
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO expense_items (expense_id, name, price, assigned_to) VALUES ($1, $2, $3, $4)`,
			expense.ID, item.Name, item.Price, assignedTo)
		if err != nil {
			return nil, fmt.Errorf("failed to create expense item: %w", err)
		}
	}

	return expense, nil
}

// CreateSplit persists one participant's computed share of an expense
func (r *Repository) CreateSplit(ctx context.Context, s *Split) (*Split, error) {
	query := `
		INSERT INTO splits (expense_id, user_id, amount, percentage)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var percentage sql.NullFloat64
	if s.Percentage != nil {
		percentage = sql.NullFloat64{Float64: *s.Percentage, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query, s.ExpenseID, s.UserID, s.Amount, percentage).Scan(&s.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create split: %w", err)
	}

	return s, nil
}

// GetExpenseByID retrieves an expense by its ID, including itemized lines
func (r *Repository) GetExpenseByID(ctx context.Context, id int64) (*Expense, error) {
	query := `
		SELECT id, group_id, payer_id, title, description, amount, currency,
		       category, split_method, tax_amount, tax_method, tip_amount, tip_method, created_at
		FROM expenses
		WHERE id = $1`

	expense := &Expense{}
	var taxAmount, tipAmount sql.NullFloat64
	var taxMethod, tipMethod sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&expense.ID, &expense.GroupID, &expense.PayerID, &expense.Title,
		&expense.Description, &expense.Amount, &expense.Currency,
		&expense.Category, &expense.SplitMethod,
		&taxAmount, &taxMethod, &tipAmount, &tipMethod, &expense.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if taxAmount.Valid {
		expense.Tax = &split.Extra{Amount: taxAmount.Float64, SplitMethod: split.ExtraMethod(taxMethod.String)}
	}
	if tipAmount.Valid {
		expense.Tip = &split.Extra{Amount: tipAmount.Float64, SplitMethod: split.ExtraMethod(tipMethod.String)}
	}

	if expense.SplitMethod == split.MethodItemized {
		if expense.Items, err = r.getExpenseItems(ctx, id); err != nil {
			return nil, err
		}
	}

	return expense, nil
}

func (r *Repository) getExpenseItems(ctx context.Context, expenseID int64) ([]split.LineItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, price, assigned_to FROM expense_items WHERE expense_id = $1 ORDER BY id`,
		expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense items: %w", err)
	}
	defer rows.Close()

	var items []split.LineItem
	for rows.Next() {
		var item split.LineItem
		var assignedTo sql.NullInt64
		if err := rows.Scan(&item.Name, &item.Price, &assignedTo); err != nil {
			return nil, fmt.Errorf("failed to scan expense item: %w", err)
		}
		if assignedTo.Valid {
			v := assignedTo.Int64
			item.AssignedTo = &v
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetSplitsByExpenseID retrieves the computed splits for an expense
func (r *Repository) GetSplitsByExpenseID(ctx context.Context, expenseID int64) ([]*Split, error) {
	query := `
		SELECT id, expense_id, user_id, amount, percentage
		FROM splits
		WHERE expense_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []*Split
	for rows.Next() {
		s := &Split{}
		var percentage sql.NullFloat64
		if err := rows.Scan(&s.ID, &s.ExpenseID, &s.UserID, &s.Amount, &percentage); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		if percentage.Valid {
			v := percentage.Float64
			s.Percentage = &v
		}
		splits = append(splits, s)
	}
	return splits, rows.Err()
}

// ListExpensesByGroupID retrieves a page of a group's expenses, newest first,
// along with the total count for pagination
func (r *Repository) ListExpensesByGroupID(ctx context.Context, groupID int64, limit, offset int) ([]*Expense, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE group_id = $1`, groupID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := `
		SELECT id, group_id, payer_id, title, description, amount, currency,
		       category, split_method, created_at
		FROM expenses
		WHERE group_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		expense := &Expense{}
		err := rows.Scan(
			&expense.ID, &expense.GroupID, &expense.PayerID, &expense.Title,
			&expense.Description, &expense.Amount, &expense.Currency,
			&expense.Category, &expense.SplitMethod, &expense.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	return expenses, total, rows.Err()
}

// DeleteExpense deletes an expense. Items and splits go with it via
// ON DELETE CASCADE.
func (r *Repository) DeleteExpense(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("expense not found")
	}

	return nil
}
