package ledger

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemStore is an in-memory Store: a map keyed by (debtor, creditor,
// group) behind a single mutex. The mutex is the transaction boundary —
// Atomically holds it for the whole callback, so a read-modify-write on
// a balance key is isolated from concurrent writers. Used by tests and
// as the reference semantics for real Store implementations.
type MemStore struct {
	mu sync.Mutex

	balances      map[int64]*Balance
	openIndex     map[balanceKey]int64 // open balance per triple
	balanceOrder  []int64              // creation order of balance IDs
	payments      []*Payment
	nextBalanceID int64
	nextPaymentID int64
}

type balanceKey struct {
	debtorID, creditorID, groupID int64
}

// NewMemStore creates an empty in-memory ledger store
func NewMemStore() *MemStore {
	return &MemStore{
		balances:  make(map[int64]*Balance),
		openIndex: make(map[balanceKey]int64),
	}
}

// Atomically holds the store lock for the duration of fn. The Store
// passed to fn operates without re-locking.
func (m *MemStore) Atomically(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memTx{store: m})
}

func (m *MemStore) FindOpenBalance(ctx context.Context, debtorID, creditorID, groupID int64) (*Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findOpenBalance(debtorID, creditorID, groupID)
}

func (m *MemStore) CreateBalance(ctx context.Context, balance *Balance) (*Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createBalance(balance)
}

func (m *MemStore) UpdateBalance(ctx context.Context, balance *Balance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateBalance(balance)
}

func (m *MemStore) DeleteBalance(ctx context.Context, balanceID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteBalance(balanceID)
}

func (m *MemStore) AppendContribution(ctx context.Context, balanceID, expenseID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendContribution(balanceID, expenseID)
}

func (m *MemStore) RemoveContribution(ctx context.Context, balanceID, expenseID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeContribution(balanceID, expenseID)
}

func (m *MemStore) ListOpenBalancesByGroup(ctx context.Context, groupID int64) ([]*Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listOpenBalances(func(b *Balance) bool { return b.GroupID == groupID }), nil
}

func (m *MemStore) ListOpenBalancesByUser(ctx context.Context, userID int64) ([]*Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listOpenBalances(func(b *Balance) bool {
		return b.DebtorID == userID || b.CreditorID == userID
	}), nil
}

func (m *MemStore) InsertPayment(ctx context.Context, payment *Payment) (*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertPayment(payment)
}

func (m *MemStore) ListPaymentsByGroup(ctx context.Context, groupID int64) ([]*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listPaymentsByGroup(groupID), nil
}

// memTx is the view of a MemStore inside Atomically: same operations,
// no locking, and nested Atomically calls reuse the held lock.
type memTx struct {
	store *MemStore
}

func (t *memTx) Atomically(ctx context.Context, fn func(Store) error) error {
	return fn(t)
}

func (t *memTx) FindOpenBalance(ctx context.Context, debtorID, creditorID, groupID int64) (*Balance, error) {
	return t.store.findOpenBalance(debtorID, creditorID, groupID)
}

func (t *memTx) CreateBalance(ctx context.Context, balance *Balance) (*Balance, error) {
	return t.store.createBalance(balance)
}

func (t *memTx) UpdateBalance(ctx context.Context, balance *Balance) error {
	return t.store.updateBalance(balance)
}

func (t *memTx) DeleteBalance(ctx context.Context, balanceID int64) error {
	return t.store.deleteBalance(balanceID)
}

func (t *memTx) AppendContribution(ctx context.Context, balanceID, expenseID int64) error {
	return t.store.appendContribution(balanceID, expenseID)
}

func (t *memTx) RemoveContribution(ctx context.Context, balanceID, expenseID int64) error {
	return t.store.removeContribution(balanceID, expenseID)
}

func (t *memTx) ListOpenBalancesByGroup(ctx context.Context, groupID int64) ([]*Balance, error) {
	return t.store.listOpenBalances(func(b *Balance) bool { return b.GroupID == groupID }), nil
}

func (t *memTx) ListOpenBalancesByUser(ctx context.Context, userID int64) ([]*Balance, error) {
	return t.store.listOpenBalances(func(b *Balance) bool {
		return b.DebtorID == userID || b.CreditorID == userID
	}), nil
}

func (t *memTx) InsertPayment(ctx context.Context, payment *Payment) (*Payment, error) {
	return t.store.insertPayment(payment)
}

func (t *memTx) ListPaymentsByGroup(ctx context.Context, groupID int64) ([]*Payment, error) {
	return t.store.listPaymentsByGroup(groupID), nil
}

func (m *MemStore) findOpenBalance(debtorID, creditorID, groupID int64) (*Balance, error) {
	id, ok := m.openIndex[balanceKey{debtorID, creditorID, groupID}]
	if !ok {
		return nil, nil
	}
	return copyBalance(m.balances[id]), nil
}

func (m *MemStore) createBalance(balance *Balance) (*Balance, error) {
	m.nextBalanceID++
	stored := copyBalance(balance)
	stored.ID = m.nextBalanceID
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	m.balances[stored.ID] = stored
	m.balanceOrder = append(m.balanceOrder, stored.ID)
	if stored.IsOpen() {
		m.openIndex[keyOf(stored)] = stored.ID
	}
	return copyBalance(stored), nil
}

func (m *MemStore) updateBalance(balance *Balance) error {
	stored, ok := m.balances[balance.ID]
	if !ok {
		return nil
	}
	stored.Amount = balance.Amount
	stored.Status = balance.Status
	stored.UpdatedAt = time.Now()

	if stored.IsOpen() {
		m.openIndex[keyOf(stored)] = stored.ID
	} else {
		delete(m.openIndex, keyOf(stored))
	}
	return nil
}

func (m *MemStore) deleteBalance(balanceID int64) error {
	stored, ok := m.balances[balanceID]
	if !ok {
		return nil
	}
	delete(m.openIndex, keyOf(stored))
	delete(m.balances, balanceID)
	for i, id := range m.balanceOrder {
		if id == balanceID {
			m.balanceOrder = append(m.balanceOrder[:i], m.balanceOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemStore) appendContribution(balanceID, expenseID int64) error {
	stored, ok := m.balances[balanceID]
	if !ok {
		return nil
	}
	for _, id := range stored.ExpenseIDs {
		if id == expenseID {
			return nil
		}
	}
	stored.ExpenseIDs = append(stored.ExpenseIDs, expenseID)
	sort.Slice(stored.ExpenseIDs, func(i, j int) bool { return stored.ExpenseIDs[i] < stored.ExpenseIDs[j] })
	return nil
}

func (m *MemStore) removeContribution(balanceID, expenseID int64) error {
	stored, ok := m.balances[balanceID]
	if !ok {
		return nil
	}
	for i, id := range stored.ExpenseIDs {
		if id == expenseID {
			stored.ExpenseIDs = append(stored.ExpenseIDs[:i], stored.ExpenseIDs[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemStore) listOpenBalances(match func(*Balance) bool) []*Balance {
	var balances []*Balance
	for _, id := range m.balanceOrder {
		b := m.balances[id]
		if b.IsOpen() && match(b) {
			balances = append(balances, copyBalance(b))
		}
	}
	return balances
}

func (m *MemStore) insertPayment(payment *Payment) (*Payment, error) {
	m.nextPaymentID++
	stored := *payment
	stored.ID = m.nextPaymentID
	stored.CreatedAt = time.Now()
	m.payments = append(m.payments, &stored)

	returned := stored
	return &returned, nil
}

func (m *MemStore) listPaymentsByGroup(groupID int64) []*Payment {
	var payments []*Payment
	// newest first
	for i := len(m.payments) - 1; i >= 0; i-- {
		if m.payments[i].GroupID == groupID {
			p := *m.payments[i]
			payments = append(payments, &p)
		}
	}
	return payments
}

func keyOf(b *Balance) balanceKey {
	return balanceKey{b.DebtorID, b.CreditorID, b.GroupID}
}

func copyBalance(b *Balance) *Balance {
	dup := *b
	dup.ExpenseIDs = append([]int64(nil), b.ExpenseIDs...)
	return &dup
}
