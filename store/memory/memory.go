// Package memory provides an in-memory store for tests and development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/icaruswings/Budgeto/paycycle"
	"github.com/icaruswings/Budgeto/store"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	settings map[string]paycycle.PaySettings
	bills    map[string]map[string]paycycle.Bill // userID -> billID -> bill

	// Now is injectable so tests can pin CreatedAt.
	Now func() time.Time
}

var _ store.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		settings: make(map[string]paycycle.PaySettings),
		bills:    make(map[string]map[string]paycycle.Bill),
		Now:      time.Now,
	}
}

func (m *Memory) Close() error { return nil }

// =============================================================================
// PAY SETTINGS
// =============================================================================

func (m *Memory) GetPaySettings(_ context.Context, userID string) (*paycycle.PaySettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.settings[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (m *Memory) SavePaySettings(_ context.Context, settings paycycle.PaySettings) error {
	if settings.UserID == "" {
		return store.ErrMissingUserID
	}
	settings.RecalculateDesiredAmount()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[settings.UserID] = settings
	return nil
}

func (m *Memory) ListUserIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.settings))
	for id := range m.settings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// =============================================================================
// BILLS
// =============================================================================

func (m *Memory) ListBills(_ context.Context, userID string) ([]paycycle.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bills := make([]paycycle.Bill, 0, len(m.bills[userID]))
	for _, b := range m.bills[userID] {
		bills = append(bills, b)
	}
	sort.Slice(bills, func(i, j int) bool {
		if !bills[i].CreatedAt.Equal(bills[j].CreatedAt) {
			return bills[i].CreatedAt.Before(bills[j].CreatedAt)
		}
		return bills[i].ID < bills[j].ID
	})
	return bills, nil
}

func (m *Memory) GetBill(_ context.Context, userID, billID string) (*paycycle.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bills[userID][billID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

func (m *Memory) CreateBill(_ context.Context, bill paycycle.Bill) (paycycle.Bill, error) {
	if bill.UserID == "" {
		return paycycle.Bill{}, store.ErrMissingUserID
	}
	if bill.ID == "" {
		bill.ID = uuid.NewString()
	}
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = paycycle.TimePointOf(m.Now(), time.UTC)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bills[bill.UserID] == nil {
		m.bills[bill.UserID] = make(map[string]paycycle.Bill)
	}
	m.bills[bill.UserID][bill.ID] = bill
	return bill, nil
}

func (m *Memory) UpdateBill(_ context.Context, bill paycycle.Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.bills[bill.UserID][bill.ID]
	if !ok {
		return store.ErrNotFound
	}
	// The recurrence anchor survives edits.
	bill.CreatedAt = existing.CreatedAt
	m.bills[bill.UserID][bill.ID] = bill
	return nil
}

func (m *Memory) DeleteBill(_ context.Context, userID, billID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bills[userID][billID]; !ok {
		return store.ErrNotFound
	}
	delete(m.bills[userID], billID)
	return nil
}
