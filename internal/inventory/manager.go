package inventory

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/zombor/pantry/internal/receipt"
)

// Store persists one inventory per user.
type Store interface {
	LoadInventory(user string) ([]Item, error)
	SaveInventory(user string, items []Item) error
}

// Manager is the only writer of user inventories. Updates for the same user
// run one at a time; different users proceed in parallel.
type Manager struct {
	store Store
	shelf ShelfLife

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

// NewManager creates a Manager over store.
func NewManager(store Store, shelf ShelfLife) *Manager {
	return &Manager{store: store, shelf: shelf, users: make(map[string]*sync.Mutex)}
}

func (m *Manager) lock(user string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.users[user]
	if !ok {
		l = &sync.Mutex{}
		m.users[user] = l
	}
	return l
}

// Apply merges the records of a receipt into the user's inventory.
func (m *Manager) Apply(user, receiptID string, acquiredOn time.Time, records []receipt.ProductRecord) (Update, error) {
	l := m.lock(user)
	l.Lock()
	defer l.Unlock()

	current, err := m.store.LoadInventory(user)
	if err != nil {
		return Update{}, fmt.Errorf("loading inventory: %w", err)
	}

	u := Aggregate(current, records, receiptID, acquiredOn, m.shelf)
	if len(u.Changed) > 0 {
		if err := m.store.SaveInventory(user, u.Items); err != nil {
			return Update{}, fmt.Errorf("saving inventory: %w", err)
		}
	}

	slog.Info("Inventory updated", "user", user, "receipt", receiptID, "changed", len(u.Changed), "unmatched", len(u.Unmatched))
	return u, nil
}

// List returns the user's inventory.
func (m *Manager) List(user string) ([]Item, error) {
	items, err := m.store.LoadInventory(user)
	if err != nil {
		return nil, fmt.Errorf("loading inventory: %w", err)
	}
	return items, nil
}
