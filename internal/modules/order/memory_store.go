// README: In-memory order repository used when no database is configured.
package order

import (
	"context"
	"sort"
	"sync"

	"waslhaa/internal/types"
)

type MemoryStore struct {
	mu     sync.RWMutex
	orders map[types.ID]Order
	events map[types.ID][]Event
	seq    int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[types.ID]Order),
		events: make(map[types.ID][]Event),
	}
}

func (m *MemoryStore) Create(_ context.Context, o *Order, e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.orders {
		if existing.CustomerID == o.CustomerID && existing.Status.Active() {
			return ErrActiveOrder
		}
	}
	m.orders[o.ID] = *o
	m.appendLocked(e)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id types.ID) (*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (m *MemoryStore) Update(_ context.Context, o *Order, fromStatus Status, fromVersion int, e *Event) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.orders[o.ID]
	if !ok {
		return false, ErrNotFound
	}
	if cur.Status != fromStatus || cur.StatusVersion != fromVersion {
		return false, nil
	}
	m.orders[o.ID] = *o
	m.appendLocked(e)
	return true, nil
}

func (m *MemoryStore) appendLocked(e *Event) {
	m.seq++
	e.ID = m.seq
	m.events[e.OrderID] = append(m.events[e.OrderID], *e)
}

func (m *MemoryStore) HasActiveByCustomer(_ context.Context, customerID types.ID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.CustomerID == customerID && o.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) ListByCustomer(_ context.Context, customerID types.ID, limit int) ([]Order, error) {
	out := m.filter(func(o Order) bool { return o.CustomerID == customerID })
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return truncate(out, limit), nil
}

func (m *MemoryStore) ListPending(_ context.Context, vehicle types.VehicleType, limit int) ([]Order, error) {
	out := m.filter(func(o Order) bool {
		return o.Status == StatusPending && (vehicle == "" || o.VehicleType == vehicle)
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return truncate(out, limit), nil
}

func (m *MemoryStore) ListRealized(_ context.Context, f RevenueFilter) ([]Order, error) {
	return m.filter(f.Match), nil
}

func (m *MemoryStore) History(_ context.Context, id types.ID) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Event(nil), m.events[id]...), nil
}

func (m *MemoryStore) filter(keep func(Order) bool) []Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Order
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func truncate(orders []Order, limit int) []Order {
	if limit > 0 && len(orders) > limit {
		return orders[:limit]
	}
	return orders
}
