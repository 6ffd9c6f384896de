package repo

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryRepository keeps everything in process memory. Promises do not
// survive a restart; the customer table is immutable seed data.
type MemoryRepository struct {
	customers map[string]Customer

	mu       sync.RWMutex
	promises []Promise
	lastID   atomic.Int64

	now func() time.Time
}

// NewMemoryRepository builds a repository over the given customer seed.
// A nil seed falls back to the demo table.
func NewMemoryRepository(seed []Customer) *MemoryRepository {
	if len(seed) == 0 {
		seed = DemoCustomers()
	}
	customers := make(map[string]Customer, len(seed))
	for _, c := range seed {
		customers[c.ID] = c
	}
	return &MemoryRepository{
		customers: customers,
		now:       time.Now,
	}
}

// DemoCustomers is the seed used when no backing database is configured.
func DemoCustomers() []Customer {
	return []Customer{
		{
			ID:        "0957380330",
			Name:      "Diego Sebastián Jiménez Coronel",
			TotalDebt: 450.0,
		},
	}
}

func (r *MemoryRepository) FindCustomer(_ context.Context, id string) (*Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCustomerNotFound, id)
	}
	return &c, nil
}

func (r *MemoryRepository) NextPromiseID(_ context.Context) (int64, error) {
	return r.lastID.Add(1), nil
}

func (r *MemoryRepository) SavePromise(_ context.Context, p *Promise) error {
	if p == nil {
		return ErrNilPromise
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.promises = append(r.promises, *p)
	return nil
}

func (r *MemoryRepository) PromisesByCustomer(_ context.Context, customerID string) ([]Promise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Promise
	for _, p := range r.promises {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}
