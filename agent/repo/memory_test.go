package repo

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMemoryFindCustomerSeed(t *testing.T) {
	t.Parallel()

	r := NewMemoryRepository(nil)
	c, err := r.FindCustomer(context.Background(), "0957380330")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name != "Diego Sebastián Jiménez Coronel" {
		t.Fatalf("unexpected name: %s", c.Name)
	}
	if c.TotalDebt != 450.0 {
		t.Fatalf("unexpected debt: %f", c.TotalDebt)
	}
}

func TestMemoryFindCustomerMiss(t *testing.T) {
	t.Parallel()

	r := NewMemoryRepository(nil)
	_, err := r.FindCustomer(context.Background(), "0000000000")
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestMemoryPromiseIDsStrictlyIncrease(t *testing.T) {
	t.Parallel()

	r := NewMemoryRepository(nil)
	ctx := context.Background()

	prev := int64(0)
	for i := 0; i < 5; i++ {
		id, err := r.NextPromiseID(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id <= prev {
			t.Fatalf("id %d not greater than previous %d", id, prev)
		}
		prev = id
	}
}

func TestMemorySaveAndListPromises(t *testing.T) {
	t.Parallel()

	r := NewMemoryRepository(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := r.NextPromiseID(ctx)
			if err != nil {
				t.Errorf("next id: %v", err)
				return
			}
			err = r.SavePromise(ctx, &Promise{
				ID:             id,
				CustomerID:     "0957380330",
				Amount:         100,
				CommitmentDate: "2026-09-15",
			})
			if err != nil {
				t.Errorf("save: %v", err)
			}
		}()
	}
	wg.Wait()

	promises, err := r.PromisesByCustomer(ctx, "0957380330")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(promises) != 8 {
		t.Fatalf("expected 8 promises, got %d", len(promises))
	}

	other, err := r.PromisesByCustomer(ctx, "other")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no promises for unknown customer, got %d", len(other))
	}
}
