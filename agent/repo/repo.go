package repo

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrNilPromise       = errors.New("promise is nil")
)

// Customer is the read-only debtor record. Lookups never mutate it.
type Customer struct {
	ID        string  `bun:"id,pk" json:"id"`
	Name      string  `bun:"name" json:"name"`
	TotalDebt float64 `bun:"total_debt" json:"total_debt"`
}

// Promise is a committed amount and date for settling a debt. Create-once:
// there is no update or delete, and re-registering identical arguments
// creates a second promise with a fresh id.
type Promise struct {
	ID             int64     `bun:"id,pk" json:"id"`
	CustomerID     string    `bun:"customer_id" json:"customer_id"`
	Amount         float64   `bun:"amount" json:"amount"`
	CommitmentDate string    `bun:"commitment_date" json:"commitment_date"`
	Notes          string    `bun:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time `bun:"created_at" json:"created_at"`
}

// Repository is the injectable backing store for customers and promises.
// The in-memory implementation is the demo default; the bun implementation
// targets a real Postgres.
type Repository interface {
	FindCustomer(ctx context.Context, id string) (*Customer, error)
	NextPromiseID(ctx context.Context) (int64, error)
	SavePromise(ctx context.Context, p *Promise) error
	PromisesByCustomer(ctx context.Context, customerID string) ([]Promise, error)
}
