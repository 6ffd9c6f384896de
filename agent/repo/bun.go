package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// BunConfig describes the Postgres connection for the bun-backed repository.
type BunConfig struct {
	DSN          string        `envconfig:"DSN" split_words:"true"`
	Timeout      time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"5s"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" split_words:"true" default:"4"`
}

type customerRow struct {
	bun.BaseModel `bun:"table:customers"`
	Customer
}

type promiseRow struct {
	bun.BaseModel `bun:"table:payment_promises"`
	Promise
}

// BunRepository persists promises in Postgres via bun. Promise ids come
// from the payment_promises_id_seq sequence so they stay strictly
// increasing across processes.
type BunRepository struct {
	db *bun.DB
}

func NewBunRepository(cfg BunConfig) (*BunRepository, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(cfg.Timeout),
	))
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	return &BunRepository{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

func (r *BunRepository) Close() error {
	return r.db.Close()
}

func (r *BunRepository) FindCustomer(ctx context.Context, id string) (*Customer, error) {
	row := new(customerRow)
	err := r.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCustomerNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("select customer: %w", err)
	}
	c := row.Customer
	return &c, nil
}

func (r *BunRepository) NextPromiseID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.db.NewRaw("SELECT nextval('payment_promises_id_seq')").Scan(ctx, &id); err != nil {
		return 0, fmt.Errorf("next promise id: %w", err)
	}
	return id, nil
}

func (r *BunRepository) SavePromise(ctx context.Context, p *Promise) error {
	if p == nil {
		return ErrNilPromise
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	row := &promiseRow{Promise: *p}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert promise: %w", err)
	}
	return nil
}

func (r *BunRepository) PromisesByCustomer(ctx context.Context, customerID string) ([]Promise, error) {
	var rows []promiseRow
	err := r.db.NewSelect().
		Model(&rows).
		Where("customer_id = ?", customerID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select promises: %w", err)
	}
	out := make([]Promise, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Promise)
	}
	return out, nil
}
