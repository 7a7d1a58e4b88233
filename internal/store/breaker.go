package store

import (
	"context"
	"errors"

	perrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/abgdnv/gocatalog/internal/model"
	"github.com/abgdnv/gocatalog/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// BreakerStore guards another ProductStore with a circuit breaker.
// Only storage failures count against the breaker; domain outcomes such as
// not found or name conflicts are successful calls from its point of view.
type BreakerStore struct {
	next ProductStore
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreakerStore wraps next with a circuit breaker configured by cfg.
func NewBreakerStore(next ProductStore, cfg config.CircuitBreakerConfig) *BreakerStore {
	st := gobreaker.Settings{
		Name:        "catalog-store-cb",
		MaxRequests: 3,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(counts.Requests > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(counts.Requests)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, perrors.ErrStorage)
		},
	}
	return &BreakerStore{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[any](st),
	}
}

// State exposes the current breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) Insert(ctx context.Context, product model.Product) (*model.Product, error) {
	return execute(b, func() (*model.Product, error) {
		return b.next.Insert(ctx, product)
	})
}

func (b *BreakerStore) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	return execute(b, func() (*model.Product, error) {
		return b.next.FindByID(ctx, id)
	})
}

func (b *BreakerStore) FindAll(ctx context.Context) ([]model.Product, error) {
	return execute(b, func() ([]model.Product, error) {
		return b.next.FindAll(ctx)
	})
}

type pageResult struct {
	products []model.Product
	total    int64
}

func (b *BreakerStore) FindPage(ctx context.Context, filter model.Filter, page model.PageRequest) ([]model.Product, int64, error) {
	res, err := execute(b, func() (pageResult, error) {
		products, total, err := b.next.FindPage(ctx, filter, page)
		return pageResult{products: products, total: total}, err
	})
	if err != nil {
		return nil, 0, err
	}
	return res.products, res.total, nil
}

func (b *BreakerStore) FindBy(ctx context.Context, filter model.Filter) ([]model.Product, error) {
	return execute(b, func() ([]model.Product, error) {
		return b.next.FindBy(ctx, filter)
	})
}

func (b *BreakerStore) Update(ctx context.Context, id int64, modify func(product *model.Product) error) (*model.Product, error) {
	return execute(b, func() (*model.Product, error) {
		return b.next.Update(ctx, id, modify)
	})
}

func (b *BreakerStore) Ping(ctx context.Context) error {
	_, err := execute(b, func() (struct{}, error) {
		return struct{}{}, b.next.Ping(ctx)
	})
	return err
}

// execute runs fn through the breaker. A rejected call is reported as a storage failure.
func execute[T any](b *BreakerStore, fn func() (T, error)) (T, error) {
	var zero T
	res, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, perrors.Storage("circuit breaker", err)
		}
		return zero, err
	}
	return res.(T), nil
}
