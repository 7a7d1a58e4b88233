package store

import (
	"context"
	"errors"
	"testing"
	"time"

	perrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/abgdnv/gocatalog/internal/model"
	"github.com/abgdnv/gocatalog/pkg/config"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore answers every call with err.
type failingStore struct {
	ProductStore
	err   error
	calls int
}

func (f *failingStore) FindByID(_ context.Context, _ int64) (*model.Product, error) {
	f.calls++
	return nil, f.err
}

func testBreakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		ConsecutiveFailures: 3,
		ErrorRatePercent:    100,
		OpenTimeout:         time.Minute,
	}
}

func Test_BreakerStore_TripsOnStorageFailures(t *testing.T) {
	// given
	next := &failingStore{err: perrors.Storage("find product by id", errors.New("connection refused"))}
	b := NewBreakerStore(next, testBreakerConfig())

	// when
	for range 3 {
		_, err := b.FindByID(context.Background(), 1)
		require.ErrorIs(t, err, perrors.ErrStorage)
	}
	_, err := b.FindByID(context.Background(), 1)

	// then
	assert.Equal(t, gobreaker.StateOpen, b.State())
	assert.ErrorIs(t, err, perrors.ErrStorage)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, next.calls, "open breaker must not reach the store")
}

func Test_BreakerStore_DomainErrorsDoNotTrip(t *testing.T) {
	// given
	next := &failingStore{err: perrors.ErrProductNotFound}
	b := NewBreakerStore(next, testBreakerConfig())

	// when
	for range 10 {
		_, err := b.FindByID(context.Background(), 1)
		require.ErrorIs(t, err, perrors.ErrProductNotFound)
	}

	// then
	assert.Equal(t, gobreaker.StateClosed, b.State())
	assert.Equal(t, 10, next.calls)
}

func Test_BreakerStore_PassesResultsThrough(t *testing.T) {
	// given
	s := NewInMemoryStore()
	b := NewBreakerStore(s, testBreakerConfig())
	ctx := context.Background()

	// when
	created, err := b.Insert(ctx, newTestProduct("Mouse", "Electronics", "10.00", 1))
	require.NoError(t, err)
	page, total, pageErr := b.FindPage(ctx, model.Filter{ActiveOnly: true}, model.PageRequest{Page: 0, Size: 5, Sort: model.SortByID, Direction: model.Asc})

	// then
	require.NoError(t, pageErr)
	assert.Equal(t, int64(1), total)
	require.Len(t, page, 1)
	assert.Equal(t, created.ID, page[0].ID)
	assert.NoError(t, b.Ping(ctx))
}
