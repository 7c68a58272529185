package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/service-order-metrics/internal/domain"
	"github.com/spec-kit/service-order-metrics/internal/repository"
)

var brt = time.FixedZone("BRT", -3*60*60)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, brt)
}

func ptr[T any](v T) *T { return &v }

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]domain.ServiceOrder
	snapshots int
	err       error
}

func newFakeOrderRepo(orders ...domain.ServiceOrder) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: make(map[string]domain.ServiceOrder)}
	for _, o := range orders {
		r.orders[o.Key()] = o
	}
	return r
}

func (r *fakeOrderRepo) UpsertBatch(_ context.Context, orders []domain.ServiceOrder) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	for _, o := range orders {
		r.orders[o.Key()] = o
	}
	return len(orders), nil
}

func (r *fakeOrderRepo) ListWithFilter(_ context.Context, filter repository.OrderFilter) ([]domain.ServiceOrder, error) {
	r.mu.Lock()
	out := r.collect(func(o domain.ServiceOrder) bool {
		return (filter.CreatedFrom == nil || !o.CreatedAt.Before(*filter.CreatedFrom)) &&
			(filter.CreatedTo == nil || !o.CreatedAt.After(*filter.CreatedTo))
	})
	r.mu.Unlock()
	if filter.ClientCode != nil {
		kept := out[:0]
		for _, o := range out {
			if o.ClientCode == *filter.ClientCode {
				kept = append(kept, o)
			}
		}
		out = kept
	}
	return out, nil
}

func (r *fakeOrderRepo) Snapshot(_ context.Context, from, to *time.Time) ([]domain.ServiceOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots++
	if r.err != nil {
		return nil, r.err
	}
	return r.collect(func(o domain.ServiceOrder) bool {
		if to != nil && o.CreatedAt.After(*to) {
			return false
		}
		if from == nil || !o.CreatedAt.Before(*from) {
			return true
		}
		return o.CompletedAt != nil && !o.CompletedAt.Before(*from)
	}), nil
}

func (r *fakeOrderRepo) collect(keep func(domain.ServiceOrder) bool) []domain.ServiceOrder {
	var out []domain.ServiceOrder
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *fakeOrderRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.orders)), nil
}

type fakeAnalystRepo struct {
	byID map[string]*domain.Analyst
}

func newFakeAnalystRepo() *fakeAnalystRepo {
	return &fakeAnalystRepo{byID: make(map[string]*domain.Analyst)}
}

func (r *fakeAnalystRepo) Create(_ context.Context, a *domain.Analyst) error {
	a.CreatedAt = time.Now()
	copied := *a
	r.byID[a.ID] = &copied
	return nil
}

func (r *fakeAnalystRepo) GetByEmail(_ context.Context, email string) (*domain.Analyst, error) {
	for _, a := range r.byID {
		if strings.EqualFold(a.Email, email) {
			copied := *a
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAnalystRepo) GetByID(_ context.Context, id string) (*domain.Analyst, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *a
	return &copied, nil
}

// memoryCache mirrors the Redis cache, including its JSON round trip.
type memoryCache struct {
	entries       map[string][]byte
	invalidations int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest any) error {
	raw, ok := c.entries[key]
	if !ok {
		return repository.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.invalidations++
	c.entries = make(map[string][]byte)
	return nil
}

var errStorage = errors.New("storage unavailable")
