package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/slotly/bookhub/internal/domain/business"
)

type BusinessesRepo struct {
	mu    sync.RWMutex
	items map[string]business.Business
}

func NewBusinessesRepo() *BusinessesRepo {
	return &BusinessesRepo{
		items: make(map[string]business.Business),
	}
}

func (r *BusinessesRepo) Create(_ context.Context, b business.Business) (business.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.OwnerID == b.OwnerID {
			return business.Business{}, business.ErrAlreadyOwned
		}
	}

	r.items[b.ID] = b

	return b, nil
}

func (r *BusinessesRepo) GetByOwner(_ context.Context, ownerID string) (business.Business, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.items {
		if b.OwnerID == ownerID {
			return b, nil
		}
	}

	return business.Business{}, business.ErrNotFound
}

func (r *BusinessesRepo) GetByID(_ context.Context, id string) (business.Business, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.items[id]

	if !ok {
		return business.Business{}, business.ErrNotFound
	}

	return b, nil
}

func (r *BusinessesRepo) List(_ context.Context) ([]business.Business, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]business.Business, 0, len(r.items))

	for _, b := range r.items {
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})

	return out, nil
}
