// Package catalog holds the product and fabric reference data offered to
// customers.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/example/etailor/internal/apperrors"
	"github.com/example/etailor/internal/models"
)

// Source supplies the raw catalog rows. Products carry their eligible
// fabrics.
type Source interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

type snapshot struct {
	products map[uuid.UUID]models.Product
	ordered  []uuid.UUID
	fabrics  map[uuid.UUID]models.Fabric
	eligible map[uuid.UUID][]uuid.UUID
}

// Store is a read-only view over one load of the catalog. Reload swaps the
// whole view atomically.
type Store struct {
	source Source

	mu   sync.RWMutex
	snap snapshot
}

// New builds a Store directly from products.
func New(products []models.Product) *Store {
	return &Store{snap: build(products)}
}

// Load reads the catalog from source.
func Load(ctx context.Context, source Source) (*Store, error) {
	s := &Store{source: source}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the catalog from its source.
func (s *Store) Reload(ctx context.Context) error {
	if s.source == nil {
		return nil
	}

	products, err := s.source.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	snap := build(products)
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	return nil
}

func build(products []models.Product) snapshot {
	snap := snapshot{
		products: make(map[uuid.UUID]models.Product, len(products)),
		fabrics:  make(map[uuid.UUID]models.Fabric),
		eligible: make(map[uuid.UUID][]uuid.UUID, len(products)),
	}

	for _, p := range products {
		ids := make([]uuid.UUID, 0, len(p.Fabrics))
		for _, f := range p.Fabrics {
			snap.fabrics[f.ID] = f
			ids = append(ids, f.ID)
		}
		snap.eligible[p.ID] = ids

		p.Fabrics = nil
		snap.products[p.ID] = p
		if p.IsActive {
			snap.ordered = append(snap.ordered, p.ID)
		}
	}

	sort.SliceStable(snap.ordered, func(i, j int) bool {
		a, b := snap.products[snap.ordered[i]], snap.products[snap.ordered[j]]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID.String() < b.ID.String()
	})
	return snap
}

// ListProducts returns the active products ordered by name.
func (s *Store) ListProducts() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0, len(s.snap.ordered))
	for _, id := range s.snap.ordered {
		out = append(out, s.snap.products[id])
	}
	return out
}

// GetProduct returns an active product.
func (s *Store) GetProduct(id uuid.UUID) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.snap.products[id]
	if !ok || !p.IsActive {
		return models.Product{}, fmt.Errorf("product %s: %w", id, apperrors.ErrNotFound)
	}
	return p, nil
}

// ListFabricsFor returns the active fabrics eligible for an active product,
// ordered by name.
func (s *Store) ListFabricsFor(productID uuid.UUID) ([]models.Fabric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.snap.products[productID]
	if !ok || !p.IsActive {
		return nil, fmt.Errorf("product %s: %w", productID, apperrors.ErrNotFound)
	}

	out := make([]models.Fabric, 0, len(s.snap.eligible[productID]))
	for _, id := range s.snap.eligible[productID] {
		if f := s.snap.fabrics[id]; f.IsActive {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetFabric returns an active fabric regardless of product.
func (s *Store) GetFabric(id uuid.UUID) (models.Fabric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.snap.fabrics[id]
	if !ok || !f.IsActive {
		return models.Fabric{}, fmt.Errorf("fabric %s: %w", id, apperrors.ErrNotFound)
	}
	return f, nil
}
