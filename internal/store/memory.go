package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/etailor/internal/apperrors"
	"github.com/example/etailor/internal/models"
)

// MemoryStore is the fallback collaborator. Writes are kept in process
// memory for the life of the server; every value crossing the boundary is a
// copy.
type MemoryStore struct {
	mu sync.RWMutex

	products     map[uuid.UUID]models.Product
	profiles     map[uuid.UUID]models.Profile
	measurements map[uuid.UUID]models.MeasurementProfile
	designs      map[string]models.DesignUpload
	orders       map[uuid.UUID]models.Order

	now  func() time.Time
	last time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:     make(map[uuid.UUID]models.Product),
		profiles:     make(map[uuid.UUID]models.Profile),
		measurements: make(map[uuid.UUID]models.MeasurementProfile),
		designs:      make(map[string]models.DesignUpload),
		orders:       make(map[uuid.UUID]models.Order),
		now:          time.Now,
	}
}

// stamp returns a creation time strictly after the previous one so that
// newest-first ordering is total. Callers hold mu.
func (s *MemoryStore) stamp() time.Time {
	t := s.now()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func (s *MemoryStore) touch(b *models.BaseModel) {
	b.EnsureID()
	t := s.stamp()
	b.CreatedAt = t
	b.UpdatedAt = t
}

func notFound(kind string, id any) error {
	return fmt.Errorf("%s %v: %w", kind, id, apperrors.ErrNotFound)
}

func (s *MemoryStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		p.Fabrics = append([]models.Fabric(nil), p.Fabrics...)
		out = append(out, p)
	}
	return out, nil
}

func (s *MemoryStore) SeedCatalog(ctx context.Context, products []models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.products) > 0 {
		return nil
	}
	for _, p := range products {
		p.EnsureID()
		p.Fabrics = append([]models.Fabric(nil), p.Fabrics...)
		s.products[p.ID] = p
	}
	return nil
}

func (s *MemoryStore) CreateProfile(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(profile.Email)
	for _, existing := range s.profiles {
		if strings.ToLower(existing.Email) == email {
			return fmt.Errorf("profile %s: %w", profile.Email, apperrors.ErrConflict)
		}
	}
	if profile.Role == "" {
		profile.Role = models.RoleCustomer
	}
	s.touch(&profile.BaseModel)
	s.profiles[profile.ID] = *profile
	return nil
}

func (s *MemoryStore) GetProfile(ctx context.Context, id uuid.UUID) (models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return models.Profile{}, notFound("profile", id)
	}
	return p, nil
}

func (s *MemoryStore) GetProfileByEmail(ctx context.Context, email string) (models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return models.Profile{}, notFound("profile", email)
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.profiles[profile.ID]
	if !ok {
		return notFound("profile", profile.ID)
	}
	profile.CreatedAt = existing.CreatedAt
	profile.UpdatedAt = s.stamp()
	s.profiles[profile.ID] = *profile
	return nil
}

func (s *MemoryStore) ListCustomers(ctx context.Context) ([]models.CustomerSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byUser := make(map[uuid.UUID]*models.CustomerSummary)
	out := make([]models.CustomerSummary, 0)
	for _, p := range s.profiles {
		if p.Role != models.RoleCustomer {
			continue
		}
		byUser[p.ID] = &models.CustomerSummary{Profile: p}
	}
	for _, o := range s.orders {
		summary, ok := byUser[o.UserID]
		if !ok {
			continue
		}
		summary.OrderCount++
		if o.Status != models.StatusCancelled {
			summary.TotalSpent += o.TotalAmount
		}
	}
	for _, summary := range byUser {
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) CountCustomers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, p := range s.profiles {
		if p.Role == models.RoleCustomer {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) ListMeasurements(ctx context.Context, userID uuid.UUID) ([]models.MeasurementProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.MeasurementProfile, 0)
	for _, m := range s.measurements {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) GetMeasurement(ctx context.Context, userID, id uuid.UUID) (models.MeasurementProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.measurements[id]
	if !ok || m.UserID != userID {
		return models.MeasurementProfile{}, notFound("measurement", id)
	}
	return m, nil
}

func (s *MemoryStore) CreateMeasurement(ctx context.Context, m *models.MeasurementProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch(&m.BaseModel)
	s.measurements[m.ID] = *m
	return nil
}

func (s *MemoryStore) SaveMeasurement(ctx context.Context, m *models.MeasurementProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.measurements[m.ID]
	if !ok || existing.UserID != m.UserID {
		return notFound("measurement", m.ID)
	}
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = s.stamp()
	s.measurements[m.ID] = *m
	return nil
}

func (s *MemoryStore) DeleteMeasurement(ctx context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.measurements[id]
	if !ok || m.UserID != userID {
		return notFound("measurement", id)
	}
	delete(s.measurements, id)
	return nil
}

func (s *MemoryStore) CreateDesignUpload(ctx context.Context, upload *models.DesignUpload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.designs[upload.URL]; exists {
		return fmt.Errorf("design %s: %w", upload.URL, apperrors.ErrConflict)
	}
	s.touch(&upload.BaseModel)
	s.designs[upload.URL] = *upload
	return nil
}

func (s *MemoryStore) GetDesignUpload(ctx context.Context, userID uuid.UUID, url string) (models.DesignUpload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.designs[url]
	if !ok || d.UserID != userID {
		return models.DesignUpload{}, notFound("design", url)
	}
	return d, nil
}

func (s *MemoryStore) CreateOrder(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.orders {
		if existing.OrderNumber == order.OrderNumber {
			return fmt.Errorf("order %s: %w", order.OrderNumber, apperrors.ErrConflict)
		}
	}

	s.touch(&order.BaseModel)
	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		item.EnsureID()
		item.CreatedAt = order.CreatedAt
		item.UpdatedAt = order.CreatedAt
	}
	s.orders[order.ID] = copyOrder(*order)
	return nil
}

func (s *MemoryStore) GetOrder(ctx context.Context, id uuid.UUID) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, notFound("order", id)
	}
	return copyOrder(o), nil
}

func (s *MemoryStore) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]models.Order, 0)
	for _, o := range s.orders {
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if search != "" && !matchesSearch(o, search) {
			continue
		}
		matched = append(matched, o)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = matched[:0]
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	out := make([]models.Order, len(matched))
	for i, o := range matched {
		out[i] = copyOrder(o)
	}
	return out, total, nil
}

func matchesSearch(o models.Order, search string) bool {
	for _, field := range []string{o.OrderNumber, o.CustomerName, o.CustomerEmail} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) UpdateOrder(ctx context.Context, id uuid.UUID, mutate func(*models.Order) error) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, notFound("order", id)
	}

	working := copyOrder(o)
	if err := mutate(&working); err != nil {
		return models.Order{}, err
	}
	working.UpdatedAt = s.stamp()
	s.orders[id] = copyOrder(working)
	return working, nil
}

func (s *MemoryStore) OrderTotals(ctx context.Context) (OrderTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := OrderTotals{ByStatus: make(map[models.OrderStatus]int64)}
	for _, o := range s.orders {
		totals.Count++
		totals.ByStatus[o.Status]++
		if o.Status == models.StatusDelivered {
			totals.DeliveredRevenue += o.TotalAmount
		}
	}
	return totals, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() error {
	return nil
}

func copyOrder(o models.Order) models.Order {
	if o.EstimatedDelivery != nil {
		t := *o.EstimatedDelivery
		o.EstimatedDelivery = &t
	}
	if o.ActualDelivery != nil {
		t := *o.ActualDelivery
		o.ActualDelivery = &t
	}

	items := make([]models.OrderItem, len(o.Items))
	for i, item := range o.Items {
		item.Customizations = item.Customizations.Clone()
		if item.DesignUploadURL != nil {
			url := *item.DesignUploadURL
			item.DesignUploadURL = &url
		}
		items[i] = item
	}
	o.Items = items
	return o
}
