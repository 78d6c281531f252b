package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/example/etailor/internal/models"
	"github.com/example/etailor/internal/realtime"
	"github.com/example/etailor/internal/store"
)

// DashboardStats summarises the shop for the admin dashboard.
type DashboardStats struct {
	TotalOrders     int64                        `json:"total_orders"`
	PendingOrders   int64                        `json:"pending_orders"`
	CompletedOrders int64                        `json:"completed_orders"`
	TotalCustomers  int64                        `json:"total_customers"`
	TotalRevenue    int64                        `json:"total_revenue"`
	OrdersByStatus  map[models.OrderStatus]int64 `json:"orders_by_status"`
	GeneratedAt     time.Time                    `json:"generated_at"`
}

// StatsService caches dashboard statistics until an order changes.
type StatsService struct {
	store store.Store

	mu         sync.Mutex
	cached     *DashboardStats
	generation uint64
}

// NewStatsService constructs StatsService.
func NewStatsService(s store.Store) *StatsService {
	return &StatsService{store: s}
}

// Get returns the cached statistics, recomputing them after an
// invalidation.
func (s *StatsService) Get(ctx context.Context) (DashboardStats, error) {
	s.mu.Lock()
	if s.cached != nil {
		stats := s.cached.clone()
		s.mu.Unlock()
		return stats, nil
	}
	generation := s.generation
	s.mu.Unlock()

	stats, err := s.compute(ctx)
	if err != nil {
		return DashboardStats{}, err
	}

	s.mu.Lock()
	// a change that arrived while computing makes this result stale
	if s.generation == generation {
		cached := stats.clone()
		s.cached = &cached
	}
	s.mu.Unlock()
	return stats, nil
}

func (d DashboardStats) clone() DashboardStats {
	byStatus := make(map[models.OrderStatus]int64, len(d.OrdersByStatus))
	for status, n := range d.OrdersByStatus {
		byStatus[status] = n
	}
	d.OrdersByStatus = byStatus
	return d
}

// Invalidate drops the cached statistics. Callers that add customers must
// invalidate, since the change feed only carries order changes.
func (s *StatsService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.generation++
	s.mu.Unlock()
}

// Watch invalidates the cache on every orders change until ctx is done.
func (s *StatsService) Watch(ctx context.Context, broker realtime.Broker) error {
	sub, err := broker.Subscribe(ctx, realtime.TableOrders)
	if err != nil {
		return err
	}

	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-sub.Events():
				if !ok {
					log.Println("[Stats] change feed closed")
					return
				}
				s.Invalidate()
			}
		}
	}()
	return nil
}

func (s *StatsService) compute(ctx context.Context) (DashboardStats, error) {
	totals, err := s.store.OrderTotals(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	customers, err := s.store.CountCustomers(ctx)
	if err != nil {
		return DashboardStats{}, err
	}

	stats := DashboardStats{
		TotalOrders:     totals.Count,
		CompletedOrders: totals.ByStatus[models.StatusDelivered],
		TotalCustomers:  customers,
		TotalRevenue:    totals.DeliveredRevenue,
		OrdersByStatus:  make(map[models.OrderStatus]int64, len(models.OrderStatuses)),
		GeneratedAt:     time.Now().UTC(),
	}
	for _, status := range models.OrderStatuses {
		n := totals.ByStatus[status]
		stats.OrdersByStatus[status] = n
		if status.Pending() {
			stats.PendingOrders += n
		}
	}
	return stats, nil
}
