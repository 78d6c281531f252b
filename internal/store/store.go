// Package store is the persistence collaborator. A Store is either live
// (postgres through gorm) or the in-memory fallback used when no database is
// reachable; the choice is made once at startup.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/example/etailor/internal/models"
)

// OrderFilter narrows ListOrders. Zero values mean "no restriction".
type OrderFilter struct {
	UserID *uuid.UUID
	Status models.OrderStatus
	Search string
	Limit  int
	Offset int
}

// OrderTotals aggregates every order for the admin dashboard.
type OrderTotals struct {
	Count            int64
	ByStatus         map[models.OrderStatus]int64
	DeliveredRevenue int64
}

// Store is the capability set the services depend on. Every write returns
// the written row through its pointer argument.
type Store interface {
	// ListProducts returns every product with its eligible fabrics,
	// including inactive ones.
	ListProducts(ctx context.Context) ([]models.Product, error)
	// SeedCatalog inserts products and their fabrics when the catalog is
	// empty.
	SeedCatalog(ctx context.Context, products []models.Product) error

	CreateProfile(ctx context.Context, profile *models.Profile) error
	GetProfile(ctx context.Context, id uuid.UUID) (models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	ListCustomers(ctx context.Context) ([]models.CustomerSummary, error)
	CountCustomers(ctx context.Context) (int64, error)

	ListMeasurements(ctx context.Context, userID uuid.UUID) ([]models.MeasurementProfile, error)
	GetMeasurement(ctx context.Context, userID, id uuid.UUID) (models.MeasurementProfile, error)
	CreateMeasurement(ctx context.Context, m *models.MeasurementProfile) error
	SaveMeasurement(ctx context.Context, m *models.MeasurementProfile) error
	DeleteMeasurement(ctx context.Context, userID, id uuid.UUID) error

	CreateDesignUpload(ctx context.Context, upload *models.DesignUpload) error
	GetDesignUpload(ctx context.Context, userID uuid.UUID, url string) (models.DesignUpload, error)

	// CreateOrder writes the order and all of its items in one atomic step.
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (models.Order, error)
	// ListOrders returns one page of matching orders newest-first with their
	// items, and the number of matches before paging.
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	// UpdateOrder loads the order under a row lock, applies mutate and saves
	// the result. Nothing is written when mutate fails.
	UpdateOrder(ctx context.Context, id uuid.UUID, mutate func(*models.Order) error) (models.Order, error)
	OrderTotals(ctx context.Context) (OrderTotals, error)

	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*GormStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
