package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/etailor/internal/apperrors"
	"github.com/example/etailor/internal/customization"
	"github.com/example/etailor/internal/models"
	"github.com/example/etailor/internal/realtime"
	"github.com/example/etailor/internal/store"
)

// DefaultLeadTime is added to the order date to estimate delivery.
const DefaultLeadTime = 10 * 24 * time.Hour

// StatusPolicy decides which status changes an admin may make.
type StatusPolicy string

const (
	// StatusPolicyStrict follows the forward-only lifecycle with
	// cancellation from any non-terminal status.
	StatusPolicyStrict StatusPolicy = "strict"
	// StatusPolicyPermissive allows any change between two distinct known
	// statuses.
	StatusPolicyPermissive StatusPolicy = "permissive"
)

// ParseStatusPolicy maps a configuration value to a policy. Anything other
// than "permissive" is strict.
func ParseStatusPolicy(value string) StatusPolicy {
	if strings.EqualFold(strings.TrimSpace(value), string(StatusPolicyPermissive)) {
		return StatusPolicyPermissive
	}
	return StatusPolicyStrict
}

// Allows reports whether from → to is permitted.
func (p StatusPolicy) Allows(from, to models.OrderStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if p == StatusPolicyPermissive {
		return from != to
	}
	return from.CanTransitionTo(to)
}

// OrderNotifier is told about order activity after it is committed.
type OrderNotifier interface {
	NotifyNewOrder(ctx context.Context, order models.Order) error
	NotifyStatusChange(ctx context.Context, order models.Order, previous models.OrderStatus) error
}

// OrderNumbers issues ORD-<unix millis> numbers that strictly increase
// within the process, even for orders placed in the same millisecond.
type OrderNumbers struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewOrderNumbers returns a generator on the wall clock.
func NewOrderNumbers() *OrderNumbers {
	return &OrderNumbers{now: time.Now}
}

// Next returns the next order number.
func (g *OrderNumbers) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("ORD-%d", ms)
}

// OrderOptions tunes OrderService.
type OrderOptions struct {
	LeadTime time.Duration
	Policy   StatusPolicy
}

// OrderService creates orders from customization snapshots and governs
// their status lifecycle.
type OrderService struct {
	store     store.Store
	publisher realtime.Publisher
	notifier  OrderNotifier
	numbers   *OrderNumbers
	leadTime  time.Duration
	policy    StatusPolicy
	now       func() time.Time
}

// NewOrderService constructs OrderService. publisher and notifier may be nil.
func NewOrderService(s store.Store, publisher realtime.Publisher, notifier OrderNotifier, opts OrderOptions) *OrderService {
	if opts.LeadTime <= 0 {
		opts.LeadTime = DefaultLeadTime
	}
	if opts.Policy == "" {
		opts.Policy = StatusPolicyStrict
	}
	return &OrderService{
		store:     s,
		publisher: publisher,
		notifier:  notifier,
		numbers:   NewOrderNumbers(),
		leadTime:  opts.LeadTime,
		policy:    opts.Policy,
		now:       time.Now,
	}
}

// Policy returns the status policy in force.
func (s *OrderService) Policy() StatusPolicy {
	return s.policy
}

// Submit places the order described by session and resets the session once
// the order is committed. A failed submission leaves the session untouched.
func (s *OrderService) Submit(ctx context.Context, actor *models.Identity, session *customization.Session, details models.CustomerDetails) (models.Order, error) {
	if actor == nil {
		return models.Order{}, apperrors.ErrUnauthenticated
	}

	snap, err := session.Snapshot()
	if err != nil {
		return models.Order{}, err
	}

	order, err := s.CreateOrder(ctx, actor, snap, details)
	if err != nil {
		return models.Order{}, err
	}

	session.Reset()
	return order, nil
}

// CreateOrder persists one order with its item from a frozen snapshot. The
// total is taken from the snapshot and never recomputed.
func (s *OrderService) CreateOrder(ctx context.Context, actor *models.Identity, snap customization.Snapshot, details models.CustomerDetails) (models.Order, error) {
	if actor == nil {
		return models.Order{}, apperrors.ErrUnauthenticated
	}

	profile, err := s.store.GetProfile(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return models.Order{}, apperrors.ErrUnauthenticated
		}
		return models.Order{}, err
	}

	details = trimDetails(details.WithDefaults(profile))
	if err := models.Validate(details); err != nil {
		return models.Order{}, err
	}

	if snap.Quantity < 1 {
		return models.Order{}, apperrors.NewValidationError(nil, apperrors.FieldError{Field: "quantity", Message: "must be at least 1"})
	}

	if snap.DesignRef != nil {
		if _, err := s.store.GetDesignUpload(ctx, actor.ID, *snap.DesignRef); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return models.Order{}, apperrors.NewValidationError(nil, apperrors.FieldError{
					Field: "design_ref", Message: "is not an uploaded design",
				})
			}
			return models.Order{}, err
		}
	}

	orderDate := s.now().UTC()
	estimated := orderDate.Add(s.leadTime)
	item := models.OrderItem{
		ProductID:      snap.Product.ID,
		FabricID:       snap.Fabric.ID,
		MeasurementID:  snap.Measurement.ID,
		ProductName:    snap.Product.Name,
		FabricName:     snap.Fabric.Name,
		Quantity:       snap.Quantity,
		UnitPrice:      snap.UnitPrice,
		TotalPrice:     snap.TotalPrice,
		Customizations: snap.Options.Clone(),
		Measurements:   snap.Measurement.Freeze(),
	}
	if snap.DesignRef != nil {
		ref := *snap.DesignRef
		item.DesignUploadURL = &ref
	}

	order := models.Order{
		UserID:            actor.ID,
		Status:            models.StatusConfirmed,
		CustomerName:      details.Name,
		CustomerEmail:     details.Email,
		CustomerPhone:     details.Phone,
		ShippingAddress:   details.Address,
		Notes:             details.Notes,
		OrderDate:         orderDate,
		EstimatedDelivery: &estimated,
		Items:             []models.OrderItem{item},
	}
	order.TotalAmount = order.ItemsTotal()

	// another instance may have issued the same number in the same millisecond
	for attempt := 0; ; attempt++ {
		order.OrderNumber = s.numbers.Next()
		err = s.store.CreateOrder(ctx, &order)
		if err == nil || !errors.Is(err, apperrors.ErrConflict) || attempt == 2 {
			break
		}
	}
	if err != nil {
		return models.Order{}, err
	}

	log.Printf("[Order] %s placed by %s for %d", order.OrderNumber, actor.Email, order.TotalAmount)

	s.publish(ctx, realtime.NewEvent(realtime.TableOrders, realtime.EventInsert, order.ID))
	for _, it := range order.Items {
		s.publish(ctx, realtime.NewEvent(realtime.TableOrderItems, realtime.EventInsert, it.ID))
	}
	s.notify(func(ctx context.Context, n OrderNotifier) error { return n.NotifyNewOrder(ctx, order) })

	return order, nil
}

func trimDetails(d models.CustomerDetails) models.CustomerDetails {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Address = strings.TrimSpace(d.Address)
	d.Notes = strings.TrimSpace(d.Notes)
	return d
}

// UpdateStatus moves an order to status. Only admins may do this. Reaching
// delivered stamps the actual delivery time.
func (s *OrderService) UpdateStatus(ctx context.Context, actor *models.Identity, orderID uuid.UUID, status models.OrderStatus) (models.Order, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Order{}, err
	}
	if !status.Valid() {
		return models.Order{}, apperrors.NewValidationError(nil, apperrors.FieldError{
			Field: "status", Message: fmt.Sprintf("%q is not a known status", status),
		})
	}

	var previous models.OrderStatus
	order, err := s.store.UpdateOrder(ctx, orderID, func(o *models.Order) error {
		previous = o.Status
		if !s.policy.Allows(o.Status, status) {
			return fmt.Errorf("%s → %s: %w", o.Status, status, apperrors.ErrIllegalTransition)
		}
		o.Status = status
		if status == models.StatusDelivered {
			delivered := s.now().UTC()
			o.ActualDelivery = &delivered
		}
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	log.Printf("[Order] %s %s → %s by %s", order.OrderNumber, previous, status, actor.Email)

	s.publish(ctx, realtime.NewEvent(realtime.TableOrders, realtime.EventUpdate, order.ID))
	s.notify(func(ctx context.Context, n OrderNotifier) error { return n.NotifyStatusChange(ctx, order, previous) })

	return order, nil
}

// OrderQuery narrows ListOrders beyond the owner.
type OrderQuery struct {
	Status models.OrderStatus
	Search string
	Limit  int
	Offset int
}

// ListOrders returns orders newest-first with their items. A nil userID
// lists every order and requires admin; customers may only list their own.
func (s *OrderService) ListOrders(ctx context.Context, actor *models.Identity, userID *uuid.UUID, q OrderQuery) ([]models.Order, int64, error) {
	if actor == nil {
		return nil, 0, apperrors.ErrUnauthenticated
	}
	if userID == nil && !actor.IsAdmin() {
		return nil, 0, apperrors.ErrForbidden
	}
	if userID != nil && *userID != actor.ID && !actor.IsAdmin() {
		return nil, 0, apperrors.ErrForbidden
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, 0, apperrors.NewValidationError(nil, apperrors.FieldError{Field: "status", Message: "is not a known status"})
	}

	return s.store.ListOrders(ctx, store.OrderFilter{
		UserID: userID,
		Status: q.Status,
		Search: q.Search,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
}

// GetOrder returns one order to its owner or to an admin. Other callers see
// NotFound.
func (s *OrderService) GetOrder(ctx context.Context, actor *models.Identity, id uuid.UUID) (models.Order, error) {
	if actor == nil {
		return models.Order{}, apperrors.ErrUnauthenticated
	}

	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if order.UserID != actor.ID && !actor.IsAdmin() {
		return models.Order{}, fmt.Errorf("order %s: %w", id, apperrors.ErrNotFound)
	}
	return order, nil
}

func requireAdmin(actor *models.Identity) error {
	if actor == nil {
		return apperrors.ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}
	return nil
}

func (s *OrderService) publish(ctx context.Context, ev realtime.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.Printf("[Order] publish %s %s failed: %v", ev.Table, ev.Type, err)
	}
}

// notify runs fn in the background; notification failures never affect the
// committed order.
func (s *OrderService) notify(fn func(context.Context, OrderNotifier) error) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := fn(ctx, s.notifier); err != nil {
			log.Printf("[Order] notification failed: %v", err)
		}
	}()
}
