package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/example/etailor/internal/catalog"
	"github.com/example/etailor/internal/customization"
	"github.com/example/etailor/internal/models"
	"github.com/example/etailor/internal/realtime"
	"github.com/example/etailor/internal/store"
)

type testEnv struct {
	store    *store.MemoryStore
	catalog  *catalog.Store
	broker   *realtime.LocalBroker
	notifier *recordingNotifier
	orders   *OrderService

	customer *models.Identity
	admin    *models.Identity

	product  models.Product
	standard models.Fabric
	premium  models.Fabric
	measures models.MeasurementProfile
}

func newTestEnv(t *testing.T, policy StatusPolicy) *testEnv {
	t.Helper()
	ctx := context.Background()

	env := &testEnv{
		store:    store.NewMemoryStore(),
		broker:   realtime.NewLocalBroker(),
		notifier: newRecordingNotifier(),
	}
	t.Cleanup(func() { env.broker.Close() })

	env.standard = models.Fabric{Name: "Standard Cotton", PriceMultiplier: decimal.RequireFromString("1.0"), IsActive: true}
	env.standard.ID = uuid.New()
	env.premium = models.Fabric{Name: "Premium Linen", PriceMultiplier: decimal.RequireFromString("1.5"), IsActive: true}
	env.premium.ID = uuid.New()
	env.product = models.Product{
		Name: "Tailored Shirt", Category: models.CategoryShirt, BasePrice: 2499, IsActive: true,
		Fabrics: []models.Fabric{env.standard, env.premium},
	}
	env.product.ID = uuid.New()
	require.NoError(t, env.store.SeedCatalog(ctx, []models.Product{env.product}))

	var err error
	env.catalog, err = catalog.Load(ctx, env.store)
	require.NoError(t, err)

	customer := models.Profile{
		Email: "asha@example.com", FullName: "Asha Rao", Phone: "9876543210",
		Address: "12 MG Road, Bengaluru", Role: models.RoleCustomer,
	}
	require.NoError(t, env.store.CreateProfile(ctx, &customer))
	env.customer = &models.Identity{ID: customer.ID, Email: customer.Email, Role: customer.Role}

	admin := models.Profile{Email: "admin@etailor.com", FullName: "Admin", Role: models.RoleAdmin}
	require.NoError(t, env.store.CreateProfile(ctx, &admin))
	env.admin = &models.Identity{ID: admin.ID, Email: admin.Email, Role: admin.Role}

	env.measures = models.MeasurementProfile{
		UserID: customer.ID, Nickname: "Everyday", Neck: 38, Chest: 96, Waist: 82,
		Hips: 98, ArmLength: 62, Height: 176, Shoulder: 45,
	}
	require.NoError(t, env.store.CreateMeasurement(ctx, &env.measures))

	env.orders = NewOrderService(env.store, env.broker, env.notifier, OrderOptions{Policy: policy})
	return env
}

// submittable returns a session ready for checkout with the premium fabric.
func (e *testEnv) submittable(t *testing.T) *customization.Session {
	t.Helper()
	s := customization.NewSession(e.catalog)
	require.NoError(t, s.SelectProduct(e.product.ID))
	require.NoError(t, s.SelectFabric(e.premium.ID))
	require.NoError(t, s.SelectMeasurementProfile(e.measures))
	return s
}

func (e *testEnv) placeOrder(t *testing.T) models.Order {
	t.Helper()
	order, err := e.orders.Submit(context.Background(), e.customer, e.submittable(t), models.CustomerDetails{})
	require.NoError(t, err)
	return order
}

type notification struct {
	kind     string
	order    models.Order
	previous models.OrderStatus
}

type recordingNotifier struct {
	calls chan notification
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{calls: make(chan notification, 16)}
}

func (n *recordingNotifier) NotifyNewOrder(ctx context.Context, order models.Order) error {
	n.calls <- notification{kind: "new", order: order}
	return nil
}

func (n *recordingNotifier) NotifyStatusChange(ctx context.Context, order models.Order, previous models.OrderStatus) error {
	n.calls <- notification{kind: "status", order: order, previous: previous}
	return nil
}
