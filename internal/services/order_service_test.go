package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/etailor/internal/apperrors"
	"github.com/example/etailor/internal/customization"
	"github.com/example/etailor/internal/models"
	"github.com/example/etailor/internal/realtime"
)

func TestSubmitFreezesQuotedPrice(t *testing.T) {
	env := newTestEnv(t, StatusPolicyStrict)
	ctx := context.Background()

	s := customization.NewSession(env.catalog)
	require.NoError(t, s.SelectProduct(env.product.ID))
	require.NoError(t, s.SelectFabric(env.standard.ID))
	price, _ := s.CurrentPrice()
	assert.Equal(t, int64(2499), price)

	require.NoError(t, s.SelectFabric(env.premium.ID))
	price, _ = s.CurrentPrice()
	assert.Equal(t, int64(3749), price)

	require.NoError(t, s.SetStyleOption(models.StyleCollar, "Cutaway"))
	require.NoError(t, s.SelectMeasurementProfile(env.measures))

	order, err := env.orders.Submit(ctx, env.customer, s, models.CustomerDetails{Notes: "  gift wrap  "})
	require.NoError(t, err)

	assert.Equal(t, models.StatusConfirmed, order.Status)
	assert.Equal(t, int64(3749), order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(3749), order.Items[0].TotalPrice)
	assert.Equal(t, order.ItemsTotal(), order.TotalAmount)
	assert.Equal(t, "Cutaway", order.Items[0].Customizations[models.StyleCollar])
	assert.Equal(t, env.measures.ID, order.Items[0].MeasurementID)
	assert.Regexp(t, `^ORD-\d+$`, order.OrderNumber)

	assert.Equal(t, "Asha Rao", order.CustomerName, "contact defaults from the profile")
	assert.Equal(t, "12 MG Road, Bengaluru", order.ShippingAddress)
	assert.Equal(t, "gift wrap", order.Notes)

	require.NotNil(t, order.EstimatedDelivery)
	assert.Equal(t, DefaultLeadTime, order.EstimatedDelivery.Sub(order.OrderDate))
	assert.Nil(t, order.ActualDelivery)

	assert.Equal(t, customization.StepProduct, s.Step(), "session is reset after commit")

	stored, err := env.orders.GetOrder(ctx, env.customer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3749), stored.TotalAmount)
}

func TestSubmitIncompleteSessionIsKept(t *testing.T) {
	env := newTestEnv(t, StatusPolicyStrict)

	s := customization.NewSession(env.catalog)
	require.NoError(t, s.SelectProduct(env.product.ID))
	require.NoError(t, s.SelectFabric(env.premium.ID))

	_, err := env.orders.Submit(context.Background(), env.customer, s, models.CustomerDetails{})
	assert.ErrorIs(t, err, apperrors.ErrIncompleteSession)
	assert.Equal(t, customization.StepMeasurement, s.Step())

	orders, total, err := env.orders.ListOrders(context.Background(), env.admin, nil, OrderQuery{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)
}

func TestCreateOrderRequiresUser(t *testing.T) {
	env := newTestEnv(t, StatusPolicyStrict)
	snap, err := env.submittable(t).Snapshot()
	require.NoError(t, err)

	_, err = env.orders.CreateOrder(context.Background(), nil, snap, models.CustomerDetails{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	stranger := &models.Identity{ID: uuid.New(), Email: "ghost@example.com", Role: models.RoleCustomer}
	_, err = env.orders.CreateOrder(context.Background(), stranger, snap, models.CustomerDetails{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestCreateOrderValidatesContact(t *testing.T) {
	env := newTestEnv(t, StatusPolicyStrict)
	s := env.submittable(t)

	_, err := env.orders.Submit(context.Background(), env.customer, s, models.CustomerDetails{
		Email: "not-an-email", Phone: "12345",
	})
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.HasField("email"))
	assert.True(t, verr.HasField("phone"))
	assert.False(t, verr.HasField("name"))
	assert.True(t, s.CanSubmit(), "failed submission keeps the session")
}

func TestCreateOrderRequiresUploadedDesign(t *testing.T) {
	env := newTestEnv(t, StatusPolicyStrict)
	ctx := context.Background()

	s := env.submittable(t)
	require.NoError(t, s.AttachDesign("https://cdn.example.com/unknown.png"))
	_, err := env.orders.Submit(ctx, env.customer, s, models.CustomerDetails{})
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.HasField("design_ref"))

	upload := models.DesignUpload{UserID: env.customer.ID, URL: "https://cdn.example.com/mine.png"}
	require.NoError(t, env.store.CreateDesignUpload(ctx, &upload))
	require.NoError(t, s.AttachDesign(upload.URL))

	order, err := env.orders.Submit(ctx, env.customer, s, models.CustomerDetails{})
	require.NoError(t, err)
	require.NotNil(t, order.Items[0].DesignUploadURL)
	assert.Equal(t, upload.URL, *order.Items[0].DesignUploadURL)
}

func TestUpdateStatusToDelivered(t *testing.T) {
	env := newTestEnv(t, StatusPolicyStrict)
	ctx := context.Background()
	placed := env.placeOrder(t)

	var order models.Order
	var err error
	for _, next := range []models.OrderStatus{models.StatusInStitching, models.StatusShipped, models.StatusDelivered} {
		order, err = env.orders.UpdateStatus(ctx, env.admin, placed.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, order.Status)
	}

	require.NotNil(t, order.ActualDelivery)
	assert.False(t, order.UpdatedAt.Before(placed.UpdatedAt))

	// nothing but status, actual delivery and updated_at moved
	order.Status = placed.Status
	order.ActualDelivery = nil
	order.UpdatedAt = placed.UpdatedAt
	assert.Equal(t, placed, order)
}

func TestUpdateStatusStrictPolicy(t *testing.T) {
	env := newTestEnv(t, StatusPolicyStrict)
	ctx := context.Background()
	order := env.placeOrder(t)

	_, err := env.orders.UpdateStatus(ctx, env.admin, order.ID, models.StatusShipped)
	assert.ErrorIs(t, err, apperrors.ErrIllegalTransition)

	_, err = env.orders.UpdateStatus(ctx, env.admin, order.ID, models.StatusConfirmed)
	assert.ErrorIs(t, err, apperrors.ErrIllegalTransition)

	_, err = env.orders.UpdateStatus(ctx, env.admin, order.ID, models.StatusCancelled)
	require.NoError(t, err)

	_, err = env.orders.UpdateStatus(ctx, env.admin, order.ID, models.StatusInStitching)
	assert.ErrorIs(t, err, apperrors.ErrIllegalTransition, "cancelled is terminal")

	_, err = env.orders.UpdateStatus(ctx, env.admin, order.ID, models.OrderStatus("lost"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	stored, err := env.orders.GetOrder(ctx, env.admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)
}

func TestUpdateStatusPermissivePolicy(t *testing.T) {
	env := newTestEnv(t, StatusPolicyPermissive)
	ctx := context.Background()
	order := env.placeOrder(t)

	updated, err := env.orders.UpdateStatus(ctx, env.admin, order.ID, models.StatusDelivered)
	require.NoError(t, err)
	assert.NotNil(t, updated.ActualDelivery)

	_, err = env.orders.UpdateStatus(ctx, env.admin, order.ID, models.StatusConfirmed)
	require.NoError(t, err)

	_, err = env.orders.UpdateStatus(ctx, env.admin, order.ID, models.StatusConfirmed)
	assert.ErrorIs(t, err, apperrors.ErrIllegalTransition, "no-op moves are rejected")
}

func TestUpdateStatusAuthorization(t *testing.T) {
	env := newTestEnv(t, StatusPolicyStrict)
	ctx := context.Background()
	order := env.placeOrder(t)

	_, err := env.orders.UpdateStatus(ctx, env.customer, order.ID, models.StatusInStitching)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = env.orders.UpdateStatus(ctx, nil, order.ID, models.StatusInStitching)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = env.orders.UpdateStatus(ctx, env.admin, uuid.New(), models.StatusInStitching)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListOrdersScoping(t *testing.T) {
	env := newTestEnv(t, StatusPolicyStrict)
	ctx := context.Background()
	first := env.placeOrder(t)
	second := env.placeOrder(t)

	_, _, err := env.orders.ListOrders(ctx, env.customer, nil, OrderQuery{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	other := uuid.New()
	_, _, err = env.orders.ListOrders(ctx, env.customer, &other, OrderQuery{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	mine, total, err := env.orders.ListOrders(ctx, env.customer, &env.customer.ID, OrderQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID, "newest first")
	assert.Equal(t, first.ID, mine[1].ID)
	assert.Len(t, mine[0].Items, 1)

	all, _, err := env.orders.ListOrders(ctx, env.admin, nil, OrderQuery{Status: models.StatusConfirmed})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = env.orders.GetOrder(ctx, &models.Identity{ID: uuid.New(), Role: models.RoleCustomer}, first.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOrderChangesArePublishedAndNotified(t *testing.T) {
	env := newTestEnv(t, StatusPolicyStrict)
	ctx := context.Background()

	sub, err := env.broker.Subscribe(ctx, realtime.TableOrders)
	require.NoError(t, err)
	defer sub.Close()

	order := env.placeOrder(t)
	select {
	case ev := <-sub.Events():
		assert.Equal(t, order.ID, ev.ID)
		assert.Equal(t, realtime.EventInsert, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("no insert event")
	}

	select {
	case n := <-env.notifier.calls:
		assert.Equal(t, "new", n.kind)
		assert.Equal(t, order.OrderNumber, n.order.OrderNumber)
	case <-time.After(time.Second):
		t.Fatal("admin not notified")
	}

	_, err = env.orders.UpdateStatus(ctx, env.admin, order.ID, models.StatusInStitching)
	require.NoError(t, err)
	select {
	case ev := <-sub.Events():
		assert.Equal(t, realtime.EventUpdate, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("no update event")
	}
	select {
	case n := <-env.notifier.calls:
		assert.Equal(t, models.StatusConfirmed, n.previous)
	case <-time.After(time.Second):
		t.Fatal("status change not notified")
	}
}

func TestOrderNumbersStrictlyIncrease(t *testing.T) {
	clock := time.UnixMilli(1_700_000_000_000)
	g := &OrderNumbers{now: func() time.Time { return clock }}

	assert.Equal(t, "ORD-1700000000000", g.Next())
	assert.Equal(t, "ORD-1700000000001", g.Next())

	clock = clock.Add(-time.Minute)
	assert.Equal(t, "ORD-1700000000002", g.Next(), "clock going backwards never repeats")

	clock = time.UnixMilli(1_800_000_000_000)
	assert.Equal(t, "ORD-1800000000000", g.Next())
}

func TestParseStatusPolicy(t *testing.T) {
	assert.Equal(t, StatusPolicyPermissive, ParseStatusPolicy(" Permissive "))
	assert.Equal(t, StatusPolicyStrict, ParseStatusPolicy(""))
	assert.Equal(t, StatusPolicyStrict, ParseStatusPolicy("anything"))
}

func TestOrderKeepsMeasurementsAsPlaced(t *testing.T) {
	env := newTestEnv(t, StatusPolicyStrict)
	ctx := context.Background()
	placed := env.placeOrder(t)
	require.Len(t, placed.Items, 1)
	assert.Equal(t, env.measures.Freeze(), placed.Items[0].Measurements)

	chest := 120.0
	_, err := NewMeasurementService(env.store).Update(ctx, env.customer.ID, env.measures.ID, MeasurementPatch{Chest: &chest})
	require.NoError(t, err)

	stored, err := env.orders.GetOrder(ctx, env.customer, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, 96.0, stored.Items[0].Measurements.Chest)
	assert.Equal(t, "Everyday", stored.Items[0].Measurements.Nickname)
}
