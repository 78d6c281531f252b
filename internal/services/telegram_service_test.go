package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/etailor/internal/models"
)

func TestTelegramNotifyNewOrder(t *testing.T) {
	received := make(chan telegramMessage, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		var msg telegramMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		received <- msg
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegramService("TOKEN", "42")
	tg.apiBase = srv.URL

	estimated := time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC)
	order := models.Order{
		OrderNumber:       "ORD-1700000000000",
		CustomerName:      "Asha <Rao>",
		CustomerPhone:     "9876543210",
		TotalAmount:       3749,
		EstimatedDelivery: &estimated,
		Items: []models.OrderItem{{
			ProductName: "Classic Dress Shirt", FabricName: "Egyptian Cotton",
			Quantity: 1, UnitPrice: 3749, TotalPrice: 3749,
		}},
	}
	require.NoError(t, tg.NotifyNewOrder(context.Background(), order))

	msg := <-received
	assert.Equal(t, "42", msg.ChatID)
	assert.Equal(t, "HTML", msg.ParseMode)
	assert.Contains(t, msg.Text, "ORD-1700000000000")
	assert.Contains(t, msg.Text, "₹3,749")
	assert.Contains(t, msg.Text, "Asha &lt;Rao&gt;")
	assert.Contains(t, msg.Text, "11 Feb 2026")
}

func TestTelegramDisabledIsNoop(t *testing.T) {
	tg := NewTelegramService("", "")
	assert.False(t, tg.Enabled())
	assert.NoError(t, tg.NotifyStatusChange(context.Background(), models.Order{}, models.StatusConfirmed))
}

func TestTelegramReportsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tg := NewTelegramService("TOKEN", "42")
	tg.apiBase = srv.URL
	err := tg.NotifyStatusChange(context.Background(), models.Order{OrderNumber: "ORD-1", Status: models.StatusShipped}, models.StatusInStitching)
	assert.Error(t, err)
}
