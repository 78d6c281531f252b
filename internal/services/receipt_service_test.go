package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/etailor/internal/models"
)

func TestReceiptRender(t *testing.T) {
	env := newTestEnv(t, StatusPolicyStrict)
	order := env.placeOrder(t)
	order.Items[0].Customizations = models.StyleOptions{models.StyleFit: "Slim Fit", models.StyleCollar: "Band"}

	pdf, err := NewReceiptService("").Render(order)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	assert.Equal(t, "etailor:order:"+order.OrderNumber, TrackingReference(order))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "₹999", FormatPrice(999))
	assert.Equal(t, "₹3,749", FormatPrice(3749))
	assert.Equal(t, "₹1,234,567", FormatPrice(1234567))
	assert.Equal(t, "Rs. 3,749", receiptAmount(3749))
	assert.Equal(t, "collar: Band, fit: Slim Fit",
		describeStyles(models.StyleOptions{models.StyleFit: "Slim Fit", models.StyleCollar: "Band"}))
}
