package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	legal := map[OrderStatus][]OrderStatus{
		StatusConfirmed:   {StatusInStitching, StatusCancelled},
		StatusInStitching: {StatusShipped, StatusCancelled},
		StatusShipped:     {StatusDelivered, StatusCancelled},
	}

	for _, from := range OrderStatuses {
		for _, to := range OrderStatuses {
			want := false
			for _, allowed := range legal[from] {
				if allowed == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusShipped.Terminal())
	assert.False(t, OrderStatus("lost").Valid())
}

func TestStyleOptions(t *testing.T) {
	assert.True(t, ValidStyleOption(StyleCollar, "Band"))
	assert.False(t, ValidStyleOption(StyleCollar, "Mandarin"))
	assert.False(t, ValidStyleOption("pocket", "Patch"))
	assert.Len(t, StyleCategories(), 6)

	opts := StyleOptions{StyleFit: "Slim Fit"}
	clone := opts.Clone()
	clone[StyleFit] = "Relaxed Fit"
	assert.Equal(t, "Slim Fit", opts[StyleFit])
}
