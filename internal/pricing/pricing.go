// Package pricing derives garment prices from catalog data.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/example/etailor/internal/models"
)

// Price returns basePrice × multiplier rounded half-up to whole units.
func Price(basePrice int64, multiplier decimal.Decimal) int64 {
	return decimal.NewFromInt(basePrice).Mul(multiplier).Round(0).IntPart()
}

// Quote prices product p tailored from fabric f.
func Quote(p models.Product, f models.Fabric) int64 {
	return Price(p.BasePrice, f.PriceMultiplier)
}

// LineTotal is the total for qty garments at unit price.
func LineTotal(unit int64, qty int) int64 {
	return unit * int64(qty)
}
