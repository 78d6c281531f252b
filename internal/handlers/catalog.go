package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/etailor/internal/apperrors"
	"github.com/example/etailor/internal/catalog"
	"github.com/example/etailor/internal/models"
)

// CatalogHandler serves the read-only product and fabric catalog.
type CatalogHandler struct {
	catalog *catalog.Store
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog *catalog.Store) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListProducts returns active products, optionally narrowed by category.
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	products := h.catalog.ListProducts()

	if category := models.Category(strings.ToLower(c.Query("category"))); category != "" {
		if !category.Valid() {
			return apperrors.NewValidationError(nil, apperrors.FieldError{Field: "category", Message: "is not a known category"})
		}
		filtered := products[:0]
		for _, p := range products {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	return respond(c, fiber.StatusOK, products)
}

// GetProduct returns a single active product by ID.
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	product, err := h.catalog.GetProduct(id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, product)
}

// ListFabrics returns the active fabrics a product can be tailored from.
func (h *CatalogHandler) ListFabrics(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	fabrics, err := h.catalog.ListFabricsFor(id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fabrics)
}

type styleCategory struct {
	Category models.StyleCategory `json:"category"`
	Options  []string             `json:"options"`
}

// StyleOptions lists every style category with its allowed values.
func (h *CatalogHandler) StyleOptions(c *fiber.Ctx) error {
	categories := models.StyleCategories()
	out := make([]styleCategory, 0, len(categories))
	for _, category := range categories {
		out = append(out, styleCategory{Category: category, Options: models.StyleChoices[category]})
	}
	return respond(c, fiber.StatusOK, out)
}
