package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/etailor/internal/apperrors"
	"github.com/example/etailor/internal/models"
	"github.com/example/etailor/internal/utils"
)

// Demo accounts available in fallback mode.
const (
	DemoAdminEmail       = "admin@etailor.com"
	DemoAdminPassword    = "admin123456"
	DemoCustomerEmail    = "customer@etailor.com"
	DemoCustomerPassword = "customer123"
)

var demoNamespace = uuid.MustParse("5b0c8f0e-7a52-4d8e-9c55-2f0b1f7d6a31")

// DemoID derives a stable id for seeded rows so links survive restarts.
func DemoID(key string) uuid.UUID {
	return uuid.NewSHA1(demoNamespace, []byte(key))
}

const fabricImage = "https://images.pexels.com/photos/1040945/pexels-photo-1040945.jpeg?auto=compress&cs=tinysrgb&w=300"

type demoFabric struct {
	key, name, kind, multiplier, description string
}

type demoProduct struct {
	key         string
	name        string
	category    models.Category
	basePrice   int64
	image       string
	description string
	fabrics     []demoFabric
}

var demoProducts = []demoProduct{
	{"1", "Classic Dress Shirt", models.CategoryShirt, 1299,
		"https://images.pexels.com/photos/996329/pexels-photo-996329.jpeg?auto=compress&cs=tinysrgb&w=600",
		"Premium cotton dress shirt with classic fit and professional styling.",
		[]demoFabric{
			{"f1", "Premium Cotton", "Cotton", "1.0", "Soft, breathable cotton fabric"},
			{"f2", "Egyptian Cotton", "Cotton", "1.3", "Luxurious Egyptian cotton with superior quality"},
		}},
	{"2", "Business Suit", models.CategorySuit, 4999,
		"https://images.pexels.com/photos/1043474/pexels-photo-1043474.jpeg?auto=compress&cs=tinysrgb&w=600",
		"Tailored business suit with modern cut and premium finish.",
		[]demoFabric{
			{"f3", "Wool Blend", "Wool", "1.2", "Durable wool blend for professional wear"},
			{"f4", "Pure Wool", "Wool", "1.5", "Premium pure wool for luxury suits"},
		}},
	{"3", "Evening Dress", models.CategoryDress, 2999,
		"https://images.pexels.com/photos/1021693/pexels-photo-1021693.jpeg?auto=compress&cs=tinysrgb&w=600",
		"Elegant evening dress perfect for special occasions.",
		[]demoFabric{
			{"f5", "Silk", "Silk", "1.8", "Luxurious silk fabric with natural sheen"},
			{"f6", "Satin", "Satin", "1.4", "Smooth satin with elegant drape"},
		}},
	{"4", "Formal Trousers", models.CategoryPants, 1599,
		"https://images.pexels.com/photos/1598505/pexels-photo-1598505.jpeg?auto=compress&cs=tinysrgb&w=600",
		"Perfectly tailored formal trousers for professional wear.",
		[]demoFabric{
			{"f7", "Cotton Blend", "Cotton", "1.0", "Comfortable cotton blend for daily wear"},
			{"f8", "Linen", "Linen", "1.2", "Breathable linen for summer comfort"},
		}},
	{"5", "Blazer Jacket", models.CategoryJacket, 3499,
		"https://images.pexels.com/photos/1043474/pexels-photo-1043474.jpeg?auto=compress&cs=tinysrgb&w=600",
		"Stylish blazer jacket for business and casual occasions.",
		[]demoFabric{
			{"f9", "Tweed", "Wool", "1.3", "Classic tweed for timeless style"},
			{"f10", "Cashmere", "Cashmere", "2.0", "Luxurious cashmere for ultimate comfort"},
		}},
	{"6", "Casual Shirt", models.CategoryShirt, 999,
		"https://images.pexels.com/photos/996329/pexels-photo-996329.jpeg?auto=compress&cs=tinysrgb&w=600",
		"Comfortable casual shirt for everyday wear.",
		[]demoFabric{
			{"f11", "Denim", "Cotton", "1.1", "Durable denim fabric for casual wear"},
			{"f12", "Flannel", "Cotton", "1.2", "Soft flannel for cozy comfort"},
		}},
}

// DemoCatalog returns the storefront's demo products with their fabrics.
func DemoCatalog() []models.Product {
	products := make([]models.Product, 0, len(demoProducts))
	for _, dp := range demoProducts {
		p := models.Product{
			Name:        dp.name,
			Category:    dp.category,
			BasePrice:   dp.basePrice,
			Description: dp.description,
			ImageURL:    dp.image,
			IsActive:    true,
		}
		p.ID = DemoID("product:" + dp.key)

		for _, df := range dp.fabrics {
			f := models.Fabric{
				Name:            df.name,
				Type:            df.kind,
				PriceMultiplier: decimal.RequireFromString(df.multiplier),
				Description:     df.description,
				ImageURL:        fabricImage,
				IsActive:        true,
			}
			f.ID = DemoID("fabric:" + df.key)
			p.Fabrics = append(p.Fabrics, f)
		}
		products = append(products, p)
	}
	return products
}

// Seed loads the demo catalog and the demo accounts into s. Rows that
// already exist are left alone.
func Seed(ctx context.Context, s Store) error {
	if err := s.SeedCatalog(ctx, DemoCatalog()); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	accounts := []struct {
		key, email, password, name, phone, address string
		role                                       models.Role
	}{
		{"admin", DemoAdminEmail, DemoAdminPassword, "eTailor Admin", "9000000000", "eTailor Studio, Bengaluru", models.RoleAdmin},
		{"customer", DemoCustomerEmail, DemoCustomerPassword, "Demo Customer", "9876543210", "12 MG Road, Bengaluru 560001", models.RoleCustomer},
	}

	for _, a := range accounts {
		_, err := s.GetProfileByEmail(ctx, a.email)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		hash, err := utils.HashPassword(a.password)
		if err != nil {
			return err
		}
		profile := models.Profile{
			Email:        a.email,
			FullName:     a.name,
			Phone:        a.phone,
			Address:      a.address,
			Role:         a.role,
			PasswordHash: hash,
		}
		profile.ID = DemoID("profile:" + a.key)
		if err := s.CreateProfile(ctx, &profile); err != nil {
			return fmt.Errorf("seed %s: %w", a.email, err)
		}
		log.Printf("[Store] seeded demo %s account %s", a.role, a.email)
	}
	return nil
}
