package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the delivery lifecycle position of an order.
type OrderStatus string

const (
	StatusConfirmed   OrderStatus = "confirmed"
	StatusInStitching OrderStatus = "in-stitching"
	StatusShipped     OrderStatus = "shipped"
	StatusDelivered   OrderStatus = "delivered"
	StatusCancelled   OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusConfirmed,
	StatusInStitching,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// orderTransitions is the forward-only lifecycle. Cancellation is reachable
// from every non-terminal status.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusConfirmed:   {StatusInStitching, StatusCancelled},
	StatusInStitching: {StatusShipped, StatusCancelled},
	StatusShipped:     {StatusDelivered, StatusCancelled},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Pending reports whether the order is still being worked on.
func (s OrderStatus) Pending() bool {
	return s == StatusConfirmed || s == StatusInStitching
}

// Order is a submitted customization. Only Status, ActualDelivery and
// UpdatedAt change after creation.
type Order struct {
	BaseModel
	UserID            uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	OrderNumber       string      `gorm:"uniqueIndex" json:"order_number"`
	Status            OrderStatus `gorm:"type:varchar(20);index" json:"status"`
	TotalAmount       int64       `json:"total_amount"`
	CustomerName      string      `json:"customer_name"`
	CustomerEmail     string      `json:"customer_email"`
	CustomerPhone     string      `json:"customer_phone"`
	ShippingAddress   string      `json:"shipping_address"`
	Notes             string      `json:"notes"`
	OrderDate         time.Time   `json:"order_date"`
	EstimatedDelivery *time.Time  `json:"estimated_delivery"`
	ActualDelivery    *time.Time  `json:"actual_delivery"`
	Items             []OrderItem `gorm:"constraint:OnDelete:CASCADE;" json:"items"`
}

// OrderItem freezes one tailored garment as it was quoted.
type OrderItem struct {
	BaseModel
	OrderID         uuid.UUID        `gorm:"type:uuid;index" json:"order_id"`
	ProductID       uuid.UUID        `gorm:"type:uuid" json:"product_id"`
	FabricID        uuid.UUID        `gorm:"type:uuid" json:"fabric_id"`
	MeasurementID   uuid.UUID        `gorm:"type:uuid" json:"measurement_id"`
	ProductName     string           `json:"product_name"`
	FabricName      string           `json:"fabric_name"`
	Quantity        int              `json:"quantity"`
	UnitPrice       int64            `json:"unit_price"`
	TotalPrice      int64            `json:"total_price"`
	Customizations  StyleOptions     `gorm:"type:jsonb;serializer:json" json:"customizations"`
	Measurements    BodyMeasurements `gorm:"type:jsonb;serializer:json" json:"measurements"`
	DesignUploadURL *string          `json:"design_upload_url"`
}

// ItemsTotal sums the frozen line totals.
func (o Order) ItemsTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.TotalPrice
	}
	return total
}

// DesignUpload records a durably stored design artifact. Only URLs recorded
// here may be attached to a customization.
type DesignUpload struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	URL         string    `gorm:"uniqueIndex" json:"url"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
}
