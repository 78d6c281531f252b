package models

import (
	"strings"

	"github.com/google/uuid"
)

// MeasurementProfile is a named set of body measurements in centimetres.
type MeasurementProfile struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Nickname  string    `json:"nickname" validate:"required,max=80"`
	Neck      float64   `json:"neck" validate:"gte=10,lte=50"`
	Chest     float64   `json:"chest" validate:"gte=50,lte=200"`
	Waist     float64   `json:"waist" validate:"gte=50,lte=180"`
	Hips      float64   `json:"hips" validate:"gte=60,lte=200"`
	ArmLength float64   `json:"arm_length" validate:"gte=40,lte=100"`
	Height    float64   `json:"height" validate:"gte=100,lte=220"`
	Shoulder  float64   `json:"shoulder" validate:"gte=30,lte=80"`
}

// BodyMeasurements is the copy of a profile frozen onto an order item, so
// later edits to the profile do not change what gets tailored.
type BodyMeasurements struct {
	Nickname  string  `json:"nickname"`
	Neck      float64 `json:"neck"`
	Chest     float64 `json:"chest"`
	Waist     float64 `json:"waist"`
	Hips      float64 `json:"hips"`
	ArmLength float64 `json:"arm_length"`
	Height    float64 `json:"height"`
	Shoulder  float64 `json:"shoulder"`
}

// Freeze copies the measured values.
func (m MeasurementProfile) Freeze() BodyMeasurements {
	return BodyMeasurements{
		Nickname:  m.Nickname,
		Neck:      m.Neck,
		Chest:     m.Chest,
		Waist:     m.Waist,
		Hips:      m.Hips,
		ArmLength: m.ArmLength,
		Height:    m.Height,
		Shoulder:  m.Shoulder,
	}
}

// TableName keeps the historical table name.
func (MeasurementProfile) TableName() string {
	return "measurements"
}

// Validate checks the nickname and every range invariant.
func (m MeasurementProfile) Validate() error {
	m.Nickname = strings.TrimSpace(m.Nickname)
	return Validate(m)
}
