package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/dealerhubhq/dealerhub-backend/pkg/enums"
)

// Vehicle is the authoritative inventory record created when a vehicle wizard
// draft is submitted. Drafts live in Redis until then.
type Vehicle struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StockNumber   string              `gorm:"column:stock_number;uniqueIndex:idx_vehicles_stock_number;not null"`
	VIN           string              `gorm:"column:vin;uniqueIndex:idx_vehicles_vin;not null"`
	Year          int                 `gorm:"column:year;not null"`
	Make          string              `gorm:"column:make;not null"`
	Model         string              `gorm:"column:model;not null"`
	Trim          string              `gorm:"column:trim"`
	BodyType      string              `gorm:"column:body_type;not null"`
	Status        enums.VehicleStatus `gorm:"column:status;not null;default:'available'"`
	Condition     string              `gorm:"column:condition"`
	Mileage       int                 `gorm:"column:mileage"`
	OdometerUnit  enums.OdometerUnit  `gorm:"column:odometer_unit;default:'km'"`
	Fuel          string              `gorm:"column:fuel"`
	Transmission  string              `gorm:"column:transmission"`
	Drive         string              `gorm:"column:drive"`
	ExteriorColor string              `gorm:"column:exterior_color"`
	InteriorColor string              `gorm:"column:interior_color"`
	Doors         int                 `gorm:"column:doors"`
	Seats         int                 `gorm:"column:seats"`
	Engine        string              `gorm:"column:engine"`
	PriceCents    int64               `gorm:"column:price_cents;not null"`
	CostCents     int64               `gorm:"column:cost_cents;not null;default:0"`
	ImageURLs     pq.StringArray      `gorm:"column:image_urls;type:text[]"`
	Features      pq.StringArray      `gorm:"column:features;type:text[]"`
	Description   string              `gorm:"column:description"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
