package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
	"github.com/bob-sav/gym-meat-sub000/pkg/types"
)

// OrderLine captures the product snapshot of each line within an order.
// Product attributes are denormalized so the line survives product deletion.
type OrderLine struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID         `gorm:"column:order_id;type:uuid;not null"`
	ProductID      *uuid.UUID        `gorm:"column:product_id;type:uuid"`
	Name           string            `gorm:"column:name;not null"`
	Species        string            `gorm:"column:species;not null"`
	Part           string            `gorm:"column:part;not null"`
	UnitLabel      string            `gorm:"column:unit_label;not null"`
	UnitPriceCents int               `gorm:"column:unit_price_cents;not null"`
	Qty            int               `gorm:"column:qty;not null"`
	Options        types.LineOptions `gorm:"column:options;type:jsonb;serializer:json"`
	TotalCents     int               `gorm:"column:total_cents;not null"`
	Status         enums.LineStatus  `gorm:"column:status;type:line_status;not null;default:'pending'"`
	Version        int               `gorm:"column:version;not null;default:0"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
