package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents a marketplace listing. Images keep upload order.
type Product struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Title     *string        `gorm:"column:title"`
	Price     *float64       `gorm:"column:price;type:numeric"`
	Available bool           `gorm:"column:available;not null"`
	SectionID *uuid.UUID     `gorm:"column:section_id;type:uuid"`
	Short     *string        `gorm:"column:short"`
	Full      *string        `gorm:"column:full"`
	Location  *string        `gorm:"column:location"`
	Images    pq.StringArray `gorm:"column:images;type:text[]"`
	Video     *string        `gorm:"column:video"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
