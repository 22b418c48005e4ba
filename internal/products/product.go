package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	section "github.com/futamarket/market-backend/internal/sections"
)

// ErrNotFound is returned when a product id does not resolve to a record.
var ErrNotFound = errors.New("product not found")

// InvalidIDError reports an identifier the store cannot parse on a write path.
type InvalidIDError struct {
	Field string
	Value string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid %s id %q", e.Field, e.Value)
}

// Fields are the scalar attributes every create or update writes wholesale.
// Nil pointers are stored as null.
type Fields struct {
	Title     *string
	Price     *float64
	Available bool
	Section   *string
	Short     *string
	Full      *string
	Location  *string
}

// ParseAvailable maps the raw form value: only the exact token "true" is true.
func ParseAvailable(raw string) bool {
	return raw == "true"
}

// MediaUpdate carries replacement media. A nil field keeps the stored value.
type MediaUpdate struct {
	Images []string
	Video  *string
}

// Product is the persisted listing with its section left as a raw id.
type Product struct {
	ID        string    `json:"id"`
	Title     *string   `json:"title"`
	Price     *float64  `json:"price"`
	Available bool      `json:"available"`
	Section   *string   `json:"section"`
	Short     *string   `json:"short"`
	Full      *string   `json:"full"`
	Location  *string   `json:"location"`
	Images    []string  `json:"images"`
	Video     *string   `json:"video"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductDetail is the read shape: section resolved to the full record, or
// null when unset or dangling.
type ProductDetail struct {
	Product
	Section *section.Section `json:"section"`
}

// Repository persists products. Implementations list newest first.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	// Get returns ErrNotFound for unknown and malformed ids.
	Get(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, fields Fields, images []string, video *string) (*Product, error)
	// Update returns ErrNotFound for unknown ids and *InvalidIDError for
	// malformed product or section ids.
	Update(ctx context.Context, id string, fields Fields, media MediaUpdate) (*Product, error)
	// Delete succeeds whether or not the product exists.
	Delete(ctx context.Context, id string) error
}

func emptyIfNil(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
