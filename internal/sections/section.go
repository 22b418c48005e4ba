package section

import (
	"context"
	"errors"
	"time"

	"github.com/futamarket/market-backend/pkg/db/models"
)

// ErrNotFound is returned when a section id does not resolve to a record.
var ErrNotFound = errors.New("section not found")

// Section is the API shape of a product category.
type Section struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository persists sections. Implementations list newest first.
type Repository interface {
	List(ctx context.Context) ([]Section, error)
	Create(ctx context.Context, title string) (*Section, error)
	// Update returns ErrNotFound when id is unknown or malformed.
	Update(ctx context.Context, id, title string) (*Section, error)
	// Delete succeeds whether or not the section exists.
	Delete(ctx context.Context, id string) error
	// FindByIDs resolves the known ids; unknown and malformed ids are skipped.
	FindByIDs(ctx context.Context, ids []string) (map[string]Section, error)
}

// FromModel maps the SQL row to the API shape.
func FromModel(m models.Section) Section {
	return Section{
		ID:        m.ID.String(),
		Title:     m.Title,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
