package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/futamarket/market-backend/internal/repo"
	"github.com/futamarket/market-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GormRepository stores products in SQL through GORM.
type GormRepository struct {
	repo.Base
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{Base: repo.NewBase(db)}
}

func fromModel(m models.Product) Product {
	p := Product{
		ID:        m.ID.String(),
		Title:     m.Title,
		Price:     m.Price,
		Available: m.Available,
		Short:     m.Short,
		Full:      m.Full,
		Location:  m.Location,
		Images:    emptyIfNil([]string(m.Images)),
		Video:     m.Video,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.SectionID != nil {
		id := m.SectionID.String()
		p.Section = &id
	}
	return p
}

// parseSectionRef treats an empty reference as unset.
func parseSectionRef(raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, ok := repo.ParseID(*raw)
	if !ok {
		return nil, &InvalidIDError{Field: "section", Value: *raw}
	}
	return &id, nil
}

func (r *GormRepository) List(ctx context.Context) ([]Product, error) {
	var rows []models.Product
	if err := r.DB(ctx).Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*Product, error) {
	productID, ok := repo.ParseID(id)
	if !ok {
		return nil, ErrNotFound
	}
	var row models.Product
	err := r.DB(ctx).First(&row, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p := fromModel(row)
	return &p, nil
}

func (r *GormRepository) Create(ctx context.Context, fields Fields, images []string, video *string) (*Product, error) {
	sectionID, err := parseSectionRef(fields.Section)
	if err != nil {
		return nil, err
	}
	row := models.Product{
		ID:        uuid.New(),
		Title:     fields.Title,
		Price:     fields.Price,
		Available: fields.Available,
		SectionID: sectionID,
		Short:     fields.Short,
		Full:      fields.Full,
		Location:  fields.Location,
		Images:    pq.StringArray(append([]string{}, images...)),
		Video:     video,
	}
	if err := r.DB(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	p := fromModel(row)
	return &p, nil
}

func (r *GormRepository) Update(ctx context.Context, id string, fields Fields, media MediaUpdate) (*Product, error) {
	productID, ok := repo.ParseID(id)
	if !ok {
		return nil, &InvalidIDError{Field: "product", Value: id}
	}
	sectionID, err := parseSectionRef(fields.Section)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"title":      fields.Title,
		"price":      fields.Price,
		"available":  fields.Available,
		"section_id": sectionID,
		"short":      fields.Short,
		"full":       fields.Full,
		"location":   fields.Location,
		"updated_at": time.Now(),
	}
	if media.Images != nil {
		updates["images"] = pq.StringArray(append([]string{}, media.Images...))
	}
	if media.Video != nil {
		updates["video"] = *media.Video
	}

	var row models.Product
	err = r.WithTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).Where("id = ?", productID).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(&row, "id = ?", productID).Error
	})
	if err != nil {
		return nil, err
	}
	p := fromModel(row)
	return &p, nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	productID, ok := repo.ParseID(id)
	if !ok {
		return nil
	}
	return r.DB(ctx).Where("id = ?", productID).Delete(&models.Product{}).Error
}
