package section

import (
	"context"
	"errors"

	"github.com/futamarket/market-backend/internal/repo"
	"github.com/futamarket/market-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRepository stores sections in SQL through GORM.
type GormRepository struct {
	repo.Base
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{Base: repo.NewBase(db)}
}

func (r *GormRepository) List(ctx context.Context) ([]Section, error) {
	var rows []models.Section
	if err := r.DB(ctx).Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Section, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (r *GormRepository) Create(ctx context.Context, title string) (*Section, error) {
	row := models.Section{ID: uuid.New(), Title: title}
	if err := r.DB(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	dto := FromModel(row)
	return &dto, nil
}

func (r *GormRepository) Update(ctx context.Context, id, title string) (*Section, error) {
	sectionID, ok := repo.ParseID(id)
	if !ok {
		return nil, ErrNotFound
	}

	var row models.Section
	err := r.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&row, "id = ?", sectionID).Error; err != nil {
			return err
		}
		row.Title = title
		return tx.Save(&row).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	dto := FromModel(row)
	return &dto, nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	sectionID, ok := repo.ParseID(id)
	if !ok {
		return nil
	}
	return r.DB(ctx).Where("id = ?", sectionID).Delete(&models.Section{}).Error
}

func (r *GormRepository) FindByIDs(ctx context.Context, ids []string) (map[string]Section, error) {
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		if id, ok := repo.ParseID(raw); ok {
			parsed = append(parsed, id)
		}
	}
	out := make(map[string]Section, len(parsed))
	if len(parsed) == 0 {
		return out, nil
	}

	var rows []models.Section
	if err := r.DB(ctx).Where("id IN ?", parsed).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID.String()] = FromModel(row)
	}
	return out, nil
}
