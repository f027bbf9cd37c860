package repositories

import (
	"context"
	"errors"
	"fmt"

	"labchem/internal/models"

	"gorm.io/gorm"
)

// GORMReagentRepository is a GORM implementation of ReagentRepository.
type GORMReagentRepository struct {
	db *gorm.DB
}

// NewGORMReagentRepository creates a new instance of GORMReagentRepository.
func NewGORMReagentRepository(db *gorm.DB) *GORMReagentRepository {
	return &GORMReagentRepository{
		db: db,
	}
}

// GetAll retrieves all reagents in insertion order.
func (r *GORMReagentRepository) GetAll(ctx context.Context) ([]models.Reagent, error) {
	var reagents []models.Reagent
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&reagents).Error; err != nil {
		return nil, fmt.Errorf("failed to get all reagents: %w", err)
	}
	return reagents, nil
}

// GetByID retrieves a single reagent by its ID.
func (r *GORMReagentRepository) GetByID(ctx context.Context, id uint) (*models.Reagent, error) {
	var reagent models.Reagent
	if err := r.db.WithContext(ctx).First(&reagent, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("reagent with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reagent by ID %d: %w", id, err)
	}
	return &reagent, nil
}

// Create inserts a new reagent and fills in its ID.
func (r *GORMReagentRepository) Create(ctx context.Context, reagent *models.Reagent) error {
	if err := r.db.WithContext(ctx).Create(reagent).Error; err != nil {
		return fmt.Errorf("failed to create reagent: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of an existing reagent. The date column is never written.
func (r *GORMReagentRepository) Update(ctx context.Context, reagent *models.Reagent) error {
	res := r.db.WithContext(ctx).
		Model(reagent).
		Select("name", "concentration", "manufacturer", "cas", "quantity", "unit", "location", "stock", "comment").
		Updates(reagent)
	if res.Error != nil {
		return fmt.Errorf("failed to update reagent: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reagent with ID %d for update: %w", reagent.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a reagent by its ID.
func (r *GORMReagentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Reagent{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete reagent: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reagent with ID %d for deletion: %w", id, ErrNotFound)
	}
	return nil
}
