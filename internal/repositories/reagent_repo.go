package repositories

import (
	"context"

	"labchem/internal/models"
)

// ReagentRepository defines the interface for reagent data access.
type ReagentRepository interface {
	GetAll(ctx context.Context) ([]models.Reagent, error)
	GetByID(ctx context.Context, id uint) (*models.Reagent, error)
	Create(ctx context.Context, reagent *models.Reagent) error
	Update(ctx context.Context, reagent *models.Reagent) error
	Delete(ctx context.Context, id uint) error
}
