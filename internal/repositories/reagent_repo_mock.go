package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"labchem/internal/models"
)

// MemoryReagentRepository is an in-memory implementation of ReagentRepository.
type MemoryReagentRepository struct {
	reagents map[uint]models.Reagent
	nextID   uint
	mu       sync.RWMutex
}

// NewMemoryReagentRepository creates a new instance of MemoryReagentRepository.
func NewMemoryReagentRepository() *MemoryReagentRepository {
	return &MemoryReagentRepository{
		reagents: make(map[uint]models.Reagent),
	}
}

// GetAll returns all reagents ordered by ID.
func (r *MemoryReagentRepository) GetAll(_ context.Context) ([]models.Reagent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reagentList := make([]models.Reagent, 0, len(r.reagents))
	for _, reagent := range r.reagents {
		reagentList = append(reagentList, reagent)
	}
	sort.Slice(reagentList, func(i, j int) bool { return reagentList[i].ID < reagentList[j].ID })
	return reagentList, nil
}

// GetByID returns a reagent by its ID.
func (r *MemoryReagentRepository) GetByID(_ context.Context, id uint) (*models.Reagent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reagent, ok := r.reagents[id]
	if !ok {
		return nil, fmt.Errorf("reagent with ID %d: %w", id, ErrNotFound)
	}
	return &reagent, nil
}

// Create adds a new reagent and assigns the next ID.
func (r *MemoryReagentRepository) Create(_ context.Context, reagent *models.Reagent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	reagent.ID = r.nextID
	r.reagents[reagent.ID] = *reagent
	return nil
}

// Update modifies an existing reagent, keeping its stored date.
func (r *MemoryReagentRepository) Update(_ context.Context, reagent *models.Reagent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.reagents[reagent.ID]
	if !ok {
		return fmt.Errorf("reagent with ID %d for update: %w", reagent.ID, ErrNotFound)
	}
	updated := *reagent
	updated.Date = existing.Date
	r.reagents[reagent.ID] = updated
	return nil
}

// Delete removes a reagent by its ID.
func (r *MemoryReagentRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reagents[id]; !ok {
		return fmt.Errorf("reagent with ID %d for deletion: %w", id, ErrNotFound)
	}
	delete(r.reagents, id)
	return nil
}
