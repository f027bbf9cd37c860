package services

import (
	"context"
	"encoding/json"
	"time"

	"labchem/internal/forms"
	"labchem/internal/models"
	"labchem/internal/repositories"

	"go.uber.org/zap"
)

// Reagent event routing keys.
const (
	ReagentExchange     = "reagent"
	EventReagentCreated = "reagent.created"
	EventReagentUpdated = "reagent.updated"
	EventReagentDeleted = "reagent.deleted"
)

// EventPublisher sends reagent change events to a broker.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// ReagentEvent is the body published for every reagent change.
type ReagentEvent struct {
	Event     string    `json:"event"`
	ReagentID uint      `json:"reagent_id"`
	Name      string    `json:"name"`
	At        time.Time `json:"at"`
}

// ReagentService handles business logic related to reagents.
type ReagentService struct {
	repo      repositories.ReagentRepository
	publisher EventPublisher // may be nil
	l         *zap.Logger
	now       func() time.Time
}

// NewReagentService creates a new ReagentService. publisher may be nil.
func NewReagentService(repo repositories.ReagentRepository, publisher EventPublisher, l *zap.Logger) *ReagentService {
	return &ReagentService{
		repo:      repo,
		publisher: publisher,
		l:         l,
		now:       time.Now,
	}
}

// List retrieves all reagents.
func (s *ReagentService) List(ctx context.Context) ([]models.Reagent, error) {
	return s.repo.GetAll(ctx)
}

// Get retrieves a single reagent by its ID.
func (s *ReagentService) Get(ctx context.Context, id uint) (*models.Reagent, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates the form and stores a new reagent dated now.
func (s *ReagentService) Create(ctx context.Context, form *forms.ReagentForm) (*models.Reagent, error) {
	if err := validateForm(form); err != nil {
		return nil, err
	}

	reagent := &models.Reagent{Date: s.now().Format(models.DateLayout)}
	form.Apply(reagent)
	if err := s.repo.Create(ctx, reagent); err != nil {
		return nil, err
	}

	s.publish(EventReagentCreated, reagent)
	return reagent, nil
}

// Update overwrites the mutable fields of an existing reagent.
func (s *ReagentService) Update(ctx context.Context, id uint, form *forms.ReagentForm) (*models.Reagent, error) {
	reagent, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateForm(form); err != nil {
		return nil, err
	}

	form.Apply(reagent)
	if err := s.repo.Update(ctx, reagent); err != nil {
		return nil, err
	}

	s.publish(EventReagentUpdated, reagent)
	return reagent, nil
}

// Delete removes a reagent and returns it so callers can name it.
func (s *ReagentService) Delete(ctx context.Context, id uint) (*models.Reagent, error) {
	reagent, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.publish(EventReagentDeleted, reagent)
	return reagent, nil
}

func (s *ReagentService) publish(event string, reagent *models.Reagent) {
	if s.publisher == nil {
		return
	}

	body, err := json.Marshal(ReagentEvent{
		Event:     event,
		ReagentID: reagent.ID,
		Name:      reagent.Name,
		At:        s.now(),
	})
	if err != nil {
		s.l.Warn("failed to marshal reagent event", zap.Error(err))
		return
	}

	// A broker outage must not fail the request; the row is already committed.
	if err := s.publisher.Publish(ReagentExchange, event, body); err != nil {
		s.l.Warn("failed to publish reagent event",
			zap.String("event", event),
			zap.Uint("reagent_id", reagent.ID),
			zap.Error(err),
		)
	}
}
