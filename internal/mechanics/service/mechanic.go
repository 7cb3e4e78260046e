package service

import (
	"context"
	"errors"
	"sync"

	mechanicserrors "pitstop/internal/mechanics/errors"
	"pitstop/internal/mechanics/repository"
	"pitstop/internal/mechanics/validator"
	"pitstop/pkg/config"
	apperrors "pitstop/pkg/errors"
	"pitstop/pkg/model"
	"pitstop/pkg/sanitizer"
)

type MechanicService interface {
	Create(ctx context.Context, mechanic *model.Mechanic) error
	GetByID(ctx context.Context, id string) (*model.Mechanic, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Mechanic, int64, error)
	GetAvailable(ctx context.Context) ([]*model.Mechanic, error)
	Update(ctx context.Context, id string, updates *model.MechanicUpdate) (*model.Mechanic, error)
	SetAvailability(ctx context.Context, mechanicIDs []string, available bool) error
}

type mechanicService struct {
	repo      repository.MechanicRepository
	validator *validator.MechanicValidator
	cfg       *config.Config
}

func NewMechanicService(repo repository.MechanicRepository, mechanicValidator *validator.MechanicValidator, cfg *config.Config) MechanicService {
	return &mechanicService{
		repo:      repo,
		validator: mechanicValidator,
		cfg:       cfg,
	}
}

func (s *mechanicService) Create(ctx context.Context, mechanic *model.Mechanic) error {
	mechanic.MechanicName = sanitizer.NormalizeName(mechanic.MechanicName)
	mechanic.MechanicCode = sanitizer.TrimAndNormalize(mechanic.MechanicCode)
	mechanic.Specialization = sanitizer.TrimAndNormalize(mechanic.Specialization)
	// New hires start on the floor.
	mechanic.Availability = true
	mechanic.IsActive = true

	if err := s.validator.Validate(mechanic); err != nil {
		return apperrors.Validation("Mechanic validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, mechanic); err != nil {
		if errors.Is(err, mechanicserrors.ErrDuplicateCode) {
			return apperrors.Conflict("Mechanic code is already in use")
		}
		return apperrors.Internal("Failed to create mechanic", err)
	}

	s.cfg.Log.Info("Mechanic created", "id", mechanic.ID, "mechanic_code", mechanic.MechanicCode)
	return nil
}

func (s *mechanicService) GetByID(ctx context.Context, id string) (*model.Mechanic, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Mechanic ID cannot be empty")
	}

	mechanic, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id)
	}
	return mechanic, nil
}

func (s *mechanicService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Mechanic, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var mechanics []*model.Mechanic
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			errCount = apperrors.Internal("Failed to count mechanics", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		mechanics, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			errFind = apperrors.Internal("Failed to retrieve mechanics", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return mechanics, count, nil
}

func (s *mechanicService) GetAvailable(ctx context.Context) ([]*model.Mechanic, error) {
	mechanics, err := s.repo.FindAvailable(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve available mechanics", err)
	}
	return mechanics, nil
}

func (s *mechanicService) Update(ctx context.Context, id string, updates *model.MechanicUpdate) (*model.Mechanic, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Mechanic ID cannot be empty")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, s.mapRepoError(err, id)
	}

	mechanic, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id)
	}

	s.cfg.Log.Info("Mechanic updated", "id", id)
	return mechanic, nil
}

// SetAvailability updates a whole roster at once; the booking lifecycle
// calls it when work starts and ends.
func (s *mechanicService) SetAvailability(ctx context.Context, mechanicIDs []string, available bool) error {
	if len(mechanicIDs) == 0 {
		return nil
	}

	if err := s.repo.SetAvailability(ctx, mechanicIDs, available); err != nil {
		return s.mapRepoError(err, "")
	}

	s.cfg.Log.Info("Mechanic availability updated",
		"mechanic_count", len(mechanicIDs),
		"available", available,
	)
	return nil
}

func (s *mechanicService) mapRepoError(err error, id string) error {
	if errors.Is(err, mechanicserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Mechanic", id)
	}
	if errors.Is(err, mechanicserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid mechanic ID format")
	}
	return apperrors.Internal("Mechanic storage operation failed", err)
}
