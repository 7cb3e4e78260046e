package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	partserrors "pitstop/internal/parts/errors"
	"pitstop/internal/parts/repository"
	"pitstop/internal/parts/validator"
	"pitstop/pkg/config"
	apperrors "pitstop/pkg/errors"
	"pitstop/pkg/events"
	"pitstop/pkg/model"
	"pitstop/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type PartService interface {
	CreatePart(ctx context.Context, part *model.Part) error
	GetPart(ctx context.Context, id string) (*model.Part, error)
	GetAllParts(ctx context.Context, limit int, offset int64) ([]*model.Part, int64, error)
	UpdatePart(ctx context.Context, id string, updates *model.PartUpdate) (*model.Part, error)

	Issue(ctx context.Context, jobcardID, partID string, quantity int) (*model.JobcardSparePart, error)
	AdjustQuantity(ctx context.Context, lineID string, quantity int) (*model.JobcardSparePart, error)
	MarkUsed(ctx context.Context, lineID string) (*model.JobcardSparePart, error)
	Remove(ctx context.Context, lineID string) error
	GetLedger(ctx context.Context, jobcardID string) ([]*model.JobcardSparePart, error)
}

// JobcardSource resolves the jobcard a ledger operation targets; every
// ledger mutation requires the jobcard to still be open.
type JobcardSource interface {
	GetByID(ctx context.Context, id string) (*model.Jobcard, error)
}

type partService struct {
	parts     repository.PartRepository
	ledger    repository.LedgerRepository
	jobcards  JobcardSource
	validator *validator.PartValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewPartService(
	parts repository.PartRepository,
	ledger repository.LedgerRepository,
	jobcards JobcardSource,
	partValidator *validator.PartValidator,
	publisher events.Publisher,
	cfg *config.Config,
) PartService {
	return &partService{
		parts:     parts,
		ledger:    ledger,
		jobcards:  jobcards,
		validator: partValidator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// --- Catalog administration ---

func (s *partService) CreatePart(ctx context.Context, part *model.Part) error {
	part.PartCode = sanitizer.TrimAndNormalize(part.PartCode)
	part.Name = sanitizer.TrimAndNormalize(part.Name)
	part.IsActive = true

	if err := s.validator.Validate(part); err != nil {
		return apperrors.Validation("Part validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.parts.Create(ctx, part); err != nil {
		if errors.Is(err, partserrors.ErrDuplicateCode) {
			return apperrors.Conflict("Part code is already in use")
		}
		return apperrors.Internal("Failed to create part", err)
	}

	s.cfg.Log.Info("Part created", "id", part.ID, "part_code", part.PartCode, "stock", part.Stock)
	return nil
}

func (s *partService) GetPart(ctx context.Context, id string) (*model.Part, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Part ID cannot be empty")
	}

	part, err := s.parts.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapPartError(err, id)
	}
	return part, nil
}

func (s *partService) GetAllParts(ctx context.Context, limit int, offset int64) ([]*model.Part, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var parts []*model.Part
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.parts.Count(ctx)
		if errCount != nil {
			errCount = apperrors.Internal("Failed to count parts", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		parts, errFind = s.parts.FindAll(ctx, limit, offset)
		if errFind != nil {
			errFind = apperrors.Internal("Failed to retrieve parts", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return parts, count, nil
}

func (s *partService) UpdatePart(ctx context.Context, id string, updates *model.PartUpdate) (*model.Part, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Part ID cannot be empty")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	if err := s.parts.Update(ctx, id, updates); err != nil {
		return nil, s.mapPartError(err, id)
	}

	part, err := s.parts.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapPartError(err, id)
	}

	s.cfg.Log.Info("Part updated", "id", id)
	return part, nil
}

// --- Consumption ledger ---

// Issue reserves quantity units of a part against a jobcard: stock is
// decremented and a ledger line is written, atomically. The unit price is
// snapshotted from the catalog at this moment and never re-read.
func (s *partService) Issue(ctx context.Context, jobcardID, partID string, quantity int) (*model.JobcardSparePart, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("Quantity must be positive")
	}

	var line *model.JobcardSparePart
	err := s.parts.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		jobcard, err := s.openJobcard(sessCtx, jobcardID)
		if err != nil {
			return err
		}

		part, err := s.parts.FindByID(sessCtx, partID)
		if err != nil {
			return s.mapPartError(err, partID)
		}
		if !part.IsActive {
			return apperrors.Conflict("Part is no longer available for issue")
		}

		if err := s.parts.DecrementStock(sessCtx, partID, quantity); err != nil {
			if errors.Is(err, partserrors.ErrStockConflict) {
				return apperrors.InsufficientStock(partID, quantity, part.Stock)
			}
			return s.mapPartError(err, partID)
		}

		line = &model.JobcardSparePart{
			JobcardID:  jobcard.ID,
			PartID:     partID,
			Quantity:   quantity,
			UnitPrice:  part.UnitPrice,
			TotalPrice: float64(quantity) * part.UnitPrice,
			AssignedAt: time.Now().UTC().Truncate(time.Millisecond),
		}
		if err := s.ledger.Insert(sessCtx, line); err != nil {
			return apperrors.Internal("Failed to write ledger line", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Part issue rejected",
			"jobcard_id", jobcardID,
			"part_id", partID,
			"quantity", quantity,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Part issued",
		"line_id", line.ID,
		"jobcard_id", jobcardID,
		"part_id", partID,
		"quantity", quantity,
		"total_price", line.TotalPrice,
	)
	s.publisher.Publish(ctx, jobcardID, events.TypePartIssued, events.PartIssued{
		LineID:     line.ID,
		JobcardID:  jobcardID,
		PartID:     partID,
		Quantity:   quantity,
		UnitPrice:  line.UnitPrice,
		TotalPrice: line.TotalPrice,
		AssignedAt: line.AssignedAt,
	})
	return line, nil
}

// AdjustQuantity changes a line's quantity, reconciling stock by the
// difference. The snapshotted unit price is kept; only the total is
// recomputed. Used lines stay adjustable while the jobcard is open: this
// is the correction path once a line can no longer be removed.
func (s *partService) AdjustQuantity(ctx context.Context, lineID string, quantity int) (*model.JobcardSparePart, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("Quantity must be positive")
	}

	var updated *model.JobcardSparePart
	err := s.parts.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		line, err := s.ledger.FindByID(sessCtx, lineID)
		if err != nil {
			return s.mapLineError(err, lineID)
		}
		if _, err := s.openJobcard(sessCtx, line.JobcardID); err != nil {
			return err
		}

		delta := quantity - line.Quantity
		switch {
		case delta > 0:
			if err := s.parts.DecrementStock(sessCtx, line.PartID, delta); err != nil {
				if errors.Is(err, partserrors.ErrStockConflict) {
					part, findErr := s.parts.FindByID(sessCtx, line.PartID)
					available := 0
					if findErr == nil {
						available = part.Stock
					}
					return apperrors.InsufficientStock(line.PartID, delta, available)
				}
				return s.mapPartError(err, line.PartID)
			}
		case delta < 0:
			if err := s.parts.IncrementStock(sessCtx, line.PartID, -delta); err != nil {
				return s.mapPartError(err, line.PartID)
			}
		default:
			updated = line
			return nil
		}

		totalPrice := float64(quantity) * line.UnitPrice
		if err := s.ledger.UpdateQuantity(sessCtx, lineID, quantity, totalPrice); err != nil {
			return s.mapLineError(err, lineID)
		}

		line.Quantity = quantity
		line.TotalPrice = totalPrice
		updated = line
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Ledger line adjusted", "line_id", lineID, "quantity", quantity)
	return updated, nil
}

// MarkUsed records physical consumption of the line. A used line can no
// longer be removed; quantity corrections go through AdjustQuantity.
func (s *partService) MarkUsed(ctx context.Context, lineID string) (*model.JobcardSparePart, error) {
	var updated *model.JobcardSparePart
	err := s.parts.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		line, err := s.reservedLine(sessCtx, lineID)
		if err != nil {
			return err
		}
		if _, err := s.openJobcard(sessCtx, line.JobcardID); err != nil {
			return err
		}

		now := time.Now().UTC().Truncate(time.Millisecond)
		if err := s.ledger.MarkUsed(sessCtx, lineID, now); err != nil {
			return s.mapLineError(err, lineID)
		}

		line.UsedAt = &now
		updated = line
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Ledger line marked used", "line_id", lineID)
	return updated, nil
}

// Remove cancels a reserved line and returns its quantity to stock.
func (s *partService) Remove(ctx context.Context, lineID string) error {
	err := s.parts.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		line, err := s.reservedLine(sessCtx, lineID)
		if err != nil {
			return err
		}
		if _, err := s.openJobcard(sessCtx, line.JobcardID); err != nil {
			return err
		}

		if err := s.parts.IncrementStock(sessCtx, line.PartID, line.Quantity); err != nil {
			return s.mapPartError(err, line.PartID)
		}
		if err := s.ledger.Delete(sessCtx, lineID); err != nil {
			return s.mapLineError(err, lineID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Ledger line removed", "line_id", lineID)
	return nil
}

func (s *partService) GetLedger(ctx context.Context, jobcardID string) ([]*model.JobcardSparePart, error) {
	if jobcardID == "" {
		return nil, apperrors.InvalidInput("Jobcard ID cannot be empty")
	}

	lines, err := s.ledger.FindByJobcardID(ctx, jobcardID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve ledger lines", err)
	}
	return lines, nil
}

// --- Helpers ---

func (s *partService) openJobcard(ctx context.Context, jobcardID string) (*model.Jobcard, error) {
	jobcard, err := s.jobcards.GetByID(ctx, jobcardID)
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to load jobcard", err)
	}
	if jobcard.Status != model.JobcardOpen {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot change the parts ledger of a %s jobcard", jobcard.Status))
	}
	return jobcard, nil
}

func (s *partService) reservedLine(ctx context.Context, lineID string) (*model.JobcardSparePart, error) {
	line, err := s.ledger.FindByID(ctx, lineID)
	if err != nil {
		return nil, s.mapLineError(err, lineID)
	}
	if line.IsUsed() {
		return nil, apperrors.AlreadyConsumed(lineID)
	}
	return line, nil
}

func (s *partService) mapPartError(err error, id string) error {
	if errors.Is(err, partserrors.ErrPartNotFound) {
		return apperrors.NotFoundWithID("Part", id)
	}
	if errors.Is(err, partserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid part ID format")
	}
	return apperrors.Internal("Part storage operation failed", err)
}

func (s *partService) mapLineError(err error, id string) error {
	if errors.Is(err, partserrors.ErrLineNotFound) {
		return apperrors.NotFoundWithID("Ledger line", id)
	}
	if errors.Is(err, partserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid ledger line ID format")
	}
	return apperrors.Internal("Ledger storage operation failed", err)
}
