package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "pitstop/internal/bookings/errors"
	"pitstop/internal/bookings/repository"
	"pitstop/internal/bookings/validator"
	"pitstop/pkg/config"
	apperrors "pitstop/pkg/errors"
	"pitstop/pkg/events"
	"pitstop/pkg/model"
	"pitstop/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	GetByDate(ctx context.Context, date string) ([]*model.Booking, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) error
	Transition(ctx context.Context, id string, target model.BookingStatus) (*model.Booking, error)
}

// JobcardWorkflow is the slice of the jobcard service the booking
// lifecycle drives: jobcard materialization on arrival, roster inspection
// before work starts, closing on completion, abandonment on cancellation.
type JobcardWorkflow interface {
	CreateForArrival(ctx context.Context, bookingID string) (*model.Jobcard, error)
	GetByBookingID(ctx context.Context, bookingID string) (*model.Jobcard, error)
	Close(ctx context.Context, jobcardID string) (*model.Jobcard, error)
	Abandon(ctx context.Context, jobcardID string) error
}

// MechanicDirectory toggles mechanic availability as bookings enter and
// leave in_progress.
type MechanicDirectory interface {
	SetAvailability(ctx context.Context, mechanicIDs []string, available bool) error
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SlotLockRepository
	jobcards  JobcardWorkflow
	mechanics MechanicDirectory
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	jobcards JobcardWorkflow,
	mechanics MechanicDirectory,
	bookingValidator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		jobcards:  jobcards,
		mechanics: mechanics,
		validator: bookingValidator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	s.applyDefaults(booking)
	s.sanitize(booking)
	if err := s.validate(booking); err != nil {
		return err
	}
	if booking.Status != model.StatusPending {
		return apperrors.InvalidInput("New bookings must start in pending status")
	}

	// Advisory lock narrows the check-then-act window on the slot; the
	// in-transaction recheck below is the authoritative guard.
	lockID, err := s.acquireSlotLock(ctx, booking.BookingDate, booking.TimeSlot)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		occupied, err := s.repo.CountActiveBySlot(sessCtx, booking.BookingDate, booking.TimeSlot, "")
		if err != nil {
			return apperrors.Internal("Failed to check slot availability", err)
		}
		if occupied > 0 {
			return apperrors.SlotTaken(booking.BookingDate, booking.TimeSlot)
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"booking_date", booking.BookingDate,
			"time_slot", booking.TimeSlot,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"booking_date", booking.BookingDate,
		"time_slot", booking.TimeSlot,
		"vehicle_number", booking.VehicleNumber,
	)
	s.publisher.Publish(ctx, booking.ID, events.TypeBookingCreated, events.BookingCreated{
		BookingID:   booking.ID,
		BookingDate: booking.BookingDate,
		TimeSlot:    booking.TimeSlot,
		CreatedAt:   booking.CreatedAt,
	})
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id)
	}
	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) GetByDate(ctx context.Context, date string) ([]*model.Booking, error) {
	if _, err := time.Parse(model.BookingDateLayout, date); err != nil {
		return nil, apperrors.InvalidInput("Date must be in YYYY-MM-DD format")
	}

	bookings, err := s.repo.FindByDate(ctx, date)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings by date", "date", date, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapRepoError(err, id)
	}
	if existing.Status.IsTerminal() {
		return apperrors.Conflict(fmt.Sprintf("Cannot edit a %s booking", existing.Status))
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		return s.mapRepoError(err, id)
	}

	s.cfg.Log.Info("Booking updated successfully", "id", id)
	return nil
}

// Transition applies one step of the booking state machine. The whole
// step, including jobcard and mechanic side effects, runs inside a single
// transaction; a guard failure leaves nothing written.
func (s *bookingService) Transition(ctx context.Context, id string, target model.BookingStatus) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	var updated *model.Booking
	var previous model.BookingStatus

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booking, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return s.mapRepoError(err, id)
		}
		previous = booking.Status

		if !booking.Status.CanTransitionTo(target) {
			return apperrors.InvalidTransition(string(booking.Status), string(target))
		}

		var arrivedTime *time.Time

		switch target {
		case model.StatusConfirmed:
			// Status write only.

		case model.StatusArrived:
			now := time.Now().UTC().Truncate(time.Millisecond)
			arrivedTime = &now
			booking.ArrivedTime = arrivedTime

		case model.StatusInProgress:
			jobcard, err := s.jobcardFor(sessCtx, booking.ID)
			if err != nil {
				return err
			}
			if len(jobcard.MechanicIDs) == 0 {
				return apperrors.NoMechanicAssigned(jobcard.ID)
			}
			if err := s.mechanics.SetAvailability(sessCtx, jobcard.MechanicIDs, false); err != nil {
				return apperrors.Internal("Failed to mark mechanics busy", err)
			}

		case model.StatusCompleted:
			jobcard, err := s.jobcardFor(sessCtx, booking.ID)
			if err != nil {
				return err
			}
			if len(jobcard.MechanicIDs) == 0 {
				return apperrors.NoMechanicAssigned(jobcard.ID)
			}
			if _, err := s.jobcards.Close(sessCtx, jobcard.ID); err != nil {
				if apperrors.IsAppError(err) {
					return err
				}
				return apperrors.Internal("Failed to close jobcard", err)
			}
			if err := s.mechanics.SetAvailability(sessCtx, jobcard.MechanicIDs, true); err != nil {
				return apperrors.Internal("Failed to release mechanics", err)
			}

		case model.StatusCancelled:
			jobcard, err := s.jobcards.GetByBookingID(sessCtx, booking.ID)
			switch {
			case err == nil:
				if err := s.jobcards.Abandon(sessCtx, jobcard.ID); err != nil {
					if apperrors.IsAppError(err) {
						return err
					}
					return apperrors.Internal("Failed to abandon jobcard", err)
				}
				if booking.Status == model.StatusInProgress && len(jobcard.MechanicIDs) > 0 {
					if err := s.mechanics.SetAvailability(sessCtx, jobcard.MechanicIDs, true); err != nil {
						return apperrors.Internal("Failed to release mechanics", err)
					}
				}
			case apperrors.HasCode(err, apperrors.CodeNotFound):
				// Booking never arrived; nothing to abandon.
			default:
				return err
			}

		default:
			return apperrors.InvalidTransition(string(booking.Status), string(target))
		}

		if err := s.repo.UpdateStatus(sessCtx, id, target, arrivedTime); err != nil {
			return s.mapRepoError(err, id)
		}

		// Jobcard creation happens after the status write so the jobcard
		// service sees the booking as arrived inside this transaction.
		if target == model.StatusArrived {
			if _, err := s.jobcards.CreateForArrival(sessCtx, booking.ID); err != nil {
				if apperrors.IsAppError(err) {
					return err
				}
				return apperrors.Internal("Failed to create jobcard for arrival", err)
			}
		}

		booking.Status = target
		updated = booking
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Booking transition rejected",
			"id", id,
			"target", target,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Booking transitioned",
		"id", id,
		"from", previous,
		"to", target,
	)
	s.publisher.Publish(ctx, id, events.TypeBookingStatusChanged, events.BookingStatusChanged{
		BookingID: id,
		From:      string(previous),
		To:        string(target),
		ChangedAt: time.Now().UTC(),
	})
	return updated, nil
}

// --- Helpers ---

func (s *bookingService) jobcardFor(ctx context.Context, bookingID string) (*model.Jobcard, error) {
	jobcard, err := s.jobcards.GetByBookingID(ctx, bookingID)
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to load jobcard", err)
	}
	return jobcard, nil
}

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = model.StatusPending
	} else if parsed, err := model.ParseBookingStatus(string(b.Status)); err == nil {
		b.Status = parsed
	}
}

func (s *bookingService) sanitize(b *model.Booking) {
	b.Name = sanitizer.NormalizeName(b.Name)
	if normalized := sanitizer.NormalizePhone(b.Phone); normalized != "" {
		b.Phone = normalized
	}
	b.VehicleNumber = sanitizer.NormalizeVehicleNumber(b.VehicleNumber)
	b.VehicleType = sanitizer.TrimAndNormalize(b.VehicleType)
	b.VehicleBrand = sanitizer.TrimAndNormalize(b.VehicleBrand)
	b.VehicleModel = sanitizer.TrimAndNormalize(b.VehicleModel)
	b.ServiceTypes = sanitizer.NormalizeServiceTypes(b.ServiceTypes)
	b.SpecialRequests = sanitizer.TrimAndNormalize(b.SpecialRequests)
}

func (s *bookingService) mergeUpdates(existing *model.Booking, updates *model.BookingUpdate) *model.Booking {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Phone != "" {
		merged.Phone = updates.Phone
	}
	if updates.VehicleBrand != "" {
		merged.VehicleBrand = updates.VehicleBrand
	}
	if updates.VehicleModel != "" {
		merged.VehicleModel = updates.VehicleModel
	}
	if updates.ServiceTypes != nil {
		merged.ServiceTypes = updates.ServiceTypes
	}
	if updates.SpecialRequests != "" {
		merged.SpecialRequests = updates.SpecialRequests
	}

	return &merged
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) mapRepoError(err error, id string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	return apperrors.Internal("Booking storage operation failed", err)
}

func (s *bookingService) acquireSlotLock(ctx context.Context, date, slot string) (string, error) {
	lockID := fmt.Sprintf("slot_%s_%s", date, slot)

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.SlotTaken(date, slot)
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}
