package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "pitstop/internal/bookings/errors"
	jobcarderrors "pitstop/internal/jobcards/errors"
	"pitstop/internal/jobcards/repository"
	"pitstop/internal/jobcards/validator"
	"pitstop/pkg/config"
	apperrors "pitstop/pkg/errors"
	"pitstop/pkg/events"
	"pitstop/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type JobcardService interface {
	CreateForArrival(ctx context.Context, bookingID string) (*model.Jobcard, error)
	GetByID(ctx context.Context, id string) (*model.Jobcard, error)
	GetByBookingID(ctx context.Context, bookingID string) (*model.Jobcard, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Jobcard, int64, error)
	UpdateServiceDetails(ctx context.Context, id string, details []model.ServiceDetail) (*model.Jobcard, error)
	AssignMechanic(ctx context.Context, jobcardID, mechanicID string) (*model.Jobcard, error)
	UnassignMechanic(ctx context.Context, jobcardID, mechanicID string) (*model.Jobcard, error)
	Close(ctx context.Context, jobcardID string) (*model.Jobcard, error)
	Abandon(ctx context.Context, jobcardID string) error
}

// BookingSource is the read-only slice of booking storage the jobcard
// workflow needs: the arrival guard on jobcard creation.
type BookingSource interface {
	FindByID(ctx context.Context, id string) (*model.Booking, error)
}

// MechanicSource resolves a mechanic for the assignment guards.
type MechanicSource interface {
	GetByID(ctx context.Context, id string) (*model.Mechanic, error)
}

// LedgerReader reports how many spare-part lines on a jobcard are still
// reserved, that is issued but not marked used.
type LedgerReader interface {
	CountReserved(ctx context.Context, jobcardID string) (int64, error)
}

type jobcardService struct {
	repo      repository.JobcardRepository
	bookings  BookingSource
	mechanics MechanicSource
	ledger    LedgerReader
	validator *validator.JobcardValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewJobcardService(
	repo repository.JobcardRepository,
	bookings BookingSource,
	mechanics MechanicSource,
	ledger LedgerReader,
	jobcardValidator *validator.JobcardValidator,
	publisher events.Publisher,
	cfg *config.Config,
) JobcardService {
	return &jobcardService{
		repo:      repo,
		bookings:  bookings,
		mechanics: mechanics,
		ledger:    ledger,
		validator: jobcardValidator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// CreateForArrival materializes the jobcard for an arrived booking. The
// operation is idempotent: a second call for the same booking returns the
// existing jobcard unchanged.
func (s *jobcardService) CreateForArrival(ctx context.Context, bookingID string) (*model.Jobcard, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByBookingID(ctx, bookingID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, jobcarderrors.ErrNotFound) {
		return nil, apperrors.Internal("Failed to look up jobcard", err)
	}

	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to load booking", err)
	}
	if booking.Status != model.StatusArrived {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot open a jobcard for a %s booking", booking.Status))
	}

	jobcard := &model.Jobcard{
		BookingID:      bookingID,
		Status:         model.JobcardOpen,
		ServiceDetails: detailsFromServiceTypes(booking.ServiceTypes),
		MechanicIDs:    []string{},
	}

	if err := s.repo.Create(ctx, jobcard); err != nil {
		if errors.Is(err, jobcarderrors.ErrDuplicateBooking) {
			// Lost a creation race; the winner's jobcard is the answer.
			return s.GetByBookingID(ctx, bookingID)
		}
		return nil, apperrors.Internal("Failed to create jobcard", err)
	}

	s.cfg.Log.Info("Jobcard opened", "jobcard_id", jobcard.ID, "booking_id", bookingID)
	s.publisher.Publish(ctx, bookingID, events.TypeJobcardCreated, events.JobcardCreated{
		JobcardID: jobcard.ID,
		BookingID: bookingID,
		CreatedAt: jobcard.CreatedAt,
	})
	return jobcard, nil
}

func (s *jobcardService) GetByID(ctx context.Context, id string) (*model.Jobcard, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Jobcard ID cannot be empty")
	}

	jobcard, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id)
	}
	return jobcard, nil
}

func (s *jobcardService) GetByBookingID(ctx context.Context, bookingID string) (*model.Jobcard, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	jobcard, err := s.repo.FindByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, jobcarderrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Jobcard", bookingID)
		}
		return nil, apperrors.Internal("Failed to find jobcard by booking", err)
	}
	return jobcard, nil
}

func (s *jobcardService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Jobcard, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var jobcards []*model.Jobcard
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			errCount = apperrors.Internal("Failed to count jobcards", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		jobcards, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			errFind = apperrors.Internal("Failed to retrieve jobcards", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return jobcards, count, nil
}

func (s *jobcardService) UpdateServiceDetails(ctx context.Context, id string, details []model.ServiceDetail) (*model.Jobcard, error) {
	if err := s.validator.ValidateServiceDetails(details); err != nil {
		return nil, apperrors.Validation("Invalid service details", map[string]any{"error": err.Error()})
	}

	var updated *model.Jobcard
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		jobcard, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return s.mapRepoError(err, id)
		}
		if jobcard.Status != model.JobcardOpen {
			return apperrors.Conflict(fmt.Sprintf("Cannot edit a %s jobcard", jobcard.Status))
		}

		if err := s.repo.UpdateServiceDetails(sessCtx, id, details); err != nil {
			return s.mapRepoError(err, id)
		}

		jobcard.ServiceDetails = details
		updated = jobcard
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// AssignMechanic adds a mechanic to the jobcard roster. The mechanic must
// be active and currently available; assignment itself does not consume
// the mechanic's availability, starting the work does.
func (s *jobcardService) AssignMechanic(ctx context.Context, jobcardID, mechanicID string) (*model.Jobcard, error) {
	if mechanicID == "" {
		return nil, apperrors.InvalidInput("Mechanic ID cannot be empty")
	}

	var updated *model.Jobcard
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		jobcard, err := s.repo.FindByID(sessCtx, jobcardID)
		if err != nil {
			return s.mapRepoError(err, jobcardID)
		}
		if jobcard.Status != model.JobcardOpen {
			return apperrors.Conflict(fmt.Sprintf("Cannot modify the roster of a %s jobcard", jobcard.Status))
		}
		if jobcard.HasMechanic(mechanicID) {
			return apperrors.AlreadyAssigned(jobcardID, mechanicID)
		}

		mechanic, err := s.mechanics.GetByID(sessCtx, mechanicID)
		if err != nil {
			if apperrors.IsAppError(err) {
				return err
			}
			return apperrors.Internal("Failed to load mechanic", err)
		}
		if !mechanic.IsActive || !mechanic.Availability {
			return apperrors.MechanicUnavailable(mechanicID)
		}

		if err := s.repo.AddMechanic(sessCtx, jobcardID, mechanicID); err != nil {
			return s.mapRepoError(err, jobcardID)
		}

		jobcard.MechanicIDs = append(jobcard.MechanicIDs, mechanicID)
		updated = jobcard
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Mechanic assignment rejected",
			"jobcard_id", jobcardID,
			"mechanic_id", mechanicID,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Mechanic assigned", "jobcard_id", jobcardID, "mechanic_id", mechanicID)
	return updated, nil
}

func (s *jobcardService) UnassignMechanic(ctx context.Context, jobcardID, mechanicID string) (*model.Jobcard, error) {
	if mechanicID == "" {
		return nil, apperrors.InvalidInput("Mechanic ID cannot be empty")
	}

	var updated *model.Jobcard
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		jobcard, err := s.repo.FindByID(sessCtx, jobcardID)
		if err != nil {
			return s.mapRepoError(err, jobcardID)
		}
		if jobcard.Status != model.JobcardOpen {
			return apperrors.Conflict(fmt.Sprintf("Cannot modify the roster of a %s jobcard", jobcard.Status))
		}
		if !jobcard.HasMechanic(mechanicID) {
			return apperrors.NotFound("Roster entry").WithDetails(map[string]any{
				"jobcard_id":  jobcardID,
				"mechanic_id": mechanicID,
			})
		}

		if err := s.repo.RemoveMechanic(sessCtx, jobcardID, mechanicID); err != nil {
			return s.mapRepoError(err, jobcardID)
		}

		roster := make([]string, 0, len(jobcard.MechanicIDs)-1)
		for _, id := range jobcard.MechanicIDs {
			if id != mechanicID {
				roster = append(roster, id)
			}
		}
		jobcard.MechanicIDs = roster
		updated = jobcard
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Mechanic unassigned", "jobcard_id", jobcardID, "mechanic_id", mechanicID)
	return updated, nil
}

// Close finalizes the jobcard. Every spare-part line must already be
// marked used and at least one mechanic must be on the roster.
func (s *jobcardService) Close(ctx context.Context, jobcardID string) (*model.Jobcard, error) {
	var closed *model.Jobcard
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		jobcard, err := s.repo.FindByID(sessCtx, jobcardID)
		if err != nil {
			return s.mapRepoError(err, jobcardID)
		}
		if jobcard.Status != model.JobcardOpen {
			return apperrors.Conflict(fmt.Sprintf("Cannot close a %s jobcard", jobcard.Status))
		}
		if len(jobcard.MechanicIDs) == 0 {
			return apperrors.NoMechanicAssigned(jobcardID)
		}

		reserved, err := s.ledger.CountReserved(sessCtx, jobcardID)
		if err != nil {
			return apperrors.Internal("Failed to inspect the spare-part ledger", err)
		}
		if reserved > 0 {
			return apperrors.PartsStillReserved(jobcardID, reserved)
		}

		now := time.Now().UTC().Truncate(time.Millisecond)
		if err := s.repo.UpdateStatus(sessCtx, jobcardID, model.JobcardClosed, &now); err != nil {
			return s.mapRepoError(err, jobcardID)
		}

		jobcard.Status = model.JobcardClosed
		jobcard.ClosedAt = &now
		closed = jobcard
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Jobcard closed", "jobcard_id", jobcardID, "booking_id", closed.BookingID)
	s.publisher.Publish(ctx, closed.BookingID, events.TypeJobcardClosed, events.JobcardClosed{
		JobcardID: closed.ID,
		BookingID: closed.BookingID,
		ClosedAt:  *closed.ClosedAt,
	})
	return closed, nil
}

// Abandon marks the jobcard abandoned when its booking is cancelled.
// Abandoning an already abandoned jobcard is a no-op.
func (s *jobcardService) Abandon(ctx context.Context, jobcardID string) error {
	return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		jobcard, err := s.repo.FindByID(sessCtx, jobcardID)
		if err != nil {
			return s.mapRepoError(err, jobcardID)
		}
		if jobcard.Status == model.JobcardAbandoned {
			return nil
		}
		if jobcard.Status == model.JobcardClosed {
			return apperrors.Conflict("Cannot abandon a closed jobcard")
		}

		now := time.Now().UTC().Truncate(time.Millisecond)
		if err := s.repo.UpdateStatus(sessCtx, jobcardID, model.JobcardAbandoned, &now); err != nil {
			return s.mapRepoError(err, jobcardID)
		}

		s.cfg.Log.Info("Jobcard abandoned", "jobcard_id", jobcardID, "booking_id", jobcard.BookingID)
		return nil
	})
}

func (s *jobcardService) mapRepoError(err error, id string) error {
	if errors.Is(err, jobcarderrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Jobcard", id)
	}
	if errors.Is(err, jobcarderrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid jobcard ID format")
	}
	return apperrors.Internal("Jobcard storage operation failed", err)
}

// detailsFromServiceTypes seeds the work lines from the services the
// customer booked; staff refine them at the counter.
func detailsFromServiceTypes(serviceTypes []string) []model.ServiceDetail {
	details := make([]model.ServiceDetail, 0, len(serviceTypes))
	for _, st := range serviceTypes {
		details = append(details, model.ServiceDetail{Description: st})
	}
	return details
}
