package service

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingserrors "pitstop/internal/bookings/errors"
	"pitstop/internal/bookings/validator"
	"pitstop/pkg/config"
	mongotx "pitstop/pkg/db/mongo"
	apperrors "pitstop/pkg/errors"
	"pitstop/pkg/events"
	"pitstop/pkg/logger"
	"pitstop/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// Mock repositories for testing

type mockBookingRepository struct {
	createFunc            func(ctx context.Context, booking *model.Booking) error
	findByIDFunc          func(ctx context.Context, id string) (*model.Booking, error)
	findAllFunc           func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	findByDateFunc        func(ctx context.Context, date string) ([]*model.Booking, error)
	updateFunc            func(ctx context.Context, id string, booking *model.Booking) error
	updateStatusFunc      func(ctx context.Context, id string, status model.BookingStatus, arrivedTime *time.Time) error
	countActiveBySlotFunc func(ctx context.Context, date, slot, excludeID string) (int64, error)
	countFunc             func(ctx context.Context) (int64, error)
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) FindByDate(ctx context.Context, date string) ([]*model.Booking, error) {
	if m.findByDateFunc != nil {
		return m.findByDateFunc(ctx, date)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Update(ctx context.Context, id string, booking *model.Booking) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, booking)
	}
	return nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, status model.BookingStatus, arrivedTime *time.Time) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, arrivedTime)
	}
	return nil
}

func (m *mockBookingRepository) CountActiveBySlot(ctx context.Context, date, slot, excludeID string) (int64, error) {
	if m.countActiveBySlotFunc != nil {
		return m.countActiveBySlotFunc(ctx, date, slot, excludeID)
	}
	return 0, nil
}

func (m *mockBookingRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockSlotLockRepository struct {
	createFunc func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)
	deleteFunc func(ctx context.Context, lockID string) error
	deleted    []string
}

func (m *mockSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	m.deleted = append(m.deleted, lockID)
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, lockID)
	}
	return nil
}

type mockJobcardWorkflow struct {
	createForArrivalFunc func(ctx context.Context, bookingID string) (*model.Jobcard, error)
	getByBookingIDFunc   func(ctx context.Context, bookingID string) (*model.Jobcard, error)
	closeFunc            func(ctx context.Context, jobcardID string) (*model.Jobcard, error)
	abandonFunc          func(ctx context.Context, jobcardID string) error

	createdFor []string
	closed     []string
	abandoned  []string
}

func (m *mockJobcardWorkflow) CreateForArrival(ctx context.Context, bookingID string) (*model.Jobcard, error) {
	m.createdFor = append(m.createdFor, bookingID)
	if m.createForArrivalFunc != nil {
		return m.createForArrivalFunc(ctx, bookingID)
	}
	return &model.Jobcard{ID: "jc-1", BookingID: bookingID, Status: model.JobcardOpen}, nil
}

func (m *mockJobcardWorkflow) GetByBookingID(ctx context.Context, bookingID string) (*model.Jobcard, error) {
	if m.getByBookingIDFunc != nil {
		return m.getByBookingIDFunc(ctx, bookingID)
	}
	return nil, apperrors.NotFound("Jobcard not found")
}

func (m *mockJobcardWorkflow) Close(ctx context.Context, jobcardID string) (*model.Jobcard, error) {
	m.closed = append(m.closed, jobcardID)
	if m.closeFunc != nil {
		return m.closeFunc(ctx, jobcardID)
	}
	return &model.Jobcard{ID: jobcardID, Status: model.JobcardClosed}, nil
}

func (m *mockJobcardWorkflow) Abandon(ctx context.Context, jobcardID string) error {
	m.abandoned = append(m.abandoned, jobcardID)
	if m.abandonFunc != nil {
		return m.abandonFunc(ctx, jobcardID)
	}
	return nil
}

type availabilityCall struct {
	ids       []string
	available bool
}

type mockMechanicDirectory struct {
	setAvailabilityFunc func(ctx context.Context, mechanicIDs []string, available bool) error
	calls               []availabilityCall
}

func (m *mockMechanicDirectory) SetAvailability(ctx context.Context, mechanicIDs []string, available bool) error {
	m.calls = append(m.calls, availabilityCall{ids: mechanicIDs, available: available})
	if m.setAvailabilityFunc != nil {
		return m.setAvailabilityFunc(ctx, mechanicIDs, available)
	}
	return nil
}

func newTestConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   logger.LevelError,
			Format:  logger.FormatJSON,
			Service: "test",
		}),
		TimeSlots:    config.DefaultTimeSlots,
		SlotLockTTL:  config.DefaultSlotLockTTL,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func newTestService(repo *mockBookingRepository, locks *mockSlotLockRepository, jobcards *mockJobcardWorkflow, mechanics *mockMechanicDirectory) BookingService {
	cfg := newTestConfig()
	return NewBookingService(
		repo,
		locks,
		jobcards,
		mechanics,
		validator.NewBookingValidator(cfg.TimeSlots, cfg.Log),
		events.NewNopPublisher(),
		cfg,
	)
}

func validBooking() *model.Booking {
	return &model.Booking{
		Name:          "Asha Rao",
		Phone:         "+919876543210",
		VehicleNumber: "KA01AB1234",
		VehicleType:   "sedan",
		BookingDate:   "2026-09-01",
		TimeSlot:      config.DefaultTimeSlots[0],
		ServiceTypes:  []string{"oil change", "brake inspection"},
	}
}

func duplicateKeyErr() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000}},
	}
}

func TestCreate_Success(t *testing.T) {
	var inserted *model.Booking
	repo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			booking.ID = "64f000000000000000000001"
			inserted = booking
			return nil
		},
	}
	locks := &mockSlotLockRepository{}
	svc := newTestService(repo, locks, &mockJobcardWorkflow{}, &mockMechanicDirectory{})

	booking := validBooking()
	if err := svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inserted == nil {
		t.Fatal("expected booking to be persisted")
	}
	if inserted.Status != model.StatusPending {
		t.Errorf("expected pending status, got %s", inserted.Status)
	}
	if len(locks.deleted) != 1 {
		t.Errorf("expected slot lock to be released once, got %d releases", len(locks.deleted))
	}
}

func TestCreate_SlotLockHeld(t *testing.T) {
	repo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			t.Fatal("booking must not be persisted when the slot lock is held")
			return nil
		},
	}
	locks := &mockSlotLockRepository{
		createFunc: func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
			return nil, duplicateKeyErr()
		},
	}
	svc := newTestService(repo, locks, &mockJobcardWorkflow{}, &mockMechanicDirectory{})

	err := svc.Create(context.Background(), validBooking())
	if !apperrors.HasCode(err, apperrors.CodeSlotTaken) {
		t.Fatalf("expected %s, got %v", apperrors.CodeSlotTaken, err)
	}
}

func TestCreate_SlotOccupiedByActiveBooking(t *testing.T) {
	repo := &mockBookingRepository{
		countActiveBySlotFunc: func(ctx context.Context, date, slot, excludeID string) (int64, error) {
			return 1, nil
		},
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			t.Fatal("booking must not be persisted for an occupied slot")
			return nil
		},
	}
	locks := &mockSlotLockRepository{}
	svc := newTestService(repo, locks, &mockJobcardWorkflow{}, &mockMechanicDirectory{})

	err := svc.Create(context.Background(), validBooking())
	if !apperrors.HasCode(err, apperrors.CodeSlotTaken) {
		t.Fatalf("expected %s, got %v", apperrors.CodeSlotTaken, err)
	}
	if len(locks.deleted) != 1 {
		t.Errorf("slot lock must be released after a rejected create, got %d releases", len(locks.deleted))
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockSlotLockRepository{}, &mockJobcardWorkflow{}, &mockMechanicDirectory{})

	booking := validBooking()
	booking.Phone = "not-a-phone"

	err := svc.Create(context.Background(), booking)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected %s, got %v", apperrors.CodeValidation, err)
	}
}

func TestCreate_UnknownTimeSlot(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockSlotLockRepository{}, &mockJobcardWorkflow{}, &mockMechanicDirectory{})

	booking := validBooking()
	booking.TimeSlot = "11:00 PM - 11:59 PM"

	err := svc.Create(context.Background(), booking)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected %s, got %v", apperrors.CodeValidation, err)
	}
}

func bookingInStatus(status model.BookingStatus) *model.Booking {
	b := validBooking()
	b.ID = "64f000000000000000000001"
	b.Status = status
	return b
}

func TestTransition_IllegalStep(t *testing.T) {
	statusWritten := false
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return bookingInStatus(model.StatusPending), nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status model.BookingStatus, arrivedTime *time.Time) error {
			statusWritten = true
			return nil
		},
	}
	svc := newTestService(repo, &mockSlotLockRepository{}, &mockJobcardWorkflow{}, &mockMechanicDirectory{})

	_, err := svc.Transition(context.Background(), "64f000000000000000000001", model.StatusCompleted)
	if !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("expected %s, got %v", apperrors.CodeInvalidTransition, err)
	}
	if statusWritten {
		t.Error("rejected transition must not write the status")
	}
}

func TestTransition_ArrivedCreatesJobcard(t *testing.T) {
	var writtenStatus model.BookingStatus
	var writtenArrival *time.Time
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return bookingInStatus(model.StatusConfirmed), nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status model.BookingStatus, arrivedTime *time.Time) error {
			writtenStatus = status
			writtenArrival = arrivedTime
			return nil
		},
	}
	jobcards := &mockJobcardWorkflow{}
	svc := newTestService(repo, &mockSlotLockRepository{}, jobcards, &mockMechanicDirectory{})

	updated, err := svc.Transition(context.Background(), "64f000000000000000000001", model.StatusArrived)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if writtenStatus != model.StatusArrived {
		t.Errorf("expected arrived status write, got %s", writtenStatus)
	}
	if writtenArrival == nil {
		t.Error("expected arrival time to be stamped")
	}
	if len(jobcards.createdFor) != 1 {
		t.Fatalf("expected one jobcard creation, got %d", len(jobcards.createdFor))
	}
	if updated.Status != model.StatusArrived {
		t.Errorf("expected returned booking in arrived status, got %s", updated.Status)
	}
}

func TestTransition_InProgressRequiresMechanic(t *testing.T) {
	statusWritten := false
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return bookingInStatus(model.StatusArrived), nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status model.BookingStatus, arrivedTime *time.Time) error {
			statusWritten = true
			return nil
		},
	}
	jobcards := &mockJobcardWorkflow{
		getByBookingIDFunc: func(ctx context.Context, bookingID string) (*model.Jobcard, error) {
			return &model.Jobcard{ID: "jc-1", BookingID: bookingID, Status: model.JobcardOpen}, nil
		},
	}
	svc := newTestService(repo, &mockSlotLockRepository{}, jobcards, &mockMechanicDirectory{})

	_, err := svc.Transition(context.Background(), "64f000000000000000000001", model.StatusInProgress)
	if !apperrors.HasCode(err, apperrors.CodeNoMechanicAssigned) {
		t.Fatalf("expected %s, got %v", apperrors.CodeNoMechanicAssigned, err)
	}
	if statusWritten {
		t.Error("booking must stay in arrived when no mechanic is assigned")
	}
}

func TestTransition_InProgressMarksMechanicsBusy(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return bookingInStatus(model.StatusArrived), nil
		},
	}
	jobcards := &mockJobcardWorkflow{
		getByBookingIDFunc: func(ctx context.Context, bookingID string) (*model.Jobcard, error) {
			return &model.Jobcard{
				ID:          "jc-1",
				BookingID:   bookingID,
				Status:      model.JobcardOpen,
				MechanicIDs: []string{"mech-1", "mech-2"},
			}, nil
		},
	}
	mechanics := &mockMechanicDirectory{}
	svc := newTestService(repo, &mockSlotLockRepository{}, jobcards, mechanics)

	if _, err := svc.Transition(context.Background(), "64f000000000000000000001", model.StatusInProgress); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mechanics.calls) != 1 {
		t.Fatalf("expected one availability update, got %d", len(mechanics.calls))
	}
	if mechanics.calls[0].available {
		t.Error("mechanics must be marked unavailable when work starts")
	}
	if len(mechanics.calls[0].ids) != 2 {
		t.Errorf("expected both roster mechanics updated, got %v", mechanics.calls[0].ids)
	}
}

func TestTransition_CompletedClosesJobcardAndReleasesMechanics(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return bookingInStatus(model.StatusInProgress), nil
		},
	}
	jobcards := &mockJobcardWorkflow{
		getByBookingIDFunc: func(ctx context.Context, bookingID string) (*model.Jobcard, error) {
			return &model.Jobcard{
				ID:          "jc-1",
				BookingID:   bookingID,
				Status:      model.JobcardOpen,
				MechanicIDs: []string{"mech-1"},
			}, nil
		},
	}
	mechanics := &mockMechanicDirectory{}
	svc := newTestService(repo, &mockSlotLockRepository{}, jobcards, mechanics)

	if _, err := svc.Transition(context.Background(), "64f000000000000000000001", model.StatusCompleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(jobcards.closed) != 1 || jobcards.closed[0] != "jc-1" {
		t.Errorf("expected jobcard jc-1 to be closed, got %v", jobcards.closed)
	}
	if len(mechanics.calls) != 1 || !mechanics.calls[0].available {
		t.Errorf("expected mechanics released on completion, got %+v", mechanics.calls)
	}
}

func TestTransition_CompletedBlockedByReservedParts(t *testing.T) {
	statusWritten := false
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return bookingInStatus(model.StatusInProgress), nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status model.BookingStatus, arrivedTime *time.Time) error {
			statusWritten = true
			return nil
		},
	}
	jobcards := &mockJobcardWorkflow{
		getByBookingIDFunc: func(ctx context.Context, bookingID string) (*model.Jobcard, error) {
			return &model.Jobcard{
				ID:          "jc-1",
				BookingID:   bookingID,
				Status:      model.JobcardOpen,
				MechanicIDs: []string{"mech-1"},
			}, nil
		},
		closeFunc: func(ctx context.Context, jobcardID string) (*model.Jobcard, error) {
			return nil, apperrors.PartsStillReserved(jobcardID, 2)
		},
	}
	svc := newTestService(repo, &mockSlotLockRepository{}, jobcards, &mockMechanicDirectory{})

	_, err := svc.Transition(context.Background(), "64f000000000000000000001", model.StatusCompleted)
	if !apperrors.HasCode(err, apperrors.CodePartsReserved) {
		t.Fatalf("expected %s, got %v", apperrors.CodePartsReserved, err)
	}
	if statusWritten {
		t.Error("booking must stay in progress while ledger lines are reserved")
	}
}

func TestTransition_CancelInProgressAbandonsAndReleases(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return bookingInStatus(model.StatusInProgress), nil
		},
	}
	jobcards := &mockJobcardWorkflow{
		getByBookingIDFunc: func(ctx context.Context, bookingID string) (*model.Jobcard, error) {
			return &model.Jobcard{
				ID:          "jc-1",
				BookingID:   bookingID,
				Status:      model.JobcardOpen,
				MechanicIDs: []string{"mech-1"},
			}, nil
		},
	}
	mechanics := &mockMechanicDirectory{}
	svc := newTestService(repo, &mockSlotLockRepository{}, jobcards, mechanics)

	if _, err := svc.Transition(context.Background(), "64f000000000000000000001", model.StatusCancelled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(jobcards.abandoned) != 1 {
		t.Errorf("expected jobcard abandoned on cancellation, got %v", jobcards.abandoned)
	}
	if len(mechanics.calls) != 1 || !mechanics.calls[0].available {
		t.Errorf("expected mechanics released on cancellation, got %+v", mechanics.calls)
	}
}

func TestTransition_CancelPendingWithoutJobcard(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return bookingInStatus(model.StatusPending), nil
		},
	}
	jobcards := &mockJobcardWorkflow{}
	svc := newTestService(repo, &mockSlotLockRepository{}, jobcards, &mockMechanicDirectory{})

	updated, err := svc.Transition(context.Background(), "64f000000000000000000001", model.StatusCancelled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != model.StatusCancelled {
		t.Errorf("expected cancelled status, got %s", updated.Status)
	}
	if len(jobcards.abandoned) != 0 {
		t.Errorf("no jobcard exists before arrival, got abandon calls %v", jobcards.abandoned)
	}
}

func TestTransition_TerminalStatesAreFrozen(t *testing.T) {
	for _, terminal := range []model.BookingStatus{model.StatusCompleted, model.StatusCancelled} {
		repo := &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				return bookingInStatus(terminal), nil
			},
		}
		svc := newTestService(repo, &mockSlotLockRepository{}, &mockJobcardWorkflow{}, &mockMechanicDirectory{})

		_, err := svc.Transition(context.Background(), "64f000000000000000000001", model.StatusConfirmed)
		if !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
			t.Errorf("%s: expected %s, got %v", terminal, apperrors.CodeInvalidTransition, err)
		}
	}
}

func TestUpdate_TerminalBookingRejected(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return bookingInStatus(model.StatusCompleted), nil
		},
	}
	svc := newTestService(repo, &mockSlotLockRepository{}, &mockJobcardWorkflow{}, &mockMechanicDirectory{})

	err := svc.Update(context.Background(), "64f000000000000000000001", &model.BookingUpdate{Name: "New Name"})
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected %s, got %v", apperrors.CodeConflict, err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return nil, bookingserrors.ErrNotFound
		},
	}
	svc := newTestService(repo, &mockSlotLockRepository{}, &mockJobcardWorkflow{}, &mockMechanicDirectory{})

	_, err := svc.GetByID(context.Background(), "64f000000000000000000099")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected %s, got %v", apperrors.CodeNotFound, err)
	}
}

func TestGetAll_CombinesCountAndPage(t *testing.T) {
	repo := &mockBookingRepository{
		countFunc: func(ctx context.Context) (int64, error) {
			return 42, nil
		},
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
			return []*model.Booking{bookingInStatus(model.StatusPending)}, nil
		},
	}
	svc := newTestService(repo, &mockSlotLockRepository{}, &mockJobcardWorkflow{}, &mockMechanicDirectory{})

	bookings, count, err := svc.GetAll(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 42 {
		t.Errorf("expected count 42, got %d", count)
	}
	if len(bookings) != 1 {
		t.Errorf("expected one booking, got %d", len(bookings))
	}
}

func TestGetAll_CountFailure(t *testing.T) {
	repo := &mockBookingRepository{
		countFunc: func(ctx context.Context) (int64, error) {
			return 0, errors.New("connection reset")
		},
	}
	svc := newTestService(repo, &mockSlotLockRepository{}, &mockJobcardWorkflow{}, &mockMechanicDirectory{})

	_, _, err := svc.GetAll(context.Background(), 10, 0)
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Fatalf("expected %s, got %v", apperrors.CodeInternal, err)
	}
}
