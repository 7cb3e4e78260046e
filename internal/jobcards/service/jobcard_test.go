package service

import (
	"context"
	"testing"
	"time"

	bookingserrors "pitstop/internal/bookings/errors"
	jobcarderrors "pitstop/internal/jobcards/errors"
	"pitstop/internal/jobcards/validator"
	"pitstop/pkg/config"
	mongotx "pitstop/pkg/db/mongo"
	apperrors "pitstop/pkg/errors"
	"pitstop/pkg/events"
	"pitstop/pkg/logger"
	"pitstop/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// Mock repository and collaborators for testing

type mockJobcardRepository struct {
	createFunc               func(ctx context.Context, jobcard *model.Jobcard) error
	findByIDFunc             func(ctx context.Context, id string) (*model.Jobcard, error)
	findByBookingIDFunc      func(ctx context.Context, bookingID string) (*model.Jobcard, error)
	findAllFunc              func(ctx context.Context, limit int, offset int64) ([]*model.Jobcard, error)
	countFunc                func(ctx context.Context) (int64, error)
	addMechanicFunc          func(ctx context.Context, id, mechanicID string) error
	removeMechanicFunc       func(ctx context.Context, id, mechanicID string) error
	updateServiceDetailsFunc func(ctx context.Context, id string, details []model.ServiceDetail) error
	updateStatusFunc         func(ctx context.Context, id string, status model.JobcardStatus, closedAt *time.Time) error
}

func (m *mockJobcardRepository) Create(ctx context.Context, jobcard *model.Jobcard) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, jobcard)
	}
	return nil
}

func (m *mockJobcardRepository) FindByID(ctx context.Context, id string) (*model.Jobcard, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, jobcarderrors.ErrNotFound
}

func (m *mockJobcardRepository) FindByBookingID(ctx context.Context, bookingID string) (*model.Jobcard, error) {
	if m.findByBookingIDFunc != nil {
		return m.findByBookingIDFunc(ctx, bookingID)
	}
	return nil, jobcarderrors.ErrNotFound
}

func (m *mockJobcardRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Jobcard, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Jobcard{}, nil
}

func (m *mockJobcardRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockJobcardRepository) AddMechanic(ctx context.Context, id, mechanicID string) error {
	if m.addMechanicFunc != nil {
		return m.addMechanicFunc(ctx, id, mechanicID)
	}
	return nil
}

func (m *mockJobcardRepository) RemoveMechanic(ctx context.Context, id, mechanicID string) error {
	if m.removeMechanicFunc != nil {
		return m.removeMechanicFunc(ctx, id, mechanicID)
	}
	return nil
}

func (m *mockJobcardRepository) UpdateServiceDetails(ctx context.Context, id string, details []model.ServiceDetail) error {
	if m.updateServiceDetailsFunc != nil {
		return m.updateServiceDetailsFunc(ctx, id, details)
	}
	return nil
}

func (m *mockJobcardRepository) UpdateStatus(ctx context.Context, id string, status model.JobcardStatus, closedAt *time.Time) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, closedAt)
	}
	return nil
}

func (m *mockJobcardRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockBookingSource struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Booking, error)
}

func (m *mockBookingSource) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

type mockMechanicSource struct {
	getByIDFunc func(ctx context.Context, id string) (*model.Mechanic, error)
}

func (m *mockMechanicSource) GetByID(ctx context.Context, id string) (*model.Mechanic, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, apperrors.NotFoundWithID("Mechanic", id)
}

type mockLedgerReader struct {
	countReservedFunc func(ctx context.Context, jobcardID string) (int64, error)
}

func (m *mockLedgerReader) CountReserved(ctx context.Context, jobcardID string) (int64, error) {
	if m.countReservedFunc != nil {
		return m.countReservedFunc(ctx, jobcardID)
	}
	return 0, nil
}

func newTestConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   logger.LevelError,
			Format:  logger.FormatJSON,
			Service: "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func newTestService(repo *mockJobcardRepository, bookings *mockBookingSource, mechanics *mockMechanicSource, ledger *mockLedgerReader) JobcardService {
	cfg := newTestConfig()
	return NewJobcardService(
		repo,
		bookings,
		mechanics,
		ledger,
		validator.NewJobcardValidator(cfg.Log),
		events.NewNopPublisher(),
		cfg,
	)
}

const (
	testBookingID = "64f000000000000000000001"
	testJobcardID = "64f000000000000000000010"
)

func openJobcard(mechanicIDs ...string) *model.Jobcard {
	return &model.Jobcard{
		ID:          testJobcardID,
		BookingID:   testBookingID,
		Status:      model.JobcardOpen,
		MechanicIDs: mechanicIDs,
	}
}

func TestCreateForArrival_SeedsServiceDetails(t *testing.T) {
	var created *model.Jobcard
	repo := &mockJobcardRepository{
		createFunc: func(ctx context.Context, jobcard *model.Jobcard) error {
			jobcard.ID = testJobcardID
			created = jobcard
			return nil
		},
	}
	bookings := &mockBookingSource{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{
				ID:           id,
				Status:       model.StatusArrived,
				ServiceTypes: []string{"oil change", "wheel alignment"},
			}, nil
		},
	}
	svc := newTestService(repo, bookings, &mockMechanicSource{}, &mockLedgerReader{})

	jobcard, err := svc.CreateForArrival(context.Background(), testBookingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil {
		t.Fatal("expected jobcard to be persisted")
	}
	if jobcard.Status != model.JobcardOpen {
		t.Errorf("expected open jobcard, got %s", jobcard.Status)
	}
	if len(jobcard.ServiceDetails) != 2 {
		t.Fatalf("expected 2 seeded service details, got %d", len(jobcard.ServiceDetails))
	}
	if jobcard.ServiceDetails[0].Description != "oil change" {
		t.Errorf("expected first detail from booking, got %q", jobcard.ServiceDetails[0].Description)
	}
	if len(jobcard.MechanicIDs) != 0 {
		t.Errorf("new jobcard must start with an empty roster, got %v", jobcard.MechanicIDs)
	}
}

func TestCreateForArrival_IdempotentPerBooking(t *testing.T) {
	existing := openJobcard("mech-1")
	repo := &mockJobcardRepository{
		findByBookingIDFunc: func(ctx context.Context, bookingID string) (*model.Jobcard, error) {
			return existing, nil
		},
		createFunc: func(ctx context.Context, jobcard *model.Jobcard) error {
			t.Fatal("a second jobcard must not be created for the same booking")
			return nil
		},
	}
	svc := newTestService(repo, &mockBookingSource{}, &mockMechanicSource{}, &mockLedgerReader{})

	jobcard, err := svc.CreateForArrival(context.Background(), testBookingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jobcard.ID != existing.ID {
		t.Errorf("expected the existing jobcard, got %s", jobcard.ID)
	}
}

func TestCreateForArrival_RequiresArrivedBooking(t *testing.T) {
	bookings := &mockBookingSource{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{ID: id, Status: model.StatusConfirmed}, nil
		},
	}
	svc := newTestService(&mockJobcardRepository{}, bookings, &mockMechanicSource{}, &mockLedgerReader{})

	_, err := svc.CreateForArrival(context.Background(), testBookingID)
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected %s, got %v", apperrors.CodeConflict, err)
	}
}

func TestAssignMechanic_Success(t *testing.T) {
	repo := &mockJobcardRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Jobcard, error) {
			return openJobcard(), nil
		},
	}
	mechanics := &mockMechanicSource{
		getByIDFunc: func(ctx context.Context, id string) (*model.Mechanic, error) {
			return &model.Mechanic{ID: id, Availability: true, IsActive: true}, nil
		},
	}
	svc := newTestService(repo, &mockBookingSource{}, mechanics, &mockLedgerReader{})

	jobcard, err := svc.AssignMechanic(context.Background(), testJobcardID, "mech-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !jobcard.HasMechanic("mech-1") {
		t.Errorf("expected mech-1 on roster, got %v", jobcard.MechanicIDs)
	}
}

func TestAssignMechanic_RejectsUnavailable(t *testing.T) {
	repo := &mockJobcardRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Jobcard, error) {
			return openJobcard(), nil
		},
	}
	mechanics := &mockMechanicSource{
		getByIDFunc: func(ctx context.Context, id string) (*model.Mechanic, error) {
			return &model.Mechanic{ID: id, Availability: false, IsActive: true}, nil
		},
	}
	svc := newTestService(repo, &mockBookingSource{}, mechanics, &mockLedgerReader{})

	_, err := svc.AssignMechanic(context.Background(), testJobcardID, "mech-1")
	if !apperrors.HasCode(err, apperrors.CodeMechanicUnavail) {
		t.Fatalf("expected %s, got %v", apperrors.CodeMechanicUnavail, err)
	}
}

func TestAssignMechanic_RejectsDuplicate(t *testing.T) {
	repo := &mockJobcardRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Jobcard, error) {
			return openJobcard("mech-1"), nil
		},
	}
	svc := newTestService(repo, &mockBookingSource{}, &mockMechanicSource{}, &mockLedgerReader{})

	_, err := svc.AssignMechanic(context.Background(), testJobcardID, "mech-1")
	if !apperrors.HasCode(err, apperrors.CodeAlreadyAssigned) {
		t.Fatalf("expected %s, got %v", apperrors.CodeAlreadyAssigned, err)
	}
}

func TestAssignMechanic_RejectsClosedJobcard(t *testing.T) {
	repo := &mockJobcardRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Jobcard, error) {
			jc := openJobcard()
			jc.Status = model.JobcardClosed
			return jc, nil
		},
	}
	svc := newTestService(repo, &mockBookingSource{}, &mockMechanicSource{}, &mockLedgerReader{})

	_, err := svc.AssignMechanic(context.Background(), testJobcardID, "mech-1")
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected %s, got %v", apperrors.CodeConflict, err)
	}
}

func TestClose_Success(t *testing.T) {
	var writtenStatus model.JobcardStatus
	repo := &mockJobcardRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Jobcard, error) {
			return openJobcard("mech-1"), nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status model.JobcardStatus, closedAt *time.Time) error {
			writtenStatus = status
			if closedAt == nil {
				t.Error("expected closed_at to be stamped")
			}
			return nil
		},
	}
	svc := newTestService(repo, &mockBookingSource{}, &mockMechanicSource{}, &mockLedgerReader{})

	jobcard, err := svc.Close(context.Background(), testJobcardID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if writtenStatus != model.JobcardClosed {
		t.Errorf("expected closed status write, got %s", writtenStatus)
	}
	if jobcard.ClosedAt == nil {
		t.Error("expected returned jobcard to carry closed_at")
	}
}

func TestClose_BlockedByReservedLines(t *testing.T) {
	repo := &mockJobcardRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Jobcard, error) {
			return openJobcard("mech-1"), nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status model.JobcardStatus, closedAt *time.Time) error {
			t.Fatal("jobcard must not close while ledger lines are reserved")
			return nil
		},
	}
	ledger := &mockLedgerReader{
		countReservedFunc: func(ctx context.Context, jobcardID string) (int64, error) {
			return 3, nil
		},
	}
	svc := newTestService(repo, &mockBookingSource{}, &mockMechanicSource{}, ledger)

	_, err := svc.Close(context.Background(), testJobcardID)
	if !apperrors.HasCode(err, apperrors.CodePartsReserved) {
		t.Fatalf("expected %s, got %v", apperrors.CodePartsReserved, err)
	}
}

func TestClose_RequiresMechanic(t *testing.T) {
	repo := &mockJobcardRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Jobcard, error) {
			return openJobcard(), nil
		},
	}
	svc := newTestService(repo, &mockBookingSource{}, &mockMechanicSource{}, &mockLedgerReader{})

	_, err := svc.Close(context.Background(), testJobcardID)
	if !apperrors.HasCode(err, apperrors.CodeNoMechanicAssigned) {
		t.Fatalf("expected %s, got %v", apperrors.CodeNoMechanicAssigned, err)
	}
}

func TestAbandon_AlreadyAbandonedIsNoop(t *testing.T) {
	repo := &mockJobcardRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Jobcard, error) {
			jc := openJobcard()
			jc.Status = model.JobcardAbandoned
			return jc, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status model.JobcardStatus, closedAt *time.Time) error {
			t.Fatal("no status write expected for an already abandoned jobcard")
			return nil
		},
	}
	svc := newTestService(repo, &mockBookingSource{}, &mockMechanicSource{}, &mockLedgerReader{})

	if err := svc.Abandon(context.Background(), testJobcardID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAbandon_ClosedJobcardRejected(t *testing.T) {
	repo := &mockJobcardRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Jobcard, error) {
			jc := openJobcard("mech-1")
			jc.Status = model.JobcardClosed
			return jc, nil
		},
	}
	svc := newTestService(repo, &mockBookingSource{}, &mockMechanicSource{}, &mockLedgerReader{})

	err := svc.Abandon(context.Background(), testJobcardID)
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected %s, got %v", apperrors.CodeConflict, err)
	}
}

func TestUpdateServiceDetails_RequiresOpenJobcard(t *testing.T) {
	repo := &mockJobcardRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Jobcard, error) {
			jc := openJobcard("mech-1")
			jc.Status = model.JobcardClosed
			return jc, nil
		},
	}
	svc := newTestService(repo, &mockBookingSource{}, &mockMechanicSource{}, &mockLedgerReader{})

	_, err := svc.UpdateServiceDetails(context.Background(), testJobcardID, []model.ServiceDetail{
		{Description: "replace brake pads"},
	})
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected %s, got %v", apperrors.CodeConflict, err)
	}
}

func TestUpdateServiceDetails_EmptyRejected(t *testing.T) {
	svc := newTestService(&mockJobcardRepository{}, &mockBookingSource{}, &mockMechanicSource{}, &mockLedgerReader{})

	_, err := svc.UpdateServiceDetails(context.Background(), testJobcardID, nil)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected %s, got %v", apperrors.CodeValidation, err)
	}
}
