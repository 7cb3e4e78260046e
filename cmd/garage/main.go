package main

import (
	bookingshandler "pitstop/internal/bookings/handler"
	bookingsrepo "pitstop/internal/bookings/repository"
	bookingsservice "pitstop/internal/bookings/service"
	bookingsvalidator "pitstop/internal/bookings/validator"
	jobcardshandler "pitstop/internal/jobcards/handler"
	jobcardsrepo "pitstop/internal/jobcards/repository"
	jobcardsservice "pitstop/internal/jobcards/service"
	jobcardsvalidator "pitstop/internal/jobcards/validator"
	mechanicshandler "pitstop/internal/mechanics/handler"
	mechanicsrepo "pitstop/internal/mechanics/repository"
	mechanicsservice "pitstop/internal/mechanics/service"
	mechanicsvalidator "pitstop/internal/mechanics/validator"
	partshandler "pitstop/internal/parts/handler"
	partsrepo "pitstop/internal/parts/repository"
	partsservice "pitstop/internal/parts/service"
	partsvalidator "pitstop/internal/parts/validator"
	"pitstop/pkg/app"
	"pitstop/pkg/config"
	"pitstop/pkg/events"
	"pitstop/pkg/kafka"
)

const ServiceName = "garage"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting garage service")

	publisher := initPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	bookingSvc, jobcardSvc, mechanicSvc, partSvc := initServices(cfg, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		bookingshandler.NewBookingHandler(bookingSvc, cfg),
		jobcardshandler.NewJobcardHandler(jobcardSvc, cfg),
		mechanicshandler.NewMechanicHandler(mechanicSvc, cfg),
		partshandler.NewPartHandler(partSvc, cfg),
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, workflow events will not be published")
		return events.NewNopPublisher()
	}

	producer, err := kafka.NewProducer(kafka.LoadConfig(), cfg.KafkaTopic, cfg.KafkaTopic+".dlq")
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	cfg.Log.Info("Kafka producer initialized", "topic", cfg.KafkaTopic)
	return events.NewKafkaPublisher(producer, cfg.Log)
}

// initServices wires the four domains together. The cross-domain
// collaborator interfaces are satisfied structurally: the booking
// lifecycle drives jobcards and mechanic availability, jobcard closure
// consults the parts ledger, and the ledger checks jobcard state.
func initServices(cfg *config.Config, publisher events.Publisher) (
	bookingsservice.BookingService,
	jobcardsservice.JobcardService,
	mechanicsservice.MechanicService,
	partsservice.PartService,
) {
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	slotLockRepo := bookingsrepo.NewSlotLockRepository(cfg)
	jobcardRepo := jobcardsrepo.NewMongoJobcardRepository(cfg)
	mechanicRepo := mechanicsrepo.NewMongoMechanicRepository(cfg)
	partRepo := partsrepo.NewMongoPartRepository(cfg)
	ledgerRepo := partsrepo.NewMongoLedgerRepository(cfg)

	mechanicSvc := mechanicsservice.NewMechanicService(
		mechanicRepo,
		mechanicsvalidator.NewMechanicValidator(cfg.Log),
		cfg,
	)

	jobcardSvc := jobcardsservice.NewJobcardService(
		jobcardRepo,
		bookingRepo,
		mechanicSvc,
		ledgerRepo,
		jobcardsvalidator.NewJobcardValidator(cfg.Log),
		publisher,
		cfg,
	)

	bookingSvc := bookingsservice.NewBookingService(
		bookingRepo,
		slotLockRepo,
		jobcardSvc,
		mechanicSvc,
		bookingsvalidator.NewBookingValidator(cfg.TimeSlots, cfg.Log),
		publisher,
		cfg,
	)

	partSvc := partsservice.NewPartService(
		partRepo,
		ledgerRepo,
		jobcardSvc,
		partsvalidator.NewPartValidator(cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Garage services initialized", "database", cfg.MongoDatabaseName)
	return bookingSvc, jobcardSvc, mechanicSvc, partSvc
}
