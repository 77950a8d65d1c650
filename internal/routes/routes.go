package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/salonflow/salon-api/internal/audit"
	"github.com/salonflow/salon-api/internal/config"
	"github.com/salonflow/salon-api/internal/expiry"
	"github.com/salonflow/salon-api/internal/handlers"
	infraRepo "github.com/salonflow/salon-api/internal/infra/repository"
	"github.com/salonflow/salon-api/internal/locks"
	"github.com/salonflow/salon-api/internal/middleware"
	"github.com/salonflow/salon-api/internal/models"
	"github.com/salonflow/salon-api/internal/payments"
	ucAppointment "github.com/salonflow/salon-api/internal/usecase/appointment"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// MIDDLEWARE
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	{
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, allocation lock disabled")
			rdb = nil
		}
		cancel()
	}
	dayLock := locks.NewDayLock(rdb)

	asynqOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	expiryScheduler := expiry.NewScheduler(asynqOpt)

	// ======================================================
	// PAYMENTS
	// ======================================================
	var gateway payments.Gateway
	if cfg.PaymentProvider == "mercadopago" {
		mp, err := payments.NewMercadoPagoGateway(cfg.MercadoPagoToken)
		if err != nil {
			log.Fatal().Err(err).Msg("mercadopago gateway init failed")
		}
		gateway = mp
	} else {
		gateway = payments.NewMobileMoneyClient(cfg.PaymentBaseURL, cfg.PaymentToken)
	}

	poller := payments.NewPoller(
		gateway,
		time.Duration(cfg.PaymentPollSecs)*time.Second,
		cfg.PaymentPollTries,
	)
	confirmer := payments.NewConfirmer(appointmentRepo, gateway, poller, auditDispatcher)

	// ======================================================
	// USE CASES
	// ======================================================
	allocateUC := ucAppointment.NewAllocateAppointment(
		appointmentRepo,
		dayLock,
		expiryScheduler,
		auditDispatcher,
	)

	slotsUC := ucAppointment.NewListSlots(appointmentRepo)
	releaseUC := ucAppointment.NewReleaseHold(appointmentRepo, auditDispatcher)
	listByDayUC := ucAppointment.NewListByDay(appointmentRepo)
	advanceUC := ucAppointment.NewAdvanceStatus(appointmentRepo, auditDispatcher)
	startServiceUC := ucAppointment.NewStartService(appointmentRepo, auditDispatcher)
	completeServiceUC := ucAppointment.NewCompleteService(appointmentRepo, auditDispatcher)

	// Delayed auto-cancellation of unpaid holds.
	expiry.RunWorker(asynqOpt, releaseUC)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)

	bookingHandler := handlers.NewBookingHandler(
		appointmentRepo,
		allocateUC,
		slotsUC,
		releaseUC,
		confirmer,
	)

	appointmentHandler := handlers.NewAppointmentHandler(
		listByDayUC,
		advanceUC,
		startServiceUC,
		completeServiceUC,
	)

	availabilityHandler := handlers.NewAvailabilityHandler(appointmentRepo)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC BOOKING FLOW
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/:slug/services", bookingHandler.ListServices)
			publicAPI.GET("/:slug/slots", bookingHandler.ListSlots)
			publicAPI.POST("/:slug/appointments", bookingHandler.CreateHold)
			publicAPI.DELETE("/:slug/appointments/:id", bookingHandler.CancelHold)
			publicAPI.POST("/:slug/appointments/:id/pay", bookingHandler.Pay)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// STAFF (waiting board)
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		secured.Use(middleware.RequireRole(models.RoleAdmin, models.RoleBarber))
		{
			secured.GET("/me/appointments", appointmentHandler.ListByDay)
			secured.PATCH("/me/appointments/:id/advance", appointmentHandler.Advance)
			secured.PATCH("/me/appointment-services/:id/start", appointmentHandler.StartService)
			secured.PATCH("/me/appointment-services/:id/complete", appointmentHandler.CompleteService)

			secured.GET("/me/availability", availabilityHandler.Get)
			secured.PUT("/me/availability", availabilityHandler.Update)
		}
	}
}
