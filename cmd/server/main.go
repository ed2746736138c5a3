package main

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ticketmate-backend/internal/config"
	"ticketmate-backend/internal/database"
	"ticketmate-backend/internal/handlers"
	"ticketmate-backend/internal/middleware"
	"ticketmate-backend/internal/repositories"
	"ticketmate-backend/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := newLogger(cfg)
	log.Logger = logger

	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	if err := db.RunMigrations(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db.DB)
	eventRepo := repositories.NewEventRepository(db.DB)
	otpRepo := repositories.NewOTPRepository(db.DB)
	bookingRepo := repositories.NewBookingRepository(db.DB)

	// External services, falling back to mocks without credentials
	smsService := services.NewMockSMSService(&cfg.Hubtel)
	paymentGateway := services.NewMockPaymentService(&cfg.Paystack)

	// Domain services
	authService := services.NewAuthService(userRepo, cfg.JWT)
	eventService := services.NewEventService(eventRepo, userRepo)
	otpService := services.NewOTPService(otpRepo, userRepo, smsService)
	bookingService := services.NewBookingService(bookingRepo, eventRepo, paymentGateway)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	eventHandler := handlers.NewEventHandler(eventService)
	otpHandler := handlers.NewOTPHandler(otpService)
	paymentHandler := handlers.NewPaymentHandler(bookingService)

	router := newRouter(logger, authService, authHandler, eventHandler, otpHandler, paymentHandler)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("addr", addr).Str("env", cfg.Server.Env).Msg("Server starting")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if cfg.IsDevelopment() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func newRouter(
	logger zerolog.Logger,
	authService *services.AuthService,
	authHandler *handlers.AuthHandler,
	eventHandler *handlers.EventHandler,
	otpHandler *handlers.OTPHandler,
	paymentHandler *handlers.PaymentHandler,
) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	r.NotFound(middleware.NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler().ServeHTTP)

	requireAuth := middleware.RequireAuth(authService)
	optionalAuth := middleware.OptionalAuth(authService)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"OK"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", authHandler.Logout)
				r.Get("/profile", authHandler.Profile)
				r.Put("/profile", authHandler.UpdateProfile)
				r.Put("/preferences", authHandler.UpdatePreferences)
				r.Put("/password", authHandler.ChangePassword)
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventHandler.List)
			r.Get("/popular", eventHandler.Popular)
			r.With(optionalAuth).Get("/just-for-you", eventHandler.JustForYou)
			r.Get("/{id}", eventHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", eventHandler.Create)
				r.Put("/{id}", eventHandler.Update)
				r.Delete("/{id}", eventHandler.Delete)
			})
		})

		r.Route("/otp", func(r chi.Router) {
			r.Post("/send", otpHandler.Send)
			r.Post("/resend", otpHandler.Resend)
			r.Post("/verify", otpHandler.Verify)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/webhook", paymentHandler.Webhook)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/initialize", paymentHandler.Initialize)
				r.Get("/verify/{reference}", paymentHandler.Verify)
				r.Get("/bookings", paymentHandler.History)
				r.Get("/bookings/{id}", paymentHandler.BookingDetails)
			})
		})
	})

	return r
}
