package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/zk694441-ux/doctor-appointment-system/internal/app"
	"github.com/zk694441-ux/doctor-appointment-system/internal/config"
	"github.com/zk694441-ux/doctor-appointment-system/internal/server"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to db")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("db ping")
	}
	log.Info().Msg("connected to postgres")

	applyMigrations(ctx, pool, log)

	appInstance := app.New(pool, cfg, log)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(app.RequestLogger(log))
	router.Use(app.CORS(cfg.AllowedOrigins))

	// OAuth2 callback stays outside the authenticated API surface
	router.GET("/oauth2callback", appInstance.GoogleOAuth2CallbackHandler)

	rl := app.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register-doctor", rl.Middleware(), appInstance.RegisterDoctorHandler)
			auth.POST("/register-patient", rl.Middleware(), appInstance.RegisterPatientHandler)
			auth.POST("/login", rl.Middleware(), appInstance.LoginHandler)
			auth.POST("/logout", appInstance.AuthRequired(), appInstance.LogoutHandler)
			auth.PUT("/doctor/locations", appInstance.AuthRequired(), appInstance.AddDoctorLocationsHandler)
		}

		api.GET("/doctors", appInstance.ListDoctorsHandler)
		api.GET("/doctors/:id", appInstance.GetDoctorHandler)

		availability := api.Group("/availability")
		{
			availability.POST("/doctor", appInstance.AuthRequired(), appInstance.SubmitAvailabilityHandler)
			availability.GET("/doctor/:id", appInstance.GetAvailabilityHandler)
		}

		appointments := api.Group("/appointments", appInstance.AuthRequired())
		{
			appointments.POST("", appInstance.BookSlotHandler)
			appointments.GET("/doctor/:doctorId", appInstance.DoctorBookingsHandler)
			appointments.DELETE("/:id", appInstance.CancelAppointmentHandler)
			appointments.PATCH("/:id/reschedule", appInstance.RescheduleAppointmentHandler)
		}

		api.GET("/patients/profile", appInstance.AuthRequired(), appInstance.PatientProfileHandler)

		calendar := api.Group("/calendar", appInstance.AuthRequired())
		{
			calendar.GET("/auth", appInstance.GoogleAuthHandler)
			calendar.GET("/events", appInstance.GoogleCalendarEventsHandler)
			calendar.GET("/calendars", appInstance.GoogleCalendarListHandler)
		}
	}

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := server.Run(router, cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) {
	migration, err := os.ReadFile("db/migrations/001_init.sql")
	if err != nil {
		log.Warn().Err(err).Msg("migration file not found, skipping")
		return
	}
	if _, err := pool.Exec(ctx, string(migration)); err != nil {
		log.Warn().Err(err).Msg("migration")
		return
	}
	log.Info().Msg("migration applied")
}
