package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lifeline-project/lifeline-api/internal/config"
	"github.com/lifeline-project/lifeline-api/internal/database"
	"github.com/lifeline-project/lifeline-api/internal/handlers"
	"github.com/lifeline-project/lifeline-api/internal/jobs"
	"github.com/lifeline-project/lifeline-api/internal/repository"
	scheduler "github.com/lifeline-project/lifeline-api/internal/scheduler"
	"github.com/lifeline-project/lifeline-api/internal/services"
	"github.com/lifeline-project/lifeline-api/pkg/logger"
	"github.com/lifeline-project/lifeline-api/pkg/middleware"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	unlockRepo := repository.NewUnlockRepository(db)
	progressLogRepo := repository.NewProgressLogRepository(db)

	// --- Services ---
	userService := services.NewUserService(userRepo)
	milestoneService := services.NewMilestoneService(milestoneRepo, unlockRepo, goalRepo)
	goalService := services.NewGoalService(goalRepo, progressLogRepo, milestoneService)
	dashboardService := services.NewDashboardService(goalRepo, milestoneService)
	reportService := services.NewReportService(goalRepo)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	goalHandler := handlers.NewGoalHandler(goalService)
	milestoneHandler := handlers.NewMilestoneHandler(milestoneService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	reportHandler := handlers.NewReportHandler(reportService)

	router := mux.NewRouter()

	// Public user routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")

	// Goal routes
	goalRoutes := router.PathPrefix("/goals").Subrouter()
	goalRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	goalRoutes.HandleFunc("", goalHandler.CreateGoalHandler).Methods("POST")
	goalRoutes.HandleFunc("", goalHandler.GetGoalsHandler).Methods("GET")
	goalRoutes.HandleFunc("/{id}", goalHandler.GetGoalHandler).Methods("GET")
	goalRoutes.HandleFunc("/{id}", goalHandler.DeleteGoalHandler).Methods("DELETE")
	goalRoutes.HandleFunc("/{id}/progress", goalHandler.UpdateGoalProgressHandler).Methods("PATCH")
	goalRoutes.HandleFunc("/{id}/progress", goalHandler.GetGoalProgressHandler).Methods("GET")

	// Milestone catalog
	milestoneRoutes := router.PathPrefix("/milestones").Subrouter()
	milestoneRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	milestoneRoutes.HandleFunc("", milestoneHandler.GetMilestonesHandler).Methods("GET")

	// Dashboard
	dashboardRoutes := router.PathPrefix("/dashboard").Subrouter()
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	dashboardRoutes.HandleFunc("", dashboardHandler.GetDashboardHandler).Methods("GET")

	// Reports
	reportRoutes := router.PathPrefix("/reports").Subrouter()
	reportRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	reportRoutes.HandleFunc("/timeline", reportHandler.TimelineHandler).Methods("GET")
	reportRoutes.HandleFunc("/status", reportHandler.StatusHandler).Methods("GET")
	reportRoutes.HandleFunc("/categories", reportHandler.CategoriesHandler).Methods("GET")
	reportRoutes.HandleFunc("/completions", reportHandler.CompletionsHandler).Methods("GET")

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/users/{id}/goals", goalHandler.AdminListUserGoalsHandler).Methods("GET")
	adminRoutes.HandleFunc("/goals/{id}", goalHandler.AdminDeleteGoalHandler).Methods("DELETE")
	adminRoutes.HandleFunc("/milestones", milestoneHandler.CreateMilestoneHandler).Methods("POST")

	router.Use(middleware.LoggingMiddleware)

	// Daily sweep that re-runs the idempotent milestone evaluation
	reconciler := jobs.NewMilestoneReconciler(goalService, milestoneService)
	scheduler.StartReconcileCronJobs(reconciler)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
