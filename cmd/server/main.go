package main

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/ai"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/config"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/database"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/handlers"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/repository"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/security"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Load templates
	templates, err := loadTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	log.Println("Templates loaded successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	eventRepo := repository.NewEventRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	mealRepo := repository.NewMealRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	if !emailService.IsEnabled() {
		log.Println("Email sending disabled (SES_FROM_EMAIL not set)")
	}

	aiClient := ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if !aiClient.Enabled() {
		log.Println("AI features disabled (OPENAI_API_KEY not set)")
	}

	authService := service.NewAuthService(userRepo, familyRepo, emailService, cfg.TokenSecret, cfg.SessionDuration)
	familyService := service.NewFamilyService(familyRepo, userRepo, emailService)
	notificationService := service.NewNotificationService(notificationRepo)
	taskService := service.NewTaskService(taskRepo, userRepo, notificationService)
	calendarService := service.NewCalendarService(eventRepo)
	budgetService := service.NewBudgetService(budgetRepo)
	mealService := service.NewMealService(mealRepo, userRepo, aiClient)
	messageService := service.NewMessageService(messageRepo, userRepo, notificationService)

	googleOAuth := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}

	// Initialize security helpers
	csrfStore := security.NewCSRFTokenStore(cfg.SessionDuration)
	rateLimiter := security.NewRateLimiter(10, time.Minute)

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService, csrfStore, rateLimiter)
	authHandler := handlers.NewAuthHandler(authService, middleware, templates, googleOAuth, cfg.OAuthRedirectBaseURL)
	dashboardHandler := handlers.NewDashboardHandler(familyService, taskService, calendarService, budgetService, mealService, messageService, notificationService, middleware, templates)
	familyHandler := handlers.NewFamilyHandler(familyService, middleware, templates)
	taskHandler := handlers.NewTaskHandler(taskService, familyService, middleware, templates)
	calendarHandler := handlers.NewCalendarHandler(calendarService, middleware, templates)
	budgetHandler := handlers.NewBudgetHandler(budgetService, middleware, templates)
	mealHandler := handlers.NewMealHandler(mealService, middleware, templates, cfg.UploadMaxSize)
	messageHandler := handlers.NewMessageHandler(messageService, familyService, middleware, templates)
	notificationHandler := handlers.NewNotificationHandler(notificationService, middleware, templates)

	// Setup routes
	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))

	// Public routes
	mux.HandleFunc("GET /", authHandler.Home)
	mux.HandleFunc("GET /login", authHandler.ShowLogin)
	mux.HandleFunc("POST /login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET /register", authHandler.ShowRegister)
	mux.HandleFunc("POST /register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /logout", authHandler.Logout)
	mux.HandleFunc("GET /auth/verify-email", authHandler.VerifyEmail)
	mux.HandleFunc("POST /auth/resend-verification", middleware.RateLimit(authHandler.ResendVerification))
	mux.HandleFunc("GET /forgot-password", authHandler.ShowForgotPassword)
	mux.HandleFunc("POST /forgot-password", middleware.RateLimit(authHandler.ForgotPassword))
	mux.HandleFunc("GET /auth/reset-password", authHandler.ShowResetPassword)
	mux.HandleFunc("POST /auth/reset-password", middleware.RateLimit(authHandler.ResetPassword))
	mux.HandleFunc("GET /auth/google/start", authHandler.StartGoogleOAuth)
	mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleOAuthCallback)

	// Dashboard
	mux.HandleFunc("GET /dashboard", middleware.RequireAuth(dashboardHandler.Dashboard))

	// Family routes
	mux.HandleFunc("GET /family", middleware.RequireAuth(familyHandler.ShowFamily))
	mux.HandleFunc("POST /family/rename", middleware.RequireParent(middleware.CSRFProtect(familyHandler.RenameFamily)))
	mux.HandleFunc("POST /family/invite", middleware.RequireParent(middleware.CSRFProtect(familyHandler.SendInvite)))
	mux.HandleFunc("POST /family/join", middleware.RequireAuth(middleware.CSRFProtect(familyHandler.JoinFamily)))
	mux.HandleFunc("POST /family/return-home", middleware.RequireAuth(middleware.CSRFProtect(familyHandler.ReturnHome)))
	mux.HandleFunc("POST /family/members/{id}/role", middleware.RequireParent(middleware.CSRFProtect(familyHandler.PromoteMember)))
	mux.HandleFunc("POST /family/shared-features", middleware.RequireAuth(middleware.CSRFProtect(familyHandler.UpdateSharedFeatures)))
	mux.HandleFunc("POST /family/dietary", middleware.RequireAuth(middleware.CSRFProtect(familyHandler.UpdateDietaryPreferences)))
	mux.HandleFunc("POST /family/groups/create", middleware.RequireParent(middleware.CSRFProtect(familyHandler.CreateGroup)))
	mux.HandleFunc("POST /family/groups/{id}/update", middleware.RequireParent(middleware.CSRFProtect(familyHandler.UpdateGroup)))
	mux.HandleFunc("POST /family/groups/{id}/delete", middleware.RequireParent(middleware.CSRFProtect(familyHandler.DeleteGroup)))

	// Task routes
	mux.HandleFunc("GET /tasks", middleware.RequireAuth(taskHandler.ShowTasks))
	mux.HandleFunc("POST /tasks/create", middleware.RequireAuth(middleware.CSRFProtect(taskHandler.CreateTask)))
	mux.HandleFunc("GET /tasks/{id}", middleware.RequireAuth(taskHandler.ViewTask))
	mux.HandleFunc("POST /tasks/{id}/update", middleware.RequireAuth(middleware.CSRFProtect(taskHandler.UpdateTask)))
	mux.HandleFunc("POST /tasks/{id}/status", middleware.RequireAuth(middleware.CSRFProtect(taskHandler.UpdateStatus)))
	mux.HandleFunc("POST /tasks/{id}/delete", middleware.RequireAuth(middleware.CSRFProtect(taskHandler.DeleteTask)))
	mux.HandleFunc("POST /tasks/{id}/comments", middleware.RequireAuth(middleware.CSRFProtect(taskHandler.AddComment)))

	// Calendar routes
	mux.HandleFunc("GET /calendar", middleware.RequireAuth(calendarHandler.ShowCalendar))
	mux.HandleFunc("GET /api/events", middleware.RequireAuth(calendarHandler.EventsAPI))
	mux.HandleFunc("POST /calendar/create", middleware.RequireAuth(middleware.CSRFProtect(calendarHandler.CreateEvent)))
	mux.HandleFunc("POST /calendar/{id}/update", middleware.RequireAuth(middleware.CSRFProtect(calendarHandler.UpdateEvent)))
	mux.HandleFunc("POST /calendar/{id}/delete", middleware.RequireAuth(middleware.CSRFProtect(calendarHandler.DeleteEvent)))

	// Budget routes
	mux.HandleFunc("GET /budget", middleware.RequireAuth(budgetHandler.ShowBudget))
	mux.HandleFunc("POST /budget/categories/create", middleware.RequireAuth(middleware.CSRFProtect(budgetHandler.CreateCategory)))
	mux.HandleFunc("POST /budget/categories/{id}/update", middleware.RequireAuth(middleware.CSRFProtect(budgetHandler.UpdateCategory)))
	mux.HandleFunc("POST /budget/categories/{id}/delete", middleware.RequireAuth(middleware.CSRFProtect(budgetHandler.DeleteCategory)))
	mux.HandleFunc("POST /budget/expenses/create", middleware.RequireAuth(middleware.CSRFProtect(budgetHandler.AddExpense)))
	mux.HandleFunc("POST /budget/expenses/{id}/delete", middleware.RequireAuth(middleware.CSRFProtect(budgetHandler.DeleteExpense)))

	// Meal routes
	mux.HandleFunc("GET /meals", middleware.RequireAuth(mealHandler.ShowMeals))
	mux.HandleFunc("POST /meals/generate", middleware.RequireAuth(middleware.CSRFProtect(mealHandler.GeneratePlan)))
	mux.HandleFunc("POST /meals/plans/{id}/delete", middleware.RequireAuth(middleware.CSRFProtect(mealHandler.DeletePlan)))
	mux.HandleFunc("POST /meals/plans/{id}/image", middleware.RequireAuth(middleware.CSRFProtect(mealHandler.GenerateMealImage)))
	mux.HandleFunc("POST /meals/plans/{id}/grocery-list", middleware.RequireAuth(middleware.CSRFProtect(mealHandler.BuildGroceryList)))
	mux.HandleFunc("POST /meals/transcribe", middleware.RequireAuth(mealHandler.TranscribeRequest))
	mux.HandleFunc("POST /meals/grocery/create", middleware.RequireAuth(middleware.CSRFProtect(mealHandler.AddGroceryItem)))
	mux.HandleFunc("POST /meals/grocery/{id}/toggle", middleware.RequireAuth(middleware.CSRFProtect(mealHandler.ToggleGroceryItem)))
	mux.HandleFunc("POST /meals/grocery/{id}/delete", middleware.RequireAuth(middleware.CSRFProtect(mealHandler.DeleteGroceryItem)))
	mux.HandleFunc("POST /meals/grocery/clear-purchased", middleware.RequireAuth(middleware.CSRFProtect(mealHandler.ClearPurchased)))

	// Message routes
	mux.HandleFunc("GET /messages", middleware.RequireAuth(messageHandler.ShowMessages))
	mux.HandleFunc("POST /messages/send", middleware.RequireAuth(middleware.CSRFProtect(messageHandler.SendMessage)))
	mux.HandleFunc("POST /messages/{id}/read", middleware.RequireAuth(messageHandler.MarkRead))

	// Notification routes
	mux.HandleFunc("GET /notifications", middleware.RequireAuth(notificationHandler.ShowNotifications))
	mux.HandleFunc("POST /notifications/{id}/read", middleware.RequireAuth(notificationHandler.MarkRead))
	mux.HandleFunc("POST /notifications/read-all", middleware.RequireAuth(notificationHandler.MarkAllRead))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupExpiredSessions(authService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}

// loadTemplates loads all template files
func loadTemplates(templatesPath string) (*template.Template, error) {
	baseTemplate := filepath.Join(templatesPath, "base.tmpl")

	patterns := []string{
		filepath.Join(templatesPath, "auth/*.tmpl"),
		filepath.Join(templatesPath, "pages/*.tmpl"),
		filepath.Join(templatesPath, "components/*.tmpl"),
	}

	var files []string
	files = append(files, baseTemplate)

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}

	// Define template functions
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"formatMoney": func(amount float64) string {
			return fmt.Sprintf("%.2f", amount)
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"join": func(items []string) string {
			return strings.Join(items, ", ")
		},
		"containsID": func(ids []int64, id int64) bool {
			for _, item := range ids {
				if item == id {
					return true
				}
			}
			return false
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return tmpl, nil
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else {
			log.Println("Expired sessions cleaned up")
		}
	}
}
