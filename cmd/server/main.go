package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tasket/tasket-server/internal/config"
	"github.com/tasket/tasket-server/internal/database"
	"github.com/tasket/tasket-server/internal/handlers"
	"github.com/tasket/tasket-server/internal/middleware"
	"github.com/tasket/tasket-server/internal/realtime"
	"github.com/tasket/tasket-server/internal/repository"
	"github.com/tasket/tasket-server/internal/services"
	"github.com/tasket/tasket-server/internal/storage"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	if err := database.Connect(cfg); err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.Migrate(); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.WithError(err).Fatal("failed to create indexes")
	}

	// Storage. The local store always exists so URL-routed deletion works
	// even when new uploads go to the object store.
	localStore, err := storage.NewLocalStore(cfg.UploadsDir)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize uploads directory")
	}
	r2Store, err := storage.NewR2Store(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize object storage")
	}

	var uploader storage.Uploader = localStore
	if cfg.StorageBackend == config.StorageR2 {
		if !r2Store.Configured() {
			log.Fatal("STORAGE_BACKEND=r2 requires complete R2 credentials")
		}
		uploader = r2Store
	}
	cleaner := storage.NewCleaner(r2Store, localStore, log)

	// Realtime hub.
	hubCtx, stopHub := context.WithCancel(context.Background())
	hub := realtime.NewHub(log)
	go hub.Run(hubCtx)

	// Repositories and services.
	db := database.GetDB()
	taskRepo := repository.NewTaskRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	authService := services.NewAuthService(employeeRepo, log)
	notificationService := services.NewNotificationService(notificationRepo, hub, log)
	trashService := services.NewTrashService(taskRepo, cleaner, hub, log)

	if err := authService.EnsureAdmin(cfg); err != nil {
		log.WithError(err).Fatal("failed to seed admin account")
	}

	sweeper := services.NewSweeper(trashService, cfg.TrashRetentionDays, log)
	if err := sweeper.Start(); err != nil {
		log.WithError(err).Fatal("failed to start trash expiry sweeper")
	}

	// HTTP server.
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	store, err := redis.NewStore(10, "tcp",
		cfg.RedisHost+":"+cfg.RedisPort, "", "", []byte(cfg.SessionSecret))
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
	})
	router.Use(sessions.Sessions("tasket_session", store))

	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskRepo, trashService, notificationService, uploader, cleaner, hub, log)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	wsHandler := handlers.NewWSHandler(hub, cfg.FrontendURL, log)

	if cfg.StorageBackend == config.StorageLocal {
		router.Static("/uploads", localStore.Root())
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(authService), authHandler.Me)
		}

		protected := api.Group("")
		protected.Use(middleware.RequireAuth(authService))
		{
			tasks := protected.Group("/tasks")
			{
				tasks.GET("", taskHandler.List)
				tasks.GET("/trashed", taskHandler.ListTrashed)
				tasks.GET("/:id", taskHandler.Get)
				tasks.POST("", taskHandler.Create)
				tasks.PUT("/:id", taskHandler.Update)
				tasks.PUT("/:id/restore", taskHandler.Restore)
				tasks.DELETE("/:id", taskHandler.Delete)
				tasks.DELETE("/:id/permanent", taskHandler.PermanentDelete)
			}

			employees := protected.Group("/employees")
			{
				employees.GET("", handlers.ListEmployees)
				employees.GET("/:id", handlers.GetEmployee)
				employees.POST("", handlers.CreateEmployee)
				employees.PUT("/:id", handlers.UpdateEmployee)
				employees.DELETE("/:id", handlers.DeleteEmployee)
			}

			departments := protected.Group("/departments")
			{
				departments.GET("", handlers.ListDepartments)
				departments.POST("", handlers.CreateDepartment)
				departments.PUT("/:id", handlers.UpdateDepartment)
				departments.DELETE("/:id", handlers.DeleteDepartment)
			}

			projects := protected.Group("/projects")
			{
				projects.GET("", handlers.ListProjects)
				projects.GET("/:id", handlers.GetProject)
				projects.POST("", handlers.CreateProject)
				projects.PUT("/:id", handlers.UpdateProject)
				projects.DELETE("/:id", handlers.DeleteProject)
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", notificationHandler.List)
				notifications.PUT("/read-all", notificationHandler.MarkAllRead)
				notifications.PUT("/:id/read", notificationHandler.MarkRead)
				notifications.DELETE("/:id", notificationHandler.Delete)
			}
		}

		api.GET("/ws", middleware.RequireAuth(authService), wsHandler.Connect)
	}

	srv := &http.Server{
		Addr:           ":" + getPort(),
		Handler:        router,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	<-sweeper.Stop().Done()
	stopHub()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
	log.Info("server stopped")
}

func getPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8080"
}
