package main

import (
	"os"
	"strings"

	"srsgraph/scheduler/applog"
	"srsgraph/scheduler/clock"
	"srsgraph/scheduler/dao"
	"srsgraph/scheduler/handlers"
	"srsgraph/scheduler/middleware"
	"srsgraph/scheduler/models"
	"srsgraph/scheduler/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		os.Stderr.WriteString("info: .env file not found, relying on environment variables\n")
	}

	env := os.Getenv("APP_ENV")
	log := applog.New(env)

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := dao.InitDB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	userDAO := dao.NewUserDAO(db)
	domainDAO := dao.NewDomainDAO(db)
	definitionDAO := dao.NewDefinitionDAO(db)
	exerciseDAO := dao.NewExerciseDAO(db)
	progressDAO := dao.NewProgressDAO(db)
	graphDAO := dao.NewGraphDAO(db)

	srsService := services.NewSRSService(db, clock.Real{}, log)

	adminUser := &models.User{
		Username:  "admin",
		Email:     "admin@example.com",
		Password:  "admin_password",
		Level:     "admin",
		FirstName: "Admin",
		LastName:  "User",
		IsAdmin:   true,
	}
	if err := userDAO.CreateAdminUser(adminUser); err != nil {
		log.Warn().Err(err).Msg("failed to create admin user")
	} else {
		log.Info().Msg("admin user created or already exists")
	}

	userHandler := handlers.NewUserHandler(userDAO)
	authHandler := handlers.NewAuthHandler(userDAO)
	domainHandler := handlers.NewDomainHandler(domainDAO, progressDAO)
	definitionHandler := handlers.NewDefinitionHandler(definitionDAO, domainDAO)
	exerciseHandler := handlers.NewExerciseHandler(exerciseDAO, domainDAO)
	graphHandler := handlers.NewGraphHandler(graphDAO, domainDAO)
	srsHandler := handlers.NewSRSHandler(db, srsService, domainDAO, progressDAO)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	allowedOrigins := []string{"http://localhost:3000"}
	if corsOrigin := os.Getenv("CORS_ALLOWED_ORIGIN"); corsOrigin != "" {
		origins := strings.Split(corsOrigin, ",")
		allowedOrigins = make([]string, len(origins))
		for i, origin := range origins {
			allowedOrigins[i] = strings.TrimSpace(origin)
		}
	}
	corsConfig.AllowOrigins = allowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/refresh", authHandler.RefreshToken)
		}

		api.GET("/domains/public", domainHandler.GetPublicDomains)

		authorized := api.Group("/")
		authorized.Use(middleware.AuthMiddleware())
		{
			authorized.GET("/users/me", userHandler.GetCurrentUser)
			authorized.PUT("/users/me", userHandler.UpdateCurrentUser)

			domains := authorized.Group("/domains")
			{
				domains.GET("", domainHandler.GetDomains)
				domains.POST("", domainHandler.CreateDomain)
				domains.GET("/my", domainHandler.GetMyDomains)
				domains.GET("/enrolled", domainHandler.GetEnrolledDomains)
				domains.GET("/:id", domainHandler.GetDomain)
				domains.PUT("/:id", domainHandler.UpdateDomain)
				domains.DELETE("/:id", domainHandler.DeleteDomain)
				domains.POST("/:id/enroll", domainHandler.EnrollInDomain)

				domains.GET("/:id/comments", domainHandler.GetComments)
				domains.POST("/:id/comments", domainHandler.AddComment)
				domains.DELETE("/:id/comments/:commentId", domainHandler.DeleteComment)

				domains.GET("/:id/definitions", definitionHandler.GetDomainDefinitions)
				domains.POST("/:id/definitions", definitionHandler.CreateDefinition)

				domains.GET("/:id/exercises", exerciseHandler.GetDomainExercises)
				domains.POST("/:id/exercises", exerciseHandler.CreateExercise)

				domains.GET("/:id/graph", graphHandler.GetVisualGraph)
				domains.PUT("/:id/graph/positions", graphHandler.UpdatePositions)
				domains.GET("/:id/export", graphHandler.ExportDomain)
				domains.POST("/:id/import", graphHandler.ImportDomain)

				// SRS surface: progress, stats and due queue per domain.
				domains.GET("/:domainId/srs/progress", srsHandler.GetDomainProgress)
				domains.GET("/:domainId/srs/stats", srsHandler.GetDomainStats)
				domains.GET("/:domainId/srs/due", srsHandler.GetDueReviews)
				domains.GET("/:domainId/srs/prerequisites", srsHandler.GetPrerequisites)
			}

			definitions := authorized.Group("/definitions")
			{
				definitions.GET("/:id", definitionHandler.GetDefinition)
				definitions.PUT("/:id", definitionHandler.UpdateDefinition)
				definitions.DELETE("/:id", definitionHandler.DeleteDefinition)
				definitions.GET("/code/:code", definitionHandler.GetDefinitionByCode)
			}

			exercises := authorized.Group("/exercises")
			{
				exercises.GET("/:id", exerciseHandler.GetExercise)
				exercises.PUT("/:id", exerciseHandler.UpdateExercise)
				exercises.DELETE("/:id", exerciseHandler.DeleteExercise)
				exercises.GET("/code/:code", exerciseHandler.GetExerciseByCode)
				exercises.POST("/:id/verify", exerciseHandler.VerifyAnswer)
			}

			// Spaced-repetition surface (§6.1)
			srs := authorized.Group("/srs")
			{
				srs.POST("/reviews", srsHandler.SubmitReview)
				srs.GET("/reviews/history", srsHandler.GetReviewHistory)
				srs.PUT("/nodes/status", srsHandler.UpdateNodeStatus)

				srs.POST("/sessions", srsHandler.StartSession)
				srs.PUT("/sessions/:sessionId/end", srsHandler.EndSession)
				srs.GET("/sessions", srsHandler.GetUserSessions)

				srs.POST("/prerequisites", srsHandler.CreatePrerequisite)
				srs.DELETE("/prerequisites/:prerequisiteId", srsHandler.DeletePrerequisite)
			}

			admin := authorized.Group("/admin")
			admin.Use(middleware.AdminRequired())
			{
				admin.GET("/users", userHandler.GetAllUsers)
			}
		}
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	log.Info().Str("port", port).Msg("server starting")

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	if err := router.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
