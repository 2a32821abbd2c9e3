package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "Backend-Feedback-Portal/docs"
	"Backend-Feedback-Portal/src/config"
	"Backend-Feedback-Portal/src/controllers"
	DB "Backend-Feedback-Portal/src/database"
	"Backend-Feedback-Portal/src/jobs"
	"Backend-Feedback-Portal/src/middleware"
	"Backend-Feedback-Portal/src/routes"
	"Backend-Feedback-Portal/src/seeder"
	"Backend-Feedback-Portal/src/services/auth"
	"Backend-Feedback-Portal/src/services/email"
	"Backend-Feedback-Portal/src/services/feedbacks"
	"Backend-Feedback-Portal/src/services/forms"
	"Backend-Feedback-Portal/src/services/notifications"
	"Backend-Feedback-Portal/src/services/ocr"
	"Backend-Feedback-Portal/src/services/responses"
	"Backend-Feedback-Portal/src/services/uploads"
	"Backend-Feedback-Portal/src/services/users"
	"Backend-Feedback-Portal/src/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// @title        Student Feedback Portal API
// @version      1.0
// @BasePath     /api/v1
// @securityDefinitions.apikey BearerAuth
// @in           header
// @name         Authorization
func main() {
	cfg := config.Load()

	// เชื่อมต่อกับ MongoDB
	// collections + indexes ถูกเตรียมใน ConnectMongoDB
	if err := DB.ConnectMongoDB(cfg.MongoURI, cfg.MongoDB); err != nil {
		log.Fatalf("Error connecting to the database: %v", err)
	}

	// Redis เป็น optional: ไม่มีก็ยังรันได้ (dev mode)
	DB.InitRedis(cfg.RedisURI)
	DB.InitAsynq()

	userStore := users.NewMongoStore()
	formStore := forms.NewMongoStore()

	notificationSvc := notifications.NewService(notifications.NewMongoStore(), userStore)
	if cfg.SMTPEnabled() {
		sender, err := email.NewSMTPSender(cfg)
		if err != nil {
			log.Println("⚠️ SMTP disabled:", err)
		} else {
			notificationSvc.WithMailer(email.NewFormMailer(sender, cfg.AppBaseURL))
		}
	}

	dispatcher := jobs.NewDispatcher(DB.AsynqClient, notificationSvc)
	formSvc := forms.NewService(formStore, userStore, dispatcher)
	responseSvc := responses.NewService(responses.NewMongoStore(), formSvc)
	feedbackSvc := feedbacks.NewService(feedbacks.NewMongoStore(), userStore, notificationSvc)
	userSvc := users.NewService(userStore)

	if cfg.AdminEmail != "" {
		seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
		admin, err := seeder.SeedAdmin(seedCtx, userStore, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			log.Println("❌ Admin seed failed:", err)
		} else if cfg.SeedSampleForms {
			if _, err := seeder.SeedSampleForm(seedCtx, formSvc, admin.ID); err != nil {
				log.Println("❌ Sample form seed failed:", err)
			}
		}
		cancelSeed()
	}

	jwtm := utils.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	blacklist := utils.NewRedisBlacklist()
	authSvc := auth.NewService(
		userStore,
		jwtm,
		blacklist,
		uploads.NewService(cfg.UploadDir, cfg.MaxUploadBytes),
		ocr.NewClient(cfg.OCRURL),
	)

	worker := jobs.StartWorker(DB.RedisURI, jobs.NewServeMux(formSvc, formSvc, notificationSvc))

	app := fiber.New(fiber.Config{
		ErrorHandler: utils.ErrorHandler,
		BodyLimit:    int(cfg.MaxUploadBytes) + 1<<20,
	})

	app.Use(middleware.Recovery())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Origins(),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))
	app.Use(middleware.GlobalRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow))

	// รวม routes จากแต่ละ module
	routes.InitRoutes(app, routes.Handlers{
		JWT:           jwtm,
		Blacklist:     blacklist,
		Auth:          controllers.NewAuthController(authSvc, cfg.CookieSecure),
		Users:         controllers.NewUserController(userSvc),
		Forms:         controllers.NewFormController(formSvc, cfg.AppBaseURL),
		Responses:     controllers.NewFormResponseController(responseSvc),
		Feedbacks:     controllers.NewFeedbackController(feedbackSvc),
		Notifications: controllers.NewNotificationController(notificationSvc),
	})

	go func() {
		log.Println("Server is running on port " + cfg.AppPort)
		if err := app.Listen(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Println("❌ Fiber shutdown:", err)
	}
	if worker != nil {
		worker.Shutdown()
	}
	DB.CloseAsynq()
	if DB.RedisClient != nil {
		_ = DB.RedisClient.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := DB.Disconnect(ctx); err != nil {
		log.Println("❌ Mongo disconnect:", err)
	}
}
