package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"contest-hub-service/config"
	"contest-hub-service/handlers"
	"contest-hub-service/models"
	"contest-hub-service/services"
	"contest-hub-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/omise/omise-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB, contest images at most
	})

	allowedOriginsList := strings.Split(cfg.AllowedOrigins, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(allowedOriginsList, ","),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		MaxAge:       86400,
	}))

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Contest{},
		&models.Submission{},
		&models.Payment{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	r2, err := utils.NewR2Storage(cfg.CloudflareAccountID, cfg.R2AccessKeyID,
		cfg.R2AccessKeySecret, cfg.R2BucketName, cfg.CDNBaseURL)
	if err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	identityClient := services.NewIdentityClient(cfg.AuthServiceURL, cfg.AuthServiceToken)

	omiseClient, err := omise.NewClient(cfg.OmisePublicKey, cfg.OmiseSecretKey)
	if err != nil {
		log.Fatal("failed to create payment gateway client:", err)
	}
	gateway := services.NewOmiseGateway(omiseClient, cfg.OmiseSecretKey,
		cfg.OmiseCurrency, cfg.OmiseSourceType, cfg.ClientBaseURL)

	userService := services.NewUserService(db)
	contestService := services.NewContestService(db, r2)
	submissionService := services.NewSubmissionService(db)
	paymentService := services.NewPaymentService(db, gateway)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("A place for your contests")
	})

	handlers.SetupContestRoutes(app, contestService, identityClient)
	handlers.SetupUserRoutes(app, userService, identityClient)
	handlers.SetupPaymentRoutes(app, paymentService, submissionService, identityClient)

	contestService.StartOpsSweep()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Println("✅ Ops sweep running (hourly)")
	log.Printf("✅ CORS configured for origins: %s", cfg.AllowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
