package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/roomstay/booking-service/config"
	"github.com/roomstay/booking-service/internal/consumer"
	"github.com/roomstay/booking-service/internal/handler"
	"github.com/roomstay/booking-service/internal/middleware"
	"github.com/roomstay/booking-service/internal/repository"
	"github.com/roomstay/booking-service/internal/service"
	"github.com/roomstay/booking-service/pkg/database"
	"github.com/roomstay/booking-service/pkg/payment"
	"github.com/roomstay/booking-service/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// RabbitMQ consumer: sync rooms and users from the marketplace services
	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer mqConsumer.Close()

	msgs, err := mqConsumer.Consume()
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}

	// Repositories
	roomRepo := repository.NewRoomRepository(db)
	userRepo := repository.NewUserRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	disputeRepo := repository.NewDisputeRepository(db)
	txnRepo := repository.NewTransactionRepository(db)

	consumer.NewSyncConsumer(roomRepo, userRepo).Start(msgs)

	// RabbitMQ publisher: status-change events for the notification service
	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect publisher to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	gateway := payment.NewHTTPGateway(cfg.GatewayURL, cfg.GatewayTimeout)

	// Services
	bookingSvc := service.NewBookingService(bookingRepo, roomRepo, userRepo, txnRepo, gateway, publisher, cfg.Policy())
	disputeSvc := service.NewDisputeService(disputeRepo, bookingRepo, userRepo, txnRepo, gateway, publisher)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "booking-service"})
	})

	handler.NewBookingHandler(bookingSvc, txnRepo).RegisterRoutes(e)
	handler.NewDisputeHandler(disputeSvc).RegisterRoutes(e)

	log.Printf("Booking Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
