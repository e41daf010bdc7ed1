package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/triskelion9/justdjangoecomm/internal/config"
	"github.com/triskelion9/justdjangoecomm/internal/es"
	"github.com/triskelion9/justdjangoecomm/internal/httpserver"
	"github.com/triskelion9/justdjangoecomm/internal/logging"
	loggingmw "github.com/triskelion9/justdjangoecomm/internal/middleware/logging"
	"github.com/triskelion9/justdjangoecomm/internal/mykafka"
	"github.com/triskelion9/justdjangoecomm/internal/notify"
	"github.com/triskelion9/justdjangoecomm/internal/payment"
	"github.com/triskelion9/justdjangoecomm/internal/repo"
	"github.com/triskelion9/justdjangoecomm/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	e := echo.New()
	e.HideBanner = true

	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(loggingmw.RequestLogger(logger))

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	producer := mykafka.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	gormRepo := &repo.GormRepo{DB: db}
	notifier := &notify.KafkaNotifier{Producer: producer}
	gateway := payment.NewClient(cfg.PaymentURL, cfg.PaymentAPIKey)

	catalogSvc := &service.CatalogService{Repo: gormRepo, Producer: producer}
	if cfg.ESURL != "" {
		client, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("es init error: %v", err)
		}
		catalogSvc.ES = client
	}

	cartSvc := &service.CartService{Repo: gormRepo, Producer: producer}
	orderSvc := &service.OrderService{Repo: gormRepo, Producer: producer, Notifier: notifier}
	checkoutSvc := &service.CheckoutService{
		Repo:     gormRepo,
		Gateway:  gateway,
		Producer: producer,
		Notifier: notifier,
	}
	authSvc := &service.AuthService{Repo: gormRepo, JWTSecret: cfg.JWTSecret}

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:     &httpserver.AuthHTTP{Svc: authSvc},
		CatalogHandler:  &httpserver.CatalogHTTP{Svc: catalogSvc},
		CartHandler:     &httpserver.CartHTTP{Svc: cartSvc},
		CheckoutHandler: &httpserver.CheckoutHTTP{Svc: checkoutSvc},
		OrderHandler:    &httpserver.OrderHTTP{Svc: orderSvc},
		WebhookHandler:  &httpserver.WebhookHTTP{Svc: orderSvc},
		JWTSecret:       cfg.JWTSecret,
	})

	go func() {
		log.Printf("Starting storefront on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.Close()
	}

	log.Println("Server stopped")
}
