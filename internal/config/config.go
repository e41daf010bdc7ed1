package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/triskelion9/justdjangoecomm/internal/models"
)

type Config struct {
	DatabaseURL   string
	JWTSecret     []byte
	KafkaBrokers  []string
	ESURL         string
	ESUser        string
	ESPassword    string
	PaymentURL    string
	PaymentAPIKey string
	LogLevel      string
	ServerPort    string
}

func must(v string, name string) string {
	if v == "" {
		log.Fatalf("missing required env %s", name)
	}
	return v
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{
		DatabaseURL:   must(os.Getenv("DATABASE_URL"), "DATABASE_URL"),
		JWTSecret:     []byte(must(os.Getenv("JWT_HS256_SECRET"), "JWT_HS256_SECRET")),
		KafkaBrokers:  strings.Split(os.Getenv("KAFKA_ADDRESS"), ","),
		ESURL:         os.Getenv("ES_URL"),
		ESUser:        os.Getenv("ES_USER"),
		ESPassword:    os.Getenv("ES_PASSWORD"),
		PaymentURL:    must(os.Getenv("PAYMENT_URL"), "PAYMENT_URL"),
		PaymentAPIKey: must(os.Getenv("PAYMENT_API_KEY"), "PAYMENT_API_KEY"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		ServerPort:    os.Getenv("SERVER_PORT"),
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	return cfg
}

func configurePool(sqlDB *sql.DB) {
	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

func InitDB(ctx context.Context, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	configurePool(sqlDB)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Item{},
		&models.OrderItem{},
		&models.Order{},
		&models.Address{},
		&models.Coupon{},
		&models.Payment{},
		&models.Refund{},
		&models.ProcessedEvent{},
	)
}
