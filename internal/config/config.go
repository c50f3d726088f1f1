package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Freeeeeet/appointment_bot/internal/model"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// MemoryDSN вместо строки подключения включает хранение в памяти
const MemoryDSN = "memory"

type Config struct {
	Environment   string        `env:"ENV" envDefault:"development"`
	DBDSN         string        `env:"DB_DSN"`
	DBMaxConns    int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	StoreTimeout  time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	TelegramToken string        `env:"TELEGRAM_TOKEN"`
	HTTPAddr      string        `env:"HTTP_ADDR" envDefault:":8080"`

	AMQP struct {
		URL      string `env:"AMQP_URL"`
		Exchange string `env:"AMQP_EXCHANGE" envDefault:"appointment.events"`
	}

	Slots struct {
		StartHour       int    `env:"SLOT_START_HOUR" envDefault:"9"`
		EndHour         int    `env:"SLOT_END_HOUR" envDefault:"17"`
		DurationMinutes int    `env:"SLOT_DURATION_MINUTES" envDefault:"30"`
		DaysAhead       int    `env:"SLOT_DAYS_AHEAD" envDefault:"5"`
		DoctorName      string `env:"DOCTOR_NAME" envDefault:"Dr. Smith"`
		DefaultReason   string `env:"DEFAULT_REASON" envDefault:"General checkup"`
	}

	// 0 - отчёт о свободных слотах выключен
	AvailabilityReportInterval time.Duration `env:"AVAILABILITY_REPORT_INTERVAL" envDefault:"0"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет обязательные поля и сетку слотов
func (c *Config) Validate() error {
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required but not set")
	}
	if c.Slots.DurationMinutes <= 0 {
		return fmt.Errorf("SLOT_DURATION_MINUTES must be positive, got %d", c.Slots.DurationMinutes)
	}
	if c.Slots.StartHour < 0 || c.Slots.EndHour > 24 || c.Slots.StartHour >= c.Slots.EndHour {
		return fmt.Errorf("invalid working hours %d-%d", c.Slots.StartHour, c.Slots.EndHour)
	}
	if c.Slots.DaysAhead <= 0 {
		return fmt.Errorf("SLOT_DAYS_AHEAD must be positive, got %d", c.Slots.DaysAhead)
	}
	if c.StoreTimeout < 0 {
		return fmt.Errorf("STORE_TIMEOUT must not be negative")
	}
	return nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

// UseMemoryStore true, если записи хранятся в памяти процесса
func (c *Config) UseMemoryStore() bool {
	return strings.EqualFold(c.DBDSN, MemoryDSN)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SlotConfig сетка приёма врача
func (c *Config) SlotConfig() model.SlotConfig {
	return model.SlotConfig{
		StartHour:           c.Slots.StartHour,
		EndHour:             c.Slots.EndHour,
		SlotDurationMinutes: c.Slots.DurationMinutes,
		DaysAheadDefault:    c.Slots.DaysAhead,
		DoctorName:          c.Slots.DoctorName,
	}
}
