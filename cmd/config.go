package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	Storage    string `envconfig:"STORAGE_DRIVER" default:"postgres"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`
	DBSslMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	RabbitMQURL      string `envconfig:"RABBITMQ_URL"`
	RabbitMQExchange string `envconfig:"RABBITMQ_EXCHANGE" default:"waterline.events"`

	Workflow         string `envconfig:"ORDER_STATUS_WORKFLOW" default:"pipeline"`
	SubscriberBuffer int    `envconfig:"SUBSCRIBER_BUFFER" default:"32"`

	OutboxRelaySchedule string `envconfig:"OUTBOX_RELAY_SCHEDULE" default:"@every 1s"`
	OutboxRelayBatch    int    `envconfig:"OUTBOX_RELAY_BATCH" default:"100"`
	RoomJanitorSchedule string `envconfig:"ROOM_JANITOR_SCHEDULE" default:"@every 10s"`

	ServiceName  string `envconfig:"SERVICE_NAME" default:"waterline"`
	Environment  string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	StdoutTraces bool   `envconfig:"OTEL_STDOUT_TRACES"`
}

// LoadConfig reads the optional .env files, then the environment. Variables
// already set in the environment win over the files.
func LoadConfig(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	switch c.Storage {
	case StoragePostgres:
		if c.DBUser == "" || c.DBName == "" {
			errs = append(errs, errors.New("DB_USER and DB_NAME are required for postgres storage"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage))
	}
	if c.SubscriberBuffer <= 0 {
		errs = append(errs, errors.New("SUBSCRIBER_BUFFER must be positive"))
	}
	if c.OutboxRelayBatch <= 0 {
		errs = append(errs, errors.New("OUTBOX_RELAY_BATCH must be positive"))
	}
	return errors.Join(errs...)
}

// DSN renders the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
