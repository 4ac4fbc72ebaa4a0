package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config agrupa toda la configuración de runtime del servicio.
type Config struct {
	AppName     string
	Environment string
	Timezone    string

	HTTP       HTTPConfig
	Database   DatabaseConfig
	Migrations MigrationsConfig
	Redis      RedisConfig
	Queue      QueueConfig
	Mail       MailConfig
	JWT        JWTConfig
	Reminders  RemindersConfig
	Pets       PetsConfig
	Documents  DocumentsConfig
	Logger     LoggerConfig

	ShutdownTimeout time.Duration
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	// DSN vacío => repos in-memory (modo dev).
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
}

type MigrationsConfig struct {
	Enabled bool
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// QueueConfig define dónde viven los jobs diferidos (recordatorios).
type QueueConfig struct {
	Backend      string // memory | redis | bolt
	BoltPath     string
	PollInterval time.Duration
	BatchSize    int
}

type MailConfig struct {
	Backend string // log | smtp | relay
	From    string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string

	RelayURL    string
	RelayAPIKey string
	Timeout     time.Duration
}

type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// RemindersConfig contiene la anticipación por tipo de actividad.
// Se lee de REMINDER_LEAD_<KIND>, p.ej. REMINDER_LEAD_WALK=30m.
type RemindersConfig struct {
	LeadTimes map[string]time.Duration
}

type PetsConfig struct {
	MaxPerOwner int
}

type DocumentsConfig struct {
	Dir            string
	MaxUploadBytes int64
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// DefaultLeadTimes son los valores observados en producción para cada tipo.
func DefaultLeadTimes() map[string]time.Duration {
	return map[string]time.Duration{
		"medication":  2 * time.Hour,
		"appointment": 2 * time.Hour,
		"vaccination": 2 * time.Hour,
		"walk":        30 * time.Minute,
		"feeding":     time.Minute,
	}
}

// Load lee configuración desde env (opcionalmente .env) y aplica defaults
// para que el servicio arranque en cualquier entorno.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "petlink"),
		Environment: getString("APP_ENV", "development"),
		Timezone:    getString("APP_TIMEZONE", "UTC"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             os.Getenv("DB_DSN"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", 30*time.Minute),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Queue: QueueConfig{
			Backend:      strings.ToLower(getString("QUEUE_BACKEND", "memory")),
			BoltPath:     getString("QUEUE_BOLT_PATH", "./data/reminders.db"),
			PollInterval: getDuration("QUEUE_POLL_INTERVAL", 10*time.Second),
			BatchSize:    getInt("QUEUE_BATCH_SIZE", 100),
		},
		Mail: MailConfig{
			Backend:      strings.ToLower(getString("MAIL_BACKEND", "log")),
			From:         getString("DEFAULT_FROM_EMAIL", "PetLink <no-reply@petlink.local>"),
			SMTPHost:     os.Getenv("SMTP_HOST"),
			SMTPPort:     getString("SMTP_PORT", "587"),
			SMTPUsername: os.Getenv("SMTP_USERNAME"),
			SMTPPassword: os.Getenv("SMTP_PASSWORD"),
			RelayURL:     os.Getenv("MAIL_RELAY_URL"),
			RelayAPIKey:  os.Getenv("MAIL_RELAY_API_KEY"),
			Timeout:      getDuration("MAIL_TIMEOUT", 10*time.Second),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: getString("JWT_ISSUER", "petlink"),
			TTL:    getDuration("JWT_TTL", 24*time.Hour),
		},
		Reminders: RemindersConfig{
			LeadTimes: loadLeadTimes(),
		},
		Pets: PetsConfig{
			MaxPerOwner: getInt("PETS_MAX_PER_OWNER", 5),
		},
		Documents: DocumentsConfig{
			Dir:            getString("DOCUMENTS_DIR", "./data/pet_documents"),
			MaxUploadBytes: int64(getInt("DOCUMENTS_MAX_UPLOAD_BYTES", 10<<20)),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location resuelve APP_TIMEZONE.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Address devuelve host:port para el http.Server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}

func (c *Config) validate() error {
	switch c.Queue.Backend {
	case "memory", "redis", "bolt":
	default:
		return fmt.Errorf("config: unknown QUEUE_BACKEND %q", c.Queue.Backend)
	}
	switch c.Mail.Backend {
	case "log", "smtp", "relay":
	default:
		return fmt.Errorf("config: unknown MAIL_BACKEND %q", c.Mail.Backend)
	}
	if c.Mail.Backend == "smtp" && strings.TrimSpace(c.Mail.SMTPHost) == "" {
		return fmt.Errorf("config: SMTP_HOST required for smtp mail backend")
	}
	if c.Mail.Backend == "relay" && strings.TrimSpace(c.Mail.RelayURL) == "" {
		return fmt.Errorf("config: MAIL_RELAY_URL required for relay mail backend")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func loadLeadTimes() map[string]time.Duration {
	out := DefaultLeadTimes()
	for kind, def := range out {
		out[kind] = getDuration("REMINDER_LEAD_"+strings.ToUpper(kind), def)
	}
	return out
}

func getString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
