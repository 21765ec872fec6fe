package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Routing      RoutingConfig
	SLA          SLAConfig
	Sweeper      SweeperConfig
	Intake       IntakeConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines operator authentication parameters.
type AuthConfig struct {
	Enabled               bool
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	OperatorEmail         string
	OperatorPassword      string
	OperatorPasswordHash  string
}

// NotificationConfig holds outbound notification endpoints.
type NotificationConfig struct {
	EmailFrom    string
	WebhookURL   string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
}

// RoutingConfig maps ticket categories to owning team addresses.
type RoutingConfig struct {
	Teams          map[string]string
	DefaultAddress string
}

// SLAWindowHours is a response/resolution allowance pair.
type SLAWindowHours struct {
	Response   int
	Resolution int
}

// SLAConfig holds per-priority SLA windows keyed by priority name.
type SLAConfig struct {
	Windows map[string]SLAWindowHours
	Default SLAWindowHours
}

// SweeperConfig controls the periodic SLA evaluation.
type SweeperConfig struct {
	Enabled           bool
	IntervalSeconds   int
	NearBreachMinutes int
}

// IntakeConfig controls automatic message ingestion.
type IntakeConfig struct {
	AutoProcess         bool
	PollIntervalSeconds int
	EmailsFile          string
}

// DefaultTeams is the category routing table used when TEAM_ASSIGNMENTS is unset.
func DefaultTeams() map[string]string {
	return map[string]string{
		"Access Issue":   "identity-team@example.com",
		"Infrastructure": "infra-team@example.com",
		"Email":          "messaging-team@example.com",
		"Software":       "desktop-team@example.com",
		"Networking":     "network-team@example.com",
		"General":        "helpdesk@example.com",
	}
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	teams := DefaultTeams()
	if raw := os.Getenv("TEAM_ASSIGNMENTS"); raw != "" {
		teams, err = parseTeams(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TEAM_ASSIGNMENTS: %w", err)
		}
	}

	windows := map[string]SLAWindowHours{}
	for _, entry := range []struct {
		priority string
		key      string
		fallback SLAWindowHours
	}{
		{"High", "SLA_HIGH_HOURS", SLAWindowHours{Response: 1, Resolution: 4}},
		{"Medium", "SLA_MEDIUM_HOURS", SLAWindowHours{Response: 4, Resolution: 24}},
		{"Low", "SLA_LOW_HOURS", SLAWindowHours{Response: 24, Resolution: 72}},
	} {
		window, err := getEnvAsWindow(entry.key, entry.fallback)
		if err != nil {
			return nil, err
		}
		windows[entry.priority] = window
	}
	defaultWindow, err := getEnvAsWindow("SLA_DEFAULT_HOURS", SLAWindowHours{Response: 24, Resolution: 72})
	if err != nil {
		return nil, err
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "servicedesk-automation"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			Enabled:               getEnvAsBool("AUTH_ENABLED", false),
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			OperatorEmail:         getEnv("OPERATOR_EMAIL", "operator@example.com"),
			OperatorPassword:      os.Getenv("OPERATOR_PASSWORD"),
			OperatorPasswordHash:  os.Getenv("OPERATOR_PASSWORD_HASH"),
		},
		Notification: NotificationConfig{
			EmailFrom:    getEnv("NOTIFICATION_FROM", "servicedesk@example.com"),
			WebhookURL:   getEnv("NOTIFY_WEBHOOK_URL", ""),
			SMTPHost:     getEnv("SMTP_SERVER", "smtp.office365.com"),
			SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
			SMTPUsername: os.Getenv("SMTP_USERNAME"),
			SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		},
		Routing: RoutingConfig{
			Teams:          teams,
			DefaultAddress: getEnv("DEFAULT_TEAM_ADDRESS", "helpdesk@example.com"),
		},
		SLA: SLAConfig{
			Windows: windows,
			Default: defaultWindow,
		},
		Sweeper: SweeperConfig{
			Enabled:           getEnvAsBool("SLA_SWEEP_ENABLED", true),
			IntervalSeconds:   getEnvAsInt("SLA_SWEEP_INTERVAL_SECONDS", 300),
			NearBreachMinutes: getEnvAsInt("SLA_NEAR_BREACH_MINUTES", 30),
		},
		Intake: IntakeConfig{
			AutoProcess:         getEnvAsBool("AUTO_PROCESS", false),
			PollIntervalSeconds: getEnvAsInt("POLL_INTERVAL", 60),
			EmailsFile:          getEnv("INTAKE_EMAILS_FILE", "data/emails.txt"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Interval returns the sweep period, five minutes when unset.
func (s SweeperConfig) Interval() time.Duration {
	if s.IntervalSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(s.IntervalSeconds) * time.Second
}

// NearBreachThreshold returns the warning window before a resolution deadline.
func (s SweeperConfig) NearBreachThreshold() time.Duration {
	if s.NearBreachMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(s.NearBreachMinutes) * time.Minute
}

// PollInterval returns the intake polling period.
func (i IntakeConfig) PollInterval() time.Duration {
	if i.PollIntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(i.PollIntervalSeconds) * time.Second
}

// SMTPConfigured reports whether outbound email can be attempted.
func (n NotificationConfig) SMTPConfigured() bool {
	return n.SMTPHost != "" && n.SMTPUsername != "" && n.SMTPPassword != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvAsWindow parses "response,resolution" hour pairs such as "1,4".
func getEnvAsWindow(key string, fallback SLAWindowHours) (SLAWindowHours, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	parts := strings.Split(val, ",")
	if len(parts) != 2 {
		return SLAWindowHours{}, fmt.Errorf("invalid %s: want \"response,resolution\" hours", key)
	}
	response, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || response <= 0 {
		return SLAWindowHours{}, fmt.Errorf("invalid %s response hours %q", key, parts[0])
	}
	resolution, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || resolution <= 0 {
		return SLAWindowHours{}, fmt.Errorf("invalid %s resolution hours %q", key, parts[1])
	}
	return SLAWindowHours{Response: response, Resolution: resolution}, nil
}

// parseTeams reads "Category=address;Category=address".
func parseTeams(raw string) (map[string]string, error) {
	teams := map[string]string{}
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		category, address, ok := strings.Cut(entry, "=")
		category = strings.TrimSpace(category)
		address = strings.TrimSpace(address)
		if !ok || category == "" || address == "" {
			return nil, fmt.Errorf("malformed entry %q", entry)
		}
		teams[category] = address
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("no entries")
	}
	return teams, nil
}
