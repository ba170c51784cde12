package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppName string // Shown in mails, SMS and TOTP issuer (default: Storefront)
	AppURL  string // Base URL of the frontend, used in password reset links
	Issuer  string // iss claim of every token (default: storefront)

	DatabaseFile   string        // SQLite database file (default: ./storefront.db)
	PepperFile     string        // Pepper for password hashing (default: ./pepper)
	SigningKeyFile string        // Optional: Ed25519 keys in PEM, generated if missing. Empty means ephemeral keys
	NumKeys        int           // Signing keys to generate (default: 1, max: 10)
	AuthTokenTTL   time.Duration // Session token lifetime (default: 30 days)

	SMSProvider      string // "log" or "twilio" (default: log)
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string

	SMTPHost       string // Empty logs mails instead of sending them
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPFrom       string
	SMTPSkipVerify bool

	AdminEmail    string // Optional: account ensured to exist with the admin role on start
	AdminPassword string // Password for AdminEmail when the account is created
	AdminName     string

	AuditRetention       time.Duration // Age after which audit entries are removed, 0 keeps them (default: 0)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		AppName: getEnvOrDefault("APP_NAME", "Storefront"),
		AppURL:  getEnvOrDefault("APP_URL", "http://localhost:3000"),
		Issuer:  getEnvOrDefault("API_ISSUER", "storefront"),

		DatabaseFile:   getEnvOrDefault("DATABASE_FILE", "storefront.db"),
		PepperFile:     getEnvOrDefault("PEPPER_FILE", "pepper"),
		SigningKeyFile: os.Getenv("SIGNING_KEY_FILE"),
		NumKeys:        getEnvIntOrDefault("NUM_SIGNING_KEYS", 1),
		AuthTokenTTL:   getEnvDurationOrDefault("AUTH_TOKEN_TTL", 30*24*time.Hour),

		SMSProvider:      getEnvOrDefault("SMS_PROVIDER", "log"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:       os.Getenv("TWILIO_FROM"),

		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername:   os.Getenv("SMTP_USERNAME"),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:       getEnvOrDefault("SMTP_FROM", "no-reply@localhost"),
		SMTPSkipVerify: getEnvBoolOrDefault("SMTP_SKIP_VERIFY", false),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnvOrDefault("ADMIN_NAME", "Administrator"),

		AuditRetention:       getEnvDurationOrDefault("AUDIT_RETENTION", 0),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
