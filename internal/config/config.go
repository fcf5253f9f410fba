package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env             string        // application environment (e.g. "dev", "prod")
	Port            string        // HTTP port to listen on
	DBUser          string        // database username
	DBPass          string        // database password (optional)
	DBHost          string        // database host address
	DBPort          string        // database port number
	DBName          string        // database name
	JWTSecret       string        // secret used to sign JWTs
	AccessTTLMin    int           // access token time‑to‑live in minutes
	RefreshTTLDays  int           // refresh token time‑to‑live in days
	BcryptCost      int           // bcrypt cost for password hashing
	LogLevel        string        // debug, info, warn or error
	LogFormat       string        // json or text
	ShutdownTimeout time.Duration // grace period for in-flight requests
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),                         // environment (dev/test/prod)
		Port:            must("APP_PORT"),                        // port to bind the HTTP server
		JWTSecret:       must("JWT_SECRET"),                      // secret used for signing JWTs
		AccessTTLMin:    mustInt("ACCESS_TOKEN_TTL_MIN"),         // TTL for access tokens in minutes
		RefreshTTLDays:  mustInt("REFRESH_TOKEN_TTL_DAYS"),       // TTL for refresh tokens in days
		BcryptCost:      mustInt("BCRYPT_COST"),                  // bcrypt cost factor
		LogLevel:        envStr("LOG_LEVEL", "info"),             // slog level
		LogFormat:       envStr("LOG_FORMAT", "json"),            // slog handler
		ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT", 10*time.Second), // graceful shutdown window
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"),
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
	}
}

// LoadDatabase reads only the database settings.  The admin CLI uses it so
// that migrations can run without JWT or HTTP settings.
func LoadDatabase() Config {
	return Config{
		DBUser:     must("DB_USER"),
		DBPass:     os.Getenv("DB_PASS"),
		DBHost:     must("DB_HOST"),
		DBPort:     must("DB_PORT"),
		DBName:     must("DB_NAME"),
		BcryptCost: envInt("BCRYPT_COST", 12),
		LogLevel:   envStr("LOG_LEVEL", "info"),
		LogFormat:  envStr("LOG_FORMAT", "text"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
