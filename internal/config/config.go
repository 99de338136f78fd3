// Package config loads runtime configuration from environment
// variables.  Values are read once at startup; a missing required
// variable is fatal so a misconfigured instance never serves traffic.
package config

import (
    "log"
    "os"
    "time"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.
type Config struct {
    Env       string // application environment (e.g. "dev", "prod")
    Port      string // HTTP port to listen on
    DBUser    string // database username
    DBPass    string // database password (optional)
    DBHost    string // database host address
    DBPort    string // database port number
    DBName    string // database name
    JWTSecret string // secret used to verify access tokens

    // Payment gateway merchant settings.  The secret signs every
    // outbound redirect and verifies every inbound callback.
    GatewayBaseURL   string
    GatewayTmnCode   string
    GatewaySecret    string
    GatewayReturnURL string
    GatewayVersion   string
    GatewayLocale    string
    GatewayCurrency  string
    GatewayOrderType string

    // Hold expiry sweeper.
    SweepInterval time.Duration
    SweepBatch    int
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:       must("APP_ENV"),
        Port:      must("APP_PORT"),
        DBUser:    must("DB_USER"),
        DBPass:    os.Getenv("DB_PASS"),
        DBHost:    must("DB_HOST"),
        DBPort:    must("DB_PORT"),
        DBName:    must("DB_NAME"),
        JWTSecret: must("JWT_SECRET"),

        GatewayBaseURL:   must("GATEWAY_BASE_URL"),
        GatewayTmnCode:   must("GATEWAY_TMN_CODE"),
        GatewaySecret:    must("GATEWAY_SECRET"),
        GatewayReturnURL: must("GATEWAY_RETURN_URL"),
        GatewayVersion:   envStr("GATEWAY_VERSION", "2.1.0"),
        GatewayLocale:    envStr("GATEWAY_LOCALE", "vn"),
        GatewayCurrency:  envStr("GATEWAY_CURRENCY", "VND"),
        GatewayOrderType: envStr("GATEWAY_ORDER_TYPE", "190000"),

        SweepInterval: envDur("HOLD_SWEEP_INTERVAL", 30*time.Second),
        SweepBatch:    envInt("HOLD_SWEEP_BATCH", 200),
    }
}

// must retrieves the value of a required environment variable.  If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}
