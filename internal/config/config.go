package config

import (
    "os"
    "strconv"
)

type Config struct {
    Port string

    DBHost     string
    DBPort     string
    DBUser     string
    DBPassword string
    DBName     string
    DBSSLMode  string
    // Connection pool bounds and the startup retry policy. The pool is
    // owned by the process lifecycle, not a package-level singleton.
    DBMaxOpenConns    int
    DBMaxIdleConns    int
    DBConnectAttempts int
    DBConnectBackoffS int

    JWTSecret             string
    RefreshJWTSecret      string
    AccessTokenTTLMinutes int
    RefreshTokenTTLDays   int

    AdminUsername  string
    AdminEmail     string
    AdminPassword  string
    AdminFirstName string
    AdminLastName  string

    // Per-IP rate limit applied to the auth endpoints.
    AuthRatePerMinute int
    AuthRateBurst     int

    CORSAllowOrigins string
}

func Load() *Config {
    return &Config{
        Port: getenv("PORT", "8080"),

        DBHost:            getenv("DB_HOST", "localhost"),
        DBPort:            getenv("DB_PORT", "5432"),
        DBUser:            getenv("DB_USER", "postgres"),
        DBPassword:        getenv("DB_PASSWORD", "postgres"),
        DBName:            getenv("DB_NAME", "meetroom_db"),
        DBSSLMode:         getenv("DB_SSLMODE", "disable"),
        DBMaxOpenConns:    getenvInt("DB_MAX_OPEN_CONNS", 10),
        DBMaxIdleConns:    getenvInt("DB_MAX_IDLE_CONNS", 5),
        DBConnectAttempts: getenvInt("DB_CONNECT_ATTEMPTS", 5),
        DBConnectBackoffS: getenvInt("DB_CONNECT_BACKOFF_SECONDS", 2),

        JWTSecret:             getenv("JWT_SECRET", "supersecret_change_me"),
        RefreshJWTSecret:      getenv("REFRESH_JWT_SECRET", getenv("JWT_SECRET", "supersecret_change_me")),
        AccessTokenTTLMinutes: getenvInt("ACCESS_TOKEN_TTL_MINUTES", 60),
        RefreshTokenTTLDays:   getenvInt("REFRESH_TOKEN_TTL_DAYS", 30),

        AdminUsername:  getenv("ADMIN_USERNAME", "admin"),
        AdminEmail:     getenv("ADMIN_EMAIL", "admin@example.com"),
        AdminPassword:  getenv("ADMIN_PASSWORD", "admin123"),
        AdminFirstName: getenv("ADMIN_FIRST_NAME", "System"),
        AdminLastName:  getenv("ADMIN_LAST_NAME", "Administrator"),

        AuthRatePerMinute: getenvInt("AUTH_RATE_PER_MINUTE", 10),
        AuthRateBurst:     getenvInt("AUTH_RATE_BURST", 5),

        CORSAllowOrigins: getenv("CORS_ALLOW_ORIGINS", "http://localhost:3000"),
    }
}

func getenv(key, fallback string) string {
    v := os.Getenv(key)
    if v == "" {
        return fallback
    }
    return v
}

func getenvInt(key string, fallback int) int {
    v := os.Getenv(key)
    if v == "" {
        return fallback
    }
    n, err := strconv.Atoi(v)
    if err != nil || n <= 0 {
        return fallback
    }
    return n
}
