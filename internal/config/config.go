package config

import (
    "os"
)

type Config struct {
    Port       string
    DBHost     string
    DBPort     string
    DBUser     string
    DBPassword string
    DBName     string
    DBSSLMode  string

    JWTSecret             string
    RefreshJWTSecret      string
    AccessTokenTTLMinutes string // minutes
    RefreshTokenTTLDays   string // days

    // Initial teacher account seeded on first boot.
    TeacherEmail    string
    TeacherPassword string
    TeacherFullName string

    // Developer dashboard passcode (seeds the dev account).
    DevPasscode string

    // Secret for roster student ID encryption at rest.
    RosterSecret string

    BaseURL string
}

func Load() *Config {
    return &Config{
        Port:       getenv("PORT", "8080"),
        DBHost:     getenv("DB_HOST", "localhost"),
        DBPort:     getenv("DB_PORT", "5432"),
        DBUser:     getenv("DB_USER", "postgres"),
        DBPassword: getenv("DB_PASSWORD", "postgres"),
        DBName:     getenv("DB_NAME", "hallday_db"),
        DBSSLMode:  getenv("DB_SSLMODE", "disable"),

        JWTSecret:             getenv("JWT_SECRET", "supersecret_change_me"),
        RefreshJWTSecret:      getenv("REFRESH_JWT_SECRET", getenv("JWT_SECRET", "supersecret_change_me")),
        AccessTokenTTLMinutes: getenv("ACCESS_TOKEN_TTL_MINUTES", "60"),
        RefreshTokenTTLDays:   getenv("REFRESH_TOKEN_TTL_DAYS", "30"),

        TeacherEmail:    getenv("TEACHER_EMAIL", "teacher@example.com"),
        TeacherPassword: getenv("TEACHER_PASSWORD", "teacher123"),
        TeacherFullName: getenv("TEACHER_FULL_NAME", "Teacher"),

        DevPasscode: getenv("DEV_PASSCODE", ""),

        RosterSecret: getenv("ROSTER_SECRET", "hallday_roster_secret"),

        BaseURL: getenv("BASE_URL", "http://localhost:8080"),
    }
}

func getenv(key, fallback string) string {
    v := os.Getenv(key)
    if v == "" {
        return fallback
    }
    return v
}
