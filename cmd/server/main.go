package main

import (
    "log"
    "os"

    "github.com/joho/godotenv"

    "github.com/gin-gonic/gin"

    "github.com/elbrielle/HalllDay/internal/config"
    "github.com/elbrielle/HalllDay/internal/database"
    "github.com/elbrielle/HalllDay/internal/routes"
)

func main() {
    // Load .env (non-fatal if missing in production)
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Connect(cfg)
    if err != nil {
        log.Fatalf("database connection failed: %v", err)
    }

    if err := database.Migrate(db); err != nil {
        log.Fatalf("database migration failed: %v", err)
    }

    if err := database.SeedTeacher(db, cfg); err != nil {
        log.Fatalf("teacher seed failed: %v", err)
    }

    if err := database.SeedDev(db, cfg); err != nil {
        log.Fatalf("dev seed failed: %v", err)
    }

    r := gin.Default()
    routes.Register(r, db, cfg)

    port := cfg.Port
    if port == "" {
        port = "8080"
    }

    if err := r.Run(":" + port); err != nil {
        log.Println("server exited with error:", err)
        os.Exit(1)
    }
}
