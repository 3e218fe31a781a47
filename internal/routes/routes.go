package routes

import (
    "strconv"
    "time"

    "github.com/gin-gonic/gin"
    "gorm.io/gorm"

    "github.com/elbrielle/HalllDay/internal/config"
    "github.com/elbrielle/HalllDay/internal/controllers"
    "github.com/elbrielle/HalllDay/internal/kiosk"
    "github.com/elbrielle/HalllDay/internal/middleware"
    "github.com/elbrielle/HalllDay/internal/models"
    "github.com/elbrielle/HalllDay/internal/roster"
    "github.com/elbrielle/HalllDay/internal/utils"
    "github.com/elbrielle/HalllDay/internal/ws"
)

func Register(r *gin.Engine, db *gorm.DB, cfg *config.Config) {
    accessTTL := parseMinutes(cfg.AccessTokenTTLMinutes, 60*time.Minute)
    refreshTTL := parseDays(cfg.RefreshTokenTTLDays, 30*24*time.Hour)

    // Services
    cipher := utils.NewCipher(cfg.RosterSecret)
    rosterSvc := roster.NewService(db, cipher)
    scanSvc := kiosk.NewScanService(db, rosterSvc)
    statusSvc := kiosk.NewStatusService(db, rosterSvc)

    hub := ws.NewDisplayHub()
    go hub.Run()

    // Controllers
    authCtrl := &controllers.AuthController{
        DB:            db,
        AccessSecret:  cfg.JWTSecret,
        RefreshSecret: cfg.RefreshJWTSecret,
        AccessTTL:     accessTTL,
        RefreshTTL:    refreshTTL,
    }
    kioskCtrl := &controllers.KioskController{DB: db, Scan: scanSvc, Status: statusSvc, Hub: hub}
    queueCtrl := &controllers.QueueController{DB: db, Status: statusSvc, Hub: hub}
    settingsCtrl := &controllers.SettingsController{DB: db, Status: statusSvc, Hub: hub}
    adminCtrl := &controllers.AdminController{DB: db, Roster: rosterSvc, Status: statusSvc, Hub: hub, BaseURL: cfg.BaseURL}
    rosterCtrl := &controllers.RosterController{DB: db, Roster: rosterSvc}
    devCtrl := &controllers.DevController{DB: db}

    // Public kiosk surface. The kiosk token (or slug) in the query string
    // selects the tenant; no login involved.
    r.POST("/api/scan", kioskCtrl.HandleScan)
    r.GET("/api/status", kioskCtrl.GetStatus)
    r.GET("/api/stream", kioskCtrl.Stream)
    r.GET("/events", kioskCtrl.Stream)
    r.POST("/api/queue/join", kioskCtrl.QueueJoin)
    r.POST("/api/queue/leave", kioskCtrl.QueueLeave)
    r.GET("/api/ws/display", ws.DisplayHandler(hub, func(token string) (uint, error) {
        return controllers.ResolveKioskTenant(db, token)
    }))

    auth := r.Group("/api/v1/auth")
    {
        auth.POST("/login", authCtrl.Login)
        auth.POST("/refresh", authCtrl.Refresh)
    }

    // Protected
    authMW := middleware.AuthMiddleware(db, middleware.AuthConfig{
        JWTSecret:    cfg.JWTSecret,
        JWTExpiresIn: accessTTL,
    })
    apiV1 := r.Group("/api/v1", authMW)
    {
        apiV1.GET("/auth/me", authCtrl.Me)
        apiV1.POST("/auth/logout", authCtrl.Logout)
    }

    api := r.Group("/api", authMW)
    {
        api.POST("/queue/delete", queueCtrl.Delete)
        api.POST("/queue/reorder", queueCtrl.Reorder)

        api.GET("/admin/stats", adminCtrl.Stats)
        api.POST("/admin/end_session", adminCtrl.EndSession)
        api.GET("/admin/logs", adminCtrl.Logs)
        api.GET("/admin/logs/export", adminCtrl.LogsExport)

        api.POST("/control/ban_overdue", adminCtrl.BanOverdue)
        api.POST("/control/delete_history", adminCtrl.DeleteHistory)

        api.GET("/settings", settingsCtrl.Get)
        api.POST("/settings/update", settingsCtrl.Update)
        api.POST("/settings/suspend", settingsCtrl.Suspend)
        api.POST("/settings/slug", settingsCtrl.UpdateSlug)

        api.GET("/roster", rosterCtrl.List)
        api.POST("/roster/upload", rosterCtrl.Upload)
        api.GET("/roster/export", rosterCtrl.Export)
        api.GET("/roster/template", rosterCtrl.Template)
        api.POST("/roster/ban", rosterCtrl.Ban)
        api.POST("/roster/clear", rosterCtrl.Clear)

        // Operator dashboard
        dev := api.Group("/dev", middleware.RequireRoles(models.RoleDev))
        {
            dev.GET("/stats", devCtrl.Stats)
            dev.POST("/expanded_stats", devCtrl.ExpandedStats)
            dev.POST("/register", authCtrl.Register)
        }
    }
}

func parseMinutes(s string, fallback time.Duration) time.Duration {
    n, err := strconv.Atoi(s)
    if err != nil || n <= 0 {
        return fallback
    }
    return time.Duration(n) * time.Minute
}

func parseDays(s string, fallback time.Duration) time.Duration {
    n, err := strconv.Atoi(s)
    if err != nil || n <= 0 {
        return fallback
    }
    return time.Duration(n) * 24 * time.Hour
}
