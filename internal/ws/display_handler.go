package ws

import (
    "net/http"

    "github.com/gin-gonic/gin"
    "github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
    CheckOrigin: func(r *http.Request) bool {
        // Displays connect from arbitrary origins; the kiosk token gates access.
        return true
    },
}

// TenantResolver maps a public kiosk token to a tenant id.
type TenantResolver func(token string) (uint, error)

// DisplayHandler upgrades a display client and subscribes it to its
// tenant's status broadcasts.
func DisplayHandler(hub *DisplayHub, resolve TenantResolver) gin.HandlerFunc {
    return func(c *gin.Context) {
        tenantID, err := resolve(c.Query("token"))
        if err != nil {
            c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"ok": false, "message": "Unknown kiosk token"})
            return
        }

        conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
        if err != nil {
            return
        }
        client := newDisplayClient(hub, conn, tenantID)
        hub.register <- client

        go client.writePump()
        client.readPump()
    }
}
