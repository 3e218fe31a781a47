package controllers

import (
    "log"

    "github.com/elbrielle/HalllDay/internal/kiosk"
    "github.com/elbrielle/HalllDay/internal/ws"
)

// notifyDisplays pushes a fresh snapshot to the tenant's websocket
// displays after a ledger mutation. Best effort; SSE clients pick up the
// change on their next tick regardless.
func notifyDisplays(status *kiosk.StatusService, hub *ws.DisplayHub, tenantID uint) {
    if hub == nil {
        return
    }
    payload, err := status.Snapshot(tenantID)
    if err != nil {
        log.Printf("display broadcast: %v", err)
        return
    }
    hub.Broadcast(tenantID, payload)
}
