package ws

import (
    "encoding/json"
    "log"
    "time"

    "github.com/gorilla/websocket"
)

const (
    writeWait      = 10 * time.Second
    pongWait       = 60 * time.Second
    pingPeriod     = (pongWait * 9) / 10
    sendBufferSize = 256
)

type displayMessage struct {
    tenantID uint
    payload  []byte
}

// DisplayHub pushes status payloads to websocket display clients. Clients
// subscribe for one tenant; broadcasts fan out only to that tenant's
// displays.
type DisplayHub struct {
    register   chan *displayClient
    unregister chan *displayClient
    broadcast  chan displayMessage
    clients    map[*displayClient]struct{}
}

func NewDisplayHub() *DisplayHub {
    return &DisplayHub{
        register:   make(chan *displayClient),
        unregister: make(chan *displayClient),
        broadcast:  make(chan displayMessage, 256),
        clients:    make(map[*displayClient]struct{}),
    }
}

func (h *DisplayHub) Run() {
    for {
        select {
        case client := <-h.register:
            h.clients[client] = struct{}{}
        case client := <-h.unregister:
            if _, ok := h.clients[client]; ok {
                delete(h.clients, client)
                close(client.send)
                client.conn.Close()
            }
        case msg := <-h.broadcast:
            for client := range h.clients {
                if client.tenantID != msg.tenantID {
                    continue
                }
                select {
                case client.send <- msg.payload:
                default:
                    delete(h.clients, client)
                    close(client.send)
                    client.conn.Close()
                }
            }
        }
    }
}

// Broadcast pushes payload to every display subscribed to the tenant.
func (h *DisplayHub) Broadcast(tenantID uint, payload interface{}) {
    if h == nil {
        return
    }
    data, err := json.Marshal(payload)
    if err != nil {
        log.Printf("ws: failed to marshal payload: %v", err)
        return
    }
    h.broadcast <- displayMessage{tenantID: tenantID, payload: data}
}

type displayClient struct {
    hub      *DisplayHub
    conn     *websocket.Conn
    send     chan []byte
    tenantID uint
}

func newDisplayClient(hub *DisplayHub, conn *websocket.Conn, tenantID uint) *displayClient {
    return &displayClient{
        hub:      hub,
        conn:     conn,
        send:     make(chan []byte, sendBufferSize),
        tenantID: tenantID,
    }
}

func (c *displayClient) readPump() {
    defer func() {
        c.hub.unregister <- c
    }()
    c.conn.SetReadLimit(512)
    c.conn.SetReadDeadline(time.Now().Add(pongWait))
    c.conn.SetPongHandler(func(string) error {
        c.conn.SetReadDeadline(time.Now().Add(pongWait))
        return nil
    })
    for {
        if _, _, err := c.conn.ReadMessage(); err != nil {
            break
        }
    }
}

func (c *displayClient) writePump() {
    ticker := time.NewTicker(pingPeriod)
    defer func() {
        ticker.Stop()
        c.conn.Close()
    }()
    for {
        select {
        case msg, ok := <-c.send:
            c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if !ok {
                c.conn.WriteMessage(websocket.CloseMessage, []byte{})
                return
            }
            w, err := c.conn.NextWriter(websocket.TextMessage)
            if err != nil {
                return
            }
            if _, err := w.Write(msg); err != nil {
                return
            }
            if err := w.Close(); err != nil {
                return
            }
        case <-ticker.C:
            c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
                return
            }
        }
    }
}
