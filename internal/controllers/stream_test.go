package controllers

import (
    "context"
    "errors"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/gin-gonic/gin"

    "github.com/elbrielle/HalllDay/internal/kiosk"
)

func streamContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
    t.Helper()
    gin.SetMode(gin.TestMode)
    w := httptest.NewRecorder()
    c, _ := gin.CreateTestContext(w)

    // Pre-cancelled request context: the loop exits on its first select.
    ctx, cancel := context.WithCancel(context.Background())
    cancel()
    c.Request = httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)
    return c, w
}

func TestStreamEmitsSnapshotBeforeFirstTick(t *testing.T) {
    c, w := streamContext(t)

    streamStatus(c, func() (kiosk.StatusPayload, error) {
        return kiosk.StatusPayload{InUse: true, Name: "Jane Doe"}, nil
    })

    body := w.Body.String()
    if !strings.HasPrefix(body, "retry: 3000\n\n") {
        t.Fatalf("missing retry hint: %q", body)
    }
    if !strings.Contains(body, "data: ") || !strings.Contains(body, "Jane Doe") {
        t.Fatalf("first snapshot must be sent before the ticker loop: %q", body)
    }
}

func TestStreamToleratesInitialSnapshotError(t *testing.T) {
    c, w := streamContext(t)

    streamStatus(c, func() (kiosk.StatusPayload, error) {
        return kiosk.StatusPayload{}, errors.New("db down")
    })

    body := w.Body.String()
    if !strings.HasPrefix(body, "retry: 3000\n\n") {
        t.Fatalf("retry hint must still be sent: %q", body)
    }
    if strings.Contains(body, "data: ") {
        t.Fatalf("no payload should be sent when the snapshot fails: %q", body)
    }
}
