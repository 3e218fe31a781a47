package kiosk

import (
    "testing"
    "time"

    "github.com/elbrielle/HalllDay/internal/models"
)

func snapshotAt(now time.Time, elapsedMin int) StatusPayload {
    st := models.KioskSettings{Capacity: 1, OverdueMinutes: 10}
    sess := models.PassSession{ID: 1, StudentCode: "1001", StartTS: now.Add(-time.Duration(elapsedMin) * time.Minute), UserIDRef: 1}
    return composePayload(now, st, true, []sessionView{{Sess: sess, Name: "Jane Doe"}}, nil)
}

func TestSignatureIgnoresElapsedTicks(t *testing.T) {
    start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
    a := snapshotAt(start, 2)
    // Two seconds later, same session: elapsed and server time moved on.
    st := models.KioskSettings{Capacity: 1, OverdueMinutes: 10}
    sess := models.PassSession{ID: 1, StudentCode: "1001", StartTS: start.Add(-2 * time.Minute), UserIDRef: 1}
    b := composePayload(start.Add(2*time.Second), st, true, []sessionView{{Sess: sess, Name: "Jane Doe"}}, nil)

    if a.Elapsed == b.Elapsed {
        t.Fatal("sanity: elapsed should differ between snapshots")
    }
    if !SignatureOf(a).Equal(SignatureOf(b)) {
        t.Fatal("elapsed ticks alone must not change the signature")
    }
}

func TestSignatureChangesOnOverdueFlip(t *testing.T) {
    now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
    a := snapshotAt(now, 9)
    b := snapshotAt(now, 11)
    if SignatureOf(a).Equal(SignatureOf(b)) {
        t.Fatal("overdue flip must change the signature")
    }
}

func TestSignatureChangesOnSessionChange(t *testing.T) {
    now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
    st := models.KioskSettings{Capacity: 1, OverdueMinutes: 10}
    empty := composePayload(now, st, true, nil, nil)
    busy := snapshotAt(now, 2)
    if SignatureOf(empty).Equal(SignatureOf(busy)) {
        t.Fatal("session start must change the signature")
    }
}

func TestSignatureChangesOnQueueChange(t *testing.T) {
    now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
    st := models.KioskSettings{Capacity: 1, OverdueMinutes: 10}
    a := composePayload(now, st, true, nil, nil)
    b := composePayload(now, st, true, nil, []queueView{
        {Entry: models.QueueEntry{ID: 1, StudentCode: "2002"}, Name: "John Smith"},
    })
    if SignatureOf(a).Equal(SignatureOf(b)) {
        t.Fatal("queue change must change the signature")
    }
}

func TestSignatureChangesOnSuspension(t *testing.T) {
    now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
    st := models.KioskSettings{Capacity: 1, OverdueMinutes: 10}
    a := composePayload(now, st, true, nil, nil)
    b := composePayload(now, st, false, nil, nil)
    if SignatureOf(a).Equal(SignatureOf(b)) {
        t.Fatal("suspension must change the signature")
    }
}
