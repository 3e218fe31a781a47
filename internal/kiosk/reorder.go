package kiosk

import (
    "time"

    "github.com/elbrielle/HalllDay/internal/models"
)

// ReorderJoinTimes rewrites join timestamps so FIFO order follows the given
// code list: base, base+1s, base+2s, ... Codes not currently queued are
// skipped; queued codes missing from the list keep their timestamps.
// Returns the entries that changed.
func ReorderJoinTimes(entries []models.QueueEntry, order []string, base time.Time) []models.QueueEntry {
    byCode := make(map[string]models.QueueEntry, len(entries))
    for _, e := range entries {
        byCode[e.StudentCode] = e
    }
    var changed []models.QueueEntry
    for i, code := range order {
        e, ok := byCode[code]
        if !ok {
            continue
        }
        e.JoinedTS = base.Add(time.Duration(i) * time.Second)
        changed = append(changed, e)
    }
    return changed
}
