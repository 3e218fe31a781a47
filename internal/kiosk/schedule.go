package kiosk

import (
    "encoding/json"
    "strconv"
    "strings"
    "time"

    "gorm.io/datatypes"

    "github.com/elbrielle/HalllDay/internal/models"
)

// Unavailability reasons surfaced to kiosk clients.
const (
    ReasonSuspended       = "Manually suspended"
    ReasonOutsideSchedule = "Outside scheduled hours"
)

// Window is one daily availability span, "HH:MM" inclusive start,
// exclusive end.
type Window struct {
    Start string `json:"start"`
    End   string `json:"end"`
}

// WeeklySchedule restricts when new passes may start. Days are keyed
// "sun".."sat". A disabled or empty schedule means always available.
type WeeklySchedule struct {
    Enabled bool                `json:"enabled"`
    Days    map[string][]Window `json:"days"`
}

var dayKeys = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

func ParseSchedule(raw datatypes.JSON) (WeeklySchedule, error) {
    var ws WeeklySchedule
    if len(raw) == 0 {
        return ws, nil
    }
    if err := json.Unmarshal(raw, &ws); err != nil {
        return WeeklySchedule{}, err
    }
    return ws, nil
}

func parseMinutes(hhmm string) (int, bool) {
    parts := strings.SplitN(hhmm, ":", 2)
    if len(parts) != 2 {
        return 0, false
    }
    h, err := strconv.Atoi(parts[0])
    if err != nil || h < 0 || h > 23 {
        return 0, false
    }
    m, err := strconv.Atoi(parts[1])
    if err != nil || m < 0 || m > 59 {
        return 0, false
    }
    return h*60 + m, true
}

// Covers reports whether now falls inside any window of its weekday.
// Malformed windows are skipped.
func (ws WeeklySchedule) Covers(now time.Time) bool {
    minutes := now.Hour()*60 + now.Minute()
    for _, w := range ws.Days[dayKeys[int(now.Weekday())]] {
        start, ok := parseMinutes(w.Start)
        if !ok {
            continue
        }
        end, ok := parseMinutes(w.End)
        if !ok {
            continue
        }
        if start <= minutes && minutes < end {
            return true
        }
    }
    return false
}

// Availability resolves whether new passes may start right now. Manual
// suspension wins over the schedule. The reason string is empty when
// available.
func Availability(st models.KioskSettings, now time.Time) (bool, string) {
    if st.KioskSuspended {
        return false, ReasonSuspended
    }
    ws, err := ParseSchedule(st.Schedule)
    if err != nil || !ws.Enabled {
        return true, ""
    }
    if ws.Covers(now) {
        return true, ""
    }
    return false, ReasonOutsideSchedule
}
