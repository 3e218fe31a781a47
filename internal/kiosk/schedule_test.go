package kiosk

import (
    "testing"
    "time"

    "gorm.io/datatypes"

    "github.com/elbrielle/HalllDay/internal/models"
)

// Monday 2026-03-02.
var monday10 = time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)

func TestAvailabilitySuspensionWins(t *testing.T) {
    st := models.KioskSettings{KioskSuspended: true}
    ok, reason := Availability(st, monday10)
    if ok || reason != ReasonSuspended {
        t.Fatalf("got ok=%v reason=%q", ok, reason)
    }
}

func TestAvailabilityNoScheduleAlwaysOpen(t *testing.T) {
    ok, reason := Availability(models.KioskSettings{}, monday10)
    if !ok || reason != "" {
        t.Fatalf("got ok=%v reason=%q", ok, reason)
    }
}

func TestAvailabilityDisabledScheduleIgnored(t *testing.T) {
    st := models.KioskSettings{
        Schedule: datatypes.JSON(`{"enabled":false,"days":{"mon":[{"start":"08:00","end":"09:00"}]}}`),
    }
    ok, _ := Availability(st, monday10)
    if !ok {
        t.Fatal("disabled schedule must not restrict")
    }
}

func TestAvailabilityInsideWindow(t *testing.T) {
    st := models.KioskSettings{
        Schedule: datatypes.JSON(`{"enabled":true,"days":{"mon":[{"start":"10:00","end":"11:00"}]}}`),
    }
    ok, _ := Availability(st, monday10)
    if !ok {
        t.Fatal("10:30 inside 10:00-11:00 must be available")
    }
}

func TestAvailabilityOutsideWindow(t *testing.T) {
    st := models.KioskSettings{
        Schedule: datatypes.JSON(`{"enabled":true,"days":{"mon":[{"start":"12:00","end":"13:00"}]}}`),
    }
    ok, reason := Availability(st, monday10)
    if ok || reason != ReasonOutsideSchedule {
        t.Fatalf("got ok=%v reason=%q", ok, reason)
    }
}

func TestAvailabilityOtherDayEmpty(t *testing.T) {
    st := models.KioskSettings{
        Schedule: datatypes.JSON(`{"enabled":true,"days":{"tue":[{"start":"00:00","end":"23:59"}]}}`),
    }
    ok, _ := Availability(st, monday10)
    if ok {
        t.Fatal("monday has no windows, must be unavailable")
    }
}

func TestAvailabilityMalformedScheduleFailsOpen(t *testing.T) {
    st := models.KioskSettings{Schedule: datatypes.JSON(`{not json`)}
    ok, _ := Availability(st, monday10)
    if !ok {
        t.Fatal("unparseable schedule must fail open")
    }
}

func TestCoversEndExclusive(t *testing.T) {
    ws := WeeklySchedule{
        Enabled: true,
        Days:    map[string][]Window{"mon": {{Start: "09:00", End: "10:30"}}},
    }
    if ws.Covers(monday10) {
        t.Fatal("end minute is exclusive")
    }
    if !ws.Covers(monday10.Add(-time.Minute)) {
        t.Fatal("10:29 should be covered")
    }
}

func TestCoversSkipsMalformedWindows(t *testing.T) {
    ws := WeeklySchedule{
        Enabled: true,
        Days: map[string][]Window{"mon": {
            {Start: "banana", End: "11:00"},
            {Start: "10:00", End: "25:99"},
            {Start: "10:00", End: "11:00"},
        }},
    }
    if !ws.Covers(monday10) {
        t.Fatal("valid window must still match")
    }
}

func TestParseScheduleEmpty(t *testing.T) {
    ws, err := ParseSchedule(nil)
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if ws.Enabled {
        t.Fatal("empty schedule must be disabled")
    }
}
