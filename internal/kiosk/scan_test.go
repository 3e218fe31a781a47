package kiosk

import (
    "net/http"
    "testing"
    "time"

    "github.com/elbrielle/HalllDay/internal/models"
)

func testState(code string) scanState {
    return scanState{
        Code: code,
        Now:  time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
        Settings: models.KioskSettings{
            RoomName:       "Hall Pass",
            Capacity:       1,
            OverdueMinutes: 10,
        },
        Available:   true,
        StudentName: "Jane Doe",
        NameFound:   true,
        RosterSize:  5,
    }
}

func openSession(st *scanState, id uint, code string, started time.Time) {
    st.OpenSessions = append(st.OpenSessions, models.PassSession{
        ID: id, StudentCode: code, StartTS: started, UserIDRef: 1,
    })
}

func queued(st *scanState, id uint, code string) {
    st.Queue = append(st.Queue, models.QueueEntry{ID: id, StudentCode: code, UserIDRef: 1})
}

func TestDecideStartsSessionWhenFree(t *testing.T) {
    st := testState("1001")
    p := decide(st)
    if !p.StartSession {
        t.Fatalf("expected session start, got %+v", p)
    }
    if p.Result.Action != ActionStarted || !p.Result.OK {
        t.Fatalf("unexpected result %+v", p.Result)
    }
    if p.Result.Name != "Jane Doe" {
        t.Fatalf("expected resolved name, got %q", p.Result.Name)
    }
}

func TestDecideDeniesAtCapacityWithoutQueue(t *testing.T) {
    st := testState("1002")
    openSession(&st, 1, "1001", st.Now.Add(-2*time.Minute))
    p := decide(st)
    if p.StartSession || p.JoinQueue {
        t.Fatalf("expected plain denial, got %+v", p)
    }
    if p.Result.Action != ActionDenied || p.Result.Status != http.StatusConflict {
        t.Fatalf("unexpected result %+v", p.Result)
    }
    if p.Result.Message != "Pass limit reached." {
        t.Fatalf("unexpected message %q", p.Result.Message)
    }
}

func TestDecideQueuesAtCapacity(t *testing.T) {
    st := testState("1002")
    st.Settings.EnableQueue = true
    openSession(&st, 1, "1001", st.Now.Add(-2*time.Minute))
    p := decide(st)
    if !p.JoinQueue || p.StartSession {
        t.Fatalf("expected queue join, got %+v", p)
    }
    if p.Result.Action != ActionQueued || !p.Result.OK {
        t.Fatalf("unexpected result %+v", p.Result)
    }
}

func TestDecideReturnEndsSession(t *testing.T) {
    st := testState("1001")
    openSession(&st, 7, "1001", st.Now.Add(-5*time.Minute))
    p := decide(st)
    if p.EndSessionID != 7 {
        t.Fatalf("expected session 7 closed, got %+v", p)
    }
    if p.Result.Action != ActionEnded || !p.Result.OK {
        t.Fatalf("unexpected result %+v", p.Result)
    }
    if p.BanStudent {
        t.Fatal("on-time return must not ban")
    }
}

func TestDecideOverdueReturnAutoBans(t *testing.T) {
    st := testState("1001")
    st.Settings.AutoBanOverdue = true
    openSession(&st, 7, "1001", st.Now.Add(-11*time.Minute))
    p := decide(st)
    if p.EndSessionID != 7 || !p.BanStudent {
        t.Fatalf("expected close plus ban, got %+v", p)
    }
    if p.Result.Action != ActionEndedBanned {
        t.Fatalf("unexpected action %q", p.Result.Action)
    }
    if p.Result.Message != "PASS RETURNED LATE - AUTO BANNED" {
        t.Fatalf("unexpected message %q", p.Result.Message)
    }
}

func TestDecideOverdueReturnWithoutAutoBan(t *testing.T) {
    st := testState("1001")
    openSession(&st, 7, "1001", st.Now.Add(-30*time.Minute))
    p := decide(st)
    if p.BanStudent {
        t.Fatal("auto-ban disabled, must not ban")
    }
    if p.Result.Action != ActionEnded {
        t.Fatalf("unexpected action %q", p.Result.Action)
    }
}

func TestDecideReturnPromotesQueueHead(t *testing.T) {
    st := testState("1001")
    st.Settings.EnableQueue = true
    st.Settings.AutoPromoteQueue = true
    openSession(&st, 7, "1001", st.Now.Add(-5*time.Minute))
    queued(&st, 20, "2002")
    queued(&st, 21, "3003")
    p := decide(st)
    if p.Result.Action != ActionEndedAutoStarted {
        t.Fatalf("unexpected action %q", p.Result.Action)
    }
    if p.PromoteCode != "2002" {
        t.Fatalf("expected head promoted, got %q", p.PromoteCode)
    }
    if len(p.RemoveQueueIDs) != 1 || p.RemoveQueueIDs[0] != 20 {
        t.Fatalf("expected head entry removed, got %v", p.RemoveQueueIDs)
    }
}

func TestDecideReturnNoPromoteWhenDisabled(t *testing.T) {
    st := testState("1001")
    st.Settings.EnableQueue = true
    openSession(&st, 7, "1001", st.Now.Add(-5*time.Minute))
    queued(&st, 20, "2002")
    p := decide(st)
    if p.PromoteCode != "" {
        t.Fatalf("auto-promote off, got promotion of %q", p.PromoteCode)
    }
    if p.Result.Action != ActionEnded {
        t.Fatalf("unexpected action %q", p.Result.Action)
    }
}

func TestDecideSuspendedDeniesNewPass(t *testing.T) {
    st := testState("1001")
    st.Available = false
    st.UnavailableReason = ReasonSuspended
    p := decide(st)
    if p.StartSession || p.JoinQueue {
        t.Fatalf("expected denial while suspended, got %+v", p)
    }
    if p.Result.Status != http.StatusForbidden {
        t.Fatalf("unexpected status %d", p.Result.Status)
    }
    if p.Result.Message != "Kiosk is currently suspended by administrator" {
        t.Fatalf("unexpected message %q", p.Result.Message)
    }
}

func TestDecideSuspendedStillAcceptsReturn(t *testing.T) {
    st := testState("1001")
    st.Available = false
    st.UnavailableReason = ReasonSuspended
    openSession(&st, 7, "1001", st.Now.Add(-5*time.Minute))
    p := decide(st)
    if p.EndSessionID != 7 {
        t.Fatalf("holder must be able to return while suspended, got %+v", p)
    }
    if p.Result.Action != ActionEnded {
        t.Fatalf("unexpected action %q", p.Result.Action)
    }
}

func TestDecideSuspendedQueuesWhenAllowed(t *testing.T) {
    st := testState("1001")
    st.Available = false
    st.UnavailableReason = ReasonSuspended
    st.Settings.EnableQueue = true
    st.Settings.AllowQueueWhileSuspended = true
    p := decide(st)
    if !p.JoinQueue || p.StartSession {
        t.Fatalf("expected queue join while suspended, got %+v", p)
    }
    if p.Result.Action != ActionQueued {
        t.Fatalf("unexpected action %q", p.Result.Action)
    }
}

func TestDecideOutsideScheduleMessage(t *testing.T) {
    st := testState("1001")
    st.Available = false
    st.UnavailableReason = ReasonOutsideSchedule
    p := decide(st)
    if p.Result.Message != "Passes not available: "+ReasonOutsideSchedule {
        t.Fatalf("unexpected message %q", p.Result.Message)
    }
}

func TestDecideEmptyRoster(t *testing.T) {
    st := testState("1001")
    st.RosterSize = 0
    st.NameFound = false
    p := decide(st)
    if p.Result.Status != http.StatusNotFound {
        t.Fatalf("unexpected status %d", p.Result.Status)
    }
    if p.Result.Message != "Roster empty. Please upload student list." {
        t.Fatalf("unexpected message %q", p.Result.Message)
    }
}

func TestDecideUnknownCode(t *testing.T) {
    st := testState("9999")
    st.NameFound = false
    st.StudentName = ""
    p := decide(st)
    if p.Result.Status != http.StatusNotFound {
        t.Fatalf("unexpected status %d", p.Result.Status)
    }
    if p.Result.Message != "Incorrect ID: 9999" {
        t.Fatalf("unexpected message %q", p.Result.Message)
    }
}

func TestDecideBannedStudent(t *testing.T) {
    st := testState("1001")
    st.Banned = true
    p := decide(st)
    if p.Result.Action != ActionBanned || p.Result.Status != http.StatusForbidden {
        t.Fatalf("unexpected result %+v", p.Result)
    }
}

func TestDecideBannedHolderMayStillReturn(t *testing.T) {
    st := testState("1001")
    st.Banned = true
    openSession(&st, 7, "1001", st.Now.Add(-5*time.Minute))
    p := decide(st)
    if p.EndSessionID != 7 {
        t.Fatalf("banned holder must still be able to return, got %+v", p)
    }
}

func TestDecideQueueSelfRemoval(t *testing.T) {
    st := testState("2002")
    st.Settings.EnableQueue = true
    openSession(&st, 7, "1001", st.Now.Add(-5*time.Minute))
    queued(&st, 20, "2002")
    p := decide(st)
    if p.Result.Action != ActionLeftQueue {
        t.Fatalf("unexpected action %q", p.Result.Action)
    }
    if len(p.RemoveQueueIDs) != 1 || p.RemoveQueueIDs[0] != 20 {
        t.Fatalf("expected own entry removed, got %v", p.RemoveQueueIDs)
    }
    if p.JoinQueue || p.StartSession {
        t.Fatalf("self-removal must not admit, got %+v", p)
    }
}

func TestDecideQueueLockNonHeadQueues(t *testing.T) {
    // Slot free but the waitlist is non-empty: only its head may start.
    st := testState("3003")
    st.Settings.EnableQueue = true
    queued(&st, 20, "2002")
    p := decide(st)
    if !p.JoinQueue {
        t.Fatalf("expected non-head to join queue, got %+v", p)
    }
    if p.Result.Message != "Added to Waitlist (Queue is active)" {
        t.Fatalf("unexpected message %q", p.Result.Message)
    }
}

func TestDecideQueueLockNonHeadDeniedWhenQueueOff(t *testing.T) {
    st := testState("3003")
    queued(&st, 20, "2002")
    p := decide(st)
    if p.JoinQueue || p.StartSession {
        t.Fatalf("expected denial, got %+v", p)
    }
    if p.Result.Status != http.StatusConflict || p.Result.Message != "Waitlist is active. Cannot start." {
        t.Fatalf("unexpected result %+v", p.Result)
    }
}

func TestDecideQueueHeadScanLeavesBeforeLock(t *testing.T) {
    // Self-removal fires before the queue lock, so even the head leaves on
    // scan and re-admits with the next one.
    st := testState("2002")
    st.Settings.EnableQueue = true
    queued(&st, 20, "2002")
    queued(&st, 21, "3003")
    p := decide(st)
    if p.Result.Action != ActionLeftQueue {
        t.Fatalf("unexpected action %q", p.Result.Action)
    }
    if len(p.RemoveQueueIDs) != 1 || p.RemoveQueueIDs[0] != 20 {
        t.Fatalf("expected head entry removed, got %v", p.RemoveQueueIDs)
    }
}

func TestDecideCapacityTwoAllowsSecondStart(t *testing.T) {
    st := testState("2002")
    st.Settings.Capacity = 2
    openSession(&st, 7, "1001", st.Now.Add(-5*time.Minute))
    p := decide(st)
    if !p.StartSession {
        t.Fatalf("expected second slot start, got %+v", p)
    }
}

func TestDecideClearsOwnQueueEntriesOnStart(t *testing.T) {
    st := testState("1001")
    p := decide(st)
    if !p.ClearQueueForCode {
        t.Fatalf("start must clear stale queue entries for the code, got %+v", p)
    }
}
