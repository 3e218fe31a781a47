package kiosk

import "reflect"

// SessionSignature keeps only the per-session fields that mark a meaningful
// change; raw elapsed seconds are deliberately excluded.
type SessionSignature struct {
    ID      uint
    Start   string
    Name    string
    Overdue bool
}

// Signature is the reduced status representation used by the broadcaster to
// decide whether a tick carries news worth pushing.
type Signature struct {
    InUse            bool
    Name             string
    Start            string
    Overdue          bool
    OverdueMinutes   int
    KioskSuspended   bool
    AutoBanOverdue   bool
    AutoPromoteQueue bool
    Capacity         int
    Sessions         []SessionSignature
    Queue            []string
    QueueList        []QueueItem
}

func SignatureOf(p StatusPayload) Signature {
    sessions := make([]SessionSignature, 0, len(p.ActiveSessions))
    for _, s := range p.ActiveSessions {
        sessions = append(sessions, SessionSignature{
            ID:      s.ID,
            Start:   s.Start,
            Name:    s.Name,
            Overdue: s.Overdue,
        })
    }
    return Signature{
        InUse:            p.InUse,
        Name:             p.Name,
        Start:            p.Start,
        Overdue:          p.Overdue,
        OverdueMinutes:   p.OverdueMinutes,
        KioskSuspended:   p.KioskSuspended,
        AutoBanOverdue:   p.AutoBanOverdue,
        AutoPromoteQueue: p.AutoPromoteQueue,
        Capacity:         p.Capacity,
        Sessions:         sessions,
        Queue:            p.Queue,
        QueueList:        p.QueueList,
    }
}

func (s Signature) Equal(other Signature) bool {
    return reflect.DeepEqual(s, other)
}
