package audit

import (
	"fmt"
	"time"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	ActorID   int64
	Action    string
	Subject   string
	Detail    string
}

// MemberSubject formats the audit subject for a member record.
func MemberSubject(id int64) string {
	return fmt.Sprintf("member:%d", id)
}

// EntrySubject formats the audit subject for a check-in entry.
func EntrySubject(id int64) string {
	return fmt.Sprintf("entry:%d", id)
}

// Actions emitted by the domain services.
const (
	ActionEntryRecorded    = "entry_recorded"
	ActionEntryValidated   = "entries_validated"
	ActionEntryRemoved     = "entry_removed"
	ActionMemberRegistered = "member_registered"
	ActionMemberDeleted    = "member_deleted"
	ActionLoginLockout     = "login_lockout"
)
