// Package models defines the check-in desk domain types.
package models

import (
	"strings"
	"time"

	dErrors "clubdesk/pkg/domain-errors"
)

// ContactKind discriminates the contact channel inside a ContactRef.
type ContactKind string

const (
	ContactEmail ContactKind = "email"
	ContactPhone ContactKind = "phone"
)

// ContactRef identifies a member by exactly one contact channel. The zero
// value is invalid; construct via EmailRef, PhoneRef or FromRequest.
type ContactRef struct {
	kind  ContactKind
	value string
}

func EmailRef(email string) ContactRef {
	return ContactRef{kind: ContactEmail, value: strings.TrimSpace(strings.ToLower(email))}
}

func PhoneRef(phone string) ContactRef {
	return ContactRef{kind: ContactPhone, value: strings.TrimSpace(phone)}
}

// FromRequest builds a ContactRef from the request body fields. Email wins
// when both are present.
func FromRequest(email, phone string) (ContactRef, error) {
	if strings.TrimSpace(email) != "" {
		return EmailRef(email), nil
	}
	if strings.TrimSpace(phone) != "" {
		return PhoneRef(phone), nil
	}
	return ContactRef{}, dErrors.New(dErrors.CodeValidation,
		"O email ou o telefone do utilizador são obrigatórios.")
}

func (c ContactRef) Kind() ContactKind { return c.kind }
func (c ContactRef) Value() string     { return c.value }

// Entry is one check-in record. ValidatedBy and ValidatedAt are both nil
// until an admin validates the entry, then both set, never one of them.
type Entry struct {
	ID          int64      `json:"entry_id"`
	MemberID    int64      `json:"user_id"`
	EntryTime   time.Time  `json:"entry_time"`
	ValidatedBy *int64     `json:"validated_by,omitempty"`
	ValidatedAt *time.Time `json:"validated_at,omitempty"`
}

// Validated reports whether an admin already confirmed this entry.
func (e *Entry) Validated() bool {
	return e.ValidatedBy != nil
}

// EntryDetails is the dashboard row: the entry joined with member and
// validator identity.
type EntryDetails struct {
	Entry
	MemberName     string `json:"fullname"`
	MemberEmail    string `json:"email,omitempty"`
	MemberPhone    string `json:"phone,omitempty"`
	MemberUsername string `json:"username,omitempty"`
	ValidatorName  string `json:"validator_name,omitempty"`
}

// ValidationResult reports the outcome of a batch validation.
type ValidationResult struct {
	Validated  int     `json:"validated"`
	SkippedIDs []int64 `json:"skippedIds,omitempty"`
}

// EntryListParams controls the dashboard listing. Search matches the
// member's email, phone, username or full name.
type EntryListParams struct {
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	Search    string `json:"search"`
	Validated *bool  `json:"validated"`
	OrderBy   string `json:"orderBy"`
	Order     string `json:"order"`
}

var orderableEntryColumns = map[string]struct{}{
	"entry_id":   {},
	"entry_time": {},
	"fullname":   {},
}

// Normalize fills defaults and rejects unknown order columns.
func (p *EntryListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 15
	}
	if _, ok := orderableEntryColumns[p.OrderBy]; !ok {
		p.OrderBy = "entry_time"
	}
	if strings.EqualFold(p.Order, "ASC") {
		p.Order = "ASC"
	} else {
		p.Order = "DESC"
	}
	p.Search = strings.TrimSpace(p.Search)
}

// Offset converts page/limit into a SQL offset.
func (p EntryListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Stats is the dashboard summary block.
type Stats struct {
	TotalEntries     int `json:"total_entries"`
	PendingEntries   int `json:"pending_entries"`
	ValidatedEntries int `json:"validated_entries"`
	TotalMembers     int `json:"total_members"`
}
